package pipeline

import "context"

// StageName is a strongly-typed identifier for a pipeline stage.
type StageName string

// Canonical stage names, in execution order. Configuration is resolved by the caller
// before Run; StageResolve labels that step in logs and metrics.
const (
	StageResolve   StageName = "resolve"
	StageBuild     StageName = "build"
	StageRasterize StageName = "rasterize"
	StageExtract   StageName = "extract"
	StageSummarize StageName = "summarize"
	StagePublish   StageName = "publish"
)

// stage is one step of a run.
type stage func(ctx context.Context, st *runState) error

// stageDef pairs a stage name with its executing function.
type stageDef struct {
	Name StageName
	Fn   stage
}
