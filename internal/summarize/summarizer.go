// Package summarize issues one language model request per report section.
package summarize

import (
	"context"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	aerrors "git.home.luguber.info/inful/autodocs/internal/errors"
	"git.home.luguber.info/inful/autodocs/internal/llm"
	"git.home.luguber.info/inful/autodocs/internal/logfields"
	"git.home.luguber.info/inful/autodocs/internal/metrics"
)

// Task pairs a report section with the instruction sent to the model.
type Task struct {
	Section     string
	Heading     string
	Instruction string
	// WithSymbols appends the extracted symbol list to the prompt when one exists.
	WithSymbols bool
}

// DefaultTasks returns the summary, classes and todos tasks in report order.
func DefaultTasks() []Task {
	return []Task{
		{Section: SectionSummary, Heading: "Summary", Instruction: "Summarize this documentation"},
		{Section: SectionClasses, Heading: "Classes & Interfaces", Instruction: "List all classes and their brief roles", WithSymbols: true},
		{Section: SectionTodos, Heading: "TODOs & Undocumented Items", Instruction: "Extract TODOs and undocumented parts"},
	}
}

// Input is the material the tasks are run against.
type Input struct {
	Corpus  string
	Symbols []string
}

// Prompt builds the request text: instruction, a colon, a blank line and the corpus.
func (t Task) Prompt(in Input) string {
	var b strings.Builder
	b.WriteString(t.Instruction)
	b.WriteString(":\n\n")
	b.WriteString(in.Corpus)
	if t.WithSymbols && len(in.Symbols) > 0 {
		b.WriteString("\n\nKnown classes and structs:\n")
		for _, s := range in.Symbols {
			b.WriteString("- ")
			b.WriteString(s)
			b.WriteString("\n")
		}
	}
	return b.String()
}

// Summarizer runs tasks sequentially against an llm.Client.
type Summarizer struct {
	client   llm.Client
	recorder metrics.Recorder
}

// New returns a summarizer using client.
func New(client llm.Client) *Summarizer {
	return &Summarizer{client: client, recorder: metrics.NoopRecorder{}}
}

// WithRecorder injects a metrics recorder.
func (s *Summarizer) WithRecorder(r metrics.Recorder) *Summarizer {
	if r != nil {
		s.recorder = r
	}
	return s
}

// Run issues one independent request per task and stops at the first failure.
func (s *Summarizer) Run(ctx context.Context, tasks []Task, in Input) (*Report, error) {
	report := &Report{}
	for _, task := range tasks {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		start := time.Now()
		text, err := s.client.Generate(ctx, task.Prompt(in))
		s.recorder.IncLLMRequest(task.Section, err == nil)
		if err != nil {
			return report, aerrors.LLMRequestFailed(task.Section, err, llm.IsTransient(err))
		}
		slog.Info("Section summarized",
			logfields.Section(task.Section),
			logfields.Chars(utf8.RuneCountInString(text)),
			logfields.DurationMS(float64(time.Since(start).Milliseconds())))
		report.Add(task.Section, task.Heading, text)
	}
	return report, nil
}
