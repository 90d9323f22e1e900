package config

import "path/filepath"

// DefaultCommit is used when no commit identifier is provided.
const DefaultCommit = "dev"

// Fixed repository-relative locations.
const (
	OutputsDirName  = "outputs"
	DocsDirName     = "docs"
	LatestDirName   = "latest"
	ImagesDirName   = "images"
	SummaryFileName = "AUTODOCS_SUMMARY.md"
	ArchiveFileName = "html_output.zip"
)

// Paths are derived locations; all are pure functions of the repository root and version tag.
type Paths struct {
	OutputDir    string // generator OUTPUT_DIRECTORY
	HTMLDir      string
	XMLDir       string
	ArchivePath  string
	DocsDir      string
	LatestDir    string
	VersionedDir string
	ImagesDir    string
	ReportPath   string
}

// VersionTag derives the tag from a commit identifier: "v-" plus its first seven characters.
func VersionTag(commit string) string {
	if commit == "" {
		commit = DefaultCommit
	}
	if len(commit) > 7 {
		commit = commit[:7]
	}
	return "v-" + commit
}

// DerivePaths computes every output location for a repository root and version tag.
func DerivePaths(root, tag string) Paths {
	out := filepath.Join(root, OutputsDirName)
	docs := filepath.Join(root, DocsDirName)
	return Paths{
		OutputDir:    out,
		HTMLDir:      filepath.Join(out, "html"),
		XMLDir:       filepath.Join(out, "xml"),
		ArchivePath:  filepath.Join(out, ArchiveFileName),
		DocsDir:      docs,
		LatestDir:    filepath.Join(docs, LatestDirName),
		VersionedDir: filepath.Join(docs, tag),
		ImagesDir:    filepath.Join(docs, ImagesDirName),
		ReportPath:   filepath.Join(root, SummaryFileName),
	}
}
