package publish

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"git.home.luguber.info/inful/autodocs/internal/summarize"
)

// ReportTitle is the first line of every report.
const ReportTitle = "# AutoDocs Summary (via Gemini + Doxygen)"

// ReportData is everything the Markdown report is rendered from.
type ReportData struct {
	VersionTag  string
	Versioned   bool
	DocsKind    string // "HTML" or "XML"; empty means HTML
	LocalDocs   string // site-relative link to the copied docs, empty when not copied
	DownloadURL string // remote archive URL, empty when not uploaded
	Sections    []summarize.Section
}

// RenderMarkdown lays out the report: title, optional version marker, links, then one
// "## Heading" block per section with the raw text unchanged.
func RenderMarkdown(d ReportData) string {
	var b strings.Builder
	b.WriteString(ReportTitle)
	b.WriteString("\n\n")
	if d.Versioned && d.VersionTag != "" {
		fmt.Fprintf(&b, "### Version: `%s`\n\n", d.VersionTag)
	}
	kind := d.DocsKind
	if kind == "" {
		kind = "HTML"
	}
	if d.LocalDocs != "" {
		fmt.Fprintf(&b, "[View %s Docs](%s)\n\n", kind, d.LocalDocs)
	}
	if d.DownloadURL != "" {
		fmt.Fprintf(&b, "[Download %s Docs](%s)\n\n", kind, d.DownloadURL)
	}
	for _, s := range d.Sections {
		fmt.Fprintf(&b, "## %s\n\n%s\n\n", s.Heading, s.Content)
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}

// RenderHTML converts report Markdown into a standalone HTML page.
func RenderHTML(markdown string) ([]byte, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	var body bytes.Buffer
	if err := md.Convert([]byte(markdown), &body); err != nil {
		return nil, fmt.Errorf("render report html: %w", err)
	}
	var out bytes.Buffer
	out.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>AutoDocs Summary</title>\n</head>\n<body>\n")
	out.Write(body.Bytes())
	out.WriteString("</body>\n</html>\n")
	return out.Bytes(), nil
}
