package doxygen

import (
	"bufio"
	"fmt"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/autodocs/internal/config"
)

// Doxyfile holds the generator settings this tool controls.
type Doxyfile struct {
	ProjectName        string
	OutputDirectory    string
	Input              string
	Recursive          bool
	Exclude            []string
	GenerateHTML       bool
	GenerateXML        bool
	HaveDot            bool
	ClassDiagrams      bool
	CallGraph          bool
	CallerGraph        bool
	CollaborationGraph bool
	IncludeGraph       bool
	IncludedByGraph    bool
	GraphicalHierarchy bool
	DotImageFormat     string
	InteractiveSVG     bool
	ExtractAll         bool
}

type doxyKey struct {
	name string
	str  func(d *Doxyfile) *string
	flag func(d *Doxyfile) *bool
	list func(d *Doxyfile) *[]string
}

// keyOrder fixes the rendering order.
var keyOrder = []doxyKey{
	{name: "PROJECT_NAME", str: func(d *Doxyfile) *string { return &d.ProjectName }},
	{name: "OUTPUT_DIRECTORY", str: func(d *Doxyfile) *string { return &d.OutputDirectory }},
	{name: "INPUT", str: func(d *Doxyfile) *string { return &d.Input }},
	{name: "RECURSIVE", flag: func(d *Doxyfile) *bool { return &d.Recursive }},
	{name: "EXCLUDE", list: func(d *Doxyfile) *[]string { return &d.Exclude }},
	{name: "GENERATE_HTML", flag: func(d *Doxyfile) *bool { return &d.GenerateHTML }},
	{name: "GENERATE_XML", flag: func(d *Doxyfile) *bool { return &d.GenerateXML }},
	{name: "HAVE_DOT", flag: func(d *Doxyfile) *bool { return &d.HaveDot }},
	{name: "CLASS_DIAGRAMS", flag: func(d *Doxyfile) *bool { return &d.ClassDiagrams }},
	{name: "CALL_GRAPH", flag: func(d *Doxyfile) *bool { return &d.CallGraph }},
	{name: "CALLER_GRAPH", flag: func(d *Doxyfile) *bool { return &d.CallerGraph }},
	{name: "COLLABORATION_GRAPH", flag: func(d *Doxyfile) *bool { return &d.CollaborationGraph }},
	{name: "INCLUDE_GRAPH", flag: func(d *Doxyfile) *bool { return &d.IncludeGraph }},
	{name: "INCLUDED_BY_GRAPH", flag: func(d *Doxyfile) *bool { return &d.IncludedByGraph }},
	{name: "GRAPHICAL_HIERARCHY", flag: func(d *Doxyfile) *bool { return &d.GraphicalHierarchy }},
	{name: "DOT_IMAGE_FORMAT", str: func(d *Doxyfile) *string { return &d.DotImageFormat }},
	{name: "INTERACTIVE_SVG", flag: func(d *Doxyfile) *bool { return &d.InteractiveSVG }},
	{name: "EXTRACT_ALL", flag: func(d *Doxyfile) *bool { return &d.ExtractAll }},
}

// NewDoxyfile maps a BuildConfig onto generator settings.
func NewDoxyfile(cfg *config.BuildConfig) Doxyfile {
	f := cfg.Features
	svg := f.ImageFormat == "svg"
	return Doxyfile{
		ProjectName:        cfg.ProjectName,
		OutputDirectory:    cfg.Paths.OutputDir,
		Input:              cfg.SourceDir,
		Recursive:          true,
		Exclude:            generatedDirsUnder(cfg),
		GenerateHTML:       f.GenerateHTML,
		GenerateXML:        f.GenerateXML,
		HaveDot:            f.CallGraphs || f.ClassDiagrams,
		ClassDiagrams:      f.ClassDiagrams,
		CallGraph:          f.CallGraphs,
		CallerGraph:        f.CallGraphs,
		CollaborationGraph: f.ClassDiagrams,
		IncludeGraph:       f.CallGraphs,
		IncludedByGraph:    f.CallGraphs,
		GraphicalHierarchy: f.ClassDiagrams,
		DotImageFormat:     f.ImageFormat,
		InteractiveSVG:     svg,
		ExtractAll:         true,
	}
}

// generatedDirsUnder lists the output and docs trees when they sit inside the input
// directory, which happens when there is no source/ and the repository root is scanned.
func generatedDirsUnder(cfg *config.BuildConfig) []string {
	var out []string
	for _, dir := range []string{cfg.Paths.OutputDir, cfg.Paths.DocsDir} {
		rel, err := filepath.Rel(cfg.SourceDir, dir)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		out = append(out, dir)
	}
	return out
}

// Render emits one "KEY = VALUE" line per setting in a fixed order.
func (d Doxyfile) Render() string {
	var b strings.Builder
	for _, k := range keyOrder {
		var v string
		switch {
		case k.flag != nil:
			v = yesNo(*k.flag(&d))
		case k.list != nil:
			items := make([]string, 0, len(*k.list(&d)))
			for _, item := range *k.list(&d) {
				items = append(items, quote(item))
			}
			v = strings.Join(items, " ")
		default:
			v = quote(*k.str(&d))
		}
		fmt.Fprintf(&b, "%-20s = %s\n", k.name, v)
	}
	return b.String()
}

// ParseDoxyfile reads settings written by Render. Comments, blank lines and keys this
// package does not manage are ignored.
func ParseDoxyfile(text string) (Doxyfile, error) {
	byName := make(map[string]doxyKey, len(keyOrder))
	for _, k := range keyOrder {
		byName[k.name] = k
	}

	var d Doxyfile
	sc := bufio.NewScanner(strings.NewReader(text))
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		name, value, ok := strings.Cut(line, "=")
		if !ok {
			return Doxyfile{}, fmt.Errorf("%w: line %d: missing '='", ErrInvalidDoxyfile, lineNo)
		}
		name = strings.TrimSpace(name)
		value = strings.TrimSpace(value)
		k, known := byName[name]
		if !known {
			continue
		}
		if k.flag != nil {
			b, err := parseYesNo(value)
			if err != nil {
				return Doxyfile{}, fmt.Errorf("%w: line %d: %s: %w", ErrInvalidDoxyfile, lineNo, name, err)
			}
			*k.flag(&d) = b
			continue
		}
		if k.list != nil {
			*k.list(&d) = splitList(value)
			continue
		}
		*k.str(&d) = unquote(value)
	}
	if err := sc.Err(); err != nil {
		return Doxyfile{}, fmt.Errorf("%w: %w", ErrInvalidDoxyfile, err)
	}
	return d, nil
}

func yesNo(b bool) string {
	if b {
		return "YES"
	}
	return "NO"
}

func parseYesNo(v string) (bool, error) {
	switch strings.ToUpper(v) {
	case "YES":
		return true, nil
	case "NO":
		return false, nil
	default:
		return false, fmt.Errorf("expected YES or NO, got %q", v)
	}
}

// quote wraps values containing whitespace or quotes in double quotes, the way the
// generator expects paths with spaces.
func quote(v string) string {
	if !strings.ContainsAny(v, " \t\"") {
		return v
	}
	return `"` + strings.ReplaceAll(v, `"`, `\"`) + `"`
}

// splitList splits a space-separated value; double-quoted items may contain spaces.
func splitList(v string) []string {
	var (
		items   []string
		cur     strings.Builder
		quoted  bool
		pending bool
	)
	rs := []rune(v)
	for i := 0; i < len(rs); i++ {
		r := rs[i]
		switch {
		case quoted && r == '\\' && i+1 < len(rs) && rs[i+1] == '"':
			cur.WriteRune('"')
			i++
		case r == '"':
			quoted = !quoted
			pending = true
		case !quoted && (r == ' ' || r == '\t'):
			if pending {
				items = append(items, cur.String())
			}
			cur.Reset()
			pending = false
		default:
			cur.WriteRune(r)
			pending = true
		}
	}
	if pending {
		items = append(items, cur.String())
	}
	return items
}

func unquote(v string) string {
	if len(v) >= 2 && strings.HasPrefix(v, `"`) && strings.HasSuffix(v, `"`) {
		return strings.ReplaceAll(v[1:len(v)-1], `\"`, `"`)
	}
	return v
}
