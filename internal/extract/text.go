package extract

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"

	aerrors "git.home.luguber.info/inful/autodocs/internal/errors"
	"git.home.luguber.info/inful/autodocs/internal/logfields"
)

const (
	// MaxCorpusChars bounds the corpus handed to the language model.
	MaxCorpusChars = 12000
	// MaxLegendChars bounds the graph legend excerpt.
	MaxLegendChars = 3000
	// FileSeparator is placed between the text of consecutive files.
	FileSeparator = "\n\n"
	// LegendFileName is the generator's graph legend page.
	LegendFileName = "graph_legend.html"
)

// Options controls Text.
type Options struct {
	MaxChars int
	Sorted   bool
}

// Corpus is the extracted, length-bounded text.
type Corpus struct {
	Text       string
	Files      int
	FullLength int
	Truncated  bool
}

// skipped elements never contribute visible text.
var skipped = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"head":     true,
}

// Text extracts the visible text of every *.html file under root.
func Text(root string, opts Options) (Corpus, error) {
	limit := opts.MaxChars
	if limit <= 0 {
		limit = MaxCorpusChars
	}
	files, err := htmlFiles(root, opts.Sorted)
	if err != nil {
		return Corpus{}, aerrors.ExtractionFailed(root, err)
	}

	parts := make([]string, 0, len(files))
	for _, path := range files {
		text, err := fileText(path, VisibleText)
		if err != nil {
			return Corpus{}, aerrors.ExtractionFailed(path, err)
		}
		parts = append(parts, text)
	}

	full := strings.Join(parts, FileSeparator)
	c := Corpus{
		Text:       Truncate(full, limit),
		Files:      len(files),
		FullLength: utf8.RuneCountInString(full),
	}
	c.Truncated = c.FullLength > limit
	slog.Debug("Extracted corpus",
		logfields.Path(root),
		logfields.Count(c.Files),
		logfields.Chars(c.FullLength),
		slog.Bool("truncated", c.Truncated))
	return c, nil
}

// Truncate returns the first limit characters (runes) of s.
func Truncate(s string, limit int) string {
	if limit < 0 {
		limit = 0
	}
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	n := 0
	for i := range s {
		if n == limit {
			return s[:i]
		}
		n++
	}
	return s
}

// VisibleText concatenates every text node outside script, style, noscript and head.
func VisibleText(r io.Reader) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	walkText(doc, func(s string) { b.WriteString(s) })
	return b.String(), nil
}

// StrippedText trims every visible text node and joins the non-empty ones.
func StrippedText(r io.Reader) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	walkText(doc, func(s string) {
		if t := strings.TrimSpace(s); t != "" {
			b.WriteString(t)
		}
	})
	return b.String(), nil
}

// Legend returns the stripped text of the graph legend page in htmlDir, cut to limit
// characters. A missing legend yields "".
func Legend(htmlDir string, limit int) (string, error) {
	if limit <= 0 {
		limit = MaxLegendChars
	}
	path := filepath.Join(htmlDir, LegendFileName)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return "", nil
	}
	text, err := fileText(path, StrippedText)
	if err != nil {
		return "", aerrors.ExtractionFailed(path, err)
	}
	return Truncate(text, limit), nil
}

func walkText(n *html.Node, emit func(string)) {
	if n.Type == html.ElementNode && skipped[n.Data] {
		return
	}
	if n.Type == html.TextNode {
		emit(n.Data)
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkText(c, emit)
	}
}

func fileText(path string, fn func(io.Reader) (string, error)) (string, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return "", err
	}
	defer func() {
		_ = f.Close()
	}()
	return fn(f)
}

// htmlFiles lists *.html files under root. Unsorted listings keep the order the
// filesystem reports directory entries in.
func htmlFiles(root string, sorted bool) ([]string, error) {
	var out []string
	var walk func(dir string) error
	walk = func(dir string) error {
		d, err := os.Open(filepath.Clean(dir))
		if err != nil {
			return err
		}
		entries, err := d.ReadDir(-1)
		_ = d.Close()
		if err != nil {
			return err
		}
		for _, e := range entries {
			path := filepath.Join(dir, e.Name())
			if e.IsDir() {
				if err := walk(path); err != nil {
					return err
				}
				continue
			}
			if strings.EqualFold(filepath.Ext(e.Name()), ".html") {
				out = append(out, path)
			}
		}
		return nil
	}
	if err := walk(root); err != nil {
		return nil, err
	}
	if sorted {
		sort.Strings(out)
	}
	return out, nil
}
