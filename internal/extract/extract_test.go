package extract

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	aerrors "git.home.luguber.info/inful/autodocs/internal/errors"
)

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestVisibleTextSkipsNonContent(t *testing.T) {
	doc := `<html><head><title>T</title><style>.x{}</style></head>
<body><script>var a;</script><p>Hello <b>World</b></p><noscript>no</noscript></body></html>`
	text, err := VisibleText(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Contains(t, text, "Hello World")
	assert.NotContains(t, text, "var a")
	assert.NotContains(t, text, ".x{}")
	assert.NotContains(t, text, "no")
	assert.NotContains(t, text, "T")
}

func TestTextJoinsFilesSorted(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, "b.html"), "<p>beta</p>")
	write(t, filepath.Join(root, "a.html"), "<p>alpha</p>")
	write(t, filepath.Join(root, "sub", "c.html"), "<p>gamma</p>")
	write(t, filepath.Join(root, "skip.css"), "body{}")

	c, err := Text(root, Options{Sorted: true})
	require.NoError(t, err)
	assert.Equal(t, "alpha\n\nbeta\n\ngamma", c.Text)
	assert.Equal(t, 3, c.Files)
	assert.False(t, c.Truncated)
}

func TestTextUnsortedContainsAllFiles(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, "a.html"), "<p>alpha</p>")
	write(t, filepath.Join(root, "b.html"), "<p>beta</p>")

	c, err := Text(root, Options{})
	require.NoError(t, err)
	assert.Contains(t, c.Text, "alpha")
	assert.Contains(t, c.Text, "beta")
	assert.Equal(t, len("alpha")+len("beta")+len(FileSeparator), len(c.Text))
}

func TestTextTruncationIsExactPrefix(t *testing.T) {
	root := t.TempDir()
	page := "<p>" + strings.Repeat("é", 700) + "</p>"
	for i := 0; i < 30; i++ {
		write(t, filepath.Join(root, "p"+string(rune('a'+i%26))+string(rune('a'+i/26))+".html"), page)
	}

	full, err := Text(root, Options{Sorted: true, MaxChars: 1 << 30})
	require.NoError(t, err)
	require.Greater(t, utf8.RuneCountInString(full.Text), MaxCorpusChars)

	c, err := Text(root, Options{Sorted: true})
	require.NoError(t, err)
	assert.Equal(t, MaxCorpusChars, utf8.RuneCountInString(c.Text))
	assert.True(t, strings.HasPrefix(full.Text, c.Text))
	assert.True(t, c.Truncated)
	assert.Equal(t, utf8.RuneCountInString(full.Text), c.FullLength)
}

func TestTruncate(t *testing.T) {
	cases := []struct {
		in    string
		limit int
		want  string
	}{
		{"hello", 10, "hello"},
		{"hello", 5, "hello"},
		{"hello world", 5, "hello"},
		{"ååå", 2, "åå"},
		{"abc", 0, ""},
		{"abc", -1, ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Truncate(tc.in, tc.limit), "Truncate(%q, %d)", tc.in, tc.limit)
	}
}

func TestTextMissingRoot(t *testing.T) {
	_, err := Text(filepath.Join(t.TempDir(), "missing"), Options{})
	require.Error(t, err)
	assert.True(t, aerrors.IsCategory(err, aerrors.CategoryExtraction))
}

func TestLegend(t *testing.T) {
	dir := t.TempDir()
	got, err := Legend(dir, 0)
	require.NoError(t, err)
	assert.Empty(t, got, "absent legend")

	write(t, filepath.Join(dir, LegendFileName), "<html><body><h1> Graph Legend </h1>\n<p> boxes are classes </p></body></html>")
	got, err = Legend(dir, 0)
	require.NoError(t, err)
	assert.Equal(t, "Graph Legendboxes are classes", got)

	got, err = Legend(dir, 5)
	require.NoError(t, err)
	assert.Equal(t, "Graph", got)
}

const widgetIndex = `<?xml version='1.0' encoding='UTF-8' standalone='no'?>
<doxygenindex version="1.9.8">
  <compound refid="class_widget" kind="class"><name>Widget</name>
    <member refid="class_widget_1a" kind="function"><name>draw</name></member>
  </compound>
  <compound refid="widget_8h" kind="file"><name>widget.h</name></compound>
  <compound refid="dir_src" kind="dir"><name>source</name></compound>
</doxygenindex>`

func TestSymbolsWidget(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, IndexFileName), widgetIndex)

	syms, err := Symbols(dir, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"Widget"}, Names(syms))
	assert.Equal(t, "class_widget", syms[0].RefID)
}

func TestSymbolsKindsAndOrder(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, IndexFileName), `<doxygenindex>
<compound refid="s" kind="struct"><name>Point</name></compound>
<compound refid="c" kind="class"><name>Shape</name></compound>
<compound refid="n" kind="namespace"><name>geo</name></compound>
</doxygenindex>`)

	syms, err := Symbols(dir, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"Point", "Shape"}, Names(syms))

	syms, err = Symbols(dir, []string{"namespace"})
	require.NoError(t, err)
	assert.Equal(t, []string{"geo"}, Names(syms))
}

func TestSymbolsErrors(t *testing.T) {
	_, err := Symbols(t.TempDir(), nil)
	assert.True(t, aerrors.IsCategory(err, aerrors.CategoryExtraction))

	dir := t.TempDir()
	write(t, filepath.Join(dir, IndexFileName), "<doxygenindex><compound")
	_, err = Symbols(dir, nil)
	assert.True(t, aerrors.IsCategory(err, aerrors.CategoryExtraction))
}
