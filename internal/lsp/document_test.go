package lsp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/mlsmell/pkg/smell"
)

func TestDocumentStore_OpenGetClose(t *testing.T) {
	store := NewDocumentStore()

	uri := "file:///proj/train.py"
	content := "df.dropna()"

	store.Open(uri, content, 1)

	doc := store.Get(uri)
	require.NotNil(t, doc)
	assert.Equal(t, uri, doc.URI)
	assert.Equal(t, content, doc.Content)
	assert.Equal(t, 1, doc.Version)

	store.Close(uri)
	assert.Nil(t, store.Get(uri))
}

func TestDocumentStore_Update(t *testing.T) {
	store := NewDocumentStore()

	uri := "file:///proj/train.py"
	store.Open(uri, "x = 1", 1)
	require.True(t, store.SetSmells(uri, 1, []smell.Diagnostic{{Code: "W9004"}}))

	store.Update(uri, "x = 2", 2)

	doc := store.Get(uri)
	assert.Equal(t, "x = 2", doc.Content)
	assert.Equal(t, 2, doc.Version)
	assert.Empty(t, doc.Smells, "update drops stale smells")
}

func TestDocumentStore_SetSmells(t *testing.T) {
	store := NewDocumentStore()
	uri := "file:///proj/train.py"
	store.Open(uri, "x = 1", 3)

	diags := []smell.Diagnostic{{Code: "W9002"}}
	assert.False(t, store.SetSmells(uri, 2, diags), "outdated version")
	assert.False(t, store.SetSmells("file:///other.py", 3, diags), "unknown document")
	assert.True(t, store.SetSmells(uri, 3, diags))
	assert.Equal(t, diags, store.Get(uri).Smells)
}

func TestDocumentStore_GetReturnsSnapshot(t *testing.T) {
	store := NewDocumentStore()
	uri := "file:///proj/train.py"
	store.Open(uri, "x = 1", 1)

	doc := store.Get(uri)
	doc.Content = "changed"

	assert.Equal(t, "x = 1", store.Get(uri).Content)
}

func TestDocumentStore_List(t *testing.T) {
	store := NewDocumentStore()

	store.Open("file:///a.py", "a = 1", 1)
	store.Open("file:///b.py", "b = 1", 1)
	store.Open("file:///c.py", "c = 1", 1)

	assert.ElementsMatch(t, []string{"file:///a.py", "file:///b.py", "file:///c.py"}, store.List())
}

func TestComputeLineOffsets(t *testing.T) {
	tests := []struct {
		content  string
		expected []int
	}{
		{"", []int{0}},
		{"abc", []int{0}},
		{"a\nb", []int{0, 2}},
		{"a\nb\nc", []int{0, 2, 4}},
		{"\n\n\n", []int{0, 1, 2, 3}},
		{"line1\nline2\nline3", []int{0, 6, 12}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, computeLineOffsets(tt.content), "content %q", tt.content)
	}
}

func TestDocument_PositionToOffset(t *testing.T) {
	content := "line0\nline1\nline2"
	doc := &Document{
		Content: content,
		Lines:   computeLineOffsets(content),
	}

	tests := []struct {
		pos      Position
		expected int
	}{
		{Position{Line: 0, Character: 0}, 0},
		{Position{Line: 0, Character: 3}, 3},
		{Position{Line: 1, Character: 0}, 6},
		{Position{Line: 1, Character: 4}, 10},
		{Position{Line: 2, Character: 5}, 17},
		{Position{Line: 100, Character: 0}, len(content)},
		{Position{Line: 0, Character: 100}, len(content)},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, doc.PositionToOffset(tt.pos), "position %v", tt.pos)
	}
}

func TestDocument_OffsetToPosition(t *testing.T) {
	content := "line0\nline1\nline2"
	doc := &Document{
		Content: content,
		Lines:   computeLineOffsets(content),
	}

	tests := []struct {
		offset   int
		expected Position
	}{
		{0, Position{Line: 0, Character: 0}},
		{5, Position{Line: 0, Character: 5}},
		{6, Position{Line: 1, Character: 0}},
		{10, Position{Line: 1, Character: 4}},
		{17, Position{Line: 2, Character: 5}},
		{-1, Position{Line: 0, Character: 0}},
		{100, Position{Line: 2, Character: 5}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, doc.OffsetToPosition(tt.offset), "offset %d", tt.offset)
	}
}

func TestDocument_GetLine(t *testing.T) {
	content := "import numpy as np\r\nnp.random.seed(0)\nnp.random.rand()"
	doc := &Document{
		Content: content,
		Lines:   computeLineOffsets(content),
	}

	tests := []struct {
		line     int
		expected string
	}{
		{0, "import numpy as np"},
		{1, "np.random.seed(0)"},
		{2, "np.random.rand()"},
		{-1, ""},
		{100, ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, doc.GetLine(tt.line), "line %d", tt.line)
	}
}

func TestDocument_GetWordAtPosition(t *testing.T) {
	content := "model = RandomForestClassifier(n_estimators=100)"
	doc := &Document{
		Content: content,
		Lines:   computeLineOffsets(content),
	}

	tests := []struct {
		pos          Position
		expectedWord string
	}{
		{Position{Line: 0, Character: 0}, "model"},
		{Position{Line: 0, Character: 10}, "RandomForestClassifier"},
		{Position{Line: 0, Character: 31}, "n_estimators"},
		{Position{Line: 0, Character: 44}, "100"},
		{Position{Line: 0, Character: 6}, ""},
	}

	for _, tt := range tests {
		word, _ := doc.GetWordAtPosition(tt.pos)
		assert.Equal(t, tt.expectedWord, word, "position %v", tt.pos)
	}

	dotted := &Document{Content: "np.random.shuffle(x)", Lines: []int{0}}
	word, rng := dotted.GetWordAtPosition(Position{Character: 4})
	assert.Equal(t, "np.random.shuffle", word)
	assert.Equal(t, Range{End: Position{Character: 17}}, rng)
}

func TestURIToPath(t *testing.T) {
	tests := []struct {
		uri      string
		expected string
	}{
		{"file:///Users/test/train.py", "/Users/test/train.py"},
		{"file:///home/user/my%20project/serve.py", "/home/user/my project/serve.py"},
		{"/already/a/path.py", "/already/a/path.py"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, URIToPath(tt.uri), "uri %q", tt.uri)
	}
}

func TestPathToURI(t *testing.T) {
	tests := []struct {
		path     string
		expected string
	}{
		{"/Users/test/train.py", "file:///Users/test/train.py"},
		{"file:///already/uri.py", "file:///already/uri.py"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, PathToURI(tt.path), "path %q", tt.path)
	}
}

func TestIsWordChar(t *testing.T) {
	for _, c := range "abzAZ09_." {
		assert.True(t, isWordChar(byte(c)), "char %q", c)
	}
	for _, c := range " \t\n()=,*[]'\"" {
		assert.False(t, isWordChar(byte(c)), "char %q", c)
	}
}
