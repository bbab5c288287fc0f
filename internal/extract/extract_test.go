package extract

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fr-yash/CoBuilderr/internal/models"
)

func TestExtractStrictRoundTrip(t *testing.T) {
	raw := `{"text":"Hello","fileTree":{"a.txt":{"file":{"contents":"hi"}}}}`

	res := Extract(raw)

	assert.Equal(t, "Hello", res.Text)
	require.NotNil(t, res.FileTree)
	node := res.FileTree["a.txt"]
	require.NotNil(t, node)
	require.NotNil(t, node.File)
	assert.Equal(t, "hi", node.File.Contents)
	assert.Nil(t, res.BuildCommand)
	assert.Nil(t, res.StartCommand)
}

func TestExtractStrictWithCommands(t *testing.T) {
	raw := `{
		"text": "done",
		"fileTree": {"app.js": {"file": {"contents": "x"}}},
		"buildCommand": {"mainItem": "npm", "commands": ["install"]},
		"startCommand": {"mainItem": "node", "commands": ["app.js"]}
	}`

	res := Extract(raw)

	require.NotNil(t, res.BuildCommand)
	assert.Equal(t, "npm", res.BuildCommand.MainItem)
	assert.Equal(t, []string{"install"}, res.BuildCommand.Commands)
	require.NotNil(t, res.StartCommand)
	assert.Equal(t, "node", res.StartCommand.MainItem)
}

func TestExtractStrictNestedDirectories(t *testing.T) {
	raw := `{"text":"ok","fileTree":{"src":{"main.go":{"file":{"contents":"package main"}}}}}`

	res := Extract(raw)

	require.NotNil(t, res.FileTree)
	dir := res.FileTree["src"]
	require.NotNil(t, dir)
	require.Nil(t, dir.File)
	require.NotNil(t, dir.Dir)
	leaf := dir.Dir["main.go"]
	require.NotNil(t, leaf)
	require.NotNil(t, leaf.File)
	assert.Equal(t, "package main", leaf.File.Contents)
}

func TestExtractFencedJSON(t *testing.T) {
	res := Extract("```json\n{\"text\":\"ok\"}\n```")

	assert.Equal(t, "ok", res.Text)
	assert.Nil(t, res.FileTree)
	assert.Nil(t, res.BuildCommand)
	assert.Nil(t, res.StartCommand)
}

func TestExtractFencedWithoutLanguageTag(t *testing.T) {
	res := Extract("```\n{\"text\":\"ok\"}\n```")

	assert.Equal(t, "ok", res.Text)
}

func TestExtractStrictUnescapesLiteralNewlines(t *testing.T) {
	// The model occasionally double-escapes, leaving literal \n sequences
	// in the parsed text.
	raw := `{"text":"line one\\nline two"}`

	res := Extract(raw)

	assert.Equal(t, "line one\nline two", res.Text)
}

func TestExtractRegexFallbackText(t *testing.T) {
	// Trailing garbage makes the outer object unparseable.
	raw := `{"text":"recovered \"quote\" and\\nnewline","fileTree": oops`

	res := Extract(raw)

	assert.Equal(t, "recovered \"quote\" and\nnewline", res.Text)
	assert.Nil(t, res.FileTree)
}

func TestExtractFileTreeFromBrokenOuterObject(t *testing.T) {
	// Invalid JSON before the text field (unquoted key), so strict parsing
	// fails, but both the text and the tree are recoverable.
	raw := `{bad json,"text":"still here","fileTree":{"a.txt":{"file":{"contents":"x { y } \"z\""}}},"buildCommand":{"mainItem":"npm"}`

	res := Extract(raw)

	assert.Equal(t, "still here", res.Text)
	require.NotNil(t, res.FileTree)
	node := res.FileTree["a.txt"]
	require.NotNil(t, node)
	require.NotNil(t, node.File)
	// Braces and escaped quotes inside contents must not derail the scan.
	assert.Equal(t, `x { y } "z"`, node.File.Contents)
	// Fallback stages never populate the command fields.
	assert.Nil(t, res.BuildCommand)
}

func TestScanFileTreeStopsAtBalancingBrace(t *testing.T) {
	raw := `..., "fileTree": {"a": {"file": {"contents": "x { y } \"z\""}}}, "buildCommand": {"mainItem": "npm"}`

	tree := scanFileTree(raw)

	require.NotNil(t, tree)
	require.Len(t, tree, 1)
	node := tree["a"]
	require.NotNil(t, node)
	require.NotNil(t, node.File)
	assert.Equal(t, `x { y } "z"`, node.File.Contents)
}

func TestScanFileTreeMalformed(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"no fileTree key", `{"text":"hi"}`},
		{"no colon", `"fileTree"`},
		{"truncated value", `"fileTree": {"a": {"file": {"contents": "x"`},
		{"unbalanced to end", `"fileTree": {{{`},
		{"invalid json inside", `"fileTree": {"a": }`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Nil(t, scanFileTree(tc.raw))
		})
	}
}

func TestExtractNeverPanicsAndAlwaysYieldsText(t *testing.T) {
	inputs := []string{
		"",
		"plain prose, no JSON at all",
		"{",
		"```json\n```",
		`{"fileTree": 12}`,
		`{"text": ""}`,
		strings.Repeat("{\"text\":", 50),
		"```json\n{\"text\":\"truncated",
	}

	for _, raw := range inputs {
		res := Extract(raw)
		// Degraded output carries the raw input as text, so the value is
		// always usable downstream.
		assert.Equal(t, raw, res.Text, "input %q", raw)
	}
}

func TestExtractValidJSONWithoutTextField(t *testing.T) {
	raw := `{"answer": 42}`

	res := Extract(raw)

	assert.Equal(t, raw, res.Text)
	assert.Nil(t, res.FileTree)
}

func TestFileTreeMarshalKeepsWireShape(t *testing.T) {
	raw := `{"a.txt":{"file":{"contents":"hi"}},"src":{"b.txt":{"file":{"contents":"yo"}}}}`

	var tree models.FileTree
	require.NoError(t, json.Unmarshal([]byte(raw), &tree))

	out, err := json.Marshal(tree)
	require.NoError(t, err)
	assert.JSONEq(t, raw, string(out))
}
