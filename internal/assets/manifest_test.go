package assets

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestRewriteManifest(t *testing.T) {
	root := t.TempDir()

	out, err := RewriteManifest([]byte(`{"main": "dist/code.js", "ui": "dist/ui.html", "other": 1}`), root, "dist")
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(out, &got))
	assert.Equal(t, map[string]any{
		"main":  "code.js",
		"ui":    "ui.html",
		"other": float64(1),
	}, got)
}

func TestRewriteManifest_PreservesKeyOrder(t *testing.T) {
	input := `{"name":"Demo","id":"1234","api":"1.0.0","main":"dist/code.js","editorType":["figma","figjam"],"ui":"dist/ui.html","networkAccess":{"allowedDomains":["none"]}}`

	out, err := RewriteManifest([]byte(input), t.TempDir(), "dist")
	require.NoError(t, err)

	text := string(out)
	keys := []string{`"name"`, `"id"`, `"api"`, `"main"`, `"editorType"`, `"ui"`, `"networkAccess"`}
	last := -1
	for _, key := range keys {
		idx := strings.Index(text, key)
		require.Greater(t, idx, last, "key %s out of order in %s", key, text)
		last = idx
	}

	var got, want map[string]any
	require.NoError(t, json.Unmarshal(out, &got))
	require.NoError(t, json.Unmarshal([]byte(input), &want))
	want["main"] = "code.js"
	want["ui"] = "ui.html"
	assert.Equal(t, want, got)
}

func TestRewriteManifest_Formatting(t *testing.T) {
	out, err := RewriteManifest([]byte(`{"main":"dist/code.js","ui":"dist/ui.html"}`), t.TempDir(), "dist")
	require.NoError(t, err)

	text := string(out)
	assert.True(t, strings.HasPrefix(text, "{\n  \"main\""), text)
	assert.False(t, strings.HasSuffix(text, "\n"), "no trailing newline expected")
}

func TestRewriteManifest_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{
			name:    "invalid JSON",
			input:   `{"main": "dist/code.js",`,
			wantErr: "not valid JSON",
		},
		{
			name:    "empty content",
			input:   ``,
			wantErr: "not valid JSON",
		},
		{
			name:    "array instead of object",
			input:   `["dist/code.js"]`,
			wantErr: "expected a JSON object",
		},
		{
			name:    "missing main",
			input:   `{"ui": "dist/ui.html"}`,
			wantErr: `missing required field "main"`,
		},
		{
			name:    "missing ui",
			input:   `{"main": "dist/code.js"}`,
			wantErr: `missing required field "ui"`,
		},
		{
			name:    "main is not a string",
			input:   `{"main": 1, "ui": "dist/ui.html"}`,
			wantErr: `field "main" must be a string`,
		},
		{
			name:    "duplicate main",
			input:   `{"main": "old/x.js", "main": "dist/code.js", "ui": "dist/ui.html"}`,
			wantErr: `field "main" appears 2 times`,
		},
		{
			name:    "duplicate ui",
			input:   `{"main": "dist/code.js", "ui": "dist/ui.html", "ui": "ui.html"}`,
			wantErr: `field "ui" appears 2 times`,
		},
		{
			name:    "ui is null",
			input:   `{"main": "dist/code.js", "ui": null}`,
			wantErr: `field "ui" must be a string`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := RewriteManifest([]byte(tt.input), t.TempDir(), "dist")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRelativePath(t *testing.T) {
	root := t.TempDir()

	tests := []struct {
		name     string
		dir      string
		target   string
		expected string
	}{
		{
			name:     "target inside output dir",
			dir:      "dist",
			target:   "dist/code.js",
			expected: "code.js",
		},
		{
			name:     "empty output dir is the root",
			dir:      "",
			target:   "dist/code.js",
			expected: "dist/code.js",
		},
		{
			name:     "target outside output dir",
			dir:      "dist",
			target:   "ui.html",
			expected: "../ui.html",
		},
		{
			name:     "absolute output dir",
			dir:      filepath.Join(root, "dist"),
			target:   "dist/code.js",
			expected: "code.js",
		},
		{
			name:     "absolute target",
			dir:      "build",
			target:   filepath.Join(root, "dist", "code.js"),
			expected: "../dist/code.js",
		},
		{
			name:     "unclean paths",
			dir:      "./dist/",
			target:   "./dist/../dist/code.js",
			expected: "code.js",
		},
		{
			name:     "same location",
			dir:      "dist",
			target:   "dist",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rel, err := RelativePath(root, tt.dir, tt.target)
			require.NoError(t, err)
			require.Equal(t, tt.expected, rel)
		})
	}
}

func segmentsGen() *rapid.Generator[[]string] {
	return rapid.SliceOfN(rapid.StringMatching(`[a-z][a-z0-9_-]{0,7}`), 0, 4)
}

func TestRelativePath_ResolvesBackToTarget(t *testing.T) {
	root := t.TempDir()

	rapid.Check(t, func(t *rapid.T) {
		dir := strings.Join(segmentsGen().Draw(t, "dir"), "/")
		target := strings.Join(append(segmentsGen().Draw(t, "target"), "code.js"), "/")

		rel, err := RelativePath(root, dir, target)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Contains(rel, `\`) {
			t.Fatalf("relative path %q is not slash separated", rel)
		}

		resolved := filepath.Join(root, filepath.FromSlash(dir), filepath.FromSlash(rel))
		if want := filepath.Join(root, filepath.FromSlash(target)); resolved != want {
			t.Fatalf("resolved %q, want %q", resolved, want)
		}
	})
}

func TestRewriteManifest_Idempotent(t *testing.T) {
	root := t.TempDir()

	rapid.Check(t, func(t *rapid.T) {
		manifest := rapid.MapOf(
			rapid.StringMatching(`[a-zA-Z]{1,10}`),
			rapid.OneOf(
				rapid.Map(rapid.String(), func(s string) any { return s }),
				rapid.Map(rapid.IntRange(-1000, 1000), func(i int) any { return float64(i) }),
				rapid.Map(rapid.Bool(), func(b bool) any { return b }),
			),
		).Draw(t, "manifest")

		main := strings.Join(append(segmentsGen().Draw(t, "main"), "code.js"), "/")
		ui := strings.Join(append(segmentsGen().Draw(t, "ui"), "ui.html"), "/")
		manifest["main"] = main
		manifest["ui"] = ui
		dir := strings.Join(segmentsGen().Draw(t, "dir"), "/")

		input, err := json.Marshal(manifest)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}

		first, err := RewriteManifest(input, root, dir)
		if err != nil {
			t.Fatalf("first rewrite: %v", err)
		}
		second, err := RewriteManifest(input, root, dir)
		if err != nil {
			t.Fatalf("second rewrite: %v", err)
		}
		if string(first) != string(second) {
			t.Fatalf("rewrite is not deterministic:\n%s\n%s", first, second)
		}

		var got map[string]any
		if err := json.Unmarshal(first, &got); err != nil {
			t.Fatalf("output is not valid JSON: %v\n%s", err, first)
		}

		wantMain, _ := RelativePath(root, dir, main)
		wantUI, _ := RelativePath(root, dir, ui)
		manifest["main"] = wantMain
		manifest["ui"] = wantUI
		assert.Equal(t, manifest, got)
	})
}
