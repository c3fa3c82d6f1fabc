package assets

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
)

// manifestPathFields are rewritten relative to the output directory, every other key passes through.
var manifestPathFields = []string{"main", "ui"}

var prettyOptions = &pretty.Options{
	Indent:   "  ",
	SortKeys: false,
}

// RewriteManifest returns data with the main and ui paths made relative to outputDir,
// pretty printed with two space indentation. Relative paths on either side are
// resolved against root first. Key order and all other values are preserved.
func RewriteManifest(data []byte, root, outputDir string) ([]byte, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.New("content is not valid JSON")
	}

	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return nil, fmt.Errorf("expected a JSON object, got %s", doc.Type)
	}

	// gjson and sjson act on the first occurrence of a key while JSON decoders keep
	// the last, so a repeated path field cannot be rewritten unambiguously
	counts := make(map[string]int, len(manifestPathFields))
	doc.ForEach(func(key, _ gjson.Result) bool {
		counts[key.Str]++
		return true
	})

	out := bytes.Clone(data)

	for _, key := range manifestPathFields {
		if counts[key] > 1 {
			return nil, fmt.Errorf("field %q appears %d times", key, counts[key])
		}

		value := doc.Get(key)
		if !value.Exists() {
			return nil, fmt.Errorf("missing required field %q", key)
		}
		if value.Type != gjson.String {
			return nil, fmt.Errorf("field %q must be a string, got %s", key, value.Type)
		}

		rel, err := RelativePath(root, outputDir, value.Str)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", key, err)
		}

		out, err = sjson.SetBytes(out, key, rel)
		if err != nil {
			return nil, fmt.Errorf("failed to set field %q: %w", key, err)
		}
	}

	return bytes.TrimRight(pretty.PrettyOptions(out, prettyOptions), "\n"), nil
}

// RelativePath returns the path from dir to target, both resolved against root when
// relative. The result always uses forward slashes, and is empty when dir and
// target are the same location. An empty dir means root itself.
func RelativePath(root, dir, target string) (string, error) {
	from := resolvePath(root, dir)
	to := resolvePath(root, target)

	rel, err := filepath.Rel(from, to)
	if err != nil {
		return "", err
	}
	if rel == "." {
		return "", nil
	}
	return filepath.ToSlash(rel), nil
}

func resolvePath(root, p string) string {
	p = filepath.FromSlash(p)
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(root, p)
}

// readManifest loads the manifest file and rewrites it for the output directory.
func (s *Step) readManifest(outputDir string) ([]byte, error) {
	path := s.config.ManifestPath

	data, err := os.ReadFile(path) // #nosec G304 - path from build configuration
	if err != nil {
		return nil, newBuildError(ErrFileRead, RoleManifest, path, err)
	}

	root, err := s.projectRoot()
	if err != nil {
		return nil, newBuildError(ErrFileRead, RoleManifest, path, err)
	}

	out, err := RewriteManifest(data, root, outputDir)
	if err != nil {
		return nil, newBuildError(ErrManifestParse, RoleManifest, path, err)
	}

	return out, nil
}

func (s *Step) projectRoot() (string, error) {
	if s.root != "" {
		return filepath.Abs(s.root)
	}
	return os.Getwd()
}
