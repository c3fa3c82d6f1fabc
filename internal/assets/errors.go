package assets

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingFile indicates a configured input does not exist or is not readable at build start
	ErrMissingFile = errors.New("missing file")
	// ErrFileRead indicates an input passed validation but could not be read while generating the bundle
	ErrFileRead = errors.New("can't read file")
	// ErrTransform indicates the transform engine rejected the plugin source
	ErrTransform = errors.New("transform failed")
	// ErrManifestParse indicates the manifest is not valid JSON or lacks the main/ui paths
	ErrManifestParse = errors.New("invalid manifest")
)

// Role identifies which configured input an error refers to.
type Role string

const (
	RolePlugin   Role = "plugin"
	RoleManifest Role = "manifest"
)

// BuildError is returned for every failed build stage. It matches its Kind with
// errors.Is and unwraps to the underlying cause.
type BuildError struct {
	Kind error
	Role Role
	Path string
	Err  error
}

func (e *BuildError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s file %q", e.Kind, e.Role, e.Path)
	}
	return fmt.Sprintf("%s: %s file %q: %v", e.Kind, e.Role, e.Path, e.Err)
}

func (e *BuildError) Is(target error) bool {
	return target == e.Kind
}

func (e *BuildError) Unwrap() error {
	return e.Err
}

// KindName returns a short label for the error kind, used in metrics and logs.
func KindName(err error) string {
	switch {
	case errors.Is(err, ErrMissingFile):
		return "missing_file"
	case errors.Is(err, ErrFileRead):
		return "file_read"
	case errors.Is(err, ErrTransform):
		return "transform"
	case errors.Is(err, ErrManifestParse):
		return "manifest_parse"
	default:
		return "other"
	}
}

func newBuildError(kind error, role Role, path string, err error) *BuildError {
	return &BuildError{Kind: kind, Role: role, Path: path, Err: err}
}
