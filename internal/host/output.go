package host

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/wolfeidau/figbundle/internal/assets"
)

var (
	// ErrDuplicateAsset indicates the same file name was emitted twice in one build
	ErrDuplicateAsset = errors.New("asset already emitted")
	// ErrInvalidAssetName indicates an asset file name that would escape the output directory
	ErrInvalidAssetName = errors.New("invalid asset file name")
)

// WatchSet records the paths a build asked to be watched.
type WatchSet struct {
	paths []string
}

var _ assets.BuildContext = (*WatchSet)(nil)

func (w *WatchSet) AddWatchFile(path string) {
	w.paths = append(w.paths, path)
}

// Paths returns the registered paths in registration order
func (w *WatchSet) Paths() []string {
	return w.paths
}

// DiskOutput collects emitted assets and writes them into a directory once the
// build step has returned.
type DiskOutput struct {
	dir    string
	assets []assets.Asset
	seen   map[string]struct{}
}

var _ assets.OutputContext = (*DiskOutput)(nil)

// NewDiskOutput creates an output rooted at dir, which is created on Flush.
func NewDiskOutput(dir string) *DiskOutput {
	return &DiskOutput{
		dir:  dir,
		seen: make(map[string]struct{}),
	}
}

func (d *DiskOutput) Dir() string {
	return d.dir
}

func (d *DiskOutput) EmitFile(asset assets.Asset) error {
	if err := validateFileName(asset.FileName); err != nil {
		return err
	}
	if _, ok := d.seen[asset.FileName]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateAsset, asset.FileName)
	}

	d.seen[asset.FileName] = struct{}{}
	d.assets = append(d.assets, asset)
	return nil
}

// Assets returns the assets emitted so far
func (d *DiskOutput) Assets() []assets.Asset {
	return d.assets
}

// Flush writes every emitted asset into the output directory and returns the
// written paths. Each file is written to a temp file and renamed into place so
// a reader never observes a partially written asset.
func (d *DiskOutput) Flush() ([]string, error) {
	if len(d.assets) == 0 {
		return nil, nil
	}

	dir := d.dir
	if dir == "" {
		dir = "."
	}

	if err := os.MkdirAll(dir, 0o755); err != nil { // #nosec G301 - build output is world readable
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	written := make([]string, 0, len(d.assets))
	for _, asset := range d.assets {
		path := filepath.Join(dir, asset.FileName)
		if err := writeFileAtomic(path, []byte(asset.Source)); err != nil {
			return written, fmt.Errorf("failed to write %s: %w", asset.FileName, err)
		}
		written = append(written, path)
	}

	return written, nil
}

// Prune removes the named files from the output directory unless they were
// emitted in this build, so a failed build does not leave a previous build's
// asset next to the new ones. Files that do not exist are ignored. It returns
// the removed paths.
func (d *DiskOutput) Prune(names ...string) ([]string, error) {
	dir := d.dir
	if dir == "" {
		dir = "."
	}

	var removed []string
	for _, name := range names {
		if err := validateFileName(name); err != nil {
			return removed, err
		}
		if _, ok := d.seen[name]; ok {
			continue
		}

		path := filepath.Join(dir, name)
		if err := os.Remove(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return removed, fmt.Errorf("failed to remove stale %s: %w", name, err)
		}
		removed = append(removed, path)
	}

	return removed, nil
}

func validateFileName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidAssetName)
	}
	if filepath.IsAbs(name) || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidAssetName, name)
	}
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name()) // no-op once renamed

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o644); err != nil { // #nosec G302 - build output is world readable
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), path)
}
