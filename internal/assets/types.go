package assets

const (
	// PluginFileName is the fixed output name of the compiled plugin source
	PluginFileName = "plugin.js"
	// ManifestFileName is the fixed output name of the rewritten manifest
	ManifestFileName = "manifest.json"

	AssetType = "asset"
)

// Asset is a named blob handed to the bundler for writing into the output directory.
type Asset struct {
	Name     string `json:"name"`
	FileName string `json:"fileName"`
	Type     string `json:"type"`
	Source   string `json:"source"`
}

// BuildContext is supplied by the host when a build starts.
type BuildContext interface {
	// AddWatchFile registers a path whose changes should trigger a rebuild
	AddWatchFile(path string)
}

// OutputContext is supplied by the host when the bundle is generated.
type OutputContext interface {
	// Dir returns the resolved output directory, empty means the project root
	Dir() string
	// EmitFile registers an asset with the host's output writer
	EmitFile(asset Asset) error
}

// Step compiles the plugin entry and rewrites the manifest for a single build.
// It holds no state between builds.
type Step struct {
	config      Config
	root        string
	transformer Transformer
}

type Option func(*Step)

// WithTransformer replaces the esbuild transformer, mainly for tests
func WithTransformer(t Transformer) Option {
	return func(s *Step) {
		s.transformer = t
	}
}

// WithRoot sets the project root used to resolve relative manifest paths.
// It defaults to the working directory.
func WithRoot(root string) Option {
	return func(s *Step) {
		s.root = root
	}
}

// New creates a new bundle step with the given configuration
func New(config Config, opts ...Option) *Step {
	if config.EntryPath == "" {
		config.EntryPath = DefaultEntryPath
	}
	if config.ManifestPath == "" {
		config.ManifestPath = DefaultManifestPath
	}

	s := &Step{
		config:      config,
		transformer: EsbuildTransformer{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Config returns the configuration the step was created with
func (s *Step) Config() Config {
	return s.config
}
