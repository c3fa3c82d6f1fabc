package assets

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
)

// Transformer turns plugin source into runnable code.
type Transformer interface {
	Transform(ctx context.Context, source, path string, opts TransformOptions) (string, error)
}

// EsbuildTransformer runs the esbuild transform API on a single file, without bundling.
type EsbuildTransformer struct{}

var _ Transformer = EsbuildTransformer{}

func (EsbuildTransformer) Transform(ctx context.Context, source, path string, opts TransformOptions) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	esopts, err := esbuildOptions(path, opts)
	if err != nil {
		return "", err
	}

	result := api.Transform(source, esopts)

	if len(result.Errors) > 0 {
		msgs := api.FormatMessages(result.Errors, api.FormatMessagesOptions{
			Kind: api.ErrorMessage,
		})
		return "", errors.New(strings.TrimSpace(strings.Join(msgs, "\n")))
	}

	return string(result.Code), nil
}

func esbuildOptions(path string, opts TransformOptions) (api.TransformOptions, error) {
	minify := opts.Minify != nil && *opts.Minify

	esopts := api.TransformOptions{
		Sourcefile:        path,
		Loader:            loaderFor(path),
		MinifyWhitespace:  minify,
		MinifyIdentifiers: minify,
		MinifySyntax:      minify,
		TreeShaking:       treeShaking(opts.TreeShaking),
		KeepNames:         opts.KeepNames != nil && *opts.KeepNames,
		Banner:            opts.Banner,
		Footer:            opts.Footer,
		JSXFactory:        opts.JSXFactory,
		JSXFragment:       opts.JSXFragment,
		TsconfigRaw:       opts.TsconfigRaw,
		Define:            opts.Define,
		Pure:              opts.Pure,
		LogLevel:          api.LogLevelSilent,
	}

	var ok bool
	if esopts.Target, ok = targets[strings.ToLower(opts.Target)]; !ok {
		return esopts, fmt.Errorf("unsupported target %q", opts.Target)
	}
	if esopts.Format, ok = formats[strings.ToLower(opts.Format)]; !ok {
		return esopts, fmt.Errorf("unsupported format %q", opts.Format)
	}
	if esopts.Platform, ok = platforms[strings.ToLower(opts.Platform)]; !ok {
		return esopts, fmt.Errorf("unsupported platform %q", opts.Platform)
	}
	if esopts.Charset, ok = charsets[strings.ToLower(opts.Charset)]; !ok {
		return esopts, fmt.Errorf("unsupported charset %q", opts.Charset)
	}
	if esopts.LegalComments, ok = legalComments[strings.ToLower(opts.LegalComments)]; !ok {
		return esopts, fmt.Errorf("unsupported legal comments mode %q", opts.LegalComments)
	}
	if esopts.Sourcemap, ok = sourcemaps[strings.ToLower(opts.Sourcemap)]; !ok {
		// only inline maps survive, plugin.js is the single emitted file
		return esopts, fmt.Errorf("unsupported sourcemap mode %q", opts.Sourcemap)
	}

	for _, d := range opts.Drop {
		switch strings.ToLower(d) {
		case "console":
			esopts.Drop |= api.DropConsole
		case "debugger":
			esopts.Drop |= api.DropDebugger
		default:
			return esopts, fmt.Errorf("unsupported drop %q", d)
		}
	}

	return esopts, nil
}

func treeShaking(flag *bool) api.TreeShaking {
	switch {
	case flag == nil:
		return api.TreeShakingDefault
	case *flag:
		return api.TreeShakingTrue
	default:
		return api.TreeShakingFalse
	}
}

func loaderFor(path string) api.Loader {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ts", ".mts", ".cts":
		return api.LoaderTS
	case ".tsx":
		return api.LoaderTSX
	case ".jsx":
		return api.LoaderJSX
	default:
		return api.LoaderJS
	}
}

var (
	targets = map[string]api.Target{
		"":       api.DefaultTarget,
		"esnext": api.ESNext,
		"es5":    api.ES5,
		"es2015": api.ES2015,
		"es2016": api.ES2016,
		"es2017": api.ES2017,
		"es2018": api.ES2018,
		"es2019": api.ES2019,
		"es2020": api.ES2020,
		"es2021": api.ES2021,
		"es2022": api.ES2022,
		"es2023": api.ES2023,
		"es2024": api.ES2024,
	}

	formats = map[string]api.Format{
		"":     api.FormatDefault,
		"iife": api.FormatIIFE,
		"cjs":  api.FormatCommonJS,
		"esm":  api.FormatESModule,
	}

	platforms = map[string]api.Platform{
		"":        api.PlatformDefault,
		"browser": api.PlatformBrowser,
		"node":    api.PlatformNode,
		"neutral": api.PlatformNeutral,
	}

	charsets = map[string]api.Charset{
		"":      api.CharsetDefault,
		"ascii": api.CharsetASCII,
		"utf8":  api.CharsetUTF8,
	}

	legalComments = map[string]api.LegalComments{
		"":       api.LegalCommentsDefault,
		"none":   api.LegalCommentsNone,
		"inline": api.LegalCommentsInline,
		"eof":    api.LegalCommentsEndOfFile,
	}

	sourcemaps = map[string]api.SourceMap{
		"":       api.SourceMapNone,
		"none":   api.SourceMapNone,
		"inline": api.SourceMapInline,
	}
)
