package compiler

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/roach88/scenekit/internal/ir"
)

// Format identifies a manifest source format.
type Format string

const (
	FormatCUE  Format = "cue"
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatOf infers the format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".cue":
		return FormatCUE, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", &CompileError{Field: "file", Message: fmt.Sprintf("unsupported manifest extension %q (want .cue, .yaml, .yml or .json)", filepath.Ext(path))}
	}
}

// Compile decodes a manifest in the given format. name is used for CUE
// error positions.
func Compile(data []byte, format Format, name string) (*ir.Manifest, error) {
	switch format {
	case FormatCUE:
		v := cuecontext.New().CompileBytes(data, cue.Filename(name))
		if err := v.Err(); err != nil {
			return nil, formatCUEError(err)
		}
		return CompileManifest(v)
	case FormatYAML:
		return DecodeYAML(data)
	case FormatJSON:
		return DecodeJSON(data)
	default:
		return nil, &CompileError{Field: "format", Message: fmt.Sprintf("unknown format %q", format)}
	}
}

// LoadFile reads and compiles a single manifest file.
func LoadFile(path string) (*ir.Manifest, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return Compile(data, format, path)
}
