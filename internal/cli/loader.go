package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"

	"github.com/roach88/scenekit/internal/compiler"
	"github.com/roach88/scenekit/internal/ir"
)

// LoadResult is a compiled manifest and where it came from.
type LoadResult struct {
	Manifest *ir.Manifest
	Source   string          // file or directory the manifest was loaded from
	Format   compiler.Format // format of the source; CUE for directories
	Hash     string          // content hash of the compiled manifest
}

// LoadError represents an error that occurred during manifest loading.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadManifest loads a manifest from a .cue, .yaml, .yml or .json file, or
// from a directory holding a CUE package.
func LoadManifest(path string) (*LoadResult, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("manifest not found: %s", path)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing manifest: %v", err)}
	}

	var (
		m      *ir.Manifest
		format compiler.Format
	)
	if info.IsDir() {
		m, err = loadCUEDir(path)
		format = compiler.FormatCUE
	} else {
		format, err = compiler.FormatOf(path)
		if err == nil {
			m, err = compiler.LoadFile(path)
		}
	}
	if err != nil {
		return nil, convertCompileError(err)
	}

	hash, err := ir.ManifestHash(m)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeGeneric, Message: err.Error()}
	}
	return &LoadResult{Manifest: m, Source: path, Format: format, Hash: hash}, nil
}

// loadCUEDir builds the CUE package in dir and compiles it as a manifest.
func loadCUEDir(dir string) (*ir.Manifest, error) {
	cueFiles, err := FindCUEFiles(dir)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}
	}
	if len(cueFiles) == 0 {
		return nil, &LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}
	}

	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}
	}

	value := cuecontext.New().BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, &LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err)}
	}
	return compiler.CompileManifest(value)
}

// FindCUEFiles walks the directory and returns all .cue file paths.
func FindCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// convertCompileError converts a compiler error to a LoadError with position info.
func convertCompileError(err error) *LoadError {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return loadErr
	}
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return &LoadError{
			Code:    MapFieldToErrorCode(compileErr.Field),
			Message: compileErr.Message,
			Pos:     compileErr.Pos,
		}
	}
	return &LoadError{Code: ErrCodeGeneric, Message: err.Error()}
}

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric      = "E001" // Generic/unknown error
	ErrCodeScanError    = "E002" // Directory scan error
	ErrCodeNoFiles      = "E003" // No CUE files found
	ErrCodeLoadFailed   = "E004" // Manifest load or decode failed
	ErrCodeNotFound     = "E005" // Path not found
	ErrCodeBuildFailed  = "E006" // CUE build failed
	ErrCodeWriteFailed  = "E007" // File write error
	ErrCodeUnsupported  = "E008" // Unsupported manifest extension
	ErrCodeStoreFailed  = "E009" // Database open, read or write failed
	ErrCodeInvalidInput = "E010" // Bad command arguments

	// Runtime failures reported by commands
	ErrCodeValidation     = "E100" // Manifest failed validation
	ErrCodeRouteUnmatched = "E140" // Path matched no route
	ErrCodePrefab         = "E141" // Prefab instantiation failed
	ErrCodeReplay         = "E142" // Replay diverged from the journal
	ErrCodeTestFailed     = "E143" // Scenario failed
)

// MapFieldToErrorCode maps a compiler error field to an error code.
func MapFieldToErrorCode(field string) string {
	switch field {
	case "file":
		return ErrCodeUnsupported
	case "cue":
		return ErrCodeBuildFailed
	case "yaml", "json":
		return ErrCodeLoadFailed
	case "id", "name":
		return compiler.ErrMissingID
	default:
		return ErrCodeGeneric
	}
}
