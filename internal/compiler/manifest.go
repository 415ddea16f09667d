package compiler

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/scenekit/internal/ir"
)

// CompileManifest turns a CUE value into a Manifest.
// Uses the CUE SDK's Go API directly (not a CLI subprocess).
//
// The value may be the manifest struct itself or a struct holding it under
// a top-level "manifest" field:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`manifest: { id: "site", name: "Site", ... }`)
//	m, err := CompileManifest(v)
//
// Structural checks that need source positions (required fields, list and
// struct shapes) run here. Semantic checks live in Validate.
func CompileManifest(v cue.Value) (*ir.Manifest, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	if inner := v.LookupPath(cue.ParsePath("manifest")); inner.Exists() {
		v = inner
	}

	for _, field := range []string{"id", "name"} {
		if err := requireString(v, field, field); err != nil {
			return nil, err
		}
	}
	if err := checkRoutes(v.LookupPath(cue.ParsePath("routes")), "routes"); err != nil {
		return nil, err
	}
	if err := checkScenes(v.LookupPath(cue.ParsePath("scenes"))); err != nil {
		return nil, err
	}

	data, err := v.MarshalJSON()
	if err != nil {
		return nil, formatCUEError(err)
	}
	return DecodeJSON(data)
}

// requireString checks that v has a concrete string field.
func requireString(v cue.Value, field, path string) error {
	f := v.LookupPath(cue.ParsePath(field))
	if !f.Exists() {
		return &CompileError{
			Field:   path,
			Message: field + " is required",
			Pos:     v.Pos(),
		}
	}
	if _, err := f.String(); err != nil {
		return &CompileError{
			Field:   path,
			Message: field + " must be a string",
			Pos:     f.Pos(),
		}
	}
	return nil
}

// checkRoutes verifies each route carries id, path and sceneId, recursing
// into children.
func checkRoutes(v cue.Value, path string) error {
	if !v.Exists() {
		return &CompileError{Field: path, Message: "routes are required", Pos: v.Pos()}
	}
	iter, err := v.List()
	if err != nil {
		return &CompileError{Field: path, Message: "routes must be a list", Pos: v.Pos()}
	}
	for i := 0; iter.Next(); i++ {
		route := iter.Value()
		at := fmt.Sprintf("%s[%d]", path, i)
		for _, field := range []string{"id", "path", "sceneId"} {
			if err := requireString(route, field, at+"."+field); err != nil {
				return err
			}
		}
		if children := route.LookupPath(cue.ParsePath("children")); children.Exists() {
			if err := checkRoutes(children, at+".children"); err != nil {
				return err
			}
		}
	}
	return nil
}

// checkScenes verifies each scene carries an id and a root struct.
func checkScenes(v cue.Value) error {
	if !v.Exists() {
		return &CompileError{Field: "scenes", Message: "scenes are required", Pos: v.Pos()}
	}
	iter, err := v.List()
	if err != nil {
		return &CompileError{Field: "scenes", Message: "scenes must be a list", Pos: v.Pos()}
	}
	for i := 0; iter.Next(); i++ {
		scene := iter.Value()
		at := fmt.Sprintf("scenes[%d]", i)
		if err := requireString(scene, "id", at+".id"); err != nil {
			return err
		}
		root := scene.LookupPath(cue.ParsePath("root"))
		if !root.Exists() {
			return &CompileError{Field: at + ".root", Message: "root is required", Pos: scene.Pos()}
		}
		if root.IncompleteKind() != cue.StructKind {
			return &CompileError{Field: at + ".root", Message: "root must be a node struct", Pos: root.Pos()}
		}
	}
	return nil
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
