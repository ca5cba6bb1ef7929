// Package patch merges flat parameter overrides into a preset document's
// settings section.
//
// A patch is a flat JSON object mapping parameter names to scalar values. It
// is applied to the document's top-level "settings" object only: new keys are
// added, existing keys overwritten, unmentioned keys kept. Every other
// top-level field passes through untouched. The merge is expressed as an
// RFC 7386 merge patch of the form {"settings": <overrides>}, which also
// reproduces the reference behavior for an absent or non-object "settings"
// value (it is replaced by the override set wholesale).
package patch

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	jsonpatch "github.com/evanphx/json-patch"
)

// ParseError reports input content that is not valid JSON of the expected
// shape. No output is written when either input fails to parse.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string { return fmt.Sprintf("parse %s: %v", e.Path, e.Err) }

func (e *ParseError) Unwrap() error { return e.Err }

// Apply merges overrides into the "settings" object of the JSON document in
// base and returns the full patched document, compact-encoded. A nil
// overrides map behaves like an empty one; it must not encode as a JSON
// null, which merge-patch would interpret as a deletion of "settings".
func Apply(base []byte, overrides map[string]any) ([]byte, error) {
	if overrides == nil {
		overrides = map[string]any{}
	}
	mergeDoc, err := json.Marshal(map[string]any{"settings": overrides})
	if err != nil {
		return nil, fmt.Errorf("encode overrides: %w", err)
	}
	patched, err := jsonpatch.MergePatch(base, mergeDoc)
	if err != nil {
		return nil, fmt.Errorf("merge patch: %w", err)
	}
	return patched, nil
}

// ApplyFile loads the preset document at basePath, applies the flat override
// mapping at patchPath, and writes the patched document to outputPath.
// The write is all-or-nothing: the output file only appears once the full
// patched document has been built.
func ApplyFile(basePath, patchPath, outputPath string) error {
	baseRaw, err := os.ReadFile(basePath)
	if err != nil {
		return fmt.Errorf("read preset: %w", err)
	}
	patchRaw, err := os.ReadFile(patchPath)
	if err != nil {
		return fmt.Errorf("read patch: %w", err)
	}
	// The document must be a JSON object so non-settings fields survive.
	// A bare `null` unmarshals into a nil map without error, so the nil
	// checks are load-bearing: a null patch would otherwise merge as
	// {"settings":null} and delete the settings object outright.
	var doc map[string]any
	if err := json.Unmarshal(baseRaw, &doc); err != nil {
		return &ParseError{Path: basePath, Err: err}
	}
	if doc == nil {
		return &ParseError{Path: basePath, Err: errors.New("document must be a JSON object")}
	}
	var overrides map[string]any
	if err := json.Unmarshal(patchRaw, &overrides); err != nil {
		return &ParseError{Path: patchPath, Err: err}
	}
	if overrides == nil {
		return &ParseError{Path: patchPath, Err: errors.New("patch must be a JSON object")}
	}
	// Patch values are scalars; null is not a parameter value, and letting it
	// through would delete the key from settings instead of assigning it.
	for name, value := range overrides {
		if value == nil {
			return &ParseError{Path: patchPath, Err: fmt.Errorf("null value for parameter %q", name)}
		}
	}
	patched, err := Apply(baseRaw, overrides)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, patched, "", "  "); err != nil {
		return fmt.Errorf("indent output: %w", err)
	}
	buf.WriteByte('\n')
	return writeAtomic(outputPath, buf.Bytes())
}

// writeAtomic stages the content in a temp file and renames it into place so
// a failure never leaves a partial output file behind.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
