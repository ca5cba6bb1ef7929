// Package assetid derives stable identifiers for preset assets from their
// tree-relative paths. The identifier is a name-based UUID, so the same
// path produces the same identifier on every run and every machine.
package assetid

import (
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"
)

// Namespace is the fixed UUIDv5 namespace for asset identifiers. Changing it
// would re-key every published asset.
var Namespace = uuid.NameSpaceURL

// FromPath returns the identifier for the asset at rel, a path relative to
// the preset root. The path is normalized to clean forward-slash form before
// hashing; malformed paths (empty, absolute, escaping the root) fail.
func FromPath(rel string) (uuid.UUID, error) {
	norm, err := Normalize(rel)
	if err != nil {
		return uuid.UUID{}, err
	}
	return uuid.NewSHA1(Namespace, []byte(norm)), nil
}

// Normalize validates rel and rewrites it to clean forward-slash form.
func Normalize(rel string) (string, error) {
	if strings.TrimSpace(rel) == "" {
		return "", fmt.Errorf("assetid: empty path")
	}
	slashed := strings.ReplaceAll(rel, "\\", "/")
	if strings.HasPrefix(slashed, "/") {
		return "", fmt.Errorf("assetid: absolute path %q", rel)
	}
	clean := path.Clean(slashed)
	if clean == "." {
		return "", fmt.Errorf("assetid: empty path %q", rel)
	}
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("assetid: path %q escapes root", rel)
	}
	return clean, nil
}
