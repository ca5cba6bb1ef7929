// Package match resolves the audio preview belonging to a preset file.
//
// Preview trees are commonly flattened relative to the preset tree: the
// branded root folder and nested "Presets" folders are dropped. The matcher
// probes a fixed, ordered list of path variants and returns the first one
// that exists on disk.
package match

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	// DefaultPresetExt is the preset file extension probed by default.
	DefaultPresetExt = ".vital"
	// DefaultPreviewExt is the preview file extension substituted by default.
	DefaultPreviewExt = ".wav"

	defaultReserved = "presets"
)

// DefaultRootAliases are first-segment folder names treated as the branded
// root of a preset pack collection. Comparison is case-insensitive.
var DefaultRootAliases = []string{"jek's vital presets", "jeks vital presets"}

// Config controls candidate generation. Zero values fall back to the
// defaults used by the seed data layout.
type Config struct {
	PresetExt   string
	PreviewExt  string
	Reserved    string   // segment name dropped in flattened variants
	RootAliases []string // first-segment names treated as the branded root
}

// Matcher probes an on-disk preview tree for the preview belonging to a
// preset path.
type Matcher struct {
	root        string
	presetExt   string
	previewExt  string
	reserved    string
	rootAliases map[string]struct{}
}

// New returns a Matcher over the preview tree rooted at previewRoot.
func New(previewRoot string, cfg Config) *Matcher {
	if cfg.PresetExt == "" {
		cfg.PresetExt = DefaultPresetExt
	}
	if cfg.PreviewExt == "" {
		cfg.PreviewExt = DefaultPreviewExt
	}
	if cfg.Reserved == "" {
		cfg.Reserved = defaultReserved
	}
	if cfg.RootAliases == nil {
		cfg.RootAliases = DefaultRootAliases
	}
	aliases := make(map[string]struct{}, len(cfg.RootAliases))
	for _, alias := range cfg.RootAliases {
		aliases[strings.ToLower(alias)] = struct{}{}
	}
	return &Matcher{
		root:        previewRoot,
		presetExt:   cfg.PresetExt,
		previewExt:  cfg.PreviewExt,
		reserved:    strings.ToLower(cfg.Reserved),
		rootAliases: aliases,
	}
}

// Match returns the on-disk preview path for the preset at rel, a
// forward-slash path relative to the preset root. The boolean is false when
// no candidate exists; that is a normal outcome, not an error.
func (m *Matcher) Match(rel string) (string, bool) {
	segments := strings.Split(filepath.ToSlash(rel), "/")
	for _, transform := range m.transforms() {
		variant, ok := transform(segments)
		if !ok {
			continue
		}
		candidate := m.candidatePath(variant)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
	}
	return "", false
}

// transforms is the ordered list of pure segment rewrites. Each is probed in
// turn; the first existing candidate wins.
func (m *Matcher) transforms() []func([]string) ([]string, bool) {
	return []func([]string) ([]string, bool){
		// Exact mirror.
		func(segs []string) ([]string, bool) { return segs, true },
		// Mirror with reserved folder segments dropped.
		func(segs []string) ([]string, bool) { return m.dropReserved(segs), true },
		// Branded root folder dropped.
		func(segs []string) ([]string, bool) { return m.dropRootAlias(segs) },
		// Branded root folder and reserved segments dropped.
		func(segs []string) ([]string, bool) {
			rest, ok := m.dropRootAlias(segs)
			if !ok {
				return nil, false
			}
			return m.dropReserved(rest), true
		},
	}
}

func (m *Matcher) dropReserved(segs []string) []string {
	out := make([]string, 0, len(segs))
	for _, seg := range segs {
		if strings.ToLower(seg) == m.reserved {
			continue
		}
		out = append(out, seg)
	}
	return out
}

func (m *Matcher) dropRootAlias(segs []string) ([]string, bool) {
	if len(segs) == 0 {
		return nil, false
	}
	if _, ok := m.rootAliases[strings.ToLower(segs[0])]; !ok {
		return nil, false
	}
	return segs[1:], true
}

// candidatePath joins the variant segments under the preview root and swaps
// the preset extension for the preview extension. Original segment casing is
// preserved.
func (m *Matcher) candidatePath(segs []string) string {
	if len(segs) == 0 {
		return ""
	}
	joined := make([]string, 0, len(segs)+1)
	joined = append(joined, m.root)
	joined = append(joined, segs[:len(segs)-1]...)
	last := segs[len(segs)-1]
	if ext := filepath.Ext(last); strings.EqualFold(ext, m.presetExt) {
		last = last[:len(last)-len(ext)]
	}
	joined = append(joined, last+m.previewExt)
	return filepath.Join(joined...)
}
