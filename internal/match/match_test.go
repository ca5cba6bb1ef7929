package match

import (
	"os"
	"path/filepath"
	"testing"
)

func writePreview(t *testing.T, root string, rel string) string {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(full, []byte("RIFF"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return full
}

func TestMatch_ExactMirror(t *testing.T) {
	root := t.TempDir()
	want := writePreview(t, root, "PackA/Presets/Lead.wav")
	m := New(root, Config{})
	got, ok := m.Match("PackA/Presets/Lead.vital")
	if !ok || got != want {
		t.Fatalf("Match = %q, %v; want %q", got, ok, want)
	}
}

func TestMatch_ReservedSegmentDropped(t *testing.T) {
	root := t.TempDir()
	want := writePreview(t, root, "PackB/Bass.wav")
	m := New(root, Config{})
	got, ok := m.Match("PackB/Presets/Bass.vital")
	if !ok || got != want {
		t.Fatalf("Match = %q, %v; want %q", got, ok, want)
	}
}

func TestMatch_RootAliasAndReservedDropped(t *testing.T) {
	root := t.TempDir()
	want := writePreview(t, root, "PackA/Lead.wav")
	m := New(root, Config{})
	got, ok := m.Match("Jek's Vital Presets/PackA/Presets/Lead.vital")
	if !ok || got != want {
		t.Fatalf("Match = %q, %v; want %q", got, ok, want)
	}
}

func TestMatch_RootAliasOnly(t *testing.T) {
	root := t.TempDir()
	want := writePreview(t, root, "PackA/Lead.wav")
	m := New(root, Config{})
	got, ok := m.Match("JEKS VITAL PRESETS/PackA/Lead.vital")
	if !ok || got != want {
		t.Fatalf("Match = %q, %v; want %q", got, ok, want)
	}
}

func TestMatch_OrderPrefersExactMirror(t *testing.T) {
	root := t.TempDir()
	exact := writePreview(t, root, "PackA/Presets/Lead.wav")
	writePreview(t, root, "PackA/Lead.wav")
	m := New(root, Config{})
	got, ok := m.Match("PackA/Presets/Lead.vital")
	if !ok || got != exact {
		t.Fatalf("Match = %q, %v; want exact mirror %q", got, ok, exact)
	}
}

func TestMatch_CasePreservedInProbedPath(t *testing.T) {
	root := t.TempDir()
	// The reserved check is case-insensitive but the kept segments retain
	// their original casing.
	want := writePreview(t, root, "PackC/SubDir/Pluck.wav")
	m := New(root, Config{})
	got, ok := m.Match("PackC/PRESETS/SubDir/Pluck.vital")
	if !ok || got != want {
		t.Fatalf("Match = %q, %v; want %q", got, ok, want)
	}
}

func TestMatch_NoCandidate(t *testing.T) {
	root := t.TempDir()
	m := New(root, Config{})
	if got, ok := m.Match("PackC/Solo.vital"); ok {
		t.Fatalf("expected no match, got %q", got)
	}
}

func TestMatch_DirectoryIsNotAMatch(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "PackA", "Lead.wav"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	m := New(root, Config{})
	if got, ok := m.Match("PackA/Lead.vital"); ok {
		t.Fatalf("directory matched as preview: %q", got)
	}
}

func TestMatch_CustomConfig(t *testing.T) {
	root := t.TempDir()
	want := writePreview(t, root, "Bank1/Keys.ogg")
	m := New(root, Config{
		PresetExt:   ".fxp",
		PreviewExt:  ".ogg",
		Reserved:    "patches",
		RootAliases: []string{"factory library"},
	})
	got, ok := m.Match("Factory Library/Bank1/Patches/Keys.fxp")
	if !ok || got != want {
		t.Fatalf("Match = %q, %v; want %q", got, ok, want)
	}
}
