package termsnap

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/font/gofont/gomono"
)

func TestLoadFontFromBytes(t *testing.T) {
	face, err := LoadFontFromBytes(gomono.TTF, 14)
	if err != nil {
		t.Fatalf("LoadFontFromBytes: %v", err)
	}
	defer face.Close()

	if h := face.Metrics().Height.Ceil(); h <= 0 {
		t.Errorf("height = %d, want > 0", h)
	}
	if _, ok := face.GlyphAdvance('M'); !ok {
		t.Error("no advance for M")
	}

	if _, err := LoadFontFromBytes([]byte("not a font"), 14); err == nil {
		t.Error("garbage parsed as a font")
	}
}

func TestLoadFont(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mono.ttf")
	if err := os.WriteFile(path, gomono.TTF, 0o644); err != nil {
		t.Fatal(err)
	}

	face, err := LoadFont(path, 12)
	if err != nil {
		t.Fatalf("LoadFont: %v", err)
	}
	face.Close()

	if _, err := LoadFont(filepath.Join(t.TempDir(), "missing.ttf"), 12); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file err = %v, want os.ErrNotExist", err)
	}
}

// mapFinder finds fonts in a fixed name to path map.
type mapFinder map[string]string

func (m mapFinder) Find(name string) (string, error) {
	if p, ok := m[name]; ok {
		return p, nil
	}
	return "", os.ErrNotExist
}

func TestFindFace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mono.ttf")
	if err := os.WriteFile(path, gomono.TTF, 0o644); err != nil {
		t.Fatal(err)
	}
	tf := FontByID("jetbrains-mono")

	if findFace(nil, tf, 14) != nil {
		t.Error("nil finder found a face")
	}
	if findFace(mapFinder{}, tf, 14) != nil {
		t.Error("empty finder found a face")
	}
	if findFace(mapFinder{"jetbrains-mono": path}, tf, 14) == nil {
		t.Error("face not found by id")
	}
	if findFace(mapFinder{"JetBrains Mono": path}, tf, 14) == nil {
		t.Error("face not found by name")
	}
}
