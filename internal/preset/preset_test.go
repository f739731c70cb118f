package preset

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultCatalog(t *testing.T) {
	c := Default()
	if n := len(c.All()); n != 5 {
		t.Fatalf("default presets = %d, want 5", n)
	}
	p, err := c.Lookup("scandi")
	if err != nil {
		t.Fatalf("Lookup(scandi) error = %v", err)
	}
	if p.Name != "Scandinavian" {
		t.Fatalf("Lookup(scandi).Name = %q", p.Name)
	}
	if _, err := c.Lookup("baroque"); !errors.Is(err, ErrUnknownPreset) {
		t.Fatalf("Lookup(baroque) error = %v, want ErrUnknownPreset", err)
	}
}

func TestAllReturnsCopy(t *testing.T) {
	c := Default()
	items := c.All()
	items[0].Prompt = "mutated"
	if p, _ := c.Lookup(items[0].ID); p.Prompt == "mutated" {
		t.Fatalf("All() exposed internal slice")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "presets.yaml")
	body := `presets:
  - id: coastal
    name: Coastal
    prompt: Redesign this room in Coastal style.
  - id: " farmhouse "
    name: Modern Farmhouse
    prompt: Redesign this room in Modern Farmhouse style.
    thumbnail: https://example.com/farm.png
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	c, err := LoadOrDefault(path)
	if err != nil {
		t.Fatalf("LoadOrDefault() error = %v", err)
	}
	if n := len(c.All()); n != 2 {
		t.Fatalf("loaded %d presets, want 2", n)
	}
	if _, err := c.Lookup("farmhouse"); err != nil {
		t.Fatalf("Lookup(farmhouse) error = %v", err)
	}
}

func TestNewRejectsInvalidCatalogs(t *testing.T) {
	cases := map[string][]Preset{
		"empty":     nil,
		"no prompt": {{ID: "a", Name: "A"}},
		"duplicate": {{ID: "a", Name: "A", Prompt: "p"}, {ID: "a", Name: "B", Prompt: "q"}},
	}
	for name, items := range cases {
		if _, err := New(items); err == nil {
			t.Fatalf("%s: New() error = nil", name)
		}
	}
}

func TestLoadOrDefaultWithoutPath(t *testing.T) {
	c, err := LoadOrDefault("  ")
	if err != nil {
		t.Fatalf("LoadOrDefault() error = %v", err)
	}
	if _, err := c.Lookup("japandi"); err != nil {
		t.Fatalf("default catalog missing japandi: %v", err)
	}
}
