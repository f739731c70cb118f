// Package preset holds the read-only catalog of design style presets.
package preset

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

var ErrUnknownPreset = errors.New("preset: unknown style preset")

type Preset struct {
	ID        string `yaml:"id" json:"id"`
	Name      string `yaml:"name" json:"name"`
	Prompt    string `yaml:"prompt" json:"prompt"`
	Thumbnail string `yaml:"thumbnail" json:"thumbnail"`
}

// Catalog is immutable after construction.
type Catalog struct {
	items []Preset
	byID  map[string]int
}

var defaults = []Preset{
	{
		ID:        "modern",
		Name:      "Mid-Century Modern",
		Prompt:    "Redesign this room in Mid-Century Modern style. Teak wood furniture, organic curves, clean lines, olive green and mustard accents.",
		Thumbnail: "https://picsum.photos/id/101/100/100",
	},
	{
		ID:        "scandi",
		Name:      "Scandinavian",
		Prompt:    "Redesign this room in Scandinavian style. Minimalist, functional, bright white walls, light wood floors, cozy textures, clutter-free.",
		Thumbnail: "https://picsum.photos/id/201/100/100",
	},
	{
		ID:        "industrial",
		Name:      "Industrial",
		Prompt:    "Redesign this room in Industrial style. Exposed brick, metal fixtures, raw wood, leather furniture, neutral tones, loft aesthetic.",
		Thumbnail: "https://picsum.photos/id/301/100/100",
	},
	{
		ID:        "boho",
		Name:      "Bohemian",
		Prompt:    "Redesign this room in Bohemian style. Eclectic patterns, many plants, rattan furniture, layered rugs, warm earthy colors, relaxed vibe.",
		Thumbnail: "https://picsum.photos/id/401/100/100",
	},
	{
		ID:        "japandi",
		Name:      "Japandi",
		Prompt:    "Redesign this room in Japandi style. Hybrid of Japanese rustic minimalism and Scandinavian functionality. Natural materials, muted colors, clean lines.",
		Thumbnail: "https://picsum.photos/id/501/100/100",
	},
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, _ := New(defaults)
	return c
}

// New validates items: ids must be unique and id, name and prompt non-empty.
func New(items []Preset) (*Catalog, error) {
	c := &Catalog{
		items: make([]Preset, 0, len(items)),
		byID:  make(map[string]int, len(items)),
	}
	for i, p := range items {
		p.ID = strings.TrimSpace(p.ID)
		p.Name = strings.TrimSpace(p.Name)
		p.Prompt = strings.TrimSpace(p.Prompt)
		p.Thumbnail = strings.TrimSpace(p.Thumbnail)
		if p.ID == "" || p.Name == "" || p.Prompt == "" {
			return nil, fmt.Errorf("preset %d: id, name and prompt are required", i)
		}
		if _, dup := c.byID[p.ID]; dup {
			return nil, fmt.Errorf("preset %d: duplicate id %q", i, p.ID)
		}
		c.byID[p.ID] = len(c.items)
		c.items = append(c.items, p)
	}
	if len(c.items) == 0 {
		return nil, errors.New("preset catalog is empty")
	}
	return c, nil
}

type fileCatalog struct {
	Presets []Preset `yaml:"presets"`
}

// LoadFile reads a YAML catalog of the form `presets: [{id, name, prompt, thumbnail}]`.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read presets: %w", err)
	}
	var fc fileCatalog
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse presets: %w", err)
	}
	return New(fc.Presets)
}

// LoadOrDefault uses path when set, otherwise the built-in catalog.
func LoadOrDefault(path string) (*Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

func (c *Catalog) All() []Preset {
	return append([]Preset(nil), c.items...)
}

func (c *Catalog) Lookup(id string) (Preset, error) {
	idx, ok := c.byID[strings.TrimSpace(id)]
	if !ok {
		return Preset{}, fmt.Errorf("%w: %q", ErrUnknownPreset, id)
	}
	return c.items[idx], nil
}
