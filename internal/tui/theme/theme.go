// Package theme provides color themes for the timetable browser.
package theme

import (
	"embed"
	"fmt"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed embedded/*.toml
var embeddedThemes embed.FS

// DefaultName is used when no theme or an unknown theme is requested.
const DefaultName = "mocha"

// Theme holds all colors for a browser theme.
type Theme struct {
	Name         string `toml:"name"`
	Bg           string `toml:"bg"`           // Base background
	BgSelection  string `toml:"bg_selection"` // Cursor row
	Fg           string `toml:"fg"`           // Primary foreground
	FgMuted      string `toml:"fg_muted"`     // Times, ids, help
	Accent       string `toml:"accent"`       // Title, borders
	Session      string `toml:"session"`      // Session blocks
	Contribution string `toml:"contribution"` // Contributions
	Break        string `toml:"break"`        // Breaks
	Conflict     string `toml:"conflict"`     // Overlap markers, errors
	Marked       string `toml:"marked"`       // Entries picked for a swap

	// Optional, derived from the base colors when empty.
	Border    string `toml:"border"`
	Highlight string `toml:"highlight"`
}

// Load loads a theme by name from embedded files.
// Falls back to mocha if the theme is not found.
func Load(name string) (*Theme, error) {
	if name == "" {
		name = DefaultName
	}
	name = strings.ToLower(name)

	data, err := embeddedThemes.ReadFile("embedded/" + name + ".toml")
	if err != nil {
		if name != DefaultName {
			return Load(DefaultName)
		}
		return nil, fmt.Errorf("loading theme %q: %w", name, err)
	}

	var t Theme
	if err := toml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parsing theme %q: %w", name, err)
	}
	t.applyDefaults()

	return &t, nil
}

func (t *Theme) applyDefaults() {
	if t.Border == "" {
		t.Border = t.Accent
	}
	if t.Highlight == "" {
		t.Highlight = coalesce(t.BgSelection, t.Accent)
	}
	if t.Marked == "" {
		t.Marked = t.Accent
	}
}

func coalesce(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// Available returns a list of available theme names.
func Available() []string {
	return []string{"mocha", "macchiato", "frappe", "latte", "light"}
}

// IsAvailable reports whether a theme name is available.
func IsAvailable(name string) bool {
	return slices.Contains(Available(), strings.ToLower(name))
}
