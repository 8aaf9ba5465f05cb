package theme

import (
	"slices"
	"strings"
	"testing"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "mocha", want: "mocha"},
		{in: "macchiato", want: "macchiato"},
		{in: "frappe", want: "frappe"},
		{in: "latte", want: "latte"},
		{in: "light", want: "light"},
		{in: "", want: DefaultName},
		{in: "solarized", want: DefaultName}, // unknown names fall back
	}

	for _, tt := range tests {
		t.Run("theme "+tt.in, func(t *testing.T) {
			theme, err := Load(tt.in)
			if err != nil {
				t.Fatalf("Load(%q) unexpected error: %v", tt.in, err)
			}
			if theme.Name != tt.want {
				t.Errorf("Load(%q).Name = %q, want %q", tt.in, theme.Name, tt.want)
			}
		})
	}
}

func TestLoad_ThemeColors(t *testing.T) {
	for _, name := range Available() {
		t.Run(name, func(t *testing.T) {
			theme, err := Load(name)
			if err != nil {
				t.Fatalf("Load(%q) unexpected error: %v", name, err)
			}

			colors := map[string]string{
				"Bg":           theme.Bg,
				"BgSelection":  theme.BgSelection,
				"Fg":           theme.Fg,
				"FgMuted":      theme.FgMuted,
				"Accent":       theme.Accent,
				"Session":      theme.Session,
				"Contribution": theme.Contribution,
				"Break":        theme.Break,
				"Conflict":     theme.Conflict,
				"Marked":       theme.Marked,
				"Border":       theme.Border,
				"Highlight":    theme.Highlight,
			}
			for field, hex := range colors {
				if _, ok := parseColor(hex); !ok {
					t.Errorf("theme.%s = %q, want #rrggbb", field, hex)
				}
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	theme := &Theme{Accent: "#cba6f7", BgSelection: "#45475a"}
	theme.applyDefaults()

	if theme.Border != theme.Accent {
		t.Errorf("Border = %q, want accent", theme.Border)
	}
	if theme.Highlight != theme.BgSelection {
		t.Errorf("Highlight = %q, want selection", theme.Highlight)
	}
	if theme.Marked != theme.Accent {
		t.Errorf("Marked = %q, want accent", theme.Marked)
	}
}

func TestAvailable(t *testing.T) {
	want := []string{"mocha", "macchiato", "frappe", "latte", "light"}
	if got := Available(); !slices.Equal(got, want) {
		t.Errorf("Available() = %v, want %v", got, want)
	}

	// Every listed theme must be embedded.
	for _, name := range Available() {
		data, err := embeddedThemes.ReadFile("embedded/" + name + ".toml")
		if err != nil {
			t.Errorf("theme %s is not embedded: %v", name, err)
			continue
		}
		if !strings.Contains(string(data), `name = "`+name+`"`) {
			t.Errorf("embedded/%s.toml does not declare its name", name)
		}
	}
}

func TestIsAvailable(t *testing.T) {
	tests := []struct {
		name     string
		theme    string
		expected bool
	}{
		{name: "exact match", theme: "mocha", expected: true},
		{name: "case insensitive", theme: "Mocha", expected: true},
		{name: "missing theme", theme: "unknown", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsAvailable(tt.theme); got != tt.expected {
				t.Errorf("IsAvailable(%q) = %t, want %t", tt.theme, got, tt.expected)
			}
		})
	}
}
