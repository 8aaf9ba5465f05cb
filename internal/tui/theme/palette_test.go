package theme

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func darkTheme() *Theme {
	return &Theme{
		Bg:           "#101010",
		BgSelection:  "#303030",
		Fg:           "#ffffff",
		FgMuted:      "#aaaaaa",
		Accent:       "#ff0000",
		Border:       "#ff0000",
		Session:      "#4488ff",
		Contribution: "#44ff88",
		Break:        "#ffff44",
		Conflict:     "#ff4466",
		Marked:       "#ff8800",
	}
}

func TestNewPalette_RowBackgrounds(t *testing.T) {
	base := darkTheme()
	palette := NewPalette(base)

	if palette.Light {
		t.Fatal("dark theme detected as light")
	}
	if palette.SessionBg != lipgloss.Color(blendColors(base.Session, base.Bg, 0.70)) {
		t.Errorf("SessionBg = %q", palette.SessionBg)
	}
	if relativeLuminance(string(palette.ConflictBg)) >= relativeLuminance(base.Conflict) {
		t.Errorf("ConflictBg %q should be darker than %q", palette.ConflictBg, base.Conflict)
	}
}

func TestNewPalette_LightTheme(t *testing.T) {
	base := darkTheme()
	base.Bg = "#f5f5f5"
	base.Fg = "#222222"

	palette := NewPalette(base)
	if !palette.Light {
		t.Fatal("light theme not detected")
	}
	if relativeLuminance(string(palette.SessionBg)) <= relativeLuminance(base.Session) {
		t.Errorf("SessionBg %q should be lighter than %q", palette.SessionBg, base.Session)
	}
}

func TestNewPalette_NilLoadsDefault(t *testing.T) {
	palette := NewPalette(nil)
	want, err := Load(DefaultName)
	if err != nil {
		t.Fatal(err)
	}
	if palette.Bg != lipgloss.Color(want.Bg) {
		t.Errorf("Bg = %q, want %q", palette.Bg, want.Bg)
	}
}

func TestBlendColors(t *testing.T) {
	tests := []struct {
		a, b  string
		ratio float64
		want  string
	}{
		{"#000000", "#ffffff", 0, "#000000"},
		{"#000000", "#ffffff", 1, "#ffffff"},
		{"#000000", "#ffffff", 2, "#ffffff"},
		{"#000000", "#ff0080", 0.5, "#7f0040"},
		{"red", "#ffffff", 0.5, "red"},
	}
	for _, tc := range tests {
		if got := blendColors(tc.a, tc.b, tc.ratio); got != tc.want {
			t.Errorf("blendColors(%q, %q, %v) = %q, want %q", tc.a, tc.b, tc.ratio, got, tc.want)
		}
	}
}

func TestChooseTextColorPrefersContrast(t *testing.T) {
	bg := "#f0f0f0"
	lightText := "#ffffff"
	darkText := "#111111"

	if got := chooseTextColor(bg, lightText, darkText); got != darkText {
		t.Fatalf("chooseTextColor(%q, %q, %q) = %q, want %q", bg, lightText, darkText, got, darkText)
	}
}
