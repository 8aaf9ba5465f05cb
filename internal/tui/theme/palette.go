package theme

import (
	"math"
	"strconv"

	"github.com/charmbracelet/lipgloss"
)

// Palette holds precomputed colors derived from a Theme.
type Palette struct {
	Bg           lipgloss.Color
	BgSelection  lipgloss.Color
	Fg           lipgloss.Color
	FgMuted      lipgloss.Color
	Accent       lipgloss.Color
	Border       lipgloss.Color
	Session      lipgloss.Color
	Contribution lipgloss.Color
	Break        lipgloss.Color
	Conflict     lipgloss.Color
	Marked       lipgloss.Color

	// Row backgrounds for session blocks and conflicting entries.
	SessionBg  lipgloss.Color
	ConflictBg lipgloss.Color

	TextOnAccent   lipgloss.Color
	TextOnConflict lipgloss.Color
	TextOnMarked   lipgloss.Color

	Light bool
}

// NewPalette derives a Palette from the provided Theme.
func NewPalette(t *Theme) *Palette {
	if t == nil {
		t, _ = Load(DefaultName)
	}

	light := isLightTheme(t.Bg)
	return &Palette{
		Bg:           lipgloss.Color(t.Bg),
		BgSelection:  lipgloss.Color(t.BgSelection),
		Fg:           lipgloss.Color(t.Fg),
		FgMuted:      lipgloss.Color(t.FgMuted),
		Accent:       lipgloss.Color(t.Accent),
		Border:       lipgloss.Color(t.Border),
		Session:      lipgloss.Color(t.Session),
		Contribution: lipgloss.Color(t.Contribution),
		Break:        lipgloss.Color(t.Break),
		Conflict:     lipgloss.Color(t.Conflict),
		Marked:       lipgloss.Color(t.Marked),

		SessionBg:  lipgloss.Color(rowBg(t.Session, t.Bg, light)),
		ConflictBg: lipgloss.Color(rowBg(t.Conflict, t.Bg, light)),

		TextOnAccent:   lipgloss.Color(chooseTextColor(t.Accent, t.Bg, t.Fg)),
		TextOnConflict: lipgloss.Color(chooseTextColor(t.Conflict, t.Bg, t.Fg)),
		TextOnMarked:   lipgloss.Color(chooseTextColor(t.Marked, t.Bg, t.Fg)),

		Light: light,
	}
}

func isLightTheme(bg string) bool {
	return relativeLuminance(bg) > 0.55
}

// rowBg tints the background towards an accent, lighter on light themes.
func rowBg(accent, bg string, light bool) string {
	if light {
		return blendColors(accent, bg, 0.80)
	}
	return blendColors(accent, bg, 0.70)
}

type rgb struct{ r, g, b int }

func parseColor(hex string) (rgb, bool) {
	if len(hex) != 7 || hex[0] != '#' {
		return rgb{}, false
	}
	v, err := strconv.ParseUint(hex[1:], 16, 32)
	if err != nil {
		return rgb{}, false
	}
	return rgb{int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff)}, true
}

func (c rgb) hex() string {
	const digits = "0123456789abcdef"
	return string([]byte{'#',
		digits[c.r>>4], digits[c.r&0xf],
		digits[c.g>>4], digits[c.g&0xf],
		digits[c.b>>4], digits[c.b&0xf],
	})
}

func chooseTextColor(bg, lightText, darkText string) string {
	if contrastRatio(bg, lightText) >= contrastRatio(bg, darkText) {
		return lightText
	}
	return darkText
}

func contrastRatio(a, b string) float64 {
	l1 := relativeLuminance(a)
	l2 := relativeLuminance(b)
	if l1 < l2 {
		l1, l2 = l2, l1
	}
	return (l1 + 0.05) / (l2 + 0.05)
}

func relativeLuminance(hex string) float64 {
	c, ok := parseColor(hex)
	if !ok {
		return 0
	}
	return 0.2126*srgbToLinear(c.r) + 0.7152*srgbToLinear(c.g) + 0.0722*srgbToLinear(c.b)
}

func srgbToLinear(c int) float64 {
	v := float64(c) / 255.0
	if v <= 0.04045 {
		return v / 12.92
	}
	return math.Pow((v+0.055)/1.055, 2.4)
}

// blendColors mixes a towards b; ratio 0 is a, 1 is b.
func blendColors(a, b string, ratio float64) string {
	ca, okA := parseColor(a)
	cb, okB := parseColor(b)
	if !okA || !okB {
		return a
	}
	ratio = math.Max(0, math.Min(1, ratio))
	mix := func(x, y int) int {
		return int(float64(x)*(1-ratio) + float64(y)*ratio)
	}
	return rgb{mix(ca.r, cb.r), mix(ca.g, cb.g), mix(ca.b, cb.b)}.hex()
}
