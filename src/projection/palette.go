package projection

import "stock-dashboard/src/store"

// Chart palette.
const (
	ColorPositive = "#10b981"
	ColorNegative = "#ef4444"
	ColorPrimary  = "#3b82f6"

	// Appended to a color for the translucent area fill.
	fillAlpha = "20"
)

type themeColors struct {
	text string
	grid string
}

var themes = map[string]themeColors{
	store.ThemeDark:  {text: "#94a3b8", grid: "#2d374840"},
	store.ThemeLight: {text: "#475569", grid: "#e2e8f080"},
}

func colorsFor(theme string) themeColors {
	if c, ok := themes[theme]; ok {
		return c
	}
	return themes[store.ThemeDark]
}
