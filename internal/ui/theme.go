package ui

import (
	"sort"

	"github.com/charmbracelet/lipgloss"
)

const defaultTheme = "bubblegum"

type palette struct {
	Text      lipgloss.Color
	Muted     lipgloss.Color
	Accent    lipgloss.Color
	AccentAlt lipgloss.Color
	Border    lipgloss.Color
	Success   lipgloss.Color
	Warning   lipgloss.Color
	BarFill   lipgloss.Color
	BarEmpty  lipgloss.Color
}

var palettes = map[string]palette{
	"bubblegum": {
		Text:      lipgloss.Color("#4a2c5a"),
		Muted:     lipgloss.Color("#9b7bb0"),
		Accent:    lipgloss.Color("#d946ef"),
		AccentAlt: lipgloss.Color("#f472b6"),
		Border:    lipgloss.Color("#c4b5fd"),
		Success:   lipgloss.Color("#22c55e"),
		Warning:   lipgloss.Color("#f97316"),
		BarFill:   lipgloss.Color("#a855f7"),
		BarEmpty:  lipgloss.Color("#e9d5ff"),
	},
	"ocean": {
		Text:      lipgloss.Color("#e0f2fe"),
		Muted:     lipgloss.Color("#7dd3fc"),
		Accent:    lipgloss.Color("#38bdf8"),
		AccentAlt: lipgloss.Color("#818cf8"),
		Border:    lipgloss.Color("#0369a1"),
		Success:   lipgloss.Color("#2dd4bf"),
		Warning:   lipgloss.Color("#fbbf24"),
		BarFill:   lipgloss.Color("#2dd4bf"),
		BarEmpty:  lipgloss.Color("#0c4a6e"),
	},
	"sunshine": {
		Text:      lipgloss.Color("#78350f"),
		Muted:     lipgloss.Color("#b45309"),
		Accent:    lipgloss.Color("#f59e0b"),
		AccentAlt: lipgloss.Color("#ef4444"),
		Border:    lipgloss.Color("#fcd34d"),
		Success:   lipgloss.Color("#65a30d"),
		Warning:   lipgloss.Color("#dc2626"),
		BarFill:   lipgloss.Color("#fb923c"),
		BarEmpty:  lipgloss.Color("#fef3c7"),
	},
	"forest": {
		Text:      lipgloss.Color("#ecfccb"),
		Muted:     lipgloss.Color("#a3e635"),
		Accent:    lipgloss.Color("#84cc16"),
		AccentAlt: lipgloss.Color("#facc15"),
		Border:    lipgloss.Color("#3f6212"),
		Success:   lipgloss.Color("#4ade80"),
		Warning:   lipgloss.Color("#fb7185"),
		BarFill:   lipgloss.Color("#4ade80"),
		BarEmpty:  lipgloss.Color("#1a2e05"),
	},
}

func paletteFor(name string) palette {
	if p, ok := palettes[name]; ok {
		return p
	}
	return palettes[defaultTheme]
}

// ThemeNames lists the available themes, sorted.
func ThemeNames() []string {
	names := make([]string, 0, len(palettes))
	for k := range palettes {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func nextThemeName(current string, step int) string {
	names := ThemeNames()
	if len(names) == 0 {
		return current
	}
	idx := 0
	for i, name := range names {
		if name == current {
			idx = i
			break
		}
	}
	idx = (idx + step) % len(names)
	if idx < 0 {
		idx += len(names)
	}
	return names[idx]
}
