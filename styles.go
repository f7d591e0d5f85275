package main

import (
	"github.com/charmbracelet/lipgloss"

	"xenora/session"
)

type palette struct {
	text      lipgloss.Color
	muted     lipgloss.Color
	faint     lipgloss.Color
	accent    lipgloss.Color
	user      lipgloss.Color
	assistant lipgloss.Color
	failed    lipgloss.Color
	ok        lipgloss.Color
	border    lipgloss.Color
}

var palettes = map[session.Theme]palette{
	session.Light: {
		text:      lipgloss.Color("235"),
		muted:     lipgloss.Color("241"),
		faint:     lipgloss.Color("248"),
		accent:    lipgloss.Color("25"),
		user:      lipgloss.Color("24"),
		assistant: lipgloss.Color("90"),
		failed:    lipgloss.Color("160"),
		ok:        lipgloss.Color("28"),
		border:    lipgloss.Color("250"),
	},
	session.Dark: {
		text:      lipgloss.Color("252"),
		muted:     lipgloss.Color("245"),
		faint:     lipgloss.Color("239"),
		accent:    lipgloss.Color("81"),
		user:      lipgloss.Color("117"),
		assistant: lipgloss.Color("183"),
		failed:    lipgloss.Color("203"),
		ok:        lipgloss.Color("42"),
		border:    lipgloss.Color("238"),
	},
}

type styles struct {
	title     lipgloss.Style
	themeTag  lipgloss.Style
	user      lipgloss.Style
	assistant lipgloss.Style
	body      lipgloss.Style
	pending   lipgloss.Style
	failed    lipgloss.Style
	errBanner lipgloss.Style
	listening lipgloss.Style
	copied    lipgloss.Style
	busy      lipgloss.Style
	hint      lipgloss.Style
	hintOff   lipgloss.Style
	frame     lipgloss.Style
	notice    lipgloss.Style
}

func newStyles(theme session.Theme) styles {
	p, ok := palettes[theme]
	if !ok {
		p = palettes[session.Light]
	}
	return styles{
		title:     lipgloss.NewStyle().Foreground(p.accent).Bold(true),
		themeTag:  lipgloss.NewStyle().Foreground(p.faint),
		user:      lipgloss.NewStyle().Foreground(p.user).Bold(true),
		assistant: lipgloss.NewStyle().Foreground(p.assistant).Bold(true),
		body:      lipgloss.NewStyle().Foreground(p.text),
		pending:   lipgloss.NewStyle().Foreground(p.muted).Italic(true),
		failed:    lipgloss.NewStyle().Foreground(p.failed),
		errBanner: lipgloss.NewStyle().Foreground(p.failed).Bold(true),
		listening: lipgloss.NewStyle().Foreground(p.failed),
		copied:    lipgloss.NewStyle().Foreground(p.ok),
		busy:      lipgloss.NewStyle().Foreground(p.muted),
		hint:      lipgloss.NewStyle().Foreground(p.muted),
		hintOff:   lipgloss.NewStyle().Foreground(p.faint).Strikethrough(true),
		frame: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.border).
			Padding(0, 1),
		notice: lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(p.failed).
			Foreground(p.text).
			Padding(1, 3),
	}
}
