// Package styles contains Lip Gloss style definitions.
package styles

import "github.com/charmbracelet/lipgloss"

var (
	// Semantic color names - Text hierarchy
	TextPrimaryColor   = lipgloss.AdaptiveColor{Light: "#1A1A1A", Dark: "#CCCCCC"} // Solved letters, main text
	TextSecondaryColor = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#BBBBBB"} // Cipher line, counts
	TextMutedColor     = lipgloss.AdaptiveColor{Light: "#999999", Dark: "#696969"} // Hints, help text, footers

	// Semantic color names - Status
	StatusSuccessColor = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"} // Win banner, correct guesses
	StatusWarningColor = lipgloss.AdaptiveColor{Light: "#FECA57", Dark: "#FECA57"} // Low token warning
	StatusErrorColor   = lipgloss.AdaptiveColor{Light: "#FF6B6B", Dark: "#FF8787"} // Loss banner, wrong guesses

	// Selection highlight for the staged cipher letter
	SelectionColor = lipgloss.AdaptiveColor{Light: "#54A0FF", Dark: "#54A0FF"}

	// Border color for panels and overlays
	BorderColor = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#696969"}
)

// Palette bundles the styles the game view renders with. Colors can be
// overridden from the config file; zero-value hex strings keep the defaults.
type Palette struct {
	CipherLetter   lipgloss.Style
	SolvedLetter   lipgloss.Style
	Placeholder    lipgloss.Style
	SelectedLetter lipgloss.Style
	Frequency      lipgloss.Style
	FrequencyZero  lipgloss.Style
	Tokens         lipgloss.Style
	TokensLow      lipgloss.Style
	WinBanner      lipgloss.Style
	LossBanner     lipgloss.Style
	Attribution    lipgloss.Style
	Footer         lipgloss.Style
	Panel          lipgloss.Style
}

// Overrides holds optional hex color overrides from configuration.
type Overrides struct {
	Highlight string
	Subtle    string
	Error     string
	Success   string
}

// NewPalette builds the game styles, applying any configured overrides.
func NewPalette(o Overrides) Palette {
	highlight := lipgloss.TerminalColor(SelectionColor)
	if o.Highlight != "" {
		highlight = lipgloss.Color(o.Highlight)
	}
	subtle := lipgloss.TerminalColor(TextMutedColor)
	if o.Subtle != "" {
		subtle = lipgloss.Color(o.Subtle)
	}
	errColor := lipgloss.TerminalColor(StatusErrorColor)
	if o.Error != "" {
		errColor = lipgloss.Color(o.Error)
	}
	success := lipgloss.TerminalColor(StatusSuccessColor)
	if o.Success != "" {
		success = lipgloss.Color(o.Success)
	}

	return Palette{
		CipherLetter:   lipgloss.NewStyle().Foreground(TextSecondaryColor),
		SolvedLetter:   lipgloss.NewStyle().Bold(true).Foreground(TextPrimaryColor),
		Placeholder:    lipgloss.NewStyle().Foreground(subtle),
		SelectedLetter: lipgloss.NewStyle().Bold(true).Foreground(highlight).Underline(true),
		Frequency:      lipgloss.NewStyle().Foreground(TextSecondaryColor),
		FrequencyZero:  lipgloss.NewStyle().Foreground(subtle).Strikethrough(true),
		Tokens:         lipgloss.NewStyle().Foreground(success),
		TokensLow:      lipgloss.NewStyle().Bold(true).Foreground(errColor),
		WinBanner:      lipgloss.NewStyle().Bold(true).Foreground(success),
		LossBanner:     lipgloss.NewStyle().Bold(true).Foreground(errColor),
		Attribution:    lipgloss.NewStyle().Italic(true).Foreground(subtle),
		Footer:         lipgloss.NewStyle().Foreground(subtle),
		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(BorderColor).
			Padding(1, 2),
	}
}
