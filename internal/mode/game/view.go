package game

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/zjrosen/ciphergram/internal/ui/markdown"
)

const minContentWidth = 20

// helpText is the rules overlay, rendered as markdown.
const helpText = `# How to play

Every letter in the quote has been swapped for another. Crack the
substitution to reveal the quote before you run out of tokens.

## Keys

- **a-z**: first press picks a coded letter, second press guesses
  what it stands for
- **tab**: cycle the picked letter through the unsolved ones
- **esc**: clear the pick
- **ctrl+g**: reveal a random letter (costs a token)
- **ctrl+n**: new game
- **ctrl+c**: quit

Wrong guesses and hints both spend a token. Solve every letter to win.
`

// View renders the game screen.
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	switch m.view {
	case ViewHelp:
		return m.renderHelp()
	case ViewQuitConfirm:
		return m.renderQuitConfirm()
	}

	if !m.haveGame {
		return m.palette.Footer.Render("Shuffling letters...")
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")
	b.WriteString(m.renderPuzzle())
	b.WriteString("\n")

	if m.showFrequency && !m.snap.IsOver() {
		b.WriteString(m.renderFrequency())
		b.WriteString("\n")
	}

	b.WriteString(m.renderStatus())
	b.WriteString("\n")

	if m.snap.IsOver() {
		b.WriteString(m.renderOutcome())
		b.WriteString("\n")
	} else if m.flash != "" {
		b.WriteString(m.palette.Footer.Render(m.flash))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.renderFooter())

	return m.palette.Panel.Width(m.contentWidth() + 4).Render(b.String())
}

func (m Model) contentWidth() int {
	w := m.width - 8
	if w < minContentWidth {
		w = minContentWidth
	}
	return w
}

func (m Model) renderHeader() string {
	title := lipgloss.NewStyle().Bold(true).Render("CIPHERGRAM")
	diff := m.palette.Footer.Render(strings.ToUpper(string(m.snap.Difficulty)))
	return title + "  " + diff
}

// renderPuzzle draws the word-wrapped cipher text with the partially solved
// line above it. The two lines stay column-aligned so each guess sits directly
// over its coded letter.
func (m Model) renderPuzzle() string {
	lines := wrapAligned(m.snap.CipherText, m.snap.DisplayText, m.contentWidth())

	var b strings.Builder
	for i, pair := range lines {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(m.renderDisplayLine(pair.display, pair.cipher))
		b.WriteString("\n")
		b.WriteString(m.renderCipherLine(pair.cipher))
		b.WriteString("\n")
	}
	return b.String()
}

// linePair is one wrapped row of the puzzle.
type linePair struct {
	cipher  string
	display string
}

// wrapAligned word-wraps the cipher text and slices the display text into the
// same segments, keeping the two lines aligned by index.
func wrapAligned(cipherText, displayText string, width int) []linePair {
	wrapped := wordwrap.String(cipherText, width)

	var pairs []linePair
	pos := 0
	for _, line := range strings.Split(wrapped, "\n") {
		// Skip the characters the wrapper consumed as the break
		for pos < len(cipherText) && cipherText[pos] == ' ' && !strings.HasPrefix(cipherText[pos:], line) {
			pos++
		}
		end := pos + len(line)
		if end > len(displayText) {
			end = len(displayText)
		}
		pairs = append(pairs, linePair{
			cipher:  line,
			display: displayText[pos:end],
		})
		pos = end
	}
	return pairs
}

func (m Model) renderDisplayLine(display, cipher string) string {
	var b strings.Builder
	for i := 0; i < len(display); i++ {
		ch := display[i]
		switch {
		case ch == '_':
			b.WriteString(m.palette.Placeholder.Render("_"))
		case i < len(cipher) && isUpper(cipher[i]) && cipher[i] == m.snap.Selected:
			b.WriteString(m.palette.SelectedLetter.Render(string(ch)))
		case i < len(cipher) && isUpper(cipher[i]):
			b.WriteString(m.palette.SolvedLetter.Render(string(ch)))
		default:
			b.WriteString(string(ch))
		}
	}
	return b.String()
}

func (m Model) renderCipherLine(cipher string) string {
	var b strings.Builder
	for i := 0; i < len(cipher); i++ {
		ch := cipher[i]
		switch {
		case isUpper(ch) && ch == m.snap.Selected:
			b.WriteString(m.palette.SelectedLetter.Render(string(ch)))
		case isUpper(ch):
			b.WriteString(m.palette.CipherLetter.Render(string(ch)))
		default:
			b.WriteString(string(ch))
		}
	}
	return b.String()
}

// renderFrequency shows how often each coded letter appears, the classic
// cryptogram solving aid. Solved letters are struck through.
func (m Model) renderFrequency() string {
	var parts []string
	for c := byte('A'); c <= 'Z'; c++ {
		count, present := m.snap.Frequency[c]
		if !present {
			continue
		}
		cell := fmt.Sprintf("%c%d", c, count)
		if _, solved := m.snap.Guessed[c]; solved {
			parts = append(parts, m.palette.FrequencyZero.Render(cell))
		} else if c == m.snap.Selected {
			parts = append(parts, m.palette.SelectedLetter.Render(cell))
		} else {
			parts = append(parts, m.palette.Frequency.Render(cell))
		}
	}
	return wordwrap.String(strings.Join(parts, " "), m.contentWidth())
}

func (m Model) renderStatus() string {
	tokens := m.renderTokens()

	var parts []string
	parts = append(parts, tokens)

	if sel := m.snap.Selected; sel != 0 {
		parts = append(parts, m.palette.SelectedLetter.Render(string(sel))+
			m.palette.Footer.Render(" = ?"))
	}

	if m.showTimer {
		elapsed := m.now.Sub(m.snap.StartedAt)
		if m.snap.IsOver() {
			elapsed = m.snap.Elapsed
		}
		if elapsed < 0 {
			elapsed = 0
		}
		parts = append(parts, m.palette.Footer.Render(
			fmt.Sprintf("%02d:%02d", int(elapsed.Minutes()), int(elapsed.Seconds())%60)))
	}

	return strings.Join(parts, "   ")
}

// renderTokens draws the remaining mistake budget as filled and spent pips.
func (m Model) renderTokens() string {
	remaining := m.snap.Remaining
	spent := m.snap.MaxMistakes - remaining

	style := m.palette.Tokens
	if remaining <= 1 {
		style = m.palette.TokensLow
	}
	return style.Render(strings.Repeat("●", remaining)) +
		m.palette.Footer.Render(strings.Repeat("○", spent))
}

func (m Model) renderOutcome() string {
	if m.snap.Won {
		banner := m.palette.WinBanner.Render("SOLVED!")
		score := fmt.Sprintf("Score: %d", m.snap.FinalScore)
		attribution := ""
		if m.snap.Author != "" {
			attribution = "\n" + m.palette.Attribution.Render("— "+m.snap.Author)
		}
		return fmt.Sprintf("%s  %s%s\n%s", banner, score, attribution,
			m.palette.Footer.Render("ctrl+n for another round"))
	}

	banner := m.palette.LossBanner.Render("OUT OF TOKENS")
	solution := wordwrap.String(m.snap.SourceText, m.contentWidth())
	attribution := ""
	if m.snap.Author != "" {
		attribution = "\n" + m.palette.Attribution.Render("— "+m.snap.Author)
	}
	return fmt.Sprintf("%s\n%s%s\n%s", banner, solution, attribution,
		m.palette.Footer.Render("ctrl+n to try another"))
}

func (m Model) renderFooter() string {
	bindings := []string{
		m.keys.Hint.Help().Key + " hint",
		m.keys.NewGame.Help().Key + " new",
		m.keys.Help.Help().Key + " help",
		m.keys.Quit.Help().Key + " quit",
	}
	return m.palette.Footer.Render(strings.Join(bindings, " · "))
}

func (m Model) renderHelp() string {
	width := m.contentWidth()
	renderer, err := markdown.New(width)
	if err != nil {
		return helpText
	}
	rendered, err := renderer.Render(helpText)
	if err != nil {
		return helpText
	}
	return m.palette.Panel.Width(width + 4).Render(
		rendered + "\n" + m.palette.Footer.Render("press any key to close"))
}

func (m Model) renderQuitConfirm() string {
	prompt := "Quit mid-game? Progress is saved.\n\n" +
		m.palette.Footer.Render("y to quit · any other key to keep playing")
	return m.palette.Panel.Render(prompt)
}

func isUpper(b byte) bool {
	return b >= 'A' && b <= 'Z'
}
