// Package game implements the Bubble Tea controller for playing a cryptogram.
package game

import (
	"context"
	"sort"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	enginegame "github.com/zjrosen/ciphergram/internal/game"
	"github.com/zjrosen/ciphergram/internal/keys"
	"github.com/zjrosen/ciphergram/internal/log"
	"github.com/zjrosen/ciphergram/internal/puzzle"
	"github.com/zjrosen/ciphergram/internal/ui/styles"
)

// ViewMode represents overlay states within the game.
type ViewMode int

const (
	ViewPlay ViewMode = iota
	ViewHelp
	ViewQuitConfirm
)

// tickMsg drives the on-screen timer.
type tickMsg time.Time

// Options configures the game model.
type Options struct {
	Service    *enginegame.Service
	Difficulty puzzle.Difficulty
	Resume     bool

	ShowFrequency bool
	ShowTimer     bool
	Palette       styles.Palette
}

// Model holds the game screen state.
type Model struct {
	svc        *enginegame.Service
	keys       keys.KeyMap
	palette    styles.Palette
	difficulty puzzle.Difficulty

	snap     enginegame.Snapshot
	haveGame bool
	resume   bool

	// flash is a one-line status message cleared on the next action.
	flash string

	view ViewMode

	showFrequency bool
	showTimer     bool
	now           time.Time

	width  int
	height int
}

// New creates the game screen.
func New(opts Options) Model {
	return Model{
		svc:           opts.Service,
		keys:          keys.DefaultKeyMap(),
		palette:       opts.Palette,
		difficulty:    opts.Difficulty,
		resume:        opts.Resume,
		showFrequency: opts.ShowFrequency,
		showTimer:     opts.ShowTimer,
		now:           time.Now(),
	}
}

// Init starts or resumes a game and kicks off the timer.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.startGame(), tick())
}

// startGame resolves the initial session: resume when asked and possible,
// otherwise a fresh game at the configured difficulty.
func (m Model) startGame() tea.Cmd {
	svc := m.svc
	difficulty := m.difficulty
	resume := m.resume
	return func() tea.Msg {
		if resume {
			snap, err := svc.Resume(context.Background())
			if err == nil {
				return gameStartedMsg{snap: snap, resumed: true}
			}
			log.Warn(log.CatUI, "Nothing to resume, starting fresh", "error", err.Error())
		}
		snap, err := svc.NewGame(context.Background(), difficulty)
		if err != nil {
			return gameErrorMsg{err: err}
		}
		return gameStartedMsg{snap: snap}
	}
}

// gameStartedMsg delivers the initial snapshot.
type gameStartedMsg struct {
	snap    enginegame.Snapshot
	resumed bool
}

// gameErrorMsg reports a failure to start a game.
type gameErrorMsg struct {
	err error
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update handles messages and returns the updated model and commands.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case gameStartedMsg:
		m.snap = msg.snap
		m.haveGame = true
		if msg.resumed {
			m.flash = "Welcome back."
		}
		return m, nil

	case gameErrorMsg:
		m.flash = "Could not start a game: " + msg.err.Error()
		return m, nil

	case tickMsg:
		m.now = time.Time(msg)
		return m, tick()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.view {
	case ViewHelp:
		// Any key closes the help overlay
		m.view = ViewPlay
		return m, nil

	case ViewQuitConfirm:
		switch msg.String() {
		case "y", "enter":
			return m, tea.Quit
		default:
			m.view = ViewPlay
			return m, nil
		}
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		if m.haveGame && !m.snap.IsOver() {
			m.view = ViewQuitConfirm
			return m, nil
		}
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.view = ViewHelp
		return m, nil

	case key.Matches(msg, m.keys.NewGame):
		m.flash = ""
		m.resume = false
		return m, m.startGame()

	case key.Matches(msg, m.keys.Escape):
		if m.haveGame {
			m.snap = m.svc.ClearSelection()
		}
		return m, nil

	case key.Matches(msg, m.keys.Hint):
		return m.requestHint()

	case key.Matches(msg, m.keys.Reveal):
		return m.cycleSelection()
	}

	if letter, ok := letterKey(msg); ok {
		return m.handleLetter(letter)
	}
	return m, nil
}

// letterKey extracts an A-Z key press.
func letterKey(msg tea.KeyMsg) (byte, bool) {
	s := msg.String()
	if len(s) != 1 {
		return 0, false
	}
	b := s[0]
	switch {
	case b >= 'a' && b <= 'z':
		return b - 'a' + 'A', true
	case b >= 'A' && b <= 'Z':
		return b, true
	}
	return 0, false
}

// handleLetter implements the two-keystroke flow: the first letter stages a
// cipher letter, the second resolves as the plaintext guess.
func (m Model) handleLetter(letter byte) (tea.Model, tea.Cmd) {
	if !m.haveGame || m.snap.IsOver() {
		return m, nil
	}
	m.flash = ""

	if !m.snap.HasSelection() {
		if _, present := m.snap.Frequency[letter]; !present {
			m.flash = "That letter is not in the puzzle."
			return m, nil
		}
		if _, solved := m.snap.Guessed[letter]; solved {
			m.flash = "Already solved."
			return m, nil
		}
		m.snap = m.svc.SelectLetter(context.Background(), letter)
		return m, nil
	}

	snap, correct := m.svc.SubmitGuess(context.Background(), letter)
	m.snap = snap
	if !correct && !snap.IsOver() {
		m.flash = "Not quite. That cost a token."
	}
	return m, nil
}

func (m Model) requestHint() (tea.Model, tea.Cmd) {
	if !m.haveGame || m.snap.IsOver() {
		return m, nil
	}
	m.flash = ""
	snap, granted := m.svc.RequestHint(context.Background())
	m.snap = snap
	if !granted {
		m.flash = "No hint available."
	}
	return m, nil
}

// cycleSelection moves the staged letter to the next unsolved cipher letter,
// in alphabetical order, wrapping around.
func (m Model) cycleSelection() (tea.Model, tea.Cmd) {
	if !m.haveGame || m.snap.IsOver() {
		return m, nil
	}
	unsolved := m.unsolvedLetters()
	if len(unsolved) == 0 {
		return m, nil
	}

	next := unsolved[0]
	if m.snap.HasSelection() {
		for i, c := range unsolved {
			if c == m.snap.Selected {
				next = unsolved[(i+1)%len(unsolved)]
				break
			}
			if c > m.snap.Selected {
				next = c
				break
			}
		}
	}
	m.snap = m.svc.SelectLetter(context.Background(), next)
	return m, nil
}

func (m Model) unsolvedLetters() []byte {
	letters := make([]byte, 0, len(m.snap.Frequency))
	for c := range m.snap.Frequency {
		if _, solved := m.snap.Guessed[c]; !solved {
			letters = append(letters, c)
		}
	}
	sort.Slice(letters, func(i, j int) bool { return letters[i] < letters[j] })
	return letters
}

// Snapshot exposes the current game state, for tests and the quit handler.
func (m Model) Snapshot() (enginegame.Snapshot, bool) {
	return m.snap, m.haveGame
}
