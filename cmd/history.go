package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/zjrosen/ciphergram/internal/puzzle"
	uistyles "github.com/zjrosen/ciphergram/internal/ui/styles"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent games",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 20, "maximum games to show")
	historyCmd.Flags().String("state", "", "filter by state: in_progress, won or lost")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	db, err := openDatabase()
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	limit, _ := cmd.Flags().GetInt("limit")
	state, _ := cmd.Flags().GetString("state")

	games, err := db.GameRepository().ListWithFilter(puzzle.ListFilter{
		State: puzzle.GameState(state),
		Limit: limit,
	})
	if err != nil {
		return fmt.Errorf("listing games: %w", err)
	}

	if len(games) == 0 {
		fmt.Println("No games yet. Run `ciphergram` to play one.")
		return nil
	}

	muted := lipgloss.NewStyle().Foreground(uistyles.TextMutedColor)
	won := lipgloss.NewStyle().Foreground(uistyles.StatusSuccessColor)
	lost := lipgloss.NewStyle().Foreground(uistyles.StatusErrorColor)

	for _, game := range games {
		var status string
		switch {
		case game.IsWon():
			status = won.Render(fmt.Sprintf("won %4d", game.FinalScore()))
		case game.IsLost():
			status = lost.Render("lost    ")
		default:
			status = muted.Render("playing ")
		}

		// Finished games show the quote; unfinished ones stay masked
		quote := game.SourceText()
		if !game.IsOver() {
			quote = game.DisplayText()
		}
		quote = runewidth.Truncate(quote, 40, "...")

		line := fmt.Sprintf("%s  %s  %-6s  %s",
			game.StartedAt().Format("2006-01-02 15:04"),
			status,
			game.Difficulty(),
			quote)
		if author := game.Author(); author != "" && game.IsOver() {
			line += muted.Render("  — " + author)
		}
		fmt.Println(strings.TrimRight(line, " "))
	}

	return nil
}
