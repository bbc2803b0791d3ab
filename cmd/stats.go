package cmd

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	uistyles "github.com/zjrosen/ciphergram/internal/ui/styles"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show your overall record",
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	db, err := openDatabase()
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	stats, err := db.GameRepository().Stats()
	if err != nil {
		return fmt.Errorf("aggregating stats: %w", err)
	}

	if stats.Played == 0 {
		fmt.Println("No finished games yet. Run `ciphergram` to play one.")
		return nil
	}

	label := lipgloss.NewStyle().Foreground(uistyles.TextMutedColor).Width(14)
	winRate := float64(stats.Won) / float64(stats.Played) * 100

	fmt.Println(label.Render("Played") + fmt.Sprintf("%d", stats.Played))
	fmt.Println(label.Render("Won") + fmt.Sprintf("%d (%.0f%%)", stats.Won, winRate))
	fmt.Println(label.Render("Lost") + fmt.Sprintf("%d", stats.Lost))
	fmt.Println(label.Render("Best score") + fmt.Sprintf("%d", stats.BestScore))
	fmt.Println(label.Render("Avg mistakes") + fmt.Sprintf("%.1f", stats.AvgMistakes))
	fmt.Println(label.Render("Time played") + formatPlayTime(time.Duration(stats.TotalPlaySec)*time.Second))

	return nil
}

// formatPlayTime renders total play time as h:mm or m:ss.
func formatPlayTime(d time.Duration) string {
	if d >= time.Hour {
		return fmt.Sprintf("%dh %02dm", int(d.Hours()), int(d.Minutes())%60)
	}
	return fmt.Sprintf("%dm %02ds", int(d.Minutes()), int(d.Seconds())%60)
}
