package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/lanerunner/internal/platform/tui"
	"github.com/vovakirdan/lanerunner/internal/storage"
)

var (
	flagScoresLimit int
	flagInteractive bool
	flagClear       bool
)

var scoresCmd = &cobra.Command{
	Use:   "scores",
	Short: "Show the leaderboard",
	Long: `Display the best recorded runs and overall stats.

Examples:
  lanerunner scores
  lanerunner scores --limit 25
  lanerunner scores -i          # interactive table
  lanerunner scores --clear     # delete every recorded run`,
	Run: runScores,
}

func init() {
	scoresCmd.Flags().IntVar(&flagScoresLimit, "limit", 10, "Number of runs to list")
	scoresCmd.Flags().BoolVarP(&flagInteractive, "interactive", "i", false, "Browse runs in a table")
	scoresCmd.Flags().BoolVar(&flagClear, "clear", false, "Delete all recorded runs")
}

func runScores(_ *cobra.Command, _ []string) {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening runs database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	if flagClear {
		if err := store.ClearRuns(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("All runs deleted.")
		return
	}

	if flagInteractive {
		cfg := runtimeConfig()
		if err := tui.RunScoreboard(store, cfg.ScreenW, cfg.ScreenH); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	runs, err := store.TopRuns(flagScoresLimit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error retrieving runs: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("High Scores - Lane Runner")
	fmt.Println()

	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		fmt.Println()
		fmt.Println("Play 'lanerunner play' to set the first high score!")
		return
	}

	fmt.Printf("  %-4s  %-8s  %-5s  %-3s  %-8s  %-12s  %s\n", "Rank", "Score", "Coins", "Lvl", "Distance", "Source", "Date")
	fmt.Printf("  %-4s  %-8s  %-5s  %-3s  %-8s  %-12s  %s\n", "----", "-----", "-----", "---", "--------", "------", "----")
	for i, r := range runs {
		fmt.Printf("  %-4d  %-8d  %-5d  %-3d  %-8.0f  %-12s  %s\n",
			i+1, r.Score, r.Coins, r.Level, r.Distance, r.Source, r.CreatedAt.Format("2006-01-02 15:04"))
	}

	stats, err := store.Stats()
	if err != nil {
		return
	}
	fmt.Println()
	fmt.Printf("Runs: %d  Best: %d  Average: %.0f  Coins: %d  Top level: %d\n",
		stats.Runs, stats.HighScore, stats.AvgScore, stats.TotalCoins, stats.BestLevel)

	sources := make([]string, 0, len(stats.BySourceRuns))
	for src := range stats.BySourceRuns {
		sources = append(sources, src)
	}
	sort.Strings(sources)
	for _, src := range sources {
		fmt.Printf("  %-8s %d\n", src, stats.BySourceRuns[src])
	}
}
