package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show corpus and learning statistics",
	RunE:  runStats,
}

func runStats(cmd *cobra.Command, _ []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	stats, err := a.store.Stats(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Printf("thinkers:   %d\n", stats.Thinkers)
	fmt.Printf("principles: %d\n", stats.Principles)
	fmt.Printf("decisions:  %d (%d with outcomes, %.0f%% success)\n",
		stats.Decisions, stats.RecordedOutcomes, stats.SuccessRate*100)

	if len(stats.TopPrinciples) > 0 {
		fmt.Println("\ntop principles by posterior:")
		for _, ps := range stats.TopPrinciples {
			fmt.Printf("  %-28s rho %.3f (pulls %d)\n", ps.PrincipleID, ps.Rho, ps.Pulls)
		}
	}
	if len(stats.BottomPrinciples) > 0 {
		fmt.Println("\nprinciples needing review:")
		for _, ps := range stats.BottomPrinciples {
			fmt.Printf("  %-28s rho %.3f (pulls %d)\n", ps.PrincipleID, ps.Rho, ps.Pulls)
		}
	}
	return nil
}
