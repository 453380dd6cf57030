package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"minds/internal/types"
)

var (
	flagDomain     string
	flagDepth      string
	flagDecisionID string
	flagJSON       bool
)

var counselCmd = &cobra.Command{
	Use:   "counsel [question]",
	Short: "Get adversarial counsel on a decision question",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCounsel,
}

func init() {
	counselCmd.Flags().StringVar(&flagDomain, "domain", "", "decision domain (architecture, performance, ...)")
	counselCmd.Flags().StringVar(&flagDepth, "depth", "", "quick, standard, or deep")
	counselCmd.Flags().StringVar(&flagDecisionID, "decision-id", "", "caller-chosen decision id")
	counselCmd.Flags().BoolVar(&flagJSON, "json", false, "print the raw response JSON")
}

func runCounsel(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	question := strings.Join(args, " ")
	resp, err := a.engine.Counsel(cmd.Context(), types.CounselRequest{
		Question:   question,
		Domain:     flagDomain,
		Depth:      types.Depth(flagDepth),
		DecisionID: flagDecisionID,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w: %v", errDeadline, err)
		}
		return err
	}

	logger.Debug("counsel returned",
		zap.String("decision_id", resp.DecisionID),
		zap.Int("positions", len(resp.Positions)),
		zap.Bool("partial", resp.Partial))

	if flagJSON {
		return printJSON(resp)
	}
	printCounsel(resp)
	return nil
}

func printCounsel(resp *types.CounselResponse) {
	fmt.Printf("decision %s\n\n", resp.DecisionID)
	for _, pos := range resp.Positions {
		fmt.Printf("[%s] %s (confidence %.2f)\n", strings.ToUpper(string(pos.Stance)), pos.Thinker, pos.Confidence)
		fmt.Printf("  %s\n", pos.Argument)
		if pos.FalsifiableIf != "" {
			fmt.Printf("  falsifiable if: %s\n", pos.FalsifiableIf)
		}
		fmt.Println()
	}
	fmt.Printf("[CHALLENGE] %s\n  %s\n\n", resp.Challenge.Thinker, resp.Challenge.Argument)
	if resp.UrgencyAdjustment != "" {
		fmt.Printf("urgency: %s\n", resp.UrgencyAdjustment)
	}
	if resp.Partial {
		fmt.Printf("partial result: %s\n", resp.PartialReason)
	}
	fmt.Printf("%s\n", resp.Summary)
}
