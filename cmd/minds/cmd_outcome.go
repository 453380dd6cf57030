package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"minds/internal/types"
)

var (
	flagSuccess       bool
	flagFailure       bool
	flagNotes         string
	flagOutcomeDomain string
)

var outcomeCmd = &cobra.Command{
	Use:   "outcome [decision-id]",
	Short: "Report how a decision turned out",
	Long: `Marks a decision as succeeded or failed and updates the posteriors of
every principle the counsel cited. Failures are punished twice as strongly
as successes are rewarded. The first report on a decision wins; repeats
only append notes.`,
	Args: cobra.ExactArgs(1),
	RunE: runOutcome,
}

func init() {
	outcomeCmd.Flags().BoolVar(&flagSuccess, "success", false, "the decision worked out")
	outcomeCmd.Flags().BoolVar(&flagFailure, "failure", false, "the decision did not work out")
	outcomeCmd.Flags().StringVar(&flagNotes, "notes", "", "free-text notes")
	outcomeCmd.Flags().StringVar(&flagOutcomeDomain, "domain", "", "domain override for contextual learning")
}

func runOutcome(cmd *cobra.Command, args []string) error {
	if flagSuccess == flagFailure {
		return fmt.Errorf("%w: pass exactly one of --success or --failure", types.ErrInvalidInput)
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.updater.Record(cmd.Context(), types.OutcomeRequest{
		DecisionID: args[0],
		Success:    flagSuccess,
		Notes:      flagNotes,
		Domain:     flagOutcomeDomain,
	})
	if err != nil {
		return err
	}

	logger.Info("outcome recorded",
		zap.String("decision_id", args[0]),
		zap.Bool("success", flagSuccess),
		zap.Bool("applied", res.Applied))

	if !res.Applied {
		fmt.Println("outcome already recorded; notes appended, posteriors unchanged")
	}
	for _, adj := range res.PrinciplesAdjusted {
		fmt.Printf("%-28s rho %.3f -> %.3f (pulls %d)\n", adj.PrincipleID, adj.OldRho, adj.NewRho, adj.Pulls)
	}
	return nil
}
