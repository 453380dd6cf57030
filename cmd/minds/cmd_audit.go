package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"minds/internal/provenance"
	"minds/internal/types"
)

var auditCmd = &cobra.Command{
	Use:   "audit [decision-id]",
	Short: "Verify one decision's provenance link",
	Args:  cobra.ExactArgs(1),
	RunE:  runAudit,
}

func runAudit(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	report, err := provenance.Audit(cmd.Context(), a.store, args[0])
	if err != nil {
		return err
	}
	if err := printJSON(report); err != nil {
		return err
	}
	if !report.ChainValid {
		return fmt.Errorf("%w: %s", types.ErrProvenanceViolation, report.Reason)
	}
	return nil
}

var verifyChainCmd = &cobra.Command{
	Use:   "verify-chain",
	Short: "Walk and verify the whole decision chain",
	RunE:  runVerifyChain,
}

func runVerifyChain(cmd *cobra.Command, _ []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	reports, err := provenance.VerifyAll(cmd.Context(), a.store)
	if err != nil {
		return err
	}

	broken := 0
	for _, r := range reports {
		status := "ok"
		if !r.ChainValid {
			status = "FAIL: " + r.Reason
			broken++
		}
		fmt.Printf("%-40s %s\n", r.DecisionID, status)
	}
	fmt.Printf("%d decisions, %d broken\n", len(reports), broken)
	if broken > 0 {
		return fmt.Errorf("%w: %d broken links", types.ErrProvenanceViolation, broken)
	}
	return nil
}
