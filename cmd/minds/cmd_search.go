package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	flagSearchDomain string
	flagSearchLimit  int
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the principle corpus",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSearch,
}

func init() {
	searchCmd.Flags().StringVar(&flagSearchDomain, "domain", "", "restrict to a domain tag")
	searchCmd.Flags().IntVar(&flagSearchLimit, "limit", 10, "max results")
}

func runSearch(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	hits, err := a.store.LexicalSearch(ctx, strings.Join(args, " "), flagSearchDomain, flagSearchLimit)
	if err != nil {
		return err
	}
	if len(hits) == 0 {
		fmt.Println("no principles matched")
		return nil
	}

	for _, h := range hits {
		p, err := a.store.GetPrinciple(ctx, h.PrincipleID)
		if err != nil {
			continue
		}
		fmt.Printf("%-28s %-30s (score %.2f)\n    %s\n", p.ID, p.Name, h.Score, p.Description)
	}
	return nil
}
