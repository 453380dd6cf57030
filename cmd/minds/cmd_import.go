package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"minds/internal/importer"
)

var (
	flagSeed      bool
	flagExportDir string
)

var importCmd = &cobra.Command{
	Use:   "import [corpus-dir]",
	Short: "Import a thinker corpus from a directory of JSON files",
	Long: `Imports thinker documents (one JSON file per thinker) into the store,
idempotent by id. Invariants are checked before anything is written: a
thinker carries 2-6 principles, each with a falsification. With --seed the
built-in starter council is imported instead of a directory.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().BoolVar(&flagSeed, "seed", false, "import the built-in starter council")
	importCmd.Flags().StringVar(&flagExportDir, "export", "", "export the current corpus to this directory instead of importing")
}

func runImport(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	imp := importer.New(a.store, a.emb)
	ctx := cmd.Context()

	if flagExportDir != "" {
		if err := imp.ExportDir(ctx, flagExportDir); err != nil {
			return err
		}
		fmt.Printf("corpus exported to %s\n", flagExportDir)
		return nil
	}

	var n int
	switch {
	case flagSeed:
		n, err = imp.ImportDocs(ctx, importer.Seed())
	case len(args) == 1:
		n, err = imp.ImportDir(ctx, args[0])
	default:
		return fmt.Errorf("provide a corpus directory or --seed")
	}
	if err != nil {
		return err
	}

	logger.Info("corpus imported", zap.Int("thinkers", n))
	fmt.Printf("imported %d thinkers\n", n)
	return nil
}
