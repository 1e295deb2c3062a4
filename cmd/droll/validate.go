package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Dizabanik/droll/internal/chainfile"
	"github.com/Dizabanik/droll/internal/engine/chain"
)

var validateCmd = &cobra.Command{
	Use:   "validate ITEM.yaml...",
	Short: "Check item files for chain errors",
	Long: `Check that every chain in each item file is well formed: unique step IDs,
formulas present, and conditions that only reference earlier steps or
declared variables.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	var failed int

	for _, path := range args {
		item, err := chainfile.LoadItem(path)
		if err == nil {
			err = chain.ValidateItem(item)
		}
		if err != nil {
			failed++
			fmt.Fprintf(out, "%s: invalid\n", path)
			if !printFieldErrors(cmd, err) {
				fmt.Fprintf(cmd.ErrOrStderr(), "  %v\n", err)
			}
			continue
		}
		fmt.Fprintf(out, "%s: ok (%d chains)\n", path, len(item.Chains))
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files are invalid", failed, len(args))
	}
	return nil
}
