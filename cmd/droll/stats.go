package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Dizabanik/droll/internal/chainfile"
	"github.com/Dizabanik/droll/internal/orchestrators/roll"
)

var statsCharacter string

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Manage stored stat sheets",
}

var statsPutCmd = &cobra.Command{
	Use:   "put SHEET.yaml",
	Short: "Store a character's stat sheet",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sheet, err := chainfile.LoadSheet(args[0])
		if err != nil {
			return err
		}
		if statsCharacter != "" {
			sheet.CharacterID = statsCharacter
		}

		return withRollService(func(ctx context.Context, svc roll.Service) error {
			out, err := svc.PutStats(ctx, &roll.PutStatsInput{Sheet: sheet})
			if err != nil {
				printFieldErrors(cmd, err)
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Stored stats for %s\n", out.Sheet.CharacterID)
			return nil
		})
	},
}

func init() {
	statsPutCmd.Flags().StringVar(&statsCharacter, "character", "", "character the sheet belongs to (overrides the file)")
	statsCmd.AddCommand(statsPutCmd)
}
