package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Dizabanik/droll/internal/orchestrators/roll"
	"github.com/Dizabanik/droll/internal/render"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history CHARACTER",
	Short: "Show a character's recent rolls, newest first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRollService(func(ctx context.Context, svc roll.Service) error {
			out, err := svc.ListHistory(ctx, &roll.ListHistoryInput{
				CharacterID: args[0],
				Limit:       historyLimit,
			})
			if err != nil {
				return err
			}
			if len(out.Results) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No rolls for %s\n", args[0])
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), render.History(out.Results))
			return nil
		})
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 10, "number of rolls to show (0 for all kept)")
}
