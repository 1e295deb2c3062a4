package client

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	apiv1alpha1 "github.com/KirkDiggler/rpg-api-protos/gen/go/clients/api/v1alpha1"
)

var rollDescription string

var rollDiceCmd = &cobra.Command{
	Use:   "roll-dice [notation] [entity-id] [context]",
	Short: "Roll dice using dice notation",
	Long: `Roll dice and see individual results. Examples:

  roll-dice 4d6 char-123 ability-scores
  roll-dice 1d20+5 char-456 attack
  roll-dice 2d8 char-789 damage --description "greatsword"`,
	Args: cobra.ExactArgs(3),
	RunE: rollDice,
}

func init() {
	rollDiceCmd.Flags().StringVar(&rollDescription, "description", "", "description stored with the roll")
}

func rollDice(cmd *cobra.Command, args []string) error {
	notation := args[0]
	entityID := args[1]
	rollContext := args[2]

	client, cleanup, err := createDiceClient()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), viper.GetDuration("timeout"))
	defer cancel()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Rolling %s for entity %s (context: %s)...\n", notation, entityID, rollContext)

	resp, err := client.RollDice(ctx, &apiv1alpha1.RollDiceRequest{
		EntityId:            entityID,
		Context:             rollContext,
		Notation:            notation,
		ModifierDescription: rollDescription,
	})
	if err != nil {
		return fmt.Errorf("failed to roll dice: %w", err)
	}

	fmt.Fprintf(out, "\nDice Roll Results:\n")
	fmt.Fprintf(out, "==================\n")
	printRolls(out, resp.GetRolls())

	fmt.Fprintf(out, "\nSession expires at: %s\n", formatUnix(resp.GetExpiresAt()))
	fmt.Fprintf(out, "Total rolls in session: %d\n", len(resp.GetRolls()))

	return nil
}
