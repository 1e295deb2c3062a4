package client

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	apiv1alpha1 "github.com/KirkDiggler/rpg-api-protos/gen/go/clients/api/v1alpha1"
)

var getRollSessionCmd = &cobra.Command{
	Use:   "get-roll-session [entity-id] [context]",
	Short: "Get existing dice roll session",
	Long: `Retrieve all dice rolls for a specific entity and context. Examples:

  get-roll-session char-123 ability-scores
  get-roll-session droll-cli chain:attack`,
	Args: cobra.ExactArgs(2),
	RunE: getRollSession,
}

var clearRollSessionCmd = &cobra.Command{
	Use:   "clear-roll-session [entity-id] [context]",
	Short: "Delete a dice roll session",
	Args:  cobra.ExactArgs(2),
	RunE:  clearRollSession,
}

func getRollSession(cmd *cobra.Command, args []string) error {
	client, cleanup, err := createDiceClient()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), viper.GetDuration("timeout"))
	defer cancel()

	resp, err := client.GetRollSession(ctx, &apiv1alpha1.GetRollSessionRequest{
		EntityId: args[0],
		Context:  args[1],
	})
	if err != nil {
		return fmt.Errorf("failed to get roll session: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Roll Session:\n")
	fmt.Fprintf(out, "=============\n")
	fmt.Fprintf(out, "Created: %s\n", formatUnix(resp.GetCreatedAt()))
	fmt.Fprintf(out, "Expires: %s\n", formatUnix(resp.GetExpiresAt()))
	fmt.Fprintf(out, "Total Rolls: %d\n", len(resp.GetRolls()))
	printRolls(out, resp.GetRolls())

	return nil
}

func clearRollSession(cmd *cobra.Command, args []string) error {
	client, cleanup, err := createDiceClient()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), viper.GetDuration("timeout"))
	defer cancel()

	resp, err := client.ClearRollSession(ctx, &apiv1alpha1.ClearRollSessionRequest{
		EntityId: args[0],
		Context:  args[1],
	})
	if err != nil {
		return fmt.Errorf("failed to clear roll session: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s (%d rolls cleared)\n", resp.GetMessage(), resp.GetRollsCleared())
	return nil
}
