// Package client provides commands that call a running dice server
package client

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	apiv1alpha1 "github.com/KirkDiggler/rpg-api-protos/gen/go/clients/api/v1alpha1"
)

// ClientCmd is the root command for all client commands
var ClientCmd = &cobra.Command{
	Use:   "client",
	Short: "Call a running dice server",
	Long:  `Client commands make real gRPC requests against the DiceService.`,
}

func init() {
	viper.SetDefault("server", "localhost:50051")
	viper.SetDefault("timeout", 30*time.Second)

	ClientCmd.PersistentFlags().String("server", "localhost:50051", "gRPC server address")
	ClientCmd.PersistentFlags().Duration("timeout", 30*time.Second, "Request timeout")
	_ = viper.BindPFlag("server", ClientCmd.PersistentFlags().Lookup("server"))   // nolint:errcheck // flag exists
	_ = viper.BindPFlag("timeout", ClientCmd.PersistentFlags().Lookup("timeout")) // nolint:errcheck // flag exists

	ClientCmd.AddCommand(rollDiceCmd)
	ClientCmd.AddCommand(getRollSessionCmd)
	ClientCmd.AddCommand(clearRollSessionCmd)
}

// createDiceClient connects to the configured server
func createDiceClient() (apiv1alpha1.DiceServiceClient, func(), error) {
	conn, err := grpc.NewClient(viper.GetString("server"),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to server: %w", err)
	}

	cleanup := func() {
		_ = conn.Close() // nolint:errcheck // safe to ignore in cleanup
	}

	return apiv1alpha1.NewDiceServiceClient(conn), cleanup, nil
}

func printRolls(w io.Writer, rolls []*apiv1alpha1.DiceRoll) {
	for i, roll := range rolls {
		fmt.Fprintf(w, "\nRoll %d:\n", i+1)
		fmt.Fprintf(w, "  Roll ID: %s\n", roll.GetRollId())
		fmt.Fprintf(w, "  Notation: %s\n", roll.GetNotation())
		fmt.Fprintf(w, "  Individual Dice: %v\n", roll.GetDice())
		if roll.GetModifier() != 0 {
			fmt.Fprintf(w, "  Modifier: %+d\n", roll.GetModifier())
		}
		fmt.Fprintf(w, "  Total: %d\n", roll.GetTotal())
		if len(roll.GetDropped()) > 0 {
			fmt.Fprintf(w, "  Dropped: %v\n", roll.GetDropped())
		}
		if roll.GetDescription() != "" {
			fmt.Fprintf(w, "  Description: %s\n", roll.GetDescription())
		}
	}
}

func formatUnix(sec int64) string {
	return time.Unix(sec, 0).Format(time.DateTime)
}
