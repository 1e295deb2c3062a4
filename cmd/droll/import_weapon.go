package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Dizabanik/droll/internal/clients/dicesource"
	"github.com/Dizabanik/droll/internal/orchestrators/roll"
)

var (
	importStore bool
	importOwner string
)

var importWeaponCmd = &cobra.Command{
	Use:   "import-weapon WEAPON",
	Short: "Build an item from an SRD weapon",
	Long: `Fetch a weapon from the D&D 5e SRD API and build an item with an attack
chain: a d20 attack roll and the weapon's damage when the attack meets
target_ac. The item is printed as YAML, or stored with --store.`,
	Example: `  droll import-weapon longsword > longsword.yaml
  droll import-weapon "Hand Crossbow" --store --owner char_1`,
	Args: cobra.ExactArgs(1),
	RunE: runImportWeapon,
}

func init() {
	importWeaponCmd.Flags().BoolVar(&importStore, "store", false, "store the item instead of printing it")
	importWeaponCmd.Flags().StringVar(&importOwner, "owner", "", "owner of the stored item")
}

func runImportWeapon(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	cfg, err := loadConfig("", "")
	if err != nil {
		return err
	}

	if importStore {
		svc, cleanup, err := openRollService(ctx, cfg, dicesource.NewLocal(nil))
		if err != nil {
			return err
		}
		defer cleanup()

		out, err := svc.ImportWeapon(ctx, &roll.ImportWeaponInput{
			WeaponID: args[0],
			OwnerID:  importOwner,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Stored %s as %s\n", out.Item.Name, out.Item.ID)
		return nil
	}

	cat, err := newCatalog(cfg)
	if err != nil {
		return err
	}
	weapon, err := cat.GetWeapon(ctx, args[0])
	if err != nil {
		return err
	}

	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	if err := enc.Encode(roll.WeaponChain(weapon)); err != nil {
		return fmt.Errorf("failed to encode item: %w", err)
	}
	return enc.Close()
}
