package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Dizabanik/droll/internal/chainfile"
	"github.com/Dizabanik/droll/internal/clients/dicesource"
	rollentity "github.com/Dizabanik/droll/internal/entities/roll"
	"github.com/Dizabanik/droll/internal/orchestrators/roll"
	"github.com/Dizabanik/droll/internal/render"
)

var (
	itemOwner  string
	storedRoll rollFlags
)

var itemCmd = &cobra.Command{
	Use:   "item",
	Short: "Manage stored items",
	Long:  `Store items and their chains in Redis and roll them by ID.`,
}

var itemAddCmd = &cobra.Command{
	Use:   "add ITEM.yaml|-",
	Short: "Validate and store an item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		it, err := readItem(args[0])
		if err != nil {
			return err
		}
		if itemOwner != "" {
			it.OwnerID = itemOwner
		}
		return withRollService(func(ctx context.Context, svc roll.Service) error {
			out, err := svc.CreateItem(ctx, &roll.CreateItemInput{Item: it})
			if err != nil {
				printFieldErrors(cmd, err)
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Stored %s as %s\n", out.Item.Name, out.Item.ID)
			return nil
		})
	},
}

var itemUpdateCmd = &cobra.Command{
	Use:   "update ITEM.yaml|-",
	Short: "Replace a stored item; the file must carry its ID",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		it, err := readItem(args[0])
		if err != nil {
			return err
		}
		return withRollService(func(ctx context.Context, svc roll.Service) error {
			out, err := svc.UpdateItem(ctx, &roll.UpdateItemInput{Item: it})
			if err != nil {
				printFieldErrors(cmd, err)
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", out.Item.ID)
			return nil
		})
	},
}

var itemListCmd = &cobra.Command{
	Use:   "list OWNER",
	Short: "List an owner's items",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRollService(func(ctx context.Context, svc roll.Service) error {
			out, err := svc.ListItems(ctx, &roll.ListItemsInput{OwnerID: args[0]})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), render.Items(out.Items))
			return nil
		})
	},
}

var itemShowCmd = &cobra.Command{
	Use:   "show ITEM_ID",
	Short: "Print a stored item as YAML",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRollService(func(ctx context.Context, svc roll.Service) error {
			out, err := svc.GetItem(ctx, &roll.GetItemInput{ItemID: args[0]})
			if err != nil {
				return err
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(out.Item); err != nil {
				return fmt.Errorf("failed to encode item: %w", err)
			}
			return enc.Close()
		})
	},
}

var itemDeleteCmd = &cobra.Command{
	Use:   "delete ITEM_ID",
	Short: "Delete a stored item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRollService(func(ctx context.Context, svc roll.Service) error {
			if _, err := svc.DeleteItem(ctx, &roll.DeleteItemInput{ItemID: args[0]}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		})
	},
}

var itemRollCmd = &cobra.Command{
	Use:   "roll ITEM_ID",
	Short: "Roll a chain of a stored item",
	Long: `Roll a chain of a stored item. With --character the character's stored
stat sheet is used and the result is added to their history.`,
	Args: cobra.ExactArgs(1),
	RunE: runItemRoll,
}

func init() {
	itemAddCmd.Flags().StringVar(&itemOwner, "owner", "", "owner of the item (overrides the file)")
	storedRoll.register(itemRollCmd)

	itemCmd.AddCommand(itemAddCmd)
	itemCmd.AddCommand(itemUpdateCmd)
	itemCmd.AddCommand(itemListCmd)
	itemCmd.AddCommand(itemShowCmd)
	itemCmd.AddCommand(itemDeleteCmd)
	itemCmd.AddCommand(itemRollCmd)
}

func runItemRoll(cmd *cobra.Command, args []string) error {
	vars, err := chainfile.ParseVars(storedRoll.vars)
	if err != nil {
		printFieldErrors(cmd, err)
		return err
	}
	sheet, err := storedRoll.sheet()
	if err != nil {
		return err
	}

	cfg, err := loadConfig(storedRoll.mode, storedRoll.critPolicy)
	if err != nil {
		printFieldErrors(cmd, err)
		return err
	}

	ctx := context.Background()
	source, closeSource, err := newDiceSource(storedRoll.remote, storedRoll.characterID, "item:"+args[0])
	if err != nil {
		return err
	}
	defer closeSource()

	svc, cleanup, err := openRollService(ctx, cfg, source)
	if err != nil {
		return err
	}
	defer cleanup()

	itemOut, err := svc.GetItem(ctx, &roll.GetItemInput{ItemID: args[0]})
	if err != nil {
		return err
	}
	target, err := pickChain(itemOut.Item, storedRoll.chainID)
	if err != nil {
		return err
	}

	out, err := svc.RollChain(ctx, &roll.RollChainInput{
		ItemID:      itemOut.Item.ID,
		ChainID:     target.ID,
		CharacterID: storedRoll.characterID,
		Sheet:       sheet,
		Variables:   vars,
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), render.ChainResult(chainTitle(itemOut.Item, target), out.Result))
	return nil
}

// withRollService runs fn against a Redis-backed roll service that rolls
// dice locally
func withRollService(fn func(ctx context.Context, svc roll.Service) error) error {
	cfg, err := loadConfig("", "")
	if err != nil {
		return err
	}

	ctx := context.Background()
	svc, cleanup, err := openRollService(ctx, cfg, dicesource.NewLocal(nil))
	if err != nil {
		return err
	}
	defer cleanup()

	return fn(ctx, svc)
}

func readItem(path string) (*rollentity.Item, error) {
	f, closeFile, err := stdinOrFile(path)
	if err != nil {
		return nil, err
	}
	defer closeFile()

	return chainfile.DecodeItem(f)
}
