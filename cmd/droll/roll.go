package main

import (
	"context"
	"fmt"
	"maps"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/Dizabanik/droll/internal/chainfile"
	"github.com/Dizabanik/droll/internal/engine/chain"
	rollentity "github.com/Dizabanik/droll/internal/entities/roll"
	"github.com/Dizabanik/droll/internal/errors"
	"github.com/Dizabanik/droll/internal/render"
)

// rollFlags are shared by `roll` and `item roll`
type rollFlags struct {
	chainID     string
	statsFile   string
	characterID string
	vars        []string
	remote      bool
	mode        string
	critPolicy  string
}

func (f *rollFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.chainID, "chain", "", "chain to roll (default: the item's first chain)")
	cmd.Flags().StringVar(&f.statsFile, "stats", "", "stat sheet YAML to roll with")
	cmd.Flags().StringVar(&f.characterID, "character", "", "character rolling the chain")
	cmd.Flags().StringArrayVar(&f.vars, "var", nil, "chain variable as key=value (repeatable)")
	cmd.Flags().BoolVar(&f.remote, "remote", false, "roll dice on the configured dice server")
	cmd.Flags().StringVar(&f.mode, "mode", "", "execution mode: sequential or simultaneous")
	cmd.Flags().StringVar(&f.critPolicy, "crit-policy", "", "crit policy: propagate or per_step")
}

func (f *rollFlags) sheet() (*rollentity.StatSheet, error) {
	if f.statsFile == "" {
		return nil, nil
	}
	return chainfile.LoadSheet(f.statsFile)
}

var localRoll rollFlags

var rollCmd = &cobra.Command{
	Use:   "roll ITEM.yaml",
	Short: "Roll a chain from an item file",
	Long: `Roll one chain of an item described in a YAML file and print the
per-step results and the grand total.`,
	Args: cobra.ExactArgs(1),
	RunE: runRoll,
}

func init() {
	localRoll.register(rollCmd)
}

func runRoll(cmd *cobra.Command, args []string) error {
	item, err := chainfile.LoadItem(args[0])
	if err != nil {
		return err
	}
	if err := chain.ValidateItem(item); err != nil {
		printFieldErrors(cmd, err)
		return fmt.Errorf("%s is not a valid item", args[0])
	}

	target, err := pickChain(item, localRoll.chainID)
	if err != nil {
		return err
	}
	vars, err := chainfile.ParseVars(localRoll.vars)
	if err != nil {
		printFieldErrors(cmd, err)
		return err
	}
	sheet, err := localRoll.sheet()
	if err != nil {
		return err
	}
	if sheet == nil {
		sheet = &rollentity.StatSheet{CharacterID: localRoll.characterID}
	}

	cfg, err := loadConfig(localRoll.mode, localRoll.critPolicy)
	if err != nil {
		printFieldErrors(cmd, err)
		return err
	}
	runner, err := newRunner(cfg)
	if err != nil {
		return err
	}
	source, cleanup, err := newDiceSource(localRoll.remote, localRoll.characterID, "chain:"+target.ID)
	if err != nil {
		return err
	}
	defer cleanup()

	result, err := runner.Run(context.Background(), &chain.RunInput{
		Chain:     target,
		Sheet:     sheet,
		Variables: vars,
		Provider:  source,
	})
	if err != nil {
		return err
	}
	result.ItemID = item.ID
	result.CharacterID = localRoll.characterID

	fmt.Fprintln(cmd.OutOrStdout(), render.ChainResult(chainTitle(item, target), result))
	return nil
}

// pickChain returns the named chain, or the first one when no ID is given
func pickChain(item *rollentity.Item, chainID string) (*rollentity.Chain, error) {
	if chainID == "" {
		if len(item.Chains) == 0 {
			return nil, errors.InvalidArgumentf("item %s has no chains", item.ID)
		}
		return item.Chains[0], nil
	}
	target := item.FindChain(chainID)
	if target == nil {
		return nil, errors.NotFoundf("chain %s not found on item %s", chainID, item.ID)
	}
	return target, nil
}

func chainTitle(item *rollentity.Item, c *rollentity.Chain) string {
	name := c.Name
	if name == "" {
		name = c.ID
	}
	if item.Name == "" {
		return name
	}
	return fmt.Sprintf("%s: %s", item.Name, name)
}

// printFieldErrors prints per-field validation errors and reports whether
// err carried any
func printFieldErrors(cmd *cobra.Command, err error) bool {
	fields, ok := errors.GetMeta(err)[errors.MetaValidationErrors].(map[string][]string)
	if !ok {
		return false
	}
	out := cmd.ErrOrStderr()
	for _, field := range slices.Sorted(maps.Keys(fields)) {
		for _, msg := range fields[field] {
			fmt.Fprintf(out, "  %s: %s\n", field, msg)
		}
	}
	return true
}

func stdinOrFile(path string) (*os.File, func(), error) {
	if path == "-" {
		return os.Stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, errors.NotFoundf("file %s not found", path)
		}
		return nil, nil, errors.Wrapf(err, "failed to open %s", path)
	}
	return f, func() { _ = f.Close() }, nil
}
