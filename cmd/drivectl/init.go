package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"dashplatform/core"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the initial chain state structure",
	Long: `init writes the pools layout a fresh chain needs: the thousand-epoch
horizon, the aggregate storage pool and the payout cursor. It fails if
the store already holds chain state.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, closeDB, err := openDrive()
		if err != nil {
			return err
		}
		defer closeDB()

		params := core.DefaultParams()
		params.ProposerPayoutDelay = cfg.ProposerPayoutDelay
		params.DefaultFeeMultiplier = cfg.DefaultFeeMultiplier
		platform, err := core.NewPlatform(d, params)
		if err != nil {
			return err
		}
		if err := platform.InitChain(cmd.Context()); err != nil {
			return err
		}

		root, err := d.RootHash(nil)
		if err != nil {
			return err
		}
		fmt.Printf("Initialised chain state (%s backend, %s)\n", cfg.Backend, cfg.DataDir)
		fmt.Printf("Root hash: %x\n", root)
		return nil
	},
}
