package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"dashplatform/core"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the fee pools at a glance",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, closeDB, err := openDrive()
		if err != nil {
			return err
		}
		defer closeDB()

		pool, err := d.StorageDistributionPool(nil)
		if err != nil {
			return fmt.Errorf("read storage pool (run drivectl init first?): %w", err)
		}
		cursor, err := d.PayoutCursor(nil)
		if err != nil {
			return err
		}
		genesis, hasGenesis, err := d.GenesisTime(nil)
		if err != nil {
			return err
		}
		root, err := d.RootHash(nil)
		if err != nil {
			return err
		}

		fmt.Printf("Backend:       %s (%s)\n", cfg.Backend, cfg.DataDir)
		fmt.Printf("Root hash:     %x\n", root)
		if hasGenesis {
			nowMs := uint64(time.Now().UnixMilli())
			epoch := core.CurrentEpochInfo(genesis, nowMs, nowMs, true)
			fmt.Printf("Genesis time:  %s (%d ms)\n",
				time.UnixMilli(int64(genesis)).UTC().Format(time.RFC3339), genesis)
			fmt.Printf("Epoch now:     %d\n", epoch.CurrentIndex)
		} else {
			fmt.Println("Genesis time:  not set (no blocks processed)")
		}
		fmt.Printf("Storage pool:  %d credits\n", pool)
		fmt.Printf("Payout cursor: epoch %d\n", cursor)
		return nil
	},
}
