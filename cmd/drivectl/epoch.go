package main

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"dashplatform/drive"
	"dashplatform/fees"
	"dashplatform/store"
)

var epochCmd = &cobra.Command{
	Use:   "epoch <index>",
	Short: "Inspect one epoch's pools and proposers",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		index, err := strconv.ParseUint(args[0], 10, 16)
		if err != nil {
			return fmt.Errorf("epoch index %q: %w", args[0], err)
		}
		d, closeDB, err := openDrive()
		if err != nil {
			return err
		}
		defer closeDB()

		e := drive.NewEpoch(uint16(index))
		storageCredits, storageErr := d.EpochStorageCredits(e, nil)
		if storageErr != nil && errors.Is(storageErr, store.ErrPathNotFound) {
			return fmt.Errorf("epoch %d has no pool: outside the created horizon", index)
		}

		fmt.Printf("Epoch %d\n", index)
		startTime, err := d.EpochStartTime(e, nil)
		started := err == nil
		if err != nil && !absent(err) {
			return err
		}
		if started {
			startHeight, err := d.EpochStartBlockHeight(e, nil)
			if err != nil {
				return err
			}
			multiplier, err := d.EpochFeeMultiplier(e, nil)
			if err != nil {
				return err
			}
			tenths, err := fees.MultiplierTenths(multiplier)
			if err != nil {
				return err
			}
			fmt.Printf("  Started:            %s (height %d)\n",
				time.UnixMilli(int64(startTime)).UTC().Format(time.RFC3339), startHeight)
			fmt.Printf("  Fee multiplier:     %d.%dx (byte %d)\n", tenths/10, tenths%10, multiplier)
		} else {
			fmt.Println("  Started:            no (horizon pool)")
		}

		if err := printCredits("Storage credits", storageCredits, storageErr); err != nil {
			return err
		}
		processing, processingErr := d.EpochProcessingCredits(e, nil)
		if err := printCredits("Processing credits", processing, processingErr); err != nil {
			return err
		}
		if storageErr == nil && processingErr == nil {
			total, err := d.EpochTotalCredits(e, nil)
			if err != nil {
				return err
			}
			fmt.Printf("  Total credits:      %d\n", total)
		}

		proposers, err := d.EpochProposers(e, 0, nil)
		if err != nil {
			if !absent(err) {
				return err
			}
			if started {
				fmt.Println("  Proposers:          paid out")
			}
			return nil
		}
		fmt.Printf("  Proposers:          %d\n", len(proposers))
		for _, entry := range proposers {
			fmt.Printf("    %x  %d blocks\n", entry.ProTxHash[:8], entry.BlockCount)
		}
		return nil
	},
}

func printCredits(label string, value uint64, err error) error {
	switch {
	case err == nil:
		fmt.Printf("  %-19s %d\n", label+":", value)
	case absent(err):
		fmt.Printf("  %-19s -\n", label+":")
	default:
		return err
	}
	return nil
}

func absent(err error) bool {
	return errors.Is(err, store.ErrPathKeyNotFound) || errors.Is(err, store.ErrPathNotFound)
}
