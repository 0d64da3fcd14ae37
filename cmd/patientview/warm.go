package main

import (
	"fmt"

	"github.com/goliatone/go-variant-patients/patients"
	"github.com/spf13/cobra"
)

var warmCmd = &cobra.Command{
	Use:   "warm <technology> <variant>...",
	Short: "Preload several variants and report how many patients each has",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		tech, err := patients.ParseTechnology(args[0])
		if err != nil {
			return err
		}

		container, logger, err := newContainer()
		if err != nil {
			return err
		}

		keys := make([]string, 0, len(args)-1)
		for _, k := range args[1:] {
			keys = append(keys, patients.NormalizeKey(tech, k))
		}

		loaded, warmErr := container.Fetcher().Warm(cmd.Context(), tech, keys...)
		if warmErr != nil {
			logger.Warn().Err(warmErr).Msg("some variants failed to load")
		}

		out := cmd.OutOrStdout()
		store := container.Store()
		for _, key := range keys {
			all, ok := store.Lookup(tech, key, patients.FilterAll)
			if !ok {
				fmt.Fprintf(out, "%s\tfailed\n", key)
				continue
			}
			fmt.Fprintf(out, "%s\t%d patients\thetero %d\thomo %d\n", key, all.TotalMatched, all.HeteroCount, all.HomoCount)
		}
		fmt.Fprintf(out, "loaded %d/%d\n", loaded, len(keys))

		if loaded == 0 {
			return warmErr
		}
		return nil
	},
}
