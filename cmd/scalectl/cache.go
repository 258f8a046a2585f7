package main

import (
	"fmt"
	"strconv"

	"github.com/Polkadex-Substrate/go-scale/cache"
	"github.com/spf13/cobra"
)

func newCacheCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the metadata cache",
	}
	cmd.AddCommand(newCachePutCmd(a), newCacheListCmd(a), newCachePruneCmd(a))
	return cmd
}

func newCachePutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "put <specVersion> <file>",
		Short: "Validate and store a metadata blob",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			specVersion, err := strconv.ParseUint(args[0], 10, 32)
			if err != nil {
				return fmt.Errorf("spec version %q: %w", args[0], err)
			}
			raw, err := readBlob(args[1])
			if err != nil {
				return err
			}
			c, err := a.cfg.OpenCache()
			if err != nil {
				return err
			}
			defer c.Close()
			digest, err := c.Put(uint32(specVersion), raw)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%d %x\n", specVersion, digest)
			return err
		},
	}
}

func newCacheListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List cached spec versions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.cfg.OpenCache()
			if err != nil {
				return err
			}
			defer c.Close()
			versions, err := c.Versions()
			if err != nil {
				return err
			}
			for _, v := range versions {
				raw, err := c.Get(v)
				if err != nil {
					return err
				}
				digest := cache.Digest(raw)
				if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%d %x\n", v, digest); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func newCachePruneCmd(a *app) *cobra.Command {
	var keep int
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete all but the newest cached versions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if keep < 0 {
				return fmt.Errorf("--keep %d: %w", keep, cache.ErrNegativeKeep)
			}
			c, err := a.cfg.OpenCache()
			if err != nil {
				return err
			}
			defer c.Close()
			removed, err := c.Prune(keep)
			if err != nil {
				return err
			}
			for _, v := range removed {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), v); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&keep, "keep", 3, "number of versions to keep")
	return cmd
}
