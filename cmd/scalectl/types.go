package main

import (
	"fmt"

	"github.com/Polkadex-Substrate/go-scale/typedef"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"
)

func newTypedefCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "typedef <expr>",
		Short: "Print the parsed tree of a type expression",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			def, err := typedef.Parse(args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd, def)
		},
	}
}

func newEncodeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "encode <type> <json>",
		Short: "Encode a JSON value as the given type",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := a.cfg.Registry()
			if err != nil {
				return err
			}
			v, err := reg.CreateType(args[0], parseJSON(args[1]))
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), hexutil.Encode(v.Encode()))
			return err
		},
	}
}

func newDecodeCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "decode <type> <hex>",
		Short: "Decode hex input as the given type",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := decodeHex(args[1])
			if err != nil {
				return err
			}
			reg, err := a.cfg.Registry()
			if err != nil {
				return err
			}
			v, err := reg.DecodeType(args[0], data)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd, v.ToJSON())
			}
			return printJSON(cmd, v.ToHuman())
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the JSON form instead of the human-readable one")
	return cmd
}
