// Package main provides scalectl, a command line tool for SCALE type
// expressions, values and runtime metadata.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/Polkadex-Substrate/go-scale/config"
	"github.com/Polkadex-Substrate/go-scale/log"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"
)

const flagConfig = "config"

var logger = log.NewLogger("scalectl")

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		logger.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

// app carries the configuration loaded before any subcommand runs.
type app struct {
	cfgPath string
	cfg     *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "scalectl",
		Short: "Inspect SCALE types, values and runtime metadata",
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(a.cfgPath)
			if err != nil {
				return err
			}
			a.cfg = cfg
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&a.cfgPath, flagConfig, "", "config file (default is ./scale.yaml)")

	root.AddCommand(
		newTypedefCmd(),
		newEncodeCmd(a),
		newDecodeCmd(a),
		newMetadataCmd(a),
		newCacheCmd(a),
	)
	return root
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// parseJSON reads a JSON argument, keeping numbers exact. Input that is not
// JSON is taken as a plain string.
func parseJSON(arg string) interface{} {
	dec := json.NewDecoder(strings.NewReader(arg))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil || dec.More() {
		return arg
	}
	return v
}

func decodeHex(s string) ([]byte, error) {
	if !strings.HasPrefix(s, "0x") {
		s = "0x" + s
	}
	return hexutil.Decode(s)
}

// readBlob reads a file holding either raw bytes or 0x-prefixed hex.
func readBlob(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	trimmed := bytes.TrimSpace(data)
	if bytes.HasPrefix(trimmed, []byte("0x")) {
		out, err := decodeHex(string(trimmed))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return out, nil
	}
	return data, nil
}
