package main

import (
	"fmt"

	"github.com/Polkadex-Substrate/go-scale/metadata"
	"github.com/Polkadex-Substrate/go-scale/metadata/decorate"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"
)

func newMetadataCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "metadata",
		Short: "Inspect runtime metadata blobs",
	}
	cmd.AddCommand(newMetadataInspectCmd(a), newMetadataKeyCmd(a))
	return cmd
}

func (a *app) decorate(path string) (*decorate.Decorated, error) {
	raw, err := readBlob(path)
	if err != nil {
		return nil, err
	}
	reg, err := a.cfg.Registry()
	if err != nil {
		return nil, err
	}
	md, err := metadata.Decode(reg, raw)
	if err != nil {
		return nil, err
	}
	return decorate.New(reg, md)
}

type moduleSummary struct {
	Name      string `json:"name"`
	Index     int    `json:"index"`
	Storage   int    `json:"storage"`
	Calls     int    `json:"calls"`
	Events    int    `json:"events"`
	Constants int    `json:"constants"`
	Errors    int    `json:"errors"`
}

type metadataSummary struct {
	Version          int             `json:"version"`
	ExtrinsicVersion uint8           `json:"extrinsicVersion"`
	SignedExtensions []string        `json:"signedExtensions"`
	Modules          []moduleSummary `json:"modules"`
}

func summarize(d *decorate.Decorated) metadataSummary {
	latest := d.Latest()
	out := metadataSummary{
		Version:          d.Metadata().Version(),
		ExtrinsicVersion: latest.Extrinsic.Version,
		SignedExtensions: latest.Extrinsic.SignedExtensions,
		Modules:          make([]moduleSummary, len(latest.Modules)),
	}
	for i, m := range latest.Modules {
		s := moduleSummary{
			Name:      m.Name,
			Index:     int(m.Index),
			Calls:     len(m.Calls),
			Events:    len(m.Events),
			Constants: len(m.Constants),
			Errors:    len(m.Errors),
		}
		if !m.IsIndexed() {
			s.Index = -1
		}
		if m.Storage != nil {
			s.Storage = len(m.Storage.Items)
		}
		out.Modules[i] = s
	}
	return out
}

func newMetadataInspectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <file>",
		Short: "Print the metadata version and per-module counts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.decorate(args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd, summarize(d))
		},
	}
}

func newMetadataKeyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "key <file> <section> <method> [json args...]",
		Short: "Print the storage key of an entry",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.decorate(args[0])
			if err != nil {
				return err
			}
			entry, ok := d.Storage[args[1]][args[2]]
			if !ok {
				return fmt.Errorf("no storage entry %s.%s", args[1], args[2])
			}
			keyArgs := make([]interface{}, len(args)-3)
			for i, arg := range args[3:] {
				keyArgs[i] = parseJSON(arg)
			}
			key, err := entry.Key(keyArgs...)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), hexutil.Encode(key))
			return err
		},
	}
}
