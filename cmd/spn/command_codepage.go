package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/SanjoDeundiak/suspendable-process/pkg/lib/codepage"
	"github.com/SanjoDeundiak/suspendable-process/pkg/lib/textstream"
)

func newCodePageCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "codepage [id...]",
		Short: "Describe code pages (defaults to the console input and output pages)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseCodePages(args)
			if err != nil {
				return err
			}
			infos := make([]codepage.Info, 0, len(ids))
			for _, id := range ids {
				info, err := codepage.Lookup(id)
				if err != nil {
					return err
				}
				infos = append(infos, info)
			}
			printCodePageTable(cmd.OutOrStdout(), infos)
			return nil
		},
	}
	return cmd
}

func parseCodePages(args []string) ([]uint32, error) {
	if len(args) == 0 {
		in, out := textstream.InputCodePage(), textstream.OutputCodePage()
		if in == out {
			return []uint32{in}, nil
		}
		return []uint32{in, out}, nil
	}
	ids := make([]uint32, 0, len(args))
	for _, a := range args {
		id, err := strconv.ParseUint(a, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid code page %q: %w", a, err)
		}
		ids = append(ids, uint32(id))
	}
	return ids, nil
}
