package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/t13-mirror/internal/replay"
)

var fixtureCmd = &cobra.Command{
	Use:   "fixture",
	Short: "Matcher regression fixtures",
}

var fixtureCheckCmd = &cobra.Command{
	Use:   "check <file>",
	Short: "Run a matcher fixture and report cases that disagree",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fx, err := replay.LoadFixture(args[0])
		if err != nil {
			return err
		}
		mismatches := fx.Check()
		out := cmd.OutOrStdout()
		if jsonOut {
			if err := printJSON(out, mismatches); err != nil {
				return err
			}
		} else {
			for _, m := range mismatches {
				fmt.Fprintf(out, "FAIL %s: %s\n", m.Case, m.Reason)
			}
			fmt.Fprintf(out, "%d/%d cases passed\n", len(fx.Cases)-len(mismatches), len(fx.Cases))
		}
		if len(mismatches) > 0 {
			return fmt.Errorf("%d fixture cases failed", len(mismatches))
		}
		return nil
	},
}

func init() {
	fixtureCmd.AddCommand(fixtureCheckCmd)
}
