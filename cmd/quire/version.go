package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/quire"
	"github.com/aretw0/quire/internal/presentation/tui"
	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version number of quire",
		Run: func(cmd *cobra.Command, args []string) {
			if banner, _ := cmd.Flags().GetBool("banner"); banner {
				tui.PrintBanner(cmd.OutOrStdout())
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", quire.AppName, strings.TrimSpace(quire.Version))
		},
	}
	cmd.Flags().Bool("banner", false, "Print the banner before the version")
	return cmd
}
