package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aretw0/quire/internal/cli"
	"github.com/aretw0/quire/internal/config"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "quire",
		Short: "Quire manages a library of interactive stories",
		Long: `Quire keeps a library of hypertext stories, checks their links,
and publishes them to playable HTML with Twine story formats.`,
		SilenceUsage: true,
	}

	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", config.DefaultPath, "Path to the configuration file (YAML or JSON)")
	rootCmd.PersistentFlags().String("library", "", "Override the library directory of the file backend")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().String("log-format", "text", "Log format: text or json")

	rootCmd.AddCommand(
		newVersionCmd(),
		newListCmd(),
		newNewCmd(),
		newStatsCmd(),
		newLinksCmd(),
		newGraphCmd(),
		newShowCmd(),
		newRenameCmd(),
		newPublishCmd("publish", "Publish a story to playable HTML"),
		newPublishCmd("test", "Publish a story in test mode"),
		newPublishCmd("proof", "Render a story with the proofing format"),
		newArchiveCmd(),
		newImportCmd(),
		newImportDirCmd(),
		newRepairCmd(),
		newServeCmd(),
		newMCPCmd(),
	)
	return rootCmd
}

// Execute runs the root command, exiting non-zero on failure.
func Execute() {
	ctx := cli.NewSignalContext(context.Background())
	defer ctx.Cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openApp loads the configuration named by the persistent flags and builds the library.
func openApp(cmd *cobra.Command, opts ...cli.AppOption) (*cli.App, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if lib, _ := cmd.Flags().GetString("library"); lib != "" {
		cfg.LibraryDir = lib
	}

	level, _ := cmd.Flags().GetString("log-level")
	format, _ := cmd.Flags().GetString("log-format")
	logger, err := cli.NewLogger(cmd.ErrOrStderr(), level, format)
	if err != nil {
		return nil, err
	}
	return cli.NewApp(cmd.Context(), cfg, logger, opts...)
}

// writeOutput writes content to path, or to the command's stdout when path is empty.
func writeOutput(cmd *cobra.Command, path, content string) error {
	if path == "" {
		_, err := fmt.Fprint(cmd.OutOrStdout(), content)
		return err
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	cli.PrintSystemMessage(cmd.ErrOrStderr(), "Wrote %s", path)
	return nil
}
