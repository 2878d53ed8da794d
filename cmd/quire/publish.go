package main

import (
	"fmt"
	"os"

	"github.com/aretw0/quire"
	"github.com/aretw0/quire/internal/cli"
	"github.com/aretw0/quire/pkg/adapters/loam"
	"github.com/aretw0/quire/pkg/domain"
	"github.com/spf13/cobra"
)

// newPublishCmd builds publish, test and proof, which differ only in the library call.
func newPublishCmd(mode, short string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   mode + " <story>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer app.Close()

			s, err := app.Story(args[0])
			if err != nil {
				return err
			}

			var page string
			switch mode {
			case "test":
				startID := ""
				if name, _ := cmd.Flags().GetString("start"); name != "" {
					p := s.PassageByName(name)
					if p == nil {
						return fmt.Errorf("%w: %s", domain.ErrPassageNotFound, name)
					}
					startID = p.ID
				}
				page, err = app.Library.Test(cmd.Context(), s.ID, startID)
			case "proof":
				page, err = app.Library.Proof(cmd.Context(), s.ID)
			default:
				page, err = app.Library.Publish(cmd.Context(), s.ID)
			}
			if err != nil {
				return err
			}
			out, _ := cmd.Flags().GetString("output")
			return writeOutput(cmd, out, page)
		},
	}
	cmd.Flags().StringP("output", "o", "", "Write to this file instead of stdout")
	if mode == "test" {
		cmd.Flags().String("start", "", "Name of the passage to start from")
	}
	return cmd
}

func newArchiveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Export every story as a Twine archive",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer app.Close()

			out, _ := cmd.Flags().GetString("output")
			return writeOutput(cmd, out, app.Library.Archive())
		},
	}
	cmd.Flags().StringP("output", "o", "", "Write to this file instead of stdout")
	return cmd
}

func newImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file.html>",
		Short: "Import stories from a published story or archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			app, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer app.Close()

			replace, _ := cmd.Flags().GetBool("replace")
			imported, err := app.Library.ImportHTML(f, quire.ImportOptions{Replace: replace})
			if err != nil {
				return err
			}
			for _, s := range imported {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", s.ID, s.Name)
			}
			return nil
		},
	}
	cmd.Flags().Bool("replace", false, "Replace stories with the same name instead of renaming the import")
	return cmd
}

func newImportDirCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import-dir <dir>",
		Short: "Import a story written as a directory of Markdown passages",
		Long: `Reads every Markdown file in dir as a passage, using front matter for
passage metadata, and imports the result as one story. With --watch the
story is re-imported each time a file changes.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer app.Close()

			var opts []loam.Option
			if name, _ := cmd.Flags().GetString("name"); name != "" {
				opts = append(opts, loam.WithStoryName(name))
			}
			src, err := loam.Open(args[0], opts...)
			if err != nil {
				return err
			}

			if watch, _ := cmd.Flags().GetBool("watch"); watch {
				return cli.WatchImport(cmd.Context(), app, src, cmd.ErrOrStderr())
			}

			replace, _ := cmd.Flags().GetBool("replace")
			imported, err := app.Library.ImportFrom(cmd.Context(), src, quire.ImportOptions{Replace: replace})
			if err != nil {
				return err
			}
			for _, s := range imported {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", s.ID, s.Name)
			}
			return nil
		},
	}
	cmd.Flags().String("name", "", "Story name when no passage names one (default: the directory name)")
	cmd.Flags().Bool("replace", false, "Replace a story with the same name")
	cmd.Flags().Bool("watch", false, "Keep running and re-import on change")
	return cmd
}
