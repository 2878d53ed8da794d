package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/aretw0/quire/internal/presentation/graph"
	"github.com/aretw0/quire/internal/presentation/tui"
	"github.com/aretw0/quire/pkg/domain"
	"github.com/aretw0/quire/pkg/links"
	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the stories in the library",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer app.Close()

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tPASSAGES\tFORMAT\tUPDATED")
			for _, s := range app.Library.Stories() {
				f := s.Format()
				fmt.Fprintf(w, "%s\t%d\t%s %s\t%s\n", s.Name, len(s.Passages), f.Name, f.Version,
					s.LastUpdate.Format("2006-01-02 15:04"))
			}
			return w.Flush()
		},
	}
}

func newNewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "new <name>",
		Short: "Create an empty story",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer app.Close()

			s, err := app.Library.NewStory(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), s.ID)
			return nil
		},
	}
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats <story>",
		Short: "Show word, passage and link counts",
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
			stats := links.StoryStats(s)
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "Characters\t%d\n", stats.Characters)
			fmt.Fprintf(w, "Words\t%d\n", stats.Words)
			fmt.Fprintf(w, "Passages\t%d\n", stats.Passages)
			fmt.Fprintf(w, "Links\t%d\n", stats.Links)
			fmt.Fprintf(w, "Broken Links\t%d\n", stats.BrokenLinks)
			fmt.Fprintf(w, "Last Update\t%s\n", stats.LastUpdate.Format("2006-01-02 15:04"))
			fmt.Fprintf(w, "IFID\t%s\n", s.IFID)
			return w.Flush()
		},
	}
}

func newLinksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "links <story>",
		Short: "List the links between passages",
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
			g := links.Build(s)
			list := g.Links
			if broken, _ := cmd.Flags().GetBool("broken"); broken {
				list = g.OfKind(links.KindBroken)
			}
			for _, l := range list {
				line := fmt.Sprintf("%s -> %s", l.From.Name, l.Target)
				if l.Kind == links.KindBroken {
					line = tui.Warn(line + " (broken)")
				}
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		},
	}
	cmd.Flags().Bool("broken", false, "Only list links to passages that do not exist")
	return cmd
}

// graphCmd represents the graph command
func newGraphCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "graph <story>",
		Short: "Export the story map as a Mermaid diagram",
		Long:  `Inspects a story and outputs a Mermaid diagram (graph TD) of its passages and links.`,
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
			fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(s))
			return nil
		},
	}
}

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <story> [passage]",
		Short: "Print a story's passages, or a single passage",
		Args:  cobra.RangeArgs(1, 2),
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
			passages := s.Passages
			if len(args) == 2 {
				p := s.PassageByName(args[1])
				if p == nil {
					return fmt.Errorf("%w: %s", domain.ErrPassageNotFound, args[1])
				}
				passages = []*domain.Passage{p}
			}

			render := tui.NewRenderer()
			for _, p := range passages {
				heading := "## " + p.Name
				if p.ID == s.StartPassage {
					heading += " (start)"
				}
				out, err := render(heading + "\n\n" + p.Text + "\n")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), out)
			}
			return nil
		},
	}
}

func newRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <story> <passage> <new name>",
		Short: "Rename a passage and update the links that point to it",
		Args:  cobra.ExactArgs(3),
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
			p := s.PassageByName(args[1])
			if p == nil {
				return fmt.Errorf("%w: %s", domain.ErrPassageNotFound, args[1])
			}
			return app.Library.RenamePassage(s.ID, p.ID, args[2])
		},
	}
}

func newRepairCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repair",
		Short: "Repair every story and save the corrections",
		Long: `Opening the library repairs every story and writes the healed stories back.
This command does only that and reports the corrections made, by field.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer app.Close()

			families, err := app.Registry.Gather()
			if err != nil {
				return err
			}
			total := 0
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, f := range families {
				if f.GetName() != "quire_repair_corrections_total" {
					continue
				}
				for _, m := range f.GetMetric() {
					n := int(m.GetCounter().GetValue())
					total += n
					for _, l := range m.GetLabel() {
						fmt.Fprintf(w, "%s\t%d\n", l.GetValue(), n)
					}
				}
			}
			fmt.Fprintf(w, "Total\t%d\n", total)
			return w.Flush()
		},
	}
}
