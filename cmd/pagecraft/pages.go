package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/aretw0/pagecraft"
	"github.com/aretw0/pagecraft/internal/presentation/graph"
	"github.com/aretw0/pagecraft/internal/presentation/html"
	"github.com/aretw0/pagecraft/internal/presentation/tui"
	"github.com/aretw0/pagecraft/pkg/schema"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored pages",
	RunE: func(cmd *cobra.Command, args []string) error {
		ed, err := newEditor(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer ed.Close()

		ids, err := ed.List(cmd.Context())
		if err != nil {
			return err
		}
		for _, id := range ids {
			fmt.Fprintln(cmd.OutOrStdout(), id)
		}
		return nil
	},
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <page>",
	Short: "Show the component tree of a page",
	Long: `Prints the page outline as rendered markdown, or as a Mermaid diagram
(graph TD) with --format mermaid. Nodes failing prop validation are
highlighted in the diagram.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		ed, err := newEditor(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer ed.Close()

		p, err := ed.Open(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		data := p.ToData()
		out := cmd.OutOrStdout()

		switch format {
		case "mermaid":
			overlay := &graph.Overlay{Invalid: invalidNodes(ed, data)}
			fmt.Fprint(out, graph.GenerateMermaid(data, overlay))
		case "markdown":
			fd := int(os.Stdout.Fd())
			width, _, _ := term.GetSize(fd)
			render := tui.NewRenderer(term.IsTerminal(fd), width)
			text, err := render(tui.Outline(data))
			if err != nil {
				return err
			}
			fmt.Fprint(out, text)
		default:
			return fmt.Errorf("unknown format %q: use markdown or mermaid", format)
		}
		return nil
	},
}

// invalidNodes returns the ids of components with props that fail their
// declared types.
func invalidNodes(ed *pagecraft.Editor, data *schema.PageData) []string {
	var ids []string
	data.Root().Walk(func(c *schema.ComponentSchema, _ int) bool {
		single := &schema.ComponentSchema{ID: c.ID, ComponentName: c.ComponentName, Props: c.Props}
		if schema.ValidateTree(single, ed.Registry().Resolver()) != nil {
			ids = append(ids, c.ID)
		}
		return true
	})
	return ids
}

var validateCmd = &cobra.Command{
	Use:   "validate <page>...",
	Short: "Check page props against their declared types",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ed, err := newEditor(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer ed.Close()

		out := cmd.OutOrStdout()
		failed := 0
		for _, id := range args {
			if _, err := ed.Open(cmd.Context(), id); err != nil {
				return err
			}
			if err := ed.Validate(id); err != nil {
				failed++
				fmt.Fprintf(out, "%s %s\n%v\n", tui.Status(false, "FAIL"), id, err)
				continue
			}
			fmt.Fprintf(out, "%s %s\n", tui.Status(true, "ok"), id)
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d pages failed validation", failed, len(args))
		}
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export-html <page>",
	Short: "Export a page as a static HTML skeleton",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")
		tags, _ := cmd.Flags().GetStringToString("tag")

		ed, err := newEditor(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer ed.Close()

		p, err := ed.Open(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		doc, err := html.Export(p.ToData(), html.WithTags(tags))
		if err != nil {
			return err
		}
		if output == "" {
			_, err = fmt.Fprint(cmd.OutOrStdout(), doc)
			return err
		}
		return os.WriteFile(output, []byte(doc), 0644)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of pagecraft",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "pagecraft version %s\n", pagecraft.Version)
	},
}

func init() {
	rootCmd.AddCommand(listCmd, inspectCmd, validateCmd, exportCmd, versionCmd)
	inspectCmd.Flags().StringP("format", "f", "markdown", "Output format: markdown or mermaid")
	exportCmd.Flags().StringP("output", "o", "", "Write to a file instead of stdout")
	exportCmd.Flags().StringToString("tag", nil, "Element for a component, e.g. --tag Button=button")
}
