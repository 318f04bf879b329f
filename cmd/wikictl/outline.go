package main

import (
	"fmt"
	"io"

	wiki "agora/internal/domain/models/wiki"

	"github.com/jedib0t/go-pretty/v6/list"
	"github.com/spf13/cobra"
)

func newOutlineCmd() *cobra.Command {
	var showIDs bool

	cmd := &cobra.Command{
		Use:   "outline",
		Short: "Print the section tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			rt, err := openRuntime(ctx)
			if err != nil {
				return err
			}
			defer rt.close()

			tree, err := rt.services.Reader.GetTree(ctx)
			if err != nil {
				return err
			}
			renderOutline(cmd.OutOrStdout(), tree, showIDs)
			return nil
		},
	}

	cmd.Flags().BoolVar(&showIDs, "ids", false, "Show section ids")

	return cmd
}

func renderOutline(w io.Writer, tree []*wiki.TreeNode, showIDs bool) {
	l := list.NewWriter()
	l.SetOutputMirror(w)
	l.SetStyle(list.StyleConnectedLight)

	var walk func(nodes []*wiki.TreeNode)
	walk = func(nodes []*wiki.TreeNode) {
		for _, n := range nodes {
			item := fmt.Sprintf("%s (/%s)", n.Title, n.Slug)
			if showIDs {
				item += " " + n.ID
			}
			l.AppendItem(item)
			if len(n.Children) > 0 {
				l.Indent()
				walk(n.Children)
				l.UnIndent()
			}
		}
	}
	walk(tree)

	l.Render()
}
