package main

import (
	"encoding/json"
	"fmt"
	"io"

	wiki "agora/internal/domain/models/wiki"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func newPendingCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "pending",
		Short: "List pending edit requests grouped by section",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			rt, err := openRuntime(ctx)
			if err != nil {
				return err
			}
			defer rt.close()

			groups, err := rt.services.EditRequests.ListPending(ctx)
			if err != nil {
				return err
			}

			switch format {
			case "json":
				encoder := json.NewEncoder(cmd.OutOrStdout())
				encoder.SetIndent("", "  ")
				return encoder.Encode(groups)
			case "table":
				renderPendingTable(cmd.OutOrStdout(), groups)
				return nil
			default:
				return fmt.Errorf("invalid format: %s (valid values: table, json)", format)
			}
		},
	}

	cmd.Flags().StringVar(&format, "format", "table", "Output format: table or json")

	return cmd
}

// proposedTitle is what the reviewer sees in the Title column
func proposedTitle(req *wiki.EditRequest) string {
	if req.ProposedTitle != nil {
		return *req.ProposedTitle
	}
	return "-"
}

func renderPendingTable(w io.Writer, groups []wiki.RequestGroup) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Section", "Request", "Type", "Title", "Requested By", "Requested At"})

	total := 0
	for i, g := range groups {
		for _, req := range g.Requests {
			t.AppendRow(table.Row{
				g.SectionTitle,
				req.ID,
				string(req.Kind),
				proposedTitle(req),
				req.RequestedBy,
				req.RequestedAt.Format("2006-01-02 15:04:05"),
			})
			total++
		}
		if i < len(groups)-1 {
			t.AppendSeparator()
		}
	}
	t.AppendFooter(table.Row{"", "", "", "", "Total", total})

	t.Render()
}
