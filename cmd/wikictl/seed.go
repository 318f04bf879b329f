package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"agora/internal/domain/models"
	wiki "agora/internal/domain/models/wiki"
	wikiSvc "agora/internal/domain/services/wiki"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// seedFile is the YAML outline accepted by `wikictl seed`:
//
//	sections:
//	  - title: Getting Started
//	    content: |
//	      Welcome.
//	    children:
//	      - title: Installation
//	        slug: install
//	        content: Run the installer.
type seedFile struct {
	Sections []seedSection `yaml:"sections"`
}

type seedSection struct {
	Title      string        `yaml:"title"`
	Slug       string        `yaml:"slug"`
	Content    string        `yaml:"content"`
	OrderIndex *int          `yaml:"order_index"`
	Children   []seedSection `yaml:"children"`
}

func parseSeedFile(r io.Reader) (*seedFile, error) {
	var f seedFile
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&f); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	if len(f.Sections) == 0 {
		return nil, fmt.Errorf("seed file has no sections")
	}
	return &f, nil
}

// seedSections pushes every section through the normal request pipeline:
// submit an add_section request, then approve it. Parents are created first
// so children can reference their ids.
func seedSections(ctx context.Context, requests wikiSvc.EditRequestService, approvals wikiSvc.ApprovalService,
	principal models.Principal, sections []seedSection, parentID *string, out io.Writer) (int, error) {
	created := 0
	for _, s := range sections {
		title, content := s.Title, s.Content
		submit := &wikiSvc.SubmitRequest{
			Kind:            wiki.KindAddSection,
			ParentSectionID: parentID,
			Title:           &title,
			Content:         &content,
			OrderIndex:      s.OrderIndex,
		}
		if s.Slug != "" {
			slug := s.Slug
			submit.Slug = &slug
		}

		req, err := requests.Submit(ctx, principal, submit)
		if err != nil {
			return created, fmt.Errorf("submit %q: %w", s.Title, err)
		}
		note := "seeded by wikictl"
		result, err := approvals.Approve(ctx, principal, req.ID, &note)
		if err != nil {
			return created, fmt.Errorf("approve %q: %w", s.Title, err)
		}
		created++
		fmt.Fprintf(out, "created %s (%s)\n", result.Section.Slug, result.Section.ID)

		if len(s.Children) > 0 {
			n, err := seedSections(ctx, requests, approvals, principal, s.Children, &result.Section.ID, out)
			created += n
			if err != nil {
				return created, err
			}
		}
	}
	return created, nil
}

func newSeedCmd() *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "seed <file.yaml>",
		Short: "Create sections from a YAML outline",
		Long:  "Each section is submitted and approved as an add_section request, so seeded content has normal version history.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			outline, err := parseSeedFile(f)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			rt, err := openRuntime(ctx)
			if err != nil {
				return err
			}
			defer rt.close()

			if rt.cfg.UsesMemoryStore() {
				rt.logger.Warn("seeding the in-memory store; nothing will persist")
			}

			principal := models.Principal{UserID: userID, IsAdmin: true}
			n, err := seedSections(ctx, rt.services.EditRequests, rt.services.Approvals, principal, outline.Sections, nil, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d sections\n", n)
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "as", "wikictl", "User id recorded as requester and reviewer")

	return cmd
}
