package main

import (
	"fmt"

	"github.com/ZaguanLabs/wptl"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func (a *app) newPagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pages",
		Short: "List the pages of the configured site",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.wordpressClient()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			user, err := client.Authenticate(ctx)
			if err != nil {
				return err
			}
			pages, err := client.ListPages(ctx)
			if err != nil {
				return err
			}

			if a.jsonOut {
				type pageOut struct {
					ID     int    `json:"id"`
					Title  string `json:"title"`
					Status string `json:"status"`
					Slug   string `json:"slug"`
					Link   string `json:"link,omitempty"`
				}
				out := make([]pageOut, 0, len(pages))
				for _, p := range pages {
					out = append(out, pageOut{ID: p.ID, Title: p.Title, Status: p.Status, Slug: p.Slug, Link: p.Link})
				}
				return a.writeJSON(out)
			}

			if !a.quiet {
				fmt.Fprintf(a.stderr, "Connected to %s as %s\n", client.SiteURL(), user.Name)
			}
			t := table.NewWriter()
			t.SetOutputMirror(a.stdout)
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"ID", "Title", "Status", "Slug"})
			for _, p := range pages {
				t.AppendRow(table.Row{p.ID, truncate(p.Title, 50), p.Status, p.Slug})
			}
			t.AppendFooter(table.Row{"", fmt.Sprintf("%d pages", len(pages)), "", ""})
			t.Render()
			return nil
		},
	}
}

func (a *app) newLanguagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "languages",
		Short: "List the target languages offered by default",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.jsonOut {
				return a.writeJSON(wptl.Languages)
			}
			t := table.NewWriter()
			t.SetOutputMirror(a.stdout)
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"Code", "Language", "Direction"})
			for _, l := range wptl.Languages {
				t.AppendRow(table.Row{l.Code, l.Name, wptl.GetDirection(l.Code)})
			}
			t.Render()
			return nil
		},
	}
}
