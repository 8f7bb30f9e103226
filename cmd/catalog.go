package cmd

import (
	"github.com/spf13/cobra"

	"mcpdock/internal/formatting"
	"mcpdock/internal/pagination"
	"mcpdock/internal/registry"
)

// newCatalogCmd creates the command that browses the server catalog page by
// page using opaque cursors.
func newCatalogCmd() *cobra.Command {
	var (
		search   string
		limit    int
		maxPages int
	)

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Browse the MCP server catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newBackendClient()
			if err != nil {
				return err
			}

			if limit <= 0 {
				limit = settings.CatalogPageSize
			}

			pager := pagination.NewPager(nil)
			for {
				page, err := client.ListCatalog(cmd.Context(), pager.Cursor(), search, limit)
				if err != nil {
					return err
				}

				entries := registry.Dedupe(page.Servers)
				pager.SetHasNextPage(page.Metadata.NextCursor != "")
				formatting.RenderCatalogPage(cmd.OutOrStdout(), entries, nil, pager.CurrentPage(), pager.HasNextPage())

				if !pager.HasNextPage() || pager.CurrentPage() >= maxPages {
					return nil
				}
				pager.GoToNext(page.Metadata.NextCursor)
			}
		},
	}

	cmd.Flags().StringVar(&search, "search", "", "filter servers by search term")
	cmd.Flags().IntVar(&limit, "limit", 0, "page size (default from config)")
	cmd.Flags().IntVar(&maxPages, "pages", 1, "number of pages to fetch")

	return cmd
}
