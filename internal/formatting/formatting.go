// Package formatting renders preview snapshots, import results, catalog
// pages, and dashboard counts as terminal tables.
package formatting

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"mcpdock/internal/api"
	"mcpdock/internal/profile"
	"mcpdock/internal/registry"
	"mcpdock/internal/report"
)

// maxCellWidth truncates long free-text cells so one verbose description
// does not blow up the whole table.
const maxCellWidth = 60

// newTable creates a table with the standard styling, mirrored to w.
func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	return t
}

func truncate(s string) string {
	if len(s) > maxCellWidth {
		return s[:maxCellWidth-3] + "..."
	}
	return s
}

// RenderPreview renders the items of a preview pass grouped by server. Items
// carrying an error are rendered in the error color with their message in
// the detail column.
func RenderPreview(w io.Writer, resp *api.PreviewResponse) {
	if resp == nil || len(resp.Items) == 0 {
		fmt.Fprintf(w, "%s\n", text.FgYellow.Sprint("No capabilities found"))
		return
	}

	t := newTable(w)
	t.AppendHeader(table.Row{
		text.FgHiCyan.Sprint("SERVER"),
		text.FgHiCyan.Sprint("KIND"),
		text.FgHiCyan.Sprint("NAME"),
		text.FgHiCyan.Sprint("DETAIL"),
	})

	for _, item := range resp.Items {
		if item.Error != "" {
			t.AppendRow(table.Row{
				item.ServerName,
				string(item.Kind),
				text.FgRed.Sprint("unreachable"),
				text.FgRed.Sprint(truncate(item.Error)),
			})
			continue
		}
		t.AppendRow(table.Row{
			item.ServerName,
			string(item.Kind),
			item.Title(),
			truncate(item.Description()),
		})
	}
	t.Render()

	if names := resp.ItemErrorNames(); len(names) > 0 {
		fmt.Fprintf(w, "%s %d server(s) could not be reached\n",
			text.FgYellow.Sprint("!"), len(names))
	}
}

// RenderImportStats renders the imported/skipped/failed projection of an
// import response.
func RenderImportStats(w io.Writer, s report.Stats) {
	t := newTable(w)
	t.AppendHeader(table.Row{
		text.FgHiCyan.Sprint("SERVER"),
		text.FgHiCyan.Sprint("RESULT"),
		text.FgHiCyan.Sprint("DETAIL"),
	})

	for _, name := range s.Imported {
		t.AppendRow(table.Row{name, text.FgGreen.Sprint("imported"), ""})
	}
	for _, rec := range s.Skipped {
		t.AppendRow(table.Row{rec.Name, text.FgYellow.Sprint("skipped"), truncate(rec.Reason)})
	}
	for _, rec := range s.Failed {
		t.AppendRow(table.Row{rec.Name, text.FgRed.Sprint("failed"), truncate(rec.Error)})
	}
	t.Render()

	fmt.Fprintf(w, "%s %d imported, %d skipped, %d failed\n",
		text.FgHiBlue.Sprint("Total:"), len(s.Imported), len(s.Skipped), len(s.Failed))
}

// RenderMessage prints an operator message with a severity marker.
func RenderMessage(w io.Writer, m report.Message) {
	var marker string
	switch m.Severity {
	case report.SeveritySuccess:
		marker = text.FgGreen.Sprint("✓")
	case report.SeverityWarning:
		marker = text.FgYellow.Sprint("!")
	case report.SeverityError:
		marker = text.FgRed.Sprint("✗")
	default:
		marker = text.FgHiBlue.Sprint("•")
	}
	fmt.Fprintf(w, "%s %s\n", marker, text.Bold.Sprint(m.Title))
	if m.Body != "" {
		fmt.Fprintf(w, "  %s\n", m.Body)
	}
}

// RenderCatalogPage renders one catalog page. Entries matching the installed
// blacklist are marked rather than hidden so the operator sees why an entry
// is not offered.
func RenderCatalogPage(w io.Writer, entries []api.RegistryEntry, installed *registry.Blacklist, page int, hasNext bool) {
	if len(entries) == 0 {
		fmt.Fprintf(w, "%s\n", text.FgYellow.Sprint("No servers found"))
		return
	}

	t := newTable(w)
	t.AppendHeader(table.Row{
		text.FgHiCyan.Sprint("NAME"),
		text.FgHiCyan.Sprint("VERSION"),
		text.FgHiCyan.Sprint("DESCRIPTION"),
		text.FgHiCyan.Sprint("STATUS"),
	})

	for _, e := range entries {
		status := ""
		if installed != nil && installed.Contains(e) {
			status = text.FgYellow.Sprint("installed")
		}
		t.AppendRow(table.Row{
			registry.DisplayName(e),
			e.Version,
			truncate(e.Description),
			status,
		})
	}
	t.Render()

	nav := fmt.Sprintf("Page %d", page)
	if hasNext {
		nav += " (more available)"
	}
	fmt.Fprintf(w, "%s\n", text.FgHiBlue.Sprint(nav))
}

// RenderCapabilityCounts renders the per-kind enabled/total dashboard
// summary in a fixed kind order.
func RenderCapabilityCounts(w io.Writer, summary profile.Summary) {
	t := newTable(w)
	t.AppendHeader(table.Row{
		text.FgHiCyan.Sprint("KIND"),
		text.FgHiCyan.Sprint("ENABLED"),
		text.FgHiCyan.Sprint("TOTAL"),
	})

	kinds := []api.CapabilityKind{
		api.CapabilityServer,
		api.CapabilityTool,
		api.CapabilityResource,
		api.CapabilityPrompt,
	}
	for _, kind := range kinds {
		c := summary.Counts[kind]
		t.AppendRow(table.Row{string(kind), c.EnabledCount, c.TotalCount})
	}
	t.Render()
}
