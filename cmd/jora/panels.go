package main

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/ternarybob/jora/internal/interfaces"
	"github.com/ternarybob/jora/internal/models"
)

// Panel names accepted on the command line and in dashboard.panels
const (
	PanelOverdue   = "overdue"
	PanelDueSoon   = "due-soon"
	PanelFilter    = "filter"
	PanelBookmarks = "bookmarks"
	PanelSparql    = "sparql"
)

// dashboard renders panels as plain-text tables
type dashboard struct {
	issues      interfaces.IssueService
	bookmarks   interfaces.BookmarkService
	graph       interfaces.GraphService
	sparqlQuery string
	now         func() time.Time
	out         io.Writer
}

// render runs one panel and writes its table
func (d *dashboard) render(ctx context.Context, panel string, args []string) error {
	switch panel {
	case PanelOverdue:
		issues, err := d.issues.GetOverdueIssues(ctx)
		if err != nil {
			return fmt.Errorf("overdue issues: %w", err)
		}
		return d.writeIssues("Overdue", issues)

	case PanelDueSoon:
		issues, err := d.issues.GetDueSoonIssues(ctx)
		if err != nil {
			return fmt.Errorf("due-soon issues: %w", err)
		}
		return d.writeIssues("Due in the next two weeks", issues)

	case PanelFilter:
		if len(args) == 0 {
			return fmt.Errorf("filter panel requires a filter id")
		}
		issues, err := d.issues.GetIssuesForFilter(ctx, args[0])
		if err != nil {
			return fmt.Errorf("filter %s: %w", args[0], err)
		}
		return d.writeIssues("Filter "+args[0], issues)

	case PanelBookmarks:
		items, err := d.bookmarks.RetrieveDefault(ctx)
		if err != nil {
			return fmt.Errorf("bookmarks: %w", err)
		}
		return writeBookmarks(d.out, items)

	case PanelSparql:
		query := d.sparqlQuery
		if len(args) > 0 {
			query = strings.Join(args, " ")
		}
		result, err := d.graph.Query(ctx, query)
		if err != nil {
			return fmt.Errorf("sparql: %w", err)
		}
		return writeSolutions(d.out, result)

	default:
		return fmt.Errorf("unknown panel %q", panel)
	}
}

func (d *dashboard) writeIssues(title string, issues []models.Issue) error {
	fmt.Fprintf(d.out, "%s (%d)\n", title, len(issues))
	return writeIssues(d.out, issues, models.DateOf(d.now()))
}

func writeIssues(w io.Writer, issues []models.Issue, today models.Date) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tSTATUS\tDUE\tSUMMARY")
	for i := range issues {
		issue := &issues[i]
		due := ""
		if issue.Fields.DueDate != nil {
			due = issue.Fields.DueDate.String()
			if issue.IsOverdue(today) {
				due += "!"
			}
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", issue.Key, issue.Fields.Status.Name, due, issue.Fields.Summary)
	}
	return tw.Flush()
}

func writeBookmarks(w io.Writer, items map[string]models.SavedItem) error {
	ids := make([]string, 0, len(items))
	for id := range items {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := items[ids[i]], items[ids[j]]
		if a.TimeAdded != b.TimeAdded {
			return a.TimeAdded > b.TimeAdded
		}
		return ids[i] < ids[j]
	})

	fmt.Fprintf(w, "Bookmarks (%d)\n", len(items))
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TITLE\tURL")
	for _, id := range ids {
		item := items[id]
		url := item.ResolvedURL
		if url == "" {
			url = item.GivenURL
		}
		fmt.Fprintf(tw, "%s\t%s\n", item.Title(), url)
	}
	return tw.Flush()
}

func writeSolutions(w io.Writer, result *models.SelectResult) error {
	fmt.Fprintf(w, "Solutions (%d)\n", result.Len())
	if len(result.Vars) == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "?"+strings.Join(result.Vars, "\t?"))
	for _, solution := range result.Bindings {
		cells := make([]string, len(result.Vars))
		for i, v := range result.Vars {
			if term, ok := solution[v]; ok {
				cells[i] = term.String()
			}
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}
