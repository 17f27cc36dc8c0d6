package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ternarybob/jora/internal/models"
)

var nowFunc = time.Now

// formatIssues formats issues as a markdown table
func formatIssues(title string, issues []models.Issue, today models.Date) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## %s (%d issues)\n\n", title, len(issues)))

	if len(issues) == 0 {
		sb.WriteString("No issues found.\n")
		return sb.String()
	}

	sb.WriteString("| Key | Summary | Status | Due | Created |\n")
	sb.WriteString("|-----|---------|--------|-----|---------|\n")
	for i := range issues {
		issue := &issues[i]
		due := "-"
		if issue.Fields.DueDate != nil {
			due = issue.Fields.DueDate.String()
			if issue.IsOverdue(today) {
				due += " **overdue**"
			}
		}
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s |\n",
			issue.Key,
			escapeCell(issue.Fields.Summary),
			issue.Fields.Status.Name,
			due,
			issue.Fields.Created.Format("2006-01-02"),
		))
	}
	return sb.String()
}

// formatBookmarks formats saved items as a markdown list ordered by time added, newest first
func formatBookmarks(items map[string]models.SavedItem) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## Saved articles (%d)\n\n", len(items)))

	if len(items) == 0 {
		sb.WriteString("No saved articles.\n")
		return sb.String()
	}

	for _, item := range sortedItems(items) {
		url := item.ResolvedURL
		if url == "" {
			url = item.GivenURL
		}
		title := item.Title()
		if title == "" {
			title = url
		}
		sb.WriteString(fmt.Sprintf("- [%s](%s)\n", title, url))
		if item.Excerpt != "" {
			sb.WriteString(fmt.Sprintf("  > %s\n", strings.ReplaceAll(item.Excerpt, "\n", " ")))
		}
	}
	return sb.String()
}

func sortedItems(items map[string]models.SavedItem) []models.SavedItem {
	out := make([]models.SavedItem, 0, len(items))
	for _, item := range items {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TimeAdded != out[j].TimeAdded {
			return out[i].TimeAdded > out[j].TimeAdded
		}
		return out[i].ItemID < out[j].ItemID
	})
	return out
}

// formatSelectResult formats query solutions as a markdown table, one column per variable
func formatSelectResult(result *models.SelectResult) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## Query results (%d solutions)\n\n", result.Len()))

	vars := result.Vars
	if len(vars) == 0 {
		vars = solutionVars(result.Bindings)
	}
	if result.Len() == 0 || len(vars) == 0 {
		sb.WriteString("No solutions.\n")
		return sb.String()
	}

	sb.WriteString("| " + strings.Join(vars, " | ") + " |\n")
	sb.WriteString("|" + strings.Repeat("---|", len(vars)) + "\n")
	for _, solution := range result.Bindings {
		cells := make([]string, len(vars))
		for i, v := range vars {
			if term, ok := solution[v]; ok {
				cells[i] = escapeCell(formatTerm(term))
			}
		}
		sb.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}
	return sb.String()
}

const xsdNamespace = "http://www.w3.org/2001/XMLSchema#"

// formatTerm renders IRIs as markdown autolinks and abbreviates XSD datatypes
func formatTerm(term models.RdfTerm) string {
	return models.MatchTerm(term,
		func(iri models.Iri) string {
			return "<" + iri.Value + ">"
		},
		func(lit models.Literal) string {
			if strings.HasPrefix(lit.Datatype, xsdNamespace) {
				return strconv.Quote(lit.Value) + "^^xsd:" + strings.TrimPrefix(lit.Datatype, xsdNamespace)
			}
			return lit.String()
		},
		func(bnode models.Bnode) string {
			return "_:" + bnode.Value
		},
	)
}

func solutionVars(bindings []models.Solution) []string {
	seen := map[string]bool{}
	var vars []string
	for _, solution := range bindings {
		for v := range solution {
			if !seen[v] {
				seen[v] = true
				vars = append(vars, v)
			}
		}
	}
	sort.Strings(vars)
	return vars
}

func escapeCell(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "|", "\\|"), "\n", " ")
}
