package main

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/cockroachdb/errors"
)

// formatLinearizationText prints one label per line, numbered.
func formatLinearizationText(w io.Writer, lin CLILinearization) {
	fmt.Fprintf(w, "%s from %s (%s)\n", lin.Direction, displayLabel(lin.Start), lin.Policy)
	for i, label := range lin.Categories {
		fmt.Fprintf(w, "%4d  %s\n", i, displayLabel(label))
	}
}

// formatPropertyText prints the effective value followed by shadowed ones.
func formatPropertyText(w io.Writer, p CLIProperty) {
	if !p.Present {
		fmt.Fprintf(w, "%s: %s is not set\n", displayLabel(p.Category), p.Key)
		return
	}
	scope := "inherited"
	if p.Local {
		scope = "local"
	}
	fmt.Fprintf(w, "%s: %s = %v (%s)\n", displayLabel(p.Category), p.Key, p.Value, scope)
	for _, v := range p.Values[1:] {
		fmt.Fprintf(w, "  shadowed: %v\n", v)
	}
}

// formatHierarchyText prints a hierarchy as labelled sections.
func formatHierarchyText(w io.Writer, h CLIHierarchy) {
	fmt.Fprintf(w, "Category: %s\n", displayLabel(h.Category))
	fmt.Fprintf(w, "Depth: %d\n", h.Depth)
	sections := []struct {
		title  string
		labels []string
	}{
		{"Parents", h.Parents},
		{"Children", h.Children},
		{"Ancestors", h.Ancestors},
		{"Descendants", h.Descendants},
		{"Local keys", h.LocalKeys},
	}
	for _, s := range sections {
		if len(s.labels) == 0 {
			continue
		}
		fmt.Fprintf(w, "\n%s:\n", s.title)
		for _, l := range s.labels {
			fmt.Fprintf(w, "  %s\n", displayLabel(l))
		}
	}
}

// formatSnapshotsText formats CLISnapshot results as aligned columns.
func formatSnapshotsText(w io.Writer, snaps []CLISnapshot) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tCATEGORIZATION\tCATEGORIES\tCREATED\tHASH")
	for _, s := range snaps {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n",
			s.Name, s.Categorization, s.CategoryCount, s.CreatedAt.Format(time.RFC3339), shortHash(s.Hash))
	}
	tw.Flush()
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}

func formatKeyCountsText(w io.Writer, counts []CLIKeyCount) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tVALUES")
	for _, c := range counts {
		fmt.Fprintf(tw, "%s\t%d\n", c.Key, c.Values)
	}
	tw.Flush()
}

func formatValueText(w io.Writer, v CLIValue) {
	fmt.Fprintf(w, "%s: %v\n", displayLabel(v.Category), v.Value)
}

// formatMetricsText formats CLIMetric results as aligned columns.
func formatMetricsText(w io.Writer, metrics []CLIMetric) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "METRIC\tLABELS\tVALUE\tCOUNT")
	for _, m := range metrics {
		fmt.Fprintf(tw, "%s\t%s\t%g\t%d\n", m.Name, formatLabels(m.Labels), m.Value, m.Count)
	}
	tw.Flush()
}

func formatLabels(labels map[string]string) string {
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + labels[k]
	}
	return strings.Join(parts, ",")
}

// displayLabel shows the empty root label of name graphs as "(root)".
func displayLabel(label string) string {
	if label == "" {
		return "(root)"
	}
	return label
}

// outputResultText dispatches to the appropriate text formatter based on the
// result type.
func outputResultText(w io.Writer, result CLIResult) error {
	switch v := result.Results.(type) {
	case CLILinearization:
		formatLinearizationText(w, v)
	case CLIProperty:
		formatPropertyText(w, v)
	case CLIHierarchy:
		formatHierarchyText(w, v)
	case CLISnapshot:
		formatSnapshotsText(w, []CLISnapshot{v})
	case []CLIKeyCount:
		formatKeyCountsText(w, v)
	case []CLISnapshot:
		formatSnapshotsText(w, v)
	case CLIValue:
		formatValueText(w, v)
	case []CLIMetric:
		formatMetricsText(w, v)
	case nil:
	default:
		return errors.Newf("unsupported result type for text format: %T", v)
	}
	return nil
}

// validFormats lists accepted values for --format.
var validFormats = []string{"json", "text"}

// validateFormat checks that the --format flag value is recognized.
func validateFormat(format string) error {
	if slices.Contains(validFormats, format) {
		return nil
	}
	return errors.Newf("invalid format %q: must be %s", format, strings.Join(validFormats, " or "))
}
