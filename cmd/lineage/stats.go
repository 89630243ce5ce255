package main

import (
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/spf13/cobra"

	"github.com/jward/lineage/internal/metrics"
)

var statsCmd = &cobra.Command{
	Use:   "stats <file>",
	Short: "Linearize every manifest category and report engine metrics",
	Long: "Builds the manifest <file> with metrics attached, linearizes every category bottom-up " +
		"and top-down, and prints the gathered Prometheus samples.",
	Args: cobra.ExactArgs(1),
	RunE: runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	const command = "stats"
	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(reg)

	b, err := loadManifest(args[0], collector.Options()...)
	if err != nil {
		return outputError(command, err)
	}
	for _, c := range b.Graph.Categorization().Categories() {
		c.BottomUp()
		c.TopDown()
	}

	families, err := reg.Gather()
	if err != nil {
		return outputError(command, err)
	}
	out := toCLIMetrics(families)
	count := len(out)
	return outputResult(CLIResult{Command: command, Results: out, TotalCount: &count})
}

// toCLIMetrics flattens gathered families into one entry per sample.
// Histograms report their sum as Value and their sample count as Count.
func toCLIMetrics(families []*dto.MetricFamily) []CLIMetric {
	out := []CLIMetric{}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			cm := CLIMetric{Name: mf.GetName()}
			if pairs := m.GetLabel(); len(pairs) > 0 {
				cm.Labels = make(map[string]string, len(pairs))
				for _, lp := range pairs {
					cm.Labels[lp.GetName()] = lp.GetValue()
				}
			}
			switch {
			case m.GetCounter() != nil:
				cm.Value = m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				cm.Value = m.GetGauge().GetValue()
			case m.GetHistogram() != nil:
				cm.Value = m.GetHistogram().GetSampleSum()
				cm.Count = m.GetHistogram().GetSampleCount()
			}
			out = append(out, cm)
		}
	}
	return out
}
