package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/jward/lineage"
	"github.com/jward/lineage/internal/logger"
)

var (
	flagIDs     string
	flagTopDown bool
)

var namesCmd = &cobra.Command{
	Use:   "names",
	Short: "Work with dotted-name hierarchies",
}

var namesLinearizeCmd = &cobra.Command{
	Use:   "linearize <id>",
	Short: "Linearize a dotted name",
	Long:  "Builds a name graph from <id> and any --ids, then prints the bottom-up (or --top-down) linearization of <id>.",
	Args:  cobra.ExactArgs(1),
	RunE:  runNamesLinearize,
}

func init() {
	namesLinearizeCmd.Flags().StringVar(&flagIDs, "ids", "", "comma-separated extra ids to add to the graph (e.g. a.b,a.c.d)")
	namesLinearizeCmd.Flags().BoolVar(&flagTopDown, "top-down", false, "linearize descendants instead of ancestors")
	namesCmd.AddCommand(namesLinearizeCmd)
}

func runNamesLinearize(cmd *cobra.Command, args []string) error {
	const command = "names linearize"
	g := lineage.NewNameGraph(lineage.WithLogger(logger.Base()))
	for _, id := range splitList(flagIDs) {
		g.Category(id)
	}
	start := g.Category(args[0])
	logger.Logger.Debugw("name graph built", logger.FieldCount, g.Len())
	return outputResult(CLIResult{
		Command: command,
		Results: linearize(start, flagTopDown),
	})
}

// linearize runs the categorization's default policy in one direction.
func linearize(start *lineage.Category, topDown bool) CLILinearization {
	cz := start.Categorization()
	if topDown {
		return toCLILinearization(start, "top-down", cz.TopDown(), start.TopDown())
	}
	return toCLILinearization(start, "bottom-up", cz.BottomUp(), start.BottomUp())
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
