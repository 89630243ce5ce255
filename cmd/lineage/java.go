package main

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/jward/lineage"
	"github.com/jward/lineage/internal/javasrc"
	"github.com/jward/lineage/internal/logger"
)

var (
	flagPriority   string
	flagInterfaces string
)

var javaCmd = &cobra.Command{
	Use:   "java",
	Short: "Work with type hierarchies parsed from Java sources",
}

var javaLinearizeCmd = &cobra.Command{
	Use:   "linearize <dir> <type>",
	Short: "Linearize a Java type",
	Long: "Parses every .java file under <dir>, builds the type graph and prints the linearization of <type>. " +
		"<type> may be qualified or, when unambiguous, simple.",
	Args: cobra.ExactArgs(2),
	RunE: runJavaLinearize,
}

func init() {
	javaLinearizeCmd.Flags().BoolVar(&flagTopDown, "top-down", false, "linearize subtypes instead of supertypes")
	javaLinearizeCmd.Flags().StringVar(&flagPriority, "priority", "", "classes-first|interfaces-first (default from config)")
	javaLinearizeCmd.Flags().StringVar(&flagInterfaces, "interfaces", "", "declaration|reverse (default from config)")
	javaCmd.AddCommand(javaLinearizeCmd)
}

func runJavaLinearize(cmd *cobra.Command, args []string) error {
	const command = "java linearize"
	order, err := typeOrder()
	if err != nil {
		return outputError(command, err)
	}

	ix, err := javasrc.IndexDirectory(context.Background(), args[0],
		javasrc.WithLogger(logger.Base()),
		javasrc.WithConcurrency(cfg.TypeGraph.Concurrency),
	)
	if err != nil {
		return outputError(command, err)
	}
	t, ok := ix.Type(args[1])
	if !ok {
		return outputError(command, errors.Newf("type %q not found under %s", args[1], args[0]))
	}

	g := lineage.NewTypeGraph(order, lineage.WithLogger(logger.Base()))
	var start *lineage.Category
	if flagTopDown {
		if err := ix.Populate(g); err != nil {
			return outputError(command, err)
		}
	}
	if start, err = g.Category(t); err != nil {
		return outputError(command, err)
	}

	return outputResult(CLIResult{
		Command: command,
		Results: linearize(start, flagTopDown),
	})
}

// typeOrder applies --priority and --interfaces over the configured order.
func typeOrder() (lineage.TypeOrder, error) {
	order, err := cfg.TypeOrder()
	if err != nil {
		return order, err
	}
	if flagPriority != "" {
		if order.Priority, err = lineage.ParsePriority(flagPriority); err != nil {
			return order, err
		}
	}
	if flagInterfaces != "" {
		if order.Interfaces, err = lineage.ParseInterfaceOrder(flagInterfaces); err != nil {
			return order, err
		}
	}
	return order, nil
}
