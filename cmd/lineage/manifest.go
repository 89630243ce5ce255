package main

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/jward/lineage"
	"github.com/jward/lineage/internal/logger"
	"github.com/jward/lineage/internal/manifest"
)

var flagSnapshotName string

var manifestCmd = &cobra.Command{
	Use:   "manifest",
	Short: "Work with YAML-declared hierarchies",
}

var manifestLinearizeCmd = &cobra.Command{
	Use:   "linearize <file> <label>",
	Short: "Linearize a manifest category",
	Args:  cobra.ExactArgs(2),
	RunE:  runManifestLinearize,
}

var manifestGetCmd = &cobra.Command{
	Use:   "get <file> <label> <key>",
	Short: "Resolve a property from a manifest category",
	Args:  cobra.ExactArgs(3),
	RunE:  runManifestGet,
}

var manifestHierarchyCmd = &cobra.Command{
	Use:   "hierarchy <file> <label>",
	Short: "Show parents, children, ancestors and descendants of a category",
	Args:  cobra.ExactArgs(2),
	RunE:  runManifestHierarchy,
}

var manifestSaveCmd = &cobra.Command{
	Use:   "save <file>",
	Short: "Save a manifest as a snapshot",
	Args:  cobra.ExactArgs(1),
	RunE:  runManifestSave,
}

func init() {
	manifestLinearizeCmd.Flags().BoolVar(&flagTopDown, "top-down", false, "linearize descendants instead of ancestors")
	manifestSaveCmd.Flags().StringVar(&flagSnapshotName, "name", "", "snapshot name (default: manifest name)")

	manifestCmd.AddCommand(manifestLinearizeCmd)
	manifestCmd.AddCommand(manifestGetCmd)
	manifestCmd.AddCommand(manifestHierarchyCmd)
	manifestCmd.AddCommand(manifestSaveCmd)
}

// loadManifest builds the manifest at path with logging attached.
func loadManifest(path string, opts ...lineage.Option) (*manifest.Built, error) {
	m, err := manifest.Load(path)
	if err != nil {
		return nil, err
	}
	b, err := m.Build(append([]lineage.Option{lineage.WithLogger(logger.Base())}, opts...)...)
	if err != nil {
		return nil, errors.Wrapf(err, "manifest %s", path)
	}
	logger.Logger.Debugw("manifest built",
		logger.FieldPath, path,
		logger.FieldCount, b.Graph.Len(),
	)
	return b, nil
}

func lookupLabel(g *lineage.LabelGraph, label string) (*lineage.Category, error) {
	c, ok := g.Lookup(label)
	if !ok {
		return nil, errors.WithHint(errors.Newf("category %q not found", label),
			"run `lineage manifest hierarchy <file> <root>` to list the declared categories")
	}
	return c, nil
}

func runManifestLinearize(cmd *cobra.Command, args []string) error {
	const command = "manifest linearize"
	b, err := loadManifest(args[0])
	if err != nil {
		return outputError(command, err)
	}
	c, err := lookupLabel(b.Graph, args[1])
	if err != nil {
		return outputError(command, err)
	}
	return outputResult(CLIResult{Command: command, Results: linearize(c, flagTopDown)})
}

func runManifestGet(cmd *cobra.Command, args []string) error {
	const command = "manifest get"
	b, err := loadManifest(args[0])
	if err != nil {
		return outputError(command, err)
	}
	c, err := lookupLabel(b.Graph, args[1])
	if err != nil {
		return outputError(command, err)
	}
	k, ok := b.Key(args[2])
	if !ok {
		return outputError(command, errors.WithHintf(errors.Newf("key %q is not declared", args[2]),
			"declared keys: %s", strings.Join(b.KeyNames(), ", ")))
	}
	return outputResult(CLIResult{Command: command, Results: toCLIProperty(c, k)})
}

func runManifestHierarchy(cmd *cobra.Command, args []string) error {
	const command = "manifest hierarchy"
	b, err := loadManifest(args[0])
	if err != nil {
		return outputError(command, err)
	}
	c, err := lookupLabel(b.Graph, args[1])
	if err != nil {
		return outputError(command, err)
	}
	return outputResult(CLIResult{Command: command, Results: toCLIHierarchy(lineage.HierarchyOf(c))})
}

func runManifestSave(cmd *cobra.Command, args []string) error {
	const command = "manifest save"
	b, err := loadManifest(args[0])
	if err != nil {
		return outputError(command, err)
	}
	name := flagSnapshotName
	if name == "" {
		name = b.Graph.Categorization().Name()
	}

	s, err := openStore()
	if err != nil {
		return outputError(command, err)
	}
	defer s.Close()

	ctx := context.Background()
	if err := lineage.Save(ctx, s, name, b.Graph.Categorization(), b.PersistentKeys()...); err != nil {
		return outputError(command, err)
	}
	snap, err := s.LoadSnapshot(ctx, name)
	if err != nil {
		return outputError(command, err)
	}
	return outputResult(CLIResult{Command: command, Results: CLISnapshot{
		Name:           snap.Name,
		Categorization: snap.Categorization,
		CreatedAt:      snap.CreatedAt,
		CategoryCount:  len(snap.Categories),
		Hash:           snap.Hash,
	}})
}
