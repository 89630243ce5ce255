package main

import (
	"context"
	"os"
	"path/filepath"
	"sort"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/jward/lineage"
	"github.com/jward/lineage/internal/logger"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Inspect saved snapshots",
}

var snapshotListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved snapshots",
	Args:  cobra.NoArgs,
	RunE:  runSnapshotList,
}

var snapshotGetCmd = &cobra.Command{
	Use:   "get <name> <label> <key>",
	Short: "Resolve a property from a saved snapshot",
	Args:  cobra.ExactArgs(3),
	RunE:  runSnapshotGet,
}

var snapshotKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Count stored property values per key across all snapshots",
	Args:  cobra.NoArgs,
	RunE:  runSnapshotKeys,
}

var snapshotDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a saved snapshot",
	Args:  cobra.ExactArgs(1),
	RunE:  runSnapshotDelete,
}

func init() {
	snapshotCmd.AddCommand(snapshotListCmd)
	snapshotCmd.AddCommand(snapshotGetCmd)
	snapshotCmd.AddCommand(snapshotKeysCmd)
	snapshotCmd.AddCommand(snapshotDeleteCmd)
}

func openStore() (*lineage.Store, error) {
	path, err := resolveDBPath()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrap(err, "creating database directory")
	}
	logger.Logger.Debugw("opening store", logger.FieldPath, path)
	return lineage.OpenStore(path)
}

func runSnapshotList(cmd *cobra.Command, args []string) error {
	const command = "snapshot list"
	s, err := openStore()
	if err != nil {
		return outputError(command, err)
	}
	defer s.Close()

	infos, err := s.Snapshots(context.Background())
	if err != nil {
		return outputError(command, err)
	}
	out := make([]CLISnapshot, len(infos))
	for i, info := range infos {
		out[i] = toCLISnapshot(info)
	}
	count := len(out)
	return outputResult(CLIResult{Command: command, Results: out, TotalCount: &count})
}

func runSnapshotGet(cmd *cobra.Command, args []string) error {
	const command = "snapshot get"
	s, err := openStore()
	if err != nil {
		return outputError(command, err)
	}
	defer s.Close()

	key := lineage.NewKey[any](args[2])
	g, err := lineage.Load(context.Background(), s, args[0], []lineage.PersistentKey{key},
		lineage.WithLogger(logger.Base()))
	if err != nil {
		return outputError(command, err)
	}
	c, ok := g.Lookup(args[1])
	if !ok {
		return outputError(command, errors.Newf("category %q not found in snapshot %q", args[1], args[0]))
	}
	return outputResult(CLIResult{Command: command, Results: toCLIProperty(c, key)})
}

func runSnapshotKeys(cmd *cobra.Command, args []string) error {
	const command = "snapshot keys"
	s, err := openStore()
	if err != nil {
		return outputError(command, err)
	}
	defer s.Close()

	counts, err := s.PropertyCounts(context.Background())
	if err != nil {
		return outputError(command, err)
	}
	out := make([]CLIKeyCount, 0, len(counts))
	for key, n := range counts {
		out = append(out, CLIKeyCount{Key: key, Values: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	count := len(out)
	return outputResult(CLIResult{Command: command, Results: out, TotalCount: &count})
}

func runSnapshotDelete(cmd *cobra.Command, args []string) error {
	const command = "snapshot delete"
	s, err := openStore()
	if err != nil {
		return outputError(command, err)
	}
	defer s.Close()

	deleted, err := s.DeleteSnapshot(context.Background(), args[0])
	if err != nil {
		return outputError(command, err)
	}
	if !deleted {
		return outputError(command, errors.Newf("snapshot %q not found", args[0]))
	}
	logger.Logger.Infow("snapshot deleted", logger.FieldSnapshot, args[0])
	return outputResult(CLIResult{Command: command, Results: map[string]string{"deleted": args[0]}})
}
