package store

import (
	"crypto/sha256"
	"fmt"
	"strings"
)

// ComputeSnapshotHash computes a deterministic hash of a snapshot's content:
// categorization name, and every category's label, parents and properties
// in stored order. Name, ID and CreatedAt do NOT affect the hash.
func ComputeSnapshotHash(snap *Snapshot) string {
	h := sha256.New()
	fmt.Fprintf(h, "categorization:%s\n", snap.Categorization)
	for _, c := range snap.Categories {
		// %q keeps labels containing separators unambiguous.
		fmt.Fprintf(h, "category:%d:%q\n", c.Ordinal, c.Label)
		quoted := make([]string, len(c.Parents))
		for i, p := range c.Parents {
			quoted[i] = fmt.Sprintf("%q", p)
		}
		fmt.Fprintf(h, "parents:%s\n", strings.Join(quoted, ","))
		for _, p := range c.Properties {
			fmt.Fprintf(h, "property:%q:%s\n", p.Key, p.Value)
		}
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}
