package main

import (
	"time"

	"github.com/jward/lineage"
	"github.com/jward/lineage/internal/store"
)

// CLIResult is the top-level JSON envelope for all commands.
type CLIResult struct {
	Command    string `json:"command"`
	Results    any    `json:"results"`
	TotalCount *int   `json:"total_count,omitempty"`
	Error      string `json:"error,omitempty"`
	Hint       string `json:"hint,omitempty"`
}

// CLILinearization is one linearized sequence.
type CLILinearization struct {
	Start      string   `json:"start"`
	Direction  string   `json:"direction"`
	Policy     string   `json:"policy"`
	Categories []string `json:"categories"`
}

// CLIProperty is the resolution of one key from one category.
type CLIProperty struct {
	Category string `json:"category"`
	Key      string `json:"key"`
	Present  bool   `json:"present"`
	Local    bool   `json:"local"`
	Value    any    `json:"value,omitempty"`
	Values   []any  `json:"values"`
}

// CLIHierarchy is a JSON-friendly lineage.Hierarchy.
type CLIHierarchy struct {
	Category    string   `json:"category"`
	Parents     []string `json:"parents"`
	Children    []string `json:"children"`
	Ancestors   []string `json:"ancestors"`
	Descendants []string `json:"descendants"`
	LocalKeys   []string `json:"local_keys"`
	Depth       int      `json:"depth"`
}

// CLISnapshot summarizes a stored snapshot.
type CLISnapshot struct {
	Name           string    `json:"name"`
	Categorization string    `json:"categorization"`
	CreatedAt      time.Time `json:"created_at"`
	CategoryCount  int       `json:"category_count"`
	Hash           string    `json:"hash"`
}

// CLIKeyCount is the number of stored values of one property key.
type CLIKeyCount struct {
	Key    string `json:"key"`
	Values int    `json:"values"`
}

// CLIValue is the result of evaluating a script on a category.
type CLIValue struct {
	Category   string `json:"category"`
	Expression string `json:"expression"`
	Value      any    `json:"value"`
}

// CLIMetric is one gathered metric sample.
type CLIMetric struct {
	Name   string            `json:"name"`
	Labels map[string]string `json:"labels,omitempty"`
	Value  float64           `json:"value"`
	Count  uint64            `json:"count,omitempty"`
}

func toCLILinearization(start *lineage.Category, direction string, p lineage.Policy, cats []*lineage.Category) CLILinearization {
	return CLILinearization{
		Start:      start.String(),
		Direction:  direction,
		Policy:     p.String(),
		Categories: lineage.Labels(cats),
	}
}

func toCLIHierarchy(h *lineage.Hierarchy) CLIHierarchy {
	localKeys := h.LocalKeys
	if localKeys == nil {
		localKeys = []string{}
	}
	return CLIHierarchy{
		Category:    h.Category.String(),
		Parents:     lineage.Labels(h.Parents),
		Children:    lineage.Labels(h.Children),
		Ancestors:   lineage.Labels(h.Ancestors),
		Descendants: lineage.Labels(h.Descendants),
		LocalKeys:   localKeys,
		Depth:       h.Depth,
	}
}

func toCLIProperty(c *lineage.Category, k lineage.Key[any]) CLIProperty {
	values := lineage.Values(c, k)
	if values == nil {
		values = []any{}
	}
	p := CLIProperty{
		Category: c.String(),
		Key:      k.Name(),
		Present:  len(values) > 0,
		Local:    lineage.IsLocal(c, k),
		Values:   values,
	}
	if p.Present {
		p.Value = values[0]
	}
	return p
}

func toCLISnapshot(info store.SnapshotInfo) CLISnapshot {
	return CLISnapshot{
		Name:           info.Name,
		Categorization: info.Categorization,
		CreatedAt:      info.CreatedAt,
		CategoryCount:  info.CategoryCount,
		Hash:           info.Hash,
	}
}
