// Package engine is BIQL's public library facade (§6): build a dataset
// index once, then parse/validate/evaluate/format queries against it. It
// plays the role the teacher's client package plays for GCS/BigQuery — the
// one entry point everything else (CLI, shell, tests) goes through.
package engine

import (
	"bytes"
	"context"
	"fmt"
	"sort"

	"github.com/astewartau/biql/catalog"
	"github.com/astewartau/biql/errsink"
	"github.com/astewartau/biql/eval"
	"github.com/astewartau/biql/format"
	"github.com/astewartau/biql/query"
)

// Engine owns one built catalog.Index and the warnings accumulated while
// building it or evaluating queries against it.
type Engine struct {
	index *catalog.Index
	sink  *errsink.Sink
}

// Build indexes datasetRoot and returns a ready-to-query Engine (§4.4).
func Build(ctx context.Context, datasetRoot string) (*Engine, error) {
	sink := errsink.New()
	idx, err := catalog.Build(ctx, datasetRoot, sink, catalog.BuildOptions{})
	if err != nil {
		return nil, err
	}
	return &Engine{index: idx, sink: sink}, nil
}

// DatasetStats summarizes the indexed dataset (§6).
func (e *Engine) DatasetStats() catalog.Stats {
	return e.index.Stats()
}

// Entities returns the sorted set of distinct entity keys observed across
// the indexed dataset, backing the CLI's --show-entities flag.
func (e *Engine) Entities() []string {
	seen := map[string]bool{}
	for _, rec := range e.index.Records {
		for k := range rec.Entities {
			seen[k] = true
		}
	}
	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Parse compiles queryText into a Query AST without evaluating it.
func (e *Engine) Parse(queryText string) (*query.Query, error) {
	return query.Parse(queryText)
}

// Validate reports whether queryText is syntactically well-formed,
// returning the *query.SyntaxError on failure (§7).
func (e *Engine) Validate(queryText string) error {
	_, err := query.Parse(queryText)
	return err
}

// Evaluate runs a parsed query against the indexed dataset (§4.7-§4.9).
func (e *Engine) Evaluate(q *query.Query) (*eval.RowSet, error) {
	return eval.Run(q, e.index)
}

// RunQuery parses, evaluates, and formats queryText in one call — the
// shape the CLI's single command and the interactive shell both use.
// formatName overrides the query's own FORMAT clause when non-empty.
func (e *Engine) RunQuery(queryText, formatName string) (string, error) {
	q, err := query.Parse(queryText)
	if err != nil {
		return "", err
	}
	if formatName != "" {
		q.Format = formatName
	}

	rs, err := e.Evaluate(q)
	if err != nil {
		return "", fmt.Errorf("evaluating query: %w", err)
	}

	writer, err := format.Lookup(q.Format)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := writer(rs, &buf); err != nil {
		return "", fmt.Errorf("formatting result: %w", err)
	}
	return buf.String(), nil
}

// Warnings returns every non-fatal problem recorded while building the
// index (§7); the CLI drains these under --debug. Query evaluation records
// nothing here: an evaluation error (such as an invalid regex) is returned
// by Evaluate/RunQuery and fails the whole query.
func (e *Engine) Warnings() []errsink.Warning {
	return e.sink.All()
}
