package catalog

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/astewartau/biql/query"
)

// sidecarInfo is a JSON sidecar discovered in one directory, pre-parsed so
// applicability (§4.2) can be tested without re-reading the file.
type sidecarInfo struct {
	path     string
	entities map[string]string
	suffix   string
}

// discoverSidecars lists the *.json files directly inside dir (no
// recursion — the walk itself provides the directory nesting) and parses
// each one's filename.
func discoverSidecars(dir string) ([]sidecarInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []sidecarInfo
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		parsed := ParseFilename(e.Name())
		out = append(out, sidecarInfo{
			path:     filepath.Join(dir, e.Name()),
			entities: parsed.Entities,
			suffix:   parsed.Suffix,
		})
	}
	return out, nil
}

// applies reports whether a sidecar's entity set is a subset of the data
// file's entity set, with a matching suffix where the sidecar names one —
// BIQL's concrete reading of the spec's "stem is a prefix of the data
// file's stem" rule (see DESIGN.md for the rationale): in canonical BIDS
// ordering, a sidecar that names a subset of entities plus the same
// terminal suffix is exactly a (possibly sparse) prefix mask of the full
// filename.
func (s sidecarInfo) applies(fileEntities map[string]string, fileSuffix string) bool {
	if s.suffix != "" && s.suffix != fileSuffix {
		return false
	}
	return EntitySubset(s.entities, fileEntities)
}

// sidecarWarningFunc receives a path and parse error for a sidecar that
// failed to decode; the indexer wires this to its error sink (§4.2
// failure semantics: reported once, sidecar skipped, others continue).
type sidecarWarningFunc func(path string, err error)

// resolveMetadata walks ancestor directories from datasetRoot down to
// fileDir (inclusive), merging applicable sidecars shallow-override,
// deepest wins, most-specific-within-a-directory wins (§4.2).
func resolveMetadata(datasetRoot, fileDir string, fileEntities map[string]string, fileSuffix string, warn sidecarWarningFunc) map[string]query.Value {
	dirs := ancestorChain(datasetRoot, fileDir)

	result := map[string]query.Value{}
	for _, dir := range dirs {
		candidates, err := discoverSidecars(dir)
		if err != nil {
			continue
		}
		var applicable []sidecarInfo
		for _, c := range candidates {
			if c.applies(fileEntities, fileSuffix) {
				applicable = append(applicable, c)
			}
		}
		// Least specific first so a more specific sidecar at the same
		// directory level overrides a less specific one.
		sort.SliceStable(applicable, func(i, j int) bool {
			return len(applicable[i].entities) < len(applicable[j].entities)
		})
		for _, c := range applicable {
			data, err := os.ReadFile(c.path)
			if err != nil {
				warn(c.path, err)
				continue
			}
			var decoded map[string]any
			if err := json.Unmarshal(data, &decoded); err != nil {
				warn(c.path, err)
				continue
			}
			shallowMergeInto(result, decoded)
		}
	}
	return result
}

// ancestorChain lists directories from root to leaf (inclusive of both),
// root-first, so callers merge in ascending-specificity order.
func ancestorChain(root, leaf string) []string {
	root = filepath.Clean(root)
	leaf = filepath.Clean(leaf)

	if leaf == root {
		return []string{root}
	}

	rel, err := filepath.Rel(root, leaf)
	if err != nil || strings.HasPrefix(rel, "..") {
		return []string{leaf}
	}

	parts := strings.Split(rel, string(filepath.Separator))
	dirs := make([]string, 0, len(parts)+1)
	cur := root
	dirs = append(dirs, cur)
	for _, p := range parts {
		cur = filepath.Join(cur, p)
		dirs = append(dirs, cur)
	}
	return dirs
}

// shallowMergeInto merges decoded JSON object fields into dst, overriding
// existing keys. Nested objects are merged shallowly one level deep, per
// §4.2; deeper nesting or non-object values replace outright.
func shallowMergeInto(dst map[string]query.Value, src map[string]any) {
	for k, v := range src {
		newVal := query.FromGo(v)
		if existing, ok := dst[k]; ok && existing.Kind() == query.KindMap && newVal.Kind() == query.KindMap {
			merged := make(map[string]query.Value, len(existing.MapValue()))
			for ek, ev := range existing.MapValue() {
				merged[ek] = ev
			}
			for nk, nv := range newVal.MapValue() {
				merged[nk] = nv
			}
			dst[k] = query.Map(merged)
			continue
		}
		dst[k] = newVal
	}
}
