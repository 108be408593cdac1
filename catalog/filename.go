package catalog

import (
	"path/filepath"
	"strings"
)

// DatatypeLabels is the closed, configurable set of recognized BIDS
// datatype directory names (§4.1). Kept as a package variable rather than a
// constant so a caller embedding the catalog package can extend it for a
// derivative or non-standard dataset without forking the parser.
var DatatypeLabels = map[string]bool{
	"anat": true,
	"func": true,
	"dwi":  true,
	"beh":  true,
	"eeg":  true,
	"meg":  true,
	"ieeg": true,
	"fmap": true,
	"pet":  true,
	"perf": true,
	"micr": true,
}

// ParsedFilename is the decomposition a filename yields (§4.1's contract).
type ParsedFilename struct {
	Entities  map[string]string
	Suffix    string // "" when absent
	Extension string
}

// ParseFilename decomposes a BIDS filename (or full path) into an entity
// map, optional suffix, and extension. It never fails: malformed names
// yield whatever entities were recognizable and an empty suffix.
func ParseFilename(path string) ParsedFilename {
	base := filepath.Base(path)

	ext := extensionOf(base)
	stem := strings.TrimSuffix(base, ext)

	segments := strings.Split(stem, "_")
	entities := make(map[string]string)
	suffix := ""

	for i, seg := range segments {
		if seg == "" {
			continue
		}
		if dash := strings.IndexByte(seg, '-'); dash > 0 {
			key := seg[:dash]
			val := seg[dash+1:]
			entities[key] = val
			continue
		}
		// No '-': only meaningful as the suffix, and only in last position.
		if i == len(segments)-1 {
			suffix = seg
		}
		// else: tolerated/ignored per §4.1.
	}

	return ParsedFilename{Entities: entities, Suffix: suffix, Extension: ext}
}

// extensionOf returns everything from the first '.' after the last path
// separator to the end of the string, so compound extensions like
// ".nii.gz" are treated as one extension (§4.1). Returns "" when there is
// no '.' in the base name.
func extensionOf(base string) string {
	idx := strings.IndexByte(base, '.')
	if idx < 0 {
		return ""
	}
	return base[idx:]
}

// DatatypeOf infers the datatype of a file from the name of its immediate
// containing directory, or "" when that directory is not a recognized
// datatype label (§4.1).
func DatatypeOf(path string) string {
	dir := filepath.Base(filepath.Dir(path))
	if DatatypeLabels[dir] {
		return dir
	}
	return ""
}

// EntitySubset reports whether a's entities are a subset of b's entities
// with matching values — the core predicate of BIDS inheritance (§4.2):
// a sidecar applies to a data file when the sidecar's entity set is a
// subset of the data file's entity set.
func EntitySubset(a, b map[string]string) bool {
	for k, v := range a {
		if bv, ok := b[k]; !ok || bv != v {
			return false
		}
	}
	return true
}
