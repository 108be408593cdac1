// Package catalog builds and holds the immutable index of BIDS FileRecords
// that BIQL queries run against (§3, §4.1-§4.4 of the specification).
package catalog

import (
	"github.com/astewartau/biql/query"
)

// FileRecord is one indexed file: its path, parsed filename entities, and
// the metadata/participants attribute bags merged in at index time (§3).
// Once built, a FileRecord is never mutated — it is a self-contained
// attribute bag with no back-reference to its catalog or engine (§9).
type FileRecord struct {
	Filepath     string
	RelativePath string
	Filename     string
	Extension    string
	Entities     map[string]string
	Suffix       string // "" means absent
	Datatype     string // "" means absent
	Metadata     map[string]query.Value
	Participants map[string]query.Value
}

// computedFields are the bare names that resolve to something other than
// an entity lookup (§3 "derived namespaces").
const (
	fieldFilename     = "filename"
	fieldFilepath     = "filepath"
	fieldRelativePath = "relative_path"
	fieldExtension    = "extension"
	fieldSuffix       = "suffix"
	fieldDatatype     = "datatype"
)

// Resolve looks up a dotted, namespace-qualified field against this record
// (§4.7). The first segment selects the namespace; bare names never reach
// into metadata/participants.
func (r *FileRecord) Resolve(parts []string) query.Value {
	if len(parts) == 0 {
		return query.Null()
	}

	switch parts[0] {
	case "metadata":
		return resolveNested(r.Metadata, parts[1:])
	case "participants":
		if len(parts) < 2 {
			return query.Null()
		}
		if v, ok := r.Participants[parts[1]]; ok {
			return v
		}
		return query.Null()
	default:
		if len(parts) != 1 {
			// Unknown namespace prefix: fall through and treat the whole
			// dotted path as miss rather than erroring (§4.7 says missing
			// key -> null).
			return query.Null()
		}
		return r.resolveBare(parts[0])
	}
}

func (r *FileRecord) resolveBare(name string) query.Value {
	switch name {
	case fieldFilename:
		return query.String(r.Filename)
	case fieldFilepath:
		return query.String(r.Filepath)
	case fieldRelativePath:
		return query.String(r.RelativePath)
	case fieldExtension:
		return query.String(r.Extension)
	case fieldSuffix:
		if r.Suffix == "" {
			return query.Null()
		}
		return query.String(r.Suffix)
	case fieldDatatype:
		if r.Datatype == "" {
			return query.Null()
		}
		return query.String(r.Datatype)
	default:
		if v, ok := r.Entities[name]; ok {
			return query.String(v)
		}
		return query.Null()
	}
}

func resolveNested(m map[string]query.Value, parts []string) query.Value {
	if len(parts) == 0 || m == nil {
		return query.Null()
	}
	v, ok := m[parts[0]]
	if !ok {
		return query.Null()
	}
	if len(parts) == 1 {
		return v
	}
	if v.Kind() != query.KindMap {
		return query.Null()
	}
	return resolveNested(v.MapValue(), parts[1:])
}

// IsEntityLike reports whether a bare name resolves through the entity map
// rather than a computed field; used by the evaluator's leading-zero
// comparison rule (§4.7), which applies only to entity values.
func (r *FileRecord) IsEntityLike(parts []string) bool {
	if len(parts) != 1 {
		return false
	}
	switch parts[0] {
	case fieldFilename, fieldFilepath, fieldRelativePath, fieldExtension, fieldSuffix, fieldDatatype:
		return false
	default:
		_, ok := r.Entities[parts[0]]
		return ok
	}
}

// SubjectToken returns the record's sub entity, the bare token (no "sub-"
// prefix) that the participants map is keyed by (§4.3).
func (r *FileRecord) SubjectToken() (sub string, ok bool) {
	v, ok := r.Entities["sub"]
	return v, ok
}
