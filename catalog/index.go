package catalog

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/astewartau/biql/errsink"
	"github.com/astewartau/biql/query"
)

// Index is the built, queryable catalog of one BIDS dataset (§3, §4.4).
type Index struct {
	Root    string
	Records []*FileRecord
}

// BuildOptions configures indexing beyond the dataset root.
type BuildOptions struct {
	// Concurrency bounds the number of files whose metadata is resolved in
	// parallel. Zero selects a sensible default.
	Concurrency int
}

// Build walks datasetRoot, parses every data file's name, resolves its
// sidecar-inherited metadata and participants row, and returns the
// resulting Index (§4.4). Non-fatal problems (an unreadable or malformed
// sidecar) are recorded in sink and do not fail the build; a missing or
// unreadable root does.
func Build(ctx context.Context, datasetRoot string, sink *errsink.Sink, opts BuildOptions) (*Index, error) {
	info, err := os.Stat(datasetRoot)
	if err != nil {
		return nil, NewDatasetError(datasetRoot, "cannot read dataset root: %v", err)
	}
	if !info.IsDir() {
		return nil, NewDatasetError(datasetRoot, "not a directory")
	}

	participants, err := loadParticipants(filepath.Join(datasetRoot, "participants.tsv"))
	if err != nil {
		sink.Add(errsink.ParticipantsWarning, filepath.Join(datasetRoot, "participants.tsv"), "%v", err)
		participants = map[string]map[string]query.Value{}
	}

	paths, err := discoverDataFiles(datasetRoot)
	if err != nil {
		return nil, NewDatasetError(datasetRoot, "walking dataset: %v", err)
	}

	records := make([]*FileRecord, len(paths))

	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = 8
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, p := range paths {
		i, p := i, p
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			rec, err := buildRecord(datasetRoot, p, participants, sink)
			if err != nil {
				sink.Add(errsink.SidecarWarning, p, "%v", err)
				return nil
			}
			records[i] = rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, NewDatasetError(datasetRoot, "indexing: %v", err)
	}

	out := make([]*FileRecord, 0, len(records))
	for _, r := range records {
		if r != nil {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RelativePath < out[j].RelativePath })

	return &Index{Root: datasetRoot, Records: out}, nil
}

func buildRecord(datasetRoot, path string, participants map[string]map[string]query.Value, sink *errsink.Sink) (*FileRecord, error) {
	rel, err := filepath.Rel(datasetRoot, path)
	if err != nil {
		return nil, err
	}

	parsed := ParseFilename(path)
	datatype := DatatypeOf(path)

	meta := resolveMetadata(datasetRoot, filepath.Dir(path), parsed.Entities, parsed.Suffix, func(sidecarPath string, err error) {
		sink.Add(errsink.SidecarWarning, sidecarPath, "%v", err)
	})

	rec := &FileRecord{
		Filepath:     path,
		RelativePath: filepath.ToSlash(rel),
		Filename:     filepath.Base(path),
		Extension:    parsed.Extension,
		Entities:     parsed.Entities,
		Suffix:       parsed.Suffix,
		Datatype:     datatype,
		Metadata:     meta,
	}
	if sub, ok := rec.SubjectToken(); ok {
		if bag, ok := participants[sub]; ok {
			rec.Participants = bag
		}
	}
	return rec, nil
}

// discoverDataFiles walks the tree breaking on symlink cycles (a symlink
// is followed once; a directory whose canonical path was already walked
// anywhere earlier in the walk is reported as a dataset error rather than
// looped on forever).
func discoverDataFiles(root string) ([]string, error) {
	var out []string
	seen := map[string]bool{}

	var walk func(dir string) error
	walk = func(dir string) error {
		real, err := filepath.EvalSymlinks(dir)
		if err == nil {
			if seen[real] {
				return NewDatasetError(dir, "symlink cycle detected")
			}
			seen[real] = true
		}

		entries, err := os.ReadDir(dir)
		if err != nil {
			return err
		}
		for _, e := range entries {
			name := e.Name()
			if strings.HasPrefix(name, ".") {
				continue
			}
			full := filepath.Join(dir, name)

			typ := e.Type()
			if typ&fs.ModeSymlink != 0 {
				target, err := filepath.EvalSymlinks(full)
				if err != nil {
					continue
				}
				ti, err := os.Stat(target)
				if err != nil {
					continue
				}
				if ti.IsDir() {
					if err := walk(full); err != nil {
						return err
					}
					continue
				}
				full = target
			} else if e.IsDir() {
				if err := walk(full); err != nil {
					return err
				}
				continue
			}

			if isIndexableDataFile(name) {
				out = append(out, full)
			}
		}
		return nil
	}

	if err := walk(root); err != nil {
		return nil, err
	}
	return out, nil
}

// isIndexableDataFile reports whether name should become a FileRecord.
// Every regular, non-hidden file is indexed (§4.4) — sidecars, scans/
// sessions indices, participants.tsv, and dataset-level JSONs included,
// just without a datatype (DatatypeOf only recognizes data directories).
// Hidden files (dotfiles) are the sole exclusion, consistent with the
// directory-walk skip in discoverDataFiles.
func isIndexableDataFile(name string) bool {
	return !strings.HasPrefix(name, ".")
}
