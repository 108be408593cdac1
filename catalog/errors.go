package catalog

import "fmt"

// DatasetError reports a problem building the index itself (§7) — distinct
// from a per-sidecar warning, which is recoverable and routed through the
// error sink instead of aborting the build.
type DatasetError struct {
	Path    string
	Message string
}

func (e *DatasetError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

func NewDatasetError(path, format string, args ...any) *DatasetError {
	return &DatasetError{Path: path, Message: fmt.Sprintf(format, args...)}
}
