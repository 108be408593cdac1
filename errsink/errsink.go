// Package errsink accumulates non-fatal warnings raised while building the
// catalog (query evaluation does not write to it), surfaced to the caller only when --debug
// is set (§7). It plays the role the teacher's apilog package plays for
// request-scoped diagnostic lines: a cheap, synchronized append-only log
// that the CLI prints at the end of a run instead of interleaving with
// normal output.
package errsink

import (
	"fmt"
	"sync"
)

// Kind classifies a Warning for filtering/formatting by the CLI.
type Kind int

const (
	SidecarWarning Kind = iota
	ParticipantsWarning
	EvaluationWarning
)

func (k Kind) String() string {
	switch k {
	case SidecarWarning:
		return "sidecar"
	case ParticipantsWarning:
		return "participants"
	case EvaluationWarning:
		return "evaluation"
	default:
		return "unknown"
	}
}

// Warning is one recorded, non-fatal problem.
type Warning struct {
	Kind    Kind
	Path    string
	Message string
}

// Sink collects Warnings from concurrent producers (the catalog indexer's
// errgroup fan-out writes into the same Sink from multiple goroutines).
type Sink struct {
	mu       sync.Mutex
	warnings []Warning
}

func New() *Sink {
	return &Sink{}
}

func (s *Sink) Add(kind Kind, path, format string, args ...any) {
	s.AddMessage(kind, path, fmt.Sprintf(format, args...))
}

func (s *Sink) AddMessage(kind Kind, path, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.warnings = append(s.warnings, Warning{Kind: kind, Path: path, Message: message})
}

// All returns a snapshot of recorded warnings in the order they were added.
func (s *Sink) All() []Warning {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Warning, len(s.warnings))
	copy(out, s.warnings)
	return out
}

func (s *Sink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.warnings)
}
