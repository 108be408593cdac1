package errsink

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddFormatsMessage(t *testing.T) {
	s := New()
	s.Add(SidecarWarning, "sub-01/func/sub-01_bold.json", "malformed JSON: %v", "unexpected EOF")

	all := s.All()
	a := assert.New(t)
	a.Len(all, 1)
	a.Equal(SidecarWarning, all[0].Kind)
	a.Equal("sub-01/func/sub-01_bold.json", all[0].Path)
	a.Equal("malformed JSON: unexpected EOF", all[0].Message)
}

func TestAddMessagePreservesOrder(t *testing.T) {
	s := New()
	s.AddMessage(ParticipantsWarning, "participants.tsv", "missing header")
	s.AddMessage(EvaluationWarning, "", "comparison against non-numeric value")

	all := s.All()
	assert.Equal(t, "missing header", all[0].Message)
	assert.Equal(t, "comparison against non-numeric value", all[1].Message)
}

func TestLenMatchesAll(t *testing.T) {
	s := New()
	assert.Equal(t, 0, s.Len())
	s.AddMessage(SidecarWarning, "a.json", "bad")
	s.AddMessage(SidecarWarning, "b.json", "bad")
	assert.Equal(t, 2, s.Len())
	assert.Len(t, s.All(), 2)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "sidecar", SidecarWarning.String())
	assert.Equal(t, "participants", ParticipantsWarning.String())
	assert.Equal(t, "evaluation", EvaluationWarning.String())
	assert.Equal(t, "unknown", Kind(99).String())
}

func TestAllReturnsSnapshotNotSharedSlice(t *testing.T) {
	s := New()
	s.AddMessage(SidecarWarning, "a.json", "first")

	snapshot := s.All()
	s.AddMessage(SidecarWarning, "b.json", "second")

	assert.Len(t, snapshot, 1, "mutating the sink after All() must not retroactively grow the snapshot")
	assert.Len(t, s.All(), 2)
}

func TestConcurrentAddIsSafe(t *testing.T) {
	s := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			s.AddMessage(EvaluationWarning, "", "warning")
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 50, s.Len())
}
