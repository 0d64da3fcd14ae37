package testsupport

import (
	"sync"

	"github.com/goliatone/go-variant-patients/patients"
)

// Call is one recorded render sink invocation.
type Call struct {
	Method      string
	Message     string
	Page        patients.RenderedPage
	CurrentPage int
	TotalPages  int
	Shown       int
}

// RecordingSink records every call a popup controller makes to its render sink.
type RecordingSink struct {
	mu    sync.Mutex
	calls []Call
}

// NewRecordingSink returns an empty RecordingSink.
func NewRecordingSink() *RecordingSink {
	return &RecordingSink{}
}

func (s *RecordingSink) record(c Call) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, c)
}

func (s *RecordingSink) ShowLoading() {
	s.record(Call{Method: "ShowLoading"})
}

func (s *RecordingSink) ShowError(message string) {
	s.record(Call{Method: "ShowError", Message: message})
}

func (s *RecordingSink) RenderPage(page patients.RenderedPage) {
	s.record(Call{Method: "RenderPage", Page: page})
}

func (s *RecordingSink) RenderPaginationControls(currentPage, totalPages int) {
	s.record(Call{Method: "RenderPaginationControls", CurrentPage: currentPage, TotalPages: totalPages})
}

func (s *RecordingSink) UpdateShownCount(n int) {
	s.record(Call{Method: "UpdateShownCount", Shown: n})
}

// Calls returns a copy of the recorded calls.
func (s *RecordingSink) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// Methods returns the recorded method names in order.
func (s *RecordingSink) Methods() []string {
	calls := s.Calls()
	out := make([]string, len(calls))
	for i, c := range calls {
		out[i] = c.Method
	}
	return out
}

// LastPage returns the most recent rendered page.
func (s *RecordingSink) LastPage() (patients.RenderedPage, bool) {
	calls := s.Calls()
	for i := len(calls) - 1; i >= 0; i-- {
		if calls[i].Method == "RenderPage" {
			return calls[i].Page, true
		}
	}
	return patients.RenderedPage{}, false
}

// Count returns how many times method was called.
func (s *RecordingSink) Count(method string) int {
	n := 0
	for _, c := range s.Calls() {
		if c.Method == method {
			n++
		}
	}
	return n
}

// Reset forgets every recorded call.
func (s *RecordingSink) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = nil
}
