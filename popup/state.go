package popup

import (
	"github.com/goliatone/go-variant-patients/patients"
)

// Phase is where the popup is in its lifecycle.
type Phase int

// Lifecycle phases. Only a Ready popup accepts filter and page actions.
const (
	PhaseClosed Phase = iota
	PhaseLoading
	PhaseReady
	PhaseError
)

// String returns the lower-case phase name.
func (p Phase) String() string {
	switch p {
	case PhaseClosed:
		return "closed"
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	case PhaseError:
		return "error"
	}
	return "unknown"
}

// State is what the popup currently shows. SearchTerm is always normalized.
type State struct {
	Key        string
	Technology patients.Technology
	Filter     patients.Filter
	SearchTerm string
	Page       int
}

// DefaultState is the state of a closed popup.
func DefaultState() State {
	return State{
		Technology: patients.ShortRead,
		Filter:     patients.FilterAll,
		Page:       1,
	}
}

// Open reports whether a variant is set.
func (s State) Open() bool {
	return s.Key != ""
}

// Reset returns the state to its defaults.
func (s *State) Reset() {
	*s = DefaultState()
}

// RenderSink is the presentation side of the popup. Its methods are called
// with the controller's lock held, in render order. They may call State and
// Phase but no other Controller method.
type RenderSink interface {
	ShowLoading()
	ShowError(message string)
	RenderPage(page patients.RenderedPage)
	RenderPaginationControls(currentPage, totalPages int)
	UpdateShownCount(n int)
}
