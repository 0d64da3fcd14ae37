package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/goliatone/go-variant-patients/patients"
)

var errRenderTimeout = errors.New("timed out waiting for render")

// textSink keeps the latest popup output and prints it as a table on flush.
// With quiet unset every render is printed as it arrives.
type textSink struct {
	out   io.Writer
	quiet bool

	mu        sync.Mutex
	loading   bool
	lastError string
	page      *patients.RenderedPage
	current   int
	total     int
	shown     int
	rendered  chan struct{}
}

func newTextSink(out io.Writer) *textSink {
	return &textSink{out: out}
}

func (s *textSink) ShowLoading() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = true
	s.lastError = ""
	s.page = nil
	if !s.quiet {
		fmt.Fprintln(s.out, "Loading patients...")
	}
}

func (s *textSink) ShowError(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	s.lastError = message
	s.page = nil
	if !s.quiet {
		fmt.Fprintln(s.out, message)
	}
}

func (s *textSink) RenderPage(page patients.RenderedPage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	s.page = &page
}

func (s *textSink) RenderPaginationControls(currentPage, totalPages int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current, s.total = currentPage, totalPages
}

// UpdateShownCount is the last call of a render, so a complete page is
// printed or signalled here.
func (s *textSink) UpdateShownCount(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shown = n
	if !s.quiet {
		s.writeLocked()
	}
	if s.rendered != nil {
		close(s.rendered)
		s.rendered = nil
	}
}

// armRender makes the next completed render observable through awaitRender.
func (s *textSink) armRender() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rendered = make(chan struct{})
}

func (s *textSink) awaitRender(ctx context.Context, timeout time.Duration) error {
	s.mu.Lock()
	ch := s.rendered
	s.mu.Unlock()
	if ch == nil {
		return nil
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-ch:
		return nil
	case <-timer.C:
		return errRenderTimeout
	case <-ctx.Done():
		return ctx.Err()
	}
}

// flush prints the latest state.
func (s *textSink) flush() {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.lastError != "":
		fmt.Fprintln(s.out, s.lastError)
	case s.loading:
		fmt.Fprintln(s.out, "Loading patients...")
	case s.page != nil:
		s.writeLocked()
	}
}

func (s *textSink) writeLocked() {
	if s.page == nil {
		return
	}
	p := s.page

	fmt.Fprintf(s.out, "%s variant, filter %s: %d heterozygous, %d homozygous\n",
		p.Technology, p.Filter, p.HeteroCount, p.HomoCount)
	if p.SearchTerm != "" {
		fmt.Fprintf(s.out, "search %q: %d matched\n", p.SearchTerm, p.TotalMatched)
	}

	if p.Empty() {
		fmt.Fprintln(s.out, "No patients found")
	} else {
		tw := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "PATIENT\tGENOTYPE\tZYGOSITY\tGENDER\tDIAGNOSIS")
		for _, r := range p.Patients {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.PatientID, r.Genotype, patients.FilterForGenotype(r.Genotype), r.Gender, r.Diagnosis)
		}
		_ = tw.Flush()
	}

	fmt.Fprintf(s.out, "page %d of %d, showing %d\n", s.current, s.total, s.shown)
}
