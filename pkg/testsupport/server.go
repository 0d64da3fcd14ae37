package testsupport

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// PreloadServer is an httptest server answering both preload endpoints from
// canned bodies keyed by the variant parameter.
type PreloadServer struct {
	*httptest.Server

	mu       sync.Mutex
	bodies   map[string][]byte
	statuses map[string]int
	hits     map[string]int
	holds    map[string]chan struct{}
	requests []*http.Request
}

// NewPreloadServer starts a server that is closed when the test ends.
func NewPreloadServer(t testing.TB) *PreloadServer {
	t.Helper()

	s := &PreloadServer{
		bodies:   map[string][]byte{},
		statuses: map[string]int{},
		hits:     map[string]int{},
		holds:    map[string]chan struct{}{},
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/get_patients", s.handler("unique_key"))
	mux.HandleFunc("/get_patients_longread_ajax", s.handler("variant_id"))
	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

// Respond registers the body returned for key.
func (s *PreloadServer) Respond(key string, body []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bodies[key] = body
}

// Fail makes requests for key answer with status.
func (s *PreloadServer) Fail(key string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses[key] = status
}

// Hold makes requests for key wait until the returned channel is closed or
// the client goes away.
func (s *PreloadServer) Hold(key string) chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan struct{})
	s.holds[key] = ch
	return ch
}

// Hits reports how many requests were made for key.
func (s *PreloadServer) Hits(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[key]
}

// Requests returns every request received so far.
func (s *PreloadServer) Requests() []*http.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*http.Request(nil), s.requests...)
}

func (s *PreloadServer) handler(param string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := r.URL.Query().Get(param)

		s.mu.Lock()
		s.hits[key]++
		s.requests = append(s.requests, r)
		status, failing := s.statuses[key]
		body, known := s.bodies[key]
		hold := s.holds[key]
		s.mu.Unlock()

		if hold != nil {
			select {
			case <-hold:
			case <-r.Context().Done():
				return
			}
		}

		w.Header().Set("Content-Type", "application/json")
		switch {
		case failing:
			w.WriteHeader(status)
		case !known:
			_, _ = w.Write([]byte(`{"error": "Variant not found"}`))
		default:
			_, _ = w.Write(body)
		}
	}
}
