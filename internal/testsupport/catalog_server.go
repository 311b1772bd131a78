package testsupport

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"holocron/internal/catalog"
)

// CatalogServer is a fake remote catalog serving synthetic films, people and
// starships for every valid identifier. Failures can be injected per id.
type CatalogServer struct {
	*httptest.Server

	mu        sync.Mutex
	failures  map[catalog.CardID]int
	malformed map[catalog.CardID]bool
	delays    map[catalog.CardID]time.Duration
	requests  map[catalog.CardID]int
}

// CatalogOption configures a CatalogServer before it starts.
type CatalogOption func(*CatalogServer)

// WithFailure makes requests for id answer with the given status.
func WithFailure(id catalog.CardID, status int) CatalogOption {
	return func(s *CatalogServer) {
		s.failures[id] = status
	}
}

// WithMalformed makes requests for id answer 200 with a payload missing its name.
func WithMalformed(id catalog.CardID) CatalogOption {
	return func(s *CatalogServer) {
		s.malformed[id] = true
	}
}

// WithDelay stalls responses for id.
func WithDelay(id catalog.CardID, delay time.Duration) CatalogOption {
	return func(s *CatalogServer) {
		s.delays[id] = delay
	}
}

// NewCatalogServer starts a fake catalog and registers cleanup. Its URL is
// suitable as the catalog base URL.
func NewCatalogServer(t testing.TB, opts ...CatalogOption) *CatalogServer {
	t.Helper()

	s := &CatalogServer{
		failures:  make(map[catalog.CardID]int),
		malformed: make(map[catalog.CardID]bool),
		delays:    make(map[catalog.CardID]time.Duration),
		requests:  make(map[catalog.CardID]int),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Server.Close)
	return s
}

// Fail injects a failure status for id at runtime.
func (s *CatalogServer) Fail(id catalog.CardID, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[id] = status
}

// Heal clears any injected failure for id.
func (s *CatalogServer) Heal(id catalog.CardID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.failures, id)
	delete(s.malformed, id)
}

// Requests reports how many requests were received for id.
func (s *CatalogServer) Requests(id catalog.CardID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[id]
}

// TotalRequests reports every request received.
func (s *CatalogServer) TotalRequests() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, n := range s.requests {
		total += n
	}
	return total
}

// EntityName returns the name the server reports for id.
func EntityName(id catalog.CardID) string {
	switch id.Category {
	case catalog.Movies:
		return fmt.Sprintf("Film %d", id.Number)
	case catalog.Characters:
		return fmt.Sprintf("Person %d", id.Number)
	default:
		return fmt.Sprintf("Starship %d", id.Number)
	}
}

func (s *CatalogServer) handle(w http.ResponseWriter, r *http.Request) {
	id, ok := parsePath(r.URL.Path)
	if !ok {
		http.NotFound(w, r)
		return
	}

	s.mu.Lock()
	s.requests[id]++
	status := s.failures[id]
	malformed := s.malformed[id]
	delay := s.delays[id]
	s.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}
	}
	if status != 0 {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"detail":"injected failure"}`))
		return
	}
	if !id.Valid() {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail":"Not found"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if malformed {
		_, _ = w.Write([]byte(`{"url":"` + r.URL.String() + `"}`))
		return
	}
	_ = json.NewEncoder(w).Encode(payloadFor(id, r.URL.String()))
}

func parsePath(path string) (catalog.CardID, bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) < 2 {
		return catalog.CardID{}, false
	}
	resource := parts[len(parts)-2]
	number, err := strconv.Atoi(parts[len(parts)-1])
	if err != nil {
		return catalog.CardID{}, false
	}
	category, err := catalog.ParseCategory(resource)
	if err != nil {
		return catalog.CardID{}, false
	}
	return catalog.NewCardID(category, number), true
}

func payloadFor(id catalog.CardID, url string) map[string]any {
	name := EntityName(id)
	switch id.Category {
	case catalog.Movies:
		return map[string]any{
			"title":         name,
			"episode_id":    id.Number,
			"opening_crawl": "It is a period of civil war.",
			"director":      "George Lucas",
			"producer":      "Gary Kurtz",
			"release_date":  "1977-05-25",
			"characters":    []string{},
			"url":           url,
		}
	case catalog.Characters:
		return map[string]any{
			"name":       name,
			"height":     "172",
			"mass":       "77",
			"birth_year": "19BBY",
			"gender":     "male",
			"homeworld":  "https://swapi.dev/api/planets/1/",
			"films":      []string{},
			"url":        url,
		}
	default:
		return map[string]any{
			"name":           name,
			"model":          "Model " + strconv.Itoa(id.Number),
			"manufacturer":   "Kuat Drive Yards",
			"starship_class": "Star Destroyer",
			"crew":           "47,060",
			"MGLT":           "60",
			"url":            url,
		}
	}
}
