package gallery

import (
	"fmt"
	"sync"

	"sweethomes/pkg/sanitizer"
)

const deleteSelectedLabel = "Delete Selected"

// Selection is a set of image URLs picked for a batch delete. Adding the
// same URL twice keeps one entry; insertion order is preserved.
type Selection struct {
	mu   sync.Mutex
	urls []string
	seen map[string]struct{}
}

type SelectionState struct {
	Count   int    `json:"count"`
	Enabled bool   `json:"enabled"`
	Label   string `json:"label"`
}

func NewSelection(urls ...string) *Selection {
	s := &Selection{seen: make(map[string]struct{})}
	s.Add(urls...)
	return s
}

func (s *Selection) Add(urls ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, url := range sanitizer.NormalizeURLs(urls) {
		if _, ok := s.seen[url]; ok {
			continue
		}
		s.seen[url] = struct{}{}
		s.urls = append(s.urls, url)
	}
}

func (s *Selection) Remove(url string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.seen[url]; !ok {
		return
	}
	delete(s.seen, url)
	for i, u := range s.urls {
		if u == url {
			s.urls = append(s.urls[:i], s.urls[i+1:]...)
			break
		}
	}
}

func (s *Selection) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.urls = nil
	s.seen = make(map[string]struct{})
}

func (s *Selection) URLs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.urls...)
}

func (s *Selection) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.urls)
}

// State drives the batch delete control: disabled with a plain label when
// nothing is selected, otherwise labelled with the count.
func (s *Selection) State() SelectionState {
	n := s.Len()
	state := SelectionState{Count: n, Enabled: n > 0, Label: deleteSelectedLabel}
	if n > 0 {
		state.Label = fmt.Sprintf("%s (%d)", deleteSelectedLabel, n)
	}
	return state
}
