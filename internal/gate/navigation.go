package gate

import (
	"sync"

	"github.com/smallwat3r/stealthpad/internal/domain"
)

// Navigator receives the terminal transition. It does not own the UI's
// navigation stack, it only learns the target.
type Navigator interface {
	Navigate(dest domain.Destination)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(dest domain.Destination)

func (f NavigatorFunc) Navigate(dest domain.Destination) { f(dest) }

// orNop returns nav, or a navigator that drops every transition if nav is nil.
func orNop(nav Navigator) Navigator {
	if nav == nil {
		return NavigatorFunc(func(domain.Destination) {})
	}
	return nav
}

// Signal records the current destination and fans it out to subscribers.
type Signal struct {
	mu      sync.RWMutex
	current domain.Destination
	subs    []chan domain.Destination
}

func NewSignal() *Signal {
	return &Signal{}
}

func (s *Signal) Navigate(dest domain.Destination) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = dest
	for _, ch := range s.subs {
		// drop the stale value so a slow reader sees the latest target
		select {
		case <-ch:
		default:
		}
		ch <- dest
	}
}

// Current returns the last destination, DestinationNone before any.
func (s *Signal) Current() domain.Destination {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Subscribe returns a channel that always holds the latest destination.
func (s *Signal) Subscribe() <-chan domain.Destination {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan domain.Destination, 1)
	s.subs = append(s.subs, ch)
	return ch
}

// Lock returns the UI to the disguise.
func (s *Signal) Lock() {
	s.Navigate(domain.DestinationNone)
}
