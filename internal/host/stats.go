package host

import (
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"
)

// stats counts routed events per category and logs a one-line summary
// every second while any counter is non-zero. Disabled unless input
// logging is configured.
type stats struct {
	enabled bool

	mu     sync.Mutex
	counts map[string]int

	stop chan struct{}
	done chan struct{}
}

// newStats builds an event counter, active only when enabled.
func newStats(enabled bool) *stats {
	return &stats{
		enabled: enabled,
		counts:  map[string]int{},
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Start launches the summary logger when stats are enabled.
func (s *stats) Start() {
	if !s.enabled {
		close(s.done)
		return
	}
	go s.loop()
}

// Stop halts the summary logger.
func (s *stats) Stop() {
	close(s.stop)
	<-s.done
}

// bump increments one event counter.
func (s *stats) bump(name string) {
	if !s.enabled {
		return
	}
	s.mu.Lock()
	s.counts[name]++
	s.mu.Unlock()
}

// loop logs and resets the counters once per second.
func (s *stats) loop() {
	defer close(s.done)
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			if line := s.drain(); line != "" {
				log.Printf("input rate: %s", line)
			}
		}
	}
}

// drain snapshots and resets the counters, formatting non-zero ones.
func (s *stats) drain() string {
	s.mu.Lock()
	snap := make(map[string]int, len(s.counts))
	for k, v := range s.counts {
		if v > 0 {
			snap[k] = v
		}
		s.counts[k] = 0
	}
	s.mu.Unlock()
	if len(snap) == 0 {
		return ""
	}
	keys := make([]string, 0, len(snap))
	for k := range snap {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%d/s", k, snap[k]))
	}
	return strings.Join(parts, " ")
}
