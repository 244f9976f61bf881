package services

import (
	"sync"

	"eventboard/internal/domain"
)

// viewCounter counts unique-IP views per event in process memory. It backs
// popularity reporting only when the stats service is unreachable; the
// capacity counter never goes through here.
type viewCounter struct {
	mu   sync.RWMutex
	seen map[string]map[string]struct{}
}

func NewViewCounter() domain.ViewCounter {
	return &viewCounter{seen: make(map[string]map[string]struct{})}
}

func (c *viewCounter) Increment(eventID, ip string) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	ips, ok := c.seen[eventID]
	if !ok {
		ips = make(map[string]struct{})
		c.seen[eventID] = ips
	}
	ips[ip] = struct{}{}
	return int64(len(ips))
}

func (c *viewCounter) Views(eventID string) int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return int64(len(c.seen[eventID]))
}
