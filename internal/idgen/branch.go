// Package idgen holds the Via-branch generator and the dialog-id generator:
// the two small, stateless-from-the-outside id sources the rest of the
// core draws from.
package idgen

import (
	"strconv"
	"sync"
)

// BranchGenerator produces an unending sequence of distinct Via branch
// tokens of the form "z9hG4bK-<n>", n a monotonically increasing counter
// starting at 0. RFC 3261 §8.1.1.7 requires the magic "z9hG4bK" prefix;
// uniqueness within this process's lifetime is all that's needed to
// correlate responses with transactions this server created.
type BranchGenerator struct {
	mu      sync.Mutex
	counter uint64
}

// NewBranchGenerator returns a generator whose counter starts at 0.
func NewBranchGenerator() *BranchGenerator {
	return &BranchGenerator{}
}

// Next returns the next branch token. Safe for concurrent use: the counter
// increment is the generator's only critical section.
func (g *BranchGenerator) Next() string {
	g.mu.Lock()
	n := g.counter
	g.counter++
	g.mu.Unlock()
	return "z9hG4bK-" + strconv.FormatUint(n, 10)
}
