package testfixtures

import (
	"fmt"
	"sync"
)

// IDGenerator produces deterministic identifiers for tests. String and
// integer identifiers share one counter.
type IDGenerator struct {
	mu      sync.Mutex
	prefix  string
	counter int64
}

// NewIDGenerator returns a generator whose string IDs look like "<prefix>-N".
// An empty prefix becomes "id".
func NewIDGenerator(prefix string) *IDGenerator {
	if prefix == "" {
		prefix = "id"
	}
	return &IDGenerator{prefix: prefix}
}

func (g *IDGenerator) next() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.counter++
	return g.counter
}

// Next returns the next string identifier.
func (g *IDGenerator) Next() string {
	return fmt.Sprintf("%s-%d", g.prefix, g.next())
}

// NextInt returns the next integer identifier.
func (g *IDGenerator) NextInt() int64 {
	return g.next()
}

// NextFunc exposes Next for dependency injection.
func (g *IDGenerator) NextFunc() func() string {
	if g == nil {
		return func() string { return "" }
	}
	return g.Next
}

// IntFunc exposes NextInt for dependency injection.
func (g *IDGenerator) IntFunc() func() int64 {
	if g == nil {
		return func() int64 { return 0 }
	}
	return g.NextInt
}

// Reset sets the counter so the next identifier is counter+1.
func (g *IDGenerator) Reset(counter int64) {
	g.mu.Lock()
	g.counter = counter
	g.mu.Unlock()
}
