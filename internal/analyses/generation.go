package analyses

import (
	"context"
	"sync"
)

// generations hands out per-session upload generations. Starting a new
// generation cancels the in-flight analyze call of the previous one.
type generations struct {
	mu      sync.Mutex
	latest  map[string]int64
	cancels map[string]context.CancelFunc
	// commits serializes begin and commit within one session.
	commits map[string]*sync.Mutex
}

func newGenerations() *generations {
	return &generations{
		latest:  make(map[string]int64),
		cancels: make(map[string]context.CancelFunc),
		commits: make(map[string]*sync.Mutex),
	}
}

func (g *generations) sessionLock(session string) *sync.Mutex {
	g.mu.Lock()
	defer g.mu.Unlock()
	lock, ok := g.commits[session]
	if !ok {
		lock = &sync.Mutex{}
		g.commits[session] = lock
	}
	return lock
}

// begin opens the next generation for session. The returned context is
// canceled when a newer generation begins or when finish is called.
func (g *generations) begin(parent context.Context, session string) (int64, context.Context, func()) {
	ctx, cancel := context.WithCancel(parent)

	lock := g.sessionLock(session)
	lock.Lock()
	defer lock.Unlock()

	g.mu.Lock()
	if prev, ok := g.cancels[session]; ok {
		prev()
	}
	g.latest[session]++
	gen := g.latest[session]
	g.cancels[session] = cancel
	g.mu.Unlock()

	finish := func() {
		g.mu.Lock()
		if g.latest[session] == gen {
			delete(g.cancels, session)
		}
		g.mu.Unlock()
		cancel()
	}
	return gen, ctx, finish
}

// current reports whether gen is still the newest generation for session.
func (g *generations) current(session string, gen int64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.latest[session] == gen
}

// commit runs write only if gen is still the newest generation for session.
// No newer generation of that session can begin until write returns.
func (g *generations) commit(session string, gen int64, write func() error) (bool, error) {
	lock := g.sessionLock(session)
	lock.Lock()
	defer lock.Unlock()
	if !g.current(session, gen) {
		return false, nil
	}
	return true, write()
}

// forget drops all state for a session, canceling any in-flight call.
func (g *generations) forget(session string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if cancel, ok := g.cancels[session]; ok {
		cancel()
	}
	delete(g.cancels, session)
	delete(g.latest, session)
	delete(g.commits, session)
}
