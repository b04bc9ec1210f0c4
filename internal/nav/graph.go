// Package nav keeps the directed graph of focusable elements that keyboard
// and switch users traverse. The graph does not track which element is
// focused; the platform owns that. It only answers "where can I go from X".
package nav

import (
	"sort"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ElementRef is a non-owning handle into the platform's element table.
// Holding one never keeps a UI element alive.
type ElementRef uint64

// Focuser moves assistive-technology focus. Focus reports false when ref no
// longer resolves to a mounted element.
type Focuser interface {
	Focus(ref ElementRef) bool
}

// FocuserFunc adapts a function to Focuser.
type FocuserFunc func(ref ElementRef) bool

func (f FocuserFunc) Focus(ref ElementRef) bool { return f(ref) }

type Direction string

const (
	Next Direction = "next"
	Prev Direction = "prev"
)

// Node describes one focusable element. NextID and PrevID may name nodes
// that are not registered yet, or no longer; they resolve at traversal time.
type Node struct {
	ID      string
	Target  ElementRef
	NextID  string
	PrevID  string
	OnFocus func()
}

func (n Node) edge(d Direction) string {
	if d == Prev {
		return n.PrevID
	}
	return n.NextID
}

type entry struct {
	node  Node
	token string
}

type Graph struct {
	mu      sync.Mutex
	nodes   map[string]entry
	focuser Focuser
	logger  *zap.Logger
}

func NewGraph(focuser Focuser, logger *zap.Logger) *Graph {
	if logger == nil {
		logger = zap.NewNop()
	}
	if focuser == nil {
		focuser = FocuserFunc(func(ElementRef) bool { return false })
	}
	return &Graph{nodes: map[string]entry{}, focuser: focuser, logger: logger}
}

// Register inserts n, replacing any node with the same id. The returned token
// identifies this registration for UnregisterToken.
func (g *Graph) Register(n Node) string {
	tok := uuid.NewString()
	g.mu.Lock()
	_, replaced := g.nodes[n.ID]
	g.nodes[n.ID] = entry{node: n, token: tok}
	g.mu.Unlock()
	if replaced {
		g.logger.Debug("navigable node replaced", zap.String("id", n.ID))
	}
	return tok
}

// Unregister removes id. Edges elsewhere that point at id are left dangling.
func (g *Graph) Unregister(id string) {
	g.mu.Lock()
	delete(g.nodes, id)
	g.mu.Unlock()
}

// UnregisterToken removes id only if it is still the registration identified
// by token, so a stale unmount cannot remove a newer screen's node.
func (g *Graph) UnregisterToken(id, token string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	e, ok := g.nodes[id]
	if !ok || e.token != token {
		return false
	}
	delete(g.nodes, id)
	return true
}

func (g *Graph) Node(id string) (Node, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	e, ok := g.nodes[id]
	return e.node, ok
}

func (g *Graph) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.nodes)
}

// IDs returns registered ids sorted.
func (g *Graph) IDs() []string {
	g.mu.Lock()
	out := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		out = append(out, id)
	}
	g.mu.Unlock()
	sort.Strings(out)
	return out
}

func (g *Graph) Clear() {
	g.mu.Lock()
	g.nodes = map[string]entry{}
	g.mu.Unlock()
}

// Focus runs the node's OnFocus hook, then asks the platform to move focus.
// Unknown ids and unmounted targets are no-ops; the result reports whether
// the platform accepted focus.
func (g *Graph) Focus(id string) bool {
	n, ok := g.Node(id)
	if !ok {
		g.logger.Debug("focus target not registered", zap.String("id", id))
		return false
	}
	g.runOnFocus(n)
	if !g.focuser.Focus(n.Target) {
		g.logger.Debug("focus target unmounted", zap.String("id", id), zap.Uint64("ref", uint64(n.Target)))
		return false
	}
	return true
}

// MoveFocus follows fromID's edge in direction d. It returns false without
// moving when the source, the edge or its target is missing. There is no
// wraparound.
func (g *Graph) MoveFocus(fromID string, d Direction) bool {
	from, ok := g.Node(fromID)
	if !ok {
		g.logger.Debug("move from unregistered node", zap.String("id", fromID))
		return false
	}
	to := from.edge(d)
	if to == "" {
		return false
	}
	if _, ok := g.Node(to); !ok {
		g.logger.Debug("edge target missing", zap.String("from", fromID), zap.String("to", to), zap.String("dir", string(d)))
		return false
	}
	g.Focus(to)
	return true
}

func (g *Graph) runOnFocus(n Node) {
	if n.OnFocus == nil {
		return
	}
	defer func() {
		if rec := recover(); rec != nil {
			g.logger.Error("onFocus panicked", zap.String("id", n.ID), zap.Any("panic", rec))
		}
	}()
	n.OnFocus()
}
