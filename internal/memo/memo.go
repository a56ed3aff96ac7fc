// Package memo provides memoized derivation nodes.
//
// A node is a pure function of one to three upstream nodes. It keeps the
// upstream values it last saw together with the output it produced, and
// returns that output again as long as every upstream value compares equal
// under the node's comparator. Invalidation happens only through those
// comparisons: there is no explicit reset and no expiry.
//
// Nodes are safe for concurrent readers. Upstream nodes are evaluated before
// the node's own lock is taken, so a chain never holds more than one lock.
package memo

import "sync"

// Node yields a value derived from a state S.
type Node[S, T any] interface {
	Get(s S) T
}

// Eq reports whether two upstream values are interchangeable for caching.
type Eq[T any] func(a, b T) bool

// Observer is told about every cached read (hit) and recomputation (miss).
type Observer interface {
	Observe(node string, hit bool)
}

type Option func(*config)

type config struct {
	obs Observer
}

func WithObserver(o Observer) Option {
	return func(c *config) { c.obs = o }
}

func newConfig(opts []Option) config {
	var c config
	for _, o := range opts {
		o(&c)
	}
	return c
}

func (c config) observe(name string, hit bool) {
	if c.obs != nil {
		c.obs.Observe(name, hit)
	}
}

type sourceNode[S, T any] struct{ fn func(S) T }

func (n sourceNode[S, T]) Get(s S) T { return n.fn(s) }

// Source reads a value straight off the state without caching.
func Source[S, T any](fn func(S) T) Node[S, T] { return sourceNode[S, T]{fn: fn} }

// Node1 caches fn over one upstream node.
type Node1[S, A, T any] struct {
	name string
	in   Node[S, A]
	eq   Eq[A]
	fn   func(A) T
	cfg  config

	mu    sync.Mutex
	valid bool
	last  A
	out   T
}

func Map[S, A, T any](name string, a Node[S, A], eqA Eq[A], fn func(A) T, opts ...Option) *Node1[S, A, T] {
	return &Node1[S, A, T]{name: name, in: a, eq: eqA, fn: fn, cfg: newConfig(opts)}
}

func (n *Node1[S, A, T]) Get(s S) T {
	a := n.in.Get(s)

	n.mu.Lock()
	defer n.mu.Unlock()
	if n.valid && n.eq(n.last, a) {
		n.cfg.observe(n.name, true)
		return n.out
	}
	n.out = n.fn(a)
	n.last = a
	n.valid = true
	n.cfg.observe(n.name, false)
	return n.out
}

// Node2 caches fn over two upstream nodes.
type Node2[S, A, B, T any] struct {
	name string
	inA  Node[S, A]
	inB  Node[S, B]
	eqA  Eq[A]
	eqB  Eq[B]
	fn   func(A, B) T
	cfg  config

	mu    sync.Mutex
	valid bool
	lastA A
	lastB B
	out   T
}

func Map2[S, A, B, T any](name string, a Node[S, A], eqA Eq[A], b Node[S, B], eqB Eq[B], fn func(A, B) T, opts ...Option) *Node2[S, A, B, T] {
	return &Node2[S, A, B, T]{name: name, inA: a, inB: b, eqA: eqA, eqB: eqB, fn: fn, cfg: newConfig(opts)}
}

func (n *Node2[S, A, B, T]) Get(s S) T {
	a, b := n.inA.Get(s), n.inB.Get(s)

	n.mu.Lock()
	defer n.mu.Unlock()
	if n.valid && n.eqA(n.lastA, a) && n.eqB(n.lastB, b) {
		n.cfg.observe(n.name, true)
		return n.out
	}
	n.out = n.fn(a, b)
	n.lastA, n.lastB = a, b
	n.valid = true
	n.cfg.observe(n.name, false)
	return n.out
}

// Node3 caches fn over three upstream nodes.
type Node3[S, A, B, C, T any] struct {
	name string
	inA  Node[S, A]
	inB  Node[S, B]
	inC  Node[S, C]
	eqA  Eq[A]
	eqB  Eq[B]
	eqC  Eq[C]
	fn   func(A, B, C) T
	cfg  config

	mu    sync.Mutex
	valid bool
	lastA A
	lastB B
	lastC C
	out   T
}

func Map3[S, A, B, C, T any](name string, a Node[S, A], eqA Eq[A], b Node[S, B], eqB Eq[B], c Node[S, C], eqC Eq[C], fn func(A, B, C) T, opts ...Option) *Node3[S, A, B, C, T] {
	return &Node3[S, A, B, C, T]{name: name, inA: a, inB: b, inC: c, eqA: eqA, eqB: eqB, eqC: eqC, fn: fn, cfg: newConfig(opts)}
}

func (n *Node3[S, A, B, C, T]) Get(s S) T {
	a, b, c := n.inA.Get(s), n.inB.Get(s), n.inC.Get(s)

	n.mu.Lock()
	defer n.mu.Unlock()
	if n.valid && n.eqA(n.lastA, a) && n.eqB(n.lastB, b) && n.eqC(n.lastC, c) {
		n.cfg.observe(n.name, true)
		return n.out
	}
	n.out = n.fn(a, b, c)
	n.lastA, n.lastB, n.lastC = a, b, c
	n.valid = true
	n.cfg.observe(n.name, false)
	return n.out
}

// Equal compares by value.
func Equal[T comparable](a, b T) bool { return a == b }

// SameSlice compares slices by identity: same backing array start and
// length. Two empty slices are considered the same.
func SameSlice[E any](a, b []E) bool {
	if len(a) != len(b) {
		return false
	}
	if len(a) == 0 {
		return true
	}
	return &a[0] == &b[0]
}
