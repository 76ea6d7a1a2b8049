// Package argconv hands out foreign pointers for Go values.
//
// C code can only hold integers, so every value exposed through the C ABI is
// registered under an address in a process-wide registry. The address is the
// handle: the C side passes it back and the registry resolves it, checks the
// ownership discipline it was created with and the concrete type, and
// enforces the lifetime rules of that discipline.
//
//   - Exclusive (Box): one owner, moved in by BoxInto, destroyed by BoxFree.
//   - Shared (Arc): reference counted, ArcClone adds an owner, ArcFree drops
//     one and the value is destroyed when the count reaches zero.
//   - Borrowed (Ref): never freed by the holder, valid while its owner lives.
//     Borrowed entries are purged when the owner is destroyed.
//
// Using an address after it was freed, with the wrong discipline or with the
// wrong type is a contract violation. Lookups then fail and the Must*
// helpers panic, the Go equivalent of aborting.
package argconv

import (
	"fmt"
	"sync"

	"github.com/go-kit/log/level"
	"go.uber.org/atomic"

	util_log "github.com/grafana/cassbridge/pkg/util/log"
)

// Discipline is the ownership contract an address was created with.
type Discipline uint8

const (
	Exclusive Discipline = iota + 1
	Shared
	Borrowed
)

func (d Discipline) String() string {
	switch d {
	case Exclusive:
		return "exclusive"
	case Shared:
		return "shared"
	case Borrowed:
		return "borrowed"
	default:
		return "unknown"
	}
}

// Releaser is implemented by values that hold resources. Release is called
// once, when the last owner of the value lets go.
type Releaser interface {
	Release()
}

// Addresses start well above zero and keep the alignment of a real
// allocation so that C callers comparing pointers see nothing unusual.
const (
	firstAddr = 0x1000
	addrStep  = 0x10
)

type entry struct {
	value any
	disc  Discipline

	// refs counts the owning references of a Shared entry. A Shared entry
	// with zero refs is a by-reference pointer kept alive by its parent.
	refs *atomic.Int64

	parent   uintptr
	children map[uintptr]struct{}
	cleanups []func()
}

type refKey struct {
	owner uintptr
	value any
}

// Registry maps foreign addresses to Go values.
type Registry struct {
	mu      sync.RWMutex
	next    *atomic.Uintptr
	entries map[uintptr]*entry
	shared  map[any]uintptr
	refs    map[refKey]uintptr
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		next:    atomic.NewUintptr(firstAddr - addrStep),
		entries: map[uintptr]*entry{},
		shared:  map[any]uintptr{},
		refs:    map[refKey]uintptr{},
	}
}

var handles = NewRegistry()

// Len returns the number of live addresses.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Live returns the number of live addresses in the process registry.
func Live() int { return handles.Len() }

// Alive reports whether addr is registered.
func Alive(addr uintptr) bool {
	handles.mu.RLock()
	defer handles.mu.RUnlock()
	_, ok := handles.entries[addr]
	return ok
}

// RootOf returns the address whose destruction ends the lifetime of addr.
// For owned addresses that is addr itself.
func RootOf(addr uintptr) uintptr {
	handles.mu.RLock()
	defer handles.mu.RUnlock()
	return handles.rootLocked(addr)
}

// AttachCleanup runs fn when addr is destroyed. It returns false when addr
// is not live, in which case fn is not retained.
func AttachCleanup(addr uintptr, fn func()) bool {
	handles.mu.Lock()
	defer handles.mu.Unlock()
	e, ok := handles.entries[addr]
	if !ok {
		return false
	}
	e.cleanups = append(e.cleanups, fn)
	return true
}

func (r *Registry) allocLocked(e *entry) uintptr {
	addr := r.next.Add(addrStep)
	r.entries[addr] = e
	if e.parent != 0 {
		if p, ok := r.entries[e.parent]; ok {
			if p.children == nil {
				p.children = map[uintptr]struct{}{}
			}
			p.children[addr] = struct{}{}
		}
	}
	return addr
}

func (r *Registry) lookup(addr uintptr, disc ...Discipline) (*entry, bool) {
	if addr == 0 {
		return nil, false
	}
	r.mu.RLock()
	e, ok := r.entries[addr]
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}
	for _, d := range disc {
		if e.disc == d {
			return e, true
		}
	}
	return nil, false
}

func (r *Registry) rootLocked(addr uintptr) uintptr {
	for {
		e, ok := r.entries[addr]
		if !ok || e.disc != Borrowed || e.parent == 0 {
			return addr
		}
		addr = e.parent
	}
}

// removeLocked unregisters addr and everything borrowed from it. Cleanups
// and releases are collected into out and run by the caller once the lock
// is dropped.
func (r *Registry) removeLocked(addr uintptr, e *entry, release bool, out *[]func()) {
	delete(r.entries, addr)
	switch e.disc {
	case Shared:
		if r.shared[e.value] == addr {
			delete(r.shared, e.value)
		}
	case Borrowed:
		delete(r.refs, refKey{owner: e.parent, value: e.value})
	}
	if e.parent != 0 {
		if p, ok := r.entries[e.parent]; ok {
			delete(p.children, addr)
		}
	}

	for child := range e.children {
		c, ok := r.entries[child]
		if !ok {
			continue
		}
		// A shared child upgraded by ArcClone outlives its parent.
		if c.disc == Shared && c.refs.Load() > 0 {
			c.parent = 0
			continue
		}
		r.removeLocked(child, c, false, out)
	}

	*out = append(*out, e.cleanups...)
	if release {
		if rel, ok := e.value.(Releaser); ok {
			*out = append(*out, rel.Release)
		}
	}
}

func runAll(fns []func()) {
	for _, fn := range fns {
		fn()
	}
}

func contractViolation(op string, addr uintptr) {
	level.Warn(util_log.Logger).Log("msg", "pointer contract violation", "op", op, "addr", fmt.Sprintf("0x%x", addr))
}
