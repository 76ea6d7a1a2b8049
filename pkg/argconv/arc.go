package argconv

import "go.uber.org/atomic"

// ArcInto hands out an owning reference to v. The first call registers v
// with a count of one. Calling it again for a value that is already
// registered adds an owner and returns the same address.
func ArcInto[T any](v *T) Ptr[T] {
	if v == nil {
		return Null[T]()
	}
	handles.mu.Lock()
	defer handles.mu.Unlock()
	if addr, ok := handles.shared[v]; ok {
		handles.entries[addr].refs.Inc()
		return Ptr[T]{addr: addr}
	}
	addr := handles.allocLocked(&entry{value: v, disc: Shared, refs: atomic.NewInt64(1)})
	handles.shared[v] = addr
	return Ptr[T]{addr: addr}
}

// ArcBorrow hands out a by-reference pointer to a shared value owned by
// parent. The count is not touched. The pointer stays valid while parent
// lives or while any owner obtained through ArcClone does.
func ArcBorrow[T any](parent uintptr, v *T) Ptr[T] {
	if v == nil {
		return Null[T]()
	}
	handles.mu.Lock()
	defer handles.mu.Unlock()
	if addr, ok := handles.shared[v]; ok {
		return Ptr[T]{addr: addr}
	}
	addr := handles.allocLocked(&entry{
		value:  v,
		disc:   Shared,
		refs:   atomic.NewInt64(0),
		parent: handles.rootLocked(parent),
	})
	handles.shared[v] = addr
	return Ptr[T]{addr: addr}
}

// ArcClone adds an owner to p and returns the same address. Null in, null
// out.
func ArcClone[T any](p Ptr[T]) Ptr[T] {
	if p.IsNull() {
		return p
	}
	handles.mu.RLock()
	defer handles.mu.RUnlock()
	e, ok := handles.entries[p.addr]
	if !ok || e.disc != Shared {
		contractViolation("arc_clone", p.addr)
		return Null[T]()
	}
	if _, ok := typed[T](e); !ok {
		contractViolation("arc_clone", p.addr)
		return Null[T]()
	}
	e.refs.Inc()
	return p
}

// ArcAsRef resolves a shared pointer without touching the count.
func ArcAsRef[T any](p Ptr[T]) (*T, bool) {
	e, ok := handles.lookup(p.addr, Shared)
	if !ok {
		return nil, false
	}
	return typed[T](e)
}

// MustArc is ArcAsRef for required arguments.
func MustArc[T any](p Ptr[T]) *T {
	v, ok := ArcAsRef(p)
	if !ok {
		mustf(p, "shared")
	}
	return v
}

// ArcFree drops one owner. The value is destroyed when the last owner
// goes, unless it is still borrowed from a live parent.
func ArcFree[T any](p Ptr[T]) {
	if p.IsNull() {
		return
	}
	var after []func()
	handles.mu.Lock()
	e, ok := handles.entries[p.addr]
	if !ok || e.disc != Shared || e.refs.Load() <= 0 {
		handles.mu.Unlock()
		contractViolation("arc_free", p.addr)
		return
	}
	if _, ok := typed[T](e); !ok {
		handles.mu.Unlock()
		contractViolation("arc_free", p.addr)
		return
	}
	if e.refs.Dec() == 0 {
		if _, parentAlive := handles.entries[e.parent]; e.parent == 0 || !parentAlive {
			handles.removeLocked(p.addr, e, true, &after)
		}
	}
	handles.mu.Unlock()

	runAll(after)
}

// ArcCount returns the number of owners of p, for diagnostics.
func ArcCount[T any](p Ptr[T]) int64 {
	e, ok := handles.lookup(p.addr, Shared)
	if !ok {
		return 0
	}
	return e.refs.Load()
}
