package argconv

// BoxInto moves v behind a new exclusive pointer. A nil v yields null.
func BoxInto[T any](v *T) Ptr[T] {
	if v == nil {
		return Null[T]()
	}
	handles.mu.Lock()
	defer handles.mu.Unlock()
	return Ptr[T]{addr: handles.allocLocked(&entry{value: v, disc: Exclusive})}
}

// BoxAsRef resolves an exclusive pointer without taking ownership.
func BoxAsRef[T any](p Ptr[T]) (*T, bool) {
	e, ok := handles.lookup(p.addr, Exclusive)
	if !ok {
		return nil, false
	}
	return typed[T](e)
}

// BoxAsMut is BoxAsRef. Go has no shared/mutable split; the name marks
// call sites that modify the value.
func BoxAsMut[T any](p Ptr[T]) (*T, bool) {
	return BoxAsRef(p)
}

// MustBox is BoxAsRef for required arguments.
func MustBox[T any](p Ptr[T]) *T {
	v, ok := BoxAsRef(p)
	if !ok {
		mustf(p, "exclusive")
	}
	return v
}

// BoxFrom moves the value back out of p. The address is unregistered
// together with everything borrowed from it, but the value itself is not
// released: the caller owns it again.
func BoxFrom[T any](p Ptr[T]) (*T, bool) {
	return boxTake(p, false)
}

// BoxFree destroys the value behind p. Freeing null is a no-op.
func BoxFree[T any](p Ptr[T]) {
	if p.IsNull() {
		return
	}
	if _, ok := boxTake(p, true); !ok {
		contractViolation("box_free", p.addr)
	}
}

func boxTake[T any](p Ptr[T], release bool) (*T, bool) {
	if p.IsNull() {
		return nil, false
	}
	var after []func()
	handles.mu.Lock()
	e, ok := handles.entries[p.addr]
	if !ok || e.disc != Exclusive {
		handles.mu.Unlock()
		return nil, false
	}
	v, ok := typed[T](e)
	if !ok {
		handles.mu.Unlock()
		return nil, false
	}
	handles.removeLocked(p.addr, e, release, &after)
	handles.mu.Unlock()

	runAll(after)
	return v, true
}
