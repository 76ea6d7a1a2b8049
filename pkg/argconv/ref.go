package argconv

// RefInto hands out a borrowed pointer to v, owned by parent. Borrowing the
// same value from the same owner twice returns the same address. Borrowing
// from a borrowed pointer ties the result to the root owner.
func RefInto[T any](parent uintptr, v *T) Ptr[T] {
	if v == nil {
		return Null[T]()
	}
	handles.mu.Lock()
	defer handles.mu.Unlock()

	owner := handles.rootLocked(parent)
	key := refKey{owner: owner, value: v}
	if addr, ok := handles.refs[key]; ok {
		return Ptr[T]{addr: addr}
	}
	addr := handles.allocLocked(&entry{value: v, disc: Borrowed, parent: owner})
	handles.refs[key] = addr
	return Ptr[T]{addr: addr}
}

// RefAsRef resolves a borrowed pointer. Shared pointers are accepted too,
// a shared value can always be viewed by reference.
func RefAsRef[T any](p Ptr[T]) (*T, bool) {
	e, ok := handles.lookup(p.addr, Borrowed, Shared)
	if !ok {
		return nil, false
	}
	return typed[T](e)
}

// MustRef is RefAsRef for required arguments.
func MustRef[T any](p Ptr[T]) *T {
	v, ok := RefAsRef(p)
	if !ok {
		mustf(p, "borrowed")
	}
	return v
}
