package argconv

import "weak"

// Weak is a back-reference that does not keep its target alive.
type Weak[T any] struct {
	p weak.Pointer[T]
}

// Downgrade returns a weak reference to v.
func Downgrade[T any](v *T) Weak[T] {
	if v == nil {
		return Weak[T]{}
	}
	return Weak[T]{p: weak.Make(v)}
}

// Upgrade resolves the reference. It fails once the target was collected.
func (w Weak[T]) Upgrade() (*T, bool) {
	v := w.p.Value()
	return v, v != nil
}
