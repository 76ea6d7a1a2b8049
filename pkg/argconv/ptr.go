package argconv

import "fmt"

// Ptr is a typed foreign pointer. The zero value is the null pointer.
type Ptr[T any] struct {
	addr uintptr
}

// Null returns the null pointer of type T.
func Null[T any]() Ptr[T] { return Ptr[T]{} }

// FromAddr rebuilds a pointer received from foreign code.
func FromAddr[T any](addr uintptr) Ptr[T] { return Ptr[T]{addr: addr} }

// Addr returns the raw address handed to foreign code.
func (p Ptr[T]) Addr() uintptr { return p.addr }

// IsNull reports whether p is the null pointer.
func (p Ptr[T]) IsNull() bool { return p.addr == 0 }

func (p Ptr[T]) String() string {
	var zero *T
	return fmt.Sprintf("%T(0x%x)", zero, p.addr)
}

func typed[T any](e *entry) (*T, bool) {
	v, ok := e.value.(*T)
	return v, ok
}

func mustf[T any](p Ptr[T], want string) {
	var zero *T
	if p.IsNull() {
		panic(fmt.Sprintf("argconv: null %T passed for a required %s pointer", zero, want))
	}
	panic(fmt.Sprintf("argconv: 0x%x is not a live %s %T", p.addr, want, zero))
}
