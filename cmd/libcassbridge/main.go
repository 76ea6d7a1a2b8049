// libcassbridge builds the cassandra.h shared library:
//
//	go build -buildmode=c-shared -o libcassbridge.so ./cmd/libcassbridge
//
// Exported functions only convert C arguments and forward to pkg/cass.
// Handles cross the boundary as the addresses minted by pkg/argconv. They
// never point at Go memory, so C may hold them freely.
package main

/*
#include <stdlib.h>
#include "cassbridge.h"
*/
import "C"

import (
	"encoding/binary"
	"net"
	"sync"
	"unsafe"

	"github.com/google/uuid"

	"github.com/grafana/cassbridge/pkg/argconv"
	"github.com/grafana/cassbridge/pkg/casserr"
)

func main() {}

// toC turns a handle into the opaque C pointer type H.
func toC[H, T any](p argconv.Ptr[T]) *H {
	return (*H)(unsafe.Pointer(p.Addr())) //nolint:govet
}

func fromC[T, H any](h *H) argconv.Ptr[T] {
	return argconv.FromAddr[T](uintptr(unsafe.Pointer(h)))
}

func cerr(code casserr.Code) C.CassError { return C.CassError(code) }

func cbool(b bool) C.cass_bool_t {
	if b {
		return C.cass_true
	}
	return C.cass_false
}

func gobool(b C.cass_bool_t) bool { return b != C.cass_false }

func goString(s *C.char) string {
	if s == nil {
		return ""
	}
	return C.GoString(s)
}

func goStringN(s *C.char, n C.size_t) string {
	if s == nil || n == 0 {
		return ""
	}
	return C.GoStringN(s, C.int(n))
}

func goBytes(b *C.cass_byte_t, n C.size_t) []byte {
	if b == nil || n == 0 {
		return nil
	}
	return C.GoBytes(unsafe.Pointer(b), C.int(n))
}

type cstrKey struct {
	owner uintptr
	s     string
}

var (
	cstrMtx sync.Mutex
	// C copies of strings handed out, keyed by the root handle that owns
	// them. They are freed together with that handle.
	cstrs = map[cstrKey]*C.char{}

	staticMtx sync.Mutex
	statics   = map[string]*C.char{}
)

// ownedString returns a C copy of s that stays valid while the handle at
// addr, or the root it borrows from, is alive.
func ownedString(addr uintptr, s string) *C.char {
	root := argconv.RootOf(addr)
	if root == 0 {
		return nil
	}

	cstrMtx.Lock()
	defer cstrMtx.Unlock()
	key := cstrKey{owner: root, s: s}
	if cs, ok := cstrs[key]; ok {
		return cs
	}
	cs := C.CString(s)
	attached := argconv.AttachCleanup(root, func() {
		cstrMtx.Lock()
		delete(cstrs, key)
		cstrMtx.Unlock()
		C.free(unsafe.Pointer(cs))
	})
	if !attached {
		C.free(unsafe.Pointer(cs))
		return nil
	}
	cstrs[key] = cs
	return cs
}

// staticString returns a C copy of s that is never freed. Only for the
// small fixed sets of names and descriptions.
func staticString(s string) *C.char {
	staticMtx.Lock()
	defer staticMtx.Unlock()
	cs, ok := statics[s]
	if !ok {
		cs = C.CString(s)
		statics[s] = cs
	}
	return cs
}

func writeString(addr uintptr, s string, out **C.char, outLen *C.size_t) {
	if out != nil {
		*out = ownedString(addr, s)
	}
	if outLen != nil {
		*outLen = C.size_t(len(s))
	}
}

func writeBytes(addr uintptr, b []byte, out **C.cass_byte_t, outLen *C.size_t) {
	if out != nil {
		*out = (*C.cass_byte_t)(unsafe.Pointer(ownedString(addr, string(b))))
	}
	if outLen != nil {
		*outLen = C.size_t(len(b))
	}
}

// uuidToC packs u the way CassUuid stores it: time_low, time_mid and
// time_hi_and_version in the first word, clock sequence and node in the
// second.
func uuidToC(u uuid.UUID) C.CassUuid {
	timeLow := uint64(binary.BigEndian.Uint32(u[0:4]))
	timeMid := uint64(binary.BigEndian.Uint16(u[4:6]))
	timeHi := uint64(binary.BigEndian.Uint16(u[6:8]))
	return C.CassUuid{
		time_and_version:   C.cass_uint64_t(timeHi<<48 | timeMid<<32 | timeLow),
		clock_seq_and_node: C.cass_uint64_t(binary.BigEndian.Uint64(u[8:16])),
	}
}

func uuidFromC(c C.CassUuid) uuid.UUID {
	var u uuid.UUID
	tv := uint64(c.time_and_version)
	binary.BigEndian.PutUint32(u[0:4], uint32(tv))
	binary.BigEndian.PutUint16(u[4:6], uint16(tv>>32))
	binary.BigEndian.PutUint16(u[6:8], uint16(tv>>48))
	binary.BigEndian.PutUint64(u[8:16], uint64(c.clock_seq_and_node))
	return u
}

func inetToC(ip net.IP) C.CassInet {
	var out C.CassInet
	if v4 := ip.To4(); v4 != nil {
		ip = v4
	}
	for i, b := range ip {
		out.address[i] = C.cass_uint8_t(b)
	}
	out.address_length = C.cass_uint8_t(len(ip))
	return out
}

func inetFromC(c C.CassInet) net.IP {
	n := int(c.address_length)
	if n != C.CASS_INET_V4_LENGTH && n != C.CASS_INET_V6_LENGTH {
		return nil
	}
	ip := make(net.IP, n)
	for i := range ip {
		ip[i] = byte(c.address[i])
	}
	return ip
}
