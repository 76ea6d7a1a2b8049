package main

import (
	"net"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grafana/cassbridge/pkg/cass"
)

func TestUUIDLayout(t *testing.T) {
	u := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	c := uuidToC(u)
	assert.Equal(t, uint64(0x11d19dad6ba7b810), uint64(c.time_and_version))
	assert.Equal(t, uint64(0x80b400c04fd430c8), uint64(c.clock_seq_and_node))
	assert.Equal(t, u, uuidFromC(c))
}

func TestInetRoundTrip(t *testing.T) {
	for _, ip := range []net.IP{net.ParseIP("10.0.0.1").To4(), net.ParseIP("2001:db8::1")} {
		got := inetFromC(inetToC(ip))
		assert.True(t, ip.Equal(got), "%s != %s", ip, got)
		assert.Len(t, got, len(ip))
	}
}

func TestOwnedStringsFreedWithOwner(t *testing.T) {
	stmt := cass.StatementNew("SELECT 1", 0)

	a := ownedString(stmt.Addr(), "keyspace")
	require.NotNil(t, a)
	assert.Equal(t, a, ownedString(stmt.Addr(), "keyspace"), "same owner and text share one copy")

	cstrMtx.Lock()
	assert.Len(t, cstrs, 1)
	cstrMtx.Unlock()

	cass.StatementFree(stmt)

	cstrMtx.Lock()
	assert.Empty(t, cstrs)
	cstrMtx.Unlock()

	assert.Nil(t, ownedString(stmt.Addr(), "keyspace"), "dead owners get no strings")
}
