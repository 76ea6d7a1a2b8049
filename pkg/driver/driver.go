// Package driver describes the CQL driver the C ABI is layered on.
//
// The bridge never talks to the wire protocol itself. It builds Query and
// Batch requests, hands them to a Conn obtained from a Connector and turns
// the decoded Result back into handles. gocqldriver implements the
// interfaces on top of gocql, drivertest with scripted responses.
package driver

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Consistency uses the CQL protocol numbering, like CassConsistency.
type Consistency uint16

const (
	Any         Consistency = 0x0000
	One         Consistency = 0x0001
	Two         Consistency = 0x0002
	Three       Consistency = 0x0003
	Quorum      Consistency = 0x0004
	All         Consistency = 0x0005
	LocalQuorum Consistency = 0x0006
	EachQuorum  Consistency = 0x0007
	Serial      Consistency = 0x0008
	LocalSerial Consistency = 0x0009
	LocalOne    Consistency = 0x000A

	// ConsistencyUnset leaves the decision to the next level of defaults.
	ConsistencyUnset Consistency = 0xFFFF
)

var consistencyNames = map[Consistency]string{
	Any:              "ANY",
	One:              "ONE",
	Two:              "TWO",
	Three:            "THREE",
	Quorum:           "QUORUM",
	All:              "ALL",
	LocalQuorum:      "LOCAL_QUORUM",
	EachQuorum:       "EACH_QUORUM",
	Serial:           "SERIAL",
	LocalSerial:      "LOCAL_SERIAL",
	LocalOne:         "LOCAL_ONE",
	ConsistencyUnset: "UNKNOWN",
}

func (c Consistency) String() string {
	if n, ok := consistencyNames[c]; ok {
		return n
	}
	return "UNKNOWN"
}

// Valid reports whether c is a regular consistency level.
func (c Consistency) Valid() bool {
	return c <= LocalOne
}

// IsSerial reports whether c may be used as a serial consistency.
func (c Consistency) IsSerial() bool {
	return c == Serial || c == LocalSerial
}

// ParseConsistency parses a consistency name as printed by String.
func ParseConsistency(s string) (Consistency, bool) {
	for c, n := range consistencyNames {
		if n == s && c != ConsistencyUnset {
			return c, true
		}
	}
	return ConsistencyUnset, false
}

// RetryKind selects a retry behaviour of the driver.
type RetryKind uint8

const (
	RetryDefault RetryKind = iota
	RetryDowngradingConsistency
	RetryFallthrough
)

func (k RetryKind) String() string {
	switch k {
	case RetryDowngradingConsistency:
		return "downgrading_consistency"
	case RetryFallthrough:
		return "fallthrough"
	default:
		return "default"
	}
}

// RetryPolicy is the retry configuration attached to a cluster, profile or
// request. Logging wraps the decisions of Kind with a log line each.
type RetryPolicy struct {
	Kind    RetryKind
	Logging bool
}

// SpeculativePolicy configures constant speculative executions. A nil
// policy disables them.
type SpeculativePolicy struct {
	Delay         time.Duration
	MaxExecutions int
}

// LoadBalancingKind selects the host ordering of a profile.
type LoadBalancingKind uint8

const (
	RoundRobin LoadBalancingKind = iota
	DCAware
)

// LoadBalancing is the host selection configuration.
type LoadBalancing struct {
	Kind            LoadBalancingKind
	LocalDC         string
	TokenAware      bool
	ShuffleReplicas bool
	LatencyAware    bool
}

// Profile is a named bundle of request defaults. The cluster default
// profile has an empty name.
type Profile struct {
	Name              string
	Consistency       Consistency
	SerialConsistency Consistency

	// RequestTimeout bounds server-side waiting. 0 means none, a negative
	// value inherits from the default profile.
	RequestTimeout time.Duration
	RetryPolicy    *RetryPolicy
	Speculative    *SpeculativePolicy
	LoadBalancing  *LoadBalancing
}

// Merge returns p with every unset field taken from base.
func (p Profile) Merge(base Profile) Profile {
	out := p
	if out.Consistency == ConsistencyUnset {
		out.Consistency = base.Consistency
	}
	if out.SerialConsistency == ConsistencyUnset {
		out.SerialConsistency = base.SerialConsistency
	}
	if out.RequestTimeout < 0 {
		out.RequestTimeout = base.RequestTimeout
	}
	if out.RetryPolicy == nil {
		out.RetryPolicy = base.RetryPolicy
	}
	if out.Speculative == nil {
		out.Speculative = base.Speculative
	}
	if out.LoadBalancing == nil {
		out.LoadBalancing = base.LoadBalancing
	}
	return out
}

// unset is the type of Unset.
type unset struct{}

// Unset marks a bound value that was never set. The server keeps the
// current column value.
var Unset = unset{}

// RequestOptions are the per-request settings shared by queries and
// batches.
type RequestOptions struct {
	Consistency       Consistency
	SerialConsistency Consistency
	Timestamp         *int64
	Idempotent        bool
	Tracing           bool
	RetryPolicy       *RetryPolicy

	// Profile is the resolved execution profile, nil for the cluster
	// default.
	Profile *Profile
}

// Query is a single statement execution.
type Query struct {
	Statement string
	Values    []any
	Prepared  bool
	Keyspace  string

	// PageSize <= 0 disables paging.
	PageSize    int32
	PagingState []byte

	RequestOptions
}

// BatchType uses the CQL protocol numbering.
type BatchType uint8

const (
	LoggedBatch   BatchType = 0
	UnloggedBatch BatchType = 1
	CounterBatch  BatchType = 2
)

// BatchEntry is one statement of a batch.
type BatchEntry struct {
	Statement  string
	Values     []any
	Idempotent bool
}

// Batch is a batch execution.
type Batch struct {
	Type    BatchType
	Entries []BatchEntry

	RequestOptions
}

// Compression of the native protocol frames.
type Compression uint8

const (
	CompressionNone Compression = iota
	CompressionSnappy
	CompressionLZ4
)

// ReconnectPolicy configures how fast lost connections are retried.
type ReconnectPolicy struct {
	Exponential bool
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// ClusterConfig is everything a Connector needs to open a session.
type ClusterConfig struct {
	ContactPoints   []string
	Port            int
	ProtocolVersion int
	Keyspace        string

	Username string
	Password string

	Compression Compression

	ConnectTimeout time.Duration
	// HeartbeatInterval and IdleTimeout are disabled when 0.
	HeartbeatInterval time.Duration
	IdleTimeout       time.Duration
	TCPNoDelay        bool
	TCPKeepalive      bool
	TCPKeepaliveDelay time.Duration
	Reconnect         ReconnectPolicy

	DefaultProfile Profile

	ApplicationName    string
	ApplicationVersion string
	ClientID           uuid.UUID

	FetchSchema             bool
	MaxSchemaWait           time.Duration
	SchemaAgreementInterval time.Duration
}

// PreparedInfo describes a statement prepared by the server.
type PreparedInfo struct {
	Statement string
	Keyspace  string
	BindCount int
	BindNames []string
}

// Conn is a connected session.
type Conn interface {
	Query(ctx context.Context, q *Query) (*Result, error)
	Batch(ctx context.Context, b *Batch) error
	Prepare(ctx context.Context, statement, keyspace string) (*PreparedInfo, error)
	Schema(ctx context.Context) (*Schema, error)
	Close() error
}

// Connector opens sessions.
type Connector interface {
	Connect(ctx context.Context, cfg *ClusterConfig) (Conn, error)
}
