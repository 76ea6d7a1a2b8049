package driver

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBindMarkers(t *testing.T) {
	for _, tc := range []struct {
		stmt  string
		count int
		names []string
	}{
		{"SELECT * FROM t", 0, nil},
		{"INSERT INTO t (a, b) VALUES (?, ?)", 2, []string{"", ""}},
		{"SELECT * FROM t WHERE k = :key AND c > :c1", 2, []string{"key", "c1"}},
		{"SELECT '?' FROM t WHERE a = ?", 1, []string{""}},
		{`SELECT "we?ird" FROM t WHERE a = 'it''s ?' AND b = ?`, 1, []string{""}},
		{"SELECT a -- why?\nFROM t WHERE b = ? /* c = ? */", 1, []string{""}},
		{"SELECT ks.t::int FROM t", 0, nil},
		{"UPDATE t SET m = {'k':true, 'j' :false} WHERE a = :a", 1, []string{"a"}},
		{"UPDATE t SET u = {flag :on} WHERE a = ?", 1, []string{""}},
		{"UPDATE t SET m = {:k: :v, 'x': :w} WHERE a = :a", 4, []string{"k", "v", "w", "a"}},
		{"CREATE FUNCTION f() RETURNS int LANGUAGE java AS $$ return x ? 1 : 2; $$", 0, nil},
	} {
		t.Run(tc.stmt, func(t *testing.T) {
			count, names := BindMarkers(tc.stmt)
			assert.Equal(t, tc.count, count)
			assert.Equal(t, tc.names, names)
		})
	}
}

func TestConsistency(t *testing.T) {
	c, ok := ParseConsistency("LOCAL_QUORUM")
	require.True(t, ok)
	assert.Equal(t, LocalQuorum, c)
	assert.Equal(t, "LOCAL_ONE", LocalOne.String())

	_, ok = ParseConsistency("UNKNOWN")
	assert.False(t, ok)

	assert.True(t, LocalSerial.IsSerial())
	assert.False(t, Quorum.IsSerial())
	assert.False(t, ConsistencyUnset.Valid())
}

func TestProfileMerge(t *testing.T) {
	base := Profile{
		Consistency:       LocalOne,
		SerialConsistency: Serial,
		RequestTimeout:    12,
		RetryPolicy:       &RetryPolicy{Kind: RetryDefault},
	}
	p := Profile{
		Name:              "analytics",
		Consistency:       All,
		SerialConsistency: ConsistencyUnset,
		RequestTimeout:    -1,
	}.Merge(base)

	assert.Equal(t, "analytics", p.Name)
	assert.Equal(t, All, p.Consistency)
	assert.Equal(t, Serial, p.SerialConsistency)
	assert.EqualValues(t, 12, p.RequestTimeout)
	assert.Same(t, base.RetryPolicy, p.RetryPolicy)
}

func TestDataTypeString(t *testing.T) {
	udt := &DataType{Type: TypeUDT, Keyspace: "ks", Name: "address", FieldNames: []string{"street"}, Sub: []*DataType{Simple(TypeText)}}
	assert.Equal(t, "map<text, list<int>>", MapOf(Simple(TypeText), ListOf(Simple(TypeInt))).String())
	assert.Equal(t, "tuple<int, ks.address>", TupleOf(Simple(TypeInt), udt).String())

	ft, ok := udt.FieldType("street")
	require.True(t, ok)
	assert.Equal(t, TypeText, ft.Type)
	assert.Nil(t, ListOf(Simple(TypeInt)).SubType(3))
}

func TestValueCount(t *testing.T) {
	m := &Value{Type: MapOf(Simple(TypeText), Simple(TypeInt)), Pairs: []Pair{
		{Key: ScalarOf(TypeText, "a"), Val: ScalarOf(TypeInt, int32(1))},
	}}
	assert.Equal(t, 1, m.Count())
	assert.Equal(t, 0, NullOf(ListOf(Simple(TypeInt))).Count())
	assert.Equal(t, TypeUnknown, (*Value)(nil).ValueType())
}

func TestSchemaLink(t *testing.T) {
	users := &TableMeta{Keyspace: "ks", Name: "users", Columns: []*ColumnMeta{
		{Name: "id", Type: Simple(TypeUUID), Kind: ColumnPartitionKey},
		{Name: "ts", Type: Simple(TypeTimestamp), Kind: ColumnClusteringKey},
		{Name: "email", Type: Simple(TypeText)},
	}}
	users.SplitKeys()
	byEmail := &ViewMeta{Name: "users_by_email", BaseTableName: "users", Table: &TableMeta{Name: "users_by_email"}}
	orphan := &ViewMeta{Name: "orphan", BaseTableName: "gone", Table: &TableMeta{Name: "orphan"}}

	s := NewSchema([]*KeyspaceMeta{
		{Name: "zz"},
		{Name: "ks", Tables: []*TableMeta{users}, Views: []*ViewMeta{orphan, byEmail}},
	})

	require.Equal(t, "ks", s.Keyspaces[0].Name)
	ks := s.Keyspace("ks")
	assert.Equal(t, []*ViewMeta{orphan, byEmail}, ks.Views)
	assert.Same(t, byEmail, users.View("users_by_email"))
	assert.Len(t, users.PartitionKey, 1)
	assert.Len(t, users.ClusteringKey, 1)

	base, ok := byEmail.BaseTable.Upgrade()
	require.True(t, ok)
	assert.Same(t, users, base)
	_, ok = orphan.BaseTable.Upgrade()
	assert.False(t, ok)
	runtime.KeepAlive(s)
}
