package cass

import (
	"github.com/grafana/cassbridge/pkg/argconv"
	"github.com/grafana/cassbridge/pkg/driver"
)

// Prepared is a CassPrepared.
type Prepared struct {
	info *driver.PreparedInfo
}

// PreparedFree implements cass_prepared_free.
func PreparedFree(p argconv.Ptr[Prepared]) {
	argconv.ArcFree(p)
}

// PreparedBind implements cass_prepared_bind. Every parameter of the new
// statement starts unset.
func PreparedBind(p argconv.Ptr[Prepared]) argconv.Ptr[Statement] {
	prepared := argconv.MustArc(p)
	return argconv.BoxInto(newStatement(statementState{
		query:    prepared.info.Statement,
		prepared: prepared,
		values:   unsetValues(prepared.info.BindCount),
		opts:     defaultRequestOptions(),
	}))
}

// PreparedParameterName implements cass_prepared_parameter_name.
func PreparedParameterName(p argconv.Ptr[Prepared], index int) (string, bool) {
	prepared := argconv.MustArc(p)
	if index < 0 || index >= len(prepared.info.BindNames) {
		return "", false
	}
	return prepared.info.BindNames[index], true
}
