package gocqldriver

import (
	"context"
	"reflect"

	"github.com/gocql/gocql"
	"github.com/pkg/errors"

	"github.com/grafana/cassbridge/pkg/casserr"
)

// toCassError maps a gocql error to the CassError space. Client-side
// timeouts stay distinct from timeouts reported by the server.
func toCassError(err error) error {
	if err == nil {
		return nil
	}
	var already *casserr.Error
	if errors.As(err, &already) {
		return err
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, gocql.ErrTimeoutNoResponse):
		return casserr.New(casserr.LibRequestTimedOut, "Request timed out")
	case errors.Is(err, context.Canceled):
		return casserr.New(casserr.LibRequestTimedOut, "Request canceled")
	case errors.Is(err, gocql.ErrNoConnections),
		errors.Is(err, gocql.ErrNoConnectionsStarted),
		errors.Is(err, gocql.ErrNoHosts):
		return casserr.New(casserr.LibNoHostsAvailable, err.Error())
	case errors.Is(err, gocql.ErrConnectionClosed), errors.Is(err, gocql.ErrSessionClosed):
		return casserr.New(casserr.LibUnableToConnect, err.Error())
	case errors.Is(err, gocql.ErrNoKeyspace):
		return casserr.New(casserr.LibUnableToSetKeyspace, err.Error())
	case errors.Is(err, gocql.ErrTooManyStmts):
		return casserr.New(casserr.LibInvalidItemCount, err.Error())
	case errors.Is(err, gocql.ErrUseStmt):
		return casserr.New(casserr.LibInvalidStatementType, err.Error())
	}

	var reqErr gocql.RequestError
	if errors.As(err, &reqErr) {
		code := casserr.ServerCode(reqErr.Code())
		return &casserr.Error{
			Code:    code,
			Message: reqErr.Message(),
			Result:  errorResult(code, reqErr),
		}
	}
	return casserr.New(casserr.LibInternalError, err.Error())
}

// toConnectError maps a session creation failure.
func toConnectError(err error) error {
	mapped := toCassError(err)
	if casserr.CodeOf(mapped) == casserr.LibInternalError {
		return casserr.New(casserr.LibUnableToConnect, err.Error())
	}
	return mapped
}

func errorResult(code casserr.Code, reqErr gocql.RequestError) *casserr.ErrorResult {
	res := &casserr.ErrorResult{
		Code:    code,
		Message: reqErr.Message(),
	}
	switch e := reqErr.(type) {
	case *gocql.RequestErrUnavailable:
		res.Consistency = uint16(e.Consistency)
		res.ResponsesRequired = int32(e.Required)
		res.ResponsesReceived = int32(e.Alive)
	case *gocql.RequestErrReadTimeout:
		res.Consistency = uint16(e.Consistency)
		res.ResponsesReceived = int32(e.Received)
		res.ResponsesRequired = int32(e.BlockFor)
		res.DataPresent = dataPresent(e)
	case *gocql.RequestErrWriteTimeout:
		res.Consistency = uint16(e.Consistency)
		res.ResponsesReceived = int32(e.Received)
		res.ResponsesRequired = int32(e.BlockFor)
		res.WriteType = e.WriteType
	case *gocql.RequestErrReadFailure:
		res.Consistency = uint16(e.Consistency)
		res.ResponsesReceived = int32(e.Received)
		res.ResponsesRequired = int32(e.BlockFor)
		res.NumFailures = int32(e.NumFailures)
		res.DataPresent = dataPresent(e)
	case *gocql.RequestErrWriteFailure:
		res.Consistency = uint16(e.Consistency)
		res.ResponsesReceived = int32(e.Received)
		res.ResponsesRequired = int32(e.BlockFor)
		res.NumFailures = int32(e.NumFailures)
		res.WriteType = e.WriteType
	case *gocql.RequestErrFunctionFailure:
		res.Keyspace = e.Keyspace
		res.Function = e.Function
	case *gocql.RequestErrAlreadyExists:
		res.Keyspace = e.Keyspace
		res.Table = e.Table
	}
	return res
}

// dataPresent reads the DataPresent flag, a byte or a bool depending on the
// error type.
func dataPresent(e any) bool {
	v := reflect.Indirect(reflect.ValueOf(e)).FieldByName("DataPresent")
	switch {
	case !v.IsValid():
		return false
	case v.Kind() == reflect.Bool:
		return v.Bool()
	case v.CanUint():
		return v.Uint() != 0
	case v.CanInt():
		return v.Int() != 0
	}
	return false
}
