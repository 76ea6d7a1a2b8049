package main

/*
#include "cassbridge.h"
*/
import "C"

import (
	"unsafe"

	"github.com/grafana/cassbridge/pkg/argconv"
	"github.com/grafana/cassbridge/pkg/cass"
	"github.com/grafana/cassbridge/pkg/casserr"
	"github.com/grafana/cassbridge/pkg/driver"
)

func session(s *C.CassSession) argconv.Ptr[cass.Session] { return fromC[cass.Session](s) }

func future(f *C.CassFuture) argconv.Ptr[cass.Future] { return fromC[cass.Future](f) }

func futureToC(f argconv.Ptr[cass.Future]) *C.CassFuture { return toC[C.CassFuture](f) }

//export cass_session_new
func cass_session_new() *C.CassSession {
	return toC[C.CassSession](cass.SessionNew())
}

//export cass_session_free
func cass_session_free(s *C.CassSession) {
	cass.SessionFree(session(s))
}

//export cass_session_connect
func cass_session_connect(s *C.CassSession, c *C.CassCluster) *C.CassFuture {
	return futureToC(cass.SessionConnect(session(s), cluster(c)))
}

//export cass_session_connect_keyspace
func cass_session_connect_keyspace(s *C.CassSession, c *C.CassCluster, keyspace *C.char) *C.CassFuture {
	return futureToC(cass.SessionConnectKeyspace(session(s), cluster(c), goString(keyspace)))
}

//export cass_session_connect_keyspace_n
func cass_session_connect_keyspace_n(s *C.CassSession, c *C.CassCluster, keyspace *C.char, length C.size_t) *C.CassFuture {
	return futureToC(cass.SessionConnectKeyspace(session(s), cluster(c), goStringN(keyspace, length)))
}

//export cass_session_close
func cass_session_close(s *C.CassSession) *C.CassFuture {
	return futureToC(cass.SessionClose(session(s)))
}

//export cass_session_execute
func cass_session_execute(s *C.CassSession, stmt *C.CassStatement) *C.CassFuture {
	return futureToC(cass.SessionExecute(session(s), statement(stmt)))
}

//export cass_session_execute_batch
func cass_session_execute_batch(s *C.CassSession, b *C.CassBatch) *C.CassFuture {
	return futureToC(cass.SessionExecuteBatch(session(s), batch(b)))
}

//export cass_session_prepare
func cass_session_prepare(s *C.CassSession, query *C.char) *C.CassFuture {
	return futureToC(cass.SessionPrepare(session(s), goString(query)))
}

//export cass_session_prepare_n
func cass_session_prepare_n(s *C.CassSession, query *C.char, length C.size_t) *C.CassFuture {
	return futureToC(cass.SessionPrepare(session(s), goStringN(query, length)))
}

//export cass_session_prepare_from_existing
func cass_session_prepare_from_existing(s *C.CassSession, stmt *C.CassStatement) *C.CassFuture {
	return futureToC(cass.SessionPrepareFromExisting(session(s), statement(stmt)))
}

//export cass_session_get_client_id
func cass_session_get_client_id(s *C.CassSession) C.CassUuid {
	return uuidToC(cass.SessionGetClientID(session(s)))
}

//export cass_session_get_schema_meta
func cass_session_get_schema_meta(s *C.CassSession) *C.CassSchemaMeta {
	return toC[C.CassSchemaMeta](cass.SessionGetSchemaMeta(session(s)))
}

//export cass_future_free
func cass_future_free(f *C.CassFuture) {
	cass.FutureFree(future(f))
}

//export cass_future_set_callback
func cass_future_set_callback(f *C.CassFuture, callback C.CassFutureCallback, data unsafe.Pointer) C.CassError {
	if callback == nil {
		return cerr(casserr.LibBadParams)
	}
	addr := future(f).Addr()
	return cerr(cass.FutureSetCallback(future(f), func() {
		C.cassbridge_call_future_callback(callback, toC[C.CassFuture](argconv.FromAddr[cass.Future](addr)), data)
	}))
}

//export cass_future_ready
func cass_future_ready(f *C.CassFuture) C.cass_bool_t {
	return cbool(cass.FutureReady(future(f)))
}

//export cass_future_wait
func cass_future_wait(f *C.CassFuture) {
	cass.FutureWait(future(f))
}

//export cass_future_wait_timed
func cass_future_wait_timed(f *C.CassFuture, timeoutUs C.cass_duration_t) C.cass_bool_t {
	return cbool(cass.FutureWaitTimed(future(f), uint64(timeoutUs)))
}

//export cass_future_get_result
func cass_future_get_result(f *C.CassFuture) *C.CassResult {
	return toC[C.CassResult](cass.FutureGetResult(future(f)))
}

//export cass_future_get_error_result
func cass_future_get_error_result(f *C.CassFuture) *C.CassErrorResult {
	return toC[C.CassErrorResult](cass.FutureGetErrorResult(future(f)))
}

//export cass_future_get_prepared
func cass_future_get_prepared(f *C.CassFuture) *C.CassPrepared {
	return toC[C.CassPrepared](cass.FutureGetPrepared(future(f)))
}

//export cass_future_error_code
func cass_future_error_code(f *C.CassFuture) C.CassError {
	return cerr(cass.FutureErrorCode(future(f)))
}

//export cass_future_error_message
func cass_future_error_message(f *C.CassFuture, message **C.char, messageLength *C.size_t) {
	p := future(f)
	writeString(p.Addr(), cass.FutureErrorMessage(p), message, messageLength)
}

//export cass_future_tracing_id
func cass_future_tracing_id(f *C.CassFuture, tracingID *C.CassUuid) C.CassError {
	id, code := cass.FutureTracingID(future(f))
	if code == casserr.OK && tracingID != nil {
		*tracingID = uuidToC(id)
	}
	return cerr(code)
}

//export cass_prepared_free
func cass_prepared_free(p *C.CassPrepared) {
	cass.PreparedFree(fromC[cass.Prepared](p))
}

//export cass_prepared_bind
func cass_prepared_bind(p *C.CassPrepared) *C.CassStatement {
	return toC[C.CassStatement](cass.PreparedBind(fromC[cass.Prepared](p)))
}

//export cass_prepared_parameter_name
func cass_prepared_parameter_name(p *C.CassPrepared, index C.size_t, name **C.char, nameLength *C.size_t) C.CassError {
	prepared := fromC[cass.Prepared](p)
	n, ok := cass.PreparedParameterName(prepared, int(index))
	if !ok {
		return cerr(casserr.LibIndexOutOfBounds)
	}
	writeString(prepared.Addr(), n, name, nameLength)
	return cerr(casserr.OK)
}

//export cass_error_desc
func cass_error_desc(code C.CassError) *C.char {
	return staticString(cass.ErrorDesc(casserr.Code(code)))
}

//export cass_consistency_string
func cass_consistency_string(consistency C.CassConsistency) *C.char {
	return staticString(cass.ConsistencyString(driver.Consistency(consistency)))
}

//export cass_log_level_string
func cass_log_level_string(l C.CassLogLevel) *C.char {
	return staticString(cass.LogLevel(l).String())
}

//export cass_log_set_level
func cass_log_set_level(l C.CassLogLevel) {
	cass.LogSetLevel(cass.LogLevel(l))
}

//export cass_log_set_callback
func cass_log_set_callback(callback C.CassLogCallback, data unsafe.Pointer) {
	if callback == nil {
		cass.LogSetCallback(nil)
		return
	}
	cass.LogSetCallback(func(msg *cass.LogMessage) {
		var m C.CassLogMessage
		m.time_ms = C.cass_uint64_t(msg.TimeMs)
		m.severity = C.CassLogLevel(msg.Severity)
		m.file = staticString(msg.File)
		m.line = C.int(msg.Line)
		m.function = staticString(msg.Function)
		buf := unsafe.Slice((*byte)(unsafe.Pointer(&m.message[0])), len(m.message))
		n := copy(buf[:len(buf)-1], msg.Message)
		buf[n] = 0
		C.cassbridge_call_log_callback(callback, &m, data)
	})
}
