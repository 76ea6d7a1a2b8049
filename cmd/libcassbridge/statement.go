package main

/*
#include "cassbridge.h"
*/
import "C"

import (
	"github.com/grafana/cassbridge/pkg/argconv"
	"github.com/grafana/cassbridge/pkg/cass"
	"github.com/grafana/cassbridge/pkg/driver"
)

func statement(s *C.CassStatement) argconv.Ptr[cass.Statement] { return fromC[cass.Statement](s) }

func batch(b *C.CassBatch) argconv.Ptr[cass.Batch] { return fromC[cass.Batch](b) }

//export cass_statement_new
func cass_statement_new(query *C.char, parameterCount C.size_t) *C.CassStatement {
	return toC[C.CassStatement](cass.StatementNew(goString(query), int(parameterCount)))
}

//export cass_statement_new_n
func cass_statement_new_n(query *C.char, queryLength C.size_t, parameterCount C.size_t) *C.CassStatement {
	return toC[C.CassStatement](cass.StatementNew(goStringN(query, queryLength), int(parameterCount)))
}

//export cass_statement_free
func cass_statement_free(s *C.CassStatement) {
	cass.StatementFree(statement(s))
}

//export cass_statement_reset_parameters
func cass_statement_reset_parameters(s *C.CassStatement, count C.size_t) C.CassError {
	return cerr(cass.StatementResetParameters(statement(s), int(count)))
}

//export cass_statement_set_consistency
func cass_statement_set_consistency(s *C.CassStatement, consistency C.CassConsistency) C.CassError {
	return cerr(cass.StatementSetConsistency(statement(s), driver.Consistency(consistency)))
}

//export cass_statement_set_serial_consistency
func cass_statement_set_serial_consistency(s *C.CassStatement, consistency C.CassConsistency) C.CassError {
	return cerr(cass.StatementSetSerialConsistency(statement(s), driver.Consistency(consistency)))
}

//export cass_statement_set_paging_size
func cass_statement_set_paging_size(s *C.CassStatement, pageSize C.int) C.CassError {
	return cerr(cass.StatementSetPagingSize(statement(s), int(pageSize)))
}

//export cass_statement_set_paging_state
func cass_statement_set_paging_state(s *C.CassStatement, result *C.CassResult) C.CassError {
	return cerr(cass.StatementSetPagingState(statement(s), fromC[cass.Result](result)))
}

//export cass_statement_set_paging_state_token
func cass_statement_set_paging_state_token(s *C.CassStatement, token *C.char, length C.size_t) C.CassError {
	return cerr(cass.StatementSetPagingStateToken(statement(s), []byte(goStringN(token, length))))
}

//export cass_statement_set_timestamp
func cass_statement_set_timestamp(s *C.CassStatement, timestamp C.cass_int64_t) C.CassError {
	return cerr(cass.StatementSetTimestamp(statement(s), int64(timestamp)))
}

//export cass_statement_set_request_timeout
func cass_statement_set_request_timeout(s *C.CassStatement, timeoutMs C.cass_uint64_t) C.CassError {
	return cerr(cass.StatementSetRequestTimeout(statement(s), uint64(timeoutMs)))
}

//export cass_statement_set_is_idempotent
func cass_statement_set_is_idempotent(s *C.CassStatement, idempotent C.cass_bool_t) C.CassError {
	return cerr(cass.StatementSetIsIdempotent(statement(s), gobool(idempotent)))
}

//export cass_statement_set_tracing
func cass_statement_set_tracing(s *C.CassStatement, enabled C.cass_bool_t) C.CassError {
	return cerr(cass.StatementSetTracing(statement(s), gobool(enabled)))
}

//export cass_statement_set_retry_policy
func cass_statement_set_retry_policy(s *C.CassStatement, rp *C.CassRetryPolicy) C.CassError {
	return cerr(cass.StatementSetRetryPolicy(statement(s), fromC[cass.RetryPolicy](rp)))
}

//export cass_statement_set_keyspace
func cass_statement_set_keyspace(s *C.CassStatement, keyspace *C.char) C.CassError {
	return cerr(cass.StatementSetKeyspace(statement(s), goString(keyspace)))
}

//export cass_statement_set_keyspace_n
func cass_statement_set_keyspace_n(s *C.CassStatement, keyspace *C.char, length C.size_t) C.CassError {
	return cerr(cass.StatementSetKeyspace(statement(s), goStringN(keyspace, length)))
}

//export cass_statement_set_execution_profile
func cass_statement_set_execution_profile(s *C.CassStatement, name *C.char) C.CassError {
	return cerr(cass.StatementSetExecutionProfile(statement(s), goString(name)))
}

//export cass_statement_set_execution_profile_n
func cass_statement_set_execution_profile_n(s *C.CassStatement, name *C.char, length C.size_t) C.CassError {
	return cerr(cass.StatementSetExecutionProfile(statement(s), goStringN(name, length)))
}

//export cass_statement_bind_null
func cass_statement_bind_null(s *C.CassStatement, index C.size_t) C.CassError {
	return cerr(cass.StatementBindNull(statement(s), int(index)))
}

//export cass_statement_bind_int8
func cass_statement_bind_int8(s *C.CassStatement, index C.size_t, v C.cass_int8_t) C.CassError {
	return cerr(cass.StatementBindInt8(statement(s), int(index), int8(v)))
}

//export cass_statement_bind_int16
func cass_statement_bind_int16(s *C.CassStatement, index C.size_t, v C.cass_int16_t) C.CassError {
	return cerr(cass.StatementBindInt16(statement(s), int(index), int16(v)))
}

//export cass_statement_bind_int32
func cass_statement_bind_int32(s *C.CassStatement, index C.size_t, v C.cass_int32_t) C.CassError {
	return cerr(cass.StatementBindInt32(statement(s), int(index), int32(v)))
}

//export cass_statement_bind_uint32
func cass_statement_bind_uint32(s *C.CassStatement, index C.size_t, v C.cass_uint32_t) C.CassError {
	return cerr(cass.StatementBindUint32(statement(s), int(index), uint32(v)))
}

//export cass_statement_bind_int64
func cass_statement_bind_int64(s *C.CassStatement, index C.size_t, v C.cass_int64_t) C.CassError {
	return cerr(cass.StatementBindInt64(statement(s), int(index), int64(v)))
}

//export cass_statement_bind_float
func cass_statement_bind_float(s *C.CassStatement, index C.size_t, v C.cass_float_t) C.CassError {
	return cerr(cass.StatementBindFloat(statement(s), int(index), float32(v)))
}

//export cass_statement_bind_double
func cass_statement_bind_double(s *C.CassStatement, index C.size_t, v C.cass_double_t) C.CassError {
	return cerr(cass.StatementBindDouble(statement(s), int(index), float64(v)))
}

//export cass_statement_bind_bool
func cass_statement_bind_bool(s *C.CassStatement, index C.size_t, v C.cass_bool_t) C.CassError {
	return cerr(cass.StatementBindBool(statement(s), int(index), gobool(v)))
}

//export cass_statement_bind_string
func cass_statement_bind_string(s *C.CassStatement, index C.size_t, v *C.char) C.CassError {
	return cerr(cass.StatementBindString(statement(s), int(index), goString(v)))
}

//export cass_statement_bind_string_n
func cass_statement_bind_string_n(s *C.CassStatement, index C.size_t, v *C.char, length C.size_t) C.CassError {
	return cerr(cass.StatementBindString(statement(s), int(index), goStringN(v, length)))
}

//export cass_statement_bind_bytes
func cass_statement_bind_bytes(s *C.CassStatement, index C.size_t, v *C.cass_byte_t, size C.size_t) C.CassError {
	return cerr(cass.StatementBindBytes(statement(s), int(index), goBytes(v, size)))
}

//export cass_statement_bind_uuid
func cass_statement_bind_uuid(s *C.CassStatement, index C.size_t, v C.CassUuid) C.CassError {
	return cerr(cass.StatementBindUUID(statement(s), int(index), uuidFromC(v)))
}

//export cass_statement_bind_inet
func cass_statement_bind_inet(s *C.CassStatement, index C.size_t, v C.CassInet) C.CassError {
	return cerr(cass.StatementBindInet(statement(s), int(index), inetFromC(v)))
}

//export cass_statement_bind_decimal
func cass_statement_bind_decimal(s *C.CassStatement, index C.size_t, varint *C.cass_byte_t, varintSize C.size_t, scale C.cass_int32_t) C.CassError {
	return cerr(cass.StatementBindDecimal(statement(s), int(index), goBytes(varint, varintSize), int32(scale)))
}

//export cass_statement_bind_duration
func cass_statement_bind_duration(s *C.CassStatement, index C.size_t, months, days C.cass_int32_t, nanos C.cass_int64_t) C.CassError {
	return cerr(cass.StatementBindDuration(statement(s), int(index), int32(months), int32(days), int64(nanos)))
}

//export cass_batch_new
func cass_batch_new(typ C.CassBatchType) *C.CassBatch {
	return toC[C.CassBatch](cass.BatchNew(driver.BatchType(typ)))
}

//export cass_batch_free
func cass_batch_free(b *C.CassBatch) {
	cass.BatchFree(batch(b))
}

//export cass_batch_set_consistency
func cass_batch_set_consistency(b *C.CassBatch, consistency C.CassConsistency) C.CassError {
	return cerr(cass.BatchSetConsistency(batch(b), driver.Consistency(consistency)))
}

//export cass_batch_set_serial_consistency
func cass_batch_set_serial_consistency(b *C.CassBatch, consistency C.CassConsistency) C.CassError {
	return cerr(cass.BatchSetSerialConsistency(batch(b), driver.Consistency(consistency)))
}

//export cass_batch_set_timestamp
func cass_batch_set_timestamp(b *C.CassBatch, timestamp C.cass_int64_t) C.CassError {
	return cerr(cass.BatchSetTimestamp(batch(b), int64(timestamp)))
}

//export cass_batch_set_request_timeout
func cass_batch_set_request_timeout(b *C.CassBatch, timeoutMs C.cass_uint64_t) C.CassError {
	return cerr(cass.BatchSetRequestTimeout(batch(b), uint64(timeoutMs)))
}

//export cass_batch_set_is_idempotent
func cass_batch_set_is_idempotent(b *C.CassBatch, idempotent C.cass_bool_t) C.CassError {
	return cerr(cass.BatchSetIsIdempotent(batch(b), gobool(idempotent)))
}

//export cass_batch_set_tracing
func cass_batch_set_tracing(b *C.CassBatch, enabled C.cass_bool_t) C.CassError {
	return cerr(cass.BatchSetTracing(batch(b), gobool(enabled)))
}

//export cass_batch_set_retry_policy
func cass_batch_set_retry_policy(b *C.CassBatch, rp *C.CassRetryPolicy) C.CassError {
	return cerr(cass.BatchSetRetryPolicy(batch(b), fromC[cass.RetryPolicy](rp)))
}

//export cass_batch_set_execution_profile
func cass_batch_set_execution_profile(b *C.CassBatch, name *C.char) C.CassError {
	return cerr(cass.BatchSetExecutionProfile(batch(b), goString(name)))
}

//export cass_batch_set_execution_profile_n
func cass_batch_set_execution_profile_n(b *C.CassBatch, name *C.char, length C.size_t) C.CassError {
	return cerr(cass.BatchSetExecutionProfile(batch(b), goStringN(name, length)))
}

//export cass_batch_add_statement
func cass_batch_add_statement(b *C.CassBatch, s *C.CassStatement) C.CassError {
	return cerr(cass.BatchAddStatement(batch(b), statement(s)))
}
