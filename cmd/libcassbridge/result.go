package main

/*
#include "cassbridge.h"
*/
import "C"

import (
	"github.com/grafana/cassbridge/pkg/argconv"
	"github.com/grafana/cassbridge/pkg/cass"
	"github.com/grafana/cassbridge/pkg/casserr"
	"github.com/grafana/cassbridge/pkg/driver"
)

// CassWriteType numbering.
var writeTypes = map[string]C.uint{
	"SIMPLE":         1,
	"BATCH":          2,
	"UNLOGGED_BATCH": 3,
	"COUNTER":        4,
	"BATCH_LOG":      5,
	"CAS":            6,
	"VIEW":           7,
	"CDC":            8,
}

func result(r *C.CassResult) argconv.Ptr[cass.Result] { return fromC[cass.Result](r) }

func errorResult(r *C.CassErrorResult) argconv.Ptr[cass.ErrorResult] {
	return fromC[cass.ErrorResult](r)
}

func value(v *C.CassValue) argconv.Ptr[cass.Value] { return fromC[cass.Value](v) }

func valueToC(v argconv.Ptr[cass.Value]) *C.CassValue { return toC[C.CassValue](v) }

func dataType(d *C.CassDataType) argconv.Ptr[cass.DataType] { return fromC[cass.DataType](d) }

func dataTypeToC(d argconv.Ptr[cass.DataType]) *C.CassDataType { return toC[C.CassDataType](d) }

//export cass_result_free
func cass_result_free(r *C.CassResult) {
	cass.ResultFree(result(r))
}

//export cass_result_row_count
func cass_result_row_count(r *C.CassResult) C.size_t {
	return C.size_t(cass.ResultRowCount(result(r)))
}

//export cass_result_column_count
func cass_result_column_count(r *C.CassResult) C.size_t {
	return C.size_t(cass.ResultColumnCount(result(r)))
}

//export cass_result_column_name
func cass_result_column_name(r *C.CassResult, index C.size_t, name **C.char, nameLength *C.size_t) C.CassError {
	p := result(r)
	n, code := cass.ResultColumnName(p, int(index))
	if code == casserr.OK {
		writeString(p.Addr(), n, name, nameLength)
	}
	return cerr(code)
}

//export cass_result_column_type
func cass_result_column_type(r *C.CassResult, index C.size_t) C.CassValueType {
	return C.CassValueType(cass.ResultColumnType(result(r), int(index)))
}

//export cass_result_column_data_type
func cass_result_column_data_type(r *C.CassResult, index C.size_t) *C.CassDataType {
	return dataTypeToC(cass.ResultColumnDataType(result(r), int(index)))
}

//export cass_result_first_row
func cass_result_first_row(r *C.CassResult) *C.CassRow {
	return toC[C.CassRow](cass.ResultFirstRow(result(r)))
}

//export cass_result_has_more_pages
func cass_result_has_more_pages(r *C.CassResult) C.cass_bool_t {
	return cbool(cass.ResultHasMorePages(result(r)))
}

//export cass_result_paging_state_token
func cass_result_paging_state_token(r *C.CassResult, token **C.char, tokenSize *C.size_t) C.CassError {
	p := result(r)
	b, code := cass.ResultPagingStateToken(p)
	if code == casserr.OK {
		writeString(p.Addr(), string(b), token, tokenSize)
	}
	return cerr(code)
}

//export cass_error_result_free
func cass_error_result_free(r *C.CassErrorResult) {
	cass.ErrorResultFree(errorResult(r))
}

//export cass_error_result_code
func cass_error_result_code(r *C.CassErrorResult) C.CassError {
	return cerr(cass.ErrorResultCode(errorResult(r)))
}

//export cass_error_result_consistency
func cass_error_result_consistency(r *C.CassErrorResult) C.CassConsistency {
	return C.CassConsistency(cass.ErrorResultConsistency(errorResult(r)))
}

//export cass_error_result_responses_received
func cass_error_result_responses_received(r *C.CassErrorResult) C.cass_int32_t {
	return C.cass_int32_t(cass.ErrorResultResponsesReceived(errorResult(r)))
}

//export cass_error_result_responses_required
func cass_error_result_responses_required(r *C.CassErrorResult) C.cass_int32_t {
	return C.cass_int32_t(cass.ErrorResultResponsesRequired(errorResult(r)))
}

//export cass_error_result_num_failures
func cass_error_result_num_failures(r *C.CassErrorResult) C.cass_int32_t {
	return C.cass_int32_t(cass.ErrorResultNumFailures(errorResult(r)))
}

//export cass_error_result_data_present
func cass_error_result_data_present(r *C.CassErrorResult) C.cass_bool_t {
	return cbool(cass.ErrorResultDataPresent(errorResult(r)))
}

// cass_error_result_write_type returns the CassWriteType of a write timeout
// or failure, 0 (unknown) for anything else.
//
//export cass_error_result_write_type
func cass_error_result_write_type(r *C.CassErrorResult) C.uint {
	wt, code := cass.ErrorResultWriteType(errorResult(r))
	if code != casserr.OK {
		return 0
	}
	return writeTypes[wt]
}

//export cass_row_get_column
func cass_row_get_column(row *C.CassRow, index C.size_t) *C.CassValue {
	return valueToC(cass.RowGetColumn(fromC[cass.Row](row), int(index)))
}

//export cass_row_get_column_by_name
func cass_row_get_column_by_name(row *C.CassRow, name *C.char) *C.CassValue {
	return valueToC(cass.RowGetColumnByName(fromC[cass.Row](row), goString(name)))
}

//export cass_row_get_column_by_name_n
func cass_row_get_column_by_name_n(row *C.CassRow, name *C.char, length C.size_t) *C.CassValue {
	return valueToC(cass.RowGetColumnByName(fromC[cass.Row](row), goStringN(name, length)))
}

//export cass_value_type
func cass_value_type(v *C.CassValue) C.CassValueType {
	return C.CassValueType(cass.ValueType(value(v)))
}

//export cass_value_data_type
func cass_value_data_type(v *C.CassValue) *C.CassDataType {
	return dataTypeToC(cass.ValueDataType(value(v)))
}

//export cass_value_is_null
func cass_value_is_null(v *C.CassValue) C.cass_bool_t {
	return cbool(cass.ValueIsNull(value(v)))
}

//export cass_value_is_collection
func cass_value_is_collection(v *C.CassValue) C.cass_bool_t {
	return cbool(cass.ValueIsCollection(value(v)))
}

//export cass_value_item_count
func cass_value_item_count(v *C.CassValue) C.size_t {
	return C.size_t(cass.ValueItemCount(value(v)))
}

//export cass_value_primary_sub_type
func cass_value_primary_sub_type(v *C.CassValue) C.CassValueType {
	return C.CassValueType(cass.ValuePrimarySubType(value(v)))
}

//export cass_value_secondary_sub_type
func cass_value_secondary_sub_type(v *C.CassValue) C.CassValueType {
	return C.CassValueType(cass.ValueSecondarySubType(value(v)))
}

//export cass_value_get_int8
func cass_value_get_int8(v *C.CassValue, out *C.cass_int8_t) C.CassError {
	n, code := cass.ValueGetInt8(value(v))
	if code == casserr.OK {
		*out = C.cass_int8_t(n)
	}
	return cerr(code)
}

//export cass_value_get_int16
func cass_value_get_int16(v *C.CassValue, out *C.cass_int16_t) C.CassError {
	n, code := cass.ValueGetInt16(value(v))
	if code == casserr.OK {
		*out = C.cass_int16_t(n)
	}
	return cerr(code)
}

//export cass_value_get_int32
func cass_value_get_int32(v *C.CassValue, out *C.cass_int32_t) C.CassError {
	n, code := cass.ValueGetInt32(value(v))
	if code == casserr.OK {
		*out = C.cass_int32_t(n)
	}
	return cerr(code)
}

//export cass_value_get_uint32
func cass_value_get_uint32(v *C.CassValue, out *C.cass_uint32_t) C.CassError {
	n, code := cass.ValueGetUint32(value(v))
	if code == casserr.OK {
		*out = C.cass_uint32_t(n)
	}
	return cerr(code)
}

//export cass_value_get_int64
func cass_value_get_int64(v *C.CassValue, out *C.cass_int64_t) C.CassError {
	n, code := cass.ValueGetInt64(value(v))
	if code == casserr.OK {
		*out = C.cass_int64_t(n)
	}
	return cerr(code)
}

//export cass_value_get_float
func cass_value_get_float(v *C.CassValue, out *C.cass_float_t) C.CassError {
	n, code := cass.ValueGetFloat(value(v))
	if code == casserr.OK {
		*out = C.cass_float_t(n)
	}
	return cerr(code)
}

//export cass_value_get_double
func cass_value_get_double(v *C.CassValue, out *C.cass_double_t) C.CassError {
	n, code := cass.ValueGetDouble(value(v))
	if code == casserr.OK {
		*out = C.cass_double_t(n)
	}
	return cerr(code)
}

//export cass_value_get_bool
func cass_value_get_bool(v *C.CassValue, out *C.cass_bool_t) C.CassError {
	b, code := cass.ValueGetBool(value(v))
	if code == casserr.OK {
		*out = cbool(b)
	}
	return cerr(code)
}

//export cass_value_get_string
func cass_value_get_string(v *C.CassValue, out **C.char, outLength *C.size_t) C.CassError {
	p := value(v)
	s, code := cass.ValueGetString(p)
	if code == casserr.OK {
		writeString(p.Addr(), s, out, outLength)
	}
	return cerr(code)
}

//export cass_value_get_bytes
func cass_value_get_bytes(v *C.CassValue, out **C.cass_byte_t, outSize *C.size_t) C.CassError {
	p := value(v)
	b, code := cass.ValueGetBytes(p)
	if code == casserr.OK {
		writeBytes(p.Addr(), b, out, outSize)
	}
	return cerr(code)
}

//export cass_value_get_uuid
func cass_value_get_uuid(v *C.CassValue, out *C.CassUuid) C.CassError {
	u, code := cass.ValueGetUUID(value(v))
	if code == casserr.OK {
		*out = uuidToC(u)
	}
	return cerr(code)
}

//export cass_value_get_inet
func cass_value_get_inet(v *C.CassValue, out *C.CassInet) C.CassError {
	ip, code := cass.ValueGetInet(value(v))
	if code == casserr.OK {
		*out = inetToC(ip)
	}
	return cerr(code)
}

//export cass_value_get_decimal
func cass_value_get_decimal(v *C.CassValue, varint **C.cass_byte_t, varintSize *C.size_t, scale *C.cass_int32_t) C.CassError {
	p := value(v)
	b, s, code := cass.ValueGetDecimal(p)
	if code == casserr.OK {
		writeBytes(p.Addr(), b, varint, varintSize)
		*scale = C.cass_int32_t(s)
	}
	return cerr(code)
}

//export cass_value_get_duration
func cass_value_get_duration(v *C.CassValue, months, days *C.cass_int32_t, nanos *C.cass_int64_t) C.CassError {
	m, d, n, code := cass.ValueGetDuration(value(v))
	if code == casserr.OK {
		*months = C.cass_int32_t(m)
		*days = C.cass_int32_t(d)
		*nanos = C.cass_int64_t(n)
	}
	return cerr(code)
}

//export cass_data_type_new
func cass_data_type_new(t C.CassValueType) *C.CassDataType {
	return dataTypeToC(cass.DataTypeNew(driver.ValueType(t)))
}

//export cass_data_type_new_from_existing
func cass_data_type_new_from_existing(d *C.CassDataType) *C.CassDataType {
	return dataTypeToC(cass.DataTypeNewFromExisting(dataType(d)))
}

//export cass_data_type_free
func cass_data_type_free(d *C.CassDataType) {
	cass.DataTypeFree(dataType(d))
}

//export cass_data_type_type
func cass_data_type_type(d *C.CassDataType) C.CassValueType {
	return C.CassValueType(cass.DataTypeType(dataType(d)))
}

//export cass_data_type_is_frozen
func cass_data_type_is_frozen(d *C.CassDataType) C.cass_bool_t {
	return cbool(cass.DataTypeIsFrozen(dataType(d)))
}

//export cass_data_type_sub_type_count
func cass_data_type_sub_type_count(d *C.CassDataType) C.size_t {
	return C.size_t(cass.DataTypeSubTypeCount(dataType(d)))
}

//export cass_data_type_sub_data_type
func cass_data_type_sub_data_type(d *C.CassDataType, index C.size_t) *C.CassDataType {
	return dataTypeToC(cass.DataTypeSubDataType(dataType(d), int(index)))
}

//export cass_data_type_sub_data_type_by_name
func cass_data_type_sub_data_type_by_name(d *C.CassDataType, name *C.char) *C.CassDataType {
	return dataTypeToC(cass.DataTypeSubDataTypeByName(dataType(d), goString(name)))
}

//export cass_data_type_sub_data_type_by_name_n
func cass_data_type_sub_data_type_by_name_n(d *C.CassDataType, name *C.char, length C.size_t) *C.CassDataType {
	return dataTypeToC(cass.DataTypeSubDataTypeByName(dataType(d), goStringN(name, length)))
}

func dataTypeString(d *C.CassDataType, get func(argconv.Ptr[cass.DataType]) (string, casserr.Code), out **C.char, outLength *C.size_t) C.CassError {
	p := dataType(d)
	s, code := get(p)
	if code == casserr.OK {
		writeString(p.Addr(), s, out, outLength)
	}
	return cerr(code)
}

//export cass_data_type_type_name
func cass_data_type_type_name(d *C.CassDataType, name **C.char, nameLength *C.size_t) C.CassError {
	return dataTypeString(d, cass.DataTypeTypeName, name, nameLength)
}

//export cass_data_type_keyspace
func cass_data_type_keyspace(d *C.CassDataType, keyspace **C.char, keyspaceLength *C.size_t) C.CassError {
	return dataTypeString(d, cass.DataTypeKeyspace, keyspace, keyspaceLength)
}

//export cass_data_type_class_name
func cass_data_type_class_name(d *C.CassDataType, className **C.char, classNameLength *C.size_t) C.CassError {
	return dataTypeString(d, cass.DataTypeClassName, className, classNameLength)
}
