package cass

import (
	"math/big"
	"net"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/grafana/cassbridge/pkg/argconv"
	"github.com/grafana/cassbridge/pkg/casserr"
	"github.com/grafana/cassbridge/pkg/driver"
)

type (
	// Result is a CassResult.
	Result = driver.Result
	// ErrorResult is a CassErrorResult.
	ErrorResult = casserr.ErrorResult
	// Row is a CassRow, borrowed from its Result.
	Row = driver.Row
	// Value is a CassValue, borrowed from its Result.
	Value = driver.Value
	// DataType is a CassDataType.
	DataType = driver.DataType
)

// ResultFree implements cass_result_free.
func ResultFree(p argconv.Ptr[Result]) {
	argconv.ArcFree(p)
}

// ResultRowCount implements cass_result_row_count.
func ResultRowCount(p argconv.Ptr[Result]) int {
	return len(argconv.MustArc(p).Rows)
}

// ResultColumnCount implements cass_result_column_count.
func ResultColumnCount(p argconv.Ptr[Result]) int {
	return len(argconv.MustArc(p).Columns)
}

// ResultColumnName implements cass_result_column_name.
func ResultColumnName(p argconv.Ptr[Result], index int) (string, casserr.Code) {
	res := argconv.MustArc(p)
	if index < 0 || index >= len(res.Columns) {
		return "", casserr.LibIndexOutOfBounds
	}
	return res.Columns[index].Name, casserr.OK
}

// ResultColumnType implements cass_result_column_type.
func ResultColumnType(p argconv.Ptr[Result], index int) driver.ValueType {
	res := argconv.MustArc(p)
	if index < 0 || index >= len(res.Columns) || res.Columns[index].Type == nil {
		return driver.TypeUnknown
	}
	return res.Columns[index].Type.Type
}

// ResultColumnDataType implements cass_result_column_data_type. The type
// is borrowed from the result.
func ResultColumnDataType(p argconv.Ptr[Result], index int) argconv.Ptr[DataType] {
	res := argconv.MustArc(p)
	if index < 0 || index >= len(res.Columns) {
		return argconv.Null[DataType]()
	}
	return argconv.ArcBorrow(p.Addr(), res.Columns[index].Type)
}

// ResultFirstRow implements cass_result_first_row.
func ResultFirstRow(p argconv.Ptr[Result]) argconv.Ptr[Row] {
	res := argconv.MustArc(p)
	if len(res.Rows) == 0 {
		return argconv.Null[Row]()
	}
	return argconv.RefInto(p.Addr(), res.Rows[0])
}

// ResultHasMorePages implements cass_result_has_more_pages.
func ResultHasMorePages(p argconv.Ptr[Result]) bool {
	return len(argconv.MustArc(p).PagingState) > 0
}

// ResultPagingStateToken implements cass_result_paging_state_token.
func ResultPagingStateToken(p argconv.Ptr[Result]) ([]byte, casserr.Code) {
	res := argconv.MustArc(p)
	if len(res.PagingState) == 0 {
		return nil, casserr.LibNoPagingState
	}
	return res.PagingState, casserr.OK
}

// ErrorResultFree implements cass_error_result_free.
func ErrorResultFree(p argconv.Ptr[ErrorResult]) {
	argconv.ArcFree(p)
}

// ErrorResultCode implements cass_error_result_code.
func ErrorResultCode(p argconv.Ptr[ErrorResult]) casserr.Code {
	return argconv.MustArc(p).Code
}

// ErrorResultConsistency implements cass_error_result_consistency.
func ErrorResultConsistency(p argconv.Ptr[ErrorResult]) driver.Consistency {
	er := argconv.MustArc(p)
	if !hasConsistency(er.Code) {
		return driver.ConsistencyUnset
	}
	return driver.Consistency(er.Consistency)
}

func hasConsistency(c casserr.Code) bool {
	switch c {
	case casserr.ServerUnavailable, casserr.ServerReadTimeout, casserr.ServerWriteTimeout,
		casserr.ServerReadFailure, casserr.ServerWriteFailure:
		return true
	}
	return false
}

// ErrorResultResponsesReceived implements cass_error_result_responses_received.
func ErrorResultResponsesReceived(p argconv.Ptr[ErrorResult]) int32 {
	er := argconv.MustArc(p)
	if !hasConsistency(er.Code) {
		return -1
	}
	return er.ResponsesReceived
}

// ErrorResultResponsesRequired implements cass_error_result_responses_required.
func ErrorResultResponsesRequired(p argconv.Ptr[ErrorResult]) int32 {
	er := argconv.MustArc(p)
	if !hasConsistency(er.Code) {
		return -1
	}
	return er.ResponsesRequired
}

// ErrorResultNumFailures implements cass_error_result_num_failures.
func ErrorResultNumFailures(p argconv.Ptr[ErrorResult]) int32 {
	er := argconv.MustArc(p)
	if er.Code != casserr.ServerReadFailure && er.Code != casserr.ServerWriteFailure {
		return -1
	}
	return er.NumFailures
}

// ErrorResultDataPresent implements cass_error_result_data_present.
func ErrorResultDataPresent(p argconv.Ptr[ErrorResult]) bool {
	er := argconv.MustArc(p)
	return (er.Code == casserr.ServerReadTimeout || er.Code == casserr.ServerReadFailure) && er.DataPresent
}

// ErrorResultWriteType implements cass_error_result_write_type.
func ErrorResultWriteType(p argconv.Ptr[ErrorResult]) (string, casserr.Code) {
	er := argconv.MustArc(p)
	if er.Code != casserr.ServerWriteTimeout && er.Code != casserr.ServerWriteFailure {
		return "", casserr.LibInvalidErrorResultType
	}
	return er.WriteType, casserr.OK
}

// RowGetColumn implements cass_row_get_column.
func RowGetColumn(p argconv.Ptr[Row], index int) argconv.Ptr[Value] {
	row := argconv.MustRef(p)
	if index < 0 || index >= len(row.Values) {
		return argconv.Null[Value]()
	}
	return argconv.RefInto(p.Addr(), row.Values[index])
}

// RowGetColumnByName implements cass_row_get_column_by_name. The column
// names come from the result owning the row.
func RowGetColumnByName(p argconv.Ptr[Row], name string) argconv.Ptr[Value] {
	argconv.MustRef(p)
	res, ok := argconv.ArcAsRef(argconv.FromAddr[Result](argconv.RootOf(p.Addr())))
	if !ok {
		return argconv.Null[Value]()
	}
	return RowGetColumn(p, res.ColumnIndex(name))
}

// ValueType implements cass_value_type.
func ValueType(p argconv.Ptr[Value]) driver.ValueType {
	return argconv.MustRef(p).ValueType()
}

// ValueDataType implements cass_value_data_type.
func ValueDataType(p argconv.Ptr[Value]) argconv.Ptr[DataType] {
	return argconv.ArcBorrow(p.Addr(), argconv.MustRef(p).Type)
}

// ValueIsNull implements cass_value_is_null.
func ValueIsNull(p argconv.Ptr[Value]) bool {
	return argconv.MustRef(p).Null
}

// ValueIsCollection implements cass_value_is_collection.
func ValueIsCollection(p argconv.Ptr[Value]) bool {
	return argconv.MustRef(p).ValueType().IsCollection()
}

// ValueItemCount implements cass_value_item_count.
func ValueItemCount(p argconv.Ptr[Value]) int {
	return argconv.MustRef(p).Count()
}

// ValuePrimarySubType implements cass_value_primary_sub_type.
func ValuePrimarySubType(p argconv.Ptr[Value]) driver.ValueType {
	return subTypeCode(argconv.MustRef(p).Type, 0)
}

// ValueSecondarySubType implements cass_value_secondary_sub_type.
func ValueSecondarySubType(p argconv.Ptr[Value]) driver.ValueType {
	return subTypeCode(argconv.MustRef(p).Type, 1)
}

func subTypeCode(t *DataType, i int) driver.ValueType {
	sub := t.SubType(i)
	if sub == nil {
		return driver.TypeUnknown
	}
	return sub.Type
}

// scalar returns the Go value of v when its type is one of types.
func scalar[T any](p argconv.Ptr[Value], types ...driver.ValueType) (T, casserr.Code) {
	var zero T
	v := argconv.MustRef(p)
	if v.Null {
		return zero, casserr.LibNullValue
	}
	match := false
	for _, t := range types {
		if v.ValueType() == t {
			match = true
			break
		}
	}
	out, ok := v.Scalar.(T)
	if !match || !ok {
		return zero, casserr.LibInvalidValueType
	}
	return out, casserr.OK
}

// ValueGetInt8 implements cass_value_get_int8.
func ValueGetInt8(p argconv.Ptr[Value]) (int8, casserr.Code) {
	return scalar[int8](p, driver.TypeTinyInt)
}

// ValueGetInt16 implements cass_value_get_int16.
func ValueGetInt16(p argconv.Ptr[Value]) (int16, casserr.Code) {
	return scalar[int16](p, driver.TypeSmallInt)
}

// ValueGetInt32 implements cass_value_get_int32.
func ValueGetInt32(p argconv.Ptr[Value]) (int32, casserr.Code) {
	return scalar[int32](p, driver.TypeInt)
}

// ValueGetUint32 implements cass_value_get_uint32, for dates.
func ValueGetUint32(p argconv.Ptr[Value]) (uint32, casserr.Code) {
	return scalar[uint32](p, driver.TypeDate)
}

// ValueGetInt64 implements cass_value_get_int64.
func ValueGetInt64(p argconv.Ptr[Value]) (int64, casserr.Code) {
	return scalar[int64](p, driver.TypeBigint, driver.TypeCounter, driver.TypeTimestamp, driver.TypeTime)
}

// ValueGetFloat implements cass_value_get_float.
func ValueGetFloat(p argconv.Ptr[Value]) (float32, casserr.Code) {
	return scalar[float32](p, driver.TypeFloat)
}

// ValueGetDouble implements cass_value_get_double.
func ValueGetDouble(p argconv.Ptr[Value]) (float64, casserr.Code) {
	return scalar[float64](p, driver.TypeDouble)
}

// ValueGetBool implements cass_value_get_bool.
func ValueGetBool(p argconv.Ptr[Value]) (bool, casserr.Code) {
	return scalar[bool](p, driver.TypeBoolean)
}

// ValueGetString implements cass_value_get_string.
func ValueGetString(p argconv.Ptr[Value]) (string, casserr.Code) {
	return scalar[string](p, driver.TypeASCII, driver.TypeText, driver.TypeVarchar)
}

// ValueGetBytes implements cass_value_get_bytes. Text values are returned
// as their UTF-8 bytes.
func ValueGetBytes(p argconv.Ptr[Value]) ([]byte, casserr.Code) {
	if s, code := ValueGetString(p); code == casserr.OK {
		return []byte(s), code
	}
	return scalar[[]byte](p, driver.TypeBlob, driver.TypeCustom)
}

// ValueGetUUID implements cass_value_get_uuid.
func ValueGetUUID(p argconv.Ptr[Value]) (uuid.UUID, casserr.Code) {
	return scalar[uuid.UUID](p, driver.TypeUUID, driver.TypeTimeUUID)
}

// ValueGetInet implements cass_value_get_inet.
func ValueGetInet(p argconv.Ptr[Value]) (net.IP, casserr.Code) {
	return scalar[net.IP](p, driver.TypeInet)
}

// ValueGetDecimal implements cass_value_get_decimal. The unscaled value is
// big-endian two's complement.
func ValueGetDecimal(p argconv.Ptr[Value]) (varint []byte, scale int32, code casserr.Code) {
	d, code := scalar[decimal.Decimal](p, driver.TypeDecimal)
	if code != casserr.OK {
		return nil, 0, code
	}
	return bigToVarint(d.Coefficient()), -d.Exponent(), casserr.OK
}

// ValueGetVarint returns the big-endian two's complement bytes of a varint.
func ValueGetVarint(p argconv.Ptr[Value]) ([]byte, casserr.Code) {
	n, code := scalar[*big.Int](p, driver.TypeVarint)
	if code != casserr.OK {
		return nil, code
	}
	return bigToVarint(n), casserr.OK
}

// ValueGetDuration implements cass_value_get_duration.
func ValueGetDuration(p argconv.Ptr[Value]) (months, days int32, nanos int64, code casserr.Code) {
	d, code := scalar[driver.Duration](p, driver.TypeDuration)
	if code != casserr.OK {
		return 0, 0, 0, code
	}
	return d.Months, d.Days, d.Nanoseconds, casserr.OK
}
