package gocqldriver

import (
	"fmt"
	"math/big"
	"net"
	"reflect"
	"sort"
	"time"

	"github.com/gocql/gocql"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gopkg.in/inf.v0"

	"github.com/grafana/cassbridge/pkg/driver"
)

const dateEpochOffset = 1 << 31

// dataType describes a gocql type. gocql type codes follow the protocol
// numbering, so do driver value types.
func dataType(info gocql.TypeInfo) *driver.DataType {
	switch t := info.(type) {
	case gocql.CollectionType:
		switch t.Type() {
		case gocql.TypeMap:
			return driver.MapOf(dataType(t.Key), dataType(t.Elem))
		case gocql.TypeSet:
			return driver.SetOf(dataType(t.Elem))
		default:
			return driver.ListOf(dataType(t.Elem))
		}
	case gocql.TupleTypeInfo:
		elems := make([]*driver.DataType, 0, len(t.Elems))
		for _, e := range t.Elems {
			elems = append(elems, dataType(e))
		}
		return driver.TupleOf(elems...)
	case gocql.UDTTypeInfo:
		dt := &driver.DataType{Type: driver.TypeUDT, Keyspace: t.KeySpace, Name: t.Name}
		for _, f := range t.Elements {
			dt.FieldNames = append(dt.FieldNames, f.Name)
			dt.Sub = append(dt.Sub, dataType(f.Type))
		}
		return dt
	case nil:
		return driver.Simple(driver.TypeUnknown)
	default:
		return &driver.DataType{Type: driver.ValueType(info.Type()), Custom: info.Custom()}
	}
}

// scanDest allocates a destination for one column. Every scalar slot is a
// pointer to pointer, so gocql leaves it nil for a null.
func scanDest(info gocql.TypeInfo) interface{} {
	return reflect.New(reflect.PointerTo(reflect.TypeOf(info.New()).Elem())).Interface()
}

// columnDests mirrors gocql's row layout: a tuple column takes one slot per
// element.
func columnDests(cols []gocql.ColumnInfo) []interface{} {
	dests := make([]interface{}, 0, len(cols))
	for _, c := range cols {
		if tt, ok := c.TypeInfo.(gocql.TupleTypeInfo); ok {
			for _, e := range tt.Elems {
				dests = append(dests, scanDest(e))
			}
			continue
		}
		dests = append(dests, scanDest(c.TypeInfo))
	}
	return dests
}

// rowValues converts a scanned row back into one Value per column.
func rowValues(cols []gocql.ColumnInfo, dests []interface{}) []*driver.Value {
	out := make([]*driver.Value, 0, len(cols))
	i := 0
	for _, c := range cols {
		if tt, ok := c.TypeInfo.(gocql.TupleTypeInfo); ok {
			tuple := &driver.Value{Type: dataType(tt)}
			allNull := true
			for _, e := range tt.Elems {
				v := fromDest(e, dests[i])
				allNull = allNull && v.Null
				tuple.Items = append(tuple.Items, v)
				i++
			}
			tuple.Null = allNull
			out = append(out, tuple)
			continue
		}
		out = append(out, fromDest(c.TypeInfo, dests[i]))
		i++
	}
	return out
}

func fromDest(info gocql.TypeInfo, dest interface{}) *driver.Value {
	ptr := reflect.ValueOf(dest).Elem()
	if ptr.IsNil() {
		return driver.NullOf(dataType(info))
	}
	return toValue(info, ptr.Elem().Interface())
}

// toValue converts a value decoded by gocql.
func toValue(info gocql.TypeInfo, v interface{}) *driver.Value {
	dt := dataType(info)
	if v == nil {
		return driver.NullOf(dt)
	}
	out := &driver.Value{Type: dt}

	switch t := info.(type) {
	case gocql.CollectionType:
		rv := reflect.ValueOf(v)
		if t.Type() == gocql.TypeMap {
			if rv.Kind() != reflect.Map || rv.IsNil() {
				return driver.NullOf(dt)
			}
			keys := rv.MapKeys()
			sort.Slice(keys, func(i, j int) bool {
				return fmt.Sprint(keys[i].Interface()) < fmt.Sprint(keys[j].Interface())
			})
			for _, k := range keys {
				out.Pairs = append(out.Pairs, driver.Pair{
					Key: toValue(t.Key, k.Interface()),
					Val: toValue(t.Elem, rv.MapIndex(k).Interface()),
				})
			}
			return out
		}
		if rv.Kind() != reflect.Slice || rv.IsNil() {
			return driver.NullOf(dt)
		}
		for i := 0; i < rv.Len(); i++ {
			out.Items = append(out.Items, toValue(t.Elem, rv.Index(i).Interface()))
		}
		return out
	case gocql.TupleTypeInfo:
		elems, _ := v.([]interface{})
		for i, e := range t.Elems {
			var ev interface{}
			if i < len(elems) {
				ev = elems[i]
			}
			out.Items = append(out.Items, toValue(e, ev))
		}
		return out
	case gocql.UDTTypeInfo:
		fields, ok := v.(map[string]interface{})
		if !ok || fields == nil {
			return driver.NullOf(dt)
		}
		for _, f := range t.Elements {
			out.Items = append(out.Items, toValue(f.Type, fields[f.Name]))
		}
		return out
	}

	out.Scalar = toScalar(info.Type(), v)
	return out
}

func toScalar(t gocql.Type, v interface{}) interface{} {
	switch x := v.(type) {
	case int:
		return int32(x)
	case time.Time:
		if t == gocql.TypeDate {
			secs := x.Unix()
			days := secs / 86400
			if secs%86400 < 0 {
				days--
			}
			return uint32(days + dateEpochOffset)
		}
		return x.UnixMilli()
	case time.Duration:
		return int64(x)
	case gocql.UUID:
		return uuid.UUID(x)
	case *inf.Dec:
		if x == nil {
			return nil
		}
		return decimal.NewFromBigInt(x.UnscaledBig(), -int32(x.Scale()))
	case gocql.Duration:
		return driver.Duration{Months: x.Months, Days: x.Days, Nanoseconds: x.Nanoseconds}
	case *big.Int, net.IP, []byte:
		return x
	default:
		return v
	}
}

// bindValue converts a bound value into something gocql can marshal.
func bindValue(v interface{}) interface{} {
	switch x := v.(type) {
	case nil:
		return nil
	case uuid.UUID:
		return gocql.UUID(x)
	case decimal.Decimal:
		return inf.NewDecBig(x.Coefficient(), inf.Scale(-x.Exponent()))
	case driver.Duration:
		return gocql.Duration{Months: x.Months, Days: x.Days, Nanoseconds: x.Nanoseconds}
	case uint32:
		return time.Unix((int64(x)-dateEpochOffset)*86400, 0).UTC()
	case []interface{}:
		out := make([]interface{}, len(x))
		for i, e := range x {
			out[i] = bindValue(e)
		}
		return out
	default:
		if v == driver.Unset {
			return gocql.UnsetValue
		}
		return v
	}
}

func bindValues(vs []interface{}) []interface{} {
	out := make([]interface{}, len(vs))
	for i, v := range vs {
		out[i] = bindValue(v)
	}
	return out
}
