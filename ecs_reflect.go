package atrium

import (
	"reflect"
)

// Column helpers. Columns are held as `any` because their element types are
// only known at runtime; these wrap the reflect calls in one place.

func columnMake(elem reflect.Type) any {
	return reflect.MakeSlice(reflect.SliceOf(elem), 0, 1).Interface()
}

func columnGet(column any, idx int) reflect.Value {
	return reflect.ValueOf(column).Index(idx)
}

func columnSet(column any, idx int, val reflect.Value) {
	reflect.ValueOf(column).Index(idx).Set(val)
}

func columnAppend(column any, val reflect.Value) any {
	return reflect.Append(reflect.ValueOf(column), val).Interface()
}

func columnLen(column any) int {
	return reflect.ValueOf(column).Len()
}
