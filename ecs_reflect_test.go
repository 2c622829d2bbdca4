package atrium

import (
	"reflect"
	"testing"
)

func TestEcsReflect_ColumnMake(t *testing.T) {
	intColumn := columnMake(reflect.TypeOf(0))
	if reflect.TypeOf(intColumn).Kind() != reflect.Slice {
		t.Errorf("Expected a slice, got %v", reflect.TypeOf(intColumn).Kind())
	}
	if reflect.TypeOf(intColumn).Elem().Kind() != reflect.Int {
		t.Errorf("Expected slice of int, got %v", reflect.TypeOf(intColumn).Elem().Kind())
	}

	type myStruct struct{ A int }
	structColumn := columnMake(reflect.TypeOf(myStruct{}))
	if reflect.TypeOf(structColumn).Elem() != reflect.TypeOf(myStruct{}) {
		t.Errorf("Expected slice of myStruct, got %v", reflect.TypeOf(structColumn).Elem())
	}
}

func TestEcsReflect_ColumnGet(t *testing.T) {
	column := []int{10, 20, 30}
	val := columnGet(column, 1)
	if val.Int() != 20 {
		t.Errorf("Expected 20, got %d", val.Int())
	}
}

func TestEcsReflect_ColumnGet_PanicOnInvalidIndex(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("Expected panic on invalid index")
		}
	}()
	column := []int{1, 2}
	_ = columnGet(column, 10)
}

func TestEcsReflect_ColumnSet(t *testing.T) {
	column := []int{1, 2}
	columnSet(column, 0, reflect.ValueOf(99))

	if column[0] != 99 {
		t.Errorf("Expected 99 at index 0, got %d", column[0])
	}
}

func TestEcsReflect_ColumnSet_PanicOnTypeMismatch(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("Expected panic on type mismatch")
		}
	}()
	column := []int{1, 2}
	columnSet(column, 0, reflect.ValueOf("wrong type"))
}

func TestEcsReflect_ColumnAppend(t *testing.T) {
	column := any([]int{})
	column = columnAppend(column, reflect.ValueOf(42))

	got := column.([]int)
	if len(got) != 1 || got[0] != 42 {
		t.Errorf("Expected [42], got %v", got)
	}
}

func TestEcsReflect_ColumnAppend_Multiple(t *testing.T) {
	column := any([]int{})
	for i := 0; i < 5; i++ {
		column = columnAppend(column, reflect.ValueOf(i))
	}

	got := column.([]int)
	if len(got) != 5 {
		t.Errorf("Expected column length 5, got %d", len(got))
	}
	for i, v := range got {
		if v != i {
			t.Errorf("Expected value %d at index %d, got %d", i, i, v)
		}
	}
}

func TestEcsReflect_ColumnAppend_PanicOnWrongType(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("Expected panic on type mismatch append")
		}
	}()
	_ = columnAppend([]int{}, reflect.ValueOf("string"))
}

func TestEcsReflect_ColumnLen(t *testing.T) {
	if l := columnLen([]int{1, 2, 3}); l != 3 {
		t.Errorf("Expected length 3, got %d", l)
	}
	if l := columnLen([]string{}); l != 0 {
		t.Errorf("Expected length 0, got %d", l)
	}
}

func TestEcsReflect_ColumnLen_PanicOnNonSlice(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("Expected panic when input is not a slice")
		}
	}()
	_ = columnLen(123)
}
