package huckleberry

import "testing"

func TestValueTTypes(t *testing.T) {
	tests := []struct {
		value Value
		want  TType
	}{
		{BoolValue(true), TBool},
		{ByteValue(0), TByte},
		{DoubleValue(0), TDouble},
		{I16Value(0), TI16},
		{I32Value(0), TI32},
		{I64Value(0), TI64},
		{BinaryValue(nil), TBinary},
		{NewStructValue(nil), TStruct},
		{&MapValue{}, TMap},
		{&SetValue{}, TSet},
		{&ListValue{}, TList},
	}
	for _, tt := range tests {
		if got := tt.value.TType(); got != tt.want {
			t.Errorf("%T.TType() = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestStructValueGet(t *testing.T) {
	sv := NewStructValue([]FieldValue{
		{ID: 1, Type: TI32, Value: I32Value(1)},
		{ID: 2, Type: TBinary, Value: BinaryValue("x")},
	})

	f, ok := sv.Get(1, TI32)
	if !ok || !f.Value.Equal(I32Value(1)) {
		t.Errorf("Get(1, i32) = %+v, %t", f, ok)
	}

	// A matching ID with the wrong type must not be found.
	if _, ok := sv.Get(1, TI64); ok {
		t.Error("Get(1, i64) found a field")
	}
	if _, ok := sv.Get(3, TI32); ok {
		t.Error("Get(3, i32) found a field")
	}
}

func TestValueEquality(t *testing.T) {
	a := NewStructValue([]FieldValue{{ID: 1, Type: TI32, Value: I32Value(5)}})
	b := NewStructValue([]FieldValue{{ID: 1, Type: TI32, Value: I32Value(5)}})
	c := NewStructValue([]FieldValue{{ID: 1, Type: TI32, Value: I32Value(6)}})

	if !a.Equal(b) {
		t.Error("equal structs reported unequal")
	}
	if a.Equal(c) {
		t.Error("unequal structs reported equal")
	}
	if a.Equal(I32Value(5)) {
		t.Error("struct equal to non-struct")
	}

	if !BinaryValue("ab").Equal(BinaryValue([]byte{'a', 'b'})) {
		t.Error("equal binaries reported unequal")
	}
	if BoolValue(true).Equal(ByteValue(1)) {
		t.Error("bool equal to byte")
	}
}

func TestTTypeValidity(t *testing.T) {
	valid := []TType{TBool, TByte, TDouble, TI16, TI32, TI64, TBinary, TStruct, TMap, TSet, TList}
	for _, tt := range valid {
		if !tt.IsValid() {
			t.Errorf("%v reported invalid", tt)
		}
	}
	for _, tt := range []TType{0, 1, 5, 7, 9, 16, 99} {
		if tt.IsValid() {
			t.Errorf("%v reported valid", tt)
		}
	}
}
