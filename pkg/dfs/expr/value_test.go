package expr

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindString(t *testing.T) {
	assert.Equal(t, "integer", KindInt.String())
	assert.Equal(t, "float", KindFloat.String())
	assert.Equal(t, "boolean", KindBool.String())
	assert.Equal(t, "string", KindString.String())
	assert.Equal(t, "array", KindArray.String())
	assert.Equal(t, "object", KindObject.String())
	assert.Equal(t, "null", KindNull.String())
	assert.Equal(t, "unknown", Kind(42).String())
}

func TestZeroValueIsNull(t *testing.T) {
	var v Value
	assert.True(t, v.IsNull())
	assert.Equal(t, "null", v.String())
}

func TestValueString(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want string
	}{
		{"null", Null(), "null"},
		{"true", Bool(true), "true"},
		{"int", Int(-42), "-42"},
		{"whole float", Float(42), "42"},
		{"fraction", Float(42.42), "42.42"},
		{"small float", Float(0.0000001), "0.0000001"},
		{"nan", Float(math.NaN()), "NaN"},
		{"inf", Float(math.Inf(1)), "inf"},
		{"neg inf", Float(math.Inf(-1)), "-inf"},
		{"string", String("hi <b>"), "hi <b>"},
		{"empty array", Array(), "[]"},
		{"array", Array(Int(1), Float(2), String("x")), `[1,2.0,"x"]`},
		{"nested", Array(Array(Bool(false)), Null()), "[[false],null]"},
		{"object sorted", Object(map[string]Value{"b": Int(2), "a": String("<&>")}), `{"a":"<&>","b":2}`},
		{"non-finite in json", Array(Float(math.NaN()), Float(math.Inf(1))), "[null,null]"},
		{"quote escaping", Array(String(`say "hi"`)), `["say \"hi\""]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.v.String())
		})
	}
}

func TestFromStrings(t *testing.T) {
	v := FromStrings(map[string]string{"some_var": "42", "something": "true"})
	assert.Equal(t, KindObject, v.Kind())
	assert.Equal(t, `{"some_var":"42","something":"true"}`, v.String())

	f, ok := v.Field("some_var")
	require.True(t, ok)
	assert.True(t, f.Equal(String("42")))

	_, ok = v.Field("missing")
	assert.False(t, ok)
	assert.Equal(t, []string{"some_var", "something"}, v.Keys())
}

func TestValueIsImmutable(t *testing.T) {
	items := []Value{Int(1), Int(2)}
	arr := Array(items...)
	items[0] = Int(99)
	assert.True(t, arr.Index(0).Equal(Int(1)))

	out, ok := arr.AsArray()
	require.True(t, ok)
	out[1] = Int(99)
	assert.True(t, arr.Index(1).Equal(Int(2)))

	fields := map[string]Value{"a": Int(1)}
	obj := Object(fields)
	fields["a"] = Int(2)
	got, _ := obj.Field("a")
	assert.True(t, got.Equal(Int(1)))
}

func TestTruthy(t *testing.T) {
	falsy := []Value{
		Null(), Bool(false), Int(0), Float(0), Float(math.Copysign(0, -1)),
		String(""), Array(), Object(nil), FromStrings(nil),
	}
	for _, v := range falsy {
		assert.False(t, v.Truthy(), "%s (%s) should be falsy", v, v.Kind())
	}

	truthy := []Value{
		Bool(true), Int(-1), Float(0.1), Float(math.NaN()), String("0"),
		String("false"), Array(Null()), Object(map[string]Value{"k": Null()}),
	}
	for _, v := range truthy {
		assert.True(t, v.Truthy(), "%s (%s) should be truthy", v, v.Kind())
	}
}

func TestEqualIsStrict(t *testing.T) {
	assert.True(t, Int(1).Equal(Int(1)))
	assert.False(t, Int(1).Equal(Float(1)))
	assert.False(t, Float(math.NaN()).Equal(Float(math.NaN())))
	assert.True(t, Null().Equal(Null()))
	assert.True(t, Array(Int(1), String("a")).Equal(Array(Int(1), String("a"))))
	assert.False(t, Array(Int(1)).Equal(Array(Int(1), Int(2))))
	assert.True(t, FromStrings(map[string]string{"a": "1"}).Equal(Object(map[string]Value{"a": String("1")})))
	assert.False(t, FromStrings(map[string]string{"a": "1"}).Equal(FromStrings(map[string]string{"b": "1"})))
}

func TestAccessors(t *testing.T) {
	n, ok := Int(7).Number()
	assert.True(t, ok)
	assert.Equal(t, 7.0, n)

	_, ok = String("7").Number()
	assert.False(t, ok)

	_, ok = Int(7).AsFloat()
	assert.False(t, ok)

	assert.Equal(t, 3, String("abc").Len())
	assert.Equal(t, 0, Int(3).Len())
	assert.True(t, Array(Int(1)).Index(5).IsNull())
	assert.Nil(t, Int(1).Keys())
}

func TestMarshalJSON(t *testing.T) {
	data, err := json.Marshal(map[string]Value{"v": Array(Int(1), Float(1.5), Float(math.NaN()))})
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":[1,1.5,null]}`, string(data))
}
