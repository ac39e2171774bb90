package document

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapOfPreservesOrder(t *testing.T) {
	m := MapOf("zeta", int64(1), "alpha", int64(2), "mid", nil)
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, Keys(m))
	assert.Panics(t, func() { MapOf("odd") })
	assert.Panics(t, func() { MapOf(1, 2) })
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  Kind
	}{
		{"nil", nil, KindNull},
		{"string", "x", KindScalar},
		{"int", int64(3), KindScalar},
		{"bool", true, KindScalar},
		{"sequence", []any{1}, KindSequence},
		{"mapping", NewMap(), KindMap},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.value))
		})
	}
	assert.Equal(t, "mapping", KindMap.String())
}

func TestEqual(t *testing.T) {
	a := MapOf("a", int64(1), "b", []any{"x", MapOf("c", true)})
	b := MapOf("b", []any{"x", MapOf("c", true)}, "a", float64(1))

	assert.True(t, Equal(a, b), "key order and int/float representation must not matter")
	assert.False(t, Equal(a, MapOf("a", int64(1))))
	assert.False(t, Equal([]any{int64(1), int64(2)}, []any{int64(2), int64(1)}))
	assert.False(t, Equal("1", int64(1)))
	assert.True(t, Equal(nil, nil))
	assert.False(t, Equal(nil, ""))

	huge, _ := new(big.Int).SetString("12345678901234567890", 10)
	same, _ := new(big.Int).SetString("12345678901234567890", 10)
	assert.True(t, Equal(huge, same))
	assert.True(t, Equal(int64(7), big.NewInt(7)))
	assert.False(t, Equal(huge, int64(1)))
	assert.False(t, Equal("12345678901234567890", huge))
}

func TestPlainAndFromPlain(t *testing.T) {
	plain := map[string]any{
		"b": []any{1, "two"},
		"a": map[string]any{"nested": 2.5},
	}

	doc := FromPlain(plain)
	m, ok := doc.(*Map)
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, Keys(m))

	b, _ := m.Get("b")
	assert.Equal(t, []any{int64(1), "two"}, b)

	assert.Equal(t, map[string]any{
		"b": []any{int64(1), "two"},
		"a": map[string]any{"nested": 2.5},
	}, Plain(doc))
}

func TestScalarText(t *testing.T) {
	tests := []struct {
		value any
		want  string
		ok    bool
	}{
		{nil, "", true},
		{"hi", "hi", true},
		{true, "true", true},
		{int64(42), "42", true},
		{new(big.Int).SetUint64(1 << 63), "9223372036854775808", true},
		{1.5, "1.5", true},
		{NewMap(), "", false},
		{[]any{}, "", false},
	}
	for _, tt := range tests {
		got, ok := ScalarText(tt.value)
		assert.Equal(t, tt.ok, ok, "value %#v", tt.value)
		assert.Equal(t, tt.want, got, "value %#v", tt.value)
	}
}

func TestWalk(t *testing.T) {
	doc := MapOf(
		"servers", []any{MapOf("url", "http://a")},
		"name", "demo",
	)

	var paths []string
	Walk(doc, -1, func(n Node) bool {
		paths = append(paths, n.Path)
		return true
	})
	assert.Equal(t, []string{"", "servers", "servers[0]", "servers[0].url", "name"}, paths)
}

func TestWalkDepthCeiling(t *testing.T) {
	var doc any = "leaf"
	for i := 0; i < 10; i++ {
		doc = []any{doc}
	}

	maxSeen := 0
	Walk(doc, 4, func(n Node) bool {
		if n.Depth > maxSeen {
			maxSeen = n.Depth
		}
		return true
	})
	assert.Equal(t, 4, maxSeen)
}

func TestWalkStops(t *testing.T) {
	doc := []any{"a", "b", "c"}
	visited := 0
	Walk(doc, -1, func(n Node) bool {
		visited++
		return n.Value != "a"
	})
	assert.Equal(t, 2, visited)
}
