// Package document defines the format-agnostic value model every codec
// parses into and serializes from.
//
// A document is an `any` holding one of:
//   - *Map: an ordered mapping with unique string keys
//   - []any: an ordered sequence
//   - a scalar: string, int64, float64, bool or nil. Integers beyond the
//     int64 range are *big.Int. TOML date/time values are kept as their
//     go-toml types, all of which implement encoding.TextMarshaler.
package document

import (
	"encoding"
	"fmt"
	"math"
	"math/big"
	"reflect"
	"sort"
	"strconv"
	"time"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Map is an ordered mapping with unique string keys
type Map = orderedmap.OrderedMap[string, any]

// Kind classifies a document node
type Kind int

const (
	// KindNull is the nil value
	KindNull Kind = iota
	// KindScalar is a string, number, boolean or date/time value
	KindScalar
	// KindSequence is an ordered list of values
	KindSequence
	// KindMap is a string-keyed mapping
	KindMap
)

// String returns the lower-case name of the kind
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindScalar:
		return "scalar"
	case KindSequence:
		return "sequence"
	case KindMap:
		return "mapping"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// NewMap returns an empty ordered mapping
func NewMap() *Map {
	return orderedmap.New[string, any]()
}

// MapOf builds an ordered mapping from alternating keys and values.
// It panics when given an odd number of arguments or a non-string key.
func MapOf(pairs ...any) *Map {
	if len(pairs)%2 != 0 {
		panic("document: MapOf requires key/value pairs")
	}
	m := NewMap()
	for i := 0; i < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			panic(fmt.Sprintf("document: MapOf key %v is %T, not string", pairs[i], pairs[i]))
		}
		m.Set(key, pairs[i+1])
	}
	return m
}

// KindOf reports the kind of a document node
func KindOf(v any) Kind {
	switch v.(type) {
	case nil:
		return KindNull
	case *Map:
		return KindMap
	case []any:
		return KindSequence
	default:
		return KindScalar
	}
}

// Keys returns the keys of m in insertion order
func Keys(m *Map) []string {
	keys := make([]string, 0, m.Len())
	for pair := m.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// FromPlain converts plain Go values (map[string]any, []any, native ints
// and floats) into a document. Keys of plain maps are sorted so the result
// is deterministic.
func FromPlain(v any) any {
	switch val := v.(type) {
	case *Map:
		out := NewMap()
		for pair := val.Oldest(); pair != nil; pair = pair.Next() {
			out.Set(pair.Key, FromPlain(pair.Value))
		}
		return out
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := NewMap()
		for _, k := range keys {
			out.Set(k, FromPlain(val[k]))
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = FromPlain(item)
		}
		return out
	case []map[string]any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = FromPlain(item)
		}
		return out
	case []string:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = item
		}
		return out
	case int:
		return int64(val)
	case int8:
		return int64(val)
	case int16:
		return int64(val)
	case int32:
		return int64(val)
	case uint:
		return uintToScalar(uint64(val))
	case uint8:
		return int64(val)
	case uint16:
		return int64(val)
	case uint32:
		return int64(val)
	case uint64:
		return uintToScalar(val)
	case float32:
		return float64(val)
	default:
		return v
	}
}

func uintToScalar(u uint64) any {
	if u > math.MaxInt64 {
		return new(big.Int).SetUint64(u)
	}
	return int64(u)
}

// Plain converts a document into plain Go values, replacing every *Map
// with a map[string]any.
func Plain(v any) any {
	switch val := v.(type) {
	case *Map:
		out := make(map[string]any, val.Len())
		for pair := val.Oldest(); pair != nil; pair = pair.Next() {
			out[pair.Key] = Plain(pair.Value)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = Plain(item)
		}
		return out
	default:
		return v
	}
}

// Equal reports whether two documents hold the same value. Mapping key
// order is ignored and integer/float scalars compare numerically.
func Equal(a, b any) bool {
	switch av := a.(type) {
	case nil:
		return b == nil
	case *Map:
		bv, ok := b.(*Map)
		if !ok || av.Len() != bv.Len() {
			return false
		}
		for pair := av.Oldest(); pair != nil; pair = pair.Next() {
			other, present := bv.Get(pair.Key)
			if !present || !Equal(pair.Value, other) {
				return false
			}
		}
		return true
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	case time.Time:
		bv, ok := b.(time.Time)
		return ok && av.Equal(bv)
	case *big.Int:
		return equalBig(av, b)
	}
	if bv, ok := b.(*big.Int); ok {
		return equalBig(bv, a)
	}

	if af, ok := toFloat(a); ok {
		bf, ok := toFloat(b)
		if !ok {
			return false
		}
		if math.IsNaN(af) && math.IsNaN(bf) {
			return true
		}
		return af == bf
	}

	return reflect.DeepEqual(a, b)
}

func equalBig(a *big.Int, b any) bool {
	switch bv := b.(type) {
	case *big.Int:
		return a.Cmp(bv) == 0
	case int64:
		return a.Cmp(big.NewInt(bv)) == 0
	case int:
		return a.Cmp(big.NewInt(int64(bv))) == 0
	case float64:
		f, _ := new(big.Float).SetInt(a).Float64()
		return f == bv
	default:
		return false
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

// ScalarText renders a scalar the way text-only formats (XML) need it.
// It returns false for mappings and sequences.
func ScalarText(v any) (string, bool) {
	switch val := v.(type) {
	case nil:
		return "", true
	case string:
		return val, true
	case bool:
		return strconv.FormatBool(val), true
	case int64:
		return strconv.FormatInt(val, 10), true
	case int:
		return strconv.Itoa(val), true
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64), true
	case time.Time:
		return val.Format(time.RFC3339Nano), true
	case encoding.TextMarshaler:
		text, err := val.MarshalText()
		if err != nil {
			return "", false
		}
		return string(text), true
	case *Map, []any:
		return "", false
	default:
		return fmt.Sprint(val), true
	}
}
