package clash

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Record is one entry of a YAML proxy list, keyed by the source tool's field names.
// Records are only read, never modified.
type Record map[string]interface{}

// Value is a single loosely typed field of a Record.
type Value struct {
	raw interface{}
}

func (r Record) Get(key string) Value {
	if r == nil {
		return Value{}
	}
	return Value{raw: r[key]}
}

// Has reports whether key is set to anything other than null.
func (r Record) Has(key string) bool {
	return r.Get(key).raw != nil
}

func (r Record) Truthy(key string) bool {
	return r.Get(key).Truthy()
}

func (r Record) Text(key string) string {
	return r.Get(key).Text()
}

// Sub returns the nested mapping stored under key, or nil.
func (r Record) Sub(key string) Record {
	return r.Get(key).Record()
}

// With returns a shallow copy of r with key set to v.
func (r Record) With(key string, v interface{}) Record {
	out := make(Record, len(r)+1)
	for k, val := range r {
		out[k] = val
	}
	out[key] = v
	return out
}

// Truthy follows the loose truthiness proxy-list tools apply to fields:
// null, false, 0, NaN and "" are false; mappings and sequences are always true.
func (v Value) Truthy() bool {
	switch x := v.raw.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	case float64:
		return x != 0 && !math.IsNaN(x)
	case float32:
		return x != 0 && !math.IsNaN(float64(x))
	case int:
		return x != 0
	case int64:
		return x != 0
	case int32:
		return x != 0
	case uint64:
		return x != 0
	case uint:
		return x != 0
	case uint32:
		return x != 0
	default:
		return true
	}
}

// IsTrue reports whether the value is the boolean true, nothing else.
func (v Value) IsTrue() bool {
	b, ok := v.raw.(bool)
	return ok && b
}

func (v Value) IsString() bool {
	_, ok := v.raw.(string)
	return ok
}

func (v Value) IsList() bool {
	switch v.raw.(type) {
	case []interface{}, []string:
		return true
	}
	return false
}

// List returns the string form of every element when the value is a sequence.
func (v Value) List() []string {
	switch x := v.raw.(type) {
	case []string:
		return append([]string(nil), x...)
	case []interface{}:
		out := make([]string, len(x))
		for i, e := range x {
			out[i] = Value{raw: e}.String()
		}
		return out
	}
	return nil
}

func (v Value) Record() Record {
	switch x := v.raw.(type) {
	case Record:
		return x
	case map[string]interface{}:
		return Record(x)
	case map[interface{}]interface{}:
		out := make(Record, len(x))
		for k, val := range x {
			out[fmt.Sprint(k)] = val
		}
		return out
	}
	return nil
}

// Text is "" for falsy values and String otherwise.
func (v Value) Text() string {
	if !v.Truthy() {
		return ""
	}
	return v.String()
}

// String converts the value the way a template string would: sequences join
// with commas, mappings collapse to "[object Object]".
func (v Value) String() string {
	switch x := v.raw.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return formatNumber(x)
	case float32:
		return formatNumber(float64(x))
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case uint:
		return strconv.FormatUint(uint64(x), 10)
	case uint32:
		return strconv.FormatUint(uint64(x), 10)
	case []interface{}, []string:
		return strings.Join(v.List(), ",")
	case map[string]interface{}, map[interface{}]interface{}, Record:
		return "[object Object]"
	default:
		return fmt.Sprint(x)
	}
}

// MarshalJSON keeps numbers as numbers and strings as strings.
func (v Value) MarshalJSON() ([]byte, error) {
	switch x := v.raw.(type) {
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return []byte("null"), nil
		}
		return []byte(formatNumber(x)), nil
	case float32:
		return Value{raw: float64(x)}.MarshalJSON()
	}
	return marshalJSON(jsonSafe(v.raw))
}

// jsonSafe rewrites, at any depth, what encoding/json rejects but a proxy
// list can still contain: mappings with non-string keys (yaml.v3 decodes
// those as map[interface{}]interface{}) and non-finite numbers, which
// become null.
func jsonSafe(x interface{}) interface{} {
	switch t := x.(type) {
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return nil
		}
	case float32:
		return jsonSafe(float64(t))
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, v := range t {
			out[Value{raw: k}.String()] = jsonSafe(v)
		}
		return out
	case map[string]interface{}:
		return jsonSafeMap(t)
	case Record:
		return jsonSafeMap(t)
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, v := range t {
			out[i] = jsonSafe(v)
		}
		return out
	}
	return x
}

func jsonSafeMap(m map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = jsonSafe(v)
	}
	return out
}

// formatNumber prints f the way JS String(number) does, including the switch
// to exponent notation outside [1e-6, 1e21).
func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}
	if abs := math.Abs(f); abs >= 1e21 || abs < 1e-6 {
		mant, exp, _ := strings.Cut(strconv.FormatFloat(f, 'e', -1, 64), "e")
		return mant + "e" + exp[:1] + strings.TrimLeft(exp[1:], "0")
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// marshalJSON encodes without HTML escaping and without the trailing newline.
func marshalJSON(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
