package mmtf

import (
	"math"
	"strconv"

	"github.com/andrew-torda/mmtf/pkg/codec"
	"github.com/andrew-torda/mmtf/pkg/mmtferr"
	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v5"
	"github.com/vmihailenco/msgpack/v5/msgpcode"
)

// A value in an MMTF map is either a bin holding a codec block or a
// plain msgpack value. The functions here turn one raw value into a Go
// type. Mismatches come back as *mmtferr.TypeError with no key. The
// caller knows the key and fills it in.

// isBin says if a raw value is a msgpack bin.
func isBin(raw msgpack.RawMessage) bool {
	if len(raw) == 0 {
		return false
	}
	c := raw[0]
	return c == msgpcode.Bin8 || c == msgpcode.Bin16 || c == msgpcode.Bin32
}

// kindOf names the msgpack type of a raw value for error messages.
func kindOf(raw msgpack.RawMessage) string {
	if len(raw) == 0 {
		return "nothing"
	}
	c := raw[0]
	switch {
	case c <= msgpcode.PosFixedNumHigh || c >= msgpcode.NegFixedNumLow:
		return "int"
	case c >= msgpcode.FixedMapLow && c <= msgpcode.FixedMapHigh,
		c == msgpcode.Map16, c == msgpcode.Map32:
		return "map"
	case c >= msgpcode.FixedArrayLow && c <= msgpcode.FixedArrayHigh,
		c == msgpcode.Array16, c == msgpcode.Array32:
		return "array"
	case c >= msgpcode.FixedStrLow && c <= msgpcode.FixedStrHigh,
		c == msgpcode.Str8, c == msgpcode.Str16, c == msgpcode.Str32:
		return "str"
	case isBin(raw):
		return "bin"
	case c == msgpcode.Nil:
		return "nil"
	case c == msgpcode.False, c == msgpcode.True:
		return "bool"
	case c == msgpcode.Float, c == msgpcode.Double:
		return "float"
	case c >= msgpcode.Uint8 && c <= msgpcode.Int64:
		return "int"
	}
	return "ext"
}

func typeErr(want string, raw msgpack.RawMessage) error {
	return &mmtferr.TypeError{Want: want, Got: kindOf(raw)}
}

// keyed fills in the key of an error from the lower levels.
func keyed(err error, key string) error {
	var de *mmtferr.DecodeError
	var te *mmtferr.TypeError
	switch {
	case errors.As(err, &de):
		if de.Key == "" {
			de.Key = key
		}
	case errors.As(err, &te):
		if te.Key == "" {
			te.Key = key
		}
	}
	return err
}

// asInt accepts any msgpack integer.
func asInt(v interface{}) (int64, bool) {
	switch x := v.(type) {
	case int8:
		return int64(x), true
	case int16:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	case uint8:
		return int64(x), true
	case uint16:
		return int64(x), true
	case uint32:
		return int64(x), true
	case uint64:
		if x > math.MaxInt64 {
			return 0, false
		}
		return int64(x), true
	}
	return 0, false
}

// asFloat accepts floats and, like other MMTF readers, integers.
func asFloat(v interface{}) (float64, bool) {
	switch x := v.(type) {
	case float32:
		return float64(x), true
	case float64:
		return x, true
	}
	if i, ok := asInt(v); ok {
		return float64(i), true
	}
	return 0, false
}

// block gets the codec block out of a bin.
func block(raw msgpack.RawMessage) ([]byte, error) {
	var b []byte
	if err := msgpack.Unmarshal(raw, &b); err != nil {
		return nil, mmtferr.WrapDecode(err, "", "reading bin")
	}
	return b, nil
}

// plainArray unmarshals a raw msgpack array.
func plainArray(raw msgpack.RawMessage, want string) ([]interface{}, error) {
	if kindOf(raw) != "array" {
		return nil, typeErr(want, raw)
	}
	var a []interface{}
	if err := msgpack.Unmarshal(raw, &a); err != nil {
		return nil, mmtferr.WrapDecode(err, "", "reading array")
	}
	return a, nil
}

func rawInt32s(raw msgpack.RawMessage) ([]int32, error) {
	if isBin(raw) {
		b, err := block(raw)
		if err != nil {
			return nil, err
		}
		return codec.DecodeInt32s(b)
	}
	a, err := plainArray(raw, "int32 array")
	if err != nil {
		return nil, err
	}
	out := make([]int32, len(a))
	for i, v := range a {
		x, ok := asInt(v)
		if !ok || x > math.MaxInt32 || x < math.MinInt32 {
			return nil, &mmtferr.TypeError{Want: "int32", Got: "element " + strconv.Itoa(i)}
		}
		out[i] = int32(x)
	}
	return out, nil
}

func rawInt8s(raw msgpack.RawMessage) ([]int8, error) {
	if isBin(raw) {
		b, err := block(raw)
		if err != nil {
			return nil, err
		}
		return codec.DecodeInt8s(b)
	}
	ints, err := rawInt32s(raw)
	if err != nil {
		return nil, err
	}
	out := make([]int8, len(ints))
	for i, x := range ints {
		if x > math.MaxInt8 || x < math.MinInt8 {
			return nil, &mmtferr.TypeError{Want: "int8", Got: "element " + strconv.Itoa(i)}
		}
		out[i] = int8(x)
	}
	return out, nil
}

func rawFloat32s(raw msgpack.RawMessage) ([]float32, error) {
	if isBin(raw) {
		b, err := block(raw)
		if err != nil {
			return nil, err
		}
		return codec.DecodeFloat32s(b)
	}
	a, err := plainArray(raw, "float32 array")
	if err != nil {
		return nil, err
	}
	out := make([]float32, len(a))
	for i, v := range a {
		x, ok := asFloat(v)
		if !ok {
			return nil, &mmtferr.TypeError{Want: "float32", Got: "element " + strconv.Itoa(i)}
		}
		out[i] = float32(x)
	}
	return out, nil
}

func rawStrings(raw msgpack.RawMessage) ([]string, error) {
	if isBin(raw) {
		b, err := block(raw)
		if err != nil {
			return nil, err
		}
		return codec.DecodeStrings(b)
	}
	a, err := plainArray(raw, "string array")
	if err != nil {
		return nil, err
	}
	out := make([]string, len(a))
	for i, v := range a {
		s, ok := v.(string)
		if !ok {
			return nil, &mmtferr.TypeError{Want: "string", Got: "element " + strconv.Itoa(i)}
		}
		out[i] = s
	}
	return out, nil
}

// rawChars is for altLocList and insCodeList. A plain array may hold
// numbers or one character strings.
func rawChars(raw msgpack.RawMessage) ([]byte, error) {
	if isBin(raw) {
		b, err := block(raw)
		if err != nil {
			return nil, err
		}
		return codec.DecodeChars(b)
	}
	a, err := plainArray(raw, "char array")
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(a))
	for i, v := range a {
		if s, ok := v.(string); ok && len(s) <= 1 {
			if len(s) == 1 {
				out[i] = s[0]
			}
			continue
		}
		x, ok := asInt(v)
		if !ok || x < math.MinInt8 || x > math.MaxUint8 {
			return nil, &mmtferr.TypeError{Want: "char", Got: "element " + strconv.Itoa(i)}
		}
		out[i] = byte(x)
	}
	return out, nil
}

func rawString(raw msgpack.RawMessage) (string, error) {
	if kindOf(raw) != "str" {
		return "", typeErr("string", raw)
	}
	var s string
	if err := msgpack.Unmarshal(raw, &s); err != nil {
		return "", mmtferr.WrapDecode(err, "", "reading string")
	}
	return s, nil
}

// rawChar is a string of exactly one character.
func rawChar(raw msgpack.RawMessage) (byte, error) {
	s, err := rawString(raw)
	if err != nil {
		return 0, err
	}
	if len(s) != 1 {
		return 0, mmtferr.NewDecode("", "want one character, got \""+s+"\"")
	}
	return s[0], nil
}

func rawScalar(raw msgpack.RawMessage, want string) (interface{}, error) {
	var v interface{}
	if err := msgpack.Unmarshal(raw, &v); err != nil {
		return nil, mmtferr.WrapDecode(err, "", "reading "+want)
	}
	return v, nil
}

func rawInt32(raw msgpack.RawMessage) (int32, error) {
	v, err := rawScalar(raw, "int")
	if err != nil {
		return 0, err
	}
	x, ok := asInt(v)
	if !ok || x > math.MaxInt32 || x < math.MinInt32 {
		return 0, typeErr("int32", raw)
	}
	return int32(x), nil
}

func rawFloat32(raw msgpack.RawMessage) (float32, error) {
	v, err := rawScalar(raw, "float")
	if err != nil {
		return 0, err
	}
	x, ok := asFloat(v)
	if !ok {
		return 0, typeErr("float32", raw)
	}
	return float32(x), nil
}

// rawFloat32Lists is for ncsOperatorList, an array of float arrays.
func rawFloat32Lists(raw msgpack.RawMessage) ([][]float32, error) {
	var parts []msgpack.RawMessage
	if kindOf(raw) != "array" {
		return nil, typeErr("array of float arrays", raw)
	}
	if err := msgpack.Unmarshal(raw, &parts); err != nil {
		return nil, mmtferr.WrapDecode(err, "", "reading array")
	}
	out := make([][]float32, len(parts))
	for i, p := range parts {
		f, err := rawFloat32s(p)
		if err != nil {
			return nil, err
		}
		out[i] = f
	}
	return out, nil
}

// rawMap is a map with string keys, values left raw.
func rawMap(raw msgpack.RawMessage) (map[string]msgpack.RawMessage, error) {
	if kindOf(raw) != "map" {
		return nil, typeErr("map", raw)
	}
	var m map[string]msgpack.RawMessage
	if err := msgpack.Unmarshal(raw, &m); err != nil {
		return nil, mmtferr.WrapDecode(err, "", "reading map")
	}
	return m, nil
}

// rawMaps is an array of maps, as in groupList or entityList.
func rawMaps(raw msgpack.RawMessage) ([]map[string]msgpack.RawMessage, error) {
	if kindOf(raw) != "array" {
		return nil, typeErr("array of maps", raw)
	}
	var parts []msgpack.RawMessage
	if err := msgpack.Unmarshal(raw, &parts); err != nil {
		return nil, mmtferr.WrapDecode(err, "", "reading array")
	}
	out := make([]map[string]msgpack.RawMessage, len(parts))
	for i, p := range parts {
		m, err := rawMap(p)
		if err != nil {
			return nil, err
		}
		out[i] = m
	}
	return out, nil
}
