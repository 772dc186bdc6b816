package mmtf

import (
	"sort"
	"strconv"

	"github.com/andrew-torda/mmtf/pkg/mmtferr"
	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"
)

// MapDecoder reads typed entries out of one msgpack map. It remembers
// which keys were asked for so CheckExtraKeys can complain about the
// rest.
type MapDecoder struct {
	what string // "StructureData", "groupList[3]" ... for log messages
	data map[string]msgpack.RawMessage
	used map[string]bool
	log  *zap.Logger
}

// NewMapDecoder unpacks b, which must be a msgpack map with string
// keys. log may be nil.
func NewMapDecoder(b []byte, what string, log *zap.Logger) (*MapDecoder, error) {
	if len(b) == 0 {
		return nil, mmtferr.NewDecode("", "empty input")
	}
	m, err := rawMap(b)
	if err != nil {
		var te *mmtferr.TypeError
		if errors.As(err, &te) {
			return nil, mmtferr.NewDecode("", "expected msgpack map, got "+te.Got)
		}
		return nil, err
	}
	return newMapDecoder(m, what, log), nil
}

func newMapDecoder(m map[string]msgpack.RawMessage, what string, log *zap.Logger) *MapDecoder {
	if log == nil {
		log = zap.NewNop()
	}
	return &MapDecoder{what: what, data: m, used: make(map[string]bool), log: log}
}

// lookup finds the raw value. The bool is false if the key is absent.
func (md *MapDecoder) lookup(key string, required bool) (msgpack.RawMessage, bool, error) {
	raw, ok := md.data[key]
	if !ok {
		if required {
			return nil, false, mmtferr.NewDecode(key, "map "+md.what+
				" does not contain required entry")
		}
		return nil, false, nil
	}
	md.used[key] = true
	return raw, true, nil
}

// field does the work for every typed accessor. dst is left alone if
// the key is absent.
func field[T any](md *MapDecoder, key string, required bool, dst *T,
	conv func(msgpack.RawMessage) (T, error)) error {
	raw, ok, err := md.lookup(key, required)
	if !ok || err != nil {
		return err
	}
	v, err := conv(raw)
	if err != nil {
		var te *mmtferr.TypeError
		if errors.As(err, &te) {
			md.log.Warn("unexpected msgpack type",
				zap.String("map", md.what), zap.String("key", key),
				zap.String("want", te.Want), zap.String("got", te.Got))
		}
		return keyed(err, key)
	}
	*dst = v
	return nil
}

// Int32s reads an int32 list, from a codec block or a plain array.
func (md *MapDecoder) Int32s(key string, required bool, dst *[]int32) error {
	return field(md, key, required, dst, rawInt32s)
}

// Int8s reads an int8 list, from a codec block or a plain array.
func (md *MapDecoder) Int8s(key string, required bool, dst *[]int8) error {
	return field(md, key, required, dst, rawInt8s)
}

// Float32s reads a float list, from a codec block or a plain array.
func (md *MapDecoder) Float32s(key string, required bool, dst *[]float32) error {
	return field(md, key, required, dst, rawFloat32s)
}

// Strings reads a string list, from a codec block or a plain array.
func (md *MapDecoder) Strings(key string, required bool, dst *[]string) error {
	return field(md, key, required, dst, rawStrings)
}

// Chars reads one byte per entry, from a codec block or an array of
// short strings or small integers. An empty string gives 0.
func (md *MapDecoder) Chars(key string, required bool, dst *[]byte) error {
	return field(md, key, required, dst, rawChars)
}

// Str reads a msgpack string.
func (md *MapDecoder) Str(key string, required bool, dst *string) error {
	return field(md, key, required, dst, rawString)
}

// Char reads a string which must be exactly one character long.
func (md *MapDecoder) Char(key string, required bool, dst *byte) error {
	return field(md, key, required, dst, rawChar)
}

// Int32 reads a single integer.
func (md *MapDecoder) Int32(key string, required bool, dst *int32) error {
	return field(md, key, required, dst, rawInt32)
}

// Float32 reads a single number. Integers are accepted.
func (md *MapDecoder) Float32(key string, required bool, dst *float32) error {
	return field(md, key, required, dst, rawFloat32)
}

// Float32Lists reads an array of float arrays, such as ncsOperatorList.
func (md *MapDecoder) Float32Lists(key string, required bool, dst *[][]float32) error {
	return field(md, key, required, dst, rawFloat32Lists)
}

// Properties reads a map of free form properties.
func (md *MapDecoder) Properties(key string, required bool, dst *PropertyMap) error {
	conv := func(raw msgpack.RawMessage) (PropertyMap, error) {
		m, err := rawMap(raw)
		return PropertyMap(m), err
	}
	return field(md, key, required, dst, conv)
}

// Maps reads an array of maps and gives back a decoder for each one.
func (md *MapDecoder) Maps(key string, required bool) ([]*MapDecoder, error) {
	var ms []map[string]msgpack.RawMessage
	if err := field(md, key, required, &ms, rawMaps); err != nil {
		return nil, err
	}
	out := make([]*MapDecoder, len(ms))
	for i, m := range ms {
		out[i] = newMapDecoder(m, key+"["+strconv.Itoa(i)+"]", md.log)
	}
	return out, nil
}

// CheckExtraKeys logs a warning for every key nobody asked for and
// returns them, sorted.
func (md *MapDecoder) CheckExtraKeys() []string {
	var extra []string
	for k := range md.data {
		if !md.used[k] {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	for _, k := range extra {
		md.log.Warn("found non-parsed key", zap.String("map", md.what), zap.String("key", k))
	}
	return extra
}
