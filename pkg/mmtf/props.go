package mmtf

import (
	"fmt"

	"github.com/andrew-torda/mmtf/pkg/codec"
	"github.com/andrew-torda/mmtf/pkg/mmtferr"
	"github.com/vmihailenco/msgpack/v5"
)

// PropertyMap holds the free form bond, atom, group, chain, model and
// extra properties. Keys are not checked against anything. Values are
// kept as raw msgpack, either a bin with a codec block or a plain
// value, and are only interpreted when asked for.
type PropertyMap map[string]msgpack.RawMessage

// Set stores any value msgpack can marshal.
func (p *PropertyMap) Set(key string, v interface{}) error {
	b, err := msgpack.Marshal(v)
	if err != nil {
		return mmtferr.WrapEncode(err, key, "marshalling property")
	}
	if *p == nil {
		*p = make(PropertyMap)
	}
	(*p)[key] = b
	return nil
}

// SetBlock stores an encoded codec block, such as the output of
// codec.EncodeRunLengthDeltaInt, as a bin.
func (p *PropertyMap) SetBlock(key string, block []byte) error {
	return p.Set(key, block)
}

// Has says if key is present.
func (p PropertyMap) Has(key string) bool {
	_, ok := p[key]
	return ok
}

// Property decodes the value stored under key. Codec blocks are
// decoded for []int32, []int8, []float32, []string and []byte. Any
// other T is unmarshalled directly.
// A missing key gives the zero value, or a *mmtferr.DecodeError if it
// is required. A value of the wrong kind gives a *mmtferr.TypeError.
func Property[T any](p PropertyMap, key string, required bool) (T, error) {
	var out T
	raw, ok := p[key]
	if !ok {
		if required {
			return out, mmtferr.NewDecode(key, "required property not present")
		}
		return out, nil
	}
	var err error
	switch dst := any(&out).(type) {
	case *[]int32:
		*dst, err = rawInt32s(raw)
	case *[]int8:
		*dst, err = rawInt8s(raw)
	case *[]float32:
		*dst, err = rawFloat32s(raw)
	case *[]string:
		*dst, err = rawStrings(raw)
	case *[]byte:
		*dst, err = rawBytes(raw)
	case *string:
		*dst, err = rawString(raw)
	case *int32:
		*dst, err = rawInt32(raw)
	case *float32:
		*dst, err = rawFloat32(raw)
	default:
		if e := msgpack.Unmarshal(raw, &out); e != nil {
			err = &mmtferr.TypeError{Want: fmt.Sprintf("%T", out), Got: kindOf(raw)}
		}
	}
	if err != nil {
		var zero T
		return zero, keyed(err, key)
	}
	return out, nil
}

// rawBytes decodes a char block. A bin which is not a block is given
// back as it is.
func rawBytes(raw msgpack.RawMessage) ([]byte, error) {
	if isBin(raw) {
		b, err := block(raw)
		if err != nil {
			return nil, err
		}
		if s, ok := codec.PeekStrategy(b); !ok || s != codec.RunLengthChar {
			return b, nil
		}
	}
	return rawChars(raw)
}
