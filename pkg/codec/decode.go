package codec

import (
	"bytes"
	"encoding/binary"
	"math"
	"strconv"

	"github.com/andrew-torda/mmtf/pkg/mmtferr"
)

// getInt32s reads a payload of big-endian int32's. The caller says how
// many values it expects, -1 meaning "whatever is there, but pairs".
func getInt32s(h Header, p []byte, want int) ([]int32, error) {
	if len(p)%4 != 0 {
		return nil, badLen(h, len(p), "is not a multiple of 4")
	}
	if want >= 0 && len(p) != 4*want {
		return nil, badLen(h, len(p), "should be "+strconv.Itoa(4*want))
	}
	out := make([]int32, len(p)/4)
	for i := range out {
		out[i] = int32(binary.BigEndian.Uint32(p[4*i:]))
	}
	return out, nil
}

func getInt16s(h Header, p []byte) ([]int32, error) {
	if len(p)%2 != 0 {
		return nil, badLen(h, len(p), "is not a multiple of 2")
	}
	out := make([]int32, len(p)/2)
	for i := range out {
		out[i] = int32(int16(binary.BigEndian.Uint16(p[2*i:])))
	}
	return out, nil
}

func getInt8s(p []byte) []int32 {
	out := make([]int32, len(p))
	for i, c := range p {
		out[i] = int32(int8(c))
	}
	return out
}

// getPairs reads the (value, count) payload used by the run length codecs.
func getPairs(h Header, p []byte) ([]int32, error) {
	if len(p)%8 != 0 {
		return nil, badLen(h, len(p), "is not a multiple of 8")
	}
	return getInt32s(h, p, -1)
}

// checkDivisor stops us dividing by zero on the float codecs.
func checkDivisor(h Header) error {
	if h.Param == 0 {
		return mmtferr.NewDecodeAt("", h.Codec.String()+" with zero divisor", 8)
	}
	return nil
}

// int32sFrom does the work for every strategy which ends in integers.
// Codecs 2 and 16 give int8's, but these widen without loss.
func int32sFrom(h Header, p []byte) ([]int32, error) {
	n := int(h.Length)
	switch h.Codec {
	case Int8ToByte:
		if len(p) != n {
			return nil, badLen(h, len(p), "should be "+strconv.Itoa(n))
		}
		return getInt8s(p), nil
	case Int16:
		if len(p) != 2*n {
			return nil, badLen(h, len(p), "should be "+strconv.Itoa(2*n))
		}
		return getInt16s(h, p)
	case FourByteInt:
		return getInt32s(h, p, n)
	case RunLengthInt, RunLengthInt8:
		pairs, err := getPairs(h, p)
		if err != nil {
			return nil, err
		}
		return runLengthDecode(h, pairs)
	case RunLengthDeltaInt:
		pairs, err := getPairs(h, p)
		if err != nil {
			return nil, err
		}
		rl, err := runLengthDecode(h, pairs)
		if err != nil {
			return nil, err
		}
		return deltaDecode(rl), nil
	case RecursiveInt16:
		chunks, err := getInt16s(h, p)
		if err != nil {
			return nil, err
		}
		return recursiveIndexDecode(h, chunks, i16Max, i16Min)
	case RecursiveInt8:
		return recursiveIndexDecode(h, getInt8s(p), i8Max, i8Min)
	}
	return nil, wrongType(h.Codec, "integers")
}

// DecodeInt32s decodes any integer block to int32's.
func DecodeInt32s(b []byte) ([]int32, error) {
	h, p, err := ReadHeader(b)
	if err != nil {
		return nil, err
	}
	return int32sFrom(h, p)
}

// DecodeInt8s decodes codec 2 or codec 16. Values from a run length
// block that do not fit in an int8 are an error, not clipped.
func DecodeInt8s(b []byte) ([]int8, error) {
	h, p, err := ReadHeader(b)
	if err != nil {
		return nil, err
	}
	if h.Codec != Int8ToByte && h.Codec != RunLengthInt8 {
		return nil, wrongType(h.Codec, "int8")
	}
	ints, err := int32sFrom(h, p)
	if err != nil {
		return nil, err
	}
	out := make([]int8, len(ints))
	for i, x := range ints {
		if x > i8Max || x < i8Min {
			return nil, mmtferr.NewDecode("", "value "+strconv.Itoa(int(x))+" does not fit in int8")
		}
		out[i] = int8(x)
	}
	return out, nil
}

// DecodeFloat32s decodes the float strategies, 1 and 9 to 13.
func DecodeFloat32s(b []byte) ([]float32, error) {
	h, p, err := ReadHeader(b)
	if err != nil {
		return nil, err
	}
	n := int(h.Length)
	if h.Codec == Float32 {
		if len(p) != 4*n {
			return nil, badLen(h, len(p), "should be "+strconv.Itoa(4*n))
		}
		out := make([]float32, n)
		for i := range out {
			out[i] = math.Float32frombits(binary.BigEndian.Uint32(p[4*i:]))
		}
		return out, nil
	}

	var ints []int32
	switch h.Codec {
	case RunLengthFloat:
		var pairs []int32
		if pairs, err = getPairs(h, p); err == nil {
			ints, err = runLengthDecode(h, pairs)
		}
	case DeltaRecursiveFloat, RecursiveFloat16:
		var chunks []int32
		if chunks, err = getInt16s(h, p); err == nil {
			ints, err = recursiveIndexDecode(h, chunks, i16Max, i16Min)
		}
		if err == nil && h.Codec == DeltaRecursiveFloat {
			ints = deltaDecode(ints)
		}
	case RecursiveFloat8:
		ints, err = recursiveIndexDecode(h, getInt8s(p), i8Max, i8Min)
	case Int16Float:
		if len(p) != 2*n {
			return nil, badLen(h, len(p), "should be "+strconv.Itoa(2*n))
		}
		ints, err = getInt16s(h, p)
	default:
		return nil, wrongType(h.Codec, "floats")
	}
	if err != nil {
		return nil, err
	}
	if err := checkDivisor(h); err != nil {
		return nil, err
	}
	return intsToFloats(ints, h.Param), nil
}

// DecodeChars decodes codec 6.
func DecodeChars(b []byte) ([]byte, error) {
	h, p, err := ReadHeader(b)
	if err != nil {
		return nil, err
	}
	if h.Codec != RunLengthChar {
		return nil, wrongType(h.Codec, "chars")
	}
	pairs, err := getPairs(h, p)
	if err != nil {
		return nil, err
	}
	ints, err := runLengthDecode(h, pairs)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(ints))
	for i, x := range ints {
		if x < i8Min || x > math.MaxUint8 {
			return nil, mmtferr.NewDecode("", "char value "+strconv.Itoa(int(x))+" out of range")
		}
		out[i] = byte(x)
	}
	return out, nil
}

// DecodeStrings decodes codec 5. Each entry is cut at the first NUL.
func DecodeStrings(b []byte) ([]string, error) {
	h, p, err := ReadHeader(b)
	if err != nil {
		return nil, err
	}
	if h.Codec != StringVector {
		return nil, wrongType(h.Codec, "strings")
	}
	if h.Param <= 0 {
		return nil, mmtferr.NewDecodeAt("", "string width "+strconv.Itoa(int(h.Param)), 8)
	}
	w, n := int(h.Param), int(h.Length)
	if len(p) != w*n {
		return nil, badLen(h, len(p), "should be "+strconv.Itoa(w*n))
	}
	out := make([]string, n)
	for i := range out {
		chunk := p[i*w : (i+1)*w]
		if j := bytes.IndexByte(chunk, 0); j != -1 {
			chunk = chunk[:j]
		}
		out[i] = string(chunk)
	}
	return out, nil
}
