package codec

import (
	"encoding/binary"
	"math"
	"strconv"

	"github.com/andrew-torda/mmtf/pkg/mmtferr"
)

// putInt32s appends big-endian int32's.
func putInt32s(b []byte, in []int32) []byte {
	for _, x := range in {
		b = binary.BigEndian.AppendUint32(b, uint32(x))
	}
	return b
}

// putInt16s appends big-endian int16's. Callers have already made sure
// the values fit.
func putInt16s(b []byte, in []int32) []byte {
	for _, x := range in {
		b = binary.BigEndian.AppendUint16(b, uint16(int16(x)))
	}
	return b
}

// EncodeFloat32 writes plain big-endian float32's (codec 1).
func EncodeFloat32(in []float32) []byte {
	b := appendHeader(Float32, len(in), 0, 4*len(in))
	for _, x := range in {
		b = binary.BigEndian.AppendUint32(b, math.Float32bits(x))
	}
	return b
}

// EncodeInt8ToByte writes one byte per value (codec 2).
func EncodeInt8ToByte(in []int8) []byte {
	b := appendHeader(Int8ToByte, len(in), 0, len(in))
	for _, x := range in {
		b = append(b, byte(x))
	}
	return b
}

// EncodeInt16 writes two bytes per value (codec 3). A value that does
// not fit in an int16 is an error, since there is no way to carry it.
func EncodeInt16(in []int32) ([]byte, error) {
	for i, x := range in {
		if x > i16Max || x < i16Min {
			return nil, mmtferr.NewEncode("", "value "+strconv.Itoa(int(x))+
				" at "+strconv.Itoa(i)+" does not fit in int16")
		}
	}
	return putInt16s(appendHeader(Int16, len(in), 0, 2*len(in)), in), nil
}

// EncodeFourByteInt writes four bytes per value (codec 4).
func EncodeFourByteInt(in []int32) []byte {
	return putInt32s(appendHeader(FourByteInt, len(in), 0, 4*len(in)), in)
}

// EncodeStringVector writes each string into width bytes, padded with
// NUL (codec 5). Strings longer than width are an error.
func EncodeStringVector(in []string, width int32) ([]byte, error) {
	if width <= 0 {
		return nil, mmtferr.NewEncode("", "string width must be positive, got "+
			strconv.Itoa(int(width)))
	}
	w := int(width)
	b := appendHeader(StringVector, len(in), width, w*len(in))
	for _, s := range in {
		if len(s) > w {
			return nil, mmtferr.NewEncode("", "string \""+s+"\" longer than "+
				strconv.Itoa(w))
		}
		b = append(b, s...)
		for j := len(s); j < w; j++ {
			b = append(b, 0)
		}
	}
	return b, nil
}

// EncodeRunLengthChar run length encodes characters (codec 6).
func EncodeRunLengthChar(in []byte) []byte {
	tmp := make([]int32, len(in))
	for i, c := range in {
		tmp[i] = int32(c)
	}
	rl := runLengthEncode(tmp)
	return putInt32s(appendHeader(RunLengthChar, len(in), 0, 4*len(rl)), rl)
}

// EncodeRunLengthInt run length encodes int32's (codec 7).
func EncodeRunLengthInt(in []int32) []byte {
	rl := runLengthEncode(in)
	return putInt32s(appendHeader(RunLengthInt, len(in), 0, 4*len(rl)), rl)
}

// EncodeRunLengthDeltaInt takes differences and then run length
// encodes them (codec 8). Good for counting sequences like atom ids.
func EncodeRunLengthDeltaInt(in []int32) []byte {
	rl := runLengthEncode(deltaEncode(in))
	return putInt32s(appendHeader(RunLengthDeltaInt, len(in), 0, 4*len(rl)), rl)
}

// EncodeRunLengthFloat multiplies by divisor, rounds and run length
// encodes (codec 9).
func EncodeRunLengthFloat(in []float32, divisor int32) []byte {
	rl := runLengthEncode(floatsToInts(in, divisor))
	return putInt32s(appendHeader(RunLengthFloat, len(in), divisor, 4*len(rl)), rl)
}

// EncodeDeltaRecursiveFloat is the coordinate codec (codec 10). Scale
// and round, take differences, then split each difference into int16
// chunks.
func EncodeDeltaRecursiveFloat(in []float32, divisor int32) []byte {
	ri := recursiveIndexEncode(deltaEncode(floatsToInts(in, divisor)), i16Max, i16Min)
	return putInt16s(appendHeader(DeltaRecursiveFloat, len(in), divisor, 2*len(ri)), ri)
}

// EncodeInt16Float scales, rounds and stores int16's (codec 11).
func EncodeInt16Float(in []float32, divisor int32) ([]byte, error) {
	ints := floatsToInts(in, divisor)
	for i, x := range ints {
		if x > i16Max || x < i16Min {
			return nil, mmtferr.NewEncode("", "scaled value at "+strconv.Itoa(i)+
				" does not fit in int16")
		}
	}
	return putInt16s(appendHeader(Int16Float, len(in), divisor, 2*len(ints)), ints), nil
}

// EncodeRecursiveFloat16 is codec 12: scale, round, int16 recursive index.
func EncodeRecursiveFloat16(in []float32, divisor int32) []byte {
	ri := recursiveIndexEncode(floatsToInts(in, divisor), i16Max, i16Min)
	return putInt16s(appendHeader(RecursiveFloat16, len(in), divisor, 2*len(ri)), ri)
}

// EncodeRecursiveFloat8 is codec 13: scale, round, int8 recursive index.
func EncodeRecursiveFloat8(in []float32, divisor int32) []byte {
	ri := recursiveIndexEncode(floatsToInts(in, divisor), i8Max, i8Min)
	b := appendHeader(RecursiveFloat8, len(in), divisor, len(ri))
	for _, x := range ri {
		b = append(b, byte(int8(x)))
	}
	return b
}

// EncodeRecursiveInt16 is codec 14.
func EncodeRecursiveInt16(in []int32) []byte {
	ri := recursiveIndexEncode(in, i16Max, i16Min)
	return putInt16s(appendHeader(RecursiveInt16, len(in), 0, 2*len(ri)), ri)
}

// EncodeRecursiveInt8 is codec 15.
func EncodeRecursiveInt8(in []int32) []byte {
	ri := recursiveIndexEncode(in, i8Max, i8Min)
	b := appendHeader(RecursiveInt8, len(in), 0, len(ri))
	for _, x := range ri {
		b = append(b, byte(int8(x)))
	}
	return b
}

// EncodeRunLengthInt8 run length encodes int8's, with values and counts
// both written as int32 (codec 16).
func EncodeRunLengthInt8(in []int8) []byte {
	tmp := make([]int32, len(in))
	for i, x := range in {
		tmp[i] = int32(x)
	}
	rl := runLengthEncode(tmp)
	return putInt32s(appendHeader(RunLengthInt8, len(in), 0, 4*len(rl)), rl)
}
