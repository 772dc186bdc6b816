// Package codec has the binary encoders and decoders for MMTF arrays.
//
// Every encoded array is a self describing block. The first 12 bytes are
// three big-endian int32's
//   codec id, number of elements, parameter
// and the rest is the payload. The meaning of the parameter depends on
// the codec. For the float strategies it is the divisor, for strings it
// is the fixed width of each entry.
//
// The encoders are exact inverses of the decoders. If you decode a block
// and encode the result with the same strategy and parameter, you get
// the same bytes back. Other programs compare the raw bytes, so this
// matters.
//
// Nothing here keeps state between calls. Every call allocates its own
// output, so you can decode different blocks from different goroutines.
package codec

import (
	"encoding/binary"
	"strconv"

	"github.com/andrew-torda/mmtf/pkg/mmtferr"
)

// Strategy is the codec id found in the first four bytes of a block.
type Strategy int32

const (
	Float32             Strategy = 1  // float32, 4 bytes each
	Int8ToByte          Strategy = 2  // int8, 1 byte each
	Int16               Strategy = 3  // int16, 2 bytes each
	FourByteInt         Strategy = 4  // int32, 4 bytes each
	StringVector        Strategy = 5  // fixed width, NUL padded strings
	RunLengthChar       Strategy = 6  // (char, count) int32 pairs
	RunLengthInt        Strategy = 7  // (value, count) int32 pairs
	RunLengthDeltaInt   Strategy = 8  // run length, then delta
	RunLengthFloat      Strategy = 9  // run length of scaled ints
	DeltaRecursiveFloat Strategy = 10 // recursive index int16, delta, divide
	Int16Float          Strategy = 11 // int16 divided by parameter
	RecursiveFloat16    Strategy = 12 // recursive index int16, divide
	RecursiveFloat8     Strategy = 13 // recursive index int8, divide
	RecursiveInt16      Strategy = 14 // recursive index int16 to int32
	RecursiveInt8       Strategy = 15 // recursive index int8 to int32
	RunLengthInt8       Strategy = 16 // (value, count) pairs, values are int8
)

// HeaderLen is the number of bytes before the payload starts.
const HeaderLen = 12

var names = map[Strategy]string{
	Float32:             "Float32",
	Int8ToByte:          "Int8ToByte",
	Int16:               "Int16",
	FourByteInt:         "FourByteInt",
	StringVector:        "StringVector",
	RunLengthChar:       "RunLengthChar",
	RunLengthInt:        "RunLengthInt",
	RunLengthDeltaInt:   "RunLengthDeltaInt",
	RunLengthFloat:      "RunLengthFloat",
	DeltaRecursiveFloat: "DeltaRecursiveFloat",
	Int16Float:          "Int16Float",
	RecursiveFloat16:    "RecursiveFloat16",
	RecursiveFloat8:     "RecursiveFloat8",
	RecursiveInt16:      "RecursiveInt16",
	RecursiveInt8:       "RecursiveInt8",
	RunLengthInt8:       "RunLengthInt8",
}

func (s Strategy) String() string {
	if n, ok := names[s]; ok {
		return n
	}
	return "Strategy(" + strconv.Itoa(int(s)) + ")"
}

// Known says if we have a decoder for this strategy.
func (s Strategy) Known() bool {
	_, ok := names[s]
	return ok
}

// Header is the decoded first 12 bytes of a block.
type Header struct {
	Codec  Strategy
	Length int32 // number of elements, not bytes
	Param  int32
}

// ReadHeader splits a block into header and payload.
// It only checks that there are enough bytes and that the codec is one
// we know about.
func ReadHeader(b []byte) (Header, []byte, error) {
	var h Header
	if len(b) < HeaderLen {
		return h, nil, mmtferr.NewDecodeAt("", "block shorter than header, "+
			strconv.Itoa(len(b))+" bytes", len(b))
	}
	h.Codec = Strategy(binary.BigEndian.Uint32(b[0:]))
	h.Length = int32(binary.BigEndian.Uint32(b[4:]))
	h.Param = int32(binary.BigEndian.Uint32(b[8:]))
	if !h.Codec.Known() {
		return h, nil, mmtferr.NewDecodeAt("", "unknown codec "+strconv.Itoa(int(h.Codec)), 0)
	}
	if h.Length < 0 {
		return h, nil, mmtferr.NewDecodeAt("", "negative array length "+
			strconv.Itoa(int(h.Length)), 4)
	}
	return h, b[HeaderLen:], nil
}

// PeekStrategy returns the codec id of a block without looking at the
// payload. The second value is false if b cannot be a block.
func PeekStrategy(b []byte) (Strategy, bool) {
	if len(b) < HeaderLen {
		return 0, false
	}
	s := Strategy(binary.BigEndian.Uint32(b))
	return s, s.Known()
}

// appendHeader starts a new block with room for nPayload more bytes.
func appendHeader(s Strategy, n int, param int32, nPayload int) []byte {
	b := make([]byte, HeaderLen, HeaderLen+nPayload)
	binary.BigEndian.PutUint32(b[0:], uint32(s))
	binary.BigEndian.PutUint32(b[4:], uint32(int32(n)))
	binary.BigEndian.PutUint32(b[8:], uint32(param))
	return b
}

// wrongType is what typed decoders return when a block holds some
// other kind of element.
func wrongType(s Strategy, want string) error {
	return mmtferr.NewDecode("", "codec "+s.String()+" does not give "+want)
}

// badLen is for payloads that do not match the header.
func badLen(h Header, nPayload int, why string) error {
	return mmtferr.NewDecodeAt("", h.Codec.String()+" header says "+
		strconv.Itoa(int(h.Length))+" elements, payload of "+
		strconv.Itoa(nPayload)+" bytes "+why, HeaderLen)
}
