package codec

import (
	"math"
	"strconv"

	"github.com/andrew-torda/mmtf/pkg/mmtferr"
)

// Limits for recursive indexing. A chunk equal to one of these says
// "keep adding, the value is not finished".
const (
	i16Max = math.MaxInt16
	i16Min = math.MinInt16
	i8Max  = math.MaxInt8
	i8Min  = math.MinInt8
)

// runLengthEncode turns a slice into (value, count) pairs, with each
// pair covering the longest run it can.
func runLengthEncode(in []int32) []int32 {
	if len(in) == 0 {
		return nil
	}
	out := make([]int32, 0, 8)
	curr := in[0]
	var count int32 = 1
	for _, x := range in[1:] {
		if x == curr {
			count++
			continue
		}
		out = append(out, curr, count)
		curr = x
		count = 1
	}
	return append(out, curr, count)
}

// initialCap stops a header from a broken file making us allocate
// gigabytes before we have seen the payload.
func initialCap(n int) int {
	const maxStart = 1 << 16
	return min(n, maxStart)
}

// runLengthDecode expands (value, count) pairs. It must produce exactly
// n values. We check as we go so a silly count cannot make us allocate
// more than the header promised.
func runLengthDecode(h Header, pairs []int32) ([]int32, error) {
	n := int(h.Length)
	out := make([]int32, 0, initialCap(n))
	for i := 0; i < len(pairs); i += 2 {
		val, count := pairs[i], pairs[i+1]
		if count < 0 {
			return nil, mmtferr.NewDecodeAt("", "negative run length "+
				strconv.Itoa(int(count)), HeaderLen+4*(i+1))
		}
		if len(out)+int(count) > n {
			return nil, mmtferr.NewDecodeAt("", "run lengths add up to more than "+
				strconv.Itoa(n)+" elements", HeaderLen+4*(i+1))
		}
		for j := int32(0); j < count; j++ {
			out = append(out, val)
		}
	}
	if len(out) != n {
		return nil, mmtferr.NewDecodeAt("", "run lengths give "+strconv.Itoa(len(out))+
			" elements, header says "+strconv.Itoa(n), HeaderLen+4*len(pairs))
	}
	return out, nil
}

// deltaEncode keeps the first value and then differences. Arithmetic is
// int32 and wraps, so deltaDecode undoes it for any input.
func deltaEncode(in []int32) []int32 {
	out := make([]int32, len(in))
	var prev int32
	for i, x := range in {
		out[i] = x - prev
		prev = x
	}
	return out
}

// deltaDecode is a running sum starting from zero. Works in place.
func deltaDecode(in []int32) []int32 {
	var sum int32
	for i, d := range in {
		sum += d
		in[i] = sum
	}
	return in
}

// recursiveIndexEncode splits values that do not fit into a small
// integer. A positive value is written as a sequence of hi chunks
// followed by the remainder, a negative one as lo chunks and the
// remainder. A value equal to hi becomes hi, 0.
func recursiveIndexEncode(in []int32, hi, lo int32) []int32 {
	out := make([]int32, 0, len(in))
	for _, x := range in {
		if x >= 0 {
			for x >= hi {
				out = append(out, hi)
				x -= hi
			}
		} else {
			for x <= lo {
				out = append(out, lo)
				x -= lo
			}
		}
		out = append(out, x)
	}
	return out
}

// recFold is the state carried over the chunks while decoding
// recursive indices: the part of a value summed so far and whether we
// are inside an unfinished value.
type recFold struct {
	acc  int32
	open bool
}

// step takes one chunk. It returns the finished value and true if the
// chunk closed one.
func (f recFold) step(chunk, hi, lo int32) (recFold, int32, bool) {
	f.acc += chunk
	if chunk == hi || chunk == lo {
		f.open = true
		return f, 0, false
	}
	v := f.acc
	return recFold{}, v, true
}

// recursiveIndexDecode folds the chunks back into values. n is the
// number the header promised.
func recursiveIndexDecode(h Header, in []int32, hi, lo int32) ([]int32, error) {
	n := int(h.Length)
	out := make([]int32, 0, min(n, len(in)))
	var f recFold
	for i, chunk := range in {
		var v int32
		var done bool
		if f, v, done = f.step(chunk, hi, lo); !done {
			continue
		}
		if len(out) == n {
			return nil, mmtferr.NewDecodeAt("", "more values than the header's "+
				strconv.Itoa(n), HeaderLen+i)
		}
		out = append(out, v)
	}
	if f.open {
		return nil, mmtferr.NewDecode("", "payload ends inside a recursive index value")
	}
	if len(out) != n {
		return nil, mmtferr.NewDecode("", "recursive index gives "+strconv.Itoa(len(out))+
			" values, header says "+strconv.Itoa(n))
	}
	return out, nil
}

// floatsToInts scales by the multiplier and rounds. The product is
// float32 so we get the same integers as other MMTF writers.
func floatsToInts(in []float32, mult int32) []int32 {
	out := make([]int32, len(in))
	m := float32(mult)
	for i, x := range in {
		out[i] = int32(math.Round(float64(x * m)))
	}
	return out
}

// intsToFloats is the inverse of floatsToInts.
func intsToFloats(in []int32, div int32) []float32 {
	out := make([]float32, len(in))
	d := float32(div)
	for i, x := range in {
		out[i] = float32(x) / d
	}
	return out
}
