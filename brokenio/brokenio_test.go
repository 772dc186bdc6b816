package brokenio_test

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/andrew-torda/mmtf/brokenio"
)

var tochop = [][]byte{
	[]byte(""),
	[]byte("a"),
	[]byte("abc"),
	[]byte("abcdefghij"),
	[]byte("abcdefghijklmn"),
}

var longstring = "0123456789012345678901234567890123456789"

func newRdr(s string) *brokenio.BrknRdrClsr {
	return brokenio.NewReader(io.NopCloser(strings.NewReader(s)))
}

// lenNonNull returns the length of byte array up to first null
func lenNonNull(a []byte) int {
	if i := bytes.IndexByte(a, 0); i >= 0 {
		return i
	}
	return len(a)
}

// checkNonNull gets two byte slices and sees if they are
// identical within the first characters which are not nulls
func checkNonNull(a, b []byte) bool {
	shorter := min(lenNonNull(a), lenNonNull(b))
	return bytes.Equal(a[:shorter], b[:shorter])
}

// testFrac - wipe out different fractions of the input buffer.
func testFrac(t *testing.T, inb []byte, frac float32) {
	s := make([]byte, len(inb))
	rdr := newRdr(string(inb))
	rdr.SetProbFail(1)
	rdr.SetFracFail(frac)
	_, err := rdr.Read(s) // Look at the error in the different cases below
	nuls := []byte{0}
	if !checkNonNull(inb, s) {
		t.Error("contents of strings changed with string", string(inb), "frac", frac)
	}
	switch frac {
	case 0.0:
		if n := bytes.Count(s, nuls); n > 0 {
			t.Error("want no null bytes, got", n)
		}
		if err != nil && len(inb) > 0 {
			t.Errorf("error reading from string \"%s\"", inb)
		}
	case 1.0: // This should be a string with all nulls and an error
		want := len(s)
		if n := bytes.Count(s, nuls); n != want {
			t.Error("want", want, "nulls, got", n)
		}
		if len(s) > 0 && err == nil {
			t.Error("did not get error reading from", string(inb))
		}
	default:
		nNull := bytes.Count(s, nuls)
		if nNull == 0 && len(inb) > 3 {
			t.Errorf("no nulls found in \"%s\"", string(s))
		}
		if nNull == len(s) && len(s) > 2 {
			t.Error("Wiped out complete string in", string(inb))
		}
	}
}

// TestTrashing takes strings and removes parts of them
func TestTrashing(t *testing.T) {
	fracs := [3]float32{0, 0.3, 1}
	for _, frac := range fracs {
		for _, inb := range tochop {
			testFrac(t, inb, frac)
		}
	}
}

func forZeroFile(prob float32) (n int, err error) {
	rdr := newRdr(longstring)
	rdr.SetProbZeroFile(prob)
	tmp := make([]byte, len(longstring))
	n, err = rdr.Read(tmp)
	rdr.Close()
	return n, err
}

func TestZeroFile(t *testing.T) {
	n, err := forZeroFile(1)
	if n > 0 {
		t.Error("should have received zero bytes")
	}
	if err != io.EOF {
		t.Errorf("Should have recieved EOF")
	}
	n, err = forZeroFile(0)
	if n < len(longstring) {
		t.Error("Wanted", len(longstring), "got", n)
	}
	if err != nil {
		t.Errorf("err reading from string")
	}
}

func TestReaderSimple(t *testing.T) {
	rdr := newRdr(longstring)
	rdr.SetProbFail(0)
	s := make([]byte, len(longstring))
	if rdr.Read(s); string(s) != longstring {
		t.Errorf("simple read fail got %q wanted %q", s, longstring)
	}
}

// The cut has to land at the same place whatever the caller's
// buffer size.
func TestCutAt(t *testing.T) {
	for _, cut := range []int{0, 1, 7, 39, 40, 100} {
		rdr := newRdr(longstring)
		rdr.SetCutAt(cut)
		got, err := io.ReadAll(rdr)
		if err != nil {
			t.Fatal("ReadAll should see a plain EOF, got", err)
		}
		want := longstring[:min(cut, len(longstring))]
		if string(got) != want {
			t.Errorf("cut at %d got %q want %q", cut, got, want)
		}
		if rdr.NBytes() != len(want) {
			t.Error("NBytes", rdr.NBytes(), "want", len(want))
		}
	}
}

// Same seed, same damage.
func TestSeed(t *testing.T) {
	read := func() []byte {
		rdr := newRdr(longstring)
		rdr.SetSeed(42)
		rdr.SetProbFail(0.5)
		rdr.SetFracFail(0.5)
		out := make([]byte, 0, len(longstring))
		buf := make([]byte, 4)
		for {
			n, err := rdr.Read(buf)
			out = append(out, buf[:n]...)
			if err == io.EOF {
				return out
			}
		}
	}
	if a, b := read(), read(); !bytes.Equal(a, b) {
		t.Errorf("two reads with one seed differ\n%q\n%q", a, b)
	}
}

func Example_setVerbose() {
	rdr := newRdr(longstring)
	rdr.SetVerbose(true)
	tmp := make([]byte, len(longstring))
	rdr.Read(tmp)
	rdr.Close()
	// Output: Closing 1 calls and 40 bytes
}

// TestClose - check if the reader really is calling the correct close method.
func TestClose(t *testing.T) {
	fname := filepath.Join(t.TempDir(), "testclose_test")
	if err := os.WriteFile(fname, []byte(longstring), 0o600); err != nil {
		t.Fatal("Writing temp file failed", err)
	}
	fp, err := os.Open(fname)
	if err != nil {
		t.Fatal("reading from tempfile, err = ", err)
	}
	rdr := brokenio.NewReader(fp)
	s := make([]byte, len(longstring))
	if n, err := rdr.Read(s); n != len(longstring) || err != nil {
		t.Error("Failed reading from tempfile, n, err = ", n, err)
	}
	if err = rdr.Close(); err != nil {
		t.Error("failed on close of reader")
	}
	if err := fp.Close(); err == nil {
		t.Error("file should already be closed")
	}
}
