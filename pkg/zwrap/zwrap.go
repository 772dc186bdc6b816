// Package zwrap takes a file pointer and optionally wraps it so upon
// calling Close, the decompressor will be closed, followed by the
// underlying file.
// MMTF files from the PDB are usually served gzipped, so every reader
// in this module goes through here.
package zwrap

import (
	"bufio"
	"bytes"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
)

var magic = []byte{0x1f, 0x8b}

// IsGzip says if b starts with the gzip magic number.
func IsGzip(b []byte) bool { return bytes.HasPrefix(b, magic) }

type FpGzip struct { // This is what we return.
	fp   io.Closer
	rdr  io.Reader // what we read from, maybe buffered
	zrdr *gzip.Reader
}

// Close closes the decompressor, then the underlying backing readCloser.
// It should work if the source is a file or an http stream.
func (fc *FpGzip) Close() error {
	var err error
	if fc.zrdr != nil {
		err = fc.zrdr.Close()
	}
	if e := fc.fp.Close(); e != nil {
		if err != nil {
			return errors.Wrap(e, err.Error())
		}
		return e
	}
	return err
}

// Read makes sure we read from the compressed stream and
// not the underlying file stream.
func (fc *FpGzip) Read(p []byte) (int, error) {
	if fc.zrdr != nil {
		return fc.zrdr.Read(p)
	}
	return fc.rdr.Read(p)
}

// Compressed says if we are reading through the decompressor.
func (fc *FpGzip) Compressed() bool { return fc.zrdr != nil }

// Wrap takes a source like a file pointer or http stream and wraps it
// so the correct Close and Read will be called. It fails if the source
// is not gzipped.
func Wrap(fp io.ReadCloser) (*FpGzip, error) {
	zrdr, err := gzip.NewReader(fp)
	if err != nil {
		return nil, errors.Wrap(err, "zwrap")
	}
	return &FpGzip{fp: fp, rdr: fp, zrdr: zrdr}, nil
}

// WrapMaybe looks at the first bytes of the stream and only puts a
// decompressor in front if they are the gzip magic number. It does not
// need to seek, so it is happy with pipes and http bodies.
func WrapMaybe(fp io.ReadCloser) (*FpGzip, error) {
	br := bufio.NewReader(fp)
	head, err := br.Peek(len(magic))
	if err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "zwrap peeking")
	}
	out := &FpGzip{fp: fp, rdr: br}
	if !IsGzip(head) {
		return out, nil
	}
	if out.zrdr, err = gzip.NewReader(br); err != nil {
		return nil, errors.Wrap(err, "zwrap")
	}
	return out, nil
}

// Gunzip decompresses a complete buffer. If b is not gzipped, it is
// returned unchanged.
func Gunzip(b []byte) ([]byte, error) {
	if !IsGzip(b) {
		return b, nil
	}
	zrdr, err := gzip.NewReader(bytes.NewReader(b))
	if err != nil {
		return nil, errors.Wrap(err, "zwrap")
	}
	defer zrdr.Close()
	out, err := io.ReadAll(zrdr)
	if err != nil {
		return nil, errors.Wrap(err, "zwrap decompressing")
	}
	return out, nil
}

// a fakecloser is a wrapper around a io.Writer which turns it into
// a WriteCloser.
type fakecloser struct{ io.Writer }

func (fakecloser) Close() error { return nil }

// Writer gives a writer which compresses if compress is set. Closing it
// flushes the compressor, but does not close w.
func Writer(w io.Writer, compress bool) io.WriteCloser {
	if !compress {
		return fakecloser{w}
	}
	return gzip.NewWriter(w)
}
