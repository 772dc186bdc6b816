// Package mmtferr has the error kinds shared by the codec and the
// structure model.
// There are two kinds that matter. A DecodeError says the input was
// broken (truncated, unknown codec, missing required entry ...). An
// EncodeError says the model we were asked to write is not consistent.
// Neither can be recovered from within the call that produced it.
package mmtferr

import (
	"strconv"
)

const maxMsgLen = 70

// DecodeError is returned when bytes or a msgpack document cannot be
// turned into a model.
type DecodeError struct {
	Key  string // map entry or array name being decoded, may be empty
	Desc string // what went wrong
	Pos  int    // byte offset into a binary block, -1 if unknown
	Err  error  // lower level cause, may be nil
}

// EncodeError is returned when a model cannot be written.
type EncodeError struct {
	Key  string
	Desc string
	Err  error
}

// TypeError says a value was present but is not of the requested type.
type TypeError struct {
	Key  string
	Want string
	Got  string
}

// NewDecode is a shortcut for an error with no position.
func NewDecode(key, desc string) *DecodeError {
	return &DecodeError{Key: key, Desc: desc, Pos: -1}
}

// NewDecodeAt records the offset in the block where we gave up.
func NewDecodeAt(key, desc string, pos int) *DecodeError {
	return &DecodeError{Key: key, Desc: desc, Pos: pos}
}

// WrapDecode attaches a cause.
func WrapDecode(err error, key, desc string) *DecodeError {
	return &DecodeError{Key: key, Desc: desc, Pos: -1, Err: err}
}

// NewEncode is a shortcut for an error with no cause.
func NewEncode(key, desc string) *EncodeError {
	return &EncodeError{Key: key, Desc: desc}
}

// WrapEncode attaches a cause.
func WrapEncode(err error, key, desc string) *EncodeError {
	return &EncodeError{Key: key, Desc: desc, Err: err}
}

// firstPart stops very long descriptions from lower layers from
// swamping the message. The whole cause is still there for Unwrap.
func firstPart(s string) string {
	if len(s) > maxMsgLen {
		return s[:maxMsgLen] + "..."
	}
	return s
}

func (e *DecodeError) Error() string {
	errmsg := "mmtf decode"
	if e.Key != "" {
		errmsg += " " + e.Key
	}
	if e.Pos >= 0 {
		errmsg += " at byte " + strconv.Itoa(e.Pos)
	}
	errmsg += ": " + e.Desc
	if e.Err != nil {
		errmsg += ": " + firstPart(e.Err.Error())
	}
	return errmsg
}

func (e *DecodeError) Unwrap() error { return e.Err }

func (e *EncodeError) Error() string {
	errmsg := "mmtf encode"
	if e.Key != "" {
		errmsg += " " + e.Key
	}
	errmsg += ": " + e.Desc
	if e.Err != nil {
		errmsg += ": " + firstPart(e.Err.Error())
	}
	return errmsg
}

func (e *EncodeError) Unwrap() error { return e.Err }

func (e *TypeError) Error() string {
	return "mmtf type mismatch for " + e.Key + ": want " + e.Want + ", got " + e.Got
}
