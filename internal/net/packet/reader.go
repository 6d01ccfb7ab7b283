package packet

import (
	"encoding/binary"
	"errors"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
)

// ErrShort is recorded when a read runs past the end of the frame.
var ErrShort = errors.New("read past end of frame")

// Reader reads replay frame fields. Byte 0 is always the opcode. Reads past
// the end return zero values and leave ErrShort in Err.
type Reader struct {
	data  []byte
	off   int
	short bool
}

func NewReader(data []byte) *Reader {
	return &Reader{data: data, off: 1} // skip opcode byte
}

func (r *Reader) Opcode() byte {
	if len(r.data) == 0 {
		return 0
	}
	return r.data[0]
}

// Need returns an error naming what when fewer than n bytes are left.
func (r *Reader) Need(n int, what string) error {
	if left := r.Remaining(); left < n {
		return fmt.Errorf("%s truncated: need %d bytes, have %d", what, n, left)
	}
	return nil
}

// Err returns ErrShort if any read ran past the end of the frame.
func (r *Reader) Err() error {
	if r.short {
		return fmt.Errorf("at offset %d of %d: %w", r.off, len(r.data), ErrShort)
	}
	return nil
}

func (r *Reader) take(n int) []byte {
	if r.off+n > len(r.data) {
		r.short = true
		r.off = len(r.data)
		return nil
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b
}

// ReadC reads 1 unsigned byte.
func (r *Reader) ReadC() byte {
	b := r.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

// ReadBool reads 1 byte; any nonzero value is true.
func (r *Reader) ReadBool() bool {
	return r.ReadC() != 0
}

// ReadH reads 2 bytes as little-endian uint16.
func (r *Reader) ReadH() uint16 {
	b := r.take(2)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

// ReadD reads 4 bytes as little-endian int32.
func (r *Reader) ReadD() int32 {
	b := r.take(4)
	if b == nil {
		return 0
	}
	return int32(binary.LittleEndian.Uint32(b))
}

// ReadInts reads n int32 values. It returns nil when the frame holds fewer.
func (r *Reader) ReadInts(n int) []int32 {
	b := r.take(n * 4)
	if b == nil {
		return nil
	}
	out := make([]int32, n)
	for i := range out {
		out[i] = int32(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return out
}

// ReadS reads a null-terminated string. Invalid UTF-8 is replaced with U+FFFD.
func (r *Reader) ReadS() string {
	start := r.off
	for r.off < len(r.data) {
		if r.data[r.off] == 0 {
			raw := r.data[start:r.off]
			r.off++ // skip null terminator
			return sanitizeUTF8(raw)
		}
		r.off++
	}
	return sanitizeUTF8(r.data[start:r.off])
}

func sanitizeUTF8(raw []byte) string {
	if len(raw) == 0 {
		return ""
	}
	if utf8.Valid(raw) {
		return string(raw)
	}
	decoded, err := unicode.UTF8.NewDecoder().Bytes(raw)
	if err != nil {
		return string(raw)
	}
	return string(decoded)
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.data) - r.off
}
