package packet

import (
	"encoding/binary"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
)

// Writer builds a replay frame. All multi-byte writes are little-endian.
type Writer struct {
	buf []byte
}

func NewWriter() *Writer {
	return &Writer{buf: make([]byte, 0, 64)}
}

func NewWriterWithOpcode(opcode byte) *Writer {
	w := NewWriter()
	w.WriteC(opcode)
	return w
}

// Reset empties the writer and keeps its buffer.
func (w *Writer) Reset() {
	w.buf = w.buf[:0]
}

func (w *Writer) WriteC(v byte) {
	w.buf = append(w.buf, v)
}

// WriteBool writes 1 for true and 0 for false.
func (w *Writer) WriteBool(v bool) {
	if v {
		w.WriteC(1)
	} else {
		w.WriteC(0)
	}
}

func (w *Writer) WriteH(v uint16) {
	w.buf = binary.LittleEndian.AppendUint16(w.buf, v)
}

func (w *Writer) WriteD(v int32) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, uint32(v))
}

// WriteInts writes each value as WriteD does, without a count.
func (w *Writer) WriteInts(vs []int32) {
	for _, v := range vs {
		w.WriteD(v)
	}
}

// WriteS writes a null-terminated UTF-8 string. Embedded nulls are dropped.
func (w *Writer) WriteS(s string) {
	raw := []byte(s)
	if !utf8.Valid(raw) {
		if enc, err := unicode.UTF8.NewEncoder().Bytes(raw); err == nil {
			raw = enc
		}
	}
	for _, c := range raw {
		if c != 0 {
			w.buf = append(w.buf, c)
		}
	}
	w.buf = append(w.buf, 0)
}

// Bytes returns the frame content.
func (w *Writer) Bytes() []byte {
	return w.buf
}

func (w *Writer) Len() int {
	return len(w.buf)
}
