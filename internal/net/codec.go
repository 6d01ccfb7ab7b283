package net

import (
	"encoding/binary"
	"fmt"
	"io"
)

const (
	// FrameHeaderSize is the u16 little endian length that starts every
	// frame. The length counts the header itself.
	FrameHeaderSize = 2
	// MaxFramePayload is the largest payload a frame can carry.
	MaxFramePayload = 1<<16 - 1 - FrameHeaderSize
)

// ReadFrame reads one replay frame from r and returns its payload. A clean
// end of stream between frames returns an error wrapping io.EOF; a frame
// cut short wraps io.ErrUnexpectedEOF.
func ReadFrame(r io.Reader) ([]byte, error) {
	var header [FrameHeaderSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, fmt.Errorf("read frame header: %w", err)
	}

	totalLen := int(binary.LittleEndian.Uint16(header[:]))
	payloadLen := totalLen - FrameHeaderSize
	if payloadLen <= 0 {
		return nil, fmt.Errorf("invalid frame length: %d", totalLen)
	}

	payload := make([]byte, payloadLen)
	if _, err := io.ReadFull(r, payload); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, fmt.Errorf("read frame payload (%d bytes): %w", payloadLen, err)
	}
	return payload, nil
}

// AppendFrame appends the framed payload to dst.
func AppendFrame(dst, payload []byte) ([]byte, error) {
	if len(payload) == 0 || len(payload) > MaxFramePayload {
		return dst, fmt.Errorf("frame payload of %d bytes", len(payload))
	}
	dst = binary.LittleEndian.AppendUint16(dst, uint16(len(payload)+FrameHeaderSize))
	return append(dst, payload...), nil
}

// WriteFrame writes one replay frame to w in a single Write.
func WriteFrame(w io.Writer, payload []byte) error {
	frame, err := AppendFrame(make([]byte, 0, FrameHeaderSize+len(payload)), payload)
	if err != nil {
		return err
	}
	if _, err := w.Write(frame); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}
