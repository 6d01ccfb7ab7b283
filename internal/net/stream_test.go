package net

import (
	"bytes"
	"io"
	"testing"

	"github.com/pixil98/go-testutil"
	"go.uber.org/zap"
)

func encodeFrames(t *testing.T, payloads ...[]byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	for _, p := range payloads {
		if err := WriteFrame(&buf, p); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	return buf.Bytes()
}

func TestStream_Read(t *testing.T) {
	whole := encodeFrames(t, []byte{1, 'a', 0}, []byte{7, 10, 0, 0, 0})

	tests := map[string]struct {
		raw       []byte
		expFrames int
		expErr    string
	}{
		"clean end": {
			raw:       whole,
			expFrames: 2,
		},
		"empty": {
			raw: nil,
		},
		"cut inside a frame": {
			raw:       whole[:len(whole)-2],
			expFrames: 1,
			expErr:    "read frame payload",
		},
		"bad length": {
			raw:    []byte{1, 0, 9},
			expErr: "invalid frame length: 1",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			s := NewStream(name, io.NopCloser(bytes.NewReader(tt.raw)), 1, zap.NewNop())
			s.Start()

			var got int
			for range s.InQueue {
				got++
			}
			testutil.AssertEqual(t, "frames", got, tt.expFrames)
			testutil.AssertEqual(t, "counted", s.Frames(), int64(tt.expFrames))
			if tt.expErr == "" {
				if err := s.Err(); err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			testutil.AssertErrorContains(t, s.Err(), tt.expErr)
		})
	}
}

func TestWriteFrame_Limits(t *testing.T) {
	var buf bytes.Buffer
	testutil.AssertErrorContains(t, WriteFrame(&buf, nil), "frame payload of 0 bytes")
	testutil.AssertErrorContains(t, WriteFrame(&buf, make([]byte, MaxFramePayload+1)), "frame payload of 65534 bytes")
	testutil.AssertEqual(t, "nothing written", buf.Len(), 0)
}

func TestReadFrame_HeaderOnly(t *testing.T) {
	_, err := ReadFrame(bytes.NewReader([]byte{3, 0}))
	testutil.AssertErrorContains(t, err, "unexpected EOF")
}

func TestAppendFrame(t *testing.T) {
	out, err := AppendFrame([]byte{9}, []byte{7, 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "frame", out, []byte{9, 4, 0, 7, 1})

	payload, err := ReadFrame(bytes.NewReader(out[1:]))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "payload", payload, []byte{7, 1})
}
