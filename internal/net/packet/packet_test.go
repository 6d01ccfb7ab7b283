package packet

import (
	"errors"
	"testing"

	"github.com/pixil98/go-testutil"
	"go.uber.org/zap"
)

func TestReaderWriter(t *testing.T) {
	w := NewWriterWithOpcode(9)
	w.WriteC(200)
	w.WriteH(0xbeef)
	w.WriteD(-42)
	w.WriteS("ctf5")
	w.WriteS("")
	w.WriteBool(true)
	w.WriteInts([]int32{7, -7})

	r := NewReader(w.Bytes())
	testutil.AssertEqual(t, "opcode", r.Opcode(), byte(9))
	testutil.AssertEqual(t, "c", r.ReadC(), byte(200))
	testutil.AssertEqual(t, "h", r.ReadH(), uint16(0xbeef))
	testutil.AssertEqual(t, "d", r.ReadD(), int32(-42))
	testutil.AssertEqual(t, "s", r.ReadS(), "ctf5")
	testutil.AssertEqual(t, "empty s", r.ReadS(), "")
	testutil.AssertEqual(t, "bool", r.ReadBool(), true)
	testutil.AssertEqual(t, "ints", r.ReadInts(2), []int32{7, -7})
	testutil.AssertEqual(t, "remaining", r.Remaining(), 0)
	if err := r.Err(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	testutil.AssertEqual(t, "past end", r.ReadD(), int32(0))
	if !errors.Is(r.Err(), ErrShort) {
		t.Fatalf("expected ErrShort, got %v", r.Err())
	}
}

func TestReader_Need(t *testing.T) {
	r := NewReader([]byte{1, 0, 0, 0})
	if err := r.Need(3, "tick"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertErrorContains(t, r.Need(4, "tick"), "tick truncated: need 4 bytes, have 3")
}

func TestWriter_Reset(t *testing.T) {
	w := NewWriterWithOpcode(3)
	w.WriteD(1)
	w.Reset()
	w.WriteC(5)
	testutil.AssertEqual(t, "bytes", w.Bytes(), []byte{5})
}

func TestReadS_InvalidUTF8(t *testing.T) {
	r := NewReader([]byte{1, 'a', 0xff, 'b', 0})
	testutil.AssertEqual(t, "sanitized", r.ReadS(), "a�b")
}

func TestRegistry_Dispatch(t *testing.T) {
	errBoom := errors.New("boom")

	tests := map[string]struct {
		stage  Stage
		data   []byte
		fn     HandlerFunc
		expErr string
		expHit bool
	}{
		"allowed": {
			stage:  StageMapLoaded,
			data:   []byte{1, 5},
			expHit: true,
		},
		"unknown opcode is ignored": {
			stage: StageMapLoaded,
			data:  []byte{77},
		},
		"wrong stage": {
			stage:  StageIdle,
			data:   []byte{1},
			expErr: "not allowed in stage Idle",
		},
		"empty": {
			stage:  StageMapLoaded,
			expErr: "empty frame",
		},
		"handler error": {
			stage:  StageMapLoaded,
			data:   []byte{1},
			fn:     func(any, *Reader) error { return errBoom },
			expErr: "opcode 1: boom",
			expHit: false,
		},
		"handler panic": {
			stage:  StageMapLoaded,
			data:   []byte{1},
			fn:     func(any, *Reader) error { panic("bad frame") },
			expErr: "handler panic for opcode 1",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			hit := false
			fn := tt.fn
			if fn == nil {
				fn = func(target any, r *Reader) error {
					hit = true
					return nil
				}
			}
			reg := NewRegistry(zap.NewNop())
			reg.Register(1, []Stage{StageMapLoaded, StageInSnapshot}, fn)

			err := reg.Dispatch(nil, tt.stage, tt.data)
			if tt.expErr != "" {
				testutil.AssertErrorContains(t, err, tt.expErr)
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			testutil.AssertEqual(t, "hit", hit, tt.expHit)
		})
	}
}
