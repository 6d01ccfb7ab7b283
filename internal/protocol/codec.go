package protocol

import (
	"fmt"

	"github.com/ddnetgo/predict/internal/net/packet"
)

// Item is one snapshot entry: an object type, its id and its int32 payload.
type Item struct {
	Type uint16
	ID   uint16
	Data []int32
}

// Ints flattens an object into its payload.
func Ints(o Object) []int32 {
	f := o.fields()
	out := make([]int32, len(f))
	for i, p := range f {
		out[i] = *p
	}
	return out
}

// Fill copies a payload into o. Objects with optional trailing fields accept
// short payloads; all others require the full layout.
func Fill(o Object, data []int32) error {
	f := o.fields()
	if d, ok := o.(defaulter); ok {
		d.setDefaults()
	} else if len(data) < len(f) {
		return fmt.Errorf("object type %d: got %d fields, want %d", o.ObjType(), len(data), len(f))
	}
	for i := 0; i < len(f) && i < len(data); i++ {
		*f[i] = data[i]
	}
	return nil
}

// Decode turns an item into its typed object.
func (it Item) Decode() (Object, error) {
	o := New(it.Type)
	if o == nil {
		return nil, fmt.Errorf("unknown object type %d", it.Type)
	}
	if err := Fill(o, it.Data); err != nil {
		return nil, err
	}
	return o, nil
}

// NewItem wraps an object for encoding.
func NewItem(id int, o Object) Item {
	return Item{Type: o.ObjType(), ID: uint16(id), Data: Ints(o)}
}

// WriteItem appends an item as [type u16][id u16][n u16][n x int32].
func WriteItem(w *packet.Writer, it Item) {
	w.WriteH(it.Type)
	w.WriteH(it.ID)
	w.WriteH(uint16(len(it.Data)))
	w.WriteInts(it.Data)
}

// ReadItem reads an item written by WriteItem.
func ReadItem(r *packet.Reader) (Item, error) {
	if err := r.Need(6, "item header"); err != nil {
		return Item{}, err
	}
	it := Item{Type: r.ReadH(), ID: r.ReadH()}
	n := int(r.ReadH())
	if err := r.Need(n*4, fmt.Sprintf("item %d/%d", it.Type, it.ID)); err != nil {
		return Item{}, err
	}
	it.Data = r.ReadInts(n)
	return it, nil
}
