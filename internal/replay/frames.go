package replay

import (
	"fmt"

	"github.com/ddnetgo/predict/internal/gamecore"
	"github.com/ddnetgo/predict/internal/net/packet"
	"github.com/ddnetgo/predict/internal/protocol"
)

// Frame opcodes. A replay is a sequence of frames, each starting with one
// of these.
const (
	OpMap           byte = 1 // [S map name]
	OpSnapshotBegin byte = 2 // [D tick][D local id][teams]
	OpCharacter     byte = 3 // [D id][D game team][C has ext][item][ext item]
	OpObject        byte = 4 // [C has ex][item][ex item]
	OpSnapshotEnd   byte = 5
	OpInput         byte = 6 // [D id][C direct][input item]
	OpTick          byte = 7 // [D tick]
)

// EncodeMap starts a replay on map name.
func EncodeMap(name string) []byte {
	w := packet.NewWriterWithOpcode(OpMap)
	w.WriteS(name)
	return w.Bytes()
}

// EncodeSnapshotBegin opens the snapshot of tick.
func EncodeSnapshotBegin(tick, localID int, teams *gamecore.Teams) []byte {
	w := packet.NewWriterWithOpcode(OpSnapshotBegin)
	w.WriteD(int32(tick))
	w.WriteD(int32(localID))
	writeTeams(w, teams)
	return w.Bytes()
}

// EncodeCharacter writes one character of the open snapshot. ext may be nil.
func EncodeCharacter(id, gameTeam int, obj *protocol.Character, ext *protocol.DDNetCharacter) []byte {
	w := packet.NewWriterWithOpcode(OpCharacter)
	w.WriteD(int32(id))
	w.WriteD(int32(gameTeam))
	w.WriteBool(ext != nil)
	protocol.WriteItem(w, protocol.NewItem(id, obj))
	if ext != nil {
		protocol.WriteItem(w, protocol.NewItem(id, ext))
	}
	return w.Bytes()
}

// EncodeObject writes one object of the open snapshot. ex may be nil.
func EncodeObject(id int, obj protocol.Object, ex *protocol.EntityEx) []byte {
	w := packet.NewWriterWithOpcode(OpObject)
	w.WriteBool(ex != nil)
	protocol.WriteItem(w, protocol.NewItem(id, obj))
	if ex != nil {
		protocol.WriteItem(w, protocol.NewItem(id, ex))
	}
	return w.Bytes()
}

func EncodeSnapshotEnd() []byte {
	return packet.NewWriterWithOpcode(OpSnapshotEnd).Bytes()
}

// EncodeInput queues the input of client id for the next predicted tick.
// Direct inputs also fire weapons as they arrive.
func EncodeInput(id int, in *protocol.PlayerInput, direct bool) []byte {
	w := packet.NewWriterWithOpcode(OpInput)
	w.WriteD(int32(id))
	w.WriteBool(direct)
	protocol.WriteItem(w, protocol.NewItem(id, in))
	return w.Bytes()
}

// EncodeTick asks for prediction up to tick.
func EncodeTick(tick int) []byte {
	w := packet.NewWriterWithOpcode(OpTick)
	w.WriteD(int32(tick))
	return w.Bytes()
}

// Teams are written as one team byte per client, one solo byte per client
// and the ddrace16 flag.
func writeTeams(w *packet.Writer, teams *gamecore.Teams) {
	for id := 0; id < protocol.MaxClients; id++ {
		w.WriteC(byte(teams.Team(id)))
	}
	for id := 0; id < protocol.MaxClients; id++ {
		w.WriteBool(teams.Solo(id))
	}
	w.WriteBool(teams.IsDDRace16)
}

func readTeams(r *packet.Reader) (gamecore.Teams, error) {
	var teams gamecore.Teams
	if err := r.Need(2*protocol.MaxClients+1, "teams"); err != nil {
		return teams, err
	}
	for id := 0; id < protocol.MaxClients; id++ {
		teams.SetTeam(id, int(r.ReadC()))
	}
	for id := 0; id < protocol.MaxClients; id++ {
		teams.SetSolo(id, r.ReadBool())
	}
	teams.IsDDRace16 = r.ReadBool()
	return teams, nil
}

// readObject reads one item and decodes it as the expected type.
func readObject[T protocol.Object](r *packet.Reader) (T, int, error) {
	var zero T
	it, err := protocol.ReadItem(r)
	if err != nil {
		return zero, 0, err
	}
	o, err := it.Decode()
	if err != nil {
		return zero, 0, err
	}
	typed, ok := o.(T)
	if !ok {
		return zero, 0, fmt.Errorf("item %d: unexpected object type %d", it.ID, it.Type)
	}
	return typed, int(it.ID), nil
}
