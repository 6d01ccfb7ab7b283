package replay

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/ddnetgo/predict/internal/gamecore"
	"github.com/ddnetgo/predict/internal/net/packet"
	"github.com/ddnetgo/predict/internal/protocol"
)

// NewRegistry returns a registry with every replay frame handler.
func NewRegistry(log *zap.Logger) *packet.Registry {
	reg := packet.NewRegistry(log)
	RegisterAll(reg)
	return reg
}

// RegisterAll registers the replay frame handlers. Handlers expect a
// *Session target.
func RegisterAll(reg *packet.Registry) {
	reg.Register(OpMap,
		[]packet.Stage{packet.StageIdle},
		func(sess any, r *packet.Reader) error {
			return HandleMap(sess.(*Session), r)
		},
	)

	reg.Register(OpSnapshotBegin,
		[]packet.Stage{packet.StageMapLoaded},
		func(sess any, r *packet.Reader) error {
			return HandleSnapshotBegin(sess.(*Session), r)
		},
	)

	inSnapshot := []packet.Stage{packet.StageInSnapshot}

	reg.Register(OpCharacter, inSnapshot,
		func(sess any, r *packet.Reader) error {
			return HandleCharacter(sess.(*Session), r)
		},
	)
	reg.Register(OpObject, inSnapshot,
		func(sess any, r *packet.Reader) error {
			return HandleObject(sess.(*Session), r)
		},
	)
	reg.Register(OpSnapshotEnd, inSnapshot,
		func(sess any, _ *packet.Reader) error {
			sess.(*Session).EndSnapshot()
			return nil
		},
	)

	reg.Register(OpInput,
		[]packet.Stage{packet.StageMapLoaded},
		func(sess any, r *packet.Reader) error {
			return HandleInput(sess.(*Session), r)
		},
	)
	reg.Register(OpTick,
		[]packet.Stage{packet.StageMapLoaded},
		func(sess any, r *packet.Reader) error {
			return HandleTick(sess.(*Session), r)
		},
	)
}

// HandleMap processes OpMap.
func HandleMap(s *Session, r *packet.Reader) error {
	name := r.ReadS()
	if name == "" {
		return fmt.Errorf("map name is empty")
	}
	return s.LoadMap(name)
}

// HandleSnapshotBegin processes OpSnapshotBegin.
func HandleSnapshotBegin(s *Session, r *packet.Reader) error {
	if err := r.Need(8, "snapshot header"); err != nil {
		return err
	}
	tick := int(r.ReadD())
	localID := int(r.ReadD())
	teams, err := readTeams(r)
	if err != nil {
		return err
	}
	if tick < 0 {
		return fmt.Errorf("negative snapshot tick %d", tick)
	}
	s.BeginSnapshot(tick, localID, teams)
	return nil
}

// HandleCharacter processes OpCharacter.
func HandleCharacter(s *Session, r *packet.Reader) error {
	if err := r.Need(9, "character header"); err != nil {
		return err
	}
	id := int(r.ReadD())
	gameTeam := int(r.ReadD())
	hasExt := r.ReadBool()

	obj, _, err := readObject[*protocol.Character](r)
	if err != nil {
		return fmt.Errorf("character %d: %w", id, err)
	}
	var ext *protocol.DDNetCharacter
	if hasExt {
		if ext, _, err = readObject[*protocol.DDNetCharacter](r); err != nil {
			return fmt.Errorf("character %d extended: %w", id, err)
		}
	}
	s.AddCharacter(id, gameTeam, obj, ext)
	return nil
}

// HandleObject processes OpObject.
func HandleObject(s *Session, r *packet.Reader) error {
	if err := r.Need(1, "object header"); err != nil {
		return err
	}
	hasEx := r.ReadBool()

	obj, id, err := readObject[protocol.Object](r)
	if err != nil {
		return err
	}
	var ex *protocol.EntityEx
	if hasEx {
		if ex, _, err = readObject[*protocol.EntityEx](r); err != nil {
			return fmt.Errorf("object %d extension: %w", id, err)
		}
	}
	s.AddObject(id, obj, ex)
	return nil
}

// HandleInput processes OpInput.
func HandleInput(s *Session, r *packet.Reader) error {
	if err := r.Need(5, "input header"); err != nil {
		return err
	}
	id := int(r.ReadD())
	direct := r.ReadBool()
	in, _, err := readObject[*protocol.PlayerInput](r)
	if err != nil {
		return fmt.Errorf("input %d: %w", id, err)
	}
	s.QueueInput(id, gamecore.InputFromNet(in), direct)
	return nil
}

// HandleTick processes OpTick.
func HandleTick(s *Session, r *packet.Reader) error {
	if err := r.Need(4, "tick"); err != nil {
		return err
	}
	s.RequestTick(int(r.ReadD()))
	return nil
}
