package server

import (
	"fmt"

	"github.com/danmuck/specter/internal/protocol/packet"
	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"
)

// Damage lowers a spawned player's health, floored at zero. A player brought
// to zero health enters the respawning phase and waits for a ClientReady
// respawn.
func (srv *Server) Damage(name string, amount int32) (int32, error) {
	srv.mu.Lock()
	pl, err := srv.byName(name)
	if err != nil {
		srv.mu.Unlock()
		return 0, err
	}
	if pl.phase != PhaseSpawned {
		from := pl.phase
		srv.mu.Unlock()
		return 0, fmt.Errorf("%w: %s", ErrNotSpawned, from)
	}
	pl.health -= amount
	if pl.health < 0 {
		pl.health = 0
	}
	if pl.health > srv.cfg.MaxHealth {
		pl.health = srv.cfg.MaxHealth
	}
	health := pl.health
	died := health == 0
	if died {
		pl.phase = PhaseRespawning
	}
	s := pl.session
	srv.mu.Unlock()

	if died {
		s.SetAlive(false)
		log.Info().Str("player", s.Name()).Msg("player died")
	}
	return health, srv.send(s, &packet.SetHealth{Health: health})
}

// Teleport moves a spawned player and waits for the client to confirm the
// forced position.
func (srv *Server) Teleport(name string, to packet.Vec3) error {
	srv.mu.Lock()
	pl, err := srv.byName(name)
	if err != nil {
		srv.mu.Unlock()
		return err
	}
	if pl.phase != PhaseSpawned {
		from := pl.phase
		srv.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotSpawned, from)
	}
	pl.position = to
	yaw := pl.yaw
	s := pl.session
	srv.mu.Unlock()

	s.SetPendingForcedMovement(true)
	return srv.send(s, &packet.MovePlayer{
		EntityRuntimeID: s.EntityID(),
		Position:        to,
		Yaw:             yaw,
		HeadYaw:         yaw,
		Mode:            packet.MoveModeTeleport,
	})
}

// SendMessage sends a raw server message to one player.
func (srv *Server) SendMessage(name, message string) error {
	srv.mu.RLock()
	pl, err := srv.byName(name)
	srv.mu.RUnlock()
	if err != nil {
		return err
	}
	return srv.send(pl.session, &packet.Text{Type: packet.TextRaw, Message: message})
}

// SetTitle shows text as the player's title.
func (srv *Server) SetTitle(name, text string) error {
	srv.mu.RLock()
	pl, err := srv.byName(name)
	srv.mu.RUnlock()
	if err != nil {
		return err
	}
	return srv.send(pl.session, &packet.SetTitle{Type: packet.TitleTitle, Text: text})
}

// SendForm sends a JSON form description and returns the form id the
// player's response will carry.
func (srv *Server) SendForm(name, data string) (uint32, error) {
	if !gjson.Valid(data) {
		return 0, fmt.Errorf("%w: form data is not valid json", ErrUnexpectedPacket)
	}
	srv.mu.Lock()
	pl, err := srv.byName(name)
	if err != nil {
		srv.mu.Unlock()
		return 0, err
	}
	id := srv.nextFormID
	srv.nextFormID++
	pl.forms[id] = data
	s := pl.session
	srv.mu.Unlock()

	return id, srv.send(s, &packet.ModalFormRequest{FormID: id, FormData: data})
}

// Kick sends a disconnect and closes the player's session.
func (srv *Server) Kick(name, reason string) error {
	srv.mu.RLock()
	pl, err := srv.byName(name)
	srv.mu.RUnlock()
	if err != nil {
		return err
	}
	s := pl.session
	if err := srv.send(s, &packet.Disconnect{Reason: reason}); err != nil {
		return err
	}
	srv.disconnect(s, reason)
	return nil
}
