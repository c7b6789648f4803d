package server

import (
	"fmt"
	"time"

	"github.com/danmuck/specter/internal/phantom"
	"github.com/danmuck/specter/internal/protocol/packet"
	"github.com/rs/zerolog/log"
)

// HandleInbound advances the connection state machine for a packet sent by s.
func (srv *Server) HandleInbound(s *phantom.Session, pk packet.Packet) error {
	switch p := pk.(type) {
	case *packet.Login:
		return srv.onLogin(s, p)
	case *packet.ResourcePackClientResponse:
		return srv.onPackResponse(s, p)
	case *packet.RequestChunkRadius:
		return srv.onChunkRadius(s, p)
	case *packet.Respawn:
		return srv.onRespawn(s, p)
	case *packet.MovePlayer:
		return srv.onMove(s, p)
	case *packet.Text:
		return srv.onText(s, p)
	case *packet.ModalFormResponse:
		return srv.onFormResponse(s, p)
	default:
		return fmt.Errorf("%w: %s", ErrUnexpectedPacket, packet.Name(pk.ID()))
	}
}

func (srv *Server) onLogin(s *phantom.Session, p *packet.Login) error {
	srv.mu.Lock()
	pl, err := srv.lookup(s)
	if err != nil {
		srv.mu.Unlock()
		return err
	}
	if pl.phase != PhaseConnecting {
		from := pl.phase
		srv.mu.Unlock()
		return phaseError(from, PhaseLoggedIn)
	}
	want := srv.cfg.ProtocolVersion
	accepted := p.Protocol == want && p.SkipVerification
	if accepted {
		pl.phase = PhaseLoggedIn
	}
	srv.mu.Unlock()

	if p.Protocol != want {
		status := packet.PlayStatusLoginFailedClient
		if p.Protocol > want {
			status = packet.PlayStatusLoginFailedServer
		}
		_ = srv.send(s, &packet.PlayStatus{Status: status})
		srv.disconnect(s, "incompatible protocol")
		return fmt.Errorf("%w: client %d server %d", ErrProtocolMismatch, p.Protocol, want)
	}
	if !p.SkipVerification {
		srv.disconnect(s, "verification unavailable")
		return ErrVerificationRequired
	}

	log.Info().
		Str("player", p.Username).
		Str("client_uuid", p.ClientUUID).
		Int32("protocol", p.Protocol).
		Msg("player logged in")
	if err := srv.send(s, &packet.PlayStatus{Status: packet.PlayStatusLoginSuccess}); err != nil {
		return err
	}
	return srv.send(s, &packet.ResourcePacksInfo{})
}

func (srv *Server) onPackResponse(s *phantom.Session, p *packet.ResourcePackClientResponse) error {
	if p.Status != packet.ResourcePackCompleted {
		log.Debug().Str("player", s.Name()).Uint8("status", p.Status).Msg("resource pack negotiation pending")
		return nil
	}
	srv.mu.RLock()
	pl, err := srv.lookup(s)
	if err != nil {
		srv.mu.RUnlock()
		return err
	}
	phase := pl.phase
	start := &packet.StartGame{
		EntityRuntimeID: s.EntityID(),
		Position:        pl.position,
		Yaw:             pl.yaw,
		WorldName:       srv.cfg.WorldName,
	}
	srv.mu.RUnlock()
	if phase != PhaseLoggedIn {
		return phaseError(phase, PhaseLoggedIn)
	}
	return srv.send(s, start)
}

// onChunkRadius answers with the granted radius and, on first request,
// completes the spawn.
func (srv *Server) onChunkRadius(s *phantom.Session, p *packet.RequestChunkRadius) error {
	srv.mu.Lock()
	pl, err := srv.lookup(s)
	if err != nil {
		srv.mu.Unlock()
		return err
	}
	if pl.phase == PhaseConnecting {
		srv.mu.Unlock()
		return phaseError(PhaseConnecting, PhaseSpawned)
	}
	radius := p.Radius
	if radius > srv.cfg.MaxChunkRadius {
		radius = srv.cfg.MaxChunkRadius
	}
	if radius < 1 {
		radius = 1
	}
	pl.radius = radius
	firstSpawn := pl.phase == PhaseLoggedIn
	if firstSpawn {
		pl.phase = PhaseSpawned
	}
	srv.mu.Unlock()

	if !firstSpawn {
		return srv.send(s, &packet.ChunkRadiusUpdated{Radius: radius})
	}
	s.SetAlive(true)
	s.SetSpawned(true)
	batch, err := packet.NewBatch(
		&packet.ChunkRadiusUpdated{Radius: radius},
		&packet.PlayStatus{Status: packet.PlayStatusPlayerSpawn},
	)
	if err != nil {
		return err
	}
	log.Info().Str("player", s.Name()).Int32("radius", radius).Msg("player spawned")
	return srv.send(s, batch)
}

func (srv *Server) onRespawn(s *phantom.Session, p *packet.Respawn) error {
	if p.State != packet.RespawnClientReady {
		return nil
	}
	srv.mu.Lock()
	pl, err := srv.lookup(s)
	if err != nil {
		srv.mu.Unlock()
		return err
	}
	if pl.phase != PhaseRespawning {
		from := pl.phase
		srv.mu.Unlock()
		return phaseError(from, PhaseSpawned)
	}
	pl.phase = PhaseSpawned
	pl.health = srv.cfg.MaxHealth
	pl.position = srv.cfg.Spawn
	health := pl.health
	spawn := pl.position
	yaw := pl.yaw
	srv.mu.Unlock()

	s.SetAlive(true)
	s.SetPendingForcedMovement(true)
	log.Info().Str("player", s.Name()).Msg("player respawned")
	if err := srv.send(s, &packet.SetHealth{Health: health}); err != nil {
		return err
	}
	return srv.send(s, &packet.MovePlayer{
		EntityRuntimeID: s.EntityID(),
		Position:        spawn,
		Yaw:             yaw,
		HeadYaw:         yaw,
		Mode:            packet.MoveModeReset,
		OnGround:        true,
	})
}

// onMove accepts client movement. Any move from a session with a pending
// forced movement is taken as its confirmation.
func (srv *Server) onMove(s *phantom.Session, p *packet.MovePlayer) error {
	if p.EntityRuntimeID != s.EntityID() {
		return fmt.Errorf("%w: move for entity %d", ErrUnexpectedPacket, p.EntityRuntimeID)
	}
	srv.mu.Lock()
	pl, err := srv.lookup(s)
	if err != nil {
		srv.mu.Unlock()
		return err
	}
	if pl.phase != PhaseSpawned {
		from := pl.phase
		srv.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotSpawned, from)
	}
	pl.position = p.Position
	pl.yaw = p.Yaw
	srv.mu.Unlock()

	if s.PendingForcedMovement() {
		s.SetPendingForcedMovement(false)
		log.Debug().Str("player", s.Name()).Msg("forced movement confirmed")
	}
	return nil
}

// onText records chat and relays it to every spawned player.
func (srv *Server) onText(s *phantom.Session, p *packet.Text) error {
	if p.Type != packet.TextChat {
		return fmt.Errorf("%w: text type %d", ErrUnexpectedPacket, p.Type)
	}
	srv.mu.Lock()
	if _, err := srv.lookup(s); err != nil {
		srv.mu.Unlock()
		return err
	}
	srv.chat = append(srv.chat, ChatLine{From: s.Name(), Message: p.Message, At: time.Now()})
	targets := srv.spawnedLocked()
	srv.mu.Unlock()

	log.Info().Str("player", s.Name()).Msg("<" + s.Name() + "> " + p.Message)
	for _, target := range targets {
		if err := srv.send(target, &packet.Text{Type: packet.TextChat, Source: s.Name(), Message: p.Message}); err != nil {
			log.Warn().Err(err).Str("player", target.Name()).Msg("chat relay failed")
		}
	}
	return nil
}

func (srv *Server) onFormResponse(s *phantom.Session, p *packet.ModalFormResponse) error {
	srv.mu.Lock()
	defer srv.mu.Unlock()
	pl, err := srv.lookup(s)
	if err != nil {
		return err
	}
	if _, ok := pl.forms[p.FormID]; !ok {
		return fmt.Errorf("%w: %d", ErrUnknownForm, p.FormID)
	}
	delete(pl.forms, p.FormID)
	srv.responses = append(srv.responses, FormResponse{
		Player: s.Name(),
		FormID: p.FormID,
		Data:   p.FormData,
		At:     time.Now(),
	})
	log.Info().Str("player", s.Name()).Uint32("form_id", p.FormID).Str("data", p.FormData).Msg("form answered")
	return nil
}

func (srv *Server) spawnedLocked() []*phantom.Session {
	out := make([]*phantom.Session, 0, len(srv.players))
	for _, p := range srv.players {
		if p.phase == PhaseSpawned {
			out = append(out, p.session)
		}
	}
	return out
}
