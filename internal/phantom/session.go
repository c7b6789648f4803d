package phantom

import (
	"sync/atomic"
	"time"
)

// Session is one simulated client connection. Identity is the display name.
// Flags are written by the host facility and read by the dispatcher, so they
// are atomics.
type Session struct {
	name     string
	address  string
	port     int
	openedAt time.Time

	entityID       atomic.Uint64
	alive          atomic.Bool
	spawned        atomic.Bool
	forcedMovement atomic.Bool
	needsRespawn   atomic.Bool
	chunkRequested atomic.Bool
}

func newSession(name, address string, port int) *Session {
	return &Session{
		name:     name,
		address:  address,
		port:     port,
		openedAt: time.Now(),
	}
}

func (s *Session) Name() string        { return s.name }
func (s *Session) Address() string     { return s.address }
func (s *Session) Port() int           { return s.port }
func (s *Session) OpenedAt() time.Time { return s.openedAt }

// EntityID is the runtime entity id assigned by the host on registration.
func (s *Session) EntityID() uint64      { return s.entityID.Load() }
func (s *Session) SetEntityID(id uint64) { s.entityID.Store(id) }

func (s *Session) Alive() bool     { return s.alive.Load() }
func (s *Session) SetAlive(v bool) { s.alive.Store(v) }

func (s *Session) Spawned() bool     { return s.spawned.Load() }
func (s *Session) SetSpawned(v bool) { s.spawned.Store(v) }

// PendingForcedMovement is set by the host while it waits for the client to
// confirm a server-forced position.
func (s *Session) PendingForcedMovement() bool     { return s.forcedMovement.Load() }
func (s *Session) SetPendingForcedMovement(v bool) { s.forcedMovement.Store(v) }

// NeedsExternalRespawn is raised when the session died with auto-respawn
// disabled; the driver of the phantom decides when to respawn.
func (s *Session) NeedsExternalRespawn() bool { return s.needsRespawn.Load() }

// SessionInfo is a point-in-time view of a registered session.
type SessionInfo struct {
	Name                  string    `json:"name"`
	Address               string    `json:"address"`
	Port                  int       `json:"port"`
	EntityID              uint64    `json:"entity_id"`
	Alive                 bool      `json:"alive"`
	Spawned               bool      `json:"spawned"`
	PendingForcedMovement bool      `json:"pending_forced_movement"`
	NeedsExternalRespawn  bool      `json:"needs_external_respawn"`
	QueuedReplies         int       `json:"queued_replies"`
	PendingAcks           int       `json:"pending_acks"`
	OpenedAt              time.Time `json:"opened_at"`
}

func (s *Session) info(replies, acks int) SessionInfo {
	return SessionInfo{
		Name:                  s.name,
		Address:               s.address,
		Port:                  s.port,
		EntityID:              s.EntityID(),
		Alive:                 s.Alive(),
		Spawned:               s.Spawned(),
		PendingForcedMovement: s.PendingForcedMovement(),
		NeedsExternalRespawn:  s.NeedsExternalRespawn(),
		QueuedReplies:         replies,
		PendingAcks:           acks,
		OpenedAt:              s.openedAt,
	}
}
