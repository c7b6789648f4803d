package server

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/danmuck/specter/internal/phantom"
	"github.com/danmuck/specter/internal/protocol/packet"
	"github.com/rs/zerolog/log"
)

var (
	ErrUnknownPlayer        = errors.New("server: unknown player")
	ErrUnexpectedPacket     = errors.New("server: unexpected packet")
	ErrPhaseOrder           = errors.New("server: invalid phase transition")
	ErrProtocolMismatch     = errors.New("server: incompatible protocol")
	ErrVerificationRequired = errors.New("server: client verification required")
	ErrNotSpawned           = errors.New("server: player not spawned")
	ErrUnknownForm          = errors.New("server: unknown form")
	ErrNoTransport          = errors.New("server: no transport attached")
	ErrInvalidTickInterval  = errors.New("server: invalid tick interval")
)

// DefaultProtocol is the protocol version served unless configured otherwise.
const DefaultProtocol int32 = 291

// Phase describes one player's position in the connection state machine.
type Phase string

const (
	PhaseConnecting Phase = "connecting"
	PhaseLoggedIn   Phase = "logged_in"
	PhaseSpawned    Phase = "spawned"
	PhaseRespawning Phase = "respawning"
	PhaseClosed     Phase = "closed"
)

// Config configures the reference host.
type Config struct {
	ProtocolVersion int32
	WorldName       string
	Spawn           packet.Vec3
	MaxHealth       int32
	MaxChunkRadius  int32
	TickInterval    time.Duration
	HeartbeatTicks  uint64
}

func DefaultConfig() Config {
	return Config{
		ProtocolVersion: DefaultProtocol,
		WorldName:       "specter",
		Spawn:           packet.Vec3{X: 0, Y: 64, Z: 0},
		MaxHealth:       20,
		MaxChunkRadius:  12,
		TickInterval:    50 * time.Millisecond,
		HeartbeatTicks:  200,
	}
}

// Transport carries server-originated packets to a connected session.
// *phantom.Interface is the transport for simulated sessions.
type Transport interface {
	PutPacket(s *phantom.Session, pk packet.Packet, needAck bool) (int, bool, error)
	Close(s *phantom.Session, reason string)
}

// ReceiveListener observes packets arriving from a session before they are
// handled. Returning true cancels handling.
type ReceiveListener func(s *phantom.Session, pk packet.Packet) bool

type player struct {
	session  *phantom.Session
	phase    Phase
	health   int32
	radius   int32
	position packet.Vec3
	yaw      float32
	joinedAt time.Time
	forms    map[uint32]string
}

// PlayerInfo is a point-in-time view of one connected player.
type PlayerInfo struct {
	Name         string      `json:"name"`
	EntityID     uint64      `json:"entity_id"`
	Phase        Phase       `json:"phase"`
	Health       int32       `json:"health"`
	ChunkRadius  int32       `json:"chunk_radius"`
	Position     packet.Vec3 `json:"position"`
	Yaw          float32     `json:"yaw"`
	PendingForms int         `json:"pending_forms"`
	JoinedAt     time.Time   `json:"joined_at"`
}

// ChatLine is one chat message received from a player.
type ChatLine struct {
	From    string    `json:"from"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// FormResponse is a player's answer to a form sent with SendForm.
type FormResponse struct {
	Player string    `json:"player"`
	FormID uint32    `json:"form_id"`
	Data   string    `json:"data"`
	At     time.Time `json:"at"`
}

// Server is an in-process game host. It implements phantom.Facility and
// drives each connected session through login, spawn and respawn.
//
// mu is never held while sending: the transport may re-enter HandleInbound
// synchronously.
type Server struct {
	cfg     Config
	started time.Time
	tick    atomic.Uint64

	mu           sync.RWMutex
	transport    Transport
	players      map[string]*player
	listeners    []ReceiveListener
	nextEntityID uint64
	nextFormID   uint32
	chat         []ChatLine
	responses    []FormResponse
}

var _ phantom.Facility = (*Server)(nil)
var _ Transport = (*phantom.Interface)(nil)

func New(cfg Config) *Server {
	if cfg.ProtocolVersion == 0 {
		cfg.ProtocolVersion = DefaultProtocol
	}
	if cfg.MaxHealth <= 0 {
		cfg.MaxHealth = 20
	}
	if cfg.MaxChunkRadius <= 0 {
		cfg.MaxChunkRadius = phantom.ChunkRadius
	}
	return &Server{
		cfg:          cfg,
		started:      time.Now(),
		players:      make(map[string]*player),
		nextEntityID: 1,
		nextFormID:   1,
	}
}

// Attach sets the transport used for server-originated packets.
func (srv *Server) Attach(t Transport) {
	srv.mu.Lock()
	defer srv.mu.Unlock()
	srv.transport = t
}

// OnReceive adds a listener run for every inbound packet.
func (srv *Server) OnReceive(fn ReceiveListener) {
	if fn == nil {
		return
	}
	srv.mu.Lock()
	defer srv.mu.Unlock()
	srv.listeners = append(srv.listeners, fn)
}

func (srv *Server) ProtocolVersion() int32 {
	return srv.cfg.ProtocolVersion
}

func (srv *Server) LookupPlayer(name string) (*phantom.Session, bool) {
	srv.mu.RLock()
	defer srv.mu.RUnlock()
	p, ok := srv.players[name]
	if !ok {
		return nil, false
	}
	return p.session, true
}

// RegisterPlayer assigns s a runtime entity id and places it at the spawn
// point in the connecting phase.
func (srv *Server) RegisterPlayer(s *phantom.Session) {
	srv.mu.Lock()
	id := srv.nextEntityID
	srv.nextEntityID++
	s.SetEntityID(id)
	srv.players[s.Name()] = &player{
		session:  s,
		phase:    PhaseConnecting,
		health:   srv.cfg.MaxHealth,
		position: srv.cfg.Spawn,
		joinedAt: time.Now(),
		forms:    make(map[uint32]string),
	}
	srv.mu.Unlock()
	log.Info().Str("player", s.Name()).Uint64("entity_id", id).Msg("player connected")
}

func (srv *Server) UnregisterPlayer(s *phantom.Session, reason string) {
	srv.mu.Lock()
	p, ok := srv.players[s.Name()]
	if ok && p.session == s {
		p.phase = PhaseClosed
		delete(srv.players, s.Name())
	}
	srv.mu.Unlock()
	if ok {
		log.Info().Str("player", s.Name()).Str("reason", reason).Msg("player disconnected")
	}
}

// DispatchReceive runs every receive listener in registration order.
// All listeners run even after one cancels.
func (srv *Server) DispatchReceive(s *phantom.Session, pk packet.Packet) bool {
	srv.mu.RLock()
	listeners := make([]ReceiveListener, len(srv.listeners))
	copy(listeners, srv.listeners)
	srv.mu.RUnlock()

	cancelled := false
	for _, fn := range listeners {
		if fn(s, pk) {
			cancelled = true
		}
	}
	return cancelled
}

// Players lists connected players ordered by name.
func (srv *Server) Players() []PlayerInfo {
	srv.mu.RLock()
	out := make([]PlayerInfo, 0, len(srv.players))
	for _, p := range srv.players {
		out = append(out, p.info())
	}
	srv.mu.RUnlock()
	sort.Slice(out, func(a, b int) bool {
		return out[a].Name < out[b].Name
	})
	return out
}

// Player returns a view of the player named name.
func (srv *Server) Player(name string) (PlayerInfo, bool) {
	srv.mu.RLock()
	defer srv.mu.RUnlock()
	p, ok := srv.players[name]
	if !ok {
		return PlayerInfo{}, false
	}
	return p.info(), true
}

// Chat returns the received chat log, oldest first.
func (srv *Server) Chat() []ChatLine {
	srv.mu.RLock()
	defer srv.mu.RUnlock()
	out := make([]ChatLine, len(srv.chat))
	copy(out, srv.chat)
	return out
}

// FormResponses returns answered forms, optionally filtered by player.
func (srv *Server) FormResponses(name string) []FormResponse {
	srv.mu.RLock()
	defer srv.mu.RUnlock()
	out := make([]FormResponse, 0, len(srv.responses))
	for _, r := range srv.responses {
		if name == "" || r.Player == name {
			out = append(out, r)
		}
	}
	return out
}

// Uptime is the time since the server was constructed.
func (srv *Server) Uptime() time.Duration {
	return time.Since(srv.started)
}

func (p *player) info() PlayerInfo {
	return PlayerInfo{
		Name:         p.session.Name(),
		EntityID:     p.session.EntityID(),
		Phase:        p.phase,
		Health:       p.health,
		ChunkRadius:  p.radius,
		Position:     p.position,
		Yaw:          p.yaw,
		PendingForms: len(p.forms),
		JoinedAt:     p.joinedAt,
	}
}

// send delivers pk to s through the attached transport. Callers must not
// hold mu.
func (srv *Server) send(s *phantom.Session, pk packet.Packet) error {
	srv.mu.RLock()
	t := srv.transport
	srv.mu.RUnlock()
	if t == nil {
		return ErrNoTransport
	}
	if _, _, err := t.PutPacket(s, pk, false); err != nil {
		return fmt.Errorf("send %s to %q: %w", packet.Name(pk.ID()), s.Name(), err)
	}
	return nil
}

func (srv *Server) disconnect(s *phantom.Session, reason string) {
	srv.mu.RLock()
	t := srv.transport
	srv.mu.RUnlock()
	if t != nil {
		t.Close(s, reason)
	}
}

// lookup returns the live player record for s. Callers hold mu.
func (srv *Server) lookup(s *phantom.Session) (*player, error) {
	p, ok := srv.players[s.Name()]
	if !ok || p.session != s {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPlayer, s.Name())
	}
	return p, nil
}

func (srv *Server) byName(name string) (*player, error) {
	p, ok := srv.players[strings.TrimSpace(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPlayer, name)
	}
	return p, nil
}

func phaseError(from, to Phase) error {
	return fmt.Errorf("%w: %s -> %s", ErrPhaseOrder, from, to)
}
