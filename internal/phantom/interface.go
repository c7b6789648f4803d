package phantom

import (
	"sort"
	"strings"
	"sync"

	"github.com/danmuck/specter/internal/observability"
	"github.com/danmuck/specter/internal/protocol/packet"
	"github.com/rs/zerolog/log"
)

// Interface is the simulated network interface. It owns every phantom
// session and one reply queue and ack list per session.
//
// One mutex guards the registry and queues. It is never held while calling
// the facility, because the facility re-enters PutPacket synchronously.
type Interface struct {
	cfg      Config
	facility Facility
	onAck    AckFunc

	mu      sync.Mutex
	entries map[string]*entry
}

type entry struct {
	session *Session
	acks    []int
	replies []packet.Packet
}

type Option func(*Interface)

// WithAckFunc replaces the no-op acknowledgment hook.
func WithAckFunc(fn AckFunc) Option {
	return func(i *Interface) {
		if fn != nil {
			i.onAck = fn
		}
	}
}

func New(facility Facility, cfg Config, opts ...Option) *Interface {
	i := &Interface{
		cfg:      cfg,
		facility: facility,
		onAck:    NoopAck,
		entries:  make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// OpenSession registers a phantom under name and drives it through login.
// It returns false without side effects when name is empty or taken.
func (i *Interface) OpenSession(name, address string, port int) (*Session, bool) {
	if strings.TrimSpace(name) == "" {
		return nil, false
	}
	i.mu.Lock()
	if _, ok := i.entries[name]; ok {
		i.mu.Unlock()
		return nil, false
	}
	s := newSession(name, address, port)
	i.entries[name] = &entry{session: s}
	active := len(i.entries)
	i.mu.Unlock()
	observability.SetSessionsActive(active)

	i.facility.RegisterPlayer(s)
	log.Info().
		Str("session", name).
		Str("address", address).
		Int("port", port).
		Msg("phantom session opened")

	i.deliver(s, BuildLogin(name, address, port, i.facility.ProtocolVersion()))
	return s, true
}

// Close deregisters s and discards anything still queued for it.
func (i *Interface) Close(s *Session, reason string) {
	if s == nil {
		return
	}
	i.mu.Lock()
	e, ok := i.entries[s.name]
	if !ok || e.session != s {
		i.mu.Unlock()
		return
	}
	delete(i.entries, s.name)
	dropped := len(e.replies)
	active := len(i.entries)
	i.mu.Unlock()

	observability.SetSessionsActive(active)
	if dropped > 0 {
		observability.RecordRepliesDropped("closed", dropped)
	}
	i.facility.UnregisterPlayer(s, reason)
	log.Info().
		Str("session", s.name).
		Str("reason", reason).
		Int("discarded_replies", dropped).
		Msg("phantom session closed")
}

// Shutdown closes every registered session.
func (i *Interface) Shutdown(reason string) {
	i.mu.Lock()
	sessions := make([]*Session, 0, len(i.entries))
	for _, e := range i.entries {
		sessions = append(sessions, e.session)
	}
	i.mu.Unlock()
	for _, s := range sessions {
		i.Close(s, reason)
	}
}

// QueueReply appends pk to the reply queue of the session named name.
func (i *Interface) QueueReply(name string, pk packet.Packet) bool {
	if pk == nil {
		return false
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	e, ok := i.entries[name]
	if !ok {
		return false
	}
	e.replies = append(e.replies, pk)
	return true
}

// Session returns the registered session named name.
func (i *Interface) Session(name string) (*Session, bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	e, ok := i.entries[name]
	if !ok {
		return nil, false
	}
	return e.session, true
}

// Sessions lists registered sessions ordered by name.
func (i *Interface) Sessions() []SessionInfo {
	i.mu.Lock()
	out := make([]SessionInfo, 0, len(i.entries))
	for _, e := range i.entries {
		out = append(out, e.session.info(len(e.replies), len(e.acks)))
	}
	i.mu.Unlock()
	sort.Slice(out, func(a, b int) bool {
		return out[a].Name < out[b].Name
	})
	return out
}

type flush struct {
	session *Session
	acks    []int
	replies []packet.Packet
}

// Process is the per-tick hook. It flushes every ack list to the ack hook,
// then delivers every reply queue in FIFO order through the inbound path.
// Queues are cleared whether or not delivery happened.
func (i *Interface) Process() {
	i.mu.Lock()
	names := make([]string, 0, len(i.entries))
	for name := range i.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	pending := make([]flush, 0, len(names))
	for _, name := range names {
		e := i.entries[name]
		if len(e.acks) == 0 && len(e.replies) == 0 {
			continue
		}
		pending = append(pending, flush{session: e.session, acks: e.acks, replies: e.replies})
		e.acks = nil
		e.replies = nil
	}
	i.mu.Unlock()

	for _, f := range pending {
		if len(f.acks) > 0 {
			i.onAck(f.session, f.acks)
		}
	}
	for _, f := range pending {
		if len(f.replies) > 0 {
			i.flushReplies(f.session, f.replies)
		}
	}
}

func (i *Interface) flushReplies(s *Session, replies []packet.Packet) {
	player, ok := i.facility.LookupPlayer(s.name)
	if !ok || player != s {
		observability.RecordRepliesDropped("player_missing", len(replies))
		log.Debug().Str("session", s.name).Int("replies", len(replies)).Msg("phantom player missing, replies dropped")
		return
	}
	delivered := 0
	for idx, pk := range replies {
		if !i.registered(s) {
			observability.RecordRepliesDropped("closed", len(replies)-idx)
			break
		}
		i.deliver(s, pk)
		delivered++
	}
	observability.RecordRepliesDelivered(delivered)
}

// deliver feeds pk through the host's normal inbound path, as if it came
// from a connected client.
func (i *Interface) deliver(s *Session, pk packet.Packet) {
	if i.facility.DispatchReceive(s, pk) {
		log.Debug().Str("session", s.name).Str("kind", packet.Name(pk.ID())).Msg("inbound packet cancelled")
		return
	}
	if err := i.facility.HandleInbound(s, pk); err != nil {
		log.Warn().Err(err).Str("session", s.name).Str("kind", packet.Name(pk.ID())).Msg("inbound packet rejected")
	}
}

func (i *Interface) registered(s *Session) bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	e, ok := i.entries[s.name]
	return ok && e.session == s
}

func (i *Interface) enqueue(s *Session, pk packet.Packet) bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	e, ok := i.entries[s.name]
	if !ok || e.session != s {
		return false
	}
	e.replies = append(e.replies, pk)
	return true
}

func (i *Interface) allocateAck(s *Session) (int, bool) {
	i.mu.Lock()
	e, ok := i.entries[s.name]
	if !ok || e.session != s {
		i.mu.Unlock()
		return 0, false
	}
	id := len(e.acks)
	e.acks = append(e.acks, id)
	i.mu.Unlock()
	observability.RecordAckAllocated()
	log.Debug().Str("session", s.name).Int("ack_id", id).Msg("ack created")
	return id, true
}
