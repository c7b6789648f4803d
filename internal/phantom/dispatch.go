package phantom

import (
	"strings"

	"github.com/danmuck/specter/internal/observability"
	"github.com/danmuck/specter/internal/protocol/packet"
	"github.com/rs/zerolog/log"
)

// PutPacket interprets an outbound packet addressed to s. When needAck is set
// an ack id is allocated and returned with ok=true. Packets for sessions that
// are not registered are ignored and allocate nothing.
func (i *Interface) PutPacket(s *Session, pk packet.Packet, needAck bool) (int, bool, error) {
	if s == nil || pk == nil || !i.registered(s) {
		return 0, false, nil
	}
	observability.RecordPacketDispatched(packet.Name(pk.ID()))
	if err := i.dispatch(s, pk); err != nil {
		return 0, false, err
	}
	if !needAck {
		return 0, false, nil
	}
	id, ok := i.allocateAck(s)
	return id, ok, nil
}

func (i *Interface) dispatch(s *Session, pk packet.Packet) error {
	switch p := pk.(type) {
	case *packet.ResourcePacksInfo:
		// Answered in place: the host waits on this before sending StartGame.
		i.deliver(s, &packet.ResourcePackClientResponse{Status: packet.ResourcePackCompleted})
	case *packet.Text:
		logText(s, p)
	case *packet.SetHealth:
		i.onHealth(s, p)
	case *packet.StartGame:
		if s.chunkRequested.CompareAndSwap(false, true) {
			i.enqueue(s, &packet.RequestChunkRadius{Radius: ChunkRadius})
		}
	case *packet.PlayStatus:
		if p.Status == packet.PlayStatusPlayerSpawn {
			// TODO: confirm the spawn position with a MovePlayer once the
			// host exposes the session's spawn location.
			log.Debug().Str("session", s.name).Msg("phantom spawn acknowledged")
		}
	case *packet.MovePlayer:
		i.onMove(s, p)
	case *packet.Batch:
		return i.unwrapBatch(s, p)
	case *packet.SetTitle:
		log.Info().Str("session", s.name).Msg("Title: " + p.Text)
	case *packet.ModalFormRequest:
		for _, line := range renderForm(s.name, p.FormID, p.FormData) {
			log.Info().Uint32("form_id", p.FormID).Msg(line)
		}
	}
	return nil
}

func (i *Interface) onHealth(s *Session, p *packet.SetHealth) {
	if p.Health > 0 {
		s.needsRespawn.Store(false)
		return
	}
	if !i.cfg.AutoRespawn {
		s.needsRespawn.Store(true)
		log.Info().Str("session", s.name).Msg("phantom died, waiting for external respawn")
		return
	}
	i.enqueue(s, &packet.Respawn{
		State:           packet.RespawnClientReady,
		EntityRuntimeID: s.EntityID(),
	})
}

// onMove echoes a server-forced movement of the session's own entity back as
// its confirmation. Movement of any other entity is never echoed.
func (i *Interface) onMove(s *Session, p *packet.MovePlayer) {
	if p.EntityRuntimeID != s.EntityID() {
		return
	}
	if !s.Alive() || !s.Spawned() || !s.PendingForcedMovement() {
		return
	}
	p.Mode = packet.MoveModeNormal
	p.Yaw += i.cfg.YawCorrection
	i.enqueue(s, p)
}

func logText(s *Session, p *packet.Text) {
	log.Info().
		Str("session", s.name).
		Str("source", p.Source).
		Msg(textLabel(p) + ": " + p.Message)
}

func textLabel(p *packet.Text) string {
	switch p.Type {
	case packet.TextChat:
		return "Chat"
	case packet.TextRaw:
		return "Message"
	case packet.TextPopup:
		return "Popup"
	case packet.TextTip:
		return "Tip"
	case packet.TextTranslation:
		return "Translation (with params: " + strings.Join(p.Parameters, ", ") + ")"
	default:
		return "Unknown"
	}
}
