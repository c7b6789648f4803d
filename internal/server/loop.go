package server

import (
	"context"
	"time"

	"github.com/danmuck/specter/internal/observability"
	"github.com/rs/zerolog/log"
)

// Run ticks the server every TickInterval until ctx is cancelled. hooks run
// in order on every tick.
func (srv *Server) Run(ctx context.Context, hooks ...func()) error {
	if srv.cfg.TickInterval <= 0 {
		return ErrInvalidTickInterval
	}
	ticker := time.NewTicker(srv.cfg.TickInterval)
	defer ticker.Stop()

	log.Info().
		Dur("tick_interval", srv.cfg.TickInterval).
		Int32("protocol", srv.cfg.ProtocolVersion).
		Msg("server running")
	for {
		select {
		case <-ctx.Done():
			log.Info().Uint64("ticks", srv.tick.Load()).Msg("server shutdown")
			return nil
		case <-ticker.C:
			srv.Tick(hooks...)
		}
	}
}

// Tick advances the tick counter and runs hooks once.
func (srv *Server) Tick(hooks ...func()) uint64 {
	n := srv.tick.Add(1)
	observability.RecordTick()
	for _, hook := range hooks {
		hook()
	}
	if srv.cfg.HeartbeatTicks > 0 && n%srv.cfg.HeartbeatTicks == 0 {
		srv.mu.RLock()
		players := len(srv.players)
		srv.mu.RUnlock()
		log.Info().
			Uint64("tick", n).
			Int("players", players).
			Str("uptime", srv.Uptime().Truncate(time.Second).String()).
			Msg("server heartbeat")
	}
	return n
}

// Ticks is the number of ticks run so far.
func (srv *Server) Ticks() uint64 {
	return srv.tick.Load()
}
