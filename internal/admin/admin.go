// Package admin is the HTTP control plane for phantom sessions and the host
// they are connected to.
package admin

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/danmuck/specter/internal/auth"
	"github.com/danmuck/specter/internal/observability"
	"github.com/danmuck/specter/internal/phantom"
	"github.com/danmuck/specter/internal/protocol/packet"
	"github.com/danmuck/specter/internal/server"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const version = "0.1.0"

// Sessions is the phantom side of the control plane.
type Sessions interface {
	OpenSession(name, address string, port int) (*phantom.Session, bool)
	Session(name string) (*phantom.Session, bool)
	Sessions() []phantom.SessionInfo
	Close(s *phantom.Session, reason string)
	QueueReply(name string, pk packet.Packet) bool
}

// Host is the game-server side of the control plane.
type Host interface {
	Players() []server.PlayerInfo
	Chat() []server.ChatLine
	FormResponses(name string) []server.FormResponse
	Damage(name string, amount int32) (int32, error)
	Teleport(name string, to packet.Vec3) error
	SendMessage(name, message string) error
	SetTitle(name, text string) error
	SendForm(name, data string) (uint32, error)
	Kick(name, reason string) error
}

type Config struct {
	Addr        string
	Token       string
	CORSOrigins []string
}

type API struct {
	cfg      Config
	sessions Sessions
	host     Host
	router   *gin.Engine
	started  time.Time
}

func New(cfg Config, sessions Sessions, host Host) *API {
	observability.RegisterMetrics()
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.RequestObserver(observability.Logger("admin"), "admin"))
	r.Use(cors.New(cors.Config{
		AllowOrigins: normalizeOrigins(cfg.CORSOrigins),
		AllowMethods: []string{"GET", "POST", "DELETE"},
		AllowHeaders: []string{"Origin", "Content-Type", "Authorization"},
		MaxAge:       12 * time.Hour,
	}))
	_ = r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	a := &API{
		cfg:      cfg,
		sessions: sessions,
		host:     host,
		router:   r,
		started:  time.Now(),
	}
	a.registerRoutes()
	return a
}

func (a *API) Handler() http.Handler {
	return a.router
}

// Serve listens on cfg.Addr until ctx is cancelled.
func (a *API) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              strings.TrimSpace(a.cfg.Addr),
		Handler:           a.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info().Str("addr", srv.Addr).Bool("auth", a.cfg.Token != "").Msg("admin listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// requireToken rejects requests without the configured bearer token.
func requireToken(v auth.Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := auth.Check(v, c.Request); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		c.Next()
	}
}

func normalizeOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"http://localhost:3000"}
	}
	return origins
}
