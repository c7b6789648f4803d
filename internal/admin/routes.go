package admin

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/danmuck/specter/internal/auth"
	"github.com/danmuck/specter/internal/phantom"
	"github.com/danmuck/specter/internal/protocol/packet"
	"github.com/danmuck/specter/internal/server"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tidwall/gjson"
)

type openRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Port    int    `json:"port"`
}

type textRequest struct {
	Message string `json:"message"`
	Text    string `json:"text"`
	Reason  string `json:"reason"`
}

type damageRequest struct {
	Amount int32 `json:"amount"`
}

type formResponseRequest struct {
	Data string `json:"data"`
}

func (a *API) registerRoutes() {
	a.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":   "ok",
			"uptime":   time.Since(a.started).String(),
			"sessions": len(a.sessions.Sessions()),
			"version":  version,
		})
	})

	a.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	routes := a.router.Group("/")
	if a.cfg.Token != "" {
		routes.Use(requireToken(auth.StaticToken{Token: a.cfg.Token}))
	}

	routes.GET("/sessions", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"sessions": a.sessions.Sessions(),
			"players":  a.host.Players(),
		})
	})

	routes.POST("/sessions", func(c *gin.Context) {
		var req openRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		name := strings.TrimSpace(req.Name)
		if name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
			return
		}
		if req.Address == "" {
			req.Address = phantom.DefaultAddress
		}
		if req.Port == 0 {
			req.Port = phantom.DefaultPort
		}
		s, ok := a.sessions.OpenSession(name, req.Address, req.Port)
		if !ok {
			c.JSON(http.StatusConflict, gin.H{"error": "session already exists"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"status":    "ok",
			"name":      s.Name(),
			"entity_id": s.EntityID(),
		})
	})

	routes.DELETE("/sessions/:name", func(c *gin.Context) {
		s, ok := a.sessions.Session(c.Param("name"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}
		reason := c.DefaultQuery("reason", "closed by admin")
		a.sessions.Close(s, reason)
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	routes.POST("/sessions/:name/chat", func(c *gin.Context) {
		var req textRequest
		if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Message) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
			return
		}
		name := c.Param("name")
		a.queue(c, name, &packet.Text{Type: packet.TextChat, Source: name, Message: req.Message})
	})

	routes.POST("/sessions/:name/respawn", func(c *gin.Context) {
		s, ok := a.sessions.Session(c.Param("name"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}
		a.queue(c, s.Name(), &packet.Respawn{
			State:           packet.RespawnClientReady,
			EntityRuntimeID: s.EntityID(),
		})
	})

	routes.POST("/sessions/:name/forms/:id", func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid form id"})
			return
		}
		var req formResponseRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if req.Data == "" {
			req.Data = "null"
		}
		if !gjson.Valid(req.Data) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "form data is not valid json"})
			return
		}
		a.queue(c, c.Param("name"), &packet.ModalFormResponse{FormID: uint32(id), FormData: req.Data})
	})

	routes.GET("/players", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"players": a.host.Players()})
	})

	routes.GET("/chat", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"chat": a.host.Chat()})
	})

	routes.GET("/forms", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"responses": a.host.FormResponses(c.Query("player"))})
	})

	routes.POST("/players/:name/damage", func(c *gin.Context) {
		var req damageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		health, err := a.host.Damage(c.Param("name"), req.Amount)
		if err != nil {
			hostError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "health": health})
	})

	routes.POST("/players/:name/teleport", func(c *gin.Context) {
		var to packet.Vec3
		if err := c.ShouldBindJSON(&to); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		a.hostAction(c, a.host.Teleport(c.Param("name"), to))
	})

	routes.POST("/players/:name/message", func(c *gin.Context) {
		var req textRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		a.hostAction(c, a.host.SendMessage(c.Param("name"), req.Message))
	})

	routes.POST("/players/:name/title", func(c *gin.Context) {
		var req textRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		a.hostAction(c, a.host.SetTitle(c.Param("name"), req.Text))
	})

	routes.POST("/players/:name/forms", func(c *gin.Context) {
		body, err := c.GetRawData()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		id, err := a.host.SendForm(c.Param("name"), string(body))
		if err != nil {
			hostError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "form_id": id})
	})

	routes.POST("/players/:name/kick", func(c *gin.Context) {
		var req textRequest
		_ = c.ShouldBindJSON(&req)
		if req.Reason == "" {
			req.Reason = "kicked by admin"
		}
		a.hostAction(c, a.host.Kick(c.Param("name"), req.Reason))
	})
}

// queue puts pk on the named session's reply queue for the next tick.
func (a *API) queue(c *gin.Context, name string, pk packet.Packet) {
	if !a.sessions.QueueReply(name, pk) {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "queued", "kind": packet.Name(pk.ID())})
}

func (a *API) hostAction(c *gin.Context, err error) {
	if err != nil {
		hostError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func hostError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, server.ErrUnknownPlayer):
		status = http.StatusNotFound
	case errors.Is(err, server.ErrNotSpawned):
		status = http.StatusConflict
	case errors.Is(err, server.ErrUnexpectedPacket):
		status = http.StatusBadRequest
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
