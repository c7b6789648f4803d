package admin

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/danmuck/specter/internal/phantom"
	"github.com/danmuck/specter/internal/server"
	"github.com/danmuck/specter/internal/testutil/testlog"
	"github.com/gin-gonic/gin"
)

type harness struct {
	api   *API
	srv   *server.Server
	iface *phantom.Interface
	token string
}

func newHarness(t *testing.T, token string) *harness {
	t.Helper()
	testlog.Start(t)
	gin.SetMode(gin.TestMode)
	srv := server.New(server.DefaultConfig())
	iface := phantom.New(srv, phantom.DefaultConfig())
	srv.Attach(iface)
	return &harness{
		api:   New(Config{Token: token}, iface, srv),
		srv:   srv,
		iface: iface,
		token: token,
	}
}

func (h *harness) do(t *testing.T, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if h.token != "" {
		req.Header.Set("Authorization", "Bearer "+h.token)
	}
	rr := httptest.NewRecorder()
	h.api.Handler().ServeHTTP(rr, req)

	var out map[string]any
	if rr.Body.Len() > 0 && strings.HasPrefix(rr.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
			t.Fatalf("decode %s %s: %v body=%s", method, path, err, rr.Body.String())
		}
	}
	return rr, out
}

func (h *harness) tick() {
	h.srv.Tick(h.iface.Process)
}

func TestHealthAndMetricsAreOpen(t *testing.T) {
	h := newHarness(t, "secret")
	h.token = ""
	rr, body := h.do(t, http.MethodGet, "/health", "")
	if rr.Code != http.StatusOK || body["status"] != "ok" {
		t.Fatalf("unexpected health response %d %v", rr.Code, body)
	}
	rr, _ = h.do(t, http.MethodGet, "/metrics", "")
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "specter_") {
		t.Fatalf("unexpected metrics response %d", rr.Code)
	}
}

func TestTokenRequired(t *testing.T) {
	h := newHarness(t, "secret")
	h.token = ""
	if rr, _ := h.do(t, http.MethodGet, "/sessions", ""); rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rr.Code)
	}
	h.token = "wrong"
	if rr, _ := h.do(t, http.MethodGet, "/sessions", ""); rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with wrong token, got %d", rr.Code)
	}
	h.token = "secret"
	if rr, _ := h.do(t, http.MethodGet, "/sessions", ""); rr.Code != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d", rr.Code)
	}
}

func TestOpenListAndCloseSession(t *testing.T) {
	h := newHarness(t, "")
	rr, body := h.do(t, http.MethodPost, "/sessions", `{"name":"steve"}`)
	if rr.Code != http.StatusCreated || body["name"] != "steve" {
		t.Fatalf("unexpected open response %d %v", rr.Code, body)
	}
	if rr, _ := h.do(t, http.MethodPost, "/sessions", `{"name":"steve"}`); rr.Code != http.StatusConflict {
		t.Fatalf("expected conflict on duplicate, got %d", rr.Code)
	}
	if rr, _ := h.do(t, http.MethodPost, "/sessions", `{"name":" "}`); rr.Code != http.StatusBadRequest {
		t.Fatalf("expected bad request for empty name, got %d", rr.Code)
	}

	h.tick()
	rr, body = h.do(t, http.MethodGet, "/sessions", "")
	sessions, _ := body["sessions"].([]any)
	players, _ := body["players"].([]any)
	if rr.Code != http.StatusOK || len(sessions) != 1 || len(players) != 1 {
		t.Fatalf("unexpected list %d %v", rr.Code, body)
	}
	player := players[0].(map[string]any)
	if player["phase"] != string(server.PhaseSpawned) {
		t.Fatalf("expected spawned player, got %v", player["phase"])
	}

	if rr, _ := h.do(t, http.MethodDelete, "/sessions/steve?reason=done", ""); rr.Code != http.StatusOK {
		t.Fatalf("close failed: %d", rr.Code)
	}
	if rr, _ := h.do(t, http.MethodDelete, "/sessions/steve", ""); rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on second close, got %d", rr.Code)
	}
	if len(h.srv.Players()) != 0 {
		t.Fatalf("player still on host")
	}
}

func TestChatIsQueuedForNextTick(t *testing.T) {
	h := newHarness(t, "")
	h.do(t, http.MethodPost, "/sessions", `{"name":"steve"}`)
	h.tick()

	rr, body := h.do(t, http.MethodPost, "/sessions/steve/chat", `{"message":"hello"}`)
	if rr.Code != http.StatusAccepted || body["kind"] != "text" {
		t.Fatalf("unexpected chat response %d %v", rr.Code, body)
	}
	if len(h.srv.Chat()) != 0 {
		t.Fatalf("chat delivered before tick")
	}
	h.tick()
	if chat := h.srv.Chat(); len(chat) != 1 || chat[0].Message != "hello" {
		t.Fatalf("unexpected chat %+v", chat)
	}
	if rr, _ := h.do(t, http.MethodPost, "/sessions/nobody/chat", `{"message":"x"}`); rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown session, got %d", rr.Code)
	}
}

func TestDamageAndManualRespawn(t *testing.T) {
	testlog.Start(t)
	gin.SetMode(gin.TestMode)
	srv := server.New(server.DefaultConfig())
	iface := phantom.New(srv, phantom.Config{AutoRespawn: false, YawCorrection: phantom.DefaultYawCorrection})
	srv.Attach(iface)
	h := &harness{api: New(Config{}, iface, srv), srv: srv, iface: iface}

	h.do(t, http.MethodPost, "/sessions", `{"name":"steve"}`)
	h.tick()

	rr, body := h.do(t, http.MethodPost, "/players/steve/damage", `{"amount":20}`)
	if rr.Code != http.StatusOK || body["health"] != float64(0) {
		t.Fatalf("unexpected damage response %d %v", rr.Code, body)
	}
	_, body = h.do(t, http.MethodGet, "/sessions", "")
	session := body["sessions"].([]any)[0].(map[string]any)
	if session["needs_external_respawn"] != true {
		t.Fatalf("expected external respawn flag, got %v", session)
	}

	if rr, _ := h.do(t, http.MethodPost, "/sessions/steve/respawn", ""); rr.Code != http.StatusAccepted {
		t.Fatalf("respawn not queued: %d", rr.Code)
	}
	h.tick()
	info, _ := srv.Player("steve")
	if info.Phase != server.PhaseSpawned || info.Health != 20 {
		t.Fatalf("expected respawned player, got %+v", info)
	}

	if rr, _ := h.do(t, http.MethodPost, "/players/nobody/damage", `{"amount":1}`); rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown player, got %d", rr.Code)
	}
}

func TestFormFlow(t *testing.T) {
	h := newHarness(t, "")
	h.do(t, http.MethodPost, "/sessions", `{"name":"steve"}`)
	h.tick()

	rr, body := h.do(t, http.MethodPost, "/players/steve/forms", `{"type":"form","title":"Menu","content":"","buttons":[{"text":"Play"}]}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("send form failed %d %v", rr.Code, body)
	}
	id := int(body["form_id"].(float64))

	if rr, _ := h.do(t, http.MethodPost, "/sessions/steve/forms/abc", `{"data":"0"}`); rr.Code != http.StatusBadRequest {
		t.Fatalf("expected bad request for invalid id, got %d", rr.Code)
	}
	path := "/sessions/steve/forms/" + strconv.Itoa(id)
	if rr, _ := h.do(t, http.MethodPost, path, `{"data":"0"}`); rr.Code != http.StatusAccepted {
		t.Fatalf("form response not queued: %d", rr.Code)
	}
	h.tick()

	rr, body = h.do(t, http.MethodGet, "/forms?player=steve", "")
	responses, _ := body["responses"].([]any)
	if rr.Code != http.StatusOK || len(responses) != 1 {
		t.Fatalf("unexpected responses %d %v", rr.Code, body)
	}
	if got := responses[0].(map[string]any)["data"]; got != "0" {
		t.Fatalf("unexpected response data %v", got)
	}
}

func TestTeleportMessageTitleKick(t *testing.T) {
	h := newHarness(t, "")
	h.do(t, http.MethodPost, "/sessions", `{"name":"steve"}`)
	h.tick()

	if rr, _ := h.do(t, http.MethodPost, "/players/steve/teleport", `{"x":5,"y":70,"z":5}`); rr.Code != http.StatusOK {
		t.Fatalf("teleport failed: %d", rr.Code)
	}
	h.tick()
	info, _ := h.srv.Player("steve")
	if info.Position.X != 5 || info.Position.Y != 70 {
		t.Fatalf("unexpected position %+v", info.Position)
	}
	if rr, _ := h.do(t, http.MethodPost, "/players/steve/message", `{"message":"hi"}`); rr.Code != http.StatusOK {
		t.Fatalf("message failed: %d", rr.Code)
	}
	if rr, _ := h.do(t, http.MethodPost, "/players/steve/title", `{"text":"Welcome"}`); rr.Code != http.StatusOK {
		t.Fatalf("title failed: %d", rr.Code)
	}
	if rr, _ := h.do(t, http.MethodPost, "/players/steve/kick", `{"reason":"done"}`); rr.Code != http.StatusOK {
		t.Fatalf("kick failed: %d", rr.Code)
	}
	if _, ok := h.iface.Session("steve"); ok {
		t.Fatalf("session still open after kick")
	}
}
