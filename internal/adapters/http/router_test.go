package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/sbertrand101/web-phone/internal/adapters/socket"
	"github.com/sbertrand101/web-phone/internal/app"
	"github.com/sbertrand101/web-phone/internal/catapult"
	"github.com/sbertrand101/web-phone/internal/config"
)

func testRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		Mode:       "release",
		StaticPath: t.TempDir(),
		UploadDir:  t.TempDir(),
		Secret:     "test-secret",
		AuthLimit:  5,
		AuthWindow: time.Minute,
	}
	clients := &catapult.Factory{APIURL: "http://127.0.0.1:0"}
	registry := app.NewRegistry()
	signaling := app.NewSignaling(clients.CallControl, registry, "https://audio.example/ring.mp3")
	registry.TeardownHook = signaling.Cleanup
	ctl := socket.NewController(cfg, registry, clients)
	return SetupRouter(context.Background(), cfg, ctl, signaling, clients)
}

func TestMessageCallbackAlwaysAccepted(t *testing.T) {
	r := testRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/u1/message/callback", strings.NewReader(`{"eventType":"sms","text":"hi"}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCallCallbackUnknownSessionAccepted(t *testing.T) {
	r := testRouter(t)

	body := `{"eventType":"incomingcall","callId":"c-1","from":"+19998887777","to":"+15551234567"}`
	req := httptest.NewRequest(http.MethodPost, "/u1/call/callback", strings.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCallCallbackMalformedBodyAccepted(t *testing.T) {
	r := testRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/u1/call/callback", strings.NewReader(`{broken`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	// The vendor must never retry; bad payloads are logged and dropped.
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUploadRejectsMissingCredentials(t *testing.T) {
	r := testRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/upload", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUploadRejectsMissingFile(t *testing.T) {
	r := testRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/upload", nil)
	req.Header.Set("Authorization", `{"userId":"u1","apiToken":"t","apiSecret":"s"}`)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUnknownGetRedirectsToApp(t *testing.T) {
	r := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/some/spa/route", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusMovedPermanently, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
}
