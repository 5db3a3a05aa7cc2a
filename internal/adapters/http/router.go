package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/sbertrand101/web-phone/internal/adapters/socket"
	"github.com/sbertrand101/web-phone/internal/app"
	"github.com/sbertrand101/web-phone/internal/catapult"
	"github.com/sbertrand101/web-phone/internal/config"
	"github.com/sbertrand101/web-phone/internal/domain"
)

func genClientToken() string {
	return uuid.NewString()
}

func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie("ct")
		if token == "" {
			token = genClientToken()
			c.SetCookie("ct", token, 3600*24*7, "/", "", false, true)
		}
		c.Set("client_token", token)
		c.Next()
	}
}

func SetupRouter(ctx context.Context, cfg *config.Config, ctl *socket.Controller, signaling *app.Signaling, clients *catapult.Factory) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("WebPhoneSessions", store))
	r.Use(ClientTokenMiddleware())

	r.Static("/static", cfg.StaticPath)
	r.GET("/", func(c *gin.Context) {
		c.File(cfg.StaticPath + "/index.html")
	})
	// SPA: unknown GETs land back on the app shell.
	r.NoRoute(func(c *gin.Context) {
		if c.Request.Method == http.MethodGet {
			c.Redirect(http.StatusMovedPermanently, "/")
			return
		}
		c.Status(http.StatusNotFound)
	})

	log.Info().Str("module", "adapters.http").Str("static", cfg.StaticPath).Msg("router setup")

	r.GET("/smschat", func(c *gin.Context) {
		ctl.HandleSocket(ctx, c)
	})

	r.POST("/:userId/message/callback", messageCallback(ctl))
	r.POST("/:userId/call/callback", callCallback(ctx, ctl, signaling))
	r.POST("/upload", uploadHandler(cfg, clients))

	return r
}

// messageCallback fans the vendor's message webhook out verbatim to
// every connection the user has open.
func messageCallback(ctl *socket.Controller) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := domain.UserID(c.Param("userId"))
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.Status(http.StatusBadRequest)
			return
		}
		log.Info().Str("module", "adapters.http").Str("user", string(userID)).Msg("message callback")
		ctl.Broadcast(userID, "message", json.RawMessage(body))
		c.String(http.StatusOK, "")
	}
}

// callCallback forwards first so the UI shows ringing promptly, then
// hands the event to the signaling machine. The vendor always gets a
// 200 back; retries are unwanted.
func callCallback(ctx context.Context, ctl *socket.Controller, signaling *app.Signaling) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := domain.UserID(c.Param("userId"))
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.Status(http.StatusBadRequest)
			return
		}
		log.Info().Str("module", "adapters.http").Str("user", string(userID)).Msg("call callback")
		ctl.Broadcast(userID, "call", json.RawMessage(body))

		var ev domain.CallEvent
		if err := json.Unmarshal(body, &ev); err != nil {
			log.Error().Err(err).Str("module", "adapters.http").Msg("malformed call event")
			c.String(http.StatusOK, "")
			return
		}
		go signaling.HandleEvent(ctx, userID, &ev)
		c.String(http.StatusOK, "")
	}
}

// uploadHandler stores a multipart file and pushes it to the vendor's
// media storage under a generated name. Credentials arrive as JSON in
// the Authorization header.
func uploadHandler(cfg *config.Config, clients *catapult.Factory) gin.HandlerFunc {
	return func(c *gin.Context) {
		var creds domain.Credentials
		if err := json.Unmarshal([]byte(c.GetHeader("Authorization")), &creds); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		if err := creds.Validate(); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		file, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing file"})
			return
		}

		name := uuid.NewString() + filepath.Ext(file.Filename)
		path := filepath.Join(cfg.UploadDir, name)
		if err := c.SaveUploadedFile(file, path); err != nil {
			log.Error().Err(err).Str("module", "adapters.http").Msg("upload save failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "upload failed"})
			return
		}
		defer func() {
			if err := os.Remove(path); err != nil {
				log.Warn().Err(err).Str("module", "adapters.http").Str("path", path).Msg("upload temp cleanup")
			}
		}()

		client := clients.Client(creds)
		if err := client.UploadMedia(c.Request.Context(), name, path, file.Header.Get("Content-Type")); err != nil {
			log.Error().Err(err).Str("module", "adapters.http").Msg("media upload failed")
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		log.Info().Str("module", "adapters.http").Str("file", name).Msg("media uploaded")
		c.JSON(http.StatusOK, gin.H{"fileName": name})
	}
}
