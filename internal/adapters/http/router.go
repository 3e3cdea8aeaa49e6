// Package http wires the gin router: the session-backed identity gate and
// the websocket endpoint.
package http

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/avelis/huddle/internal/adapters/socket"
	"github.com/avelis/huddle/internal/config"
	"github.com/avelis/huddle/internal/domain"
)

const (
	sessUserID    = "uid"
	sessUserName  = "uname"
	sessUserEmail = "uemail"
)

type identityBody struct {
	ID    string `json:"id" binding:"required"`
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
}

// PutSession establishes the identity for this browser session. It stands in
// for the upstream auth middleware; anything behind the gate trusts it.
func PutSession(c *gin.Context) {
	var body identityBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid identity payload"})
		return
	}
	if err := domain.ValidateEntityID(body.ID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sess := sessions.Default(c)
	sess.Set(sessUserID, body.ID)
	sess.Set(sessUserName, body.Name)
	sess.Set(sessUserEmail, body.Email)
	if err := sess.Save(); err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("session save")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session save failed"})
		return
	}
	c.Status(http.StatusNoContent)
}

func DeleteSession(c *gin.Context) {
	sess := sessions.Default(c)
	sess.Clear()
	if err := sess.Save(); err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("session clear")
	}
	c.Status(http.StatusNoContent)
}

// IdentityGate rejects connections without an established identity and
// attaches the verified user to the request context before handlers run.
func IdentityGate() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := sessions.Default(c)
		id, _ := sess.Get(sessUserID).(string)
		name, _ := sess.Get(sessUserName).(string)
		email, _ := sess.Get(sessUserEmail).(string)

		user, err := domain.NewOnlineUser(id, name, email)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
			return
		}
		c.Set(socket.IdentityKey, user)
		c.Next()
	}
}

func SetupRouter(cfg *config.Config, ctl *socket.Controller) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("HuddleSession", store))

	api := r.Group("/api")
	api.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	api.POST("/session", PutSession)
	api.DELETE("/session", DeleteSession)
	api.GET("/ws", IdentityGate(), ctl.HandleSocket)

	log.Info().Str("module", "adapters.http").Msg("router setup")
	return r
}
