package auth

import (
	"net/http"
	"regexp"
	"strings"
	"time"

	"NimbusChat/logger"
	"NimbusChat/service/history"
	"NimbusChat/service/registry"
	"NimbusChat/service/storage"
	"NimbusChat/tools/security"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

var usernameRe = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

const bcryptCost = 12

// Handler serves the HTTP collaborators around the gateway core: signup,
// login, logout, identity, backend listing, and room history.
type Handler struct {
	store     *history.PGStore
	validator *Validator
	revoked   *storage.RevokedStore
	opts      security.Options
	reg       *registry.Registry
}

func NewHandler(store *history.PGStore, validator *Validator, revoked *storage.RevokedStore, opts security.Options, reg *registry.Registry) *Handler {
	return &Handler{store: store, validator: validator, revoked: revoked, opts: opts, reg: reg}
}

func (h *Handler) Register(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	api := r.Group("/api")
	api.GET("/backends", h.Backends)
	api.GET("/rooms/:room/history", h.History)

	a := api.Group("/auth")
	a.POST("/signup", h.Signup)
	a.POST("/login", h.Login)
	a.POST("/logout", h.Logout)
	a.GET("/me", h.Me)
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) Signup(c *gin.Context) {
	var req credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body."})
		return
	}

	username := normalizeUsername(req.Username)
	if username == "" || len(username) < 3 || len(username) > 24 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username must be 3-24 characters."})
		return
	}
	if len(req.Password) < 8 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Password must be at least 8 characters."})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		logger.Errorf("[auth] bcrypt hash: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error."})
		return
	}

	var created string
	err = h.store.Pool().QueryRow(c.Request.Context(), `
		insert into users (username, password_hash)
		values ($1, $2)
		on conflict do nothing
		returning username
	`, username, string(hash)).Scan(&created)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username already exists."})
		return
	}

	h.issueCookie(c, created)
	c.JSON(http.StatusOK, gin.H{"username": created})
}

func (h *Handler) Login(c *gin.Context) {
	var req credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid username or password."})
		return
	}

	username := normalizeUsername(req.Username)
	if username == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid username or password."})
		return
	}

	var storedName, storedHash string
	err := h.store.Pool().QueryRow(c.Request.Context(), `
		select username, password_hash
		from users
		where lower(username) = lower($1)
	`, username).Scan(&storedName, &storedHash)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid username or password."})
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(req.Password)) != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid username or password."})
		return
	}

	h.issueCookie(c, storedName)
	c.JSON(http.StatusOK, gin.H{"username": storedName})
}

// Logout revokes the presented token's jti until its natural expiry, then
// clears the cookie. Always answers ok, even without a valid token.
func (h *Handler) Logout(c *gin.Context) {
	if cookie, err := c.Request.Cookie(CookieName); err == nil {
		if claims, err := security.Verify(h.opts, cookie.Value); err == nil {
			if err := h.revoked.Revoke(c.Request.Context(), claims.TokenID, claims.ExpireAt); err != nil {
				logger.Errorf("[auth] revoke on logout: %v", err)
			}
		}
	}
	c.SetCookie(CookieName, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) Me(c *gin.Context) {
	username, err := h.validator.Authenticate(c.Request)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"authenticated": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"authenticated": true, "username": username})
}

func (h *Handler) Backends(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"backends": h.reg.All()})
}

func (h *Handler) History(c *gin.Context) {
	username, err := h.validator.Authenticate(c.Request)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	backend, err := h.reg.Resolve(c.Query("backend"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown backend."})
		return
	}

	room := strings.TrimSpace(c.Param("room"))
	if room == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid room."})
		return
	}

	lines, err := h.store.Fetch(c.Request.Context(), room, backend.ID, 100)
	if err != nil {
		logger.Errorf("[auth] history fetch user=%s room=%s: %v", username, room, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error."})
		return
	}
	if lines == nil {
		lines = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"history": lines})
}

func (h *Handler) issueCookie(c *gin.Context, username string) {
	token, expireAt, err := security.Generate(h.opts, username)
	if err != nil {
		logger.Errorf("[auth] mint token for %s: %v", username, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error."})
		return
	}
	maxAge := int(time.Until(expireAt) / time.Second)
	c.SetCookie(CookieName, token, maxAge, "/", "", false, true)
}

func normalizeUsername(input string) string {
	username := strings.TrimSpace(input)
	if !usernameRe.MatchString(username) {
		return ""
	}
	return username
}
