package auth

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"

	sharedauth "promotore-backend/internal/shared/auth"
	"promotore-backend/internal/shared/server/middleware"
	"promotore-backend/internal/shared/telemetry"
	"promotore-backend/internal/users"
)

const (
	LoginPath = "/login"

	msgInvalidCredentials = "Usuário ou senha inválidos"
	msgDatabaseError      = "Erro ao conectar ao banco de dados"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// Authenticator checks a username/password pair.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (users.User, error)
}

// Signer issues session tokens.
type Signer interface {
	Sign(id sharedauth.Identity) (string, error)
	TTL() time.Duration
}

// Handler serves the login form, logout and the dashboard page.
type Handler struct {
	Users         Authenticator
	Sessions      Signer
	SecureCookies bool
}

func NewHandler(authn Authenticator, sessions Signer, secureCookies bool) *Handler {
	return &Handler{Users: authn, Sessions: sessions, SecureCookies: secureCookies}
}

// RegisterPublicRoutes attaches routes reachable without a session.
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.GET(LoginPath, h.loginForm)
	rg.POST(LoginPath, h.login)
	rg.GET("/logout", h.logout)
}

// RegisterPageRoutes attaches routes that need a session and render HTML.
func (h *Handler) RegisterPageRoutes(rg *gin.RouterGroup) {
	rg.GET("/", h.index)
}

type loginView struct {
	Erro     string
	Username string
}

func (h *Handler) loginForm(c *gin.Context) {
	if _, ok := middleware.IdentityFromContext(c); ok {
		c.Redirect(http.StatusFound, "/")
		return
	}
	h.html(c, http.StatusOK, "login.html", loginView{})
}

func (h *Handler) login(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")

	user, err := h.Users.Authenticate(c.Request.Context(), username, password)
	if err != nil {
		if errors.Is(err, users.ErrInvalidCredentials) {
			telemetry.Warn("auth.login_failed", map[string]any{"username": username})
			h.html(c, http.StatusOK, "login.html", loginView{Erro: msgInvalidCredentials, Username: username})
			return
		}
		telemetry.Error("auth.login_error", map[string]any{"username": username, "error": err.Error()})
		h.html(c, http.StatusInternalServerError, "login.html", loginView{Erro: msgDatabaseError, Username: username})
		return
	}

	token, err := h.Sessions.Sign(sharedauth.Identity{UserID: user.ID, Username: user.Username, FullName: user.FullName})
	if err != nil {
		telemetry.Error("auth.session_sign_failed", map[string]any{"user_id": user.ID, "error": err.Error()})
		h.html(c, http.StatusInternalServerError, "login.html", loginView{Erro: msgDatabaseError, Username: username})
		return
	}

	h.setCookie(c, token, int(h.Sessions.TTL().Seconds()))
	telemetry.Info("auth.login", map[string]any{"user_id": user.ID, "username": user.Username})
	c.Redirect(http.StatusFound, "/")
}

func (h *Handler) logout(c *gin.Context) {
	h.setCookie(c, "", -1)
	c.Redirect(http.StatusFound, LoginPath)
}

type indexView struct {
	Username string
	FullName string
}

func (h *Handler) index(c *gin.Context) {
	id, _ := middleware.IdentityFromContext(c)
	h.html(c, http.StatusOK, "index.html", indexView{Username: id.Username, FullName: id.FullName})
}

func (h *Handler) setCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sharedauth.CookieName, value, maxAge, "/", "", h.SecureCookies, true)
}

func (h *Handler) html(c *gin.Context, status int, name string, data any) {
	c.Render(status, render.HTML{Template: pages, Name: name, Data: data})
}
