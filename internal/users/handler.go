package users

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"promotore-backend/internal/shared/server/middleware"
	"promotore-backend/internal/shared/server/respond"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/api/me", h.me)
}

func (h *Handler) me(c *gin.Context) {
	if h.Svc == nil {
		respond.Error(c, http.StatusInternalServerError, "service unavailable")
		return
	}
	id, ok := middleware.IdentityFromContext(c)
	if !ok {
		respond.Error(c, http.StatusUnauthorized, "Não autenticado")
		return
	}
	user, err := h.Svc.GetByID(c.Request.Context(), id.UserID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "Usuário não encontrado")
			return
		}
		respond.Error(c, http.StatusInternalServerError, err.Error())
		return
	}
	respond.OK(c, user)
}
