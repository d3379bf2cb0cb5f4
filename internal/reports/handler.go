package reports

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"promotore-backend/internal/processes"
	"promotore-backend/internal/shared/server/middleware"
	"promotore-backend/internal/shared/server/respond"
)

type Handler struct {
	Service *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Service: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/processo/:id/relatorio", h.download)
}

func (h *Handler) download(c *gin.Context) {
	id, _ := middleware.IdentityFromContext(c)
	processID, ok := middleware.ProcessIDParam(c)
	if !ok {
		respond.Error(c, http.StatusNotFound, "Processo não encontrado")
		return
	}

	report, err := h.Service.Generate(c.Request.Context(), id.UserID, processID)
	if err != nil {
		switch {
		case errors.Is(err, processes.ErrNotFound):
			respond.Error(c, http.StatusNotFound, "Processo não encontrado")
		case errors.Is(err, ErrNotProcessed):
			respond.Error(c, http.StatusBadRequest, "Processo ainda não foi processado")
		default:
			respond.Error(c, http.StatusInternalServerError, err.Error())
		}
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.FileName))
	c.Data(http.StatusOK, ContentType, report.Data)
}
