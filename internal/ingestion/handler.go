package ingestion

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"promotore-backend/internal/shared/server/middleware"
	"promotore-backend/internal/shared/server/respond"
)

// Handler exposes the pipeline over HTTP.
type Handler struct {
	Pipeline *Pipeline
}

func NewHandler(p *Pipeline) *Handler {
	return &Handler{Pipeline: p}
}

// RegisterRoutes attaches the processing route to an authenticated group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/processar/:id", h.process)
}

func (h *Handler) process(c *gin.Context) {
	id, _ := middleware.IdentityFromContext(c)
	processID, ok := middleware.ProcessIDParam(c)
	if !ok {
		respond.Error(c, http.StatusNotFound, "Processo não encontrado")
		return
	}

	if _, err := h.Pipeline.Run(c.Request.Context(), id.UserID, processID); err != nil {
		switch {
		case errors.Is(err, ErrProcessNotFound):
			respond.Error(c, http.StatusNotFound, "Processo não encontrado")
		case errors.Is(err, ErrNoDocuments):
			respond.Error(c, http.StatusBadRequest, "Nenhum documento encontrado")
		default:
			respond.Error(c, http.StatusInternalServerError, err.Error())
		}
		return
	}

	respond.OK(c, gin.H{"sucesso": true, "mensagem": "Processamento concluído!"})
}
