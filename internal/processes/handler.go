package processes

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"promotore-backend/internal/shared/server/middleware"
	"promotore-backend/internal/shared/server/respond"
)

const msgNotFound = "Processo não encontrado"

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches process routes to an authenticated group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/novo_processo", h.create)
	rg.GET("/processos", h.list)
	rg.GET("/processo/:id", h.detail)
	rg.GET("/api/estatisticas", h.stats)
	rg.GET("/api/processos-recentes", h.recent)
}

type createRequest struct {
	ClientName string `form:"nome_cliente" json:"nome_cliente"`
	ExternalID string `form:"cpf" json:"cpf"`
}

func (h *Handler) create(c *gin.Context) {
	id, _ := middleware.IdentityFromContext(c)

	var req createRequest
	if err := c.ShouldBind(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "Requisição inválida")
		return
	}

	p, err := h.Svc.Create(c.Request.Context(), id.UserID, req.ClientName, req.ExternalID)
	if err != nil {
		if errors.Is(err, ErrInvalidInput) {
			respond.Error(c, http.StatusBadRequest, "Nome do cliente é obrigatório")
			return
		}
		respond.Error(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.Set(middleware.ProcessIDKey, p.ID)
	respond.Created(c, gin.H{"sucesso": true, "processo": p})
}

func (h *Handler) list(c *gin.Context) {
	id, _ := middleware.IdentityFromContext(c)
	items, err := h.Svc.List(c.Request.Context(), id.UserID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, err.Error())
		return
	}
	respond.OK(c, items)
}

func (h *Handler) detail(c *gin.Context) {
	id, _ := middleware.IdentityFromContext(c)
	processID, ok := middleware.ProcessIDParam(c)
	if !ok {
		respond.Error(c, http.StatusNotFound, msgNotFound)
		return
	}

	detail, err := h.Svc.Detail(c.Request.Context(), id.UserID, processID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, msgNotFound)
			return
		}
		respond.Error(c, http.StatusInternalServerError, err.Error())
		return
	}
	respond.OK(c, detail)
}

func (h *Handler) stats(c *gin.Context) {
	id, _ := middleware.IdentityFromContext(c)
	stats, err := h.Svc.Stats(c.Request.Context(), id.UserID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, err.Error())
		return
	}
	respond.OK(c, stats)
}

type recentItem struct {
	ID         int64  `json:"id"`
	ClientName string `json:"nome_cliente"`
	ExternalID string `json:"cpf"`
	Status     string `json:"status"`
	CreatedAt  string `json:"criado_em"`
}

func (h *Handler) recent(c *gin.Context) {
	id, _ := middleware.IdentityFromContext(c)
	items, err := h.Svc.Recent(c.Request.Context(), id.UserID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, err.Error())
		return
	}
	out := make([]recentItem, 0, len(items))
	for _, p := range items {
		out = append(out, recentItem{
			ID:         p.ID,
			ClientName: p.ClientName,
			ExternalID: p.ExternalID,
			Status:     p.Status,
			CreatedAt:  p.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
	respond.OK(c, out)
}
