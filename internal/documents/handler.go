package documents

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"promotore-backend/internal/shared/server/middleware"
	"promotore-backend/internal/shared/server/respond"
)

const (
	defaultMaxUploadBytes = 50 << 20
	uploadField           = "files[]"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc            *Service
	MaxUploadBytes int64
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, maxUploadBytes int64) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = defaultMaxUploadBytes
	}
	return &Handler{Svc: svc, MaxUploadBytes: maxUploadBytes}
}

// RegisterRoutes attaches document routes to an authenticated group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/upload/:id", h.upload)
}

func (h *Handler) upload(c *gin.Context) {
	id, _ := middleware.IdentityFromContext(c)
	processID, ok := middleware.ProcessIDParam(c)
	if !ok {
		respond.Error(c, http.StatusNotFound, "Processo não encontrado")
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUploadBytes)
	form, err := c.MultipartForm()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respond.Error(c, http.StatusRequestEntityTooLarge, "Arquivo muito grande")
			return
		}
		respond.Error(c, http.StatusBadRequest, "Nenhum arquivo enviado")
		return
	}
	headers := form.File[uploadField]
	if len(headers) == 0 {
		respond.Error(c, http.StatusBadRequest, "Nenhum arquivo enviado")
		return
	}

	res, err := h.Svc.UploadBatch(c.Request.Context(), id.UserID, processID, toUploads(headers))
	if err != nil {
		switch {
		case errors.Is(err, ErrProcessNotFound):
			respond.Error(c, http.StatusNotFound, "Processo não encontrado")
		case errors.Is(err, ErrNoFiles):
			respond.Error(c, http.StatusBadRequest, "Nenhum arquivo enviado")
		case errors.Is(err, ErrNoAcceptedFiles):
			respond.Error(c, http.StatusBadRequest, "Nenhum arquivo válido enviado (permitidos: pdf, jpg, jpeg, png)")
		default:
			respond.Error(c, http.StatusInternalServerError, err.Error())
		}
		return
	}

	respond.OK(c, toUploadResponse(res))
}

func toUploads(headers []*multipart.FileHeader) []Upload {
	out := make([]Upload, 0, len(headers))
	for _, fh := range headers {
		fh := fh
		out = append(out, Upload{
			FileName: fh.Filename,
			Open: func() (io.ReadCloser, error) {
				return fh.Open()
			},
		})
	}
	return out
}
