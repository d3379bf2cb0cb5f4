package processes

import (
	"encoding/json"
	"time"
)

const (
	StatusAwaitingDocuments = "aguardando_documentos"
	StatusProcessed         = "processado"
)

// Process is a client case that documents are uploaded against.
type Process struct {
	ID              int64           `json:"id"`
	ClientName      string          `json:"nome_cliente"`
	ExternalID      string          `json:"cpf"`
	UserID          int64           `json:"usuario_id"`
	Status          string          `json:"status"`
	Score           *int            `json:"score_conformidade"`
	Conformities    *int            `json:"conformidades"`
	Alerts          *int            `json:"alertas"`
	Inconsistencies *int            `json:"inconsistencias"`
	ExtractedData   json.RawMessage `json:"dados_extraidos,omitempty"`
	ReportPath      string          `json:"relatorio_path,omitempty"`
	CreatedAt       time.Time       `json:"criado_em"`
	UpdatedAt       time.Time       `json:"atualizado_em"`
}

// Stats summarizes a user's processes for the dashboard.
type Stats struct {
	Total      int `json:"total"`
	Concluidos int `json:"concluidos"`
	Pendentes  int `json:"pendentes"`
}
