package documents

import "time"

// Document is a file uploaded against a process.
type Document struct {
	ID        int64     `json:"id"`
	ProcessID int64     `json:"processo_id"`
	FileName  string    `json:"nome_arquivo"`
	DocType   string    `json:"tipo_documento,omitempty"`
	FilePath  string    `json:"caminho_arquivo"`
	MimeType  string    `json:"mime_type,omitempty"`
	SizeBytes int64     `json:"tamanho_bytes,omitempty"`
	Processed bool      `json:"processado"`
	CreatedAt time.Time `json:"criado_em"`
}
