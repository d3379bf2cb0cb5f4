package documents

// UploadResponse is returned by POST /upload/:id.
type UploadResponse struct {
	Sucesso    bool     `json:"sucesso"`
	Arquivos   []string `json:"arquivos"`
	Rejeitados []string `json:"rejeitados,omitempty"`
}

func toUploadResponse(res UploadResult) UploadResponse {
	out := UploadResponse{
		Sucesso:    true,
		Arquivos:   make([]string, 0, len(res.Accepted)),
		Rejeitados: res.Rejected,
	}
	for _, doc := range res.Accepted {
		out.Arquivos = append(out.Arquivos, doc.FileName)
	}
	return out
}
