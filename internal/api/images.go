package api

// PresignRequest — тело POST /api/images/presign.
// userId необязателен при наличии токена.
type PresignRequest struct {
	UserID        string `json:"userId,omitempty"`
	ContentType   string `json:"contentType"`
	ContentLength int64  `json:"contentLength"`
}

// PresignResponse — параметры прямой загрузки в объектное хранилище.
type PresignResponse struct {
	UploadURL       string            `json:"uploadUrl"`
	Key             string            `json:"key"`
	ExpiresIn       int64             `json:"expiresIn"` // секунды
	RequiredHeaders map[string]string `json:"requiredHeaders,omitempty"`
}

type ConfirmRequest struct {
	UserID string `json:"userId,omitempty"`
	Key    string `json:"key"`
}

type ConfirmResponse struct {
	URL string `json:"url"`
}
