package api

type HealthResponse struct {
	Status           string `json:"status"`
	APIKeyConfigured bool   `json:"api_key_configured"`
	Provider         string `json:"provider"`
}

type MoveRequest struct {
	FEN   string `json:"fen"`
	Model string `json:"model,omitempty"`
}

type MoveResponse struct {
	Move      string  `json:"move"`
	SAN       *string `json:"san"`
	Reasoning string  `json:"reasoning,omitempty"`
}

type APIKeyRequest struct {
	APIKey string `json:"api_key"`
}

type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Detail string `json:"detail"`
	Code   string `json:"code,omitempty"`
}
