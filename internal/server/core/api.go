package core

// Request types

type MoveRequest struct {
	FEN   string `json:"fen" validate:"required"`
	Model string `json:"model,omitempty" validate:"omitempty,max=100,printascii"`
}

type APIKeyRequest struct {
	APIKey string `json:"api_key,omitempty" validate:"omitempty,max=256,printascii"`
}

// Response types

type MoveResponse struct {
	Move      string  `json:"move"`
	SAN       *string `json:"san"`
	Reasoning string  `json:"reasoning,omitempty"`
}

type HealthResponse struct {
	Status           string `json:"status"`
	APIKeyConfigured bool   `json:"api_key_configured"`
	Provider         string `json:"provider"`
}

type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Detail string `json:"detail"`
	Code   string `json:"code,omitempty"`
}
