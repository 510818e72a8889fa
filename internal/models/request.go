package models

// Request bodies for the generation endpoints. Multipart file fields
// (image, resume) are read by the handlers, not bound here.

type GenerateArticleRequest struct {
	Prompt string `json:"prompt"`
	Length int    `json:"length"`
}

type GenerateBlogTitleRequest struct {
	Prompt string `json:"prompt"`
}

type GenerateImageRequest struct {
	Prompt  string `json:"prompt"`
	Publish any    `json:"publish"`
}

// PublishValue coerces the caller-supplied publish flag the way the web
// client sends it: either a JSON bool or the string "true".
func (r GenerateImageRequest) PublishValue() bool {
	switch v := r.Publish.(type) {
	case bool:
		return v
	case string:
		return v == "true"
	default:
		return false
	}
}

type ToggleLikeRequest struct {
	ID int `json:"id"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Success   bool   `json:"success"`
	Token     string `json:"token"`
	TokenType string `json:"type"`
}

// ContentResponse is the success envelope for all generation endpoints.
type ContentResponse struct {
	Success bool   `json:"success"`
	Content string `json:"content"`
}

type CreationsResponse struct {
	Success   bool       `json:"success"`
	Creations []Creation `json:"creations"`
}

type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
