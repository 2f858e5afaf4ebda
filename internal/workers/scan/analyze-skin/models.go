// internal/workers/scan/analyze-skin/models.go
package analyzeskin

import "skinadvisor-workers/internal/models"

type Input struct {
	ImageBase64 string `json:"imageBase64"`
	Language    string `json:"language"`
}

type Output struct {
	RawAnalysis models.RawModelOutput `json:"rawAnalysis"`
	Language    string                `json:"language"`
}

// chatRequest is the OpenAI-compatible chat completion payload the vision
// endpoint accepts.
type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	ResponseFormat *formatSpec   `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string      `json:"role"`
	Content interface{} `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type formatSpec struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}
