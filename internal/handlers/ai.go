package handlers

import (
	"errors"
	"net/http"

	"github.com/fr-yash/CoBuilderr/internal/ai"
	"github.com/fr-yash/CoBuilderr/internal/models"
)

// GenerateResponse mirrors the AI envelope over REST.
type GenerateResponse struct {
	Text         string          `json:"text"`
	FileTree     models.FileTree `json:"fileTree,omitempty"`
	BuildCommand *models.Command `json:"buildCommand,omitempty"`
	StartCommand *models.Command `json:"startCommand,omitempty"`
}

// GetResult runs a prompt through the generation pipeline outside of any
// room, for clients that want a one-shot completion.
func (h *Handler) GetResult(w http.ResponseWriter, r *http.Request) {
	prompt := r.URL.Query().Get("prompt")

	result, err := h.ai.Generate(r.Context(), prompt)
	if err != nil {
		switch {
		case errors.Is(err, ai.ErrEmptyPrompt):
			h.Error(w, http.StatusBadRequest, "prompt is required")
		case errors.Is(err, ai.ErrUpstream):
			h.Error(w, http.StatusBadGateway, "generation backend unavailable")
		default:
			h.Error(w, http.StatusInternalServerError, "generation failed")
		}
		return
	}

	h.JSON(w, http.StatusOK, GenerateResponse{
		Text:         result.Text,
		FileTree:     result.FileTree,
		BuildCommand: result.BuildCommand,
		StartCommand: result.StartCommand,
	})
}
