package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/artblossom/artblossom/internal/service"
	"github.com/artblossom/artblossom/internal/validation"
)

// promptSuggestions are offered to users looking for inspiration
var promptSuggestions = []string{
	"A futuristic city with flying cars and neon lights",
	"A serene landscape with mountains and a lake at sunset",
	"A magical forest with glowing mushrooms and fantasy creatures",
	"A cyberpunk portrait of a robot with human features",
	"An underwater scene with colorful coral reefs and exotic fish",
}

type GenerateHandler struct {
	generateService *service.GenerateService
}

func NewGenerateHandler(generateService *service.GenerateService) *GenerateHandler {
	return &GenerateHandler{generateService: generateService}
}

type generateRequest struct {
	Prompt string `json:"prompt"`
}

// Generate handles POST /api/generate: proxies the prompt to the upstream
// model and returns the result as {"imageUrl": "data:image/png;base64,..."}.
func (h *GenerateHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err = validation.ValidatePrompt(req.Prompt)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if !h.generateService.Configured() {
		writeError(w, http.StatusServiceUnavailable, "image generation is not configured")
		return
	}

	imageURL, err := h.generateService.Generate(r.Context(), req.Prompt)
	if err != nil {
		slog.Error("image generation failed", "error", err)
		writeError(w, http.StatusBadGateway, "failed to generate image")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"imageUrl": imageURL})
}

// Suggestions handles GET /api/prompts/suggestions
func (h *GenerateHandler) Suggestions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, promptSuggestions)
}
