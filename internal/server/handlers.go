package server

import (
	"encoding/json"
	"image"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/plantscope/plantscope/internal/engine/imaging"
	"github.com/plantscope/plantscope/internal/model"
)

// maxUploadBytes caps multipart uploads; leaf photos are small.
const maxUploadBytes = 20 << 20

// diagnosisResponse is the wire shape shared by /predict and /analyze.
type diagnosisResponse struct {
	Disease    string  `json:"disease"`
	Confidence float64 `json:"confidence"`
	ClassIndex int     `json:"class_index"`
	ModelUsed  string  `json:"model_used"`
	Plant      string  `json:"plant_identified,omitempty"`
	Treatment  string  `json:"treatment,omitempty"`
}

func toResponse(diag model.Diagnosis) diagnosisResponse {
	return diagnosisResponse{
		Disease:    diag.Disease,
		Confidence: diag.Confidence,
		ClassIndex: diag.ClassIndex,
		ModelUsed:  diag.Source.ModelName(),
		Plant:      diag.Plant,
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"models": map[string]bool{
			"vit_loaded":            s.readiness.VITLoaded,
			"gemini_vision_enabled": s.readiness.GeminiVision,
			"gemini_text_enabled":   s.readiness.GeminiText,
		},
		"num_vit_classes":      s.classCount,
		"confidence_threshold": s.threshold,
	})
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	img, ok := s.readUploadImage(w, r)
	if !ok {
		return
	}

	diag, err := s.classifier.Classify(r.Context(), img)
	if err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("classification failed")
		writeError(w, http.StatusInternalServerError, "Classification failed")
		return
	}

	writeJSON(w, http.StatusOK, toResponse(diag))
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	img, ok := s.readUploadImage(w, r)
	if !ok {
		return
	}

	diag, err := s.classifier.Classify(r.Context(), img)
	if err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("classification failed")
		writeError(w, http.StatusInternalServerError, "Classification failed")
		return
	}

	resp := toResponse(diag)
	resp.Treatment = s.treatment.For(r.Context(), diag)
	writeJSON(w, http.StatusOK, resp)
}

// readUploadImage extracts and decodes the multipart "image" field. On
// failure it writes the 400 response itself and returns ok=false.
func (s *Server) readUploadImage(w http.ResponseWriter, r *http.Request) (image.Image, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	file, _, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid image file")
		return nil, false
	}
	defer file.Close()

	img, err := imaging.Decode(file)
	if err != nil {
		log.Ctx(r.Context()).Debug().Err(err).Msg("upload decode failed")
		writeError(w, http.StatusBadRequest, "Invalid image file")
		return nil, false
	}
	return img, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
