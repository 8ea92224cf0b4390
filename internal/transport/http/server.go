// internal/transport/http/server.go

// Package httptransport exposes the conversation over HTTP. It is a thin
// layer: every decision is made by the session manager and the dialogue
// engine behind it.
package httptransport

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	apperrors "scheme-assistant/internal/common/errors"
	"scheme-assistant/internal/common/logger"
	"scheme-assistant/internal/models"
	"scheme-assistant/internal/session"
	"scheme-assistant/internal/speech"
)

const defaultMaxAudioSize = 10 << 20

// Sessions is the part of the session manager the transport needs.
type Sessions interface {
	Create() (string, error)
	Turn(ctx context.Context, id, utterance string, confidence *float64) (*session.TurnResult, error)
	AttachAudio(id string, turn int, audio []byte) error
	Audio(id string, turn int) ([]byte, error)
	Reset(id string) (models.Metadata, error)
	Len() int
}

type Options struct {
	MaxAudioSize   int64
	RequestTimeout time.Duration
	// DropLatinForSpeech removes Latin-script words before synthesis.
	DropLatinForSpeech bool
	CatalogSize        int
}

type Handler struct {
	sessions Sessions
	stt      speech.SpeechToText
	tts      speech.TextToSpeech
	opts     Options
	logger   logger.Logger
}

// NewHandler builds the handler. stt and tts may be nil when speech is
// disabled; voice input then answers 503 and replies carry no audio.
func NewHandler(sessions Sessions, stt speech.SpeechToText, tts speech.TextToSpeech, opts Options, log logger.Logger) *Handler {
	if opts.MaxAudioSize <= 0 {
		opts.MaxAudioSize = defaultMaxAudioSize
	}
	return &Handler{
		sessions: sessions,
		stt:      stt,
		tts:      tts,
		opts:     opts,
		logger:   log.WithFields(map[string]interface{}{"component": "http"}),
	}
}

// Routes wires every endpoint onto a chi router.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", h.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(api chi.Router) {
		if h.opts.RequestTimeout > 0 {
			api.Use(middleware.Timeout(h.opts.RequestTimeout))
		}
		api.Post("/start-session", h.handleStartSession)
		api.Post("/text-input", h.handleTextInput)
		api.Post("/voice-input", h.handleVoiceInput)
		api.Post("/reset-session", h.handleResetSession)
		api.Get("/audio/{sessionID}/{turn}", h.handleAudio)
	})
	return r
}

type metadataResponse struct {
	State             string         `json:"state"`
	HasBasicInfo      bool           `json:"has_basic_info"`
	HasSufficientInfo bool           `json:"has_sufficient_info"`
	Profile           models.Profile `json:"profile"`
}

type turnResponse struct {
	Status        string           `json:"status"`
	UserText      string           `json:"user_text,omitempty"`
	Confidence    *float64         `json:"confidence,omitempty"`
	AgentResponse string           `json:"agent_response"`
	Audio         string           `json:"audio,omitempty"`
	AudioURL      string           `json:"audio_url,omitempty"`
	TurnNumber    int              `json:"turn_number"`
	Metadata      metadataResponse `json:"metadata"`
}

type textInputRequest struct {
	SessionID string `json:"session_id"`
	Text      string `json:"text"`
}

type sessionRequest struct {
	SessionID string `json:"session_id"`
}

func (h *Handler) handleStartSession(w http.ResponseWriter, r *http.Request) {
	id, err := h.sessions.Create()
	if err != nil {
		h.writeSessionError(w, r, "", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"session_id": id, "status": "success"})
}

func (h *Handler) handleTextInput(w http.ResponseWriter, r *http.Request) {
	var req textInputRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, apperrors.NewInvalidTurnInputError("invalid request body"))
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, apperrors.NewInvalidTurnInputError("No text provided"))
		return
	}

	res, err := h.sessions.Turn(r.Context(), req.SessionID, req.Text, nil)
	if err != nil {
		h.writeSessionError(w, r, req.SessionID, err)
		return
	}
	writeJSON(w, http.StatusOK, h.reply(r.Context(), res, "", nil))
}

func (h *Handler) handleVoiceInput(w http.ResponseWriter, r *http.Request) {
	if h.stt == nil {
		writeError(w, http.StatusServiceUnavailable,
			apperrors.NewSpeechFailedError("transcribe", errors.New("speech is disabled")))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.opts.MaxAudioSize)
	if err := r.ParseMultipartForm(h.opts.MaxAudioSize); err != nil {
		writeError(w, http.StatusBadRequest, apperrors.NewInvalidTurnInputError("invalid multipart form"))
		return
	}
	file, _, err := r.FormFile("audio")
	if err != nil {
		writeError(w, http.StatusBadRequest, apperrors.NewInvalidTurnInputError("No audio file"))
		return
	}
	defer file.Close()

	audio, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, apperrors.NewInvalidTurnInputError("unreadable audio"))
		return
	}
	sessionID := r.FormValue("session_id")

	transcript, err := h.stt.Transcribe(r.Context(), audio)
	if err != nil {
		if errors.Is(err, speech.ErrNoSpeechRecognised) {
			writeError(w, http.StatusBadRequest, apperrors.NewInvalidTurnInputError("Could not understand speech"))
			return
		}
		h.logger.Warn("speech recognition failed", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
		writeError(w, http.StatusBadGateway, apperrors.NewSpeechFailedError("transcribe", err))
		return
	}

	confidence := transcript.Confidence
	res, err := h.sessions.Turn(r.Context(), sessionID, transcript.Text, &confidence)
	if err != nil {
		h.writeSessionError(w, r, sessionID, err)
		return
	}
	writeJSON(w, http.StatusOK, h.reply(r.Context(), res, transcript.Text, &confidence))
}

func (h *Handler) handleResetSession(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, apperrors.NewInvalidTurnInputError("invalid request body"))
		return
	}
	meta, err := h.sessions.Reset(req.SessionID)
	if err != nil {
		h.writeSessionError(w, r, req.SessionID, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"session_id": req.SessionID,
		"status":     "success",
		"metadata":   toMetadata(meta),
	})
}

func (h *Handler) handleAudio(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	turn, err := strconv.Atoi(chi.URLParam(r, "turn"))
	if err != nil {
		writeError(w, http.StatusBadRequest, apperrors.NewInvalidTurnInputError("turn must be a number"))
		return
	}

	audio, err := h.sessions.Audio(sessionID, turn)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Audio not found"})
		return
	}
	w.Header().Set("Content-Type", "audio/wav")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(audio)
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":          "healthy",
		"voice":           h.stt != nil && h.tts != nil,
		"schemes":         h.opts.CatalogSize,
		"active_sessions": h.sessions.Len(),
	})
}

// reply synthesises the response when speech is enabled. A synthesis failure
// only drops the audio.
func (h *Handler) reply(ctx context.Context, res *session.TurnResult, userText string, confidence *float64) turnResponse {
	out := turnResponse{
		Status:        "success",
		UserText:      userText,
		Confidence:    confidence,
		AgentResponse: res.Response,
		TurnNumber:    res.Turn,
		Metadata:      toMetadata(res.Metadata),
	}
	if h.tts == nil {
		return out
	}

	audio, err := h.tts.Synthesize(ctx, speech.CleanForSpeech(res.Response, h.opts.DropLatinForSpeech))
	if err != nil {
		h.logger.Warn("speech synthesis failed", map[string]interface{}{
			"session_id": res.SessionID,
			"turn":       res.Turn,
			"error":      err.Error(),
		})
		return out
	}
	if err := h.sessions.AttachAudio(res.SessionID, res.Turn, audio); err == nil {
		out.AudioURL = fmt.Sprintf("/api/audio/%s/%d", res.SessionID, res.Turn)
	}
	out.Audio = base64.StdEncoding.EncodeToString(audio)
	return out
}

func toMetadata(m models.Metadata) metadataResponse {
	return metadataResponse{
		State:             m.State,
		HasBasicInfo:      m.HasRequiredInfo,
		HasSufficientInfo: m.HasSufficientInfo,
		Profile:           m.Profile,
	}
}

func (h *Handler) writeSessionError(w http.ResponseWriter, r *http.Request, sessionID string, err error) {
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, apperrors.NewSessionNotFoundError(sessionID))
	case errors.Is(err, session.ErrEmptyUtterance):
		writeError(w, http.StatusBadRequest, apperrors.NewInvalidTurnInputError("No text provided"))
	case errors.Is(err, session.ErrSessionLimit):
		writeError(w, http.StatusServiceUnavailable, apperrors.NewSessionLimitError(session.LimitOf(err)))
	default:
		h.logger.Error("session operation failed", map[string]interface{}{
			"session_id": sessionID,
			"request_id": middleware.GetReqID(r.Context()),
			"error":      err.Error(),
		})
		writeError(w, http.StatusInternalServerError, apperrors.Normalize(err))
	}
}

func (h *Handler) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		h.logger.Info("http request", map[string]interface{}{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      ww.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
			"request_id":  middleware.GetReqID(r.Context()),
		})
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError renders a StandardError envelope; internal details stay in logs.
func writeError(w http.ResponseWriter, status int, err *apperrors.StandardError) {
	body := map[string]string{
		"error":   string(err.Code),
		"message": err.Message,
	}
	if status != http.StatusInternalServerError && err.Details != "" {
		body["details"] = err.Details
	}
	writeJSON(w, status, body)
}
