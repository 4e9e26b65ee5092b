package voice

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/metagrowth/growth-agent/pkg/handlers/response"
	"github.com/metagrowth/growth-agent/pkg/models/api"
	"github.com/metagrowth/growth-agent/pkg/services/providers"
	"github.com/metagrowth/growth-agent/pkg/services/voice"
	"github.com/rs/zerolog"
)

const notConfiguredDetail = "Deepgram API key not configured"

type Handler struct {
	voice voice.Service
}

func NewHandler(svc voice.Service) *Handler {
	return &Handler{voice: svc}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	configured := h.voice.Configured()
	response.JSON(w, r, http.StatusOK, api.VoiceHealthResponse{
		Configured:         configured,
		APIKeyPresent:      configured,
		AvailableTTSModels: voice.TTSModels,
		AvailableSTTModels: voice.STTModels,
	})
}

// configured answers 503 when Deepgram has no key
func (h *Handler) configured(w http.ResponseWriter, r *http.Request) bool {
	if h.voice.Configured() {
		return true
	}
	response.Error(w, r, http.StatusServiceUnavailable,
		notConfiguredDetail+". Please set DEEPGRAM_API_KEY environment variable.")
	return false
}

func (h *Handler) synthesize(w http.ResponseWriter, r *http.Request) (*api.TextToSpeechRequest, []byte, bool) {
	if !h.configured(w, r) {
		return nil, nil, false
	}
	var req api.TextToSpeechRequest
	if !response.Decode(w, r, &req) {
		return nil, nil, false
	}
	if req.Model == "" {
		req.Model = voice.DefaultTTSModel
	}
	if req.Encoding == "" {
		req.Encoding = voice.DefaultEncoding
	}

	audio, err := h.voice.Speak(r.Context(), req.Text, voice.SpeakOptions{
		Model:      req.Model,
		Encoding:   req.Encoding,
		SampleRate: req.SampleRate,
	})
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("text to speech failed")
		response.Error(w, r, http.StatusInternalServerError, fmt.Sprintf("Text-to-speech conversion failed: %v", err))
		return nil, nil, false
	}
	return &req, audio, true
}

func (h *Handler) TextToSpeech(w http.ResponseWriter, r *http.Request) {
	req, audio, ok := h.synthesize(w, r)
	if !ok {
		return
	}
	response.JSON(w, r, http.StatusOK, api.TextToSpeechResponse{
		Audio:       base64.StdEncoding.EncodeToString(audio),
		AudioFormat: req.Encoding,
		TextLength:  len(req.Text),
		Model:       req.Model,
	})
}

func (h *Handler) TextToSpeechRaw(w http.ResponseWriter, r *http.Request) {
	req, audio, ok := h.synthesize(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", voice.ContentType(req.Encoding))
	w.Header().Set("Content-Disposition", "inline; filename=speech")
	w.Header().Set("Content-Length", strconv.Itoa(len(audio)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(audio); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to write audio")
	}
}

func (h *Handler) SpeechToText(w http.ResponseWriter, r *http.Request) {
	if !h.configured(w, r) {
		return
	}
	var req api.SpeechToTextRequest
	if !response.Decode(w, r, &req) {
		return
	}
	audio, ok := decodeAudio(w, r, req.Audio)
	if !ok {
		return
	}

	opts := voice.DefaultListenOptions()
	if req.Model != "" {
		opts.Model = req.Model
	}
	if req.Language != "" {
		opts.Language = req.Language
	}
	if req.Punctuate != nil {
		opts.Punctuate = *req.Punctuate
	}
	opts.Diarize = req.Diarize

	transcript, err := h.voice.Listen(r.Context(), audio, opts)
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("speech to text failed")
		response.Error(w, r, http.StatusInternalServerError, fmt.Sprintf("Speech-to-text conversion failed: %v", err))
		return
	}
	response.JSON(w, r, http.StatusOK, api.SpeechToTextResponse{
		Transcript: transcript.Text,
		Confidence: transcript.Confidence,
		Words:      transcript.Words,
		Metadata:   transcript.Metadata,
	})
}

func (h *Handler) Query(w http.ResponseWriter, r *http.Request) {
	if !h.configured(w, r) {
		return
	}
	var req api.VoiceQueryRequest
	if !response.Decode(w, r, &req) {
		return
	}
	audio, ok := decodeAudio(w, r, req.Audio)
	if !ok {
		return
	}

	result, err := h.voice.Query(r.Context(), audio, req.AIProvider)
	if err != nil {
		writeVoiceError(w, r, err, "Voice query processing failed")
		return
	}
	response.JSON(w, r, http.StatusOK, api.VoiceQueryResponse{
		UserQuestion:   result.Question,
		UserConfidence: result.Confidence,
		AIResponse:     result.Reply.Text,
		AudioResponse:  base64.StdEncoding.EncodeToString(result.Reply.Audio),
		AudioFormat:    result.Reply.AudioFormat,
		Provider:       result.Reply.Provider,
		Model:          result.Reply.Model,
	})
}

func (h *Handler) Speak(w http.ResponseWriter, r *http.Request) {
	if !h.configured(w, r) {
		return
	}
	var req api.VoiceTextRequest
	if !response.Decode(w, r, &req) {
		return
	}

	reply, err := h.voice.Respond(r.Context(), req.Prompt, req.AIProvider)
	if err != nil {
		writeVoiceError(w, r, err, "Voice text processing failed")
		return
	}
	response.JSON(w, r, http.StatusOK, api.VoiceTextResponse{
		Text:        reply.Text,
		Audio:       base64.StdEncoding.EncodeToString(reply.Audio),
		AudioFormat: reply.AudioFormat,
		Provider:    reply.Provider,
		Model:       reply.Model,
	})
}

func decodeAudio(w http.ResponseWriter, r *http.Request, encoded string) ([]byte, bool) {
	audio, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		response.Error(w, r, http.StatusBadRequest, "Audio must be base64 encoded")
		return nil, false
	}
	return audio, true
}

func writeVoiceError(w http.ResponseWriter, r *http.Request, err error, prefix string) {
	switch {
	case errors.Is(err, voice.ErrEmptyTranscript),
		errors.Is(err, providers.ErrUnknownProvider),
		errors.Is(err, providers.ErrNotConfigured):
		response.Error(w, r, http.StatusBadRequest, err.Error())
	default:
		zerolog.Ctx(r.Context()).Error().Err(err).Msg(prefix)
		response.Error(w, r, http.StatusInternalServerError, fmt.Sprintf("%s: %v", prefix, err))
	}
}
