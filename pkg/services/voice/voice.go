package voice

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/metagrowth/growth-agent/pkg/services/providers"
	"github.com/rs/zerolog"
)

const (
	DefaultBaseURL    = "https://api.deepgram.com"
	DefaultTTSModel   = "aura-asteria-en"
	DefaultSTTModel   = "nova-2"
	DefaultLanguage   = "en"
	DefaultEncoding   = "linear16"
	DefaultSampleRate = 24000
	DefaultProvider   = providers.Claude
	DefaultTimeout    = 60 * time.Second

	// ReplyEncoding is used for spoken model answers
	ReplyEncoding = "mp3"

	maxAudioSize = 50 * 1024 * 1024
)

var (
	ErrNotConfigured   = errors.New("Deepgram API key not configured")
	ErrEmptyTranscript = errors.New("Could not transcribe audio")
)

var TTSModels = []string{
	"aura-asteria-en",
	"aura-luna-en",
	"aura-stella-en",
	"aura-athena-en",
	"aura-hera-en",
	"aura-orion-en",
	"aura-arcas-en",
	"aura-perseus-en",
	"aura-angus-en",
	"aura-orpheus-en",
	"aura-helios-en",
	"aura-zeus-en",
}

var STTModels = []string{"nova-2", "nova", "enhanced", "base"}

// APIError is a non-2xx answer from Deepgram
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("deepgram error (HTTP %d): %s", e.Status, e.Message)
}

type SpeakOptions struct {
	Model      string
	Encoding   string
	SampleRate int
}

type ListenOptions struct {
	Model     string
	Language  string
	Punctuate bool
	Diarize   bool
}

// DefaultListenOptions punctuates, without diarization
func DefaultListenOptions() ListenOptions {
	return ListenOptions{Model: DefaultSTTModel, Language: DefaultLanguage, Punctuate: true}
}

type Transcript struct {
	Text       string
	Confidence float64
	Words      []map[string]any
	Metadata   map[string]any
}

type Reply struct {
	Text        string
	Audio       []byte
	AudioFormat string
	Provider    string
	Model       string
}

type QueryResult struct {
	Question   string
	Confidence float64
	Reply      Reply
}

type Service interface {
	Configured() bool
	Speak(ctx context.Context, text string, opts SpeakOptions) ([]byte, error)
	Listen(ctx context.Context, audio []byte, opts ListenOptions) (*Transcript, error)
	// Respond asks a model provider and speaks its answer
	Respond(ctx context.Context, prompt, provider string) (*Reply, error)
	// Query transcribes audio and responds to the question in it
	Query(ctx context.Context, audio []byte, provider string) (*QueryResult, error)
}

type Config struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

type service struct {
	cfg       Config
	providers providers.Registry
}

func NewService(cfg Config, registry providers.Registry) Service {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: DefaultTimeout}
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &service{cfg: cfg, providers: registry}
}

func (s *service) Configured() bool {
	return s.cfg.APIKey != ""
}

func (s *service) Speak(ctx context.Context, text string, opts SpeakOptions) ([]byte, error) {
	if !s.Configured() {
		return nil, ErrNotConfigured
	}
	if opts.Model == "" {
		opts.Model = DefaultTTSModel
	}
	if opts.Encoding == "" {
		opts.Encoding = DefaultEncoding
	}

	query := url.Values{}
	query.Set("model", opts.Model)
	query.Set("encoding", opts.Encoding)
	// mp3 has a fixed rate on the Deepgram side
	if opts.Encoding != ReplyEncoding {
		if opts.SampleRate <= 0 {
			opts.SampleRate = DefaultSampleRate
		}
		query.Set("sample_rate", strconv.Itoa(opts.SampleRate))
	}

	payload, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return nil, fmt.Errorf("encode speak request: %w", err)
	}

	zerolog.Ctx(ctx).Info().
		Int("text_length", len(text)).
		Str("model", opts.Model).
		Str("encoding", opts.Encoding).
		Msg("Generating speech")

	audio, err := s.post(ctx, "/v1/speak", query, "application/json", payload)
	if err != nil {
		return nil, err
	}
	zerolog.Ctx(ctx).Info().Int("audio_size", len(audio)).Msg("Speech generated")
	return audio, nil
}

type listenResponse struct {
	Metadata map[string]any `json:"metadata"`
	Results  struct {
		Channels []struct {
			Alternatives []struct {
				Transcript string           `json:"transcript"`
				Confidence float64          `json:"confidence"`
				Words      []map[string]any `json:"words"`
			} `json:"alternatives"`
		} `json:"channels"`
	} `json:"results"`
}

func (s *service) Listen(ctx context.Context, audio []byte, opts ListenOptions) (*Transcript, error) {
	if !s.Configured() {
		return nil, ErrNotConfigured
	}
	if opts.Model == "" {
		opts.Model = DefaultSTTModel
	}
	if opts.Language == "" {
		opts.Language = DefaultLanguage
	}

	query := url.Values{}
	query.Set("model", opts.Model)
	query.Set("language", opts.Language)
	query.Set("punctuate", strconv.FormatBool(opts.Punctuate))
	query.Set("diarize", strconv.FormatBool(opts.Diarize))
	query.Set("smart_format", "true")

	zerolog.Ctx(ctx).Info().Int("audio_size", len(audio)).Str("model", opts.Model).Msg("Transcribing audio")

	body, err := s.post(ctx, "/v1/listen", query, "application/octet-stream", audio)
	if err != nil {
		return nil, err
	}

	var resp listenResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode transcription: %w", err)
	}

	transcript := &Transcript{Words: []map[string]any{}, Metadata: resp.Metadata}
	if transcript.Metadata == nil {
		transcript.Metadata = map[string]any{}
	}
	if len(resp.Results.Channels) > 0 && len(resp.Results.Channels[0].Alternatives) > 0 {
		alt := resp.Results.Channels[0].Alternatives[0]
		transcript.Text = alt.Transcript
		transcript.Confidence = alt.Confidence
		if alt.Words != nil {
			transcript.Words = alt.Words
		}
	}

	zerolog.Ctx(ctx).Info().Int("transcript_length", len(transcript.Text)).Msg("Transcription complete")
	return transcript, nil
}

func (s *service) Respond(ctx context.Context, prompt, provider string) (*Reply, error) {
	if !s.Configured() {
		return nil, ErrNotConfigured
	}
	if provider == "" {
		provider = DefaultProvider
	}
	if s.providers == nil {
		return nil, fmt.Errorf("provider %s: %w", provider, providers.ErrNotConfigured)
	}

	p, err := s.providers.Get(provider)
	if err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Info().Str("provider", provider).Msg("Generating voice response")
	answer, err := p.Generate(ctx, prompt, providers.Options{})
	if err != nil {
		return nil, err
	}

	audio, err := s.Speak(ctx, answer.Content, SpeakOptions{Encoding: ReplyEncoding})
	if err != nil {
		return nil, err
	}

	return &Reply{
		Text:        answer.Content,
		Audio:       audio,
		AudioFormat: ReplyEncoding,
		Provider:    strings.ToLower(provider),
		Model:       answer.Model,
	}, nil
}

func (s *service) Query(ctx context.Context, audio []byte, provider string) (*QueryResult, error) {
	if !s.Configured() {
		return nil, ErrNotConfigured
	}

	transcript, err := s.Listen(ctx, audio, DefaultListenOptions())
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(transcript.Text) == "" {
		return nil, ErrEmptyTranscript
	}

	reply, err := s.Respond(ctx, transcript.Text, provider)
	if err != nil {
		return nil, err
	}
	return &QueryResult{
		Question:   transcript.Text,
		Confidence: transcript.Confidence,
		Reply:      *reply,
	}, nil
}

func (s *service) post(ctx context.Context, path string, query url.Values, contentType string, body []byte) ([]byte, error) {
	endpoint := s.cfg.BaseURL + path + "?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build deepgram request: %w", err)
	}
	req.Header.Set("Authorization", "Token "+s.cfg.APIKey)
	req.Header.Set("Content-Type", contentType)

	resp, err := s.cfg.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("deepgram request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxAudioSize))
	if err != nil {
		return nil, fmt.Errorf("read deepgram response: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &APIError{Status: resp.StatusCode, Message: errorMessage(data)}
	}
	return data, nil
}

func errorMessage(body []byte) string {
	var payload struct {
		ErrMsg string `json:"err_msg"`
		Reason string `json:"reason"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.ErrMsg != "" {
			return payload.ErrMsg
		}
		if payload.Reason != "" {
			return payload.Reason
		}
	}
	return strings.TrimSpace(string(body))
}

// ContentType maps a TTS encoding to the media type of the returned audio
func ContentType(encoding string) string {
	switch encoding {
	case "", DefaultEncoding:
		return "audio/wav"
	case ReplyEncoding:
		return "audio/mpeg"
	case "opus":
		return "audio/ogg"
	case "flac":
		return "audio/flac"
	case "aac":
		return "audio/aac"
	default:
		return "application/octet-stream"
	}
}
