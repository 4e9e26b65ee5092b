package client

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/metagrowth/growth-agent/pkg/models/api"
)

func (c *Client) VoiceHealth(ctx context.Context) (*api.VoiceHealthResponse, error) {
	var resp api.VoiceHealthResponse
	if err := c.do(ctx, http.MethodGet, "/voice/health", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) TextToSpeech(ctx context.Context, req api.TextToSpeechRequest) (*api.TextToSpeechResponse, error) {
	var resp api.TextToSpeechResponse
	if err := c.do(ctx, http.MethodPost, "/voice/tts", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// TextToSpeechRaw returns the synthesized audio bytes instead of base64 JSON
func (c *Client) TextToSpeechRaw(ctx context.Context, req api.TextToSpeechRequest) ([]byte, error) {
	resp, err := c.send(ctx, http.MethodPost, "/voice/tts/raw", req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read audio: %v", ErrUnavailable, err)
	}
	return audio, nil
}

func (c *Client) SpeechToText(ctx context.Context, req api.SpeechToTextRequest) (*api.SpeechToTextResponse, error) {
	var resp api.SpeechToTextResponse
	if err := c.do(ctx, http.MethodPost, "/voice/stt", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) VoiceQuery(ctx context.Context, req api.VoiceQueryRequest) (*api.VoiceQueryResponse, error) {
	var resp api.VoiceQueryResponse
	if err := c.do(ctx, http.MethodPost, "/voice/query", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Speak(ctx context.Context, req api.VoiceTextRequest) (*api.VoiceTextResponse, error) {
	var resp api.VoiceTextResponse
	if err := c.do(ctx, http.MethodPost, "/voice/speak", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
