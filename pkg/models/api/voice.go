package api

const (
	AudioFormatMP3      = "mp3"
	AudioFormatLinear16 = "linear16"
)

type TextToSpeechRequest struct {
	Text       string `json:"text"`
	Model      string `json:"model,omitempty"`
	Encoding   string `json:"encoding,omitempty"`
	SampleRate int    `json:"sample_rate,omitempty"`
}

type TextToSpeechResponse struct {
	Audio       string `json:"audio"`
	AudioFormat string `json:"audio_format"`
	TextLength  int    `json:"text_length"`
	Model       string `json:"model"`
}

type SpeechToTextRequest struct {
	Audio     string `json:"audio"`
	Model     string `json:"model,omitempty"`
	Language  string `json:"language,omitempty"`
	Punctuate *bool  `json:"punctuate,omitempty"`
	Diarize   bool   `json:"diarize,omitempty"`
}

type SpeechToTextResponse struct {
	Transcript string           `json:"transcript"`
	Confidence float64          `json:"confidence"`
	Words      []map[string]any `json:"words"`
	Metadata   map[string]any   `json:"metadata"`
}

type VoiceQueryRequest struct {
	Audio      string         `json:"audio"`
	AIProvider string         `json:"ai_provider,omitempty"`
	Context    map[string]any `json:"context,omitempty"`
}

type VoiceQueryResponse struct {
	UserQuestion   string  `json:"user_question"`
	UserConfidence float64 `json:"user_confidence"`
	AIResponse     string  `json:"ai_response"`
	AudioResponse  string  `json:"audio_response"`
	AudioFormat    string  `json:"audio_format"`
	Provider       string  `json:"provider"`
	Model          string  `json:"model"`
}

type VoiceTextRequest struct {
	Prompt     string         `json:"prompt"`
	AIProvider string         `json:"ai_provider,omitempty"`
	VoiceModel string         `json:"voice_model,omitempty"`
	Context    map[string]any `json:"context,omitempty"`
}

type VoiceTextResponse struct {
	Text        string `json:"text"`
	Audio       string `json:"audio"`
	AudioFormat string `json:"audio_format"`
	Provider    string `json:"provider"`
	Model       string `json:"model"`
}

type VoiceHealthResponse struct {
	Configured         bool     `json:"configured"`
	APIKeyPresent      bool     `json:"api_key_present"`
	AvailableTTSModels []string `json:"available_tts_models"`
	AvailableSTTModels []string `json:"available_stt_models"`
}
