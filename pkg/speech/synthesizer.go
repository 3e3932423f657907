package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"voice-assistant-be/internal/pkg/logger"
)

// Voice carries the synthesis settings a local engine applies.
type Voice struct {
	Lang      string  `json:"lang"`
	Rate      float64 `json:"rate"`
	Pitch     float64 `json:"pitch"`
	VoiceHint string  `json:"voice_hint,omitempty"`
}

func DefaultVoice() Voice {
	return Voice{Lang: "en-US", Rate: 1, Pitch: 1}
}

// Speaker turns text into speech.
type Speaker interface {
	Speak(ctx context.Context, text string, voice Voice) error
}

type SpeakerFunc func(ctx context.Context, text string, voice Voice) error

func (f SpeakerFunc) Speak(ctx context.Context, text string, voice Voice) error {
	return f(ctx, text, voice)
}

// AudioSink plays synthesized audio.
type AudioSink interface {
	PlayAudio(ctx context.Context, contentType string, audio []byte) error
}

type AudioSinkFunc func(ctx context.Context, contentType string, audio []byte) error

func (f AudioSinkFunc) PlayAudio(ctx context.Context, contentType string, audio []byte) error {
	return f(ctx, contentType, audio)
}

type RemoteConfig struct {
	Endpoint string
	Token    string
	Timeout  time.Duration
}

// RemoteSynthesizer posts text to a TTS server and plays the returned audio. Any
// failure falls back to the local speaker.
type RemoteSynthesizer struct {
	cfg      RemoteConfig
	http     *http.Client
	sink     AudioSink
	fallback Speaker
	logger   logger.ILogger
}

func NewRemoteSynthesizer(cfg RemoteConfig, sink AudioSink, fallback Speaker, log logger.ILogger) *RemoteSynthesizer {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &RemoteSynthesizer{
		cfg:      cfg,
		http:     &http.Client{Timeout: cfg.Timeout},
		sink:     sink,
		fallback: fallback,
		logger:   log,
	}
}

func (r *RemoteSynthesizer) Speak(ctx context.Context, text string, voice Voice) error {
	if r.cfg.Endpoint == "" {
		return r.fallback.Speak(ctx, text, voice)
	}

	audio, contentType, err := r.synthesize(ctx, text)
	if err == nil {
		err = r.sink.PlayAudio(ctx, contentType, audio)
	}
	if err != nil {
		r.logger.Warn("TTS", "Server TTS failed, falling back to local synthesis", map[string]interface{}{"error": err.Error()})
		return r.fallback.Speak(ctx, text, voice)
	}
	return nil
}

func (r *RemoteSynthesizer) synthesize(ctx context.Context, text string) ([]byte, string, error) {
	body, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return nil, "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if r.cfg.Token != "" {
		req.Header.Set("X-TTS-TOKEN", r.cfg.Token)
	}

	resp, err := r.http.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("tts server returned status %d", resp.StatusCode)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", err
	}
	if len(audio) == 0 {
		return nil, "", fmt.Errorf("tts server returned no audio")
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "audio/wav"
	}
	return audio, contentType, nil
}
