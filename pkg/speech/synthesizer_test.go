package speech

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"voice-assistant-be/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	spoken []string
	audio  [][]byte
	types  []string
}

func (r *recorder) speaker() Speaker {
	return SpeakerFunc(func(_ context.Context, text string, _ Voice) error {
		r.spoken = append(r.spoken, text)
		return nil
	})
}

func (r *recorder) sink() AudioSink {
	return AudioSinkFunc(func(_ context.Context, contentType string, audio []byte) error {
		r.types = append(r.types, contentType)
		r.audio = append(r.audio, audio)
		return nil
	})
}

func TestRemoteSynthesizer_PlaysServerAudio(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "secret", r.Header.Get("X-TTS-TOKEN"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "hello there", body["text"])

		w.Header().Set("Content-Type", "audio/wav")
		_, _ = w.Write([]byte("RIFF...."))
	}))
	defer srv.Close()

	rec := &recorder{}
	synth := NewRemoteSynthesizer(RemoteConfig{Endpoint: srv.URL, Token: "secret"}, rec.sink(), rec.speaker(), logger.NewNopLogger())

	require.NoError(t, synth.Speak(context.Background(), "hello there", DefaultVoice()))
	assert.Equal(t, []string{"audio/wav"}, rec.types)
	assert.Equal(t, []byte("RIFF...."), rec.audio[0])
	assert.Empty(t, rec.spoken)
}

func TestRemoteSynthesizer_FallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
	}))
	defer srv.Close()

	okSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("RIFF...."))
	}))
	defer okSrv.Close()

	tests := []struct {
		name string
		cfg  RemoteConfig
		sink AudioSink
	}{
		{"no endpoint", RemoteConfig{}, nil},
		{"server error", RemoteConfig{Endpoint: srv.URL}, nil},
		{"unreachable", RemoteConfig{Endpoint: "http://127.0.0.1:1/tts"}, nil},
		{"playback error", RemoteConfig{Endpoint: okSrv.URL}, AudioSinkFunc(func(context.Context, string, []byte) error {
			return errors.New("socket closed")
		})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{}
			sink := tt.sink
			if sink == nil {
				sink = rec.sink()
			}
			synth := NewRemoteSynthesizer(tt.cfg, sink, rec.speaker(), logger.NewNopLogger())

			require.NoError(t, synth.Speak(context.Background(), "fallback please", DefaultVoice()))
			assert.Equal(t, []string{"fallback please"}, rec.spoken)
			assert.Empty(t, rec.audio)
		})
	}
}
