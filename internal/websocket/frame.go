package websocket

import (
	"voice-assistant-be/internal/dto"
	"voice-assistant-be/pkg/speech"
)

// Inbound frame types.
const (
	FrameUtterance     = "utterance"
	FrameSpeechResult  = "speech.result"
	FrameSpeechStarted = "speech.started"
	FrameSpeechEnded   = "speech.ended"
	FrameSpeechError   = "speech.error"
	FrameListenStart   = "listen.start"
	FrameListenStop    = "listen.stop"
)

// Outbound frame types.
const (
	FrameReply           = "reply"
	FrameSpeak           = "speak"
	FrameAudio           = "audio"
	FrameSpeechCommand   = "speech.command"
	FrameNotice          = "notice"
	FrameCalendarUpdated = "calendar_updated"
	FrameError           = "error"
)

// Frame is the single JSON envelope used in both directions on the voice channel.
type Frame struct {
	Type        string                        `json:"type"`
	Text        string                        `json:"text,omitempty"`
	Code        string                        `json:"code,omitempty"`
	Action      string                        `json:"action,omitempty"`
	Message     string                        `json:"message,omitempty"`
	Reply       *dto.AssistantMessageResponse `json:"reply,omitempty"`
	Voice       *speech.Voice                 `json:"voice,omitempty"`
	ContentType string                        `json:"content_type,omitempty"`
	Audio       []byte                        `json:"audio,omitempty"`
}

// Sender queues a frame for the peer and reports whether it was accepted.
type Sender interface {
	Send(frame Frame) bool
}
