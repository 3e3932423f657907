package websocket

import (
	"context"
	"errors"
	"strings"

	"voice-assistant-be/internal/dto"
	"voice-assistant-be/internal/pkg/logger"
	"voice-assistant-be/internal/service"
	"voice-assistant-be/pkg/speech"

	"github.com/google/uuid"
)

var ErrPeerGone = errors.New("voice: peer is not accepting frames")

// VoiceSession drives one voice connection: utterances go to the assistant, replies
// are spoken back, and the peer's speech recognizer is kept alive by a Supervisor.
type VoiceSession struct {
	sender       Sender
	userID       uuid.UUID
	conversation string

	assistant  service.IAssistantService
	supervisor *speech.Supervisor
	speaker    speech.Speaker
	voice      speech.Voice
	logger     logger.ILogger
}

type VoiceOptions struct {
	Voice  speech.Voice
	Remote speech.RemoteConfig
	Clock  speech.Clock // nil uses the real clock
}

func NewVoiceSession(sender Sender, userID uuid.UUID, conversation string, assistant service.IAssistantService, opts VoiceOptions, log logger.ILogger) *VoiceSession {
	v := &VoiceSession{
		sender:       sender,
		userID:       userID,
		conversation: conversation,
		assistant:    assistant,
		voice:        opts.Voice,
		logger:       log,
	}

	// The browser speaks locally when no server audio is available.
	local := speech.SpeakerFunc(func(_ context.Context, text string, voice speech.Voice) error {
		if !v.sender.Send(Frame{Type: FrameSpeak, Text: text, Voice: &voice}) {
			return ErrPeerGone
		}
		return nil
	})
	sink := speech.AudioSinkFunc(func(_ context.Context, contentType string, audio []byte) error {
		if !v.sender.Send(Frame{Type: FrameAudio, ContentType: contentType, Audio: audio}) {
			return ErrPeerGone
		}
		return nil
	})
	v.speaker = speech.NewRemoteSynthesizer(opts.Remote, sink, local, log)

	supOpts := []speech.Option{speech.WithNotice(v.notify)}
	if opts.Clock != nil {
		supOpts = append(supOpts, speech.WithClock(opts.Clock))
	}
	v.supervisor = speech.NewSupervisor(&peerStream{sender: sender}, log, supOpts...)
	return v
}

// HandleFrame processes one inbound frame. Frames must be delivered sequentially.
func (v *VoiceSession) HandleFrame(ctx context.Context, frame Frame) {
	switch frame.Type {
	case FrameUtterance, FrameSpeechResult:
		v.handleUtterance(ctx, frame.Text)
	case FrameListenStart:
		v.supervisor.Start()
	case FrameListenStop:
		v.supervisor.Stop()
	case FrameSpeechStarted:
		v.supervisor.HandleStarted()
	case FrameSpeechEnded:
		v.supervisor.HandleEnded()
	case FrameSpeechError:
		v.supervisor.HandleError(frame.Code)
	default:
		v.sender.Send(Frame{Type: FrameError, Message: "Unknown frame type: " + frame.Type})
	}
}

// Close stops listening; pending restarts are cancelled.
func (v *VoiceSession) Close() {
	v.supervisor.Stop()
}

func (v *VoiceSession) Status() speech.Status {
	return v.supervisor.Status()
}

func (v *VoiceSession) handleUtterance(ctx context.Context, text string) {
	res, err := v.assistant.HandleMessage(ctx, v.userID, &dto.AssistantMessageRequest{
		ConversationID: v.conversation,
		Text:           strings.TrimSpace(text),
	})
	if err != nil {
		v.logger.Error("VOICE", "Assistant failed", map[string]interface{}{"error": err})
		v.sender.Send(Frame{Type: FrameError, Message: "Sorry, something went wrong."})
		return
	}

	v.sender.Send(Frame{Type: FrameReply, Reply: res})
	if res.Speech != "" {
		v.speak(ctx, res.Speech)
	}
}

func (v *VoiceSession) notify(err error, message string) {
	code := "stream_failed"
	if errors.Is(err, speech.ErrPermissionDenied) {
		code = "permission_denied"
	}
	v.sender.Send(Frame{Type: FrameNotice, Code: code, Message: message})
	v.speak(context.Background(), message)
}

func (v *VoiceSession) speak(ctx context.Context, text string) {
	if err := v.speaker.Speak(ctx, text, v.voice); err != nil {
		v.logger.Warn("VOICE", "Speech output failed", map[string]interface{}{"error": err.Error()})
	}
}

// peerStream is the browser's recognizer, controlled with speech.command frames.
type peerStream struct {
	sender Sender
}

func (p *peerStream) Start() error {
	if !p.sender.Send(Frame{Type: FrameSpeechCommand, Action: "start"}) {
		return ErrPeerGone
	}
	return nil
}

func (p *peerStream) Stop() error {
	if !p.sender.Send(Frame{Type: FrameSpeechCommand, Action: "stop"}) {
		return ErrPeerGone
	}
	return nil
}
