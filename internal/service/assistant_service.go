package service

import (
	"context"
	"strings"
	"sync"

	"voice-assistant-be/internal/dto"
	"voice-assistant-be/internal/mapper"
	"voice-assistant-be/internal/pkg/logger"
	"voice-assistant-be/internal/repository/memory"
	"voice-assistant-be/pkg/assistant"
	"voice-assistant-be/pkg/dialogue"

	"github.com/google/uuid"
)

// DefaultConversation is used when a client does not name its conversation.
const DefaultConversation = "default"

type IAssistantService interface {
	HandleMessage(ctx context.Context, userId uuid.UUID, req *dto.AssistantMessageRequest) (*dto.AssistantMessageResponse, error)
	GetState(ctx context.Context, userId uuid.UUID, conversationId string) (*dto.AssistantStateResponse, error)
	ResetState(ctx context.Context, userId uuid.UUID, conversationId string) error
}

type assistantService struct {
	router   *assistant.Router
	sessions *memory.SessionRepository
	locks    *conversationLocks
	mapper   *mapper.EventMapper
	logger   logger.ILogger
}

func NewAssistantService(router *assistant.Router, sessions *memory.SessionRepository, log logger.ILogger) IAssistantService {
	return &assistantService{
		router:   router,
		sessions: sessions,
		locks:    newConversationLocks(),
		mapper:   mapper.NewEventMapper(),
		logger:   log,
	}
}

// HandleMessage runs one utterance through the router. Utterances of the same
// conversation are processed one at a time.
func (s *assistantService) HandleMessage(ctx context.Context, userId uuid.UUID, req *dto.AssistantMessageRequest) (*dto.AssistantMessageResponse, error) {
	conversationId := normalizeConversation(req.ConversationID)
	key := sessionKey(userId, conversationId)

	unlock := s.locks.lock(key)
	defer unlock()

	session, ok := s.sessions.Get(key)
	if !ok {
		session = dialogue.NewSession(key, userId)
	}
	seen := session.Generation

	resp := s.router.Handle(ctx, session, req.Text)

	if current, ok := s.sessions.Get(key); ok && current.Generation != seen {
		s.logger.Warn("ASSISTANT_SERVICE", "Session moved while handling, discarding state", map[string]interface{}{
			"conversation": conversationId,
			"seen":         seen,
			"current":      current.Generation,
		})
	} else {
		s.sessions.Save(session)
	}

	return &dto.AssistantMessageResponse{
		ConversationID: conversationId,
		Intent:         string(resp.Intent),
		Text:           resp.Text,
		Speech:         resp.Speech,
		Options:        resp.Options,
		State:          resp.State,
		Event:          s.mapper.ToResponse(resp.Event),
	}, nil
}

func (s *assistantService) GetState(ctx context.Context, userId uuid.UUID, conversationId string) (*dto.AssistantStateResponse, error) {
	conversationId = normalizeConversation(conversationId)
	res := &dto.AssistantStateResponse{
		ConversationID: conversationId,
		State:          dialogue.Idle{}.Name(),
	}

	session, ok := s.sessions.Get(sessionKey(userId, conversationId))
	if !ok || session.State == nil {
		return res, nil
	}

	res.State = session.State.Name()
	res.Generation = session.Generation
	switch st := session.State.(type) {
	case dialogue.PendingDisambiguation:
		res.Term = st.Term
		for _, c := range st.Candidates {
			res.Options = append(res.Options, c.Title)
		}
	case dialogue.PendingAction:
		for _, e := range st.Events {
			res.Options = append(res.Options, e.Summary)
		}
	}
	return res, nil
}

// ResetState abandons any open thread for the conversation.
func (s *assistantService) ResetState(ctx context.Context, userId uuid.UUID, conversationId string) error {
	key := sessionKey(userId, normalizeConversation(conversationId))

	unlock := s.locks.lock(key)
	defer unlock()

	s.sessions.Delete(key)
	return nil
}

func normalizeConversation(id string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		return DefaultConversation
	}
	return id
}

// sessionKey scopes conversation ids per user so one user cannot reach another's thread.
func sessionKey(userId uuid.UUID, conversationId string) string {
	return userId.String() + ":" + conversationId
}

// conversationLocks hands out one mutex per key and forgets it when nobody holds or waits on it.
type conversationLocks struct {
	mu    sync.Mutex
	locks map[string]*refLock
}

type refLock struct {
	mu   sync.Mutex
	refs int
}

func newConversationLocks() *conversationLocks {
	return &conversationLocks{locks: make(map[string]*refLock)}
}

func (c *conversationLocks) lock(key string) func() {
	c.mu.Lock()
	l, ok := c.locks[key]
	if !ok {
		l = &refLock{}
		c.locks[key] = l
	}
	l.refs++
	c.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		c.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(c.locks, key)
		}
		c.mu.Unlock()
	}
}

func (c *conversationLocks) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.locks)
}
