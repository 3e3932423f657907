package memory

import (
	"time"

	"voice-assistant-be/pkg/dialogue"

	"github.com/patrickmn/go-cache"
)

// SessionRepository keeps dialogue sessions in process memory. Entries expire after
// ttl of inactivity; an expired conversation starts again from Idle.
type SessionRepository struct {
	cache *cache.Cache
}

func NewSessionRepository(ttl time.Duration) *SessionRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &SessionRepository{
		cache: cache.New(ttl, 10*time.Minute),
	}
}

// Save stores a copy so later mutations by the caller do not leak into the store.
func (r *SessionRepository) Save(session *dialogue.Session) {
	r.cache.Set(session.ID, session.Clone(), cache.DefaultExpiration)
}

func (r *SessionRepository) Get(sessionID string) (*dialogue.Session, bool) {
	if x, found := r.cache.Get(sessionID); found {
		return x.(*dialogue.Session).Clone(), true
	}
	return nil, false
}

func (r *SessionRepository) Delete(sessionID string) {
	r.cache.Delete(sessionID)
}

func (r *SessionRepository) Count() int {
	return r.cache.ItemCount()
}
