package memory

import (
	"testing"
	"time"

	"voice-assistant-be/pkg/dialogue"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRepository_SaveGetDelete(t *testing.T) {
	repo := NewSessionRepository(time.Hour)
	s := dialogue.NewSession("conv-1", uuid.New())
	s.State = dialogue.PendingDisambiguation{Term: "mercury"}
	s.Generation = 3

	repo.Save(s)
	s.Generation = 99

	got, ok := repo.Get("conv-1")
	require.True(t, ok)
	assert.Equal(t, uint64(3), got.Generation, "stored copy is isolated from the caller")
	assert.Equal(t, "PENDING_DISAMBIGUATION", got.State.Name())

	got.Generation = 42
	again, _ := repo.Get("conv-1")
	assert.Equal(t, uint64(3), again.Generation)

	repo.Delete("conv-1")
	_, ok = repo.Get("conv-1")
	assert.False(t, ok)
}

func TestSessionRepository_Expires(t *testing.T) {
	repo := NewSessionRepository(20 * time.Millisecond)
	repo.Save(dialogue.NewSession("conv-2", uuid.New()))

	time.Sleep(40 * time.Millisecond)

	_, ok := repo.Get("conv-2")
	assert.False(t, ok)
}
