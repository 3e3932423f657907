package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"voice-assistant-be/internal/pkg/logger"
	"voice-assistant-be/pkg/assistant"
	"voice-assistant-be/pkg/dialogue"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunChat(t *testing.T) {
	color.NoColor = true
	log := logger.NewNopLogger()
	router := assistant.NewRouter(dialogue.NewManager(log), log, assistant.WithEventStore(assistant.NewMemoryEventStore()))
	session := dialogue.NewSession("console", uuid.New())

	in := strings.NewReader("hello\ncreate event dentist tomorrow at 3pm\ndelete my appointment\ncancel\nquit\nnever reached\n")
	var out bytes.Buffer

	require.NoError(t, runChat(context.Background(), in, &out, router, session))

	transcript := out.String()
	assert.Contains(t, transcript, "[GREETING -> IDLE]")
	assert.Contains(t, transcript, `Created "dentist"`)
	assert.Contains(t, transcript, "[DELETE_EVENT -> PENDING_DELETE]")
	assert.Contains(t, transcript, "Okay, cancelled.")
	assert.NotContains(t, transcript, "never reached")
	assert.True(t, session.IsIdle())
}
