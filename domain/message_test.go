package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestComposeSnapshot_Frozen_At_Compose_Time(t *testing.T) {
	req := require.New(t)
	parent := Message{
		ID:         uuid.New(),
		SenderID:   "U1",
		SenderName: "Alice",
		Body:       "original wording",
		CreatedAt:  time.Now().UTC(),
	}

	snapshot := ComposeSnapshot(parent)

	// A later change to the original message never reaches the snapshot.
	parent.Body = "edited elsewhere"
	parent.SenderName = "Someone Else"

	req.Equal("original wording", snapshot.Body)
	req.Equal("Alice", snapshot.SenderName)
	req.Equal("U1", snapshot.SenderID)
}
