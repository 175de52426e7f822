package usecases

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xcro3dile/coderag-go/internal/domain/entities"
)

func TestConversationContext_ActiveWindow(t *testing.T) {
	c := NewConversationContext(2, nil)
	for i := 1; i <= 5; i++ {
		c.AddMessage(entities.RoleUser, fmt.Sprintf("m%d", i), time.Time{})
	}

	assert.Equal(t, "user: m4\nuser: m5", c.ContextString())
	assert.Equal(t, 5, c.Len(), "full history is kept")
}

func TestConversationContext_Empty(t *testing.T) {
	c := NewConversationContext(0, nil)

	assert.Equal(t, "", c.ContextString())
	assert.Equal(t, DefaultMaxMessages, c.MaxMessages())
}

func TestConversationContext_Timestamps(t *testing.T) {
	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	c := NewConversationContext(10, nil)
	c.now = func() time.Time { return fixed }

	given := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	c.AddMessage(entities.RoleUser, "hi", given)
	c.AddMessage(entities.RoleAssistant, "hello", time.Time{})

	msgs := c.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, given, msgs[0].Timestamp)
	assert.Equal(t, fixed, msgs[1].Timestamp)
	assert.Equal(t, "user: hi\nassistant: hello", c.ContextString())
}

func TestConversationContext_MessagesIsCopy(t *testing.T) {
	c := NewConversationContext(10, nil)
	c.AddMessage(entities.RoleUser, "original", time.Time{})

	msgs := c.Messages()
	msgs[0].Content = "changed"

	assert.Equal(t, "original", c.Messages()[0].Content)
}

func TestConversationContext_Clear(t *testing.T) {
	c := NewConversationContext(10, nil)
	c.AddMessage(entities.RoleUser, "a", time.Time{})
	c.Clear()

	assert.Equal(t, 0, c.Len())
	assert.Equal(t, "", c.ContextString())
}
