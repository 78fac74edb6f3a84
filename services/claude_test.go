package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"petplus-bot/models"
)

func TestBuildMessagesEmptyHistory(t *testing.T) {
	t.Parallel()

	messages := buildMessages(nil, "hola")
	require.Len(t, messages, 1)
	assert.Equal(t, ClaudeTurn{Role: "user", Content: "hola"}, messages[0])
}

func TestBuildMessagesAlternatingHistory(t *testing.T) {
	t.Parallel()

	history := []models.ChatTurn{
		{Role: "user", Content: "busco un juguete"},
		{Role: "assistant", Content: "¿Para gato o para perro?"},
	}
	messages := buildMessages(history, "para gato")
	require.Len(t, messages, 3)
	assert.Equal(t, "user", messages[0].Role)
	assert.Equal(t, "assistant", messages[1].Role)
	assert.Equal(t, ClaudeTurn{Role: "user", Content: "para gato"}, messages[2])
}

func TestBuildMessagesDropsLeadingAssistantTurns(t *testing.T) {
	t.Parallel()

	// A greeting recorded before any user message must not lead the
	// conversation; the API requires the first message to be from the user.
	history := []models.ChatTurn{
		{Role: "assistant", Content: welcomeText},
		{Role: "user", Content: "busco un juguete"},
		{Role: "assistant", Content: "¿Para gato o para perro?"},
	}
	messages := buildMessages(history, "para gato")
	require.NotEmpty(t, messages)
	assert.Equal(t, "user", messages[0].Role)
	assert.Equal(t, "busco un juguete", messages[0].Content)
}

func TestBuildMessagesMergesConsecutiveSameRoleTurns(t *testing.T) {
	t.Parallel()

	// Multi-action replies record several assistant turns in a row; the API
	// rejects repeated roles, so they collapse into one message.
	history := []models.ChatTurn{
		{Role: "user", Content: "rascador"},
		{Role: "assistant", Content: "Rascador para gatos"},
		{Role: "assistant", Content: menuPromptText},
		{Role: "user", Content: "y el precio"},
		{Role: "user", Content: "en oferta?"},
	}
	messages := buildMessages(history, "me interesa")
	require.Len(t, messages, 3)
	assert.Equal(t, ClaudeTurn{Role: "user", Content: "rascador"}, messages[0])
	assert.Equal(t, ClaudeTurn{
		Role:    "assistant",
		Content: "Rascador para gatos\n" + menuPromptText,
	}, messages[1])
	assert.Equal(t, ClaudeTurn{
		Role:    "user",
		Content: "y el precio\nen oferta?\nme interesa",
	}, messages[2])
}

func TestBuildMessagesAlwaysEndsWithCurrentUserText(t *testing.T) {
	t.Parallel()

	history := []models.ChatTurn{
		{Role: "user", Content: "hola"},
	}
	messages := buildMessages(history, "busco guantes")
	require.Len(t, messages, 1)
	assert.Equal(t, "user", messages[0].Role)
	assert.Equal(t, "hola\nbusco guantes", messages[0].Content)
}
