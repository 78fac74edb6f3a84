package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"accents stripped", "¿CUÁNTO vale el pingüino?", "cuanto vale el pinguino"},
		{"enye stripped", "enséñame el rascador", "ensename el rascador"},
		{"punctuation to space", "precio,envio;zona-5", "precio envio zona 5"},
		{"whitespace collapsed", "  zona   10  ", "zona 10"},
		{"smart quotes", "“guantes húmedos”", "guantes humedos"},
		{"empty", "", ""},
		{"only punctuation", "¡¿?!...", ""},
		{"digits kept", "zona 25", "zona 25"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, Normalize(tc.input))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"¡Hola! ¿Cómo está?",
		"Envío a Sacatepéquez, zona 3",
		"  ya   normalizado  ",
		"",
		"precio del rascador",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}

func TestTokenize(t *testing.T) {
	t.Parallel()

	tokens := Tokenize("zona zona 10 envio")
	assert.Len(t, tokens, 3)
	assert.Contains(t, tokens, "zona")
	assert.Contains(t, tokens, "10")
	assert.Contains(t, tokens, "envio")

	assert.Empty(t, Tokenize(""))
}
