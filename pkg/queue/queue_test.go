package queue

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type samplePayload struct {
	Query string `json:"query"`
	N     int    `json:"n"`
}

func TestParsePayload(t *testing.T) {
	want := samplePayload{Query: "apple", N: 2}

	tests := []struct {
		name string
		in   interface{}
	}{
		{"pointer", &want},
		{"value", want},
		{"raw message", json.RawMessage(`{"query":"apple","n":2}`)},
		{"bytes", []byte(`{"query":"apple","n":2}`)},
		{"map", map[string]interface{}{"query": "apple", "n": 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePayload[samplePayload](tt.in)
			require.NoError(t, err)
			assert.Equal(t, want, *got)
		})
	}
}

func TestParsePayloadErrors(t *testing.T) {
	_, err := ParsePayload[samplePayload](42)
	assert.Error(t, err)

	_, err = ParsePayload[samplePayload](json.RawMessage(`{not json`))
	assert.Error(t, err)
}

func TestMessageID(t *testing.T) {
	assert.Empty(t, MessageID(context.Background()))

	ctx := WithMessageID(context.Background(), "abc")
	assert.Equal(t, "abc", MessageID(ctx))
}

func TestMessageRoundTripKeepsPayloadBytes(t *testing.T) {
	msg := Message{ID: "1", Type: "pipeline.run", Payload: json.RawMessage(`{"query":"msft"}`)}
	data, err := json.Marshal(msg)
	require.NoError(t, err)

	var got Message
	require.NoError(t, json.Unmarshal(data, &got))
	p, err := ParsePayload[samplePayload](got.Payload)
	require.NoError(t, err)
	assert.Equal(t, "msft", p.Query)
}
