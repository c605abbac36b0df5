package kafka

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProducer_DisabledWithoutBrokers(t *testing.T) {
	p := NewProducer(nil, "desk", zerolog.Nop())
	assert.False(t, p.Enabled())
	p.Produce(context.Background(), EventTicketCreated, map[string]interface{}{"ticket_id": "T-1"})
	require.NoError(t, p.Close())

	p = NewProducer([]string{"localhost:9092"}, "", zerolog.Nop())
	assert.False(t, p.Enabled())
}

func TestNewProducer_Enabled(t *testing.T) {
	p := NewProducer([]string{"localhost:9092"}, "desk", zerolog.Nop())
	assert.True(t, p.Enabled())
	require.NoError(t, p.Close())
}
