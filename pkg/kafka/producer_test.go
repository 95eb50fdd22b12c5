package kafka

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func producerTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestProducer_Ping_NoBrokersConfigured(t *testing.T) {
	p := NewProducer(ProducerConfig{}, producerTestLogger())

	err := p.Ping(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no brokers configured")
}

func TestProducer_Ping_UnreachableBroker(t *testing.T) {
	p := NewProducer(DefaultProducerConfig([]string{"127.0.0.1:1"}), producerTestLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	err := p.Ping(ctx)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "all brokers unreachable")
}
