package redis

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishSubscribe(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	broker := NewRedisBroker(client, nil)
	defer broker.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	msgs, err := broker.Subscribe(ctx, "appointment.booked", "appointment.approved")
	require.NoError(t, err)

	require.NoError(t, broker.Publish(ctx, "appointment.approved", map[string]string{"id": "42"}))

	select {
	case msg := <-msgs:
		assert.Equal(t, "appointment.approved", msg.Channel)
		var body map[string]string
		require.NoError(t, json.Unmarshal(msg.Payload, &body))
		assert.Equal(t, "42", body["id"])
	case <-time.After(2 * time.Second):
		t.Fatal("no message received")
	}

	cancel()
	for range msgs {
	}
}

func TestNewClientBadURL(t *testing.T) {
	_, err := NewClient(context.Background(), Config{URL: "::not a url"})
	assert.Error(t, err)
}
