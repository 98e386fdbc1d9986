package gelf

import (
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageFromZapJSON(t *testing.T) {
	w := &Writer{hostname: "h1", service: "oxikpi"}

	msg := w.Message([]byte(`{"level":"warn","ts":1700000000.5,"logger":"pool","msg":"ping failed","client":2,"id":"x"}` + "\n"))
	assert.Equal(t, "1.1", msg["version"])
	assert.Equal(t, "h1", msg["host"])
	assert.Equal(t, "ping failed", msg["short_message"])
	assert.Equal(t, 4, msg["level"])
	assert.Equal(t, 1700000000.5, msg["timestamp"])
	assert.Equal(t, "pool", msg["_logger"])
	assert.Equal(t, float64(2), msg["_client"])
	assert.Equal(t, "x", msg["_field_id"])
	assert.NotContains(t, msg, "_id")
	assert.Equal(t, "oxikpi", msg["_service"])
}

func TestMessageFromPlainLine(t *testing.T) {
	w := &Writer{hostname: "h1", service: "oxikpi"}

	msg := w.Message([]byte("plain text\n"))
	assert.Equal(t, "plain text", msg["short_message"])
	assert.Equal(t, 6, msg["level"])
}

func TestWriteSendsUDP(t *testing.T) {
	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	defer pc.Close()

	w, err := New(pc.LocalAddr().String(), "oxikpi")
	require.NoError(t, err)
	defer w.Close()

	line := []byte(`{"level":"error","msg":"boom","stacktrace":"main.go:1"}`)
	n, err := w.Write(line)
	require.NoError(t, err)
	assert.Equal(t, len(line), n)

	buf := make([]byte, 8192)
	pc.SetReadDeadline(time.Now().Add(2 * time.Second))
	n, _, err = pc.ReadFrom(buf)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf[:n], &got))
	assert.Equal(t, "boom", got["short_message"])
	assert.Equal(t, float64(3), got["level"])
	assert.Equal(t, "main.go:1", got["full_message"])
}
