package db

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/parisxmas/oxikpi/internal/oxidb"
	"github.com/parisxmas/oxikpi/internal/oxidb/oxidbtest"
)

func TestPoolRoundRobin(t *testing.T) {
	srv := oxidbtest.NewServer()
	defer srv.Close()

	p, err := NewPool(context.Background(), srv.Addr, Options{Size: 3, Keepalive: time.Hour}, zap.NewNop())
	require.NoError(t, err)
	defer p.Close()

	seen := map[*oxidb.Client]bool{}
	for i := 0; i < 3; i++ {
		seen[p.Get()] = true
	}
	assert.Len(t, seen, 3)
}

func TestPoolReplacesBrokenClient(t *testing.T) {
	srv := oxidbtest.NewServer()
	defer srv.Close()

	p, err := NewPool(context.Background(), srv.Addr, Options{Size: 1, Keepalive: time.Hour}, zap.NewNop())
	require.NoError(t, err)
	defer p.Close()

	broken := p.Get()
	broken.Close()
	p.pingAll()

	fresh := p.Get()
	assert.NotSame(t, broken, fresh)
	pong, err := fresh.Ping(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "pong", pong)
}

func TestNewPoolFailsWithoutServer(t *testing.T) {
	srv := oxidbtest.NewServer()
	addr := srv.Addr
	srv.Close()

	_, err := NewPool(context.Background(), addr, Options{Size: 1, DialTimeout: time.Second}, nil)
	assert.Error(t, err)
}
