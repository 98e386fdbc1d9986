package db

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/parisxmas/oxikpi/internal/oxidb"
)

// Pool is a round-robin connection pool for OxiDB with auto-reconnect.
type Pool struct {
	addr        string
	dialTimeout time.Duration
	log         *zap.Logger
	clients     []*oxidb.Client
	mu          sync.RWMutex
	idx         uint64
	stop        chan struct{}
	done        chan struct{}
}

// Options tunes a pool. Zero values pick defaults.
type Options struct {
	Size        int
	DialTimeout time.Duration
	Keepalive   time.Duration
}

// NewPool creates a pool of opts.Size OxiDB connections.
func NewPool(ctx context.Context, addr string, opts Options, log *zap.Logger) (*Pool, error) {
	if opts.Size <= 0 {
		opts.Size = 4
	}
	if opts.DialTimeout <= 0 {
		opts.DialTimeout = 5 * time.Second
	}
	if opts.Keepalive <= 0 {
		opts.Keepalive = 10 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	p := &Pool{
		addr:        addr,
		dialTimeout: opts.DialTimeout,
		log:         log.Named("pool"),
		clients:     make([]*oxidb.Client, opts.Size),
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
	}
	for i := range p.clients {
		c, err := p.dial(ctx)
		if err != nil {
			p.closeClients()
			return nil, errors.Wrapf(err, "pool: connect client %d", i)
		}
		p.clients[i] = c
	}
	// Keepalive pings prevent the server's idle timeout and replace broken clients.
	go p.keepalive(opts.Keepalive)
	return p, nil
}

func (p *Pool) dial(ctx context.Context) (*oxidb.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, p.dialTimeout)
	defer cancel()
	return oxidb.Connect(ctx, p.addr)
}

// Get returns the next client in round-robin order.
func (p *Pool) Get() *oxidb.Client {
	n := atomic.AddUint64(&p.idx, 1)
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.clients[n%uint64(len(p.clients))]
}

// Size returns the number of connections.
func (p *Pool) Size() int { return len(p.clients) }

// reconnect replaces the client at index i.
func (p *Pool) reconnect(i int) {
	c, err := p.dial(context.Background())
	if err != nil {
		p.log.Warn("reconnect failed", zap.Int("client", i), zap.Error(err))
		return
	}
	p.mu.Lock()
	old := p.clients[i]
	p.clients[i] = c
	p.mu.Unlock()
	old.Close()
	p.log.Info("client reconnected", zap.Int("client", i))
}

func (p *Pool) keepalive(every time.Duration) {
	defer close(p.done)
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-p.stop:
			return
		case <-ticker.C:
			p.pingAll()
		}
	}
}

func (p *Pool) pingAll() {
	for i := 0; i < len(p.clients); i++ {
		p.mu.RLock()
		c := p.clients[i]
		p.mu.RUnlock()
		ctx, cancel := context.WithTimeout(context.Background(), p.dialTimeout)
		_, err := c.Ping(ctx)
		cancel()
		if err != nil {
			p.log.Warn("ping failed, reconnecting", zap.Int("client", i), zap.Error(err))
			p.reconnect(i)
		}
	}
}

// Close stops the keepalive loop and closes all connections.
func (p *Pool) Close() {
	close(p.stop)
	<-p.done
	p.closeClients()
}

func (p *Pool) closeClients() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, c := range p.clients {
		if c != nil {
			c.Close()
		}
	}
}
