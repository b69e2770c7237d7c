package service

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/vocdoni/proposal-ledger/api"
	"github.com/vocdoni/proposal-ledger/log"
	"github.com/vocdoni/proposal-ledger/voting"
)

// shutdownTimeout bounds the graceful shutdown of the HTTP server.
const shutdownTimeout = 10 * time.Second

// APIService represents a service that manages the HTTP API server.
type APIService struct {
	voting *voting.Service
	api    *api.API
	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	host   string
	port   int
}

// NewAPI creates a new APIService instance.
func NewAPI(voting *voting.Service, host string, port int) *APIService {
	return &APIService{
		voting: voting,
		host:   host,
		port:   port,
	}
}

// Start begins the API server. It returns an error if the service
// is already running or if it fails to start. The server is stopped when
// ctx is done.
func (as *APIService) Start(ctx context.Context) error {
	as.mu.Lock()
	defer as.mu.Unlock()

	if as.cancel != nil {
		return fmt.Errorf("service already running")
	}

	var err error
	as.api, err = api.New(&api.APIConfig{
		Host:   as.host,
		Port:   as.port,
		Voting: as.voting,
	})
	if err != nil {
		return fmt.Errorf("failed to start API server: %w", err)
	}

	ctx, as.cancel = context.WithCancel(ctx)
	as.done = make(chan struct{})
	go func(a *api.API, done chan struct{}) {
		defer close(done)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := a.Stop(shutdownCtx); err != nil {
			log.Warnw("failed to stop API server", "error", err)
		}
	}(as.api, as.done)
	return nil
}

// Stop halts the API server.
func (as *APIService) Stop() {
	as.mu.Lock()
	defer as.mu.Unlock()

	if as.cancel == nil {
		return
	}
	as.cancel()
	as.cancel = nil
	<-as.done
}

// HostPort returns the host and the port the API server listens on. While
// running it is the actual port, even if the configured one was zero.
func (as *APIService) HostPort() (string, int) {
	as.mu.Lock()
	defer as.mu.Unlock()
	if as.cancel != nil {
		if addr, ok := as.api.Addr().(*net.TCPAddr); ok {
			return as.host, addr.Port
		}
	}
	return as.host, as.port
}
