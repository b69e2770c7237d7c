package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/vocdoni/proposal-ledger/log"
	"github.com/vocdoni/proposal-ledger/voting"
)

// APIConfig type represents the configuration for the API HTTP server.
// It includes the host, port and the voting service to expose.
type APIConfig struct {
	Host   string
	Port   int
	Voting *voting.Service
}

// API type represents the API HTTP server of the voting ledger.
type API struct {
	router *chi.Mux
	voting *voting.Service
	server *http.Server
	addr   net.Addr
}

// New creates a new API instance with the given configuration and starts
// the HTTP server. A zero port lets the OS choose one, see Addr.
func New(conf *APIConfig) (*API, error) {
	if conf == nil {
		return nil, fmt.Errorf("missing API configuration")
	}
	if conf.Voting == nil {
		return nil, fmt.Errorf("missing voting service")
	}
	a := &API{
		voting: conf.Voting,
	}

	// Initialize router
	a.initRouter()

	listener, err := net.Listen("tcp", fmt.Sprintf("%s:%d", conf.Host, conf.Port))
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s:%d: %w", conf.Host, conf.Port, err)
	}
	a.addr = listener.Addr()
	a.server = &http.Server{
		Handler:           a.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Infow("starting API server", "address", a.addr.String())
		if err := a.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("failed to start the API server: %v", err)
		}
	}()
	return a, nil
}

// Router returns the chi router for testing purposes
func (a *API) Router() *chi.Mux {
	return a.router
}

// Addr returns the address the server listens on.
func (a *API) Addr() net.Addr {
	return a.addr
}

// Stop gracefully shuts the HTTP server down.
func (a *API) Stop(ctx context.Context) error {
	if a.server == nil {
		return nil
	}
	return a.server.Shutdown(ctx)
}

// registerHandlers registers all the API handlers.
func (a *API) registerHandlers() {
	log.Infow("register handler", "endpoint", PingEndpoint, "method", "GET")
	a.router.Get(PingEndpoint, func(w http.ResponseWriter, r *http.Request) {
		httpWriteOK(w)
	})
	log.Infow("register handler", "endpoint", MetricsEndpoint, "method", "GET")
	a.router.Get(MetricsEndpoint, func(w http.ResponseWriter, r *http.Request) {
		metrics.WritePrometheus(w, true)
	})
	// organizations
	log.Infow("register handler", "endpoint", OrganizationsEndpoint, "method", "POST")
	a.router.Post(OrganizationsEndpoint, a.registerOrganization)
	// proposals
	log.Infow("register handler", "endpoint", ProposalsEndpoint, "method", "POST")
	a.router.Post(ProposalsEndpoint, a.newProposal)
	log.Infow("register handler", "endpoint", ProposalsEndpoint, "method", "GET")
	a.router.Get(ProposalsEndpoint, a.proposals)
	log.Infow("register handler", "endpoint", ProposalEndpoint, "method", "GET")
	a.router.Get(ProposalEndpoint, a.proposal)
	log.Infow("register handler", "endpoint", ProposalRootEndpoint, "method", "GET")
	a.router.Get(ProposalRootEndpoint, a.root)
	log.Infow("register handler", "endpoint", ProposalStatsEndpoint, "method", "GET")
	a.router.Get(ProposalStatsEndpoint, a.stats)
	// votes
	log.Infow("register handler", "endpoint", ProposalSaltEndpoint, "method", "POST")
	a.router.Post(ProposalSaltEndpoint, a.newSalt)
	log.Infow("register handler", "endpoint", ProposalVotesEndpoint, "method", "POST")
	a.router.Post(ProposalVotesEndpoint, a.newVote)
	log.Infow("register handler", "endpoint", ProposalVoterEndpoint, "method", "GET")
	a.router.Get(ProposalVoterEndpoint, a.voterStatus)
	log.Infow("register handler", "endpoint", ProposalProofEndpoint, "method", "GET")
	a.router.Get(ProposalProofEndpoint, a.proof)
	log.Infow("register handler", "endpoint", ProposalVerifyEndpoint, "method", "POST")
	a.router.Post(ProposalVerifyEndpoint, a.verifyProof)
	log.Infow("register handler", "endpoint", VoterVotesEndpoint, "method", "GET")
	a.router.Get(VoterVotesEndpoint, a.voterVotes)
}

// initRouter creates the router with all the routes and middleware.
func (a *API) initRouter() {
	// Create the router with a basic middleware stack
	a.router = chi.NewRouter()
	a.router.Use(cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}).Handler)
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Throttle(100))
	a.router.Use(middleware.ThrottleBacklog(5000, 40000, 60*time.Second))
	a.router.Use(middleware.Timeout(45 * time.Second))

	a.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		ErrResourceNotFound.With(r.URL.Path).Write(w)
	})

	// Register the API handlers
	a.registerHandlers()
}
