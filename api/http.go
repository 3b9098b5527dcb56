// Package api exposes the governance engine over HTTP.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"okinoko_vote/contract"
)

type HTTPServer struct {
	done chan struct{}
}

type HTTPServerConfig struct {
	Listener net.Listener

	Engine *contract.Engine
	// Events backs GET /events. Optional.
	Events *contract.EventLog
	// Gatherer backs GET /metrics. Optional.
	Gatherer prometheus.Gatherer

	// TrustTimestampHeader takes the call time from X-Timestamp when present.
	TrustTimestampHeader bool
	// Now defaults to time.Now.
	Now func() time.Time
}

func NewHTTPServer(ctx context.Context, log *slog.Logger, cfg HTTPServerConfig) *HTTPServer {
	srv := &http.Server{
		Handler:           NewHandler(log, cfg),
		ReadHeaderTimeout: 10 * time.Second,

		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	h := &HTTPServer{
		done: make(chan struct{}),
	}
	go h.serve(log, cfg.Listener, srv)
	go h.waitForShutdown(ctx, srv)

	return h
}

func (h *HTTPServer) Wait() {
	<-h.done
}

func (h *HTTPServer) waitForShutdown(ctx context.Context, srv *http.Server) {
	select {
	case <-h.done:
		return
	case <-ctx.Done():
		// Give in-flight calls a moment; the engine lock keeps them short.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			_ = srv.Close()
		}
	}
}

func (h *HTTPServer) serve(log *slog.Logger, ln net.Listener, srv *http.Server) {
	defer close(h.done)

	if err := srv.Serve(ln); err != nil {
		if errors.Is(err, net.ErrClosed) || errors.Is(err, http.ErrServerClosed) {
			log.Info("HTTP server shutting down")
		} else {
			log.Info("HTTP server shutting down due to error", "err", err)
		}
	}
}

// NewHandler builds the router without starting a server.
func NewHandler(log *slog.Logger, cfg HTTPServerConfig) http.Handler {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	h := handler{
		log:     log,
		e:       cfg.Engine,
		events:  cfg.Events,
		trustTS: cfg.TrustTimestampHeader,
		now:     now,
	}

	r := mux.NewRouter()
	r.Use(h.requestID)

	r.HandleFunc("/admins", h.HandleAddAdmin).Methods("POST")
	r.HandleFunc("/admins", h.HandleListAdmins).Methods("GET")
	r.HandleFunc("/admins/{address}", h.HandleIsAdmin).Methods("GET")

	r.HandleFunc("/proposals", h.HandleCreateProposal).Methods("POST")
	r.HandleFunc("/proposals", h.HandleProposalCount).Methods("GET")
	r.HandleFunc("/proposals/{id:[0-9]+}", h.HandleGetProposal).Methods("GET")
	r.HandleFunc("/proposals/{id:[0-9]+}/delist", h.HandleDelist).Methods("POST")
	r.HandleFunc("/proposals/{id:[0-9]+}/votes", h.HandleCastVote).Methods("POST")
	r.HandleFunc("/proposals/{id:[0-9]+}/votes", h.HandleRemoveVote).Methods("DELETE")
	r.HandleFunc("/proposals/{id:[0-9]+}/votes/{address}", h.HandleGetVote).Methods("GET")
	r.HandleFunc("/proposals/{id:[0-9]+}/evaluate", h.HandleEvaluate).Methods("POST")
	r.HandleFunc("/proposals/{id:[0-9]+}/queue", h.HandleQueue).Methods("POST")
	r.HandleFunc("/proposals/{id:[0-9]+}/execute", h.HandleExecute).Methods("POST")

	r.HandleFunc("/treasury", h.HandleTreasury).Methods("GET")
	r.HandleFunc("/treasury/deposits", h.HandleDeposit).Methods("POST")

	r.HandleFunc("/members/{address}", h.HandleMember).Methods("GET")
	r.HandleFunc("/tokens/{id:[0-9]+}/owner", h.HandleTokenOwner).Methods("GET")

	r.HandleFunc("/events", h.HandleEvents).Methods("GET")
	r.HandleFunc("/call/{action}", h.HandleCall).Methods("POST")

	if cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})).Methods("GET")
	}

	return r
}
