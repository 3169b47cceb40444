package node

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"go.uber.org/zap"
)

type StatusServer struct {
	server *http.Server
}

func NewStatusServer(n *Node) *StatusServer {
	r := chi.NewRouter()
	s := &http.Server{Addr: n.Config.StatusAddr, Handler: r}

	// setup endpoints
	r.Use(middleware.Heartbeat("/health"))
	r.Get("/migration", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(n.MigrationStatus()); err != nil {
			zap.S().Errorf("StatusServer: %s", err.Error())
		}
	})
	r.Get("/stop", func(w http.ResponseWriter, req *http.Request) {
		n.StopMigration()
		w.WriteHeader(http.StatusOK)
	})

	return &StatusServer{server: s}
}

func (s *StatusServer) Start() {
	go func() {
		err := s.server.ListenAndServe()
		if err != nil {
			zap.S().Infof("error on StatusServer: %s", err.Error())
		}
	}()
}

func (s *StatusServer) Stop() {
	err := s.server.Shutdown(context.Background())
	if err != nil {
		zap.S().Errorf("StatusServer: %s", err.Error())
	}
}

// Handler exposes the router, mainly for tests.
func (s *StatusServer) Handler() http.Handler {
	return s.server.Handler
}
