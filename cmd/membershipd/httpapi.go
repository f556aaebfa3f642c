package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/mcastellin/membership"
)

// memberView is the JSON-friendly projection of a membership.MemberView:
// NodeID is rendered as its string form since it can't be a JSON object
// key, and NodeStatus as its name.
type memberView struct {
	ID             string `json:"id"`
	AdvertisedAddr string `json:"advertised_addr"`
	Status         string `json:"status,omitempty"`
	Version        uint16 `json:"version,omitempty"`
	Heartbeat      uint64 `json:"heartbeat"`
	Live           bool   `json:"live"`
}

type clusterView struct {
	ThisNodeID string       `json:"this_node_id"`
	Converged  bool         `json:"converged"`
	Members    []memberView `json:"members"`
}

func clusterSnapshotView(c membership.Cluster) clusterView {
	now := time.Now()
	out := clusterView{
		ThisNodeID: c.ThisNodeID.String(),
		Converged:  c.HasConverged(now),
	}
	for id, m := range c.ClusterView.KnownMembers {
		mv := memberView{
			ID:             id.String(),
			AdvertisedAddr: m.AdvertisedAddr,
			Live:           id == c.ThisNodeID || c.FailureDetector.IsLive(id, now),
		}
		if m.State != nil {
			mv.Status = m.State.Status.String()
			mv.Version = m.State.Version
			mv.Heartbeat = m.State.Heartbeat
		}
		out.Members = append(out.Members, mv)
	}
	return out
}

func clusterEventView(ev membership.ClusterEvent) clusterView {
	return clusterSnapshotView(ev.Cluster)
}

// httpAPI exposes a JSON status endpoint and a WebSocket event stream for
// a running Instance. It carries no business logic: every field it
// serves comes straight from Instance.Cluster/Events.
type httpAPI struct {
	addr     string
	instance *membership.Instance
	hub      *eventHub
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

func newHTTPAPI(addr string, instance *membership.Instance, logger *zap.Logger) *httpAPI {
	return &httpAPI{
		addr:     addr,
		instance: instance,
		hub:      newEventHub(logger),
		logger:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

func (a *httpAPI) router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", a.handleHealthz).Methods(http.MethodGet)
	r.HandleFunc("/status", a.handleStatus).Methods(http.MethodGet)
	r.HandleFunc("/events", a.handleEvents).Methods(http.MethodGet)
	return r
}

func (a *httpAPI) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (a *httpAPI) handleStatus(w http.ResponseWriter, r *http.Request) {
	cluster, err := a.instance.Cluster(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(clusterSnapshotView(cluster))
}

func (a *httpAPI) handleEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := a.upgrader.Upgrade(w, r, nil)
	if err != nil {
		a.logger.Debug("websocket upgrade failed", zap.Error(err))
		return
	}
	a.hub.register(conn)

	go func() {
		defer a.hub.unregister(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// Serve runs the HTTP/WebSocket status API until ctx is cancelled.
func (a *httpAPI) Serve(ctx context.Context) error {
	go a.hub.pump(a.instance.Events())

	srv := &http.Server{Addr: a.addr, Handler: a.router()}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
