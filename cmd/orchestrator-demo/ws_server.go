package main

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/council-ai/orchestrator-core/internal/orchestrator"
	"github.com/council-ai/orchestrator-core/internal/progress"
)

// progressWSServer pushes every event published on an EventBus to any
// connected websocket client, the optional transport SPEC_FULL.md §10
// describes for observers that want progress over HTTP instead of an
// in-process channel.
type progressWSServer struct {
	bus      *progress.EventBus
	upgrader websocket.Upgrader
}

func newProgressWSServer(bus *progress.EventBus) *progressWSServer {
	return &progressWSServer{
		bus: bus,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (s *progressWSServer) Serve(ctx context.Context, addr string) {
	mux := http.NewServeMux()
	mux.HandleFunc("/progress", s.handle)
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()
	_ = srv.ListenAndServe()
}

func (s *progressWSServer) handle(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	sub := s.bus.Subscribe(r.Context())
	for evt := range sub {
		if err := writeEvent(conn, evt); err != nil {
			return
		}
	}
}

func writeEvent(conn *websocket.Conn, evt orchestrator.ProgressEvent) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, payload)
}
