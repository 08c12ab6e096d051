//go:build !js
// +build !js

package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/simukka/sprechstimme-playground/session"
)

// maxScoreBytes bounds a published score body.
const maxScoreBytes = 1 << 20

func (h *Hub) encode(m session.Message) []byte {
	m.Time = h.now().Unix()
	data, err := m.Encode()
	if err != nil {
		h.log.Errorf("Encode %s message: %v", m.Type, err)
		return nil
	}
	return data
}

// announce tells the rest of the room that peer joined or left.
func (h *Hub) announce(peer *Peer, typ string) {
	msg := h.encode(session.Message{Type: typ, Room: peer.Room, Peer: peer.ID})
	if msg != nil {
		h.Broadcast(peer.Room, peer.ID, msg)
	}
}

func cors(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}

// ServeHTTP serves /api/session: GET streams the room as server-sent
// events, POST publishes a score to it.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	cors(w)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	roomID := r.URL.Query().Get("room")
	peerID := r.URL.Query().Get("peer")
	if roomID == "" || peerID == "" {
		http.Error(w, "room and peer query parameters required", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.stream(w, r, roomID, peerID)
	case http.MethodPost:
		h.publish(w, r, roomID, peerID)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Hub) stream(w http.ResponseWriter, r *http.Request, roomID, peerID string) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	peer := h.Join(roomID, peerID)
	defer func() {
		if h.Leave(peer) {
			h.announce(peer, session.TypeLeave)
		}
	}()

	hello := h.encode(session.Message{Type: session.TypePeers, Room: roomID, Peer: peerID, Peers: h.Peers(roomID)})
	fmt.Fprintf(w, "data: %s\n\n", hello)
	flusher.Flush()
	h.announce(peer, session.TypeJoin)

	heartbeat := h.ttl / 3
	if heartbeat <= 0 {
		heartbeat = 15 * time.Second
	}
	ticker := time.NewTicker(heartbeat)
	defer ticker.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()
			peer.touch(h.now())
		case msg, ok := <-peer.Messages:
			if !ok {
				return
			}
			if _, err := fmt.Fprintf(w, "data: %s\n\n", msg); err != nil {
				return
			}
			flusher.Flush()
			peer.touch(h.now())
		}
	}
}

func (h *Hub) publish(w http.ResponseWriter, r *http.Request, roomID, peerID string) {
	if !h.allow(roomID, peerID) {
		h.log.Debugf("Rate limited %s in room %s", peerID, roomID)
		http.Error(w, "too many scores, slow down", http.StatusTooManyRequests)
		return
	}
	var msg session.Message
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxScoreBytes))
	if err := dec.Decode(&msg); err != nil {
		http.Error(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := msg.Validate(); err != nil {
		h.log.Debugf("Rejected %s from %s: %v", msg.Type, peerID, err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	msg.Room = roomID
	msg.Peer = peerID
	msg.Peers = nil

	data := h.encode(msg)
	if data == nil {
		http.Error(w, "encode failed", http.StatusInternalServerError)
		return
	}
	n := h.Broadcast(roomID, peerID, data)
	h.log.Debugf("Score %s -> room %s: %d events, %d listeners", peerID, roomID, len(msg.Events), n)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":    "ok",
		"delivered": n,
	})
}

// handleRooms lists active rooms for the lobby.
func (h *Hub) handleRooms(w http.ResponseWriter, r *http.Request) {
	cors(w)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"rooms": h.Rooms(),
	})
}
