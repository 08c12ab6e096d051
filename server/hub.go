//go:build !js
// +build !js

package main

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/decred/slog"
	"golang.org/x/time/rate"
)

// peerBuffer is the number of messages queued for a slow listener before
// new ones are dropped.
const peerBuffer = 64

// Publish rate per peer.
var (
	publishEvery = rate.Every(250 * time.Millisecond)
	publishBurst = 4
)

// Peer is one listener connected to a room.
type Peer struct {
	ID       string
	Room     string
	Messages chan []byte

	mu       sync.Mutex
	lastSeen time.Time
}

func (p *Peer) touch(now time.Time) {
	p.mu.Lock()
	p.lastSeen = now
	p.mu.Unlock()
}

func (p *Peer) seen() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastSeen
}

// Room is a listen-along session.
type Room struct {
	ID      string
	Created time.Time

	mu    sync.RWMutex
	peers map[string]*Peer
}

// RoomInfo is the public summary of a room.
type RoomInfo struct {
	ID      string `json:"id"`
	Peers   int    `json:"peerCount"`
	Created int64  `json:"created"`
}

// Hub tracks rooms and routes messages between their peers.
type Hub struct {
	log slog.Logger
	ttl time.Duration
	now func() time.Time

	mu    sync.RWMutex
	rooms map[string]*Room

	limitMu sync.Mutex
	limits  map[string]*limiter
}

type limiter struct {
	*rate.Limiter
	used time.Time
}

// NewHub creates a hub that forgets peers not seen for ttl.
func NewHub(ttl time.Duration, log slog.Logger) *Hub {
	if log == nil {
		log = slog.Disabled
	}
	return &Hub{
		log:    log,
		ttl:    ttl,
		now:    time.Now,
		rooms:  make(map[string]*Room),
		limits: make(map[string]*limiter),
	}
}

// allow reports whether peer may publish to room now.
func (h *Hub) allow(roomID, peerID string) bool {
	h.limitMu.Lock()
	defer h.limitMu.Unlock()

	key := roomID + "/" + peerID
	lim, ok := h.limits[key]
	if !ok {
		lim = &limiter{Limiter: rate.NewLimiter(publishEvery, publishBurst)}
		h.limits[key] = lim
	}
	now := h.now()
	lim.used = now
	return lim.AllowN(now, 1)
}

// reapLimits forgets publishers idle for longer than the TTL.
func (h *Hub) reapLimits(now time.Time) {
	h.limitMu.Lock()
	defer h.limitMu.Unlock()
	for key, lim := range h.limits {
		if now.Sub(lim.used) > h.ttl {
			delete(h.limits, key)
		}
	}
}

func (h *Hub) roomLocked(id string) *Room {
	if room, ok := h.rooms[id]; ok {
		return room
	}
	room := &Room{ID: id, Created: h.now(), peers: make(map[string]*Peer)}
	h.rooms[id] = room
	h.log.Debugf("Created room %s", id)
	return room
}

// Join adds a peer to a room, creating the room on first use. A peer
// reconnecting under the same ID replaces its old stream.
func (h *Hub) Join(roomID, peerID string) *Peer {
	h.mu.Lock()
	defer h.mu.Unlock()
	room := h.roomLocked(roomID)

	room.mu.Lock()
	defer room.mu.Unlock()

	if old, ok := room.peers[peerID]; ok {
		close(old.Messages)
	}
	peer := &Peer{
		ID:       peerID,
		Room:     roomID,
		Messages: make(chan []byte, peerBuffer),
		lastSeen: h.now(),
	}
	room.peers[peerID] = peer
	h.log.Infof("Peer %s joined room %s", peerID, roomID)
	return peer
}

// Leave removes peer if it is still the room's current stream for its ID.
func (h *Hub) Leave(peer *Peer) bool {
	h.mu.RLock()
	room, ok := h.rooms[peer.Room]
	h.mu.RUnlock()
	if !ok {
		return false
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	if room.peers[peer.ID] != peer {
		return false
	}
	close(peer.Messages)
	delete(room.peers, peer.ID)
	h.log.Infof("Peer %s left room %s", peer.ID, peer.Room)
	return true
}

// Broadcast queues msg for every peer in the room except sender and
// returns how many peers received it.
func (h *Hub) Broadcast(roomID, sender string, msg []byte) int {
	h.mu.RLock()
	room, ok := h.rooms[roomID]
	h.mu.RUnlock()
	if !ok {
		return 0
	}

	room.mu.RLock()
	defer room.mu.RUnlock()

	n := 0
	for id, peer := range room.peers {
		if id == sender {
			continue
		}
		select {
		case peer.Messages <- msg:
			n++
		default:
			h.log.Warnf("Message buffer full for peer %s in room %s", id, roomID)
		}
	}
	return n
}

// Peers returns the sorted peer IDs of a room.
func (h *Hub) Peers(roomID string) []string {
	h.mu.RLock()
	room, ok := h.rooms[roomID]
	h.mu.RUnlock()
	if !ok {
		return nil
	}

	room.mu.RLock()
	defer room.mu.RUnlock()

	ids := make([]string, 0, len(room.peers))
	for id := range room.peers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Rooms lists the active rooms by ID.
func (h *Hub) Rooms() []RoomInfo {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]RoomInfo, 0, len(h.rooms))
	for id, room := range h.rooms {
		room.mu.RLock()
		out = append(out, RoomInfo{ID: id, Peers: len(room.peers), Created: room.Created.Unix()})
		room.mu.RUnlock()
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Reap removes peers not seen within the TTL and then empty rooms. It
// returns the removed peers so their rooms can be told they left.
func (h *Hub) Reap() []*Peer {
	h.mu.Lock()
	defer h.mu.Unlock()

	now := h.now()
	var gone []*Peer
	for roomID, room := range h.rooms {
		room.mu.Lock()
		for id, peer := range room.peers {
			if now.Sub(peer.seen()) > h.ttl {
				close(peer.Messages)
				delete(room.peers, id)
				gone = append(gone, peer)
				h.log.Infof("Removed stale peer %s from room %s", id, roomID)
			}
		}
		if len(room.peers) == 0 {
			delete(h.rooms, roomID)
			h.log.Debugf("Removed empty room %s", roomID)
		}
		room.mu.Unlock()
	}
	h.reapLimits(now)
	return gone
}

// Run reaps on a ticker until ctx is done.
func (h *Hub) Run(ctx context.Context) error {
	interval := h.ttl / 2
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			for _, peer := range h.Reap() {
				h.announce(peer, "leave")
			}
		}
	}
}
