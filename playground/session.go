//go:build js
// +build js

package playground

import (
	"encoding/json"
	"net/url"
	"strings"

	"github.com/gopherjs/gopherjs/js"

	"github.com/simukka/sprechstimme-playground/audio"
	"github.com/simukka/sprechstimme-playground/session"
)

const sessionPath = "/api/session"

// sessionClient follows one listen-along room over server-sent events and
// plays the scores other peers publish.
type sessionClient struct {
	p    *Playground
	room string
	peer string
	es   *js.Object
}

func newPeerID() string {
	const chars = "abcdefghijklmnopqrstuvwxyz0123456789"
	id := make([]byte, 8)
	for i := range id {
		id[i] = chars[int(js.Global.Get("Math").Call("random").Float()*float64(len(chars)))]
	}
	return string(id)
}

func (c *sessionClient) url() string {
	q := url.Values{"room": {c.room}, "peer": {c.peer}}
	return sessionPath + "?" + q.Encode()
}

func (p *Playground) bindSession() {
	p.on("session-join", "click", func(*js.Object) {
		room := ""
		if el := p.byID("session-room"); el != nil {
			room = strings.TrimSpace(el.Get("value").String())
		}
		p.JoinSession(room)
	})
	p.on("session-share", "click", func(*js.Object) {
		p.ShareScore()
	})
	js.Global.Call("addEventListener", "beforeunload", func() {
		p.LeaveSession()
	})
}

// JoinSession starts listening to room, leaving any previous one.
func (p *Playground) JoinSession(room string) {
	if room == "" {
		p.appendLine(ClassError, "Enter a room name to listen along")
		return
	}
	p.LeaveSession()

	c := &sessionClient{p: p, room: room, peer: newPeerID()}
	c.es = js.Global.Get("EventSource").New(c.url())
	c.es.Set("onmessage", func(ev *js.Object) {
		c.handle(ev.Get("data").String())
	})
	c.es.Set("onerror", func(*js.Object) {
		p.log.Warnf("Session connection to room %s lost", room)
	})
	p.session = c
	p.log.Infof("Listening along in room %s as %s", room, c.peer)
}

// LeaveSession closes the current room stream, if any.
func (p *Playground) LeaveSession() {
	if p.session == nil {
		return
	}
	p.session.es.Call("close")
	p.log.Infof("Left room %s", p.session.room)
	p.session = nil
}

// ShareScore publishes the last program's events to the room.
func (p *Playground) ShareScore() {
	if p.session == nil {
		p.appendLine(ClassError, "Join a room before sharing")
		return
	}
	if p.last == nil || len(p.last.Events) == 0 {
		p.appendLine(ClassError, "Run a program that plays something first")
		return
	}
	p.session.publish(session.Score(p.last.Events, p.last.Tempo))
}

func (c *sessionClient) handle(data string) {
	m, err := session.Decode([]byte(data))
	if err != nil {
		c.p.log.Warnf("Bad session message: %v", err)
		return
	}
	switch m.Type {
	case session.TypePeers:
		c.p.log.Infof("Room %s has %d listener(s)", c.room, len(m.Peers))
	case session.TypeJoin:
		c.p.log.Infof("%s joined the room", m.Peer)
	case session.TypeLeave:
		c.p.log.Infof("%s left the room", m.Peer)
	case session.TypeStop:
		c.p.Engine.StopAll()
	case session.TypeScore:
		tempo := m.Tempo
		if tempo == 0 {
			tempo = audio.DefaultTempo
		}
		c.p.log.Infof("Playing %d steps from %s", len(m.Events), m.Peer)
		c.p.Engine.PlayPattern(m.Events, tempo)
	}
}

func (c *sessionClient) publish(m session.Message) {
	data, err := json.Marshal(m)
	if err != nil {
		c.p.log.Errorf("Encode score: %v", err)
		return
	}
	js.Global.Call("fetch", c.url(), map[string]interface{}{
		"method": "POST",
		"headers": map[string]interface{}{
			"Content-Type": "application/json",
		},
		"body": string(data),
	}).Call("then", func(resp *js.Object) {
		if !resp.Get("ok").Bool() {
			c.p.log.Warnf("Share rejected: HTTP %d", resp.Get("status").Int())
			return
		}
		c.p.log.Infof("Shared %d steps with room %s", len(m.Events), c.room)
	})
}
