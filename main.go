//go:build js
// +build js

package main

import (
	"github.com/decred/slog"
	"github.com/gopherjs/gopherjs/js"

	"github.com/simukka/sprechstimme-playground/playground"
)

func main() {
	doc := js.Global.Get("document")
	start := func() {
		p := playground.New()
		// ?debug shows engine lifecycle messages in the output panel.
		if js.Global.Get("location").Get("search").String() == "?debug" {
			p.SetLogLevel(slog.LevelDebug)
		}
		p.Export()
		p.Start()

		js.Global.Call("addEventListener", "beforeunload", func() {
			p.Engine.StopAll()
		})
	}

	if doc.Get("readyState").String() == "loading" {
		doc.Call("addEventListener", "DOMContentLoaded", start)
	} else {
		start()
	}

	select {}
}
