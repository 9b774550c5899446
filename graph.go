// ─────────────────────────────────────────────────────────────────────────────
// [Filename]: graph.go — simulated audio-graph process callback
//
// Purpose:
//   - Stands in for the audio server's process thread: one call per period.
//   - Replays a scripted session (clients, ports, connection churn, xruns)
//     and posts every notification through the event ring.
//
// Notes:
//   - All names are preallocated; process() never allocates or blocks.
//   - A full ring drops the event and counts it; the period always completes.
//
// ⚠️ Real-time path: no logging, no locks, no allocation.
// ─────────────────────────────────────────────────────────────────────────────

package main

import (
	"runtime"
	"time"

	"patchbay/control"
	"patchbay/events"
)

// Session layout: every playback port pairs with one capture port.
var (
	graphClients = [...]string{"system", "synth", "recorder"}

	capturePorts = [...]string{
		"system:capture_1", "system:capture_2",
		"synth:out_L", "synth:out_R",
	}
	playbackPorts = [...]string{
		"system:playback_1", "system:playback_2",
		"recorder:in_L", "recorder:in_R",
	}
)

const (
	connectEvery = 50  // Periods between connection toggles
	orderEvery   = 500 // Periods between graph reorders
	xrunEvery    = 997 // Periods between simulated overruns
)

// graph is the producer state. Owned by the process thread.
type graph struct {
	poster *events.Poster

	frame        uint64 // Frame time at the start of the current period
	periodFrames uint64
	sampleRate   uint64
	cycle        uint64

	connected [len(capturePorts)]bool
}

func newGraph(p *events.Poster, sampleRate, periodFrames int) *graph {
	return &graph{
		poster:       p,
		periodFrames: uint64(periodFrames),
		sampleRate:   uint64(sampleRate),
	}
}

// post stamps ev with the current frame time. Errors are counted by the poster.
func (g *graph) post(ev events.Event) {
	ev.Frame = g.frame
	_ = g.poster.Post(ev)
}

// process runs one period of the scripted session.
func (g *graph) process() {
	switch {
	case g.cycle == 0:
		g.post(events.Event{Kind: events.SampleRate, Value: g.sampleRate})
		g.post(events.Event{Kind: events.BufferSize, Value: g.periodFrames})
		for _, c := range graphClients {
			g.post(events.Event{Kind: events.ClientRegistered, Name: c})
		}
		for i := range capturePorts {
			g.post(events.Event{Kind: events.PortRegistered, Value: uint64(2 * i), Name: capturePorts[i]})
			g.post(events.Event{Kind: events.PortRegistered, Value: uint64(2*i + 1), Name: playbackPorts[i]})
		}

	case g.cycle%connectEvery == 0:
		i := int(g.cycle/connectEvery) % len(capturePorts)
		kind := events.PortsConnected
		if g.connected[i] {
			kind = events.PortsDisconnected
		}
		g.connected[i] = !g.connected[i]
		g.post(events.Event{Kind: kind, Name: capturePorts[i], Peer: playbackPorts[i]})
	}

	if g.cycle%orderEvery == orderEvery-1 {
		g.post(events.Event{Kind: events.GraphOrder})
	}
	if g.cycle%xrunEvery == xrunEvery-1 {
		g.post(events.Event{Kind: events.XRun, Value: g.cycle % 1000})
	}

	g.frame += g.periodFrames
	g.cycle++
}

// teardown posts the unregistration burst a clean server exit produces.
func (g *graph) teardown() {
	for i := range capturePorts {
		if g.connected[i] {
			g.post(events.Event{Kind: events.PortsDisconnected, Name: capturePorts[i], Peer: playbackPorts[i]})
		}
		g.post(events.Event{Kind: events.PortUnregistered, Value: uint64(2 * i), Name: capturePorts[i]})
		g.post(events.Event{Kind: events.PortUnregistered, Value: uint64(2*i + 1), Name: playbackPorts[i]})
	}
	for _, c := range graphClients {
		g.post(events.Event{Kind: events.ClientUnregistered, Name: c})
	}
	g.post(events.Event{Kind: events.Shutdown, Name: "server exiting"})
}

// runProcessThread drives process() once per period on a locked OS thread
// until shutdown, then posts the teardown burst.
func runProcessThread(g *graph, period time.Duration) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	next := time.Now()
	for !control.IsShuttingDown() {
		g.process()
		next = next.Add(period)
		if d := time.Until(next); d > 0 {
			time.Sleep(d)
		}
	}
	g.teardown()
}
