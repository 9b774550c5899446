// ════════════════════════════════════════════════════════════════════════════════════════════════
// Patch-Bay Event Pipeline - Main Entry Point
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Component: Main Entry Point & System Orchestration
//
// Description:
//   Wires the real-time process callback to the event consumer through the lock-free
//   message ring. Load → Allocate → Run → Drain.
//
// Architecture:
//   - Phase 0: Configuration, ring, journal
//   - Phase 1: Memory cleanup before the real-time thread starts
//   - Phase 2: Process thread posts graph events; consumer drains and journals them
//   - Phase 3: Producer stops first, consumer drains the remainder, journal closes
//
// Usage:
//   patchbay [config.json]
//
// ════════════════════════════════════════════════════════════════════════════════════════════════

package main

import (
	"context"
	"os"
	"os/signal"
	"runtime"
	rtdebug "runtime/debug"
	"sync/atomic"
	"syscall"
	"time"

	"patchbay/config"
	"patchbay/control"
	"patchbay/debug"
	"patchbay/drain"
	"patchbay/events"
	"patchbay/journal"
	"patchbay/msgring"
	"patchbay/utils"
)

// statusEvery is the interval between ring occupancy reports.
const statusEvery = 10 * time.Second

// consumerStats is owned by the consumer goroutine; read it only after the
// consumer has exited.
type consumerStats struct {
	consumed uint64
	invalid  uint64
	byKind   [16]uint64
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// MAIN ORCHESTRATION
// ═══════════════════════════════════════════════════════════════════════════════════════════════

func main() {
	// PHASE 0: Configuration and allocation
	debug.DropMessage("INIT", "Loading configuration")

	var path string
	if len(os.Args) > 1 {
		path = os.Args[1]
	}
	cfg, err := config.Load(path)
	if err != nil {
		debug.DropError("CONFIG", err)
		os.Exit(1)
	}
	control.SetCooldown(time.Duration(cfg.Cooldown))

	ring, err := msgring.New(cfg.RingCapacity)
	if err != nil {
		debug.DropError("RING", err)
		os.Exit(1)
	}
	if err := ring.Fits(cfg.MaxEventPayload); err != nil {
		debug.DropError("RING", err)
		os.Exit(1)
	}

	var jrnl *journal.Journal
	if cfg.JournalPath != "" {
		jrnl, err = journal.Open(cfg.JournalPath, cfg.JournalBatch)
		if err != nil {
			debug.DropError("JOURNAL", err)
			os.Exit(1)
		}
	}

	poster := events.NewPoster(ring, cfg.MaxEventPayload)
	g := newGraph(poster, cfg.SampleRate, cfg.PeriodFrames)

	debug.DropMessage("READY", "ring "+utils.Itoa(ring.Capacity())+" bytes, period "+cfg.Period().String()+
		", consumer "+cfg.Consumer)

	// PHASE 1: Settle the heap before the real-time thread starts
	runtime.GC()
	rtdebug.FreeOSMemory()

	// PHASE 2: Consumer first, then the process thread
	var stats consumerStats
	stopConsumer := startConsumer(&cfg, ring, jrnl, &stats)

	control.ForceHot()
	producerDone := make(chan struct{})
	go func() {
		defer close(producerDone)
		runProcessThread(g, cfg.Period())
	}()

	waitForShutdown(&cfg, ring, poster)

	// PHASE 3: Ordered shutdown
	control.Shutdown()
	<-producerDone
	stopConsumer()
	control.ShutdownWG.Wait()

	if jrnl != nil {
		if err := jrnl.Close(); err != nil {
			debug.DropError("JOURNAL", err)
		}
	}

	utils.PrintInfo("posted " + utils.Utoa(poster.Posted()) +
		", dropped " + utils.Utoa(poster.Dropped()) +
		", consumed " + utils.Utoa(stats.consumed) +
		", invalid " + utils.Utoa(stats.invalid) + "\n")
	for k := events.ClientRegistered; k.Valid(); k++ {
		if n := stats.byKind[k]; n != 0 {
			utils.PrintInfo("  " + k.String() + " " + utils.Utoa(n) + "\n")
		}
	}
	debug.DropRingState("SUMMARY", ring.DebugState())
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// CONSUMER WIRING
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// handleEvents decodes each element, journals it and reports noteworthy events.
func handleEvents(jrnl *journal.Journal, stats *consumerStats) drain.Handler {
	return func(payload []byte) {
		// Names alias the ring until this handler returns; the journal copies them.
		ev, err := events.DecodeView(payload)
		if err != nil {
			stats.invalid++
			debug.DropError("DECODE", err)
			return
		}
		stats.consumed++
		stats.byKind[ev.Kind]++

		switch ev.Kind {
		case events.XRun, events.Shutdown, events.BufferSize, events.SampleRate:
			debug.DropMessage("GRAPH", ev.String())
		}

		if jrnl != nil {
			if err := jrnl.Record(ev); err != nil {
				debug.DropError("JOURNAL", err)
			}
		}
	}
}

// startConsumer launches the configured consumer and returns the function
// that stops it. The consumer registers with control.ShutdownWG.
func startConsumer(cfg *config.Config, ring *msgring.Ring, jrnl *journal.Journal, stats *consumerStats) func() {
	handler := handleEvents(jrnl, stats)
	control.ShutdownWG.Add(1)

	if cfg.Consumer == config.ConsumerPolled {
		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			defer control.ShutdownWG.Done()
			_ = drain.PollEvery(ctx, ring, time.Duration(cfg.PollInterval), handler)
		}()
		return cancel
	}

	// The consumer has its own stop flag: it must outlive the producer's
	// teardown burst, which is posted after the global stop.
	var stop atomic.Uint32
	_, hot := control.Flags()
	done := make(chan struct{})

	drain.PinnedConsumerWithCooldown(cfg.ConsumerCore, ring, &stop, hot, handler, done)
	go func() {
		<-done
		control.ShutdownWG.Done()
	}()
	return func() { stop.Store(1) }
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// SIGNALS AND STATUS
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// waitForShutdown blocks until SIGINT/SIGTERM or the configured run time,
// reporting ring occupancy periodically.
func waitForShutdown(cfg *config.Config, ring *msgring.Ring, poster *events.Poster) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	var deadline <-chan time.Time
	if cfg.RunFor > 0 {
		timer := time.NewTimer(time.Duration(cfg.RunFor))
		defer timer.Stop()
		deadline = timer.C
	}

	status := time.NewTicker(statusEvery)
	defer status.Stop()

	for {
		select {
		case <-sigChan:
			debug.DropMessage("SIGNAL", "Received interrupt, shutting down...")
			return
		case <-deadline:
			debug.DropMessage("STOP", "Run time elapsed")
			return
		case <-status.C:
			if cfg.Consumer == config.ConsumerPolled {
				control.PollCooldown()
			}
			debug.DropRingState("STATUS", ring.DebugState())
			if n := poster.Dropped(); n != 0 {
				debug.DropMessage("STATUS", "dropped "+utils.Utoa(n)+" events")
			}
		}
	}
}
