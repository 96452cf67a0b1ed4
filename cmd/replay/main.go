package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"sessionreplay/internal/adapter/fetcher/hertzclient"
	"sessionreplay/internal/adapter/metrics"
	metricsinmem "sessionreplay/internal/adapter/metrics/inmemory"
	"sessionreplay/internal/adapter/metrics/prom"
	"sessionreplay/internal/adapter/sink/timeline"
	"sessionreplay/internal/adapter/state"
	stateinmem "sessionreplay/internal/adapter/state/inmemory"
	"sessionreplay/internal/adapter/state/natsstate"
	"sessionreplay/internal/app/loader"
	"sessionreplay/internal/app/playback"
	"sessionreplay/internal/config"

	"github.com/cloudwego/hertz/pkg/common/hlog"
)

var errInterrupted = errors.New("replay interrupted")

type options struct {
	SessionID string
	Fast      bool
}

type report struct {
	Outcome  loader.Outcome        `json:"outcome"`
	Events   int                   `json:"events"`
	Flushed  int                   `json:"flushed"`
	Entries  int                   `json:"timeline_entries"`
	Effects  int                   `json:"effects"`
	State    stateinmem.Snapshot   `json:"state"`
	Playback metricsinmem.Snapshot `json:"playback"`
}

func main() {
	configPath := flag.String("config", os.Getenv("REPLAY_CONFIG"), "path to YAML config")
	sessionID := flag.String("session", "", "session id to replay")
	baseURL := flag.String("base", "", "event log base URL (overrides replay.base_url)")
	delay := flag.Duration("delay", 0, "delay between events (overrides replay.delay)")
	fast := flag.Bool("fast", false, "emit the whole session immediately")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if *baseURL != "" {
		cfg.Replay.BaseURL = *baseURL
	}
	if *delay > 0 {
		cfg.Replay.Delay = *delay
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}
	cfg.ApplyLogLevel()

	interrupts := make(chan os.Signal, 2)
	signal.Notify(interrupts, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(interrupts)

	rep, err := run(context.Background(), cfg, options{SessionID: *sessionID, Fast: *fast}, os.Stdout, interrupts)
	b, _ := json.MarshalIndent(rep, "", "  ")
	fmt.Fprintln(os.Stderr, string(b))
	if err != nil {
		log.Fatalf("replay: %v", err)
	}
}

// run fetches one session and plays it back. The first interrupt
// fast-forwards the replay, the second abandons it.
func run(ctx context.Context, cfg config.Config, opts options, out io.Writer, interrupts <-chan os.Signal) (report, error) {
	fetcher, err := hertzclient.New(cfg.Replay.BaseURL, cfg.Replay.FetchTimeout)
	if err != nil {
		return report{}, fmt.Errorf("build fetcher: %w", err)
	}

	store := stateinmem.NewStore()
	publishers := state.Fanout{store}
	if url := strings.TrimSpace(cfg.NATS.URL); url != "" {
		pub, closeNATS, err := natsstate.Connect(url, cfg.NATS.SubjectPrefix)
		if err != nil {
			hlog.Warnf("nats state publishing disabled: %v", err)
		} else {
			defer closeNATS()
			publishers = append(publishers, pub)
		}
	}

	kpi := metricsinmem.NewRecorder()
	recorders := metrics.Multi{kpi}
	if addr := strings.TrimSpace(cfg.Metrics.Addr); addr != "" {
		exporter := prom.NewExporter()
		exporter.StartHTTP(addr)
		recorders = append(recorders, exporter)
	}

	tl := timeline.New(out)
	sched := playback.NewScheduler(playback.Config{
		Sink:    tl,
		State:   publishers,
		Metrics: recorders,
		Delay:   cfg.Replay.Delay,
	})
	defer sched.Close()
	uc := loader.UseCase{
		Fetcher:  fetcher,
		Player:   sched,
		State:    publishers,
		Notifier: publishers,
		Metrics:  recorders,
	}

	resp := uc.Execute(ctx, loader.Request{SessionID: opts.SessionID})
	rep := report{Outcome: resp.Outcome, Events: resp.EventCount}
	finish := func(err error) (report, error) {
		rep.Entries = len(tl.Entries())
		rep.Effects = tl.Effects()
		rep.State = store.Snapshot()
		rep.Playback = kpi.Snapshot()
		return rep, err
	}

	switch resp.Outcome {
	case loader.OutcomeIdle:
		return finish(errors.New("missing -session"))
	case loader.OutcomeFailed:
		return finish(fmt.Errorf("session %s could not be replayed", opts.SessionID))
	case loader.OutcomeEmpty:
		return finish(nil)
	}

	if opts.Fast {
		rep.Flushed = sched.CancelAndFlush()
		return finish(nil)
	}

	done := make(chan error, 1)
	go func() { done <- sched.Wait(ctx) }()
	flushed := false
	for {
		select {
		case err := <-done:
			return finish(err)
		case <-interrupts:
			if flushed {
				sched.Retire()
				<-done
				return finish(errInterrupted)
			}
			flushed = true
			rep.Flushed = sched.CancelAndFlush()
			hlog.Infof("fast-forwarded %d events, interrupt again to quit", rep.Flushed)
		}
	}
}
