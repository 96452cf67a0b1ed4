package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	httpadapter "sessionreplay/internal/adapter/http"
	gormrepo "sessionreplay/internal/adapter/repo/gorm"
	"sessionreplay/internal/adapter/repo/memory"
	"sessionreplay/internal/app/ports"
	"sessionreplay/internal/app/record"
	"sessionreplay/internal/app/replay"
	"sessionreplay/internal/app/sessions"
	"sessionreplay/internal/config"
	"sessionreplay/internal/domain/session"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/hlog"
)

const demoSessionID = "demo-session"

type repos struct {
	events   ports.EventRepository
	sessions ports.SessionRepository
	tx       ports.TxManager
}

func main() {
	configPath := flag.String("config", os.Getenv("REPLAY_CONFIG"), "path to YAML config")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	cfg.ApplyLogLevel()

	r := mustBuildRepos(cfg.Server)
	h := httpadapter.Handler{
		ReplayUC:   replay.UseCase{Events: r.events},
		SessionsUC: sessions.UseCase{Sessions: r.sessions},
		RecordUC: record.UseCase{
			TxManager: r.tx,
			Sessions:  r.sessions,
			Events:    r.events,
			Now:       time.Now,
		},
	}

	s := server.Default(server.WithHostPorts(cfg.Server.Addr))
	h.RegisterRoutes(s)

	hlog.Infof("session replay server listening on %s", cfg.Server.Addr)
	s.Spin()
}

func mustBuildRepos(cfg config.Server) repos {
	if cfg.DBDSN == "" {
		store := memory.NewStore()
		r := repos{
			events:   memory.NewEventRepo(store),
			sessions: memory.NewSessionRepo(store),
			tx:       memory.NewTxManager(store),
		}
		if err := seedDemoSession(context.Background(), r, time.Now()); err != nil {
			log.Fatalf("seed demo session: %v", err)
		}
		hlog.Infof("no database configured, serving in-memory store (demo session: %s)", demoSessionID)
		return r
	}

	db, err := gormrepo.OpenPostgres(cfg.DBDSN)
	if err != nil {
		log.Fatalf("open postgres: %v", err)
	}
	if cfg.MigrationsDir != "" {
		if err := gormrepo.ApplyMigrations(context.Background(), db, cfg.MigrationsDir); err != nil {
			log.Fatalf("apply migrations: %v", err)
		}
	}
	return repos{
		events:   gormrepo.NewEventRepo(db),
		sessions: gormrepo.NewSessionRepo(db),
		tx:       gormrepo.NewTxManager(db),
	}
}

func seedDemoSession(ctx context.Context, r repos, now time.Time) error {
	uc := record.UseCase{TxManager: r.tx, Sessions: r.sessions, Events: r.events, Now: func() time.Time { return now }}
	_, err := uc.Execute(ctx, record.Request{
		SessionID:    demoSessionID,
		DeviceID:     "demo-device",
		WorkspaceDir: "/workspace/demo",
		Events:       demoEvents(now),
	})
	return err
}

func demoEvents(start time.Time) []session.Event {
	at := func(i int) time.Time { return start.Add(time.Duration(i) * time.Second) }
	return []session.Event{
		{Type: session.EventWorkspaceInfo, Timestamp: at(0), Payload: map[string]any{"type": "workspace_info", "content": map[string]any{"path": "/workspace/demo"}}},
		{Type: session.EventUserMessage, Timestamp: at(1), Payload: map[string]any{"type": "user_message", "content": map[string]any{"text": "open example.com and summarize it"}}},
		{Type: session.EventAgentThinking, Timestamp: at(2), Payload: map[string]any{"type": "agent_thinking", "content": map[string]any{"text": "I will open the page first."}}},
		{Type: session.EventToolCall, Timestamp: at(3), Payload: map[string]any{"type": "tool_call", "content": map[string]any{"tool_name": "browser_navigate", "tool_input": map[string]any{"url": "https://example.com"}}}},
		{Type: session.EventToolResult, Timestamp: at(4), Payload: map[string]any{"type": "tool_result", "content": map[string]any{"tool_name": "browser_navigate", "result": "Example Domain"}}},
		{Type: session.EventAgentResponse, Timestamp: at(5), Payload: map[string]any{"type": "agent_response", "content": map[string]any{"text": "The page is the IANA example domain."}}},
		{Type: session.EventStreamComplete, Timestamp: at(6), Payload: map[string]any{"type": "stream_complete"}},
	}
}
