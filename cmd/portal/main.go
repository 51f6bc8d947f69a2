package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"

	"parley/auth"
	"parley/contract"
	"parley/domain"
	"parley/internal"
	"parley/observability"
	"parley/runtime/workers"
	"parley/session"
	"parley/storage"
	"parley/transport"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// logSink routes user-facing notices to the logger when no UI is attached.
type logSink struct {
	log *slog.Logger
}

func (s logSink) Notify(notice contract.Notice) {
	s.log.Info("Notice", "severity", notice.Severity, "text", notice.Text)
}

// run initializes all components, manages the session lifecycle, and
// centralizes error reporting, so every defer executes before exit.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Local persistence (BadgerDB cache + Bluge index)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.INFO))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	writer, err := bluge.OpenWriter(bluge.DefaultConfig(config.BlugeFilepath))
	if err != nil {
		return fmt.Errorf("index opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing Bluge index...")
		_ = writer.Close()
	}()

	limit := 50
	if config.LimitMessages != nil {
		limit = *config.LimitMessages
	}
	cache := storage.NewTimelineCache(db, log, config.LimitMessages)
	index := storage.NewMessageIndex(writer, log, limit)

	// 3. Session identity via a signed ticket
	ticket, err := auth.GenerateTicket([]byte(config.TicketKey),
		config.ParticipantID, config.ParticipantName, []string{"member"}, config.TicketDuration)
	if err != nil {
		return fmt.Errorf("ticket generation failed: %w", err)
	}
	claims, err := auth.ValidateTicket([]byte(config.TicketKey), ticket)
	if err != nil {
		return fmt.Errorf("ticket validation failed: %w", err)
	}
	identity := session.Identity{ParticipantID: claims.ParticipantID, Name: claims.Name}

	// 4. Supervision, stats, transport
	sup := workers.NewSupervisor(log, config.RestartInterval)
	stats := observability.NewSessionStats()

	hub := transport.NewHub(log, config.BufferSize)
	demo := seedDemo(hub, identity)
	tp := hub.Connect(domain.PresenceEntry{ID: identity.ParticipantID, Name: identity.Name})

	controller := session.NewController(log, tp, sup, identity,
		logSink{log: log}, stats, cache, index)
	defer controller.Close()

	// 5. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sup.Add(workers.NewHeartbeatWorker(log, stats, config.HeartbeatInterval))
	go sup.Run(ctx)

	// 6. Debug server over the local cache
	internal.StartDebugServer(db, config.DebugPort, "/inspect", nil, stats.Snapshot)
	log.Info("Debug server started", "url", fmt.Sprintf("http://localhost:%d/inspect", config.DebugPort))

	// 7. Open the demo conversation
	if err := controller.Select(ctx, demo); err != nil {
		log.Warn("Conversation opened degraded", "error", err)
	}
	log.Info("Conversation active",
		"conversation", demo.ID,
		"timeline", len(controller.Timeline()),
		"online", len(controller.Roster()))

	if err := controller.Send(ctx, "joined the conversation"); err != nil {
		log.Warn("Greeting not sent", "error", err)
	}

	// 8. Wait for Stop
	<-ctx.Done()
	log.Info("Shutting down gracefully...")
	sup.Stop()
	log.Info("Program stopped cleanly")

	return nil
}

// seedDemo populates the loopback hub with one group conversation so the
// portal has something to show without a remote backend.
func seedDemo(hub *transport.Hub, who session.Identity) domain.Conversation {
	conv := domain.Conversation{
		ID:   "lobby",
		Name: "Lobby",
		Kind: domain.KindGroup,
		Participants: []domain.Participant{
			{ID: who.ParticipantID, Name: who.Name},
			{ID: "greeter", Name: "Greeter"},
		},
	}
	hub.SeedHistory(conv.ID, []domain.Message{{
		ID:           uuid.New(),
		Conversation: conv.ID,
		SenderID:     "greeter",
		SenderName:   "Greeter",
		Body:         "Welcome to the lobby",
		Type:         domain.TypeText,
		CreatedAt:    time.Now().UTC().Add(-time.Minute),
	}})
	return conv
}
