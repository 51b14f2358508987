package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"arena-ledger/auth"
	"arena-ledger/domain"
	"arena-ledger/infrastructure/grpc/server"
	"arena-ledger/internal"
	"arena-ledger/moderation"
	"arena-ledger/observability"
	"arena-ledger/projection"
	pb "arena-ledger/proto/ledger"
	"arena-ledger/repositories"
	"arena-ledger/runtime"
	"arena-ledger/runtime/workers"
	"arena-ledger/services"
	"arena-ledger/sink"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	sdkgrpc "github.com/mama165/sdk-go/grpc"
	"github.com/mama165/sdk-go/logs"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/proto"
)

// Exit codes to provide meaningful status to the operating system or service manager (e.g., systemd).
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	// The main function acts as a thin wrapper.
	// Its only responsibility is to call run() and handle the OS exit code.
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Master terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run initializes all components, manages the server lifecycle, and centralizes error reporting.
// This pattern is preferred over calling os.Exit or panic directly because:
// 1. It ensures all 'defer' statements (like database cleanup) are executed before the program exits.
// 2. It improves testability by decoupling the initialization logic from the main entry point.
// 3. It provides a structured way to handle graceful shutdowns for gRPC and background workers.
func run() (int, error) {
	// 1. Configuration & Logger
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}

	charReplacement, err := config.CharacterRune()
	if err != nil {
		return exitConfig, err
	}

	logger := logs.GetLoggerFromString(config.LogLevel)
	ctx := context.Background()

	// 2. Database (BadgerDB)
	db, err := badger.Open(buildBadgerOpts(config, logger, ctx))
	if err != nil {
		return exitRuntime, fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		// Defer ensures the database lock is released and buffers are flushed before the function returns.
		logger.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	// 3. Moderation (embedded word lists + Aho-Corasick build)
	censoredData, err := moderation.LoadDefault()
	if err != nil {
		return exitRuntime, fmt.Errorf("censored words loading failed: %w", err)
	}
	logger.Info(fmt.Sprintf("%d unique censored words loaded [%d languages]",
		len(censoredData.Words), len(censoredData.Languages)))

	moderator, err := moderation.NewModerator(censoredData.Words, charReplacement)
	if err != nil {
		return exitRuntime, fmt.Errorf("moderator build failed: %w", err)
	}

	// 4. Supervision & Orchestration
	startingBalance := domain.DefaultStartingBalance
	if config.StartingBalance != nil {
		startingBalance = domain.Balance(*config.StartingBalance)
	}
	rewardAmount := domain.DefaultRewardAmount
	if config.RewardAmount != nil {
		rewardAmount = *config.RewardAmount
	}

	ledger := domain.NewLedger(startingBalance)
	sup := workers.NewSupervisor(logger)
	registry := runtime.NewRegistry()
	orchestrator := runtime.NewOrchestrator(
		logger, ledger, sup, registry,
		config.NumberOfWorkers, config.BufferSize,
		config.SinkTimeout, config.MetricInterval,
	)

	journalRepository := repositories.NewJournalRepository(db, logger)
	timeline := projection.NewTimeline()
	monitoring := observability.NewMonitoringManager(logger)

	orchestrator.Add(
		sink.NewJournalSink(journalRepository, logger),
		timeline,
	)
	orchestrator.Handle(monitoring)

	if config.DebugPort != 0 {
		endpoint := "/inspect"
		logger.Info("Debug journal inspector available",
			"url", fmt.Sprintf("http://localhost:%d%s", config.DebugPort, endpoint))
		internal.StartDebugServer(db, config.DebugPort, endpoint, JournalMapper, func() map[string]any {
			stats := monitoring.GetLatest()
			return map[string]any{
				"RewardsApplied":      stats.RewardsApplied,
				"AdjustmentsApplied":  stats.AdjustmentsApplied,
				"AdjustmentsRejected": stats.AdjustmentsRejected,
				"Joins":               stats.Joins,
				"ActiveSessions":      registry.Sessions(),
				"Tracked":             ledger.Tracked(),
				"AllocMemMb":          stats.AllocMemMb,
			}
		})
	}

	// 5. Context & Signals
	// NotifyContext captures OS signals and cancels the context to trigger a shutdown.
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Error (gRPC & Orchestrator)
	errChan := make(chan error, 2)

	// 6. Start the Engine (Workers and Fanout)
	go func() {
		logger.Info("Starting orchestrator...")
		if err := orchestrator.Start(ctx); err != nil {
			errChan <- fmt.Errorf("orchestrator error: %w", err)
		}
	}()

	// 7. gRPC Server Setup
	address := fmt.Sprintf("0.0.0.0:%d", config.Port)
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return exitRuntime, fmt.Errorf("failed to listen on %s: %w", address, err)
	}

	s := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			sdkgrpc.UnaryLoggingInterceptor(logger),
			auth.UnaryAuthInterceptor,
		),
		grpc.ChainStreamInterceptor(
			auth.StreamAuthInterceptor,
		))

	sessionService := services.NewSessionService(config.SessionTokenDuration)
	ledgerService := services.NewLedgerService(logger, orchestrator, sessionService, moderator)
	ledgerServer := server.NewLedgerServer(logger, ledgerService, sessionService,
		rewardAmount, config.ConnectionBufferSize)
	pb.RegisterLedgerServiceServer(s, ledgerServer)

	// Use an error channel to capture Serve() issues asynchronously.
	go func() {
		logger.Info("Starting gRPC server", "address", address, "at", time.Now().UTC())
		if err := s.Serve(listener); err != nil && !stderrors.Is(err, grpc.ErrServerStopped) {
			errChan <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()

	// 8. Wait for Stop or Error
	// The execution blocks here until either a signal is received or the server crashes.
	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-errChan:
		return exitRuntime, err
	}

	// 9. Final Cleanup (Graceful Shutdown)
	// We allow active gRPC streams to finish and workers to drain their channels.
	logger.Info("Shutting down gracefully...")
	s.GracefulStop()
	orchestrator.Stop()
	logger.Info("Program stopped cleanly")

	return exitOK, nil
}

func buildBadgerOpts(config internal.Config, logger *slog.Logger, ctx context.Context) badger.Options {
	options := badger.DefaultOptions(config.BadgerFilepath)

	if logger.Enabled(ctx, slog.LevelDebug) {
		options = options.WithLoggingLevel(badger.DEBUG).
			WithBypassLockGuard(true)
	} else {
		options = options.WithLoggingLevel(badger.INFO)
	}

	return options
}

// JournalMapper renders a journal entry for the debug inspector.
func JournalMapper(key string, val []byte) internal.InspectRow {
	row := internal.DefaultMapper(key, val)

	var entry pb.JournalEntry
	if err := proto.Unmarshal(val, &entry); err != nil {
		row.Detail = "Error: unmarshal failed"
		return row
	}

	row.Type = "JOURNAL"
	row.Detail = fmt.Sprintf("%s %+d -> %d", entry.Reason, entry.Amount, entry.Balance)
	return row
}
