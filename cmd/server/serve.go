package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/DoyleJ11/cardlobby-backend/internal/config"
	"github.com/DoyleJ11/cardlobby-backend/internal/httpapi"
	"github.com/DoyleJ11/cardlobby-backend/internal/hub"
	"github.com/DoyleJ11/cardlobby-backend/internal/journal"
	"github.com/DoyleJ11/cardlobby-backend/internal/lobby"
	"github.com/DoyleJ11/cardlobby-backend/internal/logging"
	"github.com/DoyleJ11/cardlobby-backend/internal/ws"
)

const shutdownTimeout = 5 * time.Second

func newCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "cardlobby",
		Short:   "Lobby and card game server speaking JSON over a websocket.",
		Args:    cobra.ExactArgs(0),
		Version: releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}

	config.AddFlags(cmd.Flags(), cfg)

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("cardlobby v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}

func serve(ctx context.Context, cfg *config.Config) error {
	log, err := logging.New(cfg.LogFormat, cfg.Verbose)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	sinks, closeSinks, err := openSinks(cfg, log)
	if err != nil {
		return err
	}
	defer closeSinks()
	jrnl := journal.New(log.Named("journal"), cfg.JournalQueue, sinks...)

	g, gctx := errgroup.WithContext(ctx)

	registry := lobby.NewRegistry(
		lobby.WithMaxPlayers(cfg.MaxPlayers),
		lobby.WithHandSize(cfg.HandSize),
	)
	h := hub.NewHub(gctx, registry, log.Named("hub"), jrnl)

	srv := &http.Server{
		Addr: cfg.Addr(),
		Handler: httpapi.SetupRoutes(httpapi.Deps{
			Hub: h,
			Log: log.Named("http"),
			WS: ws.Options{
				OutboxSize:     cfg.OutboxSize,
				ReadTimeout:    cfg.ReadTimeout,
				WriteTimeout:   cfg.WriteTimeout,
				PingInterval:   cfg.PingInterval,
				OriginPatterns: cfg.Origins,
			},
			PublicURL: cfg.JoinBase(),
			Version:   "cardlobby v" + releaseVersion,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// The journal outlives the hub so entries recorded during shutdown
	// still reach the sinks.
	journalCtx, stopJournal := context.WithCancel(context.Background())
	defer stopJournal()

	g.Go(func() error {
		log.Info("listening",
			zap.String("addr", srv.Addr),
			zap.String("public_url", cfg.JoinBase()),
			zap.Int("max_players", cfg.MaxPlayers),
			zap.Int("hand_size", cfg.HandSize))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen %s: %w", srv.Addr, err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)

		<-h.Done()
		stopJournal()
		return err
	})

	g.Go(func() error {
		return jrnl.Run(journalCtx)
	})

	return g.Wait()
}

// openSinks connects every journal sink the config enables. The returned
// func releases them.
func openSinks(cfg *config.Config, log *zap.Logger) ([]journal.Sink, func(), error) {
	var (
		sinks   []journal.Sink
		closers []func()
	)
	closeAll := func() {
		for _, c := range closers {
			c()
		}
	}

	if cfg.DatabaseURL != "" {
		pg, err := journal.OpenPostgres(cfg.DatabaseURL)
		if err != nil {
			return nil, closeAll, err
		}
		sinks = append(sinks, pg)
		closers = append(closers, func() {
			if err := pg.Close(); err != nil {
				log.Warn("close postgres journal", zap.Error(err))
			}
		})
		log.Info("journal sink enabled", zap.String("sink", pg.Name()))
	}

	if cfg.NATSURL != "" {
		nc, err := journal.ConnectNATS(cfg.NATSURL)
		if err != nil {
			closeAll()
			return nil, func() {}, err
		}
		mirror := journal.NewNATSSink(nc, cfg.NATSSubject)
		sinks = append(sinks, mirror)
		closers = append(closers, func() {
			if err := nc.Drain(); err != nil {
				log.Warn("drain nats", zap.Error(err))
			}
		})
		log.Info("journal sink enabled", zap.String("sink", mirror.Name()), zap.String("subject", cfg.NATSSubject))
	}

	return sinks, closeAll, nil
}
