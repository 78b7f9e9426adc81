package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/elbionredenica/simchess/internal/abort"
	"github.com/elbionredenica/simchess/internal/adapter/termpresenter"
	"github.com/elbionredenica/simchess/internal/archive"
	"github.com/elbionredenica/simchess/internal/authority"
	appcfg "github.com/elbionredenica/simchess/internal/config"
	"github.com/elbionredenica/simchess/internal/msgcat"
	"github.com/elbionredenica/simchess/internal/obslog"
	"github.com/elbionredenica/simchess/internal/reconcile"
	"github.com/elbionredenica/simchess/internal/render"
	"github.com/elbionredenica/simchess/internal/session"
)

const usage = "usage: simchess create | simchess join <game-id>"

func main() {
	cfg, err := appcfg.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if err := obslog.InitFromEnv(); err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	logger := obslog.L()
	defer func() { _ = logger.Sync() }()

	if len(os.Args) < 2 {
		log.Fatal(usage)
	}

	client := authority.NewClient(cfg.AuthorityBaseURL,
		authority.WithHeaderProvider(authority.ClientIDHeaders(cfg.ClientID)),
		authority.WithTimeout(cfg.HTTPTimeout),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var gameID string
	switch strings.ToLower(os.Args[1]) {
	case "create":
		cctx, ccancel := context.WithTimeout(ctx, cfg.HTTPTimeout)
		gameID, err = client.CreateGame(cctx)
		ccancel()
		if err != nil {
			log.Fatalf("create game: %v", err)
		}
		fmt.Printf("Created game %s\n", gameID)
	case "join":
		if len(os.Args) < 3 || strings.TrimSpace(os.Args[2]) == "" {
			log.Fatal(usage)
		}
		gameID = strings.TrimSpace(os.Args[2])
	default:
		log.Fatal(usage)
	}

	cat, err := msgcat.New(cfg.MessagesDir)
	if err != nil {
		log.Fatalf("messages: %v", err)
	}
	pres := termpresenter.New(os.Stdout, cat)

	archivers, closers := openArchivers(ctx, cfg, logger)
	defer func() {
		for _, c := range closers {
			_ = c()
		}
	}()

	ws := authority.NewWebSocket(cfg.AuthorityWSURL, cfg.WSMaxReconnect, cfg.WSReconnectDelay)
	ws.SetHeaderProvider(authority.ClientIDHeaders(cfg.ClientID))
	ws.SetLogger(logger)
	ws.OnStateChange(func(state authority.State) {
		logger.Info("ws_state", zap.String("state", state.String()))
	})

	policy, _ := reconcile.PolicyByName(cfg.PromotionPolicy)
	registry := session.NewRegistry()
	sess, err := registry.Open(ctx, gameID, session.Options{
		Controller: reconcile.Config{
			TimeControl: cfg.TimeControlSeconds,
			Tolerance:   cfg.SyncToleranceSeconds,
			Abort: abort.Config{
				AbortAfter:  time.Duration(cfg.AbortSeconds) * time.Second,
				WarnAfter:   time.Duration(cfg.AbortWarningSeconds) * time.Second,
				UrgentUnder: time.Duration(cfg.AbortUrgentSeconds) * time.Second,
			},
			Promotion: policy,
			Logger:    logger,
		},
		Presenter: pres,
		Authority: ws,
		Resigner:  client,
		Archivers: archivers,
		Logger:    logger,
	})
	if err != nil {
		log.Fatalf("open session: %v", err)
	}
	detach := authority.Bind(ws, gameID, sess.Deliver, logger)
	defer detach()

	cctx, ccancel := context.WithTimeout(ctx, 10*time.Second)
	err = ws.Connect(cctx)
	ccancel()
	if err != nil {
		log.Fatalf("ws connect error: %v", err)
	}

	quit := make(chan struct{})
	go func() {
		defer close(quit)
		r := &runner{sess: sess, pres: pres, out: os.Stdout}
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			done, err := r.run(ctx, scanner.Text())
			if err != nil {
				pres.ShowAlert(err.Error())
			}
			if done {
				return
			}
		}
	}()

	select {
	case <-ctx.Done():
	case <-quit:
	case <-sess.Done():
	}

	sctx, scancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer scancel()
	_ = registry.CloseAll(sctx)
	_ = ws.Close(sctx)
}

// openArchivers wires every configured sink for finished games. A sink that
// fails to open is logged and skipped.
func openArchivers(ctx context.Context, cfg *appcfg.AppConfig, logger *zap.Logger) ([]session.Archiver, []func() error) {
	var (
		archivers []session.Archiver
		closers   []func() error
	)
	if strings.TrimSpace(cfg.RedisURL) != "" {
		store, err := archive.OpenStore(ctx, cfg.RedisURL, cfg.ArchiveTTL())
		if err != nil {
			logger.Warn("archive_store_unavailable", zap.Error(err))
		} else {
			archivers = append(archivers, store)
			closers = append(closers, store.Close)
		}
	}
	if strings.TrimSpace(cfg.DatabaseURL) != "" {
		repo, err := archive.NewRepository(cfg.DatabaseURL)
		if err == nil {
			err = repo.EnsureSchema(ctx)
			if err != nil {
				_ = repo.Close()
			}
		}
		if err != nil {
			logger.Warn("archive_repository_unavailable", zap.Error(err))
		} else {
			archivers = append(archivers, repo)
			closers = append(closers, repo.Close)
		}
	}
	if strings.TrimSpace(cfg.SnapshotDir) != "" {
		archivers = append(archivers, render.SnapshotArchiver{Dir: cfg.SnapshotDir})
	}
	return archivers, closers
}
