package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/elbionredenica/simchess/internal/authority"
	"github.com/elbionredenica/simchess/internal/obslog"
	"github.com/elbionredenica/simchess/internal/reconcile"
)

// authcheck creates a game on the authority, joins it over the push channel
// and prints whatever arrives for a short window.
func main() {
	baseURL := os.Getenv("AUTHORITY_BASE_URL")
	wsURL := os.Getenv("AUTHORITY_WS_URL")
	clientID := os.Getenv("CLIENT_ID")

	if baseURL == "" {
		log.Fatal("AUTHORITY_BASE_URL is required")
	}
	if err := obslog.InitFromEnv(); err != nil {
		log.Fatalf("logger init error: %v", err)
	}

	client := authority.NewClient(baseURL,
		authority.WithHeaderProvider(authority.ClientIDHeaders(clientID)),
		authority.WithTimeout(8*time.Second),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	gameID, err := client.CreateGame(ctx)
	if err != nil {
		log.Fatalf("create_game error: %v", err)
	}
	log.Printf("create_game ok: game_id=%s", gameID)

	if wsURL == "" {
		log.Println("AUTHORITY_WS_URL not set; skipping push channel check")
		return
	}

	ws := authority.NewWebSocket(wsURL, 5, time.Second)
	ws.SetHeaderProvider(authority.ClientIDHeaders(clientID))
	logger := obslog.ForGame(obslog.L(), gameID, "")
	defer func() { _ = logger.Sync() }()
	ws.SetLogger(logger)
	ws.OnStateChange(func(state authority.State) {
		logger.Info("ws_state", zap.String("state", state.String()))
	})
	detach := authority.Bind(ws, gameID, func(msg reconcile.Message) bool {
		fmt.Printf("push %s: %+v\n", msg.Event(), msg)
		return true
	}, logger)
	defer detach()

	cctx, ccancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer ccancel()
	if err := ws.Connect(cctx); err != nil {
		log.Printf("ws connect error: %v", err)
		return
	}

	t := time.NewTimer(10 * time.Second)
	<-t.C
	_ = ws.Close(context.Background())
	log.Println("done")
}
