// Package main implements a terminal notification consumer: it connects to
// the taskwire websocket endpoint, registers the given principal, and prints
// every pushed notification until interrupted.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/taskwire/taskwire/internal/ws"
	"github.com/taskwire/taskwire/internal/wsclient"
)

func main() {
	var (
		url       = flag.String("url", "ws://localhost:4000/ws", "websocket endpoint")
		token     = flag.String("token", "", "access token presented as the handshake cookie")
		principal = flag.String("principal", "", "principal id to receive notifications for")
		reconnect = flag.Duration("reconnect", wsclient.DefaultReconnectDelay, "delay between reconnect attempts")
		verbose   = flag.Bool("v", false, "log connection state changes")
	)
	flag.Parse()

	if *token == "" {
		log.Fatal("missing required flag: -token")
	}

	principalID, err := uuid.Parse(*principal)
	if err != nil {
		log.Fatalf("invalid -principal: %v", err)
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	listener, err := wsclient.New(wsclient.Config{
		URL:            *url,
		Token:          *token,
		PrincipalID:    principalID,
		ReconnectDelay: *reconnect,
		Logger:         logger,
		Handler:        printNotification,
	})
	if err != nil {
		log.Fatalf("failed to create listener: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(os.Stderr, "listening for notifications as %s (ctrl-c to quit)\n", principalID)
	if err := listener.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("listener stopped: %v", err)
	}
}

// printNotification renders one pushed frame as a single line.
func printNotification(frame ws.Frame) {
	ts := frame.Timestamp.Local().Format(time.TimeOnly)
	fmt.Printf("[%s] %-16s %s\n", ts, frame.Type, frame.Message)
	for k, v := range frame.Data {
		fmt.Printf("    %s=%s\n", k, v)
	}
}
