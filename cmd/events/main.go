package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"ai-appbuilder-be/internal/config"
	"ai-appbuilder-be/pkg/events"
	pktNats "ai-appbuilder-be/pkg/nats"

	"github.com/fatih/color"
)

// events tails the application event stream on NATS.
func main() {
	eventType := flag.String("type", ">", "event type to follow, > for all")
	durable := flag.String("durable", "", "durable consumer name; empty only shows new events")
	flag.Parse()

	cfg := config.Load()
	if cfg.App.NatsURL == "" {
		log.Fatal("Error: NATS_URL is not set")
	}

	sub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
	defer sub.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	unsubscribe, err := sub.Subscribe(ctx, *eventType, *durable, func(_ context.Context, event events.Event) error {
		line := color.New(color.FgCyan).SprintfFunc()
		if event.EventType() == events.GenerationFailed {
			line = color.New(color.FgRed).SprintfFunc()
		}
		log.Println(line("%s %s %v", event.Timestamp().Format("15:04:05"), event.EventType(), event.Payload()))
		return nil
	})
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
	defer unsubscribe()

	color.Green("Listening on %s (Ctrl+C to stop)", pktNats.Subject(*eventType))
	<-ctx.Done()
}
