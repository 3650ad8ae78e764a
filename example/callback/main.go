package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/ghalamif/giosaqi/pkg/giosaqi"
)

func main() {
	flow, err := giosaqi.Conf("../../data/config.yaml")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	callback := func(batch []giosaqi.Sample) error {
		for _, sample := range batch {
			state := "unknown"
			if sample.Valid {
				state = fmt.Sprintf("%.1f %s", sample.Value, sample.Unit)
			}
			fmt.Printf("%s %-40s seq=%d %s\n",
				sample.Timestamp.Format(time.RFC3339),
				sample.Name,
				sample.Seq,
				state,
			)
		}
		return nil
	}

	if err := flow.Run(ctx, giosaqi.StreamOutCallback("stdout", callback)); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("runtime error: %v", err)
	}
}
