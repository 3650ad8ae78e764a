package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/ghalamif/giosaqi"
)

// Keeps the worst recent reading per pollutant across all configured stations.
func main() {
	flow, err := giosaqi.Conf("../../data/config.yaml")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sink, batches, closeBatches := giosaqi.NewChannelSink("worst", 32)
	defer closeBatches()

	go worstPerParam(batches)

	if err := flow.Run(ctx, giosaqi.StreamOutSink(sink)); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("runtime error: %v", err)
	}
}

func worstPerParam(batches <-chan []giosaqi.Sample) {
	worst := map[string]giosaqi.Sample{}
	for batch := range batches {
		for _, s := range batch {
			if !s.Valid {
				continue
			}
			if cur, ok := worst[s.ParamCode]; !ok || s.Value > cur.Value || cur.SensorID == s.SensorID {
				worst[s.ParamCode] = s
			}
		}
		for code, s := range worst {
			fmt.Printf("%-6s %6.1f %s (%s)\n", code, s.Value, s.Unit, s.Name)
		}
	}
}
