//go:build ignore

// warm_cache researches a JSON list of places ahead of time so that later
// itinerary requests are served from the place cache.
//
//	go run scripts/warm_cache.go -file places.json -region "North Goa"
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/FACorreiaa/go-itinerary-engine/config"
	"github.com/FACorreiaa/go-itinerary-engine/internal/api/research"
	"github.com/FACorreiaa/go-itinerary-engine/internal/container"
	"github.com/FACorreiaa/go-itinerary-engine/internal/types"
)

var (
	file    = flag.String("file", "places.json", "JSON array of places to research")
	region  = flag.String("region", "", "region label; detected from the places when empty")
	refresh = flag.Bool("refresh", false, "ignore cached entries and look every place up again")
	batch   = flag.Int("batch", 20, "places per batch")
)

func main() {
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg, err := config.InitConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	places, err := readPlaces(*file)
	if err != nil {
		log.Fatalf("Failed to read places: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	c, err := container.NewContainer(ctx, &cfg, logger)
	if err != nil {
		log.Fatalf("Failed to initialize dependencies: %v", err)
	}
	defer c.Close()

	label := *region
	if label == "" {
		label = c.ResearchService.DetectRegion(places)
	}
	logger.Info("Warming place cache",
		slog.Int("places", len(places)),
		slog.String("region", label),
		slog.String("backend", cfg.Research.CacheBackend))

	size := max(1, *batch)
	var cached, fresh, degraded int
	for start := 0; start < len(places); start += size {
		end := min(start+size, len(places))
		results, err := c.ResearchService.ResearchDetailed(ctx, places[start:end], label, research.Options{UseCache: !*refresh})
		for _, r := range results {
			switch r.Status {
			case types.ResearchCached:
				cached++
			case types.ResearchDegraded:
				degraded++
				logger.Warn("Place degraded", slog.String("place", r.Place.Name), slog.String("reason", r.Reason))
			default:
				fresh++
			}
		}
		if err != nil {
			logger.Error("Warm-up interrupted", slog.Any("error", err))
			break
		}
		logger.Info("Batch done", slog.Int("done", end), slog.Int("total", len(places)))
	}

	logger.Info("Cache warm-up completed",
		slog.Int("cached", cached),
		slog.Int("looked_up", fresh),
		slog.Int("degraded", degraded))
	if degraded > 0 {
		c.Close()
		os.Exit(1)
	}
}

func readPlaces(path string) ([]types.Place, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var places []types.Place
	if err := json.Unmarshal(raw, &places); err != nil {
		return nil, fmt.Errorf("%s is not a JSON array of places: %w", path, err)
	}
	return places, nil
}
