package main

import (
	"log"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"violens/adapters/geo"
	"violens/adapters/tabfile"
	"violens/internal/config"
	"violens/internal/session"
	"violens/ui"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("[Main] No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[Main] Invalid configuration: %v", err)
	}

	store := session.NewStore()
	loader := tabfile.NewLoader()

	// The dataset and both boundary files load concurrently. A failed
	// dataset load is recorded and shown by the UI; a missing boundary
	// file only degrades the map page. Neither aborts startup.
	var states, world *geo.BoundarySet
	var g errgroup.Group
	g.Go(func() error {
		ds, err := loader.Load(cfg.DataFile)
		if err != nil {
			log.Printf("[Main] Dataset load failed: %v", err)
			store.SetLoadError(err)
			return nil
		}
		store.ReplaceDataset(ds)
		return nil
	})
	g.Go(func() error {
		b, err := geo.LoadBoundaries(cfg.StatesGeoJSON, "states")
		if err != nil {
			log.Printf("[Main] State boundaries unavailable: %v", err)
			return nil
		}
		states = b
		return nil
	})
	g.Go(func() error {
		b, err := geo.LoadBoundaries(cfg.WorldGeoJSON, "world")
		if err != nil {
			log.Printf("[Main] World boundaries unavailable: %v", err)
			return nil
		}
		world = b
		return nil
	})
	g.Wait()

	server, err := ui.NewServer(cfg, store, loader, states, world)
	if err != nil {
		log.Fatalf("[Main] Server setup failed: %v", err)
	}
	if err := server.Run(); err != nil {
		log.Fatalf("[Main] Server stopped: %v", err)
	}
}
