package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/digiguide/digiguide/internal/config"
	"github.com/digiguide/digiguide/internal/data"
	"github.com/digiguide/digiguide/internal/db"
	"github.com/digiguide/digiguide/internal/embeddings"
	"github.com/digiguide/digiguide/internal/evolution"
	"github.com/digiguide/digiguide/internal/guide"
	"github.com/digiguide/digiguide/internal/imageproxy"
	"github.com/digiguide/digiguide/internal/live"
	"github.com/digiguide/digiguide/internal/search"
	"github.com/digiguide/digiguide/internal/team"
	"github.com/digiguide/digiguide/internal/vectordb"
)

// shutdownTimeout bounds how long in-flight requests may finish.
const shutdownTimeout = 10 * time.Second

// App wires every component from config.
type App struct {
	Config *config.Config
	DB     *db.DB
	Deps

	log *zap.Logger
}

// NewApp opens the database, loads the guides and builds the components.
// The catalog itself loads lazily on first use.
func NewApp(cfg *config.Config, log *zap.Logger) (*App, error) {
	database, err := db.Open(cfg.DB.Path)
	if err != nil {
		return nil, err
	}

	images, err := imageproxy.New(cfg.Images, log)
	if err != nil {
		database.Close()
		return nil, err
	}

	lib := guide.NewLibrary(cfg.Guides)
	if err := lib.Load(); err != nil {
		database.Close()
		return nil, fmt.Errorf("loading guides: %w", err)
	}

	src := data.NewSource(data.DirLoader(cfg.Data.Dir))
	holder := search.NewHolder(src, cfg.Search)
	holder.SetGuides(lib.SearchDocuments())

	hub := live.NewHub(log)
	src.Subscribe(func(*data.Catalog) { hub.Publish(live.WhatCatalog) })

	return &App{
		Config: cfg,
		DB:     database,
		Deps: Deps{
			Source:  src,
			Search:  holder,
			Related: vectordb.NewIndex(src, embeddings.NewHashingEmbedder(embeddings.DefaultDimensions), database.Dir(), log),
			Graphs:  &evolution.Cache{},
			Teams:   team.NewStore(database),
			Images:  images,
			Guides:  lib,
			Hub:     hub,
		},
		log: log,
	}, nil
}

// Catalog loads the catalog now so startup fails on broken data.
func (a *App) Catalog(ctx context.Context) (*data.Catalog, error) {
	return a.Source.Catalog(ctx)
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
// With data.watch set, data and guide changes reload live.
func (a *App) Run(ctx context.Context) error {
	var watcher *data.Watcher
	if a.Config.Data.Watch {
		w, err := data.NewWatcher(a.Config.Data.Dir, a.Source, a.log)
		if err != nil {
			return err
		}
		watcher = w
	}

	srv := New(a.Config, a.Deps, a.log)
	a.Images.Start()
	defer a.Images.Stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.Hub.Run(ctx)
		return nil
	})

	if watcher != nil {
		g.Go(func() error {
			watcher.Run(ctx)
			return nil
		})
		g.Go(func() error {
			err := a.Guides.Watch(ctx, a.log, func() {
				a.Search.SetGuides(a.Guides.SearchDocuments())
				a.Hub.Publish(live.WhatGuides)
			})
			if err != nil {
				// Guides are optional; the data watcher keeps running.
				a.log.Warn("guide watcher disabled", zap.Error(err))
			}
			return nil
		})
	}

	g.Go(func() error {
		if err := srv.Start(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// Close releases the database.
func (a *App) Close() error {
	return a.DB.Close()
}
