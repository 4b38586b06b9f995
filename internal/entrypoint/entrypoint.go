// Package entrypoint wires the application together and runs the HTTP server.
package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hnedelkov/bookshelf/internal/acquisition"
	"github.com/hnedelkov/bookshelf/internal/config"
	http_controllers "github.com/hnedelkov/bookshelf/internal/http"
	"github.com/hnedelkov/bookshelf/internal/library"
	"github.com/hnedelkov/bookshelf/internal/lookup"
	"github.com/hnedelkov/bookshelf/internal/scheduler"
	"github.com/hnedelkov/bookshelf/internal/storage"
	"github.com/hnedelkov/bookshelf/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Call shutdown callback first (e.g., to flush the final snapshot)
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting Bookshelf v%s", version)

	// Initialize the snapshot store
	store, err := storage.NewStore(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize snapshot store: %v", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Printf("Error closing snapshot store: %v", err)
		}
	}()

	// Rehydrate the library from the last persisted snapshot. A missing or
	// corrupt snapshot is a first run: start with the empty default shelf.
	lib := library.New()
	snap, ok, err := store.Load()
	if err != nil {
		log.Fatalf("Failed to load snapshot: %v", err)
	}
	if ok {
		lib.Restore(snap)
		shelves, books := lib.Stats()
		log.Printf("Restored %d shelves and %d books from snapshot", shelves, books)
	} else {
		log.Printf("No snapshot found, starting with an empty library")
	}

	// Initialize the task queue for change-driven snapshot persistence
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	if cfg.Tasks.Enabled {
		taskCfg := tasks.Config{
			Workers:           cfg.Tasks.Workers,
			MaxRetries:        cfg.Tasks.MaxRetries,
			RetryDelay:        cfg.Tasks.RetryDelay,
			TaskTimeout:       cfg.Tasks.TaskTimeout,
			ReleaseAfter:      cfg.Tasks.ReleaseAfter,
			CleanupInterval:   cfg.Tasks.CleanupInterval,
			RetentionDuration: cfg.Tasks.RetentionDuration,
		}

		taskClient, err = tasks.NewClient(cfg.Database.Path, taskCfg)
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		taskClient.Register(tasks.NewSaveSnapshotQueue(lib, store))

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)

		// Every successful mutation enqueues a persistence task. The task
		// reads the library when it runs, so bursts collapse into writes of
		// the latest state.
		lib.OnChange(func() {
			if _, err := taskClient.Add(tasks.SaveSnapshotTask{Reason: "mutation"}).Save(); err != nil {
				log.Printf("Failed to enqueue snapshot save: %v", err)
			}
		})
	} else {
		// Without the queue, persist synchronously on every change.
		lib.OnChange(func() {
			if err := store.Save(lib.Snapshot()); err != nil {
				log.Printf("Failed to save snapshot: %v", err)
			}
		})
	}

	// Periodic safety flush
	flusher := scheduler.NewSnapshotFlushScheduler(lib, store, cfg.Snapshot.FlushSchedule)
	if cfg.Snapshot.FlushEnabled {
		if err := flusher.Start(); err != nil {
			log.Fatalf("Failed to start snapshot flush scheduler: %v", err)
		}
	}

	// Bibliographic lookup client and acquisition sessions
	lookupClient := lookup.NewGoogleBooksClient(
		cfg.Lookup.BaseURL,
		time.Duration(cfg.Lookup.TimeoutInSeconds)*time.Second,
	)
	sessions := acquisition.NewManager(lookupClient, lib)

	router := http_controllers.NewRouter(http_controllers.RouterConfig{
		Library:       lib,
		Sessions:      sessions,
		SnapshotStore: store,
		Version:       version,
	})

	// Shutdown callback for graceful cleanup. The final flush runs last so
	// whatever state the library holds at exit is the state on disk.
	onShutdown := func(ctx context.Context) {
		flusher.Stop()
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
		if err := flusher.FlushNow(); err != nil {
			log.Printf("Final snapshot flush failed: %v", err)
		}
	}

	Serve(router, cfg, onShutdown)
}
