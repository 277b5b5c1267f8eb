package worker

import (
	"context"
	"log"
	"time"

	"storefront-service/internal/broker"
	"storefront-service/internal/models"
	"storefront-service/internal/service"
)

// SnapshotWorker keeps the catalog snapshot fresh. Change events refresh it
// promptly; a periodic tick bounds staleness when events are lost.
type SnapshotWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	catalog      *service.CatalogService
	interval     time.Duration
}

// NewSnapshotWorker creates a new snapshot worker
func NewSnapshotWorker(
	consumer *broker.Consumer,
	catalog *service.CatalogService,
	interval time.Duration,
) *SnapshotWorker {
	eventHandler := broker.NewEventHandler()

	eventHandler.OnOrderPlaced(func(ctx context.Context, event *models.OrderPlacedEvent) error {
		return catalog.Refresh(ctx, "order_placed")
	})
	eventHandler.OnProductChanged(func(ctx context.Context, event *models.ProductChangedEvent) error {
		return catalog.Refresh(ctx, "product_changed")
	})

	if interval <= 0 {
		interval = 30 * time.Second
	}

	return &SnapshotWorker{
		consumer:     consumer,
		eventHandler: eventHandler,
		catalog:      catalog,
		interval:     interval,
	}
}

// Start starts the worker: a consumer loop for change events and a ticker
// for the periodic refresh. It blocks until the context is cancelled.
func (w *SnapshotWorker) Start(ctx context.Context) error {
	log.Println("Starting snapshot worker...")

	go w.tick(ctx)

	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

func (w *SnapshotWorker) tick(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.catalog.Refresh(ctx, "tick"); err != nil {
				log.Printf("Periodic catalog refresh failed: %v", err)
			}
		}
	}
}

// Stop stops the worker
func (w *SnapshotWorker) Stop() error {
	log.Println("Stopping snapshot worker...")
	return w.consumer.Close()
}
