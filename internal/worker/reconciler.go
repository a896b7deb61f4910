package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/chanikul/edenclinic/internal/domain/model"
)

// Settler applies payment settlement to one stale order.
type Settler interface {
	ReconcilePending(ctx context.Context, order model.Order) error
}

// StaleOrderSource yields PENDING orders that have outlived the webhook
// delivery window.
type StaleOrderSource interface {
	SelectStalePending(ctx context.Context, age time.Duration, limit int) ([]model.Order, error)
}

// PaymentReconciler polls for stale PENDING orders and settles them
// concurrently against the payment provider, recovering orders whose
// webhook delivery was missed.
type PaymentReconciler struct {
	orders       StaleOrderSource
	settler      Settler
	pollInterval time.Duration
	minAge       time.Duration
	batchSize    int
	workers      int
	logger       *slog.Logger

	jobs   chan model.Order
	wg     sync.WaitGroup
	cancel context.CancelFunc
	mu     sync.Mutex
}

// NewPaymentReconciler constructs the reconciliation worker pool.
func NewPaymentReconciler(orders StaleOrderSource, settler Settler, pollInterval, minAge time.Duration, batchSize, workers int, logger *slog.Logger) *PaymentReconciler {
	if workers <= 0 {
		workers = 1
	}
	if batchSize <= 0 {
		batchSize = 1
	}
	return &PaymentReconciler{
		orders:       orders,
		settler:      settler,
		pollInterval: pollInterval,
		minAge:       minAge,
		batchSize:    batchSize,
		workers:      workers,
		logger:       logger,
		jobs:         make(chan model.Order, batchSize*workers),
	}
}

// Start launches background reconciliation.
func (p *PaymentReconciler) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(runCtx)
	}

	p.wg.Add(1)
	go p.dispatch(runCtx)
}

// Stop waits for all workers to finish.
func (p *PaymentReconciler) Stop() {
	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.mu.Unlock()

	p.wg.Wait()
}

func (p *PaymentReconciler) dispatch(ctx context.Context) {
	defer p.wg.Done()
	defer close(p.jobs)
	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.fetchAndDispatch(ctx)
		}
	}
}

func (p *PaymentReconciler) fetchAndDispatch(ctx context.Context) {
	orders, err := p.orders.SelectStalePending(ctx, p.minAge, p.batchSize)
	if err != nil {
		p.logger.Error("fetch stale pending orders failed", slog.String("error", err.Error()))
		return
	}
	for _, order := range orders {
		select {
		case <-ctx.Done():
			return
		case p.jobs <- order:
		}
	}
}

func (p *PaymentReconciler) worker(ctx context.Context) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case order, ok := <-p.jobs:
			if !ok {
				return
			}
			if err := p.settler.ReconcilePending(ctx, order); err != nil {
				p.logger.Error("reconcile pending order failed",
					slog.Int64("order_id", order.ID),
					slog.String("error", err.Error()))
			}
		}
	}
}
