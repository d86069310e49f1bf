package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/careward/alert-relay/internal/audit"
	"github.com/careward/alert-relay/internal/delivery"
	"github.com/careward/alert-relay/internal/domain"
	"github.com/careward/alert-relay/internal/queue"
)

// Config holds the orchestrator's fixed timing policy.
type Config struct {
	// NormalTimeout bounds one delivery attempt for normal and important
	// items.
	NormalTimeout time.Duration
	// CriticalTimeout bounds one delivery attempt for critical items.
	CriticalTimeout time.Duration
	// CriticalBackoff is the fixed delay before a failed critical item is
	// requeued. Normal items requeue immediately and rely on FIFO order
	// within their tier for implicit spacing; these are two deliberately
	// distinct policies.
	CriticalBackoff time.Duration
}

// DefaultConfig returns the standard timing policy.
func DefaultConfig() Config {
	return Config{
		NormalTimeout:   10 * time.Second,
		CriticalTimeout: 30 * time.Second,
		CriticalBackoff: 5 * time.Second,
	}
}

// Hooks carries outcome callbacks injected by the host, typically for
// metrics. Using a struct keeps the constructor signature clean; nil
// functions are replaced with no-ops.
type Hooks struct {
	OnDelivered func(p domain.Priority, latency time.Duration)
	OnFailed    func(p domain.Priority)
	OnAbandoned func(p domain.Priority)
}

func (h *Hooks) fillDefaults() {
	if h.OnDelivered == nil {
		h.OnDelivered = func(domain.Priority, time.Duration) {}
	}
	if h.OnFailed == nil {
		h.OnFailed = func(domain.Priority) {}
	}
	if h.OnAbandoned == nil {
		h.OnAbandoned = func(domain.Priority) {}
	}
}

// Orchestrator is the single control loop that drains both lanes and
// guarantees at most one in-flight delivery attempt at any time. The
// delivery channel and the audit trail both require strict per-identifier
// ordering, and concurrent attempts would make retry bookkeeping race-prone,
// so processing is strictly sequential.
//
// The critical alert lane is always serviced before the normal queue, even
// if a normal item has been waiting longer. A normal item starving under
// sustained critical load is acceptable; critical alerts model
// patient-safety urgency.
type Orchestrator struct {
	normal   *queue.Lane
	critical *queue.Lane
	channel  delivery.Channel
	auditLog audit.Log
	limiter  *rate.Limiter // nil = no pacing
	cfg      Config
	logger   *zap.Logger
	hooks    Hooks

	// auditErrs surfaces failed audit writes to the host. The loop keeps
	// going after a failed write, but compliance requires the host to know
	// the trail has a gap.
	auditErrs chan error
}

func New(
	normal, critical *queue.Lane,
	channel delivery.Channel,
	auditLog audit.Log,
	limiter *rate.Limiter,
	cfg Config,
	logger *zap.Logger,
	hooks Hooks,
) *Orchestrator {
	hooks.fillDefaults()
	return &Orchestrator{
		normal:    normal,
		critical:  critical,
		channel:   channel,
		auditLog:  auditLog,
		limiter:   limiter,
		cfg:       cfg,
		logger:    logger,
		hooks:     hooks,
		auditErrs: make(chan error, 16),
	}
}

// AuditFailures returns the channel on which failed audit writes are
// surfaced, wrapped in domain.ErrAuditWrite. The host should drain it.
func (o *Orchestrator) AuditFailures() <-chan error { return o.auditErrs }

// Depths returns the current number of queued items per lane.
func (o *Orchestrator) Depths() (normal, critical int) {
	return o.normal.Size(), o.critical.Size()
}

// Run blocks until ctx is cancelled, processing one item per cycle.
func (o *Orchestrator) Run(ctx context.Context) {
	o.logger.Info("orchestrator started",
		zap.Duration("normal_timeout", o.cfg.NormalTimeout),
		zap.Duration("critical_timeout", o.cfg.CriticalTimeout),
		zap.Duration("critical_backoff", o.cfg.CriticalBackoff),
	)
	for {
		item, fromCritical, ok := o.next(ctx)
		if !ok {
			o.logger.Info("orchestrator stopping")
			return
		}
		o.process(ctx, item, fromCritical)
	}
}

// next returns the next item to service, blocking until one is available or
// ctx is cancelled. Each cycle checks the critical lane first, so a critical
// alert enqueued mid-stream jumps ahead of everything already waiting in the
// normal queue.
//
// The loop re-checks both lanes after every wakeup signal; a signal without
// a corresponding item (already consumed) simply loops again.
func (o *Orchestrator) next(ctx context.Context) (*domain.NotificationItem, bool, bool) {
	for {
		if item, ok := o.critical.DequeueHighest(); ok {
			return item, true, true
		}
		if item, ok := o.normal.DequeueHighest(); ok {
			return item, false, true
		}
		select {
		case <-ctx.Done():
			return nil, false, false
		case <-o.critical.Ready():
		case <-o.normal.Ready():
		}
	}
}

func (o *Orchestrator) process(ctx context.Context, item *domain.NotificationItem, fromCritical bool) {
	log := o.logger.With(
		zap.String("identifier", item.Identifier),
		zap.String("priority", string(item.Priority)),
		zap.Int("retry_count", item.RetryCount),
	)

	if o.limiter != nil {
		if err := o.limiter.Wait(ctx); err != nil {
			// ctx cancelled while waiting for a token: shutting down.
			return
		}
	}

	timeout := o.cfg.NormalTimeout
	if fromCritical {
		timeout = o.cfg.CriticalTimeout
	}

	// The attempt context is detached from the loop context: an in-flight
	// attempt always runs to completion or its deadline, and shutdown stops
	// the loop between items, not mid-attempt.
	start := time.Now()
	attemptCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	err := o.channel.Submit(attemptCtx, item)
	cancel()
	elapsed := time.Since(start)

	switch {
	case err == nil:
		o.record(ctx, item, domain.AttemptDelivery, true, "")
		o.hooks.OnDelivered(item.Priority, elapsed)
		log.Info("alert delivered", zap.Duration("latency", elapsed))

	case errors.Is(err, domain.ErrDeliveryRejected):
		// Non-retriable refusal: terminal, same as exhausted retries.
		o.record(ctx, item, domain.AttemptDelivery, false, err.Error())
		o.hooks.OnFailed(item.Priority)
		o.abandon(ctx, item, err.Error())
		log.Warn("alert rejected by delivery channel", zap.Error(err))

	default:
		detail := err.Error()
		if errors.Is(err, context.DeadlineExceeded) {
			detail = "delivery confirmation timed out"
		}
		o.record(ctx, item, domain.AttemptDelivery, false, detail)
		o.hooks.OnFailed(item.Priority)

		item.RetryCount++
		if item.RetryCount >= domain.MaxRetryAttempts {
			o.abandon(ctx, item, "retry attempts exhausted")
			log.Warn("alert abandoned: retries exhausted", zap.Error(err))
			return
		}
		log.Warn("alert delivery failed, requeueing", zap.Error(err))
		o.requeue(ctx, item, fromCritical)
	}
}

// requeue puts a failed item back on its originating lane with a fresh
// CreatedAt, so it joins the back of its priority tier. Critical items wait
// out the fixed backoff first; normal items go straight back.
func (o *Orchestrator) requeue(ctx context.Context, item *domain.NotificationItem, fromCritical bool) {
	item.CreatedAt = time.Now().UTC()

	if !fromCritical {
		if err := o.normal.Enqueue(item); err != nil {
			o.abandon(ctx, item, "requeue failed: "+err.Error())
		}
		return
	}

	time.AfterFunc(o.cfg.CriticalBackoff, func() {
		if ctx.Err() != nil {
			return
		}
		if err := o.critical.Enqueue(item); err != nil {
			o.abandon(ctx, item, "requeue failed: "+err.Error())
		}
	})
}

// abandon writes the terminal audit record. The item is never enqueued
// again after this.
func (o *Orchestrator) abandon(ctx context.Context, item *domain.NotificationItem, detail string) {
	o.record(ctx, item, domain.AttemptAbandoned, false, detail)
	o.hooks.OnAbandoned(item.Priority)
}

// Cancel removes a still-queued item by identifier and writes a cancelled
// audit record. Cancelling an identifier not present in either lane is an
// idempotent no-op: no error, no audit record. An in-flight attempt cannot
// be cancelled; it runs to completion or timeout.
func (o *Orchestrator) Cancel(ctx context.Context, identifier string) bool {
	item, ok := o.critical.Remove(identifier)
	if !ok {
		item, ok = o.normal.Remove(identifier)
	}
	if !ok {
		return false
	}
	// Success here means the cancellation itself was carried out.
	o.record(ctx, item, domain.AttemptCancelled, true, "")
	o.logger.Info("queued alert cancelled", zap.String("identifier", identifier))
	return true
}

// record writes one audit record and surfaces a failed write on the
// audit-failure channel. The loop proceeds either way: an unaudited attempt
// is escalated, never silently retried or swallowed.
func (o *Orchestrator) record(ctx context.Context, item *domain.NotificationItem, at domain.AttemptType, success bool, detail string) {
	rec := domain.AuditRecord{
		ID:          uuid.New().String(),
		Identifier:  item.Identifier,
		AttemptType: at,
		Success:     success,
		ErrorDetail: detail,
		Timestamp:   time.Now().UTC(),
	}
	// Detached from loop cancellation: the record for an attempt that
	// finished during shutdown must still reach the sink.
	if err := o.auditLog.Record(context.WithoutCancel(ctx), rec); err != nil {
		wrapped := fmt.Errorf("%w: %s for %s: %v", domain.ErrAuditWrite, at, item.Identifier, err)
		o.logger.Error("audit write failed",
			zap.String("identifier", item.Identifier),
			zap.String("attempt_type", string(at)),
			zap.Error(err),
		)
		select {
		case o.auditErrs <- wrapped:
		default:
			o.logger.Warn("audit failure channel full, dropping escalation",
				zap.String("identifier", item.Identifier))
		}
	}
}
