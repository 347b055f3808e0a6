// Package resolver implements the resolution engine: batching, per-input
// concurrency, per-service retry/backoff, and quorum short-circuit. It is
// the orchestrator the rest of this module exists to support - package
// compound supplies its value types, package services its collaborators,
// and package agree its pure reconciliation step.
package resolver

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/wardle/pura-go/agree"
	"github.com/wardle/pura-go/compound"
	"github.com/wardle/pura-go/services"
)

// defaultMaxBatchSize mirrors original_source/pura/resolvers.py's "100 or
// len(input_identifiers), whichever is smaller" default.
const defaultMaxBatchSize = 100

// defaultMaxRetries matches the error-handling table's default of 7 attempts
// per service.
const defaultMaxRetries = 7

// defaultTimeout bounds a single outbound HTTP round-trip; it does not bound
// retries, which are governed separately by MaxRetries and backoff.
const defaultTimeout = 30 * time.Second

// Config configures a Resolver.
type Config struct {
	// Services are consulted in this declaration order for every input.
	Services []services.Service
	// Quorum is the number of services whose answers must intersect before
	// a result is accepted. Must be >= 1.
	Quorum int
	// MaxRetries is the retry budget per service, per input.
	// Zero selects defaultMaxRetries.
	MaxRetries int
	// BatchSize is the number of inputs resolved concurrently per batch.
	// Zero selects min(defaultMaxBatchSize, len(inputs)).
	BatchSize int
	// Silent, when true, downgrades client/config and quorum-not-reached
	// failures to a logged, empty per-input result instead of aborting the
	// call.
	Silent bool
	// RequestTimeout bounds a single outbound HTTP call. Zero selects
	// defaultTimeout.
	RequestTimeout time.Duration
	// Standardize normalizes every identifier a service returns before it
	// reaches the agreement algorithm. Nil selects IdentityStandardizer.
	Standardize Standardizer
	// StrictAgreementCounting changes the agreement counter's increment
	// rule from "once per responding service, including services that
	// returned nothing, once any service has ever returned something" (the
	// original behaviour - see DESIGN.md) to "only when this service's own
	// response was non-empty". Default false preserves the original
	// behaviour.
	StrictAgreementCounting bool
	// Logger receives DEBUG records for every request and ERROR records for
	// every swallowed failure in silent mode. Nil selects a no-op
	// logger.
	Logger *zap.Logger
}

// Resolver is the concurrent, batched, retrying, multi-source resolution
// engine. Safe for concurrent use; holds no process-wide mutable state
// beyond its configuration, which is fixed at construction.
type Resolver struct {
	cfg Config
}

// New constructs a Resolver, filling in defaults for zero-valued fields.
func New(cfg Config) *Resolver {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaultTimeout
	}
	if cfg.Quorum < 1 {
		cfg.Quorum = 1
	}
	if cfg.Standardize == nil {
		cfg.Standardize = IdentityStandardizer
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Resolver{cfg: cfg}
}

// Resolve is the programmatic entry point: resolve inputs to
// identifiers of the kinds in desiredOutputs under this Resolver's
// configured quorum, returning one result list per input, in input order.
//
// desiredOutputs should generally name a single identifier kind: agreement
// is computed over the raw Value strings a service returns, not per-kind,
// so requesting multiple kinds at once only reaches quorum-correct results
// when every consulted service happens to answer with exactly one of those
// kinds for a given input.
func (r *Resolver) Resolve(ctx context.Context, inputs []compound.Identifier, desiredOutputs compound.KindSet) ([][]compound.Identifier, error) {
	n := len(inputs)
	if n == 0 {
		return nil, nil
	}
	batchSize := r.cfg.BatchSize
	if batchSize <= 0 {
		batchSize = defaultMaxBatchSize
		if n < batchSize {
			batchSize = n
		}
	}

	results := make([][]compound.Identifier, n)
	for start := 0; start < n; start += batchSize {
		end := start + batchSize
		if end > n {
			end = n
		}
		batchID := uuid.New().String()
		log := r.cfg.Logger.With(zap.String("batch", batchID), zap.Int("batch_start", start), zap.Int("batch_size", end-start))
		session := services.NewSession(r.cfg.RequestTimeout, log)

		// Batches are processed strictly sequentially; within a
		// batch all per-input tasks run concurrently sharing one session.
		g, gctx := errgroup.WithContext(ctx)
		for i := start; i < end; i++ {
			i := i
			g.Go(func() error {
				out, err := r.resolveOne(gctx, session, inputs[i], desiredOutputs)
				if err != nil {
					return err
				}
				results[i] = out
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}
	return results, nil
}

// ResolveNames is the resolve_names programmatic entry point: resolve a
// list of compound names directly to identifiers of outputKind, building a
// one-off Resolver from svcs and the given quorum/batchSize/silent
// settings. It is a convenience wrapper around New and Resolve for callers
// who want the library's second entry point without constructing a
// Resolver (and its other, less commonly tuned settings) themselves.
func ResolveNames(ctx context.Context, names []string, outputKind compound.IdentifierType, quorum int, batchSize int, svcs []services.Service, silent bool) ([][]compound.Identifier, error) {
	r := New(Config{
		Services:  svcs,
		Quorum:    quorum,
		BatchSize: batchSize,
		Silent:    silent,
	})
	inputs := make([]compound.Identifier, len(names))
	for i, name := range names {
		inputs[i] = compound.New(compound.Name, name)
	}
	return r.Resolve(ctx, inputs, compound.NewKindSet(outputKind))
}

// resolveOne resolves a single input: it consults services in declaration
// order, folding each new response into the running agreement via package
// agree, and returns as soon as quorum is reached.
func (r *Resolver) resolveOne(ctx context.Context, session *services.Session, input compound.Identifier, desiredOutputs compound.KindSet) ([]compound.Identifier, error) {
	agreementCount := 0
	var collected [][]compound.Identifier
	var latestReduced []compound.Identifier

	for _, svc := range r.cfg.Services {
		answers, err := r.callWithRetry(ctx, session, svc, input, desiredOutputs)
		if err != nil {
			if ctx.Err() != nil {
				// Cancelled or deadline-exceeded: surface it directly rather
				// than continuing the service loop or reporting a fabricated
				// quorum failure (even in silent mode).
				return nil, ctx.Err()
			}
			if services.IsClientError(err) {
				if r.cfg.Silent {
					session.Log.Error("swallowing client/config error in silent mode",
						zap.String("service", svc.Name()), zap.Error(err))
					return nil, nil
				}
				return nil, err
			}
			// Retries exhausted on a transient error: treated as having
			// returned empty for agreement purposes.
			answers = nil
		}

		for i, id := range answers {
			answers[i] = r.cfg.Standardize(id)
		}
		collected = append(collected, answers)

		gotNonEmpty := len(answers) > 0
		anyNonEmptySoFar := gotNonEmpty
		if !r.cfg.StrictAgreementCounting {
			anyNonEmptySoFar = anyNonEmpty(collected)
		}
		if anyNonEmptySoFar {
			if len(collected) >= 2 {
				latestReduced = agree.Agree(collected, r.cfg.Quorum)
			} else {
				latestReduced = collected[0]
			}
			agreementCount++
		}

		if agreementCount >= r.cfg.Quorum && len(latestReduced) > 0 {
			return latestReduced, nil
		}
	}

	if len(latestReduced) == 0 || agreementCount < r.cfg.Quorum {
		if r.cfg.Silent {
			session.Log.Error("quorum not reached", zap.String("input", input.String()), zap.Int("quorum", r.cfg.Quorum))
			return nil, nil
		}
		return nil, &QuorumError{Input: input, Quorum: r.cfg.Quorum, Collected: collected}
	}
	return latestReduced, nil
}

// anyNonEmpty reports whether any per-service list in collected is
// non-empty. Used, by default (non-strict configuration), to reproduce the
// original agreement-counting behaviour: once evaluated true it stays true
// for the remainder of the loop, since collected only grows. See DESIGN.md.
func anyNonEmpty(collected [][]compound.Identifier) bool {
	for _, l := range collected {
		if len(l) > 0 {
			return true
		}
	}
	return false
}

// callWithRetry invokes svc.ResolveCompound, retrying transient failures
// with exponential backoff: sleep(2^attempt) seconds, up to
// MaxRetries attempts. A client/config error propagates immediately
// (non-retriable); a transient error exhausting all retries also
// propagates, and is treated by the caller as an empty response.
func (r *Resolver) callWithRetry(ctx context.Context, session *services.Session, svc services.Service, input compound.Identifier, desiredOutputs compound.KindSet) ([]compound.Identifier, error) {
	var lastErr error
	for attempt := 0; attempt < r.cfg.MaxRetries; attempt++ {
		answers, err := svc.ResolveCompound(ctx, session, input, desiredOutputs)
		if err == nil {
			return answers, nil
		}
		if services.IsClientError(err) {
			return nil, err
		}
		if !services.IsTransient(err) {
			// Unclassified error from a misbehaving adapter: wrap as
			// client/config so IsClientError recognizes it and the caller
			// propagates it rather than silently retrying forever.
			return nil, services.NewUnclassifiedError(svc.Name(), err)
		}
		lastErr = err
		session.Log.Debug("transient failure, backing off",
			zap.String("service", svc.Name()), zap.Int("attempt", attempt), zap.Error(err))
		if waitErr := sleepBackoff(ctx, attempt); waitErr != nil {
			return nil, waitErr
		}
	}
	return nil, fmt.Errorf("resolver: %s exhausted %d attempts: %w", svc.Name(), r.cfg.MaxRetries, lastErr)
}

// sleepBackoff sleeps for 2^attempt seconds, base 2, no jitter,
// waking immediately and returning ctx.Err() if ctx is cancelled.
func sleepBackoff(ctx context.Context, attempt int) error {
	d := time.Duration(1<<uint(attempt)) * time.Second
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
