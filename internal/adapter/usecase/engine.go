package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"mesa-vesting/internal/core/domain"
	"mesa-vesting/internal/core/port"
)

const (
	tracerName = "mesa-vesting/usecase"
	timeLayout = time.RFC3339
)

// Engine provides the campaign lifecycle, allocation registry and claim
// settlement logic. It implements port.Engine on top of a Store, an asset
// ledger and an optional allow-list oracle.
type Engine struct {
	store     port.Store
	ledger    port.AssetLedger
	allowList port.AllowList
	clock     port.Clock
	logger    *slog.Logger
	tracer    trace.Tracer

	// holder is the engine's own account on the asset ledger.
	holder common.Address
	guard  guard
}

var _ port.Engine = (*Engine)(nil)

// Option customises an Engine.
type Option func(*Engine)

// WithClock overrides the wall clock.
func WithClock(c port.Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithAllowList sets the oracle consulted for campaigns that name an
// allow-list.
func WithAllowList(a port.AllowList) Option {
	return func(e *Engine) { e.allowList = a }
}

// NewEngine creates an engine settling from holder's balance on ledger.
func NewEngine(store port.Store, ledger port.AssetLedger, holder common.Address, opts ...Option) *Engine {
	e := &Engine{
		store:  store,
		ledger: ledger,
		holder: holder,
		clock:  port.SystemClock{},
		logger: slog.Default(),
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Bootstrap records owner as the engine owner when none is persisted yet.
// An already persisted owner wins, since ownership may have been handed over.
func (e *Engine) Bootstrap(ctx context.Context, owner common.Address) error {
	if owner == (common.Address{}) {
		return domain.WithMetadata(domain.CodeZeroAddress, "owner is zero", map[string]string{"field": "owner"})
	}
	return e.store.Atomic(ctx, func(ctx context.Context, tx port.Tx) error {
		settings, err := tx.Settings(ctx)
		if err != nil {
			return err
		}
		if settings.Owner != (common.Address{}) {
			if settings.Owner != owner {
				e.logger.Warn("configured owner differs from persisted owner",
					"module", "usecase",
					"persisted", settings.Owner.Hex(),
					"configured", owner.Hex(),
				)
			}
			return nil
		}
		settings.Owner = owner
		return tx.SaveSettings(ctx, settings)
	})
}

// unit is one operation's view of the store: the transaction, the time the
// operation observed, and the events it produced.
type unit struct {
	port.Tx
	now    time.Time
	events []domain.Event
}

func (u *unit) emit(ctx context.Context, kind domain.EventKind, initiator common.Address, attrs map[string]string) error {
	ev := domain.NewEvent(kind, initiator, u.now, attrs)
	if err := u.AppendEvent(ctx, ev); err != nil {
		return err
	}
	u.events = append(u.events, ev)
	return nil
}

// mutate runs fn as a guarded, traced, atomic operation and logs the events
// it committed.
func (e *Engine) mutate(ctx context.Context, name string, fn func(ctx context.Context, u *unit) error) error {
	ctx, span := e.tracer.Start(ctx, "Engine."+name, trace.WithAttributes(attribute.String("operation", name)))
	defer span.End()

	ctx, release, err := e.guard.enter(ctx)
	if err != nil {
		e.fail(span, name, err)
		return err
	}
	defer release()

	var committed []domain.Event
	err = e.store.Atomic(ctx, func(ctx context.Context, tx port.Tx) error {
		u := &unit{Tx: tx, now: e.clock.Now()}
		if err := fn(ctx, u); err != nil {
			return err
		}
		committed = u.events
		return nil
	})
	if err != nil {
		e.fail(span, name, err)
		return err
	}
	for _, ev := range committed {
		e.logEvent(ev)
	}
	return nil
}

// view runs a read-only fn. Views may not be entered from inside an
// external call either.
func (e *Engine) view(ctx context.Context, name string, fn func(ctx context.Context, u *unit) error) error {
	ctx, span := e.tracer.Start(ctx, "Engine."+name, trace.WithAttributes(attribute.String("operation", name)))
	defer span.End()

	if held(ctx) {
		e.fail(span, name, domain.ErrReentrantCall)
		return domain.ErrReentrantCall
	}
	err := e.store.Atomic(ctx, func(ctx context.Context, tx port.Tx) error {
		return fn(ctx, &unit{Tx: tx, now: e.clock.Now()})
	})
	if err != nil {
		e.fail(span, name, err)
	}
	return err
}

func (e *Engine) fail(span trace.Span, name string, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	var de *domain.Error
	if errors.As(err, &de) && de.Code.Class() != domain.ClassInternal {
		attrs := []any{
			"module", "usecase",
			"layer", "application",
			"operation", name,
			"code", string(de.Code),
			"error", err.Error(),
		}
		for k, v := range de.Metadata {
			attrs = append(attrs, k, v)
		}
		e.logger.Warn("operation rejected", attrs...)
		return
	}
	e.logger.Error("operation failed",
		"module", "usecase",
		"layer", "application",
		"operation", name,
		"error", err.Error(),
	)
}

func (e *Engine) logEvent(ev domain.Event) {
	attrs := make([]any, 0, len(ev.Attributes))
	for k, v := range ev.Attributes {
		attrs = append(attrs, slog.String(k, v))
	}
	e.logger.Info(string(ev.Kind),
		"event", string(ev.Kind),
		"module", "usecase",
		"layer", "application",
		"event_id", ev.ID.String(),
		"initiator", ev.Initiator.Hex(),
		slog.Group("attributes", attrs...),
	)
}

// authorize resolves caller against the persisted access state and applies
// the capability check for op.
func (e *Engine) authorize(ctx context.Context, u *unit, op domain.Operation, caller, subject common.Address) (domain.Settings, error) {
	settings, err := u.Settings(ctx)
	if err != nil {
		return domain.Settings{}, err
	}
	authorized, err := u.IsAuthorized(ctx, caller)
	if err != nil {
		return domain.Settings{}, err
	}
	if !domain.Permits(op, domain.Principal{Address: caller, Authorized: authorized}, settings, subject) {
		return domain.Settings{}, domain.WithMetadata(domain.CodeUnauthorized, "caller is not authorized", map[string]string{
			"operation": string(op),
			"caller":    caller.Hex(),
		})
	}
	return settings, nil
}

// campaign loads the campaign, failing when it does not exist.
func campaign(ctx context.Context, u *unit) (domain.Campaign, error) {
	c, err := u.Campaign(ctx)
	if err != nil {
		return domain.Campaign{}, err
	}
	if !c.Exists {
		return domain.Campaign{}, domain.ErrCampaignNotFound
	}
	return c, nil
}

func requireNotPaused(s domain.Settings) error {
	if s.Paused {
		return domain.ErrPaused
	}
	return nil
}

func requireAddress(field string, addr common.Address) error {
	if addr == (common.Address{}) {
		return domain.WithMetadata(domain.CodeZeroAddress, field+" is the zero address", map[string]string{"field": field})
	}
	return nil
}

func ledgerFailure(op string, err error) error {
	var de *domain.Error
	if errors.As(err, &de) {
		return err
	}
	return domain.Wrap(domain.CodeLedgerFailure, "asset ledger "+op+" failed", err)
}
