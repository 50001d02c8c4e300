package audit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/jhoicas/authlog-api/internal/domain"
	"github.com/jhoicas/authlog-api/internal/domain/entity"
	"github.com/jhoicas/authlog-api/internal/domain/repository"
	"github.com/jhoicas/authlog-api/pkg/logger"
)

// Resultados posibles de una mutación auditada (etiqueta outcome de la métrica).
const (
	OutcomeCommitted = "committed"
	OutcomeRejected  = "rejected"
	OutcomeFailed    = "failed"
)

// Mutation unidad de trabajo auditada: exactamente una mutación de dominio.
type Mutation[T any] struct {
	Actor Actor
	// Op realiza la mutación con los repos de la tx. Errores de validación
	// (domain.IsValidationClass) se devuelven tal cual y no generan auditoría.
	Op func(ctx context.Context, repos repository.TxRepositories) (T, error)
	// Describe arma el texto de auditoría a partir del resultado (estado posterior);
	// el estado previo lo captura quien construye la mutación.
	Describe func(result T) string
	// Subject devuelve el id del actor cuando Actor es SubjectActor.
	Subject func(result T) string
	// Recheck se invoca ante domain.ErrConcurrencyConflict: si devuelve error (NotFound)
	// ese es el resultado; si devuelve nil el conflicto se propaga como fallo de persistencia.
	Recheck func(ctx context.Context) error
}

// Coordinator garantiza que la mutación y su entrada de auditoría se confirman juntas o ninguna.
type Coordinator struct {
	tx       TxRunner
	log      *logger.Logger
	now      func() time.Time
	outcomes *prometheus.CounterVec
}

// Option configura el Coordinator.
type Option func(*Coordinator)

// WithClock reemplaza el reloj (tests).
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) {
		if now != nil {
			c.now = now
		}
	}
}

// WithLogger asigna el logger estructurado.
func WithLogger(l *logger.Logger) Option {
	return func(c *Coordinator) {
		if l != nil {
			c.log = l
		}
	}
}

// WithRegisterer registra el contador audited_mutations_total{outcome}.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(c *Coordinator) {
		if reg == nil {
			return
		}
		counter := prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "audited_mutations_total",
			Help: "Mutaciones administrativas auditadas por resultado.",
		}, []string{"outcome"})
		if err := reg.Register(counter); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				counter = are.ExistingCollector.(*prometheus.CounterVec)
			} else {
				return
			}
		}
		c.outcomes = counter
	}
}

// NewCoordinator construye el coordinador sobre el runner de transacciones.
func NewCoordinator(tx TxRunner, opts ...Option) *Coordinator {
	c := &Coordinator{
		tx:  tx,
		log: logger.Nop(),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// operationError marca un fallo reportado por Op (distinto de append/commit).
type operationError struct {
	err error
}

func (e *operationError) Error() string { return e.err.Error() }
func (e *operationError) Unwrap() error { return e.err }

// PerformAudited ejecuta m dentro de una transacción y agrega una única entrada de auditoría.
//
//  1. Abre la transacción.
//  2. Ejecuta Op; si falla hace Rollback y devuelve el error sin auditar.
//  3. Inserta AuditLog{actor, Describe(resultado), ahora UTC}.
//  4. Commit. Cualquier error en 3 o 4 hace Rollback y se devuelve como *domain.PersistenceError.
func PerformAudited[T any](ctx context.Context, c *Coordinator, m Mutation[T]) (T, error) {
	var zero, result T
	if m.Op == nil || m.Describe == nil {
		return zero, domain.Persistence("mutación auditada", errors.New("Op y Describe son requeridos"))
	}
	if m.Actor.IsSubject() && m.Subject == nil {
		return zero, domain.Persistence("mutación auditada", errors.New("SubjectActor requiere Subject"))
	}

	var action string
	err := c.tx.Run(ctx, func(repos repository.TxRepositories) error {
		out, err := m.Op(ctx, repos)
		if err != nil {
			return &operationError{err: err}
		}
		result = out
		action = m.Describe(out)
		entry := &entity.AuditLog{
			ID:        uuid.NewString(),
			UserID:    actorID(m, out),
			Action:    action,
			Timestamp: c.now().UTC(),
		}
		if err := repos.AuditLogs.Append(ctx, entry); err != nil {
			return fmt.Errorf("registrar auditoría: %w", err)
		}
		return nil
	})
	if err == nil {
		c.observe(OutcomeCommitted)
		c.log.Debug().Str("actor", m.Actor.String()).Str("action", action).Msg("mutación auditada confirmada")
		return result, nil
	}

	var opErr *operationError
	if errors.As(err, &opErr) {
		return zero, c.operationFailure(ctx, m.Recheck, opErr.err)
	}

	c.observe(OutcomeFailed)
	c.log.Error().Err(err).Str("actor", m.Actor.String()).Msg("rollback de mutación auditada")
	return zero, domain.Persistence("mutación auditada", err)
}

func (c *Coordinator) operationFailure(ctx context.Context, recheck func(context.Context) error, err error) error {
	switch {
	case errors.Is(err, domain.ErrConcurrencyConflict):
		if recheck != nil {
			if rerr := recheck(ctx); rerr != nil {
				c.observe(OutcomeRejected)
				return rerr
			}
		}
		c.observe(OutcomeFailed)
		c.log.Warn().Err(err).Msg("conflicto de concurrencia en mutación auditada")
		return domain.Persistence("mutación auditada", err)
	case domain.IsValidationClass(err):
		c.observe(OutcomeRejected)
		return err
	default:
		c.observe(OutcomeFailed)
		c.log.Error().Err(err).Msg("fallo de la operación auditada")
		return domain.Persistence("mutación auditada", err)
	}
}

func actorID[T any](m Mutation[T], result T) *string {
	var id string
	switch {
	case m.Actor.IsSubject():
		id = m.Subject(result)
	case !m.Actor.IsSystem():
		id = m.Actor.ID()
	}
	if id == "" {
		return nil
	}
	return &id
}

// Outcomes contador por resultado; nil si no se configuró WithRegisterer.
func (c *Coordinator) Outcomes() *prometheus.CounterVec { return c.outcomes }

// Kind clasificación de un error devuelto por PerformAudited.
type Kind int

const (
	KindNone Kind = iota
	KindValidation
	KindNotFound
	KindPersistence
)

// Classify ubica err en una de las tres clases de fallo.
func Classify(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, domain.ErrPersistence):
		return KindPersistence
	case errors.Is(err, domain.ErrNotFound):
		return KindNotFound
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrConflict):
		return KindValidation
	default:
		return KindPersistence
	}
}

func (c *Coordinator) observe(outcome string) {
	if c.outcomes != nil {
		c.outcomes.WithLabelValues(outcome).Inc()
	}
}
