package audit_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/authlog-api/internal/application/audit"
	"github.com/jhoicas/authlog-api/internal/domain"
	"github.com/jhoicas/authlog-api/internal/domain/entity"
	"github.com/jhoicas/authlog-api/internal/domain/repository"
	"github.com/jhoicas/authlog-api/internal/infrastructure/memory"
)

// ─── Dobles ───────────────────────────────────────────────────────────────────

type failingAuditLogs struct {
	repository.AuditLogRepository
	err error
}

func (f failingAuditLogs) Append(context.Context, *entity.AuditLog) error { return f.err }

// appendFailRunner reemplaza la bitácora de la tx por una que siempre falla.
type appendFailRunner struct {
	inner audit.TxRunner
	err   error
}

func (r appendFailRunner) Run(ctx context.Context, fn func(repos repository.TxRepositories) error) error {
	return r.inner.Run(ctx, func(repos repository.TxRepositories) error {
		repos.AuditLogs = failingAuditLogs{AuditLogRepository: repos.AuditLogs, err: r.err}
		return fn(repos)
	})
}

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.FixedZone("COT", -5*3600))

func createRole(name string) audit.Mutation[*entity.Role] {
	return audit.Mutation[*entity.Role]{
		Actor: audit.UserActor("admin-1"),
		Op: func(ctx context.Context, repos repository.TxRepositories) (*entity.Role, error) {
			r := &entity.Role{ID: "r-" + name}
			r.Rename(name)
			return r, repos.Roles.Create(ctx, r)
		},
		Describe: func(r *entity.Role) string { return "rol '" + r.Name + "' creado" },
	}
}

// ─── Casos ────────────────────────────────────────────────────────────────────

func TestPerformAudited_ConfirmaMutacionYAuditoria(t *testing.T) {
	store := memory.NewStore()
	reg := prometheus.NewRegistry()
	c := audit.NewCoordinator(store, audit.WithClock(func() time.Time { return fixedNow }), audit.WithRegisterer(reg))
	ctx := context.Background()

	role, err := audit.PerformAudited(ctx, c, createRole("Editors"))
	require.NoError(t, err)
	assert.Equal(t, "Editors", role.Name)

	logs, err := store.AuditLogs().ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	require.NotNil(t, logs[0].UserID)
	assert.Equal(t, "admin-1", *logs[0].UserID)
	assert.Equal(t, "rol 'Editors' creado", logs[0].Action)
	assert.Equal(t, time.UTC, logs[0].Timestamp.Location())
	assert.True(t, fixedNow.Equal(logs[0].Timestamp))

	assert.Equal(t, 1.0, testutil.ToFloat64(c.Outcomes().WithLabelValues(audit.OutcomeCommitted)))
}

func TestPerformAudited_FalloDeAuditoriaRevierteMutacion(t *testing.T) {
	store := memory.NewStore()
	c := audit.NewCoordinator(appendFailRunner{inner: store, err: errors.New("disco lleno")})
	ctx := context.Background()

	_, err := audit.PerformAudited(ctx, c, createRole("Editors"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrPersistence)
	var perr *domain.PersistenceError
	assert.ErrorAs(t, err, &perr)

	role, err := store.Roles().GetByName(ctx, "Editors")
	require.NoError(t, err)
	assert.Nil(t, role, "la mutación no debe quedar sin su auditoría")
	n, _ := store.AuditLogs().Count(ctx)
	assert.Zero(t, n)
}

func TestPerformAudited_ValidacionNoAudita(t *testing.T) {
	store := memory.NewStore()
	c := audit.NewCoordinator(store)
	ctx := context.Background()

	_, err := audit.PerformAudited(ctx, c, audit.Mutation[*entity.Role]{
		Actor: audit.UserActor("admin-1"),
		Op: func(context.Context, repository.TxRepositories) (*entity.Role, error) {
			return nil, domain.NewValidationError("el nombre del rol es obligatorio")
		},
		Describe: func(*entity.Role) string { return "no debería auditarse" },
	})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"el nombre del rol es obligatorio"}, verr.Messages)

	n, _ := store.AuditLogs().Count(ctx)
	assert.Zero(t, n)
}

func TestPerformAudited_ConflictoDeNombreEsRechazo(t *testing.T) {
	store := memory.NewStore()
	c := audit.NewCoordinator(store)
	ctx := context.Background()

	_, err := audit.PerformAudited(ctx, c, createRole("Editors"))
	require.NoError(t, err)
	m := createRole("EDITORS")
	m.Op = func(ctx context.Context, repos repository.TxRepositories) (*entity.Role, error) {
		r := &entity.Role{ID: "otro"}
		r.Rename("EDITORS")
		return r, repos.Roles.Create(ctx, r)
	}
	_, err = audit.PerformAudited(ctx, c, m)
	assert.ErrorIs(t, err, domain.ErrConflict)

	n, _ := store.AuditLogs().Count(ctx)
	assert.Equal(t, 1, n)
}

func TestPerformAudited_ConcurrenciaConRecheckDevuelveNotFound(t *testing.T) {
	store := memory.NewStore()
	c := audit.NewCoordinator(store)
	ctx := context.Background()

	_, err := audit.PerformAudited(ctx, c, audit.Mutation[struct{}]{
		Actor: audit.UserActor("admin-1"),
		Op: func(ctx context.Context, repos repository.TxRepositories) (struct{}, error) {
			return struct{}{}, repos.Roles.Delete(ctx, "desaparecido")
		},
		Describe: func(struct{}) string { return "rol eliminado" },
		Recheck: func(ctx context.Context) error {
			return domain.NewNotFoundError("rol", "desaparecido")
		},
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPerformAudited_ConcurrenciaSinRecheckEsPersistencia(t *testing.T) {
	store := memory.NewStore()
	c := audit.NewCoordinator(store)

	_, err := audit.PerformAudited(context.Background(), c, audit.Mutation[struct{}]{
		Actor: audit.SystemActor(),
		Op: func(ctx context.Context, repos repository.TxRepositories) (struct{}, error) {
			return struct{}{}, repos.Users.Delete(ctx, "x")
		},
		Describe: func(struct{}) string { return "usuario eliminado" },
	})
	assert.ErrorIs(t, err, domain.ErrPersistence)
	assert.ErrorIs(t, err, domain.ErrConcurrencyConflict)
}

func TestPerformAudited_ActorSistemaYSujeto(t *testing.T) {
	store := memory.NewStore()
	c := audit.NewCoordinator(store)
	ctx := context.Background()

	m := createRole("Admin")
	m.Actor = audit.SystemActor()
	_, err := audit.PerformAudited(ctx, c, m)
	require.NoError(t, err)

	_, err = audit.PerformAudited(ctx, c, audit.Mutation[*entity.User]{
		Actor: audit.SubjectActor(),
		Op: func(ctx context.Context, repos repository.TxRepositories) (*entity.User, error) {
			u := &entity.User{ID: "u-nuevo", PasswordHash: "h"}
			u.Rename("nuevo")
			return u, repos.Users.Create(ctx, u)
		},
		Describe: func(u *entity.User) string { return "usuario '" + u.UserName + "' registrado" },
		Subject:  func(u *entity.User) string { return u.ID },
	})
	require.NoError(t, err)

	logs, err := store.AuditLogs().ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	byAction := map[string]*entity.AuditLog{}
	for _, l := range logs {
		byAction[l.Action] = l
	}
	assert.True(t, byAction["rol 'Admin' creado"].IsSystem())
	require.NotNil(t, byAction["usuario 'nuevo' registrado"].UserID)
	assert.Equal(t, "u-nuevo", *byAction["usuario 'nuevo' registrado"].UserID)
}

func TestPerformAudited_SujetoSinSubjectEsError(t *testing.T) {
	c := audit.NewCoordinator(memory.NewStore())
	m := createRole("X")
	m.Actor = audit.SubjectActor()

	_, err := audit.PerformAudited(context.Background(), c, m)
	assert.ErrorIs(t, err, domain.ErrPersistence)
}

func TestUserActor_VacioEsSistema(t *testing.T) {
	assert.True(t, audit.UserActor("").IsSystem())
	assert.Equal(t, "user:abc", audit.UserActor("abc").String())
}

func TestClassify(t *testing.T) {
	assert.Equal(t, audit.KindNone, audit.Classify(nil))
	assert.Equal(t, audit.KindValidation, audit.Classify(domain.NewValidationError("x")))
	assert.Equal(t, audit.KindValidation, audit.Classify(domain.ErrConflict))
	assert.Equal(t, audit.KindNotFound, audit.Classify(domain.NewNotFoundError("rol", "1")))
	assert.Equal(t, audit.KindPersistence, audit.Classify(domain.Persistence("op", errors.New("x"))))
	assert.Equal(t, audit.KindPersistence, audit.Classify(errors.New("desconocido")))
}
