package audit

import (
	"context"

	"github.com/jhoicas/authlog-api/internal/domain/repository"
)

// TxRunner ejecuta fn dentro de una transacción, pasando repositorios atados a esa tx.
// Si fn devuelve error se hace Rollback; si no, Commit. Es el único componente autorizado
// a abrir una transacción que abarque usuarios, roles y bitácora.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos repository.TxRepositories) error) error
}
