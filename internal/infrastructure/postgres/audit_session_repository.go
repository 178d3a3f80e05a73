package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/tu-usuario/kardex-core/internal/domain"
	"github.com/tu-usuario/kardex-core/internal/domain/entity"
	"github.com/tu-usuario/kardex-core/internal/domain/repository"
)

var _ repository.AuditSessionRepository = (*AuditSessionRepo)(nil)

// AuditSessionRepo implementación sobre PostgreSQL (usable con pool o tx).
// El índice único parcial sobre status = 'OPEN' respalda la regla de una sola
// sesión abierta ante aperturas concurrentes.
type AuditSessionRepo struct {
	q Querier
}

// NewAuditSessionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAuditSessionRepository(q Querier) *AuditSessionRepo {
	return &AuditSessionRepo{q: q}
}

const sessionColumns = "id, type, status, start_date, end_date, net_variance, created_by"

func scanSession(row pgx.Row) (*entity.AuditSession, error) {
	var s entity.AuditSession
	var createdBy *string
	err := row.Scan(&s.ID, &s.Type, &s.Status, &s.StartDate, &s.EndDate, &s.NetVariance, &createdBy)
	if err != nil {
		return nil, err
	}
	if createdBy != nil {
		s.CreatedBy = *createdBy
	}
	return &s, nil
}

// Create persiste una sesión nueva. Devuelve ErrDuplicate si ya hay una OPEN
// (índice único parcial).
func (r *AuditSessionRepo) Create(session *entity.AuditSession) error {
	if session.ID == "" {
		session.ID = uuid.New().String()
	}
	query := `
		INSERT INTO audit_sessions (id, type, status, start_date, end_date, net_variance, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	createdBy := (*string)(nil)
	if session.CreatedBy != "" {
		createdBy = &session.CreatedBy
	}
	_, err := r.q.Exec(context.Background(), query,
		session.ID, session.Type, session.Status, session.StartDate,
		session.EndDate, session.NetVariance, createdBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create audit session: %w", err)
	}
	return nil
}

// GetByID obtiene una sesión por ID.
func (r *AuditSessionRepo) GetByID(id string) (*entity.AuditSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM audit_sessions WHERE id = $1`
	s, err := scanSession(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get audit session: %w", err)
	}
	return s, nil
}

// GetOpen devuelve la sesión OPEN actual, o nil si no existe.
func (r *AuditSessionRepo) GetOpen() (*entity.AuditSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM audit_sessions WHERE status = $1`
	s, err := scanSession(r.q.QueryRow(context.Background(), query, entity.AuditStatusOpen))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get open audit session: %w", err)
	}
	return s, nil
}

// Update actualiza estado, fecha de cierre y varianza neta.
func (r *AuditSessionRepo) Update(session *entity.AuditSession) error {
	query := `
		UPDATE audit_sessions SET status = $2, end_date = $3, net_variance = $4
		WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query,
		session.ID, session.Status, session.EndDate, session.NetVariance,
	)
	if err != nil {
		return fmt.Errorf("update audit session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
