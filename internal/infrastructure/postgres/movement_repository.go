package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/tu-usuario/kardex-core/internal/domain"
	"github.com/tu-usuario/kardex-core/internal/domain/entity"
	"github.com/tu-usuario/kardex-core/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo implementación sobre PostgreSQL (usable con pool o tx).
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

const headerColumns = "id, type, concept, reason, date, total_cost, audit_session_id, created_at, created_by"

// CreateHeader persiste una cabecera de movimiento.
func (r *MovementRepo) CreateHeader(header *entity.MovementHeader) error {
	if header.ID == "" {
		header.ID = uuid.New().String()
	}
	query := `
		INSERT INTO movement_headers (id, type, concept, reason, date, total_cost, audit_session_id, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	createdBy := (*string)(nil)
	if header.CreatedBy != "" {
		createdBy = &header.CreatedBy
	}
	_, err := r.q.Exec(context.Background(), query,
		header.ID, header.Type, header.Concept, header.Reason, header.Date,
		header.TotalCost, header.AuditSessionID, header.CreatedAt, createdBy,
	)
	if err != nil {
		return fmt.Errorf("create movement header: %w", err)
	}
	return nil
}

func scanHeader(row pgx.Row) (*entity.MovementHeader, error) {
	var h entity.MovementHeader
	var createdBy *string
	err := row.Scan(&h.ID, &h.Type, &h.Concept, &h.Reason, &h.Date,
		&h.TotalCost, &h.AuditSessionID, &h.CreatedAt, &createdBy)
	if err != nil {
		return nil, err
	}
	if createdBy != nil {
		h.CreatedBy = *createdBy
	}
	return &h, nil
}

// GetHeader obtiene una cabecera por ID.
func (r *MovementRepo) GetHeader(id string) (*entity.MovementHeader, error) {
	query := `SELECT ` + headerColumns + ` FROM movement_headers WHERE id = $1`
	h, err := scanHeader(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get movement header: %w", err)
	}
	return h, nil
}

// UpdateHeader actualiza tipo, concepto, razón y costo total de una cabecera.
func (r *MovementRepo) UpdateHeader(header *entity.MovementHeader) error {
	query := `
		UPDATE movement_headers SET type = $2, concept = $3, reason = $4, total_cost = $5
		WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query,
		header.ID, header.Type, header.Concept, header.Reason, header.TotalCost,
	)
	if err != nil {
		return fmt.Errorf("update movement header: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteHeader elimina la cabecera y todas sus líneas.
func (r *MovementRepo) DeleteHeader(id string) error {
	if _, err := r.q.Exec(context.Background(),
		`DELETE FROM movement_details WHERE movement_id = $1`, id); err != nil {
		return fmt.Errorf("delete movement details: %w", err)
	}
	tag, err := r.q.Exec(context.Background(),
		`DELETE FROM movement_headers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete movement header: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListHeaders lista cabeceras en un rango de fechas, más recientes primero.
func (r *MovementRepo) ListHeaders(from, to *time.Time, limit, offset int) ([]*entity.MovementHeader, error) {
	query := `SELECT ` + headerColumns + ` FROM movement_headers WHERE 1=1`
	args := []any{}
	pos := 1
	if from != nil {
		query += fmt.Sprintf(" AND date >= $%d", pos)
		args = append(args, *from)
		pos++
	}
	if to != nil {
		query += fmt.Sprintf(" AND date <= $%d", pos)
		args = append(args, *to)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY date DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movement headers: %w", err)
	}
	defer rows.Close()
	var list []*entity.MovementHeader
	for rows.Next() {
		var h entity.MovementHeader
		var createdBy *string
		if err := rows.Scan(&h.ID, &h.Type, &h.Concept, &h.Reason, &h.Date,
			&h.TotalCost, &h.AuditSessionID, &h.CreatedAt, &createdBy); err != nil {
			return nil, fmt.Errorf("scan movement header: %w", err)
		}
		if createdBy != nil {
			h.CreatedBy = *createdBy
		}
		list = append(list, &h)
	}
	return list, rows.Err()
}

// CreateDetail persiste una línea de movimiento.
func (r *MovementRepo) CreateDetail(detail *entity.MovementDetail) error {
	if detail.ID == "" {
		detail.ID = uuid.New().String()
	}
	query := `
		INSERT INTO movement_details (id, movement_id, product_id, quantity, unit_cost, new_price)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(context.Background(), query,
		detail.ID, detail.MovementID, detail.ProductID, detail.Quantity, detail.UnitCost, detail.NewPrice,
	)
	if err != nil {
		return fmt.Errorf("create movement detail: %w", err)
	}
	return nil
}

// GetDetail obtiene una línea por ID.
func (r *MovementRepo) GetDetail(id string) (*entity.MovementDetail, error) {
	query := `
		SELECT id, movement_id, product_id, quantity, unit_cost, new_price
		FROM movement_details WHERE id = $1`
	var d entity.MovementDetail
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&d.ID, &d.MovementID, &d.ProductID, &d.Quantity, &d.UnitCost, &d.NewPrice,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get movement detail: %w", err)
	}
	return &d, nil
}

// DeleteDetail elimina una línea.
func (r *MovementRepo) DeleteDetail(id string) error {
	tag, err := r.q.Exec(context.Background(),
		`DELETE FROM movement_details WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete movement detail: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListDetailsByHeader lista las líneas de una cabecera.
func (r *MovementRepo) ListDetailsByHeader(movementID string) ([]*entity.MovementDetail, error) {
	query := `
		SELECT id, movement_id, product_id, quantity, unit_cost, new_price
		FROM movement_details WHERE movement_id = $1
		ORDER BY id`
	rows, err := r.q.Query(context.Background(), query, movementID)
	if err != nil {
		return nil, fmt.Errorf("list details by header: %w", err)
	}
	defer rows.Close()
	var list []*entity.MovementDetail
	for rows.Next() {
		var d entity.MovementDetail
		if err := rows.Scan(&d.ID, &d.MovementID, &d.ProductID, &d.Quantity, &d.UnitCost, &d.NewPrice); err != nil {
			return nil, fmt.Errorf("scan movement detail: %w", err)
		}
		list = append(list, &d)
	}
	return list, rows.Err()
}

// ListKardexByProduct lista el historial de un producto (línea + cabecera) por
// fecha de movimiento descendente.
func (r *MovementRepo) ListKardexByProduct(productID string, from, to *time.Time, limit, offset int) ([]repository.KardexEntry, error) {
	query := `
		SELECT d.id, d.movement_id, d.product_id, d.quantity, d.unit_cost, d.new_price,
		       h.id, h.type, h.concept, h.reason, h.date, h.total_cost, h.audit_session_id, h.created_at, h.created_by
		FROM movement_details d
		JOIN movement_headers h ON h.id = d.movement_id
		WHERE d.product_id = $1`
	args := []any{productID}
	pos := 2
	if from != nil {
		query += fmt.Sprintf(" AND h.date >= $%d", pos)
		args = append(args, *from)
		pos++
	}
	if to != nil {
		query += fmt.Sprintf(" AND h.date <= $%d", pos)
		args = append(args, *to)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY h.date DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list kardex by product: %w", err)
	}
	defer rows.Close()
	var list []repository.KardexEntry
	for rows.Next() {
		var e repository.KardexEntry
		var createdBy *string
		if err := rows.Scan(
			&e.Detail.ID, &e.Detail.MovementID, &e.Detail.ProductID, &e.Detail.Quantity, &e.Detail.UnitCost, &e.Detail.NewPrice,
			&e.Header.ID, &e.Header.Type, &e.Header.Concept, &e.Header.Reason, &e.Header.Date,
			&e.Header.TotalCost, &e.Header.AuditSessionID, &e.Header.CreatedAt, &createdBy,
		); err != nil {
			return nil, fmt.Errorf("scan kardex entry: %w", err)
		}
		if createdBy != nil {
			e.Header.CreatedBy = *createdBy
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

// LastDetailByProduct devuelve la línea del movimiento más reciente para el producto.
func (r *MovementRepo) LastDetailByProduct(productID string) (*entity.MovementDetail, error) {
	query := `
		SELECT d.id, d.movement_id, d.product_id, d.quantity, d.unit_cost, d.new_price
		FROM movement_details d
		JOIN movement_headers h ON h.id = d.movement_id
		WHERE d.product_id = $1
		ORDER BY h.date DESC, h.created_at DESC
		LIMIT 1`
	var d entity.MovementDetail
	err := r.q.QueryRow(context.Background(), query, productID).Scan(
		&d.ID, &d.MovementID, &d.ProductID, &d.Quantity, &d.UnitCost, &d.NewPrice,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("last detail by product: %w", err)
	}
	return &d, nil
}
