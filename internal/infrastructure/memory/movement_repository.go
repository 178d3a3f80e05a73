package memory

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/tu-usuario/kardex-core/internal/domain"
	"github.com/tu-usuario/kardex-core/internal/domain/entity"
	"github.com/tu-usuario/kardex-core/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo implementación en memoria de MovementRepository.
type MovementRepo struct {
	store  *Store
	locked bool
}

// NewMovementRepository construye el repositorio sobre el store.
func NewMovementRepository(store *Store) *MovementRepo {
	return &MovementRepo{store: store}
}

func (r *MovementRepo) lock() func() {
	if r.locked {
		return func() {}
	}
	r.store.mu.Lock()
	return r.store.mu.Unlock
}

// CreateHeader persiste una cabecera.
func (r *MovementRepo) CreateHeader(header *entity.MovementHeader) error {
	defer r.lock()()
	if header.ID == "" {
		header.ID = uuid.New().String()
	}
	cp := *header
	r.store.headers[cp.ID] = &cp
	return nil
}

// GetHeader obtiene una copia de la cabecera, o nil si no existe.
func (r *MovementRepo) GetHeader(id string) (*entity.MovementHeader, error) {
	defer r.lock()()
	h, ok := r.store.headers[id]
	if !ok {
		return nil, nil
	}
	cp := *h
	return &cp, nil
}

// UpdateHeader actualiza tipo, concepto, razón y costo total.
func (r *MovementRepo) UpdateHeader(header *entity.MovementHeader) error {
	defer r.lock()()
	current, ok := r.store.headers[header.ID]
	if !ok {
		return domain.ErrNotFound
	}
	current.Type = header.Type
	current.Concept = header.Concept
	current.Reason = header.Reason
	current.TotalCost = header.TotalCost
	return nil
}

// DeleteHeader elimina cabecera y líneas.
func (r *MovementRepo) DeleteHeader(id string) error {
	defer r.lock()()
	if _, ok := r.store.headers[id]; !ok {
		return domain.ErrNotFound
	}
	for detailID, d := range r.store.details {
		if d.MovementID == id {
			delete(r.store.details, detailID)
		}
	}
	delete(r.store.headers, id)
	return nil
}

// ListHeaders lista cabeceras por fecha descendente con filtros de rango.
func (r *MovementRepo) ListHeaders(from, to *time.Time, limit, offset int) ([]*entity.MovementHeader, error) {
	defer r.lock()()
	var list []*entity.MovementHeader
	for _, h := range r.store.headers {
		if from != nil && h.Date.Before(*from) {
			continue
		}
		if to != nil && h.Date.After(*to) {
			continue
		}
		cp := *h
		list = append(list, &cp)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Date.After(list[j].Date) })
	return paginate(list, limit, offset), nil
}

// CreateDetail persiste una línea.
func (r *MovementRepo) CreateDetail(detail *entity.MovementDetail) error {
	defer r.lock()()
	if detail.ID == "" {
		detail.ID = uuid.New().String()
	}
	cp := *detail
	r.store.details[cp.ID] = &cp
	return nil
}

// GetDetail obtiene una copia de la línea, o nil si no existe.
func (r *MovementRepo) GetDetail(id string) (*entity.MovementDetail, error) {
	defer r.lock()()
	d, ok := r.store.details[id]
	if !ok {
		return nil, nil
	}
	cp := *d
	return &cp, nil
}

// DeleteDetail elimina una línea.
func (r *MovementRepo) DeleteDetail(id string) error {
	defer r.lock()()
	if _, ok := r.store.details[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.store.details, id)
	return nil
}

// ListDetailsByHeader lista las líneas de una cabecera.
func (r *MovementRepo) ListDetailsByHeader(movementID string) ([]*entity.MovementDetail, error) {
	defer r.lock()()
	return r.detailsByHeader(movementID), nil
}

func (r *MovementRepo) detailsByHeader(movementID string) []*entity.MovementDetail {
	var list []*entity.MovementDetail
	for _, d := range r.store.details {
		if d.MovementID == movementID {
			cp := *d
			list = append(list, &cp)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}

// ListKardexByProduct lista el historial de un producto por fecha descendente.
func (r *MovementRepo) ListKardexByProduct(productID string, from, to *time.Time, limit, offset int) ([]repository.KardexEntry, error) {
	defer r.lock()()
	entries := r.kardexByProduct(productID, from, to)
	return paginate(entries, limit, offset), nil
}

func (r *MovementRepo) kardexByProduct(productID string, from, to *time.Time) []repository.KardexEntry {
	var entries []repository.KardexEntry
	for _, d := range r.store.details {
		if d.ProductID != productID {
			continue
		}
		h, ok := r.store.headers[d.MovementID]
		if !ok {
			continue
		}
		if from != nil && h.Date.Before(*from) {
			continue
		}
		if to != nil && h.Date.After(*to) {
			continue
		}
		entries = append(entries, repository.KardexEntry{Detail: *d, Header: *h})
	}
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].Header.Date.Equal(entries[j].Header.Date) {
			return entries[i].Header.Date.After(entries[j].Header.Date)
		}
		return entries[i].Header.CreatedAt.After(entries[j].Header.CreatedAt)
	})
	return entries
}

// LastDetailByProduct devuelve la línea del movimiento más reciente, o nil.
func (r *MovementRepo) LastDetailByProduct(productID string) (*entity.MovementDetail, error) {
	defer r.lock()()
	entries := r.kardexByProduct(productID, nil, nil)
	if len(entries) == 0 {
		return nil, nil
	}
	cp := entries[0].Detail
	return &cp, nil
}
