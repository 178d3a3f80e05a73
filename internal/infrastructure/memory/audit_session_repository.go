package memory

import (
	"github.com/google/uuid"
	"github.com/tu-usuario/kardex-core/internal/domain"
	"github.com/tu-usuario/kardex-core/internal/domain/entity"
	"github.com/tu-usuario/kardex-core/internal/domain/repository"
)

var _ repository.AuditSessionRepository = (*AuditSessionRepo)(nil)

// AuditSessionRepo implementación en memoria de AuditSessionRepository.
type AuditSessionRepo struct {
	store  *Store
	locked bool
}

// NewAuditSessionRepository construye el repositorio sobre el store.
func NewAuditSessionRepository(store *Store) *AuditSessionRepo {
	return &AuditSessionRepo{store: store}
}

func (r *AuditSessionRepo) lock() func() {
	if r.locked {
		return func() {}
	}
	r.store.mu.Lock()
	return r.store.mu.Unlock
}

// Create persiste una sesión nueva; ErrDuplicate si ya hay una OPEN.
func (r *AuditSessionRepo) Create(session *entity.AuditSession) error {
	defer r.lock()()
	if session.ID == "" {
		session.ID = uuid.New().String()
	}
	for _, s := range r.store.sessions {
		if s.Status == entity.AuditStatusOpen {
			return domain.ErrDuplicate
		}
	}
	cp := *session
	r.store.sessions[cp.ID] = &cp
	return nil
}

// GetByID obtiene una copia de la sesión, o nil si no existe.
func (r *AuditSessionRepo) GetByID(id string) (*entity.AuditSession, error) {
	defer r.lock()()
	s, ok := r.store.sessions[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

// GetOpen devuelve la sesión OPEN actual, o nil.
func (r *AuditSessionRepo) GetOpen() (*entity.AuditSession, error) {
	defer r.lock()()
	for _, s := range r.store.sessions {
		if s.Status == entity.AuditStatusOpen {
			cp := *s
			return &cp, nil
		}
	}
	return nil, nil
}

// Update actualiza estado, fecha de cierre y varianza neta.
func (r *AuditSessionRepo) Update(session *entity.AuditSession) error {
	defer r.lock()()
	current, ok := r.store.sessions[session.ID]
	if !ok {
		return domain.ErrNotFound
	}
	current.Status = session.Status
	current.EndDate = session.EndDate
	current.NetVariance = session.NetVariance
	return nil
}
