package repository

import "github.com/tu-usuario/kardex-core/internal/domain/entity"

// AuditSessionRepository define el puerto de persistencia para sesiones de
// auditoría física.
type AuditSessionRepository interface {
	Create(session *entity.AuditSession) error
	GetByID(id string) (*entity.AuditSession, error)
	// GetOpen devuelve la sesión OPEN actual, o nil si no existe.
	GetOpen() (*entity.AuditSession, error)
	Update(session *entity.AuditSession) error
}
