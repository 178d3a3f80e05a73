package memory

import (
	"sync"

	"github.com/tu-usuario/kardex-core/internal/domain/entity"
)

// Store estado compartido en memoria para productos, movimientos y sesiones.
// Sirve como doble de pruebas de la capa PostgreSQL y para desarrollo local
// sin BD. Un solo mutex serializa las escrituras (equivalente en memoria al
// bloqueo de fila por producto).
type Store struct {
	mu       sync.Mutex
	products map[string]*entity.Product
	headers  map[string]*entity.MovementHeader
	details  map[string]*entity.MovementDetail
	sessions map[string]*entity.AuditSession
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{
		products: make(map[string]*entity.Product),
		headers:  make(map[string]*entity.MovementHeader),
		details:  make(map[string]*entity.MovementDetail),
		sessions: make(map[string]*entity.AuditSession),
	}
}

// snapshot copia profunda del estado, para rollback de transacciones.
type snapshot struct {
	products map[string]*entity.Product
	headers  map[string]*entity.MovementHeader
	details  map[string]*entity.MovementDetail
	sessions map[string]*entity.AuditSession
}

func (s *Store) takeSnapshot() snapshot {
	snap := snapshot{
		products: make(map[string]*entity.Product, len(s.products)),
		headers:  make(map[string]*entity.MovementHeader, len(s.headers)),
		details:  make(map[string]*entity.MovementDetail, len(s.details)),
		sessions: make(map[string]*entity.AuditSession, len(s.sessions)),
	}
	for id, p := range s.products {
		cp := *p
		snap.products[id] = &cp
	}
	for id, h := range s.headers {
		cp := *h
		snap.headers[id] = &cp
	}
	for id, d := range s.details {
		cp := *d
		snap.details[id] = &cp
	}
	for id, ses := range s.sessions {
		cp := *ses
		snap.sessions[id] = &cp
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.products = snap.products
	s.headers = snap.headers
	s.details = snap.details
	s.sessions = snap.sessions
}
