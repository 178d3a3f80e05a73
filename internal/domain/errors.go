package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrStockConflict     = errors.New("movimientos posteriores ya consumieron ese stock")
	ErrSessionConflict   = errors.New("conflicto con el estado de la sesión de auditoría")
	ErrSKUImmutable      = errors.New("el SKU no puede modificarse después de creado")
)
