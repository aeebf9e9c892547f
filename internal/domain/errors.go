package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound               = errors.New("recurso no encontrado")
	ErrInvalidInput           = errors.New("entrada inválida")
	ErrInvalidQuantity        = errors.New("cantidad inválida")
	ErrInvalidTransactionType = errors.New("tipo de transacción inválido")
	ErrInsufficientStock      = errors.New("stock insuficiente")
	ErrDuplicate              = errors.New("recurso duplicado")
	ErrConflict               = errors.New("conflicto con el estado actual")
	ErrConflictRetryExceeded  = errors.New("reintentos de concurrencia agotados")
)
