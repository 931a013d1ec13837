package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrUnauthenticated    = errors.New("credenciales ausentes o inválidas")
	ErrForbidden          = errors.New("acceso denegado")
	ErrQuotaExceeded      = errors.New("límite del plan alcanzado")
	ErrFeatureUnavailable = errors.New("funcionalidad no incluida en el plan")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrConflict           = errors.New("conflicto con el estado actual")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrInvariantViolation = errors.New("violación de invariante")
	ErrInsufficientStock  = errors.New("stock insuficiente")
	ErrCrossTenant        = errors.New("operación entre entreprises distintas")
	ErrTransient          = errors.New("error transitorio de base de datos")
)

// Error lleva el tipo (Kind, uno de los sentinels), un mensaje legible y detalles por campo.
// errors.Is(err, domain.ErrQuotaExceeded) funciona gracias a Unwrap.
type Error struct {
	Kind    error
	Message string
	Details map[string]string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Kind.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Kind }

// NewQuotaExceeded construye la denegación por límite citando actual/límite.
func NewQuotaExceeded(resource string, current, limit int64) *Error {
	return &Error{
		Kind:    ErrQuotaExceeded,
		Message: fmt.Sprintf("límite de %s alcanzado (%d/%d); actualice su plan", resource, current, limit),
		Details: map[string]string{
			"resource": resource,
			"current":  fmt.Sprintf("%d", current),
			"limit":    fmt.Sprintf("%d", limit),
		},
	}
}

// NewFeatureUnavailable denegación por bandera de plan desactivada.
func NewFeatureUnavailable(feature string) *Error {
	return &Error{
		Kind:    ErrFeatureUnavailable,
		Message: fmt.Sprintf("la funcionalidad %q no está disponible en su plan", feature),
		Details: map[string]string{"feature": feature},
	}
}

// NewValidation error 400 con detalles por campo.
func NewValidation(fields map[string]string) *Error {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+fields[k])
	}
	return &Error{
		Kind:    ErrInvalidInput,
		Message: "datos inválidos: " + strings.Join(parts, "; "),
		Details: fields,
	}
}

// NewInvariant error 422 (stock negativo, pago mayor al saldo, etc.).
func NewInvariant(msg string) *Error {
	return &Error{Kind: ErrInvariantViolation, Message: msg}
}

// NewInsufficientStock error 422 indicando disponible y solicitado.
func NewInsufficientStock(available, requested int64) *Error {
	return &Error{
		Kind:    ErrInsufficientStock,
		Message: fmt.Sprintf("stock insuficiente: disponible %d, solicitado %d", available, requested),
		Details: map[string]string{
			"available": fmt.Sprintf("%d", available),
			"requested": fmt.Sprintf("%d", requested),
		},
	}
}

// Errorf envuelve un sentinel con un mensaje propio.
func Errorf(kind error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// DetailsOf devuelve los detalles por campo si err es (o envuelve) un *Error.
func DetailsOf(err error) map[string]string {
	var de *Error
	if errors.As(err, &de) {
		return de.Details
	}
	return nil
}
