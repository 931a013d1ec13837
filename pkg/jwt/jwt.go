package jwt

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Tipos de token emitidos.
const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

// ErrWrongType el token es válido pero no del tipo esperado (p.ej. refresh usado como access).
var ErrWrongType = errors.New("jwt: tipo de token inesperado")

// Claims incluye los claims estándar JWT más los campos propios de la aplicación.
// TenantID vacío identifica a un operador de plataforma.
type Claims struct {
	jwt.RegisteredClaims
	Type        string `json:"token_type"`
	UserID      int64  `json:"user_id"`
	TenantID    string `json:"tenant_id,omitempty"`
	WarehouseID *int64 `json:"warehouse_id,omitempty"`
	Role        string `json:"role"`
}

// Subject datos del usuario que viajan en el token.
type Subject struct {
	UserID      int64
	TenantID    string
	WarehouseID *int64
	Role        string
}

// Issuer firma tokens con un secreto HMAC.
type Issuer struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewIssuer crea el emisor. Los TTL se expresan en minutos como en la configuración.
func NewIssuer(secret, issuer string, accessMinutes, refreshMinutes int) (*Issuer, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt: secret vacío")
	}
	return &Issuer{
		secret:     []byte(secret),
		issuer:     issuer,
		accessTTL:  time.Duration(accessMinutes) * time.Minute,
		refreshTTL: time.Duration(refreshMinutes) * time.Minute,
		now:        time.Now,
	}, nil
}

// WithClock reemplaza el reloj (tests).
func (i *Issuer) WithClock(now func() time.Time) *Issuer {
	i.now = now
	return i
}

// Access genera un token de acceso.
func (i *Issuer) Access(s Subject) (string, error) {
	return i.sign(s, TypeAccess, i.accessTTL)
}

// Refresh genera un token de refresco.
func (i *Issuer) Refresh(s Subject) (string, error) {
	return i.sign(s, TypeRefresh, i.refreshTTL)
}

func (i *Issuer) sign(s Subject, typ string, ttl time.Duration) (string, error) {
	now := i.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.issuer,
			Subject:   strconv.FormatInt(s.UserID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Type:        typ,
		UserID:      s.UserID,
		TenantID:    s.TenantID,
		WarehouseID: s.WarehouseID,
		Role:        s.Role,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.secret)
}

// Parse valida firma, expiración y tipo. Retorna error si el token es inválido, expirado,
// tiene firma incorrecta o no es del tipo pedido.
func (i *Issuer) Parse(tokenString, wantType string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("método de firma inesperado: %v", t.Header["alg"])
		}
		return i.secret, nil
	}, jwt.WithTimeFunc(i.now))
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("claims inválidos")
	}
	if wantType != "" && claims.Type != wantType {
		return nil, ErrWrongType
	}
	return claims, nil
}

// Subject devuelve los datos del usuario contenidos en los claims.
func (c *Claims) Subject() Subject {
	return Subject{UserID: c.UserID, TenantID: c.TenantID, WarehouseID: c.WarehouseID, Role: c.Role}
}
