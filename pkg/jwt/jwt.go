package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken token con firma, emisor o claims inválidos.
var ErrInvalidToken = errors.New("jwt: token inválido")

// Claims incluye los claims estándar JWT más los campos propios de la aplicación.
// Roles viaja en el token para que el middleware RBAC decida sin consultar el store.
type Claims struct {
	jwt.RegisteredClaims
	UserID   string   `json:"user_id"`
	UserName string   `json:"user_name"`
	Roles    []string `json:"roles"`
}

// HasRole indica si el token trae el rol (comparación exacta por nombre).
func (c *Claims) HasRole(role string) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Signer firma y valida tokens HS256 con la misma configuración.
type Signer struct {
	secret     []byte
	issuer     string
	expiration time.Duration
	now        func() time.Time
}

// NewSigner crea el firmador. expMinutes <= 0 usa 60 minutos.
func NewSigner(secret, issuer string, expMinutes int) (*Signer, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt: secret vacío")
	}
	if expMinutes <= 0 {
		expMinutes = 60
	}
	return &Signer{
		secret:     []byte(secret),
		issuer:     issuer,
		expiration: time.Duration(expMinutes) * time.Minute,
		now:        time.Now,
	}, nil
}

// Generate genera un token firmado con userID, userName y roles.
func (s *Signer) Generate(userID, userName string, roles []string) (string, time.Time, error) {
	now := s.now()
	exp := now.Add(s.expiration)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		UserID:   userID,
		UserName: userName,
		Roles:    roles,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("jwt: firmar: %w", err)
	}
	return signed, exp, nil
}

// Parse valida el token y devuelve sus claims.
// Retorna error si el token es inválido, expirado, de otro emisor o tiene firma incorrecta.
func (s *Signer) Parse(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{jwt.WithTimeFunc(s.now)}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("método de firma inesperado: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
