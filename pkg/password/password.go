package password

import (
	"errors"
	"fmt"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// MaxBytes límite de bcrypt; más allá GenerateFromPassword falla.
const MaxBytes = 72

// Policy reglas de complejidad de contraseña.
type Policy struct {
	MinLength              int
	RequireDigit           bool
	RequireLowercase       bool
	RequireUppercase       bool
	RequireNonAlphanumeric bool
}

// DefaultPolicy mínimo 6, con dígito, minúscula y mayúscula; sin símbolo obligatorio.
func DefaultPolicy() Policy {
	return Policy{
		MinLength:        6,
		RequireDigit:     true,
		RequireLowercase: true,
		RequireUppercase: true,
	}
}

// Validate devuelve un mensaje por cada regla incumplida (vacío si cumple).
// El tope de MaxBytes aplica siempre, sea cual sea la política.
func (p Policy) Validate(pw string) []string {
	var msgs []string
	if len([]rune(pw)) < p.MinLength {
		msgs = append(msgs, fmt.Sprintf("la contraseña debe tener al menos %d caracteres", p.MinLength))
	}
	if len(pw) > MaxBytes {
		msgs = append(msgs, fmt.Sprintf("la contraseña no puede superar %d bytes", MaxBytes))
	}
	var digit, lower, upper, other bool
	for _, r := range pw {
		switch {
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case !unicode.IsLetter(r):
			other = true
		}
	}
	if p.RequireDigit && !digit {
		msgs = append(msgs, "la contraseña debe contener al menos un dígito ('0'-'9')")
	}
	if p.RequireLowercase && !lower {
		msgs = append(msgs, "la contraseña debe contener al menos una minúscula ('a'-'z')")
	}
	if p.RequireUppercase && !upper {
		msgs = append(msgs, "la contraseña debe contener al menos una mayúscula ('A'-'Z')")
	}
	if p.RequireNonAlphanumeric && !other {
		msgs = append(msgs, "la contraseña debe contener al menos un carácter no alfanumérico")
	}
	return msgs
}

// Hasher aplica la política y hashea con bcrypt.
type Hasher struct {
	policy Policy
	cost   int
}

// NewHasher cost 0 usa bcrypt.DefaultCost.
func NewHasher(policy Policy, cost int) *Hasher {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	if cost < bcrypt.MinCost {
		cost = bcrypt.MinCost
	}
	if cost > bcrypt.MaxCost {
		cost = bcrypt.MaxCost
	}
	return &Hasher{policy: policy, cost: cost}
}

// Policy política configurada.
func (h *Hasher) Policy() Policy { return h.policy }

// Validate atajo de Policy().Validate.
func (h *Hasher) Validate(pw string) []string { return h.policy.Validate(pw) }

// Hash genera el hash bcrypt (salado). No valida la política.
func (h *Hasher) Hash(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash de contraseña: %w", err)
	}
	return string(b), nil
}

// Verify compara la contraseña con el hash. false sin error si no coinciden.
func (h *Hasher) Verify(hash, pw string) (bool, error) {
	if len(pw) > MaxBytes {
		return false, nil
	}
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, fmt.Errorf("verificar contraseña: %w", err)
}
