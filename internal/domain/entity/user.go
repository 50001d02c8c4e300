package entity

import "time"

// User representa una cuenta administrable. Los roles se resuelven vía la tabla user_roles.
type User struct {
	ID                 string
	UserName           string
	NormalizedUserName string // único; ver NormalizeName
	PasswordHash       string // bcrypt, nunca la contraseña en claro
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Rename cambia el nombre y su forma normalizada.
func (u *User) Rename(userName string) {
	u.UserName = userName
	u.NormalizedUserName = NormalizeName(userName)
}
