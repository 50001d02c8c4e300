package auth

import (
	"context"
	"strings"

	"github.com/jhoicas/authlog-api/internal/application/dto"
	"github.com/jhoicas/authlog-api/internal/application/usecase"
	"github.com/jhoicas/authlog-api/internal/domain"
	"github.com/jhoicas/authlog-api/internal/domain/repository"
	"github.com/jhoicas/authlog-api/pkg/jwt"
	"github.com/jhoicas/authlog-api/pkg/password"
)

// AuthUseCase casos de uso de autenticación: registro y login.
type AuthUseCase struct {
	users  repository.UserRepository
	userUC *usecase.UserUseCase
	hasher *password.Hasher
	signer *jwt.Signer
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(users repository.UserRepository, userUC *usecase.UserUseCase, hasher *password.Hasher, signer *jwt.Signer) *AuthUseCase {
	return &AuthUseCase{users: users, userUC: userUC, hasher: hasher, signer: signer}
}

// Register auto-registro. La entrada de bitácora lleva como actor al usuario recién creado.
func (uc *AuthUseCase) Register(ctx context.Context, in dto.RegisterRequest) (*dto.UserResponse, error) {
	return uc.userUC.Register(ctx, in)
}

// Login verifica usuario/contraseña y emite un JWT con los roles vigentes.
// Usuario inexistente y contraseña incorrecta devuelven el mismo ErrUnauthorized.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	userName := strings.TrimSpace(in.Username)
	if userName == "" || in.Password == "" {
		return nil, domain.NewValidationError("username y password son obligatorios")
	}
	user, err := uc.users.GetByUserName(ctx, userName)
	if err != nil {
		return nil, domain.Persistence("buscar usuario", err)
	}
	if user == nil {
		return nil, domain.ErrUnauthorized
	}
	ok, err := uc.hasher.Verify(user.PasswordHash, in.Password)
	if err != nil {
		return nil, domain.Persistence("verificar contraseña", err)
	}
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	roles, err := uc.users.RolesForUser(ctx, user.ID)
	if err != nil {
		return nil, domain.Persistence("leer roles del usuario", err)
	}
	token, exp, err := uc.signer.Generate(user.ID, user.UserName, roles)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		Token:     token,
		ExpiresAt: exp,
		User: dto.UserResponse{
			ID:        user.ID,
			Username:  user.UserName,
			Roles:     roles,
			CreatedAt: user.CreatedAt,
			UpdatedAt: user.UpdatedAt,
		},
	}, nil
}
