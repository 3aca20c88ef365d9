package service

import (
	"context"
	"testing"

	"gustito/backend/internal/config"
	"gustito/backend/internal/domain"
	"gustito/backend/internal/dto"
	"gustito/backend/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type usuarioRepoFake struct {
	usuarios map[uuid.UUID]*model.Usuario
}

func newUsuarioRepoFake() *usuarioRepoFake {
	return &usuarioRepoFake{usuarios: map[uuid.UUID]*model.Usuario{}}
}

func (f *usuarioRepoFake) Create(_ context.Context, u *model.Usuario) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	for _, existente := range f.usuarios {
		if existente.Correo == u.Correo {
			return gorm.ErrDuplicatedKey
		}
	}
	f.usuarios[u.ID] = u
	return nil
}

func (f *usuarioRepoFake) FindByCorreo(_ context.Context, correo string) (*model.Usuario, error) {
	for _, u := range f.usuarios {
		if u.Correo == correo && u.Activo {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *usuarioRepoFake) FindByID(_ context.Context, id uuid.UUID) (*model.Usuario, error) {
	u, ok := f.usuarios[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (f *usuarioRepoFake) List(_ context.Context) ([]model.Usuario, error) {
	var out []model.Usuario
	for _, u := range f.usuarios {
		out = append(out, *u)
	}
	return out, nil
}

func (f *usuarioRepoFake) Update(_ context.Context, u *model.Usuario) error {
	f.usuarios[u.ID] = u
	return nil
}

func (f *usuarioRepoFake) SoftDelete(_ context.Context, id uuid.UUID) error {
	u, ok := f.usuarios[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.Activo = false
	return nil
}

func authTestConfig() *config.Config {
	return &config.Config{JWTSecret: "secreto-de-prueba", JWTExpirationHours: 8}
}

func sembrarUsuario(t *testing.T, repo *usuarioRepoFake, correo, password, rol string) *model.Usuario {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	u := &model.Usuario{
		Nombre:       "Cajero Uno",
		Correo:       correo,
		PasswordHash: string(hash),
		Rol:          rol,
		Activo:       true,
	}
	require.NoError(t, repo.Create(context.Background(), u))
	return u
}

func TestLoginEmiteTokenConClaims(t *testing.T) {
	repo := newUsuarioRepoFake()
	cfg := authTestConfig()
	user := sembrarUsuario(t, repo, "cajero@tienda.com", "clave1234", "VENDEDOR")
	svc := NewAuthService(repo, cfg)

	resp, err := svc.Login(context.Background(), dto.LoginRequest{
		Correo:   "cajero@tienda.com",
		Password: "clave1234",
	})
	require.NoError(t, err)

	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, 8*3600, resp.ExpiresIn)
	assert.Equal(t, user.ID.String(), resp.User.ID)

	parsed, err := jwt.Parse(resp.AccessToken, func(tok *jwt.Token) (interface{}, error) {
		return []byte(cfg.JWTSecret), nil
	})
	require.NoError(t, err)
	claims, ok := parsed.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, user.ID.String(), claims["user_id"])
	assert.Equal(t, "VENDEDOR", claims["rol"])
}

func TestLoginPasswordIncorrecta(t *testing.T) {
	repo := newUsuarioRepoFake()
	sembrarUsuario(t, repo, "cajero@tienda.com", "clave1234", "VENDEDOR")
	svc := NewAuthService(repo, authTestConfig())

	_, err := svc.Login(context.Background(), dto.LoginRequest{
		Correo:   "cajero@tienda.com",
		Password: "otra-clave",
	})
	require.Error(t, err)
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
}

func TestLoginUsuarioInexistente(t *testing.T) {
	svc := NewAuthService(newUsuarioRepoFake(), authTestConfig())

	_, err := svc.Login(context.Background(), dto.LoginRequest{
		Correo:   "nadie@tienda.com",
		Password: "clave1234",
	})
	require.Error(t, err)
	// Same error either way, an attacker learns nothing about the account.
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
}

func TestCrearUsuarioGuardaHashNoPassword(t *testing.T) {
	repo := newUsuarioRepoFake()
	svc := NewAuthService(repo, authTestConfig())

	resp, err := svc.CrearUsuario(context.Background(), dto.CrearUsuarioRequest{
		Nombre:   "Admin Dos",
		Correo:   "admin2@tienda.com",
		Password: "clave-segura-1",
		Rol:      "ADMIN",
	})
	require.NoError(t, err)
	assert.True(t, resp.Activo)

	id, err := uuid.Parse(resp.ID)
	require.NoError(t, err)
	guardado := repo.usuarios[id]
	require.NotNil(t, guardado)
	assert.NotEqual(t, "clave-segura-1", guardado.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword(
		[]byte(guardado.PasswordHash), []byte("clave-segura-1")))
}

func TestDesactivarUsuarioImpideLogin(t *testing.T) {
	repo := newUsuarioRepoFake()
	user := sembrarUsuario(t, repo, "cajero@tienda.com", "clave1234", "VENDEDOR")
	svc := NewAuthService(repo, authTestConfig())

	require.NoError(t, svc.DesactivarUsuario(context.Background(), user.ID))

	_, err := svc.Login(context.Background(), dto.LoginRequest{
		Correo:   "cajero@tienda.com",
		Password: "clave1234",
	})
	require.Error(t, err)
}
