package auth_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/scm-api/internal/application/auth"
	"github.com/jhoicas/scm-api/internal/application/dto"
	"github.com/jhoicas/scm-api/internal/domain"
	"github.com/jhoicas/scm-api/internal/domain/entity"
	"github.com/jhoicas/scm-api/pkg/jwt"
)

const companyID = "00000000-0000-0000-0000-0000000000c1"

type memUsers struct{ byID map[string]*entity.User }

func (m *memUsers) Create(_ context.Context, u *entity.User) error {
	m.byID[u.ID] = u
	return nil
}
func (m *memUsers) GetByID(_ context.Context, id string) (*entity.User, error) {
	return m.byID[id], nil
}
func (m *memUsers) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	for _, u := range m.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}
func (m *memUsers) GetByEmailAndCompany(ctx context.Context, email, cid string) (*entity.User, error) {
	u, _ := m.GetByEmail(ctx, email)
	if u != nil && u.CompanyID == cid {
		return u, nil
	}
	return nil, nil
}
func (m *memUsers) ListByCompany(context.Context, string, int, int) ([]*entity.User, error) {
	return nil, nil
}

type memCompanies struct{}

func (memCompanies) Create(context.Context, *entity.Company) error { return nil }
func (memCompanies) GetByID(_ context.Context, id string) (*entity.Company, error) {
	if id == companyID {
		return &entity.Company{ID: id, Name: "Textiles Andinos", Status: "active"}, nil
	}
	return nil, nil
}
func (memCompanies) GetByTaxID(context.Context, string) (*entity.Company, error) { return nil, nil }
func (memCompanies) Update(context.Context, *entity.Company) error               { return nil }
func (memCompanies) List(context.Context, int, int) ([]*entity.Company, error)   { return nil, nil }
func (memCompanies) HasActiveModule(context.Context, string, string) (bool, error) {
	return true, nil
}
func (memCompanies) ListModules(context.Context, string) ([]*entity.CompanyModule, error) {
	return nil, nil
}
func (memCompanies) UpsertModule(context.Context, *entity.CompanyModule) error { return nil }

func newAuth() *auth.AuthUseCase {
	return auth.NewAuthUseCase(&memUsers{byID: map[string]*entity.User{}}, memCompanies{}, auth.JWTConfig{
		Secret: "secreto-de-prueba", ExpMinutes: 5, Issuer: "scm-api-test",
	})
}

func TestRegistroYLogin(t *testing.T) {
	uc := newAuth()
	ctx := context.Background()

	user, err := uc.RegisterUser(ctx, dto.RegisterRequest{
		Email: "Compras@Empresa.co ", Password: "clave-segura", CompanyID: companyID,
	})
	require.NoError(t, err)
	assert.Equal(t, "compras@empresa.co", user.Email)
	assert.Equal(t, entity.RolePlanner, user.Role, "rol por defecto")

	_, err = uc.RegisterUser(ctx, dto.RegisterRequest{Email: "compras@empresa.co", Password: "otra-clave", CompanyID: companyID})
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)

	out, err := uc.Login(ctx, dto.LoginRequest{Email: "compras@empresa.co", Password: "clave-segura"})
	require.NoError(t, err)
	id, err := jwt.Parse("secreto-de-prueba", out.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, id.UserID)
	assert.Equal(t, companyID, id.CompanyID)
	assert.Equal(t, entity.RolePlanner, id.Role)
}

func TestLogin_PasswordIncorrecto(t *testing.T) {
	uc := newAuth()
	ctx := context.Background()
	_, err := uc.RegisterUser(ctx, dto.RegisterRequest{Email: "a@b.co", Password: "clave-segura", CompanyID: companyID, Role: entity.RoleBuyer})
	require.NoError(t, err)

	_, err = uc.Login(ctx, dto.LoginRequest{Email: "a@b.co", Password: "equivocada"})
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))

	_, err = uc.Login(ctx, dto.LoginRequest{Email: "nadie@b.co", Password: "x"})
	assert.True(t, errors.Is(err, domain.ErrUserNotFound))
}

func TestRegistro_EmpresaInexistente(t *testing.T) {
	_, err := newAuth().RegisterUser(context.Background(), dto.RegisterRequest{
		Email: "a@b.co", Password: "clave-segura", CompanyID: "00000000-0000-0000-0000-000000000999",
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
