package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suteetoe/notabase/internal/model"
	"github.com/suteetoe/notabase/internal/service"
	"github.com/suteetoe/notabase/internal/shared"
	"github.com/suteetoe/notabase/pkg/config"
	"github.com/suteetoe/notabase/pkg/jwtutil"
)

type stubUserRepo struct {
	user *model.User
}

func (r *stubUserRepo) Create(_ context.Context, user *model.User) error {
	r.user = user
	return nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	if r.user != nil && r.user.Email == email {
		return r.user, nil
	}
	return nil, shared.ErrorNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id uint) (*model.User, error) {
	if r.user != nil && r.user.ID == id {
		return r.user, nil
	}
	return nil, shared.ErrorNotFound
}

type stubTenantRepo struct{}

func (r *stubTenantRepo) Create(_ context.Context, tenant *model.Tenant) error {
	tenant.ID = 1
	return nil
}

func runPrincipalMiddleware(t *testing.T, identity *service.IdentityService, authHeader string) *service.Principal {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	c := e.NewContext(req, httptest.NewRecorder())

	var got *service.Principal
	h := PrincipalMiddleware(identity)(func(c echo.Context) error {
		got = GetPrincipal(c)
		return nil
	})
	require.NoError(t, h(c))
	return got
}

func TestPrincipalMiddleware(t *testing.T) {
	jwtutil.Initialize(&config.JWTConfig{SigningKey: "middleware-test-key", ExpirationHours: 1})

	users := &stubUserRepo{user: &model.User{
		ID:       7,
		TenantID: 3,
		Email:    "alice@example.com",
		Role:     model.RoleEditor,
	}}
	identity := service.NewIdentityService(users, &stubTenantRepo{})

	token, err := jwtutil.GenerateToken("alice@example.com", 7, 3, "editor")
	require.NoError(t, err)

	t.Run("valid bearer token resolves a principal", func(t *testing.T) {
		p := runPrincipalMiddleware(t, identity, "Bearer "+token)
		require.NotNil(t, p)
		assert.Equal(t, uint(7), p.UserID)
		assert.Equal(t, uint(3), p.TenantID)
		assert.Equal(t, model.RoleEditor, p.Role)
	})

	t.Run("scheme is matched case-insensitively", func(t *testing.T) {
		p := runPrincipalMiddleware(t, identity, "bearer "+token)
		assert.NotNil(t, p)
	})

	t.Run("no header stays anonymous", func(t *testing.T) {
		assert.Nil(t, runPrincipalMiddleware(t, identity, ""))
	})

	t.Run("malformed header stays anonymous", func(t *testing.T) {
		assert.Nil(t, runPrincipalMiddleware(t, identity, "Basic dXNlcjpwdw=="))
		assert.Nil(t, runPrincipalMiddleware(t, identity, "Bearer"))
	})

	t.Run("garbage token stays anonymous", func(t *testing.T) {
		assert.Nil(t, runPrincipalMiddleware(t, identity, "Bearer not.a.token"))
	})

	t.Run("token for a deleted user stays anonymous", func(t *testing.T) {
		gone := service.NewIdentityService(&stubUserRepo{}, &stubTenantRepo{})
		assert.Nil(t, runPrincipalMiddleware(t, gone, "Bearer "+token))
	})
}
