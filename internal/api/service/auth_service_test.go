package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"analytics"
	"analytics/internal/api/handler/request"
	"analytics/internal/api/models"
	"analytics/internal/api/repo"
	"analytics/internal/domain"
	"analytics/pkg"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type authFixture struct {
	auth  *AuthService
	mr    *miniredis.Miniredis
	roles *repo.RoleRepository
	users *repo.UserRepository
}

func newAuthFixture(t *testing.T) *authFixture {
	db := setupServiceTestDB(t)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	var cfg analytics.AppConfig
	cfg.JWTConfig.Secret = "test-secret"
	cfg.JWTConfig.Expiration = 60

	users := repo.NewUserRepository(db)
	roles := repo.NewRoleRepository(db)
	throttle := NewRedisLoginThrottle(rdb, 5, 300*time.Second)
	return &authFixture{
		auth:  NewAuthService(users, roles, throttle, cfg, zerolog.Nop()),
		mr:    mr,
		roles: roles,
		users: users,
	}
}

func (f *authFixture) register(t *testing.T, username, password string) {
	_, err := f.auth.CreateUser(request.CreateUserDTO{Username: username, Email: username + "@example.com", Password: password})
	require.NoError(t, err)
}

func TestAuth_Login(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "alice", "correct-horse")

	resp, err := f.auth.Login(context.Background(), request.LoginDTO{Username: "alice", Password: "correct-horse"})
	require.NoError(t, err)
	assert.Equal(t, "bearer", resp.TokenType)

	claims, err := pkg.ValidateToken(resp.AccessToken, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username())
}

func TestAuth_WrongPassword(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "alice", "correct-horse")

	_, err := f.auth.Login(context.Background(), request.LoginDTO{Username: "alice", Password: "nope"})
	assert.Equal(t, 401, domain.HTTPStatus(err))

	_, err = f.auth.Login(context.Background(), request.LoginDTO{Username: "ghost", Password: "nope"})
	assert.Equal(t, 401, domain.HTTPStatus(err))

	count, err := f.mr.Get("failed_attempts:alice")
	require.NoError(t, err)
	assert.Equal(t, "1", count)
	assert.Equal(t, 300*time.Second, f.mr.TTL("failed_attempts:alice"))
}

func TestAuth_LockoutAfterFiveFailures(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "alice", "correct-horse")
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := f.auth.Login(ctx, request.LoginDTO{Username: "alice", Password: "wrong"})
		require.Equal(t, 401, domain.HTTPStatus(err), "attempt %d", i+1)
	}

	_, err := f.auth.Login(ctx, request.LoginDTO{Username: "alice", Password: "correct-horse"})
	var locked *domain.LockedError
	require.ErrorAs(t, err, &locked)
	assert.Equal(t, 429, domain.HTTPStatus(err))
	assert.True(t, locked.RetryAfter > 0)

	f.mr.FastForward(301 * time.Second)

	_, err = f.auth.Login(ctx, request.LoginDTO{Username: "alice", Password: "correct-horse"})
	require.NoError(t, err)
	assert.False(t, f.mr.Exists("failed_attempts:alice"))
}

func TestAuth_ConcurrentAttemptsRespectCeiling(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "alice", "correct-horse")
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		_, _ = f.auth.Login(ctx, request.LoginDTO{Username: "alice", Password: "wrong"})
	}

	const parallel = 20
	statuses := make([]int, parallel)
	var wg sync.WaitGroup
	for i := 0; i < parallel; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.auth.Login(ctx, request.LoginDTO{Username: "alice", Password: "guess"})
			statuses[i] = domain.HTTPStatus(err)
		}(i)
	}
	wg.Wait()

	checked := 0
	for _, status := range statuses {
		if status == 401 {
			checked++
		} else {
			assert.Equal(t, 429, status)
		}
	}
	assert.Equal(t, 1, checked, "only the fifth attempt reaches the password check")

	_, err := f.auth.Login(ctx, request.LoginDTO{Username: "alice", Password: "correct-horse"})
	assert.Equal(t, 429, domain.HTTPStatus(err))
}

func TestAuth_SuccessResetsCounter(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "alice", "correct-horse")
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		_, _ = f.auth.Login(ctx, request.LoginDTO{Username: "alice", Password: "wrong"})
	}
	_, err := f.auth.Login(ctx, request.LoginDTO{Username: "alice", Password: "correct-horse"})
	require.NoError(t, err)
	assert.False(t, f.mr.Exists("failed_attempts:alice"))
}

func TestAuth_StaleCounterWithoutExpiryIsCleared(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "alice", "correct-horse")
	require.NoError(t, f.mr.Set("failed_attempts:alice", "7"))

	_, err := f.auth.Login(context.Background(), request.LoginDTO{Username: "alice", Password: "correct-horse"})
	require.NoError(t, err)
}

func TestAuth_InactiveUser(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "alice", "correct-horse")
	require.NoError(t, f.users.Db.Model(&models.User{}).Where("username = ?", "alice").Update("active", false).Error)

	_, err := f.auth.Login(context.Background(), request.LoginDTO{Username: "alice", Password: "correct-horse"})
	assert.Equal(t, 401, domain.HTTPStatus(err))
}

func TestAuth_CreateUser(t *testing.T) {
	f := newAuthFixture(t)

	role := models.Role{RoleName: "finance"}
	require.NoError(t, f.roles.CreateRole(&role))

	user, err := f.auth.CreateUser(request.CreateUserDTO{Username: "bob", Email: "bob@example.com", Password: "secret1", RoleID: &role.ID})
	require.NoError(t, err)
	assert.Equal(t, "bob", user.Username)
	assert.True(t, user.Active)

	assigned, err := f.roles.RoleOf("bob")
	require.NoError(t, err)
	assert.Equal(t, "finance", assigned)

	_, err = f.auth.CreateUser(request.CreateUserDTO{Username: "bob", Email: "other@example.com", Password: "secret1"})
	assert.Equal(t, 409, domain.HTTPStatus(err))

	missing := uint(999)
	_, err = f.auth.CreateUser(request.CreateUserDTO{Username: "carol", Email: "carol@example.com", Password: "secret1", RoleID: &missing})
	assert.Equal(t, 404, domain.HTTPStatus(err))
}
