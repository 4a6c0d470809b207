package identity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/example/storefront/pkg/models"
	"github.com/example/storefront/pkg/repository"
	"github.com/example/storefront/pkg/session"
)

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, repository.Migrate(db))

	return NewService(db, session.NewMemoryBinder(), zap.NewNop()), db
}

func userCount(t *testing.T, db *gorm.DB) int64 {
	t.Helper()

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	return count
}

func TestRegister_CreatesUserWithHashedPassword(t *testing.T) {
	svc, db := newTestService(t)

	user, err := svc.Register(context.Background(), "alice", "s3cret", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.NotEmpty(t, user.PasswordHash)
	assert.NotEqual(t, "s3cret", user.PasswordHash)
	assert.Equal(t, int64(1), userCount(t, db))
}

func TestRegister_PasswordMismatchCreatesNothing(t *testing.T) {
	svc, db := newTestService(t)

	_, err := svc.Register(context.Background(), "alice", "s3cret", "other")
	assert.ErrorIs(t, err, ErrPasswordMismatch)
	assert.Zero(t, userCount(t, db))
}

func TestRegister_DuplicateUsernameCreatesNoSecondRecord(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "s3cret", "s3cret")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "alice", "another", "another")
	assert.ErrorIs(t, err, ErrUsernameTaken)
	assert.Equal(t, int64(1), userCount(t, db))
}

func TestRegister_BlankUsername(t *testing.T) {
	svc, db := newTestService(t)

	_, err := svc.Register(context.Background(), "   ", "s3cret", "s3cret")
	assert.ErrorIs(t, err, ErrUsernameRequired)
	assert.Zero(t, userCount(t, db))
}

func TestAuthenticate(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, "alice", "s3cret", "s3cret")
	require.NoError(t, err)

	principal, err := svc.Authenticate(ctx, "alice", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, principal.ID)
	assert.Equal(t, "alice", principal.Username)

	_, err = svc.Authenticate(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, "nobody", "s3cret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginLogoutRoundTrip(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "s3cret", "s3cret")
	require.NoError(t, err)

	principal, err := svc.Login(ctx, "sess-1", "alice", "s3cret")
	require.NoError(t, err)

	current, err := svc.Current(ctx, "sess-1")
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, principal.ID, current.ID)

	require.NoError(t, svc.Logout(ctx, "sess-1"))

	current, err = svc.Current(ctx, "sess-1")
	require.NoError(t, err)
	assert.Nil(t, current)
}

func TestCurrent_AnonymousSession(t *testing.T) {
	svc, _ := newTestService(t)

	current, err := svc.Current(context.Background(), "fresh-session")
	require.NoError(t, err)
	assert.Nil(t, current)
}

func TestLogin_BadCredentialsLeaveSessionAnonymous(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "s3cret", "s3cret")
	require.NoError(t, err)

	_, err = svc.Login(ctx, "sess-1", "alice", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	current, err := svc.Current(ctx, "sess-1")
	require.NoError(t, err)
	assert.Nil(t, current)
}
