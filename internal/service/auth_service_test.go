package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"chainedu_backend/internal/config"
	"chainedu_backend/internal/model"
	"chainedu_backend/internal/repository"
	"chainedu_backend/internal/util"
)

func newAuthService(t *testing.T, db *gorm.DB) *AuthService {
	t.Helper()
	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.ExpireTime = time.Hour
	return NewAuthService(repository.NewUserRepository(db), cfg)
}

func TestRegister_DuplicateEmailRejected(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(t, db)

	user, err := svc.Register(&RegisterInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "password123",
	})
	require.NoError(t, err)
	assert.Equal(t, model.Student, user.Role)

	_, err = svc.Register(&RegisterInput{
		Username: "alice2",
		Email:    "alice@example.com",
		Password: "password123",
	})
	require.Error(t, err)
	assert.True(t, util.IsPolicyError(err))
	assert.Equal(t, "该邮箱已被注册", err.Error())
}

func TestLogin_WrongPasswordRejected(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(t, db)

	_, err := svc.Register(&RegisterInput{
		Username: "bob",
		Email:    "bob@example.com",
		Password: "password123",
	})
	require.NoError(t, err)

	result, err := svc.Login(&LoginInput{Email: "bob@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)

	_, err = svc.Login(&LoginInput{Email: "bob@example.com", Password: "wrong-password"})
	assert.ErrorIs(t, err, util.ErrInvalidCredentials)
}
