package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"health-service-api/internal/adapters/persistence/models"
	"health-service-api/internal/config"
	"health-service-api/internal/core/domain"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeUserRepo is an in-memory UserRepository for service tests
type fakeUserRepo struct {
	mu     sync.Mutex
	users  map[uint]*models.User
	nextID uint
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uint]*models.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	r.nextID++
	user.ID = r.nextID
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uint) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) Update(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeUserRepo) ListLicenseHashes(_ context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	hashes := make([]string, 0, len(r.users))
	for _, u := range r.users {
		hashes = append(hashes, u.LicenseNumber)
	}
	return hashes, nil
}

func (r *fakeUserRepo) ListByRole(_ context.Context, role string, offset, limit int) ([]*models.User, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.User
	for _, u := range r.users {
		if u.Role == role && u.IsVerified {
			cp := *u
			out = append(out, &cp)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeUserRepo) DeleteUnverifiedBefore(_ context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, u := range r.users {
		if !u.IsVerified && u.CreatedAt.Before(cutoff) {
			delete(r.users, id)
			n++
		}
	}
	return n, nil
}

// fakeRefreshTokenRepo is an in-memory RefreshTokenRepository
type fakeRefreshTokenRepo struct {
	mu     sync.Mutex
	tokens map[uint]*models.RefreshToken
	nextID uint
}

func newFakeRefreshTokenRepo() *fakeRefreshTokenRepo {
	return &fakeRefreshTokenRepo{tokens: make(map[uint]*models.RefreshToken)}
}

func (r *fakeRefreshTokenRepo) Create(_ context.Context, token *models.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	token.ID = r.nextID
	cp := *token
	r.tokens[token.ID] = &cp
	return nil
}

func (r *fakeRefreshTokenRepo) GetByTokenHash(_ context.Context, tokenHash string) (*models.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tokens {
		if t.TokenHash == tokenHash && !t.IsRevoked() {
			cp := *t
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeRefreshTokenRepo) Revoke(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	now := time.Now()
	t.RevokedAt = &now
	return nil
}

func (r *fakeRefreshTokenRepo) RevokeByTokenHash(_ context.Context, tokenHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tokens {
		if t.TokenHash == tokenHash {
			now := time.Now()
			t.RevokedAt = &now
		}
	}
	return nil
}

func (r *fakeRefreshTokenRepo) RevokeAllByUserID(_ context.Context, userID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tokens {
		if t.UserID == userID {
			now := time.Now()
			t.RevokedAt = &now
		}
	}
	return nil
}

func (r *fakeRefreshTokenRepo) DeleteExpired(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, t := range r.tokens {
		if t.IsExpired() {
			delete(r.tokens, id)
			n++
		}
	}
	return n, nil
}

type authTestEnv struct {
	svc      *AuthService
	users    *fakeUserRepo
	tokens   *fakeRefreshTokenRepo
	sessions SessionStore
}

func newAuthTestEnv(t *testing.T) *authTestEnv {
	t.Helper()
	cfg := &config.Config{
		JWT: config.JWTConfig{
			Secret:           "test-access-secret",
			RefreshSecret:    "test-refresh-secret",
			AccessTokenMins:  60,
			RefreshTokenDays: 7,
		},
		MFA:     config.MFAConfig{Issuer: "Health-service.click"},
		Session: config.SessionConfig{TTLSeconds: 300},
	}
	users := newFakeUserRepo()
	tokens := newFakeRefreshTokenRepo()
	sessions := NewMemorySessionStore()
	svc := NewAuthService(
		users,
		tokens,
		sessions,
		NewMFAService(&cfg.MFA),
		NewNotificationService(cfg),
		cfg,
	)
	return &authTestEnv{svc: svc, users: users, tokens: tokens, sessions: sessions}
}

func registerInput(email, license string) *RegisterInput {
	return &RegisterInput{
		Email:         email,
		Password:      "correct-horse-battery",
		LicenseNumber: license,
		Role:          string(domain.RoleDoctor),
	}
}

// verify simulates the admin clicking the emailed link
func (e *authTestEnv) verify(t *testing.T, userID uint) {
	t.Helper()
	user, err := e.users.GetByID(context.Background(), userID)
	require.NoError(t, err)
	require.NotNil(t, user.VerificationToken)
	require.NoError(t, e.svc.AdminVerify(context.Background(), userID, *user.VerificationToken))
}

// totpCode derives the current code from the user's stored secret
func (e *authTestEnv) totpCode(t *testing.T, userID uint) string {
	t.Helper()
	user, err := e.users.GetByID(context.Background(), userID)
	require.NoError(t, err)
	code, err := totp.GenerateCode(user.MFASecret, time.Now())
	require.NoError(t, err)
	return code
}

func TestRegister(t *testing.T) {
	env := newAuthTestEnv(t)
	ctx := context.Background()

	result, err := env.svc.Register(ctx, registerInput("doc@example.com", "123456"))
	require.NoError(t, err)

	assert.Equal(t, "doc@example.com", result.User.Email)
	assert.Equal(t, string(domain.RoleDoctor), result.User.Role)
	assert.False(t, result.User.IsVerified)
	assert.Contains(t, result.OTPAuthURL, "otpauth://totp/")
	assert.NotEmpty(t, result.QRCodePNG)

	stored, err := env.users.GetByID(ctx, result.User.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "correct-horse-battery", stored.Password, "password must be stored hashed")
	assert.NotEqual(t, "123456", stored.LicenseNumber, "license must be stored hashed")
	assert.NotNil(t, stored.VerificationToken)
	assert.NotEmpty(t, stored.MFASecret)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	env := newAuthTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.Register(ctx, registerInput("doc@example.com", "123456"))
	require.NoError(t, err)

	_, err = env.svc.Register(ctx, registerInput("doc@example.com", "654321"))
	assert.ErrorIs(t, err, domain.ErrDuplicateEmail)
}

func TestRegister_DuplicateLicense(t *testing.T) {
	env := newAuthTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.Register(ctx, registerInput("first@example.com", "123456"))
	require.NoError(t, err)

	// Same license under a different email must be rejected even though
	// the stored hashes differ
	_, err = env.svc.Register(ctx, registerInput("second@example.com", "123456"))
	assert.ErrorIs(t, err, domain.ErrDuplicateLicense)

	// A different license is fine
	_, err = env.svc.Register(ctx, registerInput("second@example.com", "654321"))
	assert.NoError(t, err)
}

func TestRegister_InvalidInput(t *testing.T) {
	env := newAuthTestEnv(t)
	ctx := context.Background()

	cases := []struct {
		name  string
		input *RegisterInput
	}{
		{"bad role", &RegisterInput{Email: "a@b.com", Password: "longenough", LicenseNumber: "123456", Role: "nurse"}},
		{"short license", &RegisterInput{Email: "a@b.com", Password: "longenough", LicenseNumber: "12345", Role: string(domain.RoleDoctor)}},
		{"non-numeric license", &RegisterInput{Email: "a@b.com", Password: "longenough", LicenseNumber: "12a456", Role: string(domain.RoleDoctor)}},
		{"short password", &RegisterInput{Email: "a@b.com", Password: "short", LicenseNumber: "123456", Role: string(domain.RoleDoctor)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.svc.Register(ctx, tc.input)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestAdminVerify(t *testing.T) {
	env := newAuthTestEnv(t)
	ctx := context.Background()

	result, err := env.svc.Register(ctx, registerInput("doc@example.com", "123456"))
	require.NoError(t, err)
	userID := result.User.ID

	stored, err := env.users.GetByID(ctx, userID)
	require.NoError(t, err)
	token := *stored.VerificationToken

	// Wrong token is rejected
	assert.ErrorIs(t, env.svc.AdminVerify(ctx, userID, "not-the-token"), domain.ErrInvalidOrExpiredToken)

	// Correct token verifies and clears itself
	require.NoError(t, env.svc.AdminVerify(ctx, userID, token))
	stored, err = env.users.GetByID(ctx, userID)
	require.NoError(t, err)
	assert.True(t, stored.IsVerified)
	assert.Nil(t, stored.VerificationToken)
	assert.Nil(t, stored.VerificationTokenExpires)

	// Replaying the link fails rather than silently re-verifying
	assert.ErrorIs(t, env.svc.AdminVerify(ctx, userID, token), domain.ErrInvalidOrExpiredToken)

	// Unknown user looks identical to a bad token
	assert.ErrorIs(t, env.svc.AdminVerify(ctx, 9999, token), domain.ErrInvalidOrExpiredToken)
}

func TestAdminVerify_ExpiredToken(t *testing.T) {
	env := newAuthTestEnv(t)
	ctx := context.Background()

	result, err := env.svc.Register(ctx, registerInput("doc@example.com", "123456"))
	require.NoError(t, err)

	stored, err := env.users.GetByID(ctx, result.User.ID)
	require.NoError(t, err)
	token := *stored.VerificationToken
	past := time.Now().Add(-time.Minute)
	stored.VerificationTokenExpires = &past
	require.NoError(t, env.users.Update(ctx, stored))

	assert.ErrorIs(t, env.svc.AdminVerify(ctx, result.User.ID, token), domain.ErrInvalidOrExpiredToken)
}

func TestLogin(t *testing.T) {
	env := newAuthTestEnv(t)
	ctx := context.Background()

	result, err := env.svc.Register(ctx, registerInput("doc@example.com", "123456"))
	require.NoError(t, err)
	userID := result.User.ID

	// Before admin verification the login is refused with a distinct error
	_, err = env.svc.Login(ctx, &LoginInput{Email: "doc@example.com", Password: "correct-horse-battery"})
	assert.ErrorIs(t, err, domain.ErrNotVerified)

	env.verify(t, userID)

	// Unknown email and wrong password return the same error
	_, err = env.svc.Login(ctx, &LoginInput{Email: "nobody@example.com", Password: "whatever-here"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	_, err = env.svc.Login(ctx, &LoginInput{Email: "doc@example.com", Password: "wrong-password"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	// Correct credentials open an MFA handshake, not a session
	handshake, err := env.svc.Login(ctx, &LoginInput{Email: "doc@example.com", Password: "correct-horse-battery"})
	require.NoError(t, err)
	assert.NotEmpty(t, handshake)

	gotID, ok, err := env.sessions.Get(ctx, handshake)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, userID, gotID)
}

func TestVerifyMFA(t *testing.T) {
	env := newAuthTestEnv(t)
	ctx := context.Background()

	result, err := env.svc.Register(ctx, registerInput("doc@example.com", "123456"))
	require.NoError(t, err)
	userID := result.User.ID
	env.verify(t, userID)

	handshake, err := env.svc.Login(ctx, &LoginInput{Email: "doc@example.com", Password: "correct-horse-battery"})
	require.NoError(t, err)

	// A wrong code fails but leaves the handshake alive for a retry
	_, err = env.svc.VerifyMFA(ctx, handshake, "000000")
	assert.ErrorIs(t, err, domain.ErrInvalidTOTP)
	_, ok, err := env.sessions.Get(ctx, handshake)
	require.NoError(t, err)
	assert.True(t, ok, "handshake must survive a wrong code")

	// The right code issues tokens and marks MFA enabled
	auth, err := env.svc.VerifyMFA(ctx, handshake, env.totpCode(t, userID))
	require.NoError(t, err)
	assert.NotEmpty(t, auth.AccessToken)
	assert.NotEmpty(t, auth.RefreshToken)
	assert.Equal(t, userID, auth.User.ID)

	stored, err := env.users.GetByID(ctx, userID)
	require.NoError(t, err)
	assert.True(t, stored.MFAEnabled)

	// The handshake is single-use
	_, err = env.svc.VerifyMFA(ctx, handshake, env.totpCode(t, userID))
	assert.ErrorIs(t, err, domain.ErrInvalidOrExpiredSession)

	// A made-up handshake is rejected
	_, err = env.svc.VerifyMFA(ctx, "not-a-handshake", env.totpCode(t, userID))
	assert.ErrorIs(t, err, domain.ErrInvalidOrExpiredSession)
}

func TestRefreshToken_Rotation(t *testing.T) {
	env := newAuthTestEnv(t)
	ctx := context.Background()

	result, err := env.svc.Register(ctx, registerInput("doc@example.com", "123456"))
	require.NoError(t, err)
	env.verify(t, result.User.ID)

	handshake, err := env.svc.Login(ctx, &LoginInput{Email: "doc@example.com", Password: "correct-horse-battery"})
	require.NoError(t, err)
	auth, err := env.svc.VerifyMFA(ctx, handshake, env.totpCode(t, result.User.ID))
	require.NoError(t, err)

	// A valid refresh token yields a new pair
	rotated, err := env.svc.RefreshToken(ctx, auth.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, rotated.AccessToken)
	assert.NotEqual(t, auth.RefreshToken, rotated.RefreshToken)

	// The old refresh token was revoked by the rotation
	_, err = env.svc.RefreshToken(ctx, auth.RefreshToken)
	assert.ErrorIs(t, err, domain.ErrInvalidOrExpiredToken)

	// The new one still works
	_, err = env.svc.RefreshToken(ctx, rotated.RefreshToken)
	assert.NoError(t, err)

	// Garbage is rejected outright
	_, err = env.svc.RefreshToken(ctx, "not-a-jwt")
	assert.ErrorIs(t, err, domain.ErrInvalidOrExpiredToken)
}

func TestLogout(t *testing.T) {
	env := newAuthTestEnv(t)
	ctx := context.Background()

	result, err := env.svc.Register(ctx, registerInput("doc@example.com", "123456"))
	require.NoError(t, err)
	env.verify(t, result.User.ID)

	handshake, err := env.svc.Login(ctx, &LoginInput{Email: "doc@example.com", Password: "correct-horse-battery"})
	require.NoError(t, err)
	auth, err := env.svc.VerifyMFA(ctx, handshake, env.totpCode(t, result.User.ID))
	require.NoError(t, err)

	require.NoError(t, env.svc.Logout(ctx, auth.RefreshToken))

	// A revoked token can no longer be refreshed
	_, err = env.svc.RefreshToken(ctx, auth.RefreshToken)
	assert.ErrorIs(t, err, domain.ErrInvalidOrExpiredToken)

	// Logging out again, or with garbage, is a quiet no-op
	assert.NoError(t, env.svc.Logout(ctx, auth.RefreshToken))
	assert.NoError(t, env.svc.Logout(ctx, ""))
	assert.NoError(t, env.svc.Logout(ctx, "never-issued"))
}

func TestLogoutAll(t *testing.T) {
	env := newAuthTestEnv(t)
	ctx := context.Background()

	result, err := env.svc.Register(ctx, registerInput("doc@example.com", "123456"))
	require.NoError(t, err)
	env.verify(t, result.User.ID)

	login := func() *AuthResponse {
		handshake, err := env.svc.Login(ctx, &LoginInput{Email: "doc@example.com", Password: "correct-horse-battery"})
		require.NoError(t, err)
		auth, err := env.svc.VerifyMFA(ctx, handshake, env.totpCode(t, result.User.ID))
		require.NoError(t, err)
		return auth
	}

	first := login()
	second := login()

	require.NoError(t, env.svc.LogoutAll(ctx, result.User.ID))

	_, err = env.svc.RefreshToken(ctx, first.RefreshToken)
	assert.ErrorIs(t, err, domain.ErrInvalidOrExpiredToken)
	_, err = env.svc.RefreshToken(ctx, second.RefreshToken)
	assert.ErrorIs(t, err, domain.ErrInvalidOrExpiredToken)
}
