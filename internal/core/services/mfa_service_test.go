package services

import (
	"strings"
	"testing"
	"time"

	"health-service-api/internal/config"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMFAService() *MFAService {
	return NewMFAService(&config.MFAConfig{Issuer: "Health-service.click"})
}

func TestGenerateSecret(t *testing.T) {
	svc := newTestMFAService()

	secret, uri, err := svc.GenerateSecret("a@x.com")
	require.NoError(t, err)
	assert.NotEmpty(t, secret)
	assert.True(t, strings.HasPrefix(uri, "otpauth://totp/"))
	assert.Contains(t, uri, "Health-service.click")

	// unique per principal
	second, _, err := svc.GenerateSecret("a@x.com")
	require.NoError(t, err)
	assert.NotEqual(t, secret, second)
}

func TestProvisioningURI(t *testing.T) {
	svc := newTestMFAService()

	uri := svc.ProvisioningURI("a@x.com", "JBSWY3DPEHPK3PXP")
	assert.True(t, strings.HasPrefix(uri, "otpauth://totp/"))
	assert.Contains(t, uri, "secret=JBSWY3DPEHPK3PXP")
	assert.Contains(t, uri, "issuer=Health-service.click")
}

func TestQRCode(t *testing.T) {
	svc := newTestMFAService()

	png, err := svc.QRCode(svc.ProvisioningURI("a@x.com", "JBSWY3DPEHPK3PXP"))
	require.NoError(t, err)
	assert.Equal(t, []byte("\x89PNG"), png[:4])
}

func TestVerify_ValidCode(t *testing.T) {
	svc := newTestMFAService()
	secret, _, err := svc.GenerateSecret("a@x.com")
	require.NoError(t, err)

	code, err := totp.GenerateCode(secret, time.Now())
	require.NoError(t, err)

	assert.True(t, svc.Verify(code, secret))
}

func TestVerify_DriftWindow(t *testing.T) {
	svc := newTestMFAService()
	secret, _, err := svc.GenerateSecret("a@x.com")
	require.NoError(t, err)

	// codes from the adjacent time steps are accepted
	previous, err := totp.GenerateCode(secret, time.Now().Add(-30*time.Second))
	require.NoError(t, err)
	next, err := totp.GenerateCode(secret, time.Now().Add(30*time.Second))
	require.NoError(t, err)
	assert.True(t, svc.Verify(previous, secret))
	assert.True(t, svc.Verify(next, secret))

	// two steps out is rejected
	stale, err := totp.GenerateCodeCustom(secret, time.Now().Add(-90*time.Second), totp.ValidateOpts{
		Period:    30,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	require.NoError(t, err)
	assert.False(t, svc.Verify(stale, secret))
}

func TestVerify_Malformed(t *testing.T) {
	svc := newTestMFAService()
	secret, _, err := svc.GenerateSecret("a@x.com")
	require.NoError(t, err)

	assert.False(t, svc.Verify("", secret))
	assert.False(t, svc.Verify("abc123", secret))
	assert.False(t, svc.Verify("12345", secret)) // wrong length
	assert.False(t, svc.Verify("123456", ""))    // missing secret
}
