package application_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ineedllc/ineed-api/config"
	"github.com/ineedllc/ineed-api/internal/application"
	"github.com/ineedllc/ineed-api/internal/domain/entity"
	"github.com/ineedllc/ineed-api/internal/testutil"
	"github.com/ineedllc/ineed-api/pkg/helpers"
)

func testPolicy() config.OTPPolicy {
	return config.OTPPolicy{
		TTL:            10 * time.Minute,
		MaxAttempts:    5,
		ResendCooldown: 30 * time.Second,
		HourlyCap:      5,
		ResetTokenTTL:  15 * time.Minute,
	}
}

func newOTPService() (*application.OTPService, *testutil.OTPRepo, *testutil.FixedClock) {
	clock := testutil.NewFixedClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	repo := testutil.NewOTPRepo()
	svc := application.NewOTPService(repo, clock, testPolicy(), helpers.NewLogger("test", "test"))
	return svc, repo, clock
}

func TestIssueCreatesSixDigitCode(t *testing.T) {
	svc, _, clock := newOTPService()

	otp, err := svc.Issue(context.Background(), "u1", "A@X.com", entity.PurposeEmailVerify)
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^\d{6}$`), otp.Code)
	assert.Equal(t, "a@x.com", otp.Email)
	assert.Equal(t, 0, otp.AttemptCount)
	assert.False(t, otp.IsVerified)
	assert.Equal(t, clock.Now().Add(10*time.Minute), otp.ExpiresAt)
}

func TestVerifyHappyPathConsumesCode(t *testing.T) {
	svc, _, _ := newOTPService()
	ctx := context.Background()

	otp, err := svc.Issue(ctx, "u1", "a@x.com", entity.PurposeEmailVerify)
	require.NoError(t, err)

	got, err := svc.Verify(ctx, "u1", "a@x.com", entity.PurposeEmailVerify, otp.Code)
	require.NoError(t, err)
	assert.True(t, got.IsVerified)

	// the verified code is no longer active
	_, err = svc.Verify(ctx, "u1", "a@x.com", entity.PurposeEmailVerify, otp.Code)
	assert.ErrorIs(t, err, application.ErrOTPNotFound)
}

func TestVerifyWrongCode(t *testing.T) {
	svc, _, _ := newOTPService()
	ctx := context.Background()

	otp, err := svc.Issue(ctx, "u1", "a@x.com", entity.PurposeEmailVerify)
	require.NoError(t, err)

	wrong := "000000"
	if otp.Code == wrong {
		wrong = "000001"
	}
	_, err = svc.Verify(ctx, "u1", "a@x.com", entity.PurposeEmailVerify, wrong)
	assert.ErrorIs(t, err, application.ErrInvalidOTP)

	// the right code still works afterwards
	_, err = svc.Verify(ctx, "u1", "a@x.com", entity.PurposeEmailVerify, otp.Code)
	assert.NoError(t, err)
}

func TestVerifyLockoutAfterMaxAttempts(t *testing.T) {
	svc, _, _ := newOTPService()
	ctx := context.Background()

	otp, err := svc.Issue(ctx, "u1", "a@x.com", entity.PurposeEmailVerify)
	require.NoError(t, err)

	wrong := "000000"
	if otp.Code == wrong {
		wrong = "000001"
	}
	for i := 0; i < 5; i++ {
		_, err = svc.Verify(ctx, "u1", "a@x.com", entity.PurposeEmailVerify, wrong)
		assert.ErrorIs(t, err, application.ErrInvalidOTP)
	}

	// 6th attempt is refused before the comparison, even with the right code
	_, err = svc.Verify(ctx, "u1", "a@x.com", entity.PurposeEmailVerify, otp.Code)
	assert.ErrorIs(t, err, application.ErrTooManyAttempts)
}

func TestVerifyExpiredCode(t *testing.T) {
	svc, _, clock := newOTPService()
	ctx := context.Background()

	otp, err := svc.Issue(ctx, "u1", "a@x.com", entity.PurposeEmailVerify)
	require.NoError(t, err)

	clock.Advance(10 * time.Minute)
	_, err = svc.Verify(ctx, "u1", "a@x.com", entity.PurposeEmailVerify, otp.Code)
	assert.ErrorIs(t, err, application.ErrOTPExpired)
}

func TestVerifyPurposeIsolation(t *testing.T) {
	svc, _, _ := newOTPService()
	ctx := context.Background()

	otp, err := svc.Issue(ctx, "u1", "a@x.com", entity.PurposeEmailVerify)
	require.NoError(t, err)

	_, err = svc.Verify(ctx, "u1", "a@x.com", entity.PurposePasswordReset, otp.Code)
	assert.ErrorIs(t, err, application.ErrOTPNotFound)
}

func TestResendCooldown(t *testing.T) {
	svc, _, clock := newOTPService()
	ctx := context.Background()

	_, err := svc.Issue(ctx, "u1", "a@x.com", entity.PurposeEmailVerify)
	require.NoError(t, err)

	_, err = svc.Resend(ctx, "u1", "a@x.com", entity.PurposeEmailVerify)
	assert.ErrorIs(t, err, application.ErrResendTooSoon)

	clock.Advance(29 * time.Second)
	_, err = svc.Resend(ctx, "u1", "a@x.com", entity.PurposeEmailVerify)
	assert.ErrorIs(t, err, application.ErrResendTooSoon)

	clock.Advance(time.Second)
	_, err = svc.Resend(ctx, "u1", "a@x.com", entity.PurposeEmailVerify)
	assert.NoError(t, err)
}

func TestResendHourlyCap(t *testing.T) {
	svc, _, clock := newOTPService()
	ctx := context.Background()

	_, err := svc.Issue(ctx, "u1", "a@x.com", entity.PurposeEmailVerify)
	require.NoError(t, err)

	// four resends bring the rolling-hour total to the cap of five
	for i := 0; i < 4; i++ {
		clock.Advance(31 * time.Second)
		_, err = svc.Resend(ctx, "u1", "a@x.com", entity.PurposeEmailVerify)
		require.NoError(t, err)
	}

	clock.Advance(31 * time.Second)
	_, err = svc.Resend(ctx, "u1", "a@x.com", entity.PurposeEmailVerify)
	assert.ErrorIs(t, err, application.ErrResendLimitExceeded)

	// once the first issuance falls out of the window, resends resume
	clock.Advance(time.Hour)
	_, err = svc.Resend(ctx, "u1", "a@x.com", entity.PurposeEmailVerify)
	assert.NoError(t, err)
}

func TestResendCapIsPerPurpose(t *testing.T) {
	svc, _, clock := newOTPService()
	ctx := context.Background()

	_, err := svc.Issue(ctx, "u1", "a@x.com", entity.PurposeEmailVerify)
	require.NoError(t, err)
	for i := 0; i < 4; i++ {
		clock.Advance(31 * time.Second)
		_, err = svc.Resend(ctx, "u1", "a@x.com", entity.PurposeEmailVerify)
		require.NoError(t, err)
	}

	// issuing for the other purpose is unaffected
	_, err = svc.Issue(ctx, "u1", "a@x.com", entity.PurposePasswordReset)
	assert.NoError(t, err)
	clock.Advance(31 * time.Second)
	_, err = svc.Resend(ctx, "u1", "a@x.com", entity.PurposePasswordReset)
	assert.NoError(t, err)
}

func TestVerifyTargetsLatestActiveCode(t *testing.T) {
	svc, _, clock := newOTPService()
	ctx := context.Background()

	first, err := svc.Issue(ctx, "u1", "a@x.com", entity.PurposeEmailVerify)
	require.NoError(t, err)
	clock.Advance(31 * time.Second)
	second, err := svc.Resend(ctx, "u1", "a@x.com", entity.PurposeEmailVerify)
	require.NoError(t, err)

	if first.Code != second.Code {
		_, err = svc.Verify(ctx, "u1", "a@x.com", entity.PurposeEmailVerify, first.Code)
		assert.ErrorIs(t, err, application.ErrInvalidOTP)
	}
	_, err = svc.Verify(ctx, "u1", "a@x.com", entity.PurposeEmailVerify, second.Code)
	assert.NoError(t, err)
}
