package services

import (
	"context"
	"log"
	"time"

	"health-service-api/internal/adapters/persistence/repositories"

	"github.com/robfig/cron/v3"
)

// unverifiedRetention is how long an unverified registration is kept before
// the nightly sweep removes it. Longer than the verification token TTL so an
// admin who missed the email window still sees the pending row.
const unverifiedRetention = 7 * 24 * time.Hour

// CronService runs scheduled maintenance jobs
type CronService struct {
	cron             *cron.Cron
	refreshTokenRepo repositories.RefreshTokenRepository
	userRepo         repositories.UserRepository
}

// NewCronService creates a new cron service
func NewCronService(
	refreshTokenRepo repositories.RefreshTokenRepository,
	userRepo repositories.UserRepository,
) *CronService {
	return &CronService{
		cron:             cron.New(),
		refreshTokenRepo: refreshTokenRepo,
		userRepo:         userRepo,
	}
}

// Start registers and starts the scheduled jobs
func (s *CronService) Start() error {
	// Purge expired refresh tokens every night at 03:00
	if _, err := s.cron.AddFunc("0 3 * * *", s.purgeExpiredTokens); err != nil {
		return err
	}

	// Drop registrations the admin never verified, nightly at 03:30
	if _, err := s.cron.AddFunc("30 3 * * *", s.purgeStaleRegistrations); err != nil {
		return err
	}

	s.cron.Start()
	log.Println("✅ Cron jobs started")
	return nil
}

// Stop stops the cron scheduler and waits for running jobs
func (s *CronService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("✅ Cron jobs stopped")
}

func (s *CronService) purgeExpiredTokens() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	n, err := s.refreshTokenRepo.DeleteExpired(ctx)
	if err != nil {
		log.Printf("⚠️ Failed to purge expired refresh tokens: %v", err)
		return
	}
	log.Printf("✅ Purged %d expired refresh tokens", n)
}

func (s *CronService) purgeStaleRegistrations() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cutoff := time.Now().Add(-unverifiedRetention)
	n, err := s.userRepo.DeleteUnverifiedBefore(ctx, cutoff)
	if err != nil {
		log.Printf("⚠️ Failed to purge stale registrations: %v", err)
		return
	}
	if n > 0 {
		log.Printf("✅ Purged %d stale unverified registrations", n)
	}
}
