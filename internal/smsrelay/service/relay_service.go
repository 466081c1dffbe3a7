package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang-futures-bot/internal/entity"
	"golang-futures-bot/internal/smsrelay/dto"
	"golang-futures-bot/internal/smsrelay/repository"
	"golang-futures-bot/pkg/logger"
	"golang-futures-bot/pkg/telegram"

	"github.com/robfig/cron/v3"
	"golang.org/x/time/rate"
)

// RelayService polls the SMS API, deduplicates messages, and fans unseen
// ones out to every registered destination.
type RelayService struct {
	smsAPI       repository.SmsAPIRepository
	seen         repository.SeenMessageRepository
	destinations repository.DestinationRepository
	notifier     telegram.Notifier
	logger       *logger.Logger

	records      int
	pollInterval string
	limiter      *rate.Limiter
	cron         *cron.Cron

	mu            sync.Mutex
	initialized   bool
	lastConnected bool
	lastCycle     time.Time
}

// NewRelayService creates the relay. forwardDelay paces the fan-out so the
// chat transport is not rate-limited.
func NewRelayService(smsAPI repository.SmsAPIRepository, seen repository.SeenMessageRepository, destinations repository.DestinationRepository, notifier telegram.Notifier, log *logger.Logger, records int, pollInterval string, forwardDelay time.Duration) *RelayService {
	return &RelayService{
		smsAPI:       smsAPI,
		seen:         seen,
		destinations: destinations,
		notifier:     notifier,
		logger:       log,
		records:      records,
		pollInterval: pollInterval,
		limiter:      rate.NewLimiter(rate.Every(forwardDelay), 1),
		// Failures before the first successful fetch still announce a
		// disconnect; only repeats are deduplicated.
		lastConnected: true,
	}
}

// Start schedules the poll cycle. Overlapping cycles are skipped.
func (s *RelayService) Start(ctx context.Context) error {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(fmt.Sprintf("@every %s", s.pollInterval), func() {
		s.RunCycle(ctx)
	}); err != nil {
		return fmt.Errorf("failed to schedule relay cycle: %w", err)
	}
	c.Start()
	s.cron = c
	return nil
}

// Stop halts the poll schedule and waits for a running cycle to finish.
func (s *RelayService) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
}

// RunCycle performs one fetch/forward pass.
func (s *RelayService) RunCycle(ctx context.Context) {
	records, err := s.smsAPI.GetRecentMessages(ctx, s.records)
	if err != nil {
		s.logger.Error("SMS fetch failed", logger.ErrorField(err))
		s.setConnected(ctx, false)
		return
	}
	s.setConnected(ctx, true)

	s.mu.Lock()
	s.lastCycle = time.Now()
	initialized := s.initialized
	if !initialized {
		s.initialized = true
	}
	s.mu.Unlock()

	// The very first successful fetch only marks the backlog as seen, so a
	// restart never replays historical messages.
	if !initialized {
		for _, rec := range records {
			s.seen.MarkSeen(ctx, rec.DedupKey())
		}
		if err := s.seen.Flush(ctx); err != nil {
			s.logger.Error("Failed to persist seen set", logger.ErrorField(err))
		}
		s.logger.Info("Initialized seen set", logger.IntField("records", len(records)))
		return
	}

	// The API returns the newest records first; forward oldest-first.
	forwarded := 0
	for i := len(records) - 1; i >= 0; i-- {
		rec := records[i]
		key := rec.DedupKey()
		if s.seen.Contains(ctx, key) {
			continue
		}
		s.seen.MarkSeen(ctx, key)
		s.forward(ctx, rec)
		forwarded++
	}

	if forwarded > 0 {
		if err := s.seen.Flush(ctx); err != nil {
			s.logger.Error("Failed to persist seen set", logger.ErrorField(err))
		}
		s.logger.Info("Forwarded messages", logger.IntField("count", forwarded))
	}
}

// forward sends one message to every registered destination. A failing
// destination is logged and skipped; it never blocks the others.
func (s *RelayService) forward(ctx context.Context, rec entity.SmsMessage) {
	otp, _ := ExtractOTP(rec.Message)
	text := telegram.FormatSmsForward(rec, otp)

	for _, dest := range s.destinations.List(ctx) {
		if err := s.limiter.Wait(ctx); err != nil {
			return
		}
		if err := s.notifier.SendMessageTo(dest, text); err != nil {
			s.logger.Error("Failed to forward message",
				logger.ErrorField(err),
				logger.StringField("destination", dest))
		}
	}
}

// setConnected records a connectivity transition and notifies all
// destinations exactly once per transition.
func (s *RelayService) setConnected(ctx context.Context, connected bool) {
	s.mu.Lock()
	changed := s.lastConnected != connected
	s.lastConnected = connected
	s.mu.Unlock()

	if !changed {
		return
	}

	text := telegram.FormatConnectionNotice(connected)
	for _, dest := range s.destinations.List(ctx) {
		if err := s.notifier.SendMessageTo(dest, text); err != nil {
			s.logger.Error("Failed to send connectivity notice",
				logger.ErrorField(err),
				logger.StringField("destination", dest))
		}
	}
}

// Clear empties the seen set and re-arms the initialization latch, so the
// next successful fetch marks the current backlog seen without forwarding.
func (s *RelayService) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.initialized = false
	s.mu.Unlock()

	return s.seen.Clear(ctx)
}

// Status returns a read-only snapshot for the HTTP API and /status command.
func (s *RelayService) Status(ctx context.Context) dto.RelayStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := dto.RelayStatus{
		Connected:    s.lastConnected,
		Initialized:  s.initialized,
		SeenCount:    s.seen.Count(ctx),
		Destinations: len(s.destinations.List(ctx)),
	}
	if !s.lastCycle.IsZero() {
		status.LastCycleTime = s.lastCycle.Format(time.RFC3339)
	}
	return status
}
