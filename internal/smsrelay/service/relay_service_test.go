package service

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"golang-futures-bot/internal/entity"
	"golang-futures-bot/internal/smsrelay/repository"
	"golang-futures-bot/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSmsAPI struct {
	mu      sync.Mutex
	records []entity.SmsMessage
	err     error
}

func (f *fakeSmsAPI) set(records []entity.SmsMessage, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = records
	f.err = err
}

func (f *fakeSmsAPI) GetRecentMessages(context.Context, int) ([]entity.SmsMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := make([]entity.SmsMessage, len(f.records))
	copy(out, f.records)
	return out, nil
}

type sentMessage struct {
	dest string
	text string
}

type fakeForwardNotifier struct {
	mu      sync.Mutex
	sent    []sentMessage
	failFor map[string]bool
}

func (f *fakeForwardNotifier) SendMessage(string) error { return nil }

func (f *fakeForwardNotifier) SendMessageUser(string, int64) error { return nil }

func (f *fakeForwardNotifier) SendMessageTo(dest string, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failFor[dest] {
		return errors.New("delivery failed")
	}
	f.sent = append(f.sent, sentMessage{dest: dest, text: text})
	return nil
}

func (f *fakeForwardNotifier) sentTo(dest string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, s := range f.sent {
		if s.dest == dest {
			out = append(out, s.text)
		}
	}
	return out
}

func (f *fakeForwardNotifier) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = nil
}

func sms(dt, num, body string) entity.SmsMessage {
	return entity.SmsMessage{Dt: dt, Num: num, Cli: "SENDER", Message: body}
}

func newTestRelay(t *testing.T) (*RelayService, *fakeSmsAPI, *fakeForwardNotifier, repository.SeenMessageRepository) {
	t.Helper()
	dir := t.TempDir()

	log, err := logger.New("error", "json")
	require.NoError(t, err)

	seen, err := repository.NewFileSeenRepository(filepath.Join(dir, "seen.json"))
	require.NoError(t, err)

	dests, err := repository.NewFileDestinationRepository(filepath.Join(dir, "destinations.json"), "111")
	require.NoError(t, err)
	require.NoError(t, dests.Add(context.Background(), "222"))

	api := &fakeSmsAPI{}
	notifier := &fakeForwardNotifier{}

	relay := NewRelayService(api, seen, dests, notifier, log, 10, "5s", time.Millisecond)
	return relay, api, notifier, seen
}

func TestRunCycle_InitializationLatch(t *testing.T) {
	relay, api, notifier, seen := newTestRelay(t)
	ctx := context.Background()

	api.set([]entity.SmsMessage{
		sms("2024-01-01 10:01", "+100", "old message one"),
		sms("2024-01-01 10:00", "+100", "old message two"),
	}, nil)

	relay.RunCycle(ctx)

	assert.Empty(t, notifier.sent, "backlog on the first fetch is never forwarded")
	assert.Equal(t, 2, seen.Count(ctx))
	assert.True(t, relay.Status(ctx).Initialized)
}

func TestRunCycle_DedupAcrossCycles(t *testing.T) {
	relay, api, notifier, _ := newTestRelay(t)
	ctx := context.Background()

	old := sms("2024-01-01 10:00", "+100", "old message")
	api.set([]entity.SmsMessage{old}, nil)
	relay.RunCycle(ctx)
	require.Empty(t, notifier.sent)

	// Same record again plus a new one; only the new one goes out, and a
	// third cycle with identical input forwards nothing.
	fresh := sms("2024-01-01 10:05", "+100", "fresh message")
	api.set([]entity.SmsMessage{fresh, old}, nil)
	relay.RunCycle(ctx)

	require.Len(t, notifier.sentTo("111"), 1)
	require.Len(t, notifier.sentTo("222"), 1)
	assert.Contains(t, notifier.sentTo("111")[0], "fresh message")

	notifier.reset()
	relay.RunCycle(ctx)
	assert.Empty(t, notifier.sent)
}

func TestRunCycle_ForwardsOldestFirst(t *testing.T) {
	relay, api, notifier, _ := newTestRelay(t)
	ctx := context.Background()

	api.set(nil, nil)
	relay.RunCycle(ctx) // arm the latch on an empty inbox

	// Newest first, as the API returns them.
	api.set([]entity.SmsMessage{
		sms("2024-01-01 10:05", "+100", "second"),
		sms("2024-01-01 10:00", "+100", "first"),
	}, nil)
	relay.RunCycle(ctx)

	texts := notifier.sentTo("111")
	require.Len(t, texts, 2)
	assert.Contains(t, texts[0], "first")
	assert.Contains(t, texts[1], "second")
}

func TestRunCycle_ConnectivityTransitions(t *testing.T) {
	relay, api, notifier, _ := newTestRelay(t)
	ctx := context.Background()

	api.set(nil, errors.New("timeout"))
	relay.RunCycle(ctx)

	// One disconnected notice per destination, once per transition.
	require.Len(t, notifier.sentTo("111"), 1)
	assert.Contains(t, notifier.sentTo("111")[0], "disconnected")
	assert.False(t, relay.Status(ctx).Connected)

	notifier.reset()
	relay.RunCycle(ctx)
	assert.Empty(t, notifier.sent, "repeated failures stay silent")

	api.set(nil, nil)
	relay.RunCycle(ctx)
	require.Len(t, notifier.sentTo("111"), 1)
	assert.Contains(t, notifier.sentTo("111")[0], "reconnected")
	assert.True(t, relay.Status(ctx).Connected)

	notifier.reset()
	relay.RunCycle(ctx)
	assert.Empty(t, notifier.sent, "repeated successes stay silent")
}

func TestRunCycle_DestinationFailureIsIsolated(t *testing.T) {
	relay, api, notifier, _ := newTestRelay(t)
	ctx := context.Background()

	api.set(nil, nil)
	relay.RunCycle(ctx)

	notifier.failFor = map[string]bool{"111": true}
	api.set([]entity.SmsMessage{sms("2024-01-01 10:05", "+100", "hello")}, nil)
	relay.RunCycle(ctx)

	assert.Empty(t, notifier.sentTo("111"))
	require.Len(t, notifier.sentTo("222"), 1)
}

func TestClear_RearmsInitializationLatch(t *testing.T) {
	relay, api, notifier, seen := newTestRelay(t)
	ctx := context.Background()

	record := sms("2024-01-01 10:00", "+100", "message")
	api.set([]entity.SmsMessage{record}, nil)
	relay.RunCycle(ctx)
	require.Equal(t, 1, seen.Count(ctx))

	require.NoError(t, relay.Clear(ctx))
	assert.Equal(t, 0, seen.Count(ctx))
	assert.False(t, relay.Status(ctx).Initialized)

	// After a clear the same record is treated as backlog again: marked
	// seen, not forwarded.
	relay.RunCycle(ctx)
	assert.Empty(t, notifier.sent)
	assert.Equal(t, 1, seen.Count(ctx))
}

func TestForward_IncludesExtractedCode(t *testing.T) {
	relay, api, notifier, _ := newTestRelay(t)
	ctx := context.Background()

	api.set(nil, nil)
	relay.RunCycle(ctx)

	api.set([]entity.SmsMessage{sms("2024-01-01 10:05", "+100", "Your code is 123456")}, nil)
	relay.RunCycle(ctx)

	texts := notifier.sentTo("111")
	require.Len(t, texts, 1)
	assert.Contains(t, texts[0], "123456")
	assert.Contains(t, texts[0], "Code:")
}
