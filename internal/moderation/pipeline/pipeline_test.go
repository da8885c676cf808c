package pipeline_test

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonokeeton/g4yp1g-bot/internal/domain/models"
	"github.com/jonokeeton/g4yp1g-bot/internal/moderation/mute"
	"github.com/jonokeeton/g4yp1g-bot/internal/moderation/pipeline"
	"github.com/jonokeeton/g4yp1g-bot/internal/moderation/settings"
	"github.com/jonokeeton/g4yp1g-bot/internal/moderation/spam"
	"github.com/jonokeeton/g4yp1g-bot/internal/moderation/stats"
	"github.com/jonokeeton/g4yp1g-bot/internal/moderation/words"
	"github.com/jonokeeton/g4yp1g-bot/pkg"
)

type recordingAudit struct {
	mu      sync.Mutex
	records []models.ActionRecord
}

func (a *recordingAudit) PublishAction(_ context.Context, record models.ActionRecord) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.records = append(a.records, record)

	return nil
}

type fixture struct {
	pipeline *pipeline.Pipeline
	store    *settings.Store
	counters *stats.Counters
	audit    *recordingAudit
}

func newFixture() *fixture {
	store := settings.NewStore()
	counters := stats.NewCounters()
	audit := &recordingAudit{}

	p := pipeline.New(
		store,
		spam.NewDetector(),
		words.NewFilter(store),
		mute.NewManager(store),
		counters,
		audit,
		pkg.NewLogger(io.Discard),
	)

	return &fixture{
		pipeline: p,
		store:    store,
		counters: counters,
		audit:    audit,
	}
}

func groupEvent(userID int64, text string, now time.Time) *models.MessageEvent {
	return &models.MessageEvent{
		ChatType:      models.ChatTypeGroup,
		ChatID:        100,
		MessageID:     1,
		UserID:        userID,
		UserFirstName: "Tester",
		Text:          text,
		Time:          now,
	}
}

func privateEvent(userID int64, text string, now time.Time) *models.MessageEvent {
	return &models.MessageEvent{
		ChatType:      models.ChatTypePrivate,
		ChatID:        userID,
		MessageID:     1,
		UserID:        userID,
		UserFirstName: "Tester",
		Text:          text,
		Time:          now,
	}
}

func TestPipeline_PrivateEcho(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	decision := f.pipeline.HandleMessage(ctx, privateEvent(1, "hello", time.Now()))

	assert.Equal(t, models.DecisionEchoReply, decision.Kind)
	assert.Equal(t, "hello", decision.Reply)
	assert.Equal(t, int64(1), f.counters.MessageCount())
	assert.Equal(t, 1, f.counters.ActiveUserCount())
}

func TestPipeline_PrivateEcho_ActiveUsersGrowOnce(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.pipeline.HandleMessage(ctx, privateEvent(1, "hello", time.Now()))
	f.pipeline.HandleMessage(ctx, privateEvent(1, "again", time.Now()))

	assert.Equal(t, int64(2), f.counters.MessageCount())
	assert.Equal(t, 1, f.counters.ActiveUserCount())
}

func TestPipeline_PrivateStart(t *testing.T) {
	f := newFixture()

	decision := f.pipeline.HandleMessage(context.Background(), privateEvent(1, "/start", time.Now()))

	assert.Equal(t, models.DecisionReply, decision.Kind)
	assert.Contains(t, decision.Reply, "G4yp1gbot")
}

func TestPipeline_GroupCleanMessage(t *testing.T) {
	f := newFixture()

	decision := f.pipeline.HandleMessage(context.Background(), groupEvent(1, "hello everyone", time.Now()))

	assert.Equal(t, models.DecisionIgnore, decision.Kind)
	assert.Equal(t, int64(1), f.counters.MessageCount())
	assert.Equal(t, 1, f.store.Count())
}

func TestPipeline_GroupRateLimitBurst(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	now := time.Now()

	for i := 0; i < 5; i++ {
		decision := f.pipeline.HandleMessage(ctx, groupEvent(1, fmt.Sprintf("msg %d", i), now.Add(time.Duration(i)*time.Second)))
		require.Equal(t, models.DecisionIgnore, decision.Kind)
	}

	decision := f.pipeline.HandleMessage(ctx, groupEvent(1, "msg 6", now.Add(6*time.Second)))

	assert.Equal(t, models.DecisionDeleteAndWarn, decision.Kind)
	assert.Equal(t, "spam: rate_limit", decision.Reason)

	// Первые пять учтены, шестое нет.
	assert.Equal(t, int64(5), f.counters.MessageCount())

	// Дальше пользователь замьючен: всё удаляется молча.
	decision = f.pipeline.HandleMessage(ctx, groupEvent(1, "completely innocent", now.Add(7*time.Second)))
	assert.Equal(t, models.DecisionDeleteOnly, decision.Kind)
}

func TestPipeline_MuteExpiresNaturally(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	now := time.Now()

	for i := 0; i < 6; i++ {
		f.pipeline.HandleMessage(ctx, groupEvent(1, "burst", now))
	}

	afterMute := now.Add(mute.Duration)

	decision := f.pipeline.HandleMessage(ctx, groupEvent(1, "hello again", afterMute))

	assert.Equal(t, models.DecisionIgnore, decision.Kind)
}

func TestPipeline_GroupCapsSpam(t *testing.T) {
	f := newFixture()

	decision := f.pipeline.HandleMessage(context.Background(), groupEvent(1, "BUY MY COURSE NOW", time.Now()))

	assert.Equal(t, models.DecisionDeleteAndWarn, decision.Kind)
	assert.Equal(t, "spam: caps_spam", decision.Reason)
}

func TestPipeline_GroupBannedWord(t *testing.T) {
	f := newFixture()

	decision := f.pipeline.HandleMessage(context.Background(), groupEvent(1, "buy spammy stuff", time.Now()))

	assert.Equal(t, models.DecisionDeleteAndWarn, decision.Kind)
	assert.Equal(t, "banned word", decision.Reason)

	group, ok := f.store.Get(100)
	require.True(t, ok)

	snapshot := group.Snapshot()
	require.Len(t, snapshot.ModerationLog, 1)
	assert.Equal(t, models.ActionMute, snapshot.ModerationLog[0].Action)
	assert.Equal(t, "banned word: spam", snapshot.ModerationLog[0].Reason)
}

func TestPipeline_SpamCheckedBeforeBannedWord(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	now := time.Now()

	for i := 0; i < 5; i++ {
		f.pipeline.HandleMessage(ctx, groupEvent(1, "hello", now))
	}

	// Текст содержит запрещённое слово, но сначала срабатывает rate-limit.
	decision := f.pipeline.HandleMessage(ctx, groupEvent(1, "spam offer", now))

	assert.Equal(t, "spam: rate_limit", decision.Reason)
}

func TestPipeline_SpamFilterToggleOff(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	now := time.Now()

	off := false
	f.store.GetOrCreate(100).ApplyPatch(&models.GroupSettingsPatch{EnableSpamFilter: &off})

	for i := 0; i < 10; i++ {
		decision := f.pipeline.HandleMessage(ctx, groupEvent(1, "burst", now))
		assert.Equal(t, models.DecisionIgnore, decision.Kind)
	}
}

func TestPipeline_ModerationToggleOff(t *testing.T) {
	f := newFixture()

	off := false
	f.store.GetOrCreate(100).ApplyPatch(&models.GroupSettingsPatch{EnableModeration: &off})

	decision := f.pipeline.HandleMessage(context.Background(), groupEvent(1, "buy spammy stuff", time.Now()))

	assert.Equal(t, models.DecisionIgnore, decision.Kind)
}

func TestPipeline_DebugPreemptsEverything(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	now := time.Now()

	// Пользователь замьючен в группе.
	for i := 0; i < 6; i++ {
		f.pipeline.HandleMessage(ctx, groupEvent(1, "burst", now))
	}

	decision := f.pipeline.HandleMessage(ctx, groupEvent(1, "/debug", now))

	assert.Equal(t, models.DecisionDebugReply, decision.Kind)
	assert.Contains(t, decision.Reply, "user=1")
	assert.Contains(t, decision.Reply, "100")

	decision = f.pipeline.HandleMessage(ctx, privateEvent(1, "/debug", now))
	assert.Equal(t, models.DecisionDebugReply, decision.Kind)
}

func TestPipeline_MutedDeleteIsSilent(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	now := time.Now()

	f.pipeline.HandleMessage(ctx, groupEvent(1, "buy spammy stuff", now))

	before := f.counters.MessageCount()

	decision := f.pipeline.HandleMessage(ctx, groupEvent(1, "hello", now.Add(time.Second)))

	assert.Equal(t, models.DecisionDeleteOnly, decision.Kind)
	assert.Empty(t, decision.Reply)
	assert.Equal(t, before, f.counters.MessageCount())
}

func TestPipeline_AuditReceivesActions(t *testing.T) {
	f := newFixture()

	f.pipeline.HandleMessage(context.Background(), groupEvent(1, "buy spammy stuff", time.Now()))

	// Публикация асинхронная.
	require.Eventually(t, func() bool {
		f.audit.mu.Lock()
		defer f.audit.mu.Unlock()

		return len(f.audit.records) == 1
	}, time.Second, 10*time.Millisecond)

	f.audit.mu.Lock()
	defer f.audit.mu.Unlock()

	assert.Equal(t, int64(100), f.audit.records[0].GroupID)
	assert.Equal(t, models.ActionMute, f.audit.records[0].Action)
}

func TestPipeline_NilAuditPublisher(t *testing.T) {
	store := settings.NewStore()

	p := pipeline.New(
		store,
		spam.NewDetector(),
		words.NewFilter(store),
		mute.NewManager(store),
		stats.NewCounters(),
		nil,
		pkg.NewLogger(io.Discard),
	)

	decision := p.HandleMessage(context.Background(), groupEvent(1, "buy spammy stuff", time.Now()))

	assert.Equal(t, models.DecisionDeleteAndWarn, decision.Kind)
}
