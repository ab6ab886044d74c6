package broadcast_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/storefront/pkg/adapters/memory"
	"github.com/aretw0/storefront/pkg/broadcast"
	"github.com/aretw0/storefront/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const admin = int64(1)

func seedUsers(t *testing.T, records *memory.Records, n int) {
	t.Helper()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		require.NoError(t, records.AddUser(context.Background(), domain.User{
			ID: int64(100 + i), FirstName: "user", JoinedAt: base.Add(time.Duration(i) * time.Second),
		}))
	}
}

func TestRun_SummaryCountsFailures(t *testing.T) {
	records := memory.NewRecords()
	seedUsers(t, records, 25)
	messenger := memory.NewMessenger()
	messenger.FailFor(103, 110, 124)

	d := broadcast.New(messenger, records, broadcast.WithDelay(0))
	summary, err := d.Run(context.Background(), admin, domain.Content{Text: "Sale!"})
	require.NoError(t, err)

	assert.Equal(t, 25, summary.Total)
	assert.Equal(t, 25, summary.Attempted)
	assert.Equal(t, 22, summary.Succeeded)
	assert.Equal(t, 3, summary.Failed)
	require.Len(t, summary.Results, 25)
	assert.True(t, summary.Results[3].Failed())

	for i := 0; i < 25; i++ {
		id := int64(100 + i)
		want := 1
		if id == 103 || id == 110 || id == 124 {
			want = 0
		}
		assert.Len(t, messenger.To(id), want, "recipient %d", id)
	}

	progress := messenger.To(admin)
	require.Len(t, progress, 1, "progress is edited in place")
	// Progress edits after 10 and 20 sends, then the final summary.
	require.Len(t, progress[0].Edits, 3)
	assert.Contains(t, progress[0].Edits[0].Text, "10/25")
	assert.Contains(t, progress[0].Edits[1].Text, "20/25")
	assert.Contains(t, progress[0].Edits[2].Text, "Delivered: 22")
	assert.Contains(t, progress[0].Edits[2].Text, "Failed: 3")
}

func TestRun_PhotoContent(t *testing.T) {
	records := memory.NewRecords()
	seedUsers(t, records, 1)
	messenger := memory.NewMessenger()

	d := broadcast.New(messenger, records, broadcast.WithDelay(0))
	_, err := d.Run(context.Background(), admin, domain.Content{Text: "caption", PhotoRef: "p1"})
	require.NoError(t, err)

	got := messenger.To(100)
	require.Len(t, got, 1)
	assert.Equal(t, "p1", got[0].Message.PhotoRef)
	assert.Equal(t, "caption", got[0].Message.Text)
}

func TestRun_NoRecipients(t *testing.T) {
	messenger := memory.NewMessenger()
	d := broadcast.New(messenger, memory.NewRecords())

	summary, err := d.Run(context.Background(), admin, domain.Content{Text: "x"})
	require.NoError(t, err)
	assert.Zero(t, summary.Total)
	assert.Contains(t, messenger.Last(admin), "no users")
}

func TestRun_AppliesDelay(t *testing.T) {
	records := memory.NewRecords()
	seedUsers(t, records, 3)

	d := broadcast.New(memory.NewMessenger(), records, broadcast.WithDelay(20*time.Millisecond))
	start := time.Now()
	_, err := d.Run(context.Background(), admin, domain.Content{Text: "x"})
	require.NoError(t, err)
	// Three sends leave two gaps.
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}

func TestRun_ConcurrentRunsShareThrottle(t *testing.T) {
	records := memory.NewRecords()
	seedUsers(t, records, 2)

	d := broadcast.New(memory.NewMessenger(), records, broadcast.WithDelay(20*time.Millisecond))
	start := time.Now()
	d.Start(context.Background(), admin, domain.Content{Text: "a"})
	d.Start(context.Background(), admin, domain.Content{Text: "b"})
	d.Wait()

	// Four sends in total, spaced by the shared limiter.
	assert.GreaterOrEqual(t, time.Since(start), 60*time.Millisecond)
}

func TestRun_ContextCancelled(t *testing.T) {
	records := memory.NewRecords()
	seedUsers(t, records, 5)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	messenger := memory.NewMessenger()
	d := broadcast.New(messenger, records, broadcast.WithDelay(time.Second))
	summary, err := d.Run(ctx, admin, domain.Content{Text: "x"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, summary.Attempted)
	assert.Empty(t, messenger.To(100))
}

func TestRun_CancelledWhileThrottled(t *testing.T) {
	records := memory.NewRecords()
	seedUsers(t, records, 5)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	d := broadcast.New(memory.NewMessenger(), records, broadcast.WithDelay(time.Hour))
	summary, err := d.Run(ctx, admin, domain.Content{Text: "x"})
	assert.Error(t, err)
	assert.Equal(t, 1, summary.Attempted, "the first send uses the initial token")
}

func TestStart_RunsInBackground(t *testing.T) {
	records := memory.NewRecords()
	seedUsers(t, records, 4)
	messenger := memory.NewMessenger()

	d := broadcast.New(messenger, records, broadcast.WithDelay(5*time.Millisecond))
	d.Start(context.Background(), admin, domain.Content{Text: "hi"})
	d.Wait()

	for i := 0; i < 4; i++ {
		assert.Len(t, messenger.To(int64(100+i)), 1)
	}
	assert.Contains(t, messenger.Last(admin), "Broadcast finished")
}
