// ABOUTME: Tests for record codecs through an in-memory table
// ABOUTME: Verifies each record survives storage with its definition's keys
package records

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harper/seatbot/internal/table"
)

func openTyped[R any](t *testing.T, codec table.Codec[R], def Definition) *table.Typed[R] {
	t.Helper()
	tbl, err := table.OpenTyped(codec, def.Name, ":memory:", def.Options()...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = tbl.Close() })
	return tbl
}

func TestCountCodec_Scenario(t *testing.T) {
	ctx := context.Background()
	counts := openTyped[UserCount](t, CountCodec{}, Counts)

	require.NoError(t, counts.Put(ctx, UserCount{GuildID: 1, UserID: 1, Count: 0}))
	require.NoError(t, counts.Put(ctx, UserCount{GuildID: 1, UserID: 1, Count: 5}))

	got, ok, err := counts.Get(ctx, table.Match{"guild_id": 1, "user_id": 1})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, UserCount{GuildID: 1, UserID: 1, Count: 5}, got)

	all, err := counts.All(ctx, table.Match{"guild_id": 1})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestSoundCodec_NullFilepath(t *testing.T) {
	ctx := context.Background()
	sounds := openTyped[Sound](t, SoundCodec{}, Sounds)

	pending, err := NewSound(1, "pending", 9)
	require.NoError(t, err)
	require.NoError(t, sounds.Put(ctx, *pending))

	got, ok, err := sounds.Get(ctx, table.Match{"guild_id": 1, "name": "pending"})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Nil(t, got.Filepath)
	assert.False(t, got.Ready())

	pending.Attach("/sounds/pending.mp3", []byte("clip"))
	require.NoError(t, sounds.Put(ctx, *pending))

	got, _, err = sounds.Get(ctx, table.Match{"guild_id": 1, "name": "pending"})
	require.NoError(t, err)
	require.NotNil(t, got.Filepath)
	assert.Equal(t, "/sounds/pending.mp3", *got.Filepath)
	assert.Equal(t, pending.Checksum, got.Checksum)
}

func TestReminderCodec(t *testing.T) {
	ctx := context.Background()
	reminders := openTyped[Reminder](t, ReminderCodec{}, Reminders)

	r, err := NewReminder(1, 2, 3, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), "hello")
	require.NoError(t, err)
	require.NoError(t, reminders.Put(ctx, *r))

	got, ok, err := reminders.Get(ctx, table.Match{"reminder_id": r.ID})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, *r, got)

	n, err := reminders.Remove(ctx, table.Match{"reminder_id": r.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestRuleCodec(t *testing.T) {
	ctx := context.Background()
	rules := openTyped[RuleConfig](t, RuleCodec{}, Rules)

	cfg := RuleConfig{GuildID: 4, Enabled: true, MaxOffenses: 5, Cooldown: 90 * time.Second}
	require.NoError(t, rules.Put(ctx, cfg))

	got, ok, err := rules.Get(ctx, table.Match{"guild_id": 4})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, cfg, got)
}

func TestOffenses_AppendOnly(t *testing.T) {
	ctx := context.Background()
	offenses := openTyped[Offense](t, OffenseCodec{}, Offenses)

	at := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		require.NoError(t, offenses.Put(ctx, Offense{GuildID: 1, UserID: 2, At: at}))
	}

	all, err := offenses.All(ctx, table.Match{"user_id": 2})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	_, err = offenses.Remove(ctx, table.Match{})
	assert.ErrorIs(t, err, table.ErrRemoveUnsupported)
}

func TestCodecDecode_Arity(t *testing.T) {
	_, err := CountCodec{}.Decode(table.Row{int64(1)})
	assert.Error(t, err)

	_, err = ReminderCodec{}.Decode(table.Row{"not-a-uuid", int64(1), int64(1), int64(1), int64(0), "x"})
	assert.Error(t, err)
}
