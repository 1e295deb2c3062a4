package stats_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dizabanik/droll/internal/entities/roll"
	"github.com/Dizabanik/droll/internal/errors"
	"github.com/Dizabanik/droll/internal/repositories/stats"
	"github.com/Dizabanik/droll/internal/testutils"
)

func TestRedisRepository(t *testing.T) {
	ctx := context.Background()
	client, mr := testutils.CreateTestRedis(t)

	repo, err := stats.NewRedis(&stats.RedisConfig{Client: client})
	require.NoError(t, err)

	t.Run("missing sheet is not found", func(t *testing.T) {
		_, err := repo.Get(ctx, stats.GetInput{CharacterID: "char_1"})
		assert.True(t, errors.IsNotFound(err))
	})

	t.Run("put then get", func(t *testing.T) {
		sheet := &roll.StatSheet{
			CharacterID: "char_1",
			Name:        "Vex",
			Attributes:  map[string]int{"strength": 16, "dexterity": 14},
			Traits:      map[string]int{"agility": 2},
			Custom:      []roll.CustomStat{{ID: "rage", Name: "Rage Bonus", Value: 2}},
		}

		_, err := repo.Put(ctx, stats.PutInput{Sheet: sheet})
		require.NoError(t, err)
		assert.True(t, mr.Exists("stats:char_1"))

		out, err := repo.Get(ctx, stats.GetInput{CharacterID: "char_1"})
		require.NoError(t, err)
		assert.Equal(t, sheet, out.Sheet)
	})

	t.Run("put replaces", func(t *testing.T) {
		_, err := repo.Put(ctx, stats.PutInput{Sheet: &roll.StatSheet{CharacterID: "char_1", Name: "Vex II"}})
		require.NoError(t, err)

		out, err := repo.Get(ctx, stats.GetInput{CharacterID: "char_1"})
		require.NoError(t, err)
		assert.Equal(t, "Vex II", out.Sheet.Name)
		assert.Empty(t, out.Sheet.Attributes)
	})

	t.Run("invalid input", func(t *testing.T) {
		_, err := repo.Get(ctx, stats.GetInput{})
		assert.True(t, errors.IsInvalidArgument(err))

		_, err = repo.Put(ctx, stats.PutInput{})
		assert.True(t, errors.IsInvalidArgument(err))

		_, err = repo.Put(ctx, stats.PutInput{Sheet: &roll.StatSheet{}})
		assert.True(t, errors.IsInvalidArgument(err))
	})
}
