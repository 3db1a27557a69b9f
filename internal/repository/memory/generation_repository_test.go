package memory

import (
	"context"
	"testing"
	"time"

	"ai-appbuilder-be/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerationRepository_Lifecycle(t *testing.T) {
	repo := NewGenerationRepository()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	ctx := context.Background()

	older := &entity.GenerationRecord{Identity: "ip:1.1.1.1", Prompt: "first", ChatId: "chat_a", CreatedAt: base}
	newer := &entity.GenerationRecord{Identity: "ip:1.1.1.1", Prompt: "second", ChatId: "chat_a", CreatedAt: base.Add(time.Minute)}
	other := &entity.GenerationRecord{Identity: "ip:2.2.2.2", Prompt: "theirs", ChatId: "chat_b", CreatedAt: base}

	for _, r := range []*entity.GenerationRecord{older, newer, other} {
		require.NoError(t, repo.Create(ctx, r))
		assert.NotEmpty(t, r.Id)
	}

	mine, err := repo.FindAllByIdentity(ctx, "ip:1.1.1.1", 10, 0)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "second", mine[0].Prompt)

	page, err := repo.FindAllByIdentity(ctx, "ip:1.1.1.1", 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "first", page[0].Prompt)

	require.NoError(t, repo.UpdateStatusByChatID(ctx, "chat_a", "completed", "https://demo.example"))
	got, err := repo.FindByID(ctx, older.Id)
	require.NoError(t, err)
	assert.Equal(t, "completed", got.LatestStatus)
	assert.Equal(t, "https://demo.example", got.DemoUrl)

	untouched, err := repo.FindByID(ctx, other.Id)
	require.NoError(t, err)
	assert.Empty(t, untouched.LatestStatus)

	missing, err := repo.FindByID(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestGenerationRepository_ReturnsCopies(t *testing.T) {
	repo := NewGenerationRepository()
	ctx := context.Background()
	rec := &entity.GenerationRecord{Identity: "ip:x", State: entity.GenerationIdle}
	require.NoError(t, repo.Create(ctx, rec))

	rec.State = entity.GenerationDone
	stored, err := repo.FindByID(ctx, rec.Id)
	require.NoError(t, err)
	assert.Equal(t, entity.GenerationIdle, stored.State)

	require.NoError(t, repo.Update(ctx, rec))
	stored, err = repo.FindByID(ctx, rec.Id)
	require.NoError(t, err)
	assert.Equal(t, entity.GenerationDone, stored.State)
	assert.NotNil(t, stored.UpdatedAt)
}
