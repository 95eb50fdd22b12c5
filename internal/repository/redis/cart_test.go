package redis

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VATuan2710/final-project-thuc-tap/internal/domain"
	apperrors "github.com/VATuan2710/final-project-thuc-tap/pkg/errors"
)

func setupTestRedis(t *testing.T) (*CartRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	repo := NewCartRepository(client, 24*time.Hour)
	return repo, mr
}

func sampleLines() []domain.CartLine {
	return []domain.CartLine{
		{
			ID:        "line-1",
			ProductID: "prod-1",
			Product:   domain.Product{ID: "prod-1", Name: "Widget", Price: 45_000},
			Quantity:  2,
			UnitPrice: 45_000,
		},
	}
}

func TestCartRepository_Fetch_Success(t *testing.T) {
	repo, mr := setupTestRedis(t)

	rec := domain.UserCartRecord{
		UserID:    "user-001",
		Lines:     sampleLines(),
		Total:     90_000,
		UpdatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}
	data, err := json.Marshal(rec)
	require.NoError(t, err)

	// Set data directly in miniredis.
	require.NoError(t, mr.Set("cart:user-001", string(data)))

	got, err := repo.Fetch(context.Background(), "user-001")
	require.NoError(t, err)
	assert.Equal(t, "user-001", got.UserID)
	assert.Equal(t, int64(90_000), got.Total)
	require.Len(t, got.Lines, 1)
	assert.Equal(t, "prod-1", got.Lines[0].ProductID)
	assert.Equal(t, 2, got.Lines[0].Quantity)
	assert.Equal(t, int64(45_000), got.Lines[0].UnitPrice)
}

func TestCartRepository_Fetch_NotFound(t *testing.T) {
	repo, _ := setupTestRedis(t)

	_, err := repo.Fetch(context.Background(), "missing-user")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCartRepository_Fetch_CorruptDocument(t *testing.T) {
	repo, mr := setupTestRedis(t)

	require.NoError(t, mr.Set("cart:user-001", "{not json"))

	_, err := repo.Fetch(context.Background(), "user-001")
	require.Error(t, err)
	assert.NotErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCartRepository_Write_RoundTrip(t *testing.T) {
	repo, _ := setupTestRedis(t)
	ctx := context.Background()

	lines := sampleLines()
	require.NoError(t, repo.Write(ctx, "user-001", lines, 90_000))

	got, err := repo.Fetch(ctx, "user-001")
	require.NoError(t, err)
	assert.Equal(t, int64(90_000), got.Total)
	require.Len(t, got.Lines, 1)
	assert.False(t, got.UpdatedAt.IsZero())
}

func TestCartRepository_Write_OverwritesWholesale(t *testing.T) {
	repo, _ := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, repo.Write(ctx, "user-001", sampleLines(), 90_000))
	require.NoError(t, repo.Write(ctx, "user-001", nil, 0))

	got, err := repo.Fetch(ctx, "user-001")
	require.NoError(t, err)
	assert.Empty(t, got.Lines)
	assert.Equal(t, int64(0), got.Total)
}

func TestCartRepository_Write_SetsTTL(t *testing.T) {
	repo, mr := setupTestRedis(t)

	require.NoError(t, repo.Write(context.Background(), "user-001", sampleLines(), 90_000))

	mr.FastForward(25 * time.Hour)
	_, err := repo.Fetch(context.Background(), "user-001")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
