package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	appErrors "github.com/noah-isme/ta-hiring-api/pkg/errors"
)

func TestCacheRepositoryWithoutClient(t *testing.T) {
	repo := NewCacheRepository(nil)
	ctx := context.Background()

	var dest []int
	err := repo.Get(ctx, "ta-hiring:ratings:alice", &dest)
	assert.True(t, errors.Is(err, appErrors.ErrCacheMiss))
	assert.NoError(t, repo.Set(ctx, "ta-hiring:ratings:alice", []int{5}, time.Minute))
	assert.NoError(t, repo.DeleteByPattern(ctx, "ta-hiring:*"))
}
