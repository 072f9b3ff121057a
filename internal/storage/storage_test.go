package storage

import (
	"context"
	"strings"
	"testing"

	"alcyxob/gym-dashboard/internal/config"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestMealPhotoKey(t *testing.T) {
	k := MealPhotoKey("user-1", "image/PNG")
	assert.True(t, strings.HasPrefix(k, "meals/user-1/"), k)
	assert.True(t, strings.HasSuffix(k, ".png"), k)

	assert.True(t, strings.HasSuffix(MealPhotoKey("u", "application/octet-stream"), ".bin"))
	assert.NotEqual(t, MealPhotoKey("u", "image/jpeg"), MealPhotoKey("u", "image/jpeg"))
}

func TestNewS3Storage_RequiresBucket(t *testing.T) {
	_, err := NewS3Storage(context.Background(), config.S3Config{Region: "us-east-1"}, zap.NewNop())
	assert.ErrorIs(t, err, ErrNotConfigured)
}
