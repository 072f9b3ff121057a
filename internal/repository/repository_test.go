package repository_test

import (
	"context"
	"errors"
	"testing"

	"alcyxob/gym-dashboard/internal/repository"
	"alcyxob/gym-dashboard/internal/repository/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type brokenStore struct{}

func (brokenStore) Get(context.Context, string) ([]byte, error) { return nil, errors.New("disk gone") }
func (brokenStore) Put(context.Context, string, []byte) error   { return errors.New("quota exceeded") }

type item struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestLoad_NeverSavedReturnsDefault(t *testing.T) {
	store := memory.NewFieldStore()
	def := []item{{Name: "seed", Count: 1}}

	got := repository.Load(context.Background(), store, "items", def)

	assert.Equal(t, def, got)
}

func TestSaveThenLoad(t *testing.T) {
	ctx := context.Background()
	store := memory.NewFieldStore()

	require.NoError(t, repository.Save(ctx, store, "items", []item{{Name: "a", Count: 2}}))

	got := repository.Load(ctx, store, "items", []item(nil))
	assert.Equal(t, []item{{Name: "a", Count: 2}}, got)
}

func TestLoad_CorruptValueReturnsDefault(t *testing.T) {
	ctx := context.Background()
	store := memory.NewFieldStore()
	require.NoError(t, store.Put(ctx, "items", []byte("{not json")))

	got := repository.Load(ctx, store, "items", []item{})
	assert.Empty(t, got)
	assert.NotNil(t, got)
}

func TestLoad_BackendFailureReturnsDefault(t *testing.T) {
	got := repository.Load(context.Background(), brokenStore{}, "users", 7)
	assert.Equal(t, 7, got)
}

func TestSave_PropagatesBackendFailure(t *testing.T) {
	err := repository.Save(context.Background(), brokenStore{}, "users", 1)
	assert.Error(t, err)
}

func TestMemoryStore_MissingKey(t *testing.T) {
	_, err := memory.NewFieldStore().Get(context.Background(), "nope")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
