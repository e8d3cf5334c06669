package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"eventboard/internal/domain"
)

func TestCategoryCreate(t *testing.T) {
	svc := NewCategoryService(newMockCategoryRepo(), time.Second)
	ctx := context.Background()

	category, err := svc.Create(ctx, "  concerts  ")
	require.NoError(t, err)
	require.NotEmpty(t, category.ID)
	require.Equal(t, "concerts", category.Name)

	_, err = svc.Create(ctx, "concerts")
	require.ErrorIs(t, err, domain.ErrConflict)

	_, err = svc.Create(ctx, "   ")
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestCategoryUpdate(t *testing.T) {
	repo := newMockCategoryRepo(
		&domain.Category{ID: "ct-1", Name: "concerts"},
		&domain.Category{ID: "ct-2", Name: "theatre"},
	)
	svc := NewCategoryService(repo, time.Second)
	ctx := context.Background()

	// Renaming to a name held by another category conflicts.
	_, err := svc.Update(ctx, "ct-1", "theatre")
	require.ErrorIs(t, err, domain.ErrConflict)

	// Keeping its own name is fine.
	category, err := svc.Update(ctx, "ct-1", "concerts")
	require.NoError(t, err)
	require.Equal(t, "concerts", category.Name)

	category, err = svc.Update(ctx, "ct-1", "festivals")
	require.NoError(t, err)
	require.Equal(t, "festivals", category.Name)

	_, err = svc.Update(ctx, "ct-missing", "anything")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCategoryDelete(t *testing.T) {
	repo := newMockCategoryRepo(&domain.Category{ID: "ct-1", Name: "concerts"})
	svc := NewCategoryService(repo, time.Second)
	ctx := context.Background()

	require.NoError(t, svc.Delete(ctx, "ct-1"))
	err := svc.Delete(ctx, "ct-1")
	require.ErrorIs(t, err, domain.ErrNotFound)
}
