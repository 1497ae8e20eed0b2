package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/praxis-go-api/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Activity{}, &models.GeneratedProblem{}))
	return db
}

func TestActivityRepositoryRoundTrip(t *testing.T) {
	repo := NewActivityRepository(newTestDB(t))

	activity := models.Activity{
		ID:           "activity-1",
		Language:     "python",
		Status:       models.ActivityStatusReady,
		ProblemCount: 2,
		Problems: []models.GeneratedProblem{
			{ID: "p-2", ActivityID: "activity-1", Index: 1, Language: "python", Title: "Second", Description: "d2", SampleInputs: []byte(`["b"]`), SampleOutputs: []byte(`["B"]`)},
			{ID: "p-1", ActivityID: "activity-1", Index: 0, Language: "python", Title: "First", Description: "d1", SampleInputs: []byte(`["a"]`), SampleOutputs: []byte(`["A"]`)},
		},
	}
	require.NoError(t, repo.Create(context.Background(), &activity))

	loaded, err := repo.GetByID(context.Background(), "activity-1")
	require.NoError(t, err)
	require.Equal(t, "python", loaded.Language)
	require.Len(t, loaded.Problems, 2)

	// Problems come back in slot order regardless of insertion order.
	require.Equal(t, "First", loaded.Problems[0].Title)
	require.Equal(t, "Second", loaded.Problems[1].Title)
}

func TestActivityRepositoryMissing(t *testing.T) {
	repo := NewActivityRepository(newTestDB(t))

	_, err := repo.GetByID(context.Background(), "nope")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
