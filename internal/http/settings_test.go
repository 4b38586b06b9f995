package http

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hnedelkov/bookshelf/internal/library"
)

func TestSettingsController_Stats(t *testing.T) {
	router, lib := setupTestRouter(t, nil)

	_, err := lib.CreateShelf("Extra")
	require.NoError(t, err)
	_, err = lib.AddBookToShelf(library.Draft{Title: "Counted", Author: "X"}, library.DefaultShelfID)
	require.NoError(t, err)

	w := doJSON(t, router, "GET", "/api/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var stats struct {
		TotalShelves int `json:"totalShelves"`
		TotalBooks   int `json:"totalBooks"`
	}
	decodeJSON(t, w, &stats)
	assert.Equal(t, 2, stats.TotalShelves)
	assert.Equal(t, 1, stats.TotalBooks)
}

func TestSettingsController_ClearAll(t *testing.T) {
	router, lib := setupTestRouter(t, nil)

	_, err := lib.CreateShelf("Extra")
	require.NoError(t, err)
	_, err = lib.AddBookToShelf(library.Draft{Title: "Gone", Author: "X"}, library.DefaultShelfID)
	require.NoError(t, err)

	w := doJSON(t, router, "POST", "/api/settings/clear", nil)
	require.Equal(t, http.StatusOK, w.Code)

	shelves, books := lib.Stats()
	assert.Equal(t, 1, shelves)
	assert.Equal(t, 0, books)

	remaining := lib.Shelves()
	require.Len(t, remaining, 1)
	assert.Equal(t, library.DefaultShelfID, remaining[0].ID)
}
