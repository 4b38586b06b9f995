package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SettingsService covers the maintenance operations on the settings screen.
type SettingsService interface {
	Stats() (shelves, books int)
	ClearAll()
}

type SettingsController struct {
	settings SettingsService
}

func NewSettingsController(settings SettingsService) *SettingsController {
	return &SettingsController{settings: settings}
}

func (controller *SettingsController) GetStats(c *gin.Context) {
	shelves, books := controller.settings.Stats()
	c.JSON(http.StatusOK, gin.H{
		"totalShelves": shelves,
		"totalBooks":   books,
	})
}

// ClearAll wipes every shelf and book, leaving only the empty default shelf.
// There is no undo; the snapshot listener persists the cleared state too.
func (controller *SettingsController) ClearAll(c *gin.Context) {
	controller.settings.ClearAll()
	respondSuccess(c, "all data cleared")
}
