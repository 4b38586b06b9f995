package http

import (
	"github.com/gin-gonic/gin"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	health := NewHealthController(cfg.SnapshotStore, cfg.Version)
	shelvesController := NewShelvesController(cfg.Library)
	booksController := NewBooksController(cfg.Library)
	settingsController := NewSettingsController(cfg.Library)

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	// Shelf endpoints. The order route is registered before the :id routes
	// only for readability; gin resolves static segments first either way.
	router.GET("/api/shelves", shelvesController.ListShelves)
	router.POST("/api/shelves", shelvesController.CreateShelf)
	router.PUT("/api/shelves/order", shelvesController.ReorderShelves)
	router.GET("/api/shelves/:id", shelvesController.GetShelf)
	router.PUT("/api/shelves/:id", shelvesController.RenameShelf)
	router.DELETE("/api/shelves/:id", shelvesController.DeleteShelf)
	router.POST("/api/shelves/:id/top", shelvesController.MoveShelfToTop)
	router.GET("/api/shelves/:id/books", shelvesController.ListShelfBooks)

	// Book endpoints
	router.GET("/api/books", booksController.ListBooks)
	router.GET("/api/books/:id", booksController.GetBook)
	router.PATCH("/api/books/:id", booksController.UpdateBook)
	router.PUT("/api/books/:id/status", booksController.SetStatus)
	router.PUT("/api/books/:id/comment", booksController.SetComment)
	router.POST("/api/books/:id/move", booksController.MoveBook)
	router.DELETE("/api/books/:id", booksController.DeleteBook)

	// Acquisition workflow endpoints
	if cfg.Sessions != nil {
		acquisitionController := NewAcquisitionController(cfg.Sessions)
		router.POST("/api/acquisitions", acquisitionController.CreateSession)
		router.GET("/api/acquisitions/:id", acquisitionController.GetSession)
		router.DELETE("/api/acquisitions/:id", acquisitionController.RemoveSession)
		router.POST("/api/acquisitions/:id/scan", acquisitionController.StartScan)
		router.POST("/api/acquisitions/:id/scan/cancel", acquisitionController.CancelScan)
		router.POST("/api/acquisitions/:id/barcode", acquisitionController.SubmitBarcode)
		router.POST("/api/acquisitions/:id/retry", acquisitionController.Retry)
		router.POST("/api/acquisitions/:id/manual", acquisitionController.ManualEntry)
		router.POST("/api/acquisitions/:id/edit", acquisitionController.Edit)
		router.PUT("/api/acquisitions/:id/draft", acquisitionController.UpdateDraft)
		router.POST("/api/acquisitions/:id/edit/save", acquisitionController.SaveEdit)
		router.POST("/api/acquisitions/:id/edit/cancel", acquisitionController.CancelEdit)
		router.POST("/api/acquisitions/:id/rescan", acquisitionController.Rescan)
		router.PUT("/api/acquisitions/:id/shelf", acquisitionController.SelectShelf)
		router.POST("/api/acquisitions/:id/commit", acquisitionController.Commit)
	}

	// Settings endpoints
	router.GET("/api/stats", settingsController.GetStats)
	router.POST("/api/settings/clear", settingsController.ClearAll)

	return router
}
