package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hnedelkov/bookshelf/internal/library"
)

// ShelfService is the subset of library operations the shelves controller
// needs.
type ShelfService interface {
	Shelves() []library.Shelf
	Shelf(id string) (library.Shelf, error)
	CreateShelf(name string) (library.Shelf, error)
	RenameShelf(id, name string) error
	DeleteShelf(id string) error
	ReorderShelves(ids []string) error
	MoveShelfToTop(id string) error
	BooksOnShelf(shelfID, query string, status library.BookStatus) ([]library.Book, error)
}

type ShelvesController struct {
	shelves ShelfService
}

func NewShelvesController(shelves ShelfService) *ShelvesController {
	return &ShelvesController{shelves: shelves}
}

// ShelfView is a shelf plus its derived book count.
type ShelfView struct {
	library.Shelf
	BookCount int `json:"bookCount"`
}

func shelfView(shelf library.Shelf) ShelfView {
	return ShelfView{Shelf: shelf, BookCount: len(shelf.BookIDs)}
}

func (controller *ShelvesController) ListShelves(c *gin.Context) {
	shelves := controller.shelves.Shelves()
	views := make([]ShelfView, 0, len(shelves))
	for _, shelf := range shelves {
		views = append(views, shelfView(shelf))
	}
	c.JSON(http.StatusOK, gin.H{"shelves": views, "count": len(views)})
}

func (controller *ShelvesController) GetShelf(c *gin.Context) {
	shelf, err := controller.shelves.Shelf(c.Param("id"))
	if err != nil {
		respondDomainError(c, err, "get shelf")
		return
	}
	c.JSON(http.StatusOK, shelfView(shelf))
}

type createShelfRequest struct {
	Name string `json:"name"`
}

func (controller *ShelvesController) CreateShelf(c *gin.Context) {
	var req createShelfRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	shelf, err := controller.shelves.CreateShelf(req.Name)
	if err != nil {
		respondDomainError(c, err, "create shelf")
		return
	}
	respondCreated(c, shelfView(shelf))
}

type renameShelfRequest struct {
	Name string `json:"name"`
}

func (controller *ShelvesController) RenameShelf(c *gin.Context) {
	var req renameShelfRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	if err := controller.shelves.RenameShelf(c.Param("id"), req.Name); err != nil {
		respondDomainError(c, err, "rename shelf")
		return
	}
	respondSuccess(c, "shelf renamed")
}

func (controller *ShelvesController) DeleteShelf(c *gin.Context) {
	if err := controller.shelves.DeleteShelf(c.Param("id")); err != nil {
		respondDomainError(c, err, "delete shelf")
		return
	}
	respondSuccess(c, "shelf deleted")
}

type reorderShelvesRequest struct {
	IDs []string `json:"ids"`
}

func (controller *ShelvesController) ReorderShelves(c *gin.Context) {
	var req reorderShelvesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	if err := controller.shelves.ReorderShelves(req.IDs); err != nil {
		respondDomainError(c, err, "reorder shelves")
		return
	}
	respondSuccess(c, "shelves reordered")
}

func (controller *ShelvesController) MoveShelfToTop(c *gin.Context) {
	if err := controller.shelves.MoveShelfToTop(c.Param("id")); err != nil {
		respondDomainError(c, err, "move shelf to top")
		return
	}
	respondSuccess(c, "shelf moved to top")
}

// ListShelfBooks returns the shelf's books in display order. Supports an
// optional case-insensitive substring filter (q) over title/author and an
// optional status filter.
func (controller *ShelvesController) ListShelfBooks(c *gin.Context) {
	status := library.BookStatus(c.Query("status"))
	if status != "" && !status.Valid() {
		respondBadRequest(c, "unknown status "+string(status))
		return
	}
	books, err := controller.shelves.BooksOnShelf(c.Param("id"), c.Query("q"), status)
	if err != nil {
		respondDomainError(c, err, "list shelf books")
		return
	}
	c.JSON(http.StatusOK, gin.H{"books": books, "count": len(books)})
}
