package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hnedelkov/bookshelf/internal/library"
)

// BookService is the subset of library operations the books controller needs.
type BookService interface {
	Books() []library.Book
	Book(id string) (library.Book, error)
	UpdateBook(id string, update library.BookUpdate) (library.Book, error)
	SetBookStatus(id string, status library.BookStatus) error
	SetBookComment(id, comment string) error
	MoveBook(bookID, fromShelfID, toShelfID string) error
	DeleteBook(bookID string) error
	ShelfName(shelfID string) string
}

type BooksController struct {
	books BookService
}

func NewBooksController(books BookService) *BooksController {
	return &BooksController{books: books}
}

// BookView is a book plus its resolved shelf name. Orphaned books (their
// shelf was deleted) resolve to "Unknown shelf" instead of an error.
type BookView struct {
	library.Book
	ShelfName string `json:"shelfName"`
}

func (controller *BooksController) view(book library.Book) BookView {
	return BookView{Book: book, ShelfName: controller.books.ShelfName(book.ShelfID)}
}

func (controller *BooksController) ListBooks(c *gin.Context) {
	books := controller.books.Books()
	views := make([]BookView, 0, len(books))
	for _, book := range books {
		views = append(views, controller.view(book))
	}
	c.JSON(http.StatusOK, gin.H{"books": views, "count": len(views)})
}

func (controller *BooksController) GetBook(c *gin.Context) {
	book, err := controller.books.Book(c.Param("id"))
	if err != nil {
		respondDomainError(c, err, "get book")
		return
	}
	c.JSON(http.StatusOK, controller.view(book))
}

type updateBookRequest struct {
	Title    *string `json:"title"`
	Author   *string `json:"author"`
	ISBN     *string `json:"isbn"`
	CoverURI *string `json:"coverUri"`
	Comment  *string `json:"comment"`
	Status   *string `json:"status"`
}

func (controller *BooksController) UpdateBook(c *gin.Context) {
	var req updateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	update := library.BookUpdate{
		Title:    req.Title,
		Author:   req.Author,
		ISBN:     req.ISBN,
		CoverURI: req.CoverURI,
		Comment:  req.Comment,
	}
	if req.Status != nil {
		status := library.BookStatus(*req.Status)
		update.Status = &status
	}
	book, err := controller.books.UpdateBook(c.Param("id"), update)
	if err != nil {
		respondDomainError(c, err, "update book")
		return
	}
	c.JSON(http.StatusOK, controller.view(book))
}

type setStatusRequest struct {
	Status string `json:"status"`
}

func (controller *BooksController) SetStatus(c *gin.Context) {
	var req setStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	if err := controller.books.SetBookStatus(c.Param("id"), library.BookStatus(req.Status)); err != nil {
		respondDomainError(c, err, "set book status")
		return
	}
	respondSuccess(c, "status updated")
}

type setCommentRequest struct {
	Comment string `json:"comment"`
}

// SetComment stores the reading comment. A whitespace-only comment clears it,
// and clearing the comment on an awaiting_comment book is still just a
// comment update; the status is not touched.
func (controller *BooksController) SetComment(c *gin.Context) {
	var req setCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	if err := controller.books.SetBookComment(c.Param("id"), req.Comment); err != nil {
		respondDomainError(c, err, "set book comment")
		return
	}
	respondSuccess(c, "comment updated")
}

type moveBookRequest struct {
	FromShelfID string `json:"fromShelfId"`
	ToShelfID   string `json:"toShelfId"`
}

func (controller *BooksController) MoveBook(c *gin.Context) {
	var req moveBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	if err := controller.books.MoveBook(c.Param("id"), req.FromShelfID, req.ToShelfID); err != nil {
		respondDomainError(c, err, "move book")
		return
	}
	respondSuccess(c, "book moved")
}

func (controller *BooksController) DeleteBook(c *gin.Context) {
	if err := controller.books.DeleteBook(c.Param("id")); err != nil {
		respondDomainError(c, err, "delete book")
		return
	}
	respondSuccess(c, "book deleted")
}
