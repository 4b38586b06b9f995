package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hnedelkov/bookshelf/internal/acquisition"
	"github.com/hnedelkov/bookshelf/internal/library"
)

// AcquisitionController exposes the barcode-to-book workflow over HTTP. Each
// session is a server-side state machine; the client drives it event by event
// and renders whatever state comes back.
type AcquisitionController struct {
	sessions *acquisition.Manager
}

func NewAcquisitionController(sessions *acquisition.Manager) *AcquisitionController {
	return &AcquisitionController{sessions: sessions}
}

func (controller *AcquisitionController) session(c *gin.Context) (*acquisition.Workflow, bool) {
	w, ok := controller.sessions.Get(c.Param("id"))
	if !ok {
		respondNotFound(c, "acquisition session")
		return nil, false
	}
	return w, true
}

type createSessionRequest struct {
	ShelfID string `json:"shelfId"`
}

type sessionResponse struct {
	SessionID string             `json:"sessionId"`
	Status    acquisition.Status `json:"status"`
}

func (controller *AcquisitionController) CreateSession(c *gin.Context) {
	var req createSessionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c, "invalid request body")
			return
		}
	}
	if req.ShelfID == "" {
		req.ShelfID = library.DefaultShelfID
	}
	id, w := controller.sessions.Create(req.ShelfID)
	respondCreated(c, sessionResponse{SessionID: id, Status: w.Status()})
}

func (controller *AcquisitionController) GetSession(c *gin.Context) {
	w, ok := controller.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, w.Status())
}

func (controller *AcquisitionController) RemoveSession(c *gin.Context) {
	controller.sessions.Remove(c.Param("id"))
	respondSuccess(c, "session abandoned")
}

// transition runs a workflow event and responds with the resulting status.
func (controller *AcquisitionController) transition(c *gin.Context, context string, event func(w *acquisition.Workflow) error) {
	w, ok := controller.session(c)
	if !ok {
		return
	}
	if err := event(w); err != nil {
		respondDomainError(c, err, context)
		return
	}
	c.JSON(http.StatusOK, w.Status())
}

func (controller *AcquisitionController) StartScan(c *gin.Context) {
	controller.transition(c, "start scan", func(w *acquisition.Workflow) error {
		return w.StartScan()
	})
}

func (controller *AcquisitionController) CancelScan(c *gin.Context) {
	controller.transition(c, "cancel scan", func(w *acquisition.Workflow) error {
		return w.CancelScan()
	})
}

type barcodeRequest struct {
	Payload   string `json:"payload"`
	Symbology string `json:"symbology"`
}

// SubmitBarcode runs the lookup synchronously: the response carries the state
// the session landed in (found or not_found_prompt), so clients need no
// polling for the common path.
func (controller *AcquisitionController) SubmitBarcode(c *gin.Context) {
	var req barcodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	controller.transition(c, "submit barcode", func(w *acquisition.Workflow) error {
		return w.SubmitBarcode(c.Request.Context(), req.Payload, req.Symbology)
	})
}

func (controller *AcquisitionController) Retry(c *gin.Context) {
	controller.transition(c, "retry scan", func(w *acquisition.Workflow) error {
		return w.Retry()
	})
}

func (controller *AcquisitionController) ManualEntry(c *gin.Context) {
	controller.transition(c, "manual entry", func(w *acquisition.Workflow) error {
		return w.ManualEntry()
	})
}

func (controller *AcquisitionController) Edit(c *gin.Context) {
	controller.transition(c, "edit candidate", func(w *acquisition.Workflow) error {
		return w.Edit()
	})
}

func (controller *AcquisitionController) UpdateDraft(c *gin.Context) {
	var req acquisition.DraftUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	controller.transition(c, "update draft", func(w *acquisition.Workflow) error {
		return w.UpdateDraft(req)
	})
}

func (controller *AcquisitionController) SaveEdit(c *gin.Context) {
	controller.transition(c, "save edit", func(w *acquisition.Workflow) error {
		return w.SaveEdit()
	})
}

func (controller *AcquisitionController) CancelEdit(c *gin.Context) {
	controller.transition(c, "cancel edit", func(w *acquisition.Workflow) error {
		return w.CancelEdit()
	})
}

func (controller *AcquisitionController) Rescan(c *gin.Context) {
	controller.transition(c, "rescan", func(w *acquisition.Workflow) error {
		return w.Rescan()
	})
}

type selectShelfRequest struct {
	ShelfID string `json:"shelfId"`
}

func (controller *AcquisitionController) SelectShelf(c *gin.Context) {
	var req selectShelfRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	controller.transition(c, "select shelf", func(w *acquisition.Workflow) error {
		w.SelectShelf(req.ShelfID)
		return nil
	})
}

type commitResponse struct {
	Book   library.Book       `json:"book"`
	Status acquisition.Status `json:"status"`
}

func (controller *AcquisitionController) Commit(c *gin.Context) {
	w, ok := controller.session(c)
	if !ok {
		return
	}
	book, err := w.Commit()
	if err != nil {
		respondDomainError(c, err, "commit book")
		return
	}
	respondCreated(c, commitResponse{Book: book, Status: w.Status()})
}
