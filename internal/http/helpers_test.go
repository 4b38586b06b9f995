package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/hnedelkov/bookshelf/internal/acquisition"
	"github.com/hnedelkov/bookshelf/internal/library"
)

// setupTestRouter builds a router over a fresh library. Acquisition sessions
// are wired against the given lookup provider.
func setupTestRouter(t *testing.T, lookups acquisition.LookupProvider) (*gin.Engine, *library.Library) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	lib := library.New()
	sessions := acquisition.NewManager(lookups, lib)
	router := NewRouter(RouterConfig{
		Library:  lib,
		Sessions: sessions,
		Version:  "test",
	})
	return router, lib
}

// doJSON performs a request with an optional JSON body and returns the recorder.
func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// decodeJSON unmarshals a response body into out.
func decodeJSON(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
}
