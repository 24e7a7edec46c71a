package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/garnizeh/studybuddy/internal/blob"
)

// ImagesHandler serves objects of the local blob store.
type ImagesHandler struct {
	store *blob.Local
}

func NewImagesHandler(store *blob.Local) *ImagesHandler {
	return &ImagesHandler{store: store}
}

func (h *ImagesHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.store.Path(mux.Vars(r)["key"])
	if err != nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	http.ServeFile(w, r, p)
}
