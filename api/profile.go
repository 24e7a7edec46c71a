package api

import (
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gorilla/mux"

	"github.com/garnizeh/studybuddy/internal/profiles"
	"github.com/garnizeh/studybuddy/internal/session"
	"github.com/garnizeh/studybuddy/pkg/errorx"
	"github.com/garnizeh/studybuddy/pkg/models"
)

const maxImageBytes = 5 << 20

type ProfileHandler struct {
	profiles *profiles.Service
}

func NewProfileHandler(p *profiles.Service) *ProfileHandler {
	return &ProfileHandler{profiles: p}
}

type profileResponse struct {
	Profile *models.UserProfile `json:"profile"`
}

// GetMine returns the caller's profile, or {"profile": null} before the first save.
func (h *ProfileHandler) GetMine(w http.ResponseWriter, r *http.Request) {
	p, err := h.profiles.Get(r.Context(), session.UserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profileResponse{Profile: p})
}

func (h *ProfileHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userID"]
	p, err := h.profiles.Get(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	if p == nil {
		writeError(w, errorx.Newf(errorx.KindNotFound, "user %s has no profile", userID))
		return
	}
	writeJSON(w, http.StatusOK, profileResponse{Profile: p})
}

// Save accepts either a JSON body or a multipart form with a `profile` JSON field and an
// optional `image` file.
func (h *ProfileHandler) Save(w http.ResponseWriter, r *http.Request) {
	var fields profiles.Fields
	var img *profiles.Image

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		var err error
		fields, img, err = readMultipartProfile(w, r)
		if err != nil {
			writeError(w, err)
			return
		}
	} else if err := decodeJSON(r, "profile", &fields); err != nil {
		writeError(w, err)
		return
	}

	p, err := h.profiles.Save(r.Context(), session.UserID(r.Context()), fields, img)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profileResponse{Profile: p})
}

func readMultipartProfile(w http.ResponseWriter, r *http.Request) (profiles.Fields, *profiles.Image, error) {
	var fields profiles.Fields
	r.Body = http.MaxBytesReader(w, r.Body, maxImageBytes+maxJSONBody)
	if err := r.ParseMultipartForm(maxImageBytes); err != nil {
		return fields, nil, errorx.Wrap(err, errorx.KindValidation, "invalid multipart form")
	}
	if err := decodeBytes(r.Context(), []byte(r.FormValue("profile")), "profile", &fields); err != nil {
		return fields, nil, err
	}

	file, header, err := r.FormFile("image")
	if err == http.ErrMissingFile {
		return fields, nil, nil
	}
	if err != nil {
		return fields, nil, errorx.Wrap(err, errorx.KindValidation, "invalid image")
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxImageBytes+1))
	if err != nil {
		return fields, nil, errorx.Wrap(err, errorx.KindValidation, "read image")
	}
	if len(data) > maxImageBytes {
		return fields, nil, errorx.Validation("image too large")
	}
	if len(data) == 0 {
		return fields, nil, nil
	}

	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		return fields, nil, errorx.Validation("image must be a picture")
	}
	return fields, &profiles.Image{Data: data, ContentType: contentType, Ext: imageExt(header.Filename, contentType)}, nil
}

func imageExt(filename, contentType string) string {
	if ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), ".")); validExt(ext) {
		return ext
	}
	switch contentType {
	case "image/png":
		return "png"
	case "image/gif":
		return "gif"
	case "image/webp":
		return "webp"
	default:
		return "jpg"
	}
}

func validExt(ext string) bool {
	if ext == "" || len(ext) > 5 {
		return false
	}
	for _, c := range ext {
		if (c < 'a' || c > 'z') && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}
