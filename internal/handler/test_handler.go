package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"quizbook/internal/service"
)

type SearchRequest struct {
	Query string `json:"query" validate:"required"`
}

type SubmitRequest struct {
	TestID  string `json:"testId" validate:"required"`
	Answers []int  `json:"answers" validate:"required"`
}

type ImageResponse struct {
	ImageURL string `json:"imageUrl"`
}

func (h *Handlers) GetTest(w http.ResponseWriter, r *http.Request) {
	viewerID, _ := CurrentUserID(r.Context())

	test, err := h.TestService.GetTest(r.Context(), mux.Vars(r)["id"], viewerID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeSuccess(w, test, http.StatusOK)
}

func (h *Handlers) CreateTest(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req service.TestInput
	if !h.decode(w, r, &req) {
		return
	}

	test, err := h.TestService.CreateTest(r.Context(), userID, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeSuccess(w, test, http.StatusCreated)
}

func (h *Handlers) UpdateTest(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req service.TestInput
	if !h.decode(w, r, &req) {
		return
	}

	test, err := h.TestService.UpdateTest(r.Context(), mux.Vars(r)["id"], userID, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeSuccess(w, test, http.StatusOK)
}

func (h *Handlers) DeleteTest(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := h.TestService.DeleteTest(r.Context(), mux.Vars(r)["id"], userID); err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeMessage(w)
}

func (h *Handlers) UploadTestImage(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	file, header, ok := h.formImage(w, r, "image")
	if !ok {
		return
	}
	defer file.Close()

	url, err := h.TestService.UploadImage(r.Context(), mux.Vars(r)["id"], userID, header.Filename, file, header.Size)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeSuccess(w, ImageResponse{ImageURL: url}, http.StatusOK)
}

func (h *Handlers) GetLatestTests(w http.ResponseWriter, r *http.Request) {
	tests, err := h.TestService.GetLatest(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeSuccess(w, tests, http.StatusOK)
}

func (h *Handlers) GetUserTests(w http.ResponseWriter, r *http.Request) {
	tests, err := h.TestService.GetUserTests(r.Context(), mux.Vars(r)["userId"])
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeSuccess(w, tests, http.StatusOK)
}

func (h *Handlers) SearchTests(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if !h.decode(w, r, &req) {
		return
	}

	tests, err := h.TestService.Search(r.Context(), req.Query)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeSuccess(w, tests, http.StatusOK)
}

// PaginateTests reads page and limit from the query; bad values fall back to
// the service defaults.
func (h *Handlers) PaginateTests(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	result, err := h.TestService.Paginate(r.Context(), page, limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeSuccess(w, result, http.StatusOK)
}

func (h *Handlers) SubmitTest(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req SubmitRequest
	if !h.decode(w, r, &req) {
		return
	}

	result, err := h.TestService.Submit(r.Context(), userID, req.TestID, req.Answers)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeSuccess(w, result, http.StatusOK)
}

func (h *Handlers) LikeTest(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	state, err := h.TestService.Like(r.Context(), mux.Vars(r)["testId"], userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeSuccess(w, state, http.StatusOK)
}

func (h *Handlers) SaveTest(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	state, err := h.TestService.Save(r.Context(), mux.Vars(r)["testId"], userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeSuccess(w, state, http.StatusOK)
}
