package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
)

type CommentRequest struct {
	Comment string `json:"comment" validate:"required,max=2000"`
	TestID  string `json:"testId" validate:"required"`
}

type AnswerRequest struct {
	Comment       string `json:"comment" validate:"required,max=2000"`
	TestID        string `json:"testId" validate:"required"`
	ParentComment string `json:"parentComment" validate:"required"`
}

type AnswerUpdateRequest struct {
	Comment string `json:"comment" validate:"required,max=2000"`
}

func (h *Handlers) GetComments(w http.ResponseWriter, r *http.Request) {
	comments, err := h.CommentService.GetComments(r.Context(), mux.Vars(r)["testId"])
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeSuccess(w, comments, http.StatusOK)
}

func (h *Handlers) CreateComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req CommentRequest
	if !h.decode(w, r, &req) {
		return
	}

	comment, err := h.CommentService.CreateComment(r.Context(), req.Comment, userID, req.TestID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeSuccess(w, comment, http.StatusCreated)
}

func (h *Handlers) UpdateComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req CommentRequest
	if !h.decode(w, r, &req) {
		return
	}

	comment, err := h.CommentService.UpdateComment(r.Context(), mux.Vars(r)["commentId"], req.TestID, userID, req.Comment)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeSuccess(w, comment, http.StatusOK)
}

func (h *Handlers) RemoveComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	vars := mux.Vars(r)
	if err := h.CommentService.RemoveComment(r.Context(), vars["commentId"], userID, vars["testId"]); err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeMessage(w)
}

func (h *Handlers) LikeComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	state, err := h.CommentService.LikeComment(r.Context(), mux.Vars(r)["commentId"], userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeSuccess(w, state, http.StatusOK)
}

func (h *Handlers) GetAnswers(w http.ResponseWriter, r *http.Request) {
	answers, err := h.CommentService.GetAnswers(r.Context(), mux.Vars(r)["commentId"])
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeSuccess(w, answers, http.StatusOK)
}

func (h *Handlers) CreateAnswer(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req AnswerRequest
	if !h.decode(w, r, &req) {
		return
	}

	answer, err := h.CommentService.CreateAnswer(r.Context(), req.Comment, userID, req.TestID, req.ParentComment)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeSuccess(w, answer, http.StatusCreated)
}

func (h *Handlers) UpdateAnswer(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req AnswerUpdateRequest
	if !h.decode(w, r, &req) {
		return
	}

	answer, err := h.CommentService.UpdateAnswer(r.Context(), mux.Vars(r)["answerId"], userID, req.Comment)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeSuccess(w, answer, http.StatusOK)
}

func (h *Handlers) RemoveAnswer(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	vars := mux.Vars(r)
	if err := h.CommentService.RemoveAnswer(r.Context(), vars["parentId"], vars["answerId"], userID); err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeMessage(w)
}

func (h *Handlers) LikeAnswer(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	state, err := h.CommentService.LikeAnswer(r.Context(), mux.Vars(r)["answerId"], userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeSuccess(w, state, http.StatusOK)
}
