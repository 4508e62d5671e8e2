package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"quizbook/internal/models"
	"quizbook/internal/service"
)

type AvatarRequest struct {
	AvatarURL string `json:"avatarUrl" validate:"required,url"`
}

type AvatarResponse struct {
	AvatarURL string `json:"avatarUrl"`
}

type UserResponse struct {
	User *models.User `json:"user"`
}

func (h *Handlers) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	user, err := h.UserService.GetUser(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeSuccess(w, UserResponse{User: user}, http.StatusOK)
}

func (h *Handlers) UpdateUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req service.UpdateUserInput
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.UserService.UpdateUser(r.Context(), userID, req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeMessage(w)
}

func (h *Handlers) Follow(w http.ResponseWriter, r *http.Request) {
	subscriberID, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := h.UserService.Follow(r.Context(), mux.Vars(r)["userId"], subscriberID); err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeMessage(w)
}

func (h *Handlers) Unfollow(w http.ResponseWriter, r *http.Request) {
	subscriberID, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := h.UserService.Unfollow(r.Context(), mux.Vars(r)["userId"], subscriberID); err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeMessage(w)
}

// SetAvatar accepts either a multipart "avatar" file or a JSON avatarUrl.
func (h *Handlers) SetAvatar(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	if isMultipart(r) {
		file, header, ok := h.formImage(w, r, "avatar")
		if !ok {
			return
		}
		defer file.Close()

		url, err := h.UserService.UploadAvatar(r.Context(), userID, header.Filename, file, header.Size)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeSuccess(w, AvatarResponse{AvatarURL: url}, http.StatusOK)
		return
	}

	var req AvatarRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.UserService.SetAvatar(r.Context(), userID, req.AvatarURL); err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeSuccess(w, AvatarResponse{AvatarURL: req.AvatarURL}, http.StatusOK)
}

// GetUserPage hides the liked and passed lists the owner keeps private.
func (h *Handlers) GetUserPage(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]

	page, err := h.UserService.GetUserPage(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	if !isViewer(r, userID) {
		if !page.ShowLikedPosts {
			page.LikedPosts = models.IDs{}
		}
		if !page.ShowPassedTests {
			page.PassedTests = []models.PassedTest{}
		}
	}

	writeSuccess(w, page, http.StatusOK)
}

func (h *Handlers) GetLikedPosts(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]

	hidden, err := h.hiddenFrom(r, userID, func(u *models.User) bool { return u.ShowLikedPosts })
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if hidden {
		writeSuccess(w, []models.TestView{}, http.StatusOK)
		return
	}

	tests, err := h.UserService.GetLikedPosts(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeSuccess(w, tests, http.StatusOK)
}

func (h *Handlers) GetSavedPosts(w http.ResponseWriter, r *http.Request) {
	tests, err := h.UserService.GetSavedPosts(r.Context(), mux.Vars(r)["userId"])
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeSuccess(w, tests, http.StatusOK)
}

func (h *Handlers) GetPassedTests(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]

	hidden, err := h.hiddenFrom(r, userID, func(u *models.User) bool { return u.ShowPassedTests })
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if hidden {
		writeSuccess(w, []models.PassedTestView{}, http.StatusOK)
		return
	}

	tests, err := h.UserService.GetPassedTests(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeSuccess(w, tests, http.StatusOK)
}

func (h *Handlers) GetFollowers(w http.ResponseWriter, r *http.Request) {
	users, err := h.UserService.GetFollowers(r.Context(), mux.Vars(r)["userId"])
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeSuccess(w, users, http.StatusOK)
}

func (h *Handlers) GetFollowings(w http.ResponseWriter, r *http.Request) {
	users, err := h.UserService.GetFollowings(r.Context(), mux.Vars(r)["userId"])
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeSuccess(w, users, http.StatusOK)
}

func isViewer(r *http.Request, userID string) bool {
	viewer, ok := CurrentUserID(r.Context())
	return ok && viewer == userID
}

// hiddenFrom reports whether userID keeps a list private from the current
// viewer. Owners always see their own lists.
func (h *Handlers) hiddenFrom(r *http.Request, userID string, show func(*models.User) bool) (bool, error) {
	if isViewer(r, userID) {
		return false, nil
	}

	user, err := h.UserService.GetUser(r.Context(), userID)
	if err != nil {
		return false, err
	}
	return !show(user), nil
}
