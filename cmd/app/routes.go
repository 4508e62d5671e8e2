package app

import (
	"net/http"

	"github.com/gorilla/mux"

	handlers "quizbook/internal/handler"
	"quizbook/internal/middleware"
)

// Routes builds the route table. Handlers wrapped in auth need a valid access
// token; those wrapped in optional only use it to identify the viewer.
func (a *App) Routes() *mux.Router {
	h := a.Handlers
	auth := func(f http.HandlerFunc) http.Handler { return middleware.Authenticate(a.Services.Token)(f) }
	optional := func(f http.HandlerFunc) http.Handler { return middleware.Identify(a.Services.Token)(f) }

	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlers.WriteError(w, "Not found", http.StatusNotFound)
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlers.WriteError(w, "Method not allowed", http.StatusMethodNotAllowed)
	})

	r.HandleFunc("/health", h.HealthHandler).Methods(http.MethodGet)
	r.HandleFunc("/stats", h.StatsHandler).Methods(http.MethodGet)
	r.HandleFunc("/tables", h.TablesHandler).Methods(http.MethodGet)

	// auth
	r.HandleFunc("/auth/register", h.Register).Methods(http.MethodPost)
	r.HandleFunc("/auth/verify/{code}", h.VerifyEmail).Methods(http.MethodGet)
	r.Handle("/auth/verify", auth(h.NewVerificationCode)).Methods(http.MethodPost)
	r.HandleFunc("/auth/login", h.Login).Methods(http.MethodPost)
	r.HandleFunc("/auth/logout", h.Logout).Methods(http.MethodPost)
	r.HandleFunc("/auth/refresh", h.RefreshToken).Methods(http.MethodGet)

	// users
	r.Handle("/user", auth(h.GetCurrentUser)).Methods(http.MethodGet)
	r.Handle("/user", auth(h.UpdateUser)).Methods(http.MethodPut)
	r.Handle("/follow/{userId}", auth(h.Follow)).Methods(http.MethodPut)
	r.Handle("/unfollow/{userId}", auth(h.Unfollow)).Methods(http.MethodPut)
	r.Handle("/avatar", auth(h.SetAvatar)).Methods(http.MethodPut)
	r.Handle("/userPage/{userId}", optional(h.GetUserPage)).Methods(http.MethodGet)
	r.Handle("/likedPosts/{userId}", optional(h.GetLikedPosts)).Methods(http.MethodGet)
	r.Handle("/savedPosts/{userId}", optional(h.GetSavedPosts)).Methods(http.MethodGet)
	r.Handle("/passedTests/{userId}", optional(h.GetPassedTests)).Methods(http.MethodGet)
	r.Handle("/followers/{userId}", optional(h.GetFollowers)).Methods(http.MethodGet)
	r.Handle("/followings/{userId}", optional(h.GetFollowings)).Methods(http.MethodGet)

	// tests
	r.Handle("/test/{id}", optional(h.GetTest)).Methods(http.MethodGet)
	r.Handle("/test", auth(h.CreateTest)).Methods(http.MethodPost)
	r.Handle("/test/{id}", auth(h.UpdateTest)).Methods(http.MethodPut)
	r.Handle("/test/{id}", auth(h.DeleteTest)).Methods(http.MethodDelete)
	r.Handle("/test/{id}/image", auth(h.UploadTestImage)).Methods(http.MethodPut)
	r.HandleFunc("/tests", h.GetLatestTests).Methods(http.MethodGet)
	r.HandleFunc("/tests/search", h.SearchTests).Methods(http.MethodPost)
	r.Handle("/tests/{userId}", auth(h.GetUserTests)).Methods(http.MethodGet)
	r.HandleFunc("/testsPagination", h.PaginateTests).Methods(http.MethodGet)
	r.Handle("/submitTest", auth(h.SubmitTest)).Methods(http.MethodPost)
	r.Handle("/like/{testId}", auth(h.LikeTest)).Methods(http.MethodPut)
	r.Handle("/save/{testId}", auth(h.SaveTest)).Methods(http.MethodPut)

	// comments and answers
	r.HandleFunc("/comments/{testId}", h.GetComments).Methods(http.MethodGet)
	r.Handle("/comments", auth(h.CreateComment)).Methods(http.MethodPost)
	r.Handle("/comments/{commentId}", auth(h.UpdateComment)).Methods(http.MethodPut)
	r.Handle("/comments/{testId}/{commentId}", auth(h.RemoveComment)).Methods(http.MethodDelete)
	r.Handle("/comments/{commentId}/like", auth(h.LikeComment)).Methods(http.MethodPut)
	r.HandleFunc("/answers/{commentId}", h.GetAnswers).Methods(http.MethodGet)
	r.Handle("/answers", auth(h.CreateAnswer)).Methods(http.MethodPost)
	r.Handle("/answers/{answerId}", auth(h.UpdateAnswer)).Methods(http.MethodPut)
	r.Handle("/answers/{parentId}/{answerId}", auth(h.RemoveAnswer)).Methods(http.MethodDelete)
	r.Handle("/answers/{answerId}/like", auth(h.LikeAnswer)).Methods(http.MethodPut)

	return r
}

// Handler is the route table behind CORS and request logging.
func (a *App) Handler() http.Handler {
	return middleware.Chain(
		a.Routes(),
		middleware.CORS(a.Cfg.CORSOrigin),
		middleware.Logging,
	)
}
