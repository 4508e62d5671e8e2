package test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"quizbook/internal/apperror"
	handlers "quizbook/internal/handler"
	"quizbook/internal/models"
	"quizbook/internal/service"
)

// multipartRequest builds a multipart body with one file part under field.
func multipartRequest(t *testing.T, target, field, fileName, contentType string, data []byte, userID string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, field, fileName))
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPut, target, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if userID != "" {
		req = req.WithContext(handlers.WithUserID(req.Context(), userID))
	}
	return req
}

func TestGetCurrentUserHandler(t *testing.T) {
	t.Run("unauthenticated", func(t *testing.T) {
		handler, m := createTestHandler()
		rr := httptest.NewRecorder()

		handler.GetCurrentUser(rr, jsonRequest(http.MethodGet, "/user", nil, nil, ""))

		assertJSONError(t, rr, http.StatusUnauthorized, "Not authorized")
		m.users.AssertNotCalled(t, "GetUser", mock.Anything, mock.Anything)
	})

	t.Run("found", func(t *testing.T) {
		handler, m := createTestHandler()
		m.users.On("GetUser", mockCtx, "u1").Return(&models.User{UserID: "u1", Username: "alice", PasswordHash: "hash"}, nil)
		rr := httptest.NewRecorder()

		handler.GetCurrentUser(rr, jsonRequest(http.MethodGet, "/user", nil, nil, "u1"))

		assertJSONSuccess(t, rr, http.StatusOK)
		var resp handlers.UserResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		require.NotNil(t, resp.User)
		assert.Equal(t, "alice", resp.User.Username)
		assert.Contains(t, rr.Body.String(), `{"user":{`)
		assert.NotContains(t, rr.Body.String(), "hash")
	})

	t.Run("deleted account", func(t *testing.T) {
		handler, m := createTestHandler()
		m.users.On("GetUser", mockCtx, "u1").Return(nil, apperror.NotFound("User not found"))
		rr := httptest.NewRecorder()

		handler.GetCurrentUser(rr, jsonRequest(http.MethodGet, "/user", nil, nil, "u1"))

		assertJSONError(t, rr, http.StatusNotFound, "User not found")
	})
}

func TestUpdateUserHandler(t *testing.T) {
	t.Run("updated", func(t *testing.T) {
		handler, m := createTestHandler()
		input := service.UpdateUserInput{Username: "alice2", Bio: "hi", ShowLikedPosts: true}
		m.users.On("UpdateUser", mockCtx, "u1", input).Return(nil)
		rr := httptest.NewRecorder()

		handler.UpdateUser(rr, jsonRequest(http.MethodPut, "/user", input, nil, "u1"))

		assertJSONSuccess(t, rr, http.StatusOK)
		m.users.AssertExpectations(t)
	})

	t.Run("username taken", func(t *testing.T) {
		handler, m := createTestHandler()
		input := service.UpdateUserInput{Username: "bob"}
		m.users.On("UpdateUser", mockCtx, "u1", input).Return(apperror.Conflict("Username already exists"))
		rr := httptest.NewRecorder()

		handler.UpdateUser(rr, jsonRequest(http.MethodPut, "/user", input, nil, "u1"))

		assertJSONError(t, rr, http.StatusConflict, "Username already exists")
	})

	t.Run("missing username", func(t *testing.T) {
		handler, m := createTestHandler()
		rr := httptest.NewRecorder()

		handler.UpdateUser(rr, jsonRequest(http.MethodPut, "/user", map[string]string{"bio": "x"}, nil, "u1"))

		assertJSONError(t, rr, http.StatusBadRequest, "Username")
		m.users.AssertNotCalled(t, "UpdateUser", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestFollowHandlers(t *testing.T) {
	vars := map[string]string{"userId": "u2"}

	t.Run("follow", func(t *testing.T) {
		handler, m := createTestHandler()
		m.users.On("Follow", mockCtx, "u2", "u1").Return(nil)
		rr := httptest.NewRecorder()

		handler.Follow(rr, jsonRequest(http.MethodPut, "/follow/u2", nil, vars, "u1"))

		assertJSONSuccess(t, rr, http.StatusOK)
		m.users.AssertExpectations(t)
	})

	t.Run("already following", func(t *testing.T) {
		handler, m := createTestHandler()
		m.users.On("Follow", mockCtx, "u2", "u1").Return(apperror.Conflict("Already following"))
		rr := httptest.NewRecorder()

		handler.Follow(rr, jsonRequest(http.MethodPut, "/follow/u2", nil, vars, "u1"))

		assertJSONError(t, rr, http.StatusConflict, "Already following")
	})

	t.Run("self", func(t *testing.T) {
		handler, m := createTestHandler()
		m.users.On("Follow", mockCtx, "u1", "u1").Return(apperror.Forbidden("You can't follow yourself"))
		rr := httptest.NewRecorder()

		handler.Follow(rr, jsonRequest(http.MethodPut, "/follow/u1", nil, map[string]string{"userId": "u1"}, "u1"))

		assertJSONError(t, rr, http.StatusForbidden, "yourself")
	})

	t.Run("unfollow not following", func(t *testing.T) {
		handler, m := createTestHandler()
		m.users.On("Unfollow", mockCtx, "u2", "u1").Return(apperror.Conflict("Already unfollowed"))
		rr := httptest.NewRecorder()

		handler.Unfollow(rr, jsonRequest(http.MethodPut, "/unfollow/u2", nil, vars, "u1"))

		assertJSONError(t, rr, http.StatusConflict, "Already unfollowed")
	})
}

func TestSetAvatarHandler_JSON(t *testing.T) {
	handler, m := createTestHandler()
	m.users.On("SetAvatar", mockCtx, "u1", "https://cdn.example.com/a.png").Return(nil)
	rr := httptest.NewRecorder()

	handler.SetAvatar(rr, jsonRequest(http.MethodPut, "/avatar",
		handlers.AvatarRequest{AvatarURL: "https://cdn.example.com/a.png"}, nil, "u1"))

	assertJSONSuccess(t, rr, http.StatusOK)
	assert.JSONEq(t, `{"avatarUrl":"https://cdn.example.com/a.png"}`, rr.Body.String())
}

func TestSetAvatarHandler_InvalidURL(t *testing.T) {
	handler, m := createTestHandler()
	rr := httptest.NewRecorder()

	handler.SetAvatar(rr, jsonRequest(http.MethodPut, "/avatar", handlers.AvatarRequest{AvatarURL: "not a url"}, nil, "u1"))

	assertJSONError(t, rr, http.StatusBadRequest, "AvatarURL")
	m.users.AssertNotCalled(t, "SetAvatar", mock.Anything, mock.Anything, mock.Anything)
}

func TestSetAvatarHandler_Upload(t *testing.T) {
	handler, m := createTestHandler()
	data := []byte("\x89PNG fake image")
	m.users.On("UploadAvatar", mockCtx, "u1", "me.png", mock.Anything, int64(len(data))).
		Return("http://localhost:9000/quizbook/avatars/u1.png", nil)
	rr := httptest.NewRecorder()

	handler.SetAvatar(rr, multipartRequest(t, "/avatar", "avatar", "me.png", "image/png", data, "u1"))

	assertJSONSuccess(t, rr, http.StatusOK)
	assert.Contains(t, rr.Body.String(), "avatars/u1.png")
	m.users.AssertExpectations(t)
}

func TestSetAvatarHandler_UnsupportedType(t *testing.T) {
	handler, m := createTestHandler()
	rr := httptest.NewRecorder()

	handler.SetAvatar(rr, multipartRequest(t, "/avatar", "avatar", "notes.txt", "text/plain", []byte("hello"), "u1"))

	assertJSONError(t, rr, http.StatusBadRequest, "Unsupported file type")
	m.users.AssertNotCalled(t, "UploadAvatar", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSetAvatarHandler_TooLarge(t *testing.T) {
	handler, m := createTestHandler()
	data := bytes.Repeat([]byte("a"), int(handler.Cfg.MaxUploadSize)+1024)
	rr := httptest.NewRecorder()

	handler.SetAvatar(rr, multipartRequest(t, "/avatar", "avatar", "big.png", "image/png", data, "u1"))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	m.users.AssertNotCalled(t, "UploadAvatar", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func userPage(showLiked, showPassed bool) *models.UserPage {
	return &models.UserPage{
		User: &models.User{
			UserID:          "u2",
			Username:        "bob",
			ShowLikedPosts:  showLiked,
			ShowPassedTests: showPassed,
			LikedPosts:      models.IDs{"t1"},
			PassedTests:     []models.PassedTest{{TestID: "t1", Score: 80}},
		},
		CreatedTests: []models.TestView{},
	}
}

func TestGetUserPageHandler(t *testing.T) {
	vars := map[string]string{"userId": "u2"}

	tests := []struct {
		name       string
		viewer     string
		showLiked  bool
		showPassed bool
		wantLiked  int
		wantPassed int
	}{
		{"anonymous sees nothing private", "", false, false, 0, 0},
		{"public lists", "", true, true, 1, 1},
		{"owner sees private lists", "u2", false, false, 1, 1},
		{"other user", "u3", true, false, 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, m := createTestHandler()
			m.users.On("GetUserPage", mockCtx, "u2").Return(userPage(tt.showLiked, tt.showPassed), nil)
			rr := httptest.NewRecorder()

			handler.GetUserPage(rr, jsonRequest(http.MethodGet, "/userPage/u2", nil, vars, tt.viewer))

			assertJSONSuccess(t, rr, http.StatusOK)
			var page struct {
				LikedPosts  []string            `json:"likedPosts"`
				PassedTests []models.PassedTest `json:"passedTests"`
			}
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &page))
			assert.Len(t, page.LikedPosts, tt.wantLiked)
			assert.Len(t, page.PassedTests, tt.wantPassed)
		})
	}
}

func TestGetLikedPostsHandler(t *testing.T) {
	vars := map[string]string{"userId": "u2"}

	t.Run("hidden from others", func(t *testing.T) {
		handler, m := createTestHandler()
		m.users.On("GetUser", mockCtx, "u2").Return(&models.User{UserID: "u2", ShowLikedPosts: false}, nil)
		rr := httptest.NewRecorder()

		handler.GetLikedPosts(rr, jsonRequest(http.MethodGet, "/likedPosts/u2", nil, vars, "u1"))

		assertJSONSuccess(t, rr, http.StatusOK)
		assert.JSONEq(t, `[]`, rr.Body.String())
		m.users.AssertNotCalled(t, "GetLikedPosts", mock.Anything, mock.Anything)
	})

	t.Run("owner", func(t *testing.T) {
		handler, m := createTestHandler()
		m.users.On("GetLikedPosts", mockCtx, "u2").Return([]models.TestView{{Test: models.Test{TestID: "t1"}}}, nil)
		rr := httptest.NewRecorder()

		handler.GetLikedPosts(rr, jsonRequest(http.MethodGet, "/likedPosts/u2", nil, vars, "u2"))

		assertJSONSuccess(t, rr, http.StatusOK)
		assert.Contains(t, rr.Body.String(), `"id":"t1"`)
		m.users.AssertNotCalled(t, "GetUser", mock.Anything, mock.Anything)
	})

	t.Run("unknown user", func(t *testing.T) {
		handler, m := createTestHandler()
		m.users.On("GetUser", mockCtx, "u2").Return(nil, apperror.NotFound("User not found"))
		rr := httptest.NewRecorder()

		handler.GetLikedPosts(rr, jsonRequest(http.MethodGet, "/likedPosts/u2", nil, vars, ""))

		assertJSONError(t, rr, http.StatusNotFound, "User not found")
	})
}

func TestGetPassedTestsHandler(t *testing.T) {
	handler, m := createTestHandler()
	m.users.On("GetUser", mockCtx, "u2").Return(&models.User{UserID: "u2", ShowPassedTests: true}, nil)
	m.users.On("GetPassedTests", mockCtx, "u2").Return([]models.PassedTestView{
		{TestView: models.TestView{Test: models.Test{TestID: "t1"}}, FinalResult: 67},
	}, nil)
	rr := httptest.NewRecorder()

	handler.GetPassedTests(rr, jsonRequest(http.MethodGet, "/passedTests/u2", nil, map[string]string{"userId": "u2"}, ""))

	assertJSONSuccess(t, rr, http.StatusOK)
	assert.Contains(t, rr.Body.String(), `"finalResult":67`)
}

func TestFollowListsHandlers(t *testing.T) {
	handler, m := createTestHandler()
	vars := map[string]string{"userId": "u1"}
	m.users.On("GetFollowers", mockCtx, "u1").Return([]models.UserPreview{{UserID: "u2", Username: "bob"}}, nil)
	m.users.On("GetFollowings", mockCtx, "u1").Return([]models.UserPreview{}, nil)
	m.users.On("GetSavedPosts", mockCtx, "u1").Return(nil, apperror.NotFound("Test not found"))

	rr := httptest.NewRecorder()
	handler.GetFollowers(rr, jsonRequest(http.MethodGet, "/followers/u1", nil, vars, ""))
	assertJSONSuccess(t, rr, http.StatusOK)
	assert.Contains(t, rr.Body.String(), "bob")

	rr = httptest.NewRecorder()
	handler.GetFollowings(rr, jsonRequest(http.MethodGet, "/followings/u1", nil, vars, ""))
	assertJSONSuccess(t, rr, http.StatusOK)
	assert.JSONEq(t, `[]`, rr.Body.String())

	rr = httptest.NewRecorder()
	handler.GetSavedPosts(rr, jsonRequest(http.MethodGet, "/savedPosts/u1", nil, vars, ""))
	assertJSONError(t, rr, http.StatusNotFound, "Test not found")
}
