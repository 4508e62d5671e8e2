package models

import (
	"time"
)

type User struct {
	UserID          string    `json:"id" db:"id"`
	Username        string    `json:"username" db:"username"`
	Email           string    `json:"email" db:"email"`
	PasswordHash    string    `json:"-" db:"password_hash"`
	Bio             string    `json:"bio" db:"bio"`
	AvatarURL       string    `json:"avatarUrl" db:"avatar_url"`
	IsActivated     bool      `json:"isActivated" db:"is_activated"`
	ActivationCode  string    `json:"-" db:"activation_code"`
	Likes           int       `json:"likes" db:"likes"`
	ShowLikedPosts  bool      `json:"showLikedPosts" db:"show_liked_posts"`
	ShowPassedTests bool      `json:"showPassedTests" db:"show_passed_tests"`
	Followers       IDs       `json:"followers" db:"followers"`
	Followings      IDs       `json:"followings" db:"followings"`
	LikedPosts      IDs       `json:"likedPosts" db:"liked_posts"`
	SavedPosts      IDs       `json:"savedPosts" db:"saved_posts"`
	LikedComments   IDs       `json:"likedComments" db:"liked_comments"`
	LikedAnswers    IDs       `json:"likedAnswers" db:"liked_answers"`
	CreatedTests    IDs       `json:"createdTests" db:"created_tests"`
	Comments        IDs       `json:"comments" db:"comments"`
	Answers         IDs       `json:"answers" db:"answers"`
	CreatedAt       time.Time `json:"createdAt" db:"created_at"`

	PassedTests []PassedTest `json:"passedTests" db:"-"`
}

// Public returns a copy that is safe to hand to clients.
func (u *User) Public() *User {
	if u == nil {
		return nil
	}
	cp := *u
	cp.PasswordHash = ""
	cp.ActivationCode = ""
	if cp.PassedTests == nil {
		cp.PassedTests = []PassedTest{}
	}
	return &cp
}

type PassedTest struct {
	UserID   string    `json:"-" db:"user_id"`
	TestID   string    `json:"testId" db:"test_id"`
	Score    int       `json:"score" db:"score"`
	PassedAt time.Time `json:"passedAt" db:"passed_at"`
}

type Test struct {
	TestID         string    `json:"id" db:"id"`
	AuthorID       string    `json:"authorId" db:"author_id"`
	Title          string    `json:"title" db:"title"`
	Description    string    `json:"description" db:"description"`
	ImageURL       string    `json:"imageUrl" db:"image_url"`
	Questions      Questions `json:"questions" db:"questions"`
	Likes          int       `json:"likes" db:"likes"`
	Saves          int       `json:"saves" db:"saves"`
	Comments       IDs       `json:"comments" db:"comments"`
	CommentAnswers IDs       `json:"commentAnswers" db:"comment_answers"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time `json:"updatedAt" db:"updated_at"`
}

type Comment struct {
	CommentID string    `json:"id" db:"id"`
	AuthorID  string    `json:"authorId" db:"author_id"`
	TestID    string    `json:"testId" db:"test_id"`
	Body      string    `json:"comment" db:"body"`
	Likes     int       `json:"likes" db:"likes"`
	Answers   IDs       `json:"answers" db:"answers"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

type Answer struct {
	AnswerID        string    `json:"id" db:"id"`
	AuthorID        string    `json:"authorId" db:"author_id"`
	TestID          string    `json:"testId" db:"test_id"`
	ParentCommentID string    `json:"parentComment" db:"parent_comment_id"`
	Body            string    `json:"comment" db:"body"`
	Likes           int       `json:"likes" db:"likes"`
	CreatedAt       time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time `json:"updatedAt" db:"updated_at"`
}

type RefreshToken struct {
	TokenID   string    `json:"id" db:"id"`
	UserID    string    `json:"userId" db:"user_id"`
	Token     string    `json:"-" db:"token"`
	ExpiresAt time.Time `json:"expiresAt" db:"expires_at"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// Stats holds row counts per collection.
type Stats struct {
	Users         int `json:"users" db:"users"`
	Tests         int `json:"tests" db:"tests"`
	Comments      int `json:"comments" db:"comments"`
	Answers       int `json:"answers" db:"answers"`
	RefreshTokens int `json:"refreshTokens" db:"refresh_tokens"`
}
