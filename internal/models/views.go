package models

// AuthorPreview is the projection of a comment or answer author.
type AuthorPreview struct {
	UserID   string `json:"id" db:"id"`
	Username string `json:"username" db:"username"`
}

// UserPreview is the projection used for test authors and follow lists.
type UserPreview struct {
	UserID    string `json:"id" db:"id"`
	Username  string `json:"username" db:"username"`
	AvatarURL string `json:"avatarUrl" db:"avatar_url"`
}

type CommentView struct {
	Comment
	Author AuthorPreview `json:"author" db:"author"`
}

type AnswerView struct {
	Answer
	Author AuthorPreview `json:"author" db:"author"`
}

type TestView struct {
	Test
	Author UserPreview `json:"author" db:"author"`
}

type PassedTestView struct {
	TestView
	FinalResult int `json:"finalResult"`
}

// UserPage is a public profile with the created tests resolved.
type UserPage struct {
	*User
	CreatedTests []TestView `json:"createdTests"`
}

type LikeState struct {
	Liked bool `json:"liked"`
	Likes int  `json:"likes"`
}

type SaveState struct {
	Saved bool `json:"saved"`
	Saves int  `json:"saves"`
}

type TestPage struct {
	Tests      []TestView `json:"tests"`
	Page       int        `json:"page"`
	Limit      int        `json:"limit"`
	Total      int        `json:"total"`
	TotalPages int        `json:"totalPages"`
}

type SubmitResult struct {
	TestID  string `json:"testId"`
	Score   int    `json:"score"`
	Correct int    `json:"correct"`
	Total   int    `json:"total"`
}
