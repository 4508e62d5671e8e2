package service

import (
	"context"

	"quizbook/internal/apperror"
	"quizbook/internal/models"
	"quizbook/internal/repository"
)

// CommentService owns comments and their answers. Rows are locked in the
// order test, comment, answer, user.
type CommentService interface {
	CreateComment(ctx context.Context, body, userID, testID string) (*models.CommentView, error)
	UpdateComment(ctx context.Context, commentID, testID, userID, body string) (*models.CommentView, error)
	RemoveComment(ctx context.Context, commentID, userID, testID string) error
	LikeComment(ctx context.Context, commentID, userID string) (*models.LikeState, error)
	GetComments(ctx context.Context, testID string) ([]models.CommentView, error)

	CreateAnswer(ctx context.Context, body, userID, testID, parentID string) (*models.AnswerView, error)
	UpdateAnswer(ctx context.Context, answerID, userID, body string) (*models.AnswerView, error)
	RemoveAnswer(ctx context.Context, parentID, answerID, userID string) error
	LikeAnswer(ctx context.Context, answerID, userID string) (*models.LikeState, error)
	GetAnswers(ctx context.Context, commentID string) ([]models.AnswerView, error)
}

type commentService struct {
	repo *repository.Repository
	tx   repository.Transactor
}

func NewCommentService(repo *repository.Repository, tx repository.Transactor) CommentService {
	return &commentService{repo: repo, tx: tx}
}

func (s *commentService) CreateComment(ctx context.Context, body, userID, testID string) (*models.CommentView, error) {
	var view *models.CommentView

	err := s.tx.WithTx(ctx, "create comment", func(repo *repository.Repository) error {
		if _, err := repo.Test.LockByID(ctx, testID); err != nil {
			return lookupErr(err, msgTestNotFound)
		}
		if _, err := repo.User.LockByID(ctx, userID); err != nil {
			return lookupErr(err, msgUserNotFound)
		}

		comment := &models.Comment{AuthorID: userID, TestID: testID, Body: body}
		if err := repo.Comment.Create(ctx, comment); err != nil {
			return err
		}
		if _, err := repo.Test.AddRef(ctx, testID, repository.TestComments, comment.CommentID); err != nil {
			return err
		}
		if _, err := repo.User.AddRef(ctx, userID, repository.UserComments, comment.CommentID); err != nil {
			return err
		}

		v, err := repo.Comment.GetView(ctx, comment.CommentID)
		if err != nil {
			return err
		}
		view = v
		return nil
	})
	if err != nil {
		return nil, internalErr(err, "could not create comment")
	}

	return view, nil
}

func (s *commentService) UpdateComment(ctx context.Context, commentID, testID, userID, body string) (*models.CommentView, error) {
	var view *models.CommentView

	err := s.tx.WithTx(ctx, "update comment", func(repo *repository.Repository) error {
		if _, err := repo.User.GetByID(ctx, userID); err != nil {
			return lookupErr(err, msgUserNotFound)
		}
		if _, err := repo.Test.GetByID(ctx, testID); err != nil {
			return lookupErr(err, msgTestNotFound)
		}

		comment, err := repo.Comment.LockByID(ctx, commentID)
		if err != nil {
			return lookupErr(err, msgCommentNotFound)
		}
		if comment.TestID != testID {
			return apperror.NotFound(msgCommentNotFound)
		}
		if comment.AuthorID != userID {
			return apperror.Forbidden(msgAccessDenied)
		}

		if err := repo.Comment.UpdateBody(ctx, commentID, body); err != nil {
			return err
		}

		v, err := repo.Comment.GetView(ctx, commentID)
		if err != nil {
			return err
		}
		view = v
		return nil
	})
	if err != nil {
		return nil, internalErr(err, "could not update comment")
	}

	return view, nil
}

// RemoveComment deletes the comment with all its answers and pulls every
// reference to them. Either everything goes or nothing does.
func (s *commentService) RemoveComment(ctx context.Context, commentID, userID, testID string) error {
	err := s.tx.WithTx(ctx, "remove comment", func(repo *repository.Repository) error {
		if _, err := repo.Test.LockByID(ctx, testID); err != nil {
			return lookupErr(err, msgTestNotFound)
		}
		if _, err := repo.User.GetByID(ctx, userID); err != nil {
			return lookupErr(err, msgUserNotFound)
		}

		comment, err := repo.Comment.LockByID(ctx, commentID)
		if err != nil {
			return lookupErr(err, msgCommentNotFound)
		}
		if comment.TestID != testID {
			return apperror.NotFound(msgCommentNotFound)
		}
		if comment.AuthorID != userID {
			return apperror.Forbidden(msgAccessDenied)
		}

		answers, err := repo.Answer.LockByComment(ctx, commentID)
		if err != nil {
			return err
		}
		answerIDs := make([]string, len(answers))
		for i, a := range answers {
			answerIDs[i] = a.AnswerID
		}

		if err := repo.User.RemoveRefEverywhere(ctx, repository.UserLikedAnswers, answerIDs...); err != nil {
			return err
		}
		if err := repo.User.RemoveRefEverywhere(ctx, repository.UserAnswers, answerIDs...); err != nil {
			return err
		}
		if err := repo.Test.RemoveRef(ctx, testID, repository.TestCommentAnswers, answerIDs...); err != nil {
			return err
		}
		if _, err := repo.Answer.DeleteByComment(ctx, commentID); err != nil {
			return err
		}

		if err := repo.Test.RemoveRef(ctx, testID, repository.TestComments, commentID); err != nil {
			return err
		}
		if err := repo.User.RemoveRefEverywhere(ctx, repository.UserLikedComments, commentID); err != nil {
			return err
		}
		if _, err := repo.User.RemoveRef(ctx, comment.AuthorID, repository.UserComments, commentID); err != nil {
			return err
		}

		return repo.Comment.Delete(ctx, commentID)
	})
	return internalErr(err, "could not remove comment")
}

func (s *commentService) LikeComment(ctx context.Context, commentID, userID string) (*models.LikeState, error) {
	var state models.LikeState

	err := s.tx.WithTx(ctx, "like comment", func(repo *repository.Repository) error {
		comment, err := repo.Comment.GetByID(ctx, commentID)
		if err != nil {
			return lookupErr(err, msgCommentNotFound)
		}
		// Same order as RemoveComment so a like queues behind a running cascade.
		if _, err := repo.Test.LockByID(ctx, comment.TestID); err != nil {
			return lookupErr(err, msgCommentNotFound)
		}
		if _, err := repo.Comment.LockByID(ctx, commentID); err != nil {
			return lookupErr(err, msgCommentNotFound)
		}

		user, err := repo.User.LockByID(ctx, userID)
		if err != nil {
			return lookupErr(err, msgUserNotFound)
		}

		delta := 1
		if user.LikedComments.Has(commentID) {
			delta = -1
			_, err = repo.User.RemoveRef(ctx, userID, repository.UserLikedComments, commentID)
		} else {
			_, err = repo.User.AddRef(ctx, userID, repository.UserLikedComments, commentID)
		}
		if err != nil {
			return err
		}

		likes, err := repo.Comment.AdjustLikes(ctx, commentID, delta)
		if err != nil {
			return err
		}

		state = models.LikeState{Liked: delta > 0, Likes: likes}
		return nil
	})
	if err != nil {
		return nil, internalErr(err, "could not like comment")
	}

	return &state, nil
}

func (s *commentService) GetComments(ctx context.Context, testID string) ([]models.CommentView, error) {
	if _, err := s.repo.Test.GetByID(ctx, testID); err != nil {
		return nil, lookupErr(err, msgTestNotFound)
	}

	views, err := s.repo.Comment.ListViewsByTest(ctx, testID)
	if err != nil {
		return nil, apperror.Internal(err, "could not load comments")
	}
	return views, nil
}

func (s *commentService) CreateAnswer(ctx context.Context, body, userID, testID, parentID string) (*models.AnswerView, error) {
	var view *models.AnswerView

	err := s.tx.WithTx(ctx, "create answer", func(repo *repository.Repository) error {
		if _, err := repo.Test.LockByID(ctx, testID); err != nil {
			return lookupErr(err, msgTestNotFound)
		}

		comment, err := repo.Comment.LockByID(ctx, parentID)
		if err != nil {
			return lookupErr(err, msgCommentNotFound)
		}
		if comment.TestID != testID {
			return apperror.BadRequest("Comment does not belong to this test")
		}

		if _, err := repo.User.LockByID(ctx, userID); err != nil {
			return lookupErr(err, msgUserNotFound)
		}

		answer := &models.Answer{AuthorID: userID, TestID: testID, ParentCommentID: parentID, Body: body}
		if err := repo.Answer.Create(ctx, answer); err != nil {
			return err
		}
		if _, err := repo.Test.AddRef(ctx, testID, repository.TestCommentAnswers, answer.AnswerID); err != nil {
			return err
		}
		if _, err := repo.User.AddRef(ctx, userID, repository.UserAnswers, answer.AnswerID); err != nil {
			return err
		}
		if _, err := repo.Comment.AddAnswer(ctx, parentID, answer.AnswerID); err != nil {
			return err
		}

		v, err := repo.Answer.GetView(ctx, answer.AnswerID)
		if err != nil {
			return err
		}
		view = v
		return nil
	})
	if err != nil {
		return nil, internalErr(err, "could not create answer")
	}

	return view, nil
}

func (s *commentService) UpdateAnswer(ctx context.Context, answerID, userID, body string) (*models.AnswerView, error) {
	var view *models.AnswerView

	err := s.tx.WithTx(ctx, "update answer", func(repo *repository.Repository) error {
		if _, err := repo.User.GetByID(ctx, userID); err != nil {
			return lookupErr(err, msgUserNotFound)
		}

		answer, err := repo.Answer.LockByID(ctx, answerID)
		if err != nil {
			return lookupErr(err, msgAnswerNotFound)
		}
		if answer.AuthorID != userID {
			return apperror.Forbidden(msgAccessDenied)
		}

		if err := repo.Answer.UpdateBody(ctx, answerID, body); err != nil {
			return err
		}

		v, err := repo.Answer.GetView(ctx, answerID)
		if err != nil {
			return err
		}
		view = v
		return nil
	})
	if err != nil {
		return nil, internalErr(err, "could not update answer")
	}

	return view, nil
}

func (s *commentService) RemoveAnswer(ctx context.Context, parentID, answerID, userID string) error {
	err := s.tx.WithTx(ctx, "remove answer", func(repo *repository.Repository) error {
		if _, err := repo.User.GetByID(ctx, userID); err != nil {
			return lookupErr(err, msgUserNotFound)
		}

		answer, err := repo.Answer.GetByID(ctx, answerID)
		if err != nil {
			return lookupErr(err, msgAnswerNotFound)
		}
		if answer.ParentCommentID != parentID {
			return apperror.NotFound(msgAnswerNotFound)
		}

		if _, err := repo.Test.LockByID(ctx, answer.TestID); err != nil {
			return lookupErr(err, msgTestNotFound)
		}
		if _, err := repo.Comment.LockByID(ctx, parentID); err != nil {
			return lookupErr(err, msgCommentNotFound)
		}
		answer, err = repo.Answer.LockByID(ctx, answerID)
		if err != nil {
			return lookupErr(err, msgAnswerNotFound)
		}
		if answer.AuthorID != userID {
			return apperror.Forbidden(msgAccessDenied)
		}

		if err := repo.Comment.RemoveAnswer(ctx, parentID, answerID); err != nil {
			return err
		}
		if _, err := repo.User.RemoveRef(ctx, answer.AuthorID, repository.UserAnswers, answerID); err != nil {
			return err
		}
		if err := repo.Test.RemoveRef(ctx, answer.TestID, repository.TestCommentAnswers, answerID); err != nil {
			return err
		}
		if err := repo.User.RemoveRefEverywhere(ctx, repository.UserLikedAnswers, answerID); err != nil {
			return err
		}

		return repo.Answer.Delete(ctx, answerID)
	})
	return internalErr(err, "could not remove answer")
}

func (s *commentService) LikeAnswer(ctx context.Context, answerID, userID string) (*models.LikeState, error) {
	var state models.LikeState

	err := s.tx.WithTx(ctx, "like answer", func(repo *repository.Repository) error {
		answer, err := repo.Answer.GetByID(ctx, answerID)
		if err != nil {
			return lookupErr(err, msgAnswerNotFound)
		}
		if _, err := repo.Test.LockByID(ctx, answer.TestID); err != nil {
			return lookupErr(err, msgAnswerNotFound)
		}
		if _, err := repo.Comment.LockByID(ctx, answer.ParentCommentID); err != nil {
			return lookupErr(err, msgAnswerNotFound)
		}
		if _, err := repo.Answer.LockByID(ctx, answerID); err != nil {
			return lookupErr(err, msgAnswerNotFound)
		}

		user, err := repo.User.LockByID(ctx, userID)
		if err != nil {
			return lookupErr(err, msgUserNotFound)
		}

		delta := 1
		if user.LikedAnswers.Has(answerID) {
			delta = -1
			_, err = repo.User.RemoveRef(ctx, userID, repository.UserLikedAnswers, answerID)
		} else {
			_, err = repo.User.AddRef(ctx, userID, repository.UserLikedAnswers, answerID)
		}
		if err != nil {
			return err
		}

		likes, err := repo.Answer.AdjustLikes(ctx, answerID, delta)
		if err != nil {
			return err
		}

		state = models.LikeState{Liked: delta > 0, Likes: likes}
		return nil
	})
	if err != nil {
		return nil, internalErr(err, "could not like answer")
	}

	return &state, nil
}

func (s *commentService) GetAnswers(ctx context.Context, commentID string) ([]models.AnswerView, error) {
	if _, err := s.repo.Comment.GetByID(ctx, commentID); err != nil {
		return nil, lookupErr(err, msgCommentNotFound)
	}

	views, err := s.repo.Answer.ListViewsByComment(ctx, commentID)
	if err != nil {
		return nil, apperror.Internal(err, "could not load answers")
	}
	return views, nil
}
