package service

import (
	"context"

	"github.com/d60-Lab/yatube/internal/form"
	"github.com/d60-Lab/yatube/internal/model"
	"github.com/d60-Lab/yatube/internal/repository"
	"github.com/d60-Lab/yatube/pkg/metrics"
)

type CommentService interface {
	Add(ctx context.Context, postID, authorID uint, draft *form.CommentDraft) (*model.Comment, error)
}

type commentService struct {
	posts    repository.PostRepository
	comments repository.CommentRepository
}

func NewCommentService(posts repository.PostRepository, comments repository.CommentRepository) CommentService {
	return &commentService{posts: posts, comments: comments}
}

// Add 帖子不存在时返回 repository.ErrNotFound
func (s *commentService) Add(ctx context.Context, postID, authorID uint, draft *form.CommentDraft) (*model.Comment, error) {
	if _, err := s.posts.Get(ctx, postID); err != nil {
		return nil, err
	}
	c := &model.Comment{PostID: postID, AuthorID: authorID, Text: draft.Text}
	if err := s.comments.Create(ctx, c); err != nil {
		return nil, err
	}
	metrics.RecordEvent("comment_added")
	return c, nil
}
