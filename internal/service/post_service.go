package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/d60-Lab/yatube/internal/form"
	"github.com/d60-Lab/yatube/internal/model"
	"github.com/d60-Lab/yatube/internal/repository"
	"github.com/d60-Lab/yatube/internal/storage"
	"github.com/d60-Lab/yatube/pkg/logger"
	"github.com/d60-Lab/yatube/pkg/metrics"
)

var ErrNotAuthor = errors.New("only the author can edit this post")

// ProfileView 作者主页
type ProfileView struct {
	Author    *model.User      `json:"author"`
	Page      *repository.Page `json:"page_obj"`
	PostCount int64            `json:"post_count"`
	Following bool             `json:"following"`
	Followers int64            `json:"followers"`
	Followed  int64            `json:"followed"`
}

// DetailView 帖子详情
type DetailView struct {
	Post      *model.Post      `json:"post"`
	Comments  []*model.Comment `json:"comments"`
	PostCount int64            `json:"post_count"`
}

type PostService interface {
	Index(ctx context.Context, page int) (*repository.Page, error)
	GroupFeed(ctx context.Context, slug string, page int) (*model.Group, *repository.Page, error)
	Profile(ctx context.Context, username string, viewerID *uint, page int) (*ProfileView, error)
	FollowFeed(ctx context.Context, userID uint, page int) (*repository.Page, error)
	Detail(ctx context.Context, postID uint) (*DetailView, error)
	Get(ctx context.Context, postID uint) (*model.Post, error)
	Groups(ctx context.Context) ([]*model.Group, error)
	Create(ctx context.Context, authorID uint, draft *form.PostDraft) (*model.Post, error)
	Edit(ctx context.Context, postID, editorID uint, draft *form.PostDraft) (*model.Post, error)
}

type postService struct {
	posts    repository.PostRepository
	comments repository.CommentRepository
	groups   repository.GroupRepository
	users    repository.UserRepository
	rel      RelationshipService
	images   storage.ImageStore
	pageSize int
}

func NewPostService(
	posts repository.PostRepository,
	comments repository.CommentRepository,
	groups repository.GroupRepository,
	users repository.UserRepository,
	rel RelationshipService,
	images storage.ImageStore,
	pageSize int,
) PostService {
	if pageSize < 1 {
		pageSize = 10
	}
	return &postService{
		posts:    posts,
		comments: comments,
		groups:   groups,
		users:    users,
		rel:      rel,
		images:   images,
		pageSize: pageSize,
	}
}

func (s *postService) Index(ctx context.Context, page int) (*repository.Page, error) {
	return s.posts.List(ctx, repository.PostFilter{}, page, s.pageSize)
}

func (s *postService) GroupFeed(ctx context.Context, slug string, page int) (*model.Group, *repository.Page, error) {
	g, err := s.groups.GetBySlug(ctx, slug)
	if err != nil {
		return nil, nil, err
	}
	p, err := s.posts.List(ctx, repository.PostFilter{GroupID: &g.ID}, page, s.pageSize)
	if err != nil {
		return nil, nil, err
	}
	return g, p, nil
}

func (s *postService) Profile(ctx context.Context, username string, viewerID *uint, page int) (*ProfileView, error) {
	author, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	p, err := s.posts.List(ctx, repository.PostFilter{AuthorID: &author.ID}, page, s.pageSize)
	if err != nil {
		return nil, err
	}
	view := &ProfileView{Author: author, Page: p, PostCount: p.Count}
	if viewerID != nil && *viewerID != author.ID {
		if view.Following, err = s.rel.IsFollowing(ctx, *viewerID, author.ID); err != nil {
			return nil, err
		}
	}
	if view.Followers, view.Followed, err = s.rel.Stats(ctx, author.ID); err != nil {
		return nil, err
	}
	return view, nil
}

func (s *postService) FollowFeed(ctx context.Context, userID uint, page int) (*repository.Page, error) {
	return s.posts.ListFollowed(ctx, userID, page, s.pageSize)
}

func (s *postService) Detail(ctx context.Context, postID uint) (*DetailView, error) {
	p, err := s.posts.Get(ctx, postID)
	if err != nil {
		return nil, err
	}
	comments, err := s.comments.ListByPost(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	cnt, err := s.posts.CountByAuthor(ctx, p.AuthorID)
	if err != nil {
		return nil, err
	}
	return &DetailView{Post: p, Comments: comments, PostCount: cnt}, nil
}

func (s *postService) Get(ctx context.Context, postID uint) (*model.Post, error) {
	return s.posts.Get(ctx, postID)
}

func (s *postService) Groups(ctx context.Context) ([]*model.Group, error) {
	return s.groups.List(ctx)
}

// Create 作者只来自已认证身份
func (s *postService) Create(ctx context.Context, authorID uint, draft *form.PostDraft) (*model.Post, error) {
	p := &model.Post{Text: draft.Text, AuthorID: authorID, GroupID: draft.GroupID}
	if draft.Image != nil {
		path, err := s.images.Save(ctx, draft.Image)
		if err != nil {
			return nil, fmt.Errorf("save image: %w", err)
		}
		p.Image = path
	}
	if err := s.posts.Create(ctx, p); err != nil {
		return nil, err
	}
	metrics.RecordEvent("post_created")
	logger.Info("post created", zap.Uint("post_id", p.ID), zap.Uint("author_id", authorID))
	return p, nil
}

// Edit 非作者返回 ErrNotAuthor，帖子保持不变
func (s *postService) Edit(ctx context.Context, postID, editorID uint, draft *form.PostDraft) (*model.Post, error) {
	p, err := s.posts.Get(ctx, postID)
	if err != nil {
		return nil, err
	}
	if p.AuthorID != editorID {
		return nil, ErrNotAuthor
	}
	p.Text = draft.Text
	p.GroupID = draft.GroupID
	p.Group = nil
	if draft.Image != nil {
		path, err := s.images.Save(ctx, draft.Image)
		if err != nil {
			return nil, fmt.Errorf("save image: %w", err)
		}
		p.Image = path
	}
	if err := s.posts.Update(ctx, p); err != nil {
		return nil, err
	}
	metrics.RecordEvent("post_edited")
	return p, nil
}
