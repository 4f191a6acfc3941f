package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/d60-Lab/yatube/internal/model"
)

// PostFilter 帖子列表过滤条件，字段全空时为全站 feed
type PostFilter struct {
	GroupID    *uint
	AuthorID   *uint
	FollowedBy *uint
}

type PostRepository interface {
	List(ctx context.Context, filter PostFilter, page, pageSize int) (*Page, error)
	ListFollowed(ctx context.Context, followerID uint, page, pageSize int) (*Page, error)
	CountByAuthor(ctx context.Context, authorID uint) (int64, error)
	Get(ctx context.Context, id uint) (*model.Post, error)
	Create(ctx context.Context, post *model.Post) error
	Update(ctx context.Context, post *model.Post) error
}

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository { return &postRepository{db: db} }

func (r *postRepository) scope(filter PostFilter) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		if filter.GroupID != nil {
			tx = tx.Where("posts.group_id = ?", *filter.GroupID)
		}
		if filter.AuthorID != nil {
			tx = tx.Where("posts.author_id = ?", *filter.AuthorID)
		}
		if filter.FollowedBy != nil {
			sub := r.db.Model(&model.Follow{}).Select("author_id").Where("user_id = ?", *filter.FollowedBy)
			tx = tx.Where("posts.author_id IN (?)", sub)
		}
		return tx
	}
}

func (r *postRepository) List(ctx context.Context, filter PostFilter, page, pageSize int) (*Page, error) {
	page = normalizePage(page)

	var count int64
	if err := r.db.WithContext(ctx).
		Model(&model.Post{}).
		Scopes(r.scope(filter)).
		Count(&count).Error; err != nil {
		return nil, err
	}

	var items []*model.Post
	q := r.db.WithContext(ctx).
		Scopes(r.scope(filter)).
		Preload("Author").
		Preload("Group").
		Order("posts.pub_date DESC, posts.id DESC")
	if pageSize > 0 {
		q = q.Offset((page - 1) * pageSize).Limit(pageSize)
	}
	if err := q.Find(&items).Error; err != nil {
		return nil, err
	}
	return NewPage(items, page, pageSize, count), nil
}

func (r *postRepository) ListFollowed(ctx context.Context, followerID uint, page, pageSize int) (*Page, error) {
	return r.List(ctx, PostFilter{FollowedBy: &followerID}, page, pageSize)
}

func (r *postRepository) CountByAuthor(ctx context.Context, authorID uint) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).
		Model(&model.Post{}).
		Where("author_id = ?", authorID).
		Count(&cnt).Error
	return cnt, err
}

func (r *postRepository) Get(ctx context.Context, id uint) (*model.Post, error) {
	var p model.Post
	err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Group").
		First(&p, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

// Create 只写入外键，不级联写 Author/Group
func (r *postRepository) Create(ctx context.Context, post *model.Post) error {
	return r.db.WithContext(ctx).Omit("Author", "Group").Create(post).Error
}

// Update 仅更新 text/group/image，pub_date 与 author 不可变
func (r *postRepository) Update(ctx context.Context, post *model.Post) error {
	return r.db.WithContext(ctx).
		Model(&model.Post{ID: post.ID}).
		Updates(map[string]interface{}{
			"text":     post.Text,
			"group_id": post.GroupID,
			"image":    post.Image,
		}).Error
}
