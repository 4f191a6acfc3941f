package service

import (
	"context"
	"errors"

	"github.com/d60-Lab/yatube/internal/repository"
	"github.com/d60-Lab/yatube/pkg/metrics"
)

var (
	ErrFollowSelf = errors.New("cannot follow self")
)

// RelationshipService 关注关系服务。Follow/Unfollow 均幂等，可并发重复调用
type RelationshipService interface {
	Follow(ctx context.Context, userID, authorID uint) error
	Unfollow(ctx context.Context, userID, authorID uint) error
	IsFollowing(ctx context.Context, userID, authorID uint) (bool, error)
	ListFollowing(ctx context.Context, userID uint, page, pageSize int) ([]uint, error)
	Stats(ctx context.Context, userID uint) (followers, following int64, err error)
}

type relationshipService struct {
	followRepo repository.FollowRepository
}

func NewRelationshipService(followRepo repository.FollowRepository) RelationshipService {
	return &relationshipService{followRepo: followRepo}
}

func (s *relationshipService) Follow(ctx context.Context, userID, authorID uint) error {
	if userID == authorID {
		return ErrFollowSelf
	}
	if err := s.followRepo.Create(ctx, userID, authorID); err != nil {
		return err
	}
	metrics.RecordEvent("follow")
	return nil
}

func (s *relationshipService) Unfollow(ctx context.Context, userID, authorID uint) error {
	if err := s.followRepo.Delete(ctx, userID, authorID); err != nil {
		return err
	}
	metrics.RecordEvent("unfollow")
	return nil
}

func (s *relationshipService) IsFollowing(ctx context.Context, userID, authorID uint) (bool, error) {
	return s.followRepo.Exists(ctx, userID, authorID)
}

func (s *relationshipService) ListFollowing(ctx context.Context, userID uint, page, pageSize int) ([]uint, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	offset := (page - 1) * pageSize
	items, err := s.followRepo.ListFollowings(ctx, userID, offset, pageSize)
	if err != nil {
		return nil, err
	}
	res := make([]uint, len(items))
	for i, it := range items {
		res[i] = it.AuthorID
	}
	return res, nil
}

func (s *relationshipService) Stats(ctx context.Context, userID uint) (int64, int64, error) {
	followers, err := s.followRepo.CountFollowers(ctx, userID)
	if err != nil {
		return 0, 0, err
	}
	following, err := s.followRepo.CountFollowings(ctx, userID)
	if err != nil {
		return 0, 0, err
	}
	return followers, following, nil
}
