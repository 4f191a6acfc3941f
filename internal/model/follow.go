package model

import (
	"time"
)

// Follow 关注关系（UserID 关注 AuthorID）
type Follow struct {
	ID       string `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID   uint   `gorm:"not null;index:idx_follow_user;index:idx_follow_pair,unique;check:chk_follow_not_self,user_id <> author_id" json:"user_id"`
	AuthorID uint   `gorm:"not null;index:idx_follow_author;index:idx_follow_pair,unique" json:"author_id"`
	// 复合唯一键，避免重复关注
	// idx_follow_pair = (user_id, author_id)
	User      User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Author    User `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt time.Time
}

func (Follow) TableName() string { return "follows" }
