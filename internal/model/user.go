package model

import "time"

// User 作者身份（由登录子系统维护，posts/comments/follows 引用）
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"type:varchar(150);uniqueIndex:ux_user_username;not null" json:"username"`
	PasswordHash string    `gorm:"type:varchar(100);not null" json:"-"`
	CreatedAt    time.Time `json:"date_joined"`
}

func (User) TableName() string { return "users" }

func (u User) String() string { return u.Username }
