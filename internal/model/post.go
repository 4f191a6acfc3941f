package model

import "time"

// PreviewLen String() 截断的字符数
const PreviewLen = 15

// Post 帖子。PubDate 创建时写入，之后不再更新
type Post struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	Text     string    `gorm:"type:text;not null" json:"text"`
	PubDate  time.Time `gorm:"autoCreateTime;index:idx_post_pub_date" json:"pub_date"`
	AuthorID uint      `gorm:"not null;index:idx_post_author" json:"author_id"`
	Author   User      `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"author"`
	GroupID  *uint     `gorm:"index:idx_post_group" json:"group_id,omitempty"`
	Group    *Group    `gorm:"foreignKey:GroupID;constraint:OnDelete:SET NULL" json:"group,omitempty"`
	Image    string    `gorm:"type:varchar(255)" json:"image,omitempty"`
}

func (Post) TableName() string { return "posts" }

func (p Post) String() string {
	r := []rune(p.Text)
	if len(r) > PreviewLen {
		r = r[:PreviewLen]
	}
	return string(r)
}
