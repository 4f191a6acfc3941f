package model

// Group 帖子分组，slug 全局唯一
type Group struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Title       string `gorm:"type:varchar(200);not null" json:"title"`
	Slug        string `gorm:"type:varchar(100);uniqueIndex:ux_group_slug;not null" json:"slug"`
	Description string `gorm:"type:text" json:"description"`
}

func (Group) TableName() string { return "groups" }

func (g Group) String() string { return g.Title }
