package model

import "gorm.io/gorm"

// AutoMigrate 按依赖顺序建表
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&User{}, &Group{}, &Post{}, &Comment{}, &Follow{})
}
