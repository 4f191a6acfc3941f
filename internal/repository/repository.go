package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/d60-Lab/yatube/internal/model"
)

// ErrNotFound 记录不存在
var ErrNotFound = errors.New("record not found")

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return err
}

// Page 一页帖子（按 pub_date 倒序）
type Page struct {
	Items       []*model.Post `json:"items"`
	Number      int           `json:"number"`
	PageSize    int           `json:"page_size"`
	Count       int64         `json:"count"`
	NumPages    int           `json:"num_pages"`
	HasNext     bool          `json:"has_next"`
	HasPrevious bool          `json:"has_previous"`
}

// NewPage 计算分页元数据；pageSize <= 0 表示不分页
func NewPage(items []*model.Post, number, pageSize int, count int64) *Page {
	if items == nil {
		items = []*model.Post{}
	}
	numPages := 1
	if pageSize > 0 && count > 0 {
		numPages = int((count + int64(pageSize) - 1) / int64(pageSize))
	}
	return &Page{
		Items:       items,
		Number:      number,
		PageSize:    pageSize,
		Count:       count,
		NumPages:    numPages,
		HasNext:     number < numPages,
		HasPrevious: number > 1,
	}
}

func normalizePage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}
