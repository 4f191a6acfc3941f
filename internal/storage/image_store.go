package storage

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ImageStore 保存上传的图片，返回相对路径（存入 posts.image）
type ImageStore interface {
	Save(ctx context.Context, file *multipart.FileHeader) (string, error)
}

// LocalImageStore 写入本地 media 目录
type LocalImageStore struct {
	root string
}

func NewLocalImageStore(root string) *LocalImageStore {
	return &LocalImageStore{root: root}
}

// Root media 根目录
func (s *LocalImageStore) Root() string { return s.root }

func (s *LocalImageStore) Save(ctx context.Context, file *multipart.FileHeader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	ext := strings.ToLower(filepath.Ext(file.Filename))
	rel := path.Join("posts", uuid.New().String()+ext)
	dst := filepath.Join(s.root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("create media dir: %w", err)
	}

	out, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("create image file: %w", err)
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		_ = os.Remove(dst)
		return "", fmt.Errorf("write image file: %w", err)
	}
	if err := out.Close(); err != nil {
		return "", err
	}
	return rel, nil
}
