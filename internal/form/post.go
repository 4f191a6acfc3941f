package form

import (
	"context"
	"errors"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"mime/multipart"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/d60-Lab/yatube/internal/model"
	"github.com/d60-Lab/yatube/internal/repository"
)

// GroupLookup 校验 group 字段所需的查询
type GroupLookup interface {
	Get(ctx context.Context, id uint) (*model.Group, error)
}

// PostInput 用户提交的帖子字段。作者不在其中，由 handler 注入
type PostInput struct {
	Text  string                `form:"text" json:"text" validate:"notblank"`
	Group string                `form:"group" json:"group" validate:"omitempty,numeric"`
	Image *multipart.FileHeader `form:"-" json:"-"`
}

// PostDraft 校验通过、尚未持久化的帖子
type PostDraft struct {
	Text    string
	GroupID *uint
	Image   *multipart.FileHeader
}

// Validate 返回 Errors 表示用户输入问题，其他 error 为存储故障
func (in PostInput) Validate(ctx context.Context, groups GroupLookup, maxImageBytes int64) (*PostDraft, error) {
	errs, err := structErrors(in)
	if err != nil {
		return nil, err
	}
	if errs == nil {
		errs = Errors{}
	}

	draft := &PostDraft{Text: in.Text}

	if g := strings.TrimSpace(in.Group); g != "" && errs["group"] == "" {
		id, perr := strconv.ParseUint(g, 10, 64)
		if perr != nil {
			errs["group"] = MsgInvalidChoice
		} else if _, gerr := groups.Get(ctx, uint(id)); gerr != nil {
			if !errors.Is(gerr, repository.ErrNotFound) {
				return nil, gerr
			}
			errs["group"] = MsgInvalidChoice
		} else {
			gid := uint(id)
			draft.GroupID = &gid
		}
	}

	if in.Image != nil {
		if msg := checkImage(in.Image, maxImageBytes); msg != "" {
			errs["image"] = msg
		} else {
			draft.Image = in.Image
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return draft, nil
}

func checkImage(fh *multipart.FileHeader, maxBytes int64) string {
	if maxBytes > 0 && fh.Size > maxBytes {
		return MsgImageTooLarge
	}
	f, err := fh.Open()
	if err != nil {
		return MsgInvalidImage
	}
	defer f.Close()

	mt, err := mimetype.DetectReader(f)
	if err != nil || !strings.HasPrefix(mt.String(), "image/") {
		return MsgInvalidImage
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return MsgInvalidImage
	}
	if _, _, err := image.DecodeConfig(f); err != nil {
		return MsgInvalidImage
	}
	return ""
}
