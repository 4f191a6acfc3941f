package form

// CommentInput 评论表单；作者与帖子由 handler 注入
type CommentInput struct {
	Text string `form:"text" json:"text" validate:"notblank"`
}

type CommentDraft struct {
	Text string
}

func (in CommentInput) Validate() (*CommentDraft, error) {
	errs, err := structErrors(in)
	if err != nil {
		return nil, err
	}
	if len(errs) > 0 {
		return nil, errs
	}
	return &CommentDraft{Text: in.Text}, nil
}
