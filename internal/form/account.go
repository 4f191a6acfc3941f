package form

// SignupInput 注册表单
type SignupInput struct {
	Username string `form:"username" json:"username" validate:"notblank,max=150,excludesall= /?#"`
	Password string `form:"password" json:"-" validate:"required,min=8,max=128"`
}

func (in SignupInput) Validate() error {
	errs, err := structErrors(in)
	if err != nil {
		return err
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// LoginInput 登录表单
type LoginInput struct {
	Username string `form:"username" json:"username" validate:"notblank"`
	Password string `form:"password" json:"-" validate:"required"`
	Next     string `form:"next" json:"next"`
}

func (in LoginInput) Validate() error {
	errs, err := structErrors(in)
	if err != nil {
		return err
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}
