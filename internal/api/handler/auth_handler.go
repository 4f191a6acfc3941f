package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/yatube/internal/form"
	"github.com/d60-Lab/yatube/internal/model"
	"github.com/d60-Lab/yatube/internal/service"
	"github.com/d60-Lab/yatube/pkg/response"
)

// safeNext 只允许站内相对路径
func safeNext(next string) string {
	if strings.HasPrefix(next, "/") && !strings.HasPrefix(next, "//") && !strings.HasPrefix(next, "/\\") {
		return next
	}
	return "/"
}

func (h *Handler) startSession(c *gin.Context, u *model.User) error {
	tok, err := h.tokens.Issue(u.ID, u.Username)
	if err != nil {
		return err
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.authCfg.CookieName, tok, int(h.tokens.TTL().Seconds()), "/", "", false, true)
	return nil
}

// Login 登录；GET 返回 next，POST 校验密码并写入会话 cookie
// @Summary 登录
// @Tags 身份
// @Accept x-www-form-urlencoded
// @Produce json
// @Param username formData string true "用户名"
// @Param password formData string true "密码"
// @Param next formData string false "登录后跳转地址"
// @Success 302 "跳转到 next"
// @Failure 400 {object} response.Response
// @Router /auth/login/ [post]
func (h *Handler) Login(c *gin.Context) {
	if c.Request.Method != http.MethodPost {
		response.Success(c, gin.H{"next": c.Query("next")})
		return
	}
	var in form.LoginInput
	if err := c.ShouldBind(&in); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if in.Next == "" {
		in.Next = c.Query("next")
	}
	if err := in.Validate(); err != nil {
		if errs, ok := form.AsErrors(err); ok {
			response.ValidationFailed(c, gin.H{"form": in}, errs)
			return
		}
		fail(c, err)
		return
	}
	u, err := h.accountService.Authenticate(c.Request.Context(), in.Username, in.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.ValidationFailed(c, gin.H{"form": in}, map[string]string{"__all__": err.Error()})
			return
		}
		fail(c, err)
		return
	}
	if err := h.startSession(c, u); err != nil {
		fail(c, err)
		return
	}
	c.Redirect(http.StatusFound, safeNext(in.Next))
}

// Signup 注册并登录
// @Summary 注册
// @Tags 身份
// @Accept x-www-form-urlencoded
// @Produce json
// @Param username formData string true "用户名"
// @Param password formData string true "密码"
// @Success 302 "跳转到首页"
// @Failure 400 {object} response.Response
// @Router /auth/signup/ [post]
func (h *Handler) Signup(c *gin.Context) {
	var in form.SignupInput
	if err := c.ShouldBind(&in); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if err := in.Validate(); err != nil {
		if errs, ok := form.AsErrors(err); ok {
			response.ValidationFailed(c, gin.H{"form": in}, errs)
			return
		}
		fail(c, err)
		return
	}
	u, err := h.accountService.SignUp(c.Request.Context(), in.Username, in.Password)
	if err != nil {
		if errors.Is(err, service.ErrUsernameTaken) {
			response.ValidationFailed(c, gin.H{"form": in}, map[string]string{"username": err.Error()})
			return
		}
		fail(c, err)
		return
	}
	if err := h.startSession(c, u); err != nil {
		fail(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/")
}

// Logout 清除会话 cookie
// @Summary 退出登录
// @Tags 身份
// @Success 302 "跳转到首页"
// @Router /auth/logout/ [post]
func (h *Handler) Logout(c *gin.Context) {
	c.SetCookie(h.authCfg.CookieName, "", -1, "/", "", false, true)
	c.Redirect(http.StatusFound, "/")
}
