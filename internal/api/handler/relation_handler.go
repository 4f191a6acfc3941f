package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/yatube/internal/middleware"
	"github.com/d60-Lab/yatube/internal/service"
	"github.com/d60-Lab/yatube/pkg/response"
)

// FollowIndex 关注作者的帖子
// @Summary 关注作者的帖子流
// @Tags 关系链
// @Produce json
// @Param page query int false "页码" default(1)
// @Success 200 {object} response.Response
// @Router /follow/ [get]
func (h *Handler) FollowIndex(c *gin.Context) {
	me, _ := middleware.CurrentUser(c)
	p, err := h.postService.FollowFeed(c.Request.Context(), me.ID, pageParam(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{"page_obj": p})
}

// ProfileFollow 关注作者（幂等，关注自己被忽略）
// @Summary 关注作者
// @Tags 关系链
// @Param username path string true "用户名"
// @Success 302 "跳转到作者主页"
// @Failure 404 {object} response.Response
// @Router /profile/{username}/follow/ [get]
func (h *Handler) ProfileFollow(c *gin.Context) {
	me, _ := middleware.CurrentUser(c)
	author, err := h.accountService.Lookup(c.Request.Context(), c.Param("username"))
	if err != nil {
		fail(c, err)
		return
	}
	if err := h.relService.Follow(c.Request.Context(), me.ID, author.ID); err != nil && !errors.Is(err, service.ErrFollowSelf) {
		fail(c, err)
		return
	}
	c.Redirect(http.StatusFound, profileURL(author.Username))
}

// ProfileUnfollow 取消关注（幂等）
// @Summary 取消关注
// @Tags 关系链
// @Param username path string true "用户名"
// @Success 302 "跳转到作者主页"
// @Failure 404 {object} response.Response
// @Router /profile/{username}/unfollow/ [get]
func (h *Handler) ProfileUnfollow(c *gin.Context) {
	me, _ := middleware.CurrentUser(c)
	author, err := h.accountService.Lookup(c.Request.Context(), c.Param("username"))
	if err != nil {
		fail(c, err)
		return
	}
	if err := h.relService.Unfollow(c.Request.Context(), me.ID, author.ID); err != nil {
		fail(c, err)
		return
	}
	c.Redirect(http.StatusFound, profileURL(author.Username))
}
