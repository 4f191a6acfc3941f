package handler

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/yatube/internal/cache"
	"github.com/d60-Lab/yatube/internal/form"
	"github.com/d60-Lab/yatube/internal/middleware"
	"github.com/d60-Lab/yatube/internal/service"
	"github.com/d60-Lab/yatube/pkg/metrics"
	"github.com/d60-Lab/yatube/pkg/response"
)

func profileURL(username string) string { return "/profile/" + url.PathEscape(username) + "/" }

func postURL(id uint) string { return fmt.Sprintf("/posts/%d/", id) }

func imageFile(c *gin.Context) *multipart.FileHeader {
	fh, err := c.FormFile("image")
	if err != nil {
		return nil
	}
	return fh
}

// Index 全站 feed（短时缓存）
// @Summary 全站帖子
// @Tags 帖子
// @Produce json
// @Param page query int false "页码" default(1)
// @Success 200 {object} response.Response
// @Router / [get]
func (h *Handler) Index(c *gin.Context) {
	ctx := c.Request.Context()
	page := pageParam(c)
	key := cache.IndexKey(page)
	if p, ok := h.feedCache.Get(ctx, key); ok {
		metrics.RecordFeedCache(true)
		response.Success(c, gin.H{"page_obj": p})
		return
	}
	metrics.RecordFeedCache(false)

	p, err := h.postService.Index(ctx, page)
	if err != nil {
		fail(c, err)
		return
	}
	h.feedCache.Put(ctx, key, p, h.feedTTL)
	response.Success(c, gin.H{"page_obj": p})
}

// GroupPosts 分组 feed
// @Summary 分组帖子
// @Tags 帖子
// @Produce json
// @Param slug path string true "分组 slug"
// @Param page query int false "页码" default(1)
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /group/{slug}/ [get]
func (h *Handler) GroupPosts(c *gin.Context) {
	g, p, err := h.postService.GroupFeed(c.Request.Context(), c.Param("slug"), pageParam(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{"group": g, "page_obj": p})
}

// Profile 作者主页
// @Summary 作者主页与关注状态
// @Tags 帖子
// @Produce json
// @Param username path string true "用户名"
// @Param page query int false "页码" default(1)
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /profile/{username}/ [get]
func (h *Handler) Profile(c *gin.Context) {
	var viewer *uint
	if u, ok := middleware.CurrentUser(c); ok {
		viewer = &u.ID
	}
	view, err := h.postService.Profile(c.Request.Context(), c.Param("username"), viewer, pageParam(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, view)
}

// PostDetail 帖子详情
// @Summary 帖子详情、评论与空评论表单
// @Tags 帖子
// @Produce json
// @Param post_id path int true "帖子 ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /posts/{post_id}/ [get]
func (h *Handler) PostDetail(c *gin.Context) {
	id, ok := postIDParam(c)
	if !ok {
		response.NotFound(c, "")
		return
	}
	view, err := h.postService.Detail(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{
		"post":       view.Post,
		"comments":   view.Comments,
		"post_count": view.PostCount,
		"form":       form.CommentInput{},
	})
}

// PostCreate 新建帖子
// @Summary 新建帖子（GET 返回空表单）
// @Tags 帖子
// @Accept multipart/form-data
// @Produce json
// @Param text formData string true "正文"
// @Param group formData int false "分组 ID"
// @Param image formData file false "图片"
// @Success 200 {object} response.Response
// @Success 302 "跳转到作者主页"
// @Failure 400 {object} response.Response
// @Router /create/ [post]
func (h *Handler) PostCreate(c *gin.Context) {
	ctx := c.Request.Context()
	me, _ := middleware.CurrentUser(c)

	groups, err := h.postService.Groups(ctx)
	if err != nil {
		fail(c, err)
		return
	}
	if c.Request.Method != http.MethodPost {
		response.Success(c, gin.H{"form": form.PostInput{}, "groups": groups, "is_edit": false})
		return
	}

	var in form.PostInput
	if err := c.ShouldBind(&in); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	in.Image = imageFile(c)
	draft, err := in.Validate(ctx, h.groups, h.maxImageBytes)
	if err != nil {
		if errs, ok := form.AsErrors(err); ok {
			response.ValidationFailed(c, gin.H{"form": in, "groups": groups, "is_edit": false}, errs)
			return
		}
		fail(c, err)
		return
	}
	if _, err := h.postService.Create(ctx, me.ID, draft); err != nil {
		fail(c, err)
		return
	}
	c.Redirect(http.StatusFound, profileURL(me.Username))
}

// PostEdit 编辑帖子，非作者静默跳回首页
// @Summary 编辑帖子（GET 返回预填表单）
// @Tags 帖子
// @Accept multipart/form-data
// @Produce json
// @Param post_id path int true "帖子 ID"
// @Param text formData string true "正文"
// @Param group formData int false "分组 ID"
// @Param image formData file false "图片"
// @Success 200 {object} response.Response
// @Success 302 "跳转到帖子详情或首页"
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /posts/{post_id}/edit/ [post]
func (h *Handler) PostEdit(c *gin.Context) {
	ctx := c.Request.Context()
	me, _ := middleware.CurrentUser(c)
	id, ok := postIDParam(c)
	if !ok {
		response.NotFound(c, "")
		return
	}
	post, err := h.postService.Get(ctx, id)
	if err != nil {
		fail(c, err)
		return
	}
	if post.AuthorID != me.ID {
		c.Redirect(http.StatusFound, "/")
		return
	}
	groups, err := h.postService.Groups(ctx)
	if err != nil {
		fail(c, err)
		return
	}

	if c.Request.Method != http.MethodPost {
		initial := form.PostInput{Text: post.Text}
		if post.GroupID != nil {
			initial.Group = strconv.FormatUint(uint64(*post.GroupID), 10)
		}
		response.Success(c, gin.H{"form": initial, "groups": groups, "is_edit": true, "post_id": id})
		return
	}

	var in form.PostInput
	if err := c.ShouldBind(&in); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	in.Image = imageFile(c)
	draft, err := in.Validate(ctx, h.groups, h.maxImageBytes)
	if err != nil {
		if errs, ok := form.AsErrors(err); ok {
			response.ValidationFailed(c, gin.H{"form": in, "groups": groups, "is_edit": true, "post_id": id}, errs)
			return
		}
		fail(c, err)
		return
	}
	if _, err := h.postService.Edit(ctx, id, me.ID, draft); err != nil {
		if errors.Is(err, service.ErrNotAuthor) {
			c.Redirect(http.StatusFound, "/")
			return
		}
		fail(c, err)
		return
	}
	c.Redirect(http.StatusFound, postURL(id))
}

// AddComment 添加评论
// @Summary 添加评论
// @Tags 评论
// @Accept x-www-form-urlencoded
// @Produce json
// @Param post_id path int true "帖子 ID"
// @Param text formData string true "评论内容"
// @Success 302 "跳转到帖子详情"
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /posts/{post_id}/comment/ [post]
func (h *Handler) AddComment(c *gin.Context) {
	ctx := c.Request.Context()
	me, _ := middleware.CurrentUser(c)
	id, ok := postIDParam(c)
	if !ok {
		response.NotFound(c, "")
		return
	}
	if _, err := h.postService.Get(ctx, id); err != nil {
		fail(c, err)
		return
	}
	if c.Request.Method != http.MethodPost {
		c.Redirect(http.StatusFound, postURL(id))
		return
	}

	var in form.CommentInput
	if err := c.ShouldBind(&in); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	draft, err := in.Validate()
	if err != nil {
		if errs, ok := form.AsErrors(err); ok {
			response.ValidationFailed(c, gin.H{"form": in, "post_id": id}, errs)
			return
		}
		fail(c, err)
		return
	}
	if _, err := h.commentService.Add(ctx, id, me.ID, draft); err != nil {
		fail(c, err)
		return
	}
	c.Redirect(http.StatusFound, postURL(id))
}
