package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/d60-Lab/yatube/config"
	"github.com/d60-Lab/yatube/internal/api/handler"
	"github.com/d60-Lab/yatube/internal/auth"
	"github.com/d60-Lab/yatube/internal/cache"
	"github.com/d60-Lab/yatube/internal/middleware"
	"github.com/d60-Lab/yatube/internal/model"
	"github.com/d60-Lab/yatube/internal/repository"
	"github.com/d60-Lab/yatube/internal/service"
	"github.com/d60-Lab/yatube/internal/storage"
)

type testApp struct {
	db       *gorm.DB
	router   http.Handler
	tokens   *auth.TokenManager
	cfg      *config.Config
	accounts service.AccountService
}

type envelope struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Errors  map[string]string `json:"errors"`
}

type pageBody struct {
	Items []struct {
		ID     uint   `json:"id"`
		Text   string `json:"text"`
		Author struct {
			Username string `json:"username"`
		} `json:"author"`
	} `json:"items"`
	Number   int   `json:"number"`
	Count    int64 `json:"count"`
	NumPages int   `json:"num_pages"`
	HasNext  bool  `json:"has_next"`
}

func newTestApp(t *testing.T, feed cache.FeedCache) *testApp {
	t.Helper()
	cfg, err := config.Load(t.TempDir())
	require.NoError(t, err)
	cfg.Server.Mode = "test"
	cfg.App.PageSize = 10
	cfg.RateLimit.Enabled = false
	cfg.Sentry.DSN = ""
	cfg.Tracing.Enabled = false
	cfg.Media.Root = t.TempDir()
	cfg.Cache.FeedTTL = 20 * time.Second

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, model.AutoMigrate(db))

	if feed == nil {
		feed = cache.NewMemoryFeedCache()
	}

	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	userRepo := repository.NewUserRepository(db)
	relSvc := service.NewRelationshipService(repository.NewFollowRepository(db))
	accounts := service.NewAccountService(userRepo)
	tokens := auth.NewTokenManager("test-secret", time.Hour)

	h := handler.New(cfg, handler.Deps{
		PostService: service.NewPostService(postRepo, commentRepo, groupRepo, userRepo, relSvc,
			storage.NewLocalImageStore(cfg.Media.Root), cfg.App.PageSize),
		CommentService: service.NewCommentService(postRepo, commentRepo),
		RelService:     relSvc,
		AccountService: accounts,
		Groups:         groupRepo,
		Tokens:         tokens,
		FeedCache:      feed,
	})
	return &testApp{
		db:       db,
		router:   NewRouter(cfg, h, middleware.Identify(tokens, accounts, cfg.Auth.CookieName)),
		tokens:   tokens,
		cfg:      cfg,
		accounts: accounts,
	}
}

func (a *testApp) user(t *testing.T, name string) *model.User {
	t.Helper()
	u := &model.User{Username: name, PasswordHash: "x"}
	require.NoError(t, a.db.Create(u).Error)
	return u
}

func (a *testApp) group(t *testing.T, slug string) *model.Group {
	t.Helper()
	g := &model.Group{Title: "Group " + slug, Slug: slug, Description: "about " + slug}
	require.NoError(t, a.db.Create(g).Error)
	return g
}

func (a *testApp) post(t *testing.T, author *model.User, text string, group *model.Group) *model.Post {
	t.Helper()
	p := &model.Post{Text: text, AuthorID: author.ID}
	if group != nil {
		p.GroupID = &group.ID
	}
	require.NoError(t, a.db.Omit("Author", "Group").Create(p).Error)
	return p
}

// do 发起请求；as 非空时带上会话 cookie
func (a *testApp) do(t *testing.T, method, target string, as *model.User, body url.Values) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(body.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	a.withSession(t, req, as)
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testApp) withSession(t *testing.T, req *http.Request, as *model.User) {
	t.Helper()
	if as == nil {
		return
	}
	tok, err := a.tokens.Issue(as.ID, as.Username)
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: a.cfg.Auth.CookieName, Value: tok})
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func decodePage(t *testing.T, w *httptest.ResponseRecorder) pageBody {
	t.Helper()
	var data struct {
		Page pageBody `json:"page_obj"`
	}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &data))
	return data.Page
}

func (a *testApp) countPosts(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, a.db.Model(&model.Post{}).Count(&n).Error)
	return n
}

func (a *testApp) countFollows(t *testing.T, user, author *model.User) int64 {
	t.Helper()
	var n int64
	require.NoError(t, a.db.Model(&model.Follow{}).
		Where("user_id = ? AND author_id = ?", user.ID, author.ID).Count(&n).Error)
	return n
}

func TestLoginRequiredRedirects(t *testing.T) {
	app := newTestApp(t, nil)
	alice := app.user(t, "alice")
	p := app.post(t, alice, "hello", nil)

	cases := []struct {
		method, target, want string
	}{
		{http.MethodGet, "/create/", "/auth/login/?next=/create/"},
		{http.MethodPost, "/create/", "/auth/login/?next=/create/"},
		{http.MethodGet, fmt.Sprintf("/posts/%d/edit/", p.ID), fmt.Sprintf("/auth/login/?next=/posts/%d/edit/", p.ID)},
		{http.MethodPost, fmt.Sprintf("/posts/%d/comment/", p.ID), fmt.Sprintf("/auth/login/?next=/posts/%d/comment/", p.ID)},
		{http.MethodGet, "/follow/", "/auth/login/?next=/follow/"},
		{http.MethodGet, "/profile/alice/follow/", "/auth/login/?next=/profile/alice/follow/"},
	}
	for _, tc := range cases {
		t.Run(tc.method+" "+tc.target, func(t *testing.T) {
			w := app.do(t, tc.method, tc.target, nil, url.Values{"text": {"x"}})
			assert.Equal(t, http.StatusFound, w.Code)
			assert.Equal(t, tc.want, w.Header().Get("Location"))
		})
	}
	assert.EqualValues(t, 1, app.countPosts(t), "anonymous submissions persist nothing")
}

func TestCreatePost(t *testing.T) {
	app := newTestApp(t, nil)
	alice := app.user(t, "alice")
	g := app.group(t, "cats")

	w := app.do(t, http.MethodGet, "/create/", alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var form struct {
		Groups []model.Group `json:"groups"`
		IsEdit bool          `json:"is_edit"`
	}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &form))
	assert.False(t, form.IsEdit)
	require.Len(t, form.Groups, 1)
	assert.Equal(t, "cats", form.Groups[0].Slug)

	// author 字段被忽略，作者总是当前用户
	w = app.do(t, http.MethodPost, "/create/", alice, url.Values{
		"text":   {"my first post"},
		"group":  {fmt.Sprint(g.ID)},
		"author": {"999"},
	})
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/profile/alice/", w.Header().Get("Location"))

	var saved model.Post
	require.NoError(t, app.db.First(&saved).Error)
	assert.Equal(t, alice.ID, saved.AuthorID)
	assert.Equal(t, "my first post", saved.Text)
	require.NotNil(t, saved.GroupID)
	assert.Equal(t, g.ID, *saved.GroupID)

	w = app.do(t, http.MethodGet, "/profile/alice/", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var profile struct {
		PostCount int64    `json:"post_count"`
		Page      pageBody `json:"page_obj"`
	}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &profile))
	assert.EqualValues(t, 1, profile.PostCount)
	require.Len(t, profile.Page.Items, 1)
	assert.Equal(t, "my first post", profile.Page.Items[0].Text)
}

func TestCreatePost_ValidationErrors(t *testing.T) {
	app := newTestApp(t, nil)
	alice := app.user(t, "alice")

	cases := []struct {
		name  string
		body  url.Values
		field string
	}{
		{"blank text", url.Values{"text": {"   "}}, "text"},
		{"missing text", url.Values{}, "text"},
		{"unknown group", url.Values{"text": {"ok"}, "group": {"42"}}, "group"},
		{"non numeric group", url.Values{"text": {"ok"}, "group": {"cats"}}, "group"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := app.do(t, http.MethodPost, "/create/", alice, tc.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			env := decode(t, w)
			assert.Contains(t, env.Errors, tc.field)
		})
	}
	assert.EqualValues(t, 0, app.countPosts(t))
}

func pngUpload(t *testing.T, fields map[string]string, fileName string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	fw, err := mw.CreateFormFile("image", fileName)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return buf, mw.FormDataContentType()
}

func tinyPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestCreatePost_WithImage(t *testing.T) {
	app := newTestApp(t, nil)
	alice := app.user(t, "alice")

	body, ct := pngUpload(t, map[string]string{"text": "with picture"}, "small.png", tinyPNG(t))
	req := httptest.NewRequest(http.MethodPost, "/create/", body)
	req.Header.Set("Content-Type", ct)
	app.withSession(t, req, alice)
	w := httptest.NewRecorder()
	app.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusFound, w.Code, w.Body.String())

	var saved model.Post
	require.NoError(t, app.db.First(&saved).Error)
	require.True(t, strings.HasPrefix(saved.Image, "posts/"), saved.Image)
	assert.Equal(t, ".png", filepath.Ext(saved.Image))
	_, err := os.Stat(filepath.Join(app.cfg.Media.Root, filepath.FromSlash(saved.Image)))
	require.NoError(t, err)

	w = app.do(t, http.MethodGet, app.cfg.Media.URLPrefix+saved.Image, nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// 非图片内容被拒绝
	body, ct = pngUpload(t, map[string]string{"text": "fake"}, "fake.png", []byte("definitely not an image"))
	req = httptest.NewRequest(http.MethodPost, "/create/", body)
	req.Header.Set("Content-Type", ct)
	app.withSession(t, req, alice)
	w = httptest.NewRecorder()
	app.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w).Errors, "image")
	assert.EqualValues(t, 1, app.countPosts(t))
}

func TestEditPost(t *testing.T) {
	app := newTestApp(t, nil)
	alice := app.user(t, "alice")
	bob := app.user(t, "bob")
	g := app.group(t, "dogs")
	p := app.post(t, alice, "original", g)
	editURL := fmt.Sprintf("/posts/%d/edit/", p.ID)

	w := app.do(t, http.MethodGet, editURL, alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var prefilled struct {
		Form struct {
			Text  string `json:"text"`
			Group string `json:"group"`
		} `json:"form"`
		IsEdit bool `json:"is_edit"`
	}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &prefilled))
	assert.True(t, prefilled.IsEdit)
	assert.Equal(t, "original", prefilled.Form.Text)
	assert.Equal(t, fmt.Sprint(g.ID), prefilled.Form.Group)

	// 非作者：跳回首页，内容不变
	w = app.do(t, http.MethodPost, editURL, bob, url.Values{"text": {"hacked"}})
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
	w = app.do(t, http.MethodGet, editURL, bob, nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	var got model.Post
	require.NoError(t, app.db.First(&got, p.ID).Error)
	assert.Equal(t, "original", got.Text)

	w = app.do(t, http.MethodPost, editURL, alice, url.Values{"text": {" "}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// 作者：清空分组并修改正文，pub_date 不变
	w = app.do(t, http.MethodPost, editURL, alice, url.Values{"text": {"edited"}, "group": {""}})
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, fmt.Sprintf("/posts/%d/", p.ID), w.Header().Get("Location"))

	var after model.Post
	require.NoError(t, app.db.First(&after, p.ID).Error)
	assert.Equal(t, "edited", after.Text)
	assert.Nil(t, after.GroupID)
	assert.Equal(t, alice.ID, after.AuthorID)
	assert.True(t, got.PubDate.Equal(after.PubDate))

	w = app.do(t, http.MethodGet, "/posts/9999/edit/", alice, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPostDetailAndComments(t *testing.T) {
	app := newTestApp(t, nil)
	alice := app.user(t, "alice")
	bob := app.user(t, "bob")
	p := app.post(t, alice, "discuss me", nil)
	detailURL := fmt.Sprintf("/posts/%d/", p.ID)
	commentURL := fmt.Sprintf("/posts/%d/comment/", p.ID)

	w := app.do(t, http.MethodPost, commentURL, bob, url.Values{"text": {""}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w).Errors, "text")

	w = app.do(t, http.MethodGet, commentURL, bob, nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, detailURL, w.Header().Get("Location"))

	for _, text := range []string{"first!", "second"} {
		w = app.do(t, http.MethodPost, commentURL, bob, url.Values{"text": {text}})
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, detailURL, w.Header().Get("Location"))
	}

	w = app.do(t, http.MethodGet, detailURL, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var detail struct {
		Post struct {
			Text string `json:"text"`
		} `json:"post"`
		Comments []struct {
			Text   string `json:"text"`
			Author struct {
				Username string `json:"username"`
			} `json:"author"`
		} `json:"comments"`
		PostCount int64 `json:"post_count"`
	}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &detail))
	assert.Equal(t, "discuss me", detail.Post.Text)
	assert.EqualValues(t, 1, detail.PostCount)
	require.Len(t, detail.Comments, 2)
	assert.Equal(t, "second", detail.Comments[0].Text, "newest first")
	assert.Equal(t, "bob", detail.Comments[0].Author.Username)

	w = app.do(t, http.MethodPost, "/posts/9999/comment/", bob, url.Values{"text": {"lost"}})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestNotFound(t *testing.T) {
	app := newTestApp(t, nil)
	for _, target := range []string{"/group/nope/", "/profile/ghost/", "/posts/9999/", "/posts/abc/"} {
		w := app.do(t, http.MethodGet, target, nil, nil)
		assert.Equal(t, http.StatusNotFound, w.Code, target)
	}
	alice := app.user(t, "alice")
	w := app.do(t, http.MethodGet, "/profile/ghost/follow/", alice, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = app.do(t, http.MethodGet, "/profile/ghost/unfollow/", alice, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPagination(t *testing.T) {
	app := newTestApp(t, nil)
	alice := app.user(t, "alice")
	g := app.group(t, "books")
	for i := 0; i < 13; i++ {
		app.post(t, alice, fmt.Sprintf("post %d", i), g)
	}

	for _, base := range []string{"/", "/group/books/", "/profile/alice/"} {
		w := app.do(t, http.MethodGet, base, nil, nil)
		require.Equal(t, http.StatusOK, w.Code)
		first := decodePage(t, w)
		assert.Len(t, first.Items, 10, base)
		assert.Equal(t, "post 12", first.Items[0].Text, base)
		assert.True(t, first.HasNext)

		w = app.do(t, http.MethodGet, base+"?page=2", nil, nil)
		second := decodePage(t, w)
		assert.Len(t, second.Items, 3, base)
		assert.Equal(t, 2, second.NumPages)

		w = app.do(t, http.MethodGet, base+"?page=7", nil, nil)
		assert.Empty(t, decodePage(t, w).Items, base)

		w = app.do(t, http.MethodGet, base+"?page=abc", nil, nil)
		assert.Equal(t, 1, decodePage(t, w).Number, base)
	}
}

func TestFollowFlow(t *testing.T) {
	app := newTestApp(t, nil)
	alice := app.user(t, "alice")
	bob := app.user(t, "bob")
	carol := app.user(t, "carol")
	app.post(t, bob, "bob writes", nil)
	app.post(t, carol, "carol writes", nil)

	for i := 0; i < 2; i++ {
		w := app.do(t, http.MethodGet, "/profile/bob/follow/", alice, nil)
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/profile/bob/", w.Header().Get("Location"))
	}
	assert.EqualValues(t, 1, app.countFollows(t, alice, bob))

	w := app.do(t, http.MethodGet, "/profile/bob/", alice, nil)
	var profile struct {
		Following bool  `json:"following"`
		Followers int64 `json:"followers"`
	}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &profile))
	assert.True(t, profile.Following)
	assert.EqualValues(t, 1, profile.Followers)

	w = app.do(t, http.MethodGet, "/follow/", alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	feed := decodePage(t, w)
	require.Len(t, feed.Items, 1)
	assert.Equal(t, "bob", feed.Items[0].Author.Username)

	w = app.do(t, http.MethodGet, "/follow/", carol, nil)
	assert.Empty(t, decodePage(t, w).Items)

	for i := 0; i < 2; i++ {
		w = app.do(t, http.MethodPost, "/profile/bob/unfollow/", alice, nil)
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/profile/bob/", w.Header().Get("Location"))
	}
	assert.EqualValues(t, 0, app.countFollows(t, alice, bob))

	w = app.do(t, http.MethodGet, "/profile/bob/", alice, nil)
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &profile))
	assert.False(t, profile.Following)
}

func TestFollowSelfIgnored(t *testing.T) {
	app := newTestApp(t, nil)
	alice := app.user(t, "alice")

	w := app.do(t, http.MethodGet, "/profile/alice/follow/", alice, nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/profile/alice/", w.Header().Get("Location"))
	assert.EqualValues(t, 0, app.countFollows(t, alice, alice))
}

func TestIndexCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	app := newTestApp(t, cache.NewRedisFeedCache(client))
	alice := app.user(t, "alice")
	g := app.group(t, "news")
	app.post(t, alice, "before cache", g)

	w := app.do(t, http.MethodGet, "/", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodePage(t, w).Items, 1)
	assert.True(t, mr.Exists(cache.IndexKey(1)))

	app.post(t, alice, "after cache", g)

	// 缓存期内首页不变，其它列表实时
	w = app.do(t, http.MethodGet, "/", nil, nil)
	assert.Len(t, decodePage(t, w).Items, 1)
	w = app.do(t, http.MethodGet, "/group/news/", nil, nil)
	assert.Len(t, decodePage(t, w).Items, 2)

	mr.FastForward(app.cfg.Cache.FeedTTL + time.Second)
	w = app.do(t, http.MethodGet, "/", nil, nil)
	page := decodePage(t, w)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "after cache", page.Items[0].Text)
}

func TestSignupLoginLogout(t *testing.T) {
	app := newTestApp(t, nil)

	w := app.do(t, http.MethodPost, "/auth/signup/", nil, url.Values{"username": {"dave"}, "password": {"short"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w).Errors, "password")

	w = app.do(t, http.MethodPost, "/auth/signup/", nil, url.Values{"username": {"dave"}, "password": {"long-enough-pass"}})
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	w = app.do(t, http.MethodPost, "/auth/signup/", nil, url.Values{"username": {"dave"}, "password": {"long-enough-pass"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w).Errors, "username")

	w = app.do(t, http.MethodGet, "/auth/login/?next=/create/", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var login struct {
		Next string `json:"next"`
	}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &login))
	assert.Equal(t, "/create/", login.Next)

	w = app.do(t, http.MethodPost, "/auth/login/", nil, url.Values{"username": {"dave"}, "password": {"wrong-password"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = app.do(t, http.MethodPost, "/auth/login/?next=/create/", nil, url.Values{"username": {"dave"}, "password": {"long-enough-pass"}})
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/create/", w.Header().Get("Location"))

	var session *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == app.cfg.Auth.CookieName {
			session = c
		}
	}
	require.NotNil(t, session)
	assert.True(t, session.HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/create/", nil)
	req.AddCookie(&http.Cookie{Name: session.Name, Value: session.Value})
	w = httptest.NewRecorder()
	app.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code, "session cookie authenticates")

	// Bearer 头同样可用
	u, err := app.accounts.Lookup(context.Background(), "dave")
	require.NoError(t, err)
	tok, err := app.tokens.Issue(u.ID, u.Username)
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/follow/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	w = httptest.NewRecorder()
	app.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	// 站外 next 被替换为首页
	w = app.do(t, http.MethodPost, "/auth/login/", nil, url.Values{
		"username": {"dave"}, "password": {"long-enough-pass"}, "next": {"//evil.example.com/"},
	})
	assert.Equal(t, "/", w.Header().Get("Location"))

	w = app.do(t, http.MethodPost, "/auth/logout/", nil, nil)
	assert.Equal(t, http.StatusFound, w.Code)
	var cleared bool
	for _, c := range w.Result().Cookies() {
		if c.Name == app.cfg.Auth.CookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared)
}

func TestInfraRoutes(t *testing.T) {
	app := newTestApp(t, nil)

	w := app.do(t, http.MethodGet, "/healthz", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	app.do(t, http.MethodGet, "/", nil, nil)
	w = app.do(t, http.MethodGet, "/metrics", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "yatube_http_requests_total")
	assert.Contains(t, w.Body.String(), "yatube_feed_cache_lookups_total")

	w = app.do(t, http.MethodGet, "/swagger/doc.json", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/profile/{username}/follow/")

	w = app.do(t, http.MethodGet, "/", nil, nil)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}
