package api_test

import (
	"fmt"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	localCache "github.com/warblr-net/warbler/pkg/internal/cache"
	"github.com/warblr-net/warbler/pkg/internal/database"
	"github.com/warblr-net/warbler/pkg/internal/http"
	"github.com/warblr-net/warbler/pkg/internal/models"
	"gorm.io/gorm"
	glogger "gorm.io/gorm/logger"
)

func openTestDatabase(t *testing.T) {
	t.Helper()

	require.NoError(t, localCache.NewStore())

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	source, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         glogger.Default.LogMode(glogger.Silent),
	})
	require.NoError(t, err)
	inner, err := source.DB()
	require.NoError(t, err)
	inner.SetMaxOpenConns(1)
	require.NoError(t, database.RunMigration(source))
	database.C = source
}

// Most tests skip the token round-trip; TestCsrfProtection covers the
// middleware with it switched on.
func newTestServer(t *testing.T, csrfEnabled bool) *http.App {
	t.Helper()

	viper.Reset()
	viper.Set("views_dir", "../../../../views")
	viper.Set("static_dir", "../../../../static")
	viper.Set("security.cookie_secret", "")
	viper.Set("security.cookie_secure", false)
	viper.Set("security.csrf_enabled", csrfEnabled)

	openTestDatabase(t)

	return http.NewServer()
}

// client drives the app the way a browser would, carrying session cookies
// across requests.
type client struct {
	t       *testing.T
	app     *http.App
	cookies []*nethttp.Cookie
}

func (v *client) do(req *nethttp.Request) *nethttp.Response {
	v.t.Helper()
	for _, cookie := range v.cookies {
		req.AddCookie(cookie)
	}
	resp, err := v.app.Test(req, -1)
	require.NoError(v.t, err)
	for _, fresh := range resp.Cookies() {
		replaced := false
		for i, existing := range v.cookies {
			if existing.Name == fresh.Name {
				v.cookies[i] = fresh
				replaced = true
				break
			}
		}
		if !replaced {
			v.cookies = append(v.cookies, fresh)
		}
	}
	return resp
}

func (v *client) get(path string) *nethttp.Response {
	return v.do(httptest.NewRequest(nethttp.MethodGet, path, nil))
}

func (v *client) postForm(path string, form url.Values) *nethttp.Response {
	req := httptest.NewRequest(nethttp.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return v.do(req)
}

func (v *client) signUp(name string) {
	v.t.Helper()
	resp := v.postForm("/signup", url.Values{
		"username": {name},
		"email":    {name + "@email.com"},
		"password": {"password"},
	})
	require.Equal(v.t, nethttp.StatusFound, resp.StatusCode)
}

func readBody(t *testing.T, resp *nethttp.Response) string {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	defer resp.Body.Close()
	return string(body)
}

func TestSignUpAndDuplicate(t *testing.T) {
	app := newTestServer(t, false)

	u1 := &client{t: t, app: app}
	u1.signUp("u1")

	imposter := &client{t: t, app: app}
	resp := imposter.postForm("/signup", url.Values{
		"username": {"u1"},
		"email":    {"someone-else@email.com"},
		"password": {"password"},
	})
	assert.Contains(t, readBody(t, resp), "Username or email already taken")

	var count int64
	require.NoError(t, database.C.Model(&models.Account{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestLoginFlow(t *testing.T) {
	app := newTestServer(t, false)

	u1 := &client{t: t, app: app}
	u1.signUp("u1")

	guest := &client{t: t, app: app}
	resp := guest.postForm("/login", url.Values{
		"username": {"u1"},
		"password": {"wrong-password"},
	})
	assert.Contains(t, readBody(t, resp), "Invalid credentials.")

	resp = guest.postForm("/login", url.Values{
		"username": {"u1"},
		"password": {"password"},
	})
	require.Equal(t, nethttp.StatusFound, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	home := readBody(t, guest.get("/"))
	assert.Contains(t, home, "Hello, u1!")
}

func TestUnauthorizedMutationLeavesStateUnchanged(t *testing.T) {
	app := newTestServer(t, false)

	u1 := &client{t: t, app: app}
	u1.signUp("u1")

	guest := &client{t: t, app: app}
	resp := guest.postForm("/messages/new", url.Values{"text": {"sneaky"}})
	require.Equal(t, nethttp.StatusFound, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	landing := readBody(t, guest.get("/"))
	assert.Contains(t, landing, "Access unauthorized.")

	var count int64
	require.NoError(t, database.C.Model(&models.Message{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestTimelineEndToEnd(t *testing.T) {
	app := newTestServer(t, false)

	u1 := &client{t: t, app: app}
	u1.signUp("u1")
	u2 := &client{t: t, app: app}
	u2.signUp("u2")

	resp := u1.postForm("/messages/new", url.Values{"text": {"foo"}})
	require.Equal(t, nethttp.StatusFound, resp.StatusCode)
	resp = u2.postForm("/messages/new", url.Values{"text": {"bar from u2"}})
	require.Equal(t, nethttp.StatusFound, resp.StatusCode)

	var u1Row, u2Row models.Account
	require.NoError(t, database.C.Where("name = ?", "u1").First(&u1Row).Error)
	require.NoError(t, database.C.Where("name = ?", "u2").First(&u2Row).Error)

	profile := readBody(t, u1.get(fmt.Sprintf("/users/%d", u1Row.ID)))
	assert.Contains(t, profile, "foo")

	home := readBody(t, u1.get("/"))
	assert.Contains(t, home, "foo")
	assert.NotContains(t, home, "bar from u2")

	resp = u1.postForm(fmt.Sprintf("/users/follow/%d", u2Row.ID), url.Values{})
	require.Equal(t, nethttp.StatusFound, resp.StatusCode)

	home = readBody(t, u1.get("/"))
	assert.Contains(t, home, "bar from u2")
}

func TestDeleteMessageOwnership(t *testing.T) {
	app := newTestServer(t, false)

	u1 := &client{t: t, app: app}
	u1.signUp("u1")
	u2 := &client{t: t, app: app}
	u2.signUp("u2")

	resp := u1.postForm("/messages/new", url.Values{"text": {"mine"}})
	require.Equal(t, nethttp.StatusFound, resp.StatusCode)

	var message models.Message
	require.NoError(t, database.C.First(&message).Error)

	// A non-owner gets the generic unauthorized treatment and the message
	// stays put.
	resp = u2.postForm(fmt.Sprintf("/messages/%d/delete", message.ID), url.Values{})
	require.Equal(t, nethttp.StatusFound, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	var count int64
	require.NoError(t, database.C.Model(&models.Message{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	resp = u1.postForm(fmt.Sprintf("/messages/%d/delete", message.ID), url.Values{})
	require.Equal(t, nethttp.StatusFound, resp.StatusCode)

	require.NoError(t, database.C.Model(&models.Message{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestLikeToggleEndpoint(t *testing.T) {
	app := newTestServer(t, false)

	u1 := &client{t: t, app: app}
	u1.signUp("u1")
	u2 := &client{t: t, app: app}
	u2.signUp("u2")

	resp := u1.postForm("/messages/new", url.Values{"text": {"like this"}})
	require.Equal(t, nethttp.StatusFound, resp.StatusCode)

	var message models.Message
	require.NoError(t, database.C.First(&message).Error)

	likePath := fmt.Sprintf("/messages/%d/like", message.ID)

	ajax := func(v *client) *nethttp.Response {
		req := httptest.NewRequest(nethttp.MethodPost, likePath, nil)
		req.Header.Set("X-Requested-With", "XMLHttpRequest")
		return v.do(req)
	}

	resp = ajax(u2)
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), `"liked":true`)

	resp = ajax(u2)
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), `"liked":false`)

	// Liking your own message is rejected, not silently dropped.
	resp = ajax(u1)
	assert.Equal(t, nethttp.StatusConflict, resp.StatusCode)

	var count int64
	require.NoError(t, database.C.Model(&models.Like{}).Count(&count).Error)
	assert.Zero(t, count)
}

var csrfTokenPattern = regexp.MustCompile(`name="csrf-token" content="([^"]+)"`)

func TestCsrfProtection(t *testing.T) {
	app := newTestServer(t, true)

	guest := &client{t: t, app: app}

	// A tokenless form post is turned away and mutates nothing.
	resp := guest.postForm("/signup", url.Values{
		"username": {"u1"},
		"email":    {"u1@email.com"},
		"password": {"password"},
	})
	require.Equal(t, nethttp.StatusFound, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	var count int64
	require.NoError(t, database.C.Model(&models.Account{}).Count(&count).Error)
	assert.Zero(t, count)

	page := readBody(t, guest.get("/signup"))
	matches := csrfTokenPattern.FindStringSubmatch(page)
	require.Len(t, matches, 2)

	resp = guest.postForm("/signup", url.Values{
		"username":   {"u1"},
		"email":      {"u1@email.com"},
		"password":   {"password"},
		"csrf_token": {matches[1]},
	})
	require.Equal(t, nethttp.StatusFound, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	require.NoError(t, database.C.Model(&models.Account{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestCsrfEnabledWhenUnconfigured(t *testing.T) {
	// No security.csrf_enabled key at all: the protection must stay on.
	viper.Reset()
	viper.Set("views_dir", "../../../../views")
	viper.Set("static_dir", "../../../../static")
	openTestDatabase(t)
	app := http.NewServer()

	guest := &client{t: t, app: app}
	resp := guest.postForm("/signup", url.Values{
		"username": {"u1"},
		"email":    {"u1@email.com"},
		"password": {"password"},
	})
	require.Equal(t, nethttp.StatusFound, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	var count int64
	require.NoError(t, database.C.Model(&models.Account{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestNewMessageBlankTextReRendersForm(t *testing.T) {
	app := newTestServer(t, false)

	u1 := &client{t: t, app: app}
	u1.signUp("u1")

	resp := u1.postForm("/messages/new", url.Values{"text": {"   "}})
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "message content cannot be empty")

	var count int64
	require.NoError(t, database.C.Model(&models.Message{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestSignUpValidationNotices(t *testing.T) {
	app := newTestServer(t, false)

	guest := &client{t: t, app: app}
	resp := guest.postForm("/signup", url.Values{
		"username": {"u1"},
		"email":    {"not-an-email"},
		"password": {"password"},
	})

	body := readBody(t, resp)
	assert.Contains(t, body, "email must be a valid email address")
	assert.NotContains(t, body, "Field validation")
}
