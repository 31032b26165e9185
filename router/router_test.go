package router_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"essay-feed/cache"
	"essay-feed/models"
	"essay-feed/router"
	"essay-feed/session"
	"essay-feed/testhelper"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type envelope struct {
	Code        int             `json:"code"`
	CodeMessage json.RawMessage `json:"code_message"`
	CodeType    string          `json:"code_type"`
	Data        json.RawMessage `json:"data"`
}

type feedData struct {
	Essays []models.Essay          `json:"essays"`
	Paging map[string]interface{} `json:"paging"`
}

type IntegrationTestSuite struct {
	suite.Suite
	db     *gorm.DB
	router *gin.Engine
	user   *models.User
}

func (suite *IntegrationTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
}

func (suite *IntegrationTestSuite) SetupTest() {
	suite.db = testhelper.NewDB(suite.T())

	opts := router.Options{
		JWTSecret:     "test-secret",
		JWTExpiration: time.Hour,
		SessionSecret: "test-session-secret",
		BcryptCost:    bcrypt.MinCost,
	}
	svc := router.NewServices(suite.db, cache.NewMemorySessionCache(), opts)
	suite.router = router.Setup(svc, opts)

	suite.user = testhelper.CreateUser(suite.T(), suite.db)
}

func (suite *IntegrationTestSuite) serve(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *IntegrationTestSuite) postForm(path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return suite.serve(req)
}

func (suite *IntegrationTestSuite) get(path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return suite.serve(req)
}

func (suite *IntegrationTestSuite) api(method, path, token string, payload interface{}) (*httptest.ResponseRecorder, envelope) {
	var body bytes.Buffer
	if payload != nil {
		suite.Require().NoError(json.NewEncoder(&body).Encode(payload))
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := suite.serve(req)
	var res envelope
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &res), w.Body.String())
	return w, res
}

func (suite *IntegrationTestSuite) login(email, password string) models.AuthResponse {
	w, res := suite.api(http.MethodPost, "/api/v1/auth/login", "", models.LoginRequest{Email: email, Password: password})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var auth models.AuthResponse
	suite.Require().NoError(json.Unmarshal(res.Data, &auth))
	return auth
}

func cookieNamed(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func (suite *IntegrationTestSuite) TestHealth() {
	w := suite.get("/health")
	suite.Equal(http.StatusOK, w.Code)
	suite.NotEmpty(w.Header().Get("X-Request-ID"))
}

func (suite *IntegrationTestSuite) TestPagesAreCompressed() {
	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	w := suite.serve(req)
	suite.Equal(http.StatusOK, w.Code)
	suite.Equal("gzip", w.Header().Get("Content-Encoding"))

	req = httptest.NewRequest(http.MethodGet, "/api/v1/profile", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	w = suite.serve(req)
	suite.Empty(w.Header().Get("Content-Encoding"))
}

func (suite *IntegrationTestSuite) TestSignupPage() {
	for _, path := range []string{"/signup", "/users/new"} {
		w := suite.get(path)
		suite.Equal(http.StatusOK, w.Code, path)
		suite.Contains(w.Body.String(), `name="password_confirmation"`)
	}
}

func (suite *IntegrationTestSuite) TestInvalidSignupCreatesNoUser() {
	var before int64
	suite.db.Model(&models.User{}).Count(&before)

	w := suite.postForm("/users", url.Values{
		"name":                  {""},
		"email":                 {"user@invalid"},
		"password":              {"foo"},
		"password_confirmation": {"bar"},
	})
	suite.Equal(http.StatusUnprocessableEntity, w.Code)
	suite.Contains(w.Body.String(), "error_explanation")
	suite.Nil(cookieNamed(w, session.RememberTokenCookie))

	var after int64
	suite.db.Model(&models.User{}).Count(&after)
	suite.Equal(before, after)
}

func (suite *IntegrationTestSuite) TestValidSignupSignsIn() {
	w := suite.postForm("/signup", url.Values{
		"name":                  {"Example User"},
		"email":                 {"user@example.com"},
		"password":              {"foobar"},
		"password_confirmation": {"foobar"},
	})
	suite.Require().Equal(http.StatusSeeOther, w.Code, w.Body.String())
	suite.Equal("/feed", w.Header().Get("Location"))

	remember := cookieNamed(w, session.RememberTokenCookie)
	suite.Require().NotNil(remember)
	suite.NotEmpty(remember.Value)
	suite.True(remember.HttpOnly)
	flash := cookieNamed(w, session.StoreName)
	suite.Require().NotNil(flash)

	w = suite.get("/feed", remember, flash)
	suite.Equal(http.StatusOK, w.Code)
	suite.Contains(w.Body.String(), "Example User")
	suite.Contains(w.Body.String(), "Welcome to the Essay Feed!")

	var stored models.User
	suite.Require().NoError(suite.db.Where("email = ?", "user@example.com").First(&stored).Error)
	suite.Equal(stored.RememberToken, remember.Value)
}

func (suite *IntegrationTestSuite) TestFeedRequiresSignIn() {
	w := suite.get("/feed")
	suite.Equal(http.StatusSeeOther, w.Code)
	suite.Equal("/login", w.Header().Get("Location"))
}

func (suite *IntegrationTestSuite) TestLoginWithInvalidInformation() {
	w := suite.postForm("/login", url.Values{"email": {suite.user.Email}, "password": {"invalid"}})
	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.Contains(w.Body.String(), "invalid email/password combination")
	suite.Nil(cookieNamed(w, session.RememberTokenCookie))

	// The error is not carried over to the next page.
	w = suite.get("/login")
	suite.Equal(http.StatusOK, w.Code)
	suite.NotContains(w.Body.String(), "invalid email/password combination")
}

func (suite *IntegrationTestSuite) TestSignInAndOut() {
	cookie := testhelper.SignIn(suite.T(), suite.router, suite.user.Email, suite.user.Password)
	suite.Equal(suite.user.RememberToken, cookie.Value)

	w := suite.get("/feed", cookie)
	suite.Equal(http.StatusOK, w.Code)
	suite.Contains(w.Body.String(), suite.user.Name)
	suite.Contains(w.Body.String(), `href="/logout"`)

	// Signed in users skip the login form.
	w = suite.get("/login", cookie)
	suite.Equal(http.StatusSeeOther, w.Code)

	w = suite.get("/logout", cookie)
	suite.Equal(http.StatusSeeOther, w.Code)
	suite.Equal("/", w.Header().Get("Location"))
	cleared := cookieNamed(w, session.RememberTokenCookie)
	suite.Require().NotNil(cleared)
	suite.Empty(cleared.Value)

	// The old token no longer signs anyone in.
	w = suite.get("/feed", cookie)
	suite.Equal(http.StatusSeeOther, w.Code)
	suite.Equal("/login", w.Header().Get("Location"))
}

func (suite *IntegrationTestSuite) TestPostEssayFromFeedPage() {
	req := testhelper.WithRememberToken(
		httptest.NewRequest(http.MethodPost, "/essays", strings.NewReader(url.Values{"content": {"Lorem ipsum"}}.Encode())),
		suite.user.RememberToken,
	)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := suite.serve(req)
	suite.Require().Equal(http.StatusSeeOther, w.Code, w.Body.String())

	w = suite.serve(testhelper.WithRememberToken(httptest.NewRequest(http.MethodGet, "/feed", nil), suite.user.RememberToken))
	suite.Equal(http.StatusOK, w.Code)
	suite.Contains(w.Body.String(), "Lorem ipsum")

	req = testhelper.WithRememberToken(
		httptest.NewRequest(http.MethodPost, "/essays", strings.NewReader(url.Values{"content": {"  "}}.Encode())),
		suite.user.RememberToken,
	)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w = suite.serve(req)
	suite.Equal(http.StatusUnprocessableEntity, w.Code)
}

func (suite *IntegrationTestSuite) TestRegisterAndLoginAPI() {
	w, res := suite.api(http.MethodPost, "/api/v1/auth/register", "", models.SignupRequest{
		Name:                 "Api User",
		Email:                "Api@Example.com",
		Password:             "foobar",
		PasswordConfirmation: "foobar",
	})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var registered models.AuthResponse
	suite.Require().NoError(json.Unmarshal(res.Data, &registered))
	suite.NotEmpty(registered.Token)
	suite.NotEmpty(registered.RememberToken)
	suite.Equal("api@example.com", registered.User.Email)

	auth := suite.login("api@example.com", "foobar")
	suite.Equal(registered.User.ID, auth.User.ID)

	w, res = suite.api(http.MethodGet, "/api/v1/profile", auth.Token, nil)
	suite.Equal(http.StatusOK, w.Code)
	var profile models.User
	suite.Require().NoError(json.Unmarshal(res.Data, &profile))
	suite.Equal("Api User", profile.Name)
	suite.NotContains(string(res.Data), "password_digest")
	suite.NotContains(string(res.Data), "remember_token")
}

func (suite *IntegrationTestSuite) TestRegisterDuplicateEmail() {
	w, res := suite.api(http.MethodPost, "/api/v1/auth/register", "", models.SignupRequest{
		Name:                 "Copy",
		Email:                strings.ToUpper(suite.user.Email),
		Password:             "foobar",
		PasswordConfirmation: "foobar",
	})
	suite.Equal(http.StatusUnprocessableEntity, w.Code)
	suite.Equal("validationError", res.CodeType)
	suite.Contains(string(res.CodeMessage), "has already been taken")
}

func (suite *IntegrationTestSuite) TestLoginAPIRejectsBadPassword() {
	w, res := suite.api(http.MethodPost, "/api/v1/auth/login", "", models.LoginRequest{Email: suite.user.Email, Password: "invalid"})
	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.Equal(401, res.Code)

	w, _ = suite.api(http.MethodPost, "/api/v1/auth/login", "", models.LoginRequest{Email: suite.user.Email})
	suite.Equal(http.StatusUnprocessableEntity, w.Code)
}

func (suite *IntegrationTestSuite) TestProtectedRoutesRequireAuth() {
	w, _ := suite.api(http.MethodGet, "/api/v1/profile", "", nil)
	suite.Equal(http.StatusUnauthorized, w.Code)

	w, _ = suite.api(http.MethodGet, "/api/v1/profile", "not-a-jwt", nil)
	suite.Equal(http.StatusUnauthorized, w.Code)

	// The remember_token cookie works for the API too.
	req := testhelper.WithRememberToken(httptest.NewRequest(http.MethodGet, "/api/v1/profile", nil), suite.user.RememberToken)
	suite.Equal(http.StatusOK, suite.serve(req).Code)
}

func (suite *IntegrationTestSuite) TestFeedAPI() {
	followed := testhelper.CreateUser(suite.T(), suite.db)
	stranger := testhelper.CreateUser(suite.T(), suite.db)
	auth := suite.login(suite.user.Email, suite.user.Password)

	w, _ := suite.api(http.MethodPost, fmt.Sprintf("/api/v1/users/%d/follow", followed.ID), auth.Token, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	w, _ = suite.api(http.MethodPost, fmt.Sprintf("/api/v1/users/%d/follow", suite.user.ID), auth.Token, nil)
	suite.Equal(http.StatusUnprocessableEntity, w.Code)

	now := time.Now()
	older := testhelper.CreateEssay(suite.T(), suite.db, suite.user, "older", now.Add(-24*time.Hour))
	middle := testhelper.CreateEssay(suite.T(), suite.db, followed, "middle", now.Add(-2*time.Hour))
	newer := testhelper.CreateEssay(suite.T(), suite.db, suite.user, "newer", now.Add(-time.Hour))
	testhelper.CreateEssay(suite.T(), suite.db, stranger, "stranger", now)

	w, res := suite.api(http.MethodGet, "/api/v1/feed?page=1&limit=2", auth.Token, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var feed feedData
	suite.Require().NoError(json.Unmarshal(res.Data, &feed))
	suite.Require().Len(feed.Essays, 2)
	suite.Equal(newer.ID, feed.Essays[0].ID)
	suite.Equal(middle.ID, feed.Essays[1].ID)
	suite.EqualValues(3, feed.Paging["total_records"])
	suite.EqualValues(2, feed.Paging["total_pages"])

	w, res = suite.api(http.MethodGet, "/api/v1/feed?page=2&limit=2", auth.Token, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.Require().NoError(json.Unmarshal(res.Data, &feed))
	suite.Require().Len(feed.Essays, 1)
	suite.Equal(older.ID, feed.Essays[0].ID)
}

func (suite *IntegrationTestSuite) TestEssayAPI() {
	auth := suite.login(suite.user.Email, suite.user.Password)

	w, res := suite.api(http.MethodPost, "/api/v1/essays", auth.Token, models.CreateEssayRequest{Content: "An essay"})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var essay models.Essay
	suite.Require().NoError(json.Unmarshal(res.Data, &essay))
	suite.Equal(suite.user.ID, essay.UserID)

	w, _ = suite.api(http.MethodPost, "/api/v1/essays", auth.Token, models.CreateEssayRequest{Content: strings.Repeat("a", models.EssayContentMaxLength+1)})
	suite.Equal(http.StatusUnprocessableEntity, w.Code)

	other := testhelper.CreateUser(suite.T(), suite.db)
	otherAuth := suite.login(other.Email, other.Password)
	path := fmt.Sprintf("/api/v1/essays/%d", essay.ID)

	w, _ = suite.api(http.MethodDelete, path, otherAuth.Token, nil)
	suite.Equal(http.StatusForbidden, w.Code)

	w, _ = suite.api(http.MethodDelete, path, auth.Token, nil)
	suite.Equal(http.StatusOK, w.Code)

	w, _ = suite.api(http.MethodGet, path, auth.Token, nil)
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *IntegrationTestSuite) TestToggleAdminRequiresAdmin() {
	path := fmt.Sprintf("/api/v1/users/%d/admin", suite.user.ID)

	auth := suite.login(suite.user.Email, suite.user.Password)
	w, _ := suite.api(http.MethodPut, path, auth.Token, nil)
	suite.Equal(http.StatusForbidden, w.Code)

	admin := testhelper.CreateUser(suite.T(), suite.db, testhelper.AsAdmin)
	adminAuth := suite.login(admin.Email, admin.Password)
	w, res := suite.api(http.MethodPut, path, adminAuth.Token, nil)
	suite.Require().Equal(http.StatusOK, w.Code)

	var toggled models.User
	suite.Require().NoError(json.Unmarshal(res.Data, &toggled))
	suite.True(toggled.Admin)

	// The user's existing token picks up the change on the next request.
	w, res = suite.api(http.MethodGet, "/api/v1/profile", auth.Token, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var profile models.User
	suite.Require().NoError(json.Unmarshal(res.Data, &profile))
	suite.True(profile.Admin)
}

func (suite *IntegrationTestSuite) TestChangePassword() {
	auth := suite.login(suite.user.Email, suite.user.Password)
	path := fmt.Sprintf("/api/v1/users/%d/password", suite.user.ID)

	w, _ := suite.api(http.MethodPut, path, auth.Token, models.ChangePasswordRequest{Password: "secret1", PasswordConfirmation: "secret2"})
	suite.Equal(http.StatusUnprocessableEntity, w.Code)

	w, _ = suite.api(http.MethodPut, path, auth.Token, models.ChangePasswordRequest{Password: "secret1", PasswordConfirmation: "secret1"})
	suite.Require().Equal(http.StatusOK, w.Code)

	suite.login(suite.user.Email, "secret1")

	// The old remember token was rotated out.
	req := testhelper.WithRememberToken(httptest.NewRequest(http.MethodGet, "/api/v1/profile", nil), suite.user.RememberToken)
	suite.Equal(http.StatusUnauthorized, suite.serve(req).Code)

	other := testhelper.CreateUser(suite.T(), suite.db)
	w, _ = suite.api(http.MethodPut, fmt.Sprintf("/api/v1/users/%d/password", other.ID), auth.Token, models.ChangePasswordRequest{Password: "secret1", PasswordConfirmation: "secret1"})
	suite.Equal(http.StatusForbidden, w.Code)
}

func (suite *IntegrationTestSuite) TestDeleteUserRemovesEssays() {
	essay := testhelper.CreateEssay(suite.T(), suite.db, suite.user, "soon gone", time.Time{})
	auth := suite.login(suite.user.Email, suite.user.Password)

	w, _ := suite.api(http.MethodDelete, fmt.Sprintf("/api/v1/users/%d", suite.user.ID), auth.Token, nil)
	suite.Require().Equal(http.StatusOK, w.Code)

	var count int64
	suite.db.Model(&models.Essay{}).Where("id = ?", essay.ID).Count(&count)
	suite.Zero(count)

	w, _ = suite.api(http.MethodGet, "/api/v1/profile", auth.Token, nil)
	suite.Equal(http.StatusUnauthorized, w.Code)
}

func TestIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(IntegrationTestSuite))
}
