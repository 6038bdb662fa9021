package handlers

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/anonto42/kratos-hub/backend/internal/cache"
	"github.com/anonto42/kratos-hub/backend/internal/models"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message"`
	Code    string                 `json:"code"`
	Data    json.RawMessage        `json:"data"`
	Meta    map[string]interface{} `json:"meta"`
}

func doRequest(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	var req = httptest.NewRequest(method, path, nil)
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, data interface{}) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	if data != nil && len(env.Data) > 0 {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return env
}

// fixture wires every handler against in-memory repositories
type fixture struct {
	posts         *fakePostRepo
	likes         *fakeLikeRepo
	saves         *fakeSavedRepo
	users         *fakeUserRepo
	notifications *fakeNotificationRepo
	likersCache   *cache.LikersCache
}

func newFixture(posts ...models.Post) *fixture {
	return &fixture{
		posts: newFakePostRepo(posts...),
		likes: newFakeLikeRepo(),
		saves: &fakeSavedRepo{},
		users: newFakeUserRepo(
			models.User{ID: 1, FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"},
			models.User{ID: 2, FirstName: "Grace", LastName: "Hopper", Email: "grace@example.com"},
			models.User{ID: 3, FirstName: "Alan", LastName: "Turing", Email: "alan@example.com"},
		),
		notifications: &fakeNotificationRepo{},
		likersCache:   cache.NewLikersCache(nil, 0),
	}
}

func (f *fixture) echo(viewerID uint, admin bool) *echo.Echo {
	e, g := newTestEcho(viewerID, admin)
	log := testLogger()
	NewPostHandler(f.posts, f.users, f.likes, f.saves, f.likersCache, FeedLimits{}, log).RegisterPostRoutes(g)
	NewLikeHandler(f.likes, f.posts, f.notifications, f.likersCache, log).RegisterLikeRoutes(g)
	NewSavedPostHandler(f.saves, f.posts).RegisterSavedPostRoutes(g)
	NewNotificationHandler(f.notifications, f.users).RegisterNotificationRoutes(g)
	NewAdminHandler(f.users, log).RegisterAdminRoutes(g.Group("/admin"))
	return e
}
