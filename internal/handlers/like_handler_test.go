package handlers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/anonto42/kratos-hub/backend/internal/cache"
	"github.com/anonto42/kratos-hub/backend/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToggleLike_LikeThenUnlike(t *testing.T) {
	post := postAt(2, models.CategoryWorkout, 0)
	post.LikesCount = 10
	f := newFixture(post)
	e := f.echo(1, false)
	body := `{"userId":1,"postId":"` + post.ID.Hex() + `"}`

	rec := doRequest(e, http.MethodPost, "/api/v1/community/posts/like", body)
	require.Equal(t, http.StatusOK, rec.Code)
	var result models.LikeResult
	decode(t, rec, &result)
	assert.True(t, result.Liked)
	assert.Equal(t, 11, f.posts.posts[post.ID.Hex()].LikesCount)

	rec = doRequest(e, http.MethodPost, "/api/v1/community/posts/like", body)
	require.Equal(t, http.StatusOK, rec.Code)
	result = models.LikeResult{}
	decode(t, rec, &result)
	assert.False(t, result.Liked)
	assert.Equal(t, 10, f.posts.posts[post.ID.Hex()].LikesCount)
	assert.Empty(t, f.notifications.created)
}

func TestToggleLike_NotifiesAuthorWhenMetadataPresent(t *testing.T) {
	post := postAt(2, models.CategoryWorkout, 0)
	f := newFixture(post)
	e := f.echo(1, false)

	body := `{"postId":"` + post.ID.Hex() + `","notification":{"title":"New like","body":"Ada liked your post","previewImageUrl":"https://cdn.example.com/p.jpg"}}`
	rec := doRequest(e, http.MethodPost, "/api/v1/community/posts/like", body)
	require.Equal(t, http.StatusOK, rec.Code)

	require.Len(t, f.notifications.created, 1)
	n := f.notifications.created[0]
	assert.Equal(t, models.NotificationTypeLike, n.Type)
	assert.Equal(t, uint(1), n.ActorID)
	assert.Equal(t, uint(2), n.RecipientID)
	assert.Equal(t, post.ID.Hex(), n.TargetID)
	assert.Equal(t, "Ada liked your post", n.Message)

	// unliking never notifies
	doRequest(e, http.MethodPost, "/api/v1/community/posts/like", body)
	assert.Len(t, f.notifications.created, 1)
}

func TestToggleLike_OwnPostDoesNotNotify(t *testing.T) {
	post := postAt(1, models.CategoryWorkout, 0)
	f := newFixture(post)

	body := `{"postId":"` + post.ID.Hex() + `","notification":{"title":"New like"}}`
	rec := doRequest(f.echo(1, false), http.MethodPost, "/api/v1/community/posts/like", body)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, f.notifications.created)
}

func TestToggleLike_Errors(t *testing.T) {
	post := postAt(2, models.CategoryWorkout, 0)
	e := newFixture(post).echo(1, false)

	tests := []struct {
		name    string
		body    string
		status  int
		code    string
		message string
	}{
		{"missing post id", `{"userId":1}`, http.StatusBadRequest, CodeValidation, "postId is required"},
		{"malformed post id", `{"postId":"xyz"}`, http.StatusBadRequest, CodeValidation, "postId must be 24 characters long"},
		{"someone else", `{"userId":3,"postId":"` + post.ID.Hex() + `"}`, http.StatusForbidden, CodeForbidden, ""},
		{"unknown post", `{"postId":"64b7f0c2a1b2c3d4e5f60718"}`, http.StatusNotFound, CodeNotFound, "Post not found"},
		{"bad json", `{"postId":`, http.StatusBadRequest, CodeValidation, "Invalid request payload"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(e, http.MethodPost, "/api/v1/community/posts/like", tt.body)
			assert.Equal(t, tt.status, rec.Code)
			env := decode(t, rec, nil)
			assert.Equal(t, tt.code, env.Code)
			if tt.message != "" {
				assert.Equal(t, tt.message, env.Message)
			}
		})
	}
}

func TestListLikers_CacheAside(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	post := postAt(2, models.CategoryWorkout, 0)
	id := post.ID.Hex()
	f := newFixture(post)
	f.likersCache = cache.NewLikersCache(client, time.Minute)
	f.likes.likers[id] = []models.Liker{{ID: 3, FirstName: "Alan", LastName: "Turing"}}
	e := f.echo(1, false)

	for i := 0; i < 2; i++ {
		rec := doRequest(e, http.MethodGet, "/api/v1/community/posts/"+id+"/likers", "")
		require.Equal(t, http.StatusOK, rec.Code)
		var result models.LikersResult
		decode(t, rec, &result)
		require.Len(t, result.Likers, 1)
		assert.Equal(t, "Alan", result.Likers[0].FirstName)
	}
	assert.Equal(t, 1, f.likes.likerCalls)

	// a like toggle drops the cached list
	doRequest(e, http.MethodPost, "/api/v1/community/posts/like", `{"postId":"`+id+`"}`)
	assert.False(t, mr.Exists(cache.LikersKey(id)))

	doRequest(e, http.MethodGet, "/api/v1/community/posts/"+id+"/likers", "")
	assert.Equal(t, 2, f.likes.likerCalls)
}

func TestListLikers_ToggleDuringReadIsNotCached(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	post := postAt(2, models.CategoryWorkout, 0)
	id := post.ID.Hex()
	f := newFixture(post)
	f.likersCache = cache.NewLikersCache(client, time.Minute)
	f.likes.likers[id] = []models.Liker{{ID: 3, FirstName: "Alan", LastName: "Turing"}}
	e := f.echo(1, false)

	// a like toggle commits while the likers list is being loaded
	f.likes.onGetLikers = func(string) {
		f.likes.onGetLikers = nil
		rec := doRequest(e, http.MethodPost, "/api/v1/community/posts/like", `{"postId":"`+id+`"}`)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := doRequest(e, http.MethodGet, "/api/v1/community/posts/"+id+"/likers", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, mr.Exists(cache.LikersKey(id)))

	doRequest(e, http.MethodGet, "/api/v1/community/posts/"+id+"/likers", "")
	assert.Equal(t, 2, f.likes.likerCalls)
	assert.True(t, mr.Exists(cache.LikersKey(id)))
}

func TestListLikers_UnknownPost(t *testing.T) {
	rec := doRequest(newFixture().echo(1, false), http.MethodGet, "/api/v1/community/posts/64b7f0c2a1b2c3d4e5f60718/likers", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestToggleSave(t *testing.T) {
	post := postAt(2, models.CategoryWorkout, 0)
	f := newFixture(post)
	e := f.echo(1, false)
	body := `{"userId":1,"postId":"` + post.ID.Hex() + `"}`

	rec := doRequest(e, http.MethodPost, "/api/v1/community/posts/save", body)
	require.Equal(t, http.StatusOK, rec.Code)
	var result models.SaveResult
	decode(t, rec, &result)
	assert.True(t, result.IsSaved)

	saved, _ := f.saves.GetSavedPostIDs(context.Background(), 1, []string{post.ID.Hex()})
	assert.True(t, saved[post.ID.Hex()])

	rec = doRequest(e, http.MethodPost, "/api/v1/community/posts/save", body)
	result = models.SaveResult{}
	decode(t, rec, &result)
	assert.False(t, result.IsSaved)

	rec = doRequest(e, http.MethodPost, "/api/v1/community/posts/save", `{"userId":2,"postId":"`+post.ID.Hex()+`"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
