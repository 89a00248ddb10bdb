package vk

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "5.199", "test-token", 5*time.Second)
}

func TestFetchLikes(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "/likes.getList", r.URL.Path)
		assert.Equal(t, "test-token", r.Form.Get("access_token"))
		assert.Equal(t, "post", r.Form.Get("type"))
		assert.Equal(t, "-200100", r.Form.Get("owner_id"))
		assert.Equal(t, "42", r.Form.Get("item_id"))
		assert.Equal(t, "1", r.Form.Get("extended"))

		w.Write([]byte(`{"response":{"count":2,"items":[
			{"id":1,"first_name":"Anna","last_name":"Ivanova","photo_100":"https://img/1.jpg"},
			{"id":2,"first_name":"Boris","last_name":"Petrov"}
		]}}`))
	})

	got, err := client.FetchReactions(context.Background(), ReactionLikes, -200100, 42, 100)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, Reactor{UserID: 1, Name: "Anna Ivanova", PhotoURL: "https://img/1.jpg"}, got[0])
	assert.Equal(t, "Boris Petrov", got[1].Name)
}

func TestFetchCommentsSkipsCommunitiesAndJoinsProfiles(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/wall.getComments", r.URL.Path)
		w.Write([]byte(`{"response":{
			"items":[
				{"from_id":1,"text":"I participate!"},
				{"from_id":-200100,"text":"pinned community reply"},
				{"from_id":3,"text":"me too"}
			],
			"profiles":[
				{"id":1,"first_name":"Anna","last_name":"Ivanova"},
				{"id":3,"first_name":"Clara","last_name":"Novak"}
			]
		}}`))
	})

	got, err := client.FetchReactions(context.Background(), ReactionComments, -200100, 42, 100)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(1), got[0].UserID)
	assert.Equal(t, "I participate!", got[0].Text)
	assert.Equal(t, "Anna Ivanova", got[0].Name)
	assert.Equal(t, "Clara Novak", got[1].Name)
}

func TestAPIErrorIsSurfaced(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":{"error_code":15,"error_msg":"Access denied"}}`))
	})

	_, err := client.FetchReactions(context.Background(), ReactionLikes, -1, 1, 10)
	require.Error(t, err)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 15, apiErr.Code)
	assert.Contains(t, apiErr.Message, "Access denied")
}

func TestPublishPost(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "/wall.post", r.URL.Path)
		assert.Equal(t, "Winners: [id1|Anna]", r.Form.Get("message"))
		w.Write([]byte(`{"response":{"post_id":777}}`))
	})

	postID, err := client.PublishPost(context.Background(), -200100, "Winners: [id1|Anna]")
	require.NoError(t, err)
	assert.Equal(t, int64(777), postID)
}

func TestSendDirectMessageSetsRandomID(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "/messages.send", r.URL.Path)
		assert.NotEmpty(t, r.Form.Get("random_id"))
		w.Write([]byte(`{"response":1}`))
	})

	require.NoError(t, client.SendDirectMessage(context.Background(), 1, "Your code: AAA"))
}

func TestResolveAccountPrefersGroup(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/groups.getById" {
			w.Write([]byte(`{"response":{"groups":[{"id":200100,"name":"Promo Club"}]}}`))
			return
		}
		w.Write([]byte(`{"error":{"error_code":5,"error_msg":"unexpected call"}}`))
	})

	acc, err := client.ResolveAccount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &Account{ID: -200100, Name: "Promo Club", IsGroup: true}, acc)
}

func TestResolveAccountFallsBackToUser(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/groups.getById" {
			w.Write([]byte(`{"error":{"error_code":100,"error_msg":"not a group token"}}`))
			return
		}
		w.Write([]byte(`{"response":[{"id":9,"first_name":"Anna","last_name":"Ivanova"}]}`))
	})

	acc, err := client.ResolveAccount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(9), acc.ID)
	assert.Equal(t, "Anna Ivanova", acc.Name)
	assert.False(t, acc.IsGroup)
}
