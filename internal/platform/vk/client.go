package vk

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"contest-engine-backend/internal/common/logger"
)

// ReactionKind selects which reaction set to fetch from the platform.
type ReactionKind string

const (
	ReactionLikes    ReactionKind = "likes"
	ReactionComments ReactionKind = "comments"
	ReactionReposts  ReactionKind = "reposts"
)

// Reactor is one user that reacted to a post. Text is populated for
// comments only.
type Reactor struct {
	UserID   int64
	Name     string
	PhotoURL string
	Text     string
}

// Account is the owner resolved from an access token.
type Account struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	IsGroup bool   `json:"is_group"`
}

// APIError is an error returned by the platform API itself.
type APIError struct {
	Code    int    `json:"error_code"`
	Message string `json:"error_msg"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("vk api error %d: %s", e.Code, e.Message)
}

type response struct {
	Error    *APIError       `json:"error"`
	Response json.RawMessage `json:"response"`
}

// Client is a thin VK API client. Every call is a single bounded HTTP
// request, failures are returned to the caller for per-step containment.
type Client struct {
	httpClient *http.Client
	baseURL    string
	version    string
	token      string
}

func NewClient(baseURL, version, token string, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		version:    version,
		token:      token,
	}
}

func (c *Client) call(ctx context.Context, method string, params url.Values, dst interface{}) error {
	params.Set("access_token", c.token)
	params.Set("v", c.version)

	endpoint := fmt.Sprintf("%s/%s", c.baseURL, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint,
		strings.NewReader(params.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call %s: %w", method, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s response: %w", method, err)
	}

	var envelope response
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("decode %s response: %w", method, err)
	}
	if envelope.Error != nil {
		return envelope.Error
	}
	if dst != nil {
		if err := json.Unmarshal(envelope.Response, dst); err != nil {
			return fmt.Errorf("decode %s payload: %w", method, err)
		}
	}
	return nil
}

type profile struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Photo     string `json:"photo_100"`
}

func (p profile) displayName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// FetchReactions returns up to limit users that reacted to the given post.
// The fetch is a single bounded call, larger reaction sets are truncated.
func (c *Client) FetchReactions(ctx context.Context, kind ReactionKind, ownerID, postID int64, limit int) ([]Reactor, error) {
	switch kind {
	case ReactionLikes:
		return c.fetchLikes(ctx, ownerID, postID, limit)
	case ReactionComments:
		return c.fetchComments(ctx, ownerID, postID, limit)
	case ReactionReposts:
		return c.fetchReposts(ctx, ownerID, postID, limit)
	default:
		return nil, fmt.Errorf("unknown reaction kind: %s", kind)
	}
}

func (c *Client) fetchLikes(ctx context.Context, ownerID, postID int64, limit int) ([]Reactor, error) {
	params := url.Values{
		"type":     {"post"},
		"owner_id": {strconv.FormatInt(ownerID, 10)},
		"item_id":  {strconv.FormatInt(postID, 10)},
		"count":    {strconv.Itoa(limit)},
		"extended": {"1"},
		"fields":   {"photo_100"},
	}

	var out struct {
		Count int       `json:"count"`
		Items []profile `json:"items"`
	}
	if err := c.call(ctx, "likes.getList", params, &out); err != nil {
		return nil, err
	}

	reactors := make([]Reactor, 0, len(out.Items))
	for _, p := range out.Items {
		reactors = append(reactors, Reactor{UserID: p.ID, Name: p.displayName(), PhotoURL: p.Photo})
	}
	if out.Count > len(out.Items) {
		logger.Warn().
			Int("count", out.Count).
			Int("fetched", len(out.Items)).
			Msg("Likes truncated by fetch limit")
	}
	return reactors, nil
}

func (c *Client) fetchComments(ctx context.Context, ownerID, postID int64, limit int) ([]Reactor, error) {
	params := url.Values{
		"owner_id": {strconv.FormatInt(ownerID, 10)},
		"post_id":  {strconv.FormatInt(postID, 10)},
		"count":    {strconv.Itoa(limit)},
		"extended": {"1"},
		"fields":   {"photo_100"},
	}

	var out struct {
		Items []struct {
			FromID int64  `json:"from_id"`
			Text   string `json:"text"`
		} `json:"items"`
		Profiles []profile `json:"profiles"`
	}
	if err := c.call(ctx, "wall.getComments", params, &out); err != nil {
		return nil, err
	}

	byID := make(map[int64]profile, len(out.Profiles))
	for _, p := range out.Profiles {
		byID[p.ID] = p
	}

	reactors := make([]Reactor, 0, len(out.Items))
	for _, item := range out.Items {
		// Community comments carry negative from_id, they never qualify.
		if item.FromID <= 0 {
			continue
		}
		r := Reactor{UserID: item.FromID, Text: item.Text}
		if p, ok := byID[item.FromID]; ok {
			r.Name = p.displayName()
			r.PhotoURL = p.Photo
		}
		reactors = append(reactors, r)
	}
	return reactors, nil
}

func (c *Client) fetchReposts(ctx context.Context, ownerID, postID int64, limit int) ([]Reactor, error) {
	params := url.Values{
		"owner_id": {strconv.FormatInt(ownerID, 10)},
		"post_id":  {strconv.FormatInt(postID, 10)},
		"count":    {strconv.Itoa(limit)},
	}

	var out struct {
		Items []struct {
			FromID int64 `json:"from_id"`
		} `json:"items"`
		Profiles []profile `json:"profiles"`
	}
	if err := c.call(ctx, "wall.getReposts", params, &out); err != nil {
		return nil, err
	}

	byID := make(map[int64]profile, len(out.Profiles))
	for _, p := range out.Profiles {
		byID[p.ID] = p
	}

	reactors := make([]Reactor, 0, len(out.Items))
	for _, item := range out.Items {
		if item.FromID <= 0 {
			continue
		}
		r := Reactor{UserID: item.FromID}
		if p, ok := byID[item.FromID]; ok {
			r.Name = p.displayName()
			r.PhotoURL = p.Photo
		}
		reactors = append(reactors, r)
	}
	return reactors, nil
}

// PublishPost publishes a wall post on behalf of the owner and returns the
// new post id.
func (c *Client) PublishPost(ctx context.Context, ownerID int64, message string) (int64, error) {
	params := url.Values{
		"owner_id":   {strconv.FormatInt(ownerID, 10)},
		"from_group": {"1"},
		"message":    {message},
	}

	var out struct {
		PostID int64 `json:"post_id"`
	}
	if err := c.call(ctx, "wall.post", params, &out); err != nil {
		return 0, err
	}
	return out.PostID, nil
}

// SendDirectMessage delivers a private message to the user.
func (c *Client) SendDirectMessage(ctx context.Context, userID int64, message string) error {
	params := url.Values{
		"user_id":   {strconv.FormatInt(userID, 10)},
		"random_id": {strconv.FormatInt(rand.Int63(), 10)},
		"message":   {message},
	}
	return c.call(ctx, "messages.send", params, nil)
}

// CreateComment leaves a comment under the given post.
func (c *Client) CreateComment(ctx context.Context, ownerID, postID int64, message string) error {
	params := url.Values{
		"owner_id": {strconv.FormatInt(ownerID, 10)},
		"post_id":  {strconv.FormatInt(postID, 10)},
		"message":  {message},
	}
	return c.call(ctx, "wall.createComment", params, nil)
}

// ResolveAccount resolves the community (or user) behind the access token.
func (c *Client) ResolveAccount(ctx context.Context) (*Account, error) {
	var groups struct {
		Groups []struct {
			ID   int64  `json:"id"`
			Name string `json:"name"`
		} `json:"groups"`
	}
	if err := c.call(ctx, "groups.getById", url.Values{}, &groups); err == nil && len(groups.Groups) > 0 {
		g := groups.Groups[0]
		return &Account{ID: -g.ID, Name: g.Name, IsGroup: true}, nil
	}

	var users []profile
	if err := c.call(ctx, "users.get", url.Values{}, &users); err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, fmt.Errorf("token resolves to no account")
	}
	return &Account{ID: users[0].ID, Name: users[0].displayName()}, nil
}
