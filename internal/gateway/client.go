// Package gateway is the HTTP client for the community feed endpoints.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/anonto42/kratos-hub/backend/internal/models"
	"github.com/anonto42/kratos-hub/backend/internal/session"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	apiPrefix      = "/api/v1"
	defaultTimeout = 15 * time.Second
	codeNotFound   = "NOT_FOUND"
	maxBodyBytes   = 4 << 20
)

// ListPostsParams selects one page of a feed scope
type ListPostsParams struct {
	UserID   uint
	ForUser  bool
	AuthorID uint
	Page     int
	Limit    int
}

// Client calls the Kratos Hub API on behalf of the session's viewer
type Client struct {
	baseURL    string
	httpClient *http.Client
	session    *session.Session
	log        logrus.FieldLogger
}

// Option configures a Client
type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(c *Client) { c.log = log }
}

// New builds a client for the server at baseURL (scheme and host, no /api/v1)
func New(baseURL string, sess *session.Session, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		session:    sess,
		log:        logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Code    string          `json:"code"`
}

func (c *Client) ListPosts(ctx context.Context, p ListPostsParams) (models.PostPage, error) {
	q := url.Values{}
	q.Set("userId", strconv.FormatUint(uint64(p.UserID), 10))
	q.Set("forUser", strconv.FormatBool(p.ForUser))
	if p.AuthorID != 0 {
		q.Set("authorId", strconv.FormatUint(uint64(p.AuthorID), 10))
	}
	q.Set("page", strconv.Itoa(p.Page))
	q.Set("limit", strconv.Itoa(p.Limit))

	page, err := call[models.PostPage](ctx, c, http.MethodGet, "/community/posts", q, nil)
	if err == nil && page.Posts == nil {
		page.Posts = []models.FeedPost{}
	}
	return page, err
}

func (c *Client) ToggleLike(ctx context.Context, req models.LikeRequest) (models.LikeResult, error) {
	return call[models.LikeResult](ctx, c, http.MethodPost, "/community/posts/like", nil, req)
}

func (c *Client) ToggleSave(ctx context.Context, req models.SaveRequest) (models.SaveResult, error) {
	return call[models.SaveResult](ctx, c, http.MethodPost, "/community/posts/save", nil, req)
}

func (c *Client) ListLikers(ctx context.Context, postID string) (models.LikersResult, error) {
	return call[models.LikersResult](ctx, c, http.MethodGet, "/community/posts/"+url.PathEscape(postID)+"/likers", nil, nil)
}

func (c *Client) SharePost(ctx context.Context, postID string) (models.ShareResult, error) {
	return call[models.ShareResult](ctx, c, http.MethodPost, "/community/posts/"+url.PathEscape(postID)+"/share", nil, nil)
}

func (c *Client) DeletePost(ctx context.Context, postID string) error {
	_, err := call[json.RawMessage](ctx, c, http.MethodDelete, "/community/posts/"+url.PathEscape(postID), nil, nil)
	return err
}

// call performs one request and decodes the envelope's data into T. Any
// response without success:true is a failure, whatever its status code.
func call[T any](ctx context.Context, c *Client, method, path string, query url.Values, body interface{}) (T, error) {
	var zero T

	endpoint := c.baseURL + apiPrefix + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return zero, &RequestError{Kind: KindApplication, Message: "Could not encode the request", Err: err}
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return zero, transportError(err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.session.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	logger := c.log.WithFields(logrus.Fields{"method": method, "path": path, "request_id": requestID})
	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.WithError(err).Debug("Request did not complete")
		return zero, transportError(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return zero, transportError(err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		if resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode < http.StatusBadRequest {
			logger.WithField("status", resp.StatusCode).Debug("Undecodable response")
			return zero, &RequestError{Kind: KindTransport, Status: resp.StatusCode, Message: TransportMessage, Err: err}
		}
		return zero, &RequestError{Kind: KindApplication, Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode), Err: err}
	}

	ok := resp.StatusCode >= 200 && resp.StatusCode < 300
	if !env.Success || !ok {
		re := &RequestError{Kind: KindApplication, Status: resp.StatusCode, Code: env.Code, Message: env.Message}
		if re.Message == "" {
			re.Message = fmt.Sprintf("Request failed (%d)", resp.StatusCode)
		}
		if env.Code == codeNotFound {
			re.Kind = KindStale
		}
		logger.WithFields(logrus.Fields{"status": resp.StatusCode, "code": env.Code}).Debug("Request rejected")
		return zero, re
	}

	if len(env.Data) == 0 || string(env.Data) == "null" {
		return zero, nil
	}
	var data T
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return zero, &RequestError{Kind: KindApplication, Status: resp.StatusCode, Message: "Unexpected response from server", Err: err}
	}
	return data, nil
}
