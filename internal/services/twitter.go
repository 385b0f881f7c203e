package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"sync"
	"time"

	"pigbot/internal/models"

	"github.com/gojek/heimdall/v7"
	"github.com/gojek/heimdall/v7/httpclient"
	"github.com/samber/do"
	"go.uber.org/zap"
)

// ServiceTwitter talks to the X API v2 with app bearer auth. Retries and the
// request timeout live in the heimdall client, so a rate-limited or slow call
// blocks only its own task.
type ServiceTwitter struct {
	http    *httpclient.Client
	logger  *zap.Logger
	baseURL string
	bearer  string

	mu sync.Mutex
	me *models.Account
}

func NewServiceTwitter(container *do.Injector) (*ServiceTwitter, error) {
	logger, err := do.Invoke[*zap.Logger](container)
	if err != nil {
		return nil, err
	}

	baseURL := os.Getenv("TWITTER_API_BASE_URL")
	if baseURL == "" {
		baseURL = TWITTER_API_BASE_URL
	}

	client := httpclient.NewClient(
		httpclient.WithHTTPTimeout(10*time.Second),
		httpclient.WithRetryCount(3),
		httpclient.WithRetrier(heimdall.NewRetrier(heimdall.NewConstantBackoff(2*time.Second, 500*time.Millisecond))),
	)

	return &ServiceTwitter{
		http:    client,
		logger:  logger,
		baseURL: baseURL,
		bearer:  os.Getenv("TWITTER_BEARER_TOKEN"),
	}, nil
}

type twitterUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type twitterTweet struct {
	ID             string    `json:"id"`
	Text           string    `json:"text"`
	AuthorID       string    `json:"author_id"`
	ConversationID string    `json:"conversation_id"`
	CreatedAt      time.Time `json:"created_at"`
	Entities       struct {
		Mentions []struct {
			Username string `json:"username"`
		} `json:"mentions"`
	} `json:"entities"`
	PublicMetrics struct {
		LikeCount    int `json:"like_count"`
		RetweetCount int `json:"retweet_count"`
		ReplyCount   int `json:"reply_count"`
	} `json:"public_metrics"`
}

type twitterIncludes struct {
	Users []twitterUser `json:"users"`
}

func (service *ServiceTwitter) request(ctx context.Context, method string, path string, query url.Values, body any, out any) error {
	endpoint := service.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return err
	}

	req.Header.Set("Authorization", "Bearer "+service.bearer)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := service.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, payload)
	}

	if out == nil {
		return nil
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func (service *ServiceTwitter) Me(ctx context.Context) (*models.Account, error) {
	service.mu.Lock()
	if service.me != nil {
		me := service.me
		service.mu.Unlock()
		return me, nil
	}
	service.mu.Unlock()

	var payload struct {
		Data twitterUser `json:"data"`
	}
	if err := service.request(ctx, http.MethodGet, "/2/users/me", nil, nil, &payload); err != nil {
		return nil, err
	}

	me := &models.Account{ID: payload.Data.ID, Username: payload.Data.Username}

	service.mu.Lock()
	service.me = me
	service.mu.Unlock()

	return me, nil
}

func (service *ServiceTwitter) GetMentions(ctx context.Context, since time.Time) ([]models.Mention, error) {
	me, err := service.Me(ctx)
	if err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("start_time", since.UTC().Format(time.RFC3339))
	query.Set("tweet.fields", "created_at,conversation_id,author_id,entities")
	query.Set("expansions", "author_id")

	var payload struct {
		Data     []twitterTweet  `json:"data"`
		Includes twitterIncludes `json:"includes"`
	}
	if err := service.request(ctx, http.MethodGet, "/2/users/"+me.ID+"/mentions", query, nil, &payload); err != nil {
		return nil, err
	}

	usernames := make(map[string]string, len(payload.Includes.Users))
	for _, user := range payload.Includes.Users {
		usernames[user.ID] = user.Username
	}

	mentions := make([]models.Mention, 0, len(payload.Data))
	for _, tweet := range payload.Data {
		mention := models.Mention{
			ID:             tweet.ID,
			Text:           tweet.Text,
			AuthorID:       tweet.AuthorID,
			AuthorUsername: usernames[tweet.AuthorID],
			ConversationID: tweet.ConversationID,
			CreatedAt:      tweet.CreatedAt,
		}
		for _, tagged := range tweet.Entities.Mentions {
			mention.TaggedUsernames = append(mention.TaggedUsernames, tagged.Username)
		}
		mentions = append(mentions, mention)
	}

	return mentions, nil
}

func (service *ServiceTwitter) GetRecentPosts(ctx context.Context, accountID string, n int) ([]models.Post, error) {
	query := url.Values{}
	query.Set("max_results", fmt.Sprint(n))
	query.Set("tweet.fields", "created_at,author_id")

	var payload struct {
		Data []twitterTweet `json:"data"`
	}
	if err := service.request(ctx, http.MethodGet, "/2/users/"+accountID+"/tweets", query, nil, &payload); err != nil {
		return nil, err
	}

	posts := make([]models.Post, 0, len(payload.Data))
	for _, tweet := range payload.Data {
		posts = append(posts, models.Post{
			ID:        tweet.ID,
			AuthorID:  tweet.AuthorID,
			Text:      tweet.Text,
			CreatedAt: tweet.CreatedAt,
		})
	}

	return posts, nil
}

func (service *ServiceTwitter) GetEngagementMetrics(ctx context.Context, postID string) (*models.EngagementMetrics, error) {
	query := url.Values{}
	query.Set("tweet.fields", "public_metrics")

	var payload struct {
		Data twitterTweet `json:"data"`
	}
	if err := service.request(ctx, http.MethodGet, "/2/tweets/"+postID, query, nil, &payload); err != nil {
		return nil, err
	}

	return &models.EngagementMetrics{
		Likes:   payload.Data.PublicMetrics.LikeCount,
		Reposts: payload.Data.PublicMetrics.RetweetCount,
		Replies: payload.Data.PublicMetrics.ReplyCount,
	}, nil
}

func (service *ServiceTwitter) CreatePost(ctx context.Context, text string) (string, error) {
	body := map[string]any{"text": text}

	var payload struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := service.request(ctx, http.MethodPost, "/2/tweets", nil, body, &payload); err != nil {
		return "", err
	}

	service.logger.Info("post created", zap.String("post_id", payload.Data.ID))
	return payload.Data.ID, nil
}

func (service *ServiceTwitter) CreateReply(ctx context.Context, text string, inReplyTo string) (string, error) {
	body := map[string]any{
		"text": text,
		"reply": map[string]string{
			"in_reply_to_tweet_id": inReplyTo,
		},
	}

	var payload struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := service.request(ctx, http.MethodPost, "/2/tweets", nil, body, &payload); err != nil {
		return "", err
	}

	service.logger.Info("reply created",
		zap.String("post_id", payload.Data.ID),
		zap.String("in_reply_to", inReplyTo))

	return payload.Data.ID, nil
}

func (service *ServiceTwitter) SendDirectMessage(ctx context.Context, username string, text string) error {
	userID, err := service.ResolveUserID(ctx, username)
	if err != nil {
		return err
	}

	body := map[string]string{"text": text}
	return service.request(ctx, http.MethodPost, "/2/dm_conversations/with/"+userID+"/messages", nil, body, nil)
}

func (service *ServiceTwitter) ResolveUserID(ctx context.Context, username string) (string, error) {
	var payload struct {
		Data twitterUser `json:"data"`
	}
	if err := service.request(ctx, http.MethodGet, "/2/users/by/username/"+url.PathEscape(username), nil, nil, &payload); err != nil {
		return "", err
	}

	return payload.Data.ID, nil
}

func (service *ServiceTwitter) ResolveUsername(ctx context.Context, accountID string) (string, error) {
	var payload struct {
		Data twitterUser `json:"data"`
	}
	if err := service.request(ctx, http.MethodGet, "/2/users/"+accountID, nil, nil, &payload); err != nil {
		return "", err
	}

	return payload.Data.Username, nil
}

func (service *ServiceTwitter) GetConversationRoot(ctx context.Context, conversationID string) (*models.Post, error) {
	query := url.Values{}
	query.Set("tweet.fields", "created_at,author_id,conversation_id")

	var payload struct {
		Data *twitterTweet `json:"data"`
	}
	if err := service.request(ctx, http.MethodGet, "/2/tweets/"+conversationID, query, nil, &payload); err != nil {
		return nil, err
	}

	if payload.Data == nil {
		return nil, nil
	}

	return &models.Post{
		ID:        payload.Data.ID,
		AuthorID:  payload.Data.AuthorID,
		Text:      payload.Data.Text,
		CreatedAt: payload.Data.CreatedAt,
	}, nil
}

func (service *ServiceTwitter) GetLikingUsers(ctx context.Context, postID string) ([]string, error) {
	return service.userList(ctx, "/2/tweets/"+postID+"/liking_users")
}

func (service *ServiceTwitter) GetRepostingUsers(ctx context.Context, postID string) ([]string, error) {
	return service.userList(ctx, "/2/tweets/"+postID+"/retweeted_by")
}

func (service *ServiceTwitter) GetConversationRepliers(ctx context.Context, postID string) ([]string, error) {
	query := url.Values{}
	query.Set("query", "conversation_id:"+postID)
	query.Set("expansions", "author_id")

	var payload struct {
		Includes twitterIncludes `json:"includes"`
	}
	if err := service.request(ctx, http.MethodGet, "/2/tweets/search/recent", query, nil, &payload); err != nil {
		return nil, err
	}

	usernames := make([]string, 0, len(payload.Includes.Users))
	for _, user := range payload.Includes.Users {
		usernames = append(usernames, user.Username)
	}

	return usernames, nil
}

func (service *ServiceTwitter) userList(ctx context.Context, path string) ([]string, error) {
	var payload struct {
		Data []twitterUser `json:"data"`
	}
	if err := service.request(ctx, http.MethodGet, path, nil, nil, &payload); err != nil {
		return nil, err
	}

	usernames := make([]string, 0, len(payload.Data))
	for _, user := range payload.Data {
		usernames = append(usernames, user.Username)
	}

	return usernames, nil
}
