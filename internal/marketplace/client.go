// Package marketplace wraps the backend endpoints behind the candidate and
// expert screens: expert listings, session booking, notifications and
// certifications.
package marketplace

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/mockprep/mockprep-go/internal/apiclient"
	"github.com/mockprep/mockprep-go/internal/model"
)

const (
	expertsPath        = "/api/expert/all"
	expertPath         = "/api/expert/"
	bookPath           = "/api/sessions/book"
	mySessionsPath     = "/api/sessions/my-sessions"
	sessionsPath       = "/api/sessions/"
	notificationsPath  = "/api/notifications"
	certificationsPath = "/api/certifications/my-certifications"
	userProfilePath    = "/api/user/profile"
)

// Client calls the marketplace endpoints through the shared API client, so
// every call carries the session token and benefits from transparent refresh.
type Client struct {
	api *apiclient.Client
}

// New creates a marketplace client.
func New(api *apiclient.Client) *Client {
	return &Client{api: api}
}

func (c *Client) ListExperts(ctx context.Context) ([]model.ExpertProfile, error) {
	return getList[model.ExpertProfile](ctx, c.api, expertsPath, "experts")
}

func (c *Client) GetExpert(ctx context.Context, id string) (model.ExpertProfile, error) {
	var resp model.ExpertProfileResponse
	if err := c.api.Get(ctx, expertPath+url.PathEscape(id), &resp); err != nil {
		return model.ExpertProfile{}, err
	}
	return resp.Unwrap(), nil
}

func (c *Client) BookSession(ctx context.Context, req model.BookSessionRequest) (model.SessionBooking, error) {
	var raw json.RawMessage
	if err := c.api.Post(ctx, bookPath, req, &raw); err != nil {
		return model.SessionBooking{}, err
	}
	return decodeOne[model.SessionBooking](raw, "session")
}

func (c *Client) MySessions(ctx context.Context) ([]model.SessionBooking, error) {
	return getList[model.SessionBooking](ctx, c.api, mySessionsPath, "sessions")
}

// JoinSession returns the meeting link of a session.
func (c *Client) JoinSession(ctx context.Context, sessionID string) (string, error) {
	var resp model.JoinSessionResponse
	if err := c.api.Get(ctx, sessionsPath+url.PathEscape(sessionID)+"/join", &resp); err != nil {
		return "", err
	}
	if resp.MeetingLink == "" {
		return "", fmt.Errorf("session %s has no meeting link yet", sessionID)
	}
	return resp.MeetingLink, nil
}

func (c *Client) CancelSession(ctx context.Context, sessionID string) error {
	return c.api.Put(ctx, sessionsPath+url.PathEscape(sessionID)+"/cancel", nil, nil)
}

func (c *Client) Notifications(ctx context.Context) ([]model.Notification, error) {
	return getList[model.Notification](ctx, c.api, notificationsPath, "notifications")
}

func (c *Client) MarkNotificationRead(ctx context.Context, id string) error {
	return c.api.Put(ctx, notificationsPath+"/"+url.PathEscape(id)+"/read", nil, nil)
}

func (c *Client) Certifications(ctx context.Context) ([]model.Certification, error) {
	return getList[model.Certification](ctx, c.api, certificationsPath, "certifications")
}

// UpdateProfile saves the caller's profile and returns the normalized user.
func (c *Client) UpdateProfile(ctx context.Context, req model.ProfileUpdateRequest) (model.User, error) {
	var resp model.ProfileResponse
	if err := c.api.Put(ctx, userProfilePath, req, &resp); err != nil {
		return model.User{}, err
	}
	return resp.Unwrap().Normalize(), nil
}

// Unread counts the notifications not yet read.
func Unread(ns []model.Notification) int {
	n := 0
	for _, x := range ns {
		if !x.Read {
			n++
		}
	}
	return n
}

func getList[T any](ctx context.Context, api *apiclient.Client, path, key string) ([]T, error) {
	var raw json.RawMessage
	if err := api.Get(ctx, path, &raw); err != nil {
		return nil, err
	}
	return decodeList[T](raw, key)
}

// decodeList accepts a bare JSON array or an object holding the array under key.
func decodeList[T any](raw json.RawMessage, key string) ([]T, error) {
	items := []T{}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return items, nil
	}

	if raw[0] == '[' {
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", key, err)
		}
		return items, nil
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", key, err)
	}
	inner, ok := envelope[key]
	if !ok {
		return items, nil
	}
	if err := json.Unmarshal(inner, &items); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", key, err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// decodeOne accepts the object itself or wrapped under key. An empty body
// yields the zero value.
func decodeOne[T any](raw json.RawMessage, key string) (T, error) {
	var out T
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return out, nil
	}
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return out, fmt.Errorf("decoding %s: %w", key, err)
	}
	if inner, ok := envelope[key]; ok {
		raw = inner
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("decoding %s: %w", key, err)
	}
	return out, nil
}
