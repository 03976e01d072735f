// Package client is a Go SDK for the support-inbox API. Besides plain request methods
// it provides caching stores with interval polling for tickets, team members and
// notifications.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spec-kit/support-inbox/internal/analytics"
	"github.com/spec-kit/support-inbox/internal/api/dto"
	"github.com/spec-kit/support-inbox/internal/domain"
)

// DefaultBaseURL is used when API_URL is unset.
const DefaultBaseURL = "http://localhost:8080/api"

// Wire types shared with the server.
type (
	Ticket       = dto.TicketResponse
	Activity     = dto.ActivityResponse
	Notification = dto.NotificationResponse
	TeamMember   = dto.TeamMemberResponse
	Metrics      = analytics.Metrics
)

// APIError is a non-2xx response. Message is the server's error string.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

// ErrorMessage returns the server error string carried by err, or fallback.
func ErrorMessage(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// Client talks to the API with a bearer token.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithToken sets the bearer token.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// New creates a client for baseURL, e.g. "https://desk.example.com/api".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FromEnv creates a client for API_URL, falling back to DefaultBaseURL.
func FromEnv(opts ...Option) *Client {
	base := os.Getenv("API_URL")
	if base == "" {
		base = DefaultBaseURL
	}
	return New(base, opts...)
}

// SetToken replaces the bearer token.
func (c *Client) SetToken(token string) { c.token = token }

type envelope struct {
	Data json.RawMessage `json:"data"`
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var eb errorBody
		if json.Unmarshal(raw, &eb) == nil && eb.Error != "" {
			apiErr.Message = eb.Error
			apiErr.Code = eb.Code
		}
		return apiErr
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode data: %w", err)
	}
	return nil
}

type countBody struct {
	Count int `json:"count"`
}

// TicketQuery filters ticket listings.
type TicketQuery struct {
	Statuses   []domain.TicketStatus
	Priorities []domain.TicketPriority
	AssigneeID string
	Search     string
	Limit      int
	Offset     int
}

func (q TicketQuery) values() url.Values {
	v := url.Values{}
	if len(q.Statuses) > 0 {
		parts := make([]string, len(q.Statuses))
		for i, s := range q.Statuses {
			parts[i] = string(s)
		}
		v.Set("status", strings.Join(parts, ","))
	}
	if len(q.Priorities) > 0 {
		parts := make([]string, len(q.Priorities))
		for i, p := range q.Priorities {
			parts[i] = string(p)
		}
		v.Set("priority", strings.Join(parts, ","))
	}
	if q.AssigneeID != "" {
		v.Set("assigneeId", q.AssigneeID)
	}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.Limit > 0 {
		v.Set("limit", fmt.Sprint(q.Limit))
	}
	if q.Offset > 0 {
		v.Set("offset", fmt.Sprint(q.Offset))
	}
	return v
}

// ListTickets GET /tickets.
func (c *Client) ListTickets(ctx context.Context, q TicketQuery) ([]Ticket, error) {
	var out []Ticket
	err := c.do(ctx, http.MethodGet, "/tickets", q.values(), nil, &out)
	return out, err
}

// CountTickets GET /tickets/count.
func (c *Client) CountTickets(ctx context.Context, q TicketQuery) (int, error) {
	var out countBody
	err := c.do(ctx, http.MethodGet, "/tickets/count", q.values(), nil, &out)
	return out.Count, err
}

// GetTicket GET /tickets/:id.
func (c *Client) GetTicket(ctx context.Context, id string) (*Ticket, error) {
	var out Ticket
	if err := c.do(ctx, http.MethodGet, "/tickets/"+url.PathEscape(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListActivities GET /tickets/:id/activities.
func (c *Client) ListActivities(ctx context.Context, id string) ([]Activity, error) {
	var out []Activity
	err := c.do(ctx, http.MethodGet, "/tickets/"+url.PathEscape(id)+"/activities", nil, nil, &out)
	return out, err
}

// Analytics GET /tickets/analytics.
func (c *Client) Analytics(ctx context.Context, r analytics.Range) (*Metrics, error) {
	var out Metrics
	q := url.Values{}
	if r != "" {
		q.Set("range", string(r))
	}
	if err := c.do(ctx, http.MethodGet, "/tickets/analytics", q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// TicketMutation is the server's answer to a ticket change.
type TicketMutation = dto.TicketMutationResponse

func (c *Client) mutateTicket(ctx context.Context, method, id, action string, body any) (*TicketMutation, error) {
	var out TicketMutation
	if err := c.do(ctx, method, "/tickets/"+url.PathEscape(id)+"/"+action, nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateTicketStatus PATCH /tickets/:id/status.
func (c *Client) UpdateTicketStatus(ctx context.Context, id string, status domain.TicketStatus, reason string) (*TicketMutation, error) {
	return c.mutateTicket(ctx, http.MethodPatch, id, "status", dto.UpdateStatusRequest{Status: status, Reason: reason})
}

// UpdateTicketPriority PATCH /tickets/:id/priority.
func (c *Client) UpdateTicketPriority(ctx context.Context, id string, priority domain.TicketPriority) (*TicketMutation, error) {
	return c.mutateTicket(ctx, http.MethodPatch, id, "priority", dto.UpdatePriorityRequest{Priority: priority})
}

// AssignTicket POST /tickets/:id/assign.
func (c *Client) AssignTicket(ctx context.Context, id, assigneeID string) (*TicketMutation, error) {
	return c.mutateTicket(ctx, http.MethodPost, id, "assign", dto.AssignRequest{AssigneeID: assigneeID})
}

// EscalateTicket POST /tickets/:id/escalate.
func (c *Client) EscalateTicket(ctx context.Context, id, reason string) (*TicketMutation, error) {
	return c.mutateTicket(ctx, http.MethodPost, id, "escalate", dto.EscalateRequest{Reason: reason})
}

// ResolveTicket POST /tickets/:id/resolve.
func (c *Client) ResolveTicket(ctx context.Context, id string) (*TicketMutation, error) {
	return c.mutateTicket(ctx, http.MethodPost, id, "resolve", nil)
}

// ReplyToTicket POST /tickets/:id/reply.
func (c *Client) ReplyToTicket(ctx context.Context, id, text string) (*TicketMutation, error) {
	return c.mutateTicket(ctx, http.MethodPost, id, "reply", dto.TextRequest{Text: text})
}

// AddTicketNote POST /tickets/:id/notes.
func (c *Client) AddTicketNote(ctx context.Context, id, text string) (*Activity, error) {
	var out Activity
	if err := c.do(ctx, http.MethodPost, "/tickets/"+url.PathEscape(id)+"/notes", nil, dto.TextRequest{Text: text}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListTeam GET /team.
func (c *Client) ListTeam(ctx context.Context) ([]TeamMember, error) {
	var out []TeamMember
	err := c.do(ctx, http.MethodGet, "/team", nil, nil, &out)
	return out, err
}

// AddTeamMember POST /team.
func (c *Client) AddTeamMember(ctx context.Context, req dto.AddMemberRequest) (*TeamMember, error) {
	var out TeamMember
	if err := c.do(ctx, http.MethodPost, "/team", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ChangeTeamRole PATCH /team/:id/role.
func (c *Client) ChangeTeamRole(ctx context.Context, id string, role domain.Role) (*TeamMember, error) {
	var out TeamMember
	if err := c.do(ctx, http.MethodPatch, "/team/"+url.PathEscape(id)+"/role", nil, dto.ChangeRoleRequest{Role: role}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RemoveTeamMember DELETE /team/:id.
func (c *Client) RemoveTeamMember(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/team/"+url.PathEscape(id), nil, nil, nil)
}

// ListNotifications GET /notifications.
func (c *Client) ListNotifications(ctx context.Context) ([]Notification, error) {
	var out []Notification
	err := c.do(ctx, http.MethodGet, "/notifications", nil, nil, &out)
	return out, err
}

// UnreadNotificationCount GET /notifications/unread-count.
func (c *Client) UnreadNotificationCount(ctx context.Context) (int, error) {
	var out countBody
	err := c.do(ctx, http.MethodGet, "/notifications/unread-count", nil, nil, &out)
	return out.Count, err
}

// MarkNotificationRead PATCH /notifications/:id/read.
func (c *Client) MarkNotificationRead(ctx context.Context, id string) (*Notification, error) {
	var out Notification
	if err := c.do(ctx, http.MethodPatch, "/notifications/"+url.PathEscape(id)+"/read", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// MarkAllNotificationsRead PATCH /notifications/read-all.
func (c *Client) MarkAllNotificationsRead(ctx context.Context) (int, error) {
	var out countBody
	err := c.do(ctx, http.MethodPatch, "/notifications/read-all", nil, nil, &out)
	return out.Count, err
}

// DeleteNotification DELETE /notifications/:id.
func (c *Client) DeleteNotification(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/notifications/"+url.PathEscape(id), nil, nil, nil)
}

// ClearNotifications DELETE /notifications.
func (c *Client) ClearNotifications(ctx context.Context) (int, error) {
	var out countBody
	err := c.do(ctx, http.MethodDelete, "/notifications", nil, nil, &out)
	return out.Count, err
}
