// Package client - типизированный клиент REST API менеджера задач.
// Токен не хранится внутри клиента: каждый защищённый вызов получает Session явно.
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
	"strings"

	"github.com/sun1tar/taskmanager/internal/apperror"
	"github.com/sun1tar/taskmanager/internal/models"
)

// Session - результат входа или регистрации
type Session struct {
	Token string             `json:"token"`
	User  models.UserSummary `json:"user"`
}

// APIError - ответ сервера с кодом не 2xx
type APIError struct {
	Status  int
	Message string
	Fields  []apperror.FieldError
}

func (e *APIError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + " " + f.Message
	}
	return fmt.Sprintf("%s: %s", e.Message, strings.Join(parts, "; "))
}

// IsStatus сообщает, что err - APIError с указанным статусом
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

type Client struct {
	baseURL string
	http    *http.Client
}

// New создаёт клиент; nil hc означает http.DefaultClient
func New(baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: hc}
}

// TaskInput - поля новой задачи; RemindAt в формате RFC 3339
type TaskInput struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Starred     bool   `json:"starred,omitempty"`
	RemindAt    string `json:"remindAt,omitempty"`
}

// TaskUpdate - частичное изменение; RemindAt, указывающий на "", снимает напоминание
type TaskUpdate struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Starred     *bool   `json:"starred,omitempty"`
	RemindAt    *string `json:"remindAt,omitempty"`
}

type messageBody struct {
	Message string `json:"message"`
}

func (c *Client) Register(ctx context.Context, username, email, password string) (*Session, error) {
	var s Session
	body := map[string]string{"username": username, "email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", nil, body, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	var s Session
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", nil, body, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) Me(ctx context.Context, s Session) (*models.UserSummary, error) {
	var u models.UserSummary
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", &s, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) UpdateProfile(ctx context.Context, s Session, username, email *string) (*models.UserSummary, error) {
	body := struct {
		Username *string `json:"username,omitempty"`
		Email    *string `json:"email,omitempty"`
	}{username, email}

	var resp struct {
		User models.UserSummary `json:"user"`
	}
	if err := c.do(ctx, http.MethodPut, "/api/auth/profile", &s, body, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

func (c *Client) ChangePassword(ctx context.Context, s Session, current, next string) error {
	body := map[string]string{"currentPassword": current, "newPassword": next}
	return c.do(ctx, http.MethodPut, "/api/auth/password", &s, body, &messageBody{})
}

func (c *Client) Lists(ctx context.Context, s Session) ([]models.List, error) {
	var lists []models.List
	if err := c.do(ctx, http.MethodGet, "/api/lists", &s, nil, &lists); err != nil {
		return nil, err
	}
	return lists, nil
}

func (c *Client) CreateList(ctx context.Context, s Session, name string) (*models.List, error) {
	var l models.List
	if err := c.do(ctx, http.MethodPost, "/api/lists", &s, map[string]string{"name": name}, &l); err != nil {
		return nil, err
	}
	return &l, nil
}

func (c *Client) RenameList(ctx context.Context, s Session, id, name string) (*models.List, error) {
	var l models.List
	if err := c.do(ctx, http.MethodPut, "/api/lists/"+url.PathEscape(id), &s, map[string]string{"name": name}, &l); err != nil {
		return nil, err
	}
	return &l, nil
}

func (c *Client) DeleteList(ctx context.Context, s Session, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/lists/"+url.PathEscape(id), &s, nil, &messageBody{})
}

func (c *Client) Tasks(ctx context.Context, s Session, listID string) ([]models.Task, error) {
	var tasks []models.Task
	if err := c.do(ctx, http.MethodGet, taskPath(listID), &s, nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (c *Client) CreateTask(ctx context.Context, s Session, listID string, in TaskInput) (*models.Task, error) {
	var t models.Task
	if err := c.do(ctx, http.MethodPost, taskPath(listID), &s, in, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *Client) UpdateTask(ctx context.Context, s Session, listID, taskID string, upd TaskUpdate) (*models.Task, error) {
	var t models.Task
	if err := c.do(ctx, http.MethodPut, taskPath(listID, taskID), &s, upd, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *Client) DeleteTask(ctx context.Context, s Session, listID, taskID string) error {
	return c.do(ctx, http.MethodDelete, taskPath(listID, taskID), &s, nil, &messageBody{})
}

func (c *Client) Starred(ctx context.Context, s Session) ([]models.Task, error) {
	var tasks []models.Task
	if err := c.do(ctx, http.MethodGet, "/api/starred", &s, nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func taskPath(ids ...string) string {
	var b strings.Builder
	b.WriteString("/api/tasks")
	for _, id := range ids {
		b.WriteString("/")
		b.WriteString(url.PathEscape(id))
	}
	return b.String()
}

func (c *Client) do(ctx context.Context, method, path string, s *Session, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s != nil {
		req.Header.Set("Authorization", "Bearer "+s.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}

	var body apperror.Response
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err := json.Unmarshal(raw, &body); err == nil && body.Error != "" {
		apiErr.Message = body.Error
		apiErr.Fields = body.Errors
	} else {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}
