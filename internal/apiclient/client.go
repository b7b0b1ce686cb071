// Package apiclient talks to the portal REST API on behalf of a signed-in user.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"visa-advisory-portal/internal/model"
	"visa-advisory-portal/internal/model/requestresponse"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrConflict     = errors.New("conflict")
)

// APIError : decoded error body of a failed call
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api error %d %s: %s", e.Status, e.Code, e.Message)
}

// Is maps statuses onto the package sentinels.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	case ErrConflict:
		return e.Status == http.StatusConflict
	}
	return false
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	session    *Session
	logger     *zap.Logger
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// New : baseURL includes the API prefix, e.g. http://localhost:8080/api/v1
func New(baseURL string, session *Session, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 60 * time.Second},
		session:    session,
		logger:     zap.NewNop(),
	}
	if c.session == nil {
		c.session = NewSession(nil, nil)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Session() *Session {
	return c.session
}

// UploadRequest : one file for POST /documents
type UploadRequest struct {
	Category         string
	FamilyMemberName string
	FileName         string
	MimeType         string
	Content          []byte
	Replace          bool
}

// Login : authenticates and starts the session, remembered credentials survive restarts
func (c *Client) Login(ctx context.Context, email, password string, remember bool) (*model.TokensPair, error) {
	var tokens model.TokensPair
	body := requestresponse.LoginRequest{Email: email, Password: password}
	if err := c.doJSON(ctx, http.MethodPost, "/login", false, body, &tokens); err != nil {
		return nil, err
	}

	if err := c.session.Start(credentialsFrom(tokens), remember); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}
	return &tokens, nil
}

// Refresh : rotates the token pair inside the scope that already holds it
func (c *Client) Refresh(ctx context.Context) error {
	current, err := c.session.Credentials()
	if err != nil {
		return err
	}
	if current == nil || current.RefreshToken == "" {
		return ErrUnauthorized
	}

	var tokens model.TokensPair
	body := requestresponse.RefreshTokenRequest{RefreshToken: current.RefreshToken}
	if err := c.doJSON(ctx, http.MethodPost, "/refresh", true, body, &tokens); err != nil {
		return err
	}
	return c.session.replace(credentialsFrom(tokens))
}

// Logout : closes the server session when possible, local credentials are always dropped
func (c *Client) Logout(ctx context.Context) error {
	var remoteErr error
	if c.session.Token() != "" {
		remoteErr = c.doJSON(ctx, http.MethodPost, "/logout", true, nil, nil)
		if remoteErr != nil {
			c.logger.Warn("remote logout failed", zap.Error(remoteErr))
		}
	}
	if err := c.session.End(); err != nil {
		return err
	}
	if errors.Is(remoteErr, ErrUnauthorized) {
		return nil
	}
	return remoteErr
}

func (c *Client) Me(ctx context.Context) (*requestresponse.CurrentUserResponse, error) {
	var me requestresponse.CurrentUserResponse
	if err := c.doJSON(ctx, http.MethodGet, "/me", true, nil, &me); err != nil {
		return nil, err
	}
	return &me, nil
}

func (c *Client) Categories(ctx context.Context) ([]string, error) {
	var names []string
	if err := c.doJSON(ctx, http.MethodGet, "/categories", true, nil, &names); err != nil {
		return nil, err
	}
	return names, nil
}

func (c *Client) Documents(ctx context.Context) ([]model.Document, error) {
	var documents []model.Document
	if err := c.doJSON(ctx, http.MethodGet, "/documents", true, nil, &documents); err != nil {
		return nil, err
	}
	return documents, nil
}

// UploadDocument : multipart POST /documents with category, file and optional family_member_name
func (c *Client) UploadDocument(ctx context.Context, upload UploadRequest) (*model.Document, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	if err := writer.WriteField("category", upload.Category); err != nil {
		return nil, err
	}
	if upload.FamilyMemberName != "" {
		if err := writer.WriteField("family_member_name", upload.FamilyMemberName); err != nil {
			return nil, err
		}
	}

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, upload.FileName))
	header.Set("Content-Type", upload.MimeType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(upload.Content); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	path := "/documents"
	if upload.Replace {
		path += "?replace=true"
	}

	req, err := c.newRequest(ctx, http.MethodPost, path, true, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var document model.Document
	if err := c.do(req, &document); err != nil {
		return nil, err
	}
	return &document, nil
}

func (c *Client) DeleteDocument(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/documents/"+url.PathEscape(id), true, nil, nil)
}

// MyForm : ErrNotFound when nothing was saved yet
func (c *Client) MyForm(ctx context.Context) (*model.IntakeForm, error) {
	var form model.IntakeForm
	if err := c.doJSON(ctx, http.MethodGet, "/forms/me", true, nil, &form); err != nil {
		return nil, err
	}
	return &form, nil
}

func (c *Client) SaveForm(ctx context.Context, form *model.IntakeForm) (*model.IntakeForm, error) {
	var saved model.IntakeForm
	if err := c.doJSON(ctx, http.MethodPost, "/forms", true, form, &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

func (c *Client) Profile(ctx context.Context) (*model.Client, error) {
	var client model.Client
	if err := c.doJSON(ctx, http.MethodGet, "/clients/me/profile", true, nil, &client); err != nil {
		return nil, err
	}
	return &client, nil
}

func (c *Client) UpdateProfile(ctx context.Context, request requestresponse.UpdateProfileRequest) (*model.Client, error) {
	var client model.Client
	if err := c.doJSON(ctx, http.MethodPut, "/clients/me/profile", true, request, &client); err != nil {
		return nil, err
	}
	return &client, nil
}

// AdminDocuments : status may be empty for all documents
func (c *Client) AdminDocuments(ctx context.Context, status model.DocumentStatus, limit int) ([]model.Document, error) {
	query := url.Values{}
	if status != "" {
		query.Set("status", string(status))
	}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	path := "/admin/documents"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var documents []model.Document
	if err := c.doJSON(ctx, http.MethodGet, path, true, nil, &documents); err != nil {
		return nil, err
	}
	return documents, nil
}

// ReviewDocument : admin decision, the status must be approved or rejected
func (c *Client) ReviewDocument(ctx context.Context, id string, status model.DocumentStatus, notes string) (*model.Document, error) {
	var document model.Document
	body := requestresponse.ReviewDocumentRequest{Status: status, AdminNotes: notes}
	if err := c.doJSON(ctx, http.MethodPatch, "/admin/documents/"+url.PathEscape(id), true, body, &document); err != nil {
		return nil, err
	}
	return &document, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, authenticated bool, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := c.newRequest(ctx, method, path, authenticated, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, out)
}

func (c *Client) newRequest(ctx context.Context, method, path string, authenticated bool, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	if authenticated {
		token := c.session.Token()
		if token == "" {
			return nil, ErrUnauthorized
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

func (c *Client) do(req *http.Request, out any) error {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("api call",
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", req.Method, req.URL.Path, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}

	var body requestresponse.ErrorResponse
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err := json.Unmarshal(raw, &body); err == nil && body.Error.Code != "" {
		apiErr.Code = body.Error.Code
		apiErr.Message = body.Error.Message
	}
	return apiErr
}

func credentialsFrom(tokens model.TokensPair) Credentials {
	return Credentials{AccessToken: tokens.AccessToken, RefreshToken: tokens.RefreshToken, Role: tokens.Role}
}
