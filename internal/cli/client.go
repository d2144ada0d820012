package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

// --- Response types (дублируются из api/dto.go, CLI не импортирует internal/api) ---

// AssessmentSummary опросник в списке.
type AssessmentSummary struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Version   int    `json:"version"`
	Status    string `json:"status"`
	Steps     int    `json:"steps"`
	CreatedBy string `json:"created_by,omitempty"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// AssessmentResponse опросник с определением.
type AssessmentResponse struct {
	AssessmentSummary
	Definition json.RawMessage `json:"definition"`
}

// LintResponse результат проверки анкеты.
type LintResponse struct {
	Valid       bool     `json:"valid"`
	Error       string   `json:"error,omitempty"`
	ErrorStepID string   `json:"error_step_id,omitempty"`
	Reachable   []string `json:"reachable"`
	Unreachable []string `json:"unreachable"`
	Dangling    []string `json:"dangling"`
}

// FieldResponse поле шага.
type FieldResponse struct {
	Name     string `json:"name"`
	Label    string `json:"label"`
	Type     string `json:"type"`
	Required bool   `json:"required,omitempty"`
}

// StepResponse текущий шаг сессии.
type StepResponse struct {
	ID          string          `json:"id"`
	Key         string          `json:"key,omitempty"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Fields      []FieldResponse `json:"fields"`
}

// ProgressResponse прогресс прохождения.
type ProgressResponse struct {
	Answered int `json:"answered"`
	Total    int `json:"total"`
	Percent  int `json:"percent"`
}

// SessionResponse сессия из API.
type SessionResponse struct {
	ID                string                    `json:"id"`
	AssessmentID      string                    `json:"assessment_id"`
	AssessmentVersion int                       `json:"assessment_version"`
	Status            string                    `json:"status"`
	CurrentStepID     string                    `json:"current_step_id,omitempty"`
	GroupID           string                    `json:"group_id,omitempty"`
	GroupTitle        string                    `json:"group_title,omitempty"`
	Step              *StepResponse             `json:"step,omitempty"`
	VisibleFields     []string                  `json:"visible_fields"`
	Answers           map[string]map[string]any `json:"answers"`
	History           []string                  `json:"history"`
	Progress          ProgressResponse          `json:"progress"`
	CreatedAt         string                    `json:"created_at"`
	UpdatedAt         string                    `json:"updated_at"`
	CompletedAt       string                    `json:"completed_at,omitempty"`
}

// --- Request types ---

// CreateAssessmentRequest создание опросника.
type CreateAssessmentRequest struct {
	Title      string          `json:"title"`
	CreatedBy  string          `json:"created_by,omitempty"`
	Definition json.RawMessage `json:"definition,omitempty"`
}

// UpdateAssessmentRequest обновление опросника.
type UpdateAssessmentRequest struct {
	Title      *string         `json:"title,omitempty"`
	Definition json.RawMessage `json:"definition,omitempty"`
}

// ListAssessmentsOpts параметры фильтрации опросников.
type ListAssessmentsOpts struct {
	Status string
	Limit  int
	Offset int
}

// --- API response wrappers ---

type dataResponse struct {
	Data json.RawMessage `json:"data"`
}

type listResponse struct {
	Data  json.RawMessage `json:"data"`
	Total int             `json:"total"`
}

type errorResponse struct {
	Error struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		StepID  string            `json:"step_id"`
		Fields  map[string]string `json:"fields"`
	} `json:"error"`
}

// APIError ошибка, которую вернул сервер.
type APIError struct {
	Status  int
	Code    string
	Message string
	StepID  string
	Fields  map[string]string
}

func (e *APIError) Error() string {
	var b strings.Builder
	if e.Code != "" {
		fmt.Fprintf(&b, "%s: %s", e.Code, e.Message)
	} else {
		fmt.Fprintf(&b, "API error: HTTP %d", e.Status)
	}
	if e.StepID != "" {
		fmt.Fprintf(&b, " (step %s)", e.StepID)
	}

	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(&b, "\n  %s: %s", name, e.Fields[name])
	}
	return b.String()
}

// --- Client ---

// Client HTTP-клиент для Pathway API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient создаёт клиент для API.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// --- Assessments ---

// ListAssessments возвращает опросники.
func (c *Client) ListAssessments(ctx context.Context, opts ListAssessmentsOpts) ([]AssessmentSummary, error) {
	params := url.Values{}
	if opts.Status != "" {
		params.Set("status", opts.Status)
	}
	if opts.Limit > 0 {
		params.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Offset > 0 {
		params.Set("offset", strconv.Itoa(opts.Offset))
	}

	var assessments []AssessmentSummary
	err := c.list(ctx, "/api/v1/assessments", params, &assessments)
	return assessments, err
}

// CreateAssessment создаёт опросник.
func (c *Client) CreateAssessment(ctx context.Context, req CreateAssessmentRequest) (*AssessmentResponse, error) {
	var a AssessmentResponse
	err := c.post(ctx, "/api/v1/assessments", req, &a)
	return &a, err
}

// GetAssessment возвращает опросник по ID.
func (c *Client) GetAssessment(ctx context.Context, id string) (*AssessmentResponse, error) {
	var a AssessmentResponse
	err := c.get(ctx, "/api/v1/assessments/"+url.PathEscape(id), &a)
	return &a, err
}

// UpdateAssessment обновляет опросник.
func (c *Client) UpdateAssessment(ctx context.Context, id string, req UpdateAssessmentRequest) (*AssessmentResponse, error) {
	var a AssessmentResponse
	err := c.put(ctx, "/api/v1/assessments/"+url.PathEscape(id), req, &a)
	return &a, err
}

// DeleteAssessment удаляет опросник.
func (c *Client) DeleteAssessment(ctx context.Context, id string) error {
	return c.delete(ctx, "/api/v1/assessments/"+url.PathEscape(id))
}

// PublishAssessment публикует опросник.
func (c *Client) PublishAssessment(ctx context.Context, id string) (*AssessmentResponse, error) {
	var a AssessmentResponse
	err := c.post(ctx, "/api/v1/assessments/"+url.PathEscape(id)+"/publish", nil, &a)
	return &a, err
}

// LintAssessment проверяет сохранённый опросник.
func (c *Client) LintAssessment(ctx context.Context, id string) (*LintResponse, error) {
	var r LintResponse
	err := c.get(ctx, "/api/v1/assessments/"+url.PathEscape(id)+"/lint", &r)
	return &r, err
}

// LintDefinition проверяет анкету на сервере без сохранения.
func (c *Client) LintDefinition(ctx context.Context, definition json.RawMessage) (*LintResponse, error) {
	var r LintResponse
	err := c.post(ctx, "/api/v1/assessments/lint", definition, &r)
	return &r, err
}

// --- Sessions ---

// StartSession начинает прохождение опросника.
func (c *Client) StartSession(ctx context.Context, assessmentID string) (*SessionResponse, error) {
	var s SessionResponse
	err := c.post(ctx, "/api/v1/assessments/"+url.PathEscape(assessmentID)+"/sessions", nil, &s)
	return &s, err
}

// GetSession возвращает сессию.
func (c *Client) GetSession(ctx context.Context, id string) (*SessionResponse, error) {
	var s SessionResponse
	err := c.get(ctx, "/api/v1/sessions/"+url.PathEscape(id), &s)
	return &s, err
}

// SaveAnswers сохраняет ответы текущего шага.
func (c *Client) SaveAnswers(ctx context.Context, id string, answers map[string]any) (*SessionResponse, error) {
	var s SessionResponse
	body := map[string]any{"answers": answers}
	err := c.put(ctx, "/api/v1/sessions/"+url.PathEscape(id)+"/answers", body, &s)
	return &s, err
}

// Next переходит к следующему шагу.
func (c *Client) Next(ctx context.Context, id string) (*SessionResponse, error) {
	var s SessionResponse
	err := c.post(ctx, "/api/v1/sessions/"+url.PathEscape(id)+"/next", nil, &s)
	return &s, err
}

// Back возвращает на предыдущий шаг.
func (c *Client) Back(ctx context.Context, id string) (*SessionResponse, error) {
	var s SessionResponse
	err := c.post(ctx, "/api/v1/sessions/"+url.PathEscape(id)+"/back", nil, &s)
	return &s, err
}

// --- HTTP helpers ---

func (c *Client) get(ctx context.Context, path string, result any) error {
	return c.doData(ctx, http.MethodGet, path, nil, result)
}

func (c *Client) post(ctx context.Context, path string, body any, result any) error {
	return c.doData(ctx, http.MethodPost, path, body, result)
}

func (c *Client) put(ctx context.Context, path string, body any, result any) error {
	return c.doData(ctx, http.MethodPut, path, body, result)
}

func (c *Client) delete(ctx context.Context, path string) error {
	resp, err := c.do(ctx, http.MethodDelete, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return c.checkError(resp)
}

func (c *Client) list(ctx context.Context, path string, params url.Values, result any) error {
	if len(params) > 0 {
		path = path + "?" + params.Encode()
	}

	resp, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return err
	}

	var lr listResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return json.Unmarshal(lr.Data, result)
}

func (c *Client) doData(ctx context.Context, method, path string, body any, result any) error {
	resp, err := c.do(ctx, method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return err
	}

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	var dr dataResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if result != nil {
		return json.Unmarshal(dr.Data, result)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.httpClient.Do(req)
}

func (c *Client) checkError(resp *http.Response) error {
	if resp.StatusCode < 400 {
		return nil
	}

	apiErr := &APIError{Status: resp.StatusCode}
	var er errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err == nil {
		apiErr.Code = er.Error.Code
		apiErr.Message = er.Error.Message
		apiErr.StepID = er.Error.StepID
		apiErr.Fields = er.Error.Fields
	}
	return apiErr
}
