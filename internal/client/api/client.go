package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/iudanet/calcbread/pkg/api"
)

// Error ответ сервера с кодом вне диапазона 2xx
type Error struct {
	Status  string // текст статуса из тела ответа
	Message string
	Field   string
	Code    int
}

func (e *Error) Error() string {
	if e.Status == "" {
		return fmt.Sprintf("request failed with status %d: %s", e.Code, e.Message)
	}
	msg := e.Message
	if msg == "" {
		msg = e.Status
	}
	if e.Field != "" {
		return fmt.Sprintf("server error (%d): %s: %s", e.Code, e.Field, msg)
	}
	return fmt.Sprintf("server error (%d): %s", e.Code, msg)
}

// StatusCode возвращает HTTP код из ошибки клиента или 0
func StatusCode(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return 0
}

// ListParams параметры выборки истории. Пустые значения не передаются.
type ListParams struct {
	Operation string
	Skip      int
	Limit     int
}

func (p ListParams) query() string {
	v := url.Values{}
	if p.Operation != "" {
		v.Set("operation", p.Operation)
	}
	if p.Skip > 0 {
		v.Set("skip", strconv.Itoa(p.Skip))
	}
	if p.Limit > 0 {
		v.Set("limit", strconv.Itoa(p.Limit))
	}
	if len(v) == 0 {
		return ""
	}
	return "?" + v.Encode()
}

// Client представляет HTTP клиент для взаимодействия с сервером
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient создает новый API клиент
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("stopped after 10 redirects")
				}
				// Копируем заголовки Authorization при редиректе
				if len(via) > 0 && via[0].Header.Get("Authorization") != "" {
					req.Header.Set("Authorization", via[0].Header.Get("Authorization"))
				}
				return nil
			},
		},
	}
}

// Register регистрирует нового пользователя и возвращает его первый токен
func (c *Client) Register(ctx context.Context, req api.RegisterRequest) (*api.TokenResponse, error) {
	var resp api.TokenResponse
	if err := c.doRequest(ctx, http.MethodPost, "/api/register", "", req, &resp); err != nil {
		return nil, fmt.Errorf("register request failed: %w", err)
	}
	return &resp, nil
}

// Login выполняет аутентификацию пользователя
func (c *Client) Login(ctx context.Context, req api.LoginRequest) (*api.TokenResponse, error) {
	var resp api.TokenResponse
	if err := c.doRequest(ctx, http.MethodPost, "/api/login", "", req, &resp); err != nil {
		return nil, fmt.Errorf("login request failed: %w", err)
	}
	return &resp, nil
}

// Me возвращает профиль владельца токена
func (c *Client) Me(ctx context.Context, token string) (*api.UserResponse, error) {
	var resp api.UserResponse
	if err := c.doRequest(ctx, http.MethodGet, "/api/me", token, nil, &resp); err != nil {
		return nil, fmt.Errorf("me request failed: %w", err)
	}
	return &resp, nil
}

// CreateCalculation вычисляет и сохраняет новую запись.
// Пустой token создает анонимную запись.
func (c *Client) CreateCalculation(ctx context.Context, token string, req api.CreateCalculationRequest) (*api.CalculationResponse, error) {
	var resp api.CalculationResponse
	if err := c.doRequest(ctx, http.MethodPost, "/api/calculations", token, req, &resp); err != nil {
		return nil, fmt.Errorf("create calculation request failed: %w", err)
	}
	return &resp, nil
}

// ListCalculations возвращает страницу истории
func (c *Client) ListCalculations(ctx context.Context, token string, params ListParams) (*api.CalculationListResponse, error) {
	var resp api.CalculationListResponse
	if err := c.doRequest(ctx, http.MethodGet, "/api/calculations"+params.query(), token, nil, &resp); err != nil {
		return nil, fmt.Errorf("list calculations request failed: %w", err)
	}
	return &resp, nil
}

// GetCalculation возвращает запись по id
func (c *Client) GetCalculation(ctx context.Context, token string, id int64) (*api.CalculationResponse, error) {
	var resp api.CalculationResponse
	if err := c.doRequest(ctx, http.MethodGet, calculationPath(id), token, nil, &resp); err != nil {
		return nil, fmt.Errorf("get calculation request failed: %w", err)
	}
	return &resp, nil
}

// UpdateCalculation частично обновляет запись
func (c *Client) UpdateCalculation(ctx context.Context, token string, id int64, req api.UpdateCalculationRequest) (*api.CalculationResponse, error) {
	var resp api.CalculationResponse
	if err := c.doRequest(ctx, http.MethodPut, calculationPath(id), token, req, &resp); err != nil {
		return nil, fmt.Errorf("update calculation request failed: %w", err)
	}
	return &resp, nil
}

// DeleteCalculation удаляет запись
func (c *Client) DeleteCalculation(ctx context.Context, token string, id int64) error {
	if err := c.doRequest(ctx, http.MethodDelete, calculationPath(id), token, nil, nil); err != nil {
		return fmt.Errorf("delete calculation request failed: %w", err)
	}
	return nil
}

// Health запрашивает состояние сервера. 503 не считается ошибкой:
// тело ответа описывает, что именно недоступно.
func (c *Client) Health(ctx context.Context) (*api.HealthResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("health request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusServiceUnavailable {
		return nil, fmt.Errorf("health request failed with status %d", resp.StatusCode)
	}

	var health api.HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &health, nil
}

func calculationPath(id int64) string {
	return "/api/calculations/" + strconv.FormatInt(id, 10)
}

// doRequest выполняет HTTP запрос
func (c *Client) doRequest(ctx context.Context, method, path, token string, body, result any) error {
	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp api.ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error != "" {
			return &Error{
				Code:    resp.StatusCode,
				Status:  errResp.Error,
				Message: errResp.Message,
				Field:   errResp.Field,
			}
		}
		return &Error{Code: resp.StatusCode, Message: strings.TrimSpace(string(respBody))}
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}
