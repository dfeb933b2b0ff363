package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/helpdesk-io/helpdesk-web/internal/version"
)

// Observer receives one call per backend round trip. Status is 0 when the
// request never produced a response.
type Observer interface {
	ObserveBackendRequest(operation string, status int, elapsed time.Duration)
}

// Config represents client configuration
type Config struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
	Debug     bool
	Observer  Observer
	// Transport overrides the HTTP transport; tests leave it nil.
	Transport http.RoundTripper
}

// Client talks to the helpdesk REST backend. It is safe for concurrent use;
// the bearer token travels with each request's context.
type Client struct {
	httpClient *resty.Client
	baseURL    string
	observer   Observer

	Auth        *AuthService
	Tickets     *TicketsService
	Comments    *CommentsService
	Clients     *ClientsService
	Sites       *SitesService
	Users       *UsersService
	Categories  *CategoriesService
	EmailConfig *EmailConfigService
	SLA         *SLAService
	Dashboard   *DashboardService
	Reports     *ReportsService
	BitLocker   *BitLockerService
}

// envelope is the response wrapper used by every backend endpoint.
type envelope struct {
	Success bool              `json:"success"`
	Data    json.RawMessage   `json:"data,omitempty"`
	Error   string            `json:"error,omitempty"`
	Message string            `json:"message,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// New creates a backend client. Requests are never retried automatically.
func New(config Config) *Client {
	if config.UserAgent == "" {
		config.UserAgent = version.UserAgent()
	}
	if config.Timeout == 0 {
		config.Timeout = 15 * time.Second
	}

	httpClient := resty.New().
		SetBaseURL(config.BaseURL).
		SetTimeout(config.Timeout).
		SetRetryCount(0).
		SetHeader("User-Agent", config.UserAgent).
		SetHeader("Accept", "application/json")
	if config.Transport != nil {
		httpClient.SetTransport(config.Transport)
	}
	if config.Debug {
		httpClient.SetDebug(true)
	}

	c := &Client{
		httpClient: httpClient,
		baseURL:    config.BaseURL,
		observer:   config.Observer,
	}

	c.Auth = &AuthService{client: c}
	c.Tickets = &TicketsService{client: c}
	c.Comments = &CommentsService{client: c}
	c.Clients = &ClientsService{client: c}
	c.Sites = &SitesService{client: c}
	c.Users = &UsersService{client: c}
	c.Categories = &CategoriesService{client: c}
	c.EmailConfig = &EmailConfigService{client: c}
	c.SLA = &SLAService{client: c}
	c.Dashboard = &DashboardService{client: c}
	c.Reports = &ReportsService{client: c}
	c.BitLocker = &BitLockerService{client: c}

	httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		setAuth(req)
		return nil
	})
	httpClient.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		return handleError(resp)
	})

	return c
}

type tokenKey struct{}

// WithAccessToken returns a context whose backend requests carry the token
// as a bearer credential.
func WithAccessToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

func accessToken(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	tok, _ := ctx.Value(tokenKey{}).(string)
	return tok
}

func setAuth(req *resty.Request) {
	if tok := accessToken(req.Context()); tok != "" {
		req.SetAuthToken(tok)
	}
}

// handleError maps a non-2xx response to an *APIError.
func handleError(resp *resty.Response) error {
	if resp.IsSuccess() {
		return nil
	}

	status := resp.StatusCode()
	var env envelope
	if err := json.Unmarshal(resp.Body(), &env); err == nil && (env.Error != "" || env.Message != "") {
		msg := env.Error
		details := env.Message
		if msg == "" {
			msg, details = env.Message, ""
		}
		apiErr := NewAPIError(status, msg, "", details)
		apiErr.Fields = env.Fields
		return apiErr
	}

	switch status {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusTooManyRequests:
		return ErrRateLimited
	case http.StatusInternalServerError:
		return ErrInternal
	default:
		return NewAPIError(status, http.StatusText(status), "", "")
	}
}

// call is one backend round trip.
type call struct {
	op     string
	method string
	path   string
	query  url.Values
	body   any
}

// do executes the call and unwraps the envelope's data into out (if non-nil).
func (c *Client) do(ctx context.Context, rc call, out any) error {
	req := c.httpClient.R().SetContext(ctx)
	if rc.query != nil {
		req.SetQueryParamsFromValues(rc.query)
	}
	if rc.body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(rc.body)
	}

	start := time.Now()
	resp, err := req.Execute(rc.method, rc.path)
	c.observe(rc.op, resp, time.Since(start))
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			return apiErr
		}
		return &NetworkError{Operation: rc.method, URL: c.baseURL + rc.path, Err: err}
	}

	return decode(resp, out)
}

func decode(resp *resty.Response, out any) error {
	body := resp.Body()
	if len(body) == 0 {
		if out != nil {
			return NewAPIError(resp.StatusCode(), "empty response", "", "")
		}
		return nil
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return NewAPIError(resp.StatusCode(), "malformed response", "", err.Error())
	}
	if !env.Success {
		msg := env.Error
		if msg == "" {
			msg = env.Message
		}
		if msg == "" {
			msg = "request failed"
		}
		apiErr := NewAPIError(resp.StatusCode(), msg, "", "")
		apiErr.Fields = env.Fields
		return apiErr
	}
	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return NewAPIError(resp.StatusCode(), "malformed response data", "", err.Error())
	}
	return nil
}

func (c *Client) observe(op string, resp *resty.Response, elapsed time.Duration) {
	if c.observer == nil {
		return
	}
	status := 0
	if resp != nil && resp.RawResponse != nil {
		status = resp.StatusCode()
	}
	c.observer.ObserveBackendRequest(op, status, elapsed)
}

// Ping checks if the backend is reachable
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, call{op: "health", method: http.MethodGet, path: "/health"}, nil)
}

func idPath(prefix string, id uint, suffix ...string) string {
	p := prefix + "/" + strconv.FormatUint(uint64(id), 10)
	for _, s := range suffix {
		p += "/" + s
	}
	return p
}
