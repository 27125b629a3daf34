package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"college-schedule/backend/config"
	"college-schedule/backend/internal/model"
)

const (
	apiPrefix       = "/api"
	maxResponseSize = 10 << 20
)

// Client 后端 REST API 客户端
//
// 每个请求附带 X-API-Key；传入会话时附带 Bearer Token。
// 配置的 GET 路径在网络错误或超时时以延长的超时重试一次。
type Client struct {
	baseURL      string
	apiKey       string
	httpClient   *http.Client
	timeout      time.Duration
	retryTimeout time.Duration
	retryPaths   []string
	observer     Observer
	logger       *zap.Logger
}

// Observer 后端请求指标采集
type Observer interface {
	ObserveUpstream(method, path string, status int, d time.Duration)
	UpstreamRetry()
}

// Option 客户端可选项
type Option func(*Client)

// WithHTTPClient 替换底层 http.Client（测试使用）
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithObserver 记录每次后端请求的状态与耗时
func WithObserver(o Observer) Option {
	return func(c *Client) { c.observer = o }
}

// New 创建后端客户端
func New(cfg *config.UpstreamConfig, logger *zap.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:       cfg.APIKey,
		httpClient:   &http.Client{},
		timeout:      cfg.Timeout,
		retryTimeout: cfg.RetryTimeout,
		retryPaths:   cfg.RetryPaths,
		logger:       logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type requestIDKey struct{}

// WithRequestID 将请求追踪 ID 写入 ctx，后端请求会携带 X-Request-ID
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFrom 读取请求追踪 ID
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// envelope 后端统一响应 {success, data, message}
type envelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

// request 一次待发送的请求，可多次构建以支持重试
type request struct {
	method      string
	path        string
	query       url.Values
	body        []byte
	contentType string
}

// Do 发送 JSON 请求并将 data 解码到 out（out 可为 nil）
// sess 为 nil 时不附带 Authorization
func (c *Client) Do(ctx context.Context, sess *model.Session, method, path string, body, out interface{}) error {
	return c.DoQuery(ctx, sess, method, path, nil, body, out)
}

// DoQuery 同 Do，附带查询参数
func (c *Client) DoQuery(ctx context.Context, sess *model.Session, method, path string, query url.Values, body, out interface{}) error {
	req := request{method: method, path: path, query: query}
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("序列化请求体失败: %w", err)
		}
		req.body = raw
		req.contentType = "application/json"
	}
	return c.execute(ctx, sess, req, out)
}

// Upload 以 multipart/form-data 转发文件
func (c *Client) Upload(ctx context.Context, sess *model.Session, path, field, filename string, file io.Reader, out interface{}) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(field, filename)
	if err != nil {
		return fmt.Errorf("构建上传表单失败: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("读取上传文件失败: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("构建上传表单失败: %w", err)
	}

	req := request{
		method:      http.MethodPost,
		path:        path,
		body:        buf.Bytes(),
		contentType: mw.FormDataContentType(),
	}
	return c.execute(ctx, sess, req, out)
}

func (c *Client) execute(ctx context.Context, sess *model.Session, req request, out interface{}) error {
	status, body, err := c.send(ctx, sess, req, c.timeout)
	if err != nil && c.retryable(req) {
		c.logger.Warn("后端请求失败，延长超时后重试",
			zap.String("method", req.method),
			zap.String("path", req.path),
			zap.Duration("timeout", c.retryTimeout),
			zap.Error(err),
		)
		if c.observer != nil {
			c.observer.UpstreamRetry()
		}
		status, body, err = c.send(ctx, sess, req, c.retryTimeout)
	}
	if err != nil {
		return &APIError{Message: StatusMessage(0), Err: err}
	}

	if status < 200 || status >= 300 {
		return newStatusError(status, body)
	}
	return decode(status, body, out)
}

// retryable 仅幂等 GET 且路径命中配置前缀
func (c *Client) retryable(req request) bool {
	if req.method != http.MethodGet {
		return false
	}
	for _, p := range c.retryPaths {
		if strings.HasPrefix(req.path, p) {
			return true
		}
	}
	return false
}

// send 发送单次请求，返回状态码与响应体；仅网络错误与超时返回 err
func (c *Client) send(ctx context.Context, sess *model.Session, req request, timeout time.Duration) (int, []byte, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	u := c.baseURL + apiPrefix + req.path
	if len(req.query) > 0 {
		u += "?" + req.query.Encode()
	}

	var rd io.Reader
	if req.body != nil {
		rd = bytes.NewReader(req.body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.method, u, rd)
	if err != nil {
		return 0, nil, err
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.contentType != "" {
		httpReq.Header.Set("Content-Type", req.contentType)
	}
	if c.apiKey != "" {
		httpReq.Header.Set("X-API-Key", c.apiKey)
	}
	if sess != nil && sess.UpstreamToken != "" {
		httpReq.Header.Set("Authorization", "Bearer "+sess.UpstreamToken)
	}
	if rid := RequestIDFrom(ctx); rid != "" {
		httpReq.Header.Set("X-Request-ID", rid)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.observe(req, 0, start)
		return 0, nil, err
	}
	defer resp.Body.Close()
	c.observe(req, resp.StatusCode, start)

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return 0, nil, err
	}

	c.logger.Debug("后端请求",
		zap.String("method", req.method),
		zap.String("path", req.path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)
	return resp.StatusCode, body, nil
}

func (c *Client) observe(req request, status int, start time.Time) {
	if c.observer != nil {
		c.observer.ObserveUpstream(req.method, req.path, status, time.Since(start))
	}
}

// decode 解析成功响应
// 带信封时解码 data，success=false 视为失败；无信封时整体解码
func decode(status int, body []byte, out interface{}) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err == nil && env.Success != nil {
		if !*env.Success {
			msg := NormalizeMessage(body)
			if msg == "" {
				msg = msgUnknown
			}
			return &APIError{Status: status, Message: msg}
		}
		if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
			return nil
		}
		return unmarshalData(env.Data, out)
	}

	if out == nil {
		return nil
	}
	return unmarshalData(body, out)
}

func unmarshalData(raw []byte, out interface{}) error {
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("解析后端响应失败: %w", err)
	}
	return nil
}

// AsAPIError errors.As 的便捷封装
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
