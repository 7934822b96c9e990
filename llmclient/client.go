package llmclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"persona-agent/config"
	apperrors "persona-agent/errors"
	"persona-agent/session"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// errEmptyCompletion marks a 200 response that carried no usable text.
var errEmptyCompletion = errors.New("empty completion")

// ChatCompleter is the subset of the OpenAI client used here.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Client generates persona replies through an OpenAI-compatible chat
// completions endpoint. Failures are returned as *errors.RemoteError.
type Client struct {
	cfg         *config.Config
	api         ChatCompleter
	instruction string
	splitter    SentenceSplitter
	logger      *zap.Logger
}

// New builds a client for cfg.RemoteBaseURL authenticated with cfg.RemoteAPIKey.
func New(cfg *config.Config, instruction string, logger *zap.Logger) *Client {
	apiCfg := openai.DefaultConfig(cfg.RemoteAPIKey)
	if cfg.RemoteBaseURL != "" {
		apiCfg.BaseURL = strings.TrimRight(cfg.RemoteBaseURL, "/")
	}
	// Per-attempt deadlines come from the request context.
	apiCfg.HTTPClient = &http.Client{}
	return NewWithAPI(cfg, openai.NewClientWithConfig(apiCfg), instruction, logger)
}

// NewWithAPI builds a client around an existing completer.
func NewWithAPI(cfg *config.Config, api ChatCompleter, instruction string, logger *zap.Logger) *Client {
	return &Client{
		cfg:         cfg,
		api:         api,
		instruction: instruction,
		splitter:    NewProseSplitter(),
		logger:      logger,
	}
}

// Generate asks the remote model for a reply to userText given recent
// history. Only the last RemoteHistoryTurns entries of history are sent.
// Transient failures are retried RemoteMaxRetries times with exponential
// backoff; credential and rate-limit failures return immediately.
func (c *Client) Generate(ctx context.Context, userText string, history []session.Message) (string, error) {
	req := c.buildRequest(userText, history)
	maxAttempts := c.cfg.RemoteMaxRetries + 1

	var lastErr error
	var lastStatus int
	attempts := 0
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			if err := c.backoffSleep(ctx, attempt-1); err != nil {
				lastErr = err
				break
			}
		}
		attempts++

		reply, err := c.complete(ctx, req)
		if err == nil {
			return Truncate(reply, c.cfg.RemoteMaxChars, c.splitter), nil
		}

		status := statusCode(err)
		kind, retryable := classify(status)
		if !retryable {
			return "", &apperrors.RemoteError{Kind: kind, StatusCode: status, Attempts: attempts, Err: err}
		}
		lastErr, lastStatus = err, status

		// Do not retry on caller cancellation/deadline
		if ctx.Err() != nil {
			break
		}
		if attempt < maxAttempts-1 {
			c.logger.Warn("Remote generation failed, retrying",
				zap.Int("attempt", attempts),
				zap.Int("status_code", status),
				zap.Error(err))
		}
	}

	return "", &apperrors.RemoteError{
		Kind:       apperrors.ErrUnavailable,
		StatusCode: lastStatus,
		Attempts:   attempts,
		Err:        lastErr,
	}
}

func (c *Client) buildRequest(userText string, history []session.Message) openai.ChatCompletionRequest {
	if n := c.cfg.RemoteHistoryTurns; n >= 0 && len(history) > n {
		history = history[len(history)-n:]
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	if c.instruction != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: c.instruction,
		})
	}
	for _, msg := range history {
		role := openai.ChatMessageRoleUser
		if msg.Role == session.RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: msg.Content})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: userText,
	})

	return openai.ChatCompletionRequest{
		Model:       c.cfg.RemoteModel,
		Messages:    messages,
		Temperature: float32(c.cfg.RemoteTemperature),
	}
}

// complete performs one attempt bounded by LLMRequestTimeout.
func (c *Client) complete(ctx context.Context, req openai.ChatCompletionRequest) (string, error) {
	attemptCtx := ctx
	if c.cfg.LLMRequestTimeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, c.cfg.LLMRequestTimeout)
		defer cancel()
	}

	resp, err := c.api.CreateChatCompletion(attemptCtx, req)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response choices: %w", errEmptyCompletion)
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", errEmptyCompletion
	}
	return content, nil
}

func (c *Client) backoffSleep(ctx context.Context, attempt int) error {
	base := c.cfg.RetryDelay
	if base <= 0 {
		base = time.Second
	}
	timer := time.NewTimer(base * time.Duration(1<<attempt))
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// statusCode extracts the HTTP status from an OpenAI client error, or 0
// for transport failures.
func statusCode(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}

// classify maps a status to a failure kind and whether another attempt
// could succeed.
func classify(status int) (kind error, retryable bool) {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return apperrors.ErrInvalidCredential, false
	case status == http.StatusTooManyRequests:
		return apperrors.ErrRateLimited, false
	case status >= 400 && status < 500:
		return apperrors.ErrUnavailable, false
	default:
		return apperrors.ErrUnavailable, true
	}
}
