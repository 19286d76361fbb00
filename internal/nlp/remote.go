package nlp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/yungbote/lo-analysis-backend/internal/domain"
	"github.com/yungbote/lo-analysis-backend/internal/platform/ctxutil"
	"github.com/yungbote/lo-analysis-backend/internal/platform/logger"
)

// RemoteTokenizer calls a spaCy-style sidecar:
//
//	POST {baseURL}/tokenize {"text": "..."}
//	200 {"tokens": [{"text": "...", "pos": "VERB", "lemma": "..."}]}
type RemoteTokenizer struct {
	log        *logger.Logger
	baseURL    string
	httpClient *http.Client
}

func NewRemoteTokenizer(log *logger.Logger, baseURL string, timeout time.Duration) (*RemoteTokenizer, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("missing TOKENIZER_URL")
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if log == nil {
		log = logger.Nop()
	}
	return &RemoteTokenizer{
		log:        log.With("client", "RemoteTokenizer"),
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

type tokenizeRequest struct {
	Text string `json:"text"`
}

type tokenizeResponse struct {
	Tokens []Token `json:"tokens"`
}

type remoteHTTPError struct {
	StatusCode int
	Body       string
}

func (e *remoteHTTPError) Error() string {
	return fmt.Sprintf("tokenizer http %d: %s", e.StatusCode, e.Body)
}

func (r *RemoteTokenizer) Tokenize(ctx context.Context, text string) ([]Token, error) {
	ctx = ctxutil.Default(ctx)
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(tokenizeRequest{Text: text}); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/tokenize", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if td := ctxutil.GetTraceData(ctx); td != nil && td.RequestID != "" {
		req.Header.Set("X-Request-ID", td.RequestID)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		// Transport failures are worth another job attempt.
		return nil, domain.NewError(domain.CodeRetryable, "nlp.remote_tokenize", "tokenizer unreachable", err)
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return nil, readErr
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		httpErr := &remoteHTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return nil, domain.NewError(domain.CodeRetryable, "nlp.remote_tokenize", "tokenizer unavailable", httpErr)
		}
		return nil, httpErr
	}

	var out tokenizeResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("tokenizer decode error: %w; raw=%s", err, string(raw))
	}
	r.log.Debug("tokenized", "chars", len(text), "tokens", len(out.Tokens))
	return out.Tokens, nil
}
