package clients

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/vadiminshakov/btccmon/internal/domain"
)

const (
	defaultTimeout = 30 * time.Second

	// DefaultRPCURL trade API endpoint.
	DefaultRPCURL = "https://api.btcchina.com/api_trade_v1.php"
)

// ErrNoCredentials is returned by signed calls when no API key pair is configured.
var ErrNoCredentials = errors.New("exchange API credentials are not configured")

// RPCClient calls the signed JSON-RPC trade API. Every call is a single attempt.
type RPCClient struct {
	url        string
	accessKey  string
	secretKey  string
	httpClient *http.Client
	now        func() time.Time
	newID      func() string
}

// Option configures the RPCClient.
type Option func(*RPCClient)

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(c *http.Client) Option {
	return func(r *RPCClient) {
		r.httpClient = c
	}
}

// WithClock sets the time source for tonce generation.
func WithClock(now func() time.Time) Option {
	return func(r *RPCClient) {
		r.now = now
	}
}

// WithIDGenerator sets the request id source.
func WithIDGenerator(newID func() string) Option {
	return func(r *RPCClient) {
		r.newID = newID
	}
}

// NewRPCClient creates a client for the trade API at url.
func NewRPCClient(url, accessKey, secretKey string, opts ...Option) *RPCClient {
	c := &RPCClient{
		url:        url,
		accessKey:  accessKey,
		secretKey:  secretKey,
		httpClient: &http.Client{Timeout: defaultTimeout},
		now:        time.Now,
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// HasCredentials reports whether signed calls can be made.
func (c *RPCClient) HasCredentials() bool {
	return c.accessKey != "" && c.secretKey != ""
}

type rpcRequest struct {
	Method string `json:"method"`
	Params []any  `json:"params"`
	ID     string `json:"id"`
}

type rpcResponse struct {
	ID     json.RawMessage `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  json.RawMessage `json:"error"`
}

// GetAccountInfo calls getAccountInfo.
func (c *RPCClient) GetAccountInfo(ctx context.Context) (domain.AccountInfo, error) {
	result, err := c.call(ctx, "getAccountInfo")
	if err != nil {
		return domain.AccountInfo{}, err
	}
	info, err := domain.ParseAccountInfo(result)
	if err != nil {
		return domain.AccountInfo{}, errors.Wrap(err, "parse getAccountInfo result")
	}
	return info, nil
}

// GetOrder calls getOrder for a single order id.
func (c *RPCClient) GetOrder(ctx context.Context, id int64, market string) (domain.Order, error) {
	result, err := c.call(ctx, "getOrder", id, market)
	if err != nil {
		return domain.Order{}, err
	}
	order, err := domain.ParseOrderResult(result)
	if err != nil {
		return domain.Order{}, errors.Wrapf(err, "parse getOrder result for order %d", id)
	}
	return order, nil
}

// GetMarketDepth calls getMarketDepth2 with at most limit levels per side.
func (c *RPCClient) GetMarketDepth(ctx context.Context, limit int, market string) (domain.MarketDepth, error) {
	result, err := c.call(ctx, "getMarketDepth2", limit, market)
	if err != nil {
		return domain.MarketDepth{}, err
	}
	depth, err := domain.ParseMarketDepthResult(result)
	if err != nil {
		return domain.MarketDepth{}, errors.Wrap(err, "parse getMarketDepth2 result")
	}
	return depth, nil
}

func (c *RPCClient) call(ctx context.Context, method string, params ...any) (json.RawMessage, error) {
	if !c.HasCredentials() {
		return nil, ErrNoCredentials
	}
	if params == nil {
		params = []any{}
	}

	tonce := c.now().UnixMicro()
	id := c.newID()

	body, err := json.Marshal(rpcRequest{Method: method, Params: params, ID: id})
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create HTTP request")
	}
	req.Header.Set("Content-Type", "application/json-rpc")
	req.Header.Set("Json-Rpc-Tonce", strconv.FormatInt(tonce, 10))
	req.SetBasicAuth(c.accessKey, c.sign(tonce, id, method, params))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "%s request failed", method)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read response body")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("%s: exchange returned status %d: %s", method, resp.StatusCode, strings.TrimSpace(string(payload)))
	}

	var envelope rpcResponse
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return nil, errors.Wrapf(err, "%s: failed to unmarshal response", method)
	}

	if present(envelope.Error) {
		apiErr, err := domain.ParseAPIError(envelope.Error)
		if err != nil {
			return nil, errors.Wrapf(err, "%s: failed to decode error member", method)
		}
		return nil, apiErr
	}

	if !present(envelope.Result) {
		return nil, errors.Errorf("%s: response has neither result nor error", method)
	}

	return envelope.Result, nil
}

// sign builds the HMAC-SHA1 signature the exchange expects over the canonical
// request string.
func (c *RPCClient) sign(tonce int64, id, method string, params []any) string {
	canonical := fmt.Sprintf("tonce=%d&accesskey=%s&requestmethod=post&id=%s&method=%s&params=%s",
		tonce, c.accessKey, id, method, joinParams(params))

	mac := hmac.New(sha1.New, []byte(c.secretKey))
	mac.Write([]byte(canonical))
	return hex.EncodeToString(mac.Sum(nil))
}

// joinParams formats params for signing: comma separated, booleans as 1 or
// empty, nil as empty.
func joinParams(params []any) string {
	parts := make([]string, 0, len(params))
	for _, p := range params {
		switch v := p.(type) {
		case nil:
			parts = append(parts, "")
		case bool:
			if v {
				parts = append(parts, "1")
			} else {
				parts = append(parts, "")
			}
		default:
			parts = append(parts, fmt.Sprint(v))
		}
	}
	return strings.Join(parts, ",")
}

func present(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}
