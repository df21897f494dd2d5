package clients

import (
	"context"
	"crypto/hmac"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vadiminshakov/btccmon/internal/domain"
)

type capturedRequest struct {
	body    rpcRequest
	user    string
	pass    string
	tonce   string
	hasAuth bool
}

func newRPCServer(t *testing.T, status int, response string, captured *capturedRequest) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		if captured != nil {
			require.NoError(t, json.Unmarshal(raw, &captured.body))
			captured.user, captured.pass, captured.hasAuth = r.BasicAuth()
			captured.tonce = r.Header.Get("Json-Rpc-Tonce")
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}))
}

func fixedClient(url string) *RPCClient {
	return NewRPCClient(url, "access", "secret",
		WithClock(func() time.Time { return time.UnixMicro(1700000000123456) }),
		WithIDGenerator(func() string { return "req-1" }),
	)
}

func TestRPCClient_SignsRequest(t *testing.T) {
	var captured capturedRequest
	srv := newRPCServer(t, http.StatusOK, `{"result":{"market_depth":{"bid":[],"ask":[],"date":0}},"id":"req-1"}`, &captured)
	defer srv.Close()

	_, err := fixedClient(srv.URL).GetMarketDepth(context.Background(), 10, "btccny")
	require.NoError(t, err)

	assert.Equal(t, "getMarketDepth2", captured.body.Method)
	assert.Equal(t, "req-1", captured.body.ID)
	assert.Equal(t, []any{float64(10), "btccny"}, captured.body.Params)
	assert.Equal(t, "1700000000123456", captured.tonce)

	require.True(t, captured.hasAuth)
	assert.Equal(t, "access", captured.user)

	mac := hmac.New(sha1.New, []byte("secret"))
	mac.Write([]byte("tonce=1700000000123456&accesskey=access&requestmethod=post&id=req-1&method=getMarketDepth2&params=10,btccny"))
	assert.Equal(t, hex.EncodeToString(mac.Sum(nil)), captured.pass)
}

func TestRPCClient_GetAccountInfo(t *testing.T) {
	response := `{"result":{
		"profile":{"username":"op","api_key_permission":1},
		"balance":{
			"btc":{"currency":"BTC","amount":"1.5","amount_integer":"1","amount_decimal":5},
			"ltc":{"currency":"LTC","amount":"0","amount_integer":"0","amount_decimal":0},
			"cny":{"currency":"CNY","amount":"10.00","amount_integer":"10","amount_decimal":0}},
		"frozen":{
			"btc":{"currency":"BTC","amount":"0","amount_integer":"0","amount_decimal":0},
			"ltc":{"currency":"LTC","amount":"0","amount_integer":"0","amount_decimal":0},
			"cny":{"currency":"CNY","amount":"0","amount_integer":"0","amount_decimal":0}}
	},"id":"req-1"}`
	srv := newRPCServer(t, http.StatusOK, response, nil)
	defer srv.Close()

	info, err := fixedClient(srv.URL).GetAccountInfo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "op", info.Profile.Username)
	assert.Equal(t, "1.5", info.Balance.BTC.Amount)
}

func TestRPCClient_GetOrder(t *testing.T) {
	var captured capturedRequest
	srv := newRPCServer(t, http.StatusOK, `{"result":{"order":{"id":42,"type":"ask","price":"3000","amount":"0.1","date":1,"status":"open"}},"id":"req-1"}`, &captured)
	defer srv.Close()

	order, err := fixedClient(srv.URL).GetOrder(context.Background(), 42, "btccny")
	require.NoError(t, err)
	assert.Equal(t, int64(42), order.ID)
	assert.Equal(t, domain.OrderTypeSell, order.Type)
	assert.Equal(t, "getOrder", captured.body.Method)
}

func TestRPCClient_Errors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		response string
		check    func(t *testing.T, err error)
	}{
		{
			name:     "api error member",
			status:   http.StatusOK,
			response: `{"error":{"code":-32019,"message":"Order not found","data":{"hint":"x"}},"id":"req-1"}`,
			check: func(t *testing.T, err error) {
				var apiErr *domain.APIError
				require.True(t, errors.As(err, &apiErr))
				assert.Equal(t, -32019, apiErr.Code)
				assert.Equal(t, "x", apiErr.Data["hint"])
			},
		},
		{
			name:     "http status",
			status:   http.StatusUnauthorized,
			response: `401 Unauthorized`,
			check: func(t *testing.T, err error) {
				assert.Contains(t, err.Error(), "status 401")
			},
		},
		{
			name:     "garbled envelope",
			status:   http.StatusOK,
			response: `{"result":`,
			check: func(t *testing.T, err error) {
				assert.Contains(t, err.Error(), "failed to unmarshal response")
			},
		},
		{
			name:     "result fails to parse",
			status:   http.StatusOK,
			response: `{"result":{"order":{"id":1,"type":"buy","amount":"1","date":"soon","status":"open"}},"id":"req-1"}`,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, domain.ErrTypeMismatch)
				var parseErr *domain.ParseError
				require.True(t, errors.As(err, &parseErr))
				assert.Equal(t, "order.date", parseErr.Field)
			},
		},
		{
			name:     "empty envelope",
			status:   http.StatusOK,
			response: `{"id":"req-1"}`,
			check: func(t *testing.T, err error) {
				assert.Contains(t, err.Error(), "neither result nor error")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newRPCServer(t, tt.status, tt.response, nil)
			defer srv.Close()

			_, err := fixedClient(srv.URL).GetOrder(context.Background(), 1, "btccny")
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestRPCClient_NoCredentials(t *testing.T) {
	c := NewRPCClient("http://127.0.0.1:0", "", "")
	assert.False(t, c.HasCredentials())

	_, err := c.GetAccountInfo(context.Background())
	assert.ErrorIs(t, err, ErrNoCredentials)
}

func TestJoinParams(t *testing.T) {
	assert.Equal(t, "", joinParams(nil))
	assert.Equal(t, "10,btccny", joinParams([]any{10, "btccny"}))
	assert.Equal(t, "1,,x,", joinParams([]any{true, false, "x", nil}))
}
