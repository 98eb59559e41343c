package mpesa

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDaraja struct {
	tokenStatus int
	pushStatus  int
	pushBody    string
	pushDelay   time.Duration

	lastPush  STKPushRequest
	lastAuth  string
	lastBasic string
	pushCalls atomic.Int32
}

func (f *fakeDaraja) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/v1/generate", func(w http.ResponseWriter, r *http.Request) {
		f.lastBasic = r.Header.Get("Authorization")
		if f.tokenStatus != 0 && f.tokenStatus != http.StatusOK {
			w.WriteHeader(f.tokenStatus)
			_, _ = w.Write([]byte(`{"errorMessage":"Invalid credentials"}`))
			return
		}
		_, _ = w.Write([]byte(`{"access_token":"tok-123","expires_in":"3599"}`))
	})
	mux.HandleFunc("/mpesa/stkpush/v1/processrequest", func(w http.ResponseWriter, r *http.Request) {
		f.pushCalls.Add(1)
		f.lastAuth = r.Header.Get("Authorization")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&f.lastPush))
		if f.pushDelay > 0 {
			select {
			case <-time.After(f.pushDelay):
			case <-r.Context().Done():
				return
			}
		}
		status := f.pushStatus
		if status == 0 {
			status = http.StatusOK
		}
		w.WriteHeader(status)
		body := f.pushBody
		if body == "" {
			body = `{"MerchantRequestID":"29115-34620561-1","CheckoutRequestID":"ws_CO_191220191020363925","ResponseCode":"0","ResponseDescription":"Success. Request accepted for processing","CustomerMessage":"Success. Request accepted for processing"}`
		}
		_, _ = w.Write([]byte(body))
	})
	return mux
}

func newTestClient(t *testing.T, f *fakeDaraja, timeout time.Duration) *Client {
	srv := httptest.NewServer(f.handler(t))
	t.Cleanup(srv.Close)
	c := NewClient(Config{
		BaseURL:        srv.URL,
		ConsumerKey:    "key",
		ConsumerSecret: "secret",
		Shortcode:      "174379",
		Passkey:        "passkey",
		CallbackURL:    "https://example.co.ke/",
		Timeout:        timeout,
	}, nil)
	c.now = func() time.Time { return time.Date(2024, 3, 5, 6, 7, 8, 0, time.UTC) }
	return c
}

func TestGetAccessTokenSendsBasicCredentials(t *testing.T) {
	f := &fakeDaraja{}
	c := newTestClient(t, f, time.Second)

	tok, err := c.GetAccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-123", tok)
	assert.Equal(t, "Basic "+base64.StdEncoding.EncodeToString([]byte("key:secret")), f.lastBasic)
}

func TestGetAccessTokenNon2xxIsAuthError(t *testing.T) {
	f := &fakeDaraja{tokenStatus: http.StatusBadRequest}
	c := newTestClient(t, f, time.Second)

	_, err := c.GetAccessToken(context.Background())
	var authErr *GatewayAuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, http.StatusBadRequest, authErr.StatusCode)
	assert.Contains(t, authErr.Body, "Invalid credentials")
}

func TestInitiateSTKPushBuildsSignedPayload(t *testing.T) {
	f := &fakeDaraja{}
	c := newTestClient(t, f, time.Second)

	resp, err := c.InitiateSTKPush(context.Background(), "0712 345 678", 500.4, 42)
	require.NoError(t, err)
	assert.Equal(t, "ws_CO_191220191020363925", resp.CheckoutRequestID)
	assert.Equal(t, "29115-34620561-1", resp.MerchantRequestID)

	p := f.lastPush
	assert.Equal(t, "Bearer tok-123", f.lastAuth)
	assert.Equal(t, int64(501), p.Amount)
	assert.Equal(t, "20240305090708", p.Timestamp)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("174379passkey20240305090708")), p.Password)
	assert.Equal(t, "CustomerPayBillOnline", p.TransactionType)
	assert.Equal(t, "254712345678", p.PartyA)
	assert.Equal(t, "254712345678", p.PhoneNumber)
	assert.Equal(t, "174379", p.PartyB)
	assert.Equal(t, "174379", p.BusinessShortCode)
	assert.Equal(t, "https://example.co.ke/api/payments/callback", p.CallBackURL)
	assert.Equal(t, "Order-42", p.AccountReference)
	assert.Equal(t, "Payment for Order 42", p.TransactionDesc)
}

func TestInitiateSTKPushProviderErrorCarriesBody(t *testing.T) {
	f := &fakeDaraja{
		pushStatus: http.StatusBadRequest,
		pushBody:   `{"requestId":"1-2","errorCode":"400.002.02","errorMessage":"Bad Request - Invalid PhoneNumber"}`,
	}
	c := newTestClient(t, f, time.Second)

	_, err := c.InitiateSTKPush(context.Background(), "0712345678", 100, 1)
	var reqErr *GatewayRequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, http.StatusBadRequest, reqErr.StatusCode)
	assert.Equal(t, "400.002.02", reqErr.Code)
	assert.Contains(t, reqErr.Error(), "Invalid PhoneNumber")
	assert.Contains(t, reqErr.Body, "requestId")
}

func TestInitiateSTKPushMissingCheckoutIDIsError(t *testing.T) {
	f := &fakeDaraja{pushBody: `{"MerchantRequestID":"m-1","ResponseCode":"0"}`}
	c := newTestClient(t, f, time.Second)

	_, err := c.InitiateSTKPush(context.Background(), "0712345678", 100, 1)
	var reqErr *GatewayRequestError
	require.ErrorAs(t, err, &reqErr)
}

func TestInitiateSTKPushTimeout(t *testing.T) {
	f := &fakeDaraja{pushDelay: 2 * time.Second}
	c := newTestClient(t, f, 100*time.Millisecond)

	_, err := c.InitiateSTKPush(context.Background(), "0712345678", 100, 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTimeout), "got %v", err)
}

func TestCallbackURLCarriesToken(t *testing.T) {
	c := NewClient(Config{CallbackURL: "https://hooks.example.com", CallbackToken: "s3cr3t&x"}, nil)
	assert.Equal(t, "https://hooks.example.com/api/payments/callback?token=s3cr3t%26x", c.CallbackURL())
}

func TestTimestampUsesNairobiTime(t *testing.T) {
	ts := Timestamp(time.Date(2024, 12, 31, 22, 30, 0, 0, time.UTC))
	assert.Equal(t, "20250101013000", ts)
}
