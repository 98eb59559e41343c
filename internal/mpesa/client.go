// Package mpesa talks to Safaricom's Daraja API: OAuth token exchange and
// Lipa Na M-Pesa Online (STK Push) initiation, plus the callback payload it
// posts back.
package mpesa

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"flavorjunction/internal/utils"
)

const (
	tokenPath   = "/oauth/v1/generate?grant_type=client_credentials"
	stkPushPath = "/mpesa/stkpush/v1/processrequest"

	// CallbackPath is appended to the configured public base URL.
	CallbackPath = "/api/payments/callback"

	transactionType = "CustomerPayBillOnline"
	timestampLayout = "20060102150405"
	maxErrorBody    = 4 << 10
)

// Daraja validates the timestamp against Nairobi time.
var nairobi = time.FixedZone("EAT", 3*60*60)

type Config struct {
	BaseURL        string
	ConsumerKey    string
	ConsumerSecret string
	Shortcode      string
	Passkey        string
	CallbackURL    string
	CallbackToken  string
	Timeout        time.Duration
}

type Client struct {
	cfg  Config
	http *http.Client
	now  func() time.Time
}

// NewClient builds a client. A nil httpClient gets a default one bounded by cfg.Timeout.
func NewClient(cfg Config, httpClient *http.Client) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{cfg: cfg, http: httpClient, now: time.Now}
}

// STKPushRequest is the processrequest body.
type STKPushRequest struct {
	BusinessShortCode string `json:"BusinessShortCode"`
	Password          string `json:"Password"`
	Timestamp         string `json:"Timestamp"`
	TransactionType   string `json:"TransactionType"`
	Amount            int64  `json:"Amount"`
	PartyA            string `json:"PartyA"`
	PartyB            string `json:"PartyB"`
	PhoneNumber       string `json:"PhoneNumber"`
	CallBackURL       string `json:"CallBackURL"`
	AccountReference  string `json:"AccountReference"`
	TransactionDesc   string `json:"TransactionDesc"`
}

type STKPushResponse struct {
	MerchantRequestID   string `json:"MerchantRequestID"`
	CheckoutRequestID   string `json:"CheckoutRequestID"`
	ResponseCode        string `json:"ResponseCode"`
	ResponseDescription string `json:"ResponseDescription"`
	CustomerMessage     string `json:"CustomerMessage"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   string `json:"expires_in"`
}

// GetAccessToken exchanges the consumer key/secret for a bearer token. Tokens
// are short-lived, so callers fetch one per request instead of caching.
func (c *Client) GetAccessToken(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+tokenPath, nil)
	if err != nil {
		return "", err
	}
	creds := base64.StdEncoding.EncodeToString([]byte(c.cfg.ConsumerKey + ":" + c.cfg.ConsumerSecret))
	req.Header.Set("Authorization", "Basic "+creds)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", &GatewayAuthError{Err: transportError(err)}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &GatewayAuthError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var tok tokenResponse
	if err := json.Unmarshal(body, &tok); err != nil {
		return "", &GatewayAuthError{StatusCode: resp.StatusCode, Body: string(body), Err: err}
	}
	if tok.AccessToken == "" {
		return "", &GatewayAuthError{StatusCode: resp.StatusCode, Body: string(body), Err: errors.New("access_token kosong")}
	}
	return tok.AccessToken, nil
}

// InitiateSTKPush prompts the payer's phone for amount (rounded up to whole
// shillings) against orderID.
func (c *Client) InitiateSTKPush(ctx context.Context, phoneNumber string, amount float64, orderID int64) (STKPushResponse, error) {
	token, err := c.GetAccessToken(ctx)
	if err != nil {
		return STKPushResponse{}, err
	}

	payload := c.BuildSTKPushRequest(phoneNumber, amount, orderID)
	raw, err := json.Marshal(payload)
	if err != nil {
		return STKPushResponse{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+stkPushPath, bytes.NewReader(raw))
	if err != nil {
		return STKPushResponse{}, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return STKPushResponse{}, &GatewayRequestError{Err: transportError(err)}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return STKPushResponse{}, newRequestError(resp.StatusCode, body)
	}

	var out STKPushResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return STKPushResponse{}, &GatewayRequestError{StatusCode: resp.StatusCode, Body: truncate(body), Err: err}
	}
	if out.ResponseCode != "" && out.ResponseCode != "0" {
		return STKPushResponse{}, &GatewayRequestError{StatusCode: resp.StatusCode, Code: out.ResponseCode, Message: out.ResponseDescription, Body: truncate(body)}
	}
	if out.CheckoutRequestID == "" {
		return STKPushResponse{}, &GatewayRequestError{StatusCode: resp.StatusCode, Body: truncate(body), Err: errors.New("CheckoutRequestID kosong")}
	}
	return out, nil
}

// BuildSTKPushRequest assembles the signed payload with a fresh timestamp.
func (c *Client) BuildSTKPushRequest(phoneNumber string, amount float64, orderID int64) STKPushRequest {
	ts := Timestamp(c.now())
	phone := FormatPhoneNumber(phoneNumber)
	ref := strconv.FormatInt(orderID, 10)
	return STKPushRequest{
		BusinessShortCode: c.cfg.Shortcode,
		Password:          Password(c.cfg.Shortcode, c.cfg.Passkey, ts),
		Timestamp:         ts,
		TransactionType:   transactionType,
		Amount:            utils.RoundUpAmount(amount),
		PartyA:            phone,
		PartyB:            c.cfg.Shortcode,
		PhoneNumber:       phone,
		CallBackURL:       c.CallbackURL(),
		AccountReference:  "Order-" + ref,
		TransactionDesc:   "Payment for Order " + ref,
	}
}

// CallbackURL is the public webhook address, carrying the shared token when set.
func (c *Client) CallbackURL() string {
	u := strings.TrimRight(c.cfg.CallbackURL, "/") + CallbackPath
	if c.cfg.CallbackToken != "" {
		u += "?token=" + url.QueryEscape(c.cfg.CallbackToken)
	}
	return u
}

// Password is base64(shortcode + passkey + timestamp).
func Password(shortcode, passkey, timestamp string) string {
	return base64.StdEncoding.EncodeToString([]byte(shortcode + passkey + timestamp))
}

// Timestamp formats t as YYYYMMDDHHMMSS in Nairobi time.
func Timestamp(t time.Time) string {
	return t.In(nairobi).Format(timestampLayout)
}

func transportError(err error) error {
	var ne net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return err
}

func truncate(b []byte) string {
	if len(b) > maxErrorBody {
		b = b[:maxErrorBody]
	}
	return string(b)
}
