// Package daraja is the outbound client for the M-Pesa Daraja gateway:
// OAuth token management, STK push initiation and C2B URL registration.
package daraja

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"chamahub.app/core/common"
)

const (
	sandboxBaseURL    = "https://sandbox.safaricom.co.ke"
	productionBaseURL = "https://api.safaricom.co.ke"

	// tokenExpirySkew is subtracted from the gateway's declared expiry so a
	// token is never used in its final seconds.
	tokenExpirySkew = 100 * time.Second

	requestTimeout = 30 * time.Second

	timestampLayout = "20060102150405"
)

var (
	ErrAuthFailed = errors.New("gateway authentication failed")
	ErrGateway    = errors.New("gateway request failed")
)

// Config carries the credentials and routing for one shortcode.
type Config struct {
	ConsumerKey     string
	ConsumerSecret  string
	ShortCode       string
	Passkey         string
	Sandbox         bool
	CallbackBaseURL string
}

// Client talks to the Daraja gateway. It is safe for concurrent use; the
// cached bearer token is guarded by a mutex.
type Client struct {
	cfg        Config
	baseURL    string
	httpClient *http.Client

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

type Option func(*Client)

// WithBaseURL overrides the gateway endpoint, mainly for tests.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func New(cfg Config, opts ...Option) *Client {
	baseURL := productionBaseURL
	if cfg.Sandbox {
		baseURL = sandboxBaseURL
	}

	c := &Client{
		cfg:        cfg,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: requestTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type authResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   string `json:"expires_in"`
}

// Authenticate returns a bearer token, reusing the cached one until its
// expiry minus the safety skew. Any authentication error discards the cache.
func (c *Client) Authenticate(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Now().Before(c.tokenExpiry) {
		return c.token, nil
	}

	c.token = ""
	c.tokenExpiry = time.Time{}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/oauth/v1/generate?grant_type=client_credentials", nil)
	if err != nil {
		return "", fmt.Errorf("building auth request: %w", err)
	}
	req.SetBasicAuth(c.cfg.ConsumerKey, c.cfg.ConsumerSecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAuthFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("%w: status %d: %s", ErrAuthFailed, resp.StatusCode, body)
	}

	var auth authResponse
	if err := json.NewDecoder(resp.Body).Decode(&auth); err != nil {
		return "", fmt.Errorf("%w: decoding response: %v", ErrAuthFailed, err)
	}
	if auth.AccessToken == "" {
		return "", fmt.Errorf("%w: empty access token", ErrAuthFailed)
	}

	expiresIn, err := strconv.Atoi(auth.ExpiresIn)
	if err != nil {
		return "", fmt.Errorf("%w: bad expires_in %q", ErrAuthFailed, auth.ExpiresIn)
	}

	c.token = auth.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(expiresIn)*time.Second - tokenExpirySkew)

	return c.token, nil
}

type stkPushRequest struct {
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

// StkPushResponse carries the correlation ids for a successfully accepted
// push request.
type StkPushResponse struct {
	MerchantRequestID   string `json:"MerchantRequestID"`
	CheckoutRequestID   string `json:"CheckoutRequestID"`
	ResponseCode        string `json:"ResponseCode"`
	ResponseDescription string `json:"ResponseDescription"`
	CustomerMessage     string `json:"CustomerMessage"`
}

// InitiateStkPush prompts the payer's phone for authorization of amount
// against reference. Phone is normalized before transmission.
func (c *Client) InitiateStkPush(ctx context.Context, phone string, amount int64, reference, description string) (*StkPushResponse, error) {
	msisdn, err := common.NormalizeMSISDN(phone)
	if err != nil {
		return nil, fmt.Errorf("normalizing phone: %w", err)
	}

	token, err := c.Authenticate(ctx)
	if err != nil {
		return nil, err
	}

	timestamp := time.Now().Format(timestampLayout)
	password := base64.StdEncoding.EncodeToString(
		[]byte(c.cfg.ShortCode + c.cfg.Passkey + timestamp))

	payload := stkPushRequest{
		BusinessShortCode: c.cfg.ShortCode,
		Password:          password,
		Timestamp:         timestamp,
		TransactionType:   "CustomerPayBillOnline",
		Amount:            amount,
		PartyA:            msisdn,
		PartyB:            c.cfg.ShortCode,
		PhoneNumber:       msisdn,
		CallBackURL:       c.cfg.CallbackBaseURL + "/v1/payments/stk/callback",
		AccountReference:  reference,
		TransactionDesc:   description,
	}

	var out StkPushResponse
	if err := c.post(ctx, token, "/mpesa/stkpush/v1/processrequest", payload, &out); err != nil {
		return nil, err
	}

	if out.ResponseCode != "0" {
		return nil, fmt.Errorf("%w: push rejected (%s): %s", ErrGateway, out.ResponseCode, out.ResponseDescription)
	}
	return &out, nil
}

type registerURLRequest struct {
	ShortCode       string `json:"ShortCode"`
	ResponseType    string `json:"ResponseType"`
	ConfirmationURL string `json:"ConfirmationURL"`
	ValidationURL   string `json:"ValidationURL"`
}

// RegisterCallbackURLs points the gateway's C2B validation and confirmation
// hooks at this deployment.
func (c *Client) RegisterCallbackURLs(ctx context.Context) error {
	token, err := c.Authenticate(ctx)
	if err != nil {
		return err
	}

	payload := registerURLRequest{
		ShortCode:       c.cfg.ShortCode,
		ResponseType:    "Completed",
		ConfirmationURL: c.cfg.CallbackBaseURL + "/v1/payments/c2b/confirmation",
		ValidationURL:   c.cfg.CallbackBaseURL + "/v1/payments/c2b/validation",
	}

	return c.post(ctx, token, "/mpesa/c2b/v1/registerurl", payload, &struct{}{})
}

func (c *Client) post(ctx context.Context, token, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrGateway, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("%w: status %d on %s: %s", ErrGateway, resp.StatusCode, path, raw)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
