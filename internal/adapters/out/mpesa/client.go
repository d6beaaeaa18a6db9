// Package mpesa is the M-PESA Daraja client: OAuth tokens, STK push charge requests and
// STK push status queries. Calls go through a circuit breaker so a failing gateway is
// not hammered by retries from callers.
package mpesa

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
	"strings"
	"sync"
	"time"

	"cleaning/internal/core/ports"
	"cleaning/internal/pkg/clock"

	"github.com/sony/gobreaker"
)

const (
	SandboxURL    = "https://sandbox.safaricom.co.ke"
	ProductionURL = "https://api.safaricom.co.ke"

	tokenPath = "/oauth/v1/generate?grant_type=client_credentials"
	pushPath  = "/mpesa/stkpush/v1/processrequest"
	queryPath = "/mpesa/stkpushquery/v1/query"

	timestampLayout  = "20060102150405"
	transactionType  = "CustomerPayBillOnline"
	tokenLifetime    = 3500 * time.Second
	maxResponseBytes = 1 << 20

	// processingErrorCode is returned by the query endpoint while the payer has not answered.
	processingErrorCode = "500.001.1001"
)

var ErrBadResponse = errors.New("mpesa: unexpected response")

type Config struct {
	BaseURL        string
	ConsumerKey    string
	ConsumerSecret string
	ShortCode      string
	PassKey        string
	CallbackURL    string
	// Location is the time zone of the Timestamp field. Defaults to Africa/Nairobi.
	Location *time.Location
}

// Client implements ports.PaymentGateway.
type Client struct {
	cfg     Config
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
	clock   clock.Clock

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

func NewClient(cfg Config, httpClient *http.Client, clk clock.Clock) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = SandboxURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.ShortCode == "" || cfg.PassKey == "" || cfg.ConsumerKey == "" || cfg.ConsumerSecret == "" {
		return nil, errors.New("mpesa: short code, pass key and consumer credentials are required")
	}
	if cfg.Location == nil {
		loc, err := time.LoadLocation("Africa/Nairobi")
		if err != nil {
			return nil, fmt.Errorf("mpesa: load time zone: %w", err)
		}
		cfg.Location = loc
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "mpesa",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 5 && failureRatio >= 0.6
		},
	})

	return &Client{cfg: cfg, http: httpClient, breaker: breaker, clock: clk}, nil
}

type pushRequest struct {
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

type pushResponse struct {
	MerchantRequestID   string `json:"MerchantRequestID"`
	CheckoutRequestID   string `json:"CheckoutRequestID"`
	ResponseCode        string `json:"ResponseCode"`
	ResponseDescription string `json:"ResponseDescription"`
	CustomerMessage     string `json:"CustomerMessage"`
}

type queryRequest struct {
	BusinessShortCode string `json:"BusinessShortCode"`
	Password          string `json:"Password"`
	Timestamp         string `json:"Timestamp"`
	CheckoutRequestID string `json:"CheckoutRequestID"`
}

type queryResponse struct {
	ResponseCode        string `json:"ResponseCode"`
	ResponseDescription string `json:"ResponseDescription"`
	MerchantRequestID   string `json:"MerchantRequestID"`
	CheckoutRequestID   string `json:"CheckoutRequestID"`
	ResultCode          string `json:"ResultCode"`
	ResultDesc          string `json:"ResultDesc"`
}

type errorResponse struct {
	RequestID    string `json:"requestId"`
	ErrorCode    string `json:"errorCode"`
	ErrorMessage string `json:"errorMessage"`
}

// RequestCharge sends an STK push. The amount is charged in whole shillings, rounded up.
func (c *Client) RequestCharge(ctx context.Context, req ports.ChargeRequest) (ports.ChargeResponse, error) {
	timestamp, password := c.credentials()
	body := pushRequest{
		BusinessShortCode: c.cfg.ShortCode,
		Password:          password,
		Timestamp:         timestamp,
		TransactionType:   transactionType,
		Amount:            req.Amount.WholeUnitsCeil(),
		PartyA:            req.PhoneNumber,
		PartyB:            c.cfg.ShortCode,
		PhoneNumber:       req.PhoneNumber,
		CallBackURL:       c.cfg.CallbackURL,
		AccountReference:  req.Reference,
		TransactionDesc:   req.Description,
	}

	var resp pushResponse
	if _, err := c.call(ctx, pushPath, body, &resp); err != nil {
		return ports.ChargeResponse{}, err
	}

	return ports.ChargeResponse{
		Accepted:            resp.ResponseCode == "0" && resp.CheckoutRequestID != "",
		MerchantRequestID:   resp.MerchantRequestID,
		CheckoutRequestID:   resp.CheckoutRequestID,
		ResponseCode:        resp.ResponseCode,
		ResponseDescription: resp.ResponseDescription,
		CustomerMessage:     resp.CustomerMessage,
	}, nil
}

// QueryCharge asks for the outcome of an STK push. A payer who has not answered yet is
// reported as ChargeStatePending rather than as an error.
func (c *Client) QueryCharge(ctx context.Context, checkoutRequestID string) (ports.ChargeStatus, error) {
	timestamp, password := c.credentials()
	body := queryRequest{
		BusinessShortCode: c.cfg.ShortCode,
		Password:          password,
		Timestamp:         timestamp,
		CheckoutRequestID: checkoutRequestID,
	}

	var resp queryResponse
	apiErr, err := c.call(ctx, queryPath, body, &resp)
	if apiErr != nil && apiErr.ErrorCode == processingErrorCode {
		return ports.ChargeStatus{State: ports.ChargeStatePending, ResultDesc: apiErr.ErrorMessage}, nil
	}
	if err != nil {
		return ports.ChargeStatus{}, err
	}

	code, convErr := strconv.Atoi(strings.TrimSpace(resp.ResultCode))
	if convErr != nil {
		return ports.ChargeStatus{}, fmt.Errorf("%w: result code %q", ErrBadResponse, resp.ResultCode)
	}
	state := ports.ChargeStateFailed
	if code == 0 {
		state = ports.ChargeStateSucceeded
	}
	return ports.ChargeStatus{State: state, ResultCode: resp.ResultCode, ResultDesc: resp.ResultDesc}, nil
}

// Password is base64(shortcode + passkey + timestamp).
func (c *Client) credentials() (string, string) {
	timestamp := c.clock.Now().In(c.cfg.Location).Format(timestampLayout)
	raw := c.cfg.ShortCode + c.cfg.PassKey + timestamp
	return timestamp, base64.StdEncoding.EncodeToString([]byte(raw))
}

// call posts body to path with a bearer token. A non-2xx answer that carries the Daraja
// error document is returned as apiErr as well as err.
func (c *Client) call(ctx context.Context, path string, body, out any) (*errorResponse, error) {
	var apiErr *errorResponse
	_, err := c.breaker.Execute(func() (any, error) {
		token, err := c.accessToken(ctx)
		if err != nil {
			return nil, err
		}

		payload, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
		if err != nil {
			return nil, err
		}

		if resp.StatusCode/100 != 2 {
			var e errorResponse
			if json.Unmarshal(raw, &e) == nil && e.ErrorCode != "" {
				apiErr = &e
				if e.ErrorCode == processingErrorCode {
					// an unanswered prompt is not a gateway failure
					return nil, nil
				}
				return nil, fmt.Errorf("%w: %s %s: %s", ErrBadResponse, resp.Status, e.ErrorCode, e.ErrorMessage)
			}
			return nil, fmt.Errorf("%w: %s", ErrBadResponse, resp.Status)
		}
		if err = json.Unmarshal(raw, out); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadResponse, err)
		}
		return nil, nil
	})
	return apiErr, err
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   string `json:"expires_in"`
}

// accessToken returns the cached OAuth token, fetching a new one when it is about to expire.
func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	if c.token != "" && now.Before(c.tokenExpiry) {
		return c.token, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+tokenPath, nil)
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(c.cfg.ConsumerKey, c.cfg.ConsumerSecret)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("mpesa: fetch token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: token endpoint answered %s", ErrBadResponse, resp.Status)
	}
	var tr tokenResponse
	if err = json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&tr); err != nil {
		return "", fmt.Errorf("%w: decode token: %v", ErrBadResponse, err)
	}
	if tr.AccessToken == "" {
		return "", fmt.Errorf("%w: empty access token", ErrBadResponse)
	}

	c.token = tr.AccessToken
	c.tokenExpiry = now.Add(tokenLifetime)
	return c.token, nil
}

// State exposes the breaker state for health reporting.
func (c *Client) State() string {
	return c.breaker.State().String()
}
