// Package pushover is a small client for the Pushover message API.
package pushover

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const DefaultBaseURL = "https://api.pushover.net/1"

// Priorities accepted by the API.
const (
	PriorityNormal    = 0
	PriorityHigh      = 1
	PriorityEmergency = 2
)

type Client struct {
	Token   string
	User    string
	BaseURL string
	HTTP    *http.Client
}

func NewClient(token, user string) *Client {
	return &Client{
		Token:   token,
		User:    user,
		BaseURL: DefaultBaseURL,
		HTTP:    &http.Client{Timeout: 10 * time.Second},
	}
}

type Message struct {
	Title    string
	Message  string
	Priority int
	Sound    string
	// Retry and Expire are required for emergency priority.
	Retry  time.Duration
	Expire time.Duration
}

// Receipt is the acknowledgement state of an emergency message.
type Receipt struct {
	Acknowledged bool
	Expired      bool
}

type apiResponse struct {
	Status       int      `json:"status"`
	Receipt      string   `json:"receipt"`
	Errors       []string `json:"errors"`
	Acknowledged int      `json:"acknowledged"`
	Expired      int      `json:"expired"`
}

// SendMessage posts m and returns the receipt id, which is only set for
// emergency priority.
func (c *Client) SendMessage(ctx context.Context, m Message) (string, error) {
	params := url.Values{}
	params.Set("token", c.Token)
	params.Set("user", c.User)
	params.Set("title", m.Title)
	params.Set("message", m.Message)
	params.Set("html", "1")
	if m.Priority != PriorityNormal {
		params.Set("priority", strconv.Itoa(m.Priority))
	}
	if m.Sound != "" {
		params.Set("sound", m.Sound)
	}
	if m.Priority == PriorityEmergency {
		params.Set("retry", strconv.Itoa(int(m.Retry.Seconds())))
		params.Set("expire", strconv.Itoa(int(m.Expire.Seconds())))
	}

	resp, err := c.do(ctx, http.MethodPost, "/messages.json", params)
	if err != nil {
		return "", err
	}
	return resp.Receipt, nil
}

// CancelReceipt stops the retries of an emergency message.
func (c *Client) CancelReceipt(ctx context.Context, receipt string) error {
	params := url.Values{}
	params.Set("token", c.Token)
	_, err := c.do(ctx, http.MethodPost, "/receipts/"+url.PathEscape(receipt)+"/cancel.json", params)
	return err
}

// Receipt polls the acknowledgement state of an emergency message.
func (c *Client) Receipt(ctx context.Context, receipt string) (Receipt, error) {
	params := url.Values{}
	params.Set("token", c.Token)
	resp, err := c.do(ctx, http.MethodGet, "/receipts/"+url.PathEscape(receipt)+".json", params)
	if err != nil {
		return Receipt{}, err
	}
	return Receipt{Acknowledged: resp.Acknowledged == 1, Expired: resp.Expired == 1}, nil
}

func (c *Client) do(ctx context.Context, method, path string, params url.Values) (*apiResponse, error) {
	endpoint := strings.TrimRight(c.BaseURL, "/") + path

	var body io.Reader
	if method == http.MethodGet {
		endpoint += "?" + params.Encode()
	} else {
		body = strings.NewReader(params.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	httpClient := c.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("pushover api error: status %s, body %s", resp.Status, string(raw))
	}

	var out apiResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to decode pushover response: %w", err)
	}
	if out.Status != 1 {
		return nil, fmt.Errorf("pushover api error: %s", strings.Join(out.Errors, "; "))
	}
	return &out, nil
}
