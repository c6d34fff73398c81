// Package engine talks to the external wallet engine: a JSON HTTP API for
// one-shot queries and commands, and a streaming event source (websocket or
// NATS) consumed by the daemon.
//
// The engine owns all payment semantics. This package only moves typed
// requests and responses; it never interprets them.
package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client is the wallet engine HTTP API client.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient builds a client for the engine at baseURL. The token, when set,
// is sent as an Authorization bearer header on every request.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// apiError is the engine's structured error body.
type apiError struct {
	Error string `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("engine request %s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr apiError
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error != "" {
			return fmt.Errorf("engine %s %s: %s", method, path, apiErr.Error)
		}
		return fmt.Errorf("engine %s %s: unexpected status %d", method, path, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Balance returns the wallet balance.
func (c *Client) Balance(ctx context.Context) (*Balance, error) {
	var out Balance
	if err := c.do(ctx, http.MethodGet, "/v1/balance", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Receive generates a single-use BIP21 receive URI, optionally for a fixed
// amount in satoshis.
func (c *Client) Receive(ctx context.Context, amountSats *uint64) (*ReceiveURI, error) {
	in := map[string]any{}
	if amountSats != nil {
		in["amount_sats"] = *amountSats
	}
	var out ReceiveURI
	if err := c.do(ctx, http.MethodPost, "/v1/receive", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ReceiveOffer returns the wallet's reusable BOLT12 offer.
func (c *Client) ReceiveOffer(ctx context.Context) (string, error) {
	var out struct {
		Offer string `json:"offer"`
	}
	if err := c.do(ctx, http.MethodGet, "/v1/receive/offer", nil, &out); err != nil {
		return "", err
	}
	return out.Offer, nil
}

// Send initiates a payment. The payment string may be a lightning invoice,
// on-chain address, BOLT12 offer or BIP21 URI; the amount is required for
// addresses and amountless offers.
func (c *Client) Send(ctx context.Context, payment string, amountSats *uint64) (*SendResult, error) {
	in := map[string]any{"payment": payment}
	if amountSats != nil {
		in["amount_sats"] = *amountSats
	}
	var out SendResult
	if err := c.do(ctx, http.MethodPost, "/v1/payments", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Parse asks the engine to interpret a payment string.
func (c *Client) Parse(ctx context.Context, payment string) (*ParseResult, error) {
	var out ParseResult
	if err := c.do(ctx, http.MethodPost, "/v1/parse", map[string]any{"payment": payment}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Transactions lists the wallet's payment history.
func (c *Client) Transactions(ctx context.Context) ([]Transaction, error) {
	var out struct {
		Transactions []Transaction `json:"transactions"`
	}
	if err := c.do(ctx, http.MethodGet, "/v1/transactions", nil, &out); err != nil {
		return nil, err
	}
	return out.Transactions, nil
}

// Channels lists the wallet's lightning channels.
func (c *Client) Channels(ctx context.Context) ([]Channel, error) {
	var out struct {
		Channels []Channel `json:"channels"`
	}
	if err := c.do(ctx, http.MethodGet, "/v1/channels", nil, &out); err != nil {
		return nil, err
	}
	return out.Channels, nil
}

// Info returns node identity, connectivity and tunables.
func (c *Client) Info(ctx context.Context) (*NodeInfo, error) {
	var out NodeInfo
	if err := c.do(ctx, http.MethodGet, "/v1/info", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// EstimateFee estimates the fee for a payment string.
func (c *Client) EstimateFee(ctx context.Context, payment string) (*FeeEstimate, error) {
	var out FeeEstimate
	if err := c.do(ctx, http.MethodPost, "/v1/estimate-fee", map[string]any{"payment": payment}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// LightningAddress returns the wallet's registered lightning address.
func (c *Client) LightningAddress(ctx context.Context) (string, error) {
	var out struct {
		LightningAddress string `json:"lightning_address"`
	}
	if err := c.do(ctx, http.MethodGet, "/v1/lightning-address", nil, &out); err != nil {
		return "", err
	}
	return out.LightningAddress, nil
}

// RegisterLightningAddress registers a lightning address username and
// returns the resulting address.
func (c *Client) RegisterLightningAddress(ctx context.Context, name string) (string, error) {
	var out struct {
		LightningAddress string `json:"lightning_address"`
	}
	if err := c.do(ctx, http.MethodPost, "/v1/lightning-address", map[string]any{"name": name}, &out); err != nil {
		return "", err
	}
	return out.LightningAddress, nil
}
