// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package webhook provides the transports that deliver submitted forms:
// a simulated one for demos and an HMAC-signed HTTP POST.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/olegiv/ocms-school/internal/submission"
	"github.com/olegiv/ocms-school/internal/util"
)

// Delivery configuration constants
const (
	RequestTimeout = 15 * time.Second // HTTP request timeout
	MaxResponseLen = 10 * 1024        // Maximum response body read (10KB)
	UserAgent      = "school-site/1.0"
)

// Headers set on every delivery.
const (
	HeaderSignature  = "X-Webhook-Signature"
	HeaderEvent      = "X-Webhook-Event"
	HeaderDeliveryID = "X-Webhook-Delivery-ID"
)

// httpClient is the shared HTTP client. Its dialer refuses private and
// reserved addresses, so the endpoint cannot be pointed at internal hosts.
var httpClient = &http.Client{
	Timeout: RequestTimeout,
	Transport: &http.Transport{
		DialContext:         util.SSRFSafeDialContext(&net.Dialer{Timeout: 10 * time.Second}),
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	},
}

// Deliverer posts form submissions to a configured endpoint. Each
// submission is attempted once; failures are reported to the caller.
type Deliverer struct {
	url    string
	secret string
	client *http.Client
	logger *slog.Logger
	now    func() time.Time
}

// NewDeliverer creates a Deliverer for url signing bodies with secret.
// A nil client uses a shared client with a request timeout.
func NewDeliverer(url, secret string, client *http.Client, logger *slog.Logger) *Deliverer {
	if client == nil {
		client = httpClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Deliverer{url: url, secret: secret, client: client, logger: logger, now: time.Now}
}

// For returns the submit function for the named form.
func (d *Deliverer) For(form string) submission.SubmitFunc {
	return func(ctx context.Context, payload map[string]string) (submission.Result, error) {
		return d.Submit(ctx, form, payload)
	}
}

// Submit sends one signed delivery. A non-2xx status or network error is
// returned as an error. A 2xx response may carry a JSON Result to reject
// the submission; an empty or non-JSON body counts as accepted.
func (d *Deliverer) Submit(ctx context.Context, form string, payload map[string]string) (submission.Result, error) {
	env := Envelope{
		Event:      FormEvent(form),
		DeliveryID: uuid.NewString(),
		Timestamp:  d.now().UTC(),
		Data:       payload,
	}
	body, err := json.Marshal(env)
	if err != nil {
		return submission.Result{}, fmt.Errorf("encoding payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.url, bytes.NewReader(body))
	if err != nil {
		return submission.Result{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set(HeaderSignature, GenerateSignature(body, d.secret))
	req.Header.Set(HeaderEvent, env.Event)
	req.Header.Set(HeaderDeliveryID, env.DeliveryID)

	resp, err := d.client.Do(req)
	if err != nil {
		return submission.Result{}, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, MaxResponseLen))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		d.logger.Warn("form delivery rejected by endpoint",
			"event", env.Event,
			"delivery_id", env.DeliveryID,
			"status_code", resp.StatusCode)
		return submission.Result{}, fmt.Errorf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	d.logger.Info("form delivered",
		"event", env.Event,
		"delivery_id", env.DeliveryID,
		"status_code", resp.StatusCode)

	var res submission.Result
	if len(bytes.TrimSpace(respBody)) == 0 || json.Unmarshal(respBody, &res) != nil {
		return submission.Result{OK: true}, nil
	}
	return res, nil
}
