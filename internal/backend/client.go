/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package backend talks to the optional production-office collaborators:
// an HTTP API receiving computed schedules and a shared Postgres store
// keeping their history. Both are strictly additive; the engine and the
// CLI work fully offline.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MylesManT/Producer-s-toolkit/internal/breakdown"
)

// Client is a minimal HTTP client for the production-office API.
type Client struct {
	BaseURL string
	Token   string // bearer token
	client  *http.Client
}

// NewClient creates a backend client. baseURL may carry a trailing
// slash; it is normalized away.
func NewClient(baseURL, token string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, dest any) error {
	u, err := url.Parse(c.BaseURL + path)
	if err != nil {
		return err
	}
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("server %s %s: %s", method, u.Path, resp.Status)
	}
	if dest == nil {
		return nil
	}
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	return dec.Decode(dest)
}

// Ping checks connectivity and authentication.
func (c *Client) Ping(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodGet, "/healthz", nil, nil)
}

// RemoteProduction is a minimal projection for listing.
type RemoteProduction struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ListProductions returns the productions known to the office.
func (c *Client) ListProductions(ctx context.Context) ([]RemoteProduction, error) {
	var list []RemoteProduction
	if err := c.doJSON(ctx, http.MethodGet, "/api/productions", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// SchedulePayload is the schedule push envelope. Rows are the fully
// rendered breakdown; receivers display, they do not recompute.
type SchedulePayload struct {
	ProductionID      uuid.UUID       `json:"production_id"`
	ProductionName    string          `json:"production_name"`
	GeneratedAt       time.Time       `json:"generated_at"`
	TotalSceneSeconds int             `json:"total_scene_seconds"`
	Wrap              string          `json:"wrap"`
	Rows              []breakdown.Row `json:"rows"`
}

// PushReceipt is the server acknowledgement for a schedule push.
type PushReceipt struct {
	ID         int64  `json:"id"`
	ReceivedAt string `json:"received_at"`
}

// PushSchedule uploads a computed schedule for the given production.
func (c *Client) PushSchedule(ctx context.Context, p SchedulePayload) (*PushReceipt, error) {
	var rc PushReceipt
	path := fmt.Sprintf("/api/productions/%s/schedule", p.ProductionID)
	if err := c.doJSON(ctx, http.MethodPost, path, p, &rc); err != nil {
		return nil, err
	}
	return &rc, nil
}
