// Package proxy dispatches whitelisted third-party REST calls on behalf of
// the clients. Every outcome, including an upstream failure, is wrapped in
// an {ok, data|error} envelope returned with HTTP 200, so transport status
// codes carry no application meaning on this path.
package proxy

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const upstreamTimeout = 10 * time.Second

// Envelope is the fixed response shape.
type Envelope struct {
	OK    bool   `json:"ok"`
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

// Request names a whitelisted upstream and its parameters.
type Request struct {
	Name   string            `json:"name"`
	Params map[string]string `json:"params"`
}

// Quote is the reshaped quotes response.
type Quote struct {
	Text   string `json:"text"`
	Author string `json:"author"`
}

// Weather is the reshaped weather response.
type Weather struct {
	City        string  `json:"city"`
	TempC       float64 `json:"temp_c"`
	Description string  `json:"description"`
}

// Dispatcher resolves names against the whitelist and reshapes upstream
// payloads into the fixed output schemas.
type Dispatcher struct {
	quotesURL  string
	weatherURL string
	weatherKey string
	client     *http.Client
}

func NewDispatcher(quotesURL, weatherURL, weatherKey string) *Dispatcher {
	return &Dispatcher{
		quotesURL:  quotesURL,
		weatherURL: weatherURL,
		weatherKey: weatherKey,
		client:     &http.Client{Timeout: upstreamTimeout},
	}
}

// Dispatch runs one request. The error branch of the envelope is used for
// unknown names, upstream HTTP failures and malformed upstream payloads;
// Dispatch itself never returns an error.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) Envelope {
	switch req.Name {
	case "quotes":
		return d.quotes(ctx)
	case "weather":
		return d.weather(ctx, req.Params["city"])
	default:
		return Envelope{OK: false, Error: fmt.Sprintf("unknown proxy target %q", req.Name)}
	}
}

func (d *Dispatcher) quotes(ctx context.Context) Envelope {
	var upstream struct {
		Content string `json:"content"`
		Author  string `json:"author"`
	}
	if err := d.fetch(ctx, d.quotesURL, &upstream); err != nil {
		return Envelope{OK: false, Error: err.Error()}
	}
	return Envelope{OK: true, Data: Quote{Text: upstream.Content, Author: upstream.Author}}
}

func (d *Dispatcher) weather(ctx context.Context, city string) Envelope {
	if city == "" {
		return Envelope{OK: false, Error: "city parameter is required"}
	}

	u := fmt.Sprintf("%s?q=%s&appid=%s&units=metric", d.weatherURL, url.QueryEscape(city), url.QueryEscape(d.weatherKey))
	var upstream struct {
		Name string `json:"name"`
		Main struct {
			Temp float64 `json:"temp"`
		} `json:"main"`
		Weather []struct {
			Description string `json:"description"`
		} `json:"weather"`
	}
	if err := d.fetch(ctx, u, &upstream); err != nil {
		return Envelope{OK: false, Error: err.Error()}
	}

	w := Weather{City: upstream.Name, TempC: upstream.Main.Temp}
	if len(upstream.Weather) > 0 {
		w.Description = upstream.Weather[0].Description
	}
	return Envelope{OK: true, Data: w}
}

func (d *Dispatcher) fetch(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("upstream request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("upstream returned %d", resp.StatusCode)
	}
	return json.Unmarshal(body, out)
}
