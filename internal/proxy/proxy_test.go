package proxy

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================
// Dispatch Tests
// ============================================

func TestDispatcher_UnknownTarget(t *testing.T) {
	d := NewDispatcher("http://quotes.invalid", "http://weather.invalid", "key")

	env := d.Dispatch(context.Background(), Request{Name: "stocks"})

	assert.False(t, env.OK)
	assert.Contains(t, env.Error, "stocks")
	assert.Nil(t, env.Data)
}

func TestDispatcher_Quotes(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"content":"Stay hungry.","author":"Someone"}`))
	}))
	defer upstream.Close()

	d := NewDispatcher(upstream.URL, "http://weather.invalid", "key")

	env := d.Dispatch(context.Background(), Request{Name: "quotes"})

	require.True(t, env.OK)
	quote, ok := env.Data.(Quote)
	require.True(t, ok)
	assert.Equal(t, "Stay hungry.", quote.Text)
	assert.Equal(t, "Someone", quote.Author)
}

func TestDispatcher_Quotes_UpstreamErrorStaysInEnvelope(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer upstream.Close()

	d := NewDispatcher(upstream.URL, "http://weather.invalid", "key")

	env := d.Dispatch(context.Background(), Request{Name: "quotes"})

	assert.False(t, env.OK)
	assert.Contains(t, env.Error, "500")
}

func TestDispatcher_Quotes_MalformedPayload(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer upstream.Close()

	d := NewDispatcher(upstream.URL, "http://weather.invalid", "key")

	env := d.Dispatch(context.Background(), Request{Name: "quotes"})

	assert.False(t, env.OK)
	assert.NotEmpty(t, env.Error)
}

func TestDispatcher_Weather(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Lisbon", r.URL.Query().Get("q"))
		assert.Equal(t, "secret-key", r.URL.Query().Get("appid"))
		assert.Equal(t, "metric", r.URL.Query().Get("units"))
		w.Write([]byte(`{"name":"Lisbon","main":{"temp":21.5},"weather":[{"description":"clear sky"}]}`))
	}))
	defer upstream.Close()

	d := NewDispatcher("http://quotes.invalid", upstream.URL, "secret-key")

	env := d.Dispatch(context.Background(), Request{
		Name:   "weather",
		Params: map[string]string{"city": "Lisbon"},
	})

	require.True(t, env.OK)
	weather, ok := env.Data.(Weather)
	require.True(t, ok)
	assert.Equal(t, "Lisbon", weather.City)
	assert.Equal(t, 21.5, weather.TempC)
	assert.Equal(t, "clear sky", weather.Description)
}

func TestDispatcher_Weather_CityRequired(t *testing.T) {
	d := NewDispatcher("http://quotes.invalid", "http://weather.invalid", "key")

	env := d.Dispatch(context.Background(), Request{Name: "weather"})

	assert.False(t, env.OK)
	assert.Contains(t, env.Error, "city")
}

func TestDispatcher_Weather_NoConditionsArray(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"name":"Lisbon","main":{"temp":18.0},"weather":[]}`))
	}))
	defer upstream.Close()

	d := NewDispatcher("http://quotes.invalid", upstream.URL, "key")

	env := d.Dispatch(context.Background(), Request{
		Name:   "weather",
		Params: map[string]string{"city": "Lisbon"},
	})

	require.True(t, env.OK)
	weather := env.Data.(Weather)
	assert.Empty(t, weather.Description)
}

func TestDispatcher_UnreachableUpstream(t *testing.T) {
	// Closed server, connection refused
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	upstream.Close()

	d := NewDispatcher(upstream.URL, "http://weather.invalid", "key")

	env := d.Dispatch(context.Background(), Request{Name: "quotes"})

	assert.False(t, env.OK)
	assert.Contains(t, env.Error, "upstream request failed")
}
