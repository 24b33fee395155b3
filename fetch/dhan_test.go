package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dnldd/htfbot/shared"
	"github.com/peterldowns/testy/assert"
	"github.com/tidwall/gjson"
)

func setupDhanClient(t *testing.T, handler http.HandlerFunc) *DhanClient {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewDhanClient(&DhanConfig{
		ClientID:    "client",
		AccessToken: "token",
		BaseURL:     server.URL,
	})
	assert.NoError(t, err)

	return client
}

func TestNewDhanClientRequiresCredentials(t *testing.T) {
	_, err := NewDhanClient(&DhanConfig{ClientID: "client"})
	assert.Error(t, err)

	_, err = NewDhanClient(&DhanConfig{AccessToken: "token"})
	assert.Error(t, err)
}

func TestFetchIndexIntraday(t *testing.T) {
	var gotPath, gotToken, gotClient string
	client := setupDhanClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotToken = r.Header.Get("access-token")
		gotClient = r.Header.Get("client-id")
		w.Write([]byte(`{"open":[100],"high":[102],"low":[99],"close":[101],"volume":[10],"timestamp":[1000]}`))
	})

	start := time.Date(2025, 2, 4, 0, 0, 0, 0, time.UTC)
	data, err := client.FetchIndexIntraday(context.Background(), "NIFTY", shared.OneMinute, start, start.AddDate(0, 0, 1))
	assert.NoError(t, err)

	assert.Equal(t, gotPath, intradayPath)
	assert.Equal(t, gotToken, "token")
	assert.Equal(t, gotClient, "client")
	assert.Equal(t, data.Get("open.0").Float(), float64(100))
}

func TestFetchIndexIntradayUnknownInstrument(t *testing.T) {
	requested := false
	client := setupDhanClient(t, func(w http.ResponseWriter, r *http.Request) {
		requested = true
	})

	_, err := client.FetchIndexIntraday(context.Background(), "DOGE", shared.OneMinute, time.Now(), time.Now())
	assert.Error(t, err)
	assert.True(t, shared.IsErrKind(err, shared.UnknownInstrument))

	// Unknown instruments must fail fast, never reaching the network.
	assert.False(t, requested)
}

func TestFetchIndexIntradayProviderRejected(t *testing.T) {
	client := setupDhanClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`rate limited`))
	})

	_, err := client.FetchIndexIntraday(context.Background(), "NIFTY", shared.OneMinute, time.Now(), time.Now())
	assert.Error(t, err)
	assert.True(t, shared.IsErrKind(err, shared.ProviderRejected))
}

func TestFetchIndexIntradayProviderError(t *testing.T) {
	// A 2xx response can still carry a provider declared failure.
	client := setupDhanClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"failure","message":"invalid date range"}`))
	})

	_, err := client.FetchIndexIntraday(context.Background(), "NIFTY", shared.OneMinute, time.Now(), time.Now())
	assert.Error(t, err)
	assert.True(t, shared.IsErrKind(err, shared.ProviderError))
}

func TestFetchIndexIntradayTransportTimeout(t *testing.T) {
	client := setupDhanClient(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(time.Millisecond * 200)
	})
	client.httpc.Timeout = time.Millisecond * 50

	_, err := client.FetchIndexIntraday(context.Background(), "NIFTY", shared.OneMinute, time.Now(), time.Now())
	assert.Error(t, err)
	assert.True(t, shared.IsErrKind(err, shared.TransportTimeout))
}

func TestFetchQuote(t *testing.T) {
	client := setupDhanClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"IDX_I":{"13":{"last_price":24100.5}}}}`))
	})

	data, err := client.FetchQuote(context.Background(), "NIFTY")
	assert.NoError(t, err)

	instrument, err := shared.FindInstrument("NIFTY")
	assert.NoError(t, err)

	price, err := LastPrice(data, instrument)
	assert.NoError(t, err)
	assert.Equal(t, price, 24100.5)
}

func TestLastPriceMissing(t *testing.T) {
	instrument, err := shared.FindInstrument("NIFTY")
	assert.NoError(t, err)

	_, err = LastPrice(gjson.Parse(`{"data":{}}`), instrument)
	assert.Error(t, err)
	assert.True(t, shared.IsErrKind(err, shared.MalformedPayload))
}
