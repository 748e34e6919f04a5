package amadeus_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flight-hold-service/internal/entity"
	"flight-hold-service/internal/provider"
	"flight-hold-service/internal/provider/amadeus"
)

type fakeAmadeus struct {
	tokenCalls atomic.Int32
	mux        *http.ServeMux
}

func newFakeAmadeus(t *testing.T) (*fakeAmadeus, *httptest.Server) {
	t.Helper()
	f := &fakeAmadeus{mux: http.NewServeMux()}
	f.mux.HandleFunc("/v1/security/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		f.tokenCalls.Add(1)
		require.NoError(t, r.ParseForm())
		if r.PostForm.Get("client_secret") != "secret" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"invalid_client"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok-1","token_type":"Bearer","expires_in":1799}`))
	})
	srv := httptest.NewServer(f.mux)
	t.Cleanup(srv.Close)
	return f, srv
}

func newClient(srv *httptest.Server, secret string) *amadeus.Client {
	return amadeus.New(amadeus.Config{
		BaseURL:      srv.URL,
		ClientID:     "id",
		ClientSecret: secret,
		Timeout:      2 * time.Second,
	})
}

func query() provider.SearchQuery {
	return provider.SearchQuery{
		Origin:        "JFK",
		Destination:   "LHR",
		DepartureDate: "2025-06-01",
		Passengers:    1,
		Cabin:         entity.CabinEconomy,
	}
}

func TestSearch_SendsQueryAndBearerToken(t *testing.T) {
	f, srv := newFakeAmadeus(t)
	f.mux.HandleFunc("/v2/shopping/flight-offers", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		q := r.URL.Query()
		assert.Equal(t, "JFK", q.Get("originLocationCode"))
		assert.Equal(t, "LHR", q.Get("destinationLocationCode"))
		assert.Equal(t, "2025-06-01", q.Get("departureDate"))
		assert.Equal(t, "1", q.Get("adults"))
		assert.Equal(t, "ECONOMY", q.Get("travelClass"))
		assert.Equal(t, "USD", q.Get("currencyCode"))
		assert.Equal(t, "5", q.Get("max"))
		_, _ = w.Write([]byte(`{"data":[{"id":"1"},{"id":"2"}]}`))
	})

	c := newClient(srv, "secret")
	offers, err := c.Search(context.Background(), query())
	require.NoError(t, err)
	require.Len(t, offers, 2)
	assert.JSONEq(t, `{"id":"1"}`, string(offers[0]))

	_, err = c.Search(context.Background(), query())
	require.NoError(t, err)
	assert.Equal(t, int32(1), f.tokenCalls.Load(), "token should be reused")
}

func TestSearch_EmptyResult(t *testing.T) {
	f, srv := newFakeAmadeus(t)
	f.mux.HandleFunc("/v2/shopping/flight-offers", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":[]}`))
	})

	offers, err := newClient(srv, "secret").Search(context.Background(), query())
	require.NoError(t, err)
	assert.Empty(t, offers)
}

func TestSearch_ClassifiesStatus(t *testing.T) {
	tests := []struct {
		status    int
		transient bool
	}{
		{http.StatusTooManyRequests, true},
		{http.StatusInternalServerError, true},
		{http.StatusBadGateway, true},
		{http.StatusBadRequest, false},
		{http.StatusNotFound, false},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			f, srv := newFakeAmadeus(t)
			f.mux.HandleFunc("/v2/shopping/flight-offers", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"errors":[{"code":1}]}`))
			})

			_, err := newClient(srv, "secret").Search(context.Background(), query())
			require.Error(t, err)
			assert.Equal(t, !tt.transient, provider.IsFatal(err))
			assert.JSONEq(t, `{"errors":[{"code":1}]}`, string(provider.Payload(err)))
		})
	}
}

func TestSearch_BadCredentialsAreFatal(t *testing.T) {
	_, srv := newFakeAmadeus(t)

	_, err := newClient(srv, "wrong").Search(context.Background(), query())
	require.Error(t, err)
	assert.True(t, provider.IsFatal(err))
}

func TestPrice_ReturnsFirstPricedOffer(t *testing.T) {
	f, srv := newFakeAmadeus(t)
	f.mux.HandleFunc("/v1/shopping/flight-offers/pricing", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var body struct {
			Data struct {
				Type         string            `json:"type"`
				FlightOffers []json.RawMessage `json:"flightOffers"`
			} `json:"data"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "flight-offers-pricing", body.Data.Type)
		require.Len(t, body.Data.FlightOffers, 1)
		assert.JSONEq(t, `{"id":"1"}`, string(body.Data.FlightOffers[0]))

		_, _ = w.Write([]byte(`{"data":{"type":"flight-offers-pricing","flightOffers":[{"id":"1","priced":true}]}}`))
	})

	priced, err := newClient(srv, "secret").Price(context.Background(), entity.Offer(`{"id":"1"}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"1","priced":true}`, string(priced))
}

func TestHold_SendsProfileAndTicketingAgreement(t *testing.T) {
	f, srv := newFakeAmadeus(t)
	f.mux.HandleFunc("/v1/booking/flight-orders", func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		var body struct {
			Data struct {
				Type               string            `json:"type"`
				FlightOffers       []json.RawMessage `json:"flightOffers"`
				Travelers          json.RawMessage   `json:"travelers"`
				Contacts           json.RawMessage   `json:"contacts"`
				TicketingAgreement struct {
					Option string `json:"option"`
					Delay  string `json:"delay"`
				} `json:"ticketingAgreement"`
				Remarks struct {
					General []struct {
						SubType string `json:"subType"`
						Text    string `json:"text"`
					} `json:"general"`
				} `json:"remarks"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(raw, &body))
		assert.Equal(t, "flight-order", body.Data.Type)
		assert.JSONEq(t, `[{"id":"1","name":{}}]`, string(body.Data.Travelers))
		assert.JSONEq(t, `[{"purpose":"STANDARD"}]`, string(body.Data.Contacts))
		assert.Equal(t, "DELAY_TO_CANCEL", body.Data.TicketingAgreement.Option)
		assert.Equal(t, "6D", body.Data.TicketingAgreement.Delay)
		require.Len(t, body.Data.Remarks.General, 1)
		assert.Equal(t, "GENERAL_MISCELLANEOUS", body.Data.Remarks.General[0].SubType)

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"type":"flight-order","id":"ORDER-1"}}`))
	})

	profile := provider.TravelerProfile{
		Travelers:      json.RawMessage(`[{"id":"1","name":{}}]`),
		Contacts:       json.RawMessage(`[{"purpose":"STANDARD"}]`),
		Remarks:        []string{"ONLINE BOOKING"},
		TicketingDelay: "6D",
	}
	resp, err := newClient(srv, "secret").Hold(context.Background(), entity.Offer(`{"id":"1"}`), profile)
	require.NoError(t, err)
	assert.False(t, resp.Failed())
	assert.JSONEq(t, `{"type":"flight-order","id":"ORDER-1"}`, string(resp.Details))
}

func TestHold_BookingRejectionIsErrorIndicator(t *testing.T) {
	f, srv := newFakeAmadeus(t)
	f.mux.HandleFunc("/v1/booking/flight-orders", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"errors":[{"code":34651,"title":"SEGMENT SELL FAILURE"}]}`))
	})

	resp, err := newClient(srv, "secret").Hold(context.Background(), entity.Offer(`{"id":"1"}`), provider.TravelerProfile{})
	require.NoError(t, err)
	assert.True(t, resp.Failed())
	assert.JSONEq(t, `{"errors":[{"code":34651,"title":"SEGMENT SELL FAILURE"}]}`, string(resp.Error))
}

func TestHold_RateLimitedIsTransient(t *testing.T) {
	f, srv := newFakeAmadeus(t)
	f.mux.HandleFunc("/v1/booking/flight-orders", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := newClient(srv, "secret").Hold(context.Background(), entity.Offer(`{"id":"1"}`), provider.TravelerProfile{})
	require.Error(t, err)
	assert.False(t, provider.IsFatal(err))

	var te *provider.TransientError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, "hold", te.Op)
}
