// Package amadeus implements provider.BookingProvider on top of the Amadeus
// Self-Service flight APIs (offers search, offers pricing, flight orders).
package amadeus

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"flight-hold-service/internal/entity"
	"flight-hold-service/internal/provider"
)

const (
	DefaultBaseURL   = "https://test.api.amadeus.com"
	defaultCurrency  = "USD"
	defaultMaxOffers = 5
	maxBodyBytes     = 4 << 20
)

type Config struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	Timeout      time.Duration
	Currency     string
	MaxOffers    int
}

type Client struct {
	baseURL   string
	hc        *http.Client
	currency  string
	maxOffers int
}

var _ provider.BookingProvider = (*Client)(nil)

// New returns a client that authenticates with the OAuth2 client
// credentials grant. Tokens are fetched lazily and refreshed on expiry.
func New(cfg Config) *Client {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	cc := clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     base + "/v1/security/oauth2/token",
		AuthStyle:    oauth2.AuthStyleInParams,
	}
	tokenCtx := context.WithValue(context.Background(), oauth2.HTTPClient, &http.Client{Timeout: timeout})
	hc := cc.Client(tokenCtx)
	hc.Timeout = timeout

	c := &Client{
		baseURL:   base,
		hc:        hc,
		currency:  cfg.Currency,
		maxOffers: cfg.MaxOffers,
	}
	if c.currency == "" {
		c.currency = defaultCurrency
	}
	if c.maxOffers <= 0 {
		c.maxOffers = defaultMaxOffers
	}
	return c
}

type dataEnvelope[T any] struct {
	Data T `json:"data"`
}

func (c *Client) Search(ctx context.Context, q provider.SearchQuery) ([]entity.Offer, error) {
	params := url.Values{}
	params.Set("originLocationCode", q.Origin)
	params.Set("destinationLocationCode", q.Destination)
	params.Set("departureDate", q.DepartureDate)
	params.Set("adults", strconv.Itoa(q.Passengers))
	params.Set("travelClass", string(q.Cabin))
	params.Set("currencyCode", c.currency)
	params.Set("max", strconv.Itoa(c.maxOffers))

	status, body, err := c.do(ctx, http.MethodGet, "/v2/shopping/flight-offers?"+params.Encode(), nil)
	if err != nil {
		return nil, classifyTransport("search", err)
	}
	if status != http.StatusOK {
		return nil, classifyStatus("search", status, body)
	}

	var resp dataEnvelope[[]json.RawMessage]
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &provider.FatalError{Op: "search", Err: fmt.Errorf("decode response: %w", err)}
	}
	offers := make([]entity.Offer, 0, len(resp.Data))
	for _, o := range resp.Data {
		offers = append(offers, entity.Offer(o))
	}
	return offers, nil
}

type pricingData struct {
	Type         string            `json:"type"`
	FlightOffers []json.RawMessage `json:"flightOffers"`
}

func (c *Client) Price(ctx context.Context, offer entity.Offer) (entity.Offer, error) {
	reqBody := dataEnvelope[pricingData]{Data: pricingData{
		Type:         "flight-offers-pricing",
		FlightOffers: []json.RawMessage{json.RawMessage(offer)},
	}}

	status, body, err := c.do(ctx, http.MethodPost, "/v1/shopping/flight-offers/pricing", reqBody)
	if err != nil {
		return nil, classifyTransport("price", err)
	}
	if status != http.StatusOK {
		return nil, classifyStatus("price", status, body)
	}

	var resp dataEnvelope[pricingData]
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &provider.FatalError{Op: "price", Err: fmt.Errorf("decode response: %w", err)}
	}
	if len(resp.Data.FlightOffers) == 0 {
		return nil, &provider.FatalError{Op: "price", Payload: body, Err: errors.New("pricing returned no flight offers")}
	}
	return entity.Offer(resp.Data.FlightOffers[0]), nil
}

type remark struct {
	SubType string `json:"subType"`
	Text    string `json:"text"`
}

type remarks struct {
	General []remark `json:"general"`
}

type ticketingAgreement struct {
	Option string `json:"option"`
	Delay  string `json:"delay"`
}

type flightOrder struct {
	Type               string             `json:"type"`
	FlightOffers       []json.RawMessage  `json:"flightOffers"`
	Travelers          json.RawMessage    `json:"travelers"`
	Remarks            *remarks           `json:"remarks,omitempty"`
	TicketingAgreement ticketingAgreement `json:"ticketingAgreement"`
	Contacts           json.RawMessage    `json:"contacts"`
}

// Hold creates a flight order with delayed ticketing, which is how Amadeus
// expresses a provisional hold. Booking rejections (4xx other than auth and
// rate limiting) come back as HoldResponse.Error rather than as an error.
func (c *Client) Hold(ctx context.Context, priced entity.Offer, profile provider.TravelerProfile) (provider.HoldResponse, error) {
	order := flightOrder{
		Type:         "flight-order",
		FlightOffers: []json.RawMessage{json.RawMessage(priced)},
		Travelers:    profile.Travelers,
		Contacts:     profile.Contacts,
		TicketingAgreement: ticketingAgreement{
			Option: "DELAY_TO_CANCEL",
			Delay:  profile.TicketingDelay,
		},
	}
	if len(profile.Remarks) > 0 {
		order.Remarks = &remarks{}
		for _, text := range profile.Remarks {
			order.Remarks.General = append(order.Remarks.General, remark{SubType: "GENERAL_MISCELLANEOUS", Text: text})
		}
	}

	status, body, err := c.do(ctx, http.MethodPost, "/v1/booking/flight-orders", dataEnvelope[flightOrder]{Data: order})
	if err != nil {
		return provider.HoldResponse{}, classifyTransport("hold", err)
	}

	switch {
	case status == http.StatusOK || status == http.StatusCreated:
		var resp dataEnvelope[json.RawMessage]
		if err := json.Unmarshal(body, &resp); err != nil || len(resp.Data) == 0 {
			return provider.HoldResponse{}, &provider.FatalError{Op: "hold", Payload: body, Err: errors.New("flight order response has no data")}
		}
		return provider.HoldResponse{Details: resp.Data}, nil
	case isRetryableStatus(status), status == http.StatusUnauthorized, status == http.StatusForbidden:
		return provider.HoldResponse{}, classifyStatus("hold", status, body)
	default:
		return provider.HoldResponse{Error: errorBody(status, body)}, nil
	}
}

func (c *Client) do(ctx context.Context, method, path string, in any) (int, []byte, error) {
	var reader io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return 0, nil, err
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Accept", "application/vnd.amadeus+json, application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/vnd.amadeus+json")
	}

	res, err := c.hc.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer res.Body.Close()

	b, err := io.ReadAll(io.LimitReader(res.Body, maxBodyBytes))
	if err != nil {
		return res.StatusCode, nil, err
	}
	return res.StatusCode, b, nil
}
