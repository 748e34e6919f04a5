// Package provider defines the contract between the job executor and an
// external booking provider.
package provider

import (
	"context"
	"encoding/json"

	"flight-hold-service/internal/entity"
)

type SearchQuery struct {
	Origin        string
	Destination   string
	DepartureDate string
	Passengers    int
	Cabin         entity.CabinClass
}

func QueryFromRequest(r entity.JobRequest) SearchQuery {
	return SearchQuery{
		Origin:        r.FromLocation,
		Destination:   r.ToLocation,
		DepartureDate: r.DepartureDate,
		Passengers:    r.NumPassengers,
		Cabin:         r.SeatClass,
	}
}

// HoldResponse is either a confirmed hold (Details) or a provider-reported
// booking error (Error). A non-empty Error is the error indicator.
type HoldResponse struct {
	Details json.RawMessage
	Error   json.RawMessage
}

func (r HoldResponse) Failed() bool {
	return len(r.Error) > 0
}

//go:generate mockgen -source=provider.go -destination=../mocks/mock_provider.go -package=mocks

// BookingProvider searches, prices and holds flight offers.
// Errors should be *TransientError or *FatalError; anything else is
// treated as transient.
type BookingProvider interface {
	Search(ctx context.Context, q SearchQuery) ([]entity.Offer, error)
	Price(ctx context.Context, offer entity.Offer) (entity.Offer, error)
	Hold(ctx context.Context, priced entity.Offer, profile TravelerProfile) (HoldResponse, error)
}
