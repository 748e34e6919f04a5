package provider

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// TravelerProfile holds the traveler and contact details attached to every
// hold. The core passes them through without interpreting them.
type TravelerProfile struct {
	Travelers      json.RawMessage `json:"travelers"`
	Contacts       json.RawMessage `json:"contacts"`
	Remarks        []string        `json:"remarks,omitempty"`
	TicketingDelay string          `json:"ticketing_delay,omitempty"`
}

const profileSchema = `{
  "type": "object",
  "required": ["travelers", "contacts"],
  "properties": {
    "travelers": {
      "type": "array",
      "minItems": 1,
      "items": {"type": "object", "required": ["id", "name"]}
    },
    "contacts": {"type": "array", "items": {"type": "object"}},
    "remarks": {"type": "array", "items": {"type": "string"}},
    "ticketing_delay": {"type": "string", "pattern": "^[0-9]+D$"}
  }
}`

var compiledProfileSchema = jsonschema.MustCompileString("traveler_profile.json", profileSchema)

// ParseProfile validates data against the profile schema and decodes it.
func ParseProfile(data []byte) (TravelerProfile, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return TravelerProfile{}, fmt.Errorf("unmarshal profile: %w", err)
	}
	if err := compiledProfileSchema.Validate(v); err != nil {
		return TravelerProfile{}, fmt.Errorf("profile does not match schema: %w", err)
	}

	var p TravelerProfile
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&p); err != nil {
		return TravelerProfile{}, fmt.Errorf("decode profile: %w", err)
	}
	if p.TicketingDelay == "" {
		p.TicketingDelay = "6D"
	}
	return p, nil
}

func LoadProfile(path string) (TravelerProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return TravelerProfile{}, fmt.Errorf("read profile: %w", err)
	}
	return ParseProfile(data)
}
