package provider_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flight-hold-service/internal/provider"
)

const sampleProfile = `{
  "travelers": [{"id": "1", "name": {"firstName": "JORGE", "lastName": "GONZALES"}}],
  "contacts": [{"purpose": "STANDARD"}],
  "remarks": ["ONLINE BOOKING"]
}`

func TestParseProfile_DefaultsTicketingDelay(t *testing.T) {
	p, err := provider.ParseProfile([]byte(sampleProfile))
	require.NoError(t, err)

	assert.Equal(t, "6D", p.TicketingDelay)
	assert.Equal(t, []string{"ONLINE BOOKING"}, p.Remarks)
	assert.JSONEq(t, `[{"id": "1", "name": {"firstName": "JORGE", "lastName": "GONZALES"}}]`, string(p.Travelers))
}

func TestParseProfile_RejectsSchemaViolations(t *testing.T) {
	cases := map[string]string{
		"no travelers":     `{"travelers": [], "contacts": []}`,
		"traveler no name": `{"travelers": [{"id": "1"}], "contacts": []}`,
		"missing contacts": `{"travelers": [{"id": "1", "name": {}}]}`,
		"bad delay":        `{"travelers": [{"id": "1", "name": {}}], "contacts": [], "ticketing_delay": "six days"}`,
		"not even json":    `{`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := provider.ParseProfile([]byte(body))
			require.Error(t, err)
		})
	}
}

func TestLoadProfile_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleProfile), 0o600))

	p, err := provider.LoadProfile(path)
	require.NoError(t, err)
	assert.NotEmpty(t, p.Contacts)

	_, err = provider.LoadProfile(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}
