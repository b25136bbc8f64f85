package taxes

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcs-software/rcs-crm/internal/clients"
)

type mockTaxRepo struct {
	rates map[string]TaxRate
	err   error
}

func (m *mockTaxRepo) ActiveRate(ctx context.Context, countryCode string) (TaxRate, error) {
	if m.err != nil {
		return TaxRate{}, m.err
	}
	rate, ok := m.rates[countryCode]
	if !ok {
		return TaxRate{}, ErrNoActiveRate
	}
	return rate, nil
}

type mockClientRepo struct {
	clients map[int64]clients.Client
	err     error
}

func (m *mockClientRepo) Get(ctx context.Context, id int64) (clients.Client, error) {
	if m.err != nil {
		return clients.Client{}, m.err
	}
	c, ok := m.clients[id]
	if !ok {
		return clients.Client{}, clients.ErrNotFound
	}
	return c, nil
}

func (m *mockClientRepo) LatestAudience(ctx context.Context, clientID int64) (int64, error) {
	return 0, nil
}

func newTestResolver() (*Resolver, *mockTaxRepo, *mockClientRepo) {
	taxRepo := &mockTaxRepo{rates: map[string]TaxRate{
		"FR": {ID: 1, CountryCode: "FR", Rate: 20, Active: true},
		"BE": {ID: 2, CountryCode: "BE", Rate: 21, Active: true},
	}}
	clientRepo := &mockClientRepo{clients: map[int64]clients.Client{
		1: {ID: 1, Name: "Radio Horizon", Country: "FR"},
		2: {ID: 2, Name: "Radio Wallonie", Country: "BE"},
		3: {ID: 3, Name: "Radio Mystère"},
		4: {ID: 4, Name: "Radio Helvète", Country: "CH"},
	}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewResolver(logger, taxRepo, clientRepo), taxRepo, clientRepo
}

func TestForClientResolvesCountryRate(t *testing.T) {
	resolver, _, _ := newTestResolver()
	ctx := context.Background()

	rate, err := resolver.ForClient(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 20.0, rate)

	rate, err = resolver.ForClient(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 21.0, rate)
}

func TestForClientDefaultsWhenClientUnknown(t *testing.T) {
	resolver, _, _ := newTestResolver()

	rate, err := resolver.ForClient(context.Background(), 99)
	require.NoError(t, err)
	assert.Equal(t, DefaultVATRate, rate)
}

func TestForClientDefaultsWithoutCountry(t *testing.T) {
	resolver, _, _ := newTestResolver()

	rate, err := resolver.ForClient(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, DefaultVATRate, rate)
}

func TestForClientDefaultsWithoutActiveRate(t *testing.T) {
	resolver, _, _ := newTestResolver()

	rate, err := resolver.ForClient(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, DefaultVATRate, rate)
}

// Infrastructure failures surface instead of silently defaulting.
func TestForClientPropagatesInfraErrors(t *testing.T) {
	resolver, taxRepo, clientRepo := newTestResolver()
	ctx := context.Background()

	taxRepo.err = errors.New("pg down")
	_, err := resolver.ForClient(ctx, 1)
	assert.Error(t, err)

	taxRepo.err = nil
	clientRepo.err = errors.New("pg down")
	_, err = resolver.ForClient(ctx, 1)
	assert.Error(t, err)
}
