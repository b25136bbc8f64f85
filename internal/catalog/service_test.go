package catalog

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcs-software/rcs-crm/internal/clients"
)

// ============================================================================
// MOCKS
// ============================================================================

type mockCatalogRepo struct {
	products  map[int64]Product
	softwares map[int64]Software
	tariffs   map[int64][]TariffLine

	productHits  []SearchResult
	softwareHits []SearchResult

	lastTerm         string
	lastFamilies     []ItemType
	softwareSearched bool
}

func newMockCatalogRepo() *mockCatalogRepo {
	return &mockCatalogRepo{
		products:  make(map[int64]Product),
		softwares: make(map[int64]Software),
		tariffs:   make(map[int64][]TariffLine),
	}
}

func (m *mockCatalogRepo) GetProduct(ctx context.Context, id int64) (Product, error) {
	p, ok := m.products[id]
	if !ok {
		return Product{}, ErrProductNotFound
	}
	return p, nil
}

func (m *mockCatalogRepo) GetSoftware(ctx context.Context, id int64) (Software, error) {
	s, ok := m.softwares[id]
	if !ok {
		return Software{}, ErrSoftwareNotFound
	}
	return s, nil
}

func (m *mockCatalogRepo) ListTariffLines(ctx context.Context, softwareID int64) ([]TariffLine, error) {
	return m.tariffs[softwareID], nil
}

func (m *mockCatalogRepo) SearchProducts(ctx context.Context, term string, families []ItemType) ([]SearchResult, error) {
	m.lastTerm = term
	m.lastFamilies = families
	return m.productHits, nil
}

func (m *mockCatalogRepo) SearchSoftwares(ctx context.Context, term string) ([]SearchResult, error) {
	m.softwareSearched = true
	return m.softwareHits, nil
}

type mockAudienceRepo struct {
	clients   map[int64]clients.Client
	audiences map[int64]int64
}

func (m *mockAudienceRepo) Get(ctx context.Context, id int64) (clients.Client, error) {
	c, ok := m.clients[id]
	if !ok {
		return clients.Client{}, clients.ErrNotFound
	}
	return c, nil
}

func (m *mockAudienceRepo) LatestAudience(ctx context.Context, clientID int64) (int64, error) {
	return m.audiences[clientID], nil
}

func newCatalogTestService() (*Service, *mockCatalogRepo, *mockAudienceRepo) {
	repo := newMockCatalogRepo()
	repo.softwares[10] = Software{ID: 10, Reference: "WINRADIO", Name: "Winradio", Active: true}
	repo.tariffs[10] = []TariffLine{
		{ID: 101, SoftwareID: 10, Name: "Grille A", AudienceMin: i64(0), AudienceMax: i64(999), MonthlyPrice: 100, Active: true},
		{ID: 102, SoftwareID: 10, Name: "Grille B", AudienceMin: i64(1000), MonthlyPrice: 250, Active: true},
	}
	repo.products[1] = Product{ID: 1, Reference: "MAT-01", Name: "Carte son", Family: ItemTypeMateriel, UnitPrice: 350, Active: true}
	repo.products[2] = Product{ID: 2, Reference: "FOR-01", Name: "Formation studio", Family: ItemTypeFormation, DailyRate: 800, Active: true}
	repo.products[3] = Product{ID: 3, Reference: "PRE-01", Name: "Installation", Family: ItemTypePrestation, DailyRate: 600, Active: true}

	clientRepo := &mockAudienceRepo{
		clients: map[int64]clients.Client{
			1: {ID: 1, Name: "Radio Horizon", Country: "FR"},
			2: {ID: 2, Name: "Radio Capitale", Country: "FR"},
		},
		audiences: map[int64]int64{1: 500, 2: 5000},
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(logger, repo, clientRepo, nil), repo, clientRepo
}

// ============================================================================
// LOOKUP
// ============================================================================

func TestLookupSoftware(t *testing.T) {
	svc, _, _ := newCatalogTestService()
	ctx := context.Background()

	tpl, err := svc.Lookup(ctx, 1, 10, ItemTypeLogiciel)
	require.NoError(t, err)
	assert.Equal(t, 100.0, tpl.UnitPriceHT, "audience 500 prices on grid A")
	assert.Equal(t, UnitMonth, tpl.UnitOfMeasure)
	assert.Equal(t, SourceTariffGrid, tpl.SourceType)
	require.NotNil(t, tpl.ProductID)
	assert.Equal(t, int64(101), *tpl.ProductID, "template references the tariff line")

	tpl, err = svc.Lookup(ctx, 2, 10, ItemTypeLogiciel)
	require.NoError(t, err)
	assert.Equal(t, 250.0, tpl.UnitPriceHT, "audience 5000 prices on grid B")
}

func TestLookupSoftwareNoAudienceHistory(t *testing.T) {
	svc, _, clientRepo := newCatalogTestService()
	clientRepo.clients[3] = clients.Client{ID: 3, Name: "Nouvelle Radio"}

	// Clients without audience figures price at audience 0.
	tpl, err := svc.Lookup(context.Background(), 3, 10, ItemTypeLogiciel)
	require.NoError(t, err)
	assert.Equal(t, 100.0, tpl.UnitPriceHT)
}

func TestLookupSoftwareInactive(t *testing.T) {
	svc, repo, _ := newCatalogTestService()
	repo.softwares[11] = Software{ID: 11, Name: "Ancienne suite"}

	_, err := svc.Lookup(context.Background(), 1, 11, ItemTypeLogiciel)
	assert.ErrorIs(t, err, ErrSoftwareNotFound)
}

func TestLookupMateriel(t *testing.T) {
	svc, _, _ := newCatalogTestService()

	tpl, err := svc.Lookup(context.Background(), 1, 1, ItemTypeMateriel)
	require.NoError(t, err)
	assert.Equal(t, 350.0, tpl.UnitPriceHT)
	assert.Equal(t, UnitPiece, tpl.UnitOfMeasure)
	assert.Equal(t, SourceProduct, tpl.SourceType)
	assert.Equal(t, "Carte son", tpl.Description)
}

func TestLookupDailyRateFamilies(t *testing.T) {
	svc, _, _ := newCatalogTestService()
	ctx := context.Background()

	tpl, err := svc.Lookup(ctx, 1, 2, ItemTypeFormation)
	require.NoError(t, err)
	assert.Equal(t, 800.0, tpl.UnitPriceHT)
	assert.Equal(t, UnitDay, tpl.UnitOfMeasure)

	tpl, err = svc.Lookup(ctx, 1, 3, ItemTypePrestation)
	require.NoError(t, err)
	assert.Equal(t, 600.0, tpl.UnitPriceHT)
	assert.Equal(t, UnitDay, tpl.UnitOfMeasure)
}

func TestLookupFamilyMismatch(t *testing.T) {
	svc, _, _ := newCatalogTestService()

	// Product 2 is a FORMATION, asking for it as hardware must not leak it.
	_, err := svc.Lookup(context.Background(), 1, 2, ItemTypeMateriel)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestLookupInactiveProduct(t *testing.T) {
	svc, repo, _ := newCatalogTestService()
	repo.products[4] = Product{ID: 4, Name: "Retiré", Family: ItemTypeMateriel, UnitPrice: 10}

	_, err := svc.Lookup(context.Background(), 1, 4, ItemTypeMateriel)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestLookupUnknownItemType(t *testing.T) {
	svc, _, _ := newCatalogTestService()

	_, err := svc.Lookup(context.Background(), 1, 1, "ABONNEMENT")
	assert.ErrorIs(t, err, ErrUnknownItemType)
}

// ============================================================================
// ADD-ON PRICING
// ============================================================================

func TestLookupAddonFixedAmount(t *testing.T) {
	svc, repo, _ := newCatalogTestService()
	repo.products[5] = Product{
		ID: 5, Name: "Option streaming", Family: ItemTypeAddon,
		AddonRule: AddonRuleFixedAmount, AddonValue: 25, Active: true,
	}

	tpl, err := svc.Lookup(context.Background(), 1, 5, ItemTypeAddon)
	require.NoError(t, err)
	assert.Equal(t, 25.0, tpl.UnitPriceHT)
	assert.Equal(t, UnitMonth, tpl.UnitOfMeasure)
}

func TestLookupAddonPercentageOfSoftware(t *testing.T) {
	svc, repo, _ := newCatalogTestService()
	repo.products[6] = Product{
		ID: 6, Name: "Module planning", Family: ItemTypeAddon,
		AddonRule: AddonRulePercentage, AddonValue: 10,
		BasisSoftwareID: i64(10), Active: true,
	}

	// Audience 500 resolves the basis to grid A at 100.00, so 10% is 10.00.
	tpl, err := svc.Lookup(context.Background(), 1, 6, ItemTypeAddon)
	require.NoError(t, err)
	assert.Equal(t, 10.0, tpl.UnitPriceHT)

	// The same add-on prices differently for a large station.
	tpl, err = svc.Lookup(context.Background(), 2, 6, ItemTypeAddon)
	require.NoError(t, err)
	assert.Equal(t, 25.0, tpl.UnitPriceHT)
}

func TestLookupAddonPercentageOfService(t *testing.T) {
	svc, repo, _ := newCatalogTestService()
	repo.products[7] = Product{
		ID: 7, Name: "Suivi installation", Family: ItemTypeAddon,
		AddonRule: AddonRulePercentage, AddonValue: 50,
		BasisServiceID: i64(3), Active: true,
	}

	tpl, err := svc.Lookup(context.Background(), 1, 7, ItemTypeAddon)
	require.NoError(t, err)
	assert.Equal(t, 300.0, tpl.UnitPriceHT, "50% of the 600.00 daily rate")
}

// An add-on whose basis tariff cannot be resolved prices at zero instead of
// failing the whole lookup.
func TestLookupAddonUnresolvedBasis(t *testing.T) {
	svc, repo, _ := newCatalogTestService()
	repo.tariffs[12] = nil
	repo.softwares[12] = Software{ID: 12, Name: "Sans grille", Active: true}
	repo.products[8] = Product{
		ID: 8, Name: "Option orpheline", Family: ItemTypeAddon,
		AddonRule: AddonRulePercentage, AddonValue: 10,
		BasisSoftwareID: i64(12), Active: true,
	}

	tpl, err := svc.Lookup(context.Background(), 1, 8, ItemTypeAddon)
	require.NoError(t, err)
	assert.Equal(t, 0.0, tpl.UnitPriceHT)
}

// ============================================================================
// SEARCH
// ============================================================================

func TestSearchUnknownQuoteType(t *testing.T) {
	svc, _, _ := newCatalogTestService()

	_, err := svc.Search(context.Background(), "radio", "FACTURATION")
	assert.Error(t, err)
}

func TestSearchLicencesQuote(t *testing.T) {
	svc, repo, _ := newCatalogTestService()
	repo.productHits = []SearchResult{{ID: 2, Name: "Formation studio", ProductType: ItemTypeFormation, SourceType: SourceProduct}}
	repo.softwareHits = []SearchResult{{ID: 10, Name: "Winradio", ProductType: ItemTypeLogiciel, SourceType: SourceTariffGrid}}

	results, err := svc.Search(context.Background(), "win", QuoteTypeLicences)
	require.NoError(t, err)
	assert.Len(t, results, 2)
	assert.True(t, repo.softwareSearched)
	assert.NotContains(t, repo.lastFamilies, ItemTypeMateriel, "hardware is excluded from subscription quotes")
	assert.NotContains(t, repo.lastFamilies, ItemTypeLogiciel, "software hits come from the software search")
	assert.Contains(t, repo.lastFamilies, ItemTypeAddon)
}

func TestSearchMaterielQuote(t *testing.T) {
	svc, repo, _ := newCatalogTestService()
	repo.productHits = []SearchResult{{ID: 1, Name: "Carte son", ProductType: ItemTypeMateriel, SourceType: SourceProduct}}

	results, err := svc.Search(context.Background(), "carte", QuoteTypeMateriel)
	require.NoError(t, err)
	assert.Len(t, results, 1)
	assert.False(t, repo.softwareSearched, "no software tariffs on hardware quotes")
	assert.ElementsMatch(t, []ItemType{ItemTypeMateriel, ItemTypeFormation, ItemTypePrestation}, repo.lastFamilies)
}
