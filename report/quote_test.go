package report

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/rcs-software/rcs-crm/internal/catalog"
	"github.com/rcs-software/rcs-crm/internal/clients"
	"github.com/rcs-software/rcs-crm/internal/quotes"
)

// fakeGotenberg answers the convert endpoint and captures the submitted HTML.
func fakeGotenberg(t *testing.T) (*Client, *string) {
	t.Helper()
	var captured string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/forms/chromium/convert/html", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1 << 20))
		file, _, err := r.FormFile("files")
		require.NoError(t, err)
		defer file.Close()
		html, err := io.ReadAll(file)
		require.NoError(t, err)
		captured = string(html)
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.4 fake"))
	}))
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 5*time.Second), &captured
}

func sampleQuote() quotes.Quote {
	return quotes.Quote{
		ID:                    1,
		QuoteNumber:           "RCS-260829-1",
		Subject:               "Licences 2027",
		Status:                quotes.StatusDraft,
		EmissionDate:          time.Date(2026, time.August, 29, 0, 0, 0, 0, time.UTC),
		ValidityDate:          time.Date(2026, time.September, 28, 0, 0, 0, 0, time.UTC),
		TotalHTBeforeDiscount: 180.00,
		DiscountAmount:        9.00,
		TotalHTAfterDiscount:  171.00,
		TotalTVA:              34.20,
		TotalTTC:              205.20,
		TotalMensuelHT:        50.00,
		GlobalDiscountPercent: 5,
		Sections: []quotes.Section{
			{
				Title:   "Logiciels",
				TitleEN: "Software",
				Items: []quotes.Item{
					{
						Description:   "Winradio mensuel",
						DescriptionEN: "Winradio monthly",
						Quantity:      1,
						UnitOfMeasure: catalog.UnitMonth,
						UnitPriceHT:   50,
					},
					{
						Description:   "Formation studio",
						Quantity:      2,
						UnitOfMeasure: catalog.UnitDay,
						UnitPriceHT:   800,
					},
				},
			},
		},
	}
}

func TestRenderQuoteFrench(t *testing.T) {
	client, captured := fakeGotenberg(t)
	renderer := NewQuoteRenderer(client)

	pdf, err := renderer.RenderQuote(context.Background(), sampleQuote(), clients.Client{Name: "Radio Horizon"}, language.French)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 fake", string(pdf))

	assert.Contains(t, *captured, "Devis RCS-260829-1")
	assert.Contains(t, *captured, "Radio Horizon")
	assert.Contains(t, *captured, "Logiciels")
	assert.Contains(t, *captured, "Winradio mensuel")
	assert.Contains(t, *captured, "205.20")
	assert.Contains(t, *captured, "50.00 / mois")
}

func TestRenderQuoteEnglish(t *testing.T) {
	client, captured := fakeGotenberg(t)
	renderer := NewQuoteRenderer(client)

	_, err := renderer.RenderQuote(context.Background(), sampleQuote(), clients.Client{Name: "Radio Horizon"}, language.English)
	require.NoError(t, err)

	assert.Contains(t, *captured, "Quote RCS-260829-1")
	assert.Contains(t, *captured, "Software", "section titles use the English variant")
	assert.Contains(t, *captured, "Winradio monthly")
	assert.Contains(t, *captured, "Formation studio", "items without a translation fall back to French")
	assert.Contains(t, *captured, "Total incl. VAT")
}

func TestRenderQuoteUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)
	renderer := NewQuoteRenderer(NewClient(srv.URL, 5*time.Second))

	_, err := renderer.RenderQuote(context.Background(), sampleQuote(), clients.Client{}, language.French)
	assert.Error(t, err)
}

func TestPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/health", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	assert.NoError(t, NewClient(srv.URL, time.Second).Ping(context.Background()))
}

func TestNewClientTimeoutDefault(t *testing.T) {
	assert.Equal(t, defaultTimeout, NewClient("http://gotenberg:3000", 0).httpClient.Timeout)
	assert.Equal(t, 10*time.Second, NewClient("http://gotenberg:3000", 10*time.Second).httpClient.Timeout)
}
