package quotes

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/text/language"

	"github.com/rcs-software/rcs-crm/internal/clients"
)

// PDFRenderer turns a fully computed quote into a PDF document. Rendering is
// a downstream collaborator of the pricing core; the core never computes
// anything during rendering.
type PDFRenderer interface {
	RenderQuote(ctx context.Context, q Quote, client clients.Client, lang language.Tag) ([]byte, error)
}

var pdfLanguages = language.NewMatcher([]language.Tag{
	language.French,
	language.English,
})

// RenderPDF loads the quote and hands it to the configured renderer. lang is
// matched against the supported document languages, defaulting to French.
func (s *Service) RenderPDF(ctx context.Context, id int64, lang string) ([]byte, error) {
	if s.renderer == nil {
		return nil, errors.New("pdf renderer not configured")
	}

	quote, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get quote: %w", err)
	}
	client, err := s.clients.Get(ctx, quote.ClientID)
	if err != nil {
		return nil, fmt.Errorf("get client: %w", err)
	}

	tag, _ := language.MatchStrings(pdfLanguages, lang)

	renderRef := uuid.NewSHA1(uuid.Nil, []byte(fmt.Sprintf("QUOTE:%d:%s", quote.ID, tag)))
	s.logger.Info("rendering quote pdf",
		slog.String("quote_number", quote.QuoteNumber),
		slog.String("lang", tag.String()),
		slog.String("render_ref", renderRef.String()),
	)

	return s.renderer.RenderQuote(ctx, *quote, client, tag)
}
