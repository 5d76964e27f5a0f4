// Package wikipedia looks up short company descriptions and lead images.
package wikipedia

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNoArticle is returned when no usable article matches a title.
var ErrNoArticle = errors.New("wikipedia: no article")

type SummaryService struct {
	client *Client
}

func NewSummaryService(client *Client) *SummaryService {
	return &SummaryService{client: client}
}

// Summary returns the article summary for title. Missing and disambiguation
// pages yield ErrNoArticle.
func (s *SummaryService) Summary(ctx context.Context, title string) (Summary, error) {
	resp, err := s.client.FetchPageSummary(ctx, title)
	if err != nil {
		return Summary{}, err
	}
	for _, page := range resp.Query.Pages {
		if page.Missing || strings.TrimSpace(page.Extract) == "" {
			continue
		}
		if page.PageProps != nil && page.PageProps.Disambiguation != nil {
			continue
		}
		sum := Summary{Title: page.Title, Extract: strings.TrimSpace(page.Extract)}
		if page.Original != nil {
			sum.ImageURL = page.Original.Source
		}
		return sum, nil
	}
	return Summary{}, fmt.Errorf("%q: %w", title, ErrNoArticle)
}
