package provider

import (
	"context"
	"fmt"
	"sort"

	"crypto-insight/internal/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const notAvailable = "N/A"

// CoinPaprikaProvider serves project team data.
type CoinPaprikaProvider struct {
	restClient
}

func NewCoinPaprikaProvider(tracer trace.Tracer, baseURL string) *CoinPaprikaProvider {
	return &CoinPaprikaProvider{restClient: newRESTClient(tracer, Endpoint{
		Name:    "coinpaprika",
		BaseURL: baseURL,
		Auth:    AuthNone,
		Paths: map[domain.Operation]string{
			domain.OpTeam: "/coins/{id}",
		},
	})}
}

// FetchTeam returns team members, description and links for symbol.
func (p *CoinPaprikaProvider) FetchTeam(ctx context.Context, symbol string) (*domain.TeamData, error) {
	ctx, span := p.tracer.Start(ctx, "coinpaprika.fetch-team")
	defer span.End()
	span.SetAttributes(attribute.String("symbol", symbol))

	asset, _ := domain.LookupAsset(symbol)
	var raw struct {
		ID          string `json:"id"`
		Description string `json:"description"`
		Team        []struct {
			Name     string `json:"name"`
			Position string `json:"position"`
		} `json:"team"`
		Links         map[string][]string `json:"links"`
		LinksExtended []struct {
			URL  string `json:"url"`
			Type string `json:"type"`
		} `json:"links_extended"`
	}
	if err := p.getJSON(ctx, domain.OpTeam, map[string]string{"id": asset.CoinPaprikaID}, &raw); err != nil {
		return nil, fmt.Errorf("fetch team for %s: %w", symbol, err)
	}

	team := &domain.TeamData{
		Members:     make([]domain.TeamMember, 0, len(raw.Team)),
		Description: raw.Description,
		Website:     firstNonEmpty(raw.Links["website"]...),
		SocialLinks: map[string]string{},
		Source:      "coinpaprika",
	}
	for _, m := range raw.Team {
		if m.Name == "" {
			continue
		}
		team.Members = append(team.Members, domain.TeamMember{Name: m.Name, Position: m.Position})
	}
	if team.Website == "" {
		team.Website = notAvailable
	}

	for _, l := range raw.LinksExtended {
		if l.Type == "" || l.Type == "website" || l.URL == "" {
			continue
		}
		if _, ok := team.SocialLinks[l.Type]; !ok {
			team.SocialLinks[l.Type] = l.URL
		}
	}
	kinds := make([]string, 0, len(raw.Links))
	for kind := range raw.Links {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	for _, kind := range kinds {
		if kind == "website" {
			continue
		}
		if _, ok := team.SocialLinks[kind]; ok {
			continue
		}
		if u := firstNonEmpty(raw.Links[kind]...); u != "" {
			team.SocialLinks[kind] = u
		}
	}

	if team.IsEmpty() {
		return nil, nil
	}
	return team, nil
}
