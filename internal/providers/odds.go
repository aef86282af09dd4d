package providers

import (
	"context"
	"fmt"
	"net/url"

	"github.com/parlaylab/sports-mcp/internal/models"
)

const oddsBaseURL = "https://api.the-odds-api.com/v4"

// OddsClient wraps The Odds API. Auth is the apiKey query parameter.
type OddsClient struct {
	client  *Client
	baseURL string
}

func NewOddsClient(apiKey string, opts ClientOptions) *OddsClient {
	if apiKey != "" {
		if opts.Query == nil {
			opts.Query = url.Values{}
		}
		opts.Query.Set("apiKey", apiKey)
	}
	return &OddsClient{
		client:  NewClient("odds-api", opts),
		baseURL: oddsBaseURL,
	}
}

func (o *OddsClient) SetBaseURL(base string) { o.baseURL = base }

type oddsAPIEvent struct {
	ID           string `json:"id"`
	SportKey     string `json:"sport_key"`
	CommenceTime string `json:"commence_time"`
	HomeTeam     string `json:"home_team"`
	AwayTeam     string `json:"away_team"`
	Bookmakers   []struct {
		Key        string `json:"key"`
		Title      string `json:"title"`
		LastUpdate string `json:"last_update"`
		Markets    []struct {
			Key        string `json:"key"`
			LastUpdate string `json:"last_update"`
			Outcomes   []struct {
				Name        string   `json:"name"`
				Price       float64  `json:"price"`
				Point       *float64 `json:"point"`
				Description string   `json:"description"`
			} `json:"outcomes"`
		} `json:"markets"`
	} `json:"bookmakers"`
}

// Odds fetches event-level odds for a sport. Pass-through shaping, no
// aggregation: commence_time keeps its raw UTC ISO form.
func (o *OddsClient) Odds(ctx context.Context, sport, markets, regions, oddsFormat string) ([]models.OddsEvent, error) {
	q := url.Values{}
	q.Set("markets", markets)
	q.Set("regions", regions)
	q.Set("oddsFormat", oddsFormat)
	u := fmt.Sprintf("%s/sports/%s/odds?%s", o.baseURL, url.PathEscape(sport), q.Encode())

	var resp []oddsAPIEvent
	if err := o.client.GetJSON(ctx, u, &resp); err != nil {
		return nil, err
	}
	events := make([]models.OddsEvent, 0, len(resp))
	for _, e := range resp {
		events = append(events, reshapeOddsEvent(e))
	}
	return events, nil
}

// EventOdds fetches the per-event endpoint, used for player-prop markets.
func (o *OddsClient) EventOdds(ctx context.Context, sport, eventID, markets, regions, oddsFormat string) (*models.OddsEvent, error) {
	q := url.Values{}
	q.Set("markets", markets)
	q.Set("regions", regions)
	q.Set("oddsFormat", oddsFormat)
	u := fmt.Sprintf("%s/sports/%s/events/%s/odds?%s",
		o.baseURL, url.PathEscape(sport), url.PathEscape(eventID), q.Encode())

	var resp oddsAPIEvent
	if err := o.client.GetJSON(ctx, u, &resp); err != nil {
		return nil, err
	}
	ev := reshapeOddsEvent(resp)
	return &ev, nil
}

func reshapeOddsEvent(e oddsAPIEvent) models.OddsEvent {
	ev := models.OddsEvent{
		EventID:      e.ID,
		SportKey:     e.SportKey,
		CommenceTime: e.CommenceTime,
		HomeTeam:     e.HomeTeam,
		AwayTeam:     e.AwayTeam,
		Bookmakers:   make([]models.Bookmaker, 0, len(e.Bookmakers)),
	}
	for _, b := range e.Bookmakers {
		bk := models.Bookmaker{
			Key:        b.Key,
			Title:      b.Title,
			LastUpdate: b.LastUpdate,
			Markets:    make([]models.Market, 0, len(b.Markets)),
		}
		for _, m := range b.Markets {
			mk := models.Market{
				Key:        m.Key,
				LastUpdate: m.LastUpdate,
				Outcomes:   make([]models.Outcome, 0, len(m.Outcomes)),
			}
			for _, out := range m.Outcomes {
				mk.Outcomes = append(mk.Outcomes, models.Outcome{
					Name:        out.Name,
					Price:       out.Price,
					Point:       out.Point,
					Description: out.Description,
				})
			}
			bk.Markets = append(bk.Markets, mk)
		}
		ev.Bookmakers = append(ev.Bookmakers, bk)
	}
	return ev
}
