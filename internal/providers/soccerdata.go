package providers

import (
	"context"
	"fmt"
	"net/url"
)

const soccerDataBaseURL = "https://api.soccerdataapi.com"

// SoccerDataClient wraps SoccerDataAPI, used only to enrich match details
// with live events. Auth is the auth_token query parameter.
type SoccerDataClient struct {
	client  *Client
	baseURL string
}

func NewSoccerDataClient(token string, opts ClientOptions) *SoccerDataClient {
	if token != "" {
		if opts.Query == nil {
			opts.Query = url.Values{}
		}
		opts.Query.Set("auth_token", token)
	}
	return &SoccerDataClient{
		client:  NewClient("soccerdata", opts),
		baseURL: soccerDataBaseURL,
	}
}

func (s *SoccerDataClient) SetBaseURL(base string) { s.baseURL = base }

type sdMatchResponse struct {
	ID     int64  `json:"id"`
	Status string `json:"status"`
	Minute string `json:"minute"`
	Events []struct {
		EventType string `json:"event_type"`
		Minute    string `json:"event_minute"`
		Team      string `json:"team"`
		Player    struct {
			Name string `json:"name"`
		} `json:"player"`
	} `json:"events"`
}

// MatchEvent is one live event attached to a match-details enrichment.
type MatchEvent struct {
	Type   string `json:"type"`
	Minute string `json:"minute"`
	Team   string `json:"team"`
	Player string `json:"player,omitempty"`
}

// LiveMatch is the enrichment payload for one match.
type LiveMatch struct {
	Status string       `json:"status"`
	Minute string       `json:"minute,omitempty"`
	Events []MatchEvent `json:"events"`
}

// LiveDetails fetches live status and events for a match.
func (s *SoccerDataClient) LiveDetails(ctx context.Context, matchID int64) (*LiveMatch, error) {
	u := fmt.Sprintf("%s/match/?match_id=%d", s.baseURL, matchID)
	var resp sdMatchResponse
	if err := s.client.GetJSON(ctx, u, &resp); err != nil {
		return nil, err
	}
	live := &LiveMatch{
		Status: resp.Status,
		Minute: resp.Minute,
		Events: make([]MatchEvent, 0, len(resp.Events)),
	}
	for _, e := range resp.Events {
		live.Events = append(live.Events, MatchEvent{
			Type:   e.EventType,
			Minute: e.Minute,
			Team:   e.Team,
			Player: e.Player.Name,
		})
	}
	return live, nil
}
