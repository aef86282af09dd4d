package providers

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/parlaylab/sports-mcp/internal/models"
	"github.com/parlaylab/sports-mcp/internal/normalize"
)

const footballDataBaseURL = "https://api.football-data.org/v4"

// FootballDataClient wraps the Football-Data.org v4 API. Auth is the
// X-Auth-Token header, injected by the underlying Client.
type FootballDataClient struct {
	client  *Client
	baseURL string
}

func NewFootballDataClient(apiKey string, opts ClientOptions) *FootballDataClient {
	if opts.Headers == nil {
		opts.Headers = map[string]string{}
	}
	if apiKey != "" {
		opts.Headers["X-Auth-Token"] = apiKey
	}
	return &FootballDataClient{
		client:  NewClient("football-data", opts),
		baseURL: footballDataBaseURL,
	}
}

func (f *FootballDataClient) SetBaseURL(base string) { f.baseURL = base }

type fdCompetitionsResponse struct {
	Competitions []struct {
		ID   int64  `json:"id"`
		Code string `json:"code"`
		Name string `json:"name"`
		Area struct {
			Name string `json:"name"`
		} `json:"area"`
		CurrentSeason struct {
			StartDate string `json:"startDate"`
			EndDate   string `json:"endDate"`
		} `json:"currentSeason"`
	} `json:"competitions"`
}

type fdMatch struct {
	ID       int64  `json:"id"`
	UTCDate  string `json:"utcDate"`
	Status   string `json:"status"`
	Matchday int    `json:"matchday"`
	HomeTeam struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	} `json:"homeTeam"`
	AwayTeam struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	} `json:"awayTeam"`
	Venue string `json:"venue"`
	Score struct {
		FullTime struct {
			Home *int64 `json:"home"`
			Away *int64 `json:"away"`
		} `json:"fullTime"`
		HalfTime struct {
			Home *int64 `json:"home"`
			Away *int64 `json:"away"`
		} `json:"halfTime"`
	} `json:"score"`
}

type fdMatchesResponse struct {
	Matches []fdMatch `json:"matches"`
}

type fdStandingsResponse struct {
	Standings []struct {
		Type  string `json:"type"`
		Table []struct {
			Position int `json:"position"`
			Team     struct {
				ID        int64  `json:"id"`
				Name      string `json:"name"`
				ShortName string `json:"shortName"`
				TLA       string `json:"tla"`
			} `json:"team"`
			PlayedGames    int64 `json:"playedGames"`
			Won            int64 `json:"won"`
			Draw           int64 `json:"draw"`
			Lost           int64 `json:"lost"`
			Points         int64 `json:"points"`
			GoalsFor       int64 `json:"goalsFor"`
			GoalsAgainst   int64 `json:"goalsAgainst"`
			GoalDifference int64 `json:"goalDifference"`
		} `json:"table"`
	} `json:"standings"`
}

type fdTeamsResponse struct {
	Teams []struct {
		ID        int64  `json:"id"`
		Name      string `json:"name"`
		ShortName string `json:"shortName"`
		TLA       string `json:"tla"`
		Venue     string `json:"venue"`
	} `json:"teams"`
}

type fdScorersResponse struct {
	Scorers []struct {
		Player struct {
			ID   int64  `json:"id"`
			Name string `json:"name"`
		} `json:"player"`
		Team struct {
			Name string `json:"name"`
		} `json:"team"`
		Goals         *int64 `json:"goals"`
		Assists       *int64 `json:"assists"`
		Penalties     *int64 `json:"penalties"`
		PlayedMatches *int64 `json:"playedMatches"`
	} `json:"scorers"`
}

// MatchFilter narrows a matches query. Zero values are omitted from the
// request.
type MatchFilter struct {
	DateFrom string
	DateTo   string
	Matchday int
	Status   string
	Season   string
}

func (mf MatchFilter) encode() string {
	q := url.Values{}
	if mf.DateFrom != "" {
		q.Set("dateFrom", mf.DateFrom)
	}
	if mf.DateTo != "" {
		q.Set("dateTo", mf.DateTo)
	}
	if mf.Matchday > 0 {
		q.Set("matchday", strconv.Itoa(mf.Matchday))
	}
	if mf.Status != "" {
		q.Set("status", mf.Status)
	}
	if mf.Season != "" {
		q.Set("season", mf.Season)
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

// Competitions lists the competitions visible to the configured plan.
func (f *FootballDataClient) Competitions(ctx context.Context) ([]models.Competition, error) {
	var resp fdCompetitionsResponse
	if err := f.client.GetJSON(ctx, f.baseURL+"/competitions", &resp); err != nil {
		return nil, err
	}
	out := make([]models.Competition, 0, len(resp.Competitions))
	for _, c := range resp.Competitions {
		comp := models.Competition{
			ID:   c.ID,
			Code: c.Code,
			Name: c.Name,
			Area: c.Area.Name,
		}
		if c.CurrentSeason.StartDate != "" {
			comp.CurrentSeason = fmt.Sprintf("%s/%s", c.CurrentSeason.StartDate, c.CurrentSeason.EndDate)
		}
		out = append(out, comp)
	}
	return out, nil
}

// CompetitionMatches returns a competition's matches under a filter.
func (f *FootballDataClient) CompetitionMatches(ctx context.Context, competitionID int64, filter MatchFilter) ([]models.Game, error) {
	u := fmt.Sprintf("%s/competitions/%d/matches%s", f.baseURL, competitionID, filter.encode())
	return f.fetchMatches(ctx, u)
}

// TeamMatches returns one team's matches under a filter.
func (f *FootballDataClient) TeamMatches(ctx context.Context, teamID int64, filter MatchFilter) ([]models.Game, error) {
	u := fmt.Sprintf("%s/teams/%d/matches%s", f.baseURL, teamID, filter.encode())
	return f.fetchMatches(ctx, u)
}

func (f *FootballDataClient) fetchMatches(ctx context.Context, u string) ([]models.Game, error) {
	var resp fdMatchesResponse
	if err := f.client.GetJSON(ctx, u, &resp); err != nil {
		return nil, err
	}
	games := make([]models.Game, 0, len(resp.Matches))
	for _, m := range resp.Matches {
		if g, ok := reshapeFDMatch(m); ok {
			games = append(games, g)
		}
	}
	return games, nil
}

// Match returns one match by id.
func (f *FootballDataClient) Match(ctx context.Context, matchID int64) (*models.Game, error) {
	var m fdMatch
	if err := f.client.GetJSON(ctx, fmt.Sprintf("%s/matches/%d", f.baseURL, matchID), &m); err != nil {
		return nil, err
	}
	g, ok := reshapeFDMatch(m)
	if !ok {
		return nil, &models.NormalizationError{Field: "utcDate"}
	}
	return &g, nil
}

func reshapeFDMatch(m fdMatch) (models.Game, bool) {
	start, ok := normalize.ParseInstant(m.UTCDate)
	if !ok {
		return models.Game{}, false
	}
	g := models.Game{
		ID:        fmt.Sprintf("%d", m.ID),
		DateET:    normalize.DateET(start),
		StartET:   normalize.InstantET(start),
		Status:    m.Status,
		Matchday:  m.Matchday,
		Venue:     m.Venue,
		Home:      models.TeamRef{ID: m.HomeTeam.ID, Name: m.HomeTeam.Name},
		Away:      models.TeamRef{ID: m.AwayTeam.ID, Name: m.AwayTeam.Name},
		StartTime: start,
		HasStart:  true,
	}
	if m.Score.FullTime.Home != nil || m.Score.FullTime.Away != nil {
		g.ScoreFull = &models.Score{Home: m.Score.FullTime.Home, Away: m.Score.FullTime.Away}
	}
	if m.Score.HalfTime.Home != nil || m.Score.HalfTime.Away != nil {
		g.ScoreHalf = &models.Score{Home: m.Score.HalfTime.Home, Away: m.Score.HalfTime.Away}
	}
	return g, true
}

// Standings returns the TOTAL standings table in provider position order.
func (f *FootballDataClient) Standings(ctx context.Context, competitionID int64, season string) ([]models.TeamStanding, error) {
	u := fmt.Sprintf("%s/competitions/%d/standings", f.baseURL, competitionID)
	if season != "" {
		u += "?season=" + url.QueryEscape(season)
	}
	var resp fdStandingsResponse
	if err := f.client.GetJSON(ctx, u, &resp); err != nil {
		return nil, err
	}
	for _, s := range resp.Standings {
		if s.Type != "TOTAL" && len(resp.Standings) > 1 {
			continue
		}
		rows := make([]models.TeamStanding, 0, len(s.Table))
		for _, row := range s.Table {
			rows = append(rows, models.TeamStanding{
				Position: row.Position,
				Team: models.Team{
					ID:           row.Team.ID,
					Name:         row.Team.Name,
					ShortName:    row.Team.ShortName,
					Abbreviation: row.Team.TLA,
				},
				PlayedGames:    row.PlayedGames,
				Won:            row.Won,
				Draw:           row.Draw,
				Lost:           row.Lost,
				Points:         row.Points,
				GoalsFor:       row.GoalsFor,
				GoalsAgainst:   row.GoalsAgainst,
				GoalDifference: row.GoalDifference,
			})
		}
		return rows, nil
	}
	return []models.TeamStanding{}, nil
}

// Teams lists a competition's teams.
func (f *FootballDataClient) Teams(ctx context.Context, competitionID int64, season string) ([]models.Team, error) {
	u := fmt.Sprintf("%s/competitions/%d/teams", f.baseURL, competitionID)
	if season != "" {
		u += "?season=" + url.QueryEscape(season)
	}
	var resp fdTeamsResponse
	if err := f.client.GetJSON(ctx, u, &resp); err != nil {
		return nil, err
	}
	teams := make([]models.Team, 0, len(resp.Teams))
	for _, t := range resp.Teams {
		teams = append(teams, models.Team{
			ID:           t.ID,
			Name:         t.Name,
			ShortName:    t.ShortName,
			Abbreviation: t.TLA,
			Venue:        t.Venue,
		})
	}
	return teams, nil
}

// TopScorers returns a competition's scorer table. Missing counts are zero.
func (f *FootballDataClient) TopScorers(ctx context.Context, competitionID int64, limit int, season string) ([]models.Scorer, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	if season != "" {
		q.Set("season", season)
	}
	u := fmt.Sprintf("%s/competitions/%d/scorers?%s", f.baseURL, competitionID, q.Encode())
	var resp fdScorersResponse
	if err := f.client.GetJSON(ctx, u, &resp); err != nil {
		return nil, err
	}
	scorers := make([]models.Scorer, 0, len(resp.Scorers))
	for _, s := range resp.Scorers {
		scorers = append(scorers, models.Scorer{
			PlayerID:      s.Player.ID,
			PlayerName:    s.Player.Name,
			TeamName:      s.Team.Name,
			Goals:         zeroIfNil(s.Goals),
			Assists:       zeroIfNil(s.Assists),
			Penalties:     zeroIfNil(s.Penalties),
			PlayedMatches: zeroIfNil(s.PlayedMatches),
		})
	}
	return scorers, nil
}

func zeroIfNil(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}
