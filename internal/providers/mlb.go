package providers

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/parlaylab/sports-mcp/internal/models"
	"github.com/parlaylab/sports-mcp/internal/normalize"
)

const mlbBaseURL = "https://statsapi.mlb.com/api/v1"

// MLBClient wraps the MLB Stats API. The API is unauthenticated.
type MLBClient struct {
	client  *Client
	baseURL string
}

func NewMLBClient(opts ClientOptions) *MLBClient {
	return &MLBClient{
		client:  NewClient("mlb-statsapi", opts),
		baseURL: mlbBaseURL,
	}
}

// SetBaseURL points the client at a different host. Tests use it to target
// an httptest server.
func (m *MLBClient) SetBaseURL(base string) { m.baseURL = base }

// Client exposes the underlying fetcher for test clock injection.
func (m *MLBClient) Client() *Client { return m.client }

// Upstream shapes. These structs exist only for decoding; everything leaving
// this file is an internal entity.

type mlbScheduleResponse struct {
	Dates []struct {
		Date  string    `json:"date"`
		Games []mlbGame `json:"games"`
	} `json:"dates"`
}

type mlbGame struct {
	GamePk       int64  `json:"gamePk"`
	GameDate     string `json:"gameDate"`
	DoubleHeader string `json:"doubleHeader"`
	Status       struct {
		DetailedState     string `json:"detailedState"`
		AbstractGameState string `json:"abstractGameState"`
	} `json:"status"`
	Teams struct {
		Home mlbGameTeam `json:"home"`
		Away mlbGameTeam `json:"away"`
	} `json:"teams"`
	Venue struct {
		Name string `json:"name"`
	} `json:"venue"`
}

type mlbGameTeam struct {
	Score *int64 `json:"score"`
	Team  struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	} `json:"team"`
}

type mlbTeamsResponse struct {
	Teams []struct {
		ID           int64  `json:"id"`
		Name         string `json:"name"`
		Abbreviation string `json:"abbreviation"`
		League       struct {
			Name string `json:"name"`
		} `json:"league"`
		Division struct {
			Name string `json:"name"`
		} `json:"division"`
		Venue struct {
			Name string `json:"name"`
		} `json:"venue"`
	} `json:"teams"`
}

type mlbRosterResponse struct {
	Roster []struct {
		Person struct {
			ID       int64  `json:"id"`
			FullName string `json:"fullName"`
		} `json:"person"`
		JerseyNumber string `json:"jerseyNumber"`
		Position     struct {
			Abbreviation string `json:"abbreviation"`
		} `json:"position"`
		Status struct {
			Description string `json:"description"`
		} `json:"status"`
	} `json:"roster"`
}

type mlbStatsResponse struct {
	Stats []struct {
		Splits []mlbGameLogSplit `json:"splits"`
	} `json:"stats"`
}

type mlbGameLogSplit struct {
	Date string `json:"date"`
	Game struct {
		GamePk   int64  `json:"gamePk"`
		GameDate string `json:"gameDate"`
	} `json:"game"`
	Opponent struct {
		Name string `json:"name"`
	} `json:"opponent"`
	IsHome bool                   `json:"isHome"`
	Stat   map[string]interface{} `json:"stat"`
}

type mlbStandingsResponse struct {
	Records []struct {
		TeamRecords []struct {
			Team struct {
				ID   int64  `json:"id"`
				Name string `json:"name"`
			} `json:"team"`
			Wins         int64  `json:"wins"`
			Losses       int64  `json:"losses"`
			DivisionRank string `json:"divisionRank"`
			Streak       struct {
				StreakCode string `json:"streakCode"`
			} `json:"streak"`
		} `json:"teamRecords"`
	} `json:"records"`
}

type mlbPeopleResponse struct {
	People []struct {
		ID              int64  `json:"id"`
		FullName        string `json:"fullName"`
		PrimaryPosition struct {
			Abbreviation string `json:"abbreviation"`
		} `json:"primaryPosition"`
	} `json:"people"`
}

// Schedule returns the normalized games for one ET calendar day.
func (m *MLBClient) Schedule(ctx context.Context, dateET string) ([]models.Game, error) {
	u := fmt.Sprintf("%s/schedule?sportId=1&date=%s", m.baseURL, url.QueryEscape(dateET))
	var resp mlbScheduleResponse
	if err := m.client.GetJSON(ctx, u, &resp); err != nil {
		return nil, err
	}
	games := make([]models.Game, 0)
	for _, d := range resp.Dates {
		for _, g := range d.Games {
			if ng, ok := reshapeMLBGame(g, d.Date); ok {
				games = append(games, ng)
			}
		}
	}
	return games, nil
}

// ScheduleRange returns one team's normalized games over a date window.
func (m *MLBClient) ScheduleRange(ctx context.Context, teamID int64, startET, endET string) ([]models.Game, error) {
	u := fmt.Sprintf("%s/schedule?sportId=1&teamId=%d&startDate=%s&endDate=%s",
		m.baseURL, teamID, url.QueryEscape(startET), url.QueryEscape(endET))
	var resp mlbScheduleResponse
	if err := m.client.GetJSON(ctx, u, &resp); err != nil {
		return nil, err
	}
	games := make([]models.Game, 0)
	for _, d := range resp.Dates {
		for _, g := range d.Games {
			if ng, ok := reshapeMLBGame(g, d.Date); ok {
				games = append(games, ng)
			}
		}
	}
	return games, nil
}

// reshapeMLBGame normalizes one raw schedule entry. Entries whose date cannot
// be resolved are skipped rather than failing the whole day.
func reshapeMLBGame(g mlbGame, fallbackDate string) (models.Game, bool) {
	ng := models.Game{
		ID:     fmt.Sprintf("%d", g.GamePk),
		Status: g.Status.DetailedState,
		Venue:  g.Venue.Name,
		Home: models.TeamRef{
			ID:    g.Teams.Home.Team.ID,
			Name:  g.Teams.Home.Team.Name,
			Score: g.Teams.Home.Score,
		},
		Away: models.TeamRef{
			ID:    g.Teams.Away.Team.ID,
			Name:  g.Teams.Away.Team.Name,
			Score: g.Teams.Away.Score,
		},
	}

	start, ok := normalize.ParseInstant(g.GameDate)
	if ok && !isMidnightET(start) {
		ng.DateET = normalize.DateET(start)
		ng.StartET = normalize.InstantET(start)
		ng.StartTime = start
		ng.HasStart = true
		return ng, true
	}
	// Date-only entry: the upstream had no trustworthy time, do not
	// fabricate one.
	day, ok := normalize.ParseInstant(fallbackDate)
	if !ok {
		return models.Game{}, false
	}
	ng.DateET = normalize.DateET(day)
	ng.StartTime = day
	return ng, true
}

// isMidnightET reports an exact ET midnight, the sentinel MLB uses for games
// with unknown start times.
func isMidnightET(t time.Time) bool {
	et := t.In(normalize.Eastern)
	return et.Hour() == 0 && et.Minute() == 0 && et.Second() == 0
}

// Teams lists the league's teams for a season.
func (m *MLBClient) Teams(ctx context.Context, season string) ([]models.Team, error) {
	u := fmt.Sprintf("%s/teams?sportId=1&season=%s", m.baseURL, url.QueryEscape(season))
	var resp mlbTeamsResponse
	if err := m.client.GetJSON(ctx, u, &resp); err != nil {
		return nil, err
	}
	teams := make([]models.Team, 0, len(resp.Teams))
	for _, t := range resp.Teams {
		teams = append(teams, models.Team{
			ID:           t.ID,
			Name:         t.Name,
			Abbreviation: t.Abbreviation,
			League:       t.League.Name,
			Division:     t.Division.Name,
			Venue:        t.Venue.Name,
		})
	}
	return teams, nil
}

// Roster returns a team's active roster in upstream order.
func (m *MLBClient) Roster(ctx context.Context, teamID int64) ([]models.RosterEntry, error) {
	u := fmt.Sprintf("%s/teams/%d/roster", m.baseURL, teamID)
	var resp mlbRosterResponse
	if err := m.client.GetJSON(ctx, u, &resp); err != nil {
		return nil, err
	}
	roster := make([]models.RosterEntry, 0, len(resp.Roster))
	for _, r := range resp.Roster {
		roster = append(roster, models.RosterEntry{
			PlayerID:     r.Person.ID,
			FullName:     r.Person.FullName,
			JerseyNumber: r.JerseyNumber,
			Position:     r.Position.Abbreviation,
			Status:       r.Status.Description,
		})
	}
	return roster, nil
}

// GameLog fetches one player's game log for a season and stat group, shaped
// into PlayerGameStat records carrying exactly the requested stat keys.
// Splits with unparseable dates are skipped.
func (m *MLBClient) GameLog(ctx context.Context, playerID int64, season, group string, statKeys []string) ([]models.PlayerGameStat, error) {
	u := fmt.Sprintf("%s/people/%d/stats?stats=gameLog&season=%s&group=%s",
		m.baseURL, playerID, url.QueryEscape(season), url.QueryEscape(group))
	var resp mlbStatsResponse
	if err := m.client.GetJSON(ctx, u, &resp); err != nil {
		return nil, err
	}

	out := make([]models.PlayerGameStat, 0)
	for _, s := range resp.Stats {
		for _, split := range s.Splits {
			rec, ok := reshapeMLBSplit(split, statKeys)
			if !ok {
				continue
			}
			out = append(out, rec)
		}
	}
	return out, nil
}

func reshapeMLBSplit(split mlbGameLogSplit, statKeys []string) (models.PlayerGameStat, bool) {
	day, ok := normalize.ParseInstant(split.Date)
	if !ok {
		return models.PlayerGameStat{}, false
	}

	rec := models.PlayerGameStat{
		DateET:   normalize.DateET(day),
		Opponent: split.Opponent.Name,
		IsHome:   split.IsHome,
		Stats:    make(map[string]interface{}, len(statKeys)),
		SortTime: day,
	}
	if split.Game.GamePk != 0 {
		rec.GameID = fmt.Sprintf("%d", split.Game.GamePk)
	}
	if start, ok := normalize.ParseInstant(split.Game.GameDate); ok && !isMidnightET(start) {
		rec.ETDateTime = normalize.InstantET(start)
		rec.SortTime = start
	}

	for _, key := range statKeys {
		v, present := split.Stat[key]
		if !present {
			rec.Stats[key] = nil
			continue
		}
		rec.Stats[key] = normalize.CoerceInt(v)
	}
	return rec, true
}

// Standings returns the current standings rows for a season, flattened
// across divisions in upstream order.
func (m *MLBClient) Standings(ctx context.Context, season string) ([]models.TeamStanding, error) {
	u := fmt.Sprintf("%s/standings?leagueId=103,104&season=%s", m.baseURL, url.QueryEscape(season))
	var resp mlbStandingsResponse
	if err := m.client.GetJSON(ctx, u, &resp); err != nil {
		return nil, err
	}
	rows := make([]models.TeamStanding, 0)
	for _, rec := range resp.Records {
		for _, tr := range rec.TeamRecords {
			rows = append(rows, models.TeamStanding{
				Team:         models.Team{ID: tr.Team.ID, Name: tr.Team.Name},
				Won:          tr.Wins,
				Lost:         tr.Losses,
				PlayedGames:  tr.Wins + tr.Losses,
				Streak:       tr.Streak.StreakCode,
				DivisionRank: tr.DivisionRank,
			})
		}
	}
	return rows, nil
}

// Person resolves a player id to a display name and primary position.
func (m *MLBClient) Person(ctx context.Context, playerID int64) (name, position string, err error) {
	u := fmt.Sprintf("%s/people/%d", m.baseURL, playerID)
	var resp mlbPeopleResponse
	if err := m.client.GetJSON(ctx, u, &resp); err != nil {
		return "", "", err
	}
	if len(resp.People) == 0 {
		return "", "", &models.UpstreamDecodeError{Reason: fmt.Sprintf("person %d not found in response", playerID)}
	}
	return resp.People[0].FullName, resp.People[0].PrimaryPosition.Abbreviation, nil
}
