package tools

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parlaylab/sports-mcp/internal/models"
	"github.com/parlaylab/sports-mcp/internal/normalize"
)

const scheduleFixture = `{
  "dates": [{
    "date": "2025-08-13",
    "games": [
      {
        "gamePk": 2,
        "gameDate": "2025-08-13T04:00:00Z",
        "status": {"detailedState": "Scheduled"},
        "teams": {
          "home": {"team": {"id": 147, "name": "New York Yankees"}},
          "away": {"team": {"id": 111, "name": "Boston Red Sox"}}
        },
        "venue": {"name": "Yankee Stadium"}
      },
      {
        "gamePk": 1,
        "gameDate": "2025-08-13T23:30:00Z",
        "status": {"detailedState": "Scheduled"},
        "teams": {
          "home": {"team": {"id": 121, "name": "New York Mets"}},
          "away": {"team": {"id": 143, "name": "Philadelphia Phillies"}}
        },
        "venue": {"name": "Citi Field"}
      }
    ]
  }]
}`

func TestGetMLBScheduleET_EmptyDay(t *testing.T) {
	r := newTestRegistry(t, testUpstreams{mlb: jsonHandler(`{"dates":[]}`)})

	res := r.getMLBScheduleET(context.Background(), json.RawMessage(`{"date":"2025-11-03"}`))
	require.True(t, res.OK, res.Error)

	data := res.Data.(map[string]interface{})
	assert.Equal(t, "2025-11-03", data["date_et"])
	assert.Equal(t, 0, data["count"])
	assert.Empty(t, data["games"])
	assert.Empty(t, res.Error)
}

func TestGetMLBScheduleET_TimedGamesBeforeDateOnly(t *testing.T) {
	r := newTestRegistry(t, testUpstreams{mlb: jsonHandler(scheduleFixture)})

	res := r.getMLBScheduleET(context.Background(), json.RawMessage(`{"date":"2025-08-13"}`))
	require.True(t, res.OK, res.Error)

	games := res.Data.(map[string]interface{})["games"].([]models.Game)
	require.Len(t, games, 2)

	// Game 1 has a real start instant; game 2 carries the ET-midnight
	// sentinel and renders date-only, after every timed game of the day.
	assert.Equal(t, "1", games[0].ID)
	assert.Equal(t, "2025-08-13T19:30:00-04:00", games[0].StartET)
	assert.Equal(t, "2", games[1].ID)
	assert.Empty(t, games[1].StartET)
	assert.Equal(t, "2025-08-13", games[1].DateET)
}

func TestGetMLBScheduleET_InvalidDate(t *testing.T) {
	r := newTestRegistry(t, testUpstreams{})

	res := r.getMLBScheduleET(context.Background(), json.RawMessage(`{"date":"08/13/2025"}`))
	require.False(t, res.OK)
	assert.Contains(t, res.Error, "date")
	assert.Nil(t, res.Data)
}

const gameLogFixture = `{
  "stats": [{
    "splits": [
      {
        "date": "2025-08-10",
        "game": {"gamePk": 100, "gameDate": "2025-08-10T23:00:00Z"},
        "opponent": {"name": "Boston Red Sox"},
        "isHome": true,
        "stat": {"hits": 2, "atBats": 4}
      },
      {
        "date": "2025-08-12",
        "game": {"gamePk": 101, "gameDate": "2025-08-12T23:00:00Z"},
        "opponent": {"name": "Boston Red Sox"},
        "isHome": false,
        "stat": {"hits": "1", "atBats": 3}
      },
      {
        "date": "2025-08-14",
        "game": {"gamePk": 102, "gameDate": "2025-08-14T23:00:00Z"},
        "opponent": {"name": "Tampa Bay Rays"},
        "isHome": true,
        "stat": {"hits": 3, "atBats": 5}
      }
    ]
  }]
}`

func playerRoutedMLB(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/people/1/stats"):
			w.Write([]byte(gameLogFixture))
		case strings.HasPrefix(r.URL.Path, "/people/2/stats"):
			w.WriteHeader(http.StatusInternalServerError)
		default:
			t.Errorf("unexpected MLB path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	})
}

func TestGetMLBPlayerLastN_WindowAndAggregates(t *testing.T) {
	r := newTestRegistry(t, testUpstreams{mlb: jsonHandler(gameLogFixture)})

	args := `{"player_ids":[1],"season":2025,"stats":["hits","atBats"],"count":2,"cutoff_iso_et":"2025-08-13"}`
	res := r.getMLBPlayerLastN(context.Background(), json.RawMessage(args))
	require.True(t, res.OK, res.Error)

	data := res.Data.(map[string]interface{})
	results := data["results"].(map[string]models.PlayerStatsResponse)
	require.Contains(t, results, "1")

	games := results["1"].Games
	require.Len(t, games, 2)
	// Newest first; the 08-14 game is past the cutoff and excluded.
	assert.Equal(t, "2025-08-12", games[0].DateET)
	assert.Equal(t, "2025-08-10", games[1].DateET)
	// The string-typed "1" was coerced.
	assert.Equal(t, int64(1), games[0].Stats["hits"])

	agg := results["1"].Aggregates
	assert.Equal(t, int64(3), agg["hits_sum"])
	assert.Equal(t, 1.5, agg["hits_avg"])
	assert.Equal(t, int64(7), agg["atBats_sum"])
}

func TestGetMLBPlayerLastN_PartialFailure(t *testing.T) {
	r := newTestRegistry(t, testUpstreams{mlb: playerRoutedMLB(t)})

	args := `{"player_ids":[1,2],"season":2025,"stats":["hits"],"count":5}`
	res := r.getMLBPlayerLastN(context.Background(), json.RawMessage(args))

	// One player succeeded, so the call succeeds with the failure recorded.
	require.True(t, res.OK, res.Error)
	data := res.Data.(map[string]interface{})

	results := data["results"].(map[string]models.PlayerStatsResponse)
	errs := data["errors"].(map[string]string)
	assert.Contains(t, results, "1")
	assert.NotContains(t, results, "2")
	require.Contains(t, errs, "2")
	assert.True(t, strings.HasPrefix(errs["2"], "500"), "error was %q", errs["2"])
}

func TestGetMLBPlayerLastN_AllFailed(t *testing.T) {
	r := newTestRegistry(t, testUpstreams{mlb: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})})

	res := r.getMLBPlayerLastN(context.Background(), json.RawMessage(`{"player_ids":[7]}`))
	require.False(t, res.OK)
	assert.Contains(t, res.Error, "all player fetches failed")
	assert.Nil(t, res.Data)
}

func TestGetMLBPlayerLastN_Validation(t *testing.T) {
	r := newTestRegistry(t, testUpstreams{})

	tests := []struct {
		name  string
		args  string
		field string
	}{
		{"empty ids", `{"player_ids":[]}`, "player_ids"},
		{"explicit zero count", `{"player_ids":[1],"count":0}`, "count"},
		{"negative count", `{"player_ids":[1],"count":-3}`, "count"},
		{"bad group", `{"player_ids":[1],"group":"fielding"}`, "group"},
		{"bad cutoff", `{"player_ids":[1],"cutoff_iso_et":"yesterday"}`, "cutoff_iso_et"},
		{"wrong type", `{"player_ids":"1"}`, "player_ids"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := r.getMLBPlayerLastN(context.Background(), json.RawMessage(tt.args))
			require.False(t, res.OK)
			assert.Contains(t, res.Error, tt.field)
		})
	}
}

func TestParseInningsOuts(t *testing.T) {
	tests := []struct {
		in   interface{}
		outs int64
		ok   bool
	}{
		{"5.2", 17, true},
		{"6.0", 18, true},
		{"0.1", 1, true},
		{"7", 21, true},
		{"5.3", 0, false},
		{"bad", 0, false},
		{float64(5.2), 17, true},
		{int64(6), 18, true},
		{nil, 0, false},
	}
	for _, tt := range tests {
		outs, ok := parseInningsOuts(tt.in)
		assert.Equal(t, tt.ok, ok, "input %v", tt.in)
		if ok {
			assert.Equal(t, tt.outs, outs, "input %v", tt.in)
		}
	}
}

func pitchingGame(ip string, er, so, bb, h int64) models.PlayerGameStat {
	return models.PlayerGameStat{Stats: map[string]interface{}{
		"inningsPitched": ip,
		"earnedRuns":     er,
		"strikeOuts":     so,
		"baseOnBalls":    bb,
		"hits":           h,
	}}
}

func TestDerivePitchingMetrics(t *testing.T) {
	metrics, note := derivePitchingMetrics([]models.PlayerGameStat{
		pitchingGame("5.2", 2, 7, 1, 4),
	})
	assert.Empty(t, note)
	assert.Equal(t, 5.7, metrics["innings_pitched"])
	assert.Equal(t, 3.2, metrics["era"])
	assert.Equal(t, 0.9, metrics["whip"])
	assert.Equal(t, 11.1, metrics["k_per_9"])
}

func TestDerivePitchingMetrics_ZeroInnings(t *testing.T) {
	metrics, note := derivePitchingMetrics([]models.PlayerGameStat{
		pitchingGame("0.0", 3, 0, 2, 5),
	})
	assert.NotEmpty(t, note)
	assert.Nil(t, metrics["era"])
	assert.Nil(t, metrics["whip"])
	assert.Nil(t, metrics["k_per_9"])
	assert.Equal(t, int64(3), metrics["earned_runs"])
}

func hittingGame(dateET string, hits, walks, hbp int64) models.PlayerGameStat {
	return models.PlayerGameStat{DateET: dateET, Stats: map[string]interface{}{
		"hits":        hits,
		"baseOnBalls": walks,
		"hitByPitch":  hbp,
	}}
}

func TestComputeStreaks(t *testing.T) {
	// Newest first: 2 hits, 1 hit, 0 hits but a walk, 0 everything.
	games := []models.PlayerGameStat{
		hittingGame("2025-08-14", 2, 0, 0),
		hittingGame("2025-08-13", 1, 0, 0),
		hittingGame("2025-08-12", 0, 1, 0),
		hittingGame("2025-08-11", 0, 0, 0),
	}
	s := computeStreaks(42, games)
	assert.Equal(t, int64(42), s.PlayerID)
	assert.Equal(t, 2, s.HittingStreak)
	assert.Equal(t, 3, s.OnBaseStreak)
	assert.Equal(t, 1, s.MultiHitGames)
	assert.Equal(t, 4, s.GamesScanned)
}

func scoredGame(id, dateET, status string, homeID int64, home, away int64) models.Game {
	day, _ := normalize.ParseInstant(dateET)
	return models.Game{
		ID:        id,
		DateET:    dateET,
		Status:    status,
		Home:      models.TeamRef{ID: homeID, Name: "Home Club", Score: &home},
		Away:      models.TeamRef{ID: 999, Name: "Away Club", Score: &away},
		StartTime: day,
	}
}

func TestCompletedTeamGames(t *testing.T) {
	games := []models.Game{
		scoredGame("1", "2025-08-10", "Final", 147, 5, 3),
		scoredGame("2", "2025-08-11", "Scheduled", 147, 0, 0),
		scoredGame("3", "2025-08-12", "Final: Tied", 147, 2, 4),
	}
	// An in-progress game and a missing score never count.
	games[1].Home.Score = nil

	out := completedTeamGames(games, 147)
	require.Len(t, out, 2)
	// Newest first, from the team's perspective.
	assert.Equal(t, "2025-08-12", out[0].DateET)
	assert.Equal(t, "L", out[0].Result)
	assert.Equal(t, "2025-08-10", out[1].DateET)
	assert.Equal(t, "W", out[1].Result)
	assert.Equal(t, int64(5), out[1].RunsScored)
	assert.True(t, out[1].IsHome)
}

const standingsFixture = `{
  "records": [{
    "teamRecords": [
      {"team": {"id": 147, "name": "New York Yankees"}, "wins": 82, "losses": 58,
       "divisionRank": "1", "streak": {"streakCode": "W4"}}
    ]
  }]
}`

const rangeFixture = `{
  "dates": [{
    "date": "2025-08-20",
    "games": [{
      "gamePk": 900,
      "gameDate": "2025-08-20T23:00:00Z",
      "status": {"detailedState": "Final"},
      "teams": {
        "home": {"score": 5, "team": {"id": 147, "name": "New York Yankees"}},
        "away": {"score": 3, "team": {"id": 111, "name": "Boston Red Sox"}}
      },
      "venue": {"name": "Yankee Stadium"}
    }]
  }]
}`

func TestGetMLBTeamForm(t *testing.T) {
	mlb := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/standings"):
			w.Write([]byte(standingsFixture))
		case strings.HasPrefix(r.URL.Path, "/schedule"):
			w.Write([]byte(rangeFixture))
		default:
			t.Errorf("unexpected MLB path %s", r.URL.Path)
		}
	})
	r := newTestRegistry(t, testUpstreams{mlb: mlb})

	res := r.getMLBTeamForm(context.Background(), json.RawMessage(`{"team_id":147,"season":2025}`))
	require.True(t, res.OK, res.Error)

	data := res.Data.(map[string]interface{})
	assert.Equal(t, "New York Yankees", data["team_name"])
	assert.Equal(t, int64(82), data["wins"])
	assert.Equal(t, "W4", data["streak"])
	assert.Equal(t, "1-0", data["last_summary"])
}

func TestGetMLBTeamForm_UnknownTeam(t *testing.T) {
	r := newTestRegistry(t, testUpstreams{mlb: jsonHandler(standingsFixture)})

	res := r.getMLBTeamForm(context.Background(), json.RawMessage(`{"team_id":555,"season":2025}`))
	require.False(t, res.OK)
	assert.Contains(t, res.Error, "555")
}

func TestGetMLBTeamScoringTrends(t *testing.T) {
	r := newTestRegistry(t, testUpstreams{mlb: jsonHandler(rangeFixture)})

	res := r.getMLBTeamScoringTrends(context.Background(), json.RawMessage(`{"team_id":147}`))
	require.True(t, res.OK, res.Error)

	trends := res.Data.(map[string]interface{})["trends"].(map[string]interface{})
	assert.Equal(t, 1, trends["games"])
	assert.Equal(t, 1, trends["wins"])
	assert.Equal(t, 5.0, trends["runs_scored_avg"])
	assert.Equal(t, 3.0, trends["runs_allowed_avg"])
}

func TestGetMLBTeamRoster_Validation(t *testing.T) {
	r := newTestRegistry(t, testUpstreams{})

	res := r.getMLBTeamRoster(context.Background(), json.RawMessage(`{}`))
	require.False(t, res.OK)
	assert.Contains(t, res.Error, "team_id")
}

func TestGetMLBTeams_SortedByAbbreviation(t *testing.T) {
	fixture := `{"teams":[
		{"id": 147, "name": "New York Yankees", "abbreviation": "NYY"},
		{"id": 111, "name": "Boston Red Sox", "abbreviation": "BOS"}
	]}`
	r := newTestRegistry(t, testUpstreams{mlb: jsonHandler(fixture)})

	res := r.getMLBTeams(context.Background(), json.RawMessage(`{"season":"2025"}`))
	require.True(t, res.OK, res.Error)

	teams := res.Data.(map[string]interface{})["teams"].([]models.Team)
	require.Len(t, teams, 2)
	assert.Equal(t, "BOS", teams[0].Abbreviation)
	assert.Equal(t, "NYY", teams[1].Abbreviation)
}

func TestFanOut_DisjointKeyUnion(t *testing.T) {
	results, errs := fanOut(context.Background(), []int64{1, 2, 2, 3}, func(_ context.Context, id int64) (int64, error) {
		if id == 2 {
			return 0, assert.AnError
		}
		return id * 10, nil
	})

	assert.Equal(t, map[string]int64{"1": 10, "3": 30}, results)
	require.Len(t, errs, 1)
	assert.Contains(t, errs, "2")
	for k := range results {
		assert.NotContains(t, errs, k)
	}
}

func TestAggregateStats_SkipsNonInteger(t *testing.T) {
	games := []models.PlayerGameStat{
		{Stats: map[string]interface{}{"hits": int64(2), "avg": ".300"}},
		{Stats: map[string]interface{}{"hits": nil, "avg": ".250"}},
	}
	agg := aggregateStats(games, []string{"hits", "avg"})
	assert.Equal(t, int64(2), agg["hits_sum"])
	assert.Equal(t, 2.0, agg["hits_avg"])
	assert.Equal(t, int64(0), agg["avg_sum"])
	assert.Equal(t, 0.0, agg["avg_avg"])
}
