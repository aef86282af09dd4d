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
	"github.com/parlaylab/sports-mcp/internal/providers"
)

const matchesFixture = `{
  "matches": [
    {
      "id": 2,
      "utcDate": "2025-08-16T14:00:00Z",
      "status": "TIMED",
      "matchday": 1,
      "homeTeam": {"id": 64, "name": "Liverpool FC"},
      "awayTeam": {"id": 65, "name": "Manchester City FC"},
      "score": {"fullTime": {}, "halfTime": {}}
    },
    {
      "id": 1,
      "utcDate": "2025-08-15T19:00:00Z",
      "status": "FINISHED",
      "matchday": 1,
      "homeTeam": {"id": 57, "name": "Arsenal FC"},
      "awayTeam": {"id": 61, "name": "Chelsea FC"},
      "score": {"fullTime": {"home": 2, "away": 1}, "halfTime": {"home": 1, "away": 0}}
    }
  ]
}`

func TestGetCompetitionMatches_SortedByKickoff(t *testing.T) {
	r := newTestRegistry(t, testUpstreams{soccer: jsonHandler(matchesFixture)})

	res := r.getCompetitionMatches(context.Background(), json.RawMessage(`{"competition_id":2021}`))
	require.True(t, res.OK, res.Error)

	matches := res.Data.(map[string]interface{})["matches"].([]models.Game)
	require.Len(t, matches, 2)
	assert.Equal(t, "1", matches[0].ID)
	assert.Equal(t, "2", matches[1].ID)

	// 19:00 UTC renders as 15:00 ET during DST.
	assert.Equal(t, "2025-08-15T15:00:00-04:00", matches[0].StartET)
	assert.Equal(t, "2025-08-15", matches[0].DateET)
	require.NotNil(t, matches[0].ScoreFull)
	assert.Equal(t, int64(2), *matches[0].ScoreFull.Home)
	assert.Nil(t, matches[1].ScoreFull)
}

func TestGetCompetitionMatches_FilterForwarded(t *testing.T) {
	var gotQuery string
	var gotToken string
	soccer := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		gotToken = r.Header.Get("X-Auth-Token")
		w.Write([]byte(`{"matches":[]}`))
	})
	r := newTestRegistry(t, testUpstreams{soccer: soccer})

	args := `{"competition_id":2021,"date_from":"2025-08-15","date_to":"2025-08-22","status":"SCHEDULED"}`
	res := r.getCompetitionMatches(context.Background(), json.RawMessage(args))
	require.True(t, res.OK, res.Error)

	assert.Contains(t, gotQuery, "dateFrom=2025-08-15")
	assert.Contains(t, gotQuery, "dateTo=2025-08-22")
	assert.Contains(t, gotQuery, "status=SCHEDULED")
	assert.Equal(t, "test-token", gotToken)
}

func TestGetCompetitionMatches_LimitAfterSort(t *testing.T) {
	r := newTestRegistry(t, testUpstreams{soccer: jsonHandler(matchesFixture)})

	res := r.getCompetitionMatches(context.Background(), json.RawMessage(`{"competition_id":2021,"limit":1}`))
	require.True(t, res.OK, res.Error)

	matches := res.Data.(map[string]interface{})["matches"].([]models.Game)
	require.Len(t, matches, 1)
	// The earliest kickoff survives the cut.
	assert.Equal(t, "1", matches[0].ID)

	res = r.getCompetitionMatches(context.Background(), json.RawMessage(`{"competition_id":2021,"limit":-1}`))
	require.False(t, res.OK)
	assert.Contains(t, res.Error, "limit")
}

func TestGetCompetitionStandings_ProviderOrderPreserved(t *testing.T) {
	// Positions intentionally not sorted by points; provider order wins.
	fixture := `{
	  "standings": [{
	    "type": "TOTAL",
	    "table": [
	      {"position": 1, "team": {"id": 64, "name": "Liverpool FC", "tla": "LIV"},
	       "playedGames": 2, "won": 2, "points": 6, "goalsFor": 5, "goalsAgainst": 1, "goalDifference": 4},
	      {"position": 2, "team": {"id": 57, "name": "Arsenal FC", "tla": "ARS"},
	       "playedGames": 2, "won": 1, "draw": 1, "points": 4, "goalsFor": 3, "goalsAgainst": 2, "goalDifference": 1}
	    ]
	  }]
	}`
	r := newTestRegistry(t, testUpstreams{soccer: jsonHandler(fixture)})

	res := r.getCompetitionStandings(context.Background(), json.RawMessage(`{"competition_id":2021}`))
	require.True(t, res.OK, res.Error)

	rows := res.Data.(map[string]interface{})["standings"].([]models.TeamStanding)
	require.Len(t, rows, 2)
	assert.Equal(t, 1, rows[0].Position)
	assert.Equal(t, "Liverpool FC", rows[0].Team.Name)
	assert.Equal(t, int64(6), rows[0].Points)
	assert.Equal(t, "ARS", rows[1].Team.Abbreviation)
}

func TestGetTopScorers(t *testing.T) {
	fixture := `{
	  "scorers": [
	    {"player": {"id": 1, "name": "Erling Haaland"}, "team": {"name": "Manchester City FC"},
	     "goals": 4, "assists": 1, "playedMatches": 2},
	    {"player": {"id": 2, "name": "Mohamed Salah"}, "team": {"name": "Liverpool FC"},
	     "goals": 3}
	  ]
	}`
	r := newTestRegistry(t, testUpstreams{soccer: jsonHandler(fixture)})

	res := r.getTopScorers(context.Background(), json.RawMessage(`{"competition_id":2021,"limit":2}`))
	require.True(t, res.OK, res.Error)

	scorers := res.Data.(map[string]interface{})["scorers"].([]models.Scorer)
	require.Len(t, scorers, 2)
	assert.Equal(t, int64(4), scorers[0].Goals)
	// Missing counts default to zero rather than dropping the row.
	assert.Equal(t, int64(0), scorers[1].Assists)
	assert.Equal(t, int64(0), scorers[1].PlayedMatches)
}

func TestGetTopScorers_ZeroLimitRejected(t *testing.T) {
	r := newTestRegistry(t, testUpstreams{})

	res := r.getTopScorers(context.Background(), json.RawMessage(`{"competition_id":2021,"limit":0}`))
	require.False(t, res.OK)
	assert.Contains(t, res.Error, "limit")
}

const matchFixture = `{
  "id": 99,
  "utcDate": "2025-08-15T19:00:00Z",
  "status": "IN_PLAY",
  "homeTeam": {"id": 57, "name": "Arsenal FC"},
  "awayTeam": {"id": 61, "name": "Chelsea FC"},
  "score": {"fullTime": {"home": 1, "away": 0}, "halfTime": {"home": 1, "away": 0}}
}`

func TestGetMatchDetails_WithLiveEnrichment(t *testing.T) {
	live := jsonHandler(`{
	  "id": 99, "status": "live", "minute": "67",
	  "events": [{"event_type": "goal", "event_minute": "23", "team": "home", "player": {"name": "Bukayo Saka"}}]
	}`)
	r := newTestRegistry(t, testUpstreams{soccer: jsonHandler(matchFixture), live: live})

	res := r.getMatchDetails(context.Background(), json.RawMessage(`{"match_id":99}`))
	require.True(t, res.OK, res.Error)

	data := res.Data.(map[string]interface{})
	match := data["match"].(*models.Game)
	assert.Equal(t, "Arsenal FC", match.Home.Name)

	liveData := data["live"].(*providers.LiveMatch)
	assert.Equal(t, "67", liveData.Minute)
	require.Len(t, liveData.Events, 1)
	assert.Equal(t, "goal", liveData.Events[0].Type)
	assert.Equal(t, "Bukayo Saka", liveData.Events[0].Player)
}

func TestGetMatchDetails_LiveFailureIsNonFatal(t *testing.T) {
	live := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})
	r := newTestRegistry(t, testUpstreams{soccer: jsonHandler(matchFixture), live: live})

	res := r.getMatchDetails(context.Background(), json.RawMessage(`{"match_id":99}`))
	require.True(t, res.OK, res.Error)

	data := res.Data.(map[string]interface{})
	assert.NotContains(t, data, "live")
	assert.Contains(t, res.Meta.Note, "live enrichment unavailable")
}

func TestGetMatchDetails_NoLiveClient(t *testing.T) {
	r := newTestRegistry(t, testUpstreams{soccer: jsonHandler(matchFixture)})

	res := r.getMatchDetails(context.Background(), json.RawMessage(`{"match_id":99}`))
	require.True(t, res.OK, res.Error)
	assert.NotContains(t, res.Data.(map[string]interface{}), "live")
	assert.Empty(t, res.Meta.Note)
}

func TestGetTeamMatches_LimitAfterSort(t *testing.T) {
	r := newTestRegistry(t, testUpstreams{soccer: jsonHandler(matchesFixture)})

	res := r.getTeamMatches(context.Background(), json.RawMessage(`{"team_id":64,"limit":1}`))
	require.True(t, res.OK, res.Error)

	matches := res.Data.(map[string]interface{})["matches"].([]models.Game)
	require.Len(t, matches, 1)
	// The earliest kickoff survives the cut.
	assert.Equal(t, "1", matches[0].ID)
}

func TestSoccerTools_RequireCompetitionID(t *testing.T) {
	r := newTestRegistry(t, testUpstreams{})

	for name, fn := range map[string]ToolFunc{
		"matches":   r.getCompetitionMatches,
		"standings": r.getCompetitionStandings,
		"teams":     r.getCompetitionTeams,
		"scorers":   r.getTopScorers,
	} {
		res := fn(context.Background(), json.RawMessage(`{}`))
		require.False(t, res.OK, name)
		assert.True(t, strings.Contains(res.Error, "competition_id"), "%s error was %q", name, res.Error)
	}
}
