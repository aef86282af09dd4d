package models

import "time"

// TeamRef is a lightweight team reference embedded in games.
type TeamRef struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Score *int64 `json:"score,omitempty"`
}

// Score is a full-time or half-time score pair.
type Score struct {
	Home *int64 `json:"home"`
	Away *int64 `json:"away"`
}

// Game is the upstream-independent normalized match. StartET is rendered in
// America/New_York and omitted when the upstream carries no trustworthy time
// (date-only entries). StartTime backs sorting and is never serialized.
type Game struct {
	ID        string    `json:"id"`
	DateET    string    `json:"date_et"`
	StartET   string    `json:"start_et,omitempty"`
	Status    string    `json:"status"`
	Home      TeamRef   `json:"home"`
	Away      TeamRef   `json:"away"`
	Venue     string    `json:"venue,omitempty"`
	ScoreFull *Score    `json:"score_full,omitempty"`
	ScoreHalf *Score    `json:"score_half,omitempty"`
	Matchday  int       `json:"matchday,omitempty"`
	StartTime time.Time `json:"-"`
	HasStart  bool      `json:"-"`
}

// Team is a league team, immutable per season.
type Team struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Abbreviation string `json:"abbreviation,omitempty"`
	ShortName    string `json:"short_name,omitempty"`
	League       string `json:"league,omitempty"`
	Division     string `json:"division,omitempty"`
	Venue        string `json:"venue,omitempty"`
}

// RosterEntry is one player slot on a team roster, in upstream order.
type RosterEntry struct {
	PlayerID     int64  `json:"player_id"`
	FullName     string `json:"full_name"`
	JerseyNumber string `json:"jersey_number,omitempty"`
	Position     string `json:"position,omitempty"`
	Status       string `json:"status,omitempty"`
}

// PlayerGameStat is one per-player, per-game statistical record. Stats maps
// requested stat keys to coerced values: integers where the sample is
// integer-shaped, nil where the upstream had nothing, the raw value otherwise.
type PlayerGameStat struct {
	DateET     string                 `json:"date_et"`
	ETDateTime string                 `json:"et_datetime,omitempty"`
	GameID     string                 `json:"game_id,omitempty"`
	Opponent   string                 `json:"opponent,omitempty"`
	IsHome     bool                   `json:"is_home"`
	Stats      map[string]interface{} `json:"stats"`
	SortTime   time.Time              `json:"-"`
}

// PlayerStatsResponse is the per-player envelope of a last-N query: the
// bounded window (descending by date_et) plus precomputed aggregates.
type PlayerStatsResponse struct {
	PlayerID   int64                  `json:"player_id"`
	Games      []PlayerGameStat       `json:"games"`
	Aggregates map[string]interface{} `json:"aggregates"`
}

// TeamStanding is one row of a standings table, in provider position order.
type TeamStanding struct {
	Position       int    `json:"position"`
	Team           Team   `json:"team"`
	PlayedGames    int64  `json:"played_games"`
	Won            int64  `json:"won"`
	Draw           int64  `json:"draw,omitempty"`
	Lost           int64  `json:"lost"`
	Points         int64  `json:"points,omitempty"`
	GoalsFor       int64  `json:"goals_for,omitempty"`
	GoalsAgainst   int64  `json:"goals_against,omitempty"`
	GoalDifference int64  `json:"goal_difference,omitempty"`
	Streak         string `json:"streak,omitempty"`
	DivisionRank   string `json:"division_rank,omitempty"`
}

// Scorer is one row of a top-scorers table. Missing goal counts are zero.
type Scorer struct {
	PlayerID      int64  `json:"player_id"`
	PlayerName    string `json:"player_name"`
	TeamName      string `json:"team_name"`
	Goals         int64  `json:"goals"`
	Assists       int64  `json:"assists"`
	Penalties     int64  `json:"penalties"`
	PlayedMatches int64  `json:"played_matches"`
}

// Competition is a soccer competition as listed by the provider.
type Competition struct {
	ID            int64  `json:"id"`
	Code          string `json:"code,omitempty"`
	Name          string `json:"name"`
	Area          string `json:"area,omitempty"`
	CurrentSeason string `json:"current_season,omitempty"`
}
