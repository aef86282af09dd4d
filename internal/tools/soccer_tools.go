package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/parlaylab/sports-mcp/internal/models"
	"github.com/parlaylab/sports-mcp/internal/providers"
)

func (r *Registry) getCompetitions(ctx context.Context, raw json.RawMessage) *models.ToolResult {
	var args struct{}
	if err := decodeArgs(raw, &args); err != nil {
		return models.Failure(err)
	}

	comps, err := r.soccer.Competitions(ctx)
	if err != nil {
		return models.Failure(err)
	}
	data := map[string]interface{}{
		"count":        len(comps),
		"competitions": comps,
	}
	return models.Success(fmt.Sprintf("%d competition(s) available", len(comps)), data)
}

type competitionMatchesArgs struct {
	CompetitionID int64  `json:"competition_id"`
	DateFrom      string `json:"date_from"`
	DateTo        string `json:"date_to"`
	Matchday      int    `json:"matchday"`
	Status        string `json:"status"`
	Season        string `json:"season"`
	Limit         int    `json:"limit"`
}

func (r *Registry) getCompetitionMatches(ctx context.Context, raw json.RawMessage) *models.ToolResult {
	var args competitionMatchesArgs
	if err := decodeArgs(raw, &args); err != nil {
		return models.Failure(err)
	}
	if args.CompetitionID <= 0 {
		return models.Failure(&models.ValidationError{Field: "competition_id", Reason: "required positive integer"})
	}
	if args.Limit < 0 {
		return models.Failure(&models.ValidationError{Field: "limit", Reason: "must not be negative"})
	}

	matches, err := r.soccer.CompetitionMatches(ctx, args.CompetitionID, providers.MatchFilter{
		DateFrom: args.DateFrom,
		DateTo:   args.DateTo,
		Matchday: args.Matchday,
		Status:   args.Status,
		Season:   args.Season,
	})
	if err != nil {
		return models.Failure(err)
	}
	sortMatchesByKickoff(matches)
	if args.Limit > 0 && len(matches) > args.Limit {
		matches = matches[:args.Limit]
	}

	data := map[string]interface{}{
		"competition_id": args.CompetitionID,
		"count":          len(matches),
		"matches":        matches,
	}
	return models.Success(fmt.Sprintf("Competition %d: %d match(es)", args.CompetitionID, len(matches)), data)
}

// sortMatchesByKickoff orders ascending by UTC start instant.
func sortMatchesByKickoff(matches []models.Game) {
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].StartTime.Before(matches[j].StartTime)
	})
}

type competitionStandingsArgs struct {
	CompetitionID int64  `json:"competition_id"`
	Season        string `json:"season"`
}

func (r *Registry) getCompetitionStandings(ctx context.Context, raw json.RawMessage) *models.ToolResult {
	var args competitionStandingsArgs
	if err := decodeArgs(raw, &args); err != nil {
		return models.Failure(err)
	}
	if args.CompetitionID <= 0 {
		return models.Failure(&models.ValidationError{Field: "competition_id", Reason: "required positive integer"})
	}

	// Provider position ordering is preserved as-is.
	rows, err := r.soccer.Standings(ctx, args.CompetitionID, args.Season)
	if err != nil {
		return models.Failure(err)
	}
	data := map[string]interface{}{
		"competition_id": args.CompetitionID,
		"count":          len(rows),
		"standings":      rows,
	}
	return models.Success(fmt.Sprintf("Standings for competition %d: %d team(s)", args.CompetitionID, len(rows)), data)
}

type competitionTeamsArgs struct {
	CompetitionID int64  `json:"competition_id"`
	Season        string `json:"season"`
}

func (r *Registry) getCompetitionTeams(ctx context.Context, raw json.RawMessage) *models.ToolResult {
	var args competitionTeamsArgs
	if err := decodeArgs(raw, &args); err != nil {
		return models.Failure(err)
	}
	if args.CompetitionID <= 0 {
		return models.Failure(&models.ValidationError{Field: "competition_id", Reason: "required positive integer"})
	}

	teams, err := r.soccer.Teams(ctx, args.CompetitionID, args.Season)
	if err != nil {
		return models.Failure(err)
	}
	sort.SliceStable(teams, func(i, j int) bool {
		return teams[i].Abbreviation < teams[j].Abbreviation
	})

	data := map[string]interface{}{
		"competition_id": args.CompetitionID,
		"count":          len(teams),
		"teams":          teams,
	}
	return models.Success(fmt.Sprintf("Competition %d: %d team(s)", args.CompetitionID, len(teams)), data)
}

type teamMatchesArgs struct {
	TeamID   int64  `json:"team_id"`
	DateFrom string `json:"date_from"`
	DateTo   string `json:"date_to"`
	Status   string `json:"status"`
	Season   string `json:"season"`
	Limit    int    `json:"limit"`
}

func (r *Registry) getTeamMatches(ctx context.Context, raw json.RawMessage) *models.ToolResult {
	var args teamMatchesArgs
	if err := decodeArgs(raw, &args); err != nil {
		return models.Failure(err)
	}
	if args.TeamID <= 0 {
		return models.Failure(&models.ValidationError{Field: "team_id", Reason: "required positive integer"})
	}
	if args.Limit < 0 {
		return models.Failure(&models.ValidationError{Field: "limit", Reason: "must not be negative"})
	}

	matches, err := r.soccer.TeamMatches(ctx, args.TeamID, providers.MatchFilter{
		DateFrom: args.DateFrom,
		DateTo:   args.DateTo,
		Status:   args.Status,
		Season:   args.Season,
	})
	if err != nil {
		return models.Failure(err)
	}
	sortMatchesByKickoff(matches)
	if args.Limit > 0 && len(matches) > args.Limit {
		matches = matches[:args.Limit]
	}

	data := map[string]interface{}{
		"team_id": args.TeamID,
		"count":   len(matches),
		"matches": matches,
	}
	return models.Success(fmt.Sprintf("Team %d: %d match(es)", args.TeamID, len(matches)), data)
}

type matchDetailsArgs struct {
	MatchID int64 `json:"match_id"`
}

func (r *Registry) getMatchDetails(ctx context.Context, raw json.RawMessage) *models.ToolResult {
	var args matchDetailsArgs
	if err := decodeArgs(raw, &args); err != nil {
		return models.Failure(err)
	}
	if args.MatchID <= 0 {
		return models.Failure(&models.ValidationError{Field: "match_id", Reason: "required positive integer"})
	}

	match, err := r.soccer.Match(ctx, args.MatchID)
	if err != nil {
		return models.Failure(err)
	}

	data := map[string]interface{}{
		"match": match,
	}
	note := ""
	if r.live != nil {
		live, liveErr := r.live.LiveDetails(ctx, args.MatchID)
		if liveErr != nil {
			// Enrichment is best effort; the match itself already loaded.
			note = "live enrichment unavailable: " + liveErr.Error()
		} else {
			data["live"] = live
		}
	}

	md := fmt.Sprintf("%s vs %s (%s)", match.Home.Name, match.Away.Name, match.Status)
	if note != "" {
		return models.SuccessWithNote(md, data, note)
	}
	return models.Success(md, data)
}

type topScorersArgs struct {
	CompetitionID int64  `json:"competition_id"`
	Limit         *int   `json:"limit"`
	Season        string `json:"season"`
}

func (r *Registry) getTopScorers(ctx context.Context, raw json.RawMessage) *models.ToolResult {
	var args topScorersArgs
	if err := decodeArgs(raw, &args); err != nil {
		return models.Failure(err)
	}
	if args.CompetitionID <= 0 {
		return models.Failure(&models.ValidationError{Field: "competition_id", Reason: "required positive integer"})
	}
	limit := 10
	if args.Limit != nil {
		limit = *args.Limit
	}
	if limit <= 0 {
		return models.Failure(&models.ValidationError{Field: "limit", Reason: "must be a positive integer"})
	}

	scorers, err := r.soccer.TopScorers(ctx, args.CompetitionID, limit, args.Season)
	if err != nil {
		return models.Failure(err)
	}
	if len(scorers) > limit {
		scorers = scorers[:limit]
	}

	data := map[string]interface{}{
		"competition_id": args.CompetitionID,
		"count":          len(scorers),
		"scorers":        scorers,
	}
	return models.Success(fmt.Sprintf("Top %d scorer(s) for competition %d", len(scorers), args.CompetitionID), data)
}
