package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/parlaylab/sports-mcp/internal/models"
)

type oddsArgs struct {
	Sport      string `json:"sport"`
	Markets    string `json:"markets"`
	Regions    string `json:"regions"`
	OddsFormat string `json:"odds_format"`
}

func (a *oddsArgs) applyDefaults() {
	if a.Markets == "" {
		a.Markets = "h2h,spreads,totals"
	}
	if a.Regions == "" {
		a.Regions = "us"
	}
	if a.OddsFormat == "" {
		a.OddsFormat = "american"
	}
}

func (r *Registry) getOdds(ctx context.Context, raw json.RawMessage) *models.ToolResult {
	var args oddsArgs
	if err := decodeArgs(raw, &args); err != nil {
		return models.Failure(err)
	}
	if args.Sport == "" {
		return models.Failure(&models.ValidationError{Field: "sport", Reason: "required"})
	}
	args.applyDefaults()

	events, err := r.odds.Odds(ctx, args.Sport, args.Markets, args.Regions, args.OddsFormat)
	if err != nil {
		return models.Failure(err)
	}

	data := map[string]interface{}{
		"sport":   args.Sport,
		"markets": args.Markets,
		"count":   len(events),
		"events":  events,
	}
	return models.Success(fmt.Sprintf("Odds for %s: %d event(s)", args.Sport, len(events)), data)
}

type eventOddsArgs struct {
	oddsArgs
	EventID string `json:"event_id"`
}

func (r *Registry) getEventOdds(ctx context.Context, raw json.RawMessage) *models.ToolResult {
	var args eventOddsArgs
	if err := decodeArgs(raw, &args); err != nil {
		return models.Failure(err)
	}
	if args.Sport == "" {
		return models.Failure(&models.ValidationError{Field: "sport", Reason: "required"})
	}
	if args.EventID == "" {
		return models.Failure(&models.ValidationError{Field: "event_id", Reason: "required"})
	}
	if args.Markets == "" {
		return models.Failure(&models.ValidationError{Field: "markets", Reason: "required comma-separated market list"})
	}
	args.applyDefaults()

	event, err := r.odds.EventOdds(ctx, args.Sport, args.EventID, args.Markets, args.Regions, args.OddsFormat)
	if err != nil {
		return models.Failure(err)
	}

	props := pairPropOutcomes(event)

	data := map[string]interface{}{
		"event_id":      event.EventID,
		"home_team":     event.HomeTeam,
		"away_team":     event.AwayTeam,
		"commence_time": event.CommenceTime,
		"count":         len(props),
		"props":         props,
	}
	md := fmt.Sprintf("%s @ %s: %d prop line(s)", event.AwayTeam, event.HomeTeam, len(props))
	return models.Success(md, data)
}

// pairPropOutcomes groups player-prop outcomes by (bookmaker, market,
// player) and joins each group's Over and Under sides into one line.
// Outcomes without a counterpart side are dropped.
func pairPropOutcomes(event *models.OddsEvent) []models.PropLine {
	type groupKey struct {
		bookmaker string
		market    string
		player    string
	}
	type pair struct {
		over  *models.Outcome
		under *models.Outcome
	}

	groups := make(map[groupKey]*pair)
	order := make([]groupKey, 0)
	for _, bk := range event.Bookmakers {
		for _, mk := range bk.Markets {
			for i := range mk.Outcomes {
				out := mk.Outcomes[i]
				if out.Description == "" {
					continue
				}
				if out.Name != "Over" && out.Name != "Under" {
					continue
				}
				key := groupKey{bookmaker: bk.Title, market: mk.Key, player: out.Description}
				g, ok := groups[key]
				if !ok {
					g = &pair{}
					groups[key] = g
					order = append(order, key)
				}
				if out.Name == "Over" {
					g.over = &mk.Outcomes[i]
				} else {
					g.under = &mk.Outcomes[i]
				}
			}
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		if order[i].player != order[j].player {
			return order[i].player < order[j].player
		}
		if order[i].market != order[j].market {
			return order[i].market < order[j].market
		}
		return order[i].bookmaker < order[j].bookmaker
	})

	lines := make([]models.PropLine, 0, len(order))
	for _, key := range order {
		g := groups[key]
		if g.over == nil || g.under == nil {
			continue
		}
		lines = append(lines, models.PropLine{
			Player:     key.player,
			Market:     key.market,
			Bookmaker:  key.bookmaker,
			OverPrice:  g.over.Price,
			OverPoint:  g.over.Point,
			UnderPrice: g.under.Price,
			UnderPoint: g.under.Point,
		})
	}
	return lines
}
