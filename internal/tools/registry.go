// Package tools implements the public contract of every named tool exposed
// through the JSON-RPC router. Handlers validate a typed argument struct,
// compose upstream calls, and return a ToolResult; they never share mutable
// state across requests.
package tools

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/parlaylab/sports-mcp/internal/config"
	"github.com/parlaylab/sports-mcp/internal/models"
	"github.com/parlaylab/sports-mcp/internal/providers"
	"github.com/parlaylab/sports-mcp/internal/services"
)

// ToolFunc is one tool handler. Handlers report every caller-visible outcome
// through the ToolResult; they do not return Go errors.
type ToolFunc func(ctx context.Context, args json.RawMessage) *models.ToolResult

// Registry maps stable tool names onto handlers and owns the provider
// clients the handlers fan out to.
type Registry struct {
	cfg      *config.Config
	mlb      *providers.MLBClient
	soccer   *providers.FootballDataClient
	live     *providers.SoccerDataClient
	odds     *providers.OddsClient
	llm      *providers.LLMClient
	breakers *services.CircuitBreakerService
	logger   *logrus.Logger
	tools    map[string]ToolFunc
}

// RegistryDeps carries the constructed clients into the registry. The live
// client may be nil when no SoccerDataAPI token is configured.
type RegistryDeps struct {
	Config   *config.Config
	MLB      *providers.MLBClient
	Soccer   *providers.FootballDataClient
	Live     *providers.SoccerDataClient
	Odds     *providers.OddsClient
	LLM      *providers.LLMClient
	Breakers *services.CircuitBreakerService
	Logger   *logrus.Logger
}

func NewRegistry(deps RegistryDeps) *Registry {
	r := &Registry{
		cfg:      deps.Config,
		mlb:      deps.MLB,
		soccer:   deps.Soccer,
		live:     deps.Live,
		odds:     deps.Odds,
		llm:      deps.LLM,
		breakers: deps.Breakers,
		logger:   deps.Logger,
	}
	r.tools = map[string]ToolFunc{
		"getMLBScheduleET":           r.getMLBScheduleET,
		"getMLBTeams":                r.getMLBTeams,
		"getMLBTeamRoster":           r.getMLBTeamRoster,
		"getMLBPlayerLastN":          r.getMLBPlayerLastN,
		"getMLBPitcherMatchup":       r.getMLBPitcherMatchup,
		"getMLBTeamForm":             r.getMLBTeamForm,
		"getMLBPlayerStreaks":        r.getMLBPlayerStreaks,
		"getMLBTeamScoringTrends":    r.getMLBTeamScoringTrends,
		"getCompetitions":            r.getCompetitions,
		"getCompetitionMatches":      r.getCompetitionMatches,
		"getCompetitionStandings":    r.getCompetitionStandings,
		"getCompetitionTeams":        r.getCompetitionTeams,
		"getTeamMatches":             r.getTeamMatches,
		"getMatchDetails":            r.getMatchDetails,
		"getTopScorers":              r.getTopScorers,
		"getOdds":                    r.getOdds,
		"getEventOdds":               r.getEventOdds,
		"getCustomChronulusAnalysis": r.getCustomChronulusAnalysis,
		"getCustomChronulusHealth":   r.getCustomChronulusHealth,
		"testCustomChronulus":        r.testCustomChronulus,
	}
	return r
}

// Lookup resolves a tool name.
func (r *Registry) Lookup(name string) (ToolFunc, bool) {
	fn, ok := r.tools[name]
	return fn, ok
}

// Names lists every registered tool, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
