package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/parlaylab/sports-mcp/internal/consensus"
	"github.com/parlaylab/sports-mcp/internal/models"
	"github.com/parlaylab/sports-mcp/internal/services"
)

type analysisArgs struct {
	GameData    map[string]interface{} `json:"game_data"`
	ExpertCount *int                   `json:"expert_count"`
	Depth       string                 `json:"depth"`
	MarketProb  *float64               `json:"market_prob"`
}

func (r *Registry) getCustomChronulusAnalysis(ctx context.Context, raw json.RawMessage) *models.ToolResult {
	var args analysisArgs
	if err := decodeArgs(raw, &args); err != nil {
		return models.Failure(err)
	}
	if len(args.GameData) == 0 {
		return models.Failure(&models.ValidationError{Field: "game_data", Reason: "required non-empty object"})
	}
	expertCount := len(personas)
	if args.ExpertCount != nil {
		expertCount = *args.ExpertCount
	}
	if expertCount < 1 || expertCount > len(personas) {
		return models.Failure(&models.ValidationError{
			Field:  "expert_count",
			Reason: fmt.Sprintf("must be between 1 and %d", len(personas)),
		})
	}
	depth := args.Depth
	if depth == "" {
		depth = "standard"
	}
	if _, ok := depthHints[depth]; !ok {
		return models.Failure(&models.ValidationError{Field: "depth", Reason: "must be brief, standard, or comprehensive"})
	}
	if args.MarketProb != nil && (*args.MarketProb <= 0 || *args.MarketProb >= 1) {
		return models.Failure(&models.ValidationError{Field: "market_prob", Reason: "must be strictly between 0 and 1"})
	}

	return r.runExpertPanel(ctx, args.GameData, expertCount, depth, args.MarketProb)
}

// runExpertPanel issues one LLM call per persona, tolerating individual
// failures while at least one expert produces a usable probability.
func (r *Registry) runExpertPanel(ctx context.Context, gameData map[string]interface{}, expertCount int, depth string, marketProb *float64) *models.ToolResult {
	if !r.cfg.LLMConfigured() {
		return models.Failure(&models.ConsensusError{Reason: "no LLM endpoint configured"})
	}

	opinions := make([]models.ExpertOpinion, 0, expertCount)
	expertErrs := make(map[string]string)
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for _, p := range personas[:expertCount] {
		p := p
		g.Go(func() error {
			prompt := buildPersonaPrompt(p, gameData, depth)
			text, err := r.llm.Complete(gctx, p.System, prompt, depthHints[depth].MaxTokens)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				expertErrs[p.ID] = err.Error()
				return nil
			}
			prob, reasoning, ok := extractProbability(text)
			if !ok {
				expertErrs[p.ID] = "no probability found in response"
				return nil
			}
			opinions = append(opinions, models.ExpertOpinion{
				ExpertID:    p.ID,
				Persona:     p.Name,
				Probability: prob,
				Reasoning:   reasoning,
			})
			return nil
		})
	}
	_ = g.Wait()

	// Panel order is deterministic regardless of completion order.
	sortOpinions(opinions)

	if len(opinions) == 0 {
		r.logger.WithFields(logrus.Fields{
			"component": "expert_panel",
			"requested": expertCount,
		}).Warn("Every expert call failed")
		return models.Failure(&models.ConsensusError{Reason: "every expert call failed"})
	}

	summary, err := consensus.FromOpinions(opinions, marketProb)
	if err != nil {
		return models.Failure(err)
	}

	data := map[string]interface{}{
		"opinions":          opinions,
		"consensus":         summary,
		"experts_requested": expertCount,
		"experts_succeeded": len(opinions),
		"errors":            expertErrs,
		"depth":             depth,
	}
	md := fmt.Sprintf("Consensus %s (mean %.3f from %d/%d expert(s))",
		summary.Recommendation, summary.Mean, len(opinions), expertCount)
	note := fmt.Sprintf("effective expert count: %d of %d requested", len(opinions), expertCount)
	return models.SuccessWithNote(md, data, note)
}

// sortOpinions restores configured persona order.
func sortOpinions(opinions []models.ExpertOpinion) {
	rank := make(map[string]int, len(personas))
	for i, p := range personas {
		rank[p.ID] = i
	}
	for i := 1; i < len(opinions); i++ {
		for j := i; j > 0 && rank[opinions[j].ExpertID] < rank[opinions[j-1].ExpertID]; j-- {
			opinions[j], opinions[j-1] = opinions[j-1], opinions[j]
		}
	}
}

func (r *Registry) getCustomChronulusHealth(ctx context.Context, raw json.RawMessage) *models.ToolResult {
	var args struct{}
	if err := decodeArgs(raw, &args); err != nil {
		return models.Failure(err)
	}

	personaIDs := make([]string, len(personas))
	for i, p := range personas {
		personaIDs[i] = p.ID
	}
	configured := r.cfg.LLMConfigured()
	data := map[string]interface{}{
		"configured":    configured,
		"model":         r.llm.Model(),
		"breaker_state": r.breakers.GetState(services.BreakerLLM).String(),
		"personas":      personaIDs,
	}
	status := "not configured"
	if configured {
		status = "configured"
	}
	return models.Success(fmt.Sprintf("Analysis engine %s, breaker %s", status, data["breaker_state"]), data)
}

type testChronulusArgs struct {
	ExpertCount *int `json:"expert_count"`
}

// sampleGameData is the canned payload the self-test runs the panel against.
var sampleGameData = map[string]interface{}{
	"sport":     "baseball_mlb",
	"home_team": "New York Yankees",
	"away_team": "Boston Red Sox",
	"home_record": map[string]interface{}{
		"wins": 82, "losses": 58, "streak": "W4",
	},
	"away_record": map[string]interface{}{
		"wins": 74, "losses": 66, "streak": "L2",
	},
	"market": map[string]interface{}{
		"home_moneyline": -150,
		"away_moneyline": 130,
	},
}

func (r *Registry) testCustomChronulus(ctx context.Context, raw json.RawMessage) *models.ToolResult {
	var args testChronulusArgs
	if err := decodeArgs(raw, &args); err != nil {
		return models.Failure(err)
	}
	expertCount := 2
	if args.ExpertCount != nil {
		expertCount = *args.ExpertCount
	}
	if expertCount < 1 || expertCount > len(personas) {
		return models.Failure(&models.ValidationError{
			Field:  "expert_count",
			Reason: fmt.Sprintf("must be between 1 and %d", len(personas)),
		})
	}

	res := r.runExpertPanel(ctx, sampleGameData, expertCount, "brief", nil)
	if res.OK {
		res.ContentMD = "Self-test passed: " + res.ContentMD
	}
	return res
}
