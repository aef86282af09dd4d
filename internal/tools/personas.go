package tools

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Persona is one expert voice on the analysis panel. The templates are
// compiled in; swapping them means a rebuild.
type Persona struct {
	ID     string
	Name   string
	System string
	Angle  string
}

// personas in panel order. A request for n experts takes the first n.
var personas = []Persona{
	{
		ID:     "statistical",
		Name:   "Statistical Analyst",
		System: "You are a quantitative sports analyst. You weigh sample sizes, rate statistics, and regression to the mean. You distrust narratives.",
		Angle:  "Ground your estimate in the team and player statistics provided. Call out small samples explicitly.",
	},
	{
		ID:     "situational",
		Name:   "Situational Handicapper",
		System: "You are a situational handicapper. You focus on rest, travel, lineups, park factors, weather, and scheduling spots.",
		Angle:  "Weigh the situational context of this specific game over season-long averages.",
	},
	{
		ID:     "contrarian",
		Name:   "Contrarian",
		System: "You are a contrarian bettor. You look for reasons the obvious side is overvalued and fade public sentiment.",
		Angle:  "Argue against the consensus read of this matchup before settling on your own number.",
	},
	{
		ID:     "sharp",
		Name:   "Sharp Bettor",
		System: "You are a professional bettor. You think in closing-line value, market efficiency, and disciplined bankroll terms.",
		Angle:  "Estimate where the closing line should land and derive your probability from it.",
	},
	{
		ID:     "market",
		Name:   "Market Analyst",
		System: "You are a betting-market analyst. You read posted prices, line movement, and liquidity as the primary signal.",
		Angle:  "Treat the market data in the payload as the baseline and adjust only for information it has not priced.",
	},
}

// depthHints maps analysis depth onto a response length instruction and a
// token ceiling for the persona call.
var depthHints = map[string]struct {
	Hint      string
	MaxTokens int
}{
	"brief":         {"Answer in 2-3 sentences.", 300},
	"standard":      {"Answer in one short paragraph.", 700},
	"comprehensive": {"Answer in two or three paragraphs covering every relevant factor.", 1200},
}

// buildPersonaPrompt renders the user prompt for one persona call. The game
// payload is embedded as indented JSON so the model sees exactly what the
// caller sent.
func buildPersonaPrompt(p Persona, gameData map[string]interface{}, depth string) string {
	payload, err := json.MarshalIndent(gameData, "", "  ")
	if err != nil {
		payload = []byte("{}")
	}
	hint := depthHints[depth].Hint

	var b strings.Builder
	fmt.Fprintf(&b, "Analyze the following game from your perspective as %s.\n\n", p.Name)
	fmt.Fprintf(&b, "Game data:\n%s\n\n", payload)
	fmt.Fprintf(&b, "%s\n\n", p.Angle)
	fmt.Fprintf(&b, "State the probability that the HOME side wins as a decimal between 0 and 1 on the first line, then your reasoning. %s", hint)
	return b.String()
}

// probPattern matches the first probability-like token in a response: a
// bare decimal or a percentage.
var probPattern = regexp.MustCompile(`(?:0?\.\d{1,4})|(?:1\.0{1,2})|(?:\d{1,3}(?:\.\d+)?\s*%)`)

// extractProbability scans a persona response for its probability estimate,
// clamped to [0.01, 0.99]. The remainder of the response after the matched
// token is the reasoning.
func extractProbability(text string) (float64, string, bool) {
	loc := probPattern.FindStringIndex(text)
	if loc == nil {
		return 0, "", false
	}
	match := text[loc[0]:loc[1]]
	var p float64
	var err error
	if strings.HasSuffix(strings.TrimSpace(match), "%") {
		num := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(match), "%"))
		p, err = strconv.ParseFloat(num, 64)
		p /= 100
	} else {
		p, err = strconv.ParseFloat(match, 64)
	}
	if err != nil {
		return 0, "", false
	}
	if p < 0.01 {
		p = 0.01
	}
	if p > 0.99 {
		p = 0.99
	}
	return p, strings.TrimSpace(text[loc[1]:]), true
}
