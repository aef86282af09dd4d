package models

// Outcome is a single priced outcome inside a market. Point is present only
// for non-moneyline markets; Description carries the player name for props.
type Outcome struct {
	Name        string   `json:"name"`
	Price       float64  `json:"price"`
	Point       *float64 `json:"point,omitempty"`
	Description string   `json:"description,omitempty"`
}

// Market is one betting market offered by a bookmaker.
type Market struct {
	Key        string    `json:"key"`
	LastUpdate string    `json:"last_update,omitempty"`
	Outcomes   []Outcome `json:"outcomes"`
}

// Bookmaker is one book with its offered markets.
type Bookmaker struct {
	Key        string   `json:"key"`
	Title      string   `json:"title"`
	LastUpdate string   `json:"last_update,omitempty"`
	Markets    []Market `json:"markets"`
}

// OddsEvent is event-level betting data. CommenceTime stays in raw UTC ISO
// form, the one deliberate exception to ET rendering.
type OddsEvent struct {
	EventID      string      `json:"event_id"`
	SportKey     string      `json:"sport_key,omitempty"`
	CommenceTime string      `json:"commence_time"`
	HomeTeam     string      `json:"home_team"`
	AwayTeam     string      `json:"away_team"`
	Bookmakers   []Bookmaker `json:"bookmakers"`
}

// PropLine pairs the Over and Under outcomes of one (player, market) group
// at one bookmaker. Unpaired outcomes never become PropLines.
type PropLine struct {
	Player     string   `json:"player"`
	Market     string   `json:"market"`
	Bookmaker  string   `json:"bookmaker"`
	OverPrice  float64  `json:"over_price"`
	OverPoint  *float64 `json:"over_point,omitempty"`
	UnderPrice float64  `json:"under_price"`
	UnderPoint *float64 `json:"under_point,omitempty"`
}
