package types

import "time"

type Direction string

const (
	Long  Direction = "Long"
	Short Direction = "Short"
)

// Trade is a completed trade as read from a broker export. Values are never
// edited after the parser creates them.
type Trade struct {
	ID            string    `json:"id"`
	Instrument    string    `json:"instrument"`
	Direction     Direction `json:"direction"`
	Quantity      float64   `json:"quantity"`
	Price         float64   `json:"price"`
	TakeProfit    float64   `json:"takeProfit"`
	StopLoss      float64   `json:"stopLoss"`
	GrossPnl      float64   `json:"grossPnl"`
	Fee           float64   `json:"fee"`
	Swap          float64   `json:"swap"`
	NetPnl        float64   `json:"netPnl"`
	Timestamp     time.Time `json:"timestamp"`
	TimestampText string    `json:"timestampText"`
	ExecutionType string    `json:"executionType,omitempty"`
	Status        string    `json:"status,omitempty"`
}

// NetOf is the only place net P&L is derived.
func NetOf(gross, fee, swap float64) float64 { return gross - fee + swap }

// FilterCriteria selects the working subset. A nil bound is open; an empty
// Direction or Instrument (or "all") imposes no constraint.
type FilterCriteria struct {
	Start      *time.Time `json:"start,omitempty"`
	End        *time.Time `json:"end,omitempty"`
	Direction  string     `json:"direction,omitempty"`
	Instrument string     `json:"instrument,omitempty"`
}

const All = "all"

type LoadReport struct {
	LoadID   string `json:"loadId"`
	Rows     int    `json:"rows"`
	Accepted int    `json:"accepted"`
	Skipped  int    `json:"skipped"`
	Pending  int    `json:"pending"`
}

type EquityPoint struct {
	Time            time.Time `json:"time"`
	TradeID         string    `json:"tradeId"`
	Equity          float64   `json:"equity"`
	Peak            float64   `json:"peak"`
	Drawdown        float64   `json:"drawdown"`
	DrawdownPercent float64   `json:"drawdownPercent"`
}

// MetricsSnapshot is computed in one pass from one filtered trade sequence and
// is never patched afterwards.
type MetricsSnapshot struct {
	TotalTrades int `json:"totalTrades"`
	Winners     int `json:"winners"`
	Losers      int `json:"losers"`

	TotalPnl    float64 `json:"totalPnl"`
	TotalFees   float64 `json:"totalFees"`
	TotalSwap   float64 `json:"totalSwap"`
	WinRate     float64 `json:"winRate"`
	LossRate    float64 `json:"lossRate"`
	AvgWin      float64 `json:"avgWin"`
	AvgLoss     float64 `json:"avgLoss"`
	LargestWin  float64 `json:"largestWin"`
	LargestLoss float64 `json:"largestLoss"`
	GrossProfit float64 `json:"grossProfit"`
	GrossLoss   float64 `json:"grossLoss"`

	ProfitFactor   float64 `json:"profitFactor"`
	RiskReward     float64 `json:"riskReward"`
	Expectancy     float64 `json:"expectancy"`
	RecoveryFactor float64 `json:"recoveryFactor"`

	EquityCurve        []EquityPoint `json:"equityCurve"`
	MaxDrawdown        float64       `json:"maxDrawdown"`
	MaxDrawdownPercent float64       `json:"maxDrawdownPercent"`

	AvgTradeDurationMinutes float64 `json:"avgTradeDurationMinutes"`

	BestTrades  []Trade `json:"bestTrades"`
	WorstTrades []Trade `json:"worstTrades"`

	MaxWinStreak  int `json:"maxWinStreak"`
	MaxLossStreak int `json:"maxLossStreak"`
	// CurrentStreak is positive for a running win streak, negative for losses.
	CurrentStreak int `json:"currentStreak"`
}

type MonthlyStat struct {
	Month   string  `json:"month"`
	Pnl     float64 `json:"pnl"`
	Trades  int     `json:"trades"`
	Wins    int     `json:"wins"`
	WinRate float64 `json:"winRate"`
}

type WeekdayStat struct {
	Day    string  `json:"day"`
	Pnl    float64 `json:"pnl"`
	Trades int     `json:"trades"`
}

type HourlyStat struct {
	Hour   int     `json:"hour"`
	Pnl    float64 `json:"pnl"`
	Trades int     `json:"trades"`
}

type DirectionStat struct {
	Direction Direction `json:"direction"`
	Pnl       float64   `json:"pnl"`
	Trades    int       `json:"trades"`
	WinRate   float64   `json:"winRate"`
}

type InstrumentStat struct {
	Instrument string  `json:"instrument"`
	Pnl        float64 `json:"pnl"`
	Trades     int     `json:"trades"`
	Wins       int     `json:"wins"`
	Losses     int     `json:"losses"`
	WinRate    float64 `json:"winRate"`
}

type Aggregations struct {
	Monthly     []MonthlyStat    `json:"monthly"`
	Weekday     []WeekdayStat    `json:"weekday"`
	Hourly      []HourlyStat     `json:"hourly"`
	Direction   []DirectionStat  `json:"direction"`
	Instruments []InstrumentStat `json:"instruments"`
}

// Dashboard is what one recompute hands to the presentation layer. Metrics is
// nil when the filtered subset is empty.
type Dashboard struct {
	Filter       FilterCriteria   `json:"filter"`
	Available    bool             `json:"available"`
	Metrics      *MetricsSnapshot `json:"metrics,omitempty"`
	Aggregations Aggregations     `json:"aggregations"`
}
