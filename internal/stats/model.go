package stats

import "github.com/SlpAus/jeopardy-stats-backend/internal/game"

// OutcomeCounts 是一组线索结果的三分类计数
type OutcomeCounts struct {
	Right int `json:"right"`
	Wrong int `json:"wrong"`
	Pass  int `json:"pass"`
}

// TopicStat 是单个话题的聚合结果
type TopicStat struct {
	Topic string `json:"topic"`
	OutcomeCounts
}

// RowStat 是棋盘上单个分类位置的聚合结果
type RowStat struct {
	Round         game.Round `json:"round"`
	BoardPosition int        `json:"board_position"`
	OutcomeCounts
}

// PlayTypeCount 是某一比赛类型下的比赛场数
type PlayTypeCount struct {
	PlayType string `json:"play_type"`
	Games    int    `json:"games"`
}

// ScoreSummary 是某一项得分的合计与均值
type ScoreSummary struct {
	Total int     `json:"total"`
	Mean  float64 `json:"mean"`
}

// ExtremeFinal 记录最好或最差的终局结果及其播出日期
type ExtremeFinal struct {
	Result   int    `json:"result"`
	ShowDate string `json:"show_date"`
}

// MultiGameSummary 是跨比赛的整体统计
type MultiGameSummary struct {
	GamesPlayed    int             `json:"games_played"`
	RoundOneScore  ScoreSummary    `json:"round_one_score"`
	RoundTwoScore  ScoreSummary    `json:"round_two_score"`
	FinalResult    ScoreSummary    `json:"final_result"`
	BestFinal      *ExtremeFinal   `json:"best_final"`
	WorstFinal     *ExtremeFinal   `json:"worst_final"`
	PlayTypeCounts []PlayTypeCount `json:"play_type_counts"`
}
