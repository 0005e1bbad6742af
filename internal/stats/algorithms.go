package stats

import (
	"sort"
	"strings"

	"github.com/SlpAus/jeopardy-stats-backend/internal/game"
)

// --- 纯聚合计算 ---
// 这里的函数只做内存中的折叠计算，不访问数据库。
// 输入固定时输出是确定的：所有映射在输出前都会按键排序。

// addOutcome 把一个线索结果编码计入三分类计数。
func addOutcome(counts *OutcomeCounts, code int) {
	switch {
	case game.IsRightResult(code):
		counts.Right++
	case game.IsWrongResult(code):
		counts.Wrong++
	default:
		counts.Pass++
	}
}

// addFinalOutcome 把终局结果计入三分类计数。
// 终局记录的是净结果：正数计为答对，负数计为答错，零视为未作答。
func addFinalOutcome(counts *OutcomeCounts, result int) {
	switch {
	case result > 0:
		counts.Right++
	case result < 0:
		counts.Wrong++
	default:
		counts.Pass++
	}
}

// normalizeTopics 把逗号分隔的话题串拆分为规整后的话题列表。
// 话题统一小写、去除首尾空白，分类标题中的换行实体会被清理掉。
func normalizeTopics(raw string) []string {
	cleaned := strings.ReplaceAll(raw, "&#10;", " ")

	var topics []string
	for _, part := range strings.Split(cleaned, ",") {
		topic := strings.ToLower(strings.TrimSpace(part))
		if topic != "" {
			topics = append(topics, topic)
		}
	}
	return topics
}

// foldTopics 把一组比赛折叠为按话题排序的聚合结果。
func foldTopics(games []game.Game) []TopicStat {
	byTopic := make(map[string]*OutcomeCounts)

	bucket := func(topic string) *OutcomeCounts {
		counts, ok := byTopic[topic]
		if !ok {
			counts = &OutcomeCounts{}
			byTopic[topic] = counts
		}
		return counts
	}

	for i := range games {
		g := &games[i]
		for j := range g.Sixths {
			sixth := &g.Sixths[j]
			for _, topic := range normalizeTopics(sixth.TopicsString) {
				counts := bucket(topic)
				for _, code := range sixth.Results() {
					addOutcome(counts, code)
				}
			}
		}
		for _, topic := range normalizeTopics(g.Final.TopicsString) {
			addFinalOutcome(bucket(topic), g.Final.Result)
		}
	}

	topics := make([]string, 0, len(byTopic))
	for topic := range byTopic {
		topics = append(topics, topic)
	}
	sort.Strings(topics)

	out := make([]TopicStat, 0, len(topics))
	for _, topic := range topics {
		out = append(out, TopicStat{Topic: topic, OutcomeCounts: *byTopic[topic]})
	}
	return out
}

// foldRows 把一组比赛折叠为按棋盘位置排序的聚合结果。
// 输出固定为12行：第一轮位置1-6、第二轮位置1-6，没有数据的行为零值。
func foldRows(games []game.Game) []RowStat {
	index := func(round game.Round, pos int) int {
		base := 0
		if round == game.RoundTwo {
			base = game.CategoriesPerRound
		}
		return base + pos - 1
	}

	out := make([]RowStat, 2*game.CategoriesPerRound)
	for _, round := range []game.Round{game.RoundOne, game.RoundTwo} {
		for pos := 1; pos <= game.CategoriesPerRound; pos++ {
			out[index(round, pos)] = RowStat{Round: round, BoardPosition: pos}
		}
	}

	for i := range games {
		g := &games[i]
		for j := range g.Sixths {
			sixth := &g.Sixths[j]
			if sixth.BoardPosition < 1 || sixth.BoardPosition > game.CategoriesPerRound {
				continue
			}
			row := &out[index(sixth.Round, sixth.BoardPosition)]
			for _, code := range sixth.Results() {
				addOutcome(&row.OutcomeCounts, code)
			}
		}
	}

	return out
}

// foldSummary 把一组比赛折叠为整体统计。
// 空集合返回全零的汇总，不是错误。
func foldSummary(games []game.Game) *MultiGameSummary {
	summary := &MultiGameSummary{GamesPlayed: len(games)}

	byPlayType := make(map[string]int)
	for i := range games {
		g := &games[i]
		summary.RoundOneScore.Total += g.RoundOneScore
		summary.RoundTwoScore.Total += g.RoundTwoScore
		summary.FinalResult.Total += g.FinalResult
		byPlayType[g.PlayType]++

		if summary.BestFinal == nil || g.FinalResult > summary.BestFinal.Result {
			summary.BestFinal = &ExtremeFinal{Result: g.FinalResult, ShowDate: game.FormatShowDate(g.ShowDate)}
		}
		if summary.WorstFinal == nil || g.FinalResult < summary.WorstFinal.Result {
			summary.WorstFinal = &ExtremeFinal{Result: g.FinalResult, ShowDate: game.FormatShowDate(g.ShowDate)}
		}
	}

	if len(games) > 0 {
		n := float64(len(games))
		summary.RoundOneScore.Mean = float64(summary.RoundOneScore.Total) / n
		summary.RoundTwoScore.Mean = float64(summary.RoundTwoScore.Total) / n
		summary.FinalResult.Mean = float64(summary.FinalResult.Total) / n
	}

	playTypes := make([]string, 0, len(byPlayType))
	for playType := range byPlayType {
		playTypes = append(playTypes, playType)
	}
	sort.Strings(playTypes)
	for _, playType := range playTypes {
		summary.PlayTypeCounts = append(summary.PlayTypeCounts, PlayTypeCount{
			PlayType: playType,
			Games:    byPlayType[playType],
		})
	}

	return summary
}
