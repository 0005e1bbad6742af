package stats

import (
	"reflect"
	"testing"
	"time"

	"github.com/SlpAus/jeopardy-stats-backend/internal/game"
)

func TestAddOutcomeBuckets(t *testing.T) {
	tests := []struct {
		code int
		want OutcomeCounts
	}{
		{game.ResultNotReached, OutcomeCounts{Pass: 1}},
		{game.ResultRight, OutcomeCounts{Right: 1}},
		{game.ResultWrong, OutcomeCounts{Wrong: 1}},
		{game.ResultPass, OutcomeCounts{Pass: 1}},
		{game.ResultDailyDoubleRight, OutcomeCounts{Right: 1}},
		{game.ResultDailyDoubleWrong, OutcomeCounts{Wrong: 1}},
		{game.ResultReboundRight, OutcomeCounts{Right: 1}},
		{game.ResultReboundWrong, OutcomeCounts{Wrong: 1}},
	}

	for _, tt := range tests {
		var counts OutcomeCounts
		addOutcome(&counts, tt.code)
		if counts != tt.want {
			t.Errorf("编码 %d 归并错误: got %+v, want %+v", tt.code, counts, tt.want)
		}
	}
}

func TestAddFinalOutcome(t *testing.T) {
	tests := []struct {
		result int
		want   OutcomeCounts
	}{
		{12000, OutcomeCounts{Right: 1}},
		{-1, OutcomeCounts{Wrong: 1}},
		{0, OutcomeCounts{Pass: 1}},
	}

	for _, tt := range tests {
		var counts OutcomeCounts
		addFinalOutcome(&counts, tt.result)
		if counts != tt.want {
			t.Errorf("终局结果 %d 归并错误: got %+v, want %+v", tt.result, counts, tt.want)
		}
	}
}

func TestNormalizeTopics(t *testing.T) {
	tests := []struct {
		raw  string
		want []string
	}{
		{"", nil},
		{"History", []string{"history"}},
		{"  History , SCIENCE ", []string{"history", "science"}},
		{"wordplay&#10;before and after, rhymes", []string{"wordplay before and after", "rhymes"}},
		{", ,", nil},
	}

	for _, tt := range tests {
		got := normalizeTopics(tt.raw)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("normalizeTopics(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

// fixtureGame 构造一局内存中的比赛，供折叠函数直接使用。
func fixtureGame(showDate string, playType string, finalResult int) game.Game {
	parsed, _ := time.Parse("2006-01-02", showDate)

	g := game.Game{
		ShowDate:      parsed,
		PlayType:      playType,
		RoundOneScore: 1000,
		RoundTwoScore: 2000,
		FinalResult:   finalResult,
		Final: game.Final{
			TopicsString: "geography",
			Result:       finalResult,
		},
	}
	for _, round := range []game.Round{game.RoundOne, game.RoundTwo} {
		for pos := 1; pos <= game.CategoriesPerRound; pos++ {
			g.Sixths = append(g.Sixths, game.Sixth{
				Round:         round,
				BoardPosition: pos,
				TopicsString:  "history",
				Result1:       game.ResultRight,
				Result2:       game.ResultWrong,
				Result3:       game.ResultPass,
				Result4:       game.ResultNotReached,
				Result5:       game.ResultDailyDoubleRight,
			})
		}
	}
	return g
}

func TestFoldTopics(t *testing.T) {
	games := []game.Game{fixtureGame("2024-03-15", "regular", 5000)}

	got := foldTopics(games)

	// 每个分类贡献5条线索：2对、1错、2过；12个分类同一话题
	want := []TopicStat{
		{Topic: "geography", OutcomeCounts: OutcomeCounts{Right: 1}},
		{Topic: "history", OutcomeCounts: OutcomeCounts{Right: 24, Wrong: 12, Pass: 24}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("foldTopics = %+v, want %+v", got, want)
	}
}

func TestFoldRowsAlwaysTwelveRows(t *testing.T) {
	got := foldRows(nil)

	if len(got) != 2*game.CategoriesPerRound {
		t.Fatalf("空输入也应返回12行，实际 %d", len(got))
	}
	for i, row := range got {
		wantRound := game.RoundOne
		wantPos := i + 1
		if i >= game.CategoriesPerRound {
			wantRound = game.RoundTwo
			wantPos = i - game.CategoriesPerRound + 1
		}
		if row.Round != wantRound || row.BoardPosition != wantPos {
			t.Errorf("第 %d 行标识错误: %s/%d", i, row.Round, row.BoardPosition)
		}
		if row.OutcomeCounts != (OutcomeCounts{}) {
			t.Errorf("第 %d 行应为零值，实际 %+v", i, row.OutcomeCounts)
		}
	}
}

func TestFoldRowsAccumulates(t *testing.T) {
	games := []game.Game{
		fixtureGame("2024-03-15", "regular", 5000),
		fixtureGame("2024-03-16", "regular", -2000),
	}

	got := foldRows(games)

	// 两局比赛在每个位置上各贡献一组 2对/1错/2过
	want := OutcomeCounts{Right: 4, Wrong: 2, Pass: 4}
	for i, row := range got {
		if row.OutcomeCounts != want {
			t.Errorf("第 %d 行计数错误: got %+v, want %+v", i, row.OutcomeCounts, want)
		}
	}
}

func TestFoldSummaryEmpty(t *testing.T) {
	got := foldSummary(nil)

	if got.GamesPlayed != 0 {
		t.Errorf("空集合的局数应为0，实际 %d", got.GamesPlayed)
	}
	if got.RoundOneScore.Total != 0 || got.RoundOneScore.Mean != 0 {
		t.Errorf("空集合的得分应为零值: %+v", got.RoundOneScore)
	}
	if got.BestFinal != nil || got.WorstFinal != nil {
		t.Error("空集合不应有最好/最差终局")
	}
	if len(got.PlayTypeCounts) != 0 {
		t.Errorf("空集合不应有类型计数: %+v", got.PlayTypeCounts)
	}
}

func TestFoldSummary(t *testing.T) {
	games := []game.Game{
		fixtureGame("2024-03-15", "regular", 5000),
		fixtureGame("2024-03-16", "regular", -2000),
		fixtureGame("2024-03-17", "celebrity", 0),
	}

	got := foldSummary(games)

	if got.GamesPlayed != 3 {
		t.Fatalf("局数错误: %d", got.GamesPlayed)
	}
	if got.FinalResult.Total != 3000 {
		t.Errorf("终局总分错误: %d", got.FinalResult.Total)
	}
	if got.FinalResult.Mean != 1000 {
		t.Errorf("终局均分错误: %v", got.FinalResult.Mean)
	}
	if got.BestFinal == nil || got.BestFinal.Result != 5000 || got.BestFinal.ShowDate != "2024-03-15" {
		t.Errorf("最好终局错误: %+v", got.BestFinal)
	}
	if got.WorstFinal == nil || got.WorstFinal.Result != -2000 || got.WorstFinal.ShowDate != "2024-03-16" {
		t.Errorf("最差终局错误: %+v", got.WorstFinal)
	}

	wantCounts := []PlayTypeCount{
		{PlayType: "celebrity", Games: 1},
		{PlayType: "regular", Games: 2},
	}
	if !reflect.DeepEqual(got.PlayTypeCounts, wantCounts) {
		t.Errorf("类型计数错误: got %+v, want %+v", got.PlayTypeCounts, wantCounts)
	}
}
