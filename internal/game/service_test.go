package game

import (
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/SlpAus/jeopardy-stats-backend/internal/platform/database"
	"github.com/SlpAus/jeopardy-stats-backend/pkg/playtype"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDBSeq int64

// setupTestDB 为单个测试准备一个独立的内存数据库。
func setupTestDB(t *testing.T) {
	t.Helper()

	dsn := fmt.Sprintf("file:gametest%d?mode=memory&cache=shared", atomic.AddInt64(&testDBSeq, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("打开测试数据库失败: %v", err)
	}
	if err := db.AutoMigrate(&Game{}, &Sixth{}, &Final{}); err != nil {
		t.Fatalf("迁移测试数据库失败: %v", err)
	}
	database.DB = db
}

// validPayload 构造一份通过全部校验的保存请求。
func validPayload(showDate string) *GamePayload {
	p := &GamePayload{
		ShowDate:      showDate,
		PlayType:      playtype.Regular,
		RoundOneScore: 3400,
		RoundTwoScore: -3,
		FinalResult:   -1200,
	}
	for _, round := range []Round{RoundOne, RoundTwo} {
		for pos := 1; pos <= CategoriesPerRound; pos++ {
			p.Sixths = append(p.Sixths, SixthPayload{
				Round:         round,
				BoardPosition: pos,
				Title:         fmt.Sprintf("%s category %d", round, pos),
				TopicsString:  "History, science",
				Result1:       ResultRight,
				Result2:       ResultWrong,
				Result3:       ResultPass,
				Result4:       ResultNotReached,
				Result5:       ResultDailyDoubleRight,
			})
		}
	}
	p.Final = FinalPayload{CategoryTitle: "WORLD CAPITALS", TopicsString: "geography", Result: -1200}
	return p
}

func mustSave(t *testing.T, userID uint, payload *GamePayload) *GameView {
	t.Helper()
	view, err := SaveGame(userID, payload)
	if err != nil {
		t.Fatalf("保存比赛失败: %v", err)
	}
	return view
}

func countChildren(t *testing.T, gameID uint) (sixths, finals int64) {
	t.Helper()
	if err := database.DB.Model(&Sixth{}).Where("game_id = ?", gameID).Count(&sixths).Error; err != nil {
		t.Fatalf("统计Sixth记录失败: %v", err)
	}
	if err := database.DB.Model(&Final{}).Where("game_id = ?", gameID).Count(&finals).Error; err != nil {
		t.Fatalf("统计Final记录失败: %v", err)
	}
	return sixths, finals
}

func TestSaveGameCreatesThirteenChildren(t *testing.T) {
	setupTestDB(t)

	view := mustSave(t, 1, validPayload("2024-03-15"))

	if view.GameID == 0 {
		t.Fatal("期望返回比赛ID")
	}
	if len(view.IDs) != SixthsPerGame+1 {
		t.Fatalf("期望返回13个子记录ID，实际 %d", len(view.IDs))
	}
	for i, id := range view.IDs {
		if id == 0 {
			t.Errorf("第 %d 个子记录ID为零", i)
		}
	}

	sixths, finals := countChildren(t, view.GameID)
	if sixths != SixthsPerGame || finals != 1 {
		t.Fatalf("期望12+1条子记录，实际 %d+%d", sixths, finals)
	}

	var saved Game
	if err := database.DB.First(&saved, view.GameID).Error; err != nil {
		t.Fatalf("读取保存的比赛失败: %v", err)
	}
	if saved.RoundTwoScore != -3 {
		t.Errorf("负分应原样保存，实际 %d", saved.RoundTwoScore)
	}
}

func TestSaveGameRejectsMalformedDate(t *testing.T) {
	setupTestDB(t)

	_, err := SaveGame(1, validPayload("03/15/2024"))
	if !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("期望 ErrInvalidDate，实际 %v", err)
	}
}

func TestSaveGameValidationErrors(t *testing.T) {
	setupTestDB(t)

	tests := []struct {
		name   string
		mutate func(p *GamePayload)
		field  string
	}{
		{
			name:   "未知比赛类型",
			mutate: func(p *GamePayload) { p.PlayType = "exhibition" },
			field:  "play_type",
		},
		{
			name:   "游玩时间格式错误",
			mutate: func(p *GamePayload) { p.DatePlayed = "yesterday evening" },
			field:  "date_played",
		},
		{
			name:   "分类数量不足",
			mutate: func(p *GamePayload) { p.Sixths = p.Sixths[:11] },
			field:  "sixths_attributes",
		},
		{
			name:   "棋盘位置重复",
			mutate: func(p *GamePayload) { p.Sixths[1].BoardPosition = 1 },
			field:  "sixths_attributes",
		},
		{
			name:   "结果编码越界",
			mutate: func(p *GamePayload) { p.Sixths[0].Result3 = MaxResultCode + 1 },
			field:  "sixths_attributes",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := validPayload("2024-03-15")
			tt.mutate(payload)

			_, err := SaveGame(1, payload)
			verr, ok := AsValidationError(err)
			if !ok {
				t.Fatalf("期望字段级校验错误，实际 %v", err)
			}
			if len(verr.Fields[tt.field]) == 0 {
				t.Fatalf("期望字段 %q 上有错误，实际 %v", tt.field, verr.Fields)
			}
		})
	}

	// 校验失败时不应留下任何记录
	var count int64
	if err := database.DB.Model(&Game{}).Count(&count).Error; err != nil {
		t.Fatalf("统计比赛失败: %v", err)
	}
	if count != 0 {
		t.Fatalf("校验失败后不应有残留比赛，实际 %d", count)
	}
}

func TestSaveGameResaveWithIDsIsIdempotent(t *testing.T) {
	setupTestDB(t)

	first := mustSave(t, 1, validPayload("2024-03-15"))

	// 带上首次保存返回的全部ID重新提交
	resave := validPayload("2024-03-15")
	for i := range resave.Sixths {
		resave.Sixths[i].ID = &first.IDs[i]
	}
	resave.Final.ID = &first.IDs[SixthsPerGame]
	resave.Sixths[0].Title = "REVISED CATEGORY"
	resave.RoundOneScore = 5200

	second := mustSave(t, 1, resave)

	if second.GameID != first.GameID {
		t.Fatalf("更新不应创建新比赛: %d != %d", second.GameID, first.GameID)
	}
	for i := range first.IDs {
		if second.IDs[i] != first.IDs[i] {
			t.Fatalf("第 %d 个子记录ID发生变化: %d != %d", i, second.IDs[i], first.IDs[i])
		}
	}

	sixths, finals := countChildren(t, first.GameID)
	if sixths != SixthsPerGame || finals != 1 {
		t.Fatalf("更新后仍应是12+1条子记录，实际 %d+%d", sixths, finals)
	}

	var updated Game
	if err := database.DB.First(&updated, first.GameID).Error; err != nil {
		t.Fatalf("读取更新后的比赛失败: %v", err)
	}
	if updated.RoundOneScore != 5200 {
		t.Errorf("头部字段未更新，实际 %d", updated.RoundOneScore)
	}
}

func TestSaveGameResaveWithoutIDsReusesChildren(t *testing.T) {
	setupTestDB(t)

	first := mustSave(t, 1, validPayload("2024-03-15"))

	// 不带任何ID重新提交同一日期，子记录按棋盘位置匹配复用
	second := mustSave(t, 1, validPayload("2024-03-15"))

	if second.GameID != first.GameID {
		t.Fatalf("同一日期的重复保存不应创建新比赛")
	}
	for i := range first.IDs {
		if second.IDs[i] != first.IDs[i] {
			t.Fatalf("第 %d 个子记录应被复用: %d != %d", i, second.IDs[i], first.IDs[i])
		}
	}

	sixths, finals := countChildren(t, first.GameID)
	if sixths != SixthsPerGame || finals != 1 {
		t.Fatalf("重复保存后仍应是12+1条子记录，实际 %d+%d", sixths, finals)
	}
}

func TestSaveGameRejectsImpliedDateChange(t *testing.T) {
	setupTestDB(t)

	first := mustSave(t, 1, validPayload("2024-03-15"))

	// 带着已有比赛的子记录ID提交另一个日期
	moved := validPayload("2024-03-16")
	for i := range moved.Sixths {
		moved.Sixths[i].ID = &first.IDs[i]
	}
	moved.Final.ID = &first.IDs[SixthsPerGame]
	moved.RoundOneScore = 9999

	_, err := SaveGame(1, moved)
	if !errors.Is(err, ErrInvalidDateChange) {
		t.Fatalf("期望 ErrInvalidDateChange，实际 %v", err)
	}

	// 原比赛必须原封不动，新日期下不应出现比赛
	var original Game
	if err := database.DB.First(&original, first.GameID).Error; err != nil {
		t.Fatalf("读取原比赛失败: %v", err)
	}
	if original.RoundOneScore != 3400 {
		t.Errorf("被拒绝的保存不应修改原比赛，实际得分 %d", original.RoundOneScore)
	}
	if _, err := FetchByDate(1, "2024-03-16"); !errors.Is(err, ErrNotFound) {
		t.Errorf("新日期下不应出现比赛，实际 %v", err)
	}
}

func TestSaveGameDateChangeCheckPrecedesValidation(t *testing.T) {
	setupTestDB(t)

	first := mustSave(t, 1, validPayload("2024-03-15"))

	// 既隐式改日期又带非法字段时，日期变更错误优先
	moved := validPayload("2024-03-16")
	moved.Sixths[0].ID = &first.IDs[0]
	moved.PlayType = "exhibition"

	_, err := SaveGame(1, moved)
	if !errors.Is(err, ErrInvalidDateChange) {
		t.Fatalf("期望 ErrInvalidDateChange 优先于字段校验，实际 %v", err)
	}
}

func TestSaveGameRejectsForeignChildIDs(t *testing.T) {
	setupTestDB(t)

	first := mustSave(t, 1, validPayload("2024-03-15"))

	// 另一个用户引用了用户1的子记录ID
	stolen := validPayload("2024-03-15")
	stolen.Sixths[0].ID = &first.IDs[0]

	_, err := SaveGame(2, stolen)
	if !errors.Is(err, ErrOwnership) {
		t.Fatalf("期望 ErrOwnership，实际 %v", err)
	}
}

func TestSaveGameRejectsUnknownChildIDs(t *testing.T) {
	setupTestDB(t)

	ghost := uint(424242)
	payload := validPayload("2024-03-15")
	payload.Final.ID = &ghost

	_, err := SaveGame(1, payload)
	if !errors.Is(err, ErrOwnership) {
		t.Fatalf("期望 ErrOwnership，实际 %v", err)
	}
}

func TestSaveGameNotifiesAfterWrite(t *testing.T) {
	setupTestDB(t)

	var notified uint
	SetAfterWriteHook(func(userID uint) { notified = userID })
	defer SetAfterWriteHook(nil)

	mustSave(t, 7, validPayload("2024-03-15"))
	if notified != 7 {
		t.Fatalf("保存成功后应触发写入钩子，实际 %d", notified)
	}
}

func TestRedateGame(t *testing.T) {
	t.Run("日期格式错误优先", func(t *testing.T) {
		setupTestDB(t)
		mustSave(t, 1, validPayload("2024-03-15"))
		mustSave(t, 1, validPayload("2024-03-16"))

		// 即使目标日期已被占用，格式错误也先报
		if err := RedateGame(1, "not-a-date", "2024-03-16"); !errors.Is(err, ErrInvalidDate) {
			t.Fatalf("期望 ErrInvalidDate，实际 %v", err)
		}
		if err := RedateGame(1, "2024-03-15", "16/03/2024"); !errors.Is(err, ErrInvalidDate) {
			t.Fatalf("期望 ErrInvalidDate，实际 %v", err)
		}
	})

	t.Run("原日期无比赛优先于占用", func(t *testing.T) {
		setupTestDB(t)
		mustSave(t, 1, validPayload("2024-03-16"))

		if err := RedateGame(1, "2024-03-15", "2024-03-16"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("期望 ErrNotFound，实际 %v", err)
		}
	})

	t.Run("目标日期被占用", func(t *testing.T) {
		setupTestDB(t)
		mustSave(t, 1, validPayload("2024-03-15"))
		mustSave(t, 1, validPayload("2024-03-16"))

		if err := RedateGame(1, "2024-03-15", "2024-03-16"); !errors.Is(err, ErrConflict) {
			t.Fatalf("期望 ErrConflict，实际 %v", err)
		}
	})

	t.Run("重绑定成功", func(t *testing.T) {
		setupTestDB(t)
		view := mustSave(t, 1, validPayload("2024-03-15"))

		if err := RedateGame(1, "2024-03-15", "2024-04-01"); err != nil {
			t.Fatalf("重绑定失败: %v", err)
		}

		if _, err := FetchByDate(1, "2024-03-15"); !errors.Is(err, ErrNotFound) {
			t.Errorf("原日期下不应再有比赛，实际 %v", err)
		}
		detail, err := FetchByDate(1, "2024-04-01")
		if err != nil {
			t.Fatalf("新日期下应能读到比赛: %v", err)
		}
		if detail.GameID != view.GameID {
			t.Errorf("重绑定不应更换比赛: %d != %d", detail.GameID, view.GameID)
		}

		// 子记录保持完整
		sixths, finals := countChildren(t, view.GameID)
		if sixths != SixthsPerGame || finals != 1 {
			t.Errorf("重绑定后子记录应完整，实际 %d+%d", sixths, finals)
		}
	})

	t.Run("不同用户的同日期比赛互不干扰", func(t *testing.T) {
		setupTestDB(t)
		mustSave(t, 1, validPayload("2024-03-15"))
		mustSave(t, 2, validPayload("2024-04-01"))

		// 用户2在目标日期有比赛不构成冲突
		if err := RedateGame(1, "2024-03-15", "2024-04-01"); err != nil {
			t.Fatalf("其他用户的比赛不应阻止重绑定: %v", err)
		}
	})
}

func TestDeleteGameScopedToUser(t *testing.T) {
	setupTestDB(t)

	mine := mustSave(t, 1, validPayload("2024-03-15"))
	theirs := mustSave(t, 2, validPayload("2024-03-15"))

	if err := DeleteGame(1, "2024-03-15"); err != nil {
		t.Fatalf("删除失败: %v", err)
	}

	if _, err := FetchByDate(1, "2024-03-15"); !errors.Is(err, ErrNotFound) {
		t.Errorf("删除后不应再能读到比赛，实际 %v", err)
	}
	sixths, finals := countChildren(t, mine.GameID)
	if sixths != 0 || finals != 0 {
		t.Errorf("删除应级联清理子记录，实际残留 %d+%d", sixths, finals)
	}

	// 另一个用户同日期的比赛不受影响
	if _, err := FetchByDate(2, "2024-03-15"); err != nil {
		t.Errorf("其他用户的比赛不应被删除: %v", err)
	}
	sixths, finals = countChildren(t, theirs.GameID)
	if sixths != SixthsPerGame || finals != 1 {
		t.Errorf("其他用户的子记录应完整，实际 %d+%d", sixths, finals)
	}
}

func TestDeleteGameUnknownDate(t *testing.T) {
	setupTestDB(t)

	if err := DeleteGame(1, "2024-03-15"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("期望 ErrNotFound，实际 %v", err)
	}
	if err := DeleteGame(1, "bogus"); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("期望 ErrInvalidDate，实际 %v", err)
	}
}

func TestFetchByDateOrdersCategories(t *testing.T) {
	setupTestDB(t)

	mustSave(t, 1, validPayload("2024-03-15"))

	detail, err := FetchByDate(1, "2024-03-15")
	if err != nil {
		t.Fatalf("读取比赛失败: %v", err)
	}

	if len(detail.RoundOneCategories) != CategoriesPerRound ||
		len(detail.RoundTwoCategories) != CategoriesPerRound {
		t.Fatalf("两轮各应有6个分类，实际 %d/%d",
			len(detail.RoundOneCategories), len(detail.RoundTwoCategories))
	}
	for i, view := range detail.RoundOneCategories {
		if view.BoardPosition != i+1 {
			t.Errorf("第一轮第 %d 项位置应为 %d，实际 %d", i, i+1, view.BoardPosition)
		}
	}
	for i, view := range detail.RoundTwoCategories {
		if view.BoardPosition != i+1 {
			t.Errorf("第二轮第 %d 项位置应为 %d，实际 %d", i, i+1, view.BoardPosition)
		}
	}
	if detail.Final.ID == 0 {
		t.Error("终局视图缺失")
	}
	if detail.ShowDate != "2024-03-15" {
		t.Errorf("播出日期格式化错误: %q", detail.ShowDate)
	}
}
