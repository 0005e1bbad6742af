package game

import (
	"errors"
	"fmt"
	"time"

	"github.com/SlpAus/jeopardy-stats-backend/internal/platform/database"
	"github.com/SlpAus/jeopardy-stats-backend/pkg/playtype"
	"gorm.io/gorm"
)

// --- 请求与视图结构 ---

// SixthPayload 是保存请求中单个分类的数据
type SixthPayload struct {
	ID            *uint  `json:"id"`
	BoardPosition int    `json:"board_position"`
	Title         string `json:"title"`
	TopicsString  string `json:"topics_string"`
	Result1       int    `json:"result1"`
	Result2       int    `json:"result2"`
	Result3       int    `json:"result3"`
	Result4       int    `json:"result4"`
	Result5       int    `json:"result5"`
	Round         Round  `json:"round"`
}

// FinalPayload 是保存请求中终局分类的数据
type FinalPayload struct {
	ID            *uint  `json:"id"`
	CategoryTitle string `json:"category_title"`
	TopicsString  string `json:"topics_string"`
	Result        int    `json:"result"`
	FirstRight    *bool  `json:"first_right"`
	SecondRight   *bool  `json:"second_right"`
	ThirdRight    *bool  `json:"third_right"`
}

// GamePayload 是一次完整保存请求的数据
type GamePayload struct {
	ShowDate      string         `json:"show_date" binding:"required"`
	DatePlayed    string         `json:"date_played"`
	PlayType      string         `json:"play_type"`
	RoundOneScore int            `json:"round_one_score"`
	RoundTwoScore int            `json:"round_two_score"`
	FinalResult   int            `json:"final_result"`
	Sixths        []SixthPayload `json:"sixths_attributes"`
	Final         FinalPayload   `json:"final_attributes"`
}

// GameView 是保存成功后返回给调用方的视图。
// IDs 按创建顺序排列：第一轮位置1-6、第二轮位置1-6、终局。
// 后续更新请求需要带上这些标识。
type GameView struct {
	GameID uint   `json:"game_id"`
	IDs    []uint `json:"ids"`
}

// --- 写入钩子 ---
// 比赛数据的任何写入都会使该用户的统计缓存过期。
// 由startup在装配阶段注入失效函数，避免game依赖stats。

var afterWriteHook func(userID uint)

// SetAfterWriteHook 注册比赛写入成功后的回调。
func SetAfterWriteHook(fn func(userID uint)) {
	afterWriteHook = fn
}

func notifyWrite(userID uint) {
	if afterWriteHook != nil {
		afterWriteHook(userID)
	}
}

// --- 保存流程 ---

// SaveGame 校验并持久化一局完整的比赛记录。
// 定位到已有比赛时走更新路径；否则创建新比赛。
// 比赛头部和13条子记录在一个事务内全部提交或全部回滚。
func SaveGame(userID uint, payload *GamePayload) (*GameView, error) {
	// 1. 日期格式错误优先于其他一切检查
	showDate, err := ParseShowDate(payload.ShowDate)
	if err != nil {
		return nil, err
	}

	var view *GameView
	txErr := database.DB.Transaction(func(tx *gorm.DB) error {
		// 2. 定位 (user, show_date) 下的已有比赛
		var located *Game
		var existing Game
		err := tx.Where("user_id = ? AND show_date = ?", userID, showDate).First(&existing).Error
		switch {
		case err == nil:
			located = &existing
		case errors.Is(err, gorm.ErrRecordNotFound):
			located = nil
		default:
			return err
		}

		// 3. 子记录标识只能指向定位到的比赛。
		// 指向其他日期的比赛意味着调用方在保存时偷改了show_date。
		impliedID, err := resolveImpliedGame(tx, userID, payload)
		if err != nil {
			return err
		}
		if impliedID != 0 {
			if located == nil || located.ID != impliedID {
				return ErrInvalidDateChange
			}
		}

		// 4. 字段级校验。日期变更检查在前，与原流程的判定顺序一致。
		if verrs := validatePayload(payload); len(verrs) > 0 {
			return &ValidationError{Fields: verrs}
		}

		// 5. 更新或创建比赛头部。更新路径绝不触碰show_date。
		target := located
		if target == nil {
			target = &Game{UserID: userID, ShowDate: showDate}
		}
		applyHeader(target, payload)
		if err := tx.Save(target).Error; err != nil {
			return err
		}

		// 6. 按固定顺序写入13条子记录
		ids, err := upsertChildren(tx, target, located != nil, payload)
		if err != nil {
			return err
		}

		view = &GameView{GameID: target.ID, IDs: ids}
		return nil
	})

	if txErr != nil {
		return nil, txErr
	}

	notifyWrite(userID)
	return view, nil
}

// resolveImpliedGame 收集payload中所有子记录标识指向的比赛ID。
// 标识不存在或指向其他用户的比赛时返回ErrOwnership；
// 多个标识指向不同比赛时同样按越权处理。
func resolveImpliedGame(tx *gorm.DB, userID uint, payload *GamePayload) (uint, error) {
	var impliedID uint

	record := func(gameID uint) error {
		if impliedID == 0 {
			impliedID = gameID
			return nil
		}
		if impliedID != gameID {
			return ErrOwnership
		}
		return nil
	}

	for _, sp := range payload.Sixths {
		if sp.ID == nil {
			continue
		}
		var sixth Sixth
		if err := tx.First(&sixth, *sp.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return 0, ErrOwnership
			}
			return 0, err
		}
		if err := record(sixth.GameID); err != nil {
			return 0, err
		}
	}

	if payload.Final.ID != nil {
		var final Final
		if err := tx.First(&final, *payload.Final.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return 0, ErrOwnership
			}
			return 0, err
		}
		if err := record(final.GameID); err != nil {
			return 0, err
		}
	}

	if impliedID == 0 {
		return 0, nil
	}

	var owner Game
	if err := tx.First(&owner, impliedID).Error; err != nil {
		return 0, err
	}
	if owner.UserID != userID {
		return 0, ErrOwnership
	}
	return impliedID, nil
}

// validatePayload 执行字段级校验，返回字段到错误信息的映射。
func validatePayload(payload *GamePayload) ValidationErrors {
	verrs := ValidationErrors{}

	if !playtype.IsValid(payload.PlayType) {
		verrs.Add("play_type", "is not a known play type")
	}

	if payload.DatePlayed != "" {
		if _, ok := ParseDatePlayed(payload.DatePlayed); !ok {
			verrs.Add("date_played", "is not a valid datetime")
		}
	}

	if len(payload.Sixths) != SixthsPerGame {
		verrs.Add("sixths_attributes", fmt.Sprintf("must contain exactly %d entries", SixthsPerGame))
		return verrs
	}

	// 每轮的位置1-6必须恰好各出现一次
	seen := map[Round]map[int]bool{
		RoundOne: make(map[int]bool, CategoriesPerRound),
		RoundTwo: make(map[int]bool, CategoriesPerRound),
	}
	for _, sp := range payload.Sixths {
		positions, ok := seen[sp.Round]
		if !ok {
			verrs.Add("sixths_attributes", fmt.Sprintf("unknown round %q", sp.Round))
			continue
		}
		if sp.BoardPosition < 1 || sp.BoardPosition > CategoriesPerRound {
			verrs.Add("sixths_attributes", fmt.Sprintf("board position %d is out of range", sp.BoardPosition))
			continue
		}
		if positions[sp.BoardPosition] {
			verrs.Add("sixths_attributes", fmt.Sprintf("duplicate %s board position %d", sp.Round, sp.BoardPosition))
			continue
		}
		positions[sp.BoardPosition] = true

		for _, code := range []int{sp.Result1, sp.Result2, sp.Result3, sp.Result4, sp.Result5} {
			if code < 0 || code > MaxResultCode {
				verrs.Add("sixths_attributes", fmt.Sprintf("result code %d is out of range", code))
			}
		}
	}
	for round, positions := range seen {
		if len(positions) != CategoriesPerRound && len(verrs["sixths_attributes"]) == 0 {
			verrs.Add("sixths_attributes", fmt.Sprintf("round %s must have %d categories", round, CategoriesPerRound))
		}
	}

	return verrs
}

// applyHeader 将payload中的头部字段应用到比赛记录上，不包括show_date。
func applyHeader(target *Game, payload *GamePayload) {
	if parsed, ok := ParseDatePlayed(payload.DatePlayed); ok {
		target.DatePlayed = parsed
	}
	target.PlayType = payload.PlayType
	target.RoundOneScore = payload.RoundOneScore
	target.RoundTwoScore = payload.RoundTwoScore
	target.FinalResult = payload.FinalResult
}

// upsertChildren 按第一轮1-6、第二轮1-6、终局的固定顺序写入子记录，
// 返回同序的13个标识。
// 更新路径上没带标识的子记录会匹配到棋盘同一位置的已有记录，
// 保证一局比赛永远恰好12+1条子记录。
func upsertChildren(tx *gorm.DB, target *Game, isUpdate bool, payload *GamePayload) ([]uint, error) {
	// 现有子记录索引，用于更新路径上的位置匹配
	existingByPos := make(map[Round]map[int]*Sixth)
	var existingFinal *Final
	if isUpdate {
		var sixths []Sixth
		if err := tx.Where("game_id = ?", target.ID).Find(&sixths).Error; err != nil {
			return nil, err
		}
		for i := range sixths {
			s := &sixths[i]
			if existingByPos[s.Round] == nil {
				existingByPos[s.Round] = make(map[int]*Sixth, CategoriesPerRound)
			}
			existingByPos[s.Round][s.BoardPosition] = s
		}
		var final Final
		err := tx.Where("game_id = ?", target.ID).First(&final).Error
		if err == nil {
			existingFinal = &final
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	payloadByPos := make(map[Round]map[int]*SixthPayload)
	for i := range payload.Sixths {
		sp := &payload.Sixths[i]
		if payloadByPos[sp.Round] == nil {
			payloadByPos[sp.Round] = make(map[int]*SixthPayload, CategoriesPerRound)
		}
		payloadByPos[sp.Round][sp.BoardPosition] = sp
	}

	ids := make([]uint, 0, SixthsPerGame+1)
	for _, round := range []Round{RoundOne, RoundTwo} {
		for pos := 1; pos <= CategoriesPerRound; pos++ {
			sp := payloadByPos[round][pos]

			var sixth Sixth
			if sp.ID != nil {
				if err := tx.First(&sixth, *sp.ID).Error; err != nil {
					return nil, err
				}
				if sixth.GameID != target.ID {
					return nil, ErrOwnership
				}
			} else if existing := existingByPos[round][pos]; existing != nil {
				sixth = *existing
			} else {
				sixth = Sixth{GameID: target.ID}
			}

			sixth.Round = round
			sixth.BoardPosition = pos
			sixth.Title = sp.Title
			sixth.TopicsString = sp.TopicsString
			sixth.Result1 = sp.Result1
			sixth.Result2 = sp.Result2
			sixth.Result3 = sp.Result3
			sixth.Result4 = sp.Result4
			sixth.Result5 = sp.Result5

			if err := tx.Save(&sixth).Error; err != nil {
				return nil, err
			}
			ids = append(ids, sixth.ID)
		}
	}

	var final Final
	fp := payload.Final
	if fp.ID != nil {
		if err := tx.First(&final, *fp.ID).Error; err != nil {
			return nil, err
		}
		if final.GameID != target.ID {
			return nil, ErrOwnership
		}
	} else if existingFinal != nil {
		final = *existingFinal
	} else {
		final = Final{GameID: target.ID}
	}

	final.CategoryTitle = fp.CategoryTitle
	final.TopicsString = fp.TopicsString
	final.Result = fp.Result
	final.FirstRight = fp.FirstRight
	final.SecondRight = fp.SecondRight
	final.ThirdRight = fp.ThirdRight

	if err := tx.Save(&final).Error; err != nil {
		return nil, err
	}
	ids = append(ids, final.ID)

	return ids, nil
}

// --- 日期重绑定 ---

// RedateGame 将一局已有比赛移动到新的播出日期。
// 检查顺序是固定的：格式错误 > 原日期无比赛 > 新日期被占用。
func RedateGame(userID uint, oldDate, newDate string) error {
	oldParsed, err := ParseShowDate(oldDate)
	if err != nil {
		return err
	}
	newParsed, err := ParseShowDate(newDate)
	if err != nil {
		return err
	}

	txErr := database.DB.Transaction(func(tx *gorm.DB) error {
		var located Game
		err := tx.Where("user_id = ? AND show_date = ?", userID, oldParsed).First(&located).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&Game{}).Where("user_id = ? AND show_date = ?", userID, newParsed).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrConflict
		}

		return tx.Model(&located).Update("show_date", newParsed).Error
	})

	if txErr != nil {
		return txErr
	}

	notifyWrite(userID)
	return nil
}

// --- 删除 ---

// DeleteGame 删除用户在指定日期的比赛及其全部子记录。
func DeleteGame(userID uint, date string) error {
	parsed, err := ParseShowDate(date)
	if err != nil {
		return err
	}

	txErr := database.DB.Transaction(func(tx *gorm.DB) error {
		var located Game
		err := tx.Where("user_id = ? AND show_date = ?", userID, parsed).First(&located).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		if err := tx.Where("game_id = ?", located.ID).Delete(&Sixth{}).Error; err != nil {
			return err
		}
		if err := tx.Where("game_id = ?", located.ID).Delete(&Final{}).Error; err != nil {
			return err
		}
		return tx.Delete(&located).Error
	})

	if txErr != nil {
		return txErr
	}

	notifyWrite(userID)
	return nil
}

// --- 查询 ---

// SixthView 是编辑页使用的单个分类视图
type SixthView struct {
	ID            uint   `json:"id"`
	BoardPosition int    `json:"board_position"`
	Title         string `json:"title"`
	TopicsString  string `json:"topics_string"`
	Result1       int    `json:"result1"`
	Result2       int    `json:"result2"`
	Result3       int    `json:"result3"`
	Result4       int    `json:"result4"`
	Result5       int    `json:"result5"`
}

// FinalView 是编辑页使用的终局视图
type FinalView struct {
	ID            uint   `json:"id"`
	CategoryTitle string `json:"category_title"`
	TopicsString  string `json:"topics_string"`
	Result        int    `json:"result"`
	FirstRight    *bool  `json:"first_right"`
	SecondRight   *bool  `json:"second_right"`
	ThirdRight    *bool  `json:"third_right"`
}

// GameDetail 是单局比赛的完整视图
type GameDetail struct {
	GameID             uint        `json:"game_id"`
	ShowDate           string      `json:"show_date"`
	DatePlayed         time.Time   `json:"date_played"`
	PlayType           string      `json:"play_type"`
	RoundOneScore      int         `json:"round_one_score"`
	RoundTwoScore      int         `json:"round_two_score"`
	FinalResult        int         `json:"final_result"`
	RoundOneCategories []SixthView `json:"round_one_categories"`
	RoundTwoCategories []SixthView `json:"round_two_categories"`
	Final              FinalView   `json:"final"`
}

// FetchByDate 返回用户在指定日期的完整比赛视图。
func FetchByDate(userID uint, date string) (*GameDetail, error) {
	parsed, err := ParseShowDate(date)
	if err != nil {
		return nil, err
	}

	var located Game
	err = database.DB.Preload("Sixths", func(db *gorm.DB) *gorm.DB {
		return db.Order("round asc, board_position asc")
	}).Preload("Final").
		Where("user_id = ? AND show_date = ?", userID, parsed).
		First(&located).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	detail := &GameDetail{
		GameID:        located.ID,
		ShowDate:      FormatShowDate(located.ShowDate),
		DatePlayed:    located.DatePlayed,
		PlayType:      located.PlayType,
		RoundOneScore: located.RoundOneScore,
		RoundTwoScore: located.RoundTwoScore,
		FinalResult:   located.FinalResult,
		Final: FinalView{
			ID:            located.Final.ID,
			CategoryTitle: located.Final.CategoryTitle,
			TopicsString:  located.Final.TopicsString,
			Result:        located.Final.Result,
			FirstRight:    located.Final.FirstRight,
			SecondRight:   located.Final.SecondRight,
			ThirdRight:    located.Final.ThirdRight,
		},
	}

	for _, sixth := range located.Sixths {
		view := SixthView{
			ID:            sixth.ID,
			BoardPosition: sixth.BoardPosition,
			Title:         sixth.Title,
			TopicsString:  sixth.TopicsString,
			Result1:       sixth.Result1,
			Result2:       sixth.Result2,
			Result3:       sixth.Result3,
			Result4:       sixth.Result4,
			Result5:       sixth.Result5,
		}
		switch sixth.Round {
		case RoundOne:
			detail.RoundOneCategories = append(detail.RoundOneCategories, view)
		case RoundTwo:
			detail.RoundTwoCategories = append(detail.RoundTwoCategories, view)
		}
	}

	return detail, nil
}
