package game

import (
	"time"
)

// Round 标识Sixth分类所属的轮次。
// 原始数据中两轮的分类是两个子类型，这里用一个判别字段代替。
type Round string

const (
	// RoundOne 表示第一轮
	RoundOne Round = "round_one"
	// RoundTwo 表示第二轮
	RoundTwo Round = "round_two"
)

const (
	// CategoriesPerRound 是每轮棋盘上的分类数
	CategoriesPerRound = 6
	// CluesPerCategory 是每个分类下的线索数
	CluesPerCategory = 5
	// SixthsPerGame 是一局比赛的分类记录总数（两轮各6个）
	SixthsPerGame = 2 * CategoriesPerRound
)

// --- 线索结果编码 ---
// 每条线索的结果用一个小整数记录。统计时只关心三类归并：
// 答对、答错、未作答/未翻开。

const (
	// ResultNotReached 表示线索没有被翻开
	ResultNotReached = 0
	// ResultRight 表示答对
	ResultRight = 1
	// ResultWrong 表示答错
	ResultWrong = 2
	// ResultPass 表示看到线索但没有作答
	ResultPass = 3
	// ResultDailyDoubleRight 表示Daily Double答对
	ResultDailyDoubleRight = 4
	// ResultDailyDoubleWrong 表示Daily Double答错
	ResultDailyDoubleWrong = 5
	// ResultReboundRight 表示抢答补救答对
	ResultReboundRight = 6
	// ResultReboundWrong 表示抢答补救答错
	ResultReboundWrong = 7

	// MaxResultCode 是合法结果编码的上界
	MaxResultCode = ResultReboundWrong
)

// IsRightResult 判断结果编码是否计为答对。
func IsRightResult(code int) bool {
	return code == ResultRight || code == ResultDailyDoubleRight || code == ResultReboundRight
}

// IsWrongResult 判断结果编码是否计为答错。
func IsWrongResult(code int) bool {
	return code == ResultWrong || code == ResultDailyDoubleWrong || code == ResultReboundWrong
}

// --- 持久化模型 ---
// 这些模型不使用软删除：show_date在用户内有唯一约束，
// 残留的软删除行会阻止同一日期的重新录入。

// Game 定义了一局比赛在数据库中的数据结构
type Game struct {
	ID        uint `gorm:"primarykey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	// UserID 是这局比赛的所有者
	UserID uint `gorm:"not null;uniqueIndex:idx_games_user_show_date"`

	// ShowDate 是节目播出日期，在用户内唯一。
	// 统一规整到UTC零点，只有日期部分有意义。
	ShowDate time.Time `gorm:"not null;uniqueIndex:idx_games_user_show_date"`

	// DatePlayed 是用户实际游玩的时间
	DatePlayed time.Time

	// PlayType 是比赛类型标签，取值见playtype.go
	PlayType string `gorm:"index"`

	// 各轮得分，允许为负
	RoundOneScore int
	RoundTwoScore int
	FinalResult   int

	// 一局比赛固定拥有12条Sixth记录和1条Final记录
	Sixths []Sixth `gorm:"constraint:OnDelete:CASCADE"`
	Final  Final   `gorm:"constraint:OnDelete:CASCADE"`
}

// Sixth 定义了一轮中单个分类的数据结构
type Sixth struct {
	ID        uint `gorm:"primarykey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	GameID uint `gorm:"not null;index"`

	// Round 标识所属轮次
	Round Round `gorm:"not null"`

	// BoardPosition 是分类在棋盘上的位置 (1-6)
	BoardPosition int `gorm:"not null"`

	// Title 是分类标题，可能内嵌换行实体
	Title string

	// TopicsString 是逗号分隔的子话题列表
	TopicsString string

	// Result1..Result5 是该分类下五条线索的结果编码
	Result1 int
	Result2 int
	Result3 int
	Result4 int
	Result5 int
}

// Results 按行序返回五条线索的结果编码。
func (s *Sixth) Results() [CluesPerCategory]int {
	return [CluesPerCategory]int{s.Result1, s.Result2, s.Result3, s.Result4, s.Result5}
}

// Final 定义了终局分类的数据结构，与Game一一对应
type Final struct {
	ID        uint `gorm:"primarykey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	GameID uint `gorm:"not null;uniqueIndex"`

	// CategoryTitle 是终局分类的标题
	CategoryTitle string

	// TopicsString 是逗号分隔的子话题列表
	TopicsString string

	// Result 是用户在终局的结果：正数计为答对，负数计为答错，零表示未作答
	Result int

	// 三位场上选手是否答对；nil表示未记录
	FirstRight  *bool
	SecondRight *bool
	ThirdRight  *bool
}

// ParseShowDate 将ISO日期字符串解析为规整后的播出日期。
func ParseShowDate(value string) (time.Time, error) {
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return parsed.UTC(), nil
}

// FormatShowDate 将播出日期格式化为ISO日期字符串。
func FormatShowDate(date time.Time) string {
	return date.Format("2006-01-02")
}

// datePlayedLayouts 是date_played字段接受的时间格式，按顺序尝试。
var datePlayedLayouts = []string{
	"2006-01-02 15:04",
	"2006-01-02 3:04pm",
	time.RFC3339,
	"2006-01-02",
}

// ParseDatePlayed 解析游玩时间字符串。
func ParseDatePlayed(value string) (time.Time, bool) {
	for _, layout := range datePlayedLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}
