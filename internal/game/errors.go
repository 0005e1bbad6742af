package game

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// --- 错误分类 ---
// 组件边界上的所有失败都以类型化错误返回，由handler映射为HTTP状态码。

var (
	// ErrInvalidDate 表示日期字符串无法解析
	ErrInvalidDate = errors.New("bad_date")

	// ErrInvalidDateChange 表示保存流程试图隐式修改show_date。
	// 日期变更只能通过专门的redate操作完成。
	ErrInvalidDateChange = errors.New("invalid date change")

	// ErrNotFound 表示指定日期下没有该用户的比赛
	ErrNotFound = errors.New("no_show")

	// ErrConflict 表示目标日期已经存在该用户的比赛
	ErrConflict = errors.New("occupied")

	// ErrOwnership 表示子记录标识指向了别的比赛
	ErrOwnership = errors.New("ownership violation")
)

// ValidationErrors 将字段名映射到该字段的错误信息列表。
type ValidationErrors map[string][]string

// Add 为某个字段追加一条错误信息。
func (e ValidationErrors) Add(field, message string) {
	e[field] = append(e[field], message)
}

// ValidationError 把字段级错误包装为error，便于和哨兵错误一起沿调用链返回。
type ValidationError struct {
	Fields ValidationErrors
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fmt.Sprintf("validation failed: %s", strings.Join(fields, ", "))
}

// AsValidationError 从错误链中提取字段级错误。
func AsValidationError(err error) (*ValidationError, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}
