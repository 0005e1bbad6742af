// Package playtype 定义比赛类型的固定枚举。
// 比赛类型用于筛选哪些比赛计入统计，user和game模块共享这份定义。
package playtype

import "strings"

// Regular 是常规赛，也是缺省类型
const Regular = "regular"

// all 按展示顺序列出所有合法的比赛类型。
var all = []string{
	Regular,
	"celebrity",
	"champions",
	"kids",
	"teen",
	"college",
	"teachers",
	"special",
}

// set 用于O(1)合法性检查
var set = func() map[string]bool {
	m := make(map[string]bool, len(all))
	for _, t := range all {
		m[t] = true
	}
	return m
}()

// All 返回所有合法比赛类型的副本。
func All() []string {
	out := make([]string, len(all))
	copy(out, all)
	return out
}

// IsValid 判断一个标签是否是已知的比赛类型。
func IsValid(tag string) bool {
	return set[tag]
}

// Parse 解析统计接口的types参数。
// "all"表示全部类型；逗号分隔的列表只保留合法项，
// 全部非法时得到空集合而不是nil；
// 只有空串返回nil，由调用方回退到自己的缺省口径。
func Parse(raw string) []string {
	if raw == "" {
		return nil
	}
	if raw == "all" {
		return All()
	}

	out := []string{}
	for _, part := range strings.Split(raw, ",") {
		tag := strings.TrimSpace(part)
		if IsValid(tag) {
			out = append(out, tag)
		}
	}
	return out
}

// Join 将类型集合序列化为逗号分隔的字符串，用于持久化。
func Join(tags []string) string {
	return strings.Join(tags, ",")
}

// Split 还原持久化的类型集合。
func Split(joined string) []string {
	if joined == "" {
		return nil
	}
	return strings.Split(joined, ",")
}
