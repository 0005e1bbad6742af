package stats

import (
	"net/http"

	"github.com/SlpAus/jeopardy-stats-backend/internal/user"
	"github.com/SlpAus/jeopardy-stats-backend/pkg/playtype"
	"github.com/gin-gonic/gin"
)

// resolvePlayTypes 解析统计接口的types查询参数。
// 未指定时回退到当前账号启用的类型集合；
// 示例路由的缺省口径固定为常规赛，与示例账号自身的偏好无关。
func resolvePlayTypes(c *gin.Context) []string {
	if parsed := playtype.Parse(c.Query("types")); parsed != nil {
		return parsed
	}
	if c.GetBool(user.SampleModeKey) {
		return []string{playtype.Regular}
	}
	return user.MustCurrentUser(c).EnabledPlayTypes()
}

// GetTopicsHandler 返回按话题分组的统计。
func GetTopicsHandler(c *gin.Context) {
	currentUser := user.MustCurrentUser(c)

	result, err := TopicsSummary(currentUser.ID, resolvePlayTypes(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "生成话题统计失败: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"topics": result})
}

// GetByRowHandler 返回按棋盘位置分组的统计。
func GetByRowHandler(c *gin.Context) {
	currentUser := user.MustCurrentUser(c)

	result, err := ResultsByRow(currentUser.ID, resolvePlayTypes(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "生成位置统计失败: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"rows": result})
}

// GetSummaryHandler 返回跨比赛的整体统计。
func GetSummaryHandler(c *gin.Context) {
	currentUser := user.MustCurrentUser(c)

	result, err := MultiGameSummaryFor(currentUser.ID, resolvePlayTypes(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "生成整体统计失败: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}
