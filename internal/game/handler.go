package game

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/SlpAus/jeopardy-stats-backend/internal/user"
	"github.com/gin-gonic/gin"
)

// RedateRequestBody 定义了重绑定日期请求体的JSON结构
type RedateRequestBody struct {
	OldDate string `json:"oldDate" binding:"required"`
	NewDate string `json:"newDate" binding:"required"`
}

// respondBindError 把JSON绑定阶段的失败映射为响应。
// 字段类型不匹配（如分数传了字符串）归入字段错误映射，
// 其余绑定失败仍按请求格式错误处理。
func respondBindError(c *gin.Context, err error) {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		c.JSON(http.StatusBadRequest, gin.H{"errors": gin.H{
			typeErr.Field: []string{fmt.Sprintf("is not a valid %s", typeErr.Type)},
		}})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
}

// SaveGameHandler 处理一局比赛的保存请求。
// 成功时返回比赛标识和13个子记录标识，失败时返回字段错误映射。
func SaveGameHandler(c *gin.Context) {
	currentUser := user.MustCurrentUser(c)

	var payload GamePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}

	view, err := SaveGame(currentUser.ID, &payload)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidDate):
			c.JSON(http.StatusBadRequest, gin.H{"date": []string{"Invalid date"}})
		case errors.Is(err, ErrInvalidDateChange):
			c.JSON(http.StatusBadRequest, gin.H{"date": []string{"Invalid date change"}})
		case errors.Is(err, ErrOwnership):
			c.JSON(http.StatusBadRequest, gin.H{"errors": []string{"ownership"}})
		default:
			if verr, ok := AsValidationError(err); ok {
				c.JSON(http.StatusBadRequest, gin.H{"errors": verr.Fields})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "保存比赛失败: " + err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"game_id": view.GameID, "ids": view.IDs})
}

// RedateGameHandler 处理比赛日期的重绑定请求。
func RedateGameHandler(c *gin.Context) {
	currentUser := user.MustCurrentUser(c)

	var body RedateRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": []string{"bad_date"}})
		return
	}

	err := RedateGame(currentUser.ID, body.OldDate, body.NewDate)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidDate):
			c.JSON(http.StatusBadRequest, gin.H{"errors": []string{"bad_date"}})
		case errors.Is(err, ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"errors": []string{"no_show"}})
		case errors.Is(err, ErrConflict):
			c.JSON(http.StatusConflict, gin.H{"errors": []string{"occupied"}})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "重绑定日期失败: " + err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GetGameHandler 返回指定日期的完整比赛数据，供编辑页回填。
func GetGameHandler(c *gin.Context) {
	currentUser := user.MustCurrentUser(c)

	detail, err := FetchByDate(currentUser.ID, c.Param("date"))
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidDate), errors.Is(err, ErrNotFound):
			// 与原接口一致：格式错误和查无比赛都按404处理
			c.JSON(http.StatusNotFound, gin.H{})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "查询比赛失败: " + err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, detail)
}

// DestroyGameHandler 删除指定日期的比赛。
func DestroyGameHandler(c *gin.Context) {
	currentUser := user.MustCurrentUser(c)

	err := DeleteGame(currentUser.ID, c.Param("date"))
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidDate):
			c.JSON(http.StatusBadRequest, gin.H{"errors": []string{"bad_date"}})
		case errors.Is(err, ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"errors": []string{"no_show"}})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "删除比赛失败: " + err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
