package user

import (
	"net/http"
	"strings"

	"github.com/SlpAus/jeopardy-stats-backend/pkg/token"
	"github.com/gin-gonic/gin"
)

// CurrentUserKey 是Gin上下文中存放当前账号的键
const CurrentUserKey = "currentUser"

// SampleModeKey 是Gin上下文中标记示例路由请求的键
const SampleModeKey = "sampleMode"

// RequireUser 校验Authorization头中的会话令牌，
// 并把对应的账号放入Gin上下文。所有需要身份的路由都挂载它。
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		userID, err := token.ParseSessionToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		currentUser, err := GetByID(userID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		c.Set(CurrentUserKey, currentUser)
		c.Next()
	}
}

// LoadSampleUser 把配置的示例账号放入Gin上下文，供匿名浏览的统计路由使用。
func LoadSampleUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		sampleID := SampleUserID()
		if sampleID == 0 {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{})
			return
		}

		sampleUser, err := GetByID(sampleID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{})
			return
		}

		c.Set(CurrentUserKey, sampleUser)
		c.Set(SampleModeKey, true)
		c.Next()
	}
}

// MustCurrentUser 从Gin上下文中取出当前账号。
// 只能在RequireUser或LoadSampleUser之后的handler中调用。
func MustCurrentUser(c *gin.Context) *User {
	return c.MustGet(CurrentUserKey).(*User)
}
