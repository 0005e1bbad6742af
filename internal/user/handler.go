package user

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterRequestBody 定义了注册请求体的JSON结构
type RegisterRequestBody struct {
	Email                string `json:"email" binding:"required"`
	Password             string `json:"password" binding:"required"`
	PasswordConfirmation string `json:"password_confirmation"`
}

// LoginRequestBody 定义了登录请求体的JSON结构
type LoginRequestBody struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// PlayTypesRequestBody 定义了更新比赛类型请求体的JSON结构。
// play_types必须是数组，其他形态在绑定阶段即被拒绝。
type PlayTypesRequestBody struct {
	PlayTypes []string `json:"play_types"`
}

// PasswordResetRequestBody 定义了发起密码重置的JSON结构
type PasswordResetRequestBody struct {
	Email string `json:"email" binding:"required"`
}

// NewPasswordRequestBody 定义了兑现重置令牌的JSON结构
type NewPasswordRequestBody struct {
	Password             string `json:"password" binding:"required"`
	PasswordConfirmation string `json:"password_confirmation"`
}

// RegisterHandler 处理新账号注册。
func RegisterHandler(c *gin.Context) {
	var body RegisterRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}

	newUser, err := Register(body.Email, body.Password, body.PasswordConfirmation)
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusBadRequest, gin.H{"errors": verr.Fields})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "注册失败: " + err.Error()})
		return
	}

	sessionToken, err := IssueSessionToken(newUser)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "签发会话失败: " + err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"token": sessionToken})
}

// LoginHandler 处理登录并签发会话令牌。
func LoginHandler(c *gin.Context) {
	var body LoginRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}

	found, err := Authenticate(body.Email, body.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "登录失败: " + err.Error()})
		return
	}

	sessionToken, err := IssueSessionToken(found)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "签发会话失败: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": sessionToken})
}

// UpdatePlayTypesHandler 更新当前账号启用的比赛类型集合。
func UpdatePlayTypesHandler(c *gin.Context) {
	currentUser := MustCurrentUser(c)

	var body PlayTypesRequestBody
	if err := c.ShouldBindJSON(&body); err != nil || body.PlayTypes == nil {
		c.JSON(http.StatusBadRequest, gin.H{})
		return
	}

	if err := UpdatePlayTypes(currentUser.ID, body.PlayTypes); err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusBadRequest, gin.H{"errors": verr.Fields})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "更新比赛类型失败: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// RequestPasswordResetHandler 发起密码重置。
// 无论邮箱是否存在都返回成功，令牌交由外部邮件系统投递。
func RequestPasswordResetHandler(c *gin.Context) {
	var body PasswordResetRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}

	resetToken, err := IssueResetToken(body.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "发起密码重置失败: " + err.Error()})
		return
	}
	if resetToken != "" {
		// TODO: 接入邮件投递后移除这行日志
		fmt.Printf("密码重置令牌已签发: %s\n", resetToken)
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ResetPasswordHandler 用重置令牌设置新密码。
func ResetPasswordHandler(c *gin.Context) {
	var body NewPasswordRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}

	err := ConsumeResetToken(c.Param("token"), body.Password, body.PasswordConfirmation)
	if err != nil {
		if errors.Is(err, ErrInvalidResetToken) {
			c.JSON(http.StatusNotFound, gin.H{"errors": []string{"invalid_token"}})
			return
		}
		var verr *ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusBadRequest, gin.H{"errors": verr.Fields})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "重置密码失败: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
