package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/studycycle/internal/db"
	"github.com/studycycle/internal/service"
	"go.uber.org/zap"
)

const (
	sessionUserIDKey   = "user_id"
	sessionUsernameKey = "username"
)

type credentialsPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register 注册新用户并直接建立会话
func (a *API) Register(c *gin.Context) {
	var payload credentialsPayload
	if !bindJSON(c, &payload, "invalid request body") {
		return
	}

	user, err := a.auth.Register(c.Request.Context(), payload.Username, payload.Password)
	if err != nil {
		handleAuthError(c, err)
		return
	}

	a.log.Info("user registered", zap.Uint("user_id", user.ID))
	a.startSession(c, http.StatusCreated, user)
}

// Login 校验凭据，写入会话并签发访问令牌
func (a *API) Login(c *gin.Context) {
	var payload credentialsPayload
	if !bindJSON(c, &payload, "invalid request body") {
		return
	}

	user, err := a.auth.Authenticate(c.Request.Context(), payload.Username, payload.Password)
	if err != nil {
		handleAuthError(c, err)
		return
	}

	a.startSession(c, http.StatusOK, user)
}

// Logout 清除会话
func (a *API) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		c.Error(err)
		respondError(c, http.StatusInternalServerError, "failed to clear session")
		return
	}
	c.JSON(http.StatusOK, gin.H{"logged_out": true})
}

// Me 返回当前登录用户
func (a *API) Me(c *gin.Context) {
	user, err := a.auth.GetUser(c.Request.Context(), currentUserID(c))
	if err != nil {
		handleAuthError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": userToPayload(*user)})
}

// AuthRequired 接受会话 cookie 或 Bearer 令牌，解析出用户 ID
func (a *API) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID, ok := a.tokenUserID(c); ok {
			c.Set(userIDContextKey, userID)
			c.Next()
			return
		}

		session := sessions.Default(c)
		if userID, ok := session.Get(sessionUserIDKey).(uint); ok && userID != 0 {
			c.Set(userIDContextKey, userID)
			c.Next()
			return
		}

		respondError(c, http.StatusUnauthorized, "authentication required")
		c.Abort()
	}
}

func (a *API) tokenUserID(c *gin.Context) (uint, bool) {
	if a.tokens == nil {
		return 0, false
	}
	scheme, token, found := strings.Cut(c.GetHeader("Authorization"), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return 0, false
	}
	userID, err := a.tokens.Parse(strings.TrimSpace(token))
	if err != nil {
		return 0, false
	}
	return userID, true
}

func (a *API) startSession(c *gin.Context, status int, user *db.User) {
	session := sessions.Default(c)
	session.Set(sessionUserIDKey, user.ID)
	session.Set(sessionUsernameKey, user.Username)
	if err := session.Save(); err != nil {
		c.Error(err)
		respondError(c, http.StatusInternalServerError, "failed to save session")
		return
	}

	response := gin.H{"user": userToPayload(*user)}
	if a.tokens != nil {
		token, expiresAt, err := a.tokens.Issue(user.ID)
		if err != nil {
			c.Error(err)
			respondError(c, http.StatusInternalServerError, "failed to issue token")
			return
		}
		response["token"] = token
		response["expires_at"] = expiresAt.UTC().Format(time.RFC3339)
	}
	c.JSON(status, response)
}

func userToPayload(user db.User) gin.H {
	return gin.H{
		"id":         user.ID,
		"username":   user.Username,
		"created_at": user.CreatedAt,
	}
}

func handleAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUsernameRequired), errors.Is(err, service.ErrPasswordTooShort):
		respondError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrUsernameTaken):
		respondError(c, http.StatusConflict, "username already registered")
	case errors.Is(err, service.ErrInvalidCredentials):
		respondError(c, http.StatusUnauthorized, "invalid username or password")
	case errors.Is(err, service.ErrUserNotFound):
		respondError(c, http.StatusUnauthorized, "authentication required")
	default:
		c.Error(err)
		respondError(c, http.StatusInternalServerError, "operation failed")
	}
}
