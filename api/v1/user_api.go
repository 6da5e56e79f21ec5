package v1

import (
	"net/http"
	"strconv"

	"pixshelf/api/v1/request"
	"pixshelf/config"
	"pixshelf/internal/metrics"
	"pixshelf/middleware"
	"pixshelf/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// UserAPI exposes HTTP handlers for registration, login/logout and the
// password reset flow.
type UserAPI struct {
	service *service.UserService
}

// NewUserAPI wires the service layer into the HTTP handlers.
func NewUserAPI(s *service.UserService) *UserAPI {
	return &UserAPI{service: s}
}

// Register handles new account creation.
func (u *UserAPI) Register(c *gin.Context) {
	var req request.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	in := service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	}
	if req.Phone != "" {
		phone, err := strconv.ParseUint(req.Phone, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid phone number"})
			return
		}
		in.Phone = &phone
	}

	if err := u.service.Register(in); err != nil {
		if service.IsValidation(err) || service.IsConflict(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		logrus.WithError(err).Error("register failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "registration failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully"})
}

// Login validates credentials and sets the session cookie.
func (u *UserAPI) Login(c *gin.Context) {
	var req request.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		metrics.IncLogin("bad_request")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, token, err := u.service.Login(req.Identifier, req.Password)
	if err != nil {
		if service.IsAuth(err) {
			metrics.IncLogin("unauthorized")
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		metrics.IncLogin("internal_error")
		logrus.WithError(err).Error("login failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}

	metrics.IncLogin("success")
	setSessionCookie(c, token, int(config.GlobalConfig.JWT.Expire))
	c.JSON(http.StatusOK, gin.H{
		"message": "Logged in successfully",
		"user":    user,
	})
}

// Logout clears the session cookie. The token simply ages out; there is no
// server-side revocation.
func (u *UserAPI) Logout(c *gin.Context) {
	setSessionCookie(c, "", -1)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// Me returns the identity decoded from the session token.
func (u *UserAPI) Me(c *gin.Context) {
	id, ok := middleware.CurrentIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": gin.H{
		"id":       id.UserID,
		"username": id.Username,
		"email":    id.Email,
	}})
}

// VerifyIdentity is the first step of password reset: existence only, no
// password involved.
func (u *UserAPI) VerifyIdentity(c *gin.Context) {
	var req request.VerifyIdentityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	exists, err := u.service.VerifyIdentity(req.Identifier)
	if err != nil {
		logrus.WithError(err).Error("identity verification failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "verification failed"})
		return
	}
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "Email not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Email verified successfully"})
}

// ResetPassword overwrites the stored hash for the matched identifier.
func (u *UserAPI) ResetPassword(c *gin.Context) {
	var req request.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ok, err := u.service.ResetPassword(req.Identifier, req.Password)
	if err != nil {
		logrus.WithError(err).Error("password reset failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Password reset failed"})
		return
	}
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Password reset failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password reset successfully"})
}

// setSessionCookie writes (or clears, with maxAge < 0) the http-only,
// same-site-strict session cookie.
func setSessionCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.SessionCookie, token, maxAge, "/", "", false, true)
}
