package auth

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"bookreviews/internal/web"
	"bookreviews/pkg/logger"
)

const (
	msgEnterUsername      = "Please enter username"
	msgEnterPassword      = "Please enter password"
	msgUsernameExists     = "This username already exists"
	msgPasswordMismatch   = "Password and confirmation are not matching"
	msgInvalidCredentials = "Invalid username and/or password"
	msgPasswordTooLong    = "Password must be at most 72 bytes"
	msgInternal           = "Something went wrong, please try again"
)

type Handler struct {
	Repo     *Repo
	Sessions *Sessions
	HashCost int
}

func NewHandler(repo *Repo, sessions *Sessions) *Handler {
	return &Handler{Repo: repo, Sessions: sessions, HashCost: bcrypt.DefaultCost}
}

func (h *Handler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/register", h.registerForm)
	r.POST("/register", h.register)
	r.GET("/login", h.loginForm)
	r.POST("/login", h.login)
	r.GET("/logout", h.logout)
}

func (h *Handler) registerForm(c *gin.Context) {
	web.Render(c, http.StatusOK, "register.html", nil)
}

func (h *Handler) register(c *gin.Context) {
	username := strings.TrimSpace(c.PostForm("username"))
	password := c.PostForm("password")

	if username == "" {
		web.Error(c, http.StatusBadRequest, msgEnterUsername)
		return
	}
	if password == "" {
		web.Error(c, http.StatusBadRequest, msgEnterPassword)
		return
	}

	exists, err := h.Repo.UsernameExists(c.Request.Context(), username)
	if err != nil {
		logger.Log.WithError(err).Error("register: username lookup failed")
		web.Error(c, http.StatusInternalServerError, msgInternal)
		return
	}
	if exists {
		web.Error(c, http.StatusConflict, msgUsernameExists)
		return
	}

	if password != c.PostForm("confirmation") {
		web.Error(c, http.StatusBadRequest, msgPasswordMismatch)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.HashCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			web.Error(c, http.StatusBadRequest, msgPasswordTooLong)
			return
		}
		logger.Log.WithError(err).Error("register: hash failed")
		web.Error(c, http.StatusInternalServerError, msgInternal)
		return
	}

	u, err := h.Repo.CreateUser(c.Request.Context(), username, string(hash))
	if err != nil {
		if errors.Is(err, ErrUsernameTaken) {
			web.Error(c, http.StatusConflict, msgUsernameExists)
			return
		}
		logger.Log.WithError(err).Error("register: create user failed")
		web.Error(c, http.StatusInternalServerError, msgInternal)
		return
	}

	// auto-login
	if _, err := h.Sessions.Start(c, u); err != nil {
		logger.Log.WithError(err).Error("register: start session failed")
		web.Error(c, http.StatusInternalServerError, msgInternal)
		return
	}

	logger.Log.WithField("username", u.Username).Info("user registered")
	c.Redirect(http.StatusSeeOther, "/search/"+url.PathEscape(u.Username))
}

func (h *Handler) loginForm(c *gin.Context) {
	web.Render(c, http.StatusOK, "login.html", nil)
}

func (h *Handler) login(c *gin.Context) {
	// forget any user login
	if err := h.Sessions.End(c); err != nil {
		logger.Log.WithError(err).Warn("login: clear previous session failed")
	}
	c.Set(web.CtxUsernameKey, "")

	username := strings.TrimSpace(c.PostForm("username"))
	password := c.PostForm("password")
	if username == "" {
		web.Error(c, http.StatusBadRequest, msgEnterUsername)
		return
	}
	if password == "" {
		web.Error(c, http.StatusBadRequest, msgEnterPassword)
		return
	}

	u, err := h.Repo.GetByUsername(c.Request.Context(), username)
	if err != nil {
		logger.Log.WithError(err).Error("login: user lookup failed")
		web.Error(c, http.StatusInternalServerError, msgInternal)
		return
	}
	// don't reveal which part failed
	if u == nil {
		web.Error(c, http.StatusUnauthorized, msgInvalidCredentials)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)); err != nil {
		web.Error(c, http.StatusUnauthorized, msgInvalidCredentials)
		return
	}

	if _, err := h.Sessions.Start(c, u); err != nil {
		logger.Log.WithError(err).Error("login: start session failed")
		web.Error(c, http.StatusInternalServerError, msgInternal)
		return
	}

	c.Redirect(http.StatusSeeOther, "/search/"+url.PathEscape(u.Username))
}

func (h *Handler) logout(c *gin.Context) {
	if err := h.Sessions.End(c); err != nil {
		logger.Log.WithError(err).Warn("logout: delete session failed")
	}
	c.Redirect(http.StatusSeeOther, "/")
}
