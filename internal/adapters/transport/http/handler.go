package http

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/osavchuk/contacts-api/internal/adapters/transport/http/dto"
	"github.com/osavchuk/contacts-api/internal/adapters/transport/http/middleware"
	"github.com/osavchuk/contacts-api/internal/app/authz"
	appcontacts "github.com/osavchuk/contacts-api/internal/app/contacts"
	"github.com/osavchuk/contacts-api/internal/app/ratelimit"
	appusers "github.com/osavchuk/contacts-api/internal/app/users"
	customErrors "github.com/osavchuk/contacts-api/internal/domain/contacts/errors"
	"github.com/osavchuk/contacts-api/internal/domain/contacts/model"
	"github.com/osavchuk/contacts-api/internal/domain/contacts/repo"
)

const maxAvatarBytes = 5 << 20

// Sender is the outbound-mail boundary the handler needs; delivery happens in
// a goroutine and never blocks or fails the response.
type Sender interface {
	Send(recipient, subject, link string) error
}

type Handler struct {
	users    appusers.Service
	contacts appcontacts.Service
	mailer   Sender
	log      *zap.Logger
}

func NewHandler(us appusers.Service, cs appcontacts.Service, mailer Sender, log *zap.Logger) *Handler {
	return &Handler{users: us, contacts: cs, mailer: mailer, log: log}
}

// Register wires every route. The pipeline guards all /users and /contacts
// routes; the verified gate is added for /contacts and the admin gate for the
// admin subtree; meLimiter is the per-principal sliding window on /users/me.
func (h *Handler) Register(r *gin.Engine, pipeline *authz.Pipeline, meLimiter *ratelimit.SlidingWindow) {
	auth := middleware.Auth(pipeline, h.log)

	ag := r.Group("/auth")
	{
		ag.POST("/register", h.register)
		ag.POST("/login", h.login)
		ag.POST("/refresh", h.refresh)
		ag.GET("/verify-email", h.verifyEmail)
		ag.POST("/forgot-password", h.forgotPassword)
		ag.POST("/reset-password", h.resetPassword)
	}

	ug := r.Group("/users")
	{
		ug.GET("/default-avatar", h.defaultAvatar)

		ug.GET("/me", auth, middleware.RateLimitPrincipal(meLimiter), h.me)
		ug.POST("/me/avatar", auth, h.uploadAvatar)

		admin := ug.Group("/admin", auth, middleware.RequireRole(model.RoleAdmin))
		admin.POST("/default-avatar", h.setDefaultAvatar)
		admin.POST("/:id/role", h.setRole)
		admin.POST("/:id/active", h.setActive)
	}

	cg := r.Group("/contacts", auth, middleware.RequireVerified())
	{
		cg.POST("", h.createContact)
		cg.GET("", h.listContacts)
		cg.GET("/birthdays/upcoming", h.upcomingBirthdays)
		cg.GET("/:id", h.getContact)
		cg.PUT("/:id", h.updateContact)
		cg.DELETE("/:id", h.deleteContact)
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

/* ───────────────────────────── auth ───────────────────────────── */

func (h *Handler) register(c *gin.Context) {
	var body dto.RegisterDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, verifyToken, err := h.users.Register(c.Request.Context(), body)
	if err != nil {
		h.handleError(c, err)
		return
	}

	link := buildLink(c, "/auth/verify-email", verifyToken)
	c.Header("X-Verify-Email", link)
	go func() {
		if err := h.mailer.Send(user.Email, "Verify your email", link); err != nil {
			h.log.Warn("verification mail not delivered", zap.Error(err))
		}
	}()

	c.JSON(http.StatusCreated, toUserOut(user))
}

func (h *Handler) login(c *gin.Context) {
	var body dto.LoginDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pair, err := h.users.Login(c.Request.Context(), body)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTokenOut(pair))
}

func (h *Handler) refresh(c *gin.Context) {
	var body dto.RefreshDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pair, err := h.users.Refresh(c.Request.Context(), body)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTokenOut(pair))
}

func (h *Handler) verifyEmail(c *gin.Context) {
	raw := c.Query("token")
	if raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token is required"})
		return
	}
	if err := h.users.VerifyEmail(c.Request.Context(), raw); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"detail": "email verified"})
}

func (h *Handler) forgotPassword(c *gin.Context) {
	var body dto.ForgotPasswordDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resetToken, err := h.users.ForgotPassword(c.Request.Context(), body)
	if err != nil && !customErrors.IsNotFound(err) {
		h.handleError(c, err)
		return
	}
	if err == nil {
		link := buildLink(c, "/auth/reset-password", resetToken)
		go func() {
			if err := h.mailer.Send(body.Email, "Reset your password", link); err != nil {
				h.log.Warn("reset mail not delivered", zap.Error(err))
			}
		}()
	}
	// an unknown email gets the same answer so accounts cannot be probed
	c.JSON(http.StatusOK, gin.H{"detail": "if the email exists, a reset link will be sent"})
}

func (h *Handler) resetPassword(c *gin.Context) {
	var body dto.ResetPasswordDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.users.ResetPassword(c.Request.Context(), body); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"detail": "password updated"})
}

/* ───────────────────────────── users ───────────────────────────── */

func (h *Handler) me(c *gin.Context) {
	c.JSON(http.StatusOK, toUserOut(middleware.Principal(c)))
}

func (h *Handler) uploadAvatar(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	if file.Size > maxAvatarBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file too large"})
		return
	}

	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read file"})
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read file"})
		return
	}

	user, err := h.users.UpdateAvatar(c.Request.Context(), middleware.Principal(c).ID, data)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toUserOut(user))
}

func (h *Handler) defaultAvatar(c *gin.Context) {
	url, err := h.users.DefaultAvatar(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

func (h *Handler) setDefaultAvatar(c *gin.Context) {
	var body dto.DefaultAvatarDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.users.SetDefaultAvatar(c.Request.Context(), body.URL); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"detail": "default avatar updated", "url": body.URL})
}

func (h *Handler) setRole(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var body dto.SetRoleDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.users.SetRole(c.Request.Context(), id, model.Role(body.Role)); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"detail": "role updated"})
}

func (h *Handler) setActive(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var body dto.SetActiveDTO
	if err := c.ShouldBindJSON(&body); err != nil || body.Active == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "active is required"})
		return
	}
	if err := h.users.SetActive(c.Request.Context(), id, *body.Active); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"detail": "active flag updated"})
}

/* ──────────────────────────── contacts ──────────────────────────── */

func (h *Handler) createContact(c *gin.Context) {
	var body dto.ContactCreateDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	created, err := h.contacts.Create(c.Request.Context(), middleware.Principal(c).ID, body)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toContactOut(created))
}

func (h *Handler) listContacts(c *gin.Context) {
	skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	filter := repo.ContactFilter{
		FirstName: c.Query("first_name"),
		LastName:  c.Query("last_name"),
		Email:     c.Query("email"),
	}
	out, err := h.contacts.List(c.Request.Context(), middleware.Principal(c).ID, skip, limit, filter)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toContactList(out))
}

func (h *Handler) getContact(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	contact, err := h.contacts.Get(c.Request.Context(), middleware.Principal(c).ID, id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toContactOut(contact))
}

func (h *Handler) updateContact(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var body dto.ContactUpdateDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	updated, err := h.contacts.Update(c.Request.Context(), middleware.Principal(c).ID, id, body)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toContactOut(updated))
}

func (h *Handler) deleteContact(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.contacts.Delete(c.Request.Context(), middleware.Principal(c).ID, id); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) upcomingBirthdays(c *gin.Context) {
	days, _ := strconv.Atoi(c.DefaultQuery("days", "7"))
	out, err := h.contacts.UpcomingBirthdays(c.Request.Context(), middleware.Principal(c).ID, days)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toContactList(out))
}

/* ───────────────────────────── shared ───────────────────────────── */

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case customErrors.IsRateLimited(err):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
	case customErrors.IsUnauthenticated(err):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
	case customErrors.IsForbidden(err):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case customErrors.IsAlreadyExists(err):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case customErrors.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case customErrors.IsInvalidCredentials(err):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
	case customErrors.IsInvalidArgument(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.log.Error("internal error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func pathID(c *gin.Context) (uint, bool) {
	id64, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad id"})
		return 0, false
	}
	return uint(id64), true
}

func buildLink(c *gin.Context, path, token string) string {
	scheme := c.GetHeader("X-Forwarded-Proto")
	if scheme == "" {
		scheme = "http"
	}
	host := c.GetHeader("X-Forwarded-Host")
	if host == "" {
		host = c.Request.Host
	}
	return scheme + "://" + host + path + "?token=" + token
}

func toUserOut(u model.User) dto.UserOut {
	return dto.UserOut{
		ID:         u.ID,
		Email:      u.Email,
		IsActive:   u.IsActive,
		IsVerified: u.IsVerified,
		Role:       string(u.Role),
		AvatarURL:  u.AvatarURL,
	}
}

func toTokenOut(p model.TokenPair) dto.TokenOut {
	return dto.TokenOut{
		AccessToken:  p.AccessToken,
		TokenType:    "bearer",
		RefreshToken: p.RefreshToken,
		ExpiresIn:    int(p.AccessTTL.Seconds()),
	}
}

func toContactOut(c model.Contact) dto.ContactOut {
	return dto.ContactOut{
		ID:        c.ID,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Email:     c.Email,
		Phone:     c.Phone,
		Birthday:  c.Birthday.Format("2006-01-02"),
		Extra:     c.Extra,
		OwnerID:   c.OwnerID,
	}
}

func toContactList(in []model.Contact) []dto.ContactOut {
	out := make([]dto.ContactOut, 0, len(in))
	for _, c := range in {
		out = append(out, toContactOut(c))
	}
	return out
}
