package newsletter

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mx-space/newsletter/internal/pkg/pagination"
	"github.com/mx-space/newsletter/internal/pkg/response"
	"go.uber.org/zap"
)

// APIHandler exposes the workflow as JSON under /newsletter.
type APIHandler struct {
	svc   *Service
	links *Links
	log   *zap.Logger
}

func NewAPIHandler(svc *Service, links *Links, log *zap.Logger) *APIHandler {
	return &APIHandler{svc: svc, links: links, log: log}
}

func (h *APIHandler) RegisterRoutes(rg *gin.RouterGroup, adminMW gin.HandlerFunc) {
	g := rg.Group("/newsletter")
	g.POST("/subscription", h.submit)
	g.GET("/confirm/:code", h.confirm)
	g.PUT("/confirm/:code/profile", h.updateProfile)
	g.GET("/resubscribe/:code", h.resubscribe)
	g.GET("/subscriptions", adminMW, h.list)
}

func (h *APIHandler) submit(c *gin.Context) {
	var in SubmitInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.BadRequest(c, "Request body must be a JSON object.")
		return
	}
	res, err := h.svc.Submit(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Accepted(c, gin.H{"email": res.Email, "action": res.Action, "message": res.Message})
}

func (h *APIHandler) confirm(c *gin.Context) {
	res, err := h.svc.Confirm(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.OK(c, gin.H{
		"subscription": res.Subscription,
		"created":      res.Created,
		"activated":    res.Activated,
		"message":      res.Message,
	})
}

type profileDTO struct {
	Profile map[string]string `json:"profile" binding:"required"`
}

func (h *APIHandler) updateProfile(c *gin.Context) {
	var dto profileDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "Request body must contain a profile object.")
		return
	}
	if h.svc.Profile() == nil {
		h.fail(c, ErrProfileDisabled)
		return
	}
	ctx := c.Request.Context()
	res, err := h.svc.Confirm(ctx, c.Param("code"))
	if err != nil {
		h.fail(c, err)
		return
	}
	sub, err := h.svc.UpdateProfile(ctx, res.Subscription.Email, dto.Profile)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.OK(c, gin.H{"subscription": sub, "message": MsgProfileUpdated})
}

func (h *APIHandler) resubscribe(c *gin.Context) {
	code := c.Param("code")
	res, err := h.svc.Reactivate(c.Request.Context(), code)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.OK(c, gin.H{
		"already_active": res.AlreadyActive,
		"message":        res.Message,
		"confirm_url":    h.links.ConfirmURL(code),
	})
}

func (h *APIHandler) list(c *gin.Context) {
	q := ListQuery{Query: pagination.FromContext(c)}
	if raw := c.Query("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			response.BadRequest(c, "active must be a boolean.")
			return
		}
		q.Active = &active
	}
	items, total, err := h.svc.List(c.Request.Context(), q)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Paged(c, items, pagination.Meta(q.Query, total))
}

func (h *APIHandler) fail(c *gin.Context, err error) {
	var verr *ValidationError
	switch {
	case errors.Is(err, ErrDuplicateSubscription):
		response.Conflict(c, MsgDuplicateSubscription)
	case errors.Is(err, ErrNotSubscribed):
		response.NotFoundMsg(c, MsgNotSubscribed)
	case errors.As(err, &verr):
		response.ValidationFailed(c, verr.Message(), verr.Fields)
	case errors.Is(err, ErrInvalidOrExpiredToken):
		response.BadRequest(c, MsgInvalidToken)
	case errors.Is(err, ErrProfileDisabled):
		response.NotFoundMsg(c, "Profile editing is not enabled.")
	default:
		h.log.Error("newsletter api request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
		response.InternalError(c, err)
	}
}
