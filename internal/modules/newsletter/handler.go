package newsletter

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mx-space/newsletter/internal/pkg/flash"
	"go.uber.org/zap"
)

// Handler serves the HTML pages: the submission form, the confirmation and
// profile page, and the resubscribe redirect.
type Handler struct {
	svc      *Service
	flash    flash.Store
	links    *Links
	siteName string
	log      *zap.Logger
}

func NewHandler(svc *Service, flashStore flash.Store, links *Links, siteName string, log *zap.Logger) *Handler {
	return &Handler{svc: svc, flash: flashStore, links: links, siteName: siteName, log: log}
}

func (h *Handler) RegisterRoutes(r gin.IRouter) {
	g := r.Group(h.links.FormPath())
	g.GET("", h.form)
	g.POST("", h.submit)
	g.GET("/subscribe/:code", h.confirm)
	g.POST("/subscribe/:code", h.confirm)
	g.GET("/resubscribe/:code", h.resubscribe)
}

func (h *Handler) page(c *gin.Context, title string) Page {
	return Page{
		Title:    title,
		SiteName: h.siteName,
		Messages: flash.Consume(c, h.flash),
		FormURL:  h.links.FormPath(),
	}
}

func (h *Handler) addFlash(c *gin.Context, message string) {
	if message == "" {
		return
	}
	if err := flash.Add(c, h.flash, message); err != nil {
		h.log.Warn("store flash message", zap.Error(err))
	}
}

func (h *Handler) form(c *gin.Context) {
	c.HTML(http.StatusOK, "form.html", FormPage{
		Page:      h.page(c, "Newsletter"),
		ActionURL: h.links.FormPath(),
		Action:    string(ActionSubscribe),
		Errors:    map[string]string{},
	})
}

func (h *Handler) submit(c *gin.Context) {
	var in SubmitInput
	if err := c.ShouldBind(&in); err != nil {
		h.log.Debug("newsletter form bind failed", zap.Error(err))
		c.HTML(http.StatusBadRequest, "error.html", ErrorPage{
			Page:  h.page(c, "Bad request"),
			Error: MsgMalformedForm,
		})
		return
	}

	res, err := h.svc.Submit(c.Request.Context(), in)
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			c.HTML(http.StatusBadRequest, "form.html", FormPage{
				Page:      h.page(c, "Newsletter"),
				ActionURL: h.links.FormPath(),
				Email:     in.Email,
				Action:    string(in.Action),
				Errors:    verr.Fields,
			})
			return
		}
		h.serverError(c, err)
		return
	}

	h.addFlash(c, res.Message)
	c.Redirect(http.StatusSeeOther, h.links.FormPath())
}

func (h *Handler) confirm(c *gin.Context) {
	code := c.Param("code")
	ctx := c.Request.Context()

	res, err := h.svc.Confirm(ctx, code)
	if err != nil {
		h.tokenError(c, err)
		return
	}

	var notice string
	if res.Created || res.Activated {
		notice = res.Message
	}

	schema := h.svc.Profile()
	if schema == nil {
		h.addFlash(c, notice)
		c.Redirect(http.StatusSeeOther, h.links.FormPath())
		return
	}

	sub := res.Subscription
	errs := map[string]string{}
	values := sub.Profile

	if c.Request.Method == http.MethodPost {
		input := make(map[string]string, len(schema.Fields()))
		for _, f := range schema.Fields() {
			input[f.Name] = c.PostForm(f.Name)
		}
		if _, err := h.svc.UpdateProfile(ctx, sub.Email, input); err != nil {
			var verr *ValidationError
			if !errors.As(err, &verr) {
				h.serverError(c, err)
				return
			}
			errs, values = verr.Fields, input
		} else {
			h.addFlash(c, notice)
			h.addFlash(c, MsgProfileUpdated)
			c.Redirect(http.StatusSeeOther, c.Request.URL.Path)
			return
		}
	}

	page := h.page(c, "Your subscription")
	if notice != "" {
		page.Messages = append(page.Messages, notice)
	}
	fields := make([]ProfileFieldView, 0, len(schema.Fields()))
	for _, f := range schema.Fields() {
		fields = append(fields, ProfileFieldView{Name: f.Name, Label: f.Label, Value: values[f.Name], Error: errs[f.Name]})
	}

	status := http.StatusOK
	if len(errs) > 0 {
		status = http.StatusBadRequest
	}
	c.HTML(status, "subscribe.html", SubscribePage{
		Page:      page,
		ActionURL: h.links.ConfirmPath(code),
		Email:     sub.Email,
		Fields:    fields,
	})
}

func (h *Handler) resubscribe(c *gin.Context) {
	code := c.Param("code")
	res, err := h.svc.Reactivate(c.Request.Context(), code)
	if err != nil {
		h.tokenError(c, err)
		return
	}
	if res.AlreadyActive {
		h.addFlash(c, res.Message)
	}
	c.Redirect(http.StatusFound, h.links.ConfirmPath(code))
}

func (h *Handler) tokenError(c *gin.Context, err error) {
	if errors.Is(err, ErrInvalidOrExpiredToken) {
		c.HTML(http.StatusBadRequest, "error.html", ErrorPage{
			Page:  h.page(c, "Invalid link"),
			Error: MsgInvalidToken,
		})
		return
	}
	h.serverError(c, err)
}

func (h *Handler) serverError(c *gin.Context, err error) {
	_ = c.Error(err)
	h.log.Error("newsletter request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
	c.HTML(http.StatusInternalServerError, "error.html", ErrorPage{
		Page:  h.page(c, "Something went wrong"),
		Error: "Something went wrong. Please try again later.",
	})
}
