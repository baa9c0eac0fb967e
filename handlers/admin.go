package handlers

import (
	"errors"
	"io"
	"net/http"
	"net/url"

	"github.com/Ayush22-04/xetor-backen/internal/collections"
	"github.com/Ayush22-04/xetor-backen/internal/document"
	"github.com/Ayush22-04/xetor-backen/internal/document/handler"
	"github.com/Ayush22-04/xetor-backen/internal/document/service"
	"github.com/Ayush22-04/xetor-backen/internal/notify"
	"github.com/Ayush22-04/xetor-backen/internal/upload"
	"github.com/Ayush22-04/xetor-backen/internal/users"
	"github.com/Ayush22-04/xetor-backen/pkg/logger"
	"github.com/Ayush22-04/xetor-backen/pkg/middleware"
	"github.com/gin-gonic/gin"
)

// DefaultMaxUploadBytes bounds multipart bodies on admin form writes.
const DefaultMaxUploadBytes = 16 << 20

// AdminHandler serves the admin console API. All routes expect AuthMiddleware upstream.
type AdminHandler struct {
	docs      *service.Service
	usersSvc  *users.Service
	uploader  upload.Uploader
	mail      *notify.Dispatcher
	mailTo    string
	maxUpload int64
}

func NewAdminHandler(docs *service.Service, u *users.Service, up upload.Uploader, mail *notify.Dispatcher, mailTo string) *AdminHandler {
	if up == nil {
		up = upload.Disabled{}
	}
	if mail == nil {
		mail = notify.NewDispatcher(nil)
	}
	return &AdminHandler{docs: docs, usersSvc: u, uploader: up, mail: mail, mailTo: mailTo, maxUpload: DefaultMaxUploadBytes}
}

// Register mounts the admin routes on rg, which must already be authenticated.
func (h *AdminHandler) Register(rg *gin.RouterGroup) {
	rg.GET("/collections", h.counts)
	rg.GET("/collections/:collection/docs", h.listDocs)
	rg.POST("/collections/:collection/docs", h.createDoc)
	rg.GET("/collections/:collection/docs/:id", h.getDoc)
	rg.PUT("/collections/:collection/docs/:id", h.updateDoc)
	rg.DELETE("/collections/:collection/docs/:id", h.deleteDoc)

	rg.GET("/users", h.listUsers)
	rg.POST("/users", h.createUser)
	rg.PUT("/users/:id", h.updateUser)
	rg.DELETE("/users/:id", h.deleteUser)

	rg.POST("/email/test", h.testEmail)
}

func (h *AdminHandler) counts(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"collections": h.docs.AdminCounts(c.Request.Context())})
}

func (h *AdminHandler) listDocs(c *gin.Context) {
	name := c.Param("collection")
	docs, err := h.docs.AdminList(c.Request.Context(), name)
	if err != nil {
		handler.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"collection": name, "documents": docs})
}

func (h *AdminHandler) getDoc(c *gin.Context) {
	doc, err := h.docs.AdminGet(c.Request.Context(), c.Param("collection"), c.Param("id"))
	if err != nil {
		handler.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// readForm parses a multipart or urlencoded body.
func (h *AdminHandler) readForm(c *gin.Context) (url.Values, bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload)
	if err := c.Request.ParseMultipartForm(h.maxUpload); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid form body"})
		return nil, false
	}
	return c.Request.PostForm, true
}

// formFields parses the submission for the collection and uploads the image when
// a file was attached. A write without a file leaves the stored image untouched.
// Creates pass partial=false so every required field must be submitted.
func (h *AdminHandler) formFields(c *gin.Context, partial bool) (document.Document, bool) {
	d, ok := collections.Admin(c.Param("collection"))
	if !ok {
		handler.WriteError(c, service.ErrInvalidCollection)
		return nil, false
	}
	form, ok := h.readForm(c)
	if !ok {
		return nil, false
	}
	fields, err := d.ParseForm(form, partial)
	if err != nil {
		if errors.Is(err, collections.ErrNoForm) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "data field is required"})
			return nil, false
		}
		handler.WriteError(c, err)
		return nil, false
	}
	if d.ImageField == "" {
		return fields, true
	}
	fh, err := c.FormFile(d.ImageField)
	if err != nil {
		return fields, true
	}
	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid image file"})
		return nil, false
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil || len(data) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid image file"})
		return nil, false
	}
	u, err := h.uploader.Upload(c.Request.Context(), fh.Filename, data)
	if err != nil {
		logger.Errorf("image upload for %s: %v", d.Name, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "UploadFailure"})
		return nil, false
	}
	fields[d.ImageField] = u
	return fields, true
}

func (h *AdminHandler) createDoc(c *gin.Context) {
	fields, ok := h.formFields(c, false)
	if !ok {
		return
	}
	id, err := h.docs.AdminCreate(c.Request.Context(), c.Param("collection"), fields)
	if err != nil {
		handler.WriteError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (h *AdminHandler) updateDoc(c *gin.Context) {
	fields, ok := h.formFields(c, true)
	if !ok {
		return
	}
	if err := h.docs.AdminUpdate(c.Request.Context(), c.Param("collection"), c.Param("id"), fields); err != nil {
		handler.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": true})
}

func (h *AdminHandler) deleteDoc(c *gin.Context) {
	if err := h.docs.AdminDelete(c.Request.Context(), c.Param("collection"), c.Param("id")); err != nil {
		handler.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

type userRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

func writeUserError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, users.ErrMissingFields):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, users.ErrDuplicateUsername):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, users.ErrInvalidID), errors.Is(err, users.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	default:
		logger.Errorf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
	}
}

func (h *AdminHandler) listUsers(c *gin.Context) {
	list, err := h.usersSvc.List(c.Request.Context())
	if err != nil {
		writeUserError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": list})
}

func (h *AdminHandler) createUser(c *gin.Context) {
	var req userRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid body"})
		return
	}
	u, err := h.usersSvc.Create(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		writeUserError(c, err)
		return
	}
	c.JSON(http.StatusCreated, u)
}

func (h *AdminHandler) updateUser(c *gin.Context) {
	var req userRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid body"})
		return
	}
	u, err := h.usersSvc.Update(c.Request.Context(), c.Param("id"), req.Username, req.Password)
	if err != nil {
		writeUserError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *AdminHandler) deleteUser(c *gin.Context) {
	id := c.Param("id")
	if claims, ok := c.Get(middleware.ClaimsKey); ok {
		if cm, _ := claims.(map[string]interface{}); cm["sub"] == id {
			c.JSON(http.StatusBadRequest, gin.H{"error": "cannot delete the signed-in account"})
			return
		}
	}
	if err := h.usersSvc.Delete(c.Request.Context(), id); err != nil {
		writeUserError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

const testEmailBody = "This is a test email from the admin console. SMTP delivery is working."

// testEmail sends a probe message to the given address, or the configured admin address.
func (h *AdminHandler) testEmail(c *gin.Context) {
	var req struct {
		To string `json:"to" form:"to"`
	}
	_ = c.ShouldBind(&req)
	to := req.To
	if to == "" {
		to = h.mailTo
	}
	if to == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no recipient configured"})
		return
	}
	sent := h.mail.Notify(c.Request.Context(), to, "Test email", testEmailBody, testEmailBody)
	c.JSON(http.StatusOK, gin.H{"sent": sent, "to": to})
}
