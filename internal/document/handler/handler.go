package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Ayush22-04/xetor-backen/internal/collections"
	"github.com/Ayush22-04/xetor-backen/internal/document/service"
	"github.com/Ayush22-04/xetor-backen/pkg/logger"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the public JSON API on rg (normally the /api group).
func RegisterRoutes(rg *gin.RouterGroup, svc *service.Service) {
	h := &handler{svc: svc}

	rg.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	rg.GET("/collections/popular", h.popularCollections)
	rg.GET("/"+collections.Categories+"/popular", h.popular(collections.Categories))
	rg.GET("/"+collections.Products+"/popular", h.popular(collections.Products))

	rg.GET("/:collection", h.list)
	rg.POST("/:collection", h.create)
	rg.GET("/:collection/:id", h.get)
	rg.PUT("/:collection/:id", h.update)
	rg.DELETE("/:collection/:id", h.remove)
}

type handler struct {
	svc *service.Service
}

// WriteError maps service errors onto the JSON error contract. Store failures
// are reported as 404 like an unknown collection.
func WriteError(c *gin.Context, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "fields": verr.Fields})
	case errors.Is(err, service.ErrInvalidCollection):
		c.JSON(http.StatusNotFound, gin.H{"error": "Invalid collection"})
	case errors.Is(err, service.ErrInvalidID):
		c.JSON(http.StatusNotFound, gin.H{"error": "Invalid id"})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, service.ErrStoreUnavailable):
		logger.Errorf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusNotFound, gin.H{"error": "Store unavailable"})
	default:
		logger.Errorf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
	}
}

// bindObject decodes the request body as a JSON object.
func bindObject(c *gin.Context) (map[string]interface{}, bool) {
	var body map[string]interface{}
	if err := c.ShouldBindJSON(&body); err != nil || body == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON body"})
		return nil, false
	}
	return body, true
}

// sendEmail is on unless ?send_email is false or 0.
func sendEmail(c *gin.Context) bool {
	switch strings.ToLower(strings.TrimSpace(c.Query("send_email"))) {
	case "false", "0":
		return false
	}
	return true
}

func (h *handler) list(c *gin.Context) {
	docs, err := h.svc.List(c.Request.Context(), c.Param("collection"))
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, docs)
}

func (h *handler) create(c *gin.Context) {
	name := c.Param("collection")
	if !collections.IsPublic(name) {
		WriteError(c, service.ErrInvalidCollection)
		return
	}
	body, ok := bindObject(c)
	if !ok {
		return
	}
	res, err := h.svc.Create(c.Request.Context(), name, body, service.CreateOptions{SendEmail: sendEmail(c)})
	if err != nil {
		WriteError(c, err)
		return
	}
	out := gin.H{"id": res.ID}
	if res.EmailSent != nil {
		out["email_sent"] = *res.EmailSent
	}
	c.JSON(http.StatusCreated, out)
}

func (h *handler) get(c *gin.Context) {
	doc, err := h.svc.Get(c.Request.Context(), c.Param("collection"), c.Param("id"))
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (h *handler) update(c *gin.Context) {
	name := c.Param("collection")
	if !collections.IsPublic(name) {
		WriteError(c, service.ErrInvalidCollection)
		return
	}
	body, ok := bindObject(c)
	if !ok {
		return
	}
	if err := h.svc.Update(c.Request.Context(), name, c.Param("id"), body); err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": true})
}

func (h *handler) remove(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("collection"), c.Param("id")); err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

func (h *handler) popular(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		docs, err := h.svc.Popular(c.Request.Context(), name)
		if err != nil {
			WriteError(c, err)
			return
		}
		c.JSON(http.StatusOK, docs)
	}
}

func (h *handler) popularCollections(c *gin.Context) {
	out, err := h.svc.PopularCollections(c.Request.Context())
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}
