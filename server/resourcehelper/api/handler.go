package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"syscourse/server/catalog/domain"
	commonlog "syscourse/server/common/log"
	"syscourse/server/common/middleware"
	"syscourse/server/common/transport/httpreq"
	"syscourse/server/common/transport/httpresp"
	"syscourse/server/resourcehelper/service"
)

type Handler struct {
	resources  *service.ResourceService
	verifier   middleware.ServiceTokenVerifier
	readyCheck func(context.Context) error
}

func NewHandler(resources *service.ResourceService, verifier middleware.ServiceTokenVerifier, readyCheck func(context.Context) error) *Handler {
	return &Handler{resources: resources, verifier: verifier, readyCheck: readyCheck}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		if h.readyCheck != nil {
			if err := h.readyCheck(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, httpresp.NewStatusResponse("ok"))
	})

	resources := r.Group("/resources")
	resources.Use(middleware.ServiceAuthRequired(h.verifier))
	{
		resources.GET("", h.listResources)
		resources.GET("/:resource_id", h.getResource)
		resources.GET("/course/:course_id", h.listByCourse)
		resources.POST("", h.createResource)
		resources.DELETE("/:resource_id", h.deleteResource)
	}
}

func (h *Handler) listResources(c *gin.Context) {
	items, err := h.resources.List(c.Request.Context())
	if err != nil {
		commonlog.Errorf("list resources: %v", err)
		c.JSON(http.StatusInternalServerError, httpresp.NewErrorResponse(err.Error()))
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) listByCourse(c *gin.Context) {
	items, err := h.resources.ListByCourse(c.Request.Context(), c.Param("course_id"))
	if err != nil {
		commonlog.Errorf("list resources by course: %v", err)
		c.JSON(http.StatusInternalServerError, httpresp.NewErrorResponse(err.Error()))
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) getResource(c *gin.Context) {
	item, err := h.resources.Get(c.Request.Context(), c.Param("resource_id"))
	if errors.Is(err, domain.ErrNotFound) {
		c.JSON(http.StatusNotFound, httpresp.NewErrorResponse(httpresp.ErrDocumentNotFound))
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, httpresp.NewErrorResponse(err.Error()))
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *Handler) createResource(c *gin.Context) {
	var item domain.Resource
	if err := httpreq.DecodeDocument(c.Request, &item); err != nil {
		msg := err.Error()
		if errors.Is(err, httpreq.ErrNoData) {
			msg = httpresp.ErrNoData
		}
		c.JSON(http.StatusBadRequest, httpresp.NewErrorResponse(msg))
		return
	}
	id, err := h.resources.Create(c.Request.Context(), item)
	if err != nil {
		commonlog.Errorf("create resource: %v", err)
		c.JSON(http.StatusInternalServerError, httpresp.NewErrorResponse(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, httpresp.NewCreatedResponse("resource_id", id))
}

func (h *Handler) deleteResource(c *gin.Context) {
	if err := h.resources.Delete(c.Request.Context(), c.Param("resource_id")); err != nil {
		c.JSON(http.StatusInternalServerError, httpresp.NewErrorResponse(err.Error()))
		return
	}
	c.JSON(http.StatusOK, httpresp.NewMessageResponse("Resource deleted"))
}
