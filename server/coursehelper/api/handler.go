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
	"syscourse/server/coursehelper/service"
)

type Handler struct {
	courses    *service.CourseService
	verifier   middleware.ServiceTokenVerifier
	readyCheck func(context.Context) error
}

func NewHandler(courses *service.CourseService, verifier middleware.ServiceTokenVerifier, readyCheck func(context.Context) error) *Handler {
	return &Handler{courses: courses, verifier: verifier, readyCheck: readyCheck}
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

	courses := r.Group("/courses")
	courses.Use(middleware.ServiceAuthRequired(h.verifier))
	{
		courses.GET("", h.listCourses)
		courses.GET("/:course_id", h.getCourse)
		courses.POST("", h.createCourse)
		courses.DELETE("/:course_id/:uid", h.deleteCourse)
	}
}

func (h *Handler) listCourses(c *gin.Context) {
	items, err := h.courses.List(c.Request.Context())
	if err != nil {
		commonlog.Errorf("list courses: %v", err)
		c.JSON(http.StatusInternalServerError, httpresp.NewErrorResponse(err.Error()))
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) getCourse(c *gin.Context) {
	item, err := h.courses.Get(c.Request.Context(), c.Param("course_id"))
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

func (h *Handler) createCourse(c *gin.Context) {
	var item domain.Course
	if err := httpreq.DecodeDocument(c.Request, &item); err != nil {
		msg := err.Error()
		if errors.Is(err, httpreq.ErrNoData) {
			msg = httpresp.ErrNoData
		}
		c.JSON(http.StatusBadRequest, httpresp.NewErrorResponse(msg))
		return
	}
	id, err := h.courses.Create(c.Request.Context(), item)
	if err != nil {
		commonlog.Errorf("create course: %v", err)
		c.JSON(http.StatusInternalServerError, httpresp.NewErrorResponse(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, httpresp.NewCreatedResponse("course_id", id))
}

func (h *Handler) deleteCourse(c *gin.Context) {
	err := h.courses.DeleteOwned(c.Request.Context(), c.Param("course_id"), c.Param("uid"))
	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, httpresp.NewMessageResponse("Cannot find course"))
	case errors.Is(err, domain.ErrNotOwner):
		c.JSON(http.StatusUnauthorized, httpresp.NewMessageResponse("Unauthorized"))
	case err != nil:
		c.JSON(http.StatusInternalServerError, httpresp.NewErrorResponse(err.Error()))
	default:
		c.JSON(http.StatusOK, httpresp.NewMessageResponse("Resource deleted"))
	}
}
