package api

import (
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"syscourse/server/catalog/domain"
	commonlog "syscourse/server/common/log"
	"syscourse/server/common/middleware"
	"syscourse/server/common/transport/httpresp"
)

const (
	formContextKey    = "validated_form"
	resourceFileField = "resourceFile"
)

var allowedResourceExts = map[string]struct{}{".png": {}, ".pdf": {}}

type CourseForm struct {
	Title       string `form:"title" binding:"required"`
	Description string `form:"description" binding:"required"`
	Instructor  string `form:"instructor" binding:"required"`
	Field       string `form:"field" binding:"required"`
	Level       string `form:"level"`
	Language    string `form:"language" binding:"required"`
}

type ResourceForm struct {
	Title        string                `form:"title" binding:"required"`
	Description  string                `form:"description" binding:"required"`
	CourseID     string                `form:"course_id" binding:"required"`
	ResourceFile *multipart.FileHeader `form:"resourceFile" binding:"required"`
}

type CourseChoice struct {
	ID    string
	Title string
}

func courseChoices(courses []domain.Course) []CourseChoice {
	out := make([]CourseChoice, 0, len(courses))
	for _, c := range courses {
		out = append(out, CourseChoice{ID: c.CourseID, Title: c.Title})
	}
	return out
}

func rejectForm(c *gin.Context) {
	c.String(http.StatusBadRequest, httpresp.ErrInvalidForm)
	c.Abort()
}

// CourseFormRequired binds the add-course form or answers 400.
func CourseFormRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		var form CourseForm
		if err := c.ShouldBind(&form); err != nil || blank(form.Title, form.Description, form.Instructor, form.Field, form.Language) {
			rejectForm(c)
			return
		}
		c.Set(formContextKey, &form)
		c.Next()
	}
}

// ResourceFormRequired binds the upload form. course_id must name an existing course and
// the file must be a .png or .pdf.
func (h *Handler) ResourceFormRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		courses, err := h.catalog.ListCourses(c.Request.Context())
		if err != nil {
			commonlog.Errorf("load course choices: %v", err)
			c.String(http.StatusBadGateway, "Error: Failed to load courses")
			c.Abort()
			return
		}

		fh, err := c.FormFile(resourceFileField)
		if middleware.BodyTooLarge(err) {
			c.String(http.StatusRequestEntityTooLarge, httpresp.ErrFileTooLarge)
			c.Abort()
			return
		}
		if err != nil || fh.Filename == "" {
			redirectUploadError(c, httpresp.ErrNoFileSelected)
			c.Abort()
			return
		}

		var form ResourceForm
		if err := c.ShouldBind(&form); err != nil {
			commonlog.Warnf("resource form rejected: %v", err)
			rejectForm(c)
			return
		}
		if blank(form.Title, form.Description) || !hasChoice(courses, form.CourseID) || !allowedResourceFile(form.ResourceFile) {
			commonlog.Warnf("resource form rejected: course=%q file=%q", form.CourseID, fileName(form.ResourceFile))
			rejectForm(c)
			return
		}
		c.Set(formContextKey, &form)
		c.Next()
	}
}

func blank(values ...string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			return true
		}
	}
	return false
}

func hasChoice(courses []domain.Course, id string) bool {
	for _, c := range courses {
		if c.CourseID == id {
			return true
		}
	}
	return false
}

func allowedResourceFile(fh *multipart.FileHeader) bool {
	if fh == nil || fh.Filename == "" {
		return false
	}
	_, ok := allowedResourceExts[strings.ToLower(filepath.Ext(fh.Filename))]
	return ok
}

func fileName(fh *multipart.FileHeader) string {
	if fh == nil {
		return ""
	}
	return fh.Filename
}
