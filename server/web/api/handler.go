package api

import (
	"errors"
	"math"
	"math/rand/v2"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"syscourse/server/catalog/domain"
	"syscourse/server/common/infra/gateway"
	"syscourse/server/common/infra/mq"
	commonlog "syscourse/server/common/log"
	"syscourse/server/common/middleware"
	"syscourse/server/common/transport/httpresp"
	"syscourse/server/web/service"
)

const (
	courseThumbnail   = "course"
	resourceThumbnail = "resource_1"
	uploadErrorText   = "Error uploading file"
)

type userTokens interface {
	ParseAuthContext(token string) (uid, email string, err error)
}

type Handler struct {
	catalog   *service.CatalogClient
	notify    *service.Notifications
	users     userTokens
	assetBase string
	ratings   func() (float64, int)
	maxBytes  int64
}

// NewHandler renders pages that link stored files under assetBase.
func NewHandler(catalog *service.CatalogClient, notify *service.Notifications, users userTokens, assetBase string) *Handler {
	return &Handler{catalog: catalog, notify: notify, users: users, assetBase: assetBase, ratings: randomRatings}
}

// LimitBody caps upload_resource bodies at n bytes.
func (h *Handler) LimitBody(n int64) *Handler {
	h.maxBytes = n
	return h
}

// randomRatings seeds a new course with an average in [1, 4.9] to one decimal and a
// count in [1, 1000].
func randomRatings() (float64, int) {
	avg := math.Round((1+rand.Float64()*3.9)*10) / 10
	return avg, rand.IntN(1000) + 1
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	health := func(c *gin.Context) { c.JSON(http.StatusOK, httpresp.NewStatusResponse("ok")) }
	r.GET("/healthz", health)
	r.GET("/health", health)

	optional := middleware.AuthOptional(h.users)
	required := middleware.AuthRequired(h.users)

	r.GET("/", optional, h.home)
	r.GET("/all_course", optional, h.allCourses)
	r.GET("/all_resource", optional, h.allResources)
	r.GET("/course", required, h.course)
	r.DELETE("/course", required, h.removeCourse)
	r.GET("/resource", required, h.resource)
	r.DELETE("/resource", required, h.removeResource)
	r.GET("/add_course", required, h.addCoursePage)
	r.POST("/add_course", required, CourseFormRequired(), h.addCourse)
	r.GET("/upload_resource", required, h.uploadResourcePage)
	r.POST("/upload_resource", required, middleware.BodyLimit(h.maxBytes), h.ResourceFormRequired(), h.uploadResource)
}

func (h *Handler) page(c *gin.Context, name, title string, data gin.H) {
	data["title"] = title
	data["auth"] = middleware.UserFromContext(c)
	data["assetBase"] = h.assetBase
	c.HTML(http.StatusOK, name, data)
}

func (h *Handler) home(c *gin.Context) {
	var courses []domain.Course
	var resources []domain.Resource
	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() (err error) {
		courses, err = h.catalog.ListCourses(ctx)
		return wrapAction("load courses", err)
	})
	g.Go(func() (err error) {
		resources, err = h.catalog.ListResources(ctx)
		return wrapAction("load resources", err)
	})
	if err := g.Wait(); err != nil {
		upstreamFailure(c, err)
		return
	}
	h.page(c, "main.html", "Home", gin.H{"courses": courses, "resources": resources})
}

func (h *Handler) allCourses(c *gin.Context) {
	courses, err := h.catalog.ListCourses(c.Request.Context())
	if err != nil {
		upstreamFailure(c, wrapAction("load courses", err))
		return
	}
	h.page(c, "all_course_page.html", "All courses", gin.H{"courses": courses})
}

func (h *Handler) allResources(c *gin.Context) {
	resources, err := h.catalog.ListResources(c.Request.Context())
	if err != nil {
		upstreamFailure(c, wrapAction("load resources", err))
		return
	}
	h.page(c, "all_resource_page.html", "All resources", gin.H{"resources": resources})
}

func (h *Handler) course(c *gin.Context) {
	courseID := c.Query("course_id")
	if courseID == "" {
		c.String(http.StatusBadRequest, "Course ID is required")
		return
	}
	var course domain.Course
	var resources []domain.Resource
	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() (err error) {
		course, err = h.catalog.GetCourse(ctx, courseID)
		return wrapAction("load course", err)
	})
	g.Go(func() (err error) {
		resources, err = h.catalog.ListResourcesByCourse(ctx, courseID)
		return wrapAction("load course resources", err)
	})
	if err := g.Wait(); err != nil {
		upstreamFailure(c, err)
		return
	}
	h.page(c, "course.html", "Course", gin.H{"course": course, "resources": resources})
}

func (h *Handler) removeCourse(c *gin.Context) {
	courseID := c.Query("course_id")
	if courseID == "" {
		c.String(http.StatusBadRequest, "Course ID is required")
		return
	}
	user := middleware.UserFromContext(c)
	if err := h.catalog.RemoveCourse(c.Request.Context(), user.UID, courseID); err != nil {
		upstreamFailure(c, wrapAction("remove course", err))
		return
	}
	c.String(http.StatusOK, "Course successfully deleted.")
}

func (h *Handler) resource(c *gin.Context) {
	resourceID := c.Query("resource_id")
	if resourceID == "" {
		c.String(http.StatusBadRequest, "Resource ID is required")
		return
	}
	resource, err := h.catalog.GetResource(c.Request.Context(), resourceID)
	if err != nil {
		upstreamFailure(c, wrapAction("load resource", err))
		return
	}
	h.page(c, "resource.html", "Resource", gin.H{"resource": resource})
}

func (h *Handler) removeResource(c *gin.Context) {
	resourceID := c.Query("resource_id")
	if resourceID == "" {
		c.String(http.StatusBadRequest, "Resource ID is required")
		return
	}
	if err := h.catalog.DeleteResource(c.Request.Context(), resourceID); err != nil {
		upstreamFailure(c, wrapAction("remove resource", err))
		return
	}
	c.String(http.StatusOK, "Resource successfully deleted.")
}

func (h *Handler) addCoursePage(c *gin.Context) {
	h.page(c, "add_course.html", "Add course", gin.H{})
}

func (h *Handler) addCourse(c *gin.Context) {
	form := c.MustGet(formContextKey).(*CourseForm)
	user := middleware.UserFromContext(c)
	avg, count := h.ratings()

	_, err := h.catalog.AddCourse(c.Request.Context(), domain.Course{
		Title:          form.Title,
		Description:    form.Description,
		Instructor:     form.Instructor,
		Field:          form.Field,
		Level:          form.Level,
		Language:       form.Language,
		ThumbnailURL:   courseThumbnail,
		UID:            user.UID,
		RatingsAverage: &avg,
		RatingsCount:   &count,
	})
	if err != nil {
		commonlog.Errorf("add course for %s: %v", user.UID, err)
		c.String(http.StatusInternalServerError, "Error: Failed to add course")
		return
	}

	h.notify.NewProduct(c.Request.Context(), mq.MailContext{
		To:      user.Email,
		Subject: "Successfully Added Course to Syscourse",
		Text:    "course uploaded to syscourse successfully.",
	})
	c.Redirect(http.StatusFound, "/")
}

func (h *Handler) uploadResourcePage(c *gin.Context) {
	courses, err := h.catalog.ListCourses(c.Request.Context())
	if err != nil {
		upstreamFailure(c, wrapAction("load courses", err))
		return
	}
	h.page(c, "upload_resource.html", "Upload resource", gin.H{"choices": courseChoices(courses), "error": c.Query("error")})
}

func (h *Handler) uploadResource(c *gin.Context) {
	form := c.MustGet(formContextKey).(*ResourceForm)
	user := middleware.UserFromContext(c)
	ctx := c.Request.Context()

	file, err := form.ResourceFile.Open()
	if err != nil {
		redirectUploadError(c, uploadErrorText)
		return
	}
	defer file.Close()

	contentType := form.ResourceFile.Header.Get("Content-Type")
	uploaded, err := h.catalog.UploadFile(ctx, domain.SanitizeFilename(form.ResourceFile.Filename), contentType, file)
	if err != nil {
		commonlog.Warnf("forward upload %s: %v", form.ResourceFile.Filename, err)
		redirectUploadError(c, uploadErrorText)
		return
	}

	_, err = h.catalog.AddResource(ctx, domain.Resource{
		ResourceID:  uploaded.ResourceID,
		CourseID:    form.CourseID,
		Title:       form.Title,
		Description: form.Description,
		URL:         uploaded.URL,
		Type:        contentType,
		Thumbnail:   resourceThumbnail,
		UID:         user.UID,
	})
	if err != nil {
		commonlog.Errorf("add resource for %s: %v", user.UID, err)
		c.String(http.StatusInternalServerError, "Error: Failed to add resource")
		return
	}

	h.notify.NewProduct(ctx, mq.MailContext{
		To:      user.Email,
		Subject: "Successfully Uploaded Resource to Syscourse",
		Text:    "resource uploaded to syscourse.",
	})
	c.Redirect(http.StatusFound, "/")
}

func redirectUploadError(c *gin.Context, message string) {
	c.Redirect(http.StatusFound, "/upload_resource?"+url.Values{"error": {message}}.Encode()+"#form")
}

type actionError struct {
	action string
	err    error
}

func (e *actionError) Error() string { return e.action + ": " + e.err.Error() }
func (e *actionError) Unwrap() error { return e.err }

func wrapAction(action string, err error) error {
	if err == nil {
		return nil
	}
	return &actionError{action: action, err: err}
}

// upstreamFailure passes a helper's 4xx status through and maps everything else to 502.
func upstreamFailure(c *gin.Context, err error) {
	commonlog.Errorf("%v", err)
	message := "Error: Failed to load page"
	var ae *actionError
	if errors.As(err, &ae) {
		message = "Error: Failed to " + ae.action
	}
	if errors.Is(err, service.ErrInvalidID) {
		c.String(http.StatusBadRequest, message)
		return
	}
	var ue *gateway.UpstreamError
	if errors.As(err, &ue) && ue.StatusCode >= 400 && ue.StatusCode < 500 {
		c.String(ue.StatusCode, message)
		return
	}
	c.String(http.StatusBadGateway, message)
}
