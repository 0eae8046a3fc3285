package api

import (
	"errors"
	"io"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	commonlog "syscourse/server/common/log"
	"syscourse/server/common/middleware"
	"syscourse/server/common/transport/httpresp"
	"syscourse/server/upload/service"
)

const FileField = "filepond"

type Handler struct {
	normalizer *service.Normalizer
	verifier   middleware.ServiceTokenVerifier
	origins    []string
	maxBytes   int64
}

// NewHandler allows every origin when origins is empty or contains "*".
func NewHandler(normalizer *service.Normalizer, verifier middleware.ServiceTokenVerifier, origins ...string) *Handler {
	return &Handler{normalizer: normalizer, verifier: verifier, origins: origins}
}

// LimitBody rejects upload bodies larger than n bytes with 413.
func (h *Handler) LimitBody(n int64) *Handler {
	h.maxBytes = n
	return h
}

// CORS answers preflights with 204.
func CORS(origins ...string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods: []string{http.MethodPost},
		AllowHeaders: []string{"Content-Type"},
		MaxAge:       time.Hour,
	}
	if allowsAllOrigins(origins) {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, httpresp.NewStatusResponse("ok"))
	})

	upload := r.Group("/upload_image")
	upload.Use(CORS(h.origins...))
	{
		upload.OPTIONS("", h.preflight)
		upload.POST("", middleware.ServiceAuthRequired(h.verifier), middleware.BodyLimit(h.maxBytes), h.uploadImage)
	}
}

// preflight fills in the permissive set when the cors middleware skipped the request
// because it carried no Origin header.
func (h *Handler) preflight(c *gin.Context) {
	if c.GetHeader("Origin") == "" && allowsAllOrigins(h.origins) {
		hdr := c.Writer.Header()
		hdr.Set("Access-Control-Allow-Origin", "*")
		hdr.Set("Access-Control-Allow-Methods", http.MethodPost)
		hdr.Set("Access-Control-Allow-Headers", "Content-Type")
		hdr.Set("Access-Control-Max-Age", strconv.Itoa(int(time.Hour/time.Second)))
	}
	c.Status(http.StatusNoContent)
}

func allowsAllOrigins(origins []string) bool {
	return len(origins) == 0 || slices.Contains(origins, "*")
}

func (h *Handler) uploadImage(c *gin.Context) {
	header, err := c.FormFile(FileField)
	if middleware.BodyTooLarge(err) {
		c.String(http.StatusRequestEntityTooLarge, httpresp.ErrFileTooLarge)
		return
	}
	if err != nil {
		c.String(http.StatusBadRequest, httpresp.ErrFileNotFound)
		return
	}
	f, err := header.Open()
	if err != nil {
		c.String(http.StatusBadRequest, httpresp.ErrFileNotFound)
		return
	}
	defer f.Close()
	content, err := io.ReadAll(f)
	if err != nil {
		c.String(http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.normalizer.Normalize(c.Request.Context(), service.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Content:     content,
	})
	switch {
	case errors.Is(err, service.ErrUnsupportedType):
		c.String(http.StatusBadRequest, httpresp.ErrUnsupportedType)
	case errors.Is(err, service.ErrTransform):
		c.String(http.StatusBadRequest, "Could not process the uploaded image.")
	case err != nil:
		commonlog.Errorf("store upload %s: %v", header.Filename, err)
		c.String(http.StatusInternalServerError, "Failed to store the uploaded file.")
	default:
		commonlog.Infof("stored upload %s as %s", header.Filename, res.URL)
		c.JSON(http.StatusOK, res)
	}
}
