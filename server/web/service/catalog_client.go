package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"syscourse/server/catalog/domain"
	commonauth "syscourse/server/common/auth"
	"syscourse/server/common/infra/gateway"
)

var ErrInvalidID = errors.New("invalid document id")

// Minter produces a fresh service assertion for one call.
type Minter func() (gateway.Assertion, error)

// KeyfileMinter mints from the service account key at keyPath on every call.
func KeyfileMinter(keyPath, identity, audience string) Minter {
	return func() (gateway.Assertion, error) {
		creds, err := commonauth.Mint(keyPath, identity, audience)
		if err != nil {
			return nil, err
		}
		return creds, nil
	}
}

// CatalogClient talks to the course, resource and upload functions behind the gateway.
// Every non-2xx answer surfaces as an error wrapping gateway.ErrUpstream.
type CatalogClient struct {
	http    *gateway.Client
	baseURL string
	mint    Minter
}

func NewCatalogClient(http *gateway.Client, baseURL string, mint Minter) *CatalogClient {
	return &CatalogClient{http: http, baseURL: baseURL, mint: mint}
}

type createdDocument struct {
	DocID      string `json:"doc_id"`
	CourseID   string `json:"course_id"`
	ResourceID string `json:"resource_id"`
}

func (c *CatalogClient) ListCourses(ctx context.Context) ([]domain.Course, error) {
	var out []domain.Course
	return out, c.getJSON(ctx, &out, "courses")
}

func (c *CatalogClient) GetCourse(ctx context.Context, courseID string) (domain.Course, error) {
	var out domain.Course
	return out, c.getJSON(ctx, &out, "courses", courseID)
}

// AddCourse returns the id the course helper assigned.
func (c *CatalogClient) AddCourse(ctx context.Context, course domain.Course) (string, error) {
	var out createdDocument
	if err := c.postJSON(ctx, course, &out, "courses"); err != nil {
		return "", err
	}
	if out.CourseID != "" {
		return out.CourseID, nil
	}
	return out.DocID, nil
}

// RemoveCourse deletes the course when uid owns it; the helper answers 401 otherwise.
func (c *CatalogClient) RemoveCourse(ctx context.Context, uid, courseID string) error {
	return c.delete(ctx, "courses", courseID, uid)
}

func (c *CatalogClient) ListResources(ctx context.Context) ([]domain.Resource, error) {
	var out []domain.Resource
	return out, c.getJSON(ctx, &out, "resources")
}

func (c *CatalogClient) GetResource(ctx context.Context, resourceID string) (domain.Resource, error) {
	var out domain.Resource
	return out, c.getJSON(ctx, &out, "resources", resourceID)
}

func (c *CatalogClient) ListResourcesByCourse(ctx context.Context, courseID string) ([]domain.Resource, error) {
	var out []domain.Resource
	return out, c.getJSON(ctx, &out, "resources", "course", courseID)
}

func (c *CatalogClient) AddResource(ctx context.Context, resource domain.Resource) (string, error) {
	var out createdDocument
	if err := c.postJSON(ctx, resource, &out, "resources"); err != nil {
		return "", err
	}
	if out.ResourceID != "" {
		return out.ResourceID, nil
	}
	return out.DocID, nil
}

func (c *CatalogClient) DeleteResource(ctx context.Context, resourceID string) error {
	return c.delete(ctx, "resources", resourceID)
}

// UploadFile forwards one file to the upload function as field filepond.
func (c *CatalogClient) UploadFile(ctx context.Context, filename, contentType string, content io.Reader) (domain.UploadResult, error) {
	creds, err := c.mint()
	if err != nil {
		return domain.UploadResult{}, fmt.Errorf("mint gateway credentials: %w", err)
	}
	resp, err := c.http.PostMultipart(ctx, creds, gateway.JoinURL(c.baseURL, "upload_image"), gateway.MultipartFile{
		Field:       "filepond",
		Filename:    filename,
		ContentType: contentType,
		Content:     content,
	})
	if err != nil {
		return domain.UploadResult{}, err
	}
	if err := resp.Err(); err != nil {
		return domain.UploadResult{}, err
	}
	var out domain.UploadResult
	return out, resp.DecodeJSON(&out)
}

func (c *CatalogClient) getJSON(ctx context.Context, out any, segments ...string) error {
	target, creds, err := c.prepare(segments...)
	if err != nil {
		return err
	}
	resp, err := c.http.Get(ctx, creds, target)
	if err != nil {
		return err
	}
	if err := resp.Err(); err != nil {
		return err
	}
	return resp.DecodeJSON(out)
}

func (c *CatalogClient) postJSON(ctx context.Context, payload, out any, segments ...string) error {
	target, creds, err := c.prepare(segments...)
	if err != nil {
		return err
	}
	resp, err := c.http.PostJSON(ctx, creds, target, payload)
	if err != nil {
		return err
	}
	if err := resp.Err(); err != nil {
		return err
	}
	return resp.DecodeJSON(out)
}

func (c *CatalogClient) delete(ctx context.Context, segments ...string) error {
	target, creds, err := c.prepare(segments...)
	if err != nil {
		return err
	}
	resp, err := c.http.Delete(ctx, creds, target)
	if err != nil {
		return err
	}
	return resp.Err()
}

func (c *CatalogClient) prepare(segments ...string) (string, gateway.Assertion, error) {
	target, err := c.target(segments...)
	if err != nil {
		return "", nil, err
	}
	creds, err := c.mint()
	if err != nil {
		return "", nil, fmt.Errorf("mint gateway credentials: %w", err)
	}
	return target, creds, nil
}

// target rejects blank ids so a missing segment cannot collapse into a shorter route.
func (c *CatalogClient) target(segments ...string) (string, error) {
	for _, s := range segments {
		if strings.TrimSpace(s) == "" {
			return "", fmt.Errorf("%w: blank path segment in %q", ErrInvalidID, segments)
		}
	}
	return gateway.JoinURL(c.baseURL, segments...), nil
}
