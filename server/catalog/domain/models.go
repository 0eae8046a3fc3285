package domain

import "errors"

var (
	ErrNotFound = errors.New("document not found")
	ErrNotOwner = errors.New("caller does not own the document")
)

// Course mirrors the JSON the gateway exchanges for the courses collection.
// CourseID and DocumentID always carry the same value.
type Course struct {
	CourseID       string   `json:"course_id,omitempty"`
	DocumentID     string   `json:"document_id,omitempty"`
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Instructor     string   `json:"instructor"`
	Field          string   `json:"field"`
	Level          string   `json:"level"`
	Language       string   `json:"language"`
	ThumbnailURL   string   `json:"thumbnailUrl"`
	UID            string   `json:"uid"`
	RatingsAverage *float64 `json:"ratingsAverage,omitempty"`
	RatingsCount   *int     `json:"ratingsCount,omitempty"`
}

type Resource struct {
	ResourceID  string `json:"resource_id,omitempty"`
	DocumentID  string `json:"document_id,omitempty"`
	CourseID    string `json:"course_id"`
	Title       string `json:"title"`
	Type        string `json:"type"`
	URL         string `json:"url"`
	Description string `json:"description"`
	Thumbnail   string `json:"thumbnail"`
	UID         string `json:"uid"`
	Duration    *int   `json:"duration,omitempty"`
}

// UploadResult is the body of a successful POST /upload_image.
type UploadResult struct {
	ResourceID string `json:"resource_id"`
	URL        string `json:"url"`
}
