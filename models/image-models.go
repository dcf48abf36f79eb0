package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/krishkalaria12/pixelmind/common"
	"github.com/krishkalaria12/pixelmind/transform"
)

const DefaultPageLimit = 9

type Image struct {
	ID                 string          `json:"id"`
	Title              string          `json:"title"`
	TransformationType transform.Type  `json:"transformationType"`
	PublicID           string          `json:"publicId"`
	SecureURL          string          `json:"secureURL"`
	Width              int             `json:"width,omitempty"`
	Height             int             `json:"height,omitempty"`
	Config             transform.Value `json:"config"`
	TransformationURL  string          `json:"transformationURL,omitempty"`
	AspectRatio        string          `json:"aspectRatio,omitempty"`
	Color              string          `json:"color,omitempty"`
	Prompt             string          `json:"prompt,omitempty"`
	AuthorID           string          `json:"authorId"`
	CreatedAt          time.Time       `json:"createdAt"`
	UpdatedAt          time.Time       `json:"updatedAt"`

	// Populated on single image reads.
	Author *Author `json:"author,omitempty"`
}

// Author is the public summary of an image owner.
type Author struct {
	ID        string `json:"_id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	ClerkID   string `json:"clerkId"`
}

// ImageParams carries the client supplied fields of an image.
type ImageParams struct {
	ID                 string          `json:"_id,omitempty"`
	Title              string          `json:"title"`
	PublicID           string          `json:"publicId"`
	TransformationType transform.Type  `json:"transformationType"`
	Width              int             `json:"width"`
	Height             int             `json:"height"`
	Config             transform.Value `json:"config"`
	SecureURL          string          `json:"secureURL"`
	TransformationURL  string          `json:"transformationURL"`
	AspectRatio        string          `json:"aspectRatio,omitempty"`
	Prompt             string          `json:"prompt,omitempty"`
	Color              string          `json:"color,omitempty"`
}

// Validate checks the fields the media API relies on. The config, when
// present, must be of the declared transformation type.
func (p ImageParams) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return fmt.Errorf("%w: title is required", common.ErrInvalidInput)
	}
	if p.PublicID == "" {
		return fmt.Errorf("%w: publicId is required", common.ErrInvalidInput)
	}
	if !p.TransformationType.Valid() {
		return fmt.Errorf("%w: unknown transformation type %q", common.ErrInvalidInput, p.TransformationType)
	}
	if p.Config.IsZero() {
		return nil
	}
	if p.Config.Type() != p.TransformationType {
		return fmt.Errorf("%w: %s config on a %s image", common.ErrInvalidInput, p.Config.Type(), p.TransformationType)
	}
	return p.Config.Validate()
}

// Apply copies the params onto img. Ownership and timestamps are untouched.
func (p ImageParams) Apply(img *Image) {
	img.Title = p.Title
	img.PublicID = p.PublicID
	img.TransformationType = p.TransformationType
	img.Width = p.Width
	img.Height = p.Height
	img.Config = p.Config
	img.SecureURL = p.SecureURL
	img.TransformationURL = p.TransformationURL
	img.AspectRatio = p.AspectRatio
	img.Prompt = p.Prompt
	img.Color = p.Color
}

// ImageQuery filters image listings in the store. A nil PublicIDs means no
// filter; an empty non-nil slice matches nothing.
type ImageQuery struct {
	AuthorID  string
	PublicIDs []string
	Offset    int
	Limit     int
}

type ListImagesParams struct {
	Limit       int
	Page        int
	SearchQuery string
}

type UserImagesParams struct {
	Limit  int
	Page   int
	UserID string
}

type ImagePage struct {
	Data        []*Image `json:"data"`
	TotalPages  int      `json:"totalPage"`
	SavedImages int      `json:"savedImages,omitempty"`
}

// Normalize applies the default limit and first page.
func Normalize(limit, page int) (int, int) {
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	if page <= 0 {
		page = 1
	}
	return limit, page
}

// TotalPages returns ceil(count/limit).
func TotalPages(count, limit int) int {
	if limit <= 0 {
		return 0
	}
	return (count + limit - 1) / limit
}
