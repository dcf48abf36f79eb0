// Package media talks to the Cloudinary media API: asset search and
// transformation URL construction.
package media

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/admin/search"

	"github.com/krishkalaria12/pixelmind/transform"
)

const maxSearchResults = 500

// Searcher resolves a free-text query to the public ids of matching assets.
type Searcher interface {
	Search(ctx context.Context, query string) ([]string, error)
}

// URLBuilder builds delivery URLs with a transformation applied.
type URLBuilder interface {
	TransformationURL(publicID string, cfg transform.Config) (string, error)
}

type Cloudinary struct {
	cld    *cloudinary.Cloudinary
	folder string
}

func NewCloudinary(cloudinaryURL, folder string) (*Cloudinary, error) {
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("cloudinary: %w", err)
	}
	cld.Config.URL.Secure = true
	return &Cloudinary{cld: cld, folder: folder}, nil
}

// SearchExpression scopes query to the application folder.
func SearchExpression(folder, query string) string {
	expr := "folder=" + folder
	if q := strings.TrimSpace(query); q != "" {
		expr += " AND (" + q + ")"
	}
	return expr
}

func (c *Cloudinary) Search(ctx context.Context, query string) ([]string, error) {
	q := search.Query{
		Expression: SearchExpression(c.folder, query),
		MaxResults: maxSearchResults,
	}

	ids := make([]string, 0)
	for {
		res, err := c.cld.Admin.Search(ctx, q)
		if err != nil {
			return nil, fmt.Errorf("cloudinary search: %w", err)
		}
		if res.Error.Message != "" {
			return nil, fmt.Errorf("cloudinary search: %s", res.Error.Message)
		}
		for _, a := range res.Assets {
			ids = append(ids, a.PublicID)
		}
		if res.NextCursor == "" {
			return ids, nil
		}
		q.NextCursor = res.NextCursor
	}
}

func (c *Cloudinary) TransformationURL(publicID string, cfg transform.Config) (string, error) {
	img, err := c.cld.Image(publicID)
	if err != nil {
		return "", fmt.Errorf("cloudinary image %s: %w", publicID, err)
	}
	img.Transformation = transform.Transformation(cfg)
	return img.String()
}
