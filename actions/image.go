package actions

import (
	"context"
	"fmt"

	"github.com/krishkalaria12/pixelmind/common"
	"github.com/krishkalaria12/pixelmind/logging"
	"github.com/krishkalaria12/pixelmind/media"
	"github.com/krishkalaria12/pixelmind/models"
	"github.com/krishkalaria12/pixelmind/store"
	"github.com/krishkalaria12/pixelmind/transform"
)

type ImageActions struct {
	store  store.Store
	users  *UserActions
	search media.Searcher
	urls   media.URLBuilder
	pages  Revalidator
	log    logging.Logger
}

func NewImageActions(s store.Store, users *UserActions, search media.Searcher, urls media.URLBuilder, pages Revalidator, log logging.Logger) *ImageActions {
	return &ImageActions{
		store:  s,
		users:  users,
		search: search,
		urls:   urls,
		pages:  pages,
		log:    log.With("actions", "image"),
	}
}

// AddImage saves a new image owned by userID and revalidates path.
func (a *ImageActions) AddImage(ctx context.Context, p models.ImageParams, userID, path string) (*models.Image, error) {
	author, err := a.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, handleError(ctx, a.log, "add image", fmt.Errorf("author: %w", err))
	}
	if err := p.Validate(); err != nil {
		return nil, handleError(ctx, a.log, "add image", err)
	}

	img := &models.Image{ID: models.NewImageID()}
	p.Apply(img)
	img.AuthorID = author.ID
	if err := a.resolveURL(img); err != nil {
		return nil, handleError(ctx, a.log, "add image", err)
	}

	if err := a.store.CreateImage(ctx, img); err != nil {
		return nil, handleError(ctx, a.log, "add image", fmt.Errorf("%w: %w", common.ErrCreationFailed, err))
	}
	a.pages.Revalidate(path)
	return img, nil
}

// UpdateImage replaces the fields of image p.ID. Only its author may do so.
// Both path and the listings are revalidated.
func (a *ImageActions) UpdateImage(ctx context.Context, p models.ImageParams, userID, path string) (*models.Image, error) {
	img, err := a.store.GetImage(ctx, p.ID)
	if err != nil {
		return nil, handleError(ctx, a.log, "update image", err)
	}
	if img.AuthorID != userID {
		return nil, handleError(ctx, a.log, "update image",
			fmt.Errorf("%w: image %s is not owned by %s", common.ErrUnauthorized, img.ID, userID))
	}
	if err := p.Validate(); err != nil {
		return nil, handleError(ctx, a.log, "update image", err)
	}

	p.Apply(img)
	if err := a.resolveURL(img); err != nil {
		return nil, handleError(ctx, a.log, "update image", err)
	}
	if err := a.store.UpdateImage(ctx, img); err != nil {
		return nil, handleError(ctx, a.log, "update image", fmt.Errorf("%w: %w", common.ErrUpdateFailed, err))
	}
	a.pages.Revalidate(path)
	// listings show the title and config too
	a.pages.Revalidate("/")
	return img, nil
}

// DeleteImage removes an image owned by userID.
func (a *ImageActions) DeleteImage(ctx context.Context, imageID, userID string) error {
	img, err := a.store.GetImage(ctx, imageID)
	if err != nil {
		return handleError(ctx, a.log, "delete image", err)
	}
	if img.AuthorID != userID {
		return handleError(ctx, a.log, "delete image",
			fmt.Errorf("%w: image %s is not owned by %s", common.ErrUnauthorized, img.ID, userID))
	}
	if err := a.store.DeleteImage(ctx, imageID); err != nil {
		return handleError(ctx, a.log, "delete image", err)
	}
	a.pages.Revalidate("/")
	return nil
}

func (a *ImageActions) GetImageByID(ctx context.Context, imageID string) (*models.Image, error) {
	img, err := a.store.GetImage(ctx, imageID)
	if err != nil {
		return nil, handleError(ctx, a.log, "get image", err)
	}
	return img, nil
}

// GetAllImages lists every user's images newest first. A search query is
// resolved through the media API to the set of matching public ids.
func (a *ImageActions) GetAllImages(ctx context.Context, p models.ListImagesParams) (*models.ImagePage, error) {
	limit, page := models.Normalize(p.Limit, p.Page)

	var q models.ImageQuery
	if p.SearchQuery != "" {
		ids, err := a.search.Search(ctx, p.SearchQuery)
		if err != nil {
			return nil, handleError(ctx, a.log, "get all images", err)
		}
		if ids == nil {
			ids = []string{}
		}
		q.PublicIDs = ids
	}

	matching, err := a.store.CountImages(ctx, q)
	if err != nil {
		return nil, handleError(ctx, a.log, "get all images", err)
	}
	saved := matching
	if q.PublicIDs != nil {
		if saved, err = a.store.CountImages(ctx, models.ImageQuery{}); err != nil {
			return nil, handleError(ctx, a.log, "get all images", err)
		}
	}

	q.Offset, q.Limit = (page-1)*limit, limit
	images, err := a.store.ListImages(ctx, q)
	if err != nil {
		return nil, handleError(ctx, a.log, "get all images", err)
	}

	return &models.ImagePage{
		Data:        images,
		TotalPages:  models.TotalPages(matching, limit),
		SavedImages: saved,
	}, nil
}

func (a *ImageActions) GetUserImages(ctx context.Context, p models.UserImagesParams) (*models.ImagePage, error) {
	limit, page := models.Normalize(p.Limit, p.Page)
	q := models.ImageQuery{AuthorID: p.UserID}

	count, err := a.store.CountImages(ctx, q)
	if err != nil {
		return nil, handleError(ctx, a.log, "get user images", err)
	}

	q.Offset, q.Limit = (page-1)*limit, limit
	images, err := a.store.ListImages(ctx, q)
	if err != nil {
		return nil, handleError(ctx, a.log, "get user images", err)
	}

	return &models.ImagePage{
		Data:       images,
		TotalPages: models.TotalPages(count, limit),
	}, nil
}

type PreviewRequest struct {
	PublicID string          `json:"publicId"`
	Config   transform.Value `json:"config"`
}

type Preview struct {
	TransformationURL string `json:"transformationURL"`
	CreditBalance     int    `json:"creditBalance"`
}

// PreviewTransformation builds the transformation URL for an uploaded asset
// and charges the transformation fee.
func (a *ImageActions) PreviewTransformation(ctx context.Context, userID string, req PreviewRequest) (*Preview, error) {
	if req.PublicID == "" || req.Config.IsZero() {
		return nil, handleError(ctx, a.log, "preview transformation",
			fmt.Errorf("%w: publicId and config are required", common.ErrInvalidInput))
	}
	if err := req.Config.Validate(); err != nil {
		return nil, handleError(ctx, a.log, "preview transformation", err)
	}
	url, err := a.urls.TransformationURL(req.PublicID, req.Config.Config)
	if err != nil {
		return nil, handleError(ctx, a.log, "preview transformation", err)
	}

	u, err := a.users.SpendCredits(ctx, userID, models.CreditFee)
	if err != nil {
		// already logged and prefixed
		return nil, err
	}
	return &Preview{TransformationURL: url, CreditBalance: u.CreditBalance}, nil
}

// resolveURL derives the transformation URL from the config when one is set.
func (a *ImageActions) resolveURL(img *models.Image) error {
	if img.Config.IsZero() {
		return nil
	}
	url, err := a.urls.TransformationURL(img.PublicID, img.Config.Config)
	if err != nil {
		return err
	}
	img.TransformationURL = url
	return nil
}
