package actions

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krishkalaria12/pixelmind/common"
	"github.com/krishkalaria12/pixelmind/models"
	"github.com/krishkalaria12/pixelmind/transform"
)

func TestAddImage(t *testing.T) {
	e := newEnv(t)
	ann := e.createUser(t, "ann")
	ctx := context.Background()

	p := restoreParams("car")
	img, err := e.images.AddImage(ctx, p, ann.ID, "/")
	require.NoError(t, err)

	assert.Equal(t, ann.ID, img.AuthorID)
	assert.True(t, models.ValidID(img.ID, models.ImagePrefix))
	assert.Equal(t, "https://res.example.com/e_gen_restore/pixelmind/car", img.TransformationURL)
	assert.Equal(t, []string{"/"}, e.pages.paths)

	got, err := e.images.GetImageByID(ctx, img.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Author)
	assert.Equal(t, "clerk_ann", got.Author.ClerkID)
	assert.Equal(t, transform.Restore{}, got.Config.Config)
}

func TestAddImage_Rejects(t *testing.T) {
	e := newEnv(t)
	ann := e.createUser(t, "ann")
	ctx := context.Background()

	_, err := e.images.AddImage(ctx, restoreParams("car"), "user_missing", "/")
	assert.ErrorIs(t, err, common.ErrNotFound)

	bad := restoreParams("car")
	bad.TransformationType = transform.TypeRemove
	bad.Config = transform.Value{Config: transform.Remove{}}
	_, err = e.images.AddImage(ctx, bad, ann.ID, "/")
	assert.ErrorIs(t, err, common.ErrInvalidInput)

	assert.Empty(t, e.pages.paths)
}

func TestUpdateImage_OwnerOnly(t *testing.T) {
	e := newEnv(t)
	ann := e.createUser(t, "ann")
	bob := e.createUser(t, "bob")
	ctx := context.Background()

	img, err := e.images.AddImage(ctx, restoreParams("car"), ann.ID, "/")
	require.NoError(t, err)

	change := restoreParams("car")
	change.ID = img.ID
	change.Title = "stolen"

	_, err = e.images.UpdateImage(ctx, change, bob.ID, "/transformations/"+img.ID)
	require.ErrorIs(t, err, common.ErrUnauthorized)

	got, err := e.images.GetImageByID(ctx, img.ID)
	require.NoError(t, err)
	assert.Equal(t, "car", got.Title)

	change.Title = "renamed"
	change.TransformationType = transform.TypeRecolor
	change.Config = transform.Value{Config: transform.Recolor{Prompt: "car", To: "#f00"}}
	updated, err := e.images.UpdateImage(ctx, change, ann.ID, "/transformations/"+img.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Title)
	assert.Contains(t, updated.TransformationURL, "e_gen_recolor:prompt_car;to-color_f00")
	assert.Equal(t, []string{"/", "/transformations/" + img.ID, "/"}, e.pages.paths)

	_, err = e.images.UpdateImage(ctx, models.ImageParams{ID: "img_missing"}, ann.ID, "/")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestDeleteImage(t *testing.T) {
	e := newEnv(t)
	ann := e.createUser(t, "ann")
	bob := e.createUser(t, "bob")
	ctx := context.Background()

	img, err := e.images.AddImage(ctx, restoreParams("car"), ann.ID, "/")
	require.NoError(t, err)

	err = e.images.DeleteImage(ctx, img.ID, bob.ID)
	require.ErrorIs(t, err, common.ErrUnauthorized)
	_, err = e.images.GetImageByID(ctx, img.ID)
	require.NoError(t, err, "image must survive a non-owner delete")

	require.NoError(t, e.images.DeleteImage(ctx, img.ID, ann.ID))
	_, err = e.images.GetImageByID(ctx, img.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestGetAllImages_Pagination(t *testing.T) {
	e := newEnv(t)
	ann := e.createUser(t, "ann")
	ctx := context.Background()

	for i := range 20 {
		_, err := e.images.AddImage(ctx, restoreParams(fmt.Sprintf("img%02d", i)), ann.ID, "/")
		require.NoError(t, err)
	}

	page, err := e.images.GetAllImages(ctx, models.ListImagesParams{Limit: 9, Page: 1})
	require.NoError(t, err)
	assert.Len(t, page.Data, 9)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, 20, page.SavedImages)
	assert.Equal(t, "img19", page.Data[0].Title)

	last, err := e.images.GetAllImages(ctx, models.ListImagesParams{Limit: 9, Page: 3})
	require.NoError(t, err)
	assert.Len(t, last.Data, 2)
	assert.Equal(t, "img00", last.Data[1].Title)

	defaults, err := e.images.GetAllImages(ctx, models.ListImagesParams{})
	require.NoError(t, err)
	assert.Len(t, defaults.Data, models.DefaultPageLimit)
}

func TestGetAllImages_Search(t *testing.T) {
	e := newEnv(t)
	ann := e.createUser(t, "ann")
	ctx := context.Background()

	for _, title := range []string{"cat", "dog", "bird"} {
		_, err := e.images.AddImage(ctx, restoreParams(title), ann.ID, "/")
		require.NoError(t, err)
	}

	e.search.ids = []string{"pixelmind/cat", "pixelmind/bird"}
	page, err := e.images.GetAllImages(ctx, models.ListImagesParams{SearchQuery: "animals"})
	require.NoError(t, err)
	assert.Equal(t, "animals", e.search.query)
	assert.Len(t, page.Data, 2)
	assert.Equal(t, 1, page.TotalPages)
	assert.Equal(t, 3, page.SavedImages)

	e.search.ids = nil
	page, err = e.images.GetAllImages(ctx, models.ListImagesParams{SearchQuery: "nothing"})
	require.NoError(t, err)
	assert.Empty(t, page.Data)
	assert.Zero(t, page.TotalPages)
	assert.Equal(t, 3, page.SavedImages)

	e.search.err = errors.New("cloudinary down")
	_, err = e.images.GetAllImages(ctx, models.ListImagesParams{SearchQuery: "x"})
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "unknown error: "), err.Error())
}

func TestGetUserImages(t *testing.T) {
	e := newEnv(t)
	ann := e.createUser(t, "ann")
	bob := e.createUser(t, "bob")
	ctx := context.Background()

	for i := range 10 {
		_, err := e.images.AddImage(ctx, restoreParams(fmt.Sprintf("ann%d", i)), ann.ID, "/")
		require.NoError(t, err)
	}
	_, err := e.images.AddImage(ctx, restoreParams("bob0"), bob.ID, "/")
	require.NoError(t, err)

	page, err := e.images.GetUserImages(ctx, models.UserImagesParams{UserID: ann.ID, Page: 2, Limit: 9})
	require.NoError(t, err)
	assert.Len(t, page.Data, 1)
	assert.Equal(t, 2, page.TotalPages)

	empty := e.createUser(t, "cid")
	page, err = e.images.GetUserImages(ctx, models.UserImagesParams{UserID: empty.ID})
	require.NoError(t, err)
	assert.Empty(t, page.Data)
	assert.Zero(t, page.TotalPages)
}

func TestPreviewTransformation(t *testing.T) {
	e := newEnv(t)
	ann := e.createUser(t, "ann")
	ctx := context.Background()

	req := PreviewRequest{
		PublicID: "pixelmind/car",
		Config:   transform.Value{Config: transform.Fill{AspectRatio: "1:1"}},
	}
	preview, err := e.images.PreviewTransformation(ctx, ann.ID, req)
	require.NoError(t, err)
	assert.Equal(t, "https://res.example.com/c_pad,w_1000,h_1000,b_gen_fill/pixelmind/car", preview.TransformationURL)
	assert.Equal(t, models.DefaultCreditBalance-1, preview.CreditBalance)

	_, err = e.images.PreviewTransformation(ctx, ann.ID, PreviewRequest{PublicID: "pixelmind/car", Config: transform.Value{Config: transform.Remove{}}})
	assert.ErrorIs(t, err, common.ErrInvalidInput)

	u, err := e.users.GetUserByID(ctx, ann.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultCreditBalance-1, u.CreditBalance, "invalid configs are not charged")
}

func TestPreviewTransformation_InsufficientCredits(t *testing.T) {
	e := newEnv(t)
	ann := e.createUser(t, "ann")
	ctx := context.Background()

	_, err := e.users.UpdateCredits(ctx, ann.ID, -models.DefaultCreditBalance)
	require.NoError(t, err)

	_, err = e.images.PreviewTransformation(ctx, ann.ID, PreviewRequest{
		PublicID: "pixelmind/car",
		Config:   transform.Value{Config: transform.Restore{}},
	})
	assert.ErrorIs(t, err, common.ErrInsufficientCredits)
}
