// Package transform describes the per-type transformation settings that are
// stored with an image and forwarded to the media API.
package transform

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/krishkalaria12/pixelmind/common"
)

type Type string

const (
	TypeRestore          Type = "restore"
	TypeFill             Type = "fill"
	TypeRemove           Type = "remove"
	TypeRecolor          Type = "recolor"
	TypeRemoveBackground Type = "removeBackground"
)

var Types = []Type{TypeRestore, TypeFill, TypeRemove, TypeRecolor, TypeRemoveBackground}

func (t Type) Valid() bool {
	for _, v := range Types {
		if t == v {
			return true
		}
	}
	return false
}

// Config is one variant of the transformation settings. Each variant carries
// only the fields its transformation type uses.
type Config interface {
	Type() Type
	Validate() error
	// Effects returns the media API transformation components, in order.
	Effects() []string
}

type Restore struct{}

func (Restore) Type() Type        { return TypeRestore }
func (Restore) Validate() error   { return nil }
func (Restore) Effects() []string { return []string{"e_gen_restore"} }

type RemoveBackground struct{}

func (RemoveBackground) Type() Type        { return TypeRemoveBackground }
func (RemoveBackground) Validate() error   { return nil }
func (RemoveBackground) Effects() []string { return []string{"e_background_removal"} }

// Fill pads the image to the aspect ratio and fills the new area generatively.
type Fill struct {
	AspectRatio string
}

func (Fill) Type() Type { return TypeFill }

func (f Fill) Validate() error {
	if _, ok := AspectRatios[f.AspectRatio]; !ok {
		return fmt.Errorf("%w: unknown aspect ratio %q", common.ErrInvalidInput, f.AspectRatio)
	}
	return nil
}

func (f Fill) Effects() []string {
	ar := AspectRatios[f.AspectRatio]
	return []string{fmt.Sprintf("c_pad,w_%d,h_%d,b_gen_fill", ar.Width, ar.Height)}
}

// Remove erases the objects matching Prompt.
type Remove struct {
	Prompt       string
	RemoveShadow bool
	Multiple     bool
}

func (Remove) Type() Type { return TypeRemove }

func (r Remove) Validate() error {
	if strings.TrimSpace(r.Prompt) == "" {
		return fmt.Errorf("%w: remove requires a prompt", common.ErrInvalidInput)
	}
	return nil
}

func (r Remove) Effects() []string {
	params := []string{"prompt_" + escape(r.Prompt)}
	if r.Multiple {
		params = append(params, "multiple_true")
	}
	if r.RemoveShadow {
		params = append(params, "remove-shadow_true")
	}
	return []string{"e_gen_remove:" + strings.Join(params, ";")}
}

// Recolor paints the objects matching Prompt with the color To.
type Recolor struct {
	Prompt   string
	To       string
	Multiple bool
}

func (Recolor) Type() Type { return TypeRecolor }

func (r Recolor) Validate() error {
	if strings.TrimSpace(r.Prompt) == "" {
		return fmt.Errorf("%w: recolor requires a prompt", common.ErrInvalidInput)
	}
	if strings.TrimPrefix(strings.TrimSpace(r.To), "#") == "" {
		return fmt.Errorf("%w: recolor requires a target color", common.ErrInvalidInput)
	}
	return nil
}

func (r Recolor) Effects() []string {
	params := []string{
		"prompt_" + escape(r.Prompt),
		"to-color_" + strings.TrimPrefix(strings.TrimSpace(r.To), "#"),
	}
	if r.Multiple {
		params = append(params, "multiple_true")
	}
	return []string{"e_gen_recolor:" + strings.Join(params, ";")}
}

// Transformation joins the effects of c into a chained transformation string.
func Transformation(c Config) string {
	if c == nil {
		return ""
	}
	return strings.Join(c.Effects(), "/")
}

func escape(s string) string {
	return url.PathEscape(strings.TrimSpace(s))
}

type AspectRatio struct {
	Label  string `json:"label"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

var AspectRatios = map[string]AspectRatio{
	"1:1":  {Label: "Square (1:1)", Width: 1000, Height: 1000},
	"3:4":  {Label: "Standard Portrait (3:4)", Width: 1000, Height: 1334},
	"9:16": {Label: "Phone Portrait (9:16)", Width: 1000, Height: 1778},
}
