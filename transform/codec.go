package transform

import (
	"encoding/json"
	"fmt"

	"github.com/krishkalaria12/pixelmind/common"
)

// Fields is the flat, type-tagged encoding of a Config shared by the JSON API
// and the stores.
type Fields struct {
	Type         Type   `json:"type" bson:"type"`
	AspectRatio  string `json:"aspectRatio,omitempty" bson:"aspect_ratio,omitempty"`
	Prompt       string `json:"prompt,omitempty" bson:"prompt,omitempty"`
	To           string `json:"to,omitempty" bson:"to,omitempty"`
	RemoveShadow bool   `json:"removeShadow,omitempty" bson:"remove_shadow,omitempty"`
	Multiple     bool   `json:"multiple,omitempty" bson:"multiple,omitempty"`
}

func Encode(c Config) Fields {
	switch v := c.(type) {
	case Fill:
		return Fields{Type: TypeFill, AspectRatio: v.AspectRatio}
	case Remove:
		return Fields{Type: TypeRemove, Prompt: v.Prompt, RemoveShadow: v.RemoveShadow, Multiple: v.Multiple}
	case Recolor:
		return Fields{Type: TypeRecolor, Prompt: v.Prompt, To: v.To, Multiple: v.Multiple}
	default:
		return Fields{Type: c.Type()}
	}
}

// Decode builds the variant named by f.Type. Fields foreign to that variant
// are dropped.
func Decode(f Fields) (Config, error) {
	switch f.Type {
	case TypeRestore:
		return Restore{}, nil
	case TypeRemoveBackground:
		return RemoveBackground{}, nil
	case TypeFill:
		return Fill{AspectRatio: f.AspectRatio}, nil
	case TypeRemove:
		return Remove{Prompt: f.Prompt, RemoveShadow: f.RemoveShadow, Multiple: f.Multiple}, nil
	case TypeRecolor:
		return Recolor{Prompt: f.Prompt, To: f.To, Multiple: f.Multiple}, nil
	default:
		return nil, fmt.Errorf("%w: unknown transformation type %q", common.ErrInvalidInput, f.Type)
	}
}

// Value holds an optional Config and gives it a JSON representation.
type Value struct {
	Config
}

func (v Value) IsZero() bool { return v.Config == nil }

func (v Value) MarshalJSON() ([]byte, error) {
	if v.Config == nil {
		return []byte("null"), nil
	}
	return json.Marshal(Encode(v.Config))
}

func (v *Value) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		v.Config = nil
		return nil
	}
	var f Fields
	if err := json.Unmarshal(b, &f); err != nil {
		return fmt.Errorf("%w: %v", common.ErrInvalidInput, err)
	}
	c, err := Decode(f)
	if err != nil {
		return err
	}
	v.Config = c
	return nil
}
