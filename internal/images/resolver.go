package images

import (
	"context"
	"fmt"
)

const maxImageBytes = 10 << 20

// TokenValidator checks the caller's auth token.
type TokenValidator interface {
	Validate(token string) error
}

// ImageStore reads an image by its slash-separated name under the root.
type ImageStore interface {
	ReadImage(ctx context.Context, name string) ([]byte, error)
}

type Image struct {
	Data        []byte
	ContentType string
}

type Resolver struct {
	tokens TokenValidator
	store  ImageStore
}

func NewResolver(tokens TokenValidator, store ImageStore) *Resolver {
	return &Resolver{tokens: tokens, store: store}
}

// Resolve authorizes the token, validates the path and reads the image.
// Store failures of any kind surface as ErrNotFound with the cause wrapped.
func (r *Resolver) Resolve(ctx context.Context, token, requestPath string) (Image, error) {
	if token == "" || r.tokens.Validate(token) != nil {
		return Image{}, ErrUnauthorized
	}
	if err := ValidatePath(requestPath); err != nil {
		return Image{}, err
	}

	name := CleanName(requestPath)
	if name == "" {
		return Image{}, ErrNotFound
	}

	data, err := r.store.ReadImage(ctx, name)
	if err != nil {
		return Image{}, fmt.Errorf("%w: %w", ErrNotFound, err)
	}

	return Image{Data: data, ContentType: ContentTypeFor(name)}, nil
}
