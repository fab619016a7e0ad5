package service

import (
	"context"
	"fmt"
	"io"
	"slices"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"shopmap/internal/keys"
	"shopmap/internal/store"
)

type Image struct {
	URL        string `json:"url"`
	DisplayURL string `json:"display_url"`
}

// Images lists a shop's photos. In cloud mode the display URL is signed.
func (s *ShopService) Images(ctx context.Context, user uuid.UUID, index int) ([]Image, error) {
	_, mode, records, err := s.load(ctx, user)
	if err != nil {
		return nil, err
	}
	if err := checkIndex(records, index); err != nil {
		return nil, err
	}

	images := make([]Image, 0, len(records[index].ImageURLs))
	for _, u := range records[index].ImageURLs {
		display := u
		if mode == store.ModeCloud && s.photos != nil {
			display = s.photos.SignedURL(ctx, u)
		}
		images = append(images, Image{URL: u, DisplayURL: display})
	}
	return images, nil
}

// AttachImage uploads a photo for the shop at index and appends its URL to
// the record. Uploads need a signed-in user.
func (s *ShopService) AttachImage(ctx context.Context, user uuid.UUID, index int, filename, contentType string, r io.Reader, size int64) (string, error) {
	if user == uuid.Nil {
		return "", ErrCloudRequired
	}
	if s.photos == nil {
		return "", ErrStorageUnavailable
	}
	if !keys.IsImageExt(keys.Ext(filename)) {
		return "", ErrUnsupportedImage
	}

	st, _, records, err := s.load(ctx, user)
	if err != nil {
		return "", err
	}
	if err := checkIndex(records, index); err != nil {
		return "", err
	}

	u, err := s.photos.Upload(ctx, user, records[index].Name, filename, contentType, r, size)
	if err != nil {
		return "", fmt.Errorf("upload photo: %w", err)
	}
	records[index].ImageURLs = append(records[index].ImageURLs, u)
	if err := st.Save(ctx, records); err != nil {
		return "", fmt.Errorf("save records: %w", err)
	}
	return u, nil
}

// RemoveImage drops the photo at pos from the shop at index. In cloud mode
// the object is removed from storage first; a failed removal is logged and
// the URL is dropped anyway.
func (s *ShopService) RemoveImage(ctx context.Context, user uuid.UUID, index, pos int) error {
	st, mode, records, err := s.load(ctx, user)
	if err != nil {
		return err
	}
	if err := checkIndex(records, index); err != nil {
		return err
	}
	urls := records[index].ImageURLs
	if pos < 0 || pos >= len(urls) {
		return fmt.Errorf("%w: image %d of shop %d", ErrNotFound, pos, index)
	}

	target := urls[pos]
	if mode == store.ModeCloud && s.photos != nil {
		if _, err := s.photos.Delete(ctx, target); err != nil {
			s.logger.Warn("failed to remove photo from storage", zap.String("url", target), zap.Error(err))
		}
	}

	records[index].ImageURLs = slices.Delete(slices.Clone(urls), pos, pos+1)
	if len(records[index].ImageURLs) == 0 {
		records[index].ImageURLs = nil
	}
	if err := st.Save(ctx, records); err != nil {
		return fmt.Errorf("save records: %w", err)
	}
	return nil
}
