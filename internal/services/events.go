package services

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"gallery-backend/internal/models"
	"gallery-backend/internal/repository"
	"gallery-backend/internal/storage"
)

// extContentTypes maps allowed upload extensions to the canonical content
// type stored with the object. The stored type is always derived from the
// extension, never taken from the client.
var extContentTypes = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"webp": "image/webp",
	"gif":  "image/gif",
	"avif": "image/avif",
}

// allowedMIMETypes is the allow-list for the client-declared MIME type.
var allowedMIMETypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
	"image/avif": true,
}

// EventService implements the event and image operations. Every mutation
// follows a load, mutate, sort, save sequence against the catalog; image
// existence is always derived from the object store, not the catalog.
type EventService struct {
	catalog   *repository.CatalogRepository
	store     storage.ObjectStore
	publicURL string
}

// NewEventService creates a new event service
func NewEventService(catalog *repository.CatalogRepository, store storage.ObjectStore, publicURL string) *EventService {
	return &EventService{
		catalog:   catalog,
		store:     store,
		publicURL: publicURL,
	}
}

// CreateEventRequest represents the request body for creating an event
type CreateEventRequest struct {
	Name string `json:"name" validate:"required"`
	Date string `json:"date" validate:"required"`
}

// UpdateEventRequest represents a partial event update; nil fields are left
// untouched
type UpdateEventRequest struct {
	Name     *string `json:"name"`
	Date     *string `json:"date"`
	Archived *bool   `json:"archived"`
	Hidden   *bool   `json:"hidden"`
}

// ListEvents returns catalog events, excluding hidden ones unless
// includeHidden is set
func (s *EventService) ListEvents(ctx context.Context, includeHidden bool) ([]models.Event, error) {
	catalog, err := s.catalog.Load(ctx)
	if err != nil {
		return nil, err
	}

	if includeHidden {
		return catalog.Events, nil
	}

	visible := make([]models.Event, 0, len(catalog.Events))
	for _, event := range catalog.Events {
		if !event.Hidden {
			visible = append(visible, event)
		}
	}
	return visible, nil
}

// CreateEvent appends a new event to the catalog and persists it
func (s *EventService) CreateEvent(ctx context.Context, req CreateEventRequest) (*models.Event, error) {
	if req.Name == "" || req.Date == "" {
		return nil, validationErrorf("name and date are required")
	}

	catalog, err := s.catalog.Load(ctx)
	if err != nil {
		return nil, err
	}

	event := models.Event{
		ID:        fmt.Sprintf("%s-%s", req.Date, randomSuffix()),
		Name:      req.Name,
		Date:      req.Date,
		CreatedAt: time.Now().UTC(),
	}

	catalog.Events = append(catalog.Events, event)
	catalog.SortByDateDesc()

	if err := s.catalog.Save(ctx, catalog); err != nil {
		return nil, err
	}
	return &event, nil
}

// UpdateEvent applies the non-nil fields of the request to an existing event
func (s *EventService) UpdateEvent(ctx context.Context, id string, req UpdateEventRequest) (*models.Event, error) {
	catalog, err := s.catalog.Load(ctx)
	if err != nil {
		return nil, err
	}

	event := catalog.FindEvent(id)
	if event == nil {
		return nil, ErrEventNotFound
	}

	if req.Name != nil {
		event.Name = *req.Name
	}
	if req.Date != nil {
		event.Date = *req.Date
	}
	if req.Archived != nil {
		event.Archived = *req.Archived
	}
	if req.Hidden != nil {
		event.Hidden = *req.Hidden
	}

	// The date may have changed, so the ordering is re-established.
	catalog.SortByDateDesc()

	if err := s.catalog.Save(ctx, catalog); err != nil {
		return nil, err
	}

	updated := *catalog.FindEvent(id)
	return &updated, nil
}

// DeleteEvent purges every object under the event's prefix, then removes the
// event from the catalog. If the purge fails partway, the catalog entry is
// left in place so the remaining objects stay reachable.
func (s *EventService) DeleteEvent(ctx context.Context, id string) error {
	catalog, err := s.catalog.Load(ctx)
	if err != nil {
		return err
	}

	index := -1
	for i := range catalog.Events {
		if catalog.Events[i].ID == id {
			index = i
			break
		}
	}
	if index == -1 {
		return ErrEventNotFound
	}

	prefix := eventPrefix(id)
	cursor := ""
	for {
		page, err := s.store.List(ctx, prefix, cursor)
		if err != nil {
			return fmt.Errorf("failed to list event objects: %w", err)
		}
		if len(page.Objects) > 0 {
			keys := make([]string, len(page.Objects))
			for i, obj := range page.Objects {
				keys[i] = obj.Key
			}
			if err := s.store.DeleteBatch(ctx, keys); err != nil {
				return fmt.Errorf("failed to delete event objects: %w", err)
			}
		}
		if !page.Truncated {
			break
		}
		cursor = page.Cursor
	}

	catalog.Events = append(catalog.Events[:index], catalog.Events[index+1:]...)
	return s.catalog.Save(ctx, catalog)
}

// ListImages lists the event's stored objects. It never consults the
// catalog, so the result always reflects what is physically stored.
func (s *EventService) ListImages(ctx context.Context, eventID string) ([]models.Image, error) {
	objects, err := s.listObjects(ctx, eventPrefix(eventID))
	if err != nil {
		return nil, err
	}

	images := make([]models.Image, 0, len(objects))
	for _, obj := range objects {
		images = append(images, models.Image{
			ID:       models.ImageIDFromKey(obj.Key),
			Key:      obj.Key,
			URL:      s.objectURL(obj.Key),
			Uploaded: obj.Uploaded,
		})
	}
	return images, nil
}

// UploadImage validates and stores a new image for an event. The first
// upload to an event becomes its cover image; later uploads never replace
// the cover.
func (s *EventService) UploadImage(ctx context.Context, eventID, filename, declaredType string, file io.Reader) (*models.Image, error) {
	catalog, err := s.catalog.Load(ctx)
	if err != nil {
		return nil, err
	}

	event := catalog.FindEvent(eventID)
	if event == nil {
		return nil, ErrEventNotFound
	}
	if event.Archived {
		return nil, validationErrorf("Cannot upload to archived event")
	}

	ext := strings.ToLower(filename)
	if i := strings.LastIndex(filename, "."); i >= 0 {
		ext = strings.ToLower(filename[i+1:])
	}
	contentType, ok := extContentTypes[ext]
	if !ok {
		return nil, validationErrorf("Invalid file type: .%s. Allowed: jpg, png, webp, gif, avif", ext)
	}

	// The declared type is checked independently, but never stored.
	if declaredType != "" && !allowedMIMETypes[declaredType] {
		return nil, validationErrorf("Invalid MIME type: %s", declaredType)
	}

	// A fresh key per upload; the original filename only contributes the
	// extension.
	name := fmt.Sprintf("%d-%s.%s", time.Now().UnixMilli(), randomSuffix(), ext)
	key := eventPrefix(eventID) + name

	if err := s.store.Put(ctx, key, file, contentType); err != nil {
		return nil, fmt.Errorf("failed to store image: %w", err)
	}

	image := &models.Image{
		ID:       models.ImageIDFromKey(key),
		Key:      key,
		URL:      s.objectURL(key),
		Uploaded: time.Now().UTC(),
	}

	if event.CoverImage == nil {
		event.CoverImage = &image.URL
		if err := s.catalog.Save(ctx, catalog); err != nil {
			return nil, err
		}
	}
	return image, nil
}

// DeleteImage removes one stored image, resolved by its derived ID. If the
// deleted object was the event's cover image, the cover is reassigned to
// another remaining image, or cleared when none remain.
func (s *EventService) DeleteImage(ctx context.Context, eventID, imageID string) error {
	objects, err := s.listObjects(ctx, eventPrefix(eventID))
	if err != nil {
		return err
	}

	var target *storage.Object
	for i := range objects {
		if models.ImageIDFromKey(objects[i].Key) == imageID {
			target = &objects[i]
			break
		}
	}
	if target == nil {
		return ErrImageNotFound
	}

	if err := s.store.Delete(ctx, target.Key); err != nil {
		return fmt.Errorf("failed to delete image: %w", err)
	}

	catalog, err := s.catalog.Load(ctx)
	if err != nil {
		return err
	}
	event := catalog.FindEvent(eventID)
	if event == nil || event.CoverImage == nil || *event.CoverImage != s.objectURL(target.Key) {
		return nil
	}

	// Reassign the cover from the listing fetched above, excluding the
	// object just deleted.
	event.CoverImage = nil
	for _, obj := range objects {
		if obj.Key != target.Key {
			url := s.objectURL(obj.Key)
			event.CoverImage = &url
			break
		}
	}
	return s.catalog.Save(ctx, catalog)
}

// listObjects walks the paginated listing until the store reports no more
// pages
func (s *EventService) listObjects(ctx context.Context, prefix string) ([]storage.Object, error) {
	var objects []storage.Object
	cursor := ""
	for {
		page, err := s.store.List(ctx, prefix, cursor)
		if err != nil {
			return nil, fmt.Errorf("failed to list prefix %s: %w", prefix, err)
		}
		objects = append(objects, page.Objects...)
		if !page.Truncated {
			break
		}
		cursor = page.Cursor
	}
	return objects, nil
}

func (s *EventService) objectURL(key string) string {
	return s.publicURL + "/" + key
}

func eventPrefix(eventID string) string {
	return "events/" + eventID + "/"
}

func randomSuffix() string {
	return uuid.NewString()[:8]
}
