package listings

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"campusconnect/internal/app/commands"
	"campusconnect/internal/app/dto"
	"campusconnect/internal/app/handlers/support"
	"campusconnect/internal/app/uow"
	domainlistings "campusconnect/internal/domain/listings"
)

const uploadListingPhotoKey = "listings.photos.upload"

var ErrUploaderUnavailable = errors.New("listings: photo uploader unavailable")

// PhotoUploader stores an object and returns its public URL.
type PhotoUploader interface {
	Upload(ctx context.Context, key string, reader io.Reader, contentType string) (string, error)
}

type UploadListingPhotoCommand struct {
	CallerID    string `validate:"required"`
	ListingID   string `validate:"required"`
	FileName    string
	ContentType string
	Reader      io.Reader `validate:"required"`
}

func (c UploadListingPhotoCommand) Key() string { return uploadListingPhotoKey }

func (c UploadListingPhotoCommand) ActorID() string { return c.CallerID }

type UploadListingPhotoHandler struct {
	UoWFactory uow.UoWFactory
	Uploader   PhotoUploader
	Logger     *slog.Logger
	Now        func() time.Time
}

func (h *UploadListingPhotoHandler) Handle(ctx context.Context, cmd UploadListingPhotoCommand) (*dto.Listing, error) {
	if h.Uploader == nil {
		return nil, ErrUploaderUnavailable
	}
	unit, ctx, err := support.BeginUnit(ctx, h.UoWFactory, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer unit.Close(ctx)

	listing, err := unit.Listings().ByID(ctx, domainlistings.ListingID(cmd.ListingID))
	if err != nil {
		return nil, err
	}
	if !listing.OwnedBy(cmd.CallerID) {
		return nil, domainlistings.ErrNotOwner
	}

	objectKey := photoObjectKey(listing.ID, cmd.FileName)
	publicURL, err := h.Uploader.Upload(ctx, objectKey, cmd.Reader, cmd.ContentType)
	if err != nil {
		return nil, fmt.Errorf("upload photo: %w", err)
	}

	now := time.Now()
	if h.Now != nil {
		now = h.Now()
	}
	if err := listing.AddPhoto(publicURL, now); err != nil {
		return nil, err
	}
	if err := unit.Listings().Save(ctx, listing); err != nil {
		return nil, err
	}
	view, err := mapWithOwner(ctx, unit, listing)
	if err != nil {
		return nil, err
	}
	if err := unit.Commit(ctx); err != nil {
		return nil, err
	}

	if h.Logger != nil {
		h.Logger.Info("listing photo added", "listing_id", listing.ID, "object_key", objectKey)
	}
	return &view, nil
}

func photoObjectKey(id domainlistings.ListingID, fileName string) string {
	ext := strings.ToLower(path.Ext(strings.TrimSpace(fileName)))
	if len(ext) > 8 {
		ext = ""
	}
	return fmt.Sprintf("listings/%s/%s%s", id, uuid.NewString(), ext)
}

var _ commands.Handler[UploadListingPhotoCommand, *dto.Listing] = (*UploadListingPhotoHandler)(nil)
