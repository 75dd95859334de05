package helpers

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

const (
	AvatarFolder = "avatars"
	SpotsFolder  = "spots"
	EventsFolder = "events"
	BlogsFolder  = "blogs"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

var (
	lowerRe   = regexp.MustCompile(`[a-z]`)
	upperRe   = regexp.MustCompile(`[A-Z]`)
	numberRe  = regexp.MustCompile(`\d`)
	specialRe = regexp.MustCompile(`[@$!%*?&]`)
)

func IsPasswordStrong(password string) bool {
	if len(password) < 8 {
		return false
	}
	return lowerRe.MatchString(password) &&
		upperRe.MatchString(password) &&
		numberRe.MatchString(password) &&
		specialRe.MatchString(password)
}

// StringTrim collapses runs of whitespace and trims both ends.
func StringTrim(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// RemoveDuplicates keeps the first occurrence of each non-empty value,
// comparing case-insensitively after trimming.
func RemoveDuplicates(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = StringTrim(v)
		if v == "" {
			continue
		}
		key := strings.ToLower(v)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, v)
	}
	return out
}

// ParsePagination reads offset/limit query values. Missing values fall back to
// the defaults; limit is capped at MaxLimit.
func ParsePagination(offsetStr, limitStr string) (offset, limit int, err error) {
	limit = DefaultLimit
	if limitStr != "" {
		limit, err = strconv.Atoi(limitStr)
		if err != nil || limit <= 0 {
			return 0, 0, fmt.Errorf("invalid limit parameter")
		}
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if offsetStr != "" {
		offset, err = strconv.Atoi(offsetStr)
		if err != nil || offset < 0 {
			return 0, 0, fmt.Errorf("invalid offset parameter")
		}
	}
	return offset, limit, nil
}

// ImageUploader stores images and returns their public URLs.
type ImageUploader interface {
	UploadImages(ctx context.Context, images []string, folder string) ([]string, error)
}

type CloudinaryUploader struct {
	cld    *cloudinary.Cloudinary
	logger *slog.Logger
}

func NewCloudinaryUploader(cld *cloudinary.Cloudinary, logger *slog.Logger) *CloudinaryUploader {
	return &CloudinaryUploader{cld: cld, logger: logger}
}

// UploadImages uploads each image (file path, URL or data URI) into folder.
// Values that are already Cloudinary URLs are kept as-is.
func (u *CloudinaryUploader) UploadImages(ctx context.Context, images []string, folder string) ([]string, error) {
	if u.cld == nil {
		return nil, fmt.Errorf("cloudinary is not configured")
	}
	urls := make([]string, 0, len(images))
	for i, src := range images {
		if strings.TrimSpace(src) == "" {
			u.logger.Debug("skipping empty image", "index", i)
			continue
		}
		if strings.HasPrefix(src, "https://res.cloudinary.com/") {
			urls = append(urls, src)
			continue
		}
		res, err := u.cld.Upload.Upload(ctx, src, uploader.UploadParams{
			Folder: folder,
			Tags:   []string{"tourly"},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to upload image %d: %w", i, err)
		}
		urls = append(urls, res.SecureURL)
	}
	return urls, nil
}
