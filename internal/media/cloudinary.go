package media

import (
	"bytes"
	"context"
	"fmt"
	"net/url"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"github.com/quickai/quickai/internal/models"
)

// TransformBackgroundRemoval is applied at upload time for the
// remove-background flow.
const TransformBackgroundRemoval = "e_background_removal"

// RemoveObjectTransform builds the generative-removal transformation for a
// named object.
func RemoveObjectTransform(object string) string {
	return "e_gen_remove:prompt_" + url.PathEscape(object)
}

// Source is one uploadable piece of content: either an in-memory buffer or
// a filesystem path. Exactly one side is set.
type Source struct {
	Bytes []byte
	Path  string
}

func BytesSource(data []byte) Source { return Source{Bytes: data} }
func PathSource(path string) Source  { return Source{Path: path} }

// UploadResult is the hosted URL plus the asset identifier used for later
// transformation URLs.
type UploadResult struct {
	URL     string
	AssetID string
}

// CloudinaryStore uploads content to Cloudinary and builds transformed
// delivery URLs.
type CloudinaryStore struct {
	cld          *cloudinary.Cloudinary
	folderPrefix string
}

func NewCloudinaryStore(cloudinaryURL, folderPrefix string) (*CloudinaryStore, error) {
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create Cloudinary client: %w", err)
	}
	return &CloudinaryStore{cld: cld, folderPrefix: folderPrefix}, nil
}

// Upload stores the content under folderPrefix/folder, optionally applying
// an incoming transformation, and returns the hosted URL and asset ID.
// Buffer and path sources behave identically.
func (s *CloudinaryStore) Upload(ctx context.Context, src Source, folder, transformation string) (UploadResult, error) {
	params := uploader.UploadParams{
		Folder:         s.folderPrefix + "/" + folder,
		ResourceType:   "image",
		Transformation: transformation,
	}

	var file interface{}
	switch {
	case len(src.Bytes) > 0:
		file = bytes.NewReader(src.Bytes)
	case src.Path != "":
		file = src.Path
	default:
		return UploadResult{}, models.NewError(models.KindStorage, "Image data missing.")
	}

	resp, err := s.cld.Upload.Upload(ctx, file, params)
	if err != nil {
		return UploadResult{}, models.WrapError(models.KindStorage, "Failed to upload media", err)
	}
	if resp.SecureURL == "" {
		return UploadResult{}, models.NewError(models.KindStorage, "Media store returned no URL")
	}
	return UploadResult{URL: resp.SecureURL, AssetID: resp.PublicID}, nil
}

// TransformedURL composes a delivery URL that applies a named transformation
// to an already uploaded asset, without a second upload.
func (s *CloudinaryStore) TransformedURL(assetID, transformation string) (string, error) {
	img, err := s.cld.Image(assetID)
	if err != nil {
		return "", models.WrapError(models.KindStorage, "Failed to build media URL", err)
	}
	img.Transformation = transformation
	u, err := img.String()
	if err != nil {
		return "", models.WrapError(models.KindStorage, "Failed to build media URL", err)
	}
	return u, nil
}
