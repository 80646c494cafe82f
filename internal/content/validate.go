package content

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var schema = newSchemaValidator()

func newSchemaValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterStructValidation(mediaAssetFiles, MediaAsset{})
	return v
}

// mediaAssetFiles enforces that exactly the file field matching the media
// type is populated.
func mediaAssetFiles(sl validator.StructLevel) {
	asset := sl.Current().Interface().(MediaAsset)

	hasImage := asset.ImageFile != nil && (asset.ImageFile.AssetRef != "" || asset.ImageFile.URL != "")
	hasOther := asset.OtherFile != nil && (asset.OtherFile.AssetRef != "" || asset.OtherFile.URL != "")

	if asset.IsImage() {
		if !hasImage {
			sl.ReportError(asset.ImageFile, "imageFile", "ImageFile", "required_for_image", "")
		}
		if hasOther {
			sl.ReportError(asset.OtherFile, "otherFile", "OtherFile", "excluded_for_image", "")
		}
		return
	}

	if !hasOther {
		sl.ReportError(asset.OtherFile, "otherFile", "OtherFile", "required_for_file", "")
	}
	if hasImage {
		sl.ReportError(asset.ImageFile, "imageFile", "ImageFile", "excluded_for_file", "")
	}
}

// Validate checks a document against the content schema.
func Validate(doc any) error {
	if err := schema.Struct(doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return nil
}
