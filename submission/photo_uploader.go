package submission

import (
	ctx "context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/CatchLog/harvest-services/constants"
	"github.com/CatchLog/harvest-services/models/common"
	"github.com/CatchLog/harvest-services/models/harvest"
	"github.com/minio/minio-go/v7"
)

// PhotoUploader copies a report's locally-referenced catch photo to
// object storage before the report goes to the backend. Upload
// failures are side-effect class: the report syncs with a null photo
// reference rather than blocking forever on a media failure.
type PhotoUploader struct {
	Context  *common.Context
	Provider string
}

func NewPhotoUploader(context *common.Context) *PhotoUploader {
	return &PhotoUploader{
		Context:  context,
		Provider: constants.StorageProviderAWS,
	}
}

// Upload puts the report's photo in the photo bucket and returns its
// remote URL.
func (u *PhotoUploader) Upload(report *harvest.StoredReport) (string, error) {
	client := u.Context.S3Clients[u.Provider]
	if client == nil {
		return "", fmt.Errorf("No S3 client for provider %s", u.Provider)
	}
	localPath := report.Report.PhotoPath
	bucket := u.Context.Config.PhotoBucket
	objectName := fmt.Sprintf("photos/%s%s", report.ID, filepath.Ext(localPath))
	_, err := client.FPutObject(
		ctx.Background(),
		bucket,
		objectName,
		localPath,
		minio.PutObjectOptions{ContentType: contentTypeFor(localPath)})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/%s/%s", client.EndpointURL().String(), bucket, objectName), nil
}

func contentTypeFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".heic":
		return "image/heic"
	default:
		return "application/octet-stream"
	}
}
