package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"

	"marketplace-server/config"
)

// ImageStore persists uploaded images and returns a URL clients can load.
type ImageStore interface {
	Upload(ctx context.Context, file io.Reader, filename, folder string) (string, error)
}

// NewImageStore builds the store selected by STORAGE_DRIVER.
func NewImageStore(ctx context.Context, cfg config.StorageConfig) (ImageStore, error) {
	switch cfg.Driver {
	case "cloudinary":
		return NewCloudinaryStore(cfg.CloudinaryURL, cfg.CloudinaryFolder)
	case "s3":
		return NewS3Store(ctx, cfg)
	default:
		return disabledStore{}, nil
	}
}

type disabledStore struct{}

func (disabledStore) Upload(context.Context, io.Reader, string, string) (string, error) {
	return "", ErrUnavailable("image uploads are not configured")
}

// CloudinaryStore uploads to a Cloudinary account.
type CloudinaryStore struct {
	cld        *cloudinary.Cloudinary
	rootFolder string
}

func NewCloudinaryStore(cloudinaryURL, rootFolder string) (*CloudinaryStore, error) {
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Cloudinary: %w", err)
	}
	return &CloudinaryStore{cld: cld, rootFolder: rootFolder}, nil
}

func (s *CloudinaryStore) Upload(ctx context.Context, file io.Reader, filename, folder string) (string, error) {
	overwrite := true
	unique := true
	publicID := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename)) + "-" + uuid.NewString()[:8]

	up, err := s.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder:         path.Join(s.rootFolder, folder),
		PublicID:       publicID,
		Overwrite:      &overwrite,
		UniqueFilename: &unique,
		ResourceType:   "image",
	})
	if err != nil {
		return "", fmt.Errorf("cloudinary upload: %w", err)
	}
	if up.Error.Message != "" {
		return "", fmt.Errorf("cloudinary upload: %s", up.Error.Message)
	}

	log.Printf("📸 Uploaded %s to Cloudinary", up.PublicID)
	return up.SecureURL, nil
}

// S3API is the subset of the S3 client used by S3Store.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Store uploads to a bucket and returns the object's virtual-hosted URL.
type S3Store struct {
	client S3API
	bucket string
	region string
}

func NewS3Store(ctx context.Context, cfg config.StorageConfig) (*S3Store, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.AWSRegion)}
	if cfg.AWSAccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AWSAccessKeyID,
			cfg.AWSSecretAccessKey,
			"",
		)))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &S3Store{
		client: s3.NewFromConfig(awsCfg),
		bucket: cfg.AWSS3Bucket,
		region: cfg.AWSRegion,
	}, nil
}

// NewS3StoreWithClient is used by tests to inject a fake client.
func NewS3StoreWithClient(client S3API, bucket, region string) *S3Store {
	return &S3Store{client: client, bucket: bucket, region: region}
}

func (s *S3Store) Upload(ctx context.Context, file io.Reader, filename, folder string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	key := path.Join("uploads", folder, uuid.NewString()+ext)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        file,
		ContentType: aws.String(contentTypeFor(ext)),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key), nil
}

func contentTypeFor(ext string) string {
	switch ext {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}

// AllowedImageExt reports whether the file extension is an accepted image type.
func AllowedImageExt(filename string) bool {
	return contentTypeFor(strings.ToLower(filepath.Ext(filename))) != "application/octet-stream"
}
