package upload

import (
	"ai-course-concepts/config"
	"ai-course-concepts/internal/database"
	"ai-course-concepts/internal/database/model"
	s3client "ai-course-concepts/pkg/s3"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"ai-course-concepts/pkg/apperror"
	"ai-course-concepts/pkg/apperror/status"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/gofiber/fiber/v3"
)

type uploadResponse struct {
	DocID int64 `json:"doc_id"`
}

// HandleUpload stores one material file (S3 when a bucket is configured,
// local disk otherwise) and records it against a course and optional book.
func HandleUpload(c fiber.Ctx) error {
	trackingID := c.Get("X-Request-ID")

	courseID := strings.TrimSpace(c.FormValue("course_id"))
	if courseID == "" {
		return apperror.BadRequest(config.ModuleUpload, c, status.MissingParams, "course_id is required")
	}
	bookID := strings.TrimSpace(c.FormValue("book_id"))

	fh, err := c.FormFile("file")
	if err != nil {
		return apperror.BadRequest(config.ModuleUpload, c, status.MissingParams, "file is required")
	}
	if fh == nil || fh.Size == 0 {
		return apperror.BadRequest(config.ModuleUpload, c, status.MissingParams, "empty file")
	}

	file, err := fh.Open()
	if err != nil {
		return apperror.BadRequest(config.ModuleUpload, c, status.MissingParams, "cannot open file")
	}
	defer file.Close()

	// Hash and duplicate stream to storage
	hasher := sha256.New()
	tee := io.TeeReader(file, hasher)

	db, err := database.GetDB()
	if err != nil {
		return apperror.InternalError(config.ModuleUpload, c, status.New(status.StoreUnavailable, err))
	}

	if err := EnsureCourse(db, courseID); err != nil {
		return apperror.InternalError(config.ModuleUpload, c, err)
	}
	if bookID != "" {
		if err := EnsureBook(db, courseID, bookID); err != nil {
			return apperror.InternalError(config.ModuleUpload, c, err)
		}
	}

	useS3 := strings.TrimSpace(config.Cfg.S3.Bucket) != ""

	var storedPath string
	var sha256Hex string
	if useS3 {
		storedPath, sha256Hex, err = storeToS3(tee, fh, hasher)
	} else {
		storedPath, sha256Hex, err = storeToLocal(tee, fh, hasher)
	}
	if err != nil {
		return apperror.InternalError(config.ModuleUpload, c, err)
	}

	original := fh.Filename
	now := time.Now()
	doc := model.Document{
		CourseID:         courseID,
		OriginalFilename: &original,
		FilePath:         &storedPath,
		Sha256:           &sha256Hex,
		Status:           "uploaded",
		UploadedAt:       &now,
	}
	if bookID != "" {
		doc.BookID = &bookID
	}
	if err := db.Create(&doc).Error; err != nil {
		return apperror.InternalError(config.ModuleUpload, c, err)
	}

	return apperror.Success(config.ModuleUpload, c, apperror.FiberSuccessMessage{
		Code:       status.OK,
		Message:    "File uploaded successfully",
		TrackingID: trackingID,
		Data:       uploadResponse{DocID: doc.ID},
	})
}

func storeToLocal(r io.Reader, fh *multipart.FileHeader, hasher io.Writer) (string, string, error) {
	baseDir := filepath.Join("storage", "materials")
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return "", "", fmt.Errorf("failed to create storage dir: %w", err)
	}

	// We must read all for hash; buffer to temp then rename
	tmpFile, err := os.CreateTemp(baseDir, "upload-*.tmp")
	if err != nil {
		return "", "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() {
		tmpFile.Close()
		_ = os.Remove(tmpFile.Name())
	}()

	mw := io.MultiWriter(tmpFile, hasher)
	if _, err := io.Copy(mw, r); err != nil {
		return "", "", fmt.Errorf("failed to write file: %w", err)
	}

	sum := hasher.(interface{ Sum([]byte) []byte }).Sum(nil)
	shaHex := hex.EncodeToString(sum)
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if ext == "" {
		ext = ".pdf"
	}
	finalPath := filepath.Join(baseDir, fmt.Sprintf("%s%s", shaHex, ext))

	if err := os.Rename(tmpFile.Name(), finalPath); err != nil {
		return "", "", fmt.Errorf("failed to finalize file: %w", err)
	}

	return finalPath, shaHex, nil
}

func storeToS3(r io.Reader, fh *multipart.FileHeader, hasher io.Writer) (string, string, error) {
	client, err := s3client.GetClient()
	if err != nil {
		return "", "", fmt.Errorf("s3 client: %w", err)
	}

	bucket := config.Cfg.S3.Bucket
	// Ensure bucket exists
	if _, err := client.HeadBucket(cCtx(), &s3.HeadBucketInput{Bucket: aws.String(bucket)}); err != nil {
		_, crtErr := client.CreateBucket(cCtx(), &s3.CreateBucketInput{Bucket: aws.String(bucket)})
		if crtErr != nil {
			var bErr *s3types.BucketAlreadyOwnedByYou
			if !errors.As(crtErr, &bErr) {
				return "", "", fmt.Errorf("create bucket: %w", crtErr)
			}
		}
	}

	// We need body twice (hash + upload). Stream once into a buffer file while hashing.
	tmp, err := os.CreateTemp("", "s3-upload-*.tmp")
	if err != nil {
		return "", "", fmt.Errorf("tempfile: %w", err)
	}
	defer func() {
		tmp.Close()
		_ = os.Remove(tmp.Name())
	}()

	mw := io.MultiWriter(tmp, hasher)
	if _, err := io.Copy(mw, r); err != nil {
		return "", "", fmt.Errorf("stream copy: %w", err)
	}

	sum := hasher.(interface{ Sum([]byte) []byte }).Sum(nil)
	shaHex := hex.EncodeToString(sum)
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if ext == "" {
		ext = ".pdf"
	}
	key := fmt.Sprintf("materials/%s%s", shaHex, ext)

	if _, err := tmp.Seek(0, 0); err != nil {
		return "", "", fmt.Errorf("seek: %w", err)
	}
	_, err = client.PutObject(cCtx(), &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        tmp,
		ContentType: aws.String("application/pdf"),
	})
	if err != nil {
		return "", "", fmt.Errorf("put object: %w", err)
	}

	return fmt.Sprintf("s3://%s/%s", bucket, key), shaHex, nil
}

// cCtx returns a short-lived context for S3 calls.
func cCtx() context.Context {
	return context.Background()
}
