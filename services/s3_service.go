package services

import (
	"context"
	"fmt"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// S3Service hands out short-lived presigned URLs so image bytes never
// pass through the API server. Chat images are keyed per session, which
// makes end-of-session cleanup a prefix concern.
type S3Service struct {
	Client *s3.Client
	Bucket string
}

// UploadTicket is a presigned PUT plus the key the client must echo
// back in the message or profile it attaches the object to.
type UploadTicket struct {
	UploadURL string `json:"uploadUrl"`
	Key       string `json:"key"`
}

const presignTTL = 5 * time.Minute

// PresignProfileUpload creates an upload slot for a profile photo.
func (s *S3Service) PresignProfileUpload(ctx context.Context, userID, fileName, contentType string) (UploadTicket, error) {
	key := path.Join("profile-pics", userID, uuid.New().String()+"-"+path.Base(fileName))
	return s.presignPut(ctx, key, contentType)
}

// PresignChatUpload creates an upload slot for a chat image.
func (s *S3Service) PresignChatUpload(ctx context.Context, sessionID, contentType string) (UploadTicket, error) {
	key := path.Join("chat-images", sessionID, uuid.New().String())
	return s.presignPut(ctx, key, contentType)
}

func (s *S3Service) presignPut(ctx context.Context, key, contentType string) (UploadTicket, error) {
	presigner := s3.NewPresignClient(s.Client)
	out, err := presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.Bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(presignTTL))
	if err != nil {
		return UploadTicket{}, fmt.Errorf("failed to presign upload: %w", err)
	}
	return UploadTicket{UploadURL: out.URL, Key: key}, nil
}

// PresignRead creates a short-lived download URL for a stored object.
func (s *S3Service) PresignRead(ctx context.Context, key string) (string, error) {
	presigner := s3.NewPresignClient(s.Client)
	out, err := presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(presignTTL))
	if err != nil {
		return "", fmt.Errorf("failed to presign read: %w", err)
	}
	return out.URL, nil
}
