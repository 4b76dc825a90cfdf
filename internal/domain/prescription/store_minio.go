package prescription

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioStore keeps prescription documents in an S3-compatible bucket.
// Objects are keyed "<encounterID>/<uuid>.pdf" so an encounter's documents
// share a listable prefix; descriptive fields ride along as user metadata.
// The public id uses a dot instead of the slash so it survives a URL path
// segment.
type MinioStore struct {
	client *minio.Client
	bucket string
}

type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

func NewMinioStore(ctx context.Context, cfg MinioConfig) (*MinioStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to object store: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("checking bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("creating bucket: %w", err)
		}
	}
	return &MinioStore{client: client, bucket: cfg.Bucket}, nil
}

func objectName(id string) string {
	return strings.Replace(id, ".", "/", 1) + ".pdf"
}

func idFromKey(key string) string {
	return strings.Replace(strings.TrimSuffix(key, ".pdf"), "/", ".", 1)
}

func (s *MinioStore) Upload(ctx context.Context, meta Prescription, content io.Reader) (*Prescription, error) {
	data, err := validateUpload(&meta, content)
	if err != nil {
		return nil, err
	}

	h := sha256.Sum256(data)
	meta.ID = meta.EncounterID + "." + uuid.New().String()
	meta.Size = int64(len(data))
	meta.Hash = fmt.Sprintf("%x", h)
	meta.CreatedAt = time.Now().UTC()

	_, err = s.client.PutObject(ctx, s.bucket, objectName(meta.ID),
		bytes.NewReader(data), meta.Size, minio.PutObjectOptions{
			ContentType: meta.ContentType,
			UserMetadata: map[string]string{
				"filename":   meta.FileName,
				"patient-id": meta.PatientID,
				"doctor-id":  meta.DoctorID,
				"hash":       meta.Hash,
			},
		})
	if err != nil {
		return nil, fmt.Errorf("storing prescription: %w", err)
	}

	out := meta
	return &out, nil
}

func (s *MinioStore) Download(ctx context.Context, id string) (io.ReadCloser, *Prescription, error) {
	stat, err := s.client.StatObject(ctx, s.bucket, objectName(id), minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}

	obj, err := s.client.GetObject(ctx, s.bucket, objectName(id), minio.GetObjectOptions{})
	if err != nil {
		return nil, nil, err
	}
	return obj, metaFromStat(id, stat), nil
}

func (s *MinioStore) ListByEncounter(ctx context.Context, encounterID string) ([]*Prescription, error) {
	var out []*Prescription
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix: encounterID + "/",
	}) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		id := idFromKey(obj.Key)
		stat, err := s.client.StatObject(ctx, s.bucket, obj.Key, minio.StatObjectOptions{})
		if err != nil {
			return nil, err
		}
		out = append(out, metaFromStat(id, stat))
	}
	return out, nil
}

func (s *MinioStore) Delete(ctx context.Context, id string) error {
	if _, err := s.client.StatObject(ctx, s.bucket, objectName(id), minio.StatObjectOptions{}); err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return ErrNotFound
		}
		return err
	}
	return s.client.RemoveObject(ctx, s.bucket, objectName(id), minio.RemoveObjectOptions{})
}

func metaFromStat(id string, stat minio.ObjectInfo) *Prescription {
	encounterID := id
	if i := strings.IndexByte(id, '.'); i >= 0 {
		encounterID = id[:i]
	}
	return &Prescription{
		ID:          id,
		EncounterID: encounterID,
		PatientID:   stat.UserMetadata["Patient-Id"],
		DoctorID:    stat.UserMetadata["Doctor-Id"],
		FileName:    stat.UserMetadata["Filename"],
		ContentType: stat.ContentType,
		Size:        stat.Size,
		Hash:        stat.UserMetadata["Hash"],
		CreatedAt:   stat.LastModified,
	}
}
