package repository

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"

	"hrms-backend/config"
)

// Attachment is a stored file read back into memory.
type Attachment struct {
	ID          primitive.ObjectID
	Name        string
	ContentType string
	Owner       primitive.ObjectID
	Data        []byte
}

type AttachmentStore interface {
	Upload(ctx context.Context, name, contentType string, owner primitive.ObjectID, r io.Reader) (primitive.ObjectID, error)
	Open(ctx context.Context, id primitive.ObjectID) (*Attachment, error)
}

type gridFSStore struct{}

// NewAttachmentStore stores files in the GridFS bucket of the connected database.
func NewAttachmentStore() AttachmentStore {
	return &gridFSStore{}
}

func (s *gridFSStore) Upload(ctx context.Context, name, contentType string, owner primitive.ObjectID, r io.Reader) (primitive.ObjectID, error) {
	bucket, err := config.GetGridFSBucket()
	if err != nil {
		return primitive.NilObjectID, err
	}

	opts := options.GridFSUpload().SetMetadata(bson.M{"content_type": contentType, "owner": owner})
	stream, err := bucket.OpenUploadStream(name, opts)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("failed to open upload stream: %w", err)
	}
	defer stream.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = stream.SetWriteDeadline(deadline)
	}
	if _, err := io.Copy(stream, r); err != nil {
		_ = stream.Abort()
		return primitive.NilObjectID, fmt.Errorf("failed to write attachment: %w", err)
	}

	id, ok := stream.FileID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("unexpected attachment id type %T", stream.FileID)
	}
	return id, nil
}

func (s *gridFSStore) Open(ctx context.Context, id primitive.ObjectID) (*Attachment, error) {
	bucket, err := config.GetGridFSBucket()
	if err != nil {
		return nil, err
	}

	stream, err := bucket.OpenDownloadStream(id)
	if err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to open attachment: %w", err)
	}
	defer stream.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = stream.SetReadDeadline(deadline)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, stream); err != nil {
		return nil, fmt.Errorf("failed to read attachment: %w", err)
	}

	file := stream.GetFile()
	att := &Attachment{ID: id, Name: file.Name, Data: buf.Bytes()}
	var meta struct {
		ContentType string             `bson:"content_type"`
		Owner       primitive.ObjectID `bson:"owner"`
	}
	if len(file.Metadata) > 0 && bson.Unmarshal(file.Metadata, &meta) == nil {
		att.ContentType = meta.ContentType
		att.Owner = meta.Owner
	}
	return att, nil
}
