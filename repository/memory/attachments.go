package memory

import (
	"context"
	"fmt"
	"io"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"hrms-backend/repository"
)

type Attachments struct {
	mu    sync.Mutex
	files map[primitive.ObjectID]repository.Attachment
}

func NewAttachments() *Attachments {
	return &Attachments{files: map[primitive.ObjectID]repository.Attachment{}}
}

var _ repository.AttachmentStore = (*Attachments)(nil)

func (s *Attachments) Upload(_ context.Context, name, contentType string, owner primitive.ObjectID, r io.Reader) (primitive.ObjectID, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("read upload: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := primitive.NewObjectID()
	s.files[id] = repository.Attachment{ID: id, Name: name, ContentType: contentType, Owner: owner, Data: data}
	return id, nil
}

func (s *Attachments) Open(_ context.Context, id primitive.ObjectID) (*repository.Attachment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.files[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &f, nil
}
