package connection

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"larre/model"
)

// ShareCollection is the Firestore collection of Quick-Share documents.
type ShareCollection struct {
	client     *firestore.Client
	collection string
}

func NewShareCollection(client *firestore.Client, collection string) *ShareCollection {
	return &ShareCollection{client: client, collection: collection}
}

// Subscribe listens to the collection ordered newest first and hands every
// snapshot, decoded in full, to onSnapshot. It returns nil once ctx ends.
func (s *ShareCollection) Subscribe(ctx context.Context, onSnapshot func([]model.SharedFile)) error {
	snapshots := s.client.Collection(s.collection).OrderBy("createdAt", firestore.Desc).Snapshots(ctx)
	defer snapshots.Stop()

	for {
		snap, err := snapshots.Next()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, iterator.Done) || status.Code(err) == codes.Canceled {
				return nil
			}
			return fmt.Errorf("quickshare snapshot: %w", err)
		}

		files, err := decodeShared(snap.Documents)
		if err != nil {
			return err
		}
		onSnapshot(files)
	}
}

func decodeShared(docs *firestore.DocumentIterator) ([]model.SharedFile, error) {
	defer docs.Stop()

	files := []model.SharedFile{}
	for {
		doc, err := docs.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read snapshot document: %w", err)
		}

		var file model.SharedFile
		if err := doc.DataTo(&file); err != nil {
			return nil, fmt.Errorf("decode %s: %w", doc.Ref.ID, err)
		}
		file.ID = doc.Ref.ID
		files = append(files, file)
	}
	return files, nil
}

// Add writes a new document; createdAt is stamped by the server.
func (s *ShareCollection) Add(ctx context.Context, file model.SharedFile) (string, error) {
	ref, _, err := s.client.Collection(s.collection).Add(ctx, file)
	if err != nil {
		return "", err
	}
	return ref.ID, nil
}

// Delete removes a document. A document that is already gone is not an error.
func (s *ShareCollection) Delete(ctx context.Context, id string) error {
	_, err := s.client.Collection(s.collection).Doc(id).Delete(ctx)
	if err != nil && status.Code(err) != codes.NotFound {
		return err
	}
	return nil
}
