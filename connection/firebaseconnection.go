package connection

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/storage"
	firebase "firebase.google.com/go"
	"firebase.google.com/go/auth"
	"google.golang.org/api/option"

	"larre/config"
)

// Firebase bundles the clients Quick-Share and token verification need.
type Firebase struct {
	Firestore *firestore.Client
	Bucket    *storage.BucketHandle
	Auth      *auth.Client

	bucketName string
}

// FBConnection initialises the Firebase app for the configured project and
// opens Firestore, the storage bucket and Firebase Auth.
func FBConnection(ctx context.Context, cfg config.Config) (*Firebase, error) {
	var opts []option.ClientOption
	if cfg.Firebase.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.Firebase.CredentialsFile))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{
		ProjectID:     cfg.Firebase.ProjectID,
		StorageBucket: cfg.Storage.Bucket,
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing app: %w", err)
	}

	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting Firestore client: %w", err)
	}

	storageClient, err := app.Storage(ctx)
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("error getting Storage client: %w", err)
	}
	bucket, err := storageClient.Bucket(cfg.Storage.Bucket)
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("error opening bucket %s: %w", cfg.Storage.Bucket, err)
	}

	authClient, err := app.Auth(ctx)
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("error getting Auth client: %w", err)
	}

	return &Firebase{
		Firestore:  client,
		Bucket:     bucket,
		Auth:       authClient,
		bucketName: cfg.Storage.Bucket,
	}, nil
}

func (fb *Firebase) BucketName() string {
	return fb.bucketName
}

func (fb *Firebase) Close() error {
	return fb.Firestore.Close()
}

func firebaseAuthClient(fb *Firebase) *auth.Client {
	if fb == nil {
		return nil
	}
	return fb.Auth
}
