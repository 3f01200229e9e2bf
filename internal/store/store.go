package store

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// DefaultCollection is the top-level collection holding per-user entry
// subcollections.
const DefaultCollection = "diary_entries"

const entriesSubcollection = "entries"

// Store wraps a Firestore client for diary entry persistence.
type Store struct {
	log *zap.Logger

	client     *firestore.Client
	collection string
}

// Options configures a Store.
type Options struct {
	ProjectID       string
	CredentialsFile string // service-account credential file, loaded once
	Collection      string // defaults to DefaultCollection
}

// Open connects to Firestore. The credential file is read once at startup;
// there is no rotation.
func Open(ctx context.Context, opts Options, parentLogger *zap.Logger) (*Store, error) {
	collection := opts.Collection
	if collection == "" {
		collection = DefaultCollection
	}

	var clientOpts []option.ClientOption
	if opts.CredentialsFile != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(opts.CredentialsFile))
	}

	client, err := firestore.NewClient(ctx, opts.ProjectID, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("opening firestore: %w", err)
	}

	return &Store{
		log:        parentLogger.Named("store"),
		client:     client,
		collection: collection,
	}, nil
}

// Close releases the Firestore client.
func (s *Store) Close() error {
	return s.client.Close()
}

// entries returns the subcollection holding a user's diary entries.
func (s *Store) entries(userID string) *firestore.CollectionRef {
	return s.client.Collection(s.collection).Doc(userID).Collection(entriesSubcollection)
}

// Save writes a new entry under the user's partition with a store-assigned
// id and a server-assigned creation timestamp. It returns immediately with
// a zero CreatedAt (rendered as the sentinel) rather than waiting for the
// server clock. Each call is one atomic document write; a retried call
// creates a duplicate.
func (s *Store) Save(ctx context.Context, userID, title, text string) (Entry, error) {
	ref := s.entries(userID).NewDoc()

	entry := Entry{
		ID:     ref.ID,
		UserID: userID,
		Title:  title,
		Text:   text,
	}

	if _, err := ref.Set(ctx, entry); err != nil {
		return Entry{}, fmt.Errorf("saving entry: %w", err)
	}

	s.log.Info("entry saved",
		zap.String("user_id", userID),
		zap.String("entry_id", entry.ID),
	)

	return entry, nil
}

// List returns all entries for the user, newest first. A user with no
// entries yields an empty slice, not an error.
func (s *Store) List(ctx context.Context, userID string) ([]Entry, error) {
	iter := s.entries(userID).OrderBy("createdAt", firestore.Desc).Documents(ctx)
	defer iter.Stop()

	var entries []Entry
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("listing entries: %w", err)
		}

		var e Entry
		if err := doc.DataTo(&e); err != nil {
			return nil, fmt.Errorf("decoding entry %s: %w", doc.Ref.ID, err)
		}
		e.ID = doc.Ref.ID
		e.UserID = userID
		entries = append(entries, e)
	}

	s.log.Debug("entries listed",
		zap.String("user_id", userID),
		zap.Int("count", len(entries)),
	)

	return entries, nil
}
