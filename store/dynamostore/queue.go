package dynamostore

import (
	"context"
	"errors"

	"ember_server/models"
	"ember_server/store"
)

func (s *Store) Enqueue(ctx context.Context, e models.QueueEntry) error {
	return s.putItem(ctx, models.QueueEntriesTable, e)
}

func (s *Store) Dequeue(ctx context.Context, userID string) error {
	return s.deleteItem(ctx, models.QueueEntriesTable, stringKey("userId", userID))
}

// ClaimQueueEntry is the atomic claim of the matchmaking protocol: a
// conditional delete that succeeds for exactly one of any set of
// concurrent claimants.
func (s *Store) ClaimQueueEntry(ctx context.Context, userID string) (bool, error) {
	return s.deleteItemIfExists(ctx, models.QueueEntriesTable, stringKey("userId", userID))
}

func (s *Store) ListQueueEntries(ctx context.Context) ([]models.QueueEntry, error) {
	var entries []models.QueueEntry
	if err := s.scan(ctx, models.QueueEntriesTable, "", nil, nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *Store) IsQueued(ctx context.Context, userID string) (bool, error) {
	var e models.QueueEntry
	err := s.getItem(ctx, models.QueueEntriesTable, stringKey("userId", userID), &e)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
