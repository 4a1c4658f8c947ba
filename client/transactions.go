package client

import "context"

// TransactionService commits or discards pending document writes.
type TransactionService struct {
	d *Dispatcher
}

// Commit makes pending writes to an index searchable.
func (s *TransactionService) Commit(ctx context.Context, index string) (Response, error) {
	path, err := indexPath(index, "/commit")
	if err != nil {
		return nil, err
	}
	return s.d.Do(ctx, MethodPost, path, nil, nil).Unwrap()
}

// Rollback discards pending writes to an index.
func (s *TransactionService) Rollback(ctx context.Context, index string) (Response, error) {
	path, err := indexPath(index, "/rollback")
	if err != nil {
		return nil, err
	}
	return s.d.Do(ctx, MethodPost, path, nil, nil).Unwrap()
}
