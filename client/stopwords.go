package client

import "context"

// StopwordService manages per-index stopword lists.
type StopwordService struct {
	d *Dispatcher
}

// List returns the stopwords of an index.
func (s *StopwordService) List(ctx context.Context, index string) (Response, error) {
	path, err := indexPath(index, "/stopwords")
	if err != nil {
		return nil, err
	}
	return s.d.Do(ctx, MethodGet, path, nil, nil).Unwrap()
}

// Add adds stopwords to an index.
func (s *StopwordService) Add(ctx context.Context, index string, words []string) (Response, error) {
	path, err := indexPath(index, "/stopwords")
	if err != nil {
		return nil, err
	}
	if len(words) == 0 {
		return nil, preconditionErrorf("stopwords must not be empty")
	}
	return s.d.Do(ctx, MethodPost, path, words, nil).Unwrap()
}

// Delete removes stopwords from an index.
func (s *StopwordService) Delete(ctx context.Context, index string, words []string) (Response, error) {
	path, err := indexPath(index, "/stopwords")
	if err != nil {
		return nil, err
	}
	if len(words) == 0 {
		return nil, preconditionErrorf("stopwords must not be empty")
	}
	return s.d.Do(ctx, MethodDelete, path, words, nil).Unwrap()
}

// DeleteAll removes every custom stopword from an index.
func (s *StopwordService) DeleteAll(ctx context.Context, index string) (Response, error) {
	path, err := indexPath(index, "/stopwords/all")
	if err != nil {
		return nil, err
	}
	return s.d.Do(ctx, MethodDelete, path, nil, nil).Unwrap()
}
