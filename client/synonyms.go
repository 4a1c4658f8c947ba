package client

import "context"

// SynonymService manages per-index synonyms. Each entry has the form
// "word,synonym1,synonym2".
type SynonymService struct {
	d *Dispatcher
}

// List returns the synonyms of an index.
func (s *SynonymService) List(ctx context.Context, index string) (Response, error) {
	path, err := indexPath(index, "/synonyms")
	if err != nil {
		return nil, err
	}
	return s.d.Do(ctx, MethodGet, path, nil, nil).Unwrap()
}

// Add adds synonym entries to an index.
func (s *SynonymService) Add(ctx context.Context, index string, synonyms []string) (Response, error) {
	path, err := indexPath(index, "/synonyms")
	if err != nil {
		return nil, err
	}
	if len(synonyms) == 0 {
		return nil, preconditionErrorf("synonyms must not be empty")
	}
	return s.d.Do(ctx, MethodPost, path, synonyms, nil).Unwrap()
}

// Delete removes synonyms by their key word.
func (s *SynonymService) Delete(ctx context.Context, index string, words []string) (Response, error) {
	path, err := indexPath(index, "/synonyms")
	if err != nil {
		return nil, err
	}
	if len(words) == 0 {
		return nil, preconditionErrorf("synonyms must not be empty")
	}
	return s.d.Do(ctx, MethodDelete, path, words, nil).Unwrap()
}

// DeleteAll removes every synonym from an index.
func (s *SynonymService) DeleteAll(ctx context.Context, index string) (Response, error) {
	path, err := indexPath(index, "/synonyms/all")
	if err != nil {
		return nil, err
	}
	return s.d.Do(ctx, MethodDelete, path, nil, nil).Unwrap()
}
