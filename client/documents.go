package client

import "context"

// Document is a JSON document as sent to an index.
type Document = map[string]any

// DocumentService handles document ingestion and removal. Writes require an
// ingest or admin key and only become visible after a commit.
type DocumentService struct {
	d *Dispatcher
}

func indexPath(index, suffix string) (string, error) {
	if err := requireID("index name", index); err != nil {
		return "", err
	}
	return "/index/" + seg(index) + suffix, nil
}

// Add adds or replaces documents in an index.
func (s *DocumentService) Add(ctx context.Context, index string, docs []Document) (Response, error) {
	path, err := indexPath(index, "/documents")
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, preconditionErrorf("documents must not be empty")
	}
	return s.d.Do(ctx, MethodPost, path, docs, nil).Unwrap()
}

// Get returns one document by its Searchcraft internal id.
func (s *DocumentService) Get(ctx context.Context, index, internalID string) (Response, error) {
	if err := requireID("document id", internalID); err != nil {
		return nil, err
	}
	path, err := indexPath(index, "/documents/"+seg(internalID))
	if err != nil {
		return nil, err
	}
	return s.d.Do(ctx, MethodGet, path, nil, nil).Unwrap()
}

// Delete removes documents by id.
func (s *DocumentService) Delete(ctx context.Context, index string, ids []string) (Response, error) {
	path, err := indexPath(index, "/documents")
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, preconditionErrorf("document ids must not be empty")
	}
	return s.d.Do(ctx, MethodDelete, path, ids, nil).Unwrap()
}

// DeleteByField removes every document matching criteria, e.g.
// {"term": {"post_type": "page"}}.
func (s *DocumentService) DeleteByField(ctx context.Context, index string, criteria Params) (Response, error) {
	path, err := indexPath(index, "/documents/query")
	if err != nil {
		return nil, err
	}
	if len(criteria) == 0 {
		return nil, preconditionErrorf("delete criteria must not be empty")
	}
	return s.d.Do(ctx, MethodDelete, path, criteria, nil).Unwrap()
}

// DeleteAll removes every document from an index.
func (s *DocumentService) DeleteAll(ctx context.Context, index string) (Response, error) {
	path, err := indexPath(index, "/documents/all")
	if err != nil {
		return nil, err
	}
	return s.d.Do(ctx, MethodDelete, path, nil, nil).Unwrap()
}
