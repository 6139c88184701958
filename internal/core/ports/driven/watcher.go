package driven

import "context"

// DocumentWatcher reports changes to a document file on disk.
type DocumentWatcher interface {
	// Watch delivers a value on the returned channel each time the file at
	// path is written or replaced. The subscription ends when ctx is done;
	// the channel is closed then.
	Watch(ctx context.Context, path string) (<-chan struct{}, error)
}
