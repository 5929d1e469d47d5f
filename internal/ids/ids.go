package ids

import "github.com/segmentio/ksuid"

// New returns a k-sortable unique id, so created_at ordering and id ordering
// mostly agree.
func New() string {
	return ksuid.New().String()
}
