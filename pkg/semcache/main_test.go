package semcache

import (
	"testing"

	"go.uber.org/goleak"
)

// TestMain verifies the cache's background anchor-embedding goroutines
// (pkg/semcache/anchors.go) never outlive the call that started them — the
// cache itself is a long-lived, per-process singleton in production.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
