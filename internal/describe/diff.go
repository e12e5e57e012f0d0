package describe

import (
	"github.com/aymanbagabas/go-udiff"

	"github.com/RyosukeMondo/yamy-go/internal/model"
)

// ReloadDiff returns a unified diff between two Settings' Describe() dumps,
// empty when they're identical. prev may be nil for an initial load, in
// which case every line of next.Describe() shows as added.
func ReloadDiff(prev, next *model.Setting) string {
	var before string
	if prev != nil {
		before = prev.Describe()
	}
	after := next.Describe()
	if before == after {
		return ""
	}
	return udiff.Unified("previous", "reloaded", before, after)
}
