// Package stores holds the GORM-backed persistence layer. Store methods
// translate driver failures into the domain error kinds: unique violations
// become conflicts, record-not-found becomes not-found, and context
// timeouts become unavailable.
package stores

import (
	"context"
	"errors"

	"github.com/studybridge/peer_tutor/errs"
)

func wrap(err error, op string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return errs.Unavailable("%s: store unavailable", op)
	}
	return err
}
