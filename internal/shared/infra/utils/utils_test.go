package utils

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var errPermanent = errors.New("permanent")

func TestRetry(t *testing.T) {
	t.Run("reintenta hasta conseguirlo", func(t *testing.T) {
		calls := 0
		err := Retry(context.Background(), 3, time.Millisecond, nil, func() error {
			calls++
			if calls < 2 {
				return errors.New("transient")
			}
			return nil
		})

		assert.NoError(t, err)
		assert.Equal(t, 2, calls)
	})

	t.Run("no reintenta errores permanentes", func(t *testing.T) {
		calls := 0
		err := Retry(context.Background(), 3, time.Millisecond,
			func(err error) bool { return !errors.Is(err, errPermanent) },
			func() error {
				calls++
				return errPermanent
			})

		assert.ErrorIs(t, err, errPermanent)
		assert.Equal(t, 1, calls)
	})

	t.Run("contexto cancelado", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := Retry(ctx, 3, time.Second, nil, func() error { return errors.New("transient") })

		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestTernary(t *testing.T) {
	assert.Equal(t, "$1", Ternary(true, "$1", "?"))
	assert.Equal(t, "?", Ternary(false, "$1", "?"))
}
