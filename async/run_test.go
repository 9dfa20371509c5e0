package async

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRun(t *testing.T) {
	assert := assert.New(t)
	a := <-Run(func() int {
		return 123
	})
	assert.Equal(123, a)
}

func TestRunResult(t *testing.T) {
	assert := assert.New(t)
	a := <-RunResult(func() (int, error) {
		return 123, nil
	})
	assert.Equal(123, a.Value)
	assert.True(a.IsOk())
	b := <-RunResult(func() (int, error) {
		return 0, errors.New("error")
	})
	assert.True(b.IsErr())
}
