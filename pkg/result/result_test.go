package result

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOk(t *testing.T) {
	res := Ok("payload")
	assert.True(t, res.IsOk())
	assert.Equal(t, "payload", res.Value())
}

func TestFail(t *testing.T) {
	res := Fail[string](http.StatusBadGateway, "upstream broke")
	assert.False(t, res.IsOk())
	assert.Equal(t, http.StatusBadGateway, res.Status())
	assert.Equal(t, "upstream broke", res.Message())
	assert.Empty(t, res.Value())
}

func TestFailFrom(t *testing.T) {
	failed := Fail[int](http.StatusNotFound, "gone")
	carried := FailFrom[string](failed)
	assert.False(t, carried.IsOk())
	assert.Equal(t, http.StatusNotFound, carried.Status())
	assert.Equal(t, "gone", carried.Message())
}
