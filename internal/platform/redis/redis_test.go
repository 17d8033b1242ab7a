package redis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClientOptions_Defaults(t *testing.T) {
	opts := Options{Addr: "127.0.0.1:6379"}.clientOptions()

	assert.Equal(t, "127.0.0.1:6379", opts.Addr)
	assert.Equal(t, 3*time.Second, opts.DialTimeout)
	assert.Equal(t, 2*time.Second, opts.ReadTimeout)
	assert.Equal(t, 2*time.Second, opts.WriteTimeout)
	assert.Zero(t, opts.PoolSize)
}

func TestClientOptions_Overrides(t *testing.T) {
	opts := Options{
		Addr:         "cache:6380",
		Password:     "s3cret",
		DB:           2,
		PoolSize:     16,
		DialTimeout:  500 * time.Millisecond,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	}.clientOptions()

	assert.Equal(t, "cache:6380", opts.Addr)
	assert.Equal(t, "s3cret", opts.Password)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, 16, opts.PoolSize)
	assert.Equal(t, 500*time.Millisecond, opts.DialTimeout)
	assert.Equal(t, time.Second, opts.ReadTimeout)
	assert.Equal(t, time.Second, opts.WriteTimeout)
}
