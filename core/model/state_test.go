package model

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStateManagerLifecycle(t *testing.T) {
	state := NewStateManager()
	assert.False(t, state.IsFitted())

	state.SetDimensions(12, 299)
	state.SetFitted()
	assert.True(t, state.IsFitted())

	features, samples := state.GetDimensions()
	assert.Equal(t, 12, features)
	assert.Equal(t, 299, samples)

	state.Reset()
	assert.False(t, state.IsFitted())
}

func TestStateManagerConcurrentReads(t *testing.T) {
	state := NewStateManager()
	state.SetDimensions(5, 100)
	state.SetFitted()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.True(t, state.IsFitted())
			features, _ := state.GetDimensions()
			assert.Equal(t, 5, features)
		}()
	}
	wg.Wait()
}
