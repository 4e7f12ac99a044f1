package bufpool

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGet(t *testing.T) {
	t.Run("ChunkClass", func(t *testing.T) {
		buf := Get(100)
		defer Put(buf)

		assert.Len(t, buf, 100)
		assert.Equal(t, ChunkSize, cap(buf))
	})

	t.Run("ExactChunkSize", func(t *testing.T) {
		buf := Get(ChunkSize)
		defer Put(buf)

		assert.Len(t, buf, ChunkSize)
		assert.Equal(t, ChunkSize, cap(buf))
	})

	t.Run("WideClass", func(t *testing.T) {
		buf := Get(ChunkSize + 1)
		defer Put(buf)

		assert.Equal(t, WideSize, cap(buf))
	})

	t.Run("FrameClass", func(t *testing.T) {
		buf := Get(WideSize + 1)
		defer Put(buf)

		assert.Equal(t, FrameSize, cap(buf))
	})

	t.Run("OversizedIsNotPooled", func(t *testing.T) {
		buf := Get(FrameSize + 1)
		defer Put(buf)

		assert.Len(t, buf, FrameSize+1)
		assert.Equal(t, FrameSize+1, cap(buf))
	})

	t.Run("Zero", func(t *testing.T) {
		buf := Get(0)
		defer Put(buf)

		assert.NotNil(t, buf)
		assert.Empty(t, buf)
	})
}

func TestPut(t *testing.T) {
	t.Run("NilIsIgnored", func(t *testing.T) {
		assert.NotPanics(t, func() { Put(nil) })
	})

	t.Run("ForeignSliceIsIgnored", func(t *testing.T) {
		assert.NotPanics(t, func() { Put(make([]byte, 123)) })
	})

	t.Run("ReusedBufferHasFullCapacity", func(t *testing.T) {
		buf := Get(10)
		Put(buf)

		again := Get(ChunkSize)
		defer Put(again)
		assert.Len(t, again, ChunkSize)
	})
}

func TestNewPool_CustomClasses(t *testing.T) {
	p := NewPool(&Config{ChunkSize: 8 << 10})

	buf := p.Get(5000)
	defer p.Put(buf)
	assert.Equal(t, 8<<10, cap(buf))

	wide := p.Get(10 << 10)
	defer p.Put(wide)
	assert.Equal(t, WideSize, cap(wide))
}

func TestConcurrentUse(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				buf := Get(ChunkSize)
				buf[0] = byte(n)
				Put(buf)
			}
		}(i)
	}
	wg.Wait()
}
