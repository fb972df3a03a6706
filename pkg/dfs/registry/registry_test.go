package registry

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	r := New[int]()
	assert.NotNil(t, r)
	assert.Equal(t, 0, r.Len())
}

func TestRegisterAndGet(t *testing.T) {
	r := New[int]()

	r.Register("one", 1)
	r.Register("two", 2)

	v, ok := r.Get("one")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	v, ok = r.Get("three")
	assert.False(t, ok)
	assert.Equal(t, 0, v)
}

func TestRegisterOverwrite(t *testing.T) {
	r := New[string]()

	r.Register("key", "old")
	r.Register("key", "new")

	v, ok := r.Get("key")
	assert.True(t, ok)
	assert.Equal(t, "new", v)
}

func TestAdd(t *testing.T) {
	r := New[int]()

	require.NoError(t, r.Add("int", 1))

	err := r.Add("int", 2)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicate))

	v, _ := r.Get("int")
	assert.Equal(t, 1, v, "failed Add must not replace the entry")

	assert.ErrorIs(t, r.Add("", 3), ErrEmptyName)
}

func TestRegisterMany(t *testing.T) {
	r := New[int]()
	r.RegisterMany(map[string]int{"one": 1, "two": 2, "three": 3})
	assert.Equal(t, 3, r.Len())
}

func TestHasAndDelete(t *testing.T) {
	r := New[int]()
	r.Register("key", 1)
	assert.True(t, r.Has("key"))

	r.Delete("key")
	assert.False(t, r.Has("key"))

	// Deleting a missing name is a no-op
	r.Delete("missing")
	assert.Equal(t, 0, r.Len())
}

func TestNamesSorted(t *testing.T) {
	r := New[int]()
	r.Register("weekday", 1)
	r.Register("day", 2)
	r.Register("is_match", 3)

	assert.Equal(t, []string{"day", "is_match", "weekday"}, r.Names())
	assert.Empty(t, New[int]().Names())
}

func TestRangeOrderAndEarlyStop(t *testing.T) {
	r := New[int]()
	r.RegisterMany(map[string]int{"c": 3, "a": 1, "b": 2})

	var seen []string
	r.Range(func(name string, _ int) bool {
		seen = append(seen, name)
		return true
	})
	assert.Equal(t, []string{"a", "b", "c"}, seen)

	count := 0
	r.Range(func(string, int) bool {
		count++
		return count < 2
	})
	assert.Equal(t, 2, count)
}

func TestRangeAllowsMutation(t *testing.T) {
	r := New[int]()
	r.RegisterMany(map[string]int{"a": 1, "b": 2})

	r.Range(func(name string, v int) bool {
		r.Delete(name)
		r.Register(name+"2", v)
		return true
	})

	assert.Equal(t, []string{"a2", "b2"}, r.Names())
}

func TestClone(t *testing.T) {
	r := NewBounded[int](2)
	r.Register("a", 1)

	c := r.Clone()
	c.Register("b", 2)
	c.Register("c", 3) // over the bound

	assert.Equal(t, 1, r.Len())
	assert.Equal(t, 2, c.Len())
	assert.False(t, c.Has("c"))
}

func TestBounded(t *testing.T) {
	r := NewBounded[int](2)
	r.Register("a", 1)
	r.Register("b", 2)
	r.Register("c", 3)

	assert.Equal(t, 2, r.Len())
	assert.False(t, r.Has("c"))

	// Replacing an existing entry still works when full
	r.Register("a", 10)
	v, _ := r.Get("a")
	assert.Equal(t, 10, v)

	// GetOrCreate still returns the value when full
	got := r.GetOrCreate("d", func() int { return 4 })
	assert.Equal(t, 4, got)
	assert.False(t, r.Has("d"))
}

func TestNewBoundedNonPositive(t *testing.T) {
	r := NewBounded[int](0)
	for i := 0; i < 10; i++ {
		r.Register(fmt.Sprintf("k%d", i), i)
	}
	assert.Equal(t, 10, r.Len())
}

func TestGetOrCreate(t *testing.T) {
	r := New[int]()
	calls := 0

	v := r.GetOrCreate("key", func() int {
		calls++
		return 42
	})
	assert.Equal(t, 42, v)

	v = r.GetOrCreate("key", func() int {
		calls++
		return 99
	})
	assert.Equal(t, 42, v)
	assert.Equal(t, 1, calls)
}

func TestGetOrCreateErr(t *testing.T) {
	r := New[string]()
	boom := errors.New("boom")

	_, err := r.GetOrCreateErr("bad", func() (string, error) {
		return "", boom
	})
	assert.ErrorIs(t, err, boom)
	assert.False(t, r.Has("bad"), "failed values must not be cached")

	v, err := r.GetOrCreateErr("good", func() (string, error) {
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
	assert.True(t, r.Has("good"))
}

func TestConcurrentReadWrite(t *testing.T) {
	r := New[int]()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			r.Register(fmt.Sprintf("k%d", n), n)
		}(i)
		go func(n int) {
			defer wg.Done()
			_, _ = r.Get(fmt.Sprintf("k%d", n))
			_ = r.Names()
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 50, r.Len())
}

func TestConcurrentGetOrCreate(t *testing.T) {
	r := New[int]()
	var calls atomic.Int32
	var wg sync.WaitGroup
	seen := make(chan int, 100)

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v := r.GetOrCreate("shared", func() int {
				return int(calls.Add(1))
			})
			seen <- v
		}()
	}
	wg.Wait()
	close(seen)

	stored, ok := r.Get("shared")
	require.True(t, ok)
	assert.GreaterOrEqual(t, calls.Load(), int32(1))
	for v := range seen {
		assert.Equal(t, stored, v, "every caller gets the stored value")
	}
}

func TestGetOrCreateFactoryRunsUnlocked(t *testing.T) {
	r := New[int]()
	r.Register("other", 1)

	done := make(chan int, 1)
	go func() {
		done <- r.GetOrCreate("slow", func() int {
			// Would deadlock if the registry lock were held here.
			v, _ := r.Get("other")
			r.Register("side", 2)
			return v + 10
		})
	}()

	select {
	case v := <-done:
		assert.Equal(t, 11, v)
	case <-time.After(2 * time.Second):
		t.Fatal("GetOrCreate blocked other registry users")
	}
	assert.True(t, r.Has("side"))
}
