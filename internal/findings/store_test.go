package findings

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rmello/clamtap/pkg/types"
)

func TestStore_AppendAndList(t *testing.T) {
	store := NewStore()
	f1 := types.NewFinding("Malware identified", "d1", "http://a/1", "1", "clamav")
	f2 := types.NewFinding("Malware identified", "d2", "http://a/2", "2", "clamav")

	store.Append("malware", f1)
	store.Append("other", f2)

	assert.Equal(t, 2, store.Count())

	malware := store.List("malware")
	assert.Len(t, malware, 1)
	assert.Equal(t, f1.ID, malware[0].ID)

	all := store.List("")
	assert.Len(t, all, 2)
}

func TestStore_Get(t *testing.T) {
	store := NewStore()
	f := types.NewFinding("Malware identified", "d", "http://a", "1", "clamav")
	store.Append("malware", f)

	got, err := store.Get(f.ID)
	assert.NoError(t, err)
	assert.Equal(t, f.ResourceURL, got.ResourceURL)

	_, err = store.Get("nope")
	assert.Error(t, err)
}

func TestStore_ConcurrentAppend(t *testing.T) {
	store := NewStore()

	var wg sync.WaitGroup
	for w := 0; w < 10; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				url := fmt.Sprintf("http://h/%d/%d", worker, i)
				store.Append("malware", types.NewFinding("t", "d", url, "", "clamav"))
			}
		}(w)
	}
	wg.Wait()

	assert.Equal(t, 1000, store.Count())
	assert.Len(t, store.List("malware"), 1000)
}
