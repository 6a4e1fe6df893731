package idx_test

import (
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/openid/pkg/idx"
	"github.com/stretchr/testify/require"
)

func TestNewIsParseable(t *testing.T) {
	id := idx.New()
	require.False(t, id.IsZero())

	parsed, err := idx.Parse(id.String())
	require.NoError(t, err)
	require.Equal(t, id, parsed)
}

func TestNewAtEmbedsTime(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.True(t, idx.NewAt(at).Time().Equal(at))
}

func TestIDsAreUniqueUnderConcurrency(t *testing.T) {
	const n = 200
	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		ids = make([]string, 0, n)
	)
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := idx.New()
			mu.Lock()
			ids = append(ids, id.String())
			mu.Unlock()
		}()
	}
	wg.Wait()

	seen := make(map[string]struct{}, n)
	for _, id := range ids {
		_, dup := seen[id]
		require.False(t, dup, "duplicate id %s", id)
		seen[id] = struct{}{}
	}
}

func TestIDsSortByCreationTime(t *testing.T) {
	base := time.Now().UTC()
	earlier := idx.NewAt(base.Add(-time.Second))
	later := idx.NewAt(base)
	ids := []string{later.String(), earlier.String()}
	sort.Strings(ids)
	require.Equal(t, []string{earlier.String(), later.String()}, ids)
}

func TestParseRejectsGarbage(t *testing.T) {
	for _, s := range []string{"", "   ", "not-a-ulid", "01ARZ3NDEKTSV4RRFFQ69G5FA"} {
		_, err := idx.Parse(s)
		require.ErrorIs(t, err, idx.ErrInvalid, s)
	}
	require.Panics(t, func() { idx.MustParse("nope") })
	require.True(t, idx.ID("nope").Time().IsZero())
}
