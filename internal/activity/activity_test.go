package activity

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordAppendsTimestampedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "activity.log")
	log, err := Open(path)
	require.NoError(t, err)
	defer log.Close()

	log.Record("user %q registered", "alice")
	log.Record("user %q logged in", "alice")

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	require.Len(t, lines, 2)

	stamped := regexp.MustCompile(`^\[\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}\] `)
	for _, line := range lines {
		assert.Regexp(t, stamped, line)
	}
	assert.Contains(t, lines[0], `user "alice" registered`)
}

func TestNilLogIsNoOp(t *testing.T) {
	var log *Log
	log.Record("nothing to see")
	assert.NoError(t, log.Close())
}

func TestRecordAfterClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "activity.log")
	log, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, log.Close())

	// Must not panic or write.
	log.Record("late event")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestConcurrentRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "activity.log")
	log, err := Open(path)
	require.NoError(t, err)
	defer log.Close()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			log.Record("event %d", n)
		}(i)
	}
	wg.Wait()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 10, strings.Count(string(data), "\n"))
}
