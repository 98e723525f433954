package transcript

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock() func() time.Time {
	at := time.Date(2025, 3, 14, 15, 9, 26, 0, time.Local)
	return func() time.Time { return at }
}

func TestAppend(t *testing.T) {
	tr := New(fixedClock())

	first := tr.Append(KindUser, "I have a headache")
	tr.Append(KindBot, "How long has it lasted?")

	require.Equal(t, 2, tr.Len())
	assert.Equal(t, KindUser, first.Kind())
	assert.Equal(t, "I have a headache", first.Text())
	assert.Equal(t, "3:09:26 PM", first.Stamp())

	last, ok := tr.Last()
	require.True(t, ok)
	assert.Equal(t, KindBot, last.Kind())
}

func TestEntriesIsACopy(t *testing.T) {
	tr := New(nil)
	tr.Append(KindBot, "hello")

	entries := tr.Entries()
	entries[0] = Entry{}

	assert.Equal(t, "hello", tr.Entries()[0].Text())
}

func TestClear(t *testing.T) {
	tr := New(nil)
	tr.Append(KindUser, "a")
	tr.Append(KindBot, "b")

	tr.Clear()

	assert.Equal(t, 0, tr.Len())
	_, ok := tr.Last()
	assert.False(t, ok)

	tr.Append(KindBot, "c")
	assert.Equal(t, 1, tr.Len())
}

func TestListeners(t *testing.T) {
	tr := New(fixedClock())

	var appended []string
	cleared := 0
	tr.OnAppend(func(e Entry) { appended = append(appended, e.Text()) })
	tr.OnClear(func() { cleared++ })

	tr.Append(KindUser, "one")
	tr.Append(KindError, "two")
	tr.Clear()

	assert.Equal(t, []string{"one", "two"}, appended)
	assert.Equal(t, 1, cleared)
}
