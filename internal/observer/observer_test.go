package observer

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestSlot(t *testing.T) {
	// --- Arrange ---
	var slot Slot
	var nilSlot *Slot
	calls := 0
	require.Nil(t, slot.Get())

	// --- Act ---
	slot.Set(func(string, string, map[string]any) error { calls++; return nil })

	// --- Assert ---
	require.NotNil(t, slot.Get())
	require.NoError(t, slot.Get()("a", "b", nil))
	require.Equal(t, 1, calls)

	// --- Act ---
	slot.Set(nil)

	// --- Assert ---
	require.Nil(t, slot.Get())
	require.Nil(t, nilSlot.Get())
}

func TestFanout(t *testing.T) {
	// --- Arrange ---
	var order []string
	first := func(name, _ string, _ map[string]any) error { order = append(order, "first:"+name); return nil }
	failing := func(string, string, map[string]any) error { order = append(order, "failing"); return errors.New("boom") }
	last := func(string, string, map[string]any) error { order = append(order, "last"); return nil }

	// --- Act ---
	err := Fanout(first, nil, failing, last)("greet", "Hello", nil)

	// --- Assert ---
	require.Nil(t, Fanout())
	require.Nil(t, Fanout(nil, nil))
	require.EqualError(t, err, "boom")
	require.Equal(t, []string{"first:greet", "failing", "last"}, order)
}

func TestLog(t *testing.T) {
	// --- Arrange ---
	var buf bytes.Buffer
	fn := Log(slog.New(slog.NewJSONHandler(&buf, nil)))

	// --- Act ---
	require.NoError(t, fn("greet", "Hello, Ada!", map[string]any{"who": "Ada"}))

	// --- Assert ---
	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	require.Equal(t, "template", record["msg"])
	require.Equal(t, "greet", record["name"])
	require.Equal(t, "Hello, Ada!", record["result"])
	require.Equal(t, map[string]any{"who": "Ada"}, record["args"])
}

func TestOpenLog_Appends(t *testing.T) {
	// --- Arrange ---
	path := filepath.Join(t.TempDir(), "templateUseLog.log")

	// --- Act ---
	for i := 0; i < 2; i++ {
		fn, closer, err := OpenLog(path)
		require.NoError(t, err)
		require.NoError(t, fn("greet", "Hello", nil))
		require.NoError(t, closer.Close())
	}

	// --- Assert ---
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Len(t, strings.Split(strings.TrimSpace(string(data)), "\n"), 2)
}

func TestOpenLog_BadPath(t *testing.T) {
	// --- Act ---
	_, _, err := OpenLog(filepath.Join(t.TempDir(), "missing", "x.log"))

	// --- Assert ---
	require.Error(t, err)
}

func TestMetrics(t *testing.T) {
	// --- Arrange ---
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	require.NoError(t, err)

	// --- Act ---
	require.NoError(t, m.Observe("greet", "Hello", nil))
	require.NoError(t, m.Observe("greet", "Hello again", nil))
	require.NoError(t, m.Observe("farewell", "Bye", nil))

	// --- Assert ---
	require.Equal(t, 2.0, testutil.ToFloat64(m.Renders().WithLabelValues("greet")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.Renders().WithLabelValues("farewell")))

	// --- Act ---
	// A second set of collectors on the same registry shares the counters.
	again, err := NewMetrics(reg)
	require.NoError(t, err)
	require.NoError(t, again.Observe("greet", "x", nil))

	// --- Assert ---
	require.Equal(t, 3.0, testutil.ToFloat64(m.Renders().WithLabelValues("greet")))
}
