package app

import (
	"bytes"
	"os"
	"sync"
	"testing"

	"github.com/vk/ftmpl/internal/config"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// SetupAppTest creates an App searching templateDir, logging at debug level
// into the returned buffer. The App is closed when the test ends.
func SetupAppTest(t *testing.T, templateDir string, mutate ...func(*config.Config)) (*App, *SafeBuffer) {
	t.Helper()

	cfg := config.Default()
	cfg.Paths = []string{templateDir}
	cfg.LogLevel = "debug"
	for _, m := range mutate {
		m(&cfg)
	}
	valid, err := config.NewConfig(cfg)
	if err != nil {
		t.Fatalf("invalid test config: %v", err)
	}

	logBuffer := &SafeBuffer{}
	testApp, err := NewApp(logBuffer, valid)
	if err != nil {
		t.Fatalf("creating app: %v", err)
	}

	t.Cleanup(func() {
		_ = testApp.Close()
		if os.Getenv("FTMPL_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
		}
	})

	return testApp, logBuffer
}
