//go:build basic || database

package integration

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

var (
	// sharedBinaryPath holds the path to a churnrisk binary built once for all tests.
	sharedBinaryPath string

	// buildOnce ensures we only build the binary once.
	buildOnce sync.Once

	// tempDir holds the temp directory for cleanup.
	tempDir string
)

// TestMain handles setup and cleanup for all integration tests.
func TestMain(m *testing.M) {
	code := m.Run()

	if tempDir != "" {
		_ = os.RemoveAll(tempDir)
	}

	os.Exit(code)
}

// getChurnriskBinary returns the path to the churnrisk binary, building it once if needed.
func getChurnriskBinary() string {
	buildOnce.Do(func() {
		var err error
		tempDir, err = os.MkdirTemp("", "churnrisk-integration-*")
		if err != nil {
			panic(fmt.Sprintf("failed to create temp dir: %v", err))
		}

		binaryPath := filepath.Join(tempDir, "churnrisk")
		buildCmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/churnrisk")
		buildCmd.Dir = ".." // Build from the project root
		if output, err := buildCmd.CombinedOutput(); err != nil {
			panic(fmt.Sprintf("failed to build churnrisk: %v\n%s", err, output))
		}

		sharedBinaryPath = binaryPath
	})

	return sharedBinaryPath
}

// runChurnrisk runs the binary in dir with the given extra environment and returns stdout.
// No API key is ever passed on, so nothing reaches the model.
func runChurnrisk(t *testing.T, dir string, env []string, args ...string) (string, error) {
	t.Helper()
	cmd := exec.Command(getChurnriskBinary(), args...)
	cmd.Dir = dir
	cmd.Env = append(filteredEnv(), env...)
	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	if err != nil {
		t.Logf("Command failed: %s\nStdout: %s\nStderr: %s", cmd.String(), stdout.String(), stderr.String())
	}
	return stdout.String(), err
}

// filteredEnv drops variables that would change the behavior under test.
func filteredEnv() []string {
	var env []string
	for _, kv := range os.Environ() {
		if strings.HasPrefix(kv, "CHURNRISK_") || strings.HasPrefix(kv, "ANTHROPIC_") {
			continue
		}
		env = append(env, kv)
	}
	return env
}

// writeReviews writes a storefront export with p1 (six reviews, mixed stars) and p2 (two reviews).
func writeReviews(t *testing.T, dir string) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("Ürün,Marka,Genel Puan,Yorum,Tarih,Puan\n")
	for i := 1; i <= 6; i++ {
		fmt.Fprintf(&b, "p1,Acme,\"4,1\",yorum %d,%d Mart 2024,%d\n", i, i, (i%5)+1)
	}
	b.WriteString("p2,Beta,4.8,harika,1 Nisan 2024,5\n")
	b.WriteString("p2,Beta,4.8,güzel,3 Nisan 2024,4\n")

	path := filepath.Join(dir, "reviews.csv")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o600))
	return path
}
