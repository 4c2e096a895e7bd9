package testutil

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// RequireShell skips the test when no POSIX shell is available to run fake
// packer scripts.
func RequireShell(t *testing.T) {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("fake packer scripts need a POSIX shell")
	}
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

// FakePackerEnvFile is where FakePacker records the BUILD_NUMBER it saw.
const FakePackerEnvFile = "packer-env.out"

// FakePacker writes an executable named packer into home. When run it prints
// its working directory, then each argument on its own line prefixed with
// "arg=", then the contents of every file passed as -var name=path, and exits
// with exitCode. The value of BUILD_NUMBER is written to FakePackerEnvFile in
// the working directory.
func FakePacker(t *testing.T, home string, exitCode int) string {
	t.Helper()
	RequireShell(t)

	script := strings.Join([]string{
		"#!/bin/sh",
		`echo "cwd=$(pwd)"`,
		`echo "${BUILD_NUMBER}" > ` + FakePackerEnvFile,
		`prev=""`,
		`for a in "$@"; do`,
		`  echo "arg=$a"`,
		`  if [ "$prev" = "-var" ]; then`,
		`    f="${a#*=}"`,
		`    if [ -f "$f" ]; then echo "file ${a%%=*}=$(cat "$f")"; fi`,
		`  fi`,
		`  prev="$a"`,
		`done`,
		fmt.Sprintf("exit %d", exitCode),
		"",
	}, "\n")

	require.NoError(t, os.MkdirAll(home, 0755))
	path := filepath.Join(home, "packer")
	require.NoError(t, os.WriteFile(path, []byte(script), 0755))
	return path
}

// WriteFile creates dir/name with content, creating parent directories.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create directory for %s: %v", name, err)
	}
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("Failed to create file %s: %v", name, err)
	}
	return path
}

// RandomString generates a random string of the specified length
func RandomString(length int) string {
	bytes := make([]byte, length/2+1)
	if _, err := rand.Read(bytes); err != nil {
		panic(err)
	}
	return hex.EncodeToString(bytes)[:length]
}
