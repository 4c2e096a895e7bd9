package command

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/grovetools/packerci/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// helperExecutor re-runs the test binary as a fake packer. The helper echoes
// its working directory and arguments and exits with PACKERCI_HELPER_EXIT.
func helperExecutor(exitCode int, sleep time.Duration) Executor {
	return ExecutorFunc(func(ctx context.Context, name string, args ...string) *exec.Cmd {
		cs := append([]string{"-test.run=TestHelperProcess", "--", name}, args...)
		cmd := exec.CommandContext(ctx, os.Args[0], cs...)
		cmd.Env = append(os.Environ(),
			"PACKERCI_WANT_HELPER=1",
			"PACKERCI_HELPER_EXIT="+strconv.Itoa(exitCode),
			"PACKERCI_HELPER_SLEEP="+sleep.String(),
		)
		return cmd
	})
}

func TestHelperProcess(t *testing.T) {
	if os.Getenv("PACKERCI_WANT_HELPER") != "1" {
		return
	}
	args := os.Args
	for len(args) > 0 && args[0] != "--" {
		args = args[1:]
	}
	if len(args) > 0 {
		args = args[1:]
	}
	wd, _ := os.Getwd()
	fmt.Fprintf(os.Stdout, "wd=%s\n", wd)
	fmt.Fprintf(os.Stdout, "argv=%s\n", strings.Join(args, "|"))
	fmt.Fprintln(os.Stderr, "stderr line")
	fmt.Fprintf(os.Stdout, "build_number=%s\n", os.Getenv("BUILD_NUMBER"))

	if d, err := time.ParseDuration(os.Getenv("PACKERCI_HELPER_SLEEP")); err == nil && d > 0 {
		time.Sleep(d)
	}
	code, _ := strconv.Atoi(os.Getenv("PACKERCI_HELPER_EXIT"))
	os.Exit(code)
}

func TestRunnerSuccess(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer

	code, err := NewRunnerWithExecutor(helperExecutor(0, 0)).
		Run(context.Background(), []string{"packer", "build", "-debug", "t.json"}, dir, nil, &out)
	require.NoError(t, err)
	assert.Equal(t, 0, code)

	assert.Contains(t, out.String(), "argv=packer|build|-debug|t.json")
	assert.Contains(t, out.String(), "stderr line")
	assert.Contains(t, out.String(), "wd=")
}

func TestRunnerNonZeroExit(t *testing.T) {
	code, err := NewRunnerWithExecutor(helperExecutor(3, 0)).
		Run(context.Background(), []string{"packer", "build"}, t.TempDir(), nil, nil)
	require.Error(t, err)
	assert.Equal(t, 3, code)
	assert.True(t, errors.IsExecution(err))

	var packerErr *errors.PackerError
	require.ErrorAs(t, err, &packerErr)
	assert.Equal(t, 3, packerErr.Details["exitCode"])
}

func TestRunnerTimeout(t *testing.T) {
	runner := NewRunnerWithExecutor(helperExecutor(0, 5*time.Second)).WithTimeout(200 * time.Millisecond)

	start := time.Now()
	code, err := runner.Run(context.Background(), []string{"packer", "build"}, t.TempDir(), nil, nil)
	require.Error(t, err)
	assert.Equal(t, -1, code)
	assert.True(t, errors.Is(err, errors.ErrCodeCommandTimeout))
	assert.Less(t, time.Since(start), 3*time.Second)
}

func TestRunnerLaunchFailure(t *testing.T) {
	code, err := NewRunner().Run(context.Background(),
		[]string{"/nonexistent/packerci/packer", "build"}, t.TempDir(), nil, nil)
	require.Error(t, err)
	assert.Equal(t, -1, code)
	assert.True(t, errors.Is(err, errors.ErrCodeCommandFailed))
}

func TestRunnerEmptyArgv(t *testing.T) {
	_, err := NewRunner().Run(context.Background(), nil, "", nil, nil)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))
}

func TestRunnerTimeoutSettings(t *testing.T) {
	assert.Zero(t, NewRunner().Timeout())
	assert.Equal(t, 12*time.Hour, NewRunner().WithTimeout(12*time.Hour).Timeout())
	assert.Zero(t, NewRunner().WithTimeout(time.Hour).WithTimeout(0).Timeout())
	assert.Zero(t, NewRunner().WithTimeout(-time.Second).Timeout())
}

func TestRunnerZeroTimeoutIsUnlimited(t *testing.T) {
	runner := NewRunnerWithExecutor(helperExecutor(0, 300*time.Millisecond)).WithTimeout(0)

	code, err := runner.Run(context.Background(), []string{"packer", "build"}, t.TempDir(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, code)
}

func TestRunnerCallerDeadlineIsNotATimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	code, err := NewRunnerWithExecutor(helperExecutor(0, 5*time.Second)).
		Run(ctx, []string{"packer", "build"}, t.TempDir(), nil, nil)
	require.Error(t, err)
	assert.NotEqual(t, 0, code)
	assert.False(t, errors.Is(err, errors.ErrCodeCommandTimeout))
}

func TestRunnerPassesBuildEnv(t *testing.T) {
	var out bytes.Buffer
	_, err := NewRunnerWithExecutor(helperExecutor(0, 0)).
		Run(context.Background(), []string{"packer", "build"}, t.TempDir(), []string{"BUILD_NUMBER=42"}, &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "build_number=42")
}
