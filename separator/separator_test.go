// SPDX-License-Identifier: EPL-2.0

package separator

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/gofrs/flock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockCommandExecutor implements the CommandExecutor interface for testing
type MockCommandExecutor struct {
	mock.Mock
}

func (m *MockCommandExecutor) Command(ctx context.Context, name string, args ...string) Commander {
	mockArgs := m.Called(name, args)
	return mockArgs.Get(0).(Commander)
}

// MockCommander implements the Commander interface for testing
type MockCommander struct {
	mock.Mock
}

func (m *MockCommander) CombinedOutput() ([]byte, error) {
	args := m.Called()
	out, _ := args.Get(0).([]byte)
	return out, args.Error(1)
}

func writeInput(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "My Song.mp3")
	require.NoError(t, os.WriteFile(path, []byte("ID3"), 0o644))
	return path
}

func TestNew(t *testing.T) {
	t.Parallel()

	tests := []struct {
		backend string
		want    string
		wantErr error
	}{
		{"", BackendSpleeter, nil},
		{"spleeter", BackendSpleeter, nil},
		{"Demucs", BackendDemucs, nil},
		{"openunmix", "", ErrUnknownBackend},
	}

	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			t.Parallel()

			sep, err := New(Config{Backend: tt.backend})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, sep.Name())
		})
	}
}

func TestSpleeter_Separate(t *testing.T) {
	t.Parallel()

	input := writeInput(t)
	out := filepath.Join(t.TempDir(), "stems")

	cmd := &MockCommander{}
	cmd.On("CombinedOutput").Return([]byte("INFO:spleeter:File written"), nil).Once()

	exec := &MockCommandExecutor{}
	exec.On("Command", "spleeter", []string{"separate", "-p", "spleeter:4stems", "-o", out, input}).
		Return(cmd).Once()

	sep, err := New(Config{Backend: "spleeter", Executor: exec})
	require.NoError(t, err)

	require.NoError(t, sep.Separate(context.Background(), input, out))
	assert.DirExists(t, out)
	exec.AssertExpectations(t)
	cmd.AssertExpectations(t)
}

func TestDemucs_SeparateRelocatesOutput(t *testing.T) {
	t.Parallel()

	input := writeInput(t)
	out := t.TempDir()

	// A previous run left stale stems behind.
	require.NoError(t, os.MkdirAll(filepath.Join(out, "My Song"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(out, "My Song", "stale.wav"), nil, 0o644))

	cmd := &MockCommander{}
	cmd.On("CombinedOutput").Return([]byte(nil), nil).Run(func(mock.Arguments) {
		dir := filepath.Join(out, "htdemucs", "My Song")
		require.NoError(t, os.MkdirAll(dir, 0o755))
		for _, name := range []string{"vocals", "drums", "bass", "other"} {
			require.NoError(t, os.WriteFile(filepath.Join(dir, name+".wav"), []byte("RIFF"), 0o644))
		}
	}).Once()

	exec := &MockCommandExecutor{}
	exec.On("Command", "/opt/demucs", []string{"-n", "htdemucs", "-o", out, "-d", "cpu", input}).
		Return(cmd).Once()

	sep, err := New(Config{Backend: "demucs", Binary: "/opt/demucs", Device: "cpu", Executor: exec})
	require.NoError(t, err)
	require.NoError(t, sep.Separate(context.Background(), input, out))

	for _, name := range []string{"vocals", "drums", "bass", "other"} {
		assert.FileExists(t, filepath.Join(out, "My Song", name+".wav"))
	}
	assert.NoFileExists(t, filepath.Join(out, "My Song", "stale.wav"))
	assert.NoDirExists(t, filepath.Join(out, "htdemucs"))
}

func TestSeparate_ToolFailure(t *testing.T) {
	t.Parallel()

	input := writeInput(t)
	out := t.TempDir()

	cmd := &MockCommander{}
	cmd.On("CombinedOutput").Return([]byte("Traceback: CUDA out of memory"), errors.New("exit status 1")).Once()
	exec := &MockCommandExecutor{}
	exec.On("Command", mock.Anything, mock.Anything).Return(cmd).Once()

	sep, err := New(Config{Executor: exec})
	require.NoError(t, err)

	err = sep.Separate(context.Background(), input, out)
	require.ErrorIs(t, err, ErrSeparationFailed)
	assert.Contains(t, err.Error(), "CUDA out of memory")

	// The lock is released after a failure.
	lock := flock.New(filepath.Join(out, lockName))
	ok, err := lock.TryLock()
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, lock.Unlock())
}

func TestSeparate_DemucsMissingOutput(t *testing.T) {
	t.Parallel()

	cmd := &MockCommander{}
	cmd.On("CombinedOutput").Return([]byte(nil), nil).Once()
	exec := &MockCommandExecutor{}
	exec.On("Command", mock.Anything, mock.Anything).Return(cmd).Once()

	sep, err := New(Config{Backend: "demucs", Executor: exec})
	require.NoError(t, err)

	err = sep.Separate(context.Background(), writeInput(t), t.TempDir())
	assert.ErrorIs(t, err, ErrSeparationFailed)
}

func TestSeparate_Busy(t *testing.T) {
	t.Parallel()

	out := t.TempDir()
	lock := flock.New(filepath.Join(out, lockName))
	ok, err := lock.TryLock()
	require.NoError(t, err)
	require.True(t, ok)
	defer lock.Unlock()

	exec := &MockCommandExecutor{}
	sep, err := New(Config{Executor: exec})
	require.NoError(t, err)

	err = sep.Separate(context.Background(), writeInput(t), out)
	assert.ErrorIs(t, err, ErrBusy)
	exec.AssertNotCalled(t, "Command", mock.Anything, mock.Anything)
}

func TestSeparate_MissingInput(t *testing.T) {
	t.Parallel()

	exec := &MockCommandExecutor{}
	sep, err := New(Config{Executor: exec})
	require.NoError(t, err)

	err = sep.Separate(context.Background(), filepath.Join(t.TempDir(), "absent.wav"), t.TempDir())
	assert.ErrorIs(t, err, ErrSeparationFailed)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestTail(t *testing.T) {
	t.Parallel()

	long := make([]byte, outputTail+100)
	for i := range long {
		long[i] = 'x'
	}
	assert.Len(t, tail(long), outputTail+3)
	assert.Equal(t, "ok", tail([]byte("  ok\n")))
}
