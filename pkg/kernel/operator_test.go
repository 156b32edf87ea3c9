// SPDX-License-Identifier: Apache-2.0

package kernel

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/joomcode/errorx"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	lsmodVxlan = CommandResult{
		CommandLine: "/usr/sbin/lsmod",
		Stdout:      "vxlan                 102400  0\n",
	}
	lsmodEmpty = CommandResult{
		CommandLine: "/usr/sbin/lsmod",
	}
)

func newTestOperator(t *testing.T, ops moduleOperations, opts ...Option) *operator {
	t.Helper()
	opts = append([]Option{withOperations(ops), WithLogger(zerolog.Nop()), WithPersistDir(t.TempDir())}, opts...)
	op, err := NewOperator(opts...)
	require.NoError(t, err)
	return op.(*operator)
}

func mustRequest(t *testing.T, name string, state string) Request {
	t.Helper()
	req, err := NewRequest(name, state, false)
	require.NoError(t, err)
	return req
}

func TestOperator_Run_DecisionTable(t *testing.T) {
	tests := []struct {
		name        string
		loaded      bool
		state       string
		dryRun      bool
		expectLoad  bool
		expectUnld  bool
		wantChanged bool
		wantMessage string
	}{
		{
			// Scenario A
			name:        "not loaded and present loads the module",
			loaded:      false,
			state:       "present",
			expectLoad:  true,
			wantChanged: true,
			wantMessage: "module vxlan is not loaded.",
		},
		{
			// Scenario B
			name:        "loaded and present is a no-op",
			loaded:      true,
			state:       "present",
			wantChanged: false,
			wantMessage: "module vxlan is already loaded.",
		},
		{
			name:        "loaded and absent unloads the module",
			loaded:      true,
			state:       "absent",
			expectUnld:  true,
			wantChanged: true,
			wantMessage: "module vxlan is already loaded.",
		},
		{
			// Scenario D
			name:        "not loaded and absent is a no-op",
			loaded:      false,
			state:       "absent",
			wantChanged: false,
			wantMessage: "module vxlan is not loaded.",
		},
		{
			// Scenario C
			name:        "loaded and absent in check mode reports a change only",
			loaded:      true,
			state:       "absent",
			dryRun:      true,
			wantChanged: true,
			wantMessage: "module vxlan is already loaded.",
		},
		{
			name:        "not loaded and present in check mode reports a change only",
			loaded:      false,
			state:       "installed",
			dryRun:      true,
			wantChanged: true,
			wantMessage: "module vxlan is not loaded.",
		},
		{
			name:        "not loaded and removed in check mode reports no change",
			loaded:      false,
			state:       "removed",
			dryRun:      true,
			wantChanged: false,
			wantMessage: "module vxlan is not loaded.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockOps := NewMockmoduleOperations(ctrl)
			check := lsmodEmpty
			if tt.loaded {
				check = lsmodVxlan
			}
			mockOps.EXPECT().isLoaded(gomock.Any(), "vxlan").Return(tt.loaded, check, nil)
			if tt.expectLoad {
				mockOps.EXPECT().load(gomock.Any(), "vxlan").
					Return(CommandResult{CommandLine: "/usr/sbin/modprobe vxlan"}, nil)
			}
			if tt.expectUnld {
				mockOps.EXPECT().unload(gomock.Any(), "vxlan").
					Return(CommandResult{CommandLine: "/usr/sbin/modprobe -r vxlan"}, nil)
			}

			op := newTestOperator(t, mockOps)
			res, err := op.Run(context.Background(), mustRequest(t, "vxlan", tt.state), tt.dryRun)
			require.NoError(t, err)
			assert.Equal(t, tt.wantChanged, res.Changed)
			assert.Equal(t, tt.wantMessage, res.Message)
			assert.Equal(t, check.CommandLine, res.CommandLine)
			assert.Equal(t, check.Stdout, res.Stdout)
		})
	}
}

func TestOperator_Run_Idempotent(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockOps := NewMockmoduleOperations(ctrl)
	gomock.InOrder(
		mockOps.EXPECT().isLoaded(gomock.Any(), "vxlan").Return(false, lsmodEmpty, nil),
		mockOps.EXPECT().load(gomock.Any(), "vxlan").Return(CommandResult{CommandLine: "/usr/sbin/modprobe vxlan"}, nil),
		mockOps.EXPECT().isLoaded(gomock.Any(), "vxlan").Return(true, lsmodVxlan, nil),
	)

	op := newTestOperator(t, mockOps)
	req := mustRequest(t, "vxlan", "present")

	first, err := op.Run(context.Background(), req, false)
	require.NoError(t, err)
	require.True(t, first.Changed)

	second, err := op.Run(context.Background(), req, false)
	require.NoError(t, err)
	require.False(t, second.Changed)
}

func TestOperator_Run_ActionFailure(t *testing.T) {
	failed := CommandResult{
		CommandLine: "/usr/sbin/modprobe vxlan",
		Stderr:      "modprobe: FATAL: Module vxlan not found in directory /lib/modules/6.1.0\n",
		ExitCode:    1,
	}

	t.Run("load failure", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockOps := NewMockmoduleOperations(ctrl)
		mockOps.EXPECT().isLoaded(gomock.Any(), "vxlan").Return(false, lsmodEmpty, nil)
		mockOps.EXPECT().load(gomock.Any(), "vxlan").Return(failed, nil)

		op := newTestOperator(t, mockOps)
		res, err := op.Run(context.Background(), mustRequest(t, "vxlan", "present"), false)
		require.Error(t, err)
		assert.True(t, errorx.IsOfType(err, ErrLoadFailed))
		assert.True(t, errorx.HasTrait(err, ModuleErrTrait))
		assert.False(t, res.Changed)
		assert.Equal(t, "Kernel module loading failed.", res.Message)
		assert.Equal(t, failed.CommandLine, res.CommandLine)
		assert.Equal(t, failed.Stderr, res.Stderr)

		cr, ok := CommandResultFromError(err)
		require.True(t, ok)
		assert.Equal(t, failed, cr)
	})

	t.Run("unload failure", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		busy := CommandResult{
			CommandLine: "/usr/sbin/modprobe -r vxlan",
			Stderr:      "modprobe: FATAL: Module vxlan is in use.\n",
			ExitCode:    1,
		}
		mockOps := NewMockmoduleOperations(ctrl)
		mockOps.EXPECT().isLoaded(gomock.Any(), "vxlan").Return(true, lsmodVxlan, nil)
		mockOps.EXPECT().unload(gomock.Any(), "vxlan").Return(busy, nil)

		op := newTestOperator(t, mockOps)
		res, err := op.Run(context.Background(), mustRequest(t, "vxlan", "absent"), false)
		require.Error(t, err)
		assert.True(t, errorx.IsOfType(err, ErrUnloadFailed))
		assert.False(t, res.Changed)
		assert.Equal(t, "Kernel module unloading failed.", res.Message)
		assert.Equal(t, busy.Stderr, res.Stderr)
	})

	t.Run("modprobe cannot be started", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockOps := NewMockmoduleOperations(ctrl)
		mockOps.EXPECT().isLoaded(gomock.Any(), "vxlan").Return(false, lsmodEmpty, nil)
		mockOps.EXPECT().load(gomock.Any(), "vxlan").
			Return(CommandResult{CommandLine: "/usr/sbin/modprobe vxlan", ExitCode: -1},
				errorx.ExternalError.New("no such file or directory"))

		op := newTestOperator(t, mockOps)
		res, err := op.Run(context.Background(), mustRequest(t, "vxlan", "present"), false)
		require.Error(t, err)
		assert.True(t, errorx.IsOfType(err, ErrLoadFailed))
		assert.False(t, res.Changed)
	})
}

func TestOperator_Run_DryRunNeverActs(t *testing.T) {
	for _, state := range AllStates() {
		for _, loaded := range []bool{true, false} {
			ctrl := gomock.NewController(t)

			mockOps := NewMockmoduleOperations(ctrl)
			mockOps.EXPECT().isLoaded(gomock.Any(), "dummy").Return(loaded, lsmodEmpty, nil)
			mockOps.EXPECT().load(gomock.Any(), gomock.Any()).Times(0)
			mockOps.EXPECT().unload(gomock.Any(), gomock.Any()).Times(0)

			op := newTestOperator(t, mockOps)
			req, err := NewRequest("dummy", state, true)
			require.NoError(t, err)

			_, err = op.Run(context.Background(), req, true)
			require.NoError(t, err)

			// check mode must not write the persistence entry either
			_, statErr := os.Stat(op.persist.confPath("dummy"))
			require.True(t, os.IsNotExist(statErr))

			ctrl.Finish()
		}
	}
}

func TestOperator_CheckLoaded_ListingFailure(t *testing.T) {
	listErr := withCommand(ErrStateUnknown.New("/usr/sbin/lsmod exited with code 1"), "vxlan",
		CommandResult{CommandLine: "/usr/sbin/lsmod", ExitCode: 1})

	t.Run("lenient check treats the module as not loaded", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockOps := NewMockmoduleOperations(ctrl)
		mockOps.EXPECT().isLoaded(gomock.Any(), "vxlan").Return(false, CommandResult{CommandLine: "/usr/sbin/lsmod", ExitCode: 1}, listErr)
		mockOps.EXPECT().load(gomock.Any(), "vxlan").Return(CommandResult{CommandLine: "/usr/sbin/modprobe vxlan"}, nil)

		op := newTestOperator(t, mockOps)
		res, err := op.Run(context.Background(), mustRequest(t, "vxlan", "present"), false)
		require.NoError(t, err)
		assert.True(t, res.Changed)
		assert.Equal(t, "module vxlan is not loaded.", res.Message)
	})

	t.Run("strict check fails loudly", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockOps := NewMockmoduleOperations(ctrl)
		mockOps.EXPECT().isLoaded(gomock.Any(), "vxlan").Return(false, CommandResult{CommandLine: "/usr/sbin/lsmod", ExitCode: 1}, listErr)

		op := newTestOperator(t, mockOps, WithStrictCheck(true))
		res, err := op.Run(context.Background(), mustRequest(t, "vxlan", "present"), false)
		require.Error(t, err)
		assert.True(t, errorx.IsOfType(err, ErrStateUnknown))
		assert.False(t, res.Changed)
		assert.Equal(t, "/usr/sbin/lsmod", res.CommandLine)
	})

	t.Run("timeouts are never treated as not loaded", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockOps := NewMockmoduleOperations(ctrl)
		mockOps.EXPECT().isLoaded(gomock.Any(), "vxlan").
			Return(false, CommandResult{CommandLine: "/usr/sbin/lsmod", ExitCode: -1}, ErrCommandTimeout.New("timed out"))

		op := newTestOperator(t, mockOps)
		_, err := op.Run(context.Background(), mustRequest(t, "vxlan", "present"), false)
		require.Error(t, err)
		assert.True(t, errorx.IsTimeout(err))
	})
}

func TestOperator_CheckLoaded_AppliesTimeout(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockOps := NewMockmoduleOperations(ctrl)
	mockOps.EXPECT().isLoaded(gomock.Any(), "vxlan").DoAndReturn(
		func(ctx context.Context, name string) (bool, CommandResult, error) {
			deadline, ok := ctx.Deadline()
			require.True(t, ok)
			require.WithinDuration(t, time.Now().Add(5*time.Second), deadline, time.Second)
			return true, lsmodVxlan, nil
		})

	op := newTestOperator(t, mockOps, WithTimeout(5*time.Second))
	loaded, cr, err := op.CheckLoaded(context.Background(), "vxlan")
	require.NoError(t, err)
	require.True(t, loaded)
	require.Equal(t, lsmodVxlan, cr)
}

func TestOperator_InvalidInput(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockOps := NewMockmoduleOperations(ctrl)
	op := newTestOperator(t, mockOps)

	_, err := op.Run(context.Background(), Request{Name: "vxlan; reboot", State: StatePresent}, false)
	require.Error(t, err)
	require.True(t, errorx.IsOfType(err, errorx.IllegalArgument))

	_, err = op.Run(context.Background(), Request{Name: "vxlan", State: "maybe"}, false)
	require.Error(t, err)

	_, _, err = op.CheckLoaded(context.Background(), "")
	require.Error(t, err)

	_, err = op.ApplyState(context.Background(), "-r", true)
	require.Error(t, err)
}

func TestOperator_Run_Persistence(t *testing.T) {
	t.Run("present persists a loaded module", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockOps := NewMockmoduleOperations(ctrl)
		mockOps.EXPECT().isLoaded(gomock.Any(), "br_netfilter").Return(true, lsmodEmpty, nil).Times(2)

		op := newTestOperator(t, mockOps)
		req, err := NewRequest("br_netfilter", "present", true)
		require.NoError(t, err)

		res, err := op.Run(context.Background(), req, false)
		require.NoError(t, err)
		require.True(t, res.Changed)

		b, err := os.ReadFile(filepath.Join(op.persist.dir, "br_netfilter.conf"))
		require.NoError(t, err)
		require.Equal(t, "br_netfilter\n", string(b))

		// converged
		res, err = op.Run(context.Background(), req, false)
		require.NoError(t, err)
		require.False(t, res.Changed)
	})

	t.Run("absent removes the entry before unloading", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockOps := NewMockmoduleOperations(ctrl)
		op := newTestOperator(t, mockOps)
		confPath := op.persist.confPath("overlay")
		require.NoError(t, os.WriteFile(confPath, []byte("overlay\n"), 0o644))

		mockOps.EXPECT().isLoaded(gomock.Any(), "overlay").Return(true, lsmodEmpty, nil)
		mockOps.EXPECT().unload(gomock.Any(), "overlay").DoAndReturn(
			func(ctx context.Context, name string) (CommandResult, error) {
				_, err := os.Stat(confPath)
				require.True(t, os.IsNotExist(err))
				return CommandResult{CommandLine: "/usr/sbin/modprobe -r overlay"}, nil
			})

		req, err := NewRequest("overlay", "absent", true)
		require.NoError(t, err)

		res, err := op.Run(context.Background(), req, false)
		require.NoError(t, err)
		require.True(t, res.Changed)
	})

	t.Run("load failure does not persist", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockOps := NewMockmoduleOperations(ctrl)
		mockOps.EXPECT().isLoaded(gomock.Any(), "dummy").Return(false, lsmodEmpty, nil)
		mockOps.EXPECT().load(gomock.Any(), "dummy").Return(CommandResult{CommandLine: "/usr/sbin/modprobe dummy", ExitCode: 1}, nil)

		op := newTestOperator(t, mockOps)
		req, err := NewRequest("dummy", "present", true)
		require.NoError(t, err)

		_, err = op.Run(context.Background(), req, false)
		require.Error(t, err)

		persisted, err := op.persist.isPersisted("dummy")
		require.NoError(t, err)
		require.False(t, persisted)
	})
}

func TestOperator_Run_Lock(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	lockFile := filepath.Join(t.TempDir(), "run", "kmodctl.lock")

	mockOps := NewMockmoduleOperations(ctrl)
	mockOps.EXPECT().isLoaded(gomock.Any(), "vxlan").Return(true, lsmodVxlan, nil)

	op := newTestOperator(t, mockOps, WithLockFile(lockFile), WithTimeout(300*time.Millisecond))

	// hold the lock from elsewhere: Run must give up
	unlock, err := acquireLock(context.Background(), lockFile)
	require.NoError(t, err)

	_, err = op.Run(context.Background(), mustRequest(t, "vxlan", "present"), false)
	require.Error(t, err)
	require.True(t, errorx.IsOfType(err, ErrLockFailed))

	unlock()

	res, err := op.Run(context.Background(), mustRequest(t, "vxlan", "present"), false)
	require.NoError(t, err)
	require.False(t, res.Changed)
}

func TestNewOperator_Options(t *testing.T) {
	_, err := NewOperator(WithBackend("kmod"))
	require.Error(t, err)
	require.True(t, errorx.IsOfType(err, errorx.IllegalArgument))

	_, err = NewOperator(WithTimeout(-time.Second))
	require.Error(t, err)

	op, err := NewOperator(WithBackend(BackendExec), WithCommands("/sbin/lsmod", "/sbin/modprobe"))
	require.NoError(t, err)
	ops, ok := op.(*operator).ops.(*execOperations)
	require.True(t, ok)
	require.Equal(t, "/sbin/lsmod", ops.listCmd)
	require.Equal(t, "/sbin/modprobe", ops.probeCmd)

	op, err = NewOperator(WithBackend(BackendNative))
	require.NoError(t, err)
	_, ok = op.(*operator).ops.(*nativeOperations)
	require.True(t, ok)
}
