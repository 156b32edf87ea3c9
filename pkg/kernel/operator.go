// SPDX-License-Identifier: Apache-2.0

package kernel

import (
	"context"
	"fmt"
	"time"

	"github.com/hashgraph/kmodctl/pkg/logx"
	"github.com/joomcode/errorx"
	"github.com/rs/zerolog"
)

const (
	BackendExec   = "exec"
	BackendNative = "native"

	DefaultTimeout = 30 * time.Second
)

// AllBackends returns the supported backends.
func AllBackends() []string {
	return []string{BackendExec, BackendNative}
}

type Option func(*operator) error

type operator struct {
	ops      moduleOperations
	backend  string
	listCmd  string
	probeCmd string
	timeout  time.Duration
	strict   bool
	persist  persister
	lockFile string
	log      zerolog.Logger
}

// NewOperator returns an Operator. Without options it uses lsmod/modprobe from /usr/sbin,
// a 30s timeout per external invocation and /etc/modules-load.d for persistence.
func NewOperator(opts ...Option) (Operator, error) {
	o := &operator{
		backend: BackendExec,
		timeout: DefaultTimeout,
		persist: persister{dir: DefaultPersistDir},
		log:     *logx.As(),
	}

	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}

	if o.ops == nil {
		switch o.backend {
		case BackendExec:
			o.ops = newExecOperations(execRunner{}, o.listCmd, o.probeCmd)
		case BackendNative:
			o.ops = newNativeOperations(DefaultProcModules, nil)
		default:
			return nil, errorx.IllegalArgument.New("unsupported backend %q, must be one of %v", o.backend, AllBackends())
		}
	}

	return o, nil
}

func WithBackend(backend string) Option {
	return func(o *operator) error {
		if backend != "" {
			o.backend = backend
		}
		return nil
	}
}

// WithCommands overrides the paths of the module-listing and module-management utilities.
// Only used by the exec backend.
func WithCommands(listCmd string, probeCmd string) Option {
	return func(o *operator) error {
		o.listCmd = listCmd
		o.probeCmd = probeCmd
		return nil
	}
}

// WithTimeout bounds each external invocation. Zero disables the timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *operator) error {
		if d < 0 {
			return errorx.IllegalArgument.New("timeout cannot be negative: %s", d)
		}
		o.timeout = d
		return nil
	}
}

// WithStrictCheck makes CheckLoaded fail when the listing facility fails
// instead of reporting the module as not loaded.
func WithStrictCheck(strict bool) Option {
	return func(o *operator) error {
		o.strict = strict
		return nil
	}
}

func WithPersistDir(dir string) Option {
	return func(o *operator) error {
		if dir != "" {
			o.persist = persister{dir: dir}
		}
		return nil
	}
}

// WithLockFile serializes Run across processes using an exclusive lock on path.
func WithLockFile(path string) Option {
	return func(o *operator) error {
		o.lockFile = path
		return nil
	}
}

func WithLogger(log zerolog.Logger) Option {
	return func(o *operator) error {
		o.log = log
		return nil
	}
}

func withOperations(ops moduleOperations) Option {
	return func(o *operator) error {
		o.ops = ops
		return nil
	}
}

func (o *operator) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if o.timeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, o.timeout)
}

func (o *operator) CheckLoaded(ctx context.Context, name string) (bool, CommandResult, error) {
	if err := (Request{Name: name, State: StatePresent}).Validate(); err != nil {
		return false, CommandResult{}, err
	}

	cctx, cancel := o.withTimeout(ctx)
	defer cancel()

	loaded, cr, err := o.ops.isLoaded(cctx, name)
	if err != nil {
		if !o.strict && errorx.IsOfType(err, ErrStateUnknown) {
			o.log.Warn().Err(err).
				Str("module", name).
				Str("cmdline", cr.CommandLine).
				Msg("Could not list kernel modules, assuming module is not loaded")
			return false, cr, nil
		}

		return false, cr, err
	}

	o.log.Debug().
		Str("module", name).
		Bool("loaded", loaded).
		Str("cmdline", cr.CommandLine).
		Msg("Checked kernel module state")

	return loaded, cr, nil
}

func (o *operator) ApplyState(ctx context.Context, name string, shouldLoad bool) (CommandResult, error) {
	if err := (Request{Name: name, State: StatePresent}).Validate(); err != nil {
		return CommandResult{}, err
	}

	errType := ErrUnloadFailed
	action := "unload"
	if shouldLoad {
		errType = ErrLoadFailed
		action = "load"
	}

	cctx, cancel := o.withTimeout(ctx)
	defer cancel()

	var cr CommandResult
	var err error
	if shouldLoad {
		cr, err = o.ops.load(cctx, name)
	} else {
		cr, err = o.ops.unload(cctx, name)
	}

	if err != nil {
		if errorx.IsTimeout(err) {
			return cr, err
		}
		return cr, withCommand(errType.Wrap(err, "failed to %s kernel module %s", action, name), name, cr)
	}

	if !cr.Success() {
		return cr, withCommand(
			errType.New("failed to %s kernel module %s: exit code %d", action, name, cr.ExitCode), name, cr)
	}

	o.log.Info().
		Str("module", name).
		Str("cmdline", cr.CommandLine).
		Msgf("Kernel module %sed", action)

	return cr, nil
}

// Run converges the module to req.State.
//
//	loaded | desired | changed | action
//	true   | present | false   | none
//	false  | present | true    | load
//	true   | absent  | true    | unload
//	false  | absent  | false   | none
//
// With req.Persist the modules-load.d entry is converged too and counts as a change.
// On failure the returned Result has Changed=false and carries the failed command's output.
func (o *operator) Run(ctx context.Context, req Request, dryRun bool) (Result, error) {
	if err := req.Validate(); err != nil {
		return Result{}, err
	}

	if o.lockFile != "" {
		lctx, cancel := o.withTimeout(ctx)
		unlock, err := acquireLock(lctx, o.lockFile)
		cancel()
		if err != nil {
			return Result{}, err
		}
		defer unlock()
	}

	loaded, check, err := o.CheckLoaded(ctx, req.Name)
	if err != nil {
		return newResult(false, fmt.Sprintf("Could not determine the state of kernel module %s.", req.Name), check), err
	}

	msg := stateMessage(req.Name, loaded)
	shouldLoad := req.State == StatePresent
	changed := loaded != shouldLoad

	persistChanged := false
	if req.Persist {
		persisted, err := o.persist.isPersisted(req.Name)
		if err != nil {
			return newResult(false, "Kernel module persistence check failed.", check),
				ErrPersistFailed.Wrap(err, "failed to read %s", o.persist.confPath(req.Name)).
					WithProperty(ModuleProperty, req.Name)
		}
		persistChanged = persisted != shouldLoad
	}

	logger := o.log.With().
		Str("module", req.Name).
		Str("state", req.State.String()).
		Bool("loaded", loaded).
		Bool("changed", changed || persistChanged).
		Bool("dryRun", dryRun).
		Logger()

	if dryRun {
		logger.Info().Msg("Check mode, no action taken")
		return newResult(changed || persistChanged, msg, check), nil
	}

	if !changed && !persistChanged {
		logger.Info().Msg("Kernel module is already in the desired state")
		return newResult(false, msg, check), nil
	}

	// absent: drop the boot entry first so a failed unload does not leave it behind
	if persistChanged && !shouldLoad {
		if err := o.applyPersistence(req.Name, false); err != nil {
			return newResult(false, "Kernel module persistence failed.", check), err
		}
	}

	if changed {
		cr, err := o.ApplyState(ctx, req.Name, shouldLoad)
		if err != nil {
			logger.Error().Err(err).Str("cmdline", cr.CommandLine).Msg("Kernel module action failed")
			return newResult(false, failureMessage(shouldLoad), cr), err
		}
	}

	if persistChanged && shouldLoad {
		if err := o.applyPersistence(req.Name, true); err != nil {
			return newResult(false, "Kernel module persistence failed.", check), err
		}
	}

	logger.Info().Msg("Kernel module state changed")
	return newResult(true, msg, check), nil
}

func (o *operator) applyPersistence(name string, persist bool) error {
	var err error
	if persist {
		err = o.persist.persist(name)
	} else {
		err = o.persist.unpersist(name)
	}

	if err != nil {
		return ErrPersistFailed.Wrap(err, "failed to update %s", o.persist.confPath(name)).
			WithProperty(ModuleProperty, name)
	}

	o.log.Info().Str("module", name).Bool("persist", persist).
		Str("path", o.persist.confPath(name)).
		Msg("Updated kernel module persistence")

	return nil
}
