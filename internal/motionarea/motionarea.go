// Package motionarea drives a whole conversion run: stage two working copies
// of a motion area, regenerate homing PLCs in one with the legacy generator
// and in the other through capture plus the new-API code generator, then
// verify the two trees match byte-for-byte modulo whitespace.
package motionarea

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/dls-controls/homing-convert/internal/capture"
	"github.com/dls-controls/homing-convert/internal/codegen"
	"github.com/dls-controls/homing-convert/internal/config"
	"github.com/dls-controls/homing-convert/internal/harness"
	"github.com/dls-controls/homing-convert/internal/pipe"
)

// ErrVerificationFailed signals mismatching output trees. The verification
// report stays available to the caller alongside this error.
var ErrVerificationFailed = errors.New("generated PLCs do not match originals")

type MotionArea struct {
	cfg    *config.Config
	logger *zap.Logger

	originalPath string
	rootPath     string
	oldMotion    string
	newMotion    string

	state      RunState
	promotions []Promotion
}

// New prepares a conversion run for the motion area at originalPath. Each run
// stages under its own directory in the configured work root so concurrent
// runs and leftovers from aborted ones cannot interfere.
func New(originalPath string, cfg *config.Config, logger *zap.Logger) (*MotionArea, error) {
	abs, err := filepath.Abs(originalPath)
	if err != nil {
		return nil, fmt.Errorf("resolve motion area path: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	root := filepath.Join(cfg.Staging.WorkRoot, "motorhome-"+uuid.NewString())
	return &MotionArea{
		cfg:          cfg,
		logger:       logger,
		originalPath: abs,
		rootPath:     root,
		oldMotion:    filepath.Join(root, "old_motion"),
		newMotion:    filepath.Join(root, "new_motion"),
		state:        StateInit,
	}, nil
}

func (m *MotionArea) State() RunState { return m.state }

func (m *MotionArea) RootPath() string { return m.rootPath }

func (m *MotionArea) transition(to RunState) error {
	if err := ValidateTransition(m.state, to); err != nil {
		return err
	}
	m.state = to
	return nil
}

func (m *MotionArea) fail(err error) error {
	if m.state != StateFailed {
		_ = m.transition(StateFailed)
	}
	return err
}

// Convert runs the full pipeline and returns the verification outcome. The
// returned Verification is non-nil whenever comparison ran, even if it found
// mismatches.
func (m *MotionArea) Convert(ctx context.Context) (*Verification, error) {
	if err := m.MakeOldMotion(ctx); err != nil {
		return nil, err
	}
	if err := m.MakeNewMotion(ctx); err != nil {
		return nil, err
	}
	return m.CheckMatches()
}

type generatorScope struct {
	script string
	dir    string
	// brick is the controller folder name relative to the tree root, empty
	// for the single-root-generator topology.
	brick string
}

// generatorScopes discovers which of the two legacy layouts a staged tree
// uses: one global generator under configure/, or one generator per
// controller subfolder.
func generatorScopes(root string) ([]generatorScope, error) {
	rootGen := filepath.Join(root, "configure", GeneratorScriptName)
	if _, err := os.Stat(rootGen); err == nil {
		return []generatorScope{{script: rootGen, dir: root}}, nil
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read staged tree %s: %w", root, err)
	}
	var scopes []generatorScope
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		gen := filepath.Join(root, entry.Name(), "configure", GeneratorScriptName)
		if _, err := os.Stat(gen); err == nil {
			scopes = append(scopes, generatorScope{
				script: gen,
				dir:    filepath.Join(root, entry.Name()),
				brick:  entry.Name(),
			})
		}
	}
	if len(scopes) == 0 {
		return nil, fmt.Errorf("no %s found under %s", GeneratorScriptName, root)
	}
	return scopes, nil
}

func (m *MotionArea) stage(dest string) error {
	m.logger.Debug("copying motion area",
		zap.String("source", m.originalPath), zap.String("dest", dest))
	if err := copyTree(m.originalPath, dest, m.logger); err != nil {
		return fmt.Errorf("stage %s: %w", dest, err)
	}
	return removeHomingPLCs(dest, m.logger)
}

// MakeOldMotion regenerates every homing PLC in the first staged copy with
// the legacy generator, providing the comparison baseline.
func (m *MotionArea) MakeOldMotion(ctx context.Context) error {
	if err := m.stage(m.oldMotion); err != nil {
		return m.fail(err)
	}
	scopes, err := generatorScopes(m.oldMotion)
	if err != nil {
		return m.fail(err)
	}
	h := &harness.Harness{
		Interpreter: m.cfg.Interpreter.Legacy,
		SearchPath:  []string{m.cfg.Interpreter.LegacyRuntimePath},
		Timeout:     m.cfg.Harness.Timeout,
		Logger:      m.logger,
	}
	for _, scope := range scopes {
		targets, err := scopeTargets(scope)
		if err != nil {
			return m.fail(err)
		}
		if err := h.Run(ctx, scope.script, scope.dir, targets); err != nil {
			return m.fail(fmt.Errorf("legacy generation in %s: %w", scope.dir, err))
		}
	}
	return m.transition(StateOldGenerated)
}

// MakeNewMotion regenerates the second staged copy through the new path:
// capture each legacy script's object graph over the pipe, render it as
// new-API source, then execute that source to produce the final artifacts.
func (m *MotionArea) MakeNewMotion(ctx context.Context) error {
	if err := m.stage(m.newMotion); err != nil {
		return m.fail(err)
	}
	scopes, err := generatorScopes(m.newMotion)
	if err != nil {
		return m.fail(err)
	}
	for _, scope := range scopes {
		if err := m.convertScope(ctx, scope); err != nil {
			return m.fail(err)
		}
	}
	return m.transition(StateNewGenerated)
}

// scopeTargets names the homing PLCs one generator scope produces. Trees
// without a master include list get names synthesized from the script's
// branch-on-target lines instead.
func scopeTargets(scope generatorScope) ([]string, error) {
	targets, err := parseMasters(scope.dir)
	if err != nil {
		return nil, err
	}
	if len(targets) == 0 {
		return harness.DeriveTargets(scope.script)
	}
	return targets, nil
}

func (m *MotionArea) convertScope(ctx context.Context, scope generatorScope) error {
	targets, err := scopeTargets(scope)
	if err != nil {
		return err
	}

	registry, err := m.captureScope(ctx, scope, targets)
	if err != nil {
		return err
	}

	newGen := filepath.Join(scope.dir, NewScriptName)
	if scope.brick != "" {
		newGen = filepath.Join(scope.dir, "configure", NewScriptName)
	}
	source := codegen.Generate(registry.PLCs(), codegen.Shebang(m.cfg.Interpreter.Current))
	m.logger.Info("generating", zap.String("path", newGen))
	if err := os.WriteFile(newGen, source, 0o755); err != nil {
		return fmt.Errorf("write generated script: %w", err)
	}

	promoteTo := filepath.Join(m.originalPath, "configure", NewScriptName)
	if scope.brick != "" {
		promoteTo = filepath.Join(m.originalPath, scope.brick, "configure", NewScriptName)
	}
	m.promotions = append(m.promotions, Promotion{From: newGen, To: promoteTo})

	// The generated definition builds every PLC in one execution; no target
	// argument and no shim on the search path.
	run := &harness.Harness{
		Interpreter: m.cfg.Interpreter.Current,
		Timeout:     m.cfg.Harness.Timeout,
		Logger:      m.logger,
	}
	if err := run.Run(ctx, newGen, scope.dir, nil); err != nil {
		return fmt.Errorf("execute generated script %s: %w", newGen, err)
	}
	return nil
}

// captureScope runs the legacy script once per target under the emulation
// shim and drains the captured object graphs off the pipe into a fresh
// registry. The registry is created here and discarded with the scope, so
// no state survives between scripts.
func (m *MotionArea) captureScope(ctx context.Context, scope generatorScope, targets []string) (*capture.Registry, error) {
	registry := capture.NewRegistry()

	fifoPath := filepath.Join(scope.dir, pipe.FifoName)
	if err := pipe.Create(fifoPath); err != nil {
		return nil, err
	}
	defer os.Remove(fifoPath)

	reader, err := pipe.OpenReader(fifoPath)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	h := &harness.Harness{
		Interpreter: m.cfg.Interpreter.Legacy,
		Timeout:     m.cfg.Harness.Timeout,
		Logger:      m.logger,
	}
	for _, target := range targets {
		h.SearchPath = []string{
			".",
			m.cfg.Interpreter.ShimPath,
			filepath.Dir(filepath.Join(scope.dir, target)),
		}
		if err := h.Run(ctx, scope.script, scope.dir, []string{target}); err != nil {
			return nil, fmt.Errorf("capture for %s: %w", target, err)
		}
		messages, err := reader.Drain()
		if err != nil {
			return nil, errors.Wrapf(err, "drain capture pipe for %s", target)
		}
		if len(messages) == 0 {
			// A child that produced nothing captured zero PLCs; that is a
			// valid (if suspicious) outcome, not a hang.
			m.logger.Warn("no capture message received", zap.String("target", target))
		}
		for _, message := range messages {
			plcs, err := capture.DecodeSnapshot(message)
			if err != nil {
				return nil, errors.Wrapf(err, "snapshot for %s", target)
			}
			for _, plc := range plcs {
				registry.Append(plc)
			}
		}
	}
	return registry, nil
}

// CheckMatches compares the two regenerated trees and renders the report.
// Mismatches surface as ErrVerificationFailed, never as a discarded report.
func (m *MotionArea) CheckMatches() (*Verification, error) {
	m.logger.Info("verifying matches ...")
	verification, err := verifyTrees(m.oldMotion, m.newMotion, m.promotions)
	if err != nil {
		return nil, m.fail(err)
	}
	if !verification.Ok() {
		return verification, m.fail(errors.Wrapf(ErrVerificationFailed,
			"%d of %d", len(verification.Mismatches)+len(verification.Missing), verification.Compared))
	}
	return verification, m.transition(StateVerified)
}

// Cleanup removes the staged working trees. Not called on failure so the
// trees stay inspectable.
func (m *MotionArea) Cleanup() error {
	return os.RemoveAll(m.rootPath)
}
