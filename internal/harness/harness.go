// Package harness executes legacy homing definition scripts. Each target
// artifact name gets its own short-lived child process, which re-runs the
// script's top-level logic from scratch. The process boundary replaces the
// legacy runtime's module reload trick with identical observable behavior.
package harness

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
)

// targetBranchPattern recognizes the "branch on target name" lines legacy
// scripts use to select which PLC to build from their single command-line
// argument.
var targetBranchPattern = regexp.MustCompile(`sys\.argv\[1\]\s*==|==\s*sys\.argv\[1\]`)

// firstSynthesizedPLC is the PLC number given to the first synthesized
// target when a script supplies no explicit names.
const firstSynthesizedPLC = 11

type Harness struct {
	// Interpreter is the command used to run scripts.
	Interpreter string
	// SearchPath entries are joined into the child's PYTHONPATH; inserting
	// the emulation shim directory first is what redirects a legacy script's
	// library calls into capture.
	SearchPath []string
	// Timeout bounds one child execution. Zero waits indefinitely, which is
	// the legacy behavior.
	Timeout time.Duration
	Logger  *zap.Logger
}

func (h *Harness) logger() *zap.Logger {
	if h.Logger == nil {
		return zap.NewNop()
	}
	return h.Logger
}

// Run executes script under workdir once per target name, or once with no
// name if targets is empty. A failing target aborts the remaining ones;
// results already captured for earlier targets stay valid, and the caller
// treats the partial run as a generation failure for the whole script.
func (h *Harness) Run(ctx context.Context, script, workdir string, targets []string) error {
	if strings.TrimSpace(h.Interpreter) == "" {
		return fmt.Errorf("harness interpreter is required")
	}
	if len(targets) == 0 {
		return h.runOne(ctx, script, workdir, "")
	}
	for _, target := range targets {
		if err := h.runOne(ctx, script, workdir, target); err != nil {
			return fmt.Errorf("target %s: %w", target, err)
		}
	}
	return nil
}

func (h *Harness) runOne(ctx context.Context, script, workdir, target string) error {
	runCtx := ctx
	if h.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, h.Timeout)
		defer cancel()
	}

	args := []string{script}
	if target != "" {
		args = append(args, target)
	}
	cmd := exec.CommandContext(runCtx, h.Interpreter, args...)
	cmd.Dir = workdir
	cmd.Env = append(os.Environ(), "PYTHONPATH="+strings.Join(h.SearchPath, ":"))

	h.logger().Debug("executing script",
		zap.String("script", script),
		zap.String("workdir", workdir),
		zap.String("target", target))

	output, err := cmd.CombinedOutput()
	if logErr := h.writeLog(workdir, script, target, output); logErr != nil {
		h.logger().Warn("could not write execution log", zap.Error(logErr))
	}
	if runCtx.Err() == context.DeadlineExceeded {
		return fmt.Errorf("script timeout after %s", h.Timeout)
	}
	if err != nil {
		return fmt.Errorf("execute %s: %w\n%s", script, err, strings.TrimSpace(string(output)))
	}
	return nil
}

func (h *Harness) writeLog(workdir, script, target string, output []byte) error {
	name := strings.TrimSuffix(filepath.Base(script), filepath.Ext(script))
	if target != "" {
		name += "-" + strings.ReplaceAll(filepath.Base(target), string(os.PathSeparator), "_")
	}
	path := filepath.Join(workdir, name+".log")
	content := fmt.Sprintf("$ %s %s %s\n\n%s\n", h.Interpreter, script, target, output)
	return os.WriteFile(path, []byte(content), 0o644)
}

// DeriveTargets synthesizes target artifact names for a script that was
// given none, by counting its branch-on-target lines. Names follow the
// legacy layout, numbered from PLC 11 in a relative PLCs folder.
func DeriveTargets(scriptPath string) ([]string, error) {
	data, err := os.ReadFile(scriptPath)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	var targets []string
	next := firstSynthesizedPLC
	for _, line := range strings.Split(string(data), "\n") {
		if targetBranchPattern.MatchString(line) {
			targets = append(targets, fmt.Sprintf("PLCs/PLC%d_AUTO_HM.pmc", next))
			next++
		}
	}
	return targets, nil
}
