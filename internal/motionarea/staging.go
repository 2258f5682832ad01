package motionarea

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// GeneratorScriptName is the legacy per-tree homing generator file name.
const GeneratorScriptName = "generate_homing_plcs.py"

// NewScriptName is the file name given to generated new-API definitions.
const NewScriptName = "motorhome.py"

var homePLCInclude = regexp.MustCompile(`(?m)^#include "(PLCs/PLC[0-9]+_[^_]+_HM\.pmc)"`)

// copyTree stages a filtered copy of source under dest: only controller text
// files and generator scripts take part in a conversion. Individual copy
// failures are logged and skipped since historical motion areas contain
// broken links and oddly named directories.
func copyTree(source, dest string, logger *zap.Logger) error {
	return filepath.Walk(source, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			logger.Warn("could not stat during copy", zap.String("path", path), zap.Error(err))
			return nil
		}
		if info.IsDir() {
			return nil
		}
		base := info.Name()
		if !strings.HasSuffix(base, ".pmc") && base != GeneratorScriptName {
			return nil
		}
		rel, err := filepath.Rel(source, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dest, rel)
		if err := copyFile(path, target); err != nil {
			logger.Warn("could not copy", zap.String("path", path), zap.Error(err))
		}
		return nil
	})
}

func copyFile(source, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	in, err := os.Open(source)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// findHomingPLCs locates auto-generated homing output files under root. They
// always live inside a subdirectory of a controller folder, never at the
// tree root.
func findHomingPLCs(root string) ([]string, error) {
	var found []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}
		ok, matchErr := filepath.Match("PLC*_HM.pmc", info.Name())
		if matchErr != nil {
			return matchErr
		}
		if !ok {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		if !strings.Contains(rel, string(os.PathSeparator)) {
			return nil
		}
		found = append(found, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan homing PLCs under %s: %w", root, err)
	}
	sort.Strings(found)
	return found, nil
}

func removeHomingPLCs(root string, logger *zap.Logger) error {
	plcs, err := findHomingPLCs(root)
	if err != nil {
		return err
	}
	for _, plc := range plcs {
		if err := os.Remove(plc); err != nil {
			return fmt.Errorf("remove stale %s: %w", plc, err)
		}
		logger.Debug("removed stale homing PLC", zap.String("path", plc))
	}
	return nil
}

// parseMasters scans every Master*.pmc under root for homing-PLC include
// lines and returns the included paths relative to root, in deterministic
// order. These are the target artifact names handed to generator scripts.
func parseMasters(root string) ([]string, error) {
	var masters []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}
		ok, matchErr := filepath.Match("Master*pmc", info.Name())
		if matchErr != nil {
			return matchErr
		}
		if ok {
			masters = append(masters, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan masters under %s: %w", root, err)
	}
	sort.Strings(masters)

	var includes []string
	for _, master := range masters {
		data, err := os.ReadFile(master)
		if err != nil {
			return nil, fmt.Errorf("read master %s: %w", master, err)
		}
		masterDir, err := filepath.Rel(root, filepath.Dir(master))
		if err != nil {
			return nil, err
		}
		for _, match := range homePLCInclude.FindAllStringSubmatch(string(data), -1) {
			includes = append(includes, filepath.Join(masterDir, match[1]))
		}
	}
	return includes, nil
}
