// Command depscheck fails when a gameplay core package imports the
// transport layer. The package split keeps the simulation runnable
// headless in tests; an import in the wrong direction quietly undoes
// that, so CI runs this check.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"
)

// Core packages that must stay transport-free.
var corePackages = []string{
	"./internal/sim/...",
	"./internal/level/...",
	"./internal/grid/...",
	"./internal/motion/...",
	"./internal/behavior/...",
}

// Import prefixes the core must never reach.
var bannedPrefixes = []string{
	"gridchase/internal/net",
	"github.com/gorilla/websocket",
}

type listedPackage struct {
	ImportPath  string
	Imports     []string
	TestImports []string
}

func main() {
	violations, err := scan()
	if err != nil {
		fmt.Fprintf(os.Stderr, "depscheck: %v\n", err)
		os.Exit(1)
	}
	if len(violations) == 0 {
		return
	}
	sort.Strings(violations)
	fmt.Fprintln(os.Stderr, "depscheck: transport imports in core packages:")
	for _, violation := range violations {
		fmt.Fprintln(os.Stderr, "  "+violation)
	}
	os.Exit(1)
}

func scan() ([]string, error) {
	args := append([]string{"list", "-json"}, corePackages...)
	cmd := exec.Command("go", args...)
	cmd.Stderr = os.Stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("go list: %w", err)
	}

	var violations []string
	dec := json.NewDecoder(stdout)
	for {
		var pkg listedPackage
		if err := dec.Decode(&pkg); err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("decode go list output: %w", err)
		}
		for _, imp := range pkg.Imports {
			if banned(imp) {
				violations = append(violations, pkg.ImportPath+" imports "+imp)
			}
		}
		for _, imp := range pkg.TestImports {
			if banned(imp) {
				violations = append(violations, pkg.ImportPath+" test imports "+imp)
			}
		}
	}
	if err := cmd.Wait(); err != nil {
		return nil, fmt.Errorf("go list: %w", err)
	}
	return violations, nil
}

func banned(importPath string) bool {
	for _, prefix := range bannedPrefixes {
		if strings.HasPrefix(importPath, prefix) {
			return true
		}
	}
	return false
}
