package main_test

import (
	"bytes"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// #nosec G204
func buildBinary(testingHandle *testing.T) string {
	testingHandle.Helper()
	binaryName := "dirsum_integration_test_binary"
	if runtime.GOOS == "windows" {
		binaryName += ".exe"
	}
	binaryPath := filepath.Join(testingHandle.TempDir(), binaryName)

	buildCommand := exec.Command("go", "build", "-o", binaryPath, ".")
	outputData, buildErr := buildCommand.CombinedOutput()
	if buildErr != nil {
		testingHandle.Fatalf("failed to build binary: %v\n%s", buildErr, string(outputData))
	}
	return binaryPath
}

// #nosec G204
func runBinary(testingHandle *testing.T, binaryPath, workingDirectory string, arguments ...string) (string, int) {
	testingHandle.Helper()
	command := exec.Command(binaryPath, arguments...)
	command.Dir = workingDirectory
	command.Env = append(os.Environ(), "HOME="+testingHandle.TempDir(), "DIRSUM_LOG_LEVEL=error")
	var standardError bytes.Buffer
	command.Stderr = &standardError

	runErr := command.Run()
	var exitError *exec.ExitError
	if errors.As(runErr, &exitError) {
		return standardError.String(), exitError.ExitCode()
	}
	if runErr != nil {
		testingHandle.Fatalf("run %s: %v", binaryPath, runErr)
	}
	return standardError.String(), 0
}

func TestBinarySummarizesProject(testingHandle *testing.T) {
	if testing.Short() {
		testingHandle.Skip("builds the binary")
	}
	binaryPath := buildBinary(testingHandle)
	workingDirectory := testingHandle.TempDir()
	projectDirectory := filepath.Join(workingDirectory, "proj")
	if err := os.MkdirAll(filepath.Join(projectDirectory, "src"), 0o755); err != nil {
		testingHandle.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(projectDirectory, "src", "a.go"), []byte("package src\n"), 0o644); err != nil {
		testingHandle.Fatalf("write: %v", err)
	}

	if standardError, exitCode := runBinary(testingHandle, binaryPath, workingDirectory, "proj", "out.txt"); exitCode != 0 {
		testingHandle.Fatalf("expected success, got exit %d: %s", exitCode, standardError)
	}
	report, readErr := os.ReadFile(filepath.Join(workingDirectory, "out.txt"))
	if readErr != nil {
		testingHandle.Fatalf("read report: %v", readErr)
	}
	expectedTree := "proj/\n└── src/\n    └── a.go\n"
	if !strings.HasPrefix(string(report), expectedTree) {
		testingHandle.Fatalf("unexpected tree section:\n%s", string(report))
	}

	standardError, exitCode := runBinary(testingHandle, binaryPath, workingDirectory, "missing", "out2.txt")
	if exitCode == 0 {
		testingHandle.Fatalf("expected failure for missing input")
	}
	if !strings.Contains(standardError, "missing") {
		testingHandle.Fatalf("expected error message naming the input, got %q", standardError)
	}
	if _, statErr := os.Stat(filepath.Join(workingDirectory, "out2.txt")); !os.IsNotExist(statErr) {
		testingHandle.Fatalf("failed run must not create the output file")
	}
}
