package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
)

// step is one command of the development pipeline.
type step struct {
	Name string
	Args []string
	Env  []string
}

// wasmExecPaths lists where GOROOT keeps wasm_exec.js, newest layout first.
var wasmExecPaths = []string{
	filepath.Join("lib", "wasm", "wasm_exec.js"),
	filepath.Join("misc", "wasm", "wasm_exec.js"),
}

func main() {
	assetsDir := flag.String("assets", "ui", "directory receiving main.wasm and wasm_exec.js")
	configPath := flag.String("config", "config.yaml", "server configuration file")
	envFile := flag.String("env-file", ".env", "dotenv file passed to the server")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := prepareAssets(ctx, *assetsDir); err != nil {
		fmt.Fprintf(os.Stderr, "docshare: %v\n", err)
		os.Exit(1)
	}

	server := step{
		Name: "server",
		Args: []string{"go", "run", "./cmd/docshare-server", "-config", *configPath, "-env-file", *envFile},
	}
	if err := run(ctx, server); err != nil {
		fmt.Fprintf(os.Stderr, "docshare exited with error: %v\n", err)
		os.Exit(1)
	}
}

// prepareAssets copies the Go WASM loader next to the stylesheet and builds
// the form guard into main.wasm.
func prepareAssets(ctx context.Context, assetsDir string) error {
	if err := os.MkdirAll(assetsDir, 0o755); err != nil {
		return fmt.Errorf("create assets dir: %w", err)
	}
	out, err := exec.CommandContext(ctx, "go", "env", "GOROOT").Output()
	if err != nil {
		return fmt.Errorf("go env GOROOT: %w", err)
	}
	if err := copyWasmExec(strings.TrimSpace(string(out)), assetsDir); err != nil {
		return err
	}
	return run(ctx, step{
		Name: "build-ui-wasm",
		Args: []string{"go", "build", "-o", filepath.Join(assetsDir, "main.wasm"), "./cmd/ui-wasm"},
		Env:  []string{"GOOS=js", "GOARCH=wasm"},
	})
}

// copyWasmExec copies wasm_exec.js from goroot into dir.
func copyWasmExec(goroot, dir string) error {
	for _, rel := range wasmExecPaths {
		src, err := os.Open(filepath.Join(goroot, rel))
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return fmt.Errorf("open wasm_exec.js: %w", err)
		}
		defer src.Close()

		dst, err := os.Create(filepath.Join(dir, "wasm_exec.js"))
		if err != nil {
			return fmt.Errorf("create wasm_exec.js: %w", err)
		}
		if _, err := io.Copy(dst, src); err != nil {
			dst.Close()
			return fmt.Errorf("copy wasm_exec.js: %w", err)
		}
		return dst.Close()
	}
	return fmt.Errorf("wasm_exec.js not found under %s", goroot)
}

// run executes s in the foreground. An exit caused by ctx cancellation is
// not an error.
func run(ctx context.Context, s step) error {
	cmd := exec.CommandContext(ctx, s.Args[0], s.Args[1:]...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if len(s.Env) > 0 {
		cmd.Env = append(os.Environ(), s.Env...)
	}
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("%s: %w", s.Name, err)
	}
	return nil
}
