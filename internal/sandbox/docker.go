package sandbox

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/ashureev/refine-labs/internal/config"
	"github.com/containerd/errdefs"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"
	"github.com/google/uuid"
)

const (
	// Resource limits for untrusted code.
	memoryLimitBytes = 256 * 1024 * 1024 // 256MB
	cpuQuota         = 50000             // 0.5 CPU
	pidsLimit        = 64

	workDir        = "/tmp/sandbox"
	maxOutputBytes = 64 * 1024

	// Marker prefix the harness prints per test. Parsed from the logs to
	// tally passes; anything not reported counts as failed.
	testMarker = "__SANDBOX_TEST__"

	removeTimeout = 5 * time.Second
)

// DockerRunner runs snippets in throwaway Docker containers. Containers
// are never reused across runs, so no state leaks between executions.
type DockerRunner struct {
	cli *client.Client
	cfg config.SandboxConfig
}

// NewDockerRunner creates a Docker-backed runner.
func NewDockerRunner(cfg config.SandboxConfig) (*DockerRunner, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("create docker client: %w", err)
	}
	return &DockerRunner{cli: cli, cfg: cfg}, nil
}

// EnsureImage pulls the sandbox image if it is not present locally.
func (r *DockerRunner) EnsureImage(ctx context.Context) error {
	_, err := r.cli.ImageInspect(ctx, r.cfg.Image)
	if err == nil {
		return nil
	}
	if !errdefs.IsNotFound(err) {
		return fmt.Errorf("inspect image %s: %w", r.cfg.Image, err)
	}

	slog.Info("Pulling sandbox image", "image", r.cfg.Image)
	rc, err := r.cli.ImagePull(ctx, r.cfg.Image, image.PullOptions{})
	if err != nil {
		return fmt.Errorf("pull image %s: %w", r.cfg.Image, err)
	}
	defer rc.Close()
	if _, err := io.Copy(io.Discard, rc); err != nil {
		return fmt.Errorf("read image pull stream: %w", err)
	}
	return nil
}

// Run executes code plus its test assertions once, with a hard timeout.
// Timeouts and crashes come back as a scored Result, not an error; the
// error return is reserved for infrastructure failures.
func (r *DockerRunner) Run(ctx context.Context, code string, tests []string) (Result, error) {
	res := Result{Total: len(tests)}

	harness, err := buildHarness(code, tests)
	if err != nil {
		return res, err
	}

	name := "sandbox-" + uuid.NewString()

	cfg := &container.Config{
		Image:           r.cfg.Image,
		Cmd:             []string{"python3", "-c", harness},
		WorkingDir:      workDir,
		NetworkDisabled: true,
	}
	hostCfg := &container.HostConfig{
		Runtime:        r.cfg.Runtime,
		NetworkMode:    "none",
		ReadonlyRootfs: true,
		Tmpfs:          map[string]string{workDir: "rw,size=16m"},
		Resources: container.Resources{
			Memory:    memoryLimitBytes,
			CPUQuota:  cpuQuota,
			PidsLimit: ptr(int64(pidsLimit)),
		},
	}

	created, err := r.cli.ContainerCreate(ctx, cfg, hostCfg, nil, nil, name)
	if err != nil {
		return res, fmt.Errorf("create sandbox container: %w", err)
	}
	defer r.remove(created.ID)

	if err := r.cli.ContainerStart(ctx, created.ID, container.StartOptions{}); err != nil {
		return res, fmt.Errorf("start sandbox container %s: %w", created.ID, err)
	}

	runCtx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	waitCh, errCh := r.cli.ContainerWait(runCtx, created.ID, container.WaitConditionNotRunning)

	var exitCode int64
	select {
	case status := <-waitCh:
		exitCode = status.StatusCode

	case err := <-errCh:
		if runCtx.Err() != nil {
			// Hard timeout: kill immediately, no grace period.
			r.kill(created.ID)
			res.TimedOut = true
			res.Output = r.collectOutput(created.ID)
			res.Passed = countPasses(res.Output, res.Total)
			slog.Warn("Sandbox run timed out", "container_id", created.ID, "timeout", r.cfg.Timeout)
			return res, ErrTimeout
		}
		return res, fmt.Errorf("wait for sandbox container %s: %w", created.ID, err)
	}

	res.Output = r.collectOutput(created.ID)
	res.Passed = countPasses(res.Output, res.Total)
	if exitCode != 0 {
		res.Crashed = true
	}
	return res, nil
}

// buildHarness wraps the snippet with a per-test driver. Tests travel as
// base64-encoded JSON so arbitrary quoting in assertions cannot break out
// of the generated program.
func buildHarness(code string, tests []string) (string, error) {
	encoded, err := json.Marshal(tests)
	if err != nil {
		return "", fmt.Errorf("encode tests: %w", err)
	}
	b64 := base64.StdEncoding.EncodeToString(encoded)

	return code + "\n\n" +
		"import base64 as __b64, json as __json, sys as __sys\n" +
		"__tests = __json.loads(__b64.b64decode(\"" + b64 + "\").decode())\n" +
		"__failed = 0\n" +
		"for __i, __t in enumerate(__tests):\n" +
		"    try:\n" +
		"        exec(__t, globals())\n" +
		"        print(\"" + testMarker + " %d PASS\" % __i)\n" +
		"    except BaseException as __e:\n" +
		"        __failed += 1\n" +
		"        print(\"" + testMarker + " %d FAIL: %s\" % (__i, __e))\n" +
		"    __sys.stdout.flush()\n" +
		"__sys.exit(1 if __failed else 0)\n", nil
}

// countPasses tallies PASS markers in the captured output. The snippet
// under test runs before the harness and owns stdout, so marker lines
// are untrusted: indexes outside 0..total-1 are ignored, one verdict per
// index, last line wins (the harness prints after the snippet). The
// tally can never exceed total.
func countPasses(output string, total int) int {
	verdicts := make(map[int]bool, total)
	for _, line := range strings.Split(output, "\n") {
		var idx int
		var verdict string
		if _, err := fmt.Sscanf(line, testMarker+" %d %s", &idx, &verdict); err != nil {
			continue
		}
		if idx < 0 || idx >= total {
			continue
		}
		verdicts[idx] = verdict == "PASS"
	}
	passed := 0
	for _, ok := range verdicts {
		if ok {
			passed++
		}
	}
	return passed
}

// collectOutput fetches the container logs best-effort with a fresh
// context, so it still works after the run context expired.
func (r *DockerRunner) collectOutput(containerID string) string {
	ctx, cancel := context.WithTimeout(context.Background(), removeTimeout)
	defer cancel()

	rc, err := r.cli.ContainerLogs(ctx, containerID, container.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
	})
	if err != nil {
		slog.Debug("Failed to read sandbox logs", "container_id", containerID, "error", err)
		return ""
	}
	defer rc.Close()

	var stdout, stderr bytes.Buffer
	if _, err := stdcopy.StdCopy(&stdout, &stderr, io.LimitReader(rc, maxOutputBytes)); err != nil {
		slog.Debug("Failed to demux sandbox logs", "container_id", containerID, "error", err)
	}
	out := stdout.String()
	if stderr.Len() > 0 {
		out += "\n" + stderr.String()
	}
	return out
}

func (r *DockerRunner) kill(containerID string) {
	ctx, cancel := context.WithTimeout(context.Background(), removeTimeout)
	defer cancel()
	if err := r.cli.ContainerKill(ctx, containerID, "KILL"); err != nil && !errdefs.IsNotFound(err) {
		slog.Debug("Failed to kill sandbox container", "container_id", containerID, "error", err)
	}
}

// remove force-removes the container; already-gone is fine.
func (r *DockerRunner) remove(containerID string) {
	ctx, cancel := context.WithTimeout(context.Background(), removeTimeout)
	defer cancel()
	if err := r.cli.ContainerRemove(ctx, containerID, container.RemoveOptions{Force: true}); err != nil && !errdefs.IsNotFound(err) {
		slog.Warn("Failed to remove sandbox container", "container_id", containerID, "error", err)
	}
}

func ptr[T any](v T) *T {
	return &v
}
