package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"runtime"
	"strings"

	hardwareDomain "github.com/allisson/nodelock/internal/hardware/domain"
)

// CommandRunner executes a platform command and returns its standard output.
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

// FileReader reads a file from the local filesystem.
type FileReader func(path string) ([]byte, error)

// ExecCommand is the production CommandRunner.
func ExecCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// Source reads the raw platform hardware identifier (the SMBIOS system UUID or
// its per-OS equivalent). Implementations return the identifier as reported by
// the platform; validation and hashing happen in Identity.
type Source interface {
	Name() string
	PlatformID(ctx context.Context) (string, error)
}

// NewSource returns the Source for the named platform. "auto" selects the
// platform the binary runs on.
func NewSource(platform string, run CommandRunner, read FileReader) (Source, error) {
	if run == nil {
		run = ExecCommand
	}
	if read == nil {
		read = os.ReadFile
	}
	if platform == "" || platform == "auto" {
		platform = runtime.GOOS
	}

	switch platform {
	case "linux":
		return &linuxSource{run: run, read: read}, nil
	case "darwin":
		return &darwinSource{run: run}, nil
	case "windows":
		return &windowsSource{run: run}, nil
	default:
		return nil, fmt.Errorf("%w: unsupported platform %q", hardwareDomain.ErrHardwareQuery, platform)
	}
}

// linuxProductUUIDPath is readable by root only on most distributions;
// dmidecode is tried next.
const linuxProductUUIDPath = "/sys/class/dmi/id/product_uuid"

type linuxSource struct {
	run  CommandRunner
	read FileReader
}

func (s *linuxSource) Name() string { return "linux" }

func (s *linuxSource) PlatformID(ctx context.Context) (string, error) {
	data, readErr := s.read(linuxProductUUIDPath)
	if readErr == nil {
		if id := strings.TrimSpace(string(data)); id != "" {
			return id, nil
		}
		readErr = errors.New("empty product_uuid")
	}

	out, runErr := s.run(ctx, "dmidecode", "-s", "system-uuid")
	if runErr != nil {
		return "", fmt.Errorf("%w: %s: %v; dmidecode: %v",
			hardwareDomain.ErrHardwareQuery, linuxProductUUIDPath, readErr, runErr)
	}

	for _, line := range strings.Split(string(out), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		return line, nil
	}
	return "", fmt.Errorf("%w: dmidecode returned no system uuid", hardwareDomain.ErrHardwareQuery)
}

var ioregUUIDPattern = regexp.MustCompile(`"IOPlatformUUID"\s*=\s*"([^"]+)"`)

type darwinSource struct {
	run CommandRunner
}

func (s *darwinSource) Name() string { return "darwin" }

func (s *darwinSource) PlatformID(ctx context.Context) (string, error) {
	out, err := s.run(ctx, "ioreg", "-rd1", "-c", "IOPlatformExpertDevice")
	if err != nil {
		return "", fmt.Errorf("%w: ioreg: %v", hardwareDomain.ErrHardwareQuery, err)
	}

	match := ioregUUIDPattern.FindSubmatch(out)
	if match == nil {
		return "", fmt.Errorf("%w: IOPlatformUUID not found in ioreg output", hardwareDomain.ErrHardwareQuery)
	}
	return string(match[1]), nil
}

type windowsSource struct {
	run CommandRunner
}

func (s *windowsSource) Name() string { return "windows" }

// PlatformID asks wmic first; wmic is deprecated on recent Windows builds, so
// PowerShell's CIM cmdlet is the fallback.
func (s *windowsSource) PlatformID(ctx context.Context) (string, error) {
	out, wmicErr := s.run(ctx, "wmic", "csproduct", "get", "uuid")
	if wmicErr == nil {
		for _, line := range strings.Split(string(out), "\n") {
			line = strings.TrimSpace(line)
			if line == "" || strings.EqualFold(line, "UUID") {
				continue
			}
			return line, nil
		}
		wmicErr = errors.New("no uuid in wmic output")
	}

	out, psErr := s.run(ctx, "powershell", "-NoProfile", "-NonInteractive", "-Command",
		"(Get-CimInstance -ClassName Win32_ComputerSystemProduct).UUID")
	if psErr != nil {
		return "", fmt.Errorf("%w: wmic: %v; powershell: %v", hardwareDomain.ErrHardwareQuery, wmicErr, psErr)
	}
	if id := strings.TrimSpace(string(out)); id != "" {
		return id, nil
	}
	return "", fmt.Errorf("%w: powershell returned no uuid", hardwareDomain.ErrHardwareQuery)
}
