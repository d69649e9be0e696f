package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strconv"
	"strings"
)

// Machine file layout: machine id, a reserved line, test code.
const (
	machineLines       = 3
	machinePlaceholder = "dummy_path"
	databaseLines      = 5
)

// DissolutionTestCodes are the test codes offered for dissolution runs
var DissolutionTestCodes = []string{"10010", "10011"}

// AssayTestCodes returns the test codes offered for assay runs.
func AssayTestCodes() []string {
	codes := make([]string, 0, 24)
	for c := 10003; c <= 10026; c++ {
		codes = append(codes, strconv.Itoa(c))
	}
	return codes
}

// MachineConfig is the per-instrument identity and locked test code
type MachineConfig struct {
	MachineID string
	TestCode  string
}

// DissolutionTestCode returns the saved test code when it is a dissolution
// code, else "".
func (m MachineConfig) DissolutionTestCode() string {
	if slices.Contains(DissolutionTestCodes, m.TestCode) {
		return m.TestCode
	}
	return ""
}

// LoadMachineFile reads the machine file. A missing file yields a zero config.
func LoadMachineFile(path string) (MachineConfig, error) {
	lines, err := readLines(path)
	if errors.Is(err, fs.ErrNotExist) {
		return MachineConfig{}, nil
	}
	if err != nil {
		return MachineConfig{}, fmt.Errorf("failed to read machine file: %w", err)
	}

	var m MachineConfig
	if len(lines) >= 1 {
		m.MachineID = strings.TrimSpace(lines[0])
	}
	if len(lines) >= machineLines {
		m.TestCode = strings.TrimSpace(lines[2])
	}
	return m, nil
}

// SaveMachineFile overwrites the machine file.
func SaveMachineFile(path string, m MachineConfig) error {
	return writeLines(path, []string{m.MachineID, machinePlaceholder, m.TestCode})
}

// MachineStore persists the test code into a machine file
type MachineStore struct {
	Path string
}

// SaveTestCode replaces the test code line, padding a short file so the
// machine id is preserved.
func (s MachineStore) SaveTestCode(code string) error {
	lines, err := readLines(s.Path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to read machine file: %w", err)
	}
	for len(lines) < machineLines {
		lines = append(lines, "")
	}
	lines[2] = code
	return writeLines(s.Path, lines)
}

// LoadDatabaseFile reads host, port, user, password and database, one per
// line. found is false when the file does not exist.
func LoadDatabaseFile(path string) (cfg DatabaseConfig, found bool, err error) {
	lines, err := readLines(path)
	if errors.Is(err, fs.ErrNotExist) {
		return DatabaseConfig{}, false, nil
	}
	if err != nil {
		return DatabaseConfig{}, false, fmt.Errorf("failed to read database file: %w", err)
	}
	if len(lines) < databaseLines {
		return DatabaseConfig{}, true, fmt.Errorf("database file %s: expected %d lines, got %d", path, databaseLines, len(lines))
	}

	port, err := strconv.Atoi(strings.TrimSpace(lines[1]))
	if err != nil {
		return DatabaseConfig{}, true, fmt.Errorf("database file %s: invalid port %q: %w", path, lines[1], err)
	}
	return DatabaseConfig{
		Host:     strings.TrimSpace(lines[0]),
		Port:     port,
		User:     strings.TrimSpace(lines[2]),
		Password: strings.TrimSpace(lines[3]),
		Database: strings.TrimSpace(lines[4]),
	}, true, nil
}

// SaveDatabaseFile writes the five-line database file with owner-only access.
func SaveDatabaseFile(path string, c DatabaseConfig) error {
	return writeLinesMode(path, []string{
		c.Host, strconv.Itoa(c.Port), c.User, c.Password, c.Database,
	}, 0o600)
}

func readLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil, nil
	}
	return strings.Split(text, "\n"), nil
}

func writeLines(path string, lines []string) error {
	return writeLinesMode(path, lines, 0o644)
}

func writeLinesMode(path string, lines []string, mode os.FileMode) error {
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), mode); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
