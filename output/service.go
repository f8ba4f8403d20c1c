package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/SanteonNL/nlk/util"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// Options configure an OutputManager.
type Options struct {
	// Timestamped places all output in a <baseDir>/<timestamp> subdirectory.
	Timestamped bool
	// LogFile tees the logger into <dir>/logs/app.log.
	LogFile bool
}

// OutputManager handles centralized output management for a tool run
type OutputManager struct {
	baseDir   string
	timestamp string
	log       zerolog.Logger
	logFile   *os.File
}

// NewOutputManager creates the output directory and, when requested, a log
// file that receives everything the returned logger writes.
func NewOutputManager(baseDir string, opts Options, log zerolog.Logger) (*OutputManager, error) {
	timestamp := time.Now().Format("20060102_150405")

	outputPath, err := util.GetAbsolutePath(baseDir)
	if err != nil {
		return nil, err
	}
	if opts.Timestamped {
		outputPath = filepath.Join(outputPath, timestamp)
	}
	if err := os.MkdirAll(outputPath, os.ModePerm); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	om := &OutputManager{
		baseDir:   outputPath,
		timestamp: timestamp,
		log:       log,
	}
	if !opts.LogFile {
		return om, nil
	}

	logsDir := filepath.Join(outputPath, "logs")
	if err := os.MkdirAll(logsDir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("failed to create logs directory: %w", err)
	}

	logFile, err := os.Create(filepath.Join(logsDir, "app.log"))
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}

	// Console output keeps its human format; the file gets JSON lines.
	consoleWriter := zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
		w.Out = os.Stderr
	})
	multiWriter := zerolog.MultiLevelWriter(consoleWriter, logFile)

	om.log = zerolog.New(multiWriter).
		Level(log.GetLevel()).
		With().
		Timestamp().
		Caller().
		Logger()
	om.logFile = logFile

	return om, nil
}

// Close releases the log file, if any.
func (om *OutputManager) Close() error {
	if om.logFile == nil {
		return nil
	}
	return om.logFile.Close()
}

// WriteJSON writes data as indented JSON to filename in the output directory
func (om *OutputManager) WriteJSON(data interface{}, filename string) (string, error) {
	return om.write(filename, "JSON", func(w io.Writer) error {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		encoder.SetEscapeHTML(false)
		return encoder.Encode(data)
	})
}

// WriteYAML writes data as YAML to filename in the output directory
func (om *OutputManager) WriteYAML(data interface{}, filename string) (string, error) {
	return om.write(filename, "YAML", func(w io.Writer) error {
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(data); err != nil {
			return err
		}
		return encoder.Close()
	})
}

// WriteText writes s verbatim to filename in the output directory
func (om *OutputManager) WriteText(s, filename string) (string, error) {
	return om.write(filename, "text", func(w io.Writer) error {
		_, err := io.WriteString(w, s)
		return err
	})
}

func (om *OutputManager) write(filename, kind string, encode func(io.Writer) error) (string, error) {
	outputPath := om.GetOutputPath(filename)

	file, err := os.Create(outputPath)
	if err != nil {
		return "", fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	if err := encode(file); err != nil {
		return "", fmt.Errorf("failed to encode data to %s: %w", kind, err)
	}

	om.log.Debug().
		Str("file", outputPath).
		Str("format", kind).
		Msg("Wrote output file")

	return outputPath, file.Close()
}

// GetLogger returns the configured logger
func (om *OutputManager) GetLogger() zerolog.Logger {
	return om.log
}

// GetOutputPath returns the full path for a given filename. Absolute paths
// are returned unchanged.
func (om *OutputManager) GetOutputPath(filename string) string {
	if filepath.IsAbs(filename) {
		return filename
	}
	return filepath.Join(om.baseDir, filename)
}

// GetTimestamp returns the timestamp being used
func (om *OutputManager) GetTimestamp() string {
	return om.timestamp
}

// GetBaseDir returns the base output directory
func (om *OutputManager) GetBaseDir() string {
	return om.baseDir
}
