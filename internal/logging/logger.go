package logging

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
)

// EnvLogLevel overrides the configured level when set.
const EnvLogLevel = "OWIF_PORTAL_LOG_LEVEL"

// Config is the logging section of the portal configuration.
type Config struct {
	// Level is the minimum level to output ("debug", "info", "warn", "error").
	Level string `yaml:"level" toml:"level"`
	// Format is "text" (default) or "json".
	Format string `yaml:"format" toml:"format"`
	// Buffer is the number of recent entries kept for the preview server.
	Buffer int `yaml:"buffer" toml:"buffer"`
}

// Options carries command line overrides applied on top of Config.
type Options struct {
	Verbose bool
	JSON    bool
	Output  io.Writer
}

var (
	base      = logrus.New()
	buffer    = NewLogBuffer(200)
	loggers   = make(map[string]*logrus.Entry)
	loggersMu sync.Mutex
)

func init() {
	base.AddHook(buffer)
	base.SetOutput(os.Stderr)
	base.SetFormatter(&TextFormatter{})
}

// NewLogger returns the logger for a component. Loggers are cached per
// component and share the process-wide configuration set by Setup.
func NewLogger(component string) *logrus.Entry {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	if logger, exists := loggers[component]; exists {
		return logger
	}

	logger := base.WithField("component", component)
	loggers[component] = logger
	return logger
}

// Setup applies the configuration to every component logger.
func Setup(cfg Config, opts Options) {
	levelStr := "info"
	if env := os.Getenv(EnvLogLevel); env != "" {
		levelStr = env
	} else if cfg.Level != "" {
		levelStr = cfg.Level
	}
	level, parseErr := logrus.ParseLevel(levelStr)
	if parseErr != nil {
		level = logrus.InfoLevel
	}
	if opts.Verbose {
		level = logrus.DebugLevel
	}
	base.SetLevel(level)

	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	base.SetOutput(out)

	if opts.JSON || strings.EqualFold(cfg.Format, "json") {
		base.SetFormatter(&logrus.JSONFormatter{})
	} else {
		base.SetFormatter(&TextFormatter{Color: isTerminal(out)})
	}

	if cfg.Buffer > 0 {
		buffer.Resize(cfg.Buffer)
	}

	if parseErr != nil {
		NewLogger("logging").Warnf("Unknown log level %q, using info", levelStr)
	}
}

// Buffer returns the in-memory buffer holding recent entries.
func Buffer() *LogBuffer {
	return buffer
}

// Writer returns a writer that logs each line at the given level, for
// libraries that expect an io.Writer or *log.Logger.
func Writer(component string, level logrus.Level) *io.PipeWriter {
	return NewLogger(component).WriterLevel(level)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
