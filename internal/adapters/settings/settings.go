// Package settings resolves runtime settings with viper.
package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.trai.ch/forge/internal/core/domain"
	"go.trai.ch/forge/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.SettingsLoader = (*Loader)(nil)

// Setting keys, as written in the settings section of forge.yaml.
// Environment variables use the FORGE_ prefix with dots replaced by underscores,
// e.g. FORGE_SERVE_ADDR.
const (
	KeyMode         = "mode"
	KeyConcurrency  = "concurrency"
	KeyDebounce     = "debounce"
	KeyStepTimeout  = "stepTimeout"
	KeyServeEnabled = "serve.enabled"
	KeyServeAddr    = "serve.addr"
	KeyLogFormat    = "logFormat"
	KeyOutputMode   = "outputMode"
)

// Defaults.
const (
	DefaultDebounce    = 50 * time.Millisecond
	DefaultStepTimeout = 2 * time.Minute
	DefaultServeAddr   = "127.0.0.1:3000"
)

// Loader implements ports.SettingsLoader.
type Loader struct {
	envPrefix string
}

// NewLoader creates a settings loader reading FORGE_* environment variables.
func NewLoader() *Loader {
	return &Loader{envPrefix: "FORGE"}
}

// Load resolves settings for the project at root.
// Precedence, lowest first: defaults, the settings section of forge.yaml,
// environment variables, overrides.
func (l *Loader) Load(root string, overrides map[string]any) (domain.Settings, error) {
	v := viper.New()
	setDefaults(v)

	if err := l.mergeProjectSettings(v, root); err != nil {
		return domain.Settings{}, err
	}

	v.SetEnvPrefix(l.envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, value := range overrides {
		v.Set(key, value)
	}

	return decode(v)
}

func (l *Loader) mergeProjectSettings(v *viper.Viper, root string) error {
	if root == "" {
		return nil
	}

	projectViper := viper.New()
	projectViper.SetConfigFile(filepath.Join(root, domain.ForgeFileName))
	projectViper.SetConfigType("yaml")
	if err := projectViper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return zerr.With(zerr.Wrap(domain.ErrInvalidSettings, err.Error()), "root", root)
	}

	section := projectViper.GetStringMap("settings")
	if len(section) == 0 {
		return nil
	}
	if err := v.MergeConfigMap(section); err != nil {
		return zerr.Wrap(domain.ErrInvalidSettings, err.Error())
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyMode, "dev")
	v.SetDefault(KeyConcurrency, runtime.NumCPU())
	v.SetDefault(KeyDebounce, DefaultDebounce.String())
	v.SetDefault(KeyStepTimeout, DefaultStepTimeout.String())
	v.SetDefault(KeyServeEnabled, true)
	v.SetDefault(KeyServeAddr, DefaultServeAddr)
	v.SetDefault(KeyLogFormat, "pretty")
	v.SetDefault(KeyOutputMode, "auto")
}

func decode(v *viper.Viper) (domain.Settings, error) {
	mode, ok := domain.ParseMode(v.GetString(KeyMode))
	if !ok {
		return domain.Settings{}, invalid(KeyMode, v.GetString(KeyMode))
	}

	concurrency := v.GetInt(KeyConcurrency)
	if concurrency < 1 {
		return domain.Settings{}, invalid(KeyConcurrency, v.Get(KeyConcurrency))
	}

	debounce, err := parseDuration(v, KeyDebounce)
	if err != nil {
		return domain.Settings{}, err
	}
	stepTimeout, err := parseDuration(v, KeyStepTimeout)
	if err != nil {
		return domain.Settings{}, err
	}
	if stepTimeout <= 0 {
		return domain.Settings{}, invalid(KeyStepTimeout, v.Get(KeyStepTimeout))
	}

	logFormat := v.GetString(KeyLogFormat)
	if logFormat != "pretty" && logFormat != "json" {
		return domain.Settings{}, invalid(KeyLogFormat, logFormat)
	}

	outputMode := v.GetString(KeyOutputMode)
	switch outputMode {
	case "auto", "tui", "linear":
	default:
		return domain.Settings{}, invalid(KeyOutputMode, outputMode)
	}

	return domain.Settings{
		Mode:        mode,
		Concurrency: concurrency,
		Debounce:    debounce,
		StepTimeout: stepTimeout,
		Serve:       v.GetBool(KeyServeEnabled),
		ServeAddr:   v.GetString(KeyServeAddr),
		LogFormat:   logFormat,
		OutputMode:  outputMode,
	}, nil
}

// parseDuration accepts duration strings and plain integers as milliseconds.
func parseDuration(v *viper.Viper, key string) (time.Duration, error) {
	raw := v.Get(key)
	switch val := raw.(type) {
	case time.Duration:
		return val, nil
	case int:
		return time.Duration(val) * time.Millisecond, nil
	case int64:
		return time.Duration(val) * time.Millisecond, nil
	}

	str := v.GetString(key)
	if ms, err := strconv.Atoi(str); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}
	d, err := time.ParseDuration(str)
	if err != nil || d < 0 {
		return 0, invalid(key, raw)
	}
	return d, nil
}

func invalid(key string, value any) error {
	return zerr.With(zerr.Wrap(domain.ErrInvalidSettings, "resolve settings"), key, fmt.Sprint(value))
}
