package kepler

import (
	"os"
	"sync"

	"github.com/spf13/viper"
)

var (
	configOnce sync.Once
	config     _keplerconfig
)

// _keplerconfig is a "hidden" struct, just use `keplerConfig`.
type _keplerconfig struct {
	VSOP87    bool
	VSOP87Dir string
	OutputDir string
	LogLevel  string
}

// keplerConfig returns the library configuration, loaded once from the
// conf.toml in the directory named by $KEPLER_CONFIG. A missing or unreadable
// configuration is not fatal: everything falls back to defaults (VSOP87
// disabled, output to the working directory).
func keplerConfig() _keplerconfig {
	configOnce.Do(loadConfig)
	return config
}

func loadConfig() {
	config = _keplerconfig{OutputDir: ".", LogLevel: "info"}
	confPath := os.Getenv("KEPLER_CONFIG")
	if confPath == "" {
		return
	}
	v := viper.New()
	v.SetConfigName("conf")
	v.AddConfigPath(confPath)
	if err := v.ReadInConfig(); err != nil {
		return
	}
	config.VSOP87 = v.GetBool("VSOP87.enabled")
	config.VSOP87Dir = v.GetString("VSOP87.directory")
	if out := v.GetString("general.output_path"); out != "" {
		config.OutputDir = out
	}
	if lvl := v.GetString("general.log_level"); lvl != "" {
		config.LogLevel = lvl
	}
}
