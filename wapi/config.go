// Package wapi is a small client for the grid master's WAPI REST
// interface. It is independent of the analysis pass: its only job is
// fetching the active leases for a network with a bounded worker pool.
package wapi

import (
	"github.com/go-viper/encoding/ini"
	"github.com/spf13/viper"

	"gapscan/errors"
)

// DefaultAPIVersion is used when gm.ini does not pin one.
const DefaultAPIVersion = "v2.12"

// Config holds grid master connection settings, read from the [NIOS]
// section of a gm.ini file.
type Config struct {
	GridMaster string
	APIVersion string
	ValidCert  bool
	User       string
	Pass       string
}

// LoadConfig reads a gm.ini file. A missing grid master address is a
// configuration error; everything else has a usable default.
func LoadConfig(path string) (Config, error) {
	// The ini codec lives outside viper core since 1.20.
	registry := viper.NewCodecRegistry()
	if err := registry.RegisterCodec("ini", ini.Codec{}); err != nil {
		return Config{}, errors.Wrap(err, "registering ini codec")
	}

	v := viper.NewWithOptions(viper.WithCodecRegistry(registry))
	v.SetConfigFile(path)
	v.SetConfigType("ini")
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, errors.Wrapf(errors.ErrConfig, "wapi config %q: %v", path, err)
	}

	cfg := Config{
		GridMaster: v.GetString("nios.gm"),
		APIVersion: v.GetString("nios.api_version"),
		ValidCert:  v.GetBool("nios.valid_cert"),
		User:       v.GetString("nios.user"),
		Pass:       v.GetString("nios.pass"),
	}
	if cfg.GridMaster == "" {
		return Config{}, errors.NewConfigError("wapi config %q: no grid master (gm) in [NIOS] section", path)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("nios.api_version", DefaultAPIVersion)
	v.SetDefault("nios.valid_cert", false)
}
