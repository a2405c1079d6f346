package config

import "github.com/spf13/viper"

type Config struct {
	General GeneralConfig
	Slots   []*SlotConfig
}

type GeneralConfig struct {
	// StorageType selects the token storage backend ("sqlite3").
	StorageType string
	// Messaging selects the node connection for distributed tokens
	// ("zmq"); empty disables the remote variant.
	Messaging string
}

type SlotConfig struct {
	Label string
	// VirtualOf names the physical slot this slot aliases; empty means
	// the slot is physical.
	VirtualOf string
}

// Load reads the configuration file from the usual locations and
// unmarshals it. Subpackages unmarshal their own sections (sqlite3, zmq)
// from the same file.
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.AddConfigPath("/etc/tokencore/")
	viper.AddConfigPath("$HOME/.tokencore")
	viper.AddConfigPath("./")
	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}
	return Get()
}

// Get unmarshals the already-read configuration.
func Get() (*Config, error) {
	var conf Config
	if err := viper.UnmarshalKey("general", &conf.General); err != nil {
		return nil, err
	}
	if err := viper.UnmarshalKey("slots", &conf.Slots); err != nil {
		return nil, err
	}
	return &conf, nil
}
