// Package config handles configuration loading for the spira client.
//
// Configuration is TOML with ${VAR} environment variable expansion,
// looked up from (in order): the SPIRA_CONFIG environment variable,
// $XDG_CONFIG_HOME/spira/config.toml, ~/.config/spira/config.toml.
// A missing file falls back to defaults pointing at localhost.
//
// Sections:
//
//	[gateway]
//	url = "http://localhost:8000"
//
//	[realtime]
//	url = "ws://localhost:8000/ws/v1"
//
//	[storage]
//	path = ""   # defaults to the XDG data dir
//
//	[logging]
//	level = "info"   # debug, info, warn, error
package config
