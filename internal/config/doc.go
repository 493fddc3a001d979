// Package config loads Proofline's settings from layered sources and keeps
// them current while the program runs.
//
// Layers, lowest priority first:
//
//	defaults     compiled in (defaults.go)
//	user         $XDG_CONFIG_HOME/proofline/settings.toml (or .yaml)
//	project      the file passed with --config
//	environment  PROOFLINE_* and the vendor API key variables
//	flags        values set with Set
//
// Keys are dotted camelCase paths matching the TOML tables, for example
// "autocomplete.minContextLength". Duration values are strings in
// time.ParseDuration syntax or integers in milliseconds.
//
// Settings returns the assist.Settings view the engine reads on every
// scheduling decision. Watch re-reads the files when they change and
// notifies OnChange observers with the paths whose values moved.
package config
