// Package config loads the project configuration for a kind cluster.
//
// A project is the nearest directory, walking up from the working
// directory, that contains a .devctl.yaml marker. Next to it live the
// cluster settings (.devctl-kind.yaml, decoded into [Config]) and the kind
// topology (.devctl-kind.config.yaml, handed to kind untouched and only
// summarised by [LoadTopology]).
//
// Timeouts and retry tuning come from the environment, see [LoadTimeouts].
package config
