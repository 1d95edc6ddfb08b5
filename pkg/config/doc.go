// Package config loads and validates sparrowd's YAML configuration:
// deployment mode, bind address, probe ratios, rpcPool sizing, the
// configbased worker table, consul settings, and TLS. Validate runs at
// startup so a bad config fails fast rather than surfacing later as a
// scheduling error.
package config
