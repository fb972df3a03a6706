/*
Package config loads engine settings from YAML or JSON documents.

# Overview

Config wraps a decoded document and provides typed accessors that return
a default instead of failing when a key is missing or has the wrong type.
Keys may be dotted paths into nested sections:

	cfg, err := config.FromFile("dfs.yaml")
	if err != nil {
	    log.Fatal(err)
	}
	limit := cfg.Int("limits.max_range_length", 1000)
	zone := cfg.String("timezone.default", "_")

# Settings

Settings is the typed view the engine consumes. It is built once, from
defaults, a file and the environment, then passed by value:

	s, err := config.LoadSettings(path)
	if err != nil {
	    return err
	}
	s, err = s.ApplyEnv(os.LookupEnv)

Environment overrides: DFS_LOG_LEVEL, DFS_LOG_FORMAT, DFS_TIMEZONE,
DFS_METRICS, DFS_TRACING.

# Thread Safety

Config and Settings are safe for concurrent reads. Neither is modified
after creation.
*/
package config
