// Package config loads the Super Slide settings file.
//
// Settings are YAML. Every field is optional; a missing file, or a file
// that names only some fields, falls back to Default for the rest:
//
//	server:
//	  host: localhost
//	  port: 8080
//	paths:
//	  levels_dir: ""          # empty uses the built-in catalog
//	  sessions_dir: sessions
//	timing:
//	  hold_threshold: 3s
//	  tap_window: 1s
//	  challenge_intro: 1s
//	  countdown_step: 1s
//	  level_number_frame: 300ms
//	  victory_frame: 250ms
//	  score_dwell: 3s
//	  shake: 400ms
//	drag:
//	  nudge: 0.05
//	  flick: 1.30
//	auth:
//	  secret: change-me       # empty disables run submission
//	  token_ttl: 720h
//	database:
//	  dsn: ""                 # empty keeps runs in memory
//	leaderboard:
//	  limit: 20
//
// Load validates the result and names the offending field on error.
package config
