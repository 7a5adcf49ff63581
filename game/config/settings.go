package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/wricardo/superslide/game/engine"
	"github.com/wricardo/superslide/game/machine"
	"github.com/wricardo/superslide/game/runs"
)

var ErrInvalidSettings = errors.New("invalid settings")

// Duration is a time.Duration written as "3s" or "250ms" in YAML.
type Duration time.Duration

func (d Duration) String() string { return time.Duration(d).String() }

func (d Duration) MarshalYAML() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalYAML(b []byte) error {
	var s string
	if err := yaml.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// Settings is the application settings file.
type Settings struct {
	Server      ServerSettings      `yaml:"server"`
	Paths       PathSettings        `yaml:"paths"`
	Timing      TimingSettings      `yaml:"timing"`
	Drag        engine.Thresholds   `yaml:"drag"`
	Auth        AuthSettings        `yaml:"auth"`
	Database    DatabaseSettings    `yaml:"database"`
	Leaderboard LeaderboardSettings `yaml:"leaderboard"`
	Sessions    SessionSettings     `yaml:"sessions"`
}

type ServerSettings struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type PathSettings struct {
	// LevelsDir is empty for the built-in catalog.
	LevelsDir   string `yaml:"levels_dir"`
	SessionsDir string `yaml:"sessions_dir"`
	ResumeFile  string `yaml:"resume_file"`
}

// TimingSettings mirrors machine.Timing with YAML-friendly durations.
type TimingSettings struct {
	HoldThreshold    Duration `yaml:"hold_threshold"`
	TapWindow        Duration `yaml:"tap_window"`
	ChallengeIntro   Duration `yaml:"challenge_intro"`
	CountdownStep    Duration `yaml:"countdown_step"`
	CountdownFrom    int      `yaml:"countdown_from"`
	ElapsedTick      Duration `yaml:"elapsed_tick"`
	TimeLimit        int      `yaml:"time_limit"`
	LevelNumberFrame Duration `yaml:"level_number_frame"`
	VictoryFrame     Duration `yaml:"victory_frame"`
	VictoryFrames    int      `yaml:"victory_frames"`
	VictoryCycles    int      `yaml:"victory_cycles"`
	ScoreDwell       Duration `yaml:"score_dwell"`
	Shake            Duration `yaml:"shake"`
}

type AuthSettings struct {
	// Secret signs player tokens. Run submission is off without one.
	Secret   string   `yaml:"secret"`
	Issuer   string   `yaml:"issuer"`
	TokenTTL Duration `yaml:"token_ttl"`
}

type DatabaseSettings struct {
	// DSN is a MySQL data source name. Empty keeps runs in memory.
	DSN string `yaml:"dsn"`
}

type LeaderboardSettings struct {
	Limit int `yaml:"limit"`
}

type SessionSettings struct {
	MaxAge          Duration `yaml:"max_age"`
	CleanupInterval Duration `yaml:"cleanup_interval"`
	SyncInterval    Duration `yaml:"sync_interval"`
}

// Default returns the stock settings.
func Default() *Settings {
	t := machine.DefaultTiming()
	return &Settings{
		Server: ServerSettings{Host: "localhost", Port: 8080},
		Paths:  PathSettings{SessionsDir: "sessions", ResumeFile: defaultResumeFile()},
		Timing: TimingSettings{
			HoldThreshold:    Duration(t.HoldThreshold),
			TapWindow:        Duration(t.TapWindow),
			ChallengeIntro:   Duration(t.ChallengeIntro),
			CountdownStep:    Duration(t.CountdownStep),
			CountdownFrom:    t.CountdownFrom,
			ElapsedTick:      Duration(t.ElapsedTick),
			TimeLimit:        t.TimeLimit,
			LevelNumberFrame: Duration(t.LevelNumberFrame),
			VictoryFrame:     Duration(t.VictoryFrame),
			VictoryFrames:    t.VictoryFrames,
			VictoryCycles:    t.VictoryCycles,
			ScoreDwell:       Duration(t.ScoreDwell),
			Shake:            Duration(t.Shake),
		},
		Drag:        engine.DefaultThresholds,
		Auth:        AuthSettings{Issuer: "superslide", TokenTTL: Duration(30 * 24 * time.Hour)},
		Leaderboard: LeaderboardSettings{Limit: runs.DefaultLeaderboardLimit},
		Sessions: SessionSettings{
			MaxAge:          Duration(24 * time.Hour),
			CleanupInterval: Duration(time.Hour),
			SyncInterval:    Duration(5 * time.Second),
		},
	}
}

func defaultResumeFile() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "superslide", "resume.json")
	}
	return ".superslide-resume.json"
}

// Load reads a settings file over the defaults. A missing file yields the
// defaults; an empty path does too.
func Load(path string) (*Settings, error) {
	s := Default()
	if path == "" {
		return s, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}

	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidSettings, path, err)
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Save writes the settings as YAML, creating parent directories.
func (s *Settings) Save(path string) error {
	if err := s.Validate(); err != nil {
		return err
	}

	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create settings directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}
	return nil
}

// Validate reports the first invalid field.
func (s *Settings) Validate() error {
	if s.Server.Port < 0 || s.Server.Port > 65535 {
		return fmt.Errorf("%w: server.port %d out of range", ErrInvalidSettings, s.Server.Port)
	}
	if err := s.MachineTiming().Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}
	if s.Drag.Nudge <= 0 || s.Drag.Nudge >= 1 {
		return fmt.Errorf("%w: drag.nudge must be in (0,1), got %g", ErrInvalidSettings, s.Drag.Nudge)
	}
	if s.Drag.Flick <= 1 {
		return fmt.Errorf("%w: drag.flick must be above 1, got %g", ErrInvalidSettings, s.Drag.Flick)
	}
	if s.Auth.TokenTTL <= 0 {
		return fmt.Errorf("%w: auth.token_ttl must be positive", ErrInvalidSettings)
	}
	if s.Leaderboard.Limit <= 0 {
		return fmt.Errorf("%w: leaderboard.limit must be positive, got %d", ErrInvalidSettings, s.Leaderboard.Limit)
	}
	if s.Sessions.MaxAge <= 0 || s.Sessions.CleanupInterval <= 0 || s.Sessions.SyncInterval <= 0 {
		return fmt.Errorf("%w: sessions intervals must be positive", ErrInvalidSettings)
	}
	return nil
}

// MachineTiming converts the timing section for machine.New.
func (s *Settings) MachineTiming() machine.Timing {
	t := s.Timing
	return machine.Timing{
		HoldThreshold:    time.Duration(t.HoldThreshold),
		TapWindow:        time.Duration(t.TapWindow),
		ChallengeIntro:   time.Duration(t.ChallengeIntro),
		CountdownStep:    time.Duration(t.CountdownStep),
		CountdownFrom:    t.CountdownFrom,
		ElapsedTick:      time.Duration(t.ElapsedTick),
		TimeLimit:        t.TimeLimit,
		LevelNumberFrame: time.Duration(t.LevelNumberFrame),
		VictoryFrame:     time.Duration(t.VictoryFrame),
		VictoryFrames:    t.VictoryFrames,
		VictoryCycles:    t.VictoryCycles,
		ScoreDwell:       time.Duration(t.ScoreDwell),
		Shake:            time.Duration(t.Shake),
	}
}

// Thresholds returns the drag thresholds.
func (s *Settings) Thresholds() engine.Thresholds {
	return s.Drag
}

// Addr is host:port for the HTTP server.
func (s *Settings) Addr() string {
	return fmt.Sprintf("%s:%d", s.Server.Host, s.Server.Port)
}
