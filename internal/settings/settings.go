// Package settings persists the player's choices (mode, duration, columns,
// key binding, sound) through a tiles.Preferences store and merges them over
// the loaded configuration.
package settings

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-tiles/internal/config"
	"github.com/vovakirdan/tui-tiles/internal/i18n"
	"github.com/vovakirdan/tui-tiles/internal/tiles"
)

// Preference keys.
const (
	KeyMode     = "gameMode"
	KeySound    = "soundMode"
	KeyKeyboard = "keyboard"
	KeyDuration = "gameTime"
	KeyColumns  = "columns"
	KeyLanguage = "language"

	keySoundPrefix = "customSound_"
)

// WarnDurationReset is the text key shown once when a stored duration was
// unusable and has been reset.
const WarnDurationReset = "time-over"

// FallbackDuration replaces a malformed or non-positive stored duration.
const FallbackDuration = 20

// ErrInvalidKeys is returned for a key binding with repeated or missing keys.
var ErrInvalidKeys = errors.New("settings: invalid key binding")

// Settings are the effective user choices.
type Settings struct {
	Mode     tiles.Mode
	Sound    bool
	Keys     string // One key per column, left to right
	Duration int    // Fixed-time length in seconds
	Columns  int
	Language string // Empty means detect from the environment
	Sounds   config.SoundFiles

	// Warnings holds text keys to show the player once.
	Warnings []string
}

// Load reads stored preferences over the configuration defaults.
// Malformed values fall back to defaults; a duration that is not a number or
// is out of range is also rewritten and reported through Warnings.
func Load(prefs tiles.Preferences, cfg config.TilesConfig, logger *log.Logger) Settings {
	s := Settings{
		Mode:     tiles.ModeFixedTime,
		Sound:    cfg.Audio.Enabled,
		Keys:     cfg.Input.Keys,
		Duration: cfg.Timing.DurationSecs,
		Columns:  cfg.Board.Columns,
		Sounds:   cfg.Audio.Files,
	}
	if prefs == nil {
		return s
	}

	get := func(key string) string {
		v, err := prefs.Get(key)
		if err != nil {
			if logger != nil {
				logger.Warn("cannot read preference", "key", key, "err", err)
			}
			return ""
		}
		return strings.TrimSpace(v)
	}

	if v := get(KeyMode); v != "" {
		if m, err := tiles.ParseMode(v); err == nil {
			s.Mode = m
		}
	}

	switch get(KeySound) {
	case "on":
		s.Sound = true
	case "off":
		s.Sound = false
	}

	if v := get(KeyKeyboard); v != "" {
		if keys, err := NormalizeKeys(v); err == nil {
			s.Keys = keys
		}
	}

	if v := get(KeyDuration); v != "" {
		secs, err := strconv.Atoi(v)
		if err == nil {
			err = config.ValidateDuration(secs)
		}
		if err != nil {
			s.Duration = FallbackDuration
			s.Warnings = append(s.Warnings, WarnDurationReset)
			if err := prefs.Set(KeyDuration, strconv.Itoa(FallbackDuration), tiles.PrefTTLDays); err != nil && logger != nil {
				logger.Warn("cannot reset duration", "err", err)
			}
		} else {
			s.Duration = secs
		}
	}

	if v := get(KeyColumns); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil && config.ValidateColumns(n) == nil {
			s.Columns = n
		}
	}

	s.Language = get(KeyLanguage)

	if v := get(keySoundPrefix + string(tiles.EffectTap)); v != "" {
		s.Sounds.Tap = v
	}
	if v := get(keySoundPrefix + string(tiles.EffectErr)); v != "" {
		s.Sounds.Err = v
	}
	if v := get(keySoundPrefix + string(tiles.EffectEnd)); v != "" {
		s.Sounds.End = v
	}

	return s
}

// Apply copies the settings into session options.
func (s Settings) Apply(opts tiles.Options) tiles.Options {
	opts.Columns = s.Columns
	opts.Duration = config.TimingConfig{DurationSecs: s.Duration}.Duration()
	return opts
}

// KeyColumn maps a pressed key to its column, or -1.
func (s Settings) KeyColumn(key string) int {
	if utf8.RuneCountInString(key) != 1 {
		return -1
	}
	r, _ := utf8.DecodeRuneInString(strings.ToLower(key))
	i := 0
	for _, k := range s.Keys {
		if i >= s.Columns {
			break
		}
		if k == r {
			return i
		}
		i++
	}
	return -1
}

// NormalizeKeys lowercases a binding and rejects empty or repeated keys.
func NormalizeKeys(keys string) (string, error) {
	keys = strings.ToLower(strings.TrimSpace(keys))
	if keys == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidKeys)
	}
	seen := make(map[rune]bool)
	for _, r := range keys {
		if r == ' ' || seen[r] {
			return "", fmt.Errorf("%w: %q", ErrInvalidKeys, keys)
		}
		seen[r] = true
	}
	return keys, nil
}

// SaveMode stores the mode by its stable code.
func SaveMode(prefs tiles.Preferences, m tiles.Mode) error {
	return prefs.Set(KeyMode, m.Code(), tiles.PrefTTLDays)
}

// SaveSound stores the sound switch.
func SaveSound(prefs tiles.Preferences, on bool) error {
	v := "off"
	if on {
		v = "on"
	}
	return prefs.Set(KeySound, v, tiles.PrefTTLDays)
}

// SaveKeys validates and stores a key binding.
func SaveKeys(prefs tiles.Preferences, keys string) error {
	keys, err := NormalizeKeys(keys)
	if err != nil {
		return err
	}
	return prefs.Set(KeyKeyboard, keys, tiles.PrefTTLDays)
}

// SaveDuration validates and stores the fixed-time length.
func SaveDuration(prefs tiles.Preferences, secs int) error {
	if err := config.ValidateDuration(secs); err != nil {
		return err
	}
	return prefs.Set(KeyDuration, strconv.Itoa(secs), tiles.PrefTTLDays)
}

// SaveColumns validates and stores the column count.
func SaveColumns(prefs tiles.Preferences, n int) error {
	if err := config.ValidateColumns(n); err != nil {
		return err
	}
	return prefs.Set(KeyColumns, strconv.Itoa(n), tiles.PrefTTLDays)
}

// SaveLanguage stores the display language.
func SaveLanguage(prefs tiles.Preferences, lang string) error {
	return prefs.Set(KeyLanguage, lang, tiles.PrefTTLDays)
}

// SaveSoundFile stores a custom WAV path for an effect. An empty path
// restores the built-in sound.
func SaveSoundFile(prefs tiles.Preferences, e tiles.Effect, path string) error {
	return prefs.Set(keySoundPrefix+string(e), path, tiles.PrefTTLDays)
}

// ErrUnknownKey is returned by Set for keys that are not settings.
var ErrUnknownKey = errors.New("settings: unknown key")

// Set validates and stores a setting given as text, as typed on a command
// line. Sound files are set with the keys "tap-sound", "err-sound" and
// "end-sound".
func Set(prefs tiles.Preferences, key, value string) error {
	value = strings.TrimSpace(value)
	switch key {
	case KeyMode:
		m, err := tiles.ParseMode(value)
		if err != nil {
			return err
		}
		return SaveMode(prefs, m)
	case KeySound:
		switch strings.ToLower(value) {
		case "on", "true", "1":
			return SaveSound(prefs, true)
		case "off", "false", "0":
			return SaveSound(prefs, false)
		}
		return fmt.Errorf("settings: sound must be on or off, got %q", value)
	case KeyKeyboard:
		return SaveKeys(prefs, value)
	case KeyDuration, KeyColumns:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("settings: %s must be a number: %w", key, err)
		}
		if key == KeyDuration {
			return SaveDuration(prefs, n)
		}
		return SaveColumns(prefs, n)
	case KeyLanguage:
		lang := strings.ToLower(value)
		if !slices.Contains(i18n.Languages(), lang) {
			return fmt.Errorf("settings: no %q catalog (have %s)", value, strings.Join(i18n.Languages(), ", "))
		}
		return SaveLanguage(prefs, lang)
	}

	for _, e := range []tiles.Effect{tiles.EffectTap, tiles.EffectErr, tiles.EffectEnd} {
		if key == string(e)+"-sound" {
			return SaveSoundFile(prefs, e, value)
		}
	}
	return fmt.Errorf("%w: %q", ErrUnknownKey, key)
}

// Keys lists the keys accepted by Set.
func Keys() []string {
	return []string{
		KeyMode, KeySound, KeyKeyboard, KeyDuration, KeyColumns, KeyLanguage,
		"tap-sound", "err-sound", "end-sound",
	}
}
