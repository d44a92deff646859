package main

import (
	"fmt"
	"strings"
	"time"
)

type Config struct {
	Host            string        `env:"HOST,default=localhost"`
	Port            int           `env:"PORT,default=5000"`
	BadgerFilepath  string        `env:"BADGER_FILEPATH,required=true"`
	BlugeFilepath   string        `env:"BLUGE_FILEPATH,required=true"`
	LogLevel        string        `env:"LOG_LEVEL,default=info"`
	ReapInterval    time.Duration `env:"REAP_INTERVAL,default=15s"`
	StaleAfter      time.Duration `env:"STALE_AFTER,default=10s"`
	RestartInterval time.Duration `env:"RESTART_INTERVAL,default=200ms"`
	HeartbeatEvery  time.Duration `env:"HEARTBEAT_INTERVAL,default=30s"`
	CensoredWords   string        `env:"CENSORED_WORDS"`
	CharReplacement string        `env:"CHARACTER_REPLACEMENT,default=*"`
	SearchLimit     int           `env:"SEARCH_LIMIT,default=25"`
}

// CensoredWordList splits the comma-separated dictionary. Empty entries are
// dropped, so an unset variable disables moderation entirely.
func (c Config) CensoredWordList() []string {
	var words []string
	for _, w := range strings.Split(c.CensoredWords, ",") {
		if w = strings.TrimSpace(w); w != "" {
			words = append(words, w)
		}
	}
	return words
}

func CharacterRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"CHARACTER_REPLACEMENT must be a single character, got %q",
			str,
		)
	}
	return r[0], nil
}
