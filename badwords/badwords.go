// Package badwords screens guest review text before a review is accepted.
package badwords

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/minhzk/smarthotel-booking/logger"
)

// blocklist is a set of blocked words for efficient lookups.
var blocklist map[string]struct{}

var mu sync.RWMutex

// LoadBadWords loads blocked words from a text file, one word per line.
// Matching is case-insensitive.
func LoadBadWords(filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read bad words file: %w", err)
	}

	next := make(map[string]struct{})
	for _, line := range strings.Split(string(data), "\n") {
		word := strings.ToLower(strings.TrimSpace(line))
		if word != "" {
			next[word] = struct{}{}
		}
	}

	mu.Lock()
	blocklist = next
	mu.Unlock()

	logger.InfoLogger.Infof("Loaded %d blocked words", len(next))
	return nil
}

// ContainsBadWords reports whether the text contains any blocked word.
func ContainsBadWords(text string) bool {
	mu.RLock()
	defer mu.RUnlock()

	if len(blocklist) == 0 {
		return false
	}

	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !('a' <= r && r <= 'z' || '0' <= r && r <= '9')
	})

	for _, word := range words {
		if _, found := blocklist[word]; found {
			logger.WarnLogger.Warnf("Blocked word detected in review text")
			return true
		}
	}
	return false
}

// AddBadWord adds a word to the in-memory blocklist.
func AddBadWord(word string) {
	word = strings.ToLower(strings.TrimSpace(word))
	if word == "" {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	if blocklist == nil {
		blocklist = make(map[string]struct{})
	}
	blocklist[word] = struct{}{}
}
