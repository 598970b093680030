package database

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
	"unicode"
)

// defaultBlockedWords is seeded when no list URL is configured
var defaultBlockedWords = []string{
	"admin", "damn", "hell", "stupid", "idiot", "dumb", "hate", "kill", "poop", "butt",
}

// SeedBlockedWords fills the blocked_words table once. With an empty listURL
// a small built-in list is used; otherwise the list is downloaded, one word per line.
func (db *DB) SeedBlockedWords(listURL string) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM blocked_words").Scan(&count); err != nil {
		return fmt.Errorf("failed to check blocked words count: %w", err)
	}
	if count > 0 {
		log.Printf("Blocked words list already populated with %d words", count)
		return nil
	}

	words := defaultBlockedWords
	if listURL != "" {
		log.Println("Downloading blocked words list...")
		downloaded, err := fetchWordList(listURL)
		if err != nil {
			return err
		}
		words = downloaded
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(db.Dialect.RewriteQuery(db.Dialect.InsertIgnoreBlockedWord()))
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	added := 0
	for _, word := range words {
		word = normalizeWord(word)
		if word == "" {
			continue
		}
		if _, err := stmt.Exec(word); err != nil {
			return fmt.Errorf("failed to insert blocked word: %w", err)
		}
		added++
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.Printf("Blocked words list populated with %d words", added)
	return nil
}

func fetchWordList(listURL string) ([]string, error) {
	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Get(listURL)
	if err != nil {
		return nil, fmt.Errorf("failed to download blocked words list: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bad status code from blocked words URL: %d", resp.StatusCode)
	}
	return readWordList(resp.Body)
}

func readWordList(r io.Reader) ([]string, error) {
	var words []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if word := normalizeWord(scanner.Text()); word != "" {
			words = append(words, word)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading blocked words: %w", err)
	}
	return words, nil
}

// IsBlockedWord checks a single word against the list
func (db *DB) IsBlockedWord(word string) (bool, error) {
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM blocked_words WHERE word = ?", normalizeWord(word)).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check blocked word: %w", err)
	}
	return count > 0, nil
}

// BlockedWordsIn splits text into words and returns those on the list
func (db *DB) BlockedWordsIn(text string) ([]string, error) {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	var blocked []string
	for _, word := range fields {
		isBlocked, err := db.IsBlockedWord(word)
		if err != nil {
			return nil, err
		}
		if isBlocked {
			log.Printf("Blocked word detected: '%s'", word)
			blocked = append(blocked, word)
		}
	}
	return blocked, nil
}

func normalizeWord(word string) string {
	return strings.TrimSpace(strings.ToLower(word))
}
