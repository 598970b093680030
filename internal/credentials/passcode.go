// Package credentials generates kid-friendly passcodes for backend students.
package credentials

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
)

var adjectives = []string{
	"happy", "sunny", "brave", "bright", "cool", "swift", "clever", "jolly",
	"mighty", "super", "wild", "funny", "lucky", "magic", "bouncy", "cheerful",
	"daring", "eager", "flying", "gentle", "jazzy", "kindly", "lively", "merry",
	"noble", "perky", "quick", "royal", "snappy", "zippy", "bold", "cosmic",
}

var nouns = []string{
	"dragon", "tiger", "eagle", "dolphin", "panda", "lion", "wolf", "bear",
	"fox", "hawk", "otter", "phoenix", "unicorn", "rocket", "wizard", "knight",
	"pirate", "robot", "astronaut", "hero", "explorer", "ranger", "captain", "comet",
	"thunder", "tornado", "badger", "koala", "penguin", "turtle", "falcon", "moose",
}

var passcodePattern = regexp.MustCompile(`^[a-z]+-[a-z]+-[0-9]{2}$`)

// GeneratePasscode returns a phrase like "brave-otter-42"
func GeneratePasscode() (string, error) {
	adjective, err := randomElement(adjectives)
	if err != nil {
		return "", err
	}
	noun, err := randomElement(nouns)
	if err != nil {
		return "", err
	}
	n, err := rand.Int(rand.Reader, big.NewInt(100))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%s-%02d", adjective, noun, n.Int64()), nil
}

// LooksLikePasscode reports whether s has the generated passcode shape
func LooksLikePasscode(s string) bool {
	return passcodePattern.MatchString(s)
}

func randomElement(slice []string) (string, error) {
	if len(slice) == 0 {
		return "", nil
	}
	num, err := rand.Int(rand.Reader, big.NewInt(int64(len(slice))))
	if err != nil {
		return "", err
	}
	return slice[num.Int64()], nil
}
