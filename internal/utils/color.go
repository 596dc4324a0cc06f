package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// avatarPalette are the default avatar colors assigned at signup.
var avatarPalette = []string{
	"#ff5a5f", "#0086c0", "#00c875", "#fdab3d",
	"#a25ddc", "#579bfc", "#e2445c", "#784bd1",
}

// RandomColor picks a random avatar color for a new user.
func RandomColor() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(avatarPalette))))
	if err != nil {
		return "", fmt.Errorf("failed to pick avatar color: %w", err)
	}
	return avatarPalette[n.Int64()], nil
}
