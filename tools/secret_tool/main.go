package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/maheshwarkibehan-hub/vyaas-backend-android/internal/config"
	"github.com/maheshwarkibehan-hub/vyaas-backend-android/internal/middleware"
)

// secret_tool hashes a bridge secret with bcrypt so the .env file never holds
// it in plaintext. The dispatcher side keeps the plaintext; the bridge stores
// only the hash.
func main() {
	secret := flag.String("secret", "", "Secret to hash (leave blank to type securely)")
	flag.Parse()

	value, err := resolveSecret(*secret)
	if err != nil {
		fmt.Fprintf(os.Stderr, "secret error: %v\n", err)
		os.Exit(1)
	}

	hash, err := middleware.HashSecret(value)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to hash secret: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Add this to the bridge .env:\n%s=%s\n", config.EnvBridgeSecret, hash)
}

func resolveSecret(input string) (string, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed != "" {
		if len(trimmed) < 8 {
			return "", fmt.Errorf("secret must be at least 8 characters")
		}
		return trimmed, nil
	}

	first, err := promptSecret("Enter secret: ")
	if err != nil {
		return "", err
	}
	second, err := promptSecret("Confirm secret: ")
	if err != nil {
		return "", err
	}
	if first != second {
		return "", fmt.Errorf("secrets do not match")
	}
	if len(first) < 8 {
		return "", fmt.Errorf("secret must be at least 8 characters")
	}
	return first, nil
}

func promptSecret(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		bytes, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(bytes)), nil
	}

	reader := bufio.NewReader(os.Stdin)
	text, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}
