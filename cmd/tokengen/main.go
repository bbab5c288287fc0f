// tokengen mints a development JWT for a given user id and email, for
// exercising the API and relay without going through /users/login.
//
// Usage:
//
//	tokengen -email dev@example.com [-id <uuid>] [-secret <jwt secret>]
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/fr-yash/CoBuilderr/internal/auth"
	"github.com/fr-yash/CoBuilderr/internal/models"
)

func main() {
	email := flag.String("email", "", "email claim (required)")
	id := flag.String("id", "", "user id (defaults to a fresh UUID)")
	secret := flag.String("secret", os.Getenv("JWT_SECRET"), "signing secret (defaults to JWT_SECRET)")
	flag.Parse()

	if *email == "" {
		fmt.Fprintln(os.Stderr, "error: -email is required")
		flag.Usage()
		os.Exit(1)
	}
	if *secret == "" {
		fmt.Fprintln(os.Stderr, "error: no signing secret (set -secret or JWT_SECRET)")
		os.Exit(1)
	}

	userID := uuid.New()
	if *id != "" {
		parsed, err := uuid.Parse(*id)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: invalid -id: %v\n", err)
			os.Exit(1)
		}
		userID = parsed
	}

	verifier := auth.NewVerifier(*secret, nil)
	token, err := verifier.Issue(&models.User{ID: userID, Email: *email})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("user id: %s\n", userID)
	fmt.Printf("token:   %s\n", token)
}
