// Command staffcred generates one entry for the staff credential table.
// The output is appended by hand to the STAFF_CREDENTIALS JSON document;
// there is no database of users to administer.
package main

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/inkstone-site/inkstone/internal/session"
)

func main() {
	username := flag.String("username", "", "login username (required)")
	name := flag.String("name", "", "display name (defaults to username)")
	roles := flag.String("roles", "moderator", "comma-separated roles: admin, moderator, viewer")
	password := flag.String("password", "", "login password (required)")
	flag.Parse()

	if *username == "" || *password == "" {
		flag.Usage()
		os.Exit(2)
	}
	if *name == "" {
		*name = *username
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	// Per-actor signing secret; rotating it revokes that actor's tokens.
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		log.Fatalf("failed to generate secret: %v", err)
	}

	cred := session.Credential{
		ID:           uuid.NewString(),
		Username:     *username,
		Name:         *name,
		Roles:        strings.Split(*roles, ","),
		Secret:       hex.EncodeToString(secret),
		PasswordHash: string(hash),
	}

	// Round-trip through the parser so a typo in -roles fails here, not
	// at server startup.
	raw, err := json.MarshalIndent([]session.Credential{cred}, "", "  ")
	if err != nil {
		log.Fatalf("failed to encode credential: %v", err)
	}
	if _, err := session.ParseTable(string(raw)); err != nil {
		log.Fatalf("generated credential is invalid: %v", err)
	}

	entry, err := json.MarshalIndent(cred, "", "  ")
	if err != nil {
		log.Fatalf("failed to encode credential: %v", err)
	}
	fmt.Println(string(entry))
}
