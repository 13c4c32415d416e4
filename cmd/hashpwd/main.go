// Command hashpwd prints the Argon2id hash for an admin password, suitable
// for MONSOON_ADMIN_PASSWORD_HASH.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/monsoonshop/monsoon-backend/pkg/config"
	"github.com/monsoonshop/monsoon-backend/pkg/security"
)

func main() {
	password := flag.String("password", "", "password to hash")
	flag.Parse()

	if *password == "" {
		fmt.Fprintln(os.Stderr, "missing -password")
		os.Exit(1)
	}

	_ = godotenv.Load()

	var cfg config.PasswordConfig
	if loaded, err := config.Load(); err == nil {
		cfg = loaded.Password
	}

	hash, err := security.HashPassword(*password, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to hash password: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(hash)
}
