// Command hash-generator prints bcrypt hashes for the given passwords, for
// seeding accounts directly in the database or checking stored hashes.
//
//	hash-generator [-cost N] password...
//	hash-generator -verify HASH password
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/montesion/montesion-api/internal/service/auth"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	cost := flag.Int("cost", bcrypt.DefaultCost, "bcrypt cost factor")
	verify := flag.String("verify", "", "check the password against this hash instead of hashing it")
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	hasher := auth.NewBcryptHasher(*cost)

	if *verify != "" {
		if hasher.Verify(flag.Arg(0), *verify) {
			fmt.Println("match")
			return
		}
		fmt.Println("no match")
		os.Exit(1)
	}

	failed := false
	for _, password := range flag.Args() {
		hash, err := hasher.Hash(password)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error generating hash for %q: %v\n", password, err)
			failed = true
			continue
		}
		fmt.Printf("Password: %s\nHash: %s\n\n", password, hash)
	}
	if failed {
		os.Exit(1)
	}
}
