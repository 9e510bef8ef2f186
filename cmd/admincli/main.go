// Command admincli creates an admin account or resets its password without
// going through the HTTP bootstrap endpoint.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"log"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"vitrina.dev/internal/auth"
	"vitrina.dev/internal/ids"
)

func main() {
	log.SetFlags(0)
	var (
		dsn      = flag.String("dsn", os.Getenv("VITRINA_PG_DSN"), "PostgreSQL DSN")
		username = flag.String("username", "", "Admin username")
		password = flag.String("password", "", "Admin password")
	)
	flag.Parse()

	if *dsn == "" {
		log.Fatal("missing DSN: provide via -dsn or VITRINA_PG_DSN")
	}
	if *username == "" || *password == "" {
		log.Fatal("usage: admincli -username <name> -password <password>")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := sql.Open("pgx", *dsn)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	store := auth.NewPGStore(db)

	cred, err := auth.HashPassword(*password)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	existing, err := store.FindByUsername(ctx, *username)
	switch {
	case err == nil:
		if err := store.UpdatePassword(ctx, existing.ID, cred.Salt, cred.Hash); err != nil {
			log.Fatalf("update password: %v", err)
		}
		log.Printf("password reset for %s", existing.Username)
	case errors.Is(err, auth.ErrNotFound):
		user := &auth.AdminUser{
			ID:           ids.New(),
			Username:     *username,
			PasswordSalt: cred.Salt,
			PasswordHash: cred.Hash,
			IsActive:     true,
			CreatedAt:    time.Now().UTC(),
		}
		if err := store.Create(ctx, user); err != nil {
			log.Fatalf("create account: %v", err)
		}
		log.Printf("admin account ready: %s", user.Username)
	default:
		log.Fatalf("find account: %v", err)
	}
}
