// Viewer opens the database read-only and dumps a summary of stored
// conversations and users. Handy for inspecting a live server's data
// without stopping it.
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"

	"personal-chat/domain"
	"personal-chat/internal"
	"personal-chat/repositories"
)

func main() {
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		log.Fatalf("Config error: %v", err)
	}

	// BypassLockGuard allows opening while the server holds the lock.
	opts := badger.DefaultOptions(config.BadgerFilepath).
		WithReadOnly(true).
		WithBypassLockGuard(true).
		WithLoggingLevel(badger.WARNING)

	db, err := badger.Open(opts)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	err = db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			key := string(item.Key())
			switch {
			case strings.HasPrefix(key, "conv:"):
				if err := item.Value(func(val []byte) error {
					var c domain.Conversation
					if err := json.Unmarshal(val, &c); err != nil {
						return err
					}
					fmt.Printf("CONV %s <-> %s  messages=%d  lastActivity=%s\n",
						c.Participants[0], c.Participants[1],
						len(c.Messages), c.LastActivity.Format("2006-01-02 15:04:05"))
					return nil
				}); err != nil {
					return err
				}
			case strings.HasPrefix(key, "user:"):
				if err := item.Value(func(val []byte) error {
					var u repositories.User
					if err := json.Unmarshal(val, &u); err != nil {
						return err
					}
					fmt.Printf("USER %s  %s %s  created=%s\n",
						u.Email, u.FirstName, u.LastName,
						u.CreatedAt.Format("2006-01-02"))
					return nil
				}); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		log.Fatalf("Scan failed: %v", err)
	}
}
