package db

import (
	"database/sql"
	"log"
)

// LinkUser stores the Discord user id for a simulator client id.
// An existing link for the same client id is overwritten.
func LinkUser(clientID, userID string) error {
	query := `
		INSERT INTO discord_links (client_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (client_id) DO UPDATE
		SET user_id = $2, updated_at = NOW()
	`
	_, err := DB.Exec(query, clientID, userID)
	if err != nil {
		log.Printf("Error linking client %s to user %s: %v", clientID, userID, err)
		return err
	}
	log.Printf("Linked client %s to Discord user %s", clientID, userID)
	return nil
}

// ResolveUser returns the Discord user id linked to a simulator client id.
// Returns sql.ErrNoRows if the client was never confirmed.
func ResolveUser(clientID string) (string, error) {
	var userID string
	err := DB.QueryRow(`SELECT user_id FROM discord_links WHERE client_id = $1`, clientID).Scan(&userID)
	if err != nil {
		if err != sql.ErrNoRows {
			log.Printf("Error resolving client %s: %v", clientID, err)
		}
		return "", err
	}
	return userID, nil
}

// LinkStore adapts the package-level link functions to the interfaces the
// confirmation flow and the mover consume.
type LinkStore struct{}

func (LinkStore) Link(clientID, userID string) error {
	return LinkUser(clientID, userID)
}

func (LinkStore) Resolve(clientID string) (string, error) {
	return ResolveUser(clientID)
}
