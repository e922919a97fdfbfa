package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/atotto/clipboard"

	"github.com/dmitrijs2005/securevault/internal/common"
	"github.com/dmitrijs2005/securevault/internal/filex"
	"github.com/dmitrijs2005/securevault/internal/vault"
)

// clipboardWrite is a test seam for clipboard.WriteAll.
var clipboardWrite = clipboard.WriteAll

// Setup initializes a new vault after asking for the master password twice.
func (a *App) Setup(ctx context.Context) error {
	pw, err := GetPassword("Choose a master password", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}
	defer common.WipeByteArray(pw)

	confirm, err := GetPassword("Repeat the master password", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}
	defer common.WipeByteArray(confirm)

	if string(pw) != string(confirm) {
		fmt.Println("Passwords do not match")
		return errors.New("passwords do not match")
	}
	if len(pw) < 8 {
		fmt.Println("Master password must be at least 8 characters")
		return errors.New("master password too short")
	}

	if err := a.vault.Create(string(pw)); err != nil {
		log.Printf("error: %v", err)
		return err
	}
	fmt.Println("Vault created. Use 'login' to unlock it.")
	return nil
}

// Login prompts for the master password and unlocks the vault.
func (a *App) Login(ctx context.Context) error {
	pw, err := GetPassword("Enter master password", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}
	defer common.WipeByteArray(pw)

	if err := a.vault.Authenticate(string(pw)); err != nil {
		switch {
		case errors.Is(err, common.ErrLockedOut):
			fmt.Println("Too many failed attempts, try again later")
		case errors.Is(err, common.ErrNoVault):
			fmt.Println("No vault found. Use 'setup' to create one.")
		default:
			fmt.Println("Authentication failed")
		}
		return err
	}
	fmt.Println("Vault unlocked")
	return nil
}

// Add collects credential fields and stores a new entry.
func (a *App) Add(ctx context.Context) error {
	service, err := GetSimpleText(a.reader, "Enter service name", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}
	username, err := GetSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}
	password, err := GetPassword("Enter password", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}
	defer common.WipeByteArray(password)

	notes, err := GetMultiline(a.reader, "Enter notes (optional):", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}
	tags, err := GetTags(a.reader, os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}

	id, err := a.vault.Add(vault.CredentialCreate{
		ServiceName: service,
		Username:    username,
		Password:    string(password),
		Notes:       notes,
		Tags:        tags,
	})
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}
	fmt.Printf("Added credential %s\n", id)
	return nil
}

// List prints a one-line summary for each stored credential, oldest first.
func (a *App) List(ctx context.Context) error {
	creds, err := a.vault.List()
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}
	if len(creds) == 0 {
		fmt.Println("Vault is empty")
		return nil
	}
	for _, c := range creds {
		fmt.Println(summaryLine(c))
	}
	return nil
}

// Show fetches and displays a single credential by ID. The password is
// printed as well; use 'copy' to avoid showing it on screen.
func (a *App) Show(ctx context.Context) error {
	id, err := GetSimpleText(a.reader, "Enter credential id", os.Stdout)
	if err != nil {
		return err
	}

	cred, err := a.vault.Get(id)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}

	fmt.Printf("Service:  %s\n", cred.ServiceName)
	fmt.Printf("Username: %s\n", cred.Username)
	fmt.Printf("Password: %s\n", cred.Password)
	if cred.Notes != "" {
		fmt.Printf("Notes:    %s\n", cred.Notes)
	}
	if len(cred.Tags) > 0 {
		fmt.Printf("Tags:     %v\n", cred.Tags)
	}
	fmt.Printf("Created:  %s\n", cred.CreatedAt.Format(time.RFC3339))
	fmt.Printf("Updated:  %s\n", cred.UpdatedAt.Format(time.RFC3339))
	return nil
}

// Search prompts for a query and tags and prints matching credentials.
func (a *App) Search(ctx context.Context) error {
	query, err := GetSimpleText(a.reader, "Enter search query (empty for all)", os.Stdout)
	if err != nil {
		return err
	}
	tags, err := GetTags(a.reader, os.Stdout)
	if err != nil {
		return err
	}

	creds, err := a.vault.Search(query, tags)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}
	if len(creds) == 0 {
		fmt.Println("No matches")
		return nil
	}
	for _, c := range creds {
		fmt.Println(summaryLine(c))
	}
	return nil
}

// Update modifies selected fields of a credential. Empty answers keep
// the current value.
func (a *App) Update(ctx context.Context) error {
	id, err := GetSimpleText(a.reader, "Enter credential id to update", os.Stdout)
	if err != nil {
		return err
	}

	var upd vault.CredentialUpdate

	if v, err := GetSimpleText(a.reader, "New service name (empty to keep)", os.Stdout); err != nil {
		return err
	} else if v != "" {
		upd.ServiceName = &v
	}
	if v, err := GetSimpleText(a.reader, "New username (empty to keep)", os.Stdout); err != nil {
		return err
	} else if v != "" {
		upd.Username = &v
	}

	pw, err := GetPassword("New password (empty to keep)", os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pw)
	if len(pw) > 0 {
		s := string(pw)
		upd.Password = &s
	}

	if v, err := GetSimpleText(a.reader, "New notes (empty to keep)", os.Stdout); err != nil {
		return err
	} else if v != "" {
		upd.Notes = &v
	}

	if err := a.vault.Update(id, upd); err != nil {
		log.Printf("error: %v", err)
		return err
	}
	fmt.Println("Credential updated")
	return nil
}

// Delete removes a credential after an explicit confirmation.
func (a *App) Delete(ctx context.Context) error {
	id, err := GetSimpleText(a.reader, "Enter credential id to delete", os.Stdout)
	if err != nil {
		return err
	}
	answer, err := GetSimpleText(a.reader, "Delete this credential? (yes/no)", os.Stdout)
	if err != nil {
		return err
	}
	if answer != "yes" {
		fmt.Println("Aborted")
		return nil
	}

	if err := a.vault.Delete(id); err != nil {
		log.Printf("error: %v", err)
		return err
	}
	fmt.Println("Credential deleted")
	return nil
}

// Copy places a credential's password on the system clipboard so it never
// has to be shown on screen.
func (a *App) Copy(ctx context.Context) error {
	id, err := GetSimpleText(a.reader, "Enter credential id", os.Stdout)
	if err != nil {
		return err
	}

	cred, err := a.vault.Get(id)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}

	if err := clipboardWrite(cred.Password); err != nil {
		log.Printf("error: %v", err)
		return err
	}
	fmt.Println("Password copied to clipboard")
	return nil
}

// Share issues a self-contained sharing token for one credential.
func (a *App) Share(ctx context.Context) error {
	id, err := GetSimpleText(a.reader, "Enter credential id to share", os.Stdout)
	if err != nil {
		return err
	}
	ttlText, err := GetSimpleText(a.reader, "Token lifetime in seconds (default 3600)", os.Stdout)
	if err != nil {
		return err
	}

	ttl := time.Hour
	if ttlText != "" {
		seconds, err := strconv.Atoi(ttlText)
		if err != nil || seconds <= 0 {
			fmt.Println("Invalid lifetime")
			return errors.New("invalid lifetime")
		}
		ttl = time.Duration(seconds) * time.Second
	}

	token, expiresAt, err := a.vault.IssueShareToken(id, ttl)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}
	fmt.Printf("Share token (valid until %s):\n%s\n", expiresAt.Format(time.RFC3339), token)
	return nil
}

// Redeem decodes a sharing token and prints the credential it carries.
// Works without an unlocked vault; the token is self-contained.
func (a *App) Redeem(ctx context.Context) error {
	token, err := GetSimpleText(a.reader, "Paste share token", os.Stdout)
	if err != nil {
		return err
	}

	payload, err := vault.RedeemShareToken(token)
	if err != nil {
		fmt.Println("Token is invalid or expired")
		return err
	}

	fmt.Printf("Service:  %s\n", payload.ServiceName)
	fmt.Printf("Username: %s\n", payload.Username)
	fmt.Printf("Password: %s\n", payload.Password)
	if payload.Notes != "" {
		fmt.Printf("Notes:    %s\n", payload.Notes)
	}
	return nil
}

// Export writes an independently encrypted copy of the vault to a file.
func (a *App) Export(ctx context.Context) error {
	pw, err := GetPassword("Choose an export password", os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pw)
	if len(pw) < 8 {
		fmt.Println("Export password must be at least 8 characters")
		return errors.New("export password too short")
	}

	path, err := GetSimpleText(a.reader, "Output file path", os.Stdout)
	if err != nil {
		return err
	}
	if path == "" {
		fmt.Println("Output path is required")
		return errors.New("output path required")
	}

	blob, err := a.vault.Export(string(pw))
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}

	if err := filex.WriteFileAtomic(path, []byte(blob), 0o600); err != nil {
		log.Printf("error: %v", err)
		return err
	}
	fmt.Printf("Export saved to %s\n", path)
	return nil
}

// Audit prints the most recent audit trail entries, oldest first.
func (a *App) Audit(ctx context.Context) error {
	entries, err := a.vault.AuditLog(20)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}
	if len(entries) == 0 {
		fmt.Println("Audit trail is empty")
		return nil
	}
	for _, e := range entries {
		line := fmt.Sprintf("%s  %s", e.Timestamp.Format(time.RFC3339), e.Action)
		if e.CredentialID != "" {
			line += "  " + e.CredentialID
		}
		fmt.Println(line)
	}
	return nil
}

// Stats prints vault-level statistics.
func (a *App) Stats(ctx context.Context) error {
	stats, err := a.vault.Stats()
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}

	fmt.Printf("Credentials:   %d\n", stats.TotalCredentials)
	fmt.Printf("Vault created: %s\n", stats.CreatedAt.Format(time.RFC3339))
	fmt.Printf("Last accessed: %s\n", stats.LastAccessed.Format(time.RFC3339))
	fmt.Printf("Vault size:    %d bytes\n", stats.VaultSize)
	return nil
}

// Logout locks the vault, discarding the in-memory key.
func (a *App) Logout(ctx context.Context) error {
	a.vault.Logout()
	fmt.Println("Vault locked")
	return nil
}

func summaryLine(c vault.Credential) string {
	return fmt.Sprintf("%s  %-20s %s", c.ID, c.ServiceName, c.Username)
}
