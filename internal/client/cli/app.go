// Package cli implements the interactive SecureVault command-line client.
// Unlike the HTTP server it opens the encrypted vault file directly; both
// share the same core and therefore the same locking and session rules.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/securevault/internal/client/config"
	"github.com/dmitrijs2005/securevault/internal/hsm"
	"github.com/dmitrijs2005/securevault/internal/vault"
)

type App struct {
	config *config.Config
	vault  *vault.Vault
	reader *bufio.Reader
}

func NewApp(c *config.Config) (*App, error) {

	var opts []vault.StoreOption
	if c.HSMKeyDir != "" {
		provider, err := hsm.NewSoftProvider(c.HSMKeyDir)
		if err != nil {
			return nil, fmt.Errorf("key wrapping init error: %w", err)
		}
		opts = append(opts, vault.WithKeyWrapper(provider))
	}

	v := vault.New(c.VaultPath, opts...)

	return &App{config: c, vault: v, reader: bufio.NewReader(os.Stdin)}, nil
}

func (a *App) isLoggedIn() bool {
	return a.vault.IsAuthenticated()
}

// status renders the short vault state shown in the REPL prompt.
func (a *App) status() string {
	switch {
	case !a.vault.Exists():
		return "no vault"
	case a.vault.IsLockedOut():
		return "locked out"
	case a.vault.IsAuthenticated():
		return "unlocked"
	default:
		return "locked"
	}
}

func (a *App) Run(ctx context.Context) {
	// drop the session key on the way out
	defer a.vault.Logout()

	fmt.Println("SecureVault CLI (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.status, scanner)
}
