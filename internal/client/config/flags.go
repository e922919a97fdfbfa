package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/securevault/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-f string   path to the encrypted vault file (default from Config)
//	-k string   key directory for the software key-wrapping provider
//
// Note: The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-f", "-k"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.VaultPath, "f", cfg.VaultPath, "path to the encrypted vault file")
	fs.StringVar(&cfg.HSMKeyDir, "k", cfg.HSMKeyDir, "key directory for the software key-wrapping provider")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
