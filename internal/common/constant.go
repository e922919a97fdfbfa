package common

// DefaultVaultFileName is the default name of the encrypted vault file,
// relative to the working directory unless overridden by configuration.
const DefaultVaultFileName = "vault.enc"

// SchemaVersion is written into vault metadata at creation time.
const SchemaVersion = "1.0"
