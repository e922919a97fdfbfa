// Package vault implements the single-user secrets vault: an encrypted
// credential store unlocked by a master password, with an authentication
// and lockout state machine, an idle-timeout session, an in-memory audit
// trail, self-contained sharing tokens, and independently-keyed export.
//
// The at-rest format is a single file holding vault metadata and one
// authenticated-encryption blob containing every credential. The blob is
// replaced as a whole on each mutation and the file is renamed into place
// atomically, so a crash mid-write cannot produce a half-written vault.
// Whole-blob re-encryption is O(n) per write; that is an accepted ceiling
// for a personal vault's scale and part of the on-disk format contract.
//
// The audit trail and the lockout counters live only in process memory and
// reset on restart.
package vault
