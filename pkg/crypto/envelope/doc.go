// Package envelope implements the authenticated-encryption envelope
// used for WAL records and snapshots.
//
// The on-disk form is a JSON object {"iv":hex,"content":hex,"tag":hex}:
// a 96-bit random nonce, the AES-256-GCM ciphertext, and the 16-byte
// authentication tag stored separately. No associated data is bound, so
// files stay readable across tool versions.
package envelope
