// Package vault provides durable, tamper-checked storage of the
// access/refresh token pair and the active tenant identifier.
//
// The vault exclusively owns reads and writes of stored records; no
// other component touches the underlying storage. It writes to two
// stores with different lifetime domains:
//
//   - a durable store shared across restarts (browser cookies behind
//     the gateway, an encrypted badger database for the CLI)
//   - a volatile in-process store holding an HMAC fingerprint of the
//     access token
//
// A durable access token whose fingerprint no longer verifies has been
// altered outside the vault; the vault treats the session as
// compromised, wipes every record, and reports nothing stored.
//
// The vault is an explicitly constructed service. Tests substitute
// in-memory stores; nothing here is process-global.
package vault
