// Package command provides CLI command definitions for authgate-cli.
//
// Commands drive the same session controller the gateway uses, backed
// by a durable badger vault under the operator's home directory:
//
//   - login/logout: establish or tear down the stored session
//   - status: show the restored session and identity
//   - refresh: rotate the token pair once
//   - session watch: keep the background refresher armed
//   - config: inspect and initialize ~/.authgate/cli.yaml
package command
