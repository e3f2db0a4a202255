// Package cli provides the interactive aln terminal client.
//
// It wires configuration, the local credential store, the REST client, the
// authentication state machine and the connectivity watcher, and then runs a
// REPL that only consumes published state and invokes callbacks.
//
// Typical flow: unlock the credential store with a passphrase, restore the
// previous session (asking for a fresh identity token if the server forgot
// it), pick a feeder with "use", then feed, inspect or edit its settings.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
