// Package services holds the client application logic: the authentication
// state machine, feeder operations with the settings save orchestrator, and
// the periodic status poller.
//
// Auth owns the published authentication state. Every change to it happens
// on the goroutine running Auth.Run; network and identity-provider work runs
// on separate goroutines and posts its outcome back to that loop. When two
// flows overlap, whichever completes last determines the state.
package services
