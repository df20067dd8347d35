// Package jwtbearer manages the credential lifecycle of a server-to-server
// OAuth 2.0 JWT-bearer (RFC 7523) integration.
//
// The package glues an assertion signer, a token exchange client and a
// fibonacci retry policy behind a single Manager that owns the access token:
// it blocks callers only for the initial acquisition, serves the last known
// valid token to concurrent readers, refreshes it ahead of expiry on a
// background cadence and revokes it on demand. In practice it is used as an
// umbrella package with two primary entry-points:
//  1. New - returns a configured Manager and
//  2. Run - a one-shot CLI entry that acquires and prints a token.
//
// Example:
//
//	manager, _ := jwtbearer.New(ctx, config)
//	if _, err := manager.Refresh(ctx); err != nil { /* no token exists, fatal */ }
//	manager.Start(ctx) // background freshness scheduler
//	token, _ := manager.Token(ctx)
//
// The Manager also exposes an oauth2.TokenSource adapter so the managed
// credential can back an *http.Client via golang.org/x/oauth2.
package jwtbearer
