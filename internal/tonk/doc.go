// Package tonk implements the rules of four-seat Tonk: dealing from a 40-card
// deck, hit penalties, drops and payouts, and the bot policy.
//
// The package is pure. An Engine turns a *Game and an Action into a new *Game
// or an error; the caller owns persistence and must serialize access to any
// single game. Randomness comes from an injected Source so tests and
// simulations can replay a table exactly.
package tonk
