// Package autoplay contains card-picking strategies that play a game from
// the public board view alone. They never see face-down symbols; everything
// they know comes from cards they have watched turn face up.
//
// The bruteforcer command uses them against the REST API and the analyze
// command uses them to estimate how long each preset takes to clear.
package autoplay
