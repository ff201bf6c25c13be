//go:build production

package primitives

// Moderate profile: the production cost parameters. Built with
// -tags production.
var kdfProfile = argonParams{time: 3, memory: 256 * 1024, threads: 4}
