//go:build !production

package primitives

// Interactive profile: fast enough for test and debug builds. Mirrors the
// teacher's "Config::interactive()" split, now a build tag instead of
// #[cfg(debug_assertions)].
var kdfProfile = argonParams{time: 2, memory: 8 * 1024, threads: 1}
