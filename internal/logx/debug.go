//go:build debug

package logx

// init raises the package's default logging level to LevelDebug when
// stilch is built with the "debug" build tag.
func init() {
	global.level = LevelDebug
}
