//go:build trace

package logx

// init raises the package's default logging level to LevelTrace when
// stilch is built with the "trace" build tag.
func init() {
	global.level = LevelTrace
}
