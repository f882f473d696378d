//go:build !chakracore || !cgo

package chakracore

import (
	"sync"

	"github.com/buke/chakracore-go/abi"
	"github.com/buke/chakracore-go/gojaengine"
)

// The default engine is process-wide, like the native library: the current context of a
// thread is shared by all runtimes created without WithEngine.
var (
	defaultEngine     *gojaengine.Engine
	defaultEngineOnce sync.Once
)

func newDefaultEngine() (abi.Engine, error) {
	defaultEngineOnce.Do(func() {
		defaultEngine = gojaengine.New(gojaengine.WithLogger(Logger()))
	})
	return defaultEngine, nil
}
