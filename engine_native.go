//go:build chakracore && cgo

package chakracore

import (
	"github.com/buke/chakracore-go/abi"
	"github.com/buke/chakracore-go/nativeengine"
)

func newDefaultEngine() (abi.Engine, error) {
	return nativeengine.New(), nil
}
