package abi

import (
	"github.com/Masterminds/semver/v3"
	"github.com/pkg/errors"
)

// Version is the JSRT ABI revision described by this package.
const Version = "1.11.24"

// Constraint is the range of engine versions whose function table matches this package.
const Constraint = ">= 1.11.0, < 2.0.0"

var compatible = func() *semver.Constraints {
	c, err := semver.NewConstraint(Constraint)
	if err != nil {
		panic(err)
	}
	return c
}()

// CheckVersion reports an error if an engine implementing version v cannot be driven
// through this function table.
func CheckVersion(v string) error {
	ver, err := semver.NewVersion(v)
	if err != nil {
		return errors.Wrapf(err, "abi: invalid engine version %q", v)
	}
	if !compatible.Check(ver) {
		return errors.Errorf("abi: engine version %s does not satisfy %s", ver, Constraint)
	}
	return nil
}
