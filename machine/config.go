// Package machine owns the three device collections and drives
// Configure, the one-shot registration pass that runs after the platform
// connects and before the game loop starts. Its registration helpers
// look devices up by symbolic name, fail fast on a typo, and forward
// hardware rules to the platform immediately.
package machine

import (
	"time"

	"pinhal/device"
	"pinhal/errcode"
	"pinhal/switchio"
)

// Config owns the device collections plus a platform back-reference used
// only while installing hardware rules.
type Config struct {
	Switches *device.Collection[*device.Switch]
	Coils    *device.Collection[*device.Coil]
	Leds     *device.Collection[*device.Led]

	platform   switchio.Platform
	configured bool
}

// New returns an empty, unconfigured machine configuration bound to the
// given platform. The rule helpers forward to the platform immediately,
// so it must be connected before any of them is called.
func New(platform switchio.Platform) *Config {
	return &Config{
		Switches: device.NewCollection[*device.Switch](),
		Coils:    device.NewCollection[*device.Coil](),
		Leds:     device.NewCollection[*device.Led](),
		platform: platform,
	}
}

// requireNotConfigured is the guard used by registration calls that are
// only legal before Configure; it returns an AlreadyConfigured error once
// Configure has run.
func (c *Config) requireNotConfigured(op string) error {
	if c.configured {
		return errcode.New(errcode.AlreadyConfigured, op, "machine already configured")
	}
	return nil
}

// AddSwitch registers a switch seeded at the given initial physical
// state.
func (c *Config) AddSwitch(name string, addr int, logical device.LogicalType, debounce bool, tags device.TagSet, initial device.PhysicalState) error {
	if err := c.requireNotConfigured("machine.AddSwitch"); err != nil {
		return err
	}
	sw := device.NewSwitch(name, addr, logical, debounce, tags, initial)
	return c.Switches.Add(sw)
}

// AddCoil registers a coil.
func (c *Config) AddCoil(name string, addr int, defaultPulse time.Duration) error {
	if err := c.requireNotConfigured("machine.AddCoil"); err != nil {
		return err
	}
	return c.Coils.Add(device.NewCoil(name, addr, defaultPulse))
}

// AddLed registers an LED.
func (c *Config) AddLed(name string, addr int) error {
	if err := c.requireNotConfigured("machine.AddLed"); err != nil {
		return err
	}
	return c.Leds.Add(device.NewLed(name, addr))
}

// AddFlipperRule looks up switchName/coilName by symbolic name and
// forwards the rule to the platform immediately.
func (c *Config) AddFlipperRule(switchName, coilName string, pulseMs int, holdPower float64) error {
	sw, ok := c.Switches.ByName(switchName)
	if !ok {
		return errcode.New(errcode.UnknownDevice, "machine.AddFlipperRule", "no such switch: "+switchName)
	}
	coil, ok := c.Coils.ByName(coilName)
	if !ok {
		return errcode.New(errcode.UnknownDevice, "machine.AddFlipperRule", "no such coil: "+coilName)
	}
	return c.platform.ConfigureFlipperRule(sw.Address(), coil.Address(), pulseMs, holdPower)
}

// AddBumperRule looks up switchName/coilName by symbolic name and
// forwards the rule to the platform immediately.
func (c *Config) AddBumperRule(switchName, coilName string, pulseMs int) error {
	sw, ok := c.Switches.ByName(switchName)
	if !ok {
		return errcode.New(errcode.UnknownDevice, "machine.AddBumperRule", "no such switch: "+switchName)
	}
	coil, ok := c.Coils.ByName(coilName)
	if !ok {
		return errcode.New(errcode.UnknownDevice, "machine.AddBumperRule", "no such coil: "+coilName)
	}
	return c.platform.ConfigureBumperRule(sw.Address(), coil.Address(), pulseMs)
}

// RemoveHardwareRule uninstalls any rule keyed by switchName.
func (c *Config) RemoveHardwareRule(switchName string) error {
	sw, ok := c.Switches.ByName(switchName)
	if !ok {
		return errcode.New(errcode.UnknownDevice, "machine.RemoveHardwareRule", "no such switch: "+switchName)
	}
	return c.platform.RemoveHardwareRule(sw.Address())
}

// Configure marks the configuration closed. After this call, AddSwitch/
// AddCoil/AddLed reject further registration; rule helpers remain usable
// so built-in modes (tilt) can still install/remove reflexes at runtime.
func (c *Config) Configure() error {
	if err := c.requireNotConfigured("machine.Configure"); err != nil {
		return err
	}
	c.configured = true
	return nil
}

// Configured reports whether Configure has already run.
func (c *Config) Configured() bool { return c.configured }
