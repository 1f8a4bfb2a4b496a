package machine

import (
	"time"

	"github.com/andreyvit/tinyjson"

	"pinhal/device"
	"pinhal/errcode"
)

// LoadJSON decodes a machine description and registers every switch,
// coil, and LED it names: a dynamic tinyjson.Raw decode into
// map[string]any/[]any, walked with plain type assertions rather than a
// reflection-based struct unmarshal, since tinyjson exposes no typed
// decode.
//
// Expected shape:
//
//	{
//	  "switches": [{"name":"leftSlingshot","addr":12,"type":"NO","debounce":true,"tags":["playfield"]}],
//	  "coils":    [{"name":"ejectCoil","addr":40,"pulseMs":30}],
//	  "leds":     [{"name":"insert1","addr":0}]
//	}
func (c *Config) LoadJSON(raw []byte) error {
	if err := c.requireNotConfigured("machine.LoadJSON"); err != nil {
		return err
	}

	r := tinyjson.Raw(raw)
	val := r.Value()
	r.EnsureEOF()

	top, ok := val.(map[string]any)
	if !ok {
		return errcode.New(errcode.Error, "machine.LoadJSON", "machine config is not a JSON object")
	}

	if err := c.loadSwitches(top["switches"]); err != nil {
		return err
	}
	if err := c.loadCoils(top["coils"]); err != nil {
		return err
	}
	if err := c.loadLeds(top["leds"]); err != nil {
		return err
	}
	return nil
}

func (c *Config) loadSwitches(v any) error {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	for _, it := range items {
		m, ok := it.(map[string]any)
		if !ok {
			return errcode.New(errcode.Error, "machine.loadSwitches", "switch entry is not an object")
		}
		name, _ := m["name"].(string)
		addr := jsonInt(m["addr"])
		logical := device.NormallyOpen
		if t, _ := m["type"].(string); t == "NC" {
			logical = device.NormallyClosed
		}
		debounce, _ := m["debounce"].(bool)
		tags := jsonTags(m["tags"])
		initial := device.Open
		if s, _ := m["initial"].(string); s == "closed" {
			initial = device.Closed
		}
		if err := c.AddSwitch(name, addr, logical, debounce, tags, initial); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) loadCoils(v any) error {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	for _, it := range items {
		m, ok := it.(map[string]any)
		if !ok {
			return errcode.New(errcode.Error, "machine.loadCoils", "coil entry is not an object")
		}
		name, _ := m["name"].(string)
		addr := jsonInt(m["addr"])
		pulseMs := jsonInt(m["pulseMs"])
		if err := c.AddCoil(name, addr, time.Duration(pulseMs)*time.Millisecond); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) loadLeds(v any) error {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	for _, it := range items {
		m, ok := it.(map[string]any)
		if !ok {
			return errcode.New(errcode.Error, "machine.loadLeds", "led entry is not an object")
		}
		name, _ := m["name"].(string)
		addr := jsonInt(m["addr"])
		if err := c.AddLed(name, addr); err != nil {
			return err
		}
	}
	return nil
}

func jsonInt(v any) int {
	f, _ := v.(float64)
	return int(f)
}

func jsonTags(v any) device.TagSet {
	items, ok := v.([]any)
	if !ok {
		return device.TagNone
	}
	var tags []device.Tag
	for _, it := range items {
		s, _ := it.(string)
		switch s {
		case "playfield":
			tags = append(tags, device.TagPlayfield)
		case "eos":
			tags = append(tags, device.TagEos)
		case "shooterLane":
			tags = append(tags, device.TagShooterLane)
		case "service":
			tags = append(tags, device.TagService)
		case "trough":
			tags = append(tags, device.TagTrough)
		}
	}
	return device.NewTagSet(tags...)
}
