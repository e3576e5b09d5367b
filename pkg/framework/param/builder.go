package param

import (
	"strings"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
)

// Builder provides a fluent API for creating parameters
type Builder struct {
	param *Parameter
}

// New creates a new parameter builder
func New(id uint32, name string) *Builder {
	return &Builder{
		param: &Parameter{
			ID:   id,
			Name: name,
			Min:  0,
			Max:  1,
		},
	}
}

// Range sets the min and max values
func (b *Builder) Range(min, max float64) *Builder {
	b.param.Min = min
	b.param.Max = max
	return b
}

// Default sets the default value in plain units.
func (b *Builder) Default(value float64) *Builder {
	b.param.DefaultValue = value
	return b
}

// Steps sets the number of discrete steps
func (b *Builder) Steps(count int32) *Builder {
	b.param.StepCount = count
	return b
}

// Toggle creates an on/off button.
func (b *Builder) Toggle() *Builder {
	b.param.Min = 0
	b.param.Max = 1
	b.param.StepCount = 1
	return b
}

// Formatter sets custom value formatting and parsing
func (b *Builder) Formatter(format func(float64) string, parse func(string) (float64, error)) *Builder {
	b.param.formatFunc = format
	b.param.parseFunc = parse
	return b
}

// Build returns the configured parameter
func (b *Builder) Build() *Parameter {
	b.param.Reset()
	return b.param
}

// Choice creates a list parameter whose values are the option indices.
func Choice(id uint32, name string, options []string) *Builder {
	format := func(v float64) string {
		i := int(v)
		if i >= 0 && i < len(options) {
			return options[i]
		}
		return "Unknown"
	}
	parse := func(str string) (float64, error) {
		for i, opt := range options {
			if strings.EqualFold(strings.TrimSpace(str), opt) {
				return float64(i), nil
			}
		}
		return 0, fault.Wrap(ErrUnknownOption, fmsg.With(str))
	}
	return New(id, name).
		Range(0, float64(len(options)-1)).
		Steps(int32(len(options)-1)).
		Formatter(format, parse)
}
