// Package validation validates configuration structs for composekit
// applications.
//
// It supports struct tag validation (using the go-playground validator) and
// programmatic validation with error collection for cross-field rules.
//
// # Struct Tag Validation
//
//	type ModuleConfig struct {
//	    Name string `mapstructure:"name" validate:"required"`
//	    Mode string `mapstructure:"mode" validate:"omitempty,oneof=when_available on_demand"`
//	}
//	err := validation.Struct(cfg)
//
// # Programmatic Validation
//
//	v := validation.New()
//	v.Unique("modules[%d].name", names)
//	err := v.Validate()
package validation
