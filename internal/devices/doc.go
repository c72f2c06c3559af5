// Package devices maps fan models to the parameters behind each feature.
//
// A Profile names the parameters that hold a model's power state, speed,
// humidity, temperature, preset and firmware version. Each feature is an
// Action: the parameters to read, a parser turning the fan's answer into a
// value, and a builder turning a requested value into parameters to write.
//
// Profiles are looked up in a Catalog by the unit type code the fan reports
// in parameter 0x00B9. Models without a dedicated profile use Generic.
// Profiles declared in the configuration file are built with FromMapping.
package devices
