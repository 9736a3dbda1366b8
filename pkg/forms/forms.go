// Package forms embeds the fallback form fixture injected into engine
// instances by the binaries. The engine itself never reaches for this
// package; callers pass the bytes in explicitly.
package forms

import _ "embed"

// DefaultID is the id declared inside default_form.json.
const DefaultID = "example-form"

// Default is the raw JSON of the fixture used when a call supplies no
// embedded form spec.
//
//go:embed default_form.json
var Default []byte
