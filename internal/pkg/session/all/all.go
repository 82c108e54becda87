// Package all imports every session implementation for side-effect registration.
//
// Import this package from your main to ensure all browser modes are registered:
//
//	import _ "github.com/tahseenmorshed/FPLStats/internal/pkg/session/all"
package all

import (
	_ "github.com/tahseenmorshed/FPLStats/internal/pkg/session/chrome"
	_ "github.com/tahseenmorshed/FPLStats/internal/pkg/session/static"
)
