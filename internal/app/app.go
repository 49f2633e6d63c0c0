// Package app defines the interface the host glue's app-selector menu
// drives: anything exposing a single synchronous Run. The selector itself
// (menu rendering, process bootstrap) is out of this module's scope per the
// spec's host-glue section; only the seam is specified here.
package app

// App is one selectable app. Run blocks until the app exits (the user
// pressed its exit control, or an unrecoverable error occurred) and
// receives its device handle at construction, not through this interface.
type App interface {
	Run() error
}
