// Package loader mounts the HTTP features of the service.
//
// The games, sync and integrity features each implement Feature. The start command
// registers them with a Manager, which calls Load on the enabled ones in registration
// order and stops at the first error. A disabled feature registers no routes.
package loader
