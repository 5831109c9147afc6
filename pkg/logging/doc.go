// Package logging provides a process-wide structured logger for rowexec.
//
// The package wraps go.uber.org/zap and exposes a single global logger
// instance that is initialized once and then retrieved via GetLogger. All
// subsystems obtain a logger through this package rather than constructing
// their own, so that log level and output destination are controlled from a
// single place.
//
// # Initialisation
//
// Call Init (or InitDefault for sensible defaults) once at program startup:
//
//	if err := logging.Init(logging.Config{Level: logging.LevelDebug}); err != nil {
//	    log.Fatal(err)
//	}
//
// If GetLogger is called before Init, a default stderr logger is created
// lazily (via sync.Once) so that packages that log during init are safe.
//
// # Context helpers
//
//	log := logging.WithConnection(id)  // adds conn_id field
//	log := logging.WithOperator(name)  // adds operator field
//	log := logging.WithComponent(name) // adds component field
package logging
