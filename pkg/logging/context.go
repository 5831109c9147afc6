package logging

// WithConnection creates a logger with connection context.
// Every statement executed on a connection logs through one of these.
//
// Example:
//
//	log := logging.WithConnection(conn.ID().String())
//	log.Info("statement finished", "rows", n)
func WithConnection(connID string) *Logger {
	return GetLogger().With("conn_id", connID)
}

// WithOperator creates a logger with physical operator context.
//
// Example:
//
//	log := logging.WithOperator("SortExec")
//	log.Debug("materialized", "rows", len(rows))
func WithOperator(name string) *Logger {
	return GetLogger().With("operator", name)
}

// WithComponent creates a logger with component/subsystem context.
//
// Example:
//
//	log := logging.WithComponent("memory")
//	log.Info("component initialized")
func WithComponent(component string) *Logger {
	return GetLogger().With("component", component)
}

// WithError creates a logger with error context.
func WithError(err error) *Logger {
	return GetLogger().With("error", err.Error())
}
